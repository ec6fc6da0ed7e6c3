// Package csrf contains a middleware that mitigates Cross-Site Request Forgery attacks.
package csrf

import (
	"context"
	"net/http"
	"slices"
)

// ContextValueIdentifier is the context value identifier for the CSRF token.
// The token is only stored in the context if the RefreshToken function was called before.
const ContextValueIdentifier = "_csrf_token"

// Middleware validates CSRF tokens on state-changing requests. The expected
// token is stored in the session via the SessionWriter and compared against the
// token sent by the client.
type Middleware struct {
	o options
}

// New returns a new CSRF middleware with the provided options.
func New(sessionReader SessionReader, sessionWriter SessionWriter, opts ...Option) *Middleware {
	opts = append(opts, withSessionReader(sessionReader), withSessionWriter(sessionWriter))
	o := newOptions(opts...)

	checkForPRNG()

	return &Middleware{o: o}
}

// Handler returns the CSRF middleware handler. It validates the CSRF token and
// calls the error handler if an invalid token was found.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if slices.Contains(m.o.ignoreMethods, r.Method) {
			next.ServeHTTP(w, r) // skip CSRF check for safe methods
			return
		}

		token := m.o.tokenGetter(r)
		storedToken := m.o.sessionGetter(r)

		// a session that never established a token must not match the absent
		// token of a request
		if token == "" || storedToken == "" || !tokenEqual(token, storedToken) {
			m.o.errCallback(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RefreshToken generates a new CSRF token and stores it in the session. The token is
// also passed to subsequent handlers via the context value ContextValueIdentifier.
func (m *Middleware) RefreshToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetToken(r.Context()) != "" {
			// token already generated higher up in the chain
			next.ServeHTTP(w, r)
			return
		}

		token := generateToken(m.o.tokenLength)
		key := generateToken(m.o.tokenLength)

		// each refresh yields a different encoding of the same logical token
		encodedToken := encodeToken(maskToken(token, key))

		m.o.sessionWriter(r, encodedToken)

		r = r.WithContext(setToken(r.Context(), encodedToken))

		next.ServeHTTP(w, r)
	})
}

// GetToken retrieves the CSRF token from the given context. Ensure that the
// RefreshToken function was called before, otherwise no token is populated.
func GetToken(ctx context.Context) string {
	token, ok := ctx.Value(ContextValueIdentifier).(string)
	if !ok {
		return ""
	}

	return token
}

func setToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ContextValueIdentifier, token)
}

// defaultTokenGetter checks the request headers, URL query parameters and form
// values for the CSRF token. The order of precedence is:
//  1. Header "X-CSRF-TOKEN"
//  2. Header "X-XSRF-TOKEN"
//  3. URL query parameter "_csrf"
//  4. Form value "_csrf"
func defaultTokenGetter(r *http.Request) string {
	if t := r.Header.Get("X-CSRF-TOKEN"); len(t) > 0 {
		return t
	}

	if t := r.Header.Get("X-XSRF-TOKEN"); len(t) > 0 {
		return t
	}

	if t := r.URL.Query().Get("_csrf"); len(t) > 0 {
		return t
	}

	if t := r.FormValue("_csrf"); len(t) > 0 {
		return t
	}

	return ""
}

// defaultErrorHandler writes a 403 Forbidden response.
func defaultErrorHandler(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "CSRF token mismatch", http.StatusForbidden)
}
