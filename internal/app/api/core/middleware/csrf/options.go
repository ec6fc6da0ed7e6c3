package csrf

import "net/http"

// SessionReader returns the expected CSRF token of the current session.
type SessionReader func(r *http.Request) string

// SessionWriter stores a freshly generated CSRF token in the current session.
type SessionWriter func(r *http.Request, token string)

// options contains the options for the CSRF middleware.
// It uses the functional options pattern for flexible configuration.
type options struct {
	tokenLength   int
	ignoreMethods []string

	errCallback func(w http.ResponseWriter, r *http.Request)
	tokenGetter func(r *http.Request) string

	sessionGetter SessionReader
	sessionWriter SessionWriter
}

// Option is used to set options for the CSRF middleware.
type Option func(*options)

// WithTokenLength sets the token length for the CSRF middleware.
// The default value is 32.
func WithTokenLength(length int) Option {
	return func(o *options) {
		o.tokenLength = length
	}
}

// WithErrorCallback sets the error callback function that is called when the
// CSRF token is invalid. The default behavior is to write a 403 Forbidden response.
func WithErrorCallback(fn func(w http.ResponseWriter, r *http.Request)) Option {
	return func(o *options) {
		o.errCallback = fn
	}
}

// WithTokenGetter sets the function that extracts the CSRF token from the request.
func WithTokenGetter(fn func(r *http.Request) string) Option {
	return func(o *options) {
		o.tokenGetter = fn
	}
}

func withSessionReader(fn SessionReader) Option {
	return func(o *options) {
		o.sessionGetter = fn
	}
}

func withSessionWriter(fn SessionWriter) Option {
	return func(o *options) {
		o.sessionWriter = fn
	}
}

func newOptions(opts ...Option) options {
	o := options{
		tokenLength:   32,
		ignoreMethods: []string{"GET", "HEAD", "OPTIONS"},
		errCallback:   defaultErrorHandler,
		tokenGetter:   defaultTokenGetter,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
