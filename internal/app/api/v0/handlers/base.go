package handlers

import (
	"context"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/api/core"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/api/core/middleware/csrf"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/api/core/respond"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/session"
)

type SessionMiddleware interface {
	Session

	// LoadAndSave is a middleware that loads the session data for the given request
	// and saves it after the request is finished.
	LoadAndSave(next http.Handler) http.Handler
}

type Handler interface {
	// GetName returns the name of the handler.
	GetName() string
	// RegisterRoutes registers the routes for the handler.
	RegisterRoutes(g *routegroup.Bundle)
}

func NewRestApi(
	sessionManager SessionMiddleware,
	handlers ...Handler,
) core.ApiEndpointSetupFunc {
	return func() (core.ApiVersion, core.GroupSetupFn) {
		return "v0", func(group *routegroup.Bundle) {
			csrfMiddleware := csrf.New(func(r *http.Request) string {
				return sessionManager.GetData(r.Context()).CsrfToken
			}, func(r *http.Request, token string) {
				currentSession := sessionManager.GetData(r.Context())
				currentSession.CsrfToken = token
				sessionManager.SetData(r.Context(), currentSession)
			})

			group.Use(sessionManager.LoadAndSave)
			group.Use(csrfMiddleware.Handler)

			group.With(csrfMiddleware.RefreshToken).HandleFunc("GET /csrf", handleCsrfGet())

			// Handler functions
			for _, h := range handlers {
				h.RegisterRoutes(group)
			}
		}
	}
}

// handleCsrfGet returns the CSRF token for the current session.
func handleCsrfGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, csrf.GetToken(r.Context()))
	}
}

// region handler-interfaces

type Authenticator interface {
	// LoggedIn checks if a user is logged in. If scopes are given, they are validated as well.
	LoggedIn(scopes ...Scope) func(next http.Handler) http.Handler
	// RequireRole guards a role-scoped view, redirecting misrouted clients instead of failing.
	RequireRole(required domain.Role) func(next http.Handler) http.Handler
	// InfoOnly only adds user info to the request context. No login check is performed.
	InfoOnly() func(next http.Handler) http.Handler
}

type Session interface {
	// SetData sets the session data for the given context.
	SetData(ctx context.Context, val session.Data)
	// GetData returns the session data for the given context. If no data is found,
	// empty session data is returned.
	GetData(ctx context.Context) session.Data
	// DestroyData destroys the session data for the given context.
	DestroyData(ctx context.Context)
	// GetSubject returns the identity subject of the current session.
	GetSubject(ctx context.Context) domain.Subject
	// SetSubject replaces the identity of the current session, renewing the session token.
	SetSubject(ctx context.Context, identity domain.Identity) error
}

type Validator interface {
	// Struct validates the given struct.
	Struct(s interface{}) error
}

// endregion handler-interfaces
