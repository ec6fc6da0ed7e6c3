package handlers

import (
	"context"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/api/core/respond"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/api/v0/model"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
)

type DashboardUserService interface {
	// GetAllAccounts returns all accounts of the directory. Only admins may list accounts.
	GetAllAccounts(ctx context.Context) ([]domain.Account, error)
}

// DashboardEndpoint serves the role-scoped views of the portal. The routes are
// guarded: anonymous clients are redirected to the login page, logged-in clients
// with the wrong role to their own dashboard.
type DashboardEndpoint struct {
	authenticator Authenticator
	session       Session
	userService   DashboardUserService
}

func NewDashboardEndpoint(
	authenticator Authenticator,
	session Session,
	userService DashboardUserService,
) DashboardEndpoint {
	return DashboardEndpoint{
		authenticator: authenticator,
		session:       session,
		userService:   userService,
	}
}

func (e DashboardEndpoint) GetName() string {
	return "DashboardEndpoint"
}

func (e DashboardEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/views")

	apiGroup.With(e.authenticator.RequireRole(domain.RoleUser)).
		HandleFunc("GET /dashboard", e.handleDashboardGet())
	apiGroup.With(e.authenticator.RequireRole(domain.RoleAdmin)).
		HandleFunc("GET /admin", e.handleAdminDashboardGet())
}

// handleDashboardGet returns the view data of the inventory dashboard.
func (e DashboardEndpoint) handleDashboardGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := e.session.GetSubject(r.Context())

		respond.JSON(w, http.StatusOK, model.DashboardView{
			Profile: model.NewSessionInfo(subject),
		})
	}
}

// handleAdminDashboardGet returns the view data of the administration dashboard.
func (e DashboardEndpoint) handleAdminDashboardGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := e.session.GetSubject(r.Context())

		view := model.AdminDashboardView{
			Profile: model.NewSessionInfo(subject),
		}

		// the account count is only available with the embedded user directory
		if e.userService != nil {
			accounts, err := e.userService.GetAllAccounts(r.Context())
			if err != nil {
				respond.JSON(w, http.StatusInternalServerError,
					model.Error{Code: http.StatusInternalServerError, Message: err.Error()})
				return
			}
			view.TotalAccounts = len(accounts)
		}

		respond.JSON(w, http.StatusOK, view)
	}
}
