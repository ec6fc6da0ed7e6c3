package handlers

import (
	"context"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/api/core/respond"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/api/v0/model"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
)

// auditEntryLimit caps the number of entries returned by the audit API.
const auditEntryLimit = 500

type AuditService interface {
	// GetAuditEntries returns the newest audit entries, newest first.
	GetAuditEntries(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

type AuditEndpoint struct {
	authenticator Authenticator
	auditService  AuditService
}

func NewAuditEndpoint(authenticator Authenticator, auditService AuditService) AuditEndpoint {
	return AuditEndpoint{
		authenticator: authenticator,
		auditService:  auditService,
	}
}

func (e AuditEndpoint) GetName() string {
	return "AuditEndpoint"
}

func (e AuditEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/audit")
	apiGroup.Use(e.authenticator.LoggedIn(ScopeAdmin))

	apiGroup.HandleFunc("GET /entries", e.handleEntriesGet())
}

// handleEntriesGet returns the newest audit entries.
func (e AuditEndpoint) handleEntriesGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := e.auditService.GetAuditEntries(r.Context(), auditEntryLimit)
		if err != nil {
			respond.JSON(w, http.StatusInternalServerError, model.Error{
				Code: http.StatusInternalServerError, Message: err.Error(),
			})
			return
		}

		respond.JSON(w, http.StatusOK, model.NewAuditEntries(entries))
	}
}
