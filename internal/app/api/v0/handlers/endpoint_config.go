package handlers

import (
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/api/core/respond"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/api/v0/model"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/config"
)

// ConfigEndpoint exposes the frontend-relevant parts of the configuration,
// for example whether the signup form should be shown.
type ConfigEndpoint struct {
	cfg *config.Config
}

func NewConfigEndpoint(cfg *config.Config) ConfigEndpoint {
	return ConfigEndpoint{cfg: cfg}
}

func (e ConfigEndpoint) GetName() string {
	return "ConfigEndpoint"
}

func (e ConfigEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/config")

	apiGroup.HandleFunc("GET /settings", e.handleSettingsGet())
}

// handleSettingsGet returns the public frontend settings.
func (e ConfigEndpoint) handleSettingsGet() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, model.Settings{
			SelfSignupAllowed: e.cfg.Core.SelfSignupAllowed,
			MinPasswordLength: e.cfg.Auth.MinPasswordLength,
		})
	}
}
