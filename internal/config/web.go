package config

import (
	"strings"
	"time"
)

const defaultSessionLifetime = 24 * time.Hour

// RoutePathConfig contains the frontend paths that the route guard redirects to.
type RoutePathConfig struct {
	// Login is the path of the login view.
	Login string `yaml:"login"`
	// UserDashboard is the path of the inventory dashboard for regular users.
	UserDashboard string `yaml:"user_dashboard"`
	// AdminDashboard is the path of the administration dashboard.
	AdminDashboard string `yaml:"admin_dashboard"`
}

// WebConfig contains the configuration for the web server.
type WebConfig struct {
	// RequestLogging enables logging of all HTTP requests.
	RequestLogging bool `yaml:"request_logging"`
	// ExposeHostInfo sets whether the host information should be exposed in a response header.
	ExposeHostInfo bool `yaml:"expose_host_info"`
	// ExternalUrl is the URL where a client can access InvenPulse.
	// This is used for the callback URL of the OAuth providers.
	ExternalUrl string `yaml:"external_url"`
	// ListeningAddress is the address and port for the web server.
	ListeningAddress string `yaml:"listening_address"`
	// SessionIdentifier is the name of the session cookie.
	SessionIdentifier string `yaml:"session_identifier"`
	// SessionSecret is the session secret for the web frontend.
	SessionSecret string `yaml:"session_secret"`
	// SessionLifetime is the idle lifetime of a session before it expires.
	SessionLifetime time.Duration `yaml:"session_lifetime"`
	// CsrfSecret is the CSRF secret.
	CsrfSecret string `yaml:"csrf_secret"`
	// SiteTitle is the title that is shown in the web frontend.
	SiteTitle string `yaml:"site_title"`
	// RoutePaths contains the frontend paths used for guard redirects.
	RoutePaths RoutePathConfig `yaml:"route_paths"`
	// CertFile is the path to the TLS certificate file.
	CertFile string `yaml:"cert_file"`
	// KeyFile is the path to the TLS certificate key file.
	KeyFile string `yaml:"key_file"`
}

func (c *WebConfig) Sanitize() {
	c.ExternalUrl = strings.TrimRight(c.ExternalUrl, "/")
}
