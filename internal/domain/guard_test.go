package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize_Anonymous(t *testing.T) {
	paths := DefaultRoutePaths()

	for _, required := range []Role{RoleUser, RoleAdmin} {
		decision := Authorize(required, Anonymous(), paths)
		assert.False(t, decision.Allowed)
		assert.Equal(t, "/login", decision.RedirectTo)
	}
}

func TestAuthorize_RoleMatrix(t *testing.T) {
	paths := DefaultRoutePaths()

	userSubject := Authenticated(Identity{Email: "user@invenpulse.dev", Role: RoleUser})
	adminSubject := Authenticated(Identity{Email: "admin@invenpulse.dev", Role: RoleAdmin})

	// matching role passes
	assert.True(t, Authorize(RoleUser, userSubject, paths).Allowed)
	assert.True(t, Authorize(RoleAdmin, adminSubject, paths).Allowed)

	// admins are routed to their own dashboard instead of user views
	decision := Authorize(RoleUser, adminSubject, paths)
	assert.False(t, decision.Allowed)
	assert.Equal(t, "/admin", decision.RedirectTo)

	// regular users are bounced from admin views to their own dashboard
	decision = Authorize(RoleAdmin, userSubject, paths)
	assert.False(t, decision.Allowed)
	assert.Equal(t, "/dashboard", decision.RedirectTo)
}

func TestAuthorize_CustomPaths(t *testing.T) {
	paths := RoutePaths{
		Login:          "/signin",
		UserDashboard:  "/home",
		AdminDashboard: "/ops",
	}

	decision := Authorize(RoleUser, Anonymous(), paths)
	assert.Equal(t, "/signin", decision.RedirectTo)

	userSubject := Authenticated(Identity{Role: RoleUser})
	decision = Authorize(RoleAdmin, userSubject, paths)
	assert.Equal(t, "/home", decision.RedirectTo)
}

func TestDashboardFor(t *testing.T) {
	paths := DefaultRoutePaths()

	assert.Equal(t, "/dashboard", paths.DashboardFor(RoleUser))
	assert.Equal(t, "/admin", paths.DashboardFor(RoleAdmin))
}
