package domain

// RoutePaths holds the redirect targets used by the route guard.
type RoutePaths struct {
	Login          string
	UserDashboard  string
	AdminDashboard string
}

// DefaultRoutePaths returns the frontend paths of the stock portal SPA.
func DefaultRoutePaths() RoutePaths {
	return RoutePaths{
		Login:          "/login",
		UserDashboard:  "/dashboard",
		AdminDashboard: "/admin",
	}
}

// DashboardFor returns the dashboard path for the given role.
func (p RoutePaths) DashboardFor(role Role) string {
	if role.IsAdmin() {
		return p.AdminDashboard
	}
	return p.UserDashboard
}

// GuardDecision is the result of a route guard evaluation. If Allowed is false,
// RedirectTo contains the path the client should be sent to instead.
type GuardDecision struct {
	Allowed    bool
	RedirectTo string
}

func Allow() GuardDecision {
	return GuardDecision{Allowed: true}
}

func RedirectTo(path string) GuardDecision {
	return GuardDecision{RedirectTo: path}
}

// Authorize gates access to a role-scoped view. It is a pure function of the current
// subject and the required role; it never errors.
//
// An anonymous subject is sent to the login page. A logged-in subject with the wrong
// role is sent to the dashboard of its own role rather than an error page. This also
// holds for admins, who are routed to the admin dashboard instead of user views.
func Authorize(required Role, subject Subject, paths RoutePaths) GuardDecision {
	identity, ok := subject.Identity()
	if !ok {
		return RedirectTo(paths.Login)
	}

	if identity.Role == required {
		return Allow()
	}

	return RedirectTo(paths.DashboardFor(identity.Role))
}
