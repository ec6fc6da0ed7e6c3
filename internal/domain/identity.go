package domain

import "strings"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known role values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

type AuthMethod string

const (
	AuthMethodPassword    AuthMethod = "password"
	AuthMethodOAuthGoogle AuthMethod = "oauth-google"
)

// AvatarNone is the sentinel value for accounts without an avatar image.
// Consumers fall back to initials rendering.
const AvatarNone = "none"

// Identity is the normalized representation of a logged-in user, independent of the
// login path that produced it.
type Identity struct {
	DisplayName string
	Email       string
	AvatarUrl   string
	Role        Role
	AuthMethod  AuthMethod
}

// HasAvatar reports whether the identity carries a usable avatar URL.
func (i Identity) HasAvatar() bool {
	return i.AvatarUrl != "" && i.AvatarUrl != AvatarNone
}

// Initials returns up to two upper-case initials derived from the display name,
// used as the avatar fallback.
func (i Identity) Initials() string {
	fields := strings.Fields(i.DisplayName)
	switch len(fields) {
	case 0:
		if i.Email == "" {
			return "?"
		}
		return strings.ToUpper(i.Email[:1])
	case 1:
		return strings.ToUpper(fields[0][:1])
	default:
		return strings.ToUpper(fields[0][:1] + fields[len(fields)-1][:1])
	}
}

// Subject is the tagged variant Anonymous | Authenticated(Identity). The zero value
// is Anonymous.
type Subject struct {
	identity Identity
	loggedIn bool
}

func Anonymous() Subject {
	return Subject{}
}

func Authenticated(identity Identity) Subject {
	return Subject{identity: identity, loggedIn: true}
}

func (s Subject) LoggedIn() bool {
	return s.loggedIn
}

// Identity returns the authenticated identity. The second return value is false for
// the anonymous subject.
func (s Subject) Identity() (Identity, bool) {
	return s.identity, s.loggedIn
}

// Role returns the subject's role, or the empty role for the anonymous subject.
func (s Subject) Role() Role {
	if !s.loggedIn {
		return ""
	}
	return s.identity.Role
}
