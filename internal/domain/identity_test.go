package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity_HasAvatar(t *testing.T) {
	assert.False(t, Identity{}.HasAvatar())
	assert.False(t, Identity{AvatarUrl: AvatarNone}.HasAvatar())
	assert.True(t, Identity{AvatarUrl: "https://cdn.invenpulse.dev/a.png"}.HasAvatar())
}

func TestIdentity_Initials(t *testing.T) {
	assert.Equal(t, "JD", Identity{DisplayName: "Jane Doe"}.Initials())
	assert.Equal(t, "JD", Identity{DisplayName: "Jane Q. Doe"}.Initials())
	assert.Equal(t, "J", Identity{DisplayName: "jane"}.Initials())
	assert.Equal(t, "J", Identity{Email: "jane@invenpulse.dev"}.Initials())
	assert.Equal(t, "?", Identity{}.Initials())
}

func TestSubject_ZeroValueIsAnonymous(t *testing.T) {
	var s Subject

	assert.False(t, s.LoggedIn())
	assert.Equal(t, Role(""), s.Role())

	_, ok := s.Identity()
	assert.False(t, ok)
}

func TestSubject_Authenticated(t *testing.T) {
	id := Identity{
		DisplayName: "Jane Doe",
		Email:       "jane@invenpulse.dev",
		Role:        RoleAdmin,
		AuthMethod:  AuthMethodOAuthGoogle,
	}
	s := Authenticated(id)

	assert.True(t, s.LoggedIn())
	assert.Equal(t, RoleAdmin, s.Role())

	got, ok := s.Identity()
	assert.True(t, ok)
	assert.Equal(t, id, got)
}
