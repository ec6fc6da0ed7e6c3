package model

import (
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
)

type LoginProviderInfo struct {
	Identifier  string `json:"Identifier" example:"google"`
	Name        string `json:"Name" example:"Login with Google"`
	ProviderUrl string `json:"ProviderUrl" example:"/auth/login/google/init"`
	CallbackUrl string `json:"CallbackUrl" example:"/auth/login/google/callback"`
}

func NewLoginProviderInfo(src *domain.LoginProviderInfo) *LoginProviderInfo {
	return &LoginProviderInfo{
		Identifier:  src.Identifier,
		Name:        src.Name,
		ProviderUrl: src.ProviderUrl,
		CallbackUrl: src.CallbackUrl,
	}
}

func NewLoginProviderInfos(src []domain.LoginProviderInfo) []LoginProviderInfo {
	providers := make([]LoginProviderInfo, len(src))
	for i := range src {
		providers[i] = *NewLoginProviderInfo(&src[i])
	}
	return providers
}

type LoginRequest struct {
	Email    string `json:"Email" validate:"required,email"`
	Password string `json:"Password" validate:"required,min=4"`
}

type SignupRequest struct {
	Email       string `json:"Email" validate:"required,email"`
	Password    string `json:"Password" validate:"required,min=4"`
	DisplayName string `json:"DisplayName" validate:"omitempty,max=128"`
}

type SessionInfo struct {
	LoggedIn    bool    `json:"LoggedIn"`
	IsAdmin     bool    `json:"IsAdmin,omitempty"`
	Role        *string `json:"Role,omitempty"`
	DisplayName *string `json:"DisplayName,omitempty"`
	Email       *string `json:"Email,omitempty"`
	AvatarUrl   *string `json:"AvatarUrl,omitempty"`
	Initials    *string `json:"Initials,omitempty"`
	AuthMethod  *string `json:"AuthMethod,omitempty"`
}

// NewSessionInfo converts a session subject into its API representation.
// An anonymous subject yields a logged-out session info.
func NewSessionInfo(subject domain.Subject) SessionInfo {
	identity, ok := subject.Identity()
	if !ok {
		return SessionInfo{LoggedIn: false}
	}

	role := string(identity.Role)
	displayName := identity.DisplayName
	email := identity.Email
	initials := identity.Initials()
	authMethod := string(identity.AuthMethod)

	info := SessionInfo{
		LoggedIn:    true,
		IsAdmin:     identity.Role.IsAdmin(),
		Role:        &role,
		DisplayName: &displayName,
		Email:       &email,
		Initials:    &initials,
		AuthMethod:  &authMethod,
	}

	if identity.HasAvatar() {
		avatarUrl := identity.AvatarUrl
		info.AvatarUrl = &avatarUrl
	}

	return info
}

type OauthInitiationResponse struct {
	RedirectUrl string
	State       string
}
