package domain

import (
	"context"

	"golang.org/x/oauth2"
)

// LoginProviderInfo describes an OAuth login provider as exposed to the frontend.
type LoginProviderInfo struct {
	Identifier  string
	Name        string
	ProviderUrl string
	CallbackUrl string
}

// AuthenticatorUserInfo is the normalized profile extracted from an external
// authentication source (directory login or OAuth claims).
type AuthenticatorUserInfo struct {
	Identifier  AccountIdentifier
	Email       string
	DisplayName string
	AvatarUrl   string
	IsAdmin     bool
}

type AuthenticatorType string

const (
	AuthenticatorTypeOAuth AuthenticatorType = "oauth"
	AuthenticatorTypeOidc  AuthenticatorType = "oidc"
)

type OauthAuthenticator interface {
	GetName() string
	GetType() AuthenticatorType
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	GetUserInfo(ctx context.Context, token *oauth2.Token, nonce string) (map[string]any, error)
	ParseUserInfo(raw map[string]any) (*AuthenticatorUserInfo, error)
	RegistrationEnabled() bool
	RevokeToken(ctx context.Context, token *oauth2.Token) error
}
