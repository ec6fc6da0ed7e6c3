package config

import (
	"log/slog"
	"regexp"
)

// Auth contains all authentication providers.
type Auth struct {
	// OpenIDConnect contains a list of OpenID Connect providers.
	OpenIDConnect []OpenIDConnectProvider `yaml:"oidc"`
	// OAuth contains a list of plain OAuth providers.
	OAuth []OAuthProvider `yaml:"oauth"`
	// CallbackUrlPrefix is prepended to the OAuth callback route, e.g. /api/v0.
	CallbackUrlPrefix string `yaml:"callback_url_prefix"`
	// MinPasswordLength is the minimum password length for directory accounts.
	MinPasswordLength int `yaml:"min_password_length"`
}

// OauthFields maps claim names of the user-info endpoint to identity fields.
type OauthFields struct {
	// UserIdentifier is the name of the claim that contains the stable user identifier.
	UserIdentifier string `yaml:"user_identifier"`
	// Email is the name of the claim that contains the user's email address.
	Email string `yaml:"email"`
	// DisplayName is the name of the claim that contains the user's display name.
	DisplayName string `yaml:"display_name"`
	// AvatarUrl is the name of the claim that contains the user's avatar image URL.
	AvatarUrl string `yaml:"avatar_url"`
	// IsAdmin is the name of the claim that contains the admin flag.
	// If the value matches the admin_value_regex, the user is an admin.
	IsAdmin string `yaml:"is_admin"`
	// UserGroups is the name of the claim that contains the user's groups.
	// If one of the values matches the admin_group_regex, the user is an admin.
	UserGroups string `yaml:"user_groups"`
}

// OauthAdminMapping contains all necessary information to extract information about
// administrative privileges from the user info claims.
//
// Admin rights are granted if the `is_admin` claim matches admin_value_regex, or if
// one of the groups listed in the `user_groups` claim matches admin_group_regex.
type OauthAdminMapping struct {
	// If the regex specified in that field matches the contents of the is_admin claim, the user is an admin.
	AdminValueRegex string `yaml:"admin_value_regex"`

	// If any of the groups listed in the user_groups claim matches this regex, the user is an admin.
	AdminGroupRegex string `yaml:"admin_group_regex"`

	// internal cache fields

	adminValueRegex *regexp.Regexp
	adminGroupRegex *regexp.Regexp
}

// GetAdminValueRegex returns the compiled regular expression for the admin_value_regex field.
// If the field is empty, the default value "^true$" is used.
func (o *OauthAdminMapping) GetAdminValueRegex() *regexp.Regexp {
	if o.adminValueRegex != nil {
		return o.adminValueRegex // return cached value
	}

	if o.AdminValueRegex == "" {
		o.adminValueRegex = regexp.MustCompile("^true$") // default value is "true"
		return o.adminValueRegex
	}

	adminRegex, err := regexp.Compile(o.AdminValueRegex)
	if err != nil {
		slog.Error("failed to compile admin_value_regex", "error", err)
		panic("failed to compile admin_value_regex")
	}
	o.adminValueRegex = adminRegex

	return o.adminValueRegex
}

// GetAdminGroupRegex returns the compiled regular expression for the admin_group_regex field.
// If the field is empty, the default value "^invenpulse_admins$" is used.
func (o *OauthAdminMapping) GetAdminGroupRegex() *regexp.Regexp {
	if o.adminGroupRegex != nil {
		return o.adminGroupRegex // return cached value
	}

	if o.AdminGroupRegex == "" {
		o.adminGroupRegex = regexp.MustCompile("^invenpulse_admins$")
		return o.adminGroupRegex
	}

	groupRegex, err := regexp.Compile(o.AdminGroupRegex)
	if err != nil {
		slog.Error("failed to compile admin_group_regex", "error", err)
		panic("failed to compile admin_group_regex")
	}
	o.adminGroupRegex = groupRegex

	return o.adminGroupRegex
}

// OpenIDConnectProvider contains the configuration for an OpenID Connect provider.
type OpenIDConnectProvider struct {
	// ProviderName is an internal name that is used to distinguish oauth endpoints. It must not contain spaces or special characters.
	ProviderName string `yaml:"provider_name"`

	// DisplayName is shown to the user on the login page. If it is empty, ProviderName will be displayed.
	DisplayName string `yaml:"display_name"`

	// BaseUrl is the base URL of the OIDC provider, e.g. https://accounts.google.com.
	BaseUrl string `yaml:"base_url"`

	// ClientID is the application's ID.
	ClientID string `yaml:"client_id"`

	// ClientSecret is the application's secret.
	ClientSecret string `yaml:"client_secret"`

	// ExtraScopes specifies optional requested permissions.
	ExtraScopes []string `yaml:"extra_scopes"`

	// AllowedDomains defines the list of allowed email domains.
	AllowedDomains []string `yaml:"allowed_domains"`

	// FieldMap is used to map the names of the user-info endpoint claims to identity fields.
	FieldMap OauthFields `yaml:"field_map"`

	// AdminMapping contains all necessary information to extract information about administrative privileges
	// from the user info claims.
	AdminMapping OauthAdminMapping `yaml:"admin_mapping"`

	// If RegistrationEnabled is set to true, missing accounts will be created in the directory.
	RegistrationEnabled bool `yaml:"registration_enabled"`

	// If LogUserInfo is set to true, the user info retrieved from the OIDC provider will be logged in debug level.
	LogUserInfo bool `yaml:"log_user_info"`
}

// OAuthProvider contains the configuration for a plain OAuth provider.
type OAuthProvider struct {
	// ProviderName is an internal name that is used to distinguish oauth endpoints. It must not contain spaces or special characters.
	ProviderName string `yaml:"provider_name"`

	// DisplayName is shown to the user on the login page. If it is empty, ProviderName will be displayed.
	DisplayName string `yaml:"display_name"`

	// ClientID is the application's ID.
	ClientID string `yaml:"client_id"`

	// ClientSecret is the application's secret.
	ClientSecret string `yaml:"client_secret"`

	// AuthURL is the URL to request OAuth user authorization.
	AuthURL string `yaml:"auth_url"`
	// TokenURL is the URL to request a token.
	TokenURL string `yaml:"token_url"`
	// UserInfoURL is the URL to request user information.
	UserInfoURL string `yaml:"user_info_url"`
	// RevokeURL is the URL to revoke an access token on logout. Optional.
	RevokeURL string `yaml:"revoke_url"`

	// Scopes specifies optional requested permissions.
	Scopes []string `yaml:"scopes"`

	// AllowedDomains defines the list of allowed email domains.
	AllowedDomains []string `yaml:"allowed_domains"`

	// FieldMap is used to map the names of the user-info endpoint claims to identity fields.
	FieldMap OauthFields `yaml:"field_map"`

	// AdminMapping contains all necessary information to extract information about administrative privileges
	// from the user info claims.
	AdminMapping OauthAdminMapping `yaml:"admin_mapping"`

	// If RegistrationEnabled is set to true, missing accounts will be created in the directory.
	RegistrationEnabled bool `yaml:"registration_enabled"`

	// If LogUserInfo is set to true, the user info retrieved from the OAuth provider will be logged in debug level.
	LogUserInfo bool `yaml:"log_user_info"`
}
