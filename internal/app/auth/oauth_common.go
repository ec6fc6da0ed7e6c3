package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/tarunmanoharann/InvenPulse-sub000/internal"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/config"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
)

// parseOauthUserInfo parses the raw user info from the oauth provider and maps it to the internal user info struct
func parseOauthUserInfo(
	mapping config.OauthFields,
	adminMapping *config.OauthAdminMapping,
	raw map[string]any,
) (*domain.AuthenticatorUserInfo, error) {
	var isAdmin bool

	// first try to match the is_admin claim against the given regex
	if mapping.IsAdmin != "" {
		re := adminMapping.GetAdminValueRegex()
		if re.MatchString(strings.TrimSpace(internal.MapDefaultString(raw, mapping.IsAdmin, ""))) {
			isAdmin = true
		}
	}

	// next try to parse the user's groups
	if !isAdmin && mapping.UserGroups != "" && adminMapping.AdminGroupRegex != "" {
		userGroups := internal.MapDefaultStringSlice(raw, mapping.UserGroups, nil)
		re := adminMapping.GetAdminGroupRegex()
		for _, group := range userGroups {
			if re.MatchString(strings.TrimSpace(group)) {
				isAdmin = true
				break
			}
		}
	}

	userInfo := &domain.AuthenticatorUserInfo{
		Identifier:  domain.AccountIdentifier(internal.MapDefaultString(raw, mapping.UserIdentifier, "")),
		Email:       internal.MapDefaultString(raw, mapping.Email, ""),
		DisplayName: internal.MapDefaultString(raw, mapping.DisplayName, ""),
		AvatarUrl:   internal.MapDefaultString(raw, mapping.AvatarUrl, ""),
		IsAdmin:     isAdmin,
	}

	return userInfo, nil
}

// getOauthFieldMapping returns the field mapping for the oauth provider.
// The defaults follow the standard OIDC profile claims as used by Google.
func getOauthFieldMapping(f config.OauthFields) config.OauthFields {
	defaultMap := config.OauthFields{
		UserIdentifier: "sub",
		Email:          "email",
		DisplayName:    "name",
		AvatarUrl:      "picture",
		IsAdmin:        "admin_flag",
		UserGroups:     "", // by default, do not use user groups
	}
	if f.UserIdentifier != "" {
		defaultMap.UserIdentifier = f.UserIdentifier
	}
	if f.Email != "" {
		defaultMap.Email = f.Email
	}
	if f.DisplayName != "" {
		defaultMap.DisplayName = f.DisplayName
	}
	if f.AvatarUrl != "" {
		defaultMap.AvatarUrl = f.AvatarUrl
	}
	if f.IsAdmin != "" {
		defaultMap.IsAdmin = f.IsAdmin
	}
	if f.UserGroups != "" {
		defaultMap.UserGroups = f.UserGroups
	}

	return defaultMap
}

// revokeOauthToken posts the access token to the provider's revocation endpoint.
func revokeOauthToken(ctx context.Context, client *http.Client, revokeUrl string, token *oauth2.Token) error {
	if revokeUrl == "" {
		return nil // provider has no revocation endpoint
	}

	form := url.Values{}
	form.Set("token", token.AccessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeUrl, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create revocation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach revocation endpoint: %w", err)
	}
	defer internal.LogClose(response.Body)

	if response.StatusCode >= 400 {
		return fmt.Errorf("revocation endpoint returned status %d", response.StatusCode)
	}

	return nil
}
