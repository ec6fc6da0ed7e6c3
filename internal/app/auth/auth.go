package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/audit"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/config"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
)

// region dependencies

// UserDirectory is the user store that backs password logins and account
// provisioning. It is either the embedded directory or an external user service.
type UserDirectory interface {
	// Authenticate verifies an email and password pair.
	Authenticate(ctx context.Context, email, password string) (*domain.Account, error)
	// GetAccountByEmail returns an account by its email address.
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	// RegisterAccount creates a new account.
	RegisterAccount(ctx context.Context, account *domain.Account) error
	// UpdateAccountInfo updates the profile fields of an existing account.
	UpdateAccountInfo(ctx context.Context, account *domain.Account) (*domain.Account, error)
}

type EventBus interface {
	// Publish sends a message to the message bus.
	Publish(topic string, args ...any)
}

// endregion dependencies

// AuthenticatorOauth is the interface for all OAuth authenticators.
type AuthenticatorOauth interface {
	// GetName returns the name of the authenticator.
	GetName() string
	// GetType returns the type of the authenticator. It can be either AuthenticatorTypeOAuth or AuthenticatorTypeOidc.
	GetType() domain.AuthenticatorType
	// AuthCodeURL returns the URL for the authentication flow.
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	// Exchange exchanges the OAuth code for an access token.
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	// GetUserInfo fetches the user information from the OAuth or OIDC provider.
	GetUserInfo(ctx context.Context, token *oauth2.Token, nonce string) (map[string]any, error)
	// ParseUserInfo parses the raw user information into a domain.AuthenticatorUserInfo struct.
	ParseUserInfo(raw map[string]any) (*domain.AuthenticatorUserInfo, error)
	// RegistrationEnabled returns whether registration is enabled for the OAuth authenticator.
	RegistrationEnabled() bool
	// GetAllowedDomains returns the list of whitelisted email domains.
	GetAllowedDomains() []string
	// RevokeToken revokes the given access token at the provider. Best effort.
	RevokeToken(ctx context.Context, token *oauth2.Token) error
}

// Authenticator is the main entry point for all authentication related tasks.
// This includes password authentication against the user directory and external
// authentication providers (OIDC, OAuth).
type Authenticator struct {
	cfg *config.Auth
	bus EventBus

	oauthAuthenticators map[string]AuthenticatorOauth

	// URL prefix for the callback endpoints, this is a combination of the external URL and the API prefix
	callbackUrlPrefix string

	callbackUrl *url.URL

	directory UserDirectory
}

// NewAuthenticator creates a new Authenticator instance.
func NewAuthenticator(cfg *config.Auth, extUrl string, bus EventBus, directory UserDirectory) (
	*Authenticator,
	error,
) {
	a := &Authenticator{
		cfg:                 cfg,
		bus:                 bus,
		directory:           directory,
		callbackUrlPrefix:   fmt.Sprintf("%s%s", extUrl, cfg.CallbackUrlPrefix),
		oauthAuthenticators: make(map[string]AuthenticatorOauth, len(cfg.OpenIDConnect)+len(cfg.OAuth)),
	}

	parsedExtUrl, err := url.Parse(a.callbackUrlPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to parse external URL: %w", err)
	}
	a.callbackUrl = parsedExtUrl

	return a, nil
}

// StartBackgroundJobs starts the background jobs for the authenticator.
// It sets up the external authentication providers (OIDC, OAuth) and retries in case of errors.
func (a *Authenticator) StartBackgroundJobs(ctx context.Context) {
	go func() {
		slog.Debug("setting up external auth providers...")

		// Initialize local copies of authentication providers to allow retry in case of errors
		oidcQueue := a.cfg.OpenIDConnect
		oauthQueue := a.cfg.OAuth

		// Immediate attempt
		failedOidc, failedOauth := a.setupExternalAuthProviders(oidcQueue, oauthQueue)
		if len(failedOidc) == 0 && len(failedOauth) == 0 {
			slog.Info("successfully setup all external auth providers")
			return
		}

		// Prepare for retries with only the failed ones
		oidcQueue = failedOidc
		oauthQueue = failedOauth
		slog.Warn("failed to setup some external auth providers, retrying in 30 seconds",
			"failedOidc", len(failedOidc), "failedOauth", len(failedOauth))

		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				failedOidc, failedOauth := a.setupExternalAuthProviders(oidcQueue, oauthQueue)
				if len(failedOidc) > 0 || len(failedOauth) > 0 {
					slog.Warn("failed to setup some external auth providers, retrying in 30 seconds",
						"failedOidc", len(failedOidc), "failedOauth", len(failedOauth))
					// Retry failed providers
					oidcQueue = failedOidc
					oauthQueue = failedOauth
				} else {
					slog.Info("successfully setup all external auth providers")
					return // Exit goroutine if all providers are set up successfully
				}
			case <-ctx.Done():
				slog.Info("context cancelled, stopping setup of external auth providers")
				return // Exit goroutine if context is cancelled
			}
		}
	}()
}

func (a *Authenticator) setupExternalAuthProviders(
	oidcProviders []config.OpenIDConnectProvider,
	oauthProviders []config.OAuthProvider,
) (
	[]config.OpenIDConnectProvider,
	[]config.OAuthProvider,
) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var failedOidc []config.OpenIDConnectProvider
	var failedOauth []config.OAuthProvider

	for i := range oidcProviders { // OIDC
		providerCfg := &oidcProviders[i]
		providerId := strings.ToLower(providerCfg.ProviderName)

		if _, exists := a.oauthAuthenticators[providerId]; exists {
			// this is an unrecoverable error, we cannot register the same provider twice
			slog.Error("OIDC auth provider is already registered", "name", providerId)
			continue // skip this provider
		}

		redirectUrl := *a.callbackUrl
		redirectUrl.Path = path.Join(redirectUrl.Path, "/auth/login/", providerId, "/callback")

		provider, err := newOidcAuthenticator(ctx, redirectUrl.String(), providerCfg)
		if err != nil {
			failedOidc = append(failedOidc, oidcProviders[i])
			slog.Error("failed to setup oidc authentication provider", "name", providerId, "error", err)
			continue
		}
		a.oauthAuthenticators[providerId] = provider
	}
	for i := range oauthProviders { // PLAIN OAUTH
		providerCfg := &oauthProviders[i]
		providerId := strings.ToLower(providerCfg.ProviderName)

		if _, exists := a.oauthAuthenticators[providerId]; exists {
			// this is an unrecoverable error, we cannot register the same provider twice
			slog.Error("OAUTH auth provider is already registered", "name", providerId)
			continue // skip this provider
		}

		redirectUrl := *a.callbackUrl
		redirectUrl.Path = path.Join(redirectUrl.Path, "/auth/login/", providerId, "/callback")

		provider, err := newPlainOauthAuthenticator(ctx, redirectUrl.String(), providerCfg)
		if err != nil {
			failedOauth = append(failedOauth, oauthProviders[i])
			slog.Error("failed to setup oauth authentication provider", "name", providerId, "error", err)
			continue
		}
		a.oauthAuthenticators[providerId] = provider
	}

	return failedOidc, failedOauth
}

// GetExternalLoginProviders returns a list of all available external login providers.
func (a *Authenticator) GetExternalLoginProviders(_ context.Context) []domain.LoginProviderInfo {
	authProviders := make([]domain.LoginProviderInfo, 0, len(a.cfg.OAuth)+len(a.cfg.OpenIDConnect))

	for _, provider := range a.cfg.OpenIDConnect {
		providerId := strings.ToLower(provider.ProviderName)
		providerName := provider.DisplayName
		if providerName == "" {
			providerName = provider.ProviderName
		}
		authProviders = append(authProviders, domain.LoginProviderInfo{
			Identifier:  providerId,
			Name:        providerName,
			ProviderUrl: fmt.Sprintf("/auth/login/%s/init", providerId),
			CallbackUrl: fmt.Sprintf("/auth/login/%s/callback", providerId),
		})
	}

	for _, provider := range a.cfg.OAuth {
		providerId := strings.ToLower(provider.ProviderName)
		providerName := provider.DisplayName
		if providerName == "" {
			providerName = provider.ProviderName
		}
		authProviders = append(authProviders, domain.LoginProviderInfo{
			Identifier:  providerId,
			Name:        providerName,
			ProviderUrl: fmt.Sprintf("/auth/login/%s/init", providerId),
			CallbackUrl: fmt.Sprintf("/auth/login/%s/callback", providerId),
		})
	}

	return authProviders
}

// region password authentication

// PlainLogin performs a password authentication against the user directory. The email
// and password are trimmed before usage. If the login is successful, the account is
// returned, otherwise an error.
func (a *Authenticator) PlainLogin(ctx context.Context, email, password string) (*domain.Account, error) {
	// Validate form input
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return nil, fmt.Errorf("missing email or password")
	}

	ctx = domain.SetUserInfo(ctx, domain.SystemAdminContextUserInfo())

	// The provenance of the account is checked before any credential is used. An
	// account provisioned through an external provider must fail with a precise
	// error, not a generic credential failure.
	existing, err := a.directory.GetAccountByEmail(ctx, email)
	if err == nil && existing.AuthMethod != domain.AuthMethodPassword {
		err = domain.ErrWrongAuthMethod
	}
	if err != nil {
		a.bus.Publish(app.TopicAuditLoginFailed, domain.AuditEventWrapper[audit.AuthEvent]{
			Ctx:    ctx,
			Source: "plain",
			Event: audit.AuthEvent{
				Email: email, Error: err.Error(),
			},
		})
		return nil, fmt.Errorf("login failed: %w", err)
	}

	account, err := a.directory.Authenticate(ctx, email, password)
	if err != nil {
		a.bus.Publish(app.TopicAuditLoginFailed, domain.AuditEventWrapper[audit.AuthEvent]{
			Ctx:    ctx,
			Source: "plain",
			Event: audit.AuthEvent{
				Email: email, Error: err.Error(),
			},
		})
		return nil, fmt.Errorf("login failed: %w", err)
	}

	a.bus.Publish(app.TopicAuthLogin, account.Identifier)
	a.bus.Publish(app.TopicAuditLoginSuccess, domain.AuditEventWrapper[audit.AuthEvent]{
		Ctx:    ctx,
		Source: "plain",
		Event: audit.AuthEvent{
			Email: account.Email,
		},
	})

	return account, nil
}

// endregion password authentication

// region oauth authentication

// OauthLoginStep1 starts the oauth authentication flow by returning the authentication URL, state and nonce.
func (a *Authenticator) OauthLoginStep1(_ context.Context, providerId string) (
	authCodeUrl, state, nonce string,
	err error,
) {
	oauthProvider, ok := a.oauthAuthenticators[providerId]
	if !ok {
		return "", "", "", fmt.Errorf("missing oauth provider %s", providerId)
	}

	// Prepare authentication flow, set state cookies
	state, err = a.randString(16)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to generate state: %w", err)
	}

	switch oauthProvider.GetType() {
	case domain.AuthenticatorTypeOAuth:
		authCodeUrl = oauthProvider.AuthCodeURL(state)
	case domain.AuthenticatorTypeOidc:
		nonce, err = a.randString(16)
		if err != nil {
			return "", "", "", fmt.Errorf("failed to generate nonce: %w", err)
		}

		authCodeUrl = oauthProvider.AuthCodeURL(state, oidc.Nonce(nonce))
	}

	return
}

func (a *Authenticator) randString(nByte int) (string, error) {
	b := make([]byte, nByte)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func isDomainAllowed(email string, allowedDomains []string) bool {
	if len(allowedDomains) == 0 {
		return true
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	emailDomain := strings.ToLower(parts[1])
	for _, allowed := range allowedDomains {
		if emailDomain == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// OauthLoginStep2 finishes the oauth authentication flow by exchanging the code for an access token and
// fetching the user information. The token is returned alongside the account so the caller can keep
// it for later revocation.
func (a *Authenticator) OauthLoginStep2(ctx context.Context, providerId, nonce, code string) (
	*domain.Account,
	*oauth2.Token,
	error,
) {
	oauthProvider, ok := a.oauthAuthenticators[providerId]
	if !ok {
		return nil, nil, fmt.Errorf("missing oauth provider %s", providerId)
	}

	oauth2Token, err := oauthProvider.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to exchange code: %w", err)
	}

	rawUserInfo, err := oauthProvider.GetUserInfo(ctx, oauth2Token, nonce)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to fetch user information: %w", err)
	}

	userInfo, err := oauthProvider.ParseUserInfo(rawUserInfo)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to parse user information: %w", err)
	}

	if !isDomainAllowed(userInfo.Email, oauthProvider.GetAllowedDomains()) {
		return nil, nil, fmt.Errorf("user %s is not in allowed domains", userInfo.Email)
	}

	ctx = domain.SetUserInfo(ctx,
		domain.SystemAdminContextUserInfo()) // switch to admin user context to check if account exists
	account, err := a.processUserInfo(ctx, userInfo, domain.AuthMethod("oauth-"+providerId),
		oauthProvider.RegistrationEnabled())
	if err != nil {
		a.bus.Publish(app.TopicAuditLoginFailed, domain.AuditEventWrapper[audit.AuthEvent]{
			Ctx:    ctx,
			Source: "oauth " + providerId,
			Event: audit.AuthEvent{
				Email: userInfo.Email,
				Error: err.Error(),
			},
		})
		return nil, nil, fmt.Errorf("unable to process user information: %w", err)
	}

	a.bus.Publish(app.TopicAuthLogin, account.Identifier)
	a.bus.Publish(app.TopicAuditLoginSuccess, domain.AuditEventWrapper[audit.AuthEvent]{
		Ctx:    ctx,
		Source: "oauth " + providerId,
		Event: audit.AuthEvent{
			Email: account.Email,
		},
	})

	return account, oauth2Token, nil
}

// Logout publishes the logout events and revokes the provider access token of OAuth
// sessions. Revocation failures are logged but never block the logout.
func (a *Authenticator) Logout(ctx context.Context, email, providerId, accessToken string) {
	if providerId != "" && accessToken != "" {
		if oauthProvider, ok := a.oauthAuthenticators[providerId]; ok {
			err := oauthProvider.RevokeToken(ctx, &oauth2.Token{AccessToken: accessToken})
			if err != nil {
				slog.Warn("failed to revoke provider access token",
					"provider", providerId, "error", err)
			}
		}
	}

	a.bus.Publish(app.TopicAuthLogout, email)
	a.bus.Publish(app.TopicAuditLogout, domain.AuditEventWrapper[audit.AuthEvent]{
		Ctx:    ctx,
		Source: "session",
		Event: audit.AuthEvent{
			Email: email,
		},
	})
}

func (a *Authenticator) processUserInfo(
	ctx context.Context,
	userInfo *domain.AuthenticatorUserInfo,
	authMethod domain.AuthMethod,
	withReg bool,
) (*domain.Account, error) {
	// Search account in the directory
	account, err := a.directory.GetAccountByEmail(ctx, userInfo.Email)
	switch {
	case errors.Is(err, domain.ErrNotFound) && withReg:
		account, err = a.registerNewAccount(ctx, userInfo, authMethod)
		if err != nil {
			return nil, fmt.Errorf("failed to register account: %w", err)
		}
	case err != nil && errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("registration disabled, cannot create missing account: %w", err)
	case err != nil:
		return nil, fmt.Errorf("unable to load account: %w", err)
	default:
		// The account exists. An account that was created through the password flow
		// must not be hijacked by an OAuth login with the same email address.
		if account.AuthMethod != authMethod {
			return nil, fmt.Errorf("account %s uses %s: %w",
				account.Email, account.AuthMethod, domain.ErrWrongAuthMethod)
		}

		err = a.updateExternalAccount(ctx, account, userInfo)
		if err != nil {
			return nil, fmt.Errorf("failed to update account: %w", err)
		}
	}

	return account, nil
}

func (a *Authenticator) registerNewAccount(
	ctx context.Context,
	userInfo *domain.AuthenticatorUserInfo,
	authMethod domain.AuthMethod,
) (*domain.Account, error) {
	role := domain.RoleUser
	if userInfo.IsAdmin {
		role = domain.RoleAdmin
	}

	account := &domain.Account{
		Email:       strings.ToLower(userInfo.Email),
		DisplayName: userInfo.DisplayName,
		AvatarUrl:   userInfo.AvatarUrl,
		Role:        role,
		AuthMethod:  authMethod,
	}

	err := a.directory.RegisterAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to register new account: %w", err)
	}

	slog.Debug("registered account from external authentication provider",
		"email", account.Email,
		"role", account.Role,
		"method", authMethod)

	return account, nil
}

func (a *Authenticator) updateExternalAccount(
	ctx context.Context,
	existing *domain.Account,
	userInfo *domain.AuthenticatorUserInfo,
) error {
	isChanged := false
	if userInfo.DisplayName != "" && existing.DisplayName != userInfo.DisplayName {
		existing.DisplayName = userInfo.DisplayName
		isChanged = true
	}
	if userInfo.AvatarUrl != "" && existing.AvatarUrl != userInfo.AvatarUrl {
		existing.AvatarUrl = userInfo.AvatarUrl
		isChanged = true
	}

	role := domain.RoleUser
	if userInfo.IsAdmin {
		role = domain.RoleAdmin
	}
	if existing.Role != role {
		existing.Role = role
		isChanged = true
	}

	if isChanged {
		_, err := a.directory.UpdateAccountInfo(ctx, existing)
		if err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}

		slog.Debug("updated account with data from external authentication provider",
			"email", existing.Email,
			"role", existing.Role)
	}

	return nil
}

// endregion oauth authentication
