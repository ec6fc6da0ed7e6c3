package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/tarunmanoharann/InvenPulse-sub000/internal/config"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
)

type fakeAuthService struct {
	account *domain.Account
	err     error

	authCodeUrl string
	state       string
	nonce       string

	loggedOutEmail    string
	loggedOutProvider string
	revokedToken      string
}

func (f *fakeAuthService) GetExternalLoginProviders(context.Context) []domain.LoginProviderInfo {
	return []domain.LoginProviderInfo{
		{Identifier: "google", Name: "Google", ProviderUrl: "/auth/login/google/init"},
	}
}

func (f *fakeAuthService) PlainLogin(_ context.Context, _, _ string) (*domain.Account, error) {
	return f.account, f.err
}

func (f *fakeAuthService) OauthLoginStep1(context.Context, string) (string, string, string, error) {
	return f.authCodeUrl, f.state, f.nonce, f.err
}

func (f *fakeAuthService) OauthLoginStep2(context.Context, string, string, string) (
	*domain.Account, *oauth2.Token, error,
) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.account, &oauth2.Token{AccessToken: "provider-token"}, nil
}

func (f *fakeAuthService) Logout(_ context.Context, email, providerId, accessToken string) {
	f.loggedOutEmail = email
	f.loggedOutProvider = providerId
	f.revokedToken = accessToken
}

type fakeSignupService struct {
	account *domain.Account
	err     error
}

func (f *fakeSignupService) SignupAccount(_ context.Context, _, _, _ string) (*domain.Account, error) {
	return f.account, f.err
}

func passwordAccount() *domain.Account {
	return &domain.Account{
		Identifier:  "acc-1",
		Email:       "jane@invenpulse.dev",
		DisplayName: "Jane Doe",
		Role:        domain.RoleUser,
		AuthMethod:  domain.AuthMethodPassword,
	}
}

func newTestAuthEndpoint(
	session *fakeSession,
	authService AuthenticationService,
	signupService SignupService,
) AuthEndpoint {
	cfg := &config.Config{}
	cfg.Web.ExternalUrl = "http://localhost:8080"

	return NewAuthEndpoint(cfg, session, NewValidator(), authService, signupService)
}

func TestAuthEndpoint_LoginPost(t *testing.T) {
	session := &fakeSession{}
	e := newTestAuthEndpoint(session, &fakeAuthService{account: passwordAccount()}, nil)

	r := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"Email":"jane@invenpulse.dev","Password":"super-secret"}`))
	w := httptest.NewRecorder()
	e.handleLoginPost()(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"LoggedIn":true`)

	// the old session was discarded and the identity was set on a renewed token
	assert.True(t, session.destroyed)
	assert.True(t, session.renewed)
	identity, ok := session.subject.Identity()
	require.True(t, ok)
	assert.Equal(t, "jane@invenpulse.dev", identity.Email)
}

func TestAuthEndpoint_LoginPostInvalidCredentials(t *testing.T) {
	session := &fakeSession{}
	e := newTestAuthEndpoint(session, &fakeAuthService{err: domain.ErrInvalidCredentials}, nil)

	r := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"Email":"jane@invenpulse.dev","Password":"wrong-pass"}`))
	w := httptest.NewRecorder()
	e.handleLoginPost()(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, session.renewed)
}

func TestAuthEndpoint_LoginPostErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown account", fmt.Errorf("login failed: %w", domain.ErrNotFound), http.StatusNotFound},
		{"external provider account", fmt.Errorf("login failed: %w", domain.ErrWrongAuthMethod), http.StatusConflict},
		{"wrong password", fmt.Errorf("login failed: %w", domain.ErrInvalidCredentials), http.StatusUnauthorized},
		{"directory unreachable", fmt.Errorf("user service unreachable"), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &fakeSession{}
			e := newTestAuthEndpoint(session, &fakeAuthService{err: tt.err}, nil)

			r := httptest.NewRequest(http.MethodPost, "/auth/login",
				strings.NewReader(`{"Email":"jane@invenpulse.dev","Password":"super-secret"}`))
			w := httptest.NewRecorder()
			e.handleLoginPost()(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.False(t, session.renewed)
		})
	}
}

func TestAuthEndpoint_LoginPostSessionPersistFailure(t *testing.T) {
	session := &fakeSession{subjectErr: fmt.Errorf("session store gone")}
	e := newTestAuthEndpoint(session, &fakeAuthService{account: passwordAccount()}, nil)

	r := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"Email":"jane@invenpulse.dev","Password":"super-secret"}`))
	w := httptest.NewRecorder()
	e.handleLoginPost()(w, r)

	// a session that could not be persisted must not be reported as logged in
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), `"LoggedIn":true`)
}

func TestAuthEndpoint_LoginPostRejectsInvalidBody(t *testing.T) {
	e := newTestAuthEndpoint(&fakeSession{}, &fakeAuthService{}, nil)

	// not an email address
	r := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"Email":"not-an-email","Password":"super-secret"}`))
	w := httptest.NewRecorder()
	e.handleLoginPost()(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// malformed json
	r = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{`))
	w = httptest.NewRecorder()
	e.handleLoginPost()(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthEndpoint_LoginPostAlreadyLoggedIn(t *testing.T) {
	session := &fakeSession{subject: domain.Authenticated(userIdentity())}
	authService := &fakeAuthService{account: passwordAccount()}
	e := newTestAuthEndpoint(session, authService, nil)

	r := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"Email":"jane@invenpulse.dev","Password":"super-secret"}`))
	w := httptest.NewRecorder()
	e.handleLoginPost()(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already logged in")
	assert.False(t, session.destroyed)
}

func TestAuthEndpoint_SessionInfoGet(t *testing.T) {
	session := &fakeSession{subject: domain.Authenticated(adminIdentity())}
	e := newTestAuthEndpoint(session, &fakeAuthService{}, nil)

	w := httptest.NewRecorder()
	e.handleSessionInfoGet()(w, httptest.NewRequest(http.MethodGet, "/auth/session", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"IsAdmin":true`)
	assert.Contains(t, w.Body.String(), `"Initials":"JD"`)
}

func TestAuthEndpoint_SessionInfoGetAnonymous(t *testing.T) {
	e := newTestAuthEndpoint(&fakeSession{}, &fakeAuthService{}, nil)

	w := httptest.NewRecorder()
	e.handleSessionInfoGet()(w, httptest.NewRequest(http.MethodGet, "/auth/session", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"LoggedIn":false`)
}

func TestAuthEndpoint_ProvidersGet(t *testing.T) {
	e := newTestAuthEndpoint(&fakeSession{}, &fakeAuthService{}, nil)

	w := httptest.NewRecorder()
	e.handleExternalLoginProvidersGet()(w, httptest.NewRequest(http.MethodGet, "/auth/providers", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "google")
}

func TestAuthEndpoint_SignupPost(t *testing.T) {
	session := &fakeSession{}
	e := newTestAuthEndpoint(session, &fakeAuthService{}, &fakeSignupService{account: passwordAccount()})

	r := httptest.NewRequest(http.MethodPost, "/auth/signup",
		strings.NewReader(`{"Email":"jane@invenpulse.dev","Password":"super-secret","DisplayName":"Jane"}`))
	w := httptest.NewRecorder()
	e.handleSignupPost()(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, session.renewed)
}

func TestAuthEndpoint_SignupPostDisabled(t *testing.T) {
	e := newTestAuthEndpoint(&fakeSession{}, &fakeAuthService{},
		&fakeSignupService{err: &disabledError{}})

	r := httptest.NewRequest(http.MethodPost, "/auth/signup",
		strings.NewReader(`{"Email":"jane@invenpulse.dev","Password":"super-secret"}`))
	w := httptest.NewRecorder()
	e.handleSignupPost()(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

type disabledError struct{}

func (*disabledError) Error() string { return "account signup is disabled" }

func TestAuthEndpoint_LogoutPost(t *testing.T) {
	session := &fakeSession{subject: domain.Authenticated(userIdentity())}
	session.data.OauthProvider = "google"
	session.data.AccessToken = "provider-token"

	authService := &fakeAuthService{}
	e := newTestAuthEndpoint(session, authService, nil)

	w := httptest.NewRecorder()
	e.handleLogoutPost()(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, session.destroyed)
	assert.Equal(t, "jane@invenpulse.dev", authService.loggedOutEmail)
	assert.Equal(t, "google", authService.loggedOutProvider)
	assert.Equal(t, "provider-token", authService.revokedToken)
}

func TestAuthEndpoint_LogoutPostAnonymous(t *testing.T) {
	session := &fakeSession{}
	authService := &fakeAuthService{}
	e := newTestAuthEndpoint(session, authService, nil)

	w := httptest.NewRecorder()
	e.handleLogoutPost()(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "not logged in")
	assert.Empty(t, authService.loggedOutEmail)
}

func TestAuthEndpoint_OauthInitiateGet(t *testing.T) {
	session := &fakeSession{}
	e := newTestAuthEndpoint(session, &fakeAuthService{
		authCodeUrl: "https://provider.example.com/authorize",
		state:       "state-1",
		nonce:       "nonce-1",
	}, nil)

	r := httptest.NewRequest(http.MethodGet, "/auth/login/google/init", nil)
	r.SetPathValue("provider", "google")
	w := httptest.NewRecorder()
	e.handleOauthInitiateGet()(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://provider.example.com/authorize")
	assert.Equal(t, "state-1", session.data.OauthState)
	assert.Equal(t, "nonce-1", session.data.OauthNonce)
	assert.Equal(t, "google", session.data.OauthProvider)
}

func TestAuthEndpoint_OauthInitiateGetInvalidReturnUrl(t *testing.T) {
	e := newTestAuthEndpoint(&fakeSession{}, &fakeAuthService{}, nil)

	r := httptest.NewRequest(http.MethodGet,
		"/auth/login/google/init?return=https://evil.example.com/phish", nil)
	r.SetPathValue("provider", "google")
	w := httptest.NewRecorder()
	e.handleOauthInitiateGet()(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthEndpoint_OauthCallbackGet(t *testing.T) {
	session := &fakeSession{}
	session.data.OauthState = "state-1"
	session.data.OauthNonce = "nonce-1"
	session.data.OauthProvider = "google"

	account := passwordAccount()
	account.AuthMethod = domain.AuthMethodOAuthGoogle
	e := newTestAuthEndpoint(session, &fakeAuthService{account: account}, nil)

	r := httptest.NewRequest(http.MethodGet,
		"/auth/login/google/callback?code=auth-code&state=state-1", nil)
	r.SetPathValue("provider", "google")
	w := httptest.NewRecorder()
	e.handleOauthCallbackGet()(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, session.renewed)
	// the provider token is kept server-side for later revocation
	assert.Equal(t, "provider-token", session.data.AccessToken)
	assert.Equal(t, "google", session.data.OauthProvider)
}

func TestAuthEndpoint_OauthCallbackGetStateMismatch(t *testing.T) {
	session := &fakeSession{}
	session.data.OauthState = "state-1"
	session.data.OauthProvider = "google"

	e := newTestAuthEndpoint(session, &fakeAuthService{account: passwordAccount()}, nil)

	r := httptest.NewRequest(http.MethodGet,
		"/auth/login/google/callback?code=auth-code&state=forged-state", nil)
	r.SetPathValue("provider", "google")
	w := httptest.NewRecorder()
	e.handleOauthCallbackGet()(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, session.renewed)
}

func TestAuthEndpoint_OauthCallbackGetProviderMismatch(t *testing.T) {
	session := &fakeSession{}
	session.data.OauthState = "state-1"
	session.data.OauthProvider = "google"

	e := newTestAuthEndpoint(session, &fakeAuthService{account: passwordAccount()}, nil)

	r := httptest.NewRequest(http.MethodGet,
		"/auth/login/github/callback?code=auth-code&state=state-1", nil)
	r.SetPathValue("provider", "github")
	w := httptest.NewRecorder()
	e.handleOauthCallbackGet()(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
