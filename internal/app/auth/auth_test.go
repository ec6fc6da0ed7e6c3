package auth

import (
	"context"
	"errors"
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

type fakeDirectory struct {
	accounts map[string]*domain.Account
	password string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{accounts: make(map[string]*domain.Account), password: "super-secret"}
}

// Authenticate only checks credentials, like the external user service does. The
// provenance check is the authenticator's job.
func (d *fakeDirectory) Authenticate(_ context.Context, email, password string) (*domain.Account, error) {
	account, ok := d.accounts[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if password != d.password {
		return nil, domain.ErrInvalidCredentials
	}
	return account, nil
}

func (d *fakeDirectory) GetAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	account, ok := d.accounts[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return account, nil
}

func (d *fakeDirectory) RegisterAccount(_ context.Context, account *domain.Account) error {
	if _, ok := d.accounts[account.Email]; ok {
		return domain.ErrNotUnique
	}
	account.Identifier = "generated"
	d.accounts[account.Email] = account
	return nil
}

func (d *fakeDirectory) UpdateAccountInfo(_ context.Context, account *domain.Account) (*domain.Account, error) {
	d.accounts[account.Email] = account
	return account, nil
}

type fakeBus struct {
	topics []string
}

func (b *fakeBus) Publish(topic string, _ ...any) {
	b.topics = append(b.topics, topic)
}

func newTestAuthenticator(t *testing.T, directory UserDirectory, bus EventBus) *Authenticator {
	t.Helper()

	cfg := &config.Auth{CallbackUrlPrefix: "/api/v0"}
	a, err := NewAuthenticator(cfg, "http://localhost:8080", bus, directory)
	require.NoError(t, err)

	return a
}

func TestAuthenticator_PlainLogin(t *testing.T) {
	directory := newFakeDirectory()
	directory.accounts["jane@invenpulse.dev"] = &domain.Account{
		Identifier: "acc-1",
		Email:      "jane@invenpulse.dev",
		Role:       domain.RoleUser,
		AuthMethod: domain.AuthMethodPassword,
	}
	bus := &fakeBus{}
	a := newTestAuthenticator(t, directory, bus)

	// email is trimmed and lower-cased
	account, err := a.PlainLogin(context.Background(), "  Jane@InvenPulse.dev ", "super-secret")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountIdentifier("acc-1"), account.Identifier)
	assert.Contains(t, bus.topics, "auth:login")
	assert.Contains(t, bus.topics, "audit:login:success")
}

func TestAuthenticator_PlainLoginFailure(t *testing.T) {
	directory := newFakeDirectory()
	directory.accounts["jane@invenpulse.dev"] = &domain.Account{
		Email:      "jane@invenpulse.dev",
		AuthMethod: domain.AuthMethodPassword,
	}
	bus := &fakeBus{}
	a := newTestAuthenticator(t, directory, bus)

	_, err := a.PlainLogin(context.Background(), "jane@invenpulse.dev", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Contains(t, bus.topics, "audit:login:failed")

	_, err = a.PlainLogin(context.Background(), "", "")
	assert.Error(t, err)
}

func TestAuthenticator_PlainLoginWrongMethod(t *testing.T) {
	directory := newFakeDirectory()
	directory.accounts["jane@invenpulse.dev"] = &domain.Account{
		Email:      "jane@invenpulse.dev",
		AuthMethod: domain.AuthMethodOAuthGoogle,
	}
	a := newTestAuthenticator(t, directory, &fakeBus{})

	// the correct password must not matter, the account belongs to an oauth provider
	_, err := a.PlainLogin(context.Background(), "jane@invenpulse.dev", "super-secret")
	assert.ErrorIs(t, err, domain.ErrWrongAuthMethod)
}

func TestAuthenticator_PlainLoginUnknownEmail(t *testing.T) {
	bus := &fakeBus{}
	a := newTestAuthenticator(t, newFakeDirectory(), bus)

	_, err := a.PlainLogin(context.Background(), "nobody@invenpulse.dev", "whatever")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, bus.topics, "audit:login:failed")
}

func Test_processUserInfo_RegistersNewAccount(t *testing.T) {
	directory := newFakeDirectory()
	a := newTestAuthenticator(t, directory, &fakeBus{})

	ctx := domain.SetUserInfo(context.Background(), domain.SystemAdminContextUserInfo())
	account, err := a.processUserInfo(ctx, &domain.AuthenticatorUserInfo{
		Identifier:  "google-sub-1",
		Email:       "New@Example.com",
		DisplayName: "New User",
		AvatarUrl:   "https://example.com/pic.png",
		IsAdmin:     true,
	}, domain.AuthMethodOAuthGoogle, true)
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", account.Email)
	assert.Equal(t, domain.RoleAdmin, account.Role)
	assert.Equal(t, domain.AuthMethodOAuthGoogle, account.AuthMethod)
}

func Test_processUserInfo_RegistrationDisabled(t *testing.T) {
	a := newTestAuthenticator(t, newFakeDirectory(), &fakeBus{})

	_, err := a.processUserInfo(context.Background(), &domain.AuthenticatorUserInfo{
		Email: "new@example.com",
	}, domain.AuthMethodOAuthGoogle, false)
	assert.Error(t, err)
}

func Test_processUserInfo_RejectsMethodMismatch(t *testing.T) {
	directory := newFakeDirectory()
	directory.accounts["jane@invenpulse.dev"] = &domain.Account{
		Email:      "jane@invenpulse.dev",
		AuthMethod: domain.AuthMethodPassword,
	}
	a := newTestAuthenticator(t, directory, &fakeBus{})

	// an existing password account must not be taken over by an OAuth login
	_, err := a.processUserInfo(context.Background(), &domain.AuthenticatorUserInfo{
		Email: "jane@invenpulse.dev",
	}, domain.AuthMethodOAuthGoogle, true)
	assert.ErrorIs(t, err, domain.ErrWrongAuthMethod)
}

func Test_processUserInfo_UpdatesProfile(t *testing.T) {
	directory := newFakeDirectory()
	directory.accounts["jane@invenpulse.dev"] = &domain.Account{
		Email:       "jane@invenpulse.dev",
		DisplayName: "Old Name",
		Role:        domain.RoleUser,
		AuthMethod:  domain.AuthMethodOAuthGoogle,
	}
	a := newTestAuthenticator(t, directory, &fakeBus{})

	account, err := a.processUserInfo(context.Background(), &domain.AuthenticatorUserInfo{
		Email:       "jane@invenpulse.dev",
		DisplayName: "New Name",
		AvatarUrl:   "https://example.com/new.png",
	}, domain.AuthMethodOAuthGoogle, true)
	require.NoError(t, err)

	assert.Equal(t, "New Name", account.DisplayName)
	assert.Equal(t, "https://example.com/new.png", account.AvatarUrl)
}

func TestAuthenticator_LogoutRevokesToken(t *testing.T) {
	var revokedToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		revokedToken = r.PostFormValue("token")
	}))
	defer srv.Close()

	bus := &fakeBus{}
	a := newTestAuthenticator(t, newFakeDirectory(), bus)
	a.oauthAuthenticators["google"] = PlainOauthAuthenticator{
		name:           "google",
		client:         srv.Client(),
		revokeEndpoint: srv.URL,
	}

	a.Logout(context.Background(), "jane@invenpulse.dev", "google", "token-123")

	assert.Equal(t, "token-123", revokedToken)
	assert.Contains(t, bus.topics, "auth:logout")
	assert.Contains(t, bus.topics, "audit:logout")
}

func TestAuthenticator_LogoutRevocationFailureIsNonFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	bus := &fakeBus{}
	a := newTestAuthenticator(t, newFakeDirectory(), bus)
	a.oauthAuthenticators["google"] = PlainOauthAuthenticator{
		name:           "google",
		client:         srv.Client(),
		revokeEndpoint: srv.URL,
	}

	a.Logout(context.Background(), "jane@invenpulse.dev", "google", "token-123")

	// logout events fire even if the provider rejects the revocation
	assert.Contains(t, bus.topics, "auth:logout")
}

func TestAuthenticator_OauthLoginStep1UnknownProvider(t *testing.T) {
	a := newTestAuthenticator(t, newFakeDirectory(), &fakeBus{})

	_, _, _, err := a.OauthLoginStep1(context.Background(), "unknown")
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "missing oauth provider"))
}

type staticUserInfoAuthenticator struct {
	PlainOauthAuthenticator
	userInfo map[string]any
}

func (s staticUserInfoAuthenticator) Exchange(
	_ context.Context, _ string, _ ...oauth2.AuthCodeOption,
) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "access-token"}, nil
}

func (s staticUserInfoAuthenticator) GetUserInfo(
	_ context.Context, _ *oauth2.Token, _ string,
) (map[string]any, error) {
	if s.userInfo == nil {
		return nil, errors.New("no user info")
	}
	return s.userInfo, nil
}

func (s staticUserInfoAuthenticator) ParseUserInfo(raw map[string]any) (*domain.AuthenticatorUserInfo, error) {
	return parseOauthUserInfo(getOauthFieldMapping(config.OauthFields{}), &config.OauthAdminMapping{}, raw)
}

func TestAuthenticator_OauthLoginStep2(t *testing.T) {
	directory := newFakeDirectory()
	bus := &fakeBus{}
	a := newTestAuthenticator(t, directory, bus)
	a.oauthAuthenticators["google"] = staticUserInfoAuthenticator{
		PlainOauthAuthenticator: PlainOauthAuthenticator{
			name:                "google",
			registrationEnabled: true,
		},
		userInfo: map[string]any{
			"sub":     "google-sub-1",
			"email":   "jane@invenpulse.dev",
			"name":    "Jane Doe",
			"picture": "https://example.com/jane.png",
		},
	}

	account, token, err := a.OauthLoginStep2(context.Background(), "google", "", "auth-code")
	require.NoError(t, err)

	assert.Equal(t, "access-token", token.AccessToken)
	assert.Equal(t, "jane@invenpulse.dev", account.Email)
	assert.Equal(t, domain.AuthMethod("oauth-google"), account.AuthMethod)
	assert.Contains(t, bus.topics, "audit:login:success")
}
