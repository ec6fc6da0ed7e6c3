package session

import (
	"context"
	"encoding/gob"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/tarunmanoharann/InvenPulse-sub000/internal/config"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
)

func init() {
	gob.Register(Data{})
}

// Data is the per-session state. The identity travels as a versioned envelope so
// that a corrupted or outdated payload degrades to a logged-out session.
type Data struct {
	Identity []byte // versioned identity envelope, empty if logged out

	OauthState    string
	OauthNonce    string
	OauthProvider string
	OauthReturnTo string

	// AccessToken is the provider access token of OAuth sessions. It is kept
	// server-side only and used for best-effort revocation on logout.
	AccessToken string

	CsrfToken string
}

const sessionDataKey = "session_api_v0"

// Manager wraps the scs session manager with typed accessors for the session data.
type Manager struct {
	*scs.SessionManager
}

func NewManager(cfg *config.Config, store scs.Store) *Manager {
	sessionManager := scs.New()
	sessionManager.Store = store
	sessionManager.Lifetime = cfg.Web.SessionLifetime
	sessionManager.Cookie.Name = cfg.Web.SessionIdentifier
	sessionManager.Cookie.Secure = strings.HasPrefix(cfg.Web.ExternalUrl, "https")
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Path = "/"
	sessionManager.Cookie.Persist = false

	return &Manager{sessionManager}
}

func (m *Manager) SetData(ctx context.Context, value Data) {
	m.SessionManager.Put(ctx, sessionDataKey, value)
}

func (m *Manager) GetData(ctx context.Context) Data {
	sessionData, ok := m.SessionManager.Get(ctx, sessionDataKey).(Data)
	if !ok {
		return Data{}
	}
	return sessionData
}

func (m *Manager) DestroyData(ctx context.Context) {
	_ = m.SessionManager.Destroy(ctx)
}

// GetSubject decodes the identity envelope of the current session. Sessions without
// an identity, and sessions whose envelope fails to decode, yield the anonymous
// subject.
func (m *Manager) GetSubject(ctx context.Context) domain.Subject {
	return DecodeSubject(m.GetData(ctx).Identity)
}

// SetSubject replaces the identity of the current session. The session token is
// renewed first so a pre-login session id never survives into the authenticated
// session. Non-identity fields of the session data are preserved.
func (m *Manager) SetSubject(ctx context.Context, identity domain.Identity) error {
	if err := m.SessionManager.RenewToken(ctx); err != nil {
		return err
	}

	data := m.GetData(ctx)
	data.Identity = EncodeIdentity(identity)
	m.SetData(ctx, data)

	return nil
}
