package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionStub struct {
	token string
}

func (s *sessionStub) read(*http.Request) string {
	return s.token
}

func (s *sessionStub) write(_ *http.Request, token string) {
	s.token = token
}

func newTestMiddleware(session *sessionStub) *Middleware {
	return New(session.read, session.write)
}

func refreshedToken(t *testing.T, m *Middleware) string {
	t.Helper()

	var token string
	handler := m.RefreshToken(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		token = GetToken(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/csrf", nil))

	require.NotEmpty(t, token)
	return token
}

func TestMiddleware_ValidToken(t *testing.T) {
	session := &sessionStub{}
	m := newTestMiddleware(session)
	token := refreshedToken(t, m)

	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set("X-CSRF-TOKEN", token)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMiddleware_MissingToken(t *testing.T) {
	session := &sessionStub{}
	m := newTestMiddleware(session)
	refreshedToken(t, m)

	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMiddleware_NoEstablishedTokenRejected(t *testing.T) {
	// neither the session nor the request carry a token
	m := newTestMiddleware(&sessionStub{})

	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMiddleware_SafeMethodSkipsCheck(t *testing.T) {
	m := newTestMiddleware(&sessionStub{})

	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMiddleware_CustomErrorCallback(t *testing.T) {
	session := &sessionStub{}
	m := New(session.read, session.write, WithErrorCallback(
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
}
