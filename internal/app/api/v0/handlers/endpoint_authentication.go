package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/routegroup"
	"golang.org/x/oauth2"

	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/api/core/request"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/api/core/respond"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/api/v0/model"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/config"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
)

type AuthenticationService interface {
	// GetExternalLoginProviders returns a list of all available external login providers.
	GetExternalLoginProviders(_ context.Context) []domain.LoginProviderInfo
	// PlainLogin authenticates a user with an email address and password.
	PlainLogin(ctx context.Context, email, password string) (*domain.Account, error)
	// OauthLoginStep1 initiates the OAuth login flow.
	OauthLoginStep1(_ context.Context, providerId string) (authCodeUrl, state, nonce string, err error)
	// OauthLoginStep2 completes the OAuth login flow and logs the user in.
	OauthLoginStep2(ctx context.Context, providerId, nonce, code string) (*domain.Account, *oauth2.Token, error)
	// Logout publishes the logout events and revokes the provider access token if possible.
	Logout(ctx context.Context, email, providerId, accessToken string)
}

type SignupService interface {
	// SignupAccount creates a new password account if self-signup is enabled.
	SignupAccount(ctx context.Context, email, password, displayName string) (*domain.Account, error)
}

type AuthEndpoint struct {
	cfg           *config.Config
	authService   AuthenticationService
	signupService SignupService
	session       Session
	validate      Validator
}

func NewAuthEndpoint(
	cfg *config.Config,
	session Session,
	validator Validator,
	authService AuthenticationService,
	signupService SignupService,
) AuthEndpoint {
	return AuthEndpoint{
		cfg:           cfg,
		authService:   authService,
		signupService: signupService,
		session:       session,
		validate:      validator,
	}
}

func (e AuthEndpoint) GetName() string {
	return "AuthEndpoint"
}

func (e AuthEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/auth")

	apiGroup.HandleFunc("GET /providers", e.handleExternalLoginProvidersGet())
	apiGroup.HandleFunc("GET /session", e.handleSessionInfoGet())

	apiGroup.HandleFunc("GET /login/{provider}/init", e.handleOauthInitiateGet())
	apiGroup.HandleFunc("GET /login/{provider}/callback", e.handleOauthCallbackGet())

	apiGroup.HandleFunc("POST /login", e.handleLoginPost())
	apiGroup.HandleFunc("POST /signup", e.handleSignupPost())
	apiGroup.HandleFunc("POST /logout", e.handleLogoutPost())
}

// handleExternalLoginProvidersGet returns all available external login providers.
func (e AuthEndpoint) handleExternalLoginProvidersGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providers := e.authService.GetExternalLoginProviders(r.Context())

		respond.JSON(w, http.StatusOK, model.NewLoginProviderInfos(providers))
	}
}

// handleSessionInfoGet returns information about the currently logged-in user.
// An anonymous session yields a logged-out session info, never an error.
func (e AuthEndpoint) handleSessionInfoGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := e.session.GetSubject(r.Context())

		respond.JSON(w, http.StatusOK, model.NewSessionInfo(subject))
	}
}

// handleOauthInitiateGet initiates the OAuth login flow for the given provider.
func (e AuthEndpoint) handleOauthInitiateGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentSession := e.session.GetData(r.Context())
		loggedIn := e.session.GetSubject(r.Context()).LoggedIn()

		autoRedirect, _ := strconv.ParseBool(request.QueryDefault(r, "redirect", "false"))
		returnTo := request.Query(r, "return")
		provider := request.Path(r, "provider")

		var returnUrl *url.URL
		var returnParams string
		redirectToReturn := func() {
			respond.Redirect(w, r, http.StatusFound, returnUrl.String()+"?"+returnParams)
		}

		if returnTo != "" {
			if !e.isValidReturnUrl(returnTo) {
				respond.JSON(w, http.StatusBadRequest,
					model.Error{Code: http.StatusBadRequest, Message: "invalid return URL"})
				return
			}
			if u, err := url.Parse(returnTo); err == nil {
				returnUrl = u
			}
			queryParams := returnUrl.Query()
			queryParams.Set("loginState", "err") // by default, we set the state to error
			returnUrl.RawQuery = ""              // remove potential query params
			returnParams = queryParams.Encode()
		}

		if loggedIn {
			if autoRedirect && e.isValidReturnUrl(returnTo) {
				queryParams := returnUrl.Query()
				queryParams.Set("loginState", "success")
				returnParams = queryParams.Encode()
				redirectToReturn()
			} else {
				respond.JSON(w, http.StatusBadRequest,
					model.Error{Code: http.StatusBadRequest, Message: "already logged in"})
			}
			return
		}

		authCodeUrl, state, nonce, err := e.authService.OauthLoginStep1(context.Background(), provider)
		if err != nil {
			if autoRedirect && e.isValidReturnUrl(returnTo) {
				redirectToReturn()
			} else {
				respond.JSON(w, http.StatusInternalServerError,
					model.Error{Code: http.StatusInternalServerError, Message: err.Error()})
			}
			return
		}

		currentSession.OauthState = state
		currentSession.OauthNonce = nonce
		currentSession.OauthProvider = provider
		currentSession.OauthReturnTo = returnTo
		e.session.SetData(r.Context(), currentSession)

		if autoRedirect {
			respond.Redirect(w, r, http.StatusFound, authCodeUrl)
		} else {
			respond.JSON(w, http.StatusOK, model.OauthInitiationResponse{
				RedirectUrl: authCodeUrl,
				State:       state,
			})
		}
	}
}

// handleOauthCallbackGet handles the OAuth callback of the given provider.
func (e AuthEndpoint) handleOauthCallbackGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentSession := e.session.GetData(r.Context())
		loggedIn := e.session.GetSubject(r.Context()).LoggedIn()

		var returnUrl *url.URL
		var returnParams string
		redirectToReturn := func() {
			respond.Redirect(w, r, http.StatusFound, returnUrl.String()+"?"+returnParams)
		}

		if currentSession.OauthReturnTo != "" {
			if u, err := url.Parse(currentSession.OauthReturnTo); err == nil {
				returnUrl = u
			}
			queryParams := returnUrl.Query()
			queryParams.Set("loginState", "err") // by default, we set the state to error
			returnUrl.RawQuery = ""              // remove potential query params
			returnParams = queryParams.Encode()
		}

		if loggedIn {
			if returnUrl != nil && e.isValidReturnUrl(returnUrl.String()) {
				queryParams := returnUrl.Query()
				queryParams.Set("loginState", "success")
				returnParams = queryParams.Encode()
				redirectToReturn()
			} else {
				respond.JSON(w, http.StatusBadRequest, model.Error{Message: "already logged in"})
			}
			return
		}

		provider := request.Path(r, "provider")
		oauthCode := request.Query(r, "code")
		oauthState := request.Query(r, "state")

		if provider != currentSession.OauthProvider {
			if returnUrl != nil && e.isValidReturnUrl(returnUrl.String()) {
				redirectToReturn()
			} else {
				respond.JSON(w, http.StatusBadRequest,
					model.Error{Code: http.StatusBadRequest, Message: "invalid oauth provider"})
			}
			return
		}
		if oauthState != currentSession.OauthState {
			if returnUrl != nil && e.isValidReturnUrl(returnUrl.String()) {
				redirectToReturn()
			} else {
				respond.JSON(w, http.StatusBadRequest,
					model.Error{Code: http.StatusBadRequest, Message: "invalid oauth state"})
			}
			return
		}

		loginCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		account, token, err := e.authService.OauthLoginStep2(loginCtx, provider, currentSession.OauthNonce,
			oauthCode)
		cancel()
		if err != nil {
			if returnUrl != nil && e.isValidReturnUrl(returnUrl.String()) {
				redirectToReturn()
			} else {
				respond.JSON(w, http.StatusUnauthorized,
					model.Error{Code: http.StatusUnauthorized, Message: err.Error()})
			}
			return
		}

		if err := e.setAuthenticatedUser(r, account, provider, token.AccessToken); err != nil {
			if returnUrl != nil && e.isValidReturnUrl(returnUrl.String()) {
				redirectToReturn()
			} else {
				respond.JSON(w, http.StatusInternalServerError,
					model.Error{Code: http.StatusInternalServerError, Message: "failed to persist session"})
			}
			return
		}

		if returnUrl != nil && e.isValidReturnUrl(returnUrl.String()) {
			queryParams := returnUrl.Query()
			queryParams.Set("loginState", "success")
			returnParams = queryParams.Encode()
			redirectToReturn()
		} else {
			respond.JSON(w, http.StatusOK, model.NewSessionInfo(domain.Authenticated(account.Identity())))
		}
	}
}

// setAuthenticatedUser replaces the session identity. The old session is destroyed
// first and the session token is renewed, so a pre-login session never carries over
// into the authenticated one.
func (e AuthEndpoint) setAuthenticatedUser(r *http.Request, account *domain.Account, provider, accessToken string) error {
	e.session.DestroyData(r.Context())

	if err := e.session.SetSubject(r.Context(), account.Identity()); err != nil {
		slog.Warn("failed to persist session identity", "user", account.Email, "error", err)
		return err
	}

	currentSession := e.session.GetData(r.Context())
	currentSession.OauthState = ""
	currentSession.OauthNonce = ""
	currentSession.OauthReturnTo = ""
	currentSession.OauthProvider = provider
	currentSession.AccessToken = accessToken
	e.session.SetData(r.Context(), currentSession)

	return nil
}

// handleLoginPost authenticates a user with an email address and password.
func (e AuthEndpoint) handleLoginPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if e.session.GetSubject(r.Context()).LoggedIn() {
			respond.JSON(w, http.StatusOK, model.Error{Code: http.StatusOK, Message: "already logged in"})
			return
		}

		var loginData model.LoginRequest

		if err := request.BodyJson(r, &loginData); err != nil {
			respond.JSON(w, http.StatusBadRequest, model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}
		if err := e.validate.Struct(loginData); err != nil {
			respond.JSON(w, http.StatusBadRequest, model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		account, err := e.authService.PlainLogin(context.Background(), loginData.Email, loginData.Password)
		if err != nil {
			// the error taxonomy reaches the client so the frontend can show an
			// actionable message instead of a generic failure
			switch {
			case errors.Is(err, domain.ErrNotFound):
				respond.JSON(w, http.StatusNotFound, model.Error{
					Code:    http.StatusNotFound,
					Message: "no account exists for this email address",
				})
			case errors.Is(err, domain.ErrWrongAuthMethod):
				respond.JSON(w, http.StatusConflict, model.Error{
					Code:    http.StatusConflict,
					Message: "this account uses an external login provider, use the provider login instead",
				})
			case errors.Is(err, domain.ErrInvalidCredentials):
				respond.JSON(w, http.StatusUnauthorized, model.Error{
					Code:    http.StatusUnauthorized,
					Message: "invalid email or password",
				})
			default:
				respond.JSON(w, http.StatusUnauthorized,
					model.Error{Code: http.StatusUnauthorized, Message: "login failed"})
			}
			return
		}

		if err := e.setAuthenticatedUser(r, account, "", ""); err != nil {
			respond.JSON(w, http.StatusInternalServerError,
				model.Error{Code: http.StatusInternalServerError, Message: "failed to persist session"})
			return
		}

		respond.JSON(w, http.StatusOK, model.NewSessionInfo(domain.Authenticated(account.Identity())))
	}
}

// handleSignupPost creates a new password account and logs it in.
// Signup is only available with the embedded user directory.
func (e AuthEndpoint) handleSignupPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if e.signupService == nil {
			respond.JSON(w, http.StatusNotFound,
				model.Error{Code: http.StatusNotFound, Message: "signup not available"})
			return
		}
		if e.session.GetSubject(r.Context()).LoggedIn() {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "already logged in"})
			return
		}

		var signupData model.SignupRequest

		if err := request.BodyJson(r, &signupData); err != nil {
			respond.JSON(w, http.StatusBadRequest, model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}
		if err := e.validate.Struct(signupData); err != nil {
			respond.JSON(w, http.StatusBadRequest, model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		ctx := domain.SetUserInfo(r.Context(), domain.SystemAdminContextUserInfo())
		account, err := e.signupService.SignupAccount(ctx, signupData.Email, signupData.Password,
			signupData.DisplayName)
		if err != nil {
			status := http.StatusBadRequest
			if strings.Contains(err.Error(), "disabled") {
				status = http.StatusForbidden
			}
			respond.JSON(w, status, model.Error{Code: status, Message: err.Error()})
			return
		}

		if err := e.setAuthenticatedUser(r, account, "", ""); err != nil {
			respond.JSON(w, http.StatusInternalServerError,
				model.Error{Code: http.StatusInternalServerError, Message: "failed to persist session"})
			return
		}

		respond.JSON(w, http.StatusCreated, model.NewSessionInfo(domain.Authenticated(account.Identity())))
	}
}

// handleLogoutPost logs the current user out and destroys the session.
// Logging out an anonymous session is not an error.
func (e AuthEndpoint) handleLogoutPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := e.session.GetSubject(r.Context())

		identity, ok := subject.Identity()
		if !ok { // Not logged in
			respond.JSON(w, http.StatusOK, model.Error{Code: http.StatusOK, Message: "not logged in"})
			return
		}

		currentSession := e.session.GetData(r.Context())
		e.authService.Logout(r.Context(), identity.Email, currentSession.OauthProvider,
			currentSession.AccessToken)

		e.session.DestroyData(r.Context())
		respond.JSON(w, http.StatusOK, model.Error{Code: http.StatusOK, Message: "logout ok"})
	}
}

// isValidReturnUrl checks if the given return URL matches the configured external URL of the application.
func (e AuthEndpoint) isValidReturnUrl(returnUrl string) bool {
	return strings.HasPrefix(returnUrl, e.cfg.Web.ExternalUrl)
}
