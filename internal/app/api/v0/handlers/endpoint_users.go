package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/api/core/request"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/api/core/respond"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/api/v0/model"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
)

type UserService interface {
	// GetAllAccounts returns all accounts of the embedded directory.
	GetAllAccounts(ctx context.Context) ([]domain.Account, error)
	// GetAccountByEmail returns the account with the given email address.
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	// RegisterAccount creates a new account.
	RegisterAccount(ctx context.Context, account *domain.Account) error
	// UpdateAccountInfo persists profile changes of an existing account.
	UpdateAccountInfo(ctx context.Context, account *domain.Account) (*domain.Account, error)
	// DeleteAccount removes an account.
	DeleteAccount(ctx context.Context, id domain.AccountIdentifier) error
}

// UserEndpoint is the administration API of the embedded user directory.
// It is not registered when an external directory service is configured.
type UserEndpoint struct {
	authenticator Authenticator
	userService   UserService
}

func NewUserEndpoint(authenticator Authenticator, userService UserService) UserEndpoint {
	return UserEndpoint{
		authenticator: authenticator,
		userService:   userService,
	}
}

func (e UserEndpoint) GetName() string {
	return "UserEndpoint"
}

func (e UserEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/users")
	apiGroup.Use(e.authenticator.LoggedIn(ScopeAdmin))

	apiGroup.HandleFunc("GET /all", e.handleUsersGet())
	apiGroup.HandleFunc("GET /by-email/{email}", e.handleUserGet())
	apiGroup.HandleFunc("POST /new", e.handleUserPost())
	apiGroup.HandleFunc("PUT /{id}", e.handleUserPut())
	apiGroup.HandleFunc("DELETE /{id}", e.handleUserDelete())
}

// handleUsersGet returns all accounts of the directory.
func (e UserEndpoint) handleUsersGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := e.userService.GetAllAccounts(r.Context())
		if err != nil {
			respond.JSON(w, http.StatusInternalServerError,
				model.Error{Code: http.StatusInternalServerError, Message: err.Error()})
			return
		}

		respond.JSON(w, http.StatusOK, model.NewUsers(accounts))
	}
}

// handleUserGet returns the account with the given email address.
func (e UserEndpoint) handleUserGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := request.Path(r, "email")

		account, err := e.userService.GetAccountByEmail(r.Context(), email)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				respond.JSON(w, http.StatusNotFound,
					model.Error{Code: http.StatusNotFound, Message: "account not found"})
				return
			}
			respond.JSON(w, http.StatusInternalServerError,
				model.Error{Code: http.StatusInternalServerError, Message: err.Error()})
			return
		}

		respond.JSON(w, http.StatusOK, model.NewUser(account))
	}
}

// handleUserPost creates a new account.
func (e UserEndpoint) handleUserPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var user model.User
		if err := request.BodyJson(r, &user); err != nil {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		account := model.NewDomainAccount(&user)
		if err := account.HashPassword(); err != nil {
			respond.JSON(w, http.StatusInternalServerError,
				model.Error{Code: http.StatusInternalServerError, Message: err.Error()})
			return
		}

		if err := e.userService.RegisterAccount(r.Context(), account); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, domain.ErrNotUnique) {
				status = http.StatusConflict
			}
			respond.JSON(w, status, model.Error{Code: status, Message: err.Error()})
			return
		}

		respond.JSON(w, http.StatusCreated, model.NewUser(account))
	}
}

// handleUserPut updates the profile of an existing account.
func (e UserEndpoint) handleUserPut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")

		var user model.User
		if err := request.BodyJson(r, &user); err != nil {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}
		user.Identifier = id

		account, err := e.userService.UpdateAccountInfo(r.Context(), model.NewDomainAccount(&user))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				respond.JSON(w, http.StatusNotFound,
					model.Error{Code: http.StatusNotFound, Message: "account not found"})
				return
			}
			respond.JSON(w, http.StatusInternalServerError,
				model.Error{Code: http.StatusInternalServerError, Message: err.Error()})
			return
		}

		respond.JSON(w, http.StatusOK, model.NewUser(account))
	}
}

// handleUserDelete removes an account.
func (e UserEndpoint) handleUserDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")

		if err := e.userService.DeleteAccount(r.Context(), domain.AccountIdentifier(id)); err != nil {
			respond.JSON(w, http.StatusInternalServerError,
				model.Error{Code: http.StatusInternalServerError, Message: err.Error()})
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}
