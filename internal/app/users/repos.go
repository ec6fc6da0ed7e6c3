package users

import (
	"context"

	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
)

type AccountDatabaseRepo interface {
	// GetAccount returns an account by its identifier.
	GetAccount(ctx context.Context, id domain.AccountIdentifier) (*domain.Account, error)
	// GetAccountByEmail returns an account by its email address.
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	// GetAllAccounts returns all accounts.
	GetAllAccounts(ctx context.Context) ([]domain.Account, error)
	// SaveAccount updates an account or creates it if it does not exist.
	SaveAccount(
		ctx context.Context,
		id domain.AccountIdentifier,
		updateFunc func(a *domain.Account) (*domain.Account, error),
	) error
	// DeleteAccount deletes an account by its identifier.
	DeleteAccount(ctx context.Context, id domain.AccountIdentifier) error
}
