package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	evbus "github.com/vardius/message-bus"

	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/config"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
)

// Manager is the embedded user directory. It stores accounts in the local database
// and performs password verification for them.
type Manager struct {
	cfg *config.Config
	bus evbus.MessageBus

	accounts AccountDatabaseRepo
}

func NewUserManager(cfg *config.Config, bus evbus.MessageBus, accounts AccountDatabaseRepo) (*Manager, error) {
	m := &Manager{
		cfg: cfg,
		bus: bus,

		accounts: accounts,
	}
	return m, nil
}

// Authenticate verifies an email and password pair against the stored accounts.
// It returns domain.ErrNotFound for unknown accounts, domain.ErrWrongAuthMethod for
// accounts that were provisioned through OAuth and domain.ErrInvalidCredentials for
// a wrong password.
func (m Manager) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := m.accounts.GetAccountByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	if err := account.CheckPassword(password); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccountByEmail returns the account with the given email address.
func (m Manager) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	account, err := m.accounts.GetAccountByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return account, nil
}

// GetAllAccounts returns all accounts. Only admins may list accounts.
func (m Manager) GetAllAccounts(ctx context.Context) ([]domain.Account, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	accounts, err := m.accounts.GetAllAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load accounts: %w", err)
	}

	return accounts, nil
}

// RegisterAccount creates a new account. Callers use this for accounts provisioned
// by an external login provider; the account must not carry a password.
func (m Manager) RegisterAccount(ctx context.Context, account *domain.Account) error {
	if account.Identifier == "" {
		account.Identifier = domain.AccountIdentifier(uuid.New().String())
	}

	if err := account.Validate(); err != nil {
		return fmt.Errorf("account validation failed: %w", err)
	}

	if err := m.saveAccount(ctx, account); err != nil {
		return err
	}

	m.bus.Publish(app.TopicAccountRegistered, *account)

	return nil
}

// SignupAccount creates a new password account. It fails if self-signup is disabled
// or the email address is already taken.
func (m Manager) SignupAccount(ctx context.Context, email, password, displayName string) (*domain.Account, error) {
	if !m.cfg.Core.SelfSignupAllowed {
		return nil, errors.New("account signup is disabled")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	if len(password) < m.cfg.Auth.MinPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters long", m.cfg.Auth.MinPasswordLength)
	}

	_, err := m.accounts.GetAccountByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("account %s already exists: %w", email, domain.ErrNotUnique)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("failed to check for existing account: %w", err)
	}

	account := &domain.Account{
		Identifier:  domain.AccountIdentifier(uuid.New().String()),
		Email:       email,
		DisplayName: displayName,
		Role:        domain.RoleUser,
		AuthMethod:  domain.AuthMethodPassword,
		Password:    domain.PrivateString(password),
	}

	if err := account.HashPassword(); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := account.Validate(); err != nil {
		return nil, fmt.Errorf("account validation failed: %w", err)
	}

	if err := m.saveAccount(ctx, account); err != nil {
		return nil, err
	}

	m.bus.Publish(app.TopicAccountCreated, *account)

	return account, nil
}

// UpdateAccountInfo persists profile changes of an existing account. The password
// and auth method are left untouched.
func (m Manager) UpdateAccountInfo(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	existing, err := m.accounts.GetAccount(ctx, account.Identifier)
	if err != nil {
		return nil, fmt.Errorf("unable to load account %s: %w", account.Identifier, err)
	}

	err = m.accounts.SaveAccount(ctx, account.Identifier, func(a *domain.Account) (*domain.Account, error) {
		a.DisplayName = account.DisplayName
		a.AvatarUrl = account.AvatarUrl
		a.Role = account.Role
		return a, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	account.AuthMethod = existing.AuthMethod
	account.Password = existing.Password
	account.CopyCalculatedAttributes(existing)

	return account, nil
}

// DeleteAccount removes an account. Only admins may delete accounts.
func (m Manager) DeleteAccount(ctx context.Context, id domain.AccountIdentifier) error {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return err
	}

	if err := m.accounts.DeleteAccount(ctx, id); err != nil {
		return fmt.Errorf("failed to delete account %s: %w", id, err)
	}

	return nil
}

// BootstrapDefaultAdmin creates the default administrator account if the directory
// is still empty.
func (m Manager) BootstrapDefaultAdmin(ctx context.Context) error {
	accounts, err := m.accounts.GetAllAccounts(ctx)
	if err != nil {
		return fmt.Errorf("unable to check for existing accounts: %w", err)
	}
	if len(accounts) > 0 {
		return nil
	}

	admin := &domain.Account{
		Identifier:  domain.AccountIdentifier(uuid.New().String()),
		Email:       strings.ToLower(m.cfg.Core.AdminUser),
		DisplayName: "Administrator",
		Role:        domain.RoleAdmin,
		AuthMethod:  domain.AuthMethodPassword,
		Password:    domain.PrivateString(m.cfg.Core.AdminPassword),
	}

	if err := admin.HashPassword(); err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	if err := m.saveAccount(ctx, admin); err != nil {
		return err
	}

	slog.Info("created default admin account", "email", admin.Email)

	return nil
}

func (m Manager) saveAccount(ctx context.Context, account *domain.Account) error {
	err := m.accounts.SaveAccount(ctx, account.Identifier, func(a *domain.Account) (*domain.Account, error) {
		a.Email = account.Email
		a.DisplayName = account.DisplayName
		a.AvatarUrl = account.AvatarUrl
		a.Role = account.Role
		a.AuthMethod = account.AuthMethod
		a.Password = account.Password
		return a, nil
	})
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	return nil
}
