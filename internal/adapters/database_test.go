package adapters

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarunmanoharann/InvenPulse-sub000/internal/config"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
)

func setupTestRepo(t *testing.T) (*SqlRepo, context.Context) {
	t.Helper()

	db, err := NewDatabase(config.DatabaseConfig{
		Type: config.DatabaseSQLite,
		DSN:  filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)

	repo, err := NewSqlRepository(db)
	require.NoError(t, err)

	ctx := domain.SetUserInfo(context.Background(), domain.SystemAdminContextUserInfo())

	return repo, ctx
}

func TestSqlRepo_AccountLifecycle(t *testing.T) {
	repo, ctx := setupTestRepo(t)

	_, err := repo.GetAccount(ctx, "acc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.SaveAccount(ctx, "acc-1", func(a *domain.Account) (*domain.Account, error) {
		a.Email = "Jane@InvenPulse.dev"
		a.DisplayName = "Jane Doe"
		a.Role = domain.RoleUser
		a.AuthMethod = domain.AuthMethodPassword
		a.Password = "hashed"
		return a, nil
	})
	require.NoError(t, err)

	account, err := repo.GetAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "jane@invenpulse.dev", account.Email) // stored lower-case
	assert.Equal(t, domain.CtxSystemAdminId, account.CreatedBy)

	// lookup by email is case-insensitive through normalization
	account, err = repo.GetAccountByEmail(ctx, "Jane@InvenPulse.dev")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountIdentifier("acc-1"), account.Identifier)

	// update in place
	err = repo.SaveAccount(ctx, "acc-1", func(a *domain.Account) (*domain.Account, error) {
		a.DisplayName = "Jane D."
		return a, nil
	})
	require.NoError(t, err)

	account, err = repo.GetAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane D.", account.DisplayName)

	all, err := repo.GetAllAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.DeleteAccount(ctx, "acc-1"))
	_, err = repo.GetAccount(ctx, "acc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSqlRepo_GetAccountByEmailNotFound(t *testing.T) {
	repo, ctx := setupTestRepo(t)

	_, err := repo.GetAccountByEmail(ctx, "nobody@invenpulse.dev")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSqlRepo_AuditEntries(t *testing.T) {
	repo, ctx := setupTestRepo(t)

	require.NoError(t, repo.SaveAuditEntry(ctx, &domain.AuditEntry{
		Severity: domain.AuditSeverityLevelLow,
		Origin:   "plain",
		Message:  "login succeeded: jane@invenpulse.dev",
	}))

	entries, err := repo.GetAuditEntries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].CreatedAt.IsZero())
}
