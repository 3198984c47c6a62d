package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	errs "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/database/migration"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/logger"
	timeprovider "github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/time"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *TestDBManager {
	t.Helper()
	return NewTestDBManager(t, logger.NewNoopLogger(), timeprovider.NewManualTimeProvider(testStart))
}

func TestUnitOfWork_WithinTransaction(t *testing.T) {
	t.Run("Commits on success", func(t *testing.T) {
		db := newTestDB(t)
		db.CreateTestAccount(t, "alice", "100")
		uow := db.Manager.CreateUnitOfWork()

		err := uow.WithinTransaction(context.Background(), func(txCtx context.Context) error {
			repo := uow.GetAccountRepository(txCtx)
			account, err := repo.GetForUpdate(txCtx, "alice")
			if err != nil {
				return err
			}
			if err := account.Debit(decimalOf(t, "40"), testStart); err != nil {
				return err
			}
			return repo.Update(txCtx, account)
		})

		require.NoError(t, err)
		assert.Equal(t, "60", db.Balance(t, "alice"))
	})

	t.Run("Rolls back on error", func(t *testing.T) {
		db := newTestDB(t)
		db.CreateTestAccount(t, "alice", "100")
		uow := db.Manager.CreateUnitOfWork()

		err := uow.WithinTransaction(context.Background(), func(txCtx context.Context) error {
			repo := uow.GetAccountRepository(txCtx)
			account, err := repo.GetForUpdate(txCtx, "alice")
			if err != nil {
				return err
			}
			if err := account.Debit(decimalOf(t, "40"), testStart); err != nil {
				return err
			}
			if err := repo.Update(txCtx, account); err != nil {
				return err
			}
			return errs.ErrIncorrectAmount
		})

		assert.ErrorIs(t, err, errs.ErrIncorrectAmount)
		assert.Equal(t, "100", db.Balance(t, "alice"))
	})

	t.Run("Rolls back and re-panics", func(t *testing.T) {
		db := newTestDB(t)
		db.CreateTestAccount(t, "alice", "100")
		uow := db.Manager.CreateUnitOfWork()

		assert.Panics(t, func() {
			_ = uow.WithinTransaction(context.Background(), func(txCtx context.Context) error {
				repo := uow.GetAccountRepository(txCtx)
				account, _ := repo.GetForUpdate(txCtx, "alice")
				_ = account.Debit(decimalOf(t, "1"), testStart)
				_ = repo.Update(txCtx, account)
				panic("boom")
			})
		})
		assert.Equal(t, "100", db.Balance(t, "alice"))

		// the connection is usable again
		require.NoError(t, uow.WithinTransaction(context.Background(), func(context.Context) error { return nil }))
	})

	t.Run("Retries transient failures only", func(t *testing.T) {
		db := newTestDB(t)
		uow := db.Manager.CreateUnitOfWork()

		attempts := 0
		err := uow.WithinTransaction(context.Background(), func(context.Context) error {
			attempts++
			if attempts < 3 {
				return errors.New("database is locked")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)

		attempts = 0
		err = uow.WithinTransaction(context.Background(), func(context.Context) error {
			attempts++
			return errs.ErrNotBorrower
		})
		assert.ErrorIs(t, err, errs.ErrNotBorrower)
		assert.Equal(t, 1, attempts)
	})
}

func TestUnitOfWork_CommitWithoutTransaction(t *testing.T) {
	db := newTestDB(t)
	uow := db.Manager.CreateUnitOfWork()

	assert.ErrorIs(t, uow.Commit(context.Background()), ErrNoTransaction)
	assert.ErrorIs(t, uow.Rollback(context.Background()), ErrNoTransaction)
}

func TestMigrations(t *testing.T) {
	db := newTestDB(t)

	version, err := db.Manager.migrationMgr.GetCurrentVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, migration.CurrentSchemaVersion, version)
	assert.Equal(t, "0", db.CustodyBalance(t))

	// running again applies nothing new
	require.NoError(t, db.Manager.Migrate(context.Background()))
	assert.Equal(t, int64(3), db.CountRows(t, "migration_versions"))
	assert.Equal(t, int64(1), db.CountRows(t, "accounts"))
}

func decimalOf(t *testing.T, s string) entity.Amount {
	t.Helper()
	a, err := entity.ParseAmount(s)
	require.NoError(t, err)
	return a
}
