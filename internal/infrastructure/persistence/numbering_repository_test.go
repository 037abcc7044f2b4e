package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/estate/backend/internal/domain/invoicing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestGormNumberingRepository_SaveWithLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormNumberingRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	numbering, err := invoicing.NewInvoiceNumbering(tenantID, "P-INV-", 1, 5)
	require.NoError(t, err)
	numbering.MarkDefault(true)
	require.NoError(t, repo.Save(ctx, numbering))

	first, err := repo.FindByPrefix(ctx, tenantID, "P-INV-")
	require.NoError(t, err)
	second, err := repo.FindByPrefix(ctx, tenantID, "P-INV-")
	require.NoError(t, err)

	advanced := first.State().AdvancedTo(14)
	applied, err := first.Apply(advanced)
	require.NoError(t, err)
	require.True(t, applied)
	require.NoError(t, repo.SaveWithLock(ctx, first))

	t.Run("stale writer gets a conflict", func(t *testing.T) {
		require.NoError(t, second.Reconfigure(20, 5))
		err := repo.SaveWithLock(ctx, second)
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))

		stored, err := repo.FindByPrefix(ctx, tenantID, "P-INV-")
		require.NoError(t, err)
		assert.Equal(t, int64(14), stored.NextNumber)
		assert.Equal(t, 2, stored.Version)
	})

	t.Run("zero padding is written", func(t *testing.T) {
		stored, err := repo.FindByPrefix(ctx, tenantID, "P-INV-")
		require.NoError(t, err)
		require.NoError(t, stored.Reconfigure(14, 0))
		require.NoError(t, repo.SaveWithLock(ctx, stored))

		reloaded, err := repo.FindDefault(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, 0, reloaded.Padding)
		assert.Equal(t, 3, reloaded.Version)
	})
}

func TestGormNumberingRepository_Lookups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormNumberingRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	for _, prefix := range []string{"R-", "P-INV-"} {
		n, err := invoicing.NewInvoiceNumbering(tenantID, prefix, 1, 4)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, n))
	}

	all, err := repo.FindAllForTenant(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "P-INV-", all[0].Prefix)

	_, err = repo.FindDefault(ctx, tenantID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	_, err = repo.FindByPrefix(ctx, uuid.New(), "R-")
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	dup, err := invoicing.NewInvoiceNumbering(tenantID, "R-", 1, 4)
	require.NoError(t, err)
	assert.True(t, errors.Is(repo.Save(ctx, dup), shared.ErrAlreadyExists))
}

func TestGormNumberingRepository_SaveWithLockPropagatesDriverErrors(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	repo := NewGormNumberingRepository(gormDB)
	numbering, err := invoicing.NewInvoiceNumbering(uuid.New(), "P-INV-", 1, 5)
	require.NoError(t, err)
	require.NoError(t, numbering.Reconfigure(2, 5))

	t.Run("no rows affected is a conflict", func(t *testing.T) {
		mock.ExpectExec(`UPDATE "invoice_numberings" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), numbering)
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
	})

	t.Run("driver error is returned unchanged", func(t *testing.T) {
		driverErr := errors.New("connection reset by peer")
		mock.ExpectExec(`UPDATE "invoice_numberings" SET`).
			WillReturnError(driverErr)

		err := repo.SaveWithLock(context.Background(), numbering)
		assert.ErrorIs(t, err, driverErr)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
