//go:build integration

package invoicing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/estate/backend/internal/domain/invoicing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/infrastructure/cache"
	"github.com/estate/backend/internal/infrastructure/migration"
	"github.com/estate/backend/internal/infrastructure/persistence"
	"github.com/estate/backend/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// startPostgres runs a PostgreSQL container with the embedded schema applied
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("estate_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, migrations.FS, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, m.Up())

	return db
}

func TestScheduleService_Postgres_GenerateAndContinue(t *testing.T) {
	db := startPostgres(t)
	repos := persistence.NewRepositories(db)
	service := NewScheduleService(repos, persistence.NewGormUnitOfWork(db), zaptest.NewLogger(t))

	ctx := context.Background()
	tenantID := uuid.New()
	agreement := seedSchedule(t, repos, tenantID)

	resp, err := service.Generate(ctx, tenantID, agreement.ID, ScheduleRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 9)

	stored, err := repos.Invoices.FindByAgreement(ctx, tenantID, agreement.ID)
	require.NoError(t, err)
	require.Len(t, stored, 9)
	assert.True(t, stored[0].Amount.Equal(resp.Invoices[0].Amount))
	assert.Equal(t, resp.Invoices[8].DueDate, stored[8].DueDate.Format("2006-01-02"))

	_, err = service.Generate(ctx, tenantID, agreement.ID, ScheduleRequest{})
	assert.ErrorIs(t, err, invoicing.ErrScheduleExists)

	numbering, err := repos.Numbering.FindByPrefix(ctx, tenantID, "P-INV-")
	require.NoError(t, err)
	assert.Equal(t, int64(10), numbering.NextNumber)
}

func TestScheduleService_Postgres_ConcurrentGenerationsNeverShareNumbers(t *testing.T) {
	db := startPostgres(t)
	repos := persistence.NewRepositories(db)
	service := NewScheduleService(repos, persistence.NewGormUnitOfWork(db), zaptest.NewLogger(t))
	service.SetLocker(cache.NewInMemoryLocker())

	ctx := context.Background()
	tenantID := uuid.New()
	require.NoError(t, repos.Numbering.Save(ctx, newTestNumbering(t, tenantID, "P-INV-", 1)))

	const workers = 4
	agreementIDs := make([]uuid.UUID, workers)
	for i := range agreementIDs {
		a := newTestAgreement(t, tenantID)
		a.AgreementNumber = fmt.Sprintf("AGR-%03d", i)
		require.NoError(t, repos.Agreements.Save(ctx, a))
		agreementIDs[i] = a.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i, id := range agreementIDs {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = service.Generate(ctx, tenantID, id, ScheduleRequest{})
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, shared.ErrLocked) || errors.Is(err, shared.ErrConcurrencyConflict), err)
	}
	require.Positive(t, succeeded)

	numbers, err := repos.Invoices.ListNumbersWithPrefix(ctx, tenantID, "P-INV-")
	require.NoError(t, err)
	assert.Len(t, numbers, succeeded*9)

	seen := make(map[string]bool, len(numbers))
	for _, n := range numbers {
		assert.False(t, seen[n], "duplicate invoice number %s", n)
		seen[n] = true
	}

	numbering, err := repos.Numbering.FindByPrefix(ctx, tenantID, "P-INV-")
	require.NoError(t, err)
	assert.Equal(t, int64(1+succeeded*9), numbering.NextNumber)
}
