package persistence

import (
	"testing"
	"time"

	"github.com/estate/backend/internal/domain/invoicing"
	"github.com/estate/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// One connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.SaleAgreementModel{},
		&models.InvoiceModel{},
		&models.InvoiceNumberingModel{},
	))
	return db
}

func newTestAgreement(t *testing.T, tenantID uuid.UUID, number string) *invoicing.SaleAgreement {
	t.Helper()
	projectID := uuid.New()
	a, err := invoicing.NewSaleAgreement(
		tenantID,
		number,
		invoicing.AgreementKindProject,
		decimal.NewFromInt(1200000),
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		uuid.New(),
		&projectID,
		[]string{"A-101", "A-102"},
	)
	require.NoError(t, err)
	return a
}

func newTestInvoice(tenantID, agreementID uuid.UUID, number string, seq int64) *invoicing.Invoice {
	due := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC).AddDate(0, int(seq), 0)
	return invoicing.NewInvoice(tenantID, invoicing.InvoiceCategoryProjectSale, invoicing.GeneratedInvoice{
		InvoiceNumber:    number,
		Kind:             invoicing.InvoiceKindInstallment,
		Sequence:         seq,
		InstallmentIndex: int(seq),
		InstallmentCount: 12,
		Amount:           decimal.NewFromInt(80000),
		IssueDate:        due,
		DueDate:          due,
		Description:      "Installment",
		AgreementID:      agreementID,
		ClientID:         uuid.New(),
		UnitReferences:   invoicing.UnitReferences{"A-101"},
	})
}
