package invoicing

import (
	"context"
	"testing"

	"github.com/estate/backend/internal/domain/invoicing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(tenantID, agreementID uuid.UUID, number string, seq int64) invoicing.Invoice {
	due := date(2024, 3, 15).AddDate(0, int(seq)*3, 0)
	return *invoicing.NewInvoice(tenantID, invoicing.InvoiceCategoryRental, invoicing.GeneratedInvoice{
		InvoiceNumber: number,
		Kind:          invoicing.InvoiceKindInstallment,
		Sequence:      seq,
		Amount:        decimal.NewFromInt(100_000),
		IssueDate:     due,
		DueDate:       due,
		AgreementID:   agreementID,
		ClientID:      uuid.New(),
	})
}

func TestInvoiceService_ListByAgreement(t *testing.T) {
	m := newTestMocks()
	service := NewInvoiceService(m.invoices, m.agreements)
	ctx := context.Background()
	tenantID := uuid.New()
	agreement := newTestAgreement(t, tenantID)

	m.agreements.On("FindByIDForTenant", ctx, tenantID, agreement.ID).Return(agreement, nil)
	m.invoices.On("FindByAgreement", ctx, tenantID, agreement.ID).Return([]invoicing.Invoice{
		newTestInvoice(tenantID, agreement.ID, "P-INV-00001", 1),
		newTestInvoice(tenantID, agreement.ID, "P-INV-00002", 2),
	}, nil)

	items, err := service.ListByAgreement(ctx, tenantID, agreement.ID)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "P-INV-00001", items[0].InvoiceNumber)
	assert.Equal(t, "2024-06-15", items[0].DueDate)
	assert.Equal(t, "RENTAL", items[0].Category)
	assert.Equal(t, "UNPAID", items[0].Status)
	m.assertExpectations(t)
}

func TestInvoiceService_ListByAgreement_UnknownAgreement(t *testing.T) {
	m := newTestMocks()
	service := NewInvoiceService(m.invoices, m.agreements)
	ctx := context.Background()
	tenantID := uuid.New()
	id := uuid.New()

	m.agreements.On("FindByIDForTenant", ctx, tenantID, id).Return(nil, shared.ErrNotFound)

	_, err := service.ListByAgreement(ctx, tenantID, id)

	assert.ErrorIs(t, err, shared.ErrNotFound)
	m.invoices.AssertNotCalled(t, "FindByAgreement", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_List_ParsesDueRange(t *testing.T) {
	m := newTestMocks()
	service := NewInvoiceService(m.invoices, m.agreements)
	ctx := context.Background()
	tenantID := uuid.New()

	matchFilter := mock.MatchedBy(func(f invoicing.InvoiceFilter) bool {
		return f.OrderBy == "due_date" && f.OrderDir == "asc" &&
			f.DueFrom != nil && f.DueFrom.Equal(date(2024, 1, 1)) &&
			f.DueTo != nil && f.DueTo.Equal(date(2024, 12, 31)) &&
			f.Kind != nil && *f.Kind == invoicing.InvoiceKindInstallment
	})
	m.invoices.On("FindAllForTenant", ctx, tenantID, matchFilter).Return([]invoicing.Invoice{}, nil)
	m.invoices.On("CountForTenant", ctx, tenantID, matchFilter).Return(int64(0), nil)

	items, total, err := service.List(ctx, tenantID, InvoiceListFilter{
		DueFrom: "2024-01-01",
		DueTo:   "2024-12-31",
		Kind:    "INSTALLMENT",
	})

	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
	m.assertExpectations(t)
}

func TestInvoiceService_List_InvalidDate(t *testing.T) {
	m := newTestMocks()
	service := NewInvoiceService(m.invoices, m.agreements)

	_, _, err := service.List(context.Background(), uuid.New(), InvoiceListFilter{DueFrom: "last week"})

	domainErr, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, invoicing.CodeInvalidDate, domainErr.Code)
}

func TestInvoiceService_GetByID(t *testing.T) {
	m := newTestMocks()
	service := NewInvoiceService(m.invoices, m.agreements)
	ctx := context.Background()
	tenantID := uuid.New()
	inv := newTestInvoice(tenantID, uuid.New(), "P-INV-00003", 3)

	m.invoices.On("FindByIDForTenant", ctx, tenantID, inv.ID).Return(&inv, nil)

	result, err := service.GetByID(ctx, tenantID, inv.ID)

	require.NoError(t, err)
	assert.Equal(t, inv.ID, result.ID)
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(100_000)))
}
