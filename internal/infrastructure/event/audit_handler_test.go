package event

import (
	"context"
	"testing"
	"time"

	"github.com/estate/backend/internal/domain/invoicing"
	"github.com/estate/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInvoicingAuditHandler_Handle(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := NewInvoicingAuditHandler(zap.New(core))

	tenantID := uuid.New()
	agreementID := uuid.New()
	inv := invoicing.NewInvoice(tenantID, invoicing.InvoiceCategoryProjectSale, invoicing.GeneratedInvoice{
		InvoiceNumber: "P-INV-00001",
		Kind:          invoicing.InvoiceKindDownPayment,
		Sequence:      1,
		Amount:        decimal.NewFromInt(240000),
		IssueDate:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		AgreementID:   agreementID,
		ClientID:      uuid.New(),
	})
	events := inv.GetDomainEvents()
	require.Len(t, events, 1)

	ctx, _ := logger.WithRequestID(context.Background(), zap.NewNop(), "req-42")
	require.NoError(t, handler.Handle(ctx, events[0]))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "audit", entry.LoggerName)
	fields := entry.ContextMap()
	assert.Equal(t, invoicing.EventTypeInvoiceIssued, fields["event_type"])
	assert.Equal(t, "P-INV-00001", fields["invoice_number"])
	assert.Equal(t, "240000", fields["amount"])
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, tenantID.String(), fields["tenant_id"])
}

func TestInvoicingAuditHandler_EventTypes(t *testing.T) {
	handler := NewInvoicingAuditHandler(zap.NewNop())
	assert.ElementsMatch(t, []string{
		invoicing.EventTypeAgreementCreated,
		invoicing.EventTypeInvoiceIssued,
		invoicing.EventTypeScheduleGenerated,
	}, handler.EventTypes())
}
