package event

import (
	"context"

	"github.com/estate/backend/internal/domain/invoicing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// InvoicingAuditHandler writes an audit log line for every invoicing event
type InvoicingAuditHandler struct {
	logger *zap.Logger
}

// NewInvoicingAuditHandler creates the audit handler
func NewInvoicingAuditHandler(l *zap.Logger) *InvoicingAuditHandler {
	return &InvoicingAuditHandler{logger: l.Named("audit")}
}

// EventTypes lists the invoicing events that are audited
func (h *InvoicingAuditHandler) EventTypes() []string {
	return []string{
		invoicing.EventTypeAgreementCreated,
		invoicing.EventTypeInvoiceIssued,
		invoicing.EventTypeScheduleGenerated,
	}
}

// Handle logs the event with its business fields
func (h *InvoicingAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("aggregate_id", event.AggregateID().String()),
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}

	switch e := event.(type) {
	case *invoicing.AgreementCreatedEvent:
		fields = append(fields,
			zap.String("agreement_number", e.AgreementNumber),
			zap.String("kind", string(e.Kind)),
			zap.String("selling_price", e.SellingPrice.String()),
		)
	case *invoicing.InvoiceIssuedEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("kind", string(e.Kind)),
			zap.String("amount", e.Amount.String()),
		)
	case *invoicing.ScheduleGeneratedEvent:
		fields = append(fields,
			zap.String("prefix", e.Prefix),
			zap.Int("invoice_count", e.InvoiceCount),
			zap.String("first_number", e.FirstNumber),
			zap.String("last_number", e.LastNumber),
			zap.Int64("next_number", e.NextNumber),
			zap.String("total_amount", e.TotalAmount.String()),
		)
	}

	h.logger.Info("invoicing event", fields...)
	return nil
}

var _ shared.EventHandler = (*InvoicingAuditHandler)(nil)
