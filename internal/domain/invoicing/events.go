package invoicing

import (
	"time"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeAgreementCreated   = "AgreementCreated"
	EventTypeInvoiceIssued      = "InvoiceIssued"
	EventTypeScheduleGenerated  = "InstallmentScheduleGenerated"
	AggregateTypeAgreement      = "SaleAgreement"
	AggregateTypeInvoice        = "Invoice"
	AggregateTypeNumberingState = "InvoiceNumbering"
)

func agreementRef(id uuid.UUID) shared.AggregateRef {
	return shared.AggregateRef{Type: AggregateTypeAgreement, ID: id}
}

// AgreementCreatedEvent is raised when an agreement is recorded
type AgreementCreatedEvent struct {
	shared.BaseDomainEvent
	AgreementNumber string          `json:"agreement_number"`
	Kind            AgreementKind   `json:"kind"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	ClientID        uuid.UUID       `json:"client_id"`
}

// NewAgreementCreatedEvent creates a new AgreementCreatedEvent
func NewAgreementCreatedEvent(a *SaleAgreement) *AgreementCreatedEvent {
	return &AgreementCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAgreementCreated, agreementRef(a.ID), a.TenantID),
		AgreementNumber: a.AgreementNumber,
		Kind:            a.Kind,
		SellingPrice:    a.SellingPrice,
		ClientID:        a.ClientID,
	}
}

// InvoiceIssuedEvent is raised for every invoice created from a schedule
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	AgreementID   uuid.UUID       `json:"agreement_id"`
	Kind          InvoiceKind     `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       time.Time       `json:"due_date"`
}

// NewInvoiceIssuedEvent creates a new InvoiceIssuedEvent
func NewInvoiceIssuedEvent(inv *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, shared.AggregateRef{Type: AggregateTypeInvoice, ID: inv.ID}, inv.TenantID),
		InvoiceNumber:   inv.InvoiceNumber,
		AgreementID:     inv.AgreementID,
		Kind:            inv.Kind,
		Amount:          inv.Amount,
		DueDate:         inv.DueDate,
	}
}

// ScheduleGeneratedEvent summarizes one committed generation
type ScheduleGeneratedEvent struct {
	shared.BaseDomainEvent
	Prefix         string          `json:"prefix"`
	InvoiceCount   int             `json:"invoice_count"`
	FirstNumber    string          `json:"first_number"`
	LastNumber     string          `json:"last_number"`
	NextNumber     int64           `json:"next_number"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	DownPayment    decimal.Decimal `json:"down_payment"`
	InstallmentSum decimal.Decimal `json:"installment_sum"`
}

// NewScheduleGeneratedEvent creates a new ScheduleGeneratedEvent
func NewScheduleGeneratedEvent(tenantID, agreementID uuid.UUID, result *GenerationResult) *ScheduleGeneratedEvent {
	e := &ScheduleGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeScheduleGenerated, agreementRef(agreementID), tenantID),
		Prefix:          result.Numbering.Prefix,
		InvoiceCount:    len(result.Invoices),
		NextNumber:      result.Numbering.NextNumber,
		TotalAmount:     result.Total(),
		DownPayment:     result.DownPayment,
		InstallmentSum:  result.InstallmentAmount.Mul(decimal.NewFromInt(int64(result.InstallmentsEmitted()))),
	}
	if n := len(result.Invoices); n > 0 {
		e.FirstNumber = result.Invoices[0].InvoiceNumber
		e.LastNumber = result.Invoices[n-1].InvoiceNumber
	}
	return e
}
