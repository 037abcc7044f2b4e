package invoicing

import (
	"time"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceCategory groups invoices by the workflow that produced them
type InvoiceCategory string

const (
	InvoiceCategoryProjectSale InvoiceCategory = "PROJECT_SALE"
	InvoiceCategoryRental      InvoiceCategory = "RENTAL"
)

// InvoiceKind tells a down payment apart from a periodic installment
type InvoiceKind string

const (
	InvoiceKindDownPayment InvoiceKind = "DOWN_PAYMENT"
	InvoiceKindInstallment InvoiceKind = "INSTALLMENT"
)

// InvoiceStatus represents the payment status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusUnpaid    InvoiceStatus = "UNPAID"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// GeneratedInvoice is one row of a generated schedule. It is never mutated after generation.
type GeneratedInvoice struct {
	InvoiceNumber    string          `json:"invoice_number"`
	Kind             InvoiceKind     `json:"kind"`
	Sequence         int64           `json:"sequence"`
	InstallmentIndex int             `json:"installment_index"`
	InstallmentCount int             `json:"installment_count"`
	Amount           decimal.Decimal `json:"amount"`
	IssueDate        time.Time       `json:"issue_date"`
	DueDate          time.Time       `json:"due_date"`
	Description      string          `json:"description"`
	AgreementID      uuid.UUID       `json:"agreement_id"`
	ClientID         uuid.UUID       `json:"client_id"`
	ProjectID        *uuid.UUID      `json:"project_id,omitempty"`
	UnitReferences   UnitReferences  `json:"unit_references"`
}

// Invoice is a persisted invoice issued against an agreement
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber    string          `json:"invoice_number"`
	Category         InvoiceCategory `json:"category"`
	Kind             InvoiceKind     `json:"kind"`
	Sequence         int64           `json:"sequence"`
	InstallmentIndex int             `json:"installment_index"`
	InstallmentCount int             `json:"installment_count"`
	Amount           decimal.Decimal `json:"amount"`
	IssueDate        time.Time       `json:"issue_date"`
	DueDate          time.Time       `json:"due_date"`
	Description      string          `json:"description"`
	AgreementID      uuid.UUID       `json:"agreement_id"`
	ContactID        uuid.UUID       `json:"contact_id"`
	ProjectID        *uuid.UUID      `json:"project_id,omitempty"`
	UnitReferences   UnitReferences  `json:"unit_references"`
	Status           InvoiceStatus   `json:"status"`
}

// NewInvoice issues an unpaid invoice for a generated schedule row
func NewInvoice(tenantID uuid.UUID, category InvoiceCategory, g GeneratedInvoice) *Invoice {
	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       g.InvoiceNumber,
		Category:            category,
		Kind:                g.Kind,
		Sequence:            g.Sequence,
		InstallmentIndex:    g.InstallmentIndex,
		InstallmentCount:    g.InstallmentCount,
		Amount:              g.Amount,
		IssueDate:           g.IssueDate,
		DueDate:             g.DueDate,
		Description:         g.Description,
		AgreementID:         g.AgreementID,
		ContactID:           g.ClientID,
		ProjectID:           g.ProjectID,
		UnitReferences:      g.UnitReferences.Clone(),
		Status:              InvoiceStatusUnpaid,
	}
	inv.AddDomainEvent(NewInvoiceIssuedEvent(inv))
	return inv
}

// IsDownPayment reports whether the invoice is the upfront share
func (i *Invoice) IsDownPayment() bool {
	return i.Kind == InvoiceKindDownPayment
}
