package invoicing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/calendar"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AgreementKind distinguishes project sales from rentals
type AgreementKind string

const (
	AgreementKindProject AgreementKind = "PROJECT"
	AgreementKindRental  AgreementKind = "RENTAL"
)

// IsValid checks if the kind is a valid AgreementKind
func (k AgreementKind) IsValid() bool {
	return k == AgreementKindProject || k == AgreementKindRental
}

// InvoiceCategory returns the category stamped on invoices of this kind
func (k AgreementKind) InvoiceCategory() InvoiceCategory {
	if k == AgreementKindRental {
		return InvoiceCategoryRental
	}
	return InvoiceCategoryProjectSale
}

// AgreementStatus represents the lifecycle of an agreement
type AgreementStatus string

const (
	AgreementStatusActive    AgreementStatus = "ACTIVE"
	AgreementStatusCancelled AgreementStatus = "CANCELLED"
)

// UnitReferences lists the units covered by an agreement, stored as JSONB
type UnitReferences []string

// Value implements driver.Valuer interface for GORM to store as JSONB
func (u UnitReferences) Value() (driver.Value, error) {
	if u == nil {
		return "[]", nil
	}
	b, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (u *UnitReferences) Scan(value interface{}) error {
	if value == nil {
		*u = UnitReferences{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan UnitReferences: unsupported type")
	}

	if len(bytes) == 0 {
		*u = UnitReferences{}
		return nil
	}
	return json.Unmarshal(bytes, u)
}

// Clone returns an independent copy
func (u UnitReferences) Clone() UnitReferences {
	out := make(UnitReferences, len(u))
	copy(out, u)
	return out
}

// SaleAgreement is a project sale or rental agreement that invoices are generated from
type SaleAgreement struct {
	shared.TenantAggregateRoot
	AgreementNumber string           `json:"agreement_number"`
	Kind            AgreementKind    `json:"kind"`
	SellingPrice    decimal.Decimal  `json:"selling_price"`
	IssueDate       time.Time        `json:"issue_date"`
	ClientID        uuid.UUID        `json:"client_id"`
	ProjectID       *uuid.UUID       `json:"project_id,omitempty"`
	UnitReferences  UnitReferences   `json:"unit_references"`
	Status          AgreementStatus  `json:"status"`
	Plan            *InstallmentPlan `json:"plan,omitempty"`
	Remark          string           `json:"remark"`
	CancelledAt     *time.Time       `json:"cancelled_at,omitempty"`
	CancelReason    string           `json:"cancel_reason,omitempty"`
}

// NewSaleAgreement creates a new agreement
func NewSaleAgreement(
	tenantID uuid.UUID,
	agreementNumber string,
	kind AgreementKind,
	sellingPrice decimal.Decimal,
	issueDate time.Time,
	clientID uuid.UUID,
	projectID *uuid.UUID,
	units []string,
) (*SaleAgreement, error) {
	agreementNumber = strings.TrimSpace(agreementNumber)
	if agreementNumber == "" {
		return nil, shared.NewDomainError(CodeInvalidAgreement, "Agreement number cannot be empty")
	}
	if len(agreementNumber) > 50 {
		return nil, shared.NewDomainError(CodeInvalidAgreement, "Agreement number cannot exceed 50 characters")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError(CodeInvalidAgreement, fmt.Sprintf("Unknown agreement kind %q", kind))
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError(CodeInvalidAgreement, "Client ID cannot be empty")
	}

	a := &SaleAgreement{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AgreementNumber:     agreementNumber,
		Kind:                kind,
		SellingPrice:        sellingPrice,
		IssueDate:           calendar.DateOnly(issueDate),
		ClientID:            clientID,
		ProjectID:           projectID,
		UnitReferences:      UnitReferences(units).Clone(),
		Status:              AgreementStatusActive,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	a.AddDomainEvent(NewAgreementCreatedEvent(a))
	return a, nil
}

// Validate checks the financial terms carried by the agreement
func (a *SaleAgreement) Validate() error {
	if a.SellingPrice.IsNegative() {
		return shared.NewDomainError(CodeInvalidAgreement, "Selling price cannot be negative")
	}
	if a.IssueDate.IsZero() {
		return shared.NewDomainError(CodeInvalidDate, "Agreement issue date is required")
	}
	return nil
}

// SetPlan attaches or replaces the installment plan
func (a *SaleAgreement) SetPlan(plan InstallmentPlan) error {
	if a.Status == AgreementStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot change the plan of a cancelled agreement")
	}
	if err := plan.Validate(); err != nil {
		return err
	}
	a.Plan = &plan
	a.IncrementVersion()
	return nil
}

// ClearPlan removes the installment plan
func (a *SaleAgreement) ClearPlan() {
	a.Plan = nil
	a.IncrementVersion()
}

// Cancel marks the agreement as cancelled
func (a *SaleAgreement) Cancel(reason string) error {
	if a.Status == AgreementStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Agreement is already cancelled")
	}
	now := time.Now()
	a.Status = AgreementStatusCancelled
	a.CancelledAt = &now
	a.CancelReason = reason
	a.IncrementVersion()
	return nil
}

// CanInvoice returns an error when invoices must not be generated for the agreement
func (a *SaleAgreement) CanInvoice() error {
	if a.Status == AgreementStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot generate invoices for a cancelled agreement")
	}
	return nil
}
