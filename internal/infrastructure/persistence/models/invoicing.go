package models

import (
	"time"

	"github.com/estate/backend/internal/domain/invoicing"
	"github.com/estate/backend/internal/domain/shared/calendar"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleAgreementModel is the persistence model for the SaleAgreement aggregate root
type SaleAgreementModel struct {
	TenantAggregateModel
	AgreementNumber           string                    `gorm:"type:varchar(50);not null;uniqueIndex:idx_sale_agreements_number"`
	Kind                      invoicing.AgreementKind   `gorm:"type:varchar(20);not null;index"`
	SellingPrice              decimal.Decimal           `gorm:"type:numeric(38,16);not null"`
	IssueDate                 time.Time                 `gorm:"type:date;not null"`
	ClientID                  uuid.UUID                 `gorm:"type:uuid;not null;index"`
	ProjectID                 *uuid.UUID                `gorm:"type:uuid;index"`
	UnitReferences            invoicing.UnitReferences  `gorm:"type:jsonb;not null;default:'[]'"`
	Status                    invoicing.AgreementStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	PlanDurationYears         decimal.NullDecimal       `gorm:"type:numeric(10,4)"`
	PlanDownPaymentPercentage decimal.NullDecimal       `gorm:"type:numeric(9,4)"`
	PlanFrequency             *string                   `gorm:"type:varchar(20)"`
	Remark                    string                    `gorm:"type:text"`
	CancelledAt               *time.Time
	CancelReason              string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (SaleAgreementModel) TableName() string {
	return "sale_agreements"
}

// ToDomain converts the persistence model to a domain SaleAgreement
func (m *SaleAgreementModel) ToDomain() *invoicing.SaleAgreement {
	a := &invoicing.SaleAgreement{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		AgreementNumber:     m.AgreementNumber,
		Kind:                m.Kind,
		SellingPrice:        m.SellingPrice,
		IssueDate:           calendar.DateOnly(m.IssueDate),
		ClientID:            m.ClientID,
		ProjectID:           m.ProjectID,
		UnitReferences:      m.UnitReferences,
		Status:              m.Status,
		Remark:              m.Remark,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
	}
	if m.PlanFrequency != nil && m.PlanDurationYears.Valid {
		a.Plan = &invoicing.InstallmentPlan{
			DurationYears:         m.PlanDurationYears.Decimal,
			DownPaymentPercentage: m.PlanDownPaymentPercentage.Decimal,
			Frequency:             invoicing.Frequency(*m.PlanFrequency),
		}
	}
	if a.UnitReferences == nil {
		a.UnitReferences = invoicing.UnitReferences{}
	}
	return a
}

// SaleAgreementModelFromDomain creates a persistence model from a domain SaleAgreement
func SaleAgreementModelFromDomain(a *invoicing.SaleAgreement) *SaleAgreementModel {
	m := &SaleAgreementModel{
		AgreementNumber: a.AgreementNumber,
		Kind:            a.Kind,
		SellingPrice:    a.SellingPrice,
		IssueDate:       a.IssueDate,
		ClientID:        a.ClientID,
		ProjectID:       a.ProjectID,
		UnitReferences:  a.UnitReferences,
		Status:          a.Status,
		Remark:          a.Remark,
		CancelledAt:     a.CancelledAt,
		CancelReason:    a.CancelReason,
	}
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	if a.Plan != nil {
		freq := string(a.Plan.Frequency)
		m.PlanFrequency = &freq
		m.PlanDurationYears = decimal.NewNullDecimal(a.Plan.DurationYears)
		m.PlanDownPaymentPercentage = decimal.NewNullDecimal(a.Plan.DownPaymentPercentage)
	}
	return m
}

// InvoiceModel is the persistence model for the Invoice aggregate root
type InvoiceModel struct {
	TenantAggregateModel
	InvoiceNumber    string                    `gorm:"type:varchar(60);not null;uniqueIndex:idx_invoices_number"`
	Category         invoicing.InvoiceCategory `gorm:"type:varchar(30);not null;index"`
	Kind             invoicing.InvoiceKind     `gorm:"type:varchar(20);not null"`
	Sequence         int64                     `gorm:"not null"`
	InstallmentIndex int                       `gorm:"not null;default:0"`
	InstallmentCount int                       `gorm:"not null;default:0"`
	Amount           decimal.Decimal           `gorm:"type:numeric(38,16);not null"`
	IssueDate        time.Time                 `gorm:"type:date;not null"`
	DueDate          time.Time                 `gorm:"type:date;not null;index"`
	Description      string                    `gorm:"type:varchar(200);not null"`
	AgreementID      uuid.UUID                 `gorm:"type:uuid;not null;index"`
	ContactID        uuid.UUID                 `gorm:"type:uuid;not null;index"`
	ProjectID        *uuid.UUID                `gorm:"type:uuid;index"`
	UnitReferences   invoicing.UnitReferences  `gorm:"type:jsonb;not null;default:'[]'"`
	Status           invoicing.InvoiceStatus   `gorm:"type:varchar(20);not null;default:'UNPAID';index"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	inv := &invoicing.Invoice{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		InvoiceNumber:       m.InvoiceNumber,
		Category:            m.Category,
		Kind:                m.Kind,
		Sequence:            m.Sequence,
		InstallmentIndex:    m.InstallmentIndex,
		InstallmentCount:    m.InstallmentCount,
		Amount:              m.Amount,
		IssueDate:           calendar.DateOnly(m.IssueDate),
		DueDate:             calendar.DateOnly(m.DueDate),
		Description:         m.Description,
		AgreementID:         m.AgreementID,
		ContactID:           m.ContactID,
		ProjectID:           m.ProjectID,
		UnitReferences:      m.UnitReferences,
		Status:              m.Status,
	}
	if inv.UnitReferences == nil {
		inv.UnitReferences = invoicing.UnitReferences{}
	}
	return inv
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		InvoiceNumber:    inv.InvoiceNumber,
		Category:         inv.Category,
		Kind:             inv.Kind,
		Sequence:         inv.Sequence,
		InstallmentIndex: inv.InstallmentIndex,
		InstallmentCount: inv.InstallmentCount,
		Amount:           inv.Amount,
		IssueDate:        inv.IssueDate,
		DueDate:          inv.DueDate,
		Description:      inv.Description,
		AgreementID:      inv.AgreementID,
		ContactID:        inv.ContactID,
		ProjectID:        inv.ProjectID,
		UnitReferences:   inv.UnitReferences,
		Status:           inv.Status,
	}
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	return m
}

// InvoiceNumberingModel is the persistence model for a numbering configuration
type InvoiceNumberingModel struct {
	TenantAggregateModel
	Prefix     string `gorm:"type:varchar(20);not null;uniqueIndex:idx_invoice_numberings_prefix"`
	NextNumber int64  `gorm:"not null;default:1"`
	Padding    int    `gorm:"not null;default:5"`
	IsDefault  bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (InvoiceNumberingModel) TableName() string {
	return "invoice_numberings"
}

// ToDomain converts the persistence model to a domain InvoiceNumbering
func (m *InvoiceNumberingModel) ToDomain() *invoicing.InvoiceNumbering {
	return &invoicing.InvoiceNumbering{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Prefix:              m.Prefix,
		NextNumber:          m.NextNumber,
		Padding:             m.Padding,
		IsDefault:           m.IsDefault,
	}
}

// InvoiceNumberingModelFromDomain creates a persistence model from a domain InvoiceNumbering
func InvoiceNumberingModelFromDomain(n *invoicing.InvoiceNumbering) *InvoiceNumberingModel {
	m := &InvoiceNumberingModel{
		Prefix:     n.Prefix,
		NextNumber: n.NextNumber,
		Padding:    n.Padding,
		IsDefault:  n.IsDefault,
	}
	m.FromDomainTenantAggregateRoot(n.TenantAggregateRoot)
	return m
}

