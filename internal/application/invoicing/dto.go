package invoicing

import (
	"time"

	"github.com/estate/backend/internal/domain/invoicing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/calendar"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Plan DTOs
// =============================================================================

// PlanRequest carries installment plan terms
type PlanRequest struct {
	DurationYears         decimal.Decimal `json:"duration_years"`
	DownPaymentPercentage decimal.Decimal `json:"down_payment_percentage"`
	Frequency             string          `json:"frequency" binding:"required,max=20"`
}

// ToDomain converts the request into a validated plan
func (r PlanRequest) ToDomain() (invoicing.InstallmentPlan, error) {
	freq, err := invoicing.ParseFrequency(r.Frequency)
	if err != nil {
		return invoicing.InstallmentPlan{}, err
	}
	return invoicing.NewInstallmentPlan(r.DurationYears, r.DownPaymentPercentage, freq)
}

// PlanResponse represents an installment plan in API responses
type PlanResponse struct {
	DurationYears         decimal.Decimal `json:"duration_years"`
	DownPaymentPercentage decimal.Decimal `json:"down_payment_percentage"`
	Frequency             string          `json:"frequency"`
	PeriodMonths          int             `json:"period_months"`
	TotalInstallments     int             `json:"total_installments"`
}

// ToPlanResponse converts a plan to a response, returning nil for no plan
func ToPlanResponse(p *invoicing.InstallmentPlan) *PlanResponse {
	if p == nil {
		return nil
	}
	return &PlanResponse{
		DurationYears:         p.DurationYears,
		DownPaymentPercentage: p.DownPaymentPercentage,
		Frequency:             p.Frequency.String(),
		PeriodMonths:          p.Frequency.PeriodMonths(),
		TotalInstallments:     p.TotalInstallments(),
	}
}

// =============================================================================
// Agreement DTOs
// =============================================================================

// CreateAgreementRequest represents a request to record a sale or rental agreement
type CreateAgreementRequest struct {
	AgreementNumber string          `json:"agreement_number" binding:"required,min=1,max=50"`
	Kind            string          `json:"kind" binding:"required,oneof=PROJECT RENTAL"`
	SellingPrice    decimal.Decimal `json:"selling_price" binding:"required"`
	IssueDate       string          `json:"issue_date" binding:"required"`
	ClientID        uuid.UUID       `json:"client_id" binding:"required"`
	ProjectID       *uuid.UUID      `json:"project_id"`
	UnitReferences  []string        `json:"unit_references" binding:"omitempty,dive,min=1,max=100"`
	Remark          string          `json:"remark" binding:"max=500"`
	Plan            *PlanRequest    `json:"plan"`
}

// CancelAgreementRequest represents a request to cancel an agreement
type CancelAgreementRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// AgreementResponse represents an agreement in API responses
type AgreementResponse struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	AgreementNumber string          `json:"agreement_number"`
	Kind            string          `json:"kind"`
	InvoiceCategory string          `json:"invoice_category"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	IssueDate       string          `json:"issue_date"`
	ClientID        uuid.UUID       `json:"client_id"`
	ProjectID       *uuid.UUID      `json:"project_id,omitempty"`
	UnitReferences  []string        `json:"unit_references"`
	Status          string          `json:"status"`
	Plan            *PlanResponse   `json:"plan,omitempty"`
	Remark          string          `json:"remark"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason    string          `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// AgreementListResponse represents an agreement row in list responses
type AgreementListResponse struct {
	ID              uuid.UUID       `json:"id"`
	AgreementNumber string          `json:"agreement_number"`
	Kind            string          `json:"kind"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	IssueDate       string          `json:"issue_date"`
	ClientID        uuid.UUID       `json:"client_id"`
	Status          string          `json:"status"`
	HasPlan         bool            `json:"has_plan"`
	CreatedAt       time.Time       `json:"created_at"`
}

// AgreementListFilter represents filter options for agreement list
type AgreementListFilter struct {
	Search   string     `form:"search"`
	Kind     string     `form:"kind" binding:"omitempty,oneof=PROJECT RENTAL"`
	Status   string     `form:"status" binding:"omitempty,oneof=ACTIVE CANCELLED"`
	ClientID *uuid.UUID `form:"-"`
	Page     int        `form:"page" binding:"min=0"`
	PageSize int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToAgreementResponse converts a domain agreement to a response
func ToAgreementResponse(a *invoicing.SaleAgreement) AgreementResponse {
	units := a.UnitReferences.Clone()
	return AgreementResponse{
		ID:              a.ID,
		TenantID:        a.TenantID,
		AgreementNumber: a.AgreementNumber,
		Kind:            string(a.Kind),
		InvoiceCategory: string(a.Kind.InvoiceCategory()),
		SellingPrice:    a.SellingPrice,
		IssueDate:       calendar.Format(a.IssueDate),
		ClientID:        a.ClientID,
		ProjectID:       a.ProjectID,
		UnitReferences:  units,
		Status:          string(a.Status),
		Plan:            ToPlanResponse(a.Plan),
		Remark:          a.Remark,
		CancelledAt:     a.CancelledAt,
		CancelReason:    a.CancelReason,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
		Version:         a.Version,
	}
}

// ToAgreementListResponse converts a domain agreement to a list row
func ToAgreementListResponse(a *invoicing.SaleAgreement) AgreementListResponse {
	return AgreementListResponse{
		ID:              a.ID,
		AgreementNumber: a.AgreementNumber,
		Kind:            string(a.Kind),
		SellingPrice:    a.SellingPrice,
		IssueDate:       calendar.Format(a.IssueDate),
		ClientID:        a.ClientID,
		Status:          string(a.Status),
		HasPlan:         a.Plan != nil,
		CreatedAt:       a.CreatedAt,
	}
}

// ToAgreementListResponses converts a slice of agreements to list rows
func ToAgreementListResponses(agreements []invoicing.SaleAgreement) []AgreementListResponse {
	responses := make([]AgreementListResponse, len(agreements))
	for i := range agreements {
		responses[i] = ToAgreementListResponse(&agreements[i])
	}
	return responses
}

// =============================================================================
// Schedule DTOs
// =============================================================================

// ScheduleRequest controls a preview or generation call
type ScheduleRequest struct {
	// Prefix selects a numbering configuration; empty uses the tenant default
	Prefix string `json:"prefix" binding:"max=20"`
	// Plan overrides the agreement's stored plan for this call
	Plan *PlanRequest `json:"plan"`
	// SkipIfNoPlan completes with an empty schedule when no plan is available
	SkipIfNoPlan bool `json:"skip_if_no_plan"`
	// Force allows generating again for an agreement that already has invoices
	Force bool `json:"force"`
}

// GeneratedInvoiceResponse is one schedule row
type GeneratedInvoiceResponse struct {
	InvoiceNumber    string          `json:"invoice_number"`
	Kind             string          `json:"kind"`
	Sequence         int64           `json:"sequence"`
	InstallmentIndex int             `json:"installment_index"`
	InstallmentCount int             `json:"installment_count"`
	Amount           decimal.Decimal `json:"amount"`
	IssueDate        string          `json:"issue_date"`
	DueDate          string          `json:"due_date"`
	Description      string          `json:"description"`
	UnitReferences   []string        `json:"unit_references"`
}

// NumberingStateResponse is the counter value after a generation
type NumberingStateResponse struct {
	Prefix     string `json:"prefix"`
	NextNumber int64  `json:"next_number"`
	Padding    int    `json:"padding"`
	Version    int    `json:"version"`
}

// ScheduleResponse is the outcome of a preview or generation call
type ScheduleResponse struct {
	AgreementID       uuid.UUID                  `json:"agreement_id"`
	Category          string                     `json:"category"`
	Persisted         bool                       `json:"persisted"`
	Skipped           bool                       `json:"skipped"`
	Plan              *PlanResponse              `json:"plan,omitempty"`
	DownPayment       decimal.Decimal            `json:"down_payment"`
	Remaining         decimal.Decimal            `json:"remaining"`
	InstallmentAmount decimal.Decimal            `json:"installment_amount"`
	TotalInstallments int                        `json:"total_installments"`
	PeriodMonths      int                        `json:"period_months"`
	Total             decimal.Decimal            `json:"total"`
	Invoices          []GeneratedInvoiceResponse `json:"invoices"`
	Numbering         *NumberingStateResponse    `json:"numbering,omitempty"`
}

// ToScheduleResponse converts a generation result to a response
func ToScheduleResponse(agreement *invoicing.SaleAgreement, plan *invoicing.InstallmentPlan, result *invoicing.GenerationResult) ScheduleResponse {
	resp := ScheduleResponse{
		AgreementID: agreement.ID,
		Category:    string(agreement.Kind.InvoiceCategory()),
		Plan:        ToPlanResponse(plan),
		Invoices:    []GeneratedInvoiceResponse{},
		Total:       decimal.Zero,
	}
	if result == nil {
		resp.Skipped = true
		return resp
	}

	resp.DownPayment = result.DownPayment
	resp.Remaining = result.Remaining
	resp.InstallmentAmount = result.InstallmentAmount
	resp.TotalInstallments = result.TotalInstallments
	resp.PeriodMonths = result.PeriodMonths
	resp.Total = result.Total()
	resp.Numbering = &NumberingStateResponse{
		Prefix:     result.Numbering.Prefix,
		NextNumber: result.Numbering.NextNumber,
		Padding:    result.Numbering.Padding,
		Version:    result.Numbering.Version,
	}
	for _, inv := range result.Invoices {
		resp.Invoices = append(resp.Invoices, GeneratedInvoiceResponse{
			InvoiceNumber:    inv.InvoiceNumber,
			Kind:             string(inv.Kind),
			Sequence:         inv.Sequence,
			InstallmentIndex: inv.InstallmentIndex,
			InstallmentCount: inv.InstallmentCount,
			Amount:           inv.Amount,
			IssueDate:        calendar.Format(inv.IssueDate),
			DueDate:          calendar.Format(inv.DueDate),
			Description:      inv.Description,
			UnitReferences:   inv.UnitReferences.Clone(),
		})
	}
	return resp
}

// =============================================================================
// Invoice DTOs
// =============================================================================

// InvoiceResponse represents a persisted invoice in API responses
type InvoiceResponse struct {
	ID               uuid.UUID       `json:"id"`
	TenantID         uuid.UUID       `json:"tenant_id"`
	InvoiceNumber    string          `json:"invoice_number"`
	Category         string          `json:"category"`
	Kind             string          `json:"kind"`
	Sequence         int64           `json:"sequence"`
	InstallmentIndex int             `json:"installment_index"`
	InstallmentCount int             `json:"installment_count"`
	Amount           decimal.Decimal `json:"amount"`
	IssueDate        string          `json:"issue_date"`
	DueDate          string          `json:"due_date"`
	Description      string          `json:"description"`
	AgreementID      uuid.UUID       `json:"agreement_id"`
	ContactID        uuid.UUID       `json:"contact_id"`
	ProjectID        *uuid.UUID      `json:"project_id,omitempty"`
	UnitReferences   []string        `json:"unit_references"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

// InvoiceListFilter represents filter options for invoice list
type InvoiceListFilter struct {
	Search      string     `form:"search"`
	AgreementID *uuid.UUID `form:"-"`
	Status      string     `form:"status" binding:"omitempty,oneof=UNPAID PAID CANCELLED"`
	Kind        string     `form:"kind" binding:"omitempty,oneof=DOWN_PAYMENT INSTALLMENT"`
	DueFrom     string     `form:"due_from"`
	DueTo       string     `form:"due_to"`
	Page        int        `form:"page" binding:"min=0"`
	PageSize    int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToInvoiceResponse converts a domain invoice to a response
func ToInvoiceResponse(inv *invoicing.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:               inv.ID,
		TenantID:         inv.TenantID,
		InvoiceNumber:    inv.InvoiceNumber,
		Category:         string(inv.Category),
		Kind:             string(inv.Kind),
		Sequence:         inv.Sequence,
		InstallmentIndex: inv.InstallmentIndex,
		InstallmentCount: inv.InstallmentCount,
		Amount:           inv.Amount,
		IssueDate:        calendar.Format(inv.IssueDate),
		DueDate:          calendar.Format(inv.DueDate),
		Description:      inv.Description,
		AgreementID:      inv.AgreementID,
		ContactID:        inv.ContactID,
		ProjectID:        inv.ProjectID,
		UnitReferences:   inv.UnitReferences.Clone(),
		Status:           string(inv.Status),
		CreatedAt:        inv.CreatedAt,
	}
}

// ToInvoiceResponses converts a slice of invoices to responses
func ToInvoiceResponses(invoices []invoicing.Invoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i])
	}
	return responses
}

// =============================================================================
// Numbering DTOs
// =============================================================================

// UpsertNumberingRequest creates or reconfigures the numbering of a prefix
type UpsertNumberingRequest struct {
	Prefix     string `json:"prefix" binding:"max=20"`
	NextNumber *int64 `json:"next_number" binding:"omitempty,min=1"`
	Padding    *int   `json:"padding" binding:"omitempty,min=0,max=18"`
	IsDefault  *bool  `json:"is_default"`
	// Version must match the stored version when updating an existing prefix
	Version *int `json:"version" binding:"omitempty,min=1"`
}

// NumberingResponse represents a numbering configuration in API responses
type NumberingResponse struct {
	ID         uuid.UUID `json:"id"`
	Prefix     string    `json:"prefix"`
	NextNumber int64     `json:"next_number"`
	Padding    int       `json:"padding"`
	IsDefault  bool      `json:"is_default"`
	Preview    string    `json:"preview"`
	Version    int       `json:"version"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToNumberingResponse converts a numbering configuration to a response
func ToNumberingResponse(n *invoicing.InvoiceNumbering) NumberingResponse {
	state := n.State()
	return NumberingResponse{
		ID:         n.ID,
		Prefix:     n.Prefix,
		NextNumber: n.NextNumber,
		Padding:    n.Padding,
		IsDefault:  n.IsDefault,
		Preview:    state.Format(state.StartSequence(nil)),
		Version:    n.Version,
		UpdatedAt:  n.UpdatedAt,
	}
}

// parseDate reads a YYYY-MM-DD request value
func parseDate(s string) (time.Time, error) {
	t, err := calendar.ParseDate(s)
	if err != nil {
		return time.Time{}, shared.NewDomainError(invoicing.CodeInvalidDate, err.Error())
	}
	return t, nil
}
