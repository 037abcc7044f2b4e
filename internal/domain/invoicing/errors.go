package invoicing

import "github.com/estate/backend/internal/domain/shared"

// Error codes raised by the invoicing domain
const (
	CodeConfigurationMissing = "CONFIGURATION_MISSING"
	CodeInvalidPlan          = "INVALID_PLAN"
	CodeInvalidNumbering     = "INVALID_NUMBERING"
	CodeInvalidAgreement     = "INVALID_AGREEMENT"
	CodeInvalidDate          = "INVALID_DATE"
	CodeScheduleExists       = "SCHEDULE_EXISTS"
	CodeGenerationFailed     = "GENERATION_FAILED"
)

var (
	// ErrNumberingMissing is returned when no numbering configuration exists for a generation
	ErrNumberingMissing = shared.NewDomainError(CodeConfigurationMissing, "Invoice numbering is not configured")
	// ErrPlanMissing is returned when an agreement has no installment plan to generate from
	ErrPlanMissing = shared.NewDomainError(CodeConfigurationMissing, "Installment plan is not configured")
	// ErrScheduleExists is returned when an agreement already carries generated invoices
	ErrScheduleExists = shared.NewDomainError(CodeScheduleExists, "Invoices were already generated for this agreement")
	// ErrGenerationFailed wraps any unexpected failure while producing a schedule
	ErrGenerationFailed = shared.NewDomainError(CodeGenerationFailed, "Failed to generate invoices")
)
