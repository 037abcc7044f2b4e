package invoicing

import (
	"fmt"
	"strings"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Frequency is the billing period of an installment plan
type Frequency string

const (
	FrequencyMonthly   Frequency = "Monthly"
	FrequencyQuarterly Frequency = "Quarterly"
	FrequencyYearly    Frequency = "Yearly"
)

// Plan bounds. The scale matches the plan columns in storage.
const (
	MaxDurationYears = 100
	MaxPlanScale     = 4
)

var (
	hundred     = decimal.NewFromInt(100)
	maxDuration = decimal.NewFromInt(MaxDurationYears)
)

// ParseFrequency accepts a frequency name in any letter case
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly":
		return FrequencyMonthly, nil
	case "quarterly":
		return FrequencyQuarterly, nil
	case "yearly", "annually":
		return FrequencyYearly, nil
	}
	return "", shared.NewDomainError(CodeInvalidPlan, fmt.Sprintf("Unknown installment frequency %q", s))
}

// IsValid checks if the frequency is supported
func (f Frequency) IsValid() bool {
	return f.PeriodMonths() > 0
}

// PeriodMonths returns the number of calendar months per period, or 0 when unknown
func (f Frequency) PeriodMonths() int {
	switch f {
	case FrequencyMonthly:
		return 1
	case FrequencyQuarterly:
		return 3
	case FrequencyYearly:
		return 12
	}
	return 0
}

// String returns the string representation of Frequency
func (f Frequency) String() string {
	return string(f)
}

// InstallmentPlan describes how an agreement's selling price is collected.
// It is immutable for the duration of a generation call.
type InstallmentPlan struct {
	DurationYears         decimal.Decimal `json:"duration_years"`
	DownPaymentPercentage decimal.Decimal `json:"down_payment_percentage"`
	Frequency             Frequency       `json:"frequency"`
}

// NewInstallmentPlan creates a validated installment plan
func NewInstallmentPlan(durationYears, downPaymentPercentage decimal.Decimal, frequency Frequency) (InstallmentPlan, error) {
	p := InstallmentPlan{
		DurationYears:         durationYears,
		DownPaymentPercentage: downPaymentPercentage,
		Frequency:             frequency,
	}
	if err := p.Validate(); err != nil {
		return InstallmentPlan{}, err
	}
	return p, nil
}

// Validate checks the plan invariants
func (p InstallmentPlan) Validate() error {
	if !p.DurationYears.IsPositive() {
		return shared.NewDomainError(CodeInvalidPlan, "Duration in years must be positive")
	}
	if p.DurationYears.GreaterThan(maxDuration) {
		return shared.NewDomainError(CodeInvalidPlan, fmt.Sprintf("Duration in years must not exceed %d", MaxDurationYears))
	}
	if !hasScaleAtMost(p.DurationYears, MaxPlanScale) {
		return shared.NewDomainError(CodeInvalidPlan, fmt.Sprintf("Duration in years allows at most %d decimal places", MaxPlanScale))
	}
	if p.DownPaymentPercentage.IsNegative() || p.DownPaymentPercentage.GreaterThan(hundred) {
		return shared.NewDomainError(CodeInvalidPlan, "Down payment percentage must be between 0 and 100")
	}
	if !hasScaleAtMost(p.DownPaymentPercentage, MaxPlanScale) {
		return shared.NewDomainError(CodeInvalidPlan, fmt.Sprintf("Down payment percentage allows at most %d decimal places", MaxPlanScale))
	}
	if !p.Frequency.IsValid() {
		return shared.NewDomainError(CodeInvalidPlan, fmt.Sprintf("Unknown installment frequency %q", p.Frequency))
	}
	return nil
}

// DownPayment returns the upfront share of price without rounding
func (p InstallmentPlan) DownPayment(price decimal.Decimal) decimal.Decimal {
	return price.Mul(p.DownPaymentPercentage).Div(hundred)
}

// TotalInstallments returns round-half-up(durationYears*12/periodMonths).
// A result of zero or less means the plan has no periodic installments.
func (p InstallmentPlan) TotalInstallments() int {
	period := p.Frequency.PeriodMonths()
	if period == 0 {
		return 0
	}
	n := p.DurationYears.Mul(decimal.NewFromInt(12)).Div(decimal.NewFromInt(int64(period))).Round(0)
	if n.GreaterThan(maxInstallments) {
		return 0
	}
	return int(n.IntPart())
}

// maxInstallments caps the count for plans that skipped Validate
var maxInstallments = decimal.NewFromInt(MaxDurationYears * 12)

// hasScaleAtMost reports whether d has no significant digits past the given
// number of decimal places. Trailing zeros are allowed.
func hasScaleAtMost(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}
