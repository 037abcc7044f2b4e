package invoicing

import (
	"fmt"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/calendar"
	"github.com/shopspring/decimal"
)

// GenerationResult is the output of one generation call
type GenerationResult struct {
	Invoices          []GeneratedInvoice `json:"invoices"`
	Numbering         NumberingState     `json:"numbering"`
	DownPayment       decimal.Decimal    `json:"down_payment"`
	Remaining         decimal.Decimal    `json:"remaining"`
	InstallmentAmount decimal.Decimal    `json:"installment_amount"`
	TotalInstallments int                `json:"total_installments"`
	PeriodMonths      int                `json:"period_months"`
}

// Total sums the amounts of all generated invoices
func (r *GenerationResult) Total() decimal.Decimal {
	total := decimal.Zero
	for _, inv := range r.Invoices {
		total = total.Add(inv.Amount)
	}
	return total
}

// InstallmentsEmitted counts the periodic installment rows
func (r *GenerationResult) InstallmentsEmitted() int {
	n := 0
	for _, inv := range r.Invoices {
		if inv.Kind == InvoiceKindInstallment {
			n++
		}
	}
	return n
}

// Numbers returns the generated invoice numbers in order
func (r *GenerationResult) Numbers() []string {
	out := make([]string, len(r.Invoices))
	for i, inv := range r.Invoices {
		out[i] = inv.InvoiceNumber
	}
	return out
}

// Generate produces the down payment and periodic installment invoices for
// an agreement. It reads nothing beyond its arguments and mutates none of
// them; calling it twice with the same inputs yields the same result.
//
// existing holds the invoice numbers already issued. Every number sharing the
// numbering prefix pushes the start sequence past its suffix, which repairs a
// stored counter that fell behind.
func Generate(agreement *SaleAgreement, plan InstallmentPlan, numbering *NumberingState, existing []string) (*GenerationResult, error) {
	if numbering == nil {
		return nil, ErrNumberingMissing
	}
	if err := numbering.Validate(); err != nil {
		return nil, err
	}
	if agreement == nil {
		return nil, shared.NewDomainError(CodeInvalidAgreement, "Agreement is required")
	}
	if err := agreement.Validate(); err != nil {
		return nil, err
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	price := agreement.SellingPrice
	downPayment := plan.DownPayment(price)
	remaining := price.Sub(downPayment)
	periodMonths := plan.Frequency.PeriodMonths()
	total := plan.TotalInstallments()

	installmentAmount := decimal.Zero
	if total > 0 {
		installmentAmount = remaining.Div(decimal.NewFromInt(int64(total)))
	}

	cursor := numbering.StartSequence(existing)
	invoices := make([]GeneratedInvoice, 0, total+1)

	base := GeneratedInvoice{
		AgreementID:      agreement.ID,
		ClientID:         agreement.ClientID,
		ProjectID:        agreement.ProjectID,
		InstallmentCount: total,
	}

	if downPayment.IsPositive() {
		inv := base
		inv.InvoiceNumber = numbering.Format(cursor)
		inv.Kind = InvoiceKindDownPayment
		inv.Sequence = cursor
		inv.Amount = downPayment
		inv.IssueDate = agreement.IssueDate
		inv.DueDate = agreement.IssueDate
		inv.Description = fmt.Sprintf("Down Payment (%s%%)", plan.DownPaymentPercentage.String())
		inv.UnitReferences = agreement.UnitReferences.Clone()
		invoices = append(invoices, inv)
		cursor++
	}

	if installmentAmount.IsPositive() {
		for i := 1; i <= total; i++ {
			due := calendar.AddMonthsClamped(agreement.IssueDate, i*periodMonths)
			inv := base
			inv.InvoiceNumber = numbering.Format(cursor)
			inv.Kind = InvoiceKindInstallment
			inv.Sequence = cursor
			inv.InstallmentIndex = i
			inv.Amount = installmentAmount
			inv.IssueDate = due
			inv.DueDate = due
			inv.Description = fmt.Sprintf("Installment %d/%d", i, total)
			inv.UnitReferences = agreement.UnitReferences.Clone()
			invoices = append(invoices, inv)
			cursor++
		}
	}

	return &GenerationResult{
		Invoices:          invoices,
		Numbering:         numbering.AdvancedTo(cursor),
		DownPayment:       downPayment,
		Remaining:         remaining,
		InstallmentAmount: installmentAmount,
		TotalInstallments: total,
		PeriodMonths:      periodMonths,
	}, nil
}
