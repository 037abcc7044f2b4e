package handler

import (
	invoicingapp "github.com/estate/backend/internal/application/invoicing"
	"github.com/estate/backend/internal/interfaces/http/dto"
)

// Response views add display-rounded amounts next to the exact decimal
// strings. Only these views round; the service DTOs stay exact.

// AgreementView is an agreement as returned by the API
type AgreementView struct {
	invoicingapp.AgreementResponse
	SellingPriceDisplay string `json:"selling_price_display"`
}

func toAgreementView(a *invoicingapp.AgreementResponse) AgreementView {
	return AgreementView{
		AgreementResponse:   *a,
		SellingPriceDisplay: dto.FormatAmount(a.SellingPrice),
	}
}

// AgreementListView is an agreement row in a list
type AgreementListView struct {
	invoicingapp.AgreementListResponse
	SellingPriceDisplay string `json:"selling_price_display"`
}

func toAgreementListViews(items []invoicingapp.AgreementListResponse) []AgreementListView {
	views := make([]AgreementListView, len(items))
	for i, item := range items {
		views[i] = AgreementListView{
			AgreementListResponse: item,
			SellingPriceDisplay:   dto.FormatAmount(item.SellingPrice),
		}
	}
	return views
}

// GeneratedInvoiceView is one scheduled invoice
type GeneratedInvoiceView struct {
	invoicingapp.GeneratedInvoiceResponse
	AmountDisplay string `json:"amount_display"`
}

// ScheduleView is a previewed or generated schedule
type ScheduleView struct {
	invoicingapp.ScheduleResponse
	Invoices                 []GeneratedInvoiceView `json:"invoices"`
	TotalDisplay             string                 `json:"total_display"`
	DownPaymentDisplay       string                 `json:"down_payment_display"`
	InstallmentAmountDisplay string                 `json:"installment_amount_display"`
}

func toScheduleView(s *invoicingapp.ScheduleResponse) ScheduleView {
	invoices := make([]GeneratedInvoiceView, len(s.Invoices))
	for i, inv := range s.Invoices {
		invoices[i] = GeneratedInvoiceView{
			GeneratedInvoiceResponse: inv,
			AmountDisplay:            dto.FormatAmount(inv.Amount),
		}
	}
	return ScheduleView{
		ScheduleResponse:         *s,
		Invoices:                 invoices,
		TotalDisplay:             dto.FormatAmount(s.Total),
		DownPaymentDisplay:       dto.FormatAmount(s.DownPayment),
		InstallmentAmountDisplay: dto.FormatAmount(s.InstallmentAmount),
	}
}

// InvoiceView is a stored invoice
type InvoiceView struct {
	invoicingapp.InvoiceResponse
	AmountDisplay string `json:"amount_display"`
}

func toInvoiceView(inv *invoicingapp.InvoiceResponse) InvoiceView {
	return InvoiceView{
		InvoiceResponse: *inv,
		AmountDisplay:   dto.FormatAmount(inv.Amount),
	}
}

func toInvoiceViews(items []invoicingapp.InvoiceResponse) []InvoiceView {
	views := make([]InvoiceView, len(items))
	for i := range items {
		views[i] = toInvoiceView(&items[i])
	}
	return views
}
