package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Outcomes recorded on the generation duration histogram
const (
	OutcomeSuccess  = "success"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
	OutcomePreview  = "preview"
)

// InvoicingMetrics holds the schedule generation instruments
type InvoicingMetrics struct {
	invoicesGenerated  *Counter
	generationDuration *Histogram
	numberingConflicts *Counter
}

// NewInvoicingMetrics registers the instruments on meter
func NewInvoicingMetrics(meter metric.Meter) (*InvoicingMetrics, error) {
	generated, err := NewCounter(meter,
		"estate_invoices_generated_total",
		"Number of invoices persisted by schedule generation",
		"{invoice}",
	)
	if err != nil {
		return nil, err
	}

	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "estate_schedule_generation_duration_seconds",
		Description: "Time spent generating an installment schedule",
		Unit:        "s",
		Boundaries:  GenerationDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	conflicts, err := NewCounter(meter,
		"estate_numbering_conflicts_total",
		"Generations rejected because the numbering counter moved concurrently",
		"{conflict}",
	)
	if err != nil {
		return nil, err
	}

	return &InvoicingMetrics{
		invoicesGenerated:  generated,
		generationDuration: duration,
		numberingConflicts: conflicts,
	}, nil
}

// RecordInvoices counts persisted invoices of one kind
func (m *InvoicingMetrics) RecordInvoices(ctx context.Context, tenantID, category, kind string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.invoicesGenerated.Add(ctx, int64(count),
		AttrTenantID.String(tenantID),
		AttrCategory.String(category),
		AttrKind.String(kind),
	)
}

// RecordGeneration records how long one generation took and how it ended
func (m *InvoicingMetrics) RecordGeneration(ctx context.Context, tenantID, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.generationDuration.RecordDuration(ctx, d,
		AttrTenantID.String(tenantID),
		AttrOutcome.String(outcome),
	)
}

// RecordConflict counts a lost numbering compare-and-swap
func (m *InvoicingMetrics) RecordConflict(ctx context.Context, tenantID, prefix string) {
	if m == nil {
		return
	}
	m.numberingConflicts.Inc(ctx,
		AttrTenantID.String(tenantID),
		AttrPrefix.String(prefix),
	)
}
