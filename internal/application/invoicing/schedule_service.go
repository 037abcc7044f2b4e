package invoicing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/estate/backend/internal/domain/invoicing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/domain/shared/calendar"
	"github.com/estate/backend/internal/infrastructure/logger"
	"github.com/estate/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DefaultLockTTL bounds how long one generation may hold its prefix lock
const DefaultLockTTL = 30 * time.Second

// ScheduleConfig holds schedule generation settings
type ScheduleConfig struct {
	LockTTL time.Duration
}

// ScheduleService previews and generates installment schedules
type ScheduleService struct {
	repos          invoicing.Repositories
	uow            invoicing.UnitOfWork
	locker         shared.Locker
	eventPublisher shared.EventPublisher
	metrics        *telemetry.InvoicingMetrics
	logger         *zap.Logger
	config         ScheduleConfig
}

// NewScheduleService creates a new ScheduleService.
// repos serve the non-transactional reads of Preview.
func NewScheduleService(repos invoicing.Repositories, uow invoicing.UnitOfWork, l *zap.Logger) *ScheduleService {
	if l == nil {
		l = zap.NewNop()
	}
	return &ScheduleService{
		repos:  repos,
		uow:    uow,
		logger: l,
		config: ScheduleConfig{LockTTL: DefaultLockTTL},
	}
}

// SetConfig replaces the generation settings
func (s *ScheduleService) SetConfig(cfg ScheduleConfig) {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	s.config = cfg
}

// SetLocker sets the per-prefix generation lock (optional)
func (s *ScheduleService) SetLocker(locker shared.Locker) {
	s.locker = locker
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ScheduleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder (optional)
func (s *ScheduleService) SetMetrics(metrics *telemetry.InvoicingMetrics) {
	s.metrics = metrics
}

// scheduleInputs is everything the generator reads for one call
type scheduleInputs struct {
	agreement *invoicing.SaleAgreement
	plan      *invoicing.InstallmentPlan
	numbering *invoicing.InvoiceNumbering
	existing  []string
}

// Preview runs the generator against the current stored state without persisting anything
func (s *ScheduleService) Preview(ctx context.Context, tenantID, agreementID uuid.UUID, req ScheduleRequest) (*ScheduleResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "schedule", "preview",
		telemetry.AttrTenantID.String(tenantID.String()),
		attribute.String("agreement_id", agreementID.String()),
	)
	defer span.End()

	in, err := s.load(ctx, s.repos, tenantID, agreementID, req, req.Prefix)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, s.normalize(err)
	}

	if in.plan == nil {
		resp := ToScheduleResponse(in.agreement, nil, nil)
		return &resp, nil
	}

	state := in.numbering.State()
	result, err := invoicing.Generate(in.agreement, *in.plan, &state, in.existing)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, s.normalize(err)
	}

	s.metrics.RecordGeneration(ctx, tenantID.String(), telemetry.OutcomePreview, time.Since(start))
	telemetry.SetOK(span)

	resp := ToScheduleResponse(in.agreement, in.plan, result)
	return &resp, nil
}

// Generate produces the schedule and persists every invoice together with
// the advanced numbering counter in one transaction. A concurrent writer on
// the same prefix surfaces as a concurrency conflict and nothing is stored.
func (s *ScheduleService) Generate(ctx context.Context, tenantID, agreementID uuid.UUID, req ScheduleRequest) (*ScheduleResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "schedule", "generate",
		telemetry.AttrTenantID.String(tenantID.String()),
		attribute.String("agreement_id", agreementID.String()),
	)
	defer span.End()

	log := s.logger.With(
		zap.String("tenant_id", tenantID.String()),
		zap.String("agreement_id", agreementID.String()),
	)
	if rid := logger.GetRequestID(ctx); rid != "" {
		log = log.With(zap.String("request_id", rid))
	}

	resp, invoices, result, err := s.generate(ctx, tenantID, agreementID, req, log)
	if err != nil {
		outcome := telemetry.OutcomeError
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			outcome = telemetry.OutcomeConflict
		}
		s.metrics.RecordGeneration(ctx, tenantID.String(), outcome, time.Since(start))
		telemetry.RecordError(span, err)
		return nil, s.normalize(err)
	}

	if result != nil {
		s.recordPersisted(ctx, tenantID, invoices)
		s.publish(ctx, log, tenantID, agreementID, invoices, result)
		log.Info("Installment schedule generated",
			zap.String("prefix", result.Numbering.Prefix),
			zap.Int("count", len(result.Invoices)),
			zap.Strings("range", numberRange(result)),
			zap.String("first_due", firstDueDate(result)),
			zap.Int64("next_number", result.Numbering.NextNumber),
		)
	} else {
		log.Info("Installment schedule skipped, no plan configured")
	}

	s.metrics.RecordGeneration(ctx, tenantID.String(), telemetry.OutcomeSuccess, time.Since(start))
	span.SetAttributes(attribute.Int("invoice_count", len(invoices)))
	telemetry.SetOK(span)
	return resp, nil
}

func (s *ScheduleService) generate(
	ctx context.Context,
	tenantID, agreementID uuid.UUID,
	req ScheduleRequest,
	log *zap.Logger,
) (*ScheduleResponse, []*invoicing.Invoice, *invoicing.GenerationResult, error) {
	prefix, err := s.resolvePrefix(ctx, tenantID, req)
	if err != nil {
		return nil, nil, nil, err
	}

	if prefix != "" && s.locker != nil {
		release, err := s.locker.Acquire(ctx, lockKey(tenantID, prefix), s.config.LockTTL)
		if err != nil {
			log.Warn("Generation lock is held", zap.String("prefix", prefix), zap.Error(err))
			return nil, nil, nil, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				log.Warn("Failed to release generation lock", zap.String("prefix", prefix), zap.Error(err))
			}
		}()
	}

	var (
		resp     ScheduleResponse
		invoices []*invoicing.Invoice
		result   *invoicing.GenerationResult
	)

	err = s.uow.Do(ctx, func(repos invoicing.Repositories) error {
		in, err := s.load(ctx, repos, tenantID, agreementID, req, prefix)
		if err != nil {
			return err
		}
		if in.plan == nil {
			resp = ToScheduleResponse(in.agreement, nil, nil)
			return nil
		}

		exists, err := repos.Invoices.ExistsByAgreement(ctx, tenantID, agreementID)
		if err != nil {
			return err
		}
		if exists && !req.Force {
			return invoicing.ErrScheduleExists
		}

		state := in.numbering.State()
		result, err = invoicing.Generate(in.agreement, *in.plan, &state, in.existing)
		if err != nil {
			return err
		}

		category := in.agreement.Kind.InvoiceCategory()
		invoices = make([]*invoicing.Invoice, len(result.Invoices))
		for i, g := range result.Invoices {
			invoices[i] = invoicing.NewInvoice(tenantID, category, g)
		}
		if err := repos.Invoices.SaveBatch(ctx, invoices); err != nil {
			return err
		}

		applied, err := in.numbering.Apply(result.Numbering)
		if err != nil {
			return err
		}
		if applied {
			if err := repos.Numbering.SaveWithLock(ctx, in.numbering); err != nil {
				if errors.Is(err, shared.ErrConcurrencyConflict) {
					s.metrics.RecordConflict(ctx, tenantID.String(), in.numbering.Prefix)
					log.Warn("Numbering counter moved concurrently",
						zap.String("prefix", in.numbering.Prefix),
						zap.Int("version", in.numbering.Version-1),
					)
				}
				return err
			}
		}

		resp = ToScheduleResponse(in.agreement, in.plan, result)
		resp.Persisted = true
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return &resp, invoices, result, nil
}

// load reads the agreement, plan, numbering and existing numbers for one call
func (s *ScheduleService) load(
	ctx context.Context,
	repos invoicing.Repositories,
	tenantID, agreementID uuid.UUID,
	req ScheduleRequest,
	prefix string,
) (*scheduleInputs, error) {
	agreement, err := repos.Agreements.FindByIDForTenant(ctx, tenantID, agreementID)
	if err != nil {
		return nil, err
	}
	if err := agreement.CanInvoice(); err != nil {
		return nil, err
	}

	in := &scheduleInputs{agreement: agreement}

	switch {
	case req.Plan != nil:
		plan, err := req.Plan.ToDomain()
		if err != nil {
			return nil, err
		}
		in.plan = &plan
	case agreement.Plan != nil:
		plan := *agreement.Plan
		in.plan = &plan
	case req.SkipIfNoPlan:
		return in, nil
	default:
		return nil, invoicing.ErrPlanMissing
	}

	numbering, err := findNumbering(ctx, repos.Numbering, tenantID, prefix)
	if err != nil {
		return nil, err
	}
	in.numbering = numbering

	existing, err := repos.Invoices.ListNumbersWithPrefix(ctx, tenantID, numbering.Prefix)
	if err != nil {
		return nil, err
	}
	in.existing = existing
	return in, nil
}

// resolvePrefix names the numbering prefix a generation will lock
func (s *ScheduleService) resolvePrefix(ctx context.Context, tenantID uuid.UUID, req ScheduleRequest) (string, error) {
	if req.Prefix != "" {
		return req.Prefix, nil
	}
	numbering, err := s.repos.Numbering.FindDefault(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// No default: a plan-less skip may still succeed, load decides.
			return "", nil
		}
		return "", err
	}
	return numbering.Prefix, nil
}

func findNumbering(ctx context.Context, repo invoicing.NumberingRepository, tenantID uuid.UUID, prefix string) (*invoicing.InvoiceNumbering, error) {
	var (
		numbering *invoicing.InvoiceNumbering
		err       error
	)
	if prefix == "" {
		numbering, err = repo.FindDefault(ctx, tenantID)
	} else {
		numbering, err = repo.FindByPrefix(ctx, tenantID, prefix)
	}
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, invoicing.ErrNumberingMissing
		}
		return nil, err
	}
	return numbering, nil
}

// normalize keeps domain errors and hides everything else behind ErrGenerationFailed
func (s *ScheduleService) normalize(err error) error {
	if _, ok := shared.AsDomainError(err); ok {
		return err
	}
	s.logger.Error("Schedule generation failed", zap.Error(err))
	return fmt.Errorf("%w: %v", invoicing.ErrGenerationFailed, err)
}

func (s *ScheduleService) recordPersisted(ctx context.Context, tenantID uuid.UUID, invoices []*invoicing.Invoice) {
	if s.metrics == nil || len(invoices) == 0 {
		return
	}
	counts := make(map[invoicing.InvoiceKind]int)
	for _, inv := range invoices {
		counts[inv.Kind]++
	}
	category := string(invoices[0].Category)
	for kind, n := range counts {
		s.metrics.RecordInvoices(ctx, tenantID.String(), category, string(kind), n)
	}
}

// publish sends events once the transaction committed; failures are logged only
func (s *ScheduleService) publish(
	ctx context.Context,
	log *zap.Logger,
	tenantID, agreementID uuid.UUID,
	invoices []*invoicing.Invoice,
	result *invoicing.GenerationResult,
) {
	if s.eventPublisher == nil {
		return
	}
	events := make([]shared.DomainEvent, 0, len(invoices)+1)
	for _, inv := range invoices {
		events = append(events, inv.GetDomainEvents()...)
		inv.ClearDomainEvents()
	}
	events = append(events, invoicing.NewScheduleGeneratedEvent(tenantID, agreementID, result))

	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		log.Warn("Failed to publish schedule events", zap.Int("events", len(events)), zap.Error(err))
	}
}

func lockKey(tenantID uuid.UUID, prefix string) string {
	return "invoice-numbering:" + tenantID.String() + ":" + prefix
}

func numberRange(result *invoicing.GenerationResult) []string {
	n := len(result.Invoices)
	if n == 0 {
		return nil
	}
	return []string{result.Invoices[0].InvoiceNumber, result.Invoices[n-1].InvoiceNumber}
}

// firstDueDate is the earliest due date of a schedule, used in log lines
func firstDueDate(result *invoicing.GenerationResult) string {
	if len(result.Invoices) == 0 {
		return ""
	}
	return calendar.Format(result.Invoices[0].DueDate)
}
