package invoicing

import (
	"context"
	"strings"

	"github.com/estate/backend/internal/domain/invoicing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AgreementService handles sale and rental agreement operations
type AgreementService struct {
	agreementRepo  invoicing.AgreementRepository
	eventPublisher shared.EventPublisher
}

// NewAgreementService creates a new AgreementService
func NewAgreementService(agreementRepo invoicing.AgreementRepository) *AgreementService {
	return &AgreementService{
		agreementRepo: agreementRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AgreementService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create records a new agreement, optionally with its installment plan
func (s *AgreementService) Create(ctx context.Context, tenantID uuid.UUID, req CreateAgreementRequest) (*AgreementResponse, error) {
	exists, err := s.agreementRepo.ExistsByAgreementNumber(ctx, tenantID, strings.TrimSpace(req.AgreementNumber))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Agreement with this number already exists")
	}

	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		return nil, err
	}

	agreement, err := invoicing.NewSaleAgreement(
		tenantID,
		req.AgreementNumber,
		invoicing.AgreementKind(strings.ToUpper(req.Kind)),
		req.SellingPrice,
		issueDate,
		req.ClientID,
		req.ProjectID,
		req.UnitReferences,
	)
	if err != nil {
		return nil, err
	}
	agreement.Remark = req.Remark

	if req.Plan != nil {
		plan, err := req.Plan.ToDomain()
		if err != nil {
			return nil, err
		}
		if err := agreement.SetPlan(plan); err != nil {
			return nil, err
		}
	}

	if err := s.agreementRepo.Save(ctx, agreement); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, agreement)

	response := ToAgreementResponse(agreement)
	return &response, nil
}

// GetByID retrieves an agreement by ID
func (s *AgreementService) GetByID(ctx context.Context, tenantID, agreementID uuid.UUID) (*AgreementResponse, error) {
	agreement, err := s.agreementRepo.FindByIDForTenant(ctx, tenantID, agreementID)
	if err != nil {
		return nil, err
	}

	response := ToAgreementResponse(agreement)
	return &response, nil
}

// List retrieves agreements with filtering and pagination
func (s *AgreementService) List(ctx context.Context, tenantID uuid.UUID, filter AgreementListFilter) ([]AgreementListResponse, int64, error) {
	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := invoicing.AgreementFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		ClientID: filter.ClientID,
	}
	if filter.Kind != "" {
		kind := invoicing.AgreementKind(filter.Kind)
		domainFilter.Kind = &kind
	}
	if filter.Status != "" {
		status := invoicing.AgreementStatus(filter.Status)
		domainFilter.Status = &status
	}

	agreements, err := s.agreementRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.agreementRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToAgreementListResponses(agreements), total, nil
}

// SetPlan attaches or replaces the installment plan of an agreement
func (s *AgreementService) SetPlan(ctx context.Context, tenantID, agreementID uuid.UUID, req PlanRequest) (*AgreementResponse, error) {
	agreement, err := s.agreementRepo.FindByIDForTenant(ctx, tenantID, agreementID)
	if err != nil {
		return nil, err
	}

	plan, err := req.ToDomain()
	if err != nil {
		return nil, err
	}
	if err := agreement.SetPlan(plan); err != nil {
		return nil, err
	}

	if err := s.agreementRepo.Save(ctx, agreement); err != nil {
		return nil, err
	}

	response := ToAgreementResponse(agreement)
	return &response, nil
}

// ClearPlan removes the installment plan of an agreement
func (s *AgreementService) ClearPlan(ctx context.Context, tenantID, agreementID uuid.UUID) (*AgreementResponse, error) {
	agreement, err := s.agreementRepo.FindByIDForTenant(ctx, tenantID, agreementID)
	if err != nil {
		return nil, err
	}
	if agreement.Plan == nil {
		response := ToAgreementResponse(agreement)
		return &response, nil
	}

	agreement.ClearPlan()
	if err := s.agreementRepo.Save(ctx, agreement); err != nil {
		return nil, err
	}

	response := ToAgreementResponse(agreement)
	return &response, nil
}

// Cancel cancels an agreement so no further invoices are generated for it
func (s *AgreementService) Cancel(ctx context.Context, tenantID, agreementID uuid.UUID, req CancelAgreementRequest) (*AgreementResponse, error) {
	agreement, err := s.agreementRepo.FindByIDForTenant(ctx, tenantID, agreementID)
	if err != nil {
		return nil, err
	}
	if err := agreement.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.agreementRepo.Save(ctx, agreement); err != nil {
		return nil, err
	}

	response := ToAgreementResponse(agreement)
	return &response, nil
}

func (s *AgreementService) publishEvents(ctx context.Context, agreement *invoicing.SaleAgreement) {
	if s.eventPublisher == nil {
		return
	}
	// Event handling is best effort; the agreement is already stored.
	_ = s.eventPublisher.Publish(ctx, agreement.GetDomainEvents()...)
	agreement.ClearDomainEvents()
}
