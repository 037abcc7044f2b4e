package invoicing

import (
	"context"

	"github.com/estate/backend/internal/domain/invoicing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceService handles read access to issued invoices
type InvoiceService struct {
	invoiceRepo   invoicing.InvoiceRepository
	agreementRepo invoicing.AgreementRepository
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo invoicing.InvoiceRepository, agreementRepo invoicing.AgreementRepository) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:   invoiceRepo,
		agreementRepo: agreementRepo,
	}
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// ListByAgreement returns an agreement's invoices in sequence order
func (s *InvoiceService) ListByAgreement(ctx context.Context, tenantID, agreementID uuid.UUID) ([]InvoiceResponse, error) {
	// Distinguishes an unknown agreement from one without invoices
	if _, err := s.agreementRepo.FindByIDForTenant(ctx, tenantID, agreementID); err != nil {
		return nil, err
	}

	invoices, err := s.invoiceRepo.FindByAgreement(ctx, tenantID, agreementID)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponses(invoices), nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "due_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := invoicing.InvoiceFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		AgreementID: filter.AgreementID,
	}
	if filter.Status != "" {
		status := invoicing.InvoiceStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.Kind != "" {
		kind := invoicing.InvoiceKind(filter.Kind)
		domainFilter.Kind = &kind
	}
	if filter.DueFrom != "" {
		from, err := parseDate(filter.DueFrom)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.DueFrom = &from
	}
	if filter.DueTo != "" {
		to, err := parseDate(filter.DueTo)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.DueTo = &to
	}

	invoices, err := s.invoiceRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToInvoiceResponses(invoices), total, nil
}
