package invoicing

import (
	"context"
	"errors"
	"strings"

	"github.com/estate/backend/internal/domain/invoicing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// NumberingDefaults fill in an upsert request that leaves fields empty
type NumberingDefaults struct {
	Prefix  string
	Padding int
}

// NumberingService manages invoice numbering configuration
type NumberingService struct {
	numberingRepo invoicing.NumberingRepository
	uow           invoicing.UnitOfWork
	defaults      NumberingDefaults
}

// NewNumberingService creates a new NumberingService
func NewNumberingService(numberingRepo invoicing.NumberingRepository, uow invoicing.UnitOfWork, defaults NumberingDefaults) *NumberingService {
	if defaults.Prefix == "" {
		defaults.Prefix = invoicing.DefaultPrefix
	}
	if defaults.Padding <= 0 {
		defaults.Padding = invoicing.DefaultPadding
	}
	return &NumberingService{
		numberingRepo: numberingRepo,
		uow:           uow,
		defaults:      defaults,
	}
}

// GetByPrefix retrieves the configuration of one prefix
func (s *NumberingService) GetByPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) (*NumberingResponse, error) {
	numbering, err := s.numberingRepo.FindByPrefix(ctx, tenantID, prefix)
	if err != nil {
		return nil, err
	}

	response := ToNumberingResponse(numbering)
	return &response, nil
}

// List returns every numbering configuration of the tenant
func (s *NumberingService) List(ctx context.Context, tenantID uuid.UUID) ([]NumberingResponse, error) {
	numberings, err := s.numberingRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	responses := make([]NumberingResponse, len(numberings))
	for i := range numberings {
		responses[i] = ToNumberingResponse(&numberings[i])
	}
	return responses, nil
}

// Upsert creates the configuration of a prefix or reconfigures it under a
// version check. The first configuration of a tenant becomes its default.
func (s *NumberingService) Upsert(ctx context.Context, tenantID uuid.UUID, req UpsertNumberingRequest) (*NumberingResponse, error) {
	prefix := req.Prefix
	if strings.TrimSpace(prefix) == "" {
		prefix = s.defaults.Prefix
	}

	var saved *invoicing.InvoiceNumbering
	err := s.uow.Do(ctx, func(repos invoicing.Repositories) error {
		current, err := repos.Numbering.FindDefault(ctx, tenantID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		numbering, err := repos.Numbering.FindByPrefix(ctx, tenantID, prefix)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			numbering, err = s.create(tenantID, prefix, req)
			if err != nil {
				return err
			}
			makeDefault := current == nil || (req.IsDefault != nil && *req.IsDefault)
			if makeDefault {
				if err := unsetDefault(ctx, repos.Numbering, current); err != nil {
					return err
				}
				numbering.MarkDefault(true)
			}
			if err := repos.Numbering.Save(ctx, numbering); err != nil {
				return err
			}

		case err != nil:
			return err

		default:
			if req.Version != nil && *req.Version != numbering.Version {
				return shared.ErrConcurrencyConflict
			}
			next, padding := numbering.NextNumber, numbering.Padding
			if req.NextNumber != nil {
				next = *req.NextNumber
			}
			if req.Padding != nil {
				padding = *req.Padding
			}
			if err := numbering.Reconfigure(next, padding); err != nil {
				return err
			}
			if req.IsDefault != nil {
				if *req.IsDefault && (current == nil || current.ID != numbering.ID) {
					if err := unsetDefault(ctx, repos.Numbering, current); err != nil {
						return err
					}
				}
				numbering.MarkDefault(*req.IsDefault)
			}
			if err := repos.Numbering.SaveWithLock(ctx, numbering); err != nil {
				return err
			}
		}

		saved = numbering
		return nil
	})
	if err != nil {
		return nil, err
	}

	response := ToNumberingResponse(saved)
	return &response, nil
}

func (s *NumberingService) create(tenantID uuid.UUID, prefix string, req UpsertNumberingRequest) (*invoicing.InvoiceNumbering, error) {
	next := int64(1)
	if req.NextNumber != nil {
		next = *req.NextNumber
	}
	padding := s.defaults.Padding
	if req.Padding != nil {
		padding = *req.Padding
	}
	return invoicing.NewInvoiceNumbering(tenantID, prefix, next, padding)
}

// unsetDefault clears the default flag of the previous default configuration
func unsetDefault(ctx context.Context, repo invoicing.NumberingRepository, current *invoicing.InvoiceNumbering) error {
	if current == nil {
		return nil
	}
	current.MarkDefault(false)
	current.IncrementVersion()
	return repo.SaveWithLock(ctx, current)
}
