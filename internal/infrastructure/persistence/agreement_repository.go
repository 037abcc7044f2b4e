package persistence

import (
	"context"
	"errors"

	"github.com/estate/backend/internal/domain/invoicing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAgreementRepository implements invoicing.AgreementRepository using GORM
type GormAgreementRepository struct {
	db *gorm.DB
}

// NewGormAgreementRepository creates a new GormAgreementRepository
func NewGormAgreementRepository(db *gorm.DB) *GormAgreementRepository {
	return &GormAgreementRepository{db: db}
}

// FindByIDForTenant finds an agreement by ID for a specific tenant
func (r *GormAgreementRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.SaleAgreement, error) {
	var model models.SaleAgreementModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all agreements for a tenant with filtering
func (r *GormAgreementRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter invoicing.AgreementFilter) ([]invoicing.SaleAgreement, error) {
	var agreementModels []models.SaleAgreementModel
	query := r.db.WithContext(ctx).Model(&models.SaleAgreementModel{}).
		Where("tenant_id = ?", tenantID)
	query = paginate(applyAgreementFilter(query, filter), filter.Filter, AgreementSortFields, "created_at")

	if err := query.Find(&agreementModels).Error; err != nil {
		return nil, err
	}
	agreements := make([]invoicing.SaleAgreement, len(agreementModels))
	for i, model := range agreementModels {
		agreements[i] = *model.ToDomain()
	}
	return agreements, nil
}

// CountForTenant counts agreements for a tenant with filtering
func (r *GormAgreementRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter invoicing.AgreementFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.SaleAgreementModel{}).
		Where("tenant_id = ?", tenantID)
	if err := applyAgreementFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an agreement
func (r *GormAgreementRepository) Save(ctx context.Context, agreement *invoicing.SaleAgreement) error {
	model := models.SaleAgreementModelFromDomain(agreement)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError("ALREADY_EXISTS", "Agreement number already exists")
		}
		return err
	}
	return nil
}

// ExistsByAgreementNumber checks if an agreement number exists for a tenant
func (r *GormAgreementRepository) ExistsByAgreementNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SaleAgreementModel{}).
		Where("tenant_id = ? AND agreement_number = ?", tenantID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func applyAgreementFilter(query *gorm.DB, filter invoicing.AgreementFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		query = query.Where(`LOWER(agreement_number) LIKE LOWER(?) ESCAPE '\'`, pattern)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	return query
}
