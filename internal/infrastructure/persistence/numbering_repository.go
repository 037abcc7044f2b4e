package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/estate/backend/internal/domain/invoicing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/estate/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormNumberingRepository implements invoicing.NumberingRepository using GORM
type GormNumberingRepository struct {
	db *gorm.DB
}

// NewGormNumberingRepository creates a new GormNumberingRepository
func NewGormNumberingRepository(db *gorm.DB) *GormNumberingRepository {
	return &GormNumberingRepository{db: db}
}

// FindByPrefix finds the numbering configuration of a prefix
func (r *GormNumberingRepository) FindByPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) (*invoicing.InvoiceNumbering, error) {
	var model models.InvoiceNumberingModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND prefix = ?", tenantID, prefix).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindDefault finds the tenant's default numbering configuration
func (r *GormNumberingRepository) FindDefault(ctx context.Context, tenantID uuid.UUID) (*invoicing.InvoiceNumbering, error) {
	var model models.InvoiceNumberingModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_default = ?", tenantID, true).
		Order("created_at ASC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists every numbering configuration of a tenant
func (r *GormNumberingRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]invoicing.InvoiceNumbering, error) {
	var numberingModels []models.InvoiceNumberingModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("prefix ASC").
		Find(&numberingModels).Error; err != nil {
		return nil, err
	}
	out := make([]invoicing.InvoiceNumbering, len(numberingModels))
	for i, model := range numberingModels {
		out[i] = *model.ToDomain()
	}
	return out, nil
}

// Save creates or updates a numbering configuration
func (r *GormNumberingRepository) Save(ctx context.Context, numbering *invoicing.InvoiceNumbering) error {
	model := models.InvoiceNumberingModelFromDomain(numbering)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError("ALREADY_EXISTS", "Numbering prefix already exists")
		}
		return err
	}
	return nil
}

// SaveWithLock writes the configuration only when the stored version is
// numbering.Version-1, which is the version the caller read
func (r *GormNumberingRepository) SaveWithLock(ctx context.Context, numbering *invoicing.InvoiceNumbering) error {
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceNumberingModel{}).
		Where("id = ? AND version = ?", numbering.ID, numbering.Version-1).
		Updates(map[string]any{
			"next_number": numbering.NextNumber,
			"padding":     numbering.Padding,
			"is_default":  numbering.IsDefault,
			"version":     numbering.Version,
			"updated_at":  time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "Invoice numbering was modified by another process")
	}
	return nil
}
