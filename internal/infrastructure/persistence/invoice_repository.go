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

const invoiceBatchSize = 100

// GormInvoiceRepository implements invoicing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByIDForTenant finds an invoice by ID for a specific tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
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

// FindByAgreement lists an agreement's invoices ordered by sequence
func (r *GormInvoiceRepository) FindByAgreement(ctx context.Context, tenantID, agreementID uuid.UUID) ([]invoicing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND agreement_id = ?", tenantID, agreementID).
		Order("sequence ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toInvoices(invoiceModels), nil
}

// FindAllForTenant finds all invoices for a tenant with filtering
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("tenant_id = ?", tenantID)
	query = paginate(applyInvoiceFilter(query, filter), filter.Filter, InvoiceSortFields, "created_at")

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toInvoices(invoiceModels), nil
}

// CountForTenant counts invoices for a tenant with filtering
func (r *GormInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter invoicing.InvoiceFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("tenant_id = ?", tenantID)
	if err := applyInvoiceFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListNumbersWithPrefix returns every invoice number of the tenant that starts with prefix
func (r *GormInvoiceRepository) ListNumbersWithPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) ([]string, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where(`tenant_id = ? AND invoice_number LIKE ? ESCAPE '\'`, tenantID, escapeLike(prefix)+"%").
		Pluck("invoice_number", &numbers).Error; err != nil {
		return nil, err
	}
	return numbers, nil
}

// SaveBatch inserts invoices in one statement per batch
func (r *GormInvoiceRepository) SaveBatch(ctx context.Context, invoices []*invoicing.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	invoiceModels := make([]*models.InvoiceModel, len(invoices))
	for i, inv := range invoices {
		invoiceModels[i] = models.InvoiceModelFromDomain(inv)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(invoiceModels, invoiceBatchSize).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError("CONCURRENCY_CONFLICT", "An invoice number was issued concurrently, please retry")
		}
		return err
	}
	return nil
}

// ExistsByAgreement checks whether any invoice references the agreement
func (r *GormInvoiceRepository) ExistsByAgreement(ctx context.Context, tenantID, agreementID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND agreement_id = ?", tenantID, agreementID).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func applyInvoiceFilter(query *gorm.DB, filter invoicing.InvoiceFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		query = query.Where(`(LOWER(invoice_number) LIKE LOWER(?) ESCAPE '\' OR LOWER(description) LIKE LOWER(?) ESCAPE '\')`, pattern, pattern)
	}
	if filter.AgreementID != nil {
		query = query.Where("agreement_id = ?", *filter.AgreementID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	return query
}

func toInvoices(invoiceModels []models.InvoiceModel) []invoicing.Invoice {
	invoices := make([]invoicing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices
}
