package invoicing

import (
	"context"
	"time"

	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AgreementFilter defines filtering options for agreement queries
type AgreementFilter struct {
	shared.Filter
	Kind     *AgreementKind   // Filter by agreement kind
	Status   *AgreementStatus // Filter by status
	ClientID *uuid.UUID       // Filter by client
}

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	AgreementID *uuid.UUID     // Filter by source agreement
	Status      *InvoiceStatus // Filter by status
	Kind        *InvoiceKind   // Filter by kind
	DueFrom     *time.Time     // Filter by due date range start
	DueTo       *time.Time     // Filter by due date range end
}

// AgreementRepository defines the interface for agreement persistence
type AgreementRepository interface {
	// FindByIDForTenant finds an agreement within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*SaleAgreement, error)

	// FindAllForTenant lists agreements of a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter AgreementFilter) ([]SaleAgreement, error)

	// CountForTenant counts agreements matching filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter AgreementFilter) (int64, error)

	// Save creates or updates an agreement
	Save(ctx context.Context, agreement *SaleAgreement) error

	// ExistsByAgreementNumber checks if an agreement number is taken within a tenant
	ExistsByAgreementNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error)
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByIDForTenant finds an invoice within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindByAgreement lists an agreement's invoices ordered by sequence
	FindByAgreement(ctx context.Context, tenantID, agreementID uuid.UUID) ([]Invoice, error)

	// FindAllForTenant lists invoices of a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)

	// CountForTenant counts invoices matching filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) (int64, error)

	// ListNumbersWithPrefix returns every invoice number of the tenant starting with prefix
	ListNumbersWithPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) ([]string, error)

	// SaveBatch inserts invoices; a duplicate number fails the whole batch
	SaveBatch(ctx context.Context, invoices []*Invoice) error

	// ExistsByAgreement checks whether any invoice references the agreement
	ExistsByAgreement(ctx context.Context, tenantID, agreementID uuid.UUID) (bool, error)
}

// NumberingRepository defines the interface for numbering configuration persistence
type NumberingRepository interface {
	// FindByPrefix finds the numbering configuration of a prefix
	FindByPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) (*InvoiceNumbering, error)

	// FindDefault finds the tenant's default numbering configuration
	FindDefault(ctx context.Context, tenantID uuid.UUID) (*InvoiceNumbering, error)

	// FindAllForTenant lists every numbering configuration of a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]InvoiceNumbering, error)

	// Save creates or updates a numbering configuration
	Save(ctx context.Context, numbering *InvoiceNumbering) error

	// SaveWithLock updates the configuration only if the stored version is
	// numbering.Version-1, returning a concurrency conflict otherwise
	SaveWithLock(ctx context.Context, numbering *InvoiceNumbering) error
}

// Repositories bundles the repositories bound to one unit of work
type Repositories struct {
	Agreements AgreementRepository
	Invoices   InvoiceRepository
	Numbering  NumberingRepository
}

// UnitOfWork runs fn inside one database transaction
type UnitOfWork interface {
	Do(ctx context.Context, fn func(repos Repositories) error) error
}
