package persistence

import (
	"context"

	"github.com/estate/backend/internal/domain/invoicing"
	"gorm.io/gorm"
)

// GormUnitOfWork implements invoicing.UnitOfWork on a GORM transaction
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Do runs fn with repositories bound to one transaction. Returning an error
// from fn rolls back every write made through repos.
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(repos invoicing.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// NewRepositories binds every invoicing repository to db
func NewRepositories(db *gorm.DB) invoicing.Repositories {
	return invoicing.Repositories{
		Agreements: NewGormAgreementRepository(db),
		Invoices:   NewGormInvoiceRepository(db),
		Numbering:  NewGormNumberingRepository(db),
	}
}
