package invoicing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/estate/backend/internal/domain/invoicing"
	"github.com/estate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAgreementRepository is a mock implementation of invoicing.AgreementRepository
type MockAgreementRepository struct {
	mock.Mock
}

func (m *MockAgreementRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.SaleAgreement, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.SaleAgreement), args.Error(1)
}

func (m *MockAgreementRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter invoicing.AgreementFilter) ([]invoicing.SaleAgreement, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]invoicing.SaleAgreement), args.Error(1)
}

func (m *MockAgreementRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter invoicing.AgreementFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAgreementRepository) Save(ctx context.Context, agreement *invoicing.SaleAgreement) error {
	args := m.Called(ctx, agreement)
	return args.Error(0)
}

func (m *MockAgreementRepository) ExistsByAgreementNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	args := m.Called(ctx, tenantID, number)
	return args.Bool(0), args.Error(1)
}

// MockInvoiceRepository is a mock implementation of invoicing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByAgreement(ctx context.Context, tenantID, agreementID uuid.UUID) ([]invoicing.Invoice, error) {
	args := m.Called(ctx, tenantID, agreementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter invoicing.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) ListNumbersWithPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) ([]string, error) {
	args := m.Called(ctx, tenantID, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockInvoiceRepository) SaveBatch(ctx context.Context, invoices []*invoicing.Invoice) error {
	args := m.Called(ctx, invoices)
	return args.Error(0)
}

func (m *MockInvoiceRepository) ExistsByAgreement(ctx context.Context, tenantID, agreementID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, agreementID)
	return args.Bool(0), args.Error(1)
}

// MockNumberingRepository is a mock implementation of invoicing.NumberingRepository
type MockNumberingRepository struct {
	mock.Mock
}

func (m *MockNumberingRepository) FindByPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) (*invoicing.InvoiceNumbering, error) {
	args := m.Called(ctx, tenantID, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.InvoiceNumbering), args.Error(1)
}

func (m *MockNumberingRepository) FindDefault(ctx context.Context, tenantID uuid.UUID) (*invoicing.InvoiceNumbering, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.InvoiceNumbering), args.Error(1)
}

func (m *MockNumberingRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]invoicing.InvoiceNumbering, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]invoicing.InvoiceNumbering), args.Error(1)
}

func (m *MockNumberingRepository) Save(ctx context.Context, numbering *invoicing.InvoiceNumbering) error {
	args := m.Called(ctx, numbering)
	return args.Error(0)
}

func (m *MockNumberingRepository) SaveWithLock(ctx context.Context, numbering *invoicing.InvoiceNumbering) error {
	args := m.Called(ctx, numbering)
	return args.Error(0)
}

// fakeUnitOfWork runs fn against the mocks and remembers its outcome
type fakeUnitOfWork struct {
	repos   invoicing.Repositories
	calls   int
	lastErr error
}

func (u *fakeUnitOfWork) Do(ctx context.Context, fn func(repos invoicing.Repositories) error) error {
	u.calls++
	u.lastErr = fn(u.repos)
	return u.lastErr
}

// recordingPublisher collects published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

func (p *recordingPublisher) countOf(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.EventType() == eventType {
			n++
		}
	}
	return n
}

type testMocks struct {
	agreements *MockAgreementRepository
	invoices   *MockInvoiceRepository
	numbering  *MockNumberingRepository
	uow        *fakeUnitOfWork
}

func newTestMocks() *testMocks {
	m := &testMocks{
		agreements: new(MockAgreementRepository),
		invoices:   new(MockInvoiceRepository),
		numbering:  new(MockNumberingRepository),
	}
	m.uow = &fakeUnitOfWork{repos: m.repos()}
	return m
}

func (m *testMocks) repos() invoicing.Repositories {
	return invoicing.Repositories{
		Agreements: m.agreements,
		Invoices:   m.invoices,
		Numbering:  m.numbering,
	}
}

func (m *testMocks) assertExpectations(t *testing.T) {
	m.agreements.AssertExpectations(t)
	m.invoices.AssertExpectations(t)
	m.numbering.AssertExpectations(t)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// newTestAgreement is the reference scenario: 1,000,000 with 20% down,
// two years paid quarterly, issued 2024-03-15
func newTestAgreement(t *testing.T, tenantID uuid.UUID) *invoicing.SaleAgreement {
	t.Helper()
	a, err := invoicing.NewSaleAgreement(
		tenantID,
		"AGR-001",
		invoicing.AgreementKindProject,
		decimal.NewFromInt(1_000_000),
		date(2024, 3, 15),
		uuid.New(),
		nil,
		[]string{"A-101"},
	)
	require.NoError(t, err)
	plan, err := invoicing.NewInstallmentPlan(decimal.NewFromInt(2), decimal.NewFromInt(20), invoicing.FrequencyQuarterly)
	require.NoError(t, err)
	require.NoError(t, a.SetPlan(plan))
	a.ClearDomainEvents()
	return a
}

func newTestNumbering(t *testing.T, tenantID uuid.UUID, prefix string, next int64) *invoicing.InvoiceNumbering {
	t.Helper()
	n, err := invoicing.NewInvoiceNumbering(tenantID, prefix, next, 5)
	require.NoError(t, err)
	n.MarkDefault(true)
	return n
}
