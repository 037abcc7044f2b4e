package shared

import "github.com/google/uuid"

// BaseAggregateRoot holds the optimistic-lock version and the events raised
// since the aggregate was loaded
type BaseAggregateRoot struct {
	BaseEntity
	Version int

	pending []DomainEvent
}

// IncrementVersion is called once per persisted mutation
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
	a.touch()
}

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.pending
}

func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}

// TenantAggregateRoot scopes an aggregate to one tenant
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID uuid.UUID
}

// NewTenantAggregateRoot starts a new aggregate at version 1
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseAggregateRoot: BaseAggregateRoot{BaseEntity: newBaseEntity(), Version: 1},
		TenantID:          tenantID,
	}
}

func (t *TenantAggregateRoot) BelongsTo(tenantID uuid.UUID) bool {
	return t.TenantID == tenantID
}
