package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact recorded by an aggregate and delivered after commit
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
}

// AggregateRef names the aggregate an event belongs to
type AggregateRef struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
}

// BaseDomainEvent is embedded by concrete events
type BaseDomainEvent struct {
	ID         uuid.UUID    `json:"id"`
	Type       string       `json:"type"`
	OccurredOn time.Time    `json:"occurred_on"`
	Aggregate  AggregateRef `json:"aggregate"`
	Tenant     uuid.UUID    `json:"tenant_id"`
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.OccurredOn }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.Aggregate.ID }
func (e *BaseDomainEvent) AggregateType() string  { return e.Aggregate.Type }
func (e *BaseDomainEvent) TenantID() uuid.UUID    { return e.Tenant }

// NewBaseDomainEvent stamps a fresh ID and UTC time onto an event of eventType
func NewBaseDomainEvent(eventType string, ref AggregateRef, tenantID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredOn: time.Now().UTC(),
		Aggregate:  ref,
		Tenant:     tenantID,
	}
}
