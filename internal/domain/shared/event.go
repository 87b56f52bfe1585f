package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact recorded by an aggregate. Aggregates collect events
// while they change and services publish them once the change is committed.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	// AggregateVersion is the aggregate's version when the event was raised.
	// Consumers use it to drop events older than what they have seen.
	AggregateVersion() int
	TenantID() uuid.UUID
}

// AggregateRef identifies the aggregate an event belongs to
type AggregateRef struct {
	Type    string    `json:"type"`
	ID      uuid.UUID `json:"id"`
	Version int       `json:"version"`
}

// EventMeta is embedded in every concrete event and implements DomainEvent
type EventMeta struct {
	ID        uuid.UUID    `json:"event_id"`
	Type      string       `json:"event_type"`
	At        time.Time    `json:"occurred_at"`
	Aggregate AggregateRef `json:"aggregate"`
	Tenant    uuid.UUID    `json:"tenant_id"`
}

// NewEventMeta stamps a new event of eventType for agg
func NewEventMeta(eventType string, agg AggregateRef, tenantID uuid.UUID) EventMeta {
	return EventMeta{
		ID:        uuid.New(),
		Type:      eventType,
		At:        time.Now().UTC(),
		Aggregate: agg,
		Tenant:    tenantID,
	}
}

func (m *EventMeta) EventID() uuid.UUID     { return m.ID }
func (m *EventMeta) EventType() string      { return m.Type }
func (m *EventMeta) OccurredAt() time.Time  { return m.At }
func (m *EventMeta) AggregateID() uuid.UUID { return m.Aggregate.ID }
func (m *EventMeta) AggregateType() string  { return m.Aggregate.Type }
func (m *EventMeta) AggregateVersion() int  { return m.Aggregate.Version }
func (m *EventMeta) TenantID() uuid.UUID    { return m.Tenant }
