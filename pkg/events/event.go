// Package events defines the domain event contract shared by aggregates and
// the message-bus adapters.
package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is implemented by every event an aggregate raises.
type DomainEvent interface {
	EventID() string
	EventType() string
	AggregateID() string
	AggregateType() string
	// TenantID identifies the owning institution; empty for cross-institution events.
	TenantID() string
	OccurredAt() time.Time
}

// BaseEvent carries the envelope fields. Embedding it in a concrete event
// makes the envelope part of the event's JSON encoding.
type BaseEvent struct {
	Timestamp     time.Time `json:"occurred_at"`
	ID            string    `json:"event_id"`
	Type          string    `json:"event_type"`
	Aggregate     string    `json:"aggregate_id"`
	AggregateKind string    `json:"aggregate_type"`
	Tenant        string    `json:"tenant_id,omitempty"`
}

// NewBaseEvent stamps a new envelope with a random id and the current UTC time.
func NewBaseEvent(eventType, aggregateID, aggregateType, tenantID string) BaseEvent {
	return BaseEvent{
		Timestamp:     time.Now().UTC(),
		ID:            uuid.NewString(),
		Type:          eventType,
		Aggregate:     aggregateID,
		AggregateKind: aggregateType,
		Tenant:        tenantID,
	}
}

func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) AggregateID() string   { return e.Aggregate }
func (e BaseEvent) AggregateType() string { return e.AggregateKind }
func (e BaseEvent) TenantID() string      { return e.Tenant }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
