package domain

import "time"

// EventType names a lifecycle event published to the event bus
type EventType string

const (
	EventUserRegistered  EventType = "user.registered"
	EventUserUpdated     EventType = "user.updated"
	EventUserDeleted     EventType = "user.deleted"
	EventUserRoleChanged EventType = "user.role_changed"
	EventPostCreated     EventType = "post.created"
	EventPostUpdated     EventType = "post.updated"
	EventPostDeleted     EventType = "post.deleted"
)

// Event is the message envelope for lifecycle events
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	AggregateID string      `json:"aggregateId"`
	ActorID     string      `json:"actorId,omitempty"`
	OccurredAt  time.Time   `json:"occurredAt"`
	Payload     interface{} `json:"payload,omitempty"`
}

// NewEvent builds an event stamped with the current time
func NewEvent(id string, eventType EventType, aggregateID, actorID string, payload interface{}) *Event {
	return &Event{
		ID:          id,
		Type:        eventType,
		AggregateID: aggregateID,
		ActorID:     actorID,
		OccurredAt:  time.Now().UTC(),
		Payload:     payload,
	}
}

// Key is the partition key, keeping one aggregate's events ordered
func (e *Event) Key() string {
	return e.AggregateID
}
