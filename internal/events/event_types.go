package events

import (
	"time"

	"github.com/spec-kit/event-ticket-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventEventCreated       EventType = "event_created"
	EventTicketIssued       EventType = "ticket_issued"
	EventTicketValidated    EventType = "ticket_validated"
	EventValidationConflict EventType = "validation_conflict"
	EventTicketDeleted      EventType = "ticket_deleted"
)

// Actor identifies the operator behind an event, when one exists.
type Actor struct {
	OperatorID *string `json:"operator_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// EventCreatedPayload payload.
type EventCreatedPayload struct {
	EventID string    `json:"event_id"`
	Name    string    `json:"name"`
	Date    time.Time `json:"date"`
	Place   string    `json:"place"`
}

// TicketIssuedPayload payload.
type TicketIssuedPayload struct {
	EventID     string `json:"event_id"`
	HolderName  string `json:"holder_name"`
	HolderPhone string `json:"holder_phone"`
}

// TicketValidatedPayload payload.
type TicketValidatedPayload struct {
	EventID     string    `json:"event_id"`
	ValidatedBy string    `json:"validated_by"`
	ValidatedAt time.Time `json:"validated_at"`
}

// ValidationConflictPayload records a losing validation attempt against an
// already validated ticket.
type ValidationConflictPayload struct {
	EventID     string                 `json:"event_id"`
	AttemptedBy string                 `json:"attempted_by"`
	State       domain.ValidationState `json:"state"`
	ValidatedBy *string                `json:"validated_by,omitempty"`
	ValidatedAt *time.Time             `json:"validated_at,omitempty"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	EventID string `json:"event_id"`
}
