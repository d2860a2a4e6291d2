package dto

import (
	"time"

	"github.com/spec-kit/event-ticket-service/internal/domain"
)

// IssueTicketRequest payload.
type IssueTicketRequest struct {
	HolderName     string  `json:"holder_name"`
	HolderPhone    string  `json:"holder_phone"`
	HolderDocument *string `json:"holder_document,omitempty"`
}

// TicketResponse response.
type TicketResponse struct {
	ID              string                 `json:"id"`
	EventID         string                 `json:"event_id"`
	HolderName      string                 `json:"holder_name"`
	HolderPhone     string                 `json:"holder_phone"`
	HolderDocument  *string                `json:"holder_document,omitempty"`
	ValidationState domain.ValidationState `json:"validation_state"`
	ValidatedBy     *string                `json:"validated_by,omitempty"`
	ValidatedAt     *time.Time             `json:"validated_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

// TicketPassResponse is the holder-facing pass: ticket, event context and the
// token string a client renders as a QR code.
type TicketPassResponse struct {
	Ticket TicketResponse `json:"ticket"`
	Event  EventResponse  `json:"event"`
	Token  string         `json:"token"`
	URL    string         `json:"url"`
}

// ShareLinkResponse response.
type ShareLinkResponse struct {
	URL string `json:"url"`
}
