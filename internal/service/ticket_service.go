package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/event-ticket-service/internal/codec"
	"github.com/spec-kit/event-ticket-service/internal/config"
	"github.com/spec-kit/event-ticket-service/internal/domain"
	"github.com/spec-kit/event-ticket-service/internal/events"
	"github.com/spec-kit/event-ticket-service/internal/repository"
)

// TicketService coordinates issuance, listing and deletion of tickets, and
// renders the portable token for a ticket's pass. Validation state is out of
// its reach; that belongs to ValidationService alone.
type TicketService struct {
	tickets    repository.TicketRepository
	eventsRepo repository.EventRepository
	dispatcher events.Dispatcher
	share      config.ShareConfig
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, eventsRepo repository.EventRepository, dispatcher events.Dispatcher, share config.ShareConfig) *TicketService {
	return &TicketService{
		tickets:    tickets,
		eventsRepo: eventsRepo,
		dispatcher: dispatcher,
		share:      share,
	}
}

// IssueTicketInput describes issuance payload.
type IssueTicketInput struct {
	HolderName     string
	HolderPhone    string
	HolderDocument *string
}

// TicketPass bundles everything a pass renderer needs: the ticket, its event
// and the encoded token for the QR code.
type TicketPass struct {
	Ticket *domain.Ticket
	Event  *domain.Event
	Token  string
	URL    string
}

// IssueTicket creates a pending ticket for an event.
func (s *TicketService) IssueTicket(ctx context.Context, eventID string, input IssueTicketInput) (*domain.Ticket, error) {
	if _, err := s.eventsRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.HolderName)
	phone := strings.TrimSpace(input.HolderPhone)
	if name == "" || phone == "" {
		return nil, errors.New("holder name and phone are required")
	}

	ticket := &domain.Ticket{
		EventID:         eventID,
		HolderName:      name,
		HolderPhone:     phone,
		HolderDocument:  input.HolderDocument,
		ValidationState: domain.ValidationStatePending,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketIssued,
		TicketID: ticket.ID,
		Payload: events.TicketIssuedPayload{
			EventID:     ticket.EventID,
			HolderName:  ticket.HolderName,
			HolderPhone: ticket.HolderPhone,
		},
	})
	return ticket, nil
}

// GetTicket fetches a single ticket.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

// GetPass assembles the holder-facing pass for a ticket.
func (s *TicketService) GetPass(ctx context.Context, ticketID string) (*TicketPass, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	event, err := s.eventsRepo.GetByID(ctx, ticket.EventID)
	if err != nil {
		return nil, err
	}
	return &TicketPass{
		Ticket: ticket,
		Event:  event,
		Token:  Token(ticket),
		URL:    s.passURL(ticket.ID),
	}, nil
}

// ListEventTickets returns paginated tickets for an event.
func (s *TicketService) ListEventTickets(ctx context.Context, eventID string, limit, offset int) ([]domain.Ticket, error) {
	if _, err := s.eventsRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.tickets.ListByEvent(ctx, eventID, limit, offset)
}

// DeleteTicket removes a ticket. Irreversible and not guarded by the
// validation engine.
func (s *TicketService) DeleteTicket(ctx context.Context, operatorID, ticketID string) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticketID,
		Actor:    events.Actor{OperatorID: &operatorID},
		Payload:  events.TicketDeletedPayload{EventID: ticket.EventID},
	})
	return nil
}

// ShareLink builds a WhatsApp deep link that sends the holder their pass URL.
func (s *TicketService) ShareLink(ctx context.Context, ticketID string) (string, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return "", err
	}

	message := "Hola, este es tu boleto digital el cual debes presentar el día del evento en la entrada: " + s.passURL(ticket.ID)
	query := url.Values{}
	query.Set("phone", s.share.PhoneCountryCode+ticket.HolderPhone)
	query.Set("text", message)
	return fmt.Sprintf("%s/send?%s", strings.TrimRight(s.share.WhatsAppBaseURL, "/"), query.Encode()), nil
}

// Token encodes the ticket's identity fields into the portable token string.
func Token(ticket *domain.Ticket) string {
	payload := codec.TokenPayload{
		ID:          ticket.ID,
		EventID:     ticket.EventID,
		HolderName:  ticket.HolderName,
		HolderPhone: ticket.HolderPhone,
	}
	if ticket.HolderDocument != nil {
		payload.HolderDocument = *ticket.HolderDocument
	}
	return codec.Encode(payload)
}

func (s *TicketService) passURL(ticketID string) string {
	return fmt.Sprintf("%s/ticket/%s", strings.TrimRight(s.share.PublicBaseURL, "/"), ticketID)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
