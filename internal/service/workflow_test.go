package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-ticket-service/internal/codec"
	"github.com/spec-kit/event-ticket-service/internal/config"
	"github.com/spec-kit/event-ticket-service/internal/domain"
	"github.com/spec-kit/event-ticket-service/internal/events"
	"github.com/spec-kit/event-ticket-service/internal/repository"
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	events map[string]*domain.Event
}

var _ repository.EventRepository = (*fakeEventRepo)(nil)

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]*domain.Event)}
}

func (r *fakeEventRepo) Create(_ context.Context, event *domain.Event) error {
	event.ID = uuid.NewString()
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *fakeEventRepo) Update(_ context.Context, event *domain.Event) error {
	if _, ok := r.events[event.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *event
	return &clone, nil
}

func (r *fakeEventRepo) List(_ context.Context, _, _ int) ([]domain.Event, error) {
	var result []domain.Event
	for _, event := range r.events {
		result = append(result, *event)
	}
	return result, nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.events[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.events, id)
	return nil
}

func testShareConfig() config.ShareConfig {
	return config.ShareConfig{
		PublicBaseURL:    "https://tickets.example.com",
		WhatsAppBaseURL:  "https://api.whatsapp.com",
		PhoneCountryCode: "502",
	}
}

// TestIssueValidateWorkflow walks the full entrance workflow: issue a ticket,
// render its token, scan it back, preview, validate once, and watch the
// second attempt lose deterministically.
func TestIssueValidateWorkflow(t *testing.T) {
	ctx := context.Background()
	ticketRepo := newFakeTicketRepo()
	eventRepo := newFakeEventRepo()
	dispatcher := events.NewInMemoryDispatcher()

	eventSvc := NewEventService(eventRepo, dispatcher)
	ticketSvc := NewTicketService(ticketRepo, eventRepo, dispatcher, testShareConfig())
	validationSvc := newValidationService(ticketRepo)

	event, err := eventSvc.CreateEvent(ctx, EventInput{
		Name:  "Concierto de Primavera",
		Date:  time.Date(2026, 4, 18, 20, 0, 0, 0, time.UTC),
		Place: "Teatro Nacional",
	})
	require.NoError(t, err)

	document := "CUI-1234"
	ticket, err := ticketSvc.IssueTicket(ctx, event.ID, IssueTicketInput{
		HolderName:     "Ana Ruiz",
		HolderPhone:    "55512345",
		HolderDocument: &document,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ValidationStatePending, ticket.ValidationState)

	// Render and scan the token; every identifying field survives the trip.
	token := Token(ticket)
	decoded, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, decoded.ID)
	assert.Equal(t, event.ID, decoded.EventID)
	assert.Equal(t, "Ana Ruiz", decoded.HolderName)
	assert.Equal(t, "55512345", decoded.HolderPhone)
	assert.Equal(t, "CUI-1234", decoded.HolderDocument)

	// Preview shows pending.
	preview, err := validationSvc.Lookup(ctx, decoded.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ValidationStatePending, preview.ValidationState)

	// First gate wins.
	t0 := time.Date(2026, 4, 18, 19, 30, 0, 0, time.UTC)
	first, err := validationSvc.TryValidate(ctx, decoded.ID, "op-1", t0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeValidated, first.Outcome)
	assert.Equal(t, t0, *first.Ticket.ValidatedAt)

	// Second gate sees the original validation untouched.
	second, err := validationSvc.TryValidate(ctx, decoded.ID, "op-2", t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyValidated, second.Outcome)
	assert.Equal(t, "op-1", *second.Ticket.ValidatedBy)
	assert.Equal(t, t0, *second.Ticket.ValidatedAt)
}

func TestIssueTicketRequiresHolderFields(t *testing.T) {
	ctx := context.Background()
	ticketRepo := newFakeTicketRepo()
	eventRepo := newFakeEventRepo()
	ticketSvc := NewTicketService(ticketRepo, eventRepo, nil, testShareConfig())

	event := &domain.Event{Name: "E", Date: time.Now(), Place: "P"}
	require.NoError(t, eventRepo.Create(ctx, event))

	_, err := ticketSvc.IssueTicket(ctx, event.ID, IssueTicketInput{HolderName: "  ", HolderPhone: "555"})
	assert.Error(t, err)

	_, err = ticketSvc.IssueTicket(ctx, event.ID, IssueTicketInput{HolderName: "Ana", HolderPhone: ""})
	assert.Error(t, err)
}

func TestIssueTicketUnknownEvent(t *testing.T) {
	ticketSvc := NewTicketService(newFakeTicketRepo(), newFakeEventRepo(), nil, testShareConfig())

	_, err := ticketSvc.IssueTicket(context.Background(), "missing-event", IssueTicketInput{
		HolderName:  "Ana",
		HolderPhone: "555",
	})
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestShareLink(t *testing.T) {
	ctx := context.Background()
	ticketRepo := newFakeTicketRepo()
	eventRepo := newFakeEventRepo()
	ticketSvc := NewTicketService(ticketRepo, eventRepo, nil, testShareConfig())

	event := &domain.Event{Name: "E", Date: time.Now(), Place: "P"}
	require.NoError(t, eventRepo.Create(ctx, event))
	ticket, err := ticketSvc.IssueTicket(ctx, event.ID, IssueTicketInput{
		HolderName:  "Ana Ruiz",
		HolderPhone: "55512345",
	})
	require.NoError(t, err)

	link, err := ticketSvc.ShareLink(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Contains(t, link, "https://api.whatsapp.com/send?")
	assert.Contains(t, link, "phone=50255512345")
	assert.Contains(t, link, "tickets.example.com%2Fticket%2F"+ticket.ID)
}

func TestGetPass(t *testing.T) {
	ctx := context.Background()
	ticketRepo := newFakeTicketRepo()
	eventRepo := newFakeEventRepo()
	ticketSvc := NewTicketService(ticketRepo, eventRepo, nil, testShareConfig())

	event := &domain.Event{Name: "Feria", Date: time.Now(), Place: "Campo Marte"}
	require.NoError(t, eventRepo.Create(ctx, event))
	ticket, err := ticketSvc.IssueTicket(ctx, event.ID, IssueTicketInput{
		HolderName:  "Ana",
		HolderPhone: "555",
	})
	require.NoError(t, err)

	pass, err := ticketSvc.GetPass(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, pass.Ticket.ID)
	assert.Equal(t, "Feria", pass.Event.Name)
	assert.Equal(t, "https://tickets.example.com/ticket/"+ticket.ID, pass.URL)

	decoded, err := codec.Decode(pass.Token)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, decoded.ID)
}
