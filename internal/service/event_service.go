package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/event-ticket-service/internal/domain"
	"github.com/spec-kit/event-ticket-service/internal/events"
	"github.com/spec-kit/event-ticket-service/internal/repository"
)

// EventService manages the event records tickets are issued against.
type EventService struct {
	eventsRepo repository.EventRepository
	dispatcher events.Dispatcher
}

// NewEventService constructs the service.
func NewEventService(eventsRepo repository.EventRepository, dispatcher events.Dispatcher) *EventService {
	return &EventService{eventsRepo: eventsRepo, dispatcher: dispatcher}
}

// EventInput describes event create/update payload.
type EventInput struct {
	Name  string
	Date  time.Time
	Place string
}

// CreateEvent creates an event.
func (s *EventService) CreateEvent(ctx context.Context, input EventInput) (*domain.Event, error) {
	name := strings.TrimSpace(input.Name)
	place := strings.TrimSpace(input.Place)
	if name == "" || place == "" || input.Date.IsZero() {
		return nil, errors.New("name, date and place are required")
	}

	event := &domain.Event{
		Name:  name,
		Date:  input.Date,
		Place: place,
	}
	if err := s.eventsRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventEventCreated,
			Timestamp: time.Now(),
			Payload: events.EventCreatedPayload{
				EventID: event.ID,
				Name:    event.Name,
				Date:    event.Date,
				Place:   event.Place,
			},
		})
	}
	return event, nil
}

// UpdateEvent updates an event's details.
func (s *EventService) UpdateEvent(ctx context.Context, id string, input EventInput) (*domain.Event, error) {
	event, err := s.eventsRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		event.Name = name
	}
	if place := strings.TrimSpace(input.Place); place != "" {
		event.Place = place
	}
	if !input.Date.IsZero() {
		event.Date = input.Date
	}
	if err := s.eventsRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// GetEvent fetches an event.
func (s *EventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	return s.eventsRepo.GetByID(ctx, id)
}

// ListEvents returns paginated events.
func (s *EventService) ListEvents(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	return s.eventsRepo.List(ctx, limit, offset)
}

// DeleteEvent removes an event and, through the schema's cascade, its tickets.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	return s.eventsRepo.Delete(ctx, id)
}
