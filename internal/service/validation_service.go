package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/spec-kit/event-ticket-service/internal/domain"
	"github.com/spec-kit/event-ticket-service/internal/events"
	"github.com/spec-kit/event-ticket-service/internal/observability"
	"github.com/spec-kit/event-ticket-service/internal/repository"
)

// ErrStoreUnavailable marks a transient ticket-store failure. The caller may
// retry the identical call; TryValidate is idempotent so a retry can never
// produce a second admission.
var ErrStoreUnavailable = errors.New("ticket store unavailable")

// ValidationOutcome is the decision for one validation attempt.
type ValidationOutcome string

const (
	OutcomeValidated        ValidationOutcome = "VALIDATED"
	OutcomeAlreadyValidated ValidationOutcome = "ALREADY_VALIDATED"
	OutcomeNotFound         ValidationOutcome = "NOT_FOUND"
)

// ValidationResult carries the outcome and, for Validated and
// AlreadyValidated, the ticket row backing it. On AlreadyValidated the ticket
// holds the original ValidatedBy/ValidatedAt for operator feedback.
type ValidationResult struct {
	Outcome ValidationOutcome
	Ticket  *domain.Ticket
}

// ValidationService is the single authority over the PENDING -> VALIDATED
// transition. All mutation of validation state goes through TryValidate.
type ValidationService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewValidationService constructs the service.
func NewValidationService(tickets repository.TicketRepository, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *ValidationService {
	return &ValidationService{
		tickets:    tickets,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// TryValidate atomically transitions the ticket to VALIDATED. Under N
// concurrent callers racing on one ticket id, exactly one observes Validated;
// the rest observe AlreadyValidated with the winner's operator and timestamp.
// The mechanism is the repository's conditional update, never a
// read-then-write sequence.
func (s *ValidationService) TryValidate(ctx context.Context, ticketID, operatorID string, now time.Time) (*ValidationResult, error) {
	ticket, err := s.tickets.Validate(ctx, ticketID, operatorID, now)
	if err == nil {
		s.metrics.RecordValidation("validated")
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketValidated,
			TicketID: ticket.ID,
			Actor:    events.Actor{OperatorID: &operatorID},
			Payload: events.TicketValidatedPayload{
				EventID:     ticket.EventID,
				ValidatedBy: operatorID,
				ValidatedAt: now,
			},
		})
		return &ValidationResult{Outcome: OutcomeValidated, Ticket: ticket}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, s.storeError("validate", ticketID, err)
	}

	// The conditional write matched no row: either the ticket does not exist
	// or someone else already won the transition. A plain read tells them
	// apart; it cannot race back to PENDING because the transition is one-way.
	existing, err := s.tickets.GetByID(ctx, ticketID)
	if errors.Is(err, pgx.ErrNoRows) {
		s.metrics.RecordValidation("not_found")
		return &ValidationResult{Outcome: OutcomeNotFound}, nil
	}
	if err != nil {
		return nil, s.storeError("validate", ticketID, err)
	}

	s.metrics.RecordValidation("already_validated")
	s.publishEvent(ctx, events.Event{
		Type:     events.EventValidationConflict,
		TicketID: existing.ID,
		Actor:    events.Actor{OperatorID: &operatorID},
		Payload: events.ValidationConflictPayload{
			EventID:     existing.EventID,
			AttemptedBy: operatorID,
			State:       existing.ValidationState,
			ValidatedBy: existing.ValidatedBy,
			ValidatedAt: existing.ValidatedAt,
		},
	})
	return &ValidationResult{Outcome: OutcomeAlreadyValidated, Ticket: existing}, nil
}

// Lookup returns the ticket's current row for operator preview. Advisory
// only: the preview may go stale between render and confirm, which is why
// only TryValidate's outcome is authoritative.
func (s *ValidationService) Lookup(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, s.storeError("lookup", ticketID, err)
	}
	return ticket, nil
}

// storeError maps transient failures to ErrStoreUnavailable so callers never
// mistake a timeout for NotFound or AlreadyValidated.
func (s *ValidationService) storeError(op, ticketID string, err error) error {
	if isTransient(err) {
		s.logger.Warn("ticket store unreachable",
			zap.String("op", op),
			zap.String("ticket_id", ticketID),
			zap.Error(err))
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return pgconn.SafeToRetry(err)
}

func (s *ValidationService) publishEvent(ctx context.Context, event events.Event) {
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
