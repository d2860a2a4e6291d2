package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/event-ticket-service/internal/domain"
	"github.com/spec-kit/event-ticket-service/internal/events"
	"github.com/spec-kit/event-ticket-service/internal/repository"
)

// fakeTicketRepo is an in-memory TicketRepository whose Validate applies the
// same compare-and-set contract as the Postgres implementation.
type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
	err     error
}

var _ repository.TicketRepository = (*fakeTicketRepo)(nil)

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *fakeTicketRepo) failWith(err error) { r.mu.Lock(); r.err = err; r.mu.Unlock() }

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *fakeTicketRepo) ListByEvent(_ context.Context, eventID string, _, _ int) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.EventID == eventID {
			result = append(result, *ticket)
		}
	}
	return result, nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) Validate(_ context.Context, id, operatorID string, at time.Time) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	ticket, ok := r.tickets[id]
	if !ok || ticket.ValidationState != domain.ValidationStatePending {
		return nil, pgx.ErrNoRows
	}
	op := operatorID
	when := at
	ticket.ValidationState = domain.ValidationStateValidated
	ticket.ValidatedBy = &op
	ticket.ValidatedAt = &when
	ticket.UpdatedAt = time.Now()
	clone := *ticket
	return &clone, nil
}

func (r *fakeTicketRepo) seedPending(eventID string) *domain.Ticket {
	ticket := &domain.Ticket{
		EventID:         eventID,
		HolderName:      "Ana Ruiz",
		HolderPhone:     "55512345",
		ValidationState: domain.ValidationStatePending,
	}
	_ = r.Create(context.Background(), ticket)
	return ticket
}

func newValidationService(repo repository.TicketRepository) *ValidationService {
	return NewValidationService(repo, events.NewInMemoryDispatcher(), nil, zap.NewNop())
}

func TestTryValidatePendingTicket(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newValidationService(repo)
	ticket := repo.seedPending("e-1")
	t0 := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

	result, err := svc.TryValidate(context.Background(), ticket.ID, "op-1", t0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeValidated, result.Outcome)
	require.NotNil(t, result.Ticket)
	assert.Equal(t, domain.ValidationStateValidated, result.Ticket.ValidationState)
	require.NotNil(t, result.Ticket.ValidatedBy)
	assert.Equal(t, "op-1", *result.Ticket.ValidatedBy)
	require.NotNil(t, result.Ticket.ValidatedAt)
	assert.Equal(t, t0, *result.Ticket.ValidatedAt)
}

func TestTryValidateIdempotent(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newValidationService(repo)
	ticket := repo.seedPending("e-1")
	t0 := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

	first, err := svc.TryValidate(context.Background(), ticket.ID, "op-1", t0)
	require.NoError(t, err)
	require.Equal(t, OutcomeValidated, first.Outcome)

	for i := 0; i < 5; i++ {
		again, err := svc.TryValidate(context.Background(), ticket.ID, "op-2", t0.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, OutcomeAlreadyValidated, again.Outcome)
		require.NotNil(t, again.Ticket.ValidatedBy)
		assert.Equal(t, "op-1", *again.Ticket.ValidatedBy, "original validator must be preserved")
		require.NotNil(t, again.Ticket.ValidatedAt)
		assert.Equal(t, t0, *again.Ticket.ValidatedAt, "original timestamp must be preserved")
	}
}

func TestTryValidateUnknownTicket(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newValidationService(repo)

	result, err := svc.TryValidate(context.Background(), "does-not-exist", "op-1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, result.Outcome)
	assert.Nil(t, result.Ticket)
	assert.Empty(t, repo.tickets, "nothing may be mutated")
}

func TestTryValidateConcurrentSingleWinner(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newValidationService(repo)
	ticket := repo.seedPending("e-2")

	const stations = 16
	results := make([]*ValidationResult, stations)
	errs := make([]error, stations)

	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(stations)
	for i := 0; i < stations; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()
			operator := "op-" + uuid.NewString()[:8]
			results[i], errs[i] = svc.TryValidate(context.Background(), ticket.ID, operator, time.Now())
		}(i)
	}
	start.Done()
	done.Wait()

	var wins, conflicts int
	var winner string
	for i := 0; i < stations; i++ {
		require.NoError(t, errs[i])
		switch results[i].Outcome {
		case OutcomeValidated:
			wins++
			winner = *results[i].Ticket.ValidatedBy
		case OutcomeAlreadyValidated:
			conflicts++
		default:
			t.Fatalf("unexpected outcome %s", results[i].Outcome)
		}
	}
	assert.Equal(t, 1, wins, "exactly one caller wins the transition")
	assert.Equal(t, stations-1, conflicts)

	final, err := repo.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ValidationStateValidated, final.ValidationState)
	assert.Equal(t, winner, *final.ValidatedBy, "store holds exactly the winner")
}

func TestTryValidateStoreUnavailable(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newValidationService(repo)
	ticket := repo.seedPending("e-3")
	repo.failWith(context.DeadlineExceeded)

	result, err := svc.TryValidate(context.Background(), ticket.ID, "op-1", time.Now())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrStoreUnavailable, "a timeout must never read as NotFound or AlreadyValidated")
}

func TestLookup(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newValidationService(repo)
	ticket := repo.seedPending("e-4")

	got, err := svc.Lookup(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ValidationStatePending, got.ValidationState)

	_, err = svc.Lookup(context.Background(), "missing")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestLookupStoreUnavailable(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newValidationService(repo)
	repo.failWith(context.DeadlineExceeded)

	_, err := svc.Lookup(context.Background(), "any")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
