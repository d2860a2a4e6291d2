package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/event-ticket-service/internal/codec"
	"github.com/spec-kit/event-ticket-service/internal/domain"
	"github.com/spec-kit/event-ticket-service/internal/scanstore"
)

// memSessionStore is an in-memory scanstore.Store for tests.
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]scanstore.Session
}

var _ scanstore.Store = (*memSessionStore)(nil)

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]scanstore.Session)}
}

func (m *memSessionStore) Get(_ context.Context, stationID string) (*scanstore.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[stationID]
	if !ok {
		return nil, nil
	}
	clone := session
	return &clone, nil
}

func (m *memSessionStore) Put(_ context.Context, stationID string, session *scanstore.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[stationID] = *session
	return nil
}

func (m *memSessionStore) Clear(_ context.Context, stationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, stationID)
	return nil
}

func newScanFixture() (*ScanSessionService, *fakeTicketRepo, *memSessionStore) {
	repo := newFakeTicketRepo()
	sessions := newMemSessionStore()
	svc := NewScanSessionService(newValidationService(repo), sessions, nil, zap.NewNop())
	return svc, repo, sessions
}

func tokenFor(ticket *domain.Ticket) string {
	return Token(ticket)
}

func TestCaptureMalformedTextLeavesStationIdle(t *testing.T) {
	svc, _, sessions := newScanFixture()

	preview, err := svc.Capture(context.Background(), "gate-1", "definitely not a token")
	assert.Nil(t, preview)
	assert.ErrorIs(t, err, codec.ErrMalformed)

	session, err := sessions.Get(context.Background(), "gate-1")
	require.NoError(t, err)
	assert.Nil(t, session, "decode failure returns the station to idle")
}

func TestCaptureShowsPreview(t *testing.T) {
	svc, repo, sessions := newScanFixture()
	ticket := repo.seedPending("e-1")

	preview, err := svc.Capture(context.Background(), "gate-1", tokenFor(ticket))
	require.NoError(t, err)
	assert.True(t, preview.Found)
	assert.Equal(t, ticket.ID, preview.Token.ID)
	assert.Equal(t, "Ana Ruiz", preview.Token.HolderName)
	assert.Equal(t, domain.ValidationStatePending, preview.Ticket.ValidationState)

	session, err := sessions.Get(context.Background(), "gate-1")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, scanstore.StateTokenCaptured, session.State)
	assert.Equal(t, ticket.ID, session.TicketID)
}

func TestCaptureUnknownTicketStillCaptured(t *testing.T) {
	svc, _, sessions := newScanFixture()
	ghost := &domain.Ticket{ID: "forged-id", EventID: "e-9", HolderName: "X", HolderPhone: "1"}

	preview, err := svc.Capture(context.Background(), "gate-1", tokenFor(ghost))
	require.NoError(t, err)
	assert.False(t, preview.Found, "forged ids preview as not found")
	assert.Nil(t, preview.Ticket)

	session, err := sessions.Get(context.Background(), "gate-1")
	require.NoError(t, err)
	require.NotNil(t, session)

	// Confirm is still allowed and reports the authoritative NotFound.
	result, err := svc.Confirm(context.Background(), "gate-1", "op-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, result.Outcome)
}

func TestConfirmValidatesCapturedTicket(t *testing.T) {
	svc, repo, sessions := newScanFixture()
	ticket := repo.seedPending("e-1")

	_, err := svc.Capture(context.Background(), "gate-1", tokenFor(ticket))
	require.NoError(t, err)

	result, err := svc.Confirm(context.Background(), "gate-1", "op-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeValidated, result.Outcome)
	assert.Equal(t, "op-1", *result.Ticket.ValidatedBy)

	session, err := sessions.Get(context.Background(), "gate-1")
	require.NoError(t, err)
	assert.Nil(t, session, "completed cycle resolves the station to idle")
}

func TestConfirmWithoutCapture(t *testing.T) {
	svc, _, _ := newScanFixture()

	result, err := svc.Confirm(context.Background(), "gate-1", "op-1")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNoCapturedToken)
}

func TestCaptureRejectedWhileConfirmInFlight(t *testing.T) {
	svc, repo, sessions := newScanFixture()
	ticket := repo.seedPending("e-1")

	require.NoError(t, sessions.Put(context.Background(), "gate-1", &scanstore.Session{
		State:      scanstore.StateConfirming,
		TicketID:   ticket.ID,
		CapturedAt: time.Now(),
	}))

	_, err := svc.Capture(context.Background(), "gate-1", tokenFor(ticket))
	assert.ErrorIs(t, err, ErrScanInProgress)

	_, err = svc.Confirm(context.Background(), "gate-1", "op-1")
	assert.ErrorIs(t, err, ErrScanInProgress)
}

func TestConfirmStoreUnavailableKeepsCaptureForRetry(t *testing.T) {
	svc, repo, sessions := newScanFixture()
	ticket := repo.seedPending("e-1")

	_, err := svc.Capture(context.Background(), "gate-1", tokenFor(ticket))
	require.NoError(t, err)

	repo.failWith(context.DeadlineExceeded)
	result, err := svc.Confirm(context.Background(), "gate-1", "op-1")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	session, err := sessions.Get(context.Background(), "gate-1")
	require.NoError(t, err)
	require.NotNil(t, session, "capture survives a transient failure")
	assert.Equal(t, scanstore.StateTokenCaptured, session.State)

	// Store recovers; the identical confirm succeeds.
	repo.failWith(nil)
	result, err = svc.Confirm(context.Background(), "gate-1", "op-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeValidated, result.Outcome)
}

func TestTwoStationsRaceOnOneTicket(t *testing.T) {
	svc, repo, _ := newScanFixture()
	ticket := repo.seedPending("e-2")
	token := tokenFor(ticket)

	_, err := svc.Capture(context.Background(), "gate-1", token)
	require.NoError(t, err)
	_, err = svc.Capture(context.Background(), "gate-2", token)
	require.NoError(t, err)

	results := make([]*ValidationResult, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i, station := range []string{"gate-1", "gate-2"} {
		go func(i int, station string) {
			defer wg.Done()
			results[i], errs[i] = svc.Confirm(context.Background(), station, "op-"+station)
		}(i, station)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	outcomes := map[ValidationOutcome]int{}
	outcomes[results[0].Outcome]++
	outcomes[results[1].Outcome]++
	assert.Equal(t, 1, outcomes[OutcomeValidated], "exactly one gate admits the bearer")
	assert.Equal(t, 1, outcomes[OutcomeAlreadyValidated])

	final, err := repo.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ValidationStateValidated, final.ValidationState)
	require.NotNil(t, final.ValidatedBy)
}

func TestResetReturnsStationToIdle(t *testing.T) {
	svc, repo, sessions := newScanFixture()
	ticket := repo.seedPending("e-1")

	_, err := svc.Capture(context.Background(), "gate-1", tokenFor(ticket))
	require.NoError(t, err)
	require.NoError(t, svc.Reset(context.Background(), "gate-1"))

	session, err := sessions.Get(context.Background(), "gate-1")
	require.NoError(t, err)
	assert.Nil(t, session)
}
