package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/event-ticket-service/internal/codec"
	"github.com/spec-kit/event-ticket-service/internal/domain"
	"github.com/spec-kit/event-ticket-service/internal/observability"
	"github.com/spec-kit/event-ticket-service/internal/scanstore"
)

var (
	// ErrScanInProgress rejects a new scan while a confirm is outstanding on
	// the same station, so a second decode cannot race its own in-flight
	// confirm.
	ErrScanInProgress = errors.New("confirmation in progress for this station")
	// ErrNoCapturedToken rejects a confirm with nothing captured.
	ErrNoCapturedToken = errors.New("no captured token for this station")
)

// ScanPreview is what the operator sees between capture and confirm: the
// fields decoded from the token plus the ticket's current stored state. The
// operator compares holder name and document against the physical bearer;
// that manual check is the actual anti-fraud control.
type ScanPreview struct {
	Token  codec.TokenPayload
	Found  bool
	Ticket *domain.Ticket
}

// ScanSessionService orchestrates one scan-and-decide cycle per validator
// station: Idle -> TokenCaptured -> (Checked | DecodeFailed) -> Idle. The
// preview is advisory; only TryValidate's outcome decides admission.
type ScanSessionService struct {
	validation *ValidationService
	sessions   scanstore.Store
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewScanSessionService constructs the service.
func NewScanSessionService(validation *ValidationService, sessions scanstore.Store, metrics *observability.Metrics, logger *zap.Logger) *ScanSessionService {
	return &ScanSessionService{
		validation: validation,
		sessions:   sessions,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Capture decodes raw scanned text and, on success, stores the captured
// ticket id for the station and returns a preview of the ticket's current
// state. Decode failure leaves the station idle; the operator rescans.
func (s *ScanSessionService) Capture(ctx context.Context, stationID, rawText string) (*ScanPreview, error) {
	session, err := s.sessions.Get(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if session != nil && session.State == scanstore.StateConfirming {
		return nil, ErrScanInProgress
	}

	payload, err := codec.Decode(rawText)
	if err != nil {
		s.metrics.RecordScanCapture("malformed")
		if clearErr := s.sessions.Clear(ctx, stationID); clearErr != nil {
			s.logger.Warn("clear scan session", zap.String("station_id", stationID), zap.Error(clearErr))
		}
		return nil, err
	}
	s.metrics.RecordScanCapture("captured")

	if err := s.sessions.Put(ctx, stationID, &scanstore.Session{
		State:      scanstore.StateTokenCaptured,
		TicketID:   payload.ID,
		CapturedAt: s.now(),
	}); err != nil {
		return nil, err
	}

	preview := &ScanPreview{Token: payload}
	ticket, err := s.validation.Lookup(ctx, payload.ID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// Still captured: the operator sees the decoded fields and a
		// "not found" preview, and confirm will report NotFound.
	case err != nil:
		return nil, err
	default:
		preview.Found = true
		preview.Ticket = ticket
	}
	return preview, nil
}

// Confirm runs the authoritative validation for the station's captured
// ticket. Completed outcomes resolve the station back to idle. A transient
// store failure keeps the capture so the operator can retry the identical
// confirm, which is safe because TryValidate is idempotent.
func (s *ScanSessionService) Confirm(ctx context.Context, stationID, operatorID string) (*ValidationResult, error) {
	session, err := s.sessions.Get(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoCapturedToken
	}
	if session.State == scanstore.StateConfirming {
		return nil, ErrScanInProgress
	}

	session.State = scanstore.StateConfirming
	if err := s.sessions.Put(ctx, stationID, session); err != nil {
		return nil, err
	}

	result, err := s.validation.TryValidate(ctx, session.TicketID, operatorID, s.now())
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			session.State = scanstore.StateTokenCaptured
			if putErr := s.sessions.Put(ctx, stationID, session); putErr != nil {
				s.logger.Warn("restore scan session", zap.String("station_id", stationID), zap.Error(putErr))
			}
			return nil, err
		}
		if clearErr := s.sessions.Clear(ctx, stationID); clearErr != nil {
			s.logger.Warn("clear scan session", zap.String("station_id", stationID), zap.Error(clearErr))
		}
		return nil, err
	}

	if err := s.sessions.Clear(ctx, stationID); err != nil {
		s.logger.Warn("clear scan session", zap.String("station_id", stationID), zap.Error(err))
	}
	return result, nil
}

// Reset abandons the station's current cycle and returns it to idle. Used by
// the operator acknowledgment after a failed or abandoned scan.
func (s *ScanSessionService) Reset(ctx context.Context, stationID string) error {
	return s.sessions.Clear(ctx, stationID)
}
