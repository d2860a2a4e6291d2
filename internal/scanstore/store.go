// Package scanstore persists per-station scan session state. The session only
// orchestrates the capture/confirm cycle; ticket validity is always decided
// against the ticket store, never against anything cached here.
package scanstore

import (
	"context"
	"time"
)

// State names the station's position in the scan cycle. An absent session
// means the station is idle.
type State string

const (
	StateTokenCaptured State = "TOKEN_CAPTURED"
	StateConfirming    State = "CONFIRMING"
)

// Session is one station's in-progress scan.
type Session struct {
	State      State     `json:"state"`
	TicketID   string    `json:"ticket_id"`
	CapturedAt time.Time `json:"captured_at"`
}

// Store keeps scan sessions keyed by station id.
type Store interface {
	// Get returns the station's session, or nil when the station is idle.
	Get(ctx context.Context, stationID string) (*Session, error)
	Put(ctx context.Context, stationID string, session *Session) error
	Clear(ctx context.Context, stationID string) error
}
