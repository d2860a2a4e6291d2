package domain

import "time"

// ValidationState tracks whether a ticket has been used for entry.
type ValidationState string

const (
	ValidationStatePending   ValidationState = "PENDING"
	ValidationStateValidated ValidationState = "VALIDATED"
)

// Ticket grants one admission to one event. Holder fields are immutable after
// issuance; ValidationState moves from PENDING to VALIDATED exactly once and
// never back. ValidatedBy and ValidatedAt are set only on that transition.
type Ticket struct {
	ID              string
	EventID         string
	HolderName      string
	HolderPhone     string
	HolderDocument  *string
	ValidationState ValidationState
	ValidatedBy     *string
	ValidatedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validated reports whether the ticket has already been used.
func (t *Ticket) Validated() bool {
	return t.ValidationState == ValidationStateValidated
}
