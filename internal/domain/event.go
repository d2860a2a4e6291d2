package domain

import "time"

// Event is the admission context tickets are issued against.
type Event struct {
	ID        string
	Name      string
	Date      time.Time
	Place     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
