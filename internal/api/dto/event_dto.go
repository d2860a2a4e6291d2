package dto

import "time"

// CreateEventRequest payload.
type CreateEventRequest struct {
	Name  string    `json:"name"`
	Date  time.Time `json:"date"`
	Place string    `json:"place"`
}

// UpdateEventRequest payload; zero-valued fields are left unchanged.
type UpdateEventRequest struct {
	Name  string    `json:"name"`
	Date  time.Time `json:"date"`
	Place string    `json:"place"`
}

// EventResponse response.
type EventResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Place     string    `json:"place"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
