package dto

// ScanRequest carries raw scanner output for one station.
type ScanRequest struct {
	StationID string `json:"station_id"`
	Raw       string `json:"raw"`
}

// ScanPreviewResponse shows the operator what was decoded plus the ticket's
// current stored state. Advisory only; confirm decides admission.
type ScanPreviewResponse struct {
	TokenID        string          `json:"token_id"`
	EventID        string          `json:"event_id"`
	HolderName     string          `json:"holder_name"`
	HolderPhone    string          `json:"holder_phone"`
	HolderDocument string          `json:"holder_document,omitempty"`
	Found          bool            `json:"found"`
	Ticket         *TicketResponse `json:"ticket,omitempty"`
}

// ConfirmRequest triggers validation of the station's captured ticket.
type ConfirmRequest struct {
	StationID string `json:"station_id"`
}

// ResetRequest abandons the station's current scan cycle.
type ResetRequest struct {
	StationID string `json:"station_id"`
}

// ValidationResponse reports the authoritative outcome of a confirm.
type ValidationResponse struct {
	Outcome string          `json:"outcome"`
	Ticket  *TicketResponse `json:"ticket,omitempty"`
}
