package models

// AttendanceRecord is one durable row in a session's attendance log.
// Rows are append-only; the engine never mutates or deletes them.
type AttendanceRecord struct {
	Faculty     string `json:"faculty"`
	Subject     string `json:"subject"`
	Name        string `json:"name"`
	Time        string `json:"time"` // HH:MM:SS, local time of the mark
	LateMinutes int    `json:"late"`
	SlotID      string `json:"slot"`
}

// SessionStatus is the live view of the attendance engine returned to clients.
type SessionStatus struct {
	Active        bool   `json:"active"`
	Faculty       string `json:"faculty,omitempty"`
	Subject       string `json:"subject,omitempty"`
	SlotID        string `json:"slot_id,omitempty"`
	ExpectedStart string `json:"expected_start,omitempty"` // HH:MM
	LogID         string `json:"log_id,omitempty"`
	MarkedCount   int    `json:"marked_count"`
}
