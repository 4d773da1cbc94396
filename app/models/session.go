package models

import "time"

// ClassSession is a registry row recording one start/stop cycle of the
// attendance engine. EndedAt stays nil while the session is running.
type ClassSession struct {
	ID        string     `json:"id" db:"id"`
	Faculty   string     `json:"faculty" db:"faculty"`
	Subject   string     `json:"subject" db:"subject"`
	SlotID    string     `json:"slot_id" db:"slot_id"`
	LogID     string     `json:"log_id" db:"log_id"`
	StartedAt time.Time  `json:"started_at" db:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" db:"ended_at"`
}
