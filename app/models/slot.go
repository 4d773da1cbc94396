package models

import (
	"fmt"
	"time"
)

// ClockTime is a time of day with minute resolution, independent of any date.
type ClockTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Minutes returns the time of day as minutes since midnight.
func (t ClockTime) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On combines the time of day with the date portion of day, in day's location.
func (t ClockTime) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, day.Location())
}

// Slot represents a scheduled lecture period. Slots are defined once at startup,
// ordered by start time and non-overlapping.
type Slot struct {
	ID    string    `json:"id"`
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

// Contains reports whether the time of day of now falls in [Start, End).
func (s Slot) Contains(now time.Time) bool {
	m := now.Hour()*60 + now.Minute()
	return m >= s.Start.Minutes() && m < s.End.Minutes()
}
