package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vijaychouhan26/Face-recognition-attendence/app/models"
)

// LectureSlots is the fixed daily lecture timetable: ten 45-minute periods
// from 09:00 to 16:30.
var LectureSlots = []models.Slot{
	{ID: "09:00-09:45", Start: models.ClockTime{Hour: 9, Minute: 0}, End: models.ClockTime{Hour: 9, Minute: 45}},
	{ID: "09:45-10:30", Start: models.ClockTime{Hour: 9, Minute: 45}, End: models.ClockTime{Hour: 10, Minute: 30}},
	{ID: "10:30-11:15", Start: models.ClockTime{Hour: 10, Minute: 30}, End: models.ClockTime{Hour: 11, Minute: 15}},
	{ID: "11:15-12:00", Start: models.ClockTime{Hour: 11, Minute: 15}, End: models.ClockTime{Hour: 12, Minute: 0}},
	{ID: "12:00-12:45", Start: models.ClockTime{Hour: 12, Minute: 0}, End: models.ClockTime{Hour: 12, Minute: 45}},
	{ID: "12:45-13:30", Start: models.ClockTime{Hour: 12, Minute: 45}, End: models.ClockTime{Hour: 13, Minute: 30}},
	{ID: "13:30-14:15", Start: models.ClockTime{Hour: 13, Minute: 30}, End: models.ClockTime{Hour: 14, Minute: 15}},
	{ID: "14:15-15:00", Start: models.ClockTime{Hour: 14, Minute: 15}, End: models.ClockTime{Hour: 15, Minute: 0}},
	{ID: "15:00-15:45", Start: models.ClockTime{Hour: 15, Minute: 0}, End: models.ClockTime{Hour: 15, Minute: 45}},
	{ID: "15:45-16:30", Start: models.ClockTime{Hour: 15, Minute: 45}, End: models.ClockTime{Hour: 16, Minute: 30}},
}

// CurrentSlot returns the slot whose [start, end) window contains now's time
// of day, or nil when now falls between or outside slots.
func CurrentSlot(now time.Time) *models.Slot {
	for i := range LectureSlots {
		if LectureSlots[i].Contains(now) {
			return &LectureSlots[i]
		}
	}
	return nil
}

// SlotByID returns the slot with the given identifier, or nil.
func SlotByID(id string) *models.Slot {
	for i := range LectureSlots {
		if LectureSlots[i].ID == id {
			return &LectureSlots[i]
		}
	}
	return nil
}

// ParseManualStart parses an HH:MM override and combines it with day's date.
func ParseManualStart(value string, day time.Time) (time.Time, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid manual start time %q", value)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid manual start time %q", value)
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid manual start time %q", value)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return time.Time{}, fmt.Errorf("manual start time %q out of range", value)
	}
	return models.ClockTime{Hour: h, Minute: m}.On(day), nil
}
