package schedule

import (
	"testing"
	"time"
)

func at(h, m, s int) time.Time {
	return time.Date(2025, 3, 10, h, m, s, 0, time.Local)
}

func TestCurrentSlotBoundaries(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string // expected slot ID, "" for none
	}{
		{"before first slot", at(8, 59, 59), ""},
		{"first slot opens", at(9, 0, 0), "09:00-09:45"},
		{"last second of first slot", at(9, 44, 59), "09:00-09:45"},
		{"second slot opens exactly at boundary", at(9, 45, 0), "09:45-10:30"},
		{"mid afternoon", at(14, 30, 0), "14:15-15:00"},
		{"last slot closes", at(16, 30, 0), ""},
		{"late evening", at(22, 0, 0), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := CurrentSlot(tt.now)
			got := ""
			if slot != nil {
				got = slot.ID
			}
			if got != tt.want {
				t.Errorf("CurrentSlot(%v) = %q, want %q", tt.now, got, tt.want)
			}
		})
	}
}

func TestSlotByID(t *testing.T) {
	if slot := SlotByID("11:15-12:00"); slot == nil || slot.Start.Hour != 11 || slot.Start.Minute != 15 {
		t.Errorf("SlotByID returned %+v", slot)
	}
	if slot := SlotByID("nope"); slot != nil {
		t.Errorf("expected nil for unknown slot, got %+v", slot)
	}
}

func TestParseManualStart(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)

	got, err := ParseManualStart("09:05", day)
	if err != nil {
		t.Fatalf("ParseManualStart: %v", err)
	}
	want := time.Date(2025, 3, 10, 9, 5, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("ParseManualStart = %v, want %v", got, want)
	}

	for _, bad := range []string{"", "9", "aa:bb", "24:00", "12:60", "12:-1"} {
		if _, err := ParseManualStart(bad, day); err == nil {
			t.Errorf("ParseManualStart(%q) succeeded, want error", bad)
		}
	}
}
