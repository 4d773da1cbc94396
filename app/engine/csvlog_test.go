package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vijaychouhan26/Face-recognition-attendence/app/models"
)

func TestLogNameDeterministic(t *testing.T) {
	day := time.Date(2025, 3, 10, 14, 30, 0, 0, time.Local)

	got := LogName("Data Structures!", "Dr. Rao", "09:00-09:45", day)
	want := "attendance_DataStructures_DrRao_0900-0945_2025-03-10.csv"
	if got != want {
		t.Errorf("LogName = %q, want %q", got, want)
	}

	// Same parameters, same name: the identifier is what makes resume work.
	if again := LogName("Data Structures!", "Dr. Rao", "09:00-09:45", day); again != got {
		t.Errorf("LogName not deterministic: %q vs %q", got, again)
	}

	// Path separators and dots never survive sanitization.
	hostile := LogName("../etc", "a/b", "../../x", day)
	if filepath.Base(hostile) != hostile {
		t.Errorf("LogName produced a path, not a name: %q", hostile)
	}
}

func TestAppendAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	if err := createLog(path); err != nil {
		t.Fatal(err)
	}

	recs := []models.AttendanceRecord{
		{Faculty: "Rao", Subject: "DS", Name: "Asha_101", Time: "09:01:00", LateMinutes: 1, SlotID: "09:00-09:45"},
		{Faculty: "Rao", Subject: "DS", Name: "Vijay_102", Time: "09:09:30", LateMinutes: 9, SlotID: "09:00-09:45"},
	}
	for _, r := range recs {
		if err := appendRecord(path, r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := readRecords(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d records, want 2", len(got))
	}
	if got[0] != recs[0] || got[1] != recs[1] {
		t.Errorf("round trip mismatch: %+v", got)
	}

	marked, err := readMarked(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(marked) != 2 {
		t.Fatalf("readMarked = %v", marked)
	}
	if _, ok := marked["Asha_101"]; !ok {
		t.Error("Asha_101 missing from restored set")
	}
}

func TestReadMarkedFindsNameColumnByHeader(t *testing.T) {
	// A log written with extra leading columns: the restore path must locate
	// "Student Name" by header instead of assuming a fixed index.
	path := filepath.Join(t.TempDir(), "log.csv")
	content := "Extra,Faculty,Subject,Student Name,Timestamp,LateMinutes,Slot\n" +
		"x,Rao,DS,Asha_101,09:01:00,1,09:00-09:45\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	marked, err := readMarked(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := marked["Asha_101"]; !ok || len(marked) != 1 {
		t.Fatalf("readMarked = %v", marked)
	}
}
