package engine

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/vijaychouhan26/Face-recognition-attendence/app/models"
)

// logHeader is the column set of every attendance log. readMarked locates the
// name column by this header, so old logs with the same columns stay readable.
var logHeader = []string{"Faculty", "Subject", "Student Name", "Timestamp", "LateMinutes", "Slot"}

const nameColumn = "Student Name"

// LogName derives the durable log filename for a session. It is deterministic
// in (subject, faculty, slot, date) so restarting the same logical session on
// the same day resumes the existing log instead of creating a second one.
func LogName(subject, faculty, slotID string, day time.Time) string {
	return fmt.Sprintf("attendance_%s_%s_%s_%s.csv",
		sanitizeToken(subject, false),
		sanitizeToken(faculty, false),
		sanitizeToken(slotID, true),
		day.Format("2006-01-02"))
}

// sanitizeToken strips characters unsafe for a filename, keeping alphanumerics
// and, for slot identifiers, '-' and '_'.
func sanitizeToken(s string, keepDashes bool) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		case keepDashes && (r == '-' || r == '_'):
			out = append(out, r)
		}
	}
	return string(out)
}

// createLog writes a new empty log containing only the header row.
func createLog(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create attendance log: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(logHeader); err != nil {
		f.Close()
		return fmt.Errorf("write attendance log header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write attendance log header: %w", err)
	}
	return f.Close()
}

// appendRecord appends one attendance row, syncing before returning so a
// crash right after a mark cannot lose it.
func appendRecord(path string, rec models.AttendanceRecord) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open attendance log: %w", err)
	}
	w := csv.NewWriter(f)
	row := []string{rec.Faculty, rec.Subject, rec.Name, rec.Time, strconv.Itoa(rec.LateMinutes), rec.SlotID}
	if err := w.Write(row); err != nil {
		f.Close()
		return fmt.Errorf("append attendance record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("append attendance record: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync attendance log: %w", err)
	}
	return f.Close()
}

// readMarked restores the set of already-credited names from an existing log.
func readMarked(path string) (map[string]struct{}, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	nameIdx := 2
	if len(rows) > 0 {
		for i, col := range rows[0] {
			if col == nameColumn {
				nameIdx = i
				break
			}
		}
		rows = rows[1:]
	}

	marked := make(map[string]struct{})
	for _, row := range rows {
		if len(row) > nameIdx && row[nameIdx] != "" {
			marked[row[nameIdx]] = struct{}{}
		}
	}
	return marked, nil
}

// readRecords returns all rows of a log in append order for display/export.
func readRecords(path string) ([]models.AttendanceRecord, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		rows = rows[1:] // header
	}

	records := make([]models.AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		late, _ := strconv.Atoi(row[4])
		records = append(records, models.AttendanceRecord{
			Faculty:     row[0],
			Subject:     row[1],
			Name:        row[2],
			Time:        row[3],
			LateMinutes: late,
			SlotID:      row[5],
		})
	}
	return records, nil
}

func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open attendance log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read attendance log: %w", err)
	}
	return rows, nil
}

func logExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
