package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/vijaychouhan26/Face-recognition-attendence/app/models"
)

// RunMigrations creates the session registry schema.
func RunMigrations(db *sql.DB) error {
	query := `CREATE TABLE IF NOT EXISTS class_sessions (
		id UUID PRIMARY KEY,
		faculty TEXT NOT NULL,
		subject TEXT NOT NULL,
		slot_id TEXT NOT NULL,
		log_id TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ
	)`
	_, err := db.Exec(query)
	return err
}

// RecordSessionStart inserts a registry row for a freshly started session and
// returns its id.
func RecordSessionStart(db *sql.DB, s *models.ClassSession) (string, error) {
	id := uuid.New().String()
	query := `INSERT INTO class_sessions (id, faculty, subject, slot_id, log_id, started_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := db.Exec(query, id, s.Faculty, s.Subject, s.SlotID, s.LogID, s.StartedAt)
	if err != nil {
		return "", err
	}
	return id, nil
}

// RecordSessionEnd closes the most recent open registry row for logID.
func RecordSessionEnd(db *sql.DB, logID string, endedAt time.Time) error {
	query := `UPDATE class_sessions SET ended_at = $1
			  WHERE log_id = $2 AND ended_at IS NULL`
	_, err := db.Exec(query, endedAt, logID)
	return err
}

// ListRecentSessions returns registry rows newest first.
func ListRecentSessions(db *sql.DB, limit int) ([]*models.ClassSession, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, faculty, subject, slot_id, log_id, started_at, ended_at
			  FROM class_sessions ORDER BY started_at DESC LIMIT $1`

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.ClassSession
	for rows.Next() {
		s := &models.ClassSession{}
		if err := rows.Scan(&s.ID, &s.Faculty, &s.Subject, &s.SlotID, &s.LogID, &s.StartedAt, &s.EndedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
