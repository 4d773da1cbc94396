package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vijaychouhan26/Face-recognition-attendence/app/models"
)

// TestSessionRegistryIntegration runs against a throwaway Postgres container.
// It requires Docker and is skipped in short mode.
func TestSessionRegistryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	if _, err := testcontainers.NewDockerClientWithOpts(ctx); err != nil {
		t.Skipf("Docker not available: %v", err)
	}

	pgContainer, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("attendance_test"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	}()

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	started := time.Now().UTC().Truncate(time.Second)
	session := &models.ClassSession{
		Faculty:   "Rao",
		Subject:   "DS",
		SlotID:    "09:00-09:45",
		LogID:     "attendance_DS_Rao_0900-0945_2025-03-10.csv",
		StartedAt: started,
	}

	id, err := RecordSessionStart(db, session)
	if err != nil {
		t.Fatalf("RecordSessionStart: %v", err)
	}
	if id == "" {
		t.Fatal("empty session id")
	}

	rows, err := ListRecentSessions(db, 10)
	if err != nil {
		t.Fatalf("ListRecentSessions: %v", err)
	}
	if len(rows) != 1 || rows[0].EndedAt != nil {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if rows[0].LogID != session.LogID || rows[0].Faculty != "Rao" {
		t.Fatalf("row mismatch: %+v", rows[0])
	}

	if err := RecordSessionEnd(db, session.LogID, started.Add(45*time.Minute)); err != nil {
		t.Fatalf("RecordSessionEnd: %v", err)
	}

	rows, err = ListRecentSessions(db, 10)
	if err != nil {
		t.Fatalf("ListRecentSessions: %v", err)
	}
	if rows[0].EndedAt == nil {
		t.Fatal("session not closed")
	}
}
