package services

import (
	"database/sql"
	"log"
	"time"

	"github.com/vijaychouhan26/Face-recognition-attendence/app/database"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/engine"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/schedule"
)

// autoStopGrace is how long after a slot's scheduled end a session keeps
// running before being stopped automatically.
const autoStopGrace = 5 * time.Minute

// StartAutoStop launches the background watchdog that ends slot-bound
// sessions left running past their lecture slot. Sessions started outside
// the timetable are never auto-stopped.
func StartAutoStop(e *engine.Engine, db *sql.DB) {
	go func() {
		log.Println("Auto-stop watchdog started...")
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			if !e.Active() {
				continue
			}
			slotID := e.SlotID()
			if slotID == "" || slotID == engine.NoSlot {
				continue
			}
			slot := schedule.SlotByID(slotID)
			if slot == nil {
				continue
			}

			now := time.Now()
			if now.Before(slot.End.On(now).Add(autoStopGrace)) {
				continue
			}

			final, logID := e.Stop()
			log.Printf("Auto-stopped session for slot %s (%d attendees, log %s)", slotID, len(final), logID)
			if db != nil && logID != "" {
				if err := database.RecordSessionEnd(db, logID, now); err != nil {
					log.Printf("Session registry update failed: %v", err)
				}
			}
		}
	}()
}
