package session

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/vijaychouhan26/Face-recognition-attendence/app/capture"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/config"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/database"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/engine"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/models"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/schedule"
)

func (h *Handler) StartSession(c *fiber.Ctx) error {
	type startRequest struct {
		Faculty         string      `json:"faculty"`
		Subject         string      `json:"subject"`
		CameraSource    interface{} `json:"camera_source"`
		SlotID          string      `json:"slot_id"`
		ManualStartTime string      `json:"manual_start_time"`
	}

	var req startRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}
	if req.Faculty == "" || req.Subject == "" {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Faculty and subject are required"})
	}

	source := "0"
	if req.CameraSource != nil {
		source = strings.TrimSuffix(fmt.Sprint(req.CameraSource), ".0")
	}

	res, err := h.Engine.Start(engine.StartOptions{
		Faculty:      req.Faculty,
		Subject:      req.Subject,
		CameraSource: source,
		SlotID:       req.SlotID,
		ManualStart:  req.ManualStartTime,
	})
	switch {
	case errors.Is(err, engine.ErrSessionActive):
		return c.Status(409).JSON(fiber.Map{"status": "error", "message": "A session is already active. Stop it first."})
	case errors.Is(err, capture.ErrCameraUnavailable):
		return c.Status(500).JSON(fiber.Map{
			"status":  "error",
			"message": fmt.Sprintf("Failed to start camera at source %s. Please check if camera is in use or accessible.", source),
		})
	case err != nil:
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}

	if db := config.GetDB(); db != nil {
		_, dbErr := database.RecordSessionStart(db, &models.ClassSession{
			Faculty:   req.Faculty,
			Subject:   req.Subject,
			SlotID:    res.SlotID,
			LogID:     res.LogID,
			StartedAt: time.Now(),
		})
		if dbErr != nil {
			log.Printf("Session registry insert failed: %v", dbErr)
		}
	}

	return c.JSON(fiber.Map{
		"status":         "success",
		"message":        "Session started successfully.",
		"slot_id":        res.SlotID,
		"expected_start": res.ExpectedStart.Format("15:04"),
		"csv":            res.LogID,
		"resumed":        res.Resumed,
	})
}

func (h *Handler) StopSession(c *fiber.Ctx) error {
	final, logID := h.Engine.Stop()

	if db := config.GetDB(); db != nil && logID != "" {
		if err := database.RecordSessionEnd(db, logID, time.Now()); err != nil {
			log.Printf("Session registry update failed: %v", err)
		}
	}

	if final == nil {
		final = []string{}
	}
	return c.JSON(fiber.Map{
		"status":           "success",
		"message":          "Session stopped.",
		"final_attendance": final,
		"filename":         logID,
	})
}

func (h *Handler) Status(c *fiber.Ctx) error {
	return c.JSON(h.Engine.Status())
}

// Attendance returns the live in-memory marked set for the running session.
func (h *Handler) Attendance(c *fiber.Ctx) error {
	return c.JSON(h.Engine.Marked())
}

// AttendanceDetailed returns every durable log row of the current session.
func (h *Handler) AttendanceDetailed(c *fiber.Ctx) error {
	records, err := h.Engine.Detailed()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to read attendance log"})
	}
	return c.JSON(records)
}

func (h *Handler) Slots(c *fiber.Ctx) error {
	now := time.Now()
	current := schedule.CurrentSlot(now)

	type slotView struct {
		ID        string `json:"id"`
		Start     string `json:"start"`
		End       string `json:"end"`
		IsCurrent bool   `json:"isCurrent"`
	}
	slots := make([]slotView, 0, len(schedule.LectureSlots))
	for _, s := range schedule.LectureSlots {
		slots = append(slots, slotView{
			ID:        s.ID,
			Start:     s.Start.String(),
			End:       s.End.String(),
			IsCurrent: current != nil && s.ID == current.ID,
		})
	}

	autoSelected := ""
	if current != nil {
		autoSelected = current.ID
	}
	return c.JSON(fiber.Map{
		"slots":        slots,
		"autoSelected": autoSelected,
		"serverNow":    now.Format("15:04"),
	})
}

func (h *Handler) Cameras(c *fiber.Ctx) error {
	cameras := capture.Probe(5)
	if len(cameras) == 0 {
		cameras = []int{0}
	}
	return c.JSON(fiber.Map{"cameras": cameras})
}

func (h *Handler) Sessions(c *fiber.Ctx) error {
	db := config.GetDB()
	if db == nil {
		return c.Status(503).JSON(fiber.Map{"error": "Session registry is not configured"})
	}
	sessions, err := database.ListRecentSessions(db, c.QueryInt("limit", 50))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch session history"})
	}
	if sessions == nil {
		sessions = []*models.ClassSession{}
	}
	return c.JSON(fiber.Map{"sessions": sessions, "count": len(sessions)})
}

// Download serves an attendance CSV export. Only files the engine itself
// names can be fetched; anything else 404s.
func (h *Handler) Download(c *fiber.Ctx) error {
	name := filepath.Base(c.Params("filename"))
	if !strings.HasPrefix(name, "attendance_") || !strings.HasSuffix(name, ".csv") {
		return c.Status(404).JSON(fiber.Map{"status": "error", "message": "File not found."})
	}

	path := filepath.Join(config.AppConfig.AttendanceDir, name)
	if _, err := os.Stat(path); err != nil {
		return c.Status(404).JSON(fiber.Map{"status": "error", "message": "File not found."})
	}
	return c.Download(path, name)
}

// VideoFeed streams annotated camera frames as an MJPEG multipart response
// for as long as the client stays connected.
func (h *Handler) VideoFeed(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderContentType, "multipart/x-mixed-replace; boundary=frame")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		for {
			frame := h.Processor.NextFrame()
			if frame == nil {
				time.Sleep(100 * time.Millisecond)
				continue
			}
			if _, err := w.WriteString("--frame\r\nContent-Type: image/jpeg\r\n\r\n"); err != nil {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			if _, err := w.WriteString("\r\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
			if h.Engine.Active() {
				time.Sleep(33 * time.Millisecond)
			} else {
				time.Sleep(100 * time.Millisecond)
			}
		}
	}))
	return nil
}
