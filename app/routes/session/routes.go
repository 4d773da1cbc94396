package session

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vijaychouhan26/Face-recognition-attendence/app/engine"
)

// Handler carries the shared attendance engine into the request layer.
type Handler struct {
	Engine    *engine.Engine
	Processor *engine.Processor
}

// SetupSessionRoutes registers the attendance session API and the live video
// feed.
func SetupSessionRoutes(app *fiber.App, h *Handler) {
	app.Get("/video_feed", h.VideoFeed)

	api := app.Group("/api")
	api.Post("/start_session", h.StartSession)
	api.Post("/stop_session", h.StopSession)
	api.Get("/status", h.Status)
	api.Get("/attendance", h.Attendance)
	api.Get("/attendance_detailed", h.AttendanceDetailed)
	api.Get("/slots", h.Slots)
	api.Get("/cameras", h.Cameras)
	api.Get("/sessions", h.Sessions)
	api.Get("/download/:filename", h.Download)
}
