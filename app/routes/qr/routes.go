// Package qr implements the roll-number fallback check-in: faculty fetch a
// short-lived signed token rendered as a QR code, students scan it, enter
// their roll number and get marked with the same at-most-once semantics as
// camera recognition.
package qr

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vijaychouhan26/Face-recognition-attendence/app/engine"
)

// Tokens stay loadable for five minutes so a slow scan still shows the form,
// but submissions are only accepted inside the short window.
const (
	pageLoadWindow = 300 // seconds
	submitWindow   = 90
)

// Handler signs and validates QR check-in tokens against the running session.
type Handler struct {
	Engine *engine.Engine
	Secret string
}

// SetupQRRoutes registers token issuance (faculty side) and the student-facing
// check-in pages.
func SetupQRRoutes(app *fiber.App, h *Handler) {
	app.Get("/api/qr_token", h.IssueToken)
	app.Get("/qr_mark/:token", h.ShowForm)
	app.Post("/submit_qr_attendance", h.Submit)
}
