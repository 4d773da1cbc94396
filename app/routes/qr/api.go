package qr

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vijaychouhan26/Face-recognition-attendence/app/engine"
)

type tokenClaims struct {
	LogID   string `json:"log_id"`
	Subject string `json:"subject"`
	Faculty string `json:"faculty"`
	SlotID  string `json:"slot_id"`
	jwt.RegisteredClaims
}

// IssueToken mints a signed check-in token bound to the running session.
func (h *Handler) IssueToken(c *fiber.Ctx) error {
	st := h.Engine.Status()
	if !st.Active {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "No active session."})
	}

	now := time.Now()
	claims := tokenClaims{
		LogID:   st.LogID,
		Subject: st.Subject,
		Faculty: st.Faculty,
		SlotID:  st.SlotID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(pageLoadWindow * time.Second)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.Secret))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to issue token."})
	}
	return c.JSON(fiber.Map{
		"token":      signed,
		"expires_in": submitWindow,
	})
}

func (h *Handler) parseToken(raw string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(h.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ShowForm validates the scanned token and renders the roll-number form.
func (h *Handler) ShowForm(c *fiber.Ctx) error {
	claims, err := h.parseToken(c.Params("token"))
	if err != nil {
		return c.Status(400).Render("qr_error", fiber.Map{
			"Message": "This QR code is invalid or has expired. Please ask your faculty for a new one.",
		})
	}

	return c.Render("qr_form", fiber.Map{
		"Subject": claims.Subject,
		"Faculty": claims.Faculty,
		"Slot":    claims.SlotID,
		"Token":   c.Params("token"),
	})
}

// Submit re-validates the token inside the short submission window, checks
// the session it was issued for is still the running one, and marks the
// student by roll number.
func (h *Handler) Submit(c *fiber.Ctx) error {
	raw := c.FormValue("token")
	roll := c.FormValue("roll_number")
	if raw == "" || roll == "" {
		return c.Status(400).Render("qr_error", fiber.Map{"Message": "Submission failed. Missing data."})
	}

	claims, err := h.parseToken(raw)
	if err != nil || claims.IssuedAt == nil || time.Since(claims.IssuedAt.Time) > submitWindow*time.Second {
		return c.Status(400).Render("qr_error", fiber.Map{
			"Message": "Submission failed. The QR code has expired or is invalid. Please ask your faculty for a new one.",
		})
	}

	if !h.Engine.Active() || h.Engine.LogID() != claims.LogID {
		return c.Status(400).Render("qr_error", fiber.Map{
			"Message": "Submission failed. The attendance session is no longer active. Please ask your faculty to start a new session.",
		})
	}

	name, res, err := h.Engine.MarkRoll(roll)
	if err != nil {
		return c.Status(500).Render("qr_error", fiber.Map{"Message": "Submission failed. Please try again."})
	}

	switch res {
	case engine.MarkInactive:
		return c.Status(400).Render("qr_error", fiber.Map{
			"Message": "Submission failed. The attendance session is no longer active.",
		})
	case engine.MarkUnknown:
		return c.Status(400).Render("qr_error", fiber.Map{
			"Message": fmt.Sprintf("Roll number '%s' not found in the system. Please check your ID.", roll),
		})
	case engine.MarkDuplicate:
		return c.Render("qr_result", fiber.Map{
			"Title":   "Already Marked",
			"Message": fmt.Sprintf("Hi %s, your attendance is already marked for this session.", name),
		})
	default:
		return c.Render("qr_result", fiber.Map{
			"Title":   "Success!",
			"Message": fmt.Sprintf("Hi %s, your attendance has been marked successfully.", name),
		})
	}
}
