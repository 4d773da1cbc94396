package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/template/html/v2"

	"github.com/vijaychouhan26/Face-recognition-attendence/app/capture"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/config"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/database"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/engine"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/gallery"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/routes/qr"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/routes/session"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/services"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/vision"
)

// customErrorHandler keeps every error response as JSON.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
		"code":    code,
	})
}

func main() {
	log.Println("Starting face attendance service...")

	config.Init()
	cfg := config.AppConfig
	if cfg.DB != nil {
		defer cfg.DB.Close()
		if err := database.RunMigrations(cfg.DB); err != nil {
			log.Fatal("Failed to run migrations:", err)
		}
	}

	// Gallery load is non-fatal: with no encodings every face is Unknown and
	// only the QR fallback can mark anyone.
	faces := gallery.Load(cfg.EncodingsFile, cfg.MatchTolerance)

	var recognizer vision.Recognizer
	if rec, err := vision.NewOpenCVRecognizer(cfg.CascadeFile, cfg.EmbedderModel); err != nil {
		log.Printf("WARNING: %v; camera recognition disabled", err)
	} else {
		defer rec.Close()
		recognizer = rec
	}

	eng := engine.New(cfg.AttendanceDir, faces, capture.Open)
	processor := engine.NewProcessor(eng, faces, recognizer)

	if cfg.MQTTBroker != "" {
		notifier, err := services.NewNotifier(cfg.MQTTBroker)
		if err != nil {
			log.Printf("WARNING: %v; mark notifications disabled", err)
		} else {
			defer notifier.Close()
			eng.OnMark(notifier.PublishMark)
		}
	}

	if cfg.AutoStop {
		services.StartAutoStop(eng, cfg.DB)
	}

	views := html.New("./app/templates", ".html")
	app := fiber.New(fiber.Config{
		Views:        views,
		ErrorHandler: customErrorHandler,
	})

	app.Use(logger.New())
	app.Use(cors.New())

	session.SetupSessionRoutes(app, &session.Handler{Engine: eng, Processor: processor})
	qr.SetupQRRoutes(app, &qr.Handler{Engine: eng, Secret: cfg.QRSecret})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "face-attendance",
			"status":  "ok",
			"session": eng.Status(),
		})
	})

	log.Printf("Listening on :%s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
