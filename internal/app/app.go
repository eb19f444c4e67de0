// Package app assembles the Fiber application from its services.
package app

import (
	"errors"
	"strings"
	"time"

	"resumebuilder/internal/handlers"
	"resumebuilder/internal/middleware"
	"resumebuilder/internal/services"
	"resumebuilder/internal/storage"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog/log"
)

// Options configures the HTTP surface.
type Options struct {
	CORSOrigins   []string
	ExposeOTP     bool
	MaxPhotoBytes int64
	// UploadDir is served under /uploads when photos are kept on local disk.
	UploadDir string
	// Database names the store reported by the health check.
	Database string
	// AccessLog enables the request logger.
	AccessLog bool
}

// New builds the Fiber app. Every route is served both at the root and under /api.
func New(opts Options, authService *services.AuthService, resumeService *services.ResumeService) *fiber.App {
	maxPhoto := opts.MaxPhotoBytes
	if maxPhoto <= 0 {
		maxPhoto = storage.DefaultMaxPhotoBytes
	}

	app := fiber.New(fiber.Config{
		AppName:      "resume-builder",
		BodyLimit:    int(maxPhoto) + 1024*1024, // room for the other multipart fields
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: errorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
		}))
	}
	if len(opts.CORSOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(opts.CORSOrigins, ","),
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
			AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		}))
	}

	if opts.UploadDir != "" {
		app.Static("/uploads", opts.UploadDir)
	}

	authRequired := middleware.AuthRequired(authService)
	authHandler := handlers.NewAuthHandler(authService, opts.ExposeOTP, maxPhoto)
	resumeHandler := handlers.NewResumeHandler(resumeService)
	health := healthHandler(opts.Database)

	// The browser client talks to /api; bare paths are kept for other callers.
	for _, router := range []fiber.Router{app, app.Group("/api")} {
		router.Get("/health", health)
		authHandler.RegisterRoutes(router, authRequired)
		resumeHandler.RegisterRoutes(router, authRequired)
	}

	return app
}

func healthHandler(database string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "OK",
			"database":  database,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// errorHandler renders errors that escaped the handlers, such as unknown routes or an
// oversized body.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
}
