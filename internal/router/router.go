package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/uwuweb/uwuweb-api/internal/config"
	"github.com/uwuweb/uwuweb-api/internal/handler"
	"github.com/uwuweb/uwuweb-api/internal/middleware"
	"github.com/uwuweb/uwuweb-api/internal/models"
	"github.com/uwuweb/uwuweb-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler          *handler.AuthHandler
	JustificationHandler *handler.JustificationHandler
	AttendanceHandler    *handler.AttendanceHandler
	GradeHandler         *handler.GradeHandler
	NotificationHandler  *handler.NotificationHandler
	JWTMiddleware        fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("login", 10, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	protected := api.Group("", jwtMiddleware)

	if deps.JustificationHandler != nil {
		deps.JustificationHandler.Register(protected.Group("/justifications"))
	}

	if deps.AttendanceHandler != nil {
		attendance := protected.Group("/attendance")
		deps.AttendanceHandler.RegisterReads(attendance)

		writes := attendance.Group("", middleware.RequireRole(models.RoleTeacher, models.RoleAdmin))
		deps.AttendanceHandler.RegisterWrites(writes)
	}

	if deps.GradeHandler != nil {
		grades := protected.Group("/grades")
		deps.GradeHandler.RegisterReads(grades)

		writes := grades.Group("", middleware.RequireRole(models.RoleTeacher, models.RoleAdmin))
		deps.GradeHandler.RegisterWrites(writes)
	}

	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(protected.Group("/notifications"))
	}
}
