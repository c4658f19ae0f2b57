package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spark-iq/spark-iq-api/internal/config"
	"github.com/spark-iq/spark-iq-api/internal/handler"
	"github.com/spark-iq/spark-iq-api/internal/middleware"
	"github.com/spark-iq/spark-iq-api/internal/models"
	"github.com/spark-iq/spark-iq-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler   *handler.AssignmentHandler
	SubmissionHandler   *handler.SubmissionHandler
	DashboardHandler    *handler.DashboardHandler
	AttendanceHandler   *handler.AttendanceHandler
	NotificationHandler *handler.NotificationHandler
	ChatHandler         *handler.ChatHandler
	NewsHandler         *handler.NewsHandler
	MeetingHandler      *handler.MeetingHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	educatorOnly := middleware.RequireRole(models.RoleEducator)

	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(api.Group("/assignments", jwtMiddleware))
		deps.AssignmentHandler.RegisterEducator(api.Group("/educator/assignments", jwtMiddleware, educatorOnly))
	}

	if deps.SubmissionHandler != nil {
		// Upload plus AI grading is the most expensive path in the API.
		deps.SubmissionHandler.Register(api.Group("/submissions", jwtMiddleware, middleware.RateLimit("submissions", 20, time.Minute)))
		deps.SubmissionHandler.RegisterEducator(api.Group("/educator", jwtMiddleware, educatorOnly))
	}

	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(api.Group("/dashboard", jwtMiddleware))
	}

	if deps.AttendanceHandler != nil {
		deps.AttendanceHandler.Register(api.Group("/attendance", jwtMiddleware))
		deps.AttendanceHandler.RegisterEducator(api.Group("/educator/attendance", jwtMiddleware, educatorOnly))
	}

	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(api.Group("/notifications", jwtMiddleware))
	}

	if deps.ChatHandler != nil {
		deps.ChatHandler.Register(api.Group("/chat", jwtMiddleware))
	}

	if deps.NewsHandler != nil {
		deps.NewsHandler.Register(api.Group("/news", jwtMiddleware, middleware.RateLimit("news", 30, time.Minute)))
	}

	if deps.MeetingHandler != nil {
		deps.MeetingHandler.Register(api.Group("/meetings", jwtMiddleware))
	}
}
