package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/smartcia/assessment-api/internal/config"
	"github.com/smartcia/assessment-api/internal/handler"
	"github.com/smartcia/assessment-api/internal/middleware"
	"github.com/smartcia/assessment-api/internal/models"
	"github.com/smartcia/assessment-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	ExamHandler       *handler.ExamHandler
	SubmissionHandler *handler.SubmissionHandler
	FeedbackHandler   *handler.FeedbackHandler
	AnalyticsHandler  *handler.AnalyticsHandler
	ActivityHandler   *handler.ActivityHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", cfg.LoginRateLimit, time.Minute))
		deps.AuthHandler.Register(auth, jwtMiddleware)
	}

	if deps.ExamHandler != nil {
		exams := api.Group("/exams", jwtMiddleware)
		deps.ExamHandler.Register(exams)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.FeedbackHandler != nil {
		feedback := api.Group("/feedback", jwtMiddleware)
		deps.FeedbackHandler.Register(feedback)
	}

	if deps.AnalyticsHandler != nil {
		analytics := api.Group("/analytics", jwtMiddleware, middleware.RequireRole(models.RoleTeacher))
		deps.AnalyticsHandler.Register(analytics)
	}

	if deps.ActivityHandler != nil {
		activity := api.Group("/activity", jwtMiddleware, middleware.RequireRole(models.RoleTeacher))
		deps.ActivityHandler.Register(activity)
	}
}
