package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/edumoto/classwork-api/internal/config"
	"github.com/edumoto/classwork-api/internal/handler"
	"github.com/edumoto/classwork-api/internal/middleware"
	"github.com/edumoto/classwork-api/internal/models"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	ReportHandler     *handler.ReportHandler
	ActivityHandler   *handler.ActivityHandler
	JWTMiddleware     fiber.Handler
	SubmitLimiter     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	teacherOnly := middleware.RequireRole(models.RoleTeacher)
	studentOnly := middleware.RequireRole(models.RoleStudent)

	protected := app.Group("/api/v1", jwtMiddleware)

	if deps.AssignmentHandler != nil {
		assignmentGroup := protected.Group("/assignments")
		deps.AssignmentHandler.Register(assignmentGroup, teacherOnly)
	}

	if deps.SubmissionHandler != nil {
		submissionGroup := protected.Group("/submissions")
		deps.SubmissionHandler.Register(submissionGroup, teacherOnly, studentOnly, deps.SubmitLimiter)
	}

	if deps.ReportHandler != nil {
		reportGroup := protected.Group("/reports")
		deps.ReportHandler.Register(reportGroup, teacherOnly)
	}

	if deps.ActivityHandler != nil {
		activityGroup := protected.Group("/activity")
		deps.ActivityHandler.Register(activityGroup)
	}
}
