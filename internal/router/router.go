package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/codelab-grader/internal/config"
	"github.com/noah-isme/codelab-grader/internal/handler"
	"github.com/noah-isme/codelab-grader/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SubmissionHandler *handler.SubmissionHandler
	StudentHandler    *handler.StudentHandler
	AdminHandler      *handler.AdminHandler
	Queue             handler.QueueDepth
	SubmitLimiter     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.Queue))

	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(api)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions")
		if deps.SubmitLimiter != nil {
			deps.SubmissionHandler.Register(submissions, deps.SubmitLimiter)
		} else {
			deps.SubmissionHandler.Register(submissions)
		}
	}

	if deps.AdminHandler != nil {
		deps.AdminHandler.RegisterSystem(api.Group("/system"))
		deps.AdminHandler.Register(api.Group("/admin"))
	}
}
