package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/codelab-grader/internal/config"
	"github.com/noah-isme/codelab-grader/internal/utils"
)

// QueueDepth reports how many grading jobs are waiting.
type QueueDepth interface {
	Len() int
}

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	Service      string    `json:"service"`
	Environment  string    `json:"environment"`
	GradingQueue int       `json:"grading_queue"`
	AIProvider   string    `json:"ai_provider"`
}

// HealthCheck returns a handler that reports application health and the grading backlog.
func HealthCheck(cfg config.Config, queue QueueDepth) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			AIProvider:  cfg.AIProvider,
		}
		if queue != nil {
			payload.GradingQueue = queue.Len()
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
