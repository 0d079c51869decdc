package middleware

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/codelab-grader/internal/utils"
)

// RateLimit creates a per-student limiter. Requests are keyed by the student_id of the JSON body, falling
// back to the client IP when the body carries none.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Minute
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return fmt.Sprintf("%s:%s", identifier, studentKey(c))
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many submissions, slow down")
		},
	})
}

func studentKey(c *fiber.Ctx) string {
	var body struct {
		StudentID uint `json:"student_id"`
	}
	if err := json.Unmarshal(c.Body(), &body); err == nil && body.StudentID != 0 {
		return fmt.Sprintf("student:%d", body.StudentID)
	}
	return "ip:" + c.IP()
}
