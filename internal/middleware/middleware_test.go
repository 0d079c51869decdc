package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestCorrelationIDPropagatesIncomingHeader(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/ping", func(c *fiber.Ctx) error {
		require.Equal(t, GetCorrelationID(c), CorrelationIDFromContext(c.UserContext()))
		return c.SendString(GetCorrelationID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "req-123", resp.Header.Get("X-Correlation-ID"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	require.NotEmpty(t, resp.Header.Get("X-Correlation-ID"))
}

func TestRateLimitKeysByStudent(t *testing.T) {
	app := fiber.New()
	app.Post("/submit", RateLimit("submit", 2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})

	send := func(body string) int {
		req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusAccepted, send(`{"student_id":1}`))
	require.Equal(t, fiber.StatusAccepted, send(`{"student_id":1}`))
	require.Equal(t, fiber.StatusTooManyRequests, send(`{"student_id":1}`))
	require.Equal(t, fiber.StatusAccepted, send(`{"student_id":2}`))
}

func TestLoggedRoute(t *testing.T) {
	require.True(t, loggedRoute("/api/v1/admin/status"))
	require.True(t, loggedRoute("/api/v1/system/setup"))
	require.True(t, loggedRoute("/api/v1/submissions"))
	require.False(t, loggedRoute("/api/v1/submissions/12"))
	require.False(t, loggedRoute("/api/v1/problems"))
}

func TestLatencyBucket(t *testing.T) {
	require.Equal(t, "<=25ms", latencyBucket(10*time.Millisecond))
	require.Equal(t, "<=250ms", latencyBucket(200*time.Millisecond))
	require.Equal(t, ">500ms", latencyBucket(time.Second))
}
