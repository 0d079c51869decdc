package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CODELAB_AI_PROVIDER", "")
	t.Setenv("CODELAB_GRADING_INTERVAL", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "Codelab Grader", cfg.AppName)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, "sqlite", cfg.DatabaseDriver)
	require.Equal(t, "problems.yaml", cfg.ProblemsPath)
	require.Equal(t, 6500*time.Millisecond, cfg.GradingInterval)
	require.Equal(t, 5*time.Second, cfg.StatusCacheTTL)
	require.Equal(t, 10, cfg.SubmitRateLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CODELAB_AI_PROVIDER", "OpenAI")
	t.Setenv("CODELAB_GRADING_INTERVAL", "4500ms")
	t.Setenv("CODELAB_APP_PORT", ":9090")
	t.Setenv("CODELAB_OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "openai", cfg.AIProvider)
	require.Equal(t, 4500*time.Millisecond, cfg.GradingInterval)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, "sk-test", cfg.OpenAIAPIKey)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("CODELAB_GRADING_INTERVAL", "soon")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("CODELAB_GRADING_INTERVAL", "")
	t.Setenv("CODELAB_AI_PROVIDER", "anthropic")
	_, err = Load()
	require.Error(t, err)
}
