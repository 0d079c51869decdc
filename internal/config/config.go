package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the grading service.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	DatabaseDriver  string
	DatabaseURL     string
	RedisURL        string
	NATSURL         string
	EventsChannel   string
	ProblemsPath    string
	AIProvider      string
	AIModel         string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	GradingInterval time.Duration
	StatusCacheTTL  time.Duration
	SubmitRateLimit int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CODELAB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Codelab Grader")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "codelab.db")
	v.SetDefault("events.channel", "codelab:grading")
	v.SetDefault("problems.path", "problems.yaml")
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("grading.interval", "6.5s")
	v.SetDefault("status.cache_ttl", "5s")
	v.SetDefault("submit.rate_limit", 10)

	interval, err := parseDuration(v.GetString("grading.interval"), 6500*time.Millisecond)
	if err != nil {
		return Config{}, fmt.Errorf("invalid grading interval: %w", err)
	}

	ttl, err := parseDuration(v.GetString("status.cache_ttl"), 5*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid status cache ttl: %w", err)
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		DatabaseDriver:  strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:     v.GetString("database.url"),
		RedisURL:        v.GetString("redis.url"),
		NATSURL:         v.GetString("nats.url"),
		EventsChannel:   v.GetString("events.channel"),
		ProblemsPath:    v.GetString("problems.path"),
		AIProvider:      strings.ToLower(v.GetString("ai.provider")),
		AIModel:         v.GetString("ai.model"),
		GeminiAPIKey:    v.GetString("gemini_api_key"),
		OpenAIAPIKey:    v.GetString("openai_api_key"),
		GradingInterval: interval,
		StatusCacheTTL:  ttl,
		SubmitRateLimit: v.GetInt("submit.rate_limit"),
	}

	switch cfg.AIProvider {
	case "gemini", "openai":
	default:
		return Config{}, fmt.Errorf("unsupported ai provider %q", cfg.AIProvider)
	}

	switch cfg.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	if cfg.SubmitRateLimit <= 0 {
		cfg.SubmitRateLimit = 10
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if parsed < 0 {
		return 0, fmt.Errorf("duration must not be negative: %s", value)
	}
	return parsed, nil
}
