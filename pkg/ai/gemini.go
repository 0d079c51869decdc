package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

const providerGemini = "gemini"

// GeminiConfig defines configuration options for the Gemini grader.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Logger  zerolog.Logger
}

// GeminiGrader implements Grader against the Gemini generateContent API.
type GeminiGrader struct {
	client *genai.Client
	cfg    GeminiConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewGeminiGrader builds a grader using the official genai SDK.
func NewGeminiGrader(ctx context.Context, cfg GeminiConfig) (*GeminiGrader, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: cfg.BaseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiGrader{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/codelab-grader/pkg/ai/gemini"),
		logger: cfg.Logger.With().Str("component", "gemini_grader").Logger(),
	}, nil
}

// Grade sends the grading prompt to Gemini and parses the JSON answer.
func (g *GeminiGrader) Grade(parent context.Context, input GradingInput) (GradingResult, error) {
	ctx, span := g.tracer.Start(parent, "gemini.grade", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model,
		[]*genai.Content{{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: BuildPrompt(input)}},
		}},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: SystemPrompt}},
			},
		},
	)
	gradingDuration.WithLabelValues(providerGemini, g.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		recordFailure(span, providerGemini, g.cfg.Model, err)
		return GradingResult{}, fmt.Errorf("gemini grade: %w", err)
	}

	result, err := ParseGradingResponse(candidateText(resp))
	if err != nil {
		recordFailure(span, providerGemini, g.cfg.Model, err)
		return GradingResult{}, err
	}

	if resp.UsageMetadata != nil {
		g.logger.Debug().
			Int("prompt_tokens", int(resp.UsageMetadata.PromptTokenCount)).
			Int("total_tokens", int(resp.UsageMetadata.TotalTokenCount)).
			Msg("gemini grading usage")
	}

	return result, nil
}

func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	parts := make([]string, 0, len(resp.Candidates[0].Content.Parts))
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			parts = append(parts, part.Text)
		}
	}
	return strings.Join(parts, "")
}
