package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultFeedback is used when the model response carries no feedback text.
const DefaultFeedback = "피드백 생성 실패"

// ErrEmptyResponse indicates the model returned no text at all.
var ErrEmptyResponse = errors.New("empty grading response")

// ParseGradingResponse extracts the score and feedback from a model response. Code fences are stripped and a
// list-shaped payload is reduced to its first element. Missing fields fall back to a zero score and
// DefaultFeedback; scores are rounded and clamped to 0..100.
func ParseGradingResponse(content string) (GradingResult, error) {
	text := stripCodeFence(content)
	if text == "" {
		return GradingResult{}, ErrEmptyResponse
	}

	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()

	var decoded interface{}
	if err := decoder.Decode(&decoded); err != nil {
		return GradingResult{}, fmt.Errorf("parse grading json: %w", err)
	}

	if list, ok := decoded.([]interface{}); ok {
		if len(list) == 0 {
			decoded = map[string]interface{}{}
		} else {
			decoded = list[0]
		}
	}

	payload, ok := decoded.(map[string]interface{})
	if !ok {
		return GradingResult{}, fmt.Errorf("parse grading json: expected object, got %T", decoded)
	}

	score, err := scoreValue(payload["score"])
	if err != nil {
		return GradingResult{}, err
	}

	feedback, ok := payload["feedback"].(string)
	if !ok {
		feedback = DefaultFeedback
	}

	return GradingResult{Score: score, Feedback: feedback}, nil
}

func stripCodeFence(content string) string {
	text := strings.TrimSpace(content)
	if strings.HasPrefix(text, "```") {
		text = strings.ReplaceAll(text, "```json", "")
		text = strings.ReplaceAll(text, "```", "")
	}
	return strings.TrimSpace(text)
}

func scoreValue(raw interface{}) (int, error) {
	var value float64
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("parse grading score: %w", err)
		}
		value = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("parse grading score %q: %w", v, err)
		}
		value = parsed
	default:
		return 0, fmt.Errorf("parse grading score: unexpected type %T", raw)
	}

	if math.IsNaN(value) {
		return 0, fmt.Errorf("parse grading score: not a number")
	}

	rounded := int(math.Round(math.Max(0, math.Min(100, value))))
	return rounded, nil
}
