package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestOpenAIGraderParsesCompletion(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"score\": 85, \"feedback\": \"Nice job\"}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	grader, err := NewOpenAIGrader(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1", Logger: zerolog.Nop()})
	require.NoError(t, err)

	result, err := grader.Grade(context.Background(), GradingInput{ProblemTitle: "덧셈", Code: "print(3)"})
	require.NoError(t, err)
	require.Equal(t, GradingResult{Score: 85, Feedback: "Nice job"}, result)

	messages, ok := received["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)
}

func TestOpenAIGraderPropagatesTransportErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "type": "requests"}}`))
	}))
	defer server.Close()

	grader, err := NewOpenAIGrader(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	_, err = grader.Grade(context.Background(), GradingInput{ProblemTitle: "덧셈", Code: "print(3)"})
	require.Error(t, err)
}

func TestGeminiGraderParsesFencedCandidate(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "` + "```json\\n[{\\\"score\\\": 70, \\\"feedback\\\": \\\"좋아요\\\"}]\\n```" + `"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 12, "totalTokenCount": 30}
		}`))
	}))
	defer server.Close()

	grader, err := NewGeminiGrader(context.Background(), GeminiConfig{APIKey: "test-key", BaseURL: server.URL, Logger: zerolog.Nop()})
	require.NoError(t, err)

	result, err := grader.Grade(context.Background(), GradingInput{ProblemTitle: "반복문", Code: "for i in range(3): print(i)"})
	require.NoError(t, err)
	require.Equal(t, GradingResult{Score: 70, Feedback: "좋아요"}, result)
	require.Contains(t, path, "gemini-2.5-flash:generateContent")
}

func TestGraderConstructorsRequireAPIKey(t *testing.T) {
	_, err := NewOpenAIGrader(OpenAIConfig{})
	require.Error(t, err)

	_, err = NewGeminiGrader(context.Background(), GeminiConfig{})
	require.Error(t, err)
}
