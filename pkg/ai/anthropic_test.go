package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smartcia/assessment-api/pkg/ai"
)

func TestAnthropicEvaluatorRequiresAPIKey(t *testing.T) {
	_, err := ai.NewAnthropicEvaluator(ai.AnthropicConfig{})
	require.Error(t, err)
}

func TestAnthropicEvaluatorParsesVerdict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("x-api-key"))
		require.NotEmpty(t, r.Header.Get("anthropic-version"))

		var payload struct {
			System   string `json:"system"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.NotEmpty(t, payload.System)
		require.Len(t, payload.Messages, 1)
		require.Contains(t, payload.Messages[0].Content, "Explain DNS.")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"score\": 4, \"feedback\": \"mostly right\"}"}]}`))
	}))
	defer server.Close()

	evaluator, err := ai.NewAnthropicEvaluator(ai.AnthropicConfig{
		APIKey:  "secret",
		BaseURL: server.URL,
	})
	require.NoError(t, err)

	result, err := evaluator.Evaluate(context.Background(), ai.EvaluationInput{
		QuestionText:  "Explain DNS.",
		MaxMarks:      5,
		Rubric:        "resolution steps",
		StudentAnswer: "it resolves names",
	})
	require.NoError(t, err)
	require.Equal(t, 4.0, result.Score)
	require.Equal(t, "mostly right", result.Feedback)
}

func TestAnthropicEvaluatorSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	evaluator, err := ai.NewAnthropicEvaluator(ai.AnthropicConfig{
		APIKey:  "secret",
		BaseURL: server.URL,
	})
	require.NoError(t, err)

	_, err = evaluator.Evaluate(context.Background(), ai.EvaluationInput{QuestionText: "q", MaxMarks: 5, StudentAnswer: "a"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "rate_limit_error")
}
