package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicDefaultModel   = "claude-3-5-haiku-latest"
	anthropicAPIVersion     = "2023-06-01"
)

// AnthropicConfig defines configuration options for the Anthropic-backed evaluator.
type AnthropicConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

func (cfg *AnthropicConfig) applyDefaults() error {
	if cfg.APIKey == "" {
		return fmt.Errorf("anthropic api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = anthropicDefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = anthropicDefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	return nil
}

// AnthropicEvaluator implements Evaluator against the Anthropic messages API.
// There is no official Go SDK, so the wire format is spoken directly.
type AnthropicEvaluator struct {
	cfg    AnthropicConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewAnthropicEvaluator builds a new evaluator using the provided configuration.
func NewAnthropicEvaluator(cfg AnthropicConfig) (*AnthropicEvaluator, error) {
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	return &AnthropicEvaluator{
		cfg:    cfg,
		tracer: otel.Tracer("github.com/smartcia/assessment-api/pkg/ai/anthropic"),
		logger: cfg.Logger.With().Str("component", "anthropic_evaluator").Logger(),
	}, nil
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Evaluate sends the grading request to Anthropic and parses the response.
func (e *AnthropicEvaluator) Evaluate(parent context.Context, input EvaluationInput) (EvaluationResult, error) {
	ctx, span := e.tracer.Start(parent, "anthropic.evaluate", trace.WithAttributes(
		attribute.String("model", e.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	content, err := e.complete(ctx, anthropicRequest{
		Model:     e.cfg.Model,
		MaxTokens: e.cfg.MaxTokens,
		System:    evaluatorSystemPrompt(),
		Messages: []anthropicMessage{
			{Role: "user", Content: buildEvaluationPrompt(input)},
		},
	})
	aiDuration.WithLabelValues(e.cfg.Model, "evaluate").Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(e.cfg.Model, "evaluate").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return EvaluationResult{}, fmt.Errorf("anthropic evaluate: %w", err)
	}

	result, err := ParseEvaluationResponse(content, input.MaxMarks)
	if err != nil {
		aiFailures.WithLabelValues(e.cfg.Model, "evaluate").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return EvaluationResult{}, err
	}

	span.SetAttributes(attribute.Float64("ai.score", result.Score))
	return result, nil
}

// complete posts one messages request and returns the first text block.
func (e *AnthropicEvaluator) complete(ctx context.Context, payload anthropicRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", e.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := e.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var decoded anthropicResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if decoded.Error != nil {
			return "", fmt.Errorf("api error %s: %s", decoded.Error.Type, decoded.Error.Message)
		}
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	for _, block := range decoded.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content returned")
}
