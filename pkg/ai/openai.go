package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "smartcia",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI grading and generation requests",
	}, []string{"model", "operation"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smartcia",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of failed AI grading and generation requests",
	}, []string{"model", "operation"})
)

// OpenAIConfig defines configuration options for the OpenAI-backed clients.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

func (cfg *OpenAIConfig) applyDefaults() error {
	if cfg.APIKey == "" {
		return fmt.Errorf("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}
	return nil
}

func newChatClient(cfg OpenAIConfig) *openai.Client {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(config)
}

// OpenAIEvaluator implements Evaluator against the OpenAI chat completion API.
type OpenAIEvaluator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIEvaluator builds a new evaluator using the provided configuration.
func NewOpenAIEvaluator(cfg OpenAIConfig) (*OpenAIEvaluator, error) {
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	return &OpenAIEvaluator{
		client: newChatClient(cfg),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/smartcia/assessment-api/pkg/ai/openai"),
		logger: cfg.Logger.With().Str("component", "openai_evaluator").Logger(),
	}, nil
}

// Evaluate sends the grading request to OpenAI and parses the response.
func (e *OpenAIEvaluator) Evaluate(parent context.Context, input EvaluationInput) (EvaluationResult, error) {
	ctx, span := e.tracer.Start(parent, "openai.evaluate", trace.WithAttributes(
		attribute.String("model", e.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: evaluatorSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildEvaluationPrompt(input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := e.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(e.cfg.Model, "evaluate").Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(e.cfg.Model, "evaluate").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return EvaluationResult{}, fmt.Errorf("openai evaluate: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(e.cfg.Model, "evaluate").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return EvaluationResult{}, err
	}

	result, err := ParseEvaluationResponse(resp.Choices[0].Message.Content, input.MaxMarks)
	if err != nil {
		aiFailures.WithLabelValues(e.cfg.Model, "evaluate").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return EvaluationResult{}, err
	}

	span.SetAttributes(attribute.Float64("ai.score", result.Score))
	return result, nil
}

func evaluatorSystemPrompt() string {
	return "You are an expert academic grader. Evaluate the student answer against the question, the maximum marks, and th" +
		"e grading rubric or reference answer. Respond with a JSON object containing \"score\" (number, may be decimal) and " +
		"\"feedback\" (a concise explanation of the score, at most two sentences)."
}

func buildEvaluationPrompt(input EvaluationInput) string {
	reference := input.Rubric
	if strings.TrimSpace(reference) == "" {
		reference = input.SampleAnswer
	}
	if strings.TrimSpace(reference) == "" {
		reference = "Grade based on relevance and correctness"
	}

	builder := strings.Builder{}
	builder.WriteString("Question: ")
	builder.WriteString(input.QuestionText)
	builder.WriteString(fmt.Sprintf("\nMax Marks: %g", input.MaxMarks))
	builder.WriteString("\nReference/Rubric: ")
	builder.WriteString(reference)
	builder.WriteString("\nStudent Answer: ")
	builder.WriteString(input.StudentAnswer)
	builder.WriteString(fmt.Sprintf("\n\nAward a score from 0 to %g. Return JSON.", input.MaxMarks))
	return builder.String()
}

// StripMarkdownFences removes incidental ```json fences some models wrap
// around their JSON output.
func StripMarkdownFences(content string) string {
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimSpace(content)
}

// ParseEvaluationResponse decodes a grading verdict and clamps the score into
// [0, maxMarks].
func ParseEvaluationResponse(content string, maxMarks float64) (EvaluationResult, error) {
	var result EvaluationResult
	if err := json.Unmarshal([]byte(StripMarkdownFences(content)), &result); err != nil {
		return EvaluationResult{}, fmt.Errorf("parse evaluation json: %w", err)
	}

	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > maxMarks {
		result.Score = maxMarks
	}

	return result, nil
}
