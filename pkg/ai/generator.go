package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const generatedQuestionsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["text", "type", "marks"],
    "properties": {
      "text": {"type": "string", "minLength": 1},
      "type": {"type": "string", "enum": ["MCQ", "SHORT_ANSWER", "LONG_ANSWER"]},
      "marks": {"type": "number", "exclusiveMinimum": 0},
      "options": {"type": "array", "items": {"type": "string"}},
      "correct_option_index": {"type": "integer", "minimum": 0},
      "rubric": {"type": "string"}
    }
  }
}`

var questionSchema = jsonschema.MustCompileString("generated_questions.json", generatedQuestionsSchema)

// OpenAIGenerator implements Generator against the OpenAI chat completion API.
type OpenAIGenerator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGenerator builds a question generator using the provided configuration.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if cfg.MaxTokens < 2048 {
		cfg.MaxTokens = 2048
	}

	return &OpenAIGenerator{
		client: newChatClient(cfg),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/smartcia/assessment-api/pkg/ai/generator"),
		logger: cfg.Logger.With().Str("component", "openai_generator").Logger(),
	}, nil
}

// Generate asks the model for a batch of questions and validates the reply
// against the question schema. Any failure is returned to the caller.
func (g *OpenAIGenerator) Generate(parent context.Context, input GenerationInput) ([]GeneratedQuestion, error) {
	ctx, span := g.tracer.Start(parent, "openai.generate", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.Int("generation.count", input.Count),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You are an exam author. Respond with a JSON array of question objects. Each object has \"text\", \"type\" " +
					"(MCQ, SHORT_ANSWER or LONG_ANSWER), \"marks\", and for MCQs \"options\" plus the 0-based \"correct_option_index\"; " +
					"for short answers include a \"rubric\" with the key grading points.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildGenerationPrompt(input),
			},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(g.cfg.Model, "generate").Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(g.cfg.Model, "generate").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("openai generate: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(g.cfg.Model, "generate").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	questions, err := ParseGenerationResponse(resp.Choices[0].Message.Content)
	if err != nil {
		aiFailures.WithLabelValues(g.cfg.Model, "generate").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("generation.returned", len(questions)))
	return questions, nil
}

func buildGenerationPrompt(input GenerationInput) string {
	instruction := "Create a mix of Multiple Choice (MCQ) and Short Answer questions."
	switch input.Filter {
	case TypeFilterMCQ:
		instruction = "Create only Multiple Choice (MCQ) questions."
	case TypeFilterShortAnswer:
		instruction = "Create only Short Answer questions."
	}

	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("Generate %d exam questions about the topic: %q.\n", input.Count, input.Topic))
	builder.WriteString(instruction)
	builder.WriteString("\n\nFor MCQs: provide 4 distinct options and the 0-based index of the correct option.")
	builder.WriteString("\nFor Short Answers: provide a specific grading rubric or key points.")
	builder.WriteString("\n\nReturn a JSON array of question objects.")
	return builder.String()
}

// ParseGenerationResponse decodes and schema-validates a generated question batch.
func ParseGenerationResponse(content string) ([]GeneratedQuestion, error) {
	cleaned := StripMarkdownFences(content)

	var document any
	if err := json.Unmarshal([]byte(cleaned), &document); err != nil {
		return nil, fmt.Errorf("parse generation json: %w", err)
	}
	if err := questionSchema.Validate(document); err != nil {
		return nil, fmt.Errorf("generated questions failed schema validation: %w", err)
	}

	var questions []GeneratedQuestion
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, fmt.Errorf("decode generated questions: %w", err)
	}
	return questions, nil
}
