package ai

import "context"

// EvaluationInput carries everything the model needs to grade one subjective answer.
type EvaluationInput struct {
	QuestionText  string
	MaxMarks      float64
	Rubric        string
	SampleAnswer  string
	StudentAnswer string
}

// EvaluationResult is the structured verdict returned by the evaluator.
// Score is in absolute marks, already clamped into [0, MaxMarks].
type EvaluationResult struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Evaluator grades a subjective answer against a rubric or sample answer.
type Evaluator interface {
	Evaluate(ctx context.Context, input EvaluationInput) (EvaluationResult, error)
}

// TypeFilter restricts the kinds of questions the generator may produce.
type TypeFilter string

const (
	// TypeFilterMixed allows a mix of MCQ and short-answer questions.
	TypeFilterMixed TypeFilter = "MIXED"
	// TypeFilterMCQ restricts generation to multiple-choice questions.
	TypeFilterMCQ TypeFilter = "MCQ"
	// TypeFilterShortAnswer restricts generation to short-answer questions.
	TypeFilterShortAnswer TypeFilter = "SHORT_ANSWER"
)

// GenerationInput describes a question-generation request.
type GenerationInput struct {
	Topic  string
	Count  int
	Filter TypeFilter
}

// GeneratedQuestion is one question drafted by the model, without an id;
// the caller assigns identity and fills defaults.
type GeneratedQuestion struct {
	Text               string   `json:"text"`
	Type               string   `json:"type"`
	Marks              float64  `json:"marks"`
	Options            []string `json:"options,omitempty"`
	CorrectOptionIndex int      `json:"correct_option_index"`
	Rubric             string   `json:"rubric,omitempty"`
}

// Generator drafts exam questions from a topic prompt. Unlike evaluation,
// generation failures propagate to the caller.
type Generator interface {
	Generate(ctx context.Context, input GenerationInput) ([]GeneratedQuestion, error)
}
