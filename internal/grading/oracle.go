// Package grading decides a score/feedback pair for a single answer. MCQ
// answers are matched deterministically against the canonical option text;
// subjective answers are delegated to an external AI evaluator with a
// fail-open-to-zero policy so a grading outage never blocks submission.
package grading

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartcia/assessment-api/internal/models"
	"github.com/smartcia/assessment-api/pkg/ai"
)

// Result is the oracle's verdict for one answer.
type Result struct {
	Score    float64
	Feedback string
}

// Oracle grades answers against canonical questions.
type Oracle struct {
	evaluator ai.Evaluator
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewOracle constructs an oracle. timeout bounds each external grading call;
// zero disables the bound. An unresponsive evaluator is treated the same as a
// failed one.
func NewOracle(evaluator ai.Evaluator, timeout time.Duration, logger zerolog.Logger) *Oracle {
	return &Oracle{
		evaluator: evaluator,
		timeout:   timeout,
		logger:    logger.With().Str("component", "grading_oracle").Logger(),
	}
}

// Grade scores rawAnswer against the canonical question. It never fails: MCQ
// grading is pure, and subjective grading degrades to a zero score with an
// explanatory note when the external call cannot produce a verdict.
func (o *Oracle) Grade(ctx context.Context, question models.Question, rawAnswer string) Result {
	if question.Type == models.QuestionTypeMCQ {
		return o.gradeMCQ(question, rawAnswer)
	}
	return o.gradeSubjective(ctx, question, rawAnswer)
}

// gradeMCQ compares option text, not indices: the presentation layer reorders
// the displayed options, so only the canonical text identifies the choice.
func (o *Oracle) gradeMCQ(question models.Question, rawAnswer string) Result {
	correctText, ok := question.CorrectOptionText()
	if ok && rawAnswer == correctText {
		return Result{Score: question.Marks, Feedback: "Correct"}
	}
	return Result{Score: 0, Feedback: "Incorrect"}
}

func (o *Oracle) gradeSubjective(ctx context.Context, question models.Question, rawAnswer string) Result {
	if strings.TrimSpace(rawAnswer) == "" {
		return Result{Score: 0, Feedback: "No answer provided."}
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	verdict, err := o.evaluator.Evaluate(ctx, ai.EvaluationInput{
		QuestionText:  question.Text,
		MaxMarks:      question.Marks,
		Rubric:        question.Rubric,
		SampleAnswer:  question.SampleAnswer,
		StudentAnswer: rawAnswer,
	})
	if err != nil {
		o.logger.Warn().Err(err).Str("question_id", question.ID).Msg("ai evaluation failed, falling back to zero score")
		return Result{
			Score:    0,
			Feedback: fmt.Sprintf("AI grading error: %v. Please grade manually.", err),
		}
	}

	return Result{Score: clamp(verdict.Score, question.Marks), Feedback: verdict.Feedback}
}

func clamp(score, max float64) float64 {
	if score < 0 {
		return 0
	}
	if score > max {
		return max
	}
	return score
}
