package grading

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/smartcia/assessment-api/internal/models"
	"github.com/smartcia/assessment-api/pkg/ai"
)

type stubEvaluator struct {
	calls  int
	result ai.EvaluationResult
	err    error
}

func (s *stubEvaluator) Evaluate(_ context.Context, _ ai.EvaluationInput) (ai.EvaluationResult, error) {
	s.calls++
	return s.result, s.err
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func mcqQuestion() models.Question {
	return models.Question{
		ID:                 "q1",
		Text:               "Pick B",
		Type:               models.QuestionTypeMCQ,
		Marks:              5,
		Options:            []string{"A", "B", "C"},
		CorrectOptionIndex: 1,
	}
}

func shortQuestion() models.Question {
	return models.Question{
		ID:     "q2",
		Text:   "Explain normalization",
		Type:   models.QuestionTypeShortAnswer,
		Marks:  5,
		Rubric: "mention redundancy and anomalies",
	}
}

func TestGradeMCQ(t *testing.T) {
	evaluator := &stubEvaluator{}
	oracle := NewOracle(evaluator, 0, testLogger())

	correct := oracle.Grade(context.Background(), mcqQuestion(), "B")
	require.Equal(t, 5.0, correct.Score)
	require.Equal(t, "Correct", correct.Feedback)

	wrong := oracle.Grade(context.Background(), mcqQuestion(), "A")
	require.Equal(t, 0.0, wrong.Score)
	require.Equal(t, "Incorrect", wrong.Feedback)

	// MCQ grading never touches the evaluator
	require.Equal(t, 0, evaluator.calls)
}

func TestGradeSubjectiveEmptyAnswerShortCircuits(t *testing.T) {
	evaluator := &stubEvaluator{}
	oracle := NewOracle(evaluator, 0, testLogger())

	for _, answer := range []string{"", "   ", "\n\t"} {
		result := oracle.Grade(context.Background(), shortQuestion(), answer)
		require.Equal(t, 0.0, result.Score)
		require.Equal(t, "No answer provided.", result.Feedback)
	}
	require.Equal(t, 0, evaluator.calls)
}

func TestGradeSubjectiveDelegatesAndClamps(t *testing.T) {
	evaluator := &stubEvaluator{result: ai.EvaluationResult{Score: 12, Feedback: "excellent"}}
	oracle := NewOracle(evaluator, 0, testLogger())

	result := oracle.Grade(context.Background(), shortQuestion(), "some answer")
	require.Equal(t, 1, evaluator.calls)
	require.Equal(t, 5.0, result.Score)
	require.Equal(t, "excellent", result.Feedback)
}

func TestGradeSubjectiveFailsOpenToZero(t *testing.T) {
	evaluator := &stubEvaluator{err: fmt.Errorf("upstream timeout")}
	oracle := NewOracle(evaluator, 0, testLogger())

	result := oracle.Grade(context.Background(), shortQuestion(), "some answer")
	require.Equal(t, 0.0, result.Score)
	require.Contains(t, result.Feedback, "AI grading error")
	require.Contains(t, result.Feedback, "grade manually")
}
