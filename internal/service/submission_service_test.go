package service

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/smartcia/assessment-api/internal/dto"
	"github.com/smartcia/assessment-api/internal/grading"
	"github.com/smartcia/assessment-api/internal/kv"
	"github.com/smartcia/assessment-api/internal/models"
	"github.com/smartcia/assessment-api/internal/presentation"
	"github.com/smartcia/assessment-api/internal/repository"
	"github.com/smartcia/assessment-api/pkg/ai"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// scriptedEvaluator returns a fixed verdict and counts invocations.
type scriptedEvaluator struct {
	calls  int
	result ai.EvaluationResult
	err    error
}

func (s *scriptedEvaluator) Evaluate(_ context.Context, _ ai.EvaluationInput) (ai.EvaluationResult, error) {
	s.calls++
	return s.result, s.err
}

func studentUser() models.User {
	return models.User{ID: "222BCAA29", Name: "Student 222BCAA29", Role: models.RoleStudent}
}

func teacherUser() models.User {
	return models.User{ID: "MA26", Name: "Prof. Mathematics", Role: models.RoleTeacher}
}

// twoQuestionExam matches the reference scenario: one MCQ worth 5 with
// correct option "B", one short answer worth 5.
func twoQuestionExam() models.Exam {
	return models.Exam{
		ID:              "exam-1",
		Title:           "Unit Test CIA",
		Subject:         "Mathematics",
		DurationMinutes: 20,
		CreatedBy:       "MA26",
		IsPublished:     true,
		CreatedAt:       time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		Questions: []models.Question{
			{ID: "q-mcq", Text: "Pick B", Type: models.QuestionTypeMCQ, Marks: 5, Options: []string{"A", "B", "C"}, CorrectOptionIndex: 1},
			{ID: "q-short", Text: "Explain", Type: models.QuestionTypeShortAnswer, Marks: 5, Rubric: "key points"},
		},
	}
}

type submissionFixture struct {
	exams       repository.ExamRepository
	submissions repository.SubmissionRepository
	evaluator   *scriptedEvaluator
	service     SubmissionService
}

func newSubmissionFixture(t *testing.T, exam models.Exam, evaluator *scriptedEvaluator) submissionFixture {
	t.Helper()

	store := kv.NewMemoryStore()
	exams := repository.NewExamRepository(store)
	submissions := repository.NewSubmissionRepository(store)
	require.NoError(t, exams.Save(context.Background(), exam))

	oracle := grading.NewOracle(evaluator, 0, testLogger())
	svc := NewSubmissionService(submissions, exams, oracle, testValidator(), nil, nil, testLogger())

	return submissionFixture{exams: exams, submissions: submissions, evaluator: evaluator, service: svc}
}

func TestSubmitGradesAndAggregates(t *testing.T) {
	evaluator := &scriptedEvaluator{result: ai.EvaluationResult{Score: 2, Feedback: "partially correct"}}
	fx := newSubmissionFixture(t, twoQuestionExam(), evaluator)

	response, err := fx.service.Submit(context.Background(), dto.SubmitRequest{
		ExamID: "exam-1",
		Answers: map[string]string{
			"q-mcq":   "B",
			"q-short": "irrelevant text",
		},
	}, studentUser())
	require.NoError(t, err)

	require.Equal(t, 7.0, response.TotalScore)
	require.Equal(t, 10.0, response.MaxScore)
	require.True(t, response.AIEvaluated)
	require.Len(t, response.Answers, 2)

	// answers follow canonical order, not presentation order
	require.Equal(t, "q-mcq", response.Answers[0].QuestionID)
	require.Equal(t, 5.0, response.Answers[0].ObtainedMarks)
	require.Equal(t, "Correct", response.Answers[0].Feedback)
	require.Equal(t, "q-short", response.Answers[1].QuestionID)
	require.Equal(t, 2.0, response.Answers[1].ObtainedMarks)
	require.True(t, response.Answers[1].IsGraded)
	require.Equal(t, 1, evaluator.calls)

	// exactly one submission was persisted, with the derived total intact
	stored, err := fx.submissions.List(context.Background(), repository.SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	var sum float64
	for _, a := range stored[0].Answers {
		sum += a.ObtainedMarks
	}
	require.Equal(t, stored[0].TotalScore, sum)
}

func TestSubmitMissingAnswersGradeAsEmpty(t *testing.T) {
	evaluator := &scriptedEvaluator{result: ai.EvaluationResult{Score: 3, Feedback: "ok"}}
	fx := newSubmissionFixture(t, twoQuestionExam(), evaluator)

	response, err := fx.service.Submit(context.Background(), dto.SubmitRequest{ExamID: "exam-1"}, studentUser())
	require.NoError(t, err)

	require.Equal(t, 0.0, response.TotalScore)
	require.Equal(t, 10.0, response.MaxScore)
	require.Equal(t, "Incorrect", response.Answers[0].Feedback)
	require.Equal(t, "No answer provided.", response.Answers[1].Feedback)
	require.True(t, response.Answers[1].IsGraded)
	// the empty subjective answer never reached the evaluator
	require.Equal(t, 0, evaluator.calls)
}

func TestSubmitEvaluatorFailureDoesNotBlockSubmission(t *testing.T) {
	evaluator := &scriptedEvaluator{err: fmt.Errorf("model unavailable")}
	fx := newSubmissionFixture(t, twoQuestionExam(), evaluator)

	response, err := fx.service.Submit(context.Background(), dto.SubmitRequest{
		ExamID: "exam-1",
		Answers: map[string]string{
			"q-mcq":   "B",
			"q-short": "a genuine attempt",
		},
	}, studentUser())
	require.NoError(t, err)

	require.Equal(t, 5.0, response.TotalScore)
	require.Equal(t, 0.0, response.Answers[1].ObtainedMarks)
	require.Contains(t, response.Answers[1].Feedback, "AI grading error")
}

func TestSubmitRejectsUnpublishedExam(t *testing.T) {
	evaluator := &scriptedEvaluator{result: ai.EvaluationResult{Score: 5, Feedback: "ok"}}
	draft := twoQuestionExam()
	draft.IsPublished = false
	fx := newSubmissionFixture(t, draft, evaluator)

	_, err := fx.service.Submit(context.Background(), dto.SubmitRequest{
		ExamID:  "exam-1",
		Answers: map[string]string{"q-mcq": "B", "q-short": "an attempt"},
	}, studentUser())
	require.ErrorIs(t, err, ErrExamNotPublished)

	// nothing was graded or persisted
	require.Equal(t, 0, evaluator.calls)
	stored, listErr := fx.submissions.List(context.Background(), repository.SubmissionFilter{})
	require.NoError(t, listErr)
	require.Empty(t, stored)
}

func TestSubmitUnknownExam(t *testing.T) {
	fx := newSubmissionFixture(t, twoQuestionExam(), &scriptedEvaluator{})

	_, err := fx.service.Submit(context.Background(), dto.SubmitRequest{ExamID: "nope"}, studentUser())
	require.ErrorIs(t, err, ErrExamNotFound)

	stored, listErr := fx.submissions.List(context.Background(), repository.SubmissionFilter{})
	require.NoError(t, listErr)
	require.Empty(t, stored)
}

// Selecting the canonical correct option text yields full marks no matter how
// the presentation shuffled the questions and options.
func TestSubmitIndependentOfPresentationShuffle(t *testing.T) {
	canonical := twoQuestionExam()
	correctText, ok := canonical.Questions[0].CorrectOptionText()
	require.True(t, ok)

	for seed := int64(0); seed < 20; seed++ {
		builder := presentation.NewBuilder(rand.New(rand.NewSource(seed)))
		view := builder.Build(canonical)

		// pick the option whose text matches the canonical answer, wherever it landed
		shuffledQ, found := view.QuestionByID("q-mcq")
		require.True(t, found)
		var selected string
		for _, option := range shuffledQ.Options {
			if option == correctText {
				selected = option
			}
		}
		require.Equal(t, correctText, selected)

		fx := newSubmissionFixture(t, canonical, &scriptedEvaluator{})
		response, err := fx.service.Submit(context.Background(), dto.SubmitRequest{
			ExamID:  canonical.ID,
			Answers: map[string]string{"q-mcq": selected},
		}, studentUser())
		require.NoError(t, err)
		require.Equal(t, 5.0, response.Answers[0].ObtainedMarks)
	}
}
