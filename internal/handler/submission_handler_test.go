package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/smartcia/assessment-api/internal/dto"
	"github.com/smartcia/assessment-api/internal/grading"
	"github.com/smartcia/assessment-api/internal/handler"
	"github.com/smartcia/assessment-api/internal/kv"
	"github.com/smartcia/assessment-api/internal/models"
	"github.com/smartcia/assessment-api/internal/repository"
	"github.com/smartcia/assessment-api/internal/service"
	"github.com/smartcia/assessment-api/pkg/ai"
)

type fixedEvaluator struct {
	result ai.EvaluationResult
}

func (f *fixedEvaluator) Evaluate(context.Context, ai.EvaluationInput) (ai.EvaluationResult, error) {
	return f.result, nil
}

func gradedExam() models.Exam {
	return models.Exam{
		ID:              "exam-1",
		Title:           "Algebra CIA 1",
		Subject:         "Mathematics",
		DurationMinutes: 30,
		CreatedBy:       "MA26",
		IsPublished:     true,
		CreatedAt:       time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		Questions: []models.Question{
			{ID: "q-1", Text: "2+2?", Type: models.QuestionTypeMCQ, Marks: 5, Options: []string{"3", "4", "5"}, CorrectOptionIndex: 1},
			{ID: "q-2", Text: "Prove it", Type: models.QuestionTypeShortAnswer, Marks: 5, Rubric: "steps shown"},
		},
	}
}

// newSubmissionApp mounts submission routes twice, once per role, over a
// shared store seeded with a published exam.
func newSubmissionApp(t *testing.T, score float64) *fiber.App {
	t.Helper()

	store := kv.NewMemoryStore()
	exams := repository.NewExamRepository(store)
	submissions := repository.NewSubmissionRepository(store)
	require.NoError(t, exams.Save(context.Background(), gradedExam()))

	oracle := grading.NewOracle(&fixedEvaluator{result: ai.EvaluationResult{Score: score, Feedback: "Good work"}}, 0, testLogger())
	submissionSvc := service.NewSubmissionService(submissions, exams, oracle, testValidator(), nil, nil, testLogger())
	gradingSvc := service.NewGradingService(submissions, exams, testValidator(), nil, nil, testLogger())

	app := fiber.New()
	h := handler.NewSubmissionHandler(submissionSvc, gradingSvc, testLogger())
	h.Register(app.Group("/student/submissions", authAs(student())))
	h.Register(app.Group("/teacher/submissions", authAs(teacher())))

	return app
}

func TestSubmissionHandler_SubmitAndRevise(t *testing.T) {
	app := newSubmissionApp(t, 3)

	payload := dto.SubmitRequest{
		ExamID:  "exam-1",
		Answers: map[string]string{"q-1": "4", "q-2": "Because it is"},
	}
	resp := postJSON(t, app, "/student/submissions", payload)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)
	require.Equal(t, 8.0, created.Data.TotalScore)
	require.Equal(t, 10.0, created.Data.MaxScore)
	require.True(t, created.Data.AIEvaluated)

	revision := dto.GradeRevisionRequest{QuestionID: "q-2", NewMarks: 5}
	resp = patchJSON(t, app, "/teacher/submissions/"+created.Data.ID+"/grade", revision)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var revised struct {
		Data dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &revised)
	require.Equal(t, 10.0, revised.Data.TotalScore)
}

func TestSubmissionHandler_ReviseAboveMarksRejected(t *testing.T) {
	app := newSubmissionApp(t, 2)

	resp := postJSON(t, app, "/student/submissions", dto.SubmitRequest{ExamID: "exam-1"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)

	resp = patchJSON(t, app, "/teacher/submissions/"+created.Data.ID+"/grade", dto.GradeRevisionRequest{QuestionID: "q-2", NewMarks: 50})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSubmissionHandler_TeacherCannotSubmit(t *testing.T) {
	app := newSubmissionApp(t, 0)

	resp := postJSON(t, app, "/teacher/submissions", dto.SubmitRequest{ExamID: "exam-1"})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSubmissionHandler_StudentListScopedToSelf(t *testing.T) {
	app := newSubmissionApp(t, 1)

	resp := postJSON(t, app, "/student/submissions", dto.SubmitRequest{ExamID: "exam-1"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// the student filter wins even when the query asks for someone else
	resp = getPath(t, app, "/student/submissions?student_id=232BCAA65")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listed struct {
		Data []dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &listed)
	require.Len(t, listed.Data, 1)
	require.Equal(t, student().ID, listed.Data[0].StudentID)
}

func TestSubmissionHandler_UnpublishedExamRejected(t *testing.T) {
	store := kv.NewMemoryStore()
	exams := repository.NewExamRepository(store)
	submissions := repository.NewSubmissionRepository(store)

	draft := gradedExam()
	draft.IsPublished = false
	require.NoError(t, exams.Save(context.Background(), draft))

	oracle := grading.NewOracle(&fixedEvaluator{}, 0, testLogger())
	submissionSvc := service.NewSubmissionService(submissions, exams, oracle, testValidator(), nil, nil, testLogger())
	gradingSvc := service.NewGradingService(submissions, exams, testValidator(), nil, nil, testLogger())

	app := fiber.New()
	h := handler.NewSubmissionHandler(submissionSvc, gradingSvc, testLogger())
	h.Register(app.Group("/student/submissions", authAs(student())))

	resp := postJSON(t, app, "/student/submissions", dto.SubmitRequest{
		ExamID:  draft.ID,
		Answers: map[string]string{"q-1": "4"},
	})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestSubmissionHandler_UnknownExam(t *testing.T) {
	app := newSubmissionApp(t, 0)

	resp := postJSON(t, app, "/student/submissions", dto.SubmitRequest{ExamID: "ghost"})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func patchJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}
