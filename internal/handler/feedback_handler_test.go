package handler_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/smartcia/assessment-api/internal/dto"
	"github.com/smartcia/assessment-api/internal/handler"
	"github.com/smartcia/assessment-api/internal/kv"
	"github.com/smartcia/assessment-api/internal/repository"
	"github.com/smartcia/assessment-api/internal/service"
)

func newFeedbackApp(t *testing.T) *fiber.App {
	t.Helper()

	repo := repository.NewFeedbackRepository(kv.NewMemoryStore())
	svc := service.NewFeedbackService(repo, testValidator(), testLogger())

	app := fiber.New()
	h := handler.NewFeedbackHandler(svc, testLogger())
	h.Register(app.Group("/student/feedback", authAs(student())))
	h.Register(app.Group("/teacher/feedback", authAs(teacher())))

	return app
}

func TestFeedbackHandler_FileAndResolve(t *testing.T) {
	app := newFeedbackApp(t)

	payload := dto.FeedbackCreateRequest{ExamID: "exam-1", QuestionID: "q-1", Text: "Option B is also correct"}
	resp := postJSON(t, app, "/student/feedback", payload)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var filed struct {
		Data dto.FeedbackResponse `json:"data"`
	}
	decodeResponse(t, resp, &filed)
	require.False(t, filed.Data.IsResolved)
	require.Equal(t, student().ID, filed.Data.StudentID)

	resp = getPath(t, app, "/teacher/feedback/count?exam_id=exam-1")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var count struct {
		Data map[string]interface{} `json:"data"`
	}
	decodeResponse(t, resp, &count)
	require.Equal(t, float64(1), count.Data["unresolved"])

	resp = postJSON(t, app, "/teacher/feedback/"+filed.Data.ID+"/resolve", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var resolved struct {
		Data dto.FeedbackResponse `json:"data"`
	}
	decodeResponse(t, resp, &resolved)
	require.True(t, resolved.Data.IsResolved)

	resp = getPath(t, app, "/teacher/feedback/count?exam_id=exam-1")
	decodeResponse(t, resp, &count)
	require.Equal(t, float64(0), count.Data["unresolved"])
}

func TestFeedbackHandler_ListRequiresExamID(t *testing.T) {
	app := newFeedbackApp(t)

	resp := getPath(t, app, "/teacher/feedback")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestFeedbackHandler_TeacherCannotFile(t *testing.T) {
	app := newFeedbackApp(t)

	payload := dto.FeedbackCreateRequest{ExamID: "exam-1", QuestionID: "q-1", Text: "test"}
	resp := postJSON(t, app, "/teacher/feedback", payload)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestFeedbackHandler_ResolveUnknown(t *testing.T) {
	app := newFeedbackApp(t)

	resp := postJSON(t, app, "/teacher/feedback/ghost/resolve", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
