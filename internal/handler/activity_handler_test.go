package handler_test

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/smartcia/assessment-api/internal/handler"
	"github.com/smartcia/assessment-api/internal/kv"
	"github.com/smartcia/assessment-api/internal/models"
	"github.com/smartcia/assessment-api/internal/repository"
	"github.com/smartcia/assessment-api/internal/service"
)

func TestActivityHandler_ListsNewestFirst(t *testing.T) {
	repo := repository.NewActivityLogRepository(kv.NewMemoryStore())
	svc := service.NewActivityService(repo, testLogger())

	for _, action := range []string{"submission.created", "submission.grade_revised"} {
		entry := service.ActivityEntry{
			Actor:      service.ActivityActor{ID: "MA26", Name: "Prof. Mathematics", Role: "TEACHER"},
			Action:     action,
			EntityType: "submission",
			EntityID:   "sub-1",
		}
		require.NoError(t, svc.Record(context.Background(), entry))
	}

	app := fiber.New()
	handler.NewActivityHandler(svc, testLogger()).Register(app.Group("/api/v1/activity", authAs(teacher())))

	resp := getPath(t, app, "/api/v1/activity?limit=1")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listed struct {
		Data []models.ActivityLog `json:"data"`
	}
	decodeResponse(t, resp, &listed)
	require.Len(t, listed.Data, 1)
	require.Equal(t, "submission.grade_revised", listed.Data[0].Action)
}

func TestActivityHandler_InvalidLimit(t *testing.T) {
	repo := repository.NewActivityLogRepository(kv.NewMemoryStore())
	svc := service.NewActivityService(repo, testLogger())

	app := fiber.New()
	handler.NewActivityHandler(svc, testLogger()).Register(app.Group("/api/v1/activity", authAs(teacher())))

	resp := getPath(t, app, "/api/v1/activity?limit=nope")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
