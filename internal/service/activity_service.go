package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartcia/assessment-api/internal/models"
	"github.com/smartcia/assessment-api/internal/repository"
)

// ActivityActor identifies the authenticated user performing an action.
type ActivityActor struct {
	ID   string
	Name string
	Role string
}

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	Actor      ActivityActor
	Action     string
	EntityType string
	EntityID   string
	Metadata   map[string]any
}

// ActivityRecorder defines behaviour for recording audit entries.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) error
}

// ActivityService records and lists the audit trail.
type ActivityService interface {
	ActivityRecorder
	ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
	now    func() time.Time
}

// NewActivityService constructs the audit trail service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
		now:    time.Now,
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) error {
	if strings.TrimSpace(entry.Action) == "" {
		return fmt.Errorf("action is required")
	}

	record := models.ActivityLog{
		ID:         uuid.NewString(),
		ActorID:    entry.Actor.ID,
		ActorRole:  entry.Actor.Role,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   entry.Metadata,
		CreatedAt:  s.now(),
	}

	return s.repo.Append(ctx, record)
}

func (s *activityService) ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListRecent(ctx, limit)
}
