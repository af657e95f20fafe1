package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/smartcia/assessment-api/internal/dto"
	"github.com/smartcia/assessment-api/internal/models"
	"github.com/smartcia/assessment-api/internal/repository"
)

// ErrFeedbackNotFound indicates the dispute id is absent.
var ErrFeedbackNotFound = errors.New("feedback not found")

// FeedbackService manages the append-only dispute log.
type FeedbackService interface {
	File(ctx context.Context, payload dto.FeedbackCreateRequest, student models.User) (dto.FeedbackResponse, error)
	Resolve(ctx context.Context, id string) (dto.FeedbackResponse, error)
	ListForExam(ctx context.Context, examID string, onlyUnresolved bool) ([]dto.FeedbackResponse, error)
	UnresolvedCount(ctx context.Context, examID string) (int, error)
}

type feedbackService struct {
	repo      repository.FeedbackRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewFeedbackService constructs the dispute log service.
func NewFeedbackService(repo repository.FeedbackRepository, validate *validator.Validate, logger zerolog.Logger) FeedbackService {
	return &feedbackService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "feedback_service").Logger(),
		now:       time.Now,
	}
}

func (s *feedbackService) File(ctx context.Context, payload dto.FeedbackCreateRequest, student models.User) (dto.FeedbackResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FeedbackResponse{}, err
	}

	entry := models.Feedback{
		ID:          uuid.NewString(),
		ExamID:      payload.ExamID,
		QuestionID:  payload.QuestionID,
		StudentID:   student.ID,
		StudentName: student.Name,
		Text:        s.sanitizer.Sanitize(payload.Text),
		Timestamp:   s.now(),
		IsResolved:  false,
	}

	if err := s.repo.Save(ctx, entry); err != nil {
		return dto.FeedbackResponse{}, err
	}

	s.logger.Info().Str("feedback_id", entry.ID).Str("exam_id", entry.ExamID).Str("question_id", entry.QuestionID).Msg("dispute filed")
	return dto.NewFeedbackResponse(entry), nil
}

// Resolve flips the resolved flag. The flip is monotonic: resolving an
// already-resolved entry just returns it unchanged.
func (s *feedbackService) Resolve(ctx context.Context, id string) (dto.FeedbackResponse, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return dto.FeedbackResponse{}, ErrFeedbackNotFound
		}
		return dto.FeedbackResponse{}, err
	}

	if entry.IsResolved {
		return dto.NewFeedbackResponse(entry), nil
	}

	entry.IsResolved = true
	if err := s.repo.Save(ctx, entry); err != nil {
		return dto.FeedbackResponse{}, err
	}

	s.logger.Info().Str("feedback_id", entry.ID).Msg("dispute resolved")
	return dto.NewFeedbackResponse(entry), nil
}

func (s *feedbackService) ListForExam(ctx context.Context, examID string, onlyUnresolved bool) ([]dto.FeedbackResponse, error) {
	entries, err := s.repo.List(ctx, repository.FeedbackFilter{
		ExamID:         &examID,
		OnlyUnresolved: onlyUnresolved,
	})
	if err != nil {
		return nil, err
	}
	return dto.NewFeedbackResponseSlice(entries), nil
}

func (s *feedbackService) UnresolvedCount(ctx context.Context, examID string) (int, error) {
	entries, err := s.repo.List(ctx, repository.FeedbackFilter{
		ExamID:         &examID,
		OnlyUnresolved: true,
	})
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}
