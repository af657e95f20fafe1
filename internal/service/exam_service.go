package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartcia/assessment-api/internal/dto"
	"github.com/smartcia/assessment-api/internal/models"
	"github.com/smartcia/assessment-api/internal/presentation"
	"github.com/smartcia/assessment-api/internal/repository"
)

// ErrExamNotFound indicates the exam id is absent from the store.
var ErrExamNotFound = errors.New("exam not found")

// ErrExamNotPublished indicates a student asked for an exam that is not yet open.
var ErrExamNotPublished = errors.New("exam not published")

// ErrNotExamOwner indicates the actor does not own the exam being mutated.
var ErrNotExamOwner = errors.New("exam is owned by another teacher")

// ErrInvalidQuestion indicates a question payload violates a structural invariant.
var ErrInvalidQuestion = errors.New("invalid question")

// ExamService manages exam authoring and presentation views.
type ExamService interface {
	Create(ctx context.Context, payload dto.ExamCreateRequest, owner models.User) (dto.ExamResponse, error)
	Get(ctx context.Context, id string) (dto.ExamResponse, error)
	List(ctx context.Context, filter dto.ExamFilter) ([]dto.ExamResponse, error)
	Publish(ctx context.Context, id string, actor models.User) (dto.ExamResponse, error)
	Presentation(ctx context.Context, id string) (dto.ExamResponse, error)
}

type examService struct {
	exams     repository.ExamRepository
	builder   *presentation.Builder
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewExamService constructs the exam service.
func NewExamService(exams repository.ExamRepository, builder *presentation.Builder, validate *validator.Validate, logger zerolog.Logger) ExamService {
	return &examService{
		exams:     exams,
		builder:   builder,
		validator: validate,
		logger:    logger.With().Str("component", "exam_service").Logger(),
		now:       time.Now,
	}
}

func (s *examService) Create(ctx context.Context, payload dto.ExamCreateRequest, owner models.User) (dto.ExamResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamResponse{}, err
	}

	exam := models.Exam{
		ID:              uuid.NewString(),
		Title:           payload.Title,
		Subject:         payload.Subject,
		DurationMinutes: payload.DurationMinutes,
		CreatedBy:       owner.ID,
		CreatedAt:       s.now(),
	}

	for i, q := range payload.Questions {
		question := models.Question{
			ID:                 uuid.NewString(),
			Text:               q.Text,
			Type:               models.QuestionType(q.Type),
			Marks:              q.Marks,
			Options:            q.Options,
			CorrectOptionIndex: q.CorrectOptionIndex,
			Rubric:             q.Rubric,
			SampleAnswer:       q.SampleAnswer,
		}
		if err := question.Validate(); err != nil {
			return dto.ExamResponse{}, fmt.Errorf("%w: question %d: %v", ErrInvalidQuestion, i+1, err)
		}
		exam.Questions = append(exam.Questions, question)
	}

	if err := s.exams.Save(ctx, exam); err != nil {
		return dto.ExamResponse{}, err
	}

	s.logger.Info().Str("exam_id", exam.ID).Str("created_by", owner.ID).Int("questions", len(exam.Questions)).Msg("exam created")
	return dto.NewExamResponse(exam), nil
}

func (s *examService) Get(ctx context.Context, id string) (dto.ExamResponse, error) {
	exam, err := s.exams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return dto.ExamResponse{}, ErrExamNotFound
		}
		return dto.ExamResponse{}, err
	}
	return dto.NewExamResponse(exam), nil
}

func (s *examService) List(ctx context.Context, filter dto.ExamFilter) ([]dto.ExamResponse, error) {
	exams, err := s.exams.List(ctx, repository.ExamFilter{
		CreatedBy:     filter.CreatedBy,
		Subject:       filter.Subject,
		PublishedOnly: filter.PublishedOnly,
	})
	if err != nil {
		return nil, err
	}
	return dto.NewExamResponseSlice(exams, filter.IncludeAnswerKeys), nil
}

func (s *examService) Publish(ctx context.Context, id string, actor models.User) (dto.ExamResponse, error) {
	exam, err := s.exams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return dto.ExamResponse{}, ErrExamNotFound
		}
		return dto.ExamResponse{}, err
	}

	if actor.Role != models.RoleAdmin && exam.CreatedBy != actor.ID {
		return dto.ExamResponse{}, ErrNotExamOwner
	}

	exam.IsPublished = true
	if err := s.exams.Save(ctx, exam); err != nil {
		return dto.ExamResponse{}, err
	}

	s.logger.Info().Str("exam_id", exam.ID).Msg("exam published")
	return dto.NewExamResponse(exam), nil
}

// Presentation returns a randomized display copy of a published exam. Answer
// keys and rubrics are stripped from the response; the canonical exam stays
// the single grading reference.
func (s *examService) Presentation(ctx context.Context, id string) (dto.ExamResponse, error) {
	exam, err := s.exams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return dto.ExamResponse{}, ErrExamNotFound
		}
		return dto.ExamResponse{}, err
	}

	if !exam.IsPublished {
		return dto.ExamResponse{}, ErrExamNotPublished
	}

	view := s.builder.Build(exam)
	return dto.NewExamPresentationResponse(view), nil
}
