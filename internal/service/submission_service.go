package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartcia/assessment-api/internal/dto"
	"github.com/smartcia/assessment-api/internal/grading"
	"github.com/smartcia/assessment-api/internal/models"
	"github.com/smartcia/assessment-api/internal/repository"
)

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// SubmissionService runs the exam submission pipeline and serves submission queries.
type SubmissionService interface {
	Submit(ctx context.Context, payload dto.SubmitRequest, student models.User) (dto.SubmissionResponse, error)
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, id string) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	exams       repository.ExamRepository
	oracle      *grading.Oracle
	validator   *validator.Validate
	activity    ActivityRecorder
	analytics   AnalyticsInvalidator
	logger      zerolog.Logger
	now         func() time.Time
	newID       func() string
}

// NewSubmissionService constructs the submission pipeline service. activity
// and analytics may be nil.
func NewSubmissionService(submissions repository.SubmissionRepository, exams repository.ExamRepository, oracle *grading.Oracle, validate *validator.Validate, activity ActivityRecorder, analytics AnalyticsInvalidator, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		exams:       exams,
		oracle:      oracle,
		validator:   validate,
		activity:    activity,
		analytics:   analytics,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Submit grades a completed answer set against the canonical exam and
// persists exactly one Submission. Questions are walked in canonical order
// regardless of how the presentation shuffled them, so answer ordering is
// deterministic. Grading calls run sequentially; nothing is persisted until
// every question has a verdict.
func (s *submissionService) Submit(ctx context.Context, payload dto.SubmitRequest, student models.User) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	exam, err := s.exams.GetByID(ctx, payload.ExamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return dto.SubmissionResponse{}, ErrExamNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	// an exam that is not open for viewing is not open for submitting either
	if !exam.IsPublished {
		return dto.SubmissionResponse{}, ErrExamNotPublished
	}

	submission := models.Submission{
		ID:          s.newID(),
		ExamID:      exam.ID,
		StudentID:   student.ID,
		StudentName: student.Name,
		SubmittedAt: s.now(),
	}

	for _, question := range exam.Questions {
		// a question the student never answered is still graded, as empty
		rawAnswer := payload.Answers[question.ID]
		verdict := s.oracle.Grade(ctx, question, rawAnswer)

		submission.Answers = append(submission.Answers, models.Answer{
			QuestionID:    question.ID,
			StudentAnswer: rawAnswer,
			ObtainedMarks: verdict.Score,
			Feedback:      verdict.Feedback,
			IsGraded:      true,
		})
		submission.MaxScore += question.Marks
		if question.IsSubjective() {
			submission.AIEvaluated = true
		}
	}
	submission.RecomputeTotal()

	if err := s.submissions.Save(ctx, submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if s.analytics != nil {
		s.analytics.InvalidateExam(ctx, exam.ID)
	}

	if s.activity != nil {
		entry := ActivityEntry{
			Actor:      ActivityActor{ID: student.ID, Name: student.Name, Role: string(student.Role)},
			Action:     "submission.created",
			EntityType: "submission",
			EntityID:   submission.ID,
			Metadata: map[string]any{
				"exam_id":     exam.ID,
				"total_score": submission.TotalScore,
				"max_score":   submission.MaxScore,
			},
		}
		if err := s.activity.Record(ctx, entry); err != nil {
			s.logger.Warn().Err(err).Str("submission_id", submission.ID).Msg("failed to record submission activity")
		}
	}

	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("exam_id", exam.ID).
		Str("student_id", student.ID).
		Float64("total_score", submission.TotalScore).
		Float64("max_score", submission.MaxScore).
		Msg("submission graded")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{
		ExamID:    filter.ExamID,
		StudentID: filter.StudentID,
	})
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Get(ctx context.Context, id string) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission), nil
}
