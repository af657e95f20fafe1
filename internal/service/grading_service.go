package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/smartcia/assessment-api/internal/dto"
	"github.com/smartcia/assessment-api/internal/models"
	"github.com/smartcia/assessment-api/internal/repository"
)

// ErrAnswerNotFound indicates the submission has no answer for the question.
var ErrAnswerNotFound = errors.New("answer not found in submission")

// ErrScoreExceedsMax indicates a revised score surpasses the question's marks.
var ErrScoreExceedsMax = errors.New("score exceeds question marks")

// GradingService encapsulates teacher grade revisions.
type GradingService interface {
	Revise(ctx context.Context, submissionID string, payload dto.GradeRevisionRequest, actor models.User) (dto.SubmissionResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	exams       repository.ExamRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	analytics   AnalyticsInvalidator
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradingService constructs the grade revision service. activity and
// analytics may be nil.
func NewGradingService(submissions repository.SubmissionRepository, exams repository.ExamRepository, validate *validator.Validate, activity ActivityRecorder, analytics AnalyticsInvalidator, logger zerolog.Logger) GradingService {
	return &gradingService{
		submissions: submissions,
		exams:       exams,
		validator:   validate,
		activity:    activity,
		analytics:   analytics,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		now:         time.Now,
	}
}

// Revise overwrites one answer's marks and re-derives the submission total.
// Out-of-range scores are rejected rather than clamped: negative marks fail
// validation and marks above the question's maximum return ErrScoreExceedsMax.
func (s *gradingService) Revise(ctx context.Context, submissionID string, payload dto.GradeRevisionRequest, actor models.User) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/smartcia/assessment-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.revise")
	span.SetAttributes(
		attribute.String("grading.submission_id", submissionID),
		attribute.String("grading.question_id", payload.QuestionID),
		attribute.String("grading.actor_id", actor.ID),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	index := submission.AnswerIndexByQuestion(payload.QuestionID)
	if index < 0 {
		span.SetStatus(codes.Error, "answer_not_found")
		return dto.SubmissionResponse{}, ErrAnswerNotFound
	}

	if err := s.checkAgainstMax(ctx, submission.ExamID, payload.QuestionID, payload.NewMarks); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "score_exceeds_max")
		return dto.SubmissionResponse{}, err
	}

	submission.Answers[index].ObtainedMarks = payload.NewMarks
	submission.Answers[index].IsGraded = true
	submission.RecomputeTotal()

	if err := s.submissions.Save(ctx, submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	if s.analytics != nil {
		s.analytics.InvalidateExam(ctx, submission.ExamID)
	}

	if s.activity != nil {
		entry := ActivityEntry{
			Actor:      ActivityActor{ID: actor.ID, Name: actor.Name, Role: string(actor.Role)},
			Action:     "submission.grade_revised",
			EntityType: "submission",
			EntityID:   submission.ID,
			Metadata: map[string]any{
				"question_id": payload.QuestionID,
				"new_marks":   payload.NewMarks,
				"total_score": submission.TotalScore,
			},
		}
		if err := s.activity.Record(ctx, entry); err != nil {
			s.logger.Warn().Err(err).Str("submission_id", submission.ID).Msg("failed to record revision activity")
		}
	}

	span.SetAttributes(attribute.Float64("grading.new_marks", payload.NewMarks))
	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("question_id", payload.QuestionID).
		Float64("new_marks", payload.NewMarks).
		Float64("total_score", submission.TotalScore).
		Msg("grade revised")

	return dto.NewSubmissionResponse(submission), nil
}

// checkAgainstMax validates the revised marks against the canonical question.
// When the exam or question can no longer be resolved the check is skipped:
// a revision must not become impossible because the exam record went away.
func (s *gradingService) checkAgainstMax(ctx context.Context, examID, questionID string, newMarks float64) error {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	question, ok := exam.QuestionByID(questionID)
	if !ok {
		return nil
	}

	if newMarks > question.Marks {
		return ErrScoreExceedsMax
	}
	return nil
}
