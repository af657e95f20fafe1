package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/smartcia/assessment-api/internal/dto"
	"github.com/smartcia/assessment-api/internal/repository"
)

// passThreshold is the fraction of the maximum score counted as a pass.
const passThreshold = 0.4

// AnalyticsService aggregates submission results per exam.
type AnalyticsService interface {
	ExamAnalytics(ctx context.Context, examID string) (dto.ExamAnalyticsResponse, error)
	InvalidateExam(ctx context.Context, examID string)
}

// AnalyticsInvalidator is the slice of AnalyticsService the submission
// pipeline needs to drop stale cached reports after a write.
type AnalyticsInvalidator interface {
	InvalidateExam(ctx context.Context, examID string)
}

type analyticsService struct {
	exams       repository.ExamRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewAnalyticsService builds the analytics aggregator. cache may be nil, in
// which case every call recomputes from the store.
func NewAnalyticsService(exams repository.ExamRepository, submissions repository.SubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AnalyticsService {
	return &analyticsService{
		exams:       exams,
		submissions: submissions,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "analytics_service").Logger(),
	}
}

func analyticsCacheKey(examID string) string {
	return fmt.Sprintf("analytics:exam:%s", examID)
}

// InvalidateExam drops the cached report so the next read recomputes from the
// store. Called by the submission pipeline after grading and revisions.
func (s *analyticsService) InvalidateExam(ctx context.Context, examID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, analyticsCacheKey(examID)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("exam_id", examID).Msg("failed to invalidate analytics cache")
	}
}

func (s *analyticsService) ExamAnalytics(ctx context.Context, examID string) (dto.ExamAnalyticsResponse, error) {
	cacheKey := analyticsCacheKey(examID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.ExamAnalyticsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Str("exam_id", examID).Msg("analytics cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read analytics cache")
		}
	}

	if _, err := s.exams.GetByID(ctx, examID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return dto.ExamAnalyticsResponse{}, ErrExamNotFound
		}
		return dto.ExamAnalyticsResponse{}, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{ExamID: &examID})
	if err != nil {
		return dto.ExamAnalyticsResponse{}, err
	}

	response := dto.ExamAnalyticsResponse{ExamID: examID, Scores: []dto.StudentScore{}}
	var scoreTotal float64
	var passed int
	for _, submission := range submissions {
		isPass := submission.MaxScore > 0 && submission.TotalScore/submission.MaxScore >= passThreshold
		if isPass {
			passed++
		}
		scoreTotal += submission.TotalScore
		response.Scores = append(response.Scores, dto.StudentScore{
			StudentID:   submission.StudentID,
			StudentName: submission.StudentName,
			Score:       submission.TotalScore,
			MaxScore:    submission.MaxScore,
			Passed:      isPass,
		})
	}

	response.SubmissionCount = len(submissions)
	if len(submissions) > 0 {
		response.AverageScore = scoreTotal / float64(len(submissions))
		response.PassRate = float64(passed) / float64(len(submissions))
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store analytics cache")
			}
		}
	}

	return response, nil
}
