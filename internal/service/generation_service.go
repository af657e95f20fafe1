package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartcia/assessment-api/internal/dto"
	"github.com/smartcia/assessment-api/internal/models"
	"github.com/smartcia/assessment-api/pkg/ai"
)

const (
	defaultGeneratedCount = 3
	defaultQuestionMarks  = 5
)

// GenerationService drafts exam questions from a topic prompt via the AI
// generator. Generation failures are surfaced to the caller, unlike grading
// which fails open.
type GenerationService interface {
	Generate(ctx context.Context, payload dto.GenerateQuestionsRequest) ([]dto.QuestionResponse, error)
}

type generationService struct {
	generator ai.Generator
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewGenerationService constructs the question generation service.
func NewGenerationService(generator ai.Generator, validate *validator.Validate, logger zerolog.Logger) GenerationService {
	return &generationService{
		generator: generator,
		validator: validate,
		logger:    logger.With().Str("component", "generation_service").Logger(),
	}
}

func (s *generationService) Generate(ctx context.Context, payload dto.GenerateQuestionsRequest) ([]dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	count := payload.Count
	if count <= 0 {
		count = defaultGeneratedCount
	}
	filter := ai.TypeFilter(payload.Type)
	if filter == "" {
		filter = ai.TypeFilterMixed
	}

	drafted, err := s.generator.Generate(ctx, ai.GenerationInput{
		Topic:  payload.Topic,
		Count:  count,
		Filter: filter,
	})
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	questions := make([]dto.QuestionResponse, 0, len(drafted))
	for _, draft := range drafted {
		question := models.Question{
			ID:                 uuid.NewString(),
			Text:               draft.Text,
			Type:               models.QuestionType(draft.Type),
			Marks:              draft.Marks,
			Options:            draft.Options,
			CorrectOptionIndex: draft.CorrectOptionIndex,
			Rubric:             draft.Rubric,
		}
		if question.Marks <= 0 {
			question.Marks = defaultQuestionMarks
		}
		if question.Options == nil {
			question.Options = []string{}
		}

		index := question.CorrectOptionIndex
		item := dto.QuestionResponse{
			ID:      question.ID,
			Text:    question.Text,
			Type:    string(question.Type),
			Marks:   question.Marks,
			Options: question.Options,
			Rubric:  question.Rubric,
		}
		if question.Type == models.QuestionTypeMCQ {
			item.CorrectOptionIndex = &index
		}
		questions = append(questions, item)
	}

	s.logger.Info().Str("topic", payload.Topic).Int("requested", count).Int("returned", len(questions)).Msg("questions generated")
	return questions, nil
}
