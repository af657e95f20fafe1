package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smartcia/assessment-api/internal/dto"
	"github.com/smartcia/assessment-api/pkg/ai"
)

type scriptedGenerator struct {
	lastInput ai.GenerationInput
	questions []ai.GeneratedQuestion
	err       error
}

func (s *scriptedGenerator) Generate(_ context.Context, input ai.GenerationInput) ([]ai.GeneratedQuestion, error) {
	s.lastInput = input
	return s.questions, s.err
}

func TestGenerateAssignsIDsAndDefaults(t *testing.T) {
	generator := &scriptedGenerator{
		questions: []ai.GeneratedQuestion{
			{Text: "2+2?", Type: "MCQ", Marks: 5, Options: []string{"3", "4", "5", "6"}, CorrectOptionIndex: 1},
			{Text: "Explain DNS.", Type: "SHORT_ANSWER", Rubric: "resolution steps"},
		},
	}
	svc := NewGenerationService(generator, testValidator(), testLogger())

	questions, err := svc.Generate(context.Background(), dto.GenerateQuestionsRequest{Topic: "networking"})
	require.NoError(t, err)
	require.Len(t, questions, 2)

	// count defaults to 3, filter to MIXED
	require.Equal(t, 3, generator.lastInput.Count)
	require.Equal(t, ai.TypeFilterMixed, generator.lastInput.Filter)

	require.NotEmpty(t, questions[0].ID)
	require.NotEmpty(t, questions[1].ID)
	require.NotEqual(t, questions[0].ID, questions[1].ID)

	// missing marks default to 5, missing options to an empty slice
	require.Equal(t, 5.0, questions[1].Marks)
	require.NotNil(t, questions[1].Options)
	require.Empty(t, questions[1].Options)

	require.NotNil(t, questions[0].CorrectOptionIndex)
	require.Equal(t, 1, *questions[0].CorrectOptionIndex)
	require.Nil(t, questions[1].CorrectOptionIndex)
}

func TestGeneratePropagatesFailure(t *testing.T) {
	generator := &scriptedGenerator{err: fmt.Errorf("model overloaded")}
	svc := NewGenerationService(generator, testValidator(), testLogger())

	_, err := svc.Generate(context.Background(), dto.GenerateQuestionsRequest{Topic: "networking", Count: 2, Type: "MCQ"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "model overloaded")
}

func TestGenerateValidatesRequest(t *testing.T) {
	svc := NewGenerationService(&scriptedGenerator{}, testValidator(), testLogger())

	_, err := svc.Generate(context.Background(), dto.GenerateQuestionsRequest{Topic: ""})
	require.Error(t, err)

	_, err = svc.Generate(context.Background(), dto.GenerateQuestionsRequest{Topic: "networking", Type: "ESSAY"})
	require.Error(t, err)
}
