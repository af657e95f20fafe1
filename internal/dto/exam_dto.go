package dto

import (
	"time"

	"github.com/smartcia/assessment-api/internal/models"
)

// QuestionPayload describes a question in exam create/update requests.
type QuestionPayload struct {
	Text               string   `json:"text" validate:"required"`
	Type               string   `json:"type" validate:"required,oneof=MCQ SHORT_ANSWER LONG_ANSWER"`
	Marks              float64  `json:"marks" validate:"required,gt=0"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index" validate:"gte=0"`
	Rubric             string   `json:"rubric"`
	SampleAnswer       string   `json:"sample_answer"`
}

// ExamCreateRequest is the payload for authoring an exam.
type ExamCreateRequest struct {
	Title           string            `json:"title" validate:"required,min=3"`
	Subject         string            `json:"subject" validate:"required"`
	DurationMinutes int               `json:"duration_minutes" validate:"required,gt=0"`
	Questions       []QuestionPayload `json:"questions" validate:"required,min=1,dive"`
}

// ExamFilter describes query filters for listing exams. IncludeAnswerKeys is
// decided by the handler from the requester's role, never from the query.
type ExamFilter struct {
	CreatedBy         *string `query:"created_by"`
	Subject           *string `query:"subject"`
	PublishedOnly     bool    `query:"published"`
	IncludeAnswerKeys bool    `query:"-"`
}

// QuestionResponse serializes a question. The correct option index and rubric
// are only included for teacher-facing views.
type QuestionResponse struct {
	ID                 string   `json:"id"`
	Text               string   `json:"text"`
	Type               string   `json:"type"`
	Marks              float64  `json:"marks"`
	Options            []string `json:"options,omitempty"`
	CorrectOptionIndex *int     `json:"correct_option_index,omitempty"`
	Rubric             string   `json:"rubric,omitempty"`
	SampleAnswer       string   `json:"sample_answer,omitempty"`
}

// ExamResponse serializes an exam.
type ExamResponse struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Subject         string             `json:"subject"`
	DurationMinutes int                `json:"duration_minutes"`
	Questions       []QuestionResponse `json:"questions"`
	CreatedBy       string             `json:"created_by"`
	IsPublished     bool               `json:"is_published"`
	CreatedAt       time.Time          `json:"created_at"`
	MaxScore        float64            `json:"max_score"`
}

// NewExamResponse converts a canonical exam for teacher-facing endpoints.
func NewExamResponse(exam models.Exam) ExamResponse {
	return newExamResponse(exam, true)
}

// NewExamPresentationResponse converts a shuffled exam view for students,
// withholding answer keys and rubrics.
func NewExamPresentationResponse(view models.Exam) ExamResponse {
	return newExamResponse(view, false)
}

func newExamResponse(exam models.Exam, includeKeys bool) ExamResponse {
	questions := make([]QuestionResponse, 0, len(exam.Questions))
	for _, q := range exam.Questions {
		item := QuestionResponse{
			ID:      q.ID,
			Text:    q.Text,
			Type:    string(q.Type),
			Marks:   q.Marks,
			Options: q.Options,
		}
		if includeKeys {
			index := q.CorrectOptionIndex
			if q.Type == models.QuestionTypeMCQ {
				item.CorrectOptionIndex = &index
			}
			item.Rubric = q.Rubric
			item.SampleAnswer = q.SampleAnswer
		}
		questions = append(questions, item)
	}

	return ExamResponse{
		ID:              exam.ID,
		Title:           exam.Title,
		Subject:         exam.Subject,
		DurationMinutes: exam.DurationMinutes,
		Questions:       questions,
		CreatedBy:       exam.CreatedBy,
		IsPublished:     exam.IsPublished,
		CreatedAt:       exam.CreatedAt,
		MaxScore:        exam.MaxScore(),
	}
}

// NewExamResponseSlice converts a list of exams. Answer keys and rubrics are
// withheld unless includeKeys is set, the same rule the presentation view
// applies per exam.
func NewExamResponseSlice(exams []models.Exam, includeKeys bool) []ExamResponse {
	out := make([]ExamResponse, 0, len(exams))
	for _, exam := range exams {
		out = append(out, newExamResponse(exam, includeKeys))
	}
	return out
}
