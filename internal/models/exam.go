package models

import (
	"fmt"
	"strings"
	"time"
)

// QuestionType enumerates the kinds of exam questions.
type QuestionType string

const (
	// QuestionTypeMCQ is a multiple-choice question graded by exact option match.
	QuestionTypeMCQ QuestionType = "MCQ"
	// QuestionTypeShortAnswer is a free-text question graded by the AI evaluator.
	QuestionTypeShortAnswer QuestionType = "SHORT_ANSWER"
	// QuestionTypeLongAnswer is an essay-style question graded by the AI evaluator.
	QuestionTypeLongAnswer QuestionType = "LONG_ANSWER"
)

// Question is a single exam question. For MCQs the options slice and
// CorrectOptionIndex are meaningful; subjective questions carry a rubric
// and/or a sample answer for the evaluator.
type Question struct {
	ID                 string       `json:"id"`
	Text               string       `json:"text"`
	Type               QuestionType `json:"type"`
	Marks              float64      `json:"marks"`
	Options            []string     `json:"options,omitempty"`
	CorrectOptionIndex int          `json:"correct_option_index"`
	Rubric             string       `json:"rubric,omitempty"`
	SampleAnswer       string       `json:"sample_answer,omitempty"`
}

// IsSubjective reports whether the question is graded by the AI evaluator.
func (q Question) IsSubjective() bool {
	return q.Type == QuestionTypeShortAnswer || q.Type == QuestionTypeLongAnswer
}

// CorrectOptionText returns the canonical text of the correct MCQ option.
// Grading compares option text, never indices, because presentation copies
// reorder options without touching CorrectOptionIndex.
func (q Question) CorrectOptionText() (string, bool) {
	if q.Type != QuestionTypeMCQ {
		return "", false
	}
	if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
		return "", false
	}
	return q.Options[q.CorrectOptionIndex], true
}

// Validate checks the structural invariants of a question.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question text is required")
	}
	if q.Marks <= 0 {
		return fmt.Errorf("question marks must be positive")
	}

	switch q.Type {
	case QuestionTypeMCQ:
		if len(q.Options) == 0 {
			return fmt.Errorf("mcq question requires options")
		}
		if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
			return fmt.Errorf("correct option index %d out of range", q.CorrectOptionIndex)
		}
	case QuestionTypeShortAnswer, QuestionTypeLongAnswer:
		if strings.TrimSpace(q.Rubric) == "" && strings.TrimSpace(q.SampleAnswer) == "" {
			return fmt.Errorf("subjective question requires a rubric or sample answer")
		}
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}

	return nil
}

// Exam is the canonical exam record. Question and option order here is the
// source of truth for grading; presentation views reorder independent copies.
type Exam struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Subject         string     `json:"subject"`
	DurationMinutes int        `json:"duration_minutes"`
	Questions       []Question `json:"questions"`
	CreatedBy       string     `json:"created_by"`
	IsPublished     bool       `json:"is_published"`
	CreatedAt       time.Time  `json:"created_at"`
}

// QuestionByID finds a question in the canonical order.
func (e Exam) QuestionByID(id string) (Question, bool) {
	for _, q := range e.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// MaxScore is the sum of all question marks.
func (e Exam) MaxScore() float64 {
	var total float64
	for _, q := range e.Questions {
		total += q.Marks
	}
	return total
}
