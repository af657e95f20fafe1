package dto

import (
	"time"

	"github.com/smartcia/assessment-api/internal/models"
)

// FeedbackCreateRequest files a dispute on one question of an exam.
type FeedbackCreateRequest struct {
	ExamID     string `json:"exam_id" validate:"required"`
	QuestionID string `json:"question_id" validate:"required"`
	Text       string `json:"text" validate:"required,min=3"`
}

// FeedbackResponse serializes a dispute entry.
type FeedbackResponse struct {
	ID          string    `json:"id"`
	ExamID      string    `json:"exam_id"`
	QuestionID  string    `json:"question_id"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
	IsResolved  bool      `json:"is_resolved"`
}

// NewFeedbackResponse converts a feedback record.
func NewFeedbackResponse(feedback models.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:          feedback.ID,
		ExamID:      feedback.ExamID,
		QuestionID:  feedback.QuestionID,
		StudentID:   feedback.StudentID,
		StudentName: feedback.StudentName,
		Text:        feedback.Text,
		Timestamp:   feedback.Timestamp,
		IsResolved:  feedback.IsResolved,
	}
}

// NewFeedbackResponseSlice converts a list of feedback records.
func NewFeedbackResponseSlice(entries []models.Feedback) []FeedbackResponse {
	out := make([]FeedbackResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, NewFeedbackResponse(entry))
	}
	return out
}
