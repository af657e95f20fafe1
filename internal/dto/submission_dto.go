package dto

import (
	"time"

	"github.com/smartcia/assessment-api/internal/models"
)

// SubmitRequest carries a completed answer set. Answers maps canonical
// question ids to the raw answer: the selected option text for MCQs, free
// text otherwise. Questions missing from the map are graded as empty.
type SubmitRequest struct {
	ExamID  string            `json:"exam_id" validate:"required"`
	Answers map[string]string `json:"answers"`
}

// SubmissionFilter describes query filters for listing submissions.
type SubmissionFilter struct {
	ExamID    *string `query:"exam_id"`
	StudentID *string `query:"student_id"`
}

// GradeRevisionRequest overrides one answer's marks inside a submission.
type GradeRevisionRequest struct {
	QuestionID string  `json:"question_id" validate:"required"`
	NewMarks   float64 `json:"new_marks" validate:"gte=0"`
}

// AnswerResponse serializes one graded answer.
type AnswerResponse struct {
	QuestionID    string  `json:"question_id"`
	StudentAnswer string  `json:"student_answer"`
	ObtainedMarks float64 `json:"obtained_marks"`
	Feedback      string  `json:"feedback"`
	IsGraded      bool    `json:"is_graded"`
}

// SubmissionResponse serializes a submission.
type SubmissionResponse struct {
	ID          string           `json:"id"`
	ExamID      string           `json:"exam_id"`
	StudentID   string           `json:"student_id"`
	StudentName string           `json:"student_name"`
	Answers     []AnswerResponse `json:"answers"`
	TotalScore  float64          `json:"total_score"`
	MaxScore    float64          `json:"max_score"`
	SubmittedAt time.Time        `json:"submitted_at"`
	AIEvaluated bool             `json:"ai_evaluated"`
}

// NewSubmissionResponse converts a submission record.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	answers := make([]AnswerResponse, 0, len(submission.Answers))
	for _, a := range submission.Answers {
		answers = append(answers, AnswerResponse{
			QuestionID:    a.QuestionID,
			StudentAnswer: a.StudentAnswer,
			ObtainedMarks: a.ObtainedMarks,
			Feedback:      a.Feedback,
			IsGraded:      a.IsGraded,
		})
	}

	return SubmissionResponse{
		ID:          submission.ID,
		ExamID:      submission.ExamID,
		StudentID:   submission.StudentID,
		StudentName: submission.StudentName,
		Answers:     answers,
		TotalScore:  submission.TotalScore,
		MaxScore:    submission.MaxScore,
		SubmittedAt: submission.SubmittedAt,
		AIEvaluated: submission.AIEvaluated,
	}
}

// NewSubmissionResponseSlice converts a list of submissions.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	out := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		out = append(out, NewSubmissionResponse(submission))
	}
	return out
}
