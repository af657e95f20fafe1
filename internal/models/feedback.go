package models

import "time"

// Feedback is a student dispute about a question, resolved by a teacher.
// IsResolved starts false and only ever flips to true.
type Feedback struct {
	ID          string    `json:"id"`
	ExamID      string    `json:"exam_id"`
	QuestionID  string    `json:"question_id"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
	IsResolved  bool      `json:"is_resolved"`
}
