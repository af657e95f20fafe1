package models

import "time"

// Answer records one graded response inside a submission. ObtainedMarks is
// only meaningful once IsGraded is true and is always within [0, marks].
type Answer struct {
	QuestionID    string  `json:"question_id"`
	StudentAnswer string  `json:"student_answer"`
	ObtainedMarks float64 `json:"obtained_marks"`
	Feedback      string  `json:"feedback"`
	IsGraded      bool    `json:"is_graded"`
}

// Submission is a student's graded attempt at an exam. Answers follow the
// canonical question order of the exam at submission time.
type Submission struct {
	ID          string    `json:"id"`
	ExamID      string    `json:"exam_id"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	Answers     []Answer  `json:"answers"`
	TotalScore  float64   `json:"total_score"`
	MaxScore    float64   `json:"max_score"`
	SubmittedAt time.Time `json:"submitted_at"`
	AIEvaluated bool      `json:"ai_evaluated"`
}

// AnswerIndexByQuestion returns the position of the answer for the given
// question, or -1 when absent.
func (s Submission) AnswerIndexByQuestion(questionID string) int {
	for i, a := range s.Answers {
		if a.QuestionID == questionID {
			return i
		}
	}
	return -1
}

// RecomputeTotal re-derives TotalScore from the answers. Every mutation of an
// answer's marks must call this; the stored total is never edited directly.
func (s *Submission) RecomputeTotal() {
	var total float64
	for _, a := range s.Answers {
		total += a.ObtainedMarks
	}
	s.TotalScore = total
}
