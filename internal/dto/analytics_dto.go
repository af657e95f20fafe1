package dto

// StudentScore is one row in the per-exam score breakdown.
type StudentScore struct {
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	Score       float64 `json:"score"`
	MaxScore    float64 `json:"max_score"`
	Passed      bool    `json:"passed"`
}

// ExamAnalyticsResponse aggregates submission results for one exam.
type ExamAnalyticsResponse struct {
	ExamID          string         `json:"exam_id"`
	SubmissionCount int            `json:"submission_count"`
	AverageScore    float64        `json:"average_score"`
	PassRate        float64        `json:"pass_rate"`
	Scores          []StudentScore `json:"scores"`
}
