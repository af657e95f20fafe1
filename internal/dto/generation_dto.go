package dto

// GenerateQuestionsRequest asks the AI generator to draft exam questions.
type GenerateQuestionsRequest struct {
	Topic string `json:"topic" validate:"required,min=2"`
	Count int    `json:"count" validate:"omitempty,gte=1,lte=20"`
	Type  string `json:"type" validate:"omitempty,oneof=MIXED MCQ SHORT_ANSWER"`
}
