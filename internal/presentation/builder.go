// Package presentation produces randomized display copies of canonical exams.
// A presentation view is never used for grading; it only needs to carry
// question and option identity so a selected answer can round-trip back to
// the canonical exam at submission time.
package presentation

import (
	"math/rand"
	"time"

	"github.com/smartcia/assessment-api/internal/models"
)

// Builder creates shuffled exam views from an injected random source, so
// tests can seed it for reproducible permutations.
type Builder struct {
	rng *rand.Rand
}

// NewBuilder wraps the provided random source. A nil source falls back to a
// time-seeded one.
func NewBuilder(rng *rand.Rand) *Builder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Builder{rng: rng}
}

// Build returns a deep, independent copy of the exam with the question order
// and each MCQ's option order uniformly shuffled (Fisher-Yates). The copy's
// CorrectOptionIndex fields are left untouched: they become meaningless in
// the view, and grading resolves correctness by option text against the
// canonical exam anyway.
func (b *Builder) Build(canonical models.Exam) models.Exam {
	view := deepCopy(canonical)

	b.rng.Shuffle(len(view.Questions), func(i, j int) {
		view.Questions[i], view.Questions[j] = view.Questions[j], view.Questions[i]
	})

	for qi := range view.Questions {
		question := &view.Questions[qi]
		if question.Type != models.QuestionTypeMCQ {
			continue
		}
		b.rng.Shuffle(len(question.Options), func(i, j int) {
			question.Options[i], question.Options[j] = question.Options[j], question.Options[i]
		})
	}

	return view
}

func deepCopy(exam models.Exam) models.Exam {
	copied := exam
	copied.Questions = make([]models.Question, len(exam.Questions))
	for i, q := range exam.Questions {
		question := q
		if q.Options != nil {
			question.Options = append([]string(nil), q.Options...)
		}
		copied.Questions[i] = question
	}
	return copied
}
