package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/smartcia/assessment-api/internal/kv"
	"github.com/smartcia/assessment-api/internal/models"
)

// ExamFilter narrows exam listings.
type ExamFilter struct {
	CreatedBy     *string
	Subject       *string
	PublishedOnly bool
}

// ExamRepository defines data operations for canonical exams.
type ExamRepository interface {
	List(ctx context.Context, filter ExamFilter) ([]models.Exam, error)
	GetByID(ctx context.Context, id string) (models.Exam, error)
	Save(ctx context.Context, exam models.Exam) error
}

type examRepository struct {
	store kv.Store
}

// NewExamRepository instantiates the repository.
func NewExamRepository(store kv.Store) ExamRepository {
	return &examRepository{store: store}
}

func (r *examRepository) load(ctx context.Context) ([]models.Exam, error) {
	raw, err := r.store.Get(ctx, kv.KeyExams)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return []models.Exam{}, nil
		}
		return nil, err
	}

	var exams []models.Exam
	if err := json.Unmarshal(raw, &exams); err != nil {
		return nil, fmt.Errorf("decode exams collection: %w", err)
	}
	return exams, nil
}

func (r *examRepository) persist(ctx context.Context, exams []models.Exam) error {
	raw, err := json.Marshal(exams)
	if err != nil {
		return fmt.Errorf("encode exams collection: %w", err)
	}
	return r.store.Set(ctx, kv.KeyExams, raw)
}

func (r *examRepository) List(ctx context.Context, filter ExamFilter) ([]models.Exam, error) {
	exams, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Exam, 0, len(exams))
	for _, exam := range exams {
		if filter.CreatedBy != nil && exam.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.Subject != nil && exam.Subject != *filter.Subject {
			continue
		}
		if filter.PublishedOnly && !exam.IsPublished {
			continue
		}
		filtered = append(filtered, exam)
	}

	return filtered, nil
}

func (r *examRepository) GetByID(ctx context.Context, id string) (models.Exam, error) {
	exams, err := r.load(ctx)
	if err != nil {
		return models.Exam{}, err
	}

	for _, exam := range exams {
		if exam.ID == id {
			return exam, nil
		}
	}

	return models.Exam{}, ErrNotFound
}

// Save upserts by id: an existing exam is replaced in place, a new one is
// appended, preserving collection order.
func (r *examRepository) Save(ctx context.Context, exam models.Exam) error {
	exams, err := r.load(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range exams {
		if exams[i].ID == exam.ID {
			exams[i] = exam
			replaced = true
			break
		}
	}
	if !replaced {
		exams = append(exams, exam)
	}

	return r.persist(ctx, exams)
}
