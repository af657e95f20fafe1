package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/smartcia/assessment-api/internal/kv"
	"github.com/smartcia/assessment-api/internal/models"
)

// FeedbackFilter narrows dispute listings.
type FeedbackFilter struct {
	ExamID         *string
	QuestionID     *string
	OnlyUnresolved bool
}

// FeedbackRepository defines data operations for the dispute log.
type FeedbackRepository interface {
	List(ctx context.Context, filter FeedbackFilter) ([]models.Feedback, error)
	GetByID(ctx context.Context, id string) (models.Feedback, error)
	Save(ctx context.Context, feedback models.Feedback) error
}

type feedbackRepository struct {
	store kv.Store
}

// NewFeedbackRepository instantiates the repository.
func NewFeedbackRepository(store kv.Store) FeedbackRepository {
	return &feedbackRepository{store: store}
}

func (r *feedbackRepository) load(ctx context.Context) ([]models.Feedback, error) {
	raw, err := r.store.Get(ctx, kv.KeyFeedback)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return []models.Feedback{}, nil
		}
		return nil, err
	}

	var entries []models.Feedback
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode feedback collection: %w", err)
	}
	return entries, nil
}

func (r *feedbackRepository) persist(ctx context.Context, entries []models.Feedback) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode feedback collection: %w", err)
	}
	return r.store.Set(ctx, kv.KeyFeedback, raw)
}

func (r *feedbackRepository) List(ctx context.Context, filter FeedbackFilter) ([]models.Feedback, error) {
	entries, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Feedback, 0, len(entries))
	for _, entry := range entries {
		if filter.ExamID != nil && entry.ExamID != *filter.ExamID {
			continue
		}
		if filter.QuestionID != nil && entry.QuestionID != *filter.QuestionID {
			continue
		}
		if filter.OnlyUnresolved && entry.IsResolved {
			continue
		}
		filtered = append(filtered, entry)
	}

	return filtered, nil
}

func (r *feedbackRepository) GetByID(ctx context.Context, id string) (models.Feedback, error) {
	entries, err := r.load(ctx)
	if err != nil {
		return models.Feedback{}, err
	}

	for _, entry := range entries {
		if entry.ID == id {
			return entry, nil
		}
	}

	return models.Feedback{}, ErrNotFound
}

// Save upserts by id; the resolution flag flip reuses the same path.
func (r *feedbackRepository) Save(ctx context.Context, feedback models.Feedback) error {
	entries, err := r.load(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range entries {
		if entries[i].ID == feedback.ID {
			entries[i] = feedback
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, feedback)
	}

	return r.persist(ctx, entries)
}
