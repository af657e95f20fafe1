package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/smartcia/assessment-api/internal/kv"
	"github.com/smartcia/assessment-api/internal/models"
)

// SubmissionFilter narrows submission listings.
type SubmissionFilter struct {
	ExamID    *string
	StudentID *string
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id string) (models.Submission, error)
	Save(ctx context.Context, submission models.Submission) error
}

type submissionRepository struct {
	store kv.Store
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(store kv.Store) SubmissionRepository {
	return &submissionRepository{store: store}
}

func (r *submissionRepository) load(ctx context.Context) ([]models.Submission, error) {
	raw, err := r.store.Get(ctx, kv.KeySubmissions)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return []models.Submission{}, nil
		}
		return nil, err
	}

	var submissions []models.Submission
	if err := json.Unmarshal(raw, &submissions); err != nil {
		return nil, fmt.Errorf("decode submissions collection: %w", err)
	}
	return submissions, nil
}

func (r *submissionRepository) persist(ctx context.Context, submissions []models.Submission) error {
	raw, err := json.Marshal(submissions)
	if err != nil {
		return fmt.Errorf("encode submissions collection: %w", err)
	}
	return r.store.Set(ctx, kv.KeySubmissions, raw)
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	submissions, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Submission, 0, len(submissions))
	for _, submission := range submissions {
		if filter.ExamID != nil && submission.ExamID != *filter.ExamID {
			continue
		}
		if filter.StudentID != nil && submission.StudentID != *filter.StudentID {
			continue
		}
		filtered = append(filtered, submission)
	}

	return filtered, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (models.Submission, error) {
	submissions, err := r.load(ctx)
	if err != nil {
		return models.Submission{}, err
	}

	for _, submission := range submissions {
		if submission.ID == id {
			return submission, nil
		}
	}

	return models.Submission{}, ErrNotFound
}

// Save upserts by id, so repeated persistence of the same submission id
// overwrites instead of duplicating.
func (r *submissionRepository) Save(ctx context.Context, submission models.Submission) error {
	submissions, err := r.load(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range submissions {
		if submissions[i].ID == submission.ID {
			submissions[i] = submission
			replaced = true
			break
		}
	}
	if !replaced {
		submissions = append(submissions, submission)
	}

	return r.persist(ctx, submissions)
}
