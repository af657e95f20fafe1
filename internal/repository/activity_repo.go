package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/smartcia/assessment-api/internal/kv"
	"github.com/smartcia/assessment-api/internal/models"
)

// ActivityLogRepository persists the append-only audit trail.
type ActivityLogRepository interface {
	Append(ctx context.Context, entry models.ActivityLog) error
	ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

type activityLogRepository struct {
	store kv.Store
}

// NewActivityLogRepository instantiates the repository.
func NewActivityLogRepository(store kv.Store) ActivityLogRepository {
	return &activityLogRepository{store: store}
}

func (r *activityLogRepository) load(ctx context.Context) ([]models.ActivityLog, error) {
	raw, err := r.store.Get(ctx, kv.KeyActivity)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return []models.ActivityLog{}, nil
		}
		return nil, err
	}

	var entries []models.ActivityLog
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode activity collection: %w", err)
	}
	return entries, nil
}

func (r *activityLogRepository) Append(ctx context.Context, entry models.ActivityLog) error {
	entries, err := r.load(ctx)
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode activity collection: %w", err)
	}
	return r.store.Set(ctx, kv.KeyActivity, raw)
}

// ListRecent returns up to limit entries, newest first.
func (r *activityLogRepository) ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	entries, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.ActivityLog, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, entries[i])
	}
	return out, nil
}
