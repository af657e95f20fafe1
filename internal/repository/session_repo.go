package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/smartcia/assessment-api/internal/kv"
	"github.com/smartcia/assessment-api/internal/models"
)

// SessionRepository stores the single current-user record.
type SessionRepository interface {
	CurrentUser(ctx context.Context) (models.User, error)
	SetCurrentUser(ctx context.Context, user models.User) error
	Clear(ctx context.Context) error
}

type sessionRepository struct {
	store kv.Store
}

// NewSessionRepository instantiates the repository.
func NewSessionRepository(store kv.Store) SessionRepository {
	return &sessionRepository{store: store}
}

func (r *sessionRepository) CurrentUser(ctx context.Context) (models.User, error) {
	raw, err := r.store.Get(ctx, kv.KeyCurrentUser)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return models.User{}, fmt.Errorf("decode current user: %w", err)
	}
	return user, nil
}

func (r *sessionRepository) SetCurrentUser(ctx context.Context, user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode current user: %w", err)
	}
	return r.store.Set(ctx, kv.KeyCurrentUser, raw)
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	return r.store.Remove(ctx, kv.KeyCurrentUser)
}
