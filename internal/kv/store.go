package kv

import (
	"context"
	"errors"
)

// Collection keys used by the repositories. Each key holds one JSON document
// (an array for the entity collections, a single object for the session).
const (
	KeyExams       = "smartcia_exams"
	KeySubmissions = "smartcia_submissions"
	KeyFeedback    = "smartcia_feedback"
	KeyActivity    = "smartcia_activity"
	KeyCurrentUser = "smartcia_current_user"
)

// ErrKeyNotFound indicates the key has never been written or was removed.
var ErrKeyNotFound = errors.New("kv: key not found")

// Store is a named-collection key-value store holding raw JSON documents.
// Writers replace the whole document under a key; there are no partial
// updates and no cross-key transactions.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
