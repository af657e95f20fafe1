package repository

import "errors"

// ErrNotFound indicates the requested record does not exist in its collection.
var ErrNotFound = errors.New("record not found")
