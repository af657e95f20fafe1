package kv

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Record is the single-table row backing the GormStore.
type Record struct {
	Key       string         `gorm:"primaryKey;size:128"`
	Value     datatypes.JSON `gorm:"type:json"`
	UpdatedAt int64          `gorm:"autoUpdateTime"`
}

// TableName keeps the table name stable across dialects.
func (Record) TableName() string {
	return "kv_records"
}

// GormStore persists collection documents in a relational kv table, backed by
// SQLite for a local profile or Postgres for a server deployment.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the kv table and wraps the connection.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate kv records: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Get fetches the document under key.
func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var record Record
	if err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return []byte(record.Value), nil
}

// Set replaces the document under key.
func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	record := Record{Key: key, Value: datatypes.JSON(value)}
	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

// Remove deletes the key. Removing an absent key is a no-op.
func (s *GormStore) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&Record{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("kv remove %s: %w", key, err)
	}
	return nil
}
