package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/model"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server/store"
)

// Ensure Collection implements store.Collection and store.RawCollection
var (
	_ store.Collection[struct{}] = (*Collection[struct{}])(nil)
	_ store.RawCollection        = (*Collection[struct{}])(nil)
)

// Collection implements store.Collection using one row of the collections table
type Collection[T any] struct {
	db   *gorm.DB
	name string
}

// NewCollection creates a new Collection
func NewCollection[T any](db *gorm.DB, name string) *Collection[T] {
	return &Collection[T]{db: db, name: name}
}

// Name returns the collection name
func (s *Collection[T]) Name() string {
	return s.name
}

// LoadRaw returns the stored jsonb document
func (s *Collection[T]) LoadRaw(ctx context.Context) ([]byte, error) {
	var row model.CollectionRow
	result := s.db.WithContext(ctx).Raw(`SELECT records FROM collections WHERE name = ?`, s.name).Scan(&row)
	if result.Error != nil {
		return nil, &store.ReadError{Collection: s.name, Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return nil, &store.ReadError{Collection: s.name, Err: fmt.Errorf("collection %q does not exist", s.name)}
	}
	return []byte(row.Records), nil
}

// LoadAll reads the whole collection
func (s *Collection[T]) LoadAll(ctx context.Context) ([]T, error) {
	data, err := s.LoadRaw(ctx)
	if err != nil {
		return nil, err
	}

	records, err := store.DecodeRecords[T](data)
	if err != nil {
		return nil, &store.ReadError{Collection: s.name, Err: err}
	}
	return records, nil
}

// SaveAll replaces the whole collection
func (s *Collection[T]) SaveAll(ctx context.Context, records []T) error {
	data, err := store.EncodeRecords(records)
	if err != nil {
		return &store.WriteError{Collection: s.name, Err: err}
	}
	return s.SaveRaw(ctx, data)
}

// SaveRaw replaces the stored document with data
func (s *Collection[T]) SaveRaw(ctx context.Context, data []byte) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Exec(`
			INSERT INTO collections (name, records, updated_at)
			VALUES (?, CAST(? AS jsonb), NOW())
			ON CONFLICT (name) DO UPDATE SET records = EXCLUDED.records, updated_at = EXCLUDED.updated_at
		`, s.name, string(data)).Error
	})
	if err != nil {
		return &store.WriteError{Collection: s.name, Err: err}
	}
	return nil
}

// Ensure creates an empty collection row if none exists
func (s *Collection[T]) Ensure(ctx context.Context) error {
	err := s.db.WithContext(ctx).Exec(`
		INSERT INTO collections (name, records, updated_at)
		VALUES (?, '[]'::jsonb, NOW())
		ON CONFLICT (name) DO NOTHING
	`, s.name).Error
	if err != nil {
		return &store.WriteError{Collection: s.name, Err: err}
	}
	return nil
}
