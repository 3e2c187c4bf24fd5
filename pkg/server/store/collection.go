package store

import "context"

// Collection abstracts whole-collection persistence for one record kind.
type Collection[T any] interface {
	// Name returns the collection name (e.g. "organizations").
	Name() string

	// LoadAll reads and parses the entire collection in stored order.
	// Returns a *ReadError if the collection is missing or malformed.
	LoadAll(ctx context.Context) ([]T, error)

	// SaveAll replaces the entire collection. A subsequent LoadAll observes
	// either the old or the new content, never a mix.
	// Returns a *WriteError on failure.
	SaveAll(ctx context.Context, records []T) error
}

// Initializer is implemented by collections that can create themselves
// empty when they do not exist yet.
type Initializer interface {
	Ensure(ctx context.Context) error
}

// RawCollection is implemented by collections that can read and write their
// persisted JSON array unchanged, without decoding it into records.
type RawCollection interface {
	// LoadRaw returns the persisted document. Returns a *ReadError if the
	// collection is missing.
	LoadRaw(ctx context.Context) ([]byte, error)

	// SaveRaw replaces the persisted document with data, which the caller
	// has already validated. Returns a *WriteError on failure.
	SaveRaw(ctx context.Context, data []byte) error
}
