package resource

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/model"
	"github.com/doodlesbykumbi/ezra-in-go/pkg/server/store"
)

// Option configures a Service
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock overrides the time source used for createdOn/updatedOn.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides the id generator. The default is a random
// (version 4) UUID.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// Service provides CRUD semantics for one record kind.
type Service[T any, PT model.Record[T]] struct {
	store store.Collection[T]
	now   func() time.Time
	newID func() string

	// mu serializes LoadAll -> SaveAll sequences
	mu sync.Mutex
}

// NewService creates a Service backed by the given collection.
func NewService[T any, PT model.Record[T]](collection store.Collection[T], opts ...Option) *Service[T, PT] {
	o := options{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Service[T, PT]{
		store: collection,
		now:   o.now,
		newID: o.newID,
	}
}

// Collection returns the name of the underlying collection
func (s *Service[T, PT]) Collection() string {
	return s.store.Name()
}

// List returns every record in stored order.
func (s *Service[T, PT]) List(ctx context.Context) ([]T, error) {
	return s.store.LoadAll(ctx)
}

// Get returns the record with the given id.
func (s *Service[T, PT]) Get(ctx context.Context, id string) (T, error) {
	var zero T

	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return zero, err
	}

	idx := indexOf[T, PT](records, id)
	if idx < 0 {
		return zero, s.notFound(id)
	}
	return records[idx], nil
}

// Create appends a new record built from fields. Any id, createdOn or
// updatedOn in fields is replaced by server-generated values.
func (s *Service[T, PT]) Create(ctx context.Context, fields T) (T, error) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return zero, err
	}

	record := fields
	now := s.timestamp()
	PT(&record).SetID(s.uniqueID(records))
	stamps := PT(&record).Stamps()
	stamps.CreatedOn = model.NewTimestamp(now)
	stamps.UpdatedOn = model.NewTimestamp(now)

	records = append(records, record)
	if err := s.store.SaveAll(ctx, records); err != nil {
		return zero, err
	}
	return record, nil
}

// Update applies patch to the record with the given id and refreshes
// updatedOn. The record keeps its position in the collection.
func (s *Service[T, PT]) Update(ctx context.Context, id string, patch model.Patch[T]) (T, error) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return zero, err
	}

	idx := indexOf[T, PT](records, id)
	if idx < 0 {
		return zero, s.notFound(id)
	}

	record := records[idx]
	original := *PT(&record).Stamps()
	if patch != nil {
		patch.Apply(&record)
	}

	// identity and provenance are not writable, whatever the patch did
	PT(&record).SetID(id)
	stamps := PT(&record).Stamps()
	stamps.CreatedOn = original.CreatedOn
	stamps.CreatedBy = original.CreatedBy
	stamps.UpdatedOn = model.NewTimestamp(s.timestamp())

	records[idx] = record
	if err := s.store.SaveAll(ctx, records); err != nil {
		return zero, err
	}
	return record, nil
}

// Delete removes the record with the given id and returns its last state.
// The remaining records keep their relative order.
func (s *Service[T, PT]) Delete(ctx context.Context, id string) (T, error) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return zero, err
	}

	idx := indexOf[T, PT](records, id)
	if idx < 0 {
		return zero, s.notFound(id)
	}

	removed := records[idx]
	records = slices.Delete(records, idx, idx+1)
	if err := s.store.SaveAll(ctx, records); err != nil {
		return zero, err
	}
	return removed, nil
}

func (s *Service[T, PT]) notFound(id string) error {
	return &NotFoundError{Collection: s.store.Name(), ID: id}
}

// timestamp returns the current time in UTC at millisecond precision, the
// resolution the stored files have always used. Two writes within one
// millisecond get the same stamp.
func (s *Service[T, PT]) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Service[T, PT]) uniqueID(records []T) string {
	for {
		id := s.newID()
		if indexOf[T, PT](records, id) < 0 {
			return id
		}
	}
}

func indexOf[T any, PT model.Record[T]](records []T, id string) int {
	for i := range records {
		if PT(&records[i]).GetID() == id {
			return i
		}
	}
	return -1
}
