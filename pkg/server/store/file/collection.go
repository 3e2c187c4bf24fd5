package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/doodlesbykumbi/ezra-in-go/pkg/server/store"
)

// Ensure Collection implements store.Collection and store.RawCollection
var (
	_ store.Collection[struct{}] = (*Collection[struct{}])(nil)
	_ store.RawCollection        = (*Collection[struct{}])(nil)
)

const fileMode = 0o644

// rename is swapped in tests to fail the last step of a write
var rename = os.Rename

// Collection implements store.Collection using one JSON file
type Collection[T any] struct {
	dir  string
	name string
}

// NewCollection creates a Collection stored at dir/name.json
func NewCollection[T any](dir, name string) *Collection[T] {
	return &Collection[T]{dir: dir, name: name}
}

// Name returns the collection name
func (c *Collection[T]) Name() string {
	return c.name
}

// Path returns the location of the backing file
func (c *Collection[T]) Path() string {
	return filepath.Join(c.dir, c.name+".json")
}

// LoadRaw reads the backing file as is
func (c *Collection[T]) LoadRaw(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &store.ReadError{Collection: c.name, Err: err}
	}

	data, err := os.ReadFile(c.Path())
	if err != nil {
		return nil, &store.ReadError{Collection: c.name, Err: err}
	}
	return data, nil
}

// LoadAll reads the whole collection
func (c *Collection[T]) LoadAll(ctx context.Context) ([]T, error) {
	data, err := c.LoadRaw(ctx)
	if err != nil {
		return nil, err
	}

	records, err := store.DecodeRecords[T](data)
	if err != nil {
		return nil, &store.ReadError{Collection: c.name, Err: fmt.Errorf("%s: %w", c.Path(), err)}
	}
	return records, nil
}

// SaveAll atomically replaces the whole collection
func (c *Collection[T]) SaveAll(ctx context.Context, records []T) error {
	if err := ctx.Err(); err != nil {
		return &store.WriteError{Collection: c.name, Err: err}
	}

	data, err := store.EncodeRecords(records)
	if err != nil {
		return &store.WriteError{Collection: c.name, Err: err}
	}
	return c.SaveRaw(ctx, data)
}

// SaveRaw atomically replaces the backing file with data
func (c *Collection[T]) SaveRaw(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return &store.WriteError{Collection: c.name, Err: err}
	}
	if err := writeAtomic(c.Path(), data); err != nil {
		return &store.WriteError{Collection: c.name, Err: err}
	}
	return nil
}

// Ensure creates the data directory and an empty collection if the file
// does not exist yet. An existing file is left untouched.
func (c *Collection[T]) Ensure(ctx context.Context) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return &store.WriteError{Collection: c.name, Err: err}
	}
	_, err := os.Stat(c.Path())
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return &store.WriteError{Collection: c.name, Err: err}
	}
	return c.SaveAll(ctx, nil)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	// rename is atomic within one filesystem
	return rename(tmp.Name(), path)
}
