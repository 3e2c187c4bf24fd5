package store

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageRead matches every *ReadError
	ErrStorageRead = errors.New("storage read failed")

	// ErrStorageWrite matches every *WriteError
	ErrStorageWrite = errors.New("storage write failed")
)

// ReadError is returned when a collection cannot be loaded.
type ReadError struct {
	Collection string
	Err        error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read collection %s: %v", e.Collection, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func (e *ReadError) Is(target error) bool { return target == ErrStorageRead }

// WriteError is returned when a collection cannot be persisted.
type WriteError struct {
	Collection string
	Err        error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write collection %s: %v", e.Collection, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrStorageWrite }
