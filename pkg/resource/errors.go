package resource

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every *NotFoundError
var ErrNotFound = errors.New("not found")

// NotFoundError is returned when no record with the requested id exists.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Collection, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
