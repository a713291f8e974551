package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every lookup miss, whatever the collection.
	ErrNotFound = errors.New("record not found")
	// ErrStale is matched when a record changed under a pending write.
	ErrStale = errors.New("record was modified concurrently")
)

// NotFoundError names the collection and id that were missing.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StaleError names the record that changed under a pending write.
type StaleError struct {
	Entity string
	ID     uint
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("%s %d was modified by another request", e.Entity, e.ID)
}

func (e *StaleError) Is(target error) bool {
	return target == ErrStale
}
