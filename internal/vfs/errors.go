package vfs

import (
	"errors"
	"fmt"
)

// ErrNotFound covers both "no such entry" and "entry owned by someone else";
// callers cannot tell the two apart.
var ErrNotFound = errors.New("entry not found")

// ErrUploadWindowClosed is returned by every mutating operation once the
// global deadline has passed or the timer is inactive.
var ErrUploadWindowClosed = errors.New("upload deadline has passed")

// ValidationError rejects malformed names or paths before any side effect.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// ConflictError reports a duplicate sibling name on explicit folder creation.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("an entry named %q already exists here", e.Name)
}

// StorageError wraps an object-store failure. The core does not retry;
// retry policy, if any, belongs to the adapter.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("object store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
