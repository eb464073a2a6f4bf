package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrConflict classifies requests that clash with an existing identity.
	ErrConflict = errors.New("conflict")
	// ErrValidation classifies requests rejected before reaching storage.
	ErrValidation = errors.New("validation failed")
)

// DuplicateIDError is returned by Create when an item with ID already exists.
type DuplicateIDError struct {
	ID uuid.UUID
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("a todo item with ID %s already exists", e.ID)
}

func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrConflict
}

// IDMismatchError is returned by Update when the addressed id and the
// body id differ.
type IDMismatchError struct {
	PathID uuid.UUID
	BodyID uuid.UUID
}

func (e *IDMismatchError) Error() string {
	return fmt.Sprintf("mismatched identifier: path id %s does not match item id %s", e.PathID, e.BodyID)
}

func (e *IDMismatchError) Is(target error) bool {
	return target == ErrConflict || target == ErrValidation
}

type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
