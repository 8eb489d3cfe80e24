package model

import "fmt"

// ValidationError reports a missing or empty required field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError reports that a referenced entity does not exist
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

// StorageError wraps a failed query or transaction
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err unless it already carries a taxonomy type
func NewStorageError(op string, err error) error {
	switch err.(type) {
	case *ValidationError, *NotFoundError, *StorageError:
		return err
	}
	return &StorageError{Op: op, Err: err}
}
