package services

import (
	"errors"
	"fmt"
)

// Error taxonomy of the intake engine. Controllers map these onto HTTP
// status codes; the scheduler retries only storage errors.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflicting archive record")
	ErrNotFound   = errors.New("not found")
)

// StorageError marks a transient persistence failure. An aggregate whose
// archival hit a StorageError stays live until a later retry succeeds.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("intake storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
