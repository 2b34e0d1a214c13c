// File: internal/services/storage/errors.go
package storage

import "fmt"

// ErrNotConfigured is returned by the disabled store when no blob
// backend was configured. Ingestion treats it as a per-file failure.
var ErrNotConfigured = fmt.Errorf("object storage is not configured")

type StorageError struct {
	Operation string
	Key       string
	Message   string
	Cause     error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage error in %s for %q: %s (caused by: %v)", e.Operation, e.Key, e.Message, e.Cause)
	}
	return fmt.Sprintf("storage error in %s for %q: %s", e.Operation, e.Key, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

func NewStorageError(operation, key, message string, cause error) *StorageError {
	return &StorageError{Operation: operation, Key: key, Message: message, Cause: cause}
}
