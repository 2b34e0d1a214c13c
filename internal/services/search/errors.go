// File: internal/services/search/errors.go
package search

import "fmt"

// SearchError represents a search-backend error.
type SearchError struct {
	Type    string
	Message string
	Err     error
}

func (e *SearchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("search %s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("search %s error: %s", e.Type, e.Message)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

func NewOperationError(message string, err error) *SearchError {
	return &SearchError{Type: "operation", Message: message, Err: err}
}

func NewConfigError(message string) *SearchError {
	return &SearchError{Type: "config", Message: message}
}

func NewTimeoutError(message string, err error) *SearchError {
	return &SearchError{Type: "timeout", Message: message, Err: err}
}

func NewRetryError(message string, err error) *SearchError {
	return &SearchError{Type: "retry", Message: message, Err: err}
}
