// File: internal/services/chat/errors.go
package chat

import "fmt"

type ErrorType string

const (
	ErrTypeConfig      ErrorType = "CONFIG"
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeSession     ErrorType = "SESSION"
	ErrTypeIngestion   ErrorType = "INGESTION"
	ErrTypeRetrieval   ErrorType = "RETRIEVAL"
	ErrTypeCompletion  ErrorType = "COMPLETION"
	ErrTypeStreaming   ErrorType = "STREAMING"
	ErrTypePersistence ErrorType = "PERSISTENCE"
	ErrTypeNotFound    ErrorType = "NOT_FOUND"
)

type ChatError struct {
	Type      ErrorType
	Operation string
	Message   string
	ChatID    string
	UserKey   string
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}

func NewValidationError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewSessionError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeSession, Operation: operation, Message: msg, Cause: cause}
}

func NewPersistenceError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypePersistence, Operation: operation, Message: msg, Cause: cause}
}

func NewStreamingError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeStreaming, Operation: operation, Message: msg, Cause: cause}
}
