// File: internal/services/extract/errors.go
package extract

import "fmt"

// ExtractionError reports a failed text extraction for a single upload.
// It is isolated to that file: ingestion logs it and continues with the
// rest of the batch.
type ExtractionError struct {
	Kind      string // "pdf", "docx", "image"
	Operation string
	Message   string
	Cause     error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s extraction error in %s: %s (caused by: %v)", e.Kind, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s extraction error in %s: %s", e.Kind, e.Operation, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

func NewExtractionError(kind, operation, message string, cause error) *ExtractionError {
	return &ExtractionError{Kind: kind, Operation: operation, Message: message, Cause: cause}
}
