// File: internal/services/search/interface.go
package search

import "context"

// DocumentChunk is the unit sent to the full-text index. The index is
// the system of record for retrieval; chunks are not retained here
// beyond the upsert call.
type DocumentChunk struct {
	ID      string `json:"id"`
	UserKey string `json:"userKey"`
	Content string `json:"content"`
}

// Index covers the search backend capabilities the core consumes.
type Index interface {
	// BulkUpsert pushes chunks to the index and returns how many the
	// backend actually accepted. Partial success is not an error.
	BulkUpsert(ctx context.Context, chunks []DocumentChunk) (int, error)
	// Query runs a full-text search scoped to one user and returns the
	// top-k chunk texts by relevance. No results is a valid outcome.
	Query(ctx context.Context, query, userKey string, topK int) ([]string, error)
}

// RetryProvider handles retry logic for index operations
type RetryProvider interface {
	RetryWithTimeout(call func(ctx context.Context) error) error
}

// Logger interface for search operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
