// File: internal/services/storage/interface.go
package storage

import "context"

// ObjectStore handles raw upload blobs. Keys are derived from filenames;
// the returned URL is what gets recorded on the owning session.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Logger interface for storage operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
