// File: internal/services/extract/interface.go
package extract

import "context"

// DocumentExtractor converts uploaded document bytes into plain text.
type DocumentExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// ImageDescriber produces a natural-language caption for an image.
// An empty caption is a valid outcome, not an error.
type ImageDescriber interface {
	Describe(ctx context.Context, data []byte) (string, error)
}

// Logger interface for extraction operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
