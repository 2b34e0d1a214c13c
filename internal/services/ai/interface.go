// File: internal/services/ai/interface.go
package ai

import "context"

// Message is one turn handed to the completion engine. The orchestrator
// owns ordering; providers must never reorder or merge turns.
type Message struct {
	Role    string
	Content string
}

// ProviderStatus represents completion provider health
type ProviderStatus struct {
	IsHealthy bool
	Message   string
}

// CompletionProvider handles blocking and streaming chat completions.
// StreamCompletion delivers each text fragment to onDelta in arrival
// order; returning an error from onDelta aborts the stream.
type CompletionProvider interface {
	GetCompletion(ctx context.Context, model string, messages []Message) (string, error)
	StreamCompletion(ctx context.Context, model string, messages []Message, onDelta func(string) error) error
	HealthCheck(ctx context.Context) error
}

// AIProvider combines completion capability with status reporting.
type AIProvider interface {
	CompletionProvider
	GetStatus(ctx context.Context) ProviderStatus
}
