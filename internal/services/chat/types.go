// File: internal/services/chat/types.go
package chat

// Logger defines the logging interface used across chat services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Result is the non-streamed outcome of one chat turn.
type Result struct {
	Reply  string `json:"reply"`
	ChatID string `json:"chatId"`
}
