// File: internal/services/chat/config.go
package chat

import (
	"fmt"
	"time"
)

type Config struct {
	// Model Configuration
	ChatModel   string // model for chat completions
	ReportModel string // model for report expansion and titles

	// RAG Configuration
	RetrievalTopK int // documents pulled in for AskDocument

	// Performance Configuration
	Timeout       time.Duration // upper bound for a blocking completion
	StreamTimeout time.Duration // upper bound for a full streamed reply
}

func (c *Config) Validate() error {
	if c.ChatModel == "" {
		return fmt.Errorf("chat_model is required")
	}
	if c.ReportModel == "" {
		return fmt.Errorf("report_model is required")
	}
	if c.RetrievalTopK <= 0 {
		return fmt.Errorf("retrieval_top_k must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.StreamTimeout <= 0 {
		return fmt.Errorf("stream_timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		ChatModel:     "gpt-4o",
		ReportModel:   "gpt-4o",
		RetrievalTopK: 3,
		Timeout:       60 * time.Second,
		StreamTimeout: 5 * time.Minute,
	}
}
