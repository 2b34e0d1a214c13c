// File: internal/services/search/config.go
package search

import (
	"errors"
	"time"
)

type Config struct {
	// Connection settings
	Endpoint  string // Search service URL
	APIKey    string
	IndexName string

	// Operation settings
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	// Retrieval settings
	DefaultTopK int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		MaxRetries:  3,
		RetryDelay:  2 * time.Second,
		DefaultTopK: 3,
	}
}

func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("search endpoint is required")
	}
	if c.APIKey == "" {
		return errors.New("search API key is required")
	}
	if c.IndexName == "" {
		return errors.New("search index name is required")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}

// Configured reports whether a search backend was provided at all.
// An unconfigured index degrades retrieval to empty context instead of
// failing requests.
func (c *Config) Configured() bool {
	return c.Endpoint != "" && c.APIKey != "" && c.IndexName != ""
}
