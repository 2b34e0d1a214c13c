// File: internal/services/storage/config.go
package storage

import (
	"errors"
	"time"
)

type Config struct {
	// Connection settings
	ContainerURL string // Base URL of the blob container
	SASToken     string // Shared access signature query string, without leading "?"

	// Operation settings
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: 60 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.ContainerURL == "" {
		return errors.New("blob container URL is required")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}
