// File: internal/services/extract/config.go
package extract

import (
	"errors"
	"time"
)

type Config struct {
	// Document analysis backend (PDF OCR)
	AnalyzerEndpoint string
	AnalyzerKey      string

	// Vision backend (image captioning)
	VisionEndpoint string
	VisionKey      string

	// Operation settings
	Timeout      time.Duration
	PollInterval time.Duration // delay between analyze-result polls
	MaxPolls     int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:      60 * time.Second,
		PollInterval: 2 * time.Second,
		MaxPolls:     30,
	}
}

func (c *Config) ValidateAnalyzer() error {
	if c.AnalyzerEndpoint == "" || c.AnalyzerKey == "" {
		return errors.New("document analyzer endpoint and key are required")
	}
	return nil
}

func (c *Config) ValidateVision() error {
	if c.VisionEndpoint == "" || c.VisionKey == "" {
		return errors.New("vision endpoint and key are required")
	}
	return nil
}
