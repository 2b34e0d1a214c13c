// File: internal/services/email/config.go
package email

import (
	"fmt"
	"time"
)

type Config struct {
	APIKey  string
	APIURL  string
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		APIURL:  "https://api.sendgrid.com/v3/mail/send",
		Timeout: 30 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("EMAIL_API_KEY is required")
	}
	if c.APIURL == "" {
		return fmt.Errorf("EMAIL_API_URL is required")
	}
	return nil
}
