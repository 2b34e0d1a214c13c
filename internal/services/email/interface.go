// File: internal/services/email/interface.go
package email

import "context"

// ProviderStatus represents the health status of the email provider
type ProviderStatus struct {
	IsHealthy bool
	Message   string
}

// Sender delivers plain-text notification mail. Only the contact-form
// endpoint uses it; the chat core never sends email.
type Sender interface {
	Send(ctx context.Context, from, to, subject, body string) error
	HealthCheck(ctx context.Context) error
}
