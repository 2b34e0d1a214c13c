// File: internal/handlers/contact_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mahluminnovations/gymengine/internal/services"
	"github.com/mahluminnovations/gymengine/internal/services/email"
)

// ContactHandler forwards contact-form submissions to the configured
// notification mailbox.
type ContactHandler struct {
	Sender email.Sender
	From   string
	To     string
	Logger services.Logger
}

func NewContactHandler(sender email.Sender, from, to string, logger services.Logger) *ContactHandler {
	return &ContactHandler{Sender: sender, From: from, To: to, Logger: logger}
}

// SubmitContact accepts a contact-form payload and mails it onward.
func (h *ContactHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Company   string `json:"company"`
		Email     string `json:"email"`
		Note      string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		writeError(w, "email is required", http.StatusBadRequest)
		return
	}

	if h.Sender == nil {
		writeError(w, "Contact form is not available", http.StatusServiceUnavailable)
		return
	}

	subject := fmt.Sprintf("New contact request from %s %s", body.FirstName, body.LastName)
	message := fmt.Sprintf(
		"Name: %s %s\nCompany: %s\nEmail: %s\n\n%s",
		body.FirstName, body.LastName, body.Company, body.Email, body.Note,
	)

	if err := h.Sender.Send(r.Context(), h.From, h.To, subject, message); err != nil {
		h.Logger.Error("contact mail delivery failed", "email", body.Email, "error", err)
		writeError(w, "Could not send message", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
