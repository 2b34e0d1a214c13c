// File: internal/services/chat/streaming.go
package chat

import (
	"context"
	"strings"

	"github.com/mahluminnovations/gymengine/internal/domain"
	"github.com/mahluminnovations/gymengine/internal/services/ingest"
)

// StreamHandlers are the caller's hooks for a streamed turn. OnDelta
// receives each fragment in arrival order; returning an error from it
// (a disconnected client, a failed write) aborts the stream. OnFinal
// fires exactly once, after clean completion, with the post-processed
// reply.
type StreamHandlers struct {
	OnDelta func(fragment string) error
	OnFinal func(visible string)
}

// Stream handles one streaming chat turn. Fragments are relayed as they
// arrive with no buffering beyond the running accumulator, which stays
// local to this call. Finalize-and-persist runs only on clean stream
// completion; a mid-stream failure returns an error and the partial
// text is discarded, never persisted. This asymmetry with blocking mode
// is deliberate.
func (s *Service) Stream(ctx context.Context, userKey, chatID, userMessage string, uploads []ingest.Upload, handlers StreamHandlers) (string, error) {
	if strings.TrimSpace(userMessage) == "" {
		return "", NewValidationError("stream", "user message is required")
	}

	sess, isNew, err := s.sessions.CreateOrLoad(ctx, userKey, chatID)
	if err != nil {
		return "", NewSessionError("stream", "resolving session failed", err)
	}
	s.logger.Info("stream turn started", "user_key", userKey, "chat_id", sess.ChatID, "is_new", isNew, "uploads", len(uploads))

	var contextNotes []string
	if len(uploads) > 0 {
		contextNotes = s.ingestor.Ingest(ctx, sess, uploads)
	}

	prompt := assemblePrompt(sess, contextNotes, userMessage)
	sess.AppendMessage(domain.RoleUser, userMessage)

	var accumulated strings.Builder
	streamCtx, cancel := context.WithTimeout(ctx, s.config.StreamTimeout)
	defer cancel()

	streamErr := s.ai.StreamCompletion(streamCtx, s.config.ChatModel, prompt, func(fragment string) error {
		if err := handlers.OnDelta(fragment); err != nil {
			return err
		}
		accumulated.WriteString(fragment)
		return nil
	})
	if streamErr != nil {
		s.logger.Error("stream interrupted, discarding partial reply",
			"chat_id", sess.ChatID, "partial_length", accumulated.Len(), "error", streamErr)
		return "", NewStreamingError("stream", "completion stream failed", streamErr)
	}

	reply := accumulated.String()
	visible := s.Finalize(ctx, reply)
	sess.AppendMessage(domain.RoleAssistant, reply)

	finalChatID, err := s.sessions.Save(ctx, sess)
	if err != nil {
		return "", NewPersistenceError("stream", "saving session failed", err)
	}

	if handlers.OnFinal != nil {
		handlers.OnFinal(visible)
	}

	s.logger.Info("stream turn persisted", "chat_id", finalChatID, "reply_length", len(reply))
	return finalChatID, nil
}
