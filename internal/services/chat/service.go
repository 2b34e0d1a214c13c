// File: internal/services/chat/service.go
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/mahluminnovations/gymengine/internal/domain"
	"github.com/mahluminnovations/gymengine/internal/services/ai"
	"github.com/mahluminnovations/gymengine/internal/services/ingest"
	"github.com/mahluminnovations/gymengine/internal/services/report"
	"github.com/mahluminnovations/gymengine/internal/services/search"
	"github.com/mahluminnovations/gymengine/internal/services/session"
)

const noDocumentsMarker = "No relevant documents found."

// Service orchestrates a chat turn: session resolution, ingestion of
// attached files, prompt assembly, the completion call, post-processing
// and persistence.
type Service struct {
	config   *Config
	sessions *session.Service
	ingestor *ingest.Service
	index    search.Index
	ai       ai.CompletionProvider
	reports  *report.Cache
	logger   Logger
}

func NewService(
	config *Config,
	sessions *session.Service,
	ingestor *ingest.Service,
	index search.Index,
	aiProvider ai.CompletionProvider,
	reports *report.Cache,
	logger Logger,
) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		config:   config,
		sessions: sessions,
		ingestor: ingestor,
		index:    index,
		ai:       aiProvider,
		reports:  reports,
		logger:   logger,
	}, nil
}

// Respond handles one blocking chat turn. A failed completion call is
// downgraded to a literal error string standing in for the assistant
// message; the turn is persisted either way, so the user always gets a
// saved, visible turn.
func (s *Service) Respond(ctx context.Context, userKey, chatID, userMessage string, uploads []ingest.Upload) (*Result, error) {
	if strings.TrimSpace(userMessage) == "" {
		return nil, NewValidationError("respond", "user message is required")
	}

	sess, isNew, err := s.sessions.CreateOrLoad(ctx, userKey, chatID)
	if err != nil {
		return nil, NewSessionError("respond", "resolving session failed", err)
	}
	s.logger.Info("chat turn started", "user_key", userKey, "chat_id", sess.ChatID, "is_new", isNew, "uploads", len(uploads))

	var contextNotes []string
	if len(uploads) > 0 {
		contextNotes = s.ingestor.Ingest(ctx, sess, uploads)
	}

	prompt := assemblePrompt(sess, contextNotes, userMessage)
	sess.AppendMessage(domain.RoleUser, userMessage)

	completionCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	reply, err := s.ai.GetCompletion(completionCtx, s.config.ChatModel, prompt)
	cancel()
	if err != nil {
		s.logger.Error("completion failed", "chat_id", sess.ChatID, "error", err)
		reply = fmt.Sprintf("Error calling completion engine: %v", err)
	}

	visible := s.Finalize(ctx, reply)
	sess.AppendMessage(domain.RoleAssistant, reply)

	finalChatID, err := s.sessions.Save(ctx, sess)
	if err != nil {
		return nil, NewPersistenceError("respond", "saving session failed", err)
	}

	s.logger.Info("chat turn persisted", "chat_id", finalChatID, "reply_length", len(reply))
	return &Result{Reply: visible, ChatID: finalChatID}, nil
}

// AskDocument answers a one-shot question against the user's indexed
// documents. No retrieved chunks is a valid outcome: the model is told
// so explicitly instead of the request failing.
func (s *Service) AskDocument(ctx context.Context, userKey, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", NewValidationError("ask_document", "question is required")
	}

	chunks, err := s.index.Query(ctx, question, userKey, s.config.RetrievalTopK)
	if err != nil {
		s.logger.Error("retrieval failed, continuing without context", "user_key", userKey, "error", err)
		chunks = nil
	}

	contextBlock := noDocumentsMarker
	if len(chunks) > 0 {
		parts := make([]string, len(chunks))
		for i, c := range chunks {
			parts[i] = "Chunk: " + c
		}
		contextBlock = strings.Join(parts, "\n\n")
	}

	messages := []ai.Message{
		{Role: domain.RoleSystem, Content: "You are an AI that uses the following doc context. " +
			"If not answered by context, say not enough info.\nContext:\n" + contextBlock},
		{Role: domain.RoleUser, Content: question},
	}

	completionCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	return s.ai.GetCompletion(completionCtx, s.config.ChatModel, messages)
}

// GenerateTitle produces a short, descriptive conversation title from
// the supplied messages. Failures fall back to a fixed placeholder.
func (s *Service) GenerateTitle(ctx context.Context, messages []ai.Message) string {
	prompt := make([]ai.Message, 0, len(messages)+1)
	prompt = append(prompt, ai.Message{
		Role: domain.RoleSystem,
		Content: "You are an assistant that creates short, descriptive conversation titles, " +
			"3-6 words, no quotes. Return only the title as text. Avoid punctuation.",
	})
	prompt = append(prompt, messages...)

	completionCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	title, err := s.ai.GetCompletion(completionCtx, s.config.ReportModel, prompt)
	if err != nil {
		s.logger.Error("title generation failed", "error", err)
		return "Untitled Chat"
	}
	return strings.TrimSpace(title)
}
