package session

import (
	"context"

	"github.com/mahluminnovations/gymengine/internal/domain"
)

// SessionRepository handles chat session persistence. It is the only
// component that talks to the document database directly.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.ChatSession) error
	Save(ctx context.Context, session *domain.ChatSession) error
	FindByChatID(ctx context.Context, userKey, chatID string) (*domain.ChatSession, error)
	ExistsByChatID(ctx context.Context, chatID string) (bool, error)
	ListByUser(ctx context.Context, userKey string) ([]domain.ChatSession, error)
	ArchiveAllByUser(ctx context.Context, userKey string) (int64, error)
	UpdateTitle(ctx context.Context, userKey, chatID, title string) error
	Delete(ctx context.Context, session *domain.ChatSession) error
}
