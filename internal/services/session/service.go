// File: internal/services/session/service.go
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/mahluminnovations/gymengine/internal/domain"
	sessionrepo "github.com/mahluminnovations/gymengine/internal/repository/session"
	"github.com/mahluminnovations/gymengine/internal/services/storage"
)

// Allocation is capped rather than truly infinite so a pathological
// collision storm cannot spin forever. Conflicts past the cap are fatal.
const (
	maxAllocAttempts = 8
	allocBasePause   = 10 * time.Millisecond
)

// ErrNotFound mirrors the repository sentinel for callers that only
// import this package.
var ErrNotFound = sessionrepo.ErrSessionNotFound

// Logger interface for session operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Service owns chat session identity and lifecycle: creation, lookup,
// mutation, archival, and deletion with blob cascade.
type Service struct {
	repo   sessionrepo.SessionRepository
	blobs  storage.ObjectStore
	logger Logger
}

func NewService(repo sessionrepo.SessionRepository, blobs storage.ObjectStore, logger Logger) *Service {
	return &Service{
		repo:   repo,
		blobs:  blobs,
		logger: logger,
	}
}

// CreateOrLoad resolves the session for a chat turn. Without a chat id
// it allocates a fresh one and returns a new empty session. With one,
// it loads the existing session; if the id is unknown, a new empty
// session is synthesized under the supplied id.
func (s *Service) CreateOrLoad(ctx context.Context, userKey, chatID string) (*domain.ChatSession, bool, error) {
	if userKey == "" {
		return nil, false, errors.New("user key is required")
	}

	if chatID == "" {
		allocated, err := s.allocateChatID(ctx, userKey)
		if err != nil {
			return nil, false, err
		}
		return &domain.ChatSession{ChatID: allocated, UserKey: userKey}, true, nil
	}

	existing, err := s.repo.FindByChatID(ctx, userKey, chatID)
	if err != nil {
		if errors.Is(err, sessionrepo.ErrSessionNotFound) {
			return &domain.ChatSession{ChatID: chatID, UserKey: userKey}, true, nil
		}
		return nil, false, err
	}
	return existing, false, nil
}

// Save upserts the session and returns its final chat id. If the store
// reports an identity conflict the id is re-allocated and the upsert
// retried; conflicts never fail the request until the allocation cap.
func (s *Service) Save(ctx context.Context, session *domain.ChatSession) (string, error) {
	pause := allocBasePause
	for attempt := 0; attempt < maxAllocAttempts; attempt++ {
		err := s.repo.Save(ctx, session)
		if err == nil {
			return session.ChatID, nil
		}
		if !errors.Is(err, sessionrepo.ErrDuplicateChatID) {
			return "", err
		}

		s.logger.Warn("chat id conflict on save, re-allocating", "chat_id", session.ChatID, "attempt", attempt+1)

		newID, allocErr := s.allocateChatID(ctx, session.UserKey)
		if allocErr != nil {
			return "", allocErr
		}
		session.ChatID = newID

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(pause):
		}
		pause *= 2
	}
	return "", ErrIdentityConflict
}

// allocateChatID generates candidate ids composed of a millisecond
// timestamp, a random disambiguator, and the user key, probing the
// store until a free one is found. The save-time retry loop is the
// correctness backstop for the race between probe and insert.
func (s *Service) allocateChatID(ctx context.Context, userKey string) (string, error) {
	pause := allocBasePause
	for attempt := 0; attempt < maxAllocAttempts; attempt++ {
		candidate := fmt.Sprintf("chat_%d_%d_%s", time.Now().UnixMilli(), 1000+rand.Intn(9000), userKey)

		taken, err := s.repo.ExistsByChatID(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}

		s.logger.Warn("chat id collision during allocation", "attempt", attempt+1)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(pause):
		}
		pause *= 2
	}
	return "", ErrIdentityConflict
}

func (s *Service) ListByUser(ctx context.Context, userKey string) ([]domain.ChatSession, error) {
	return s.repo.ListByUser(ctx, userKey)
}

// ArchiveAll marks every session the user owns as archived.
func (s *Service) ArchiveAll(ctx context.Context, userKey string) error {
	archived, err := s.repo.ArchiveAllByUser(ctx, userKey)
	if err != nil {
		return err
	}
	s.logger.Info("sessions archived", "user_key", userKey, "count", archived)
	return nil
}

// Rename updates the session title. Unknown sessions fail with ErrNotFound.
func (s *Service) Rename(ctx context.Context, userKey, chatID, newTitle string) error {
	return s.repo.UpdateTitle(ctx, userKey, chatID, newTitle)
}

// Delete removes one session. Each stored attachment blob gets a
// best-effort delete: a failed blob deletion is logged, never escalated,
// and the session removal still goes through.
func (s *Service) Delete(ctx context.Context, userKey, chatID string) error {
	session, err := s.repo.FindByChatID(ctx, userKey, chatID)
	if err != nil {
		return err
	}
	return s.deleteSession(ctx, session)
}

// DeleteAll removes every session for the user, cascading blob deletes
// the same way Delete does.
func (s *Service) DeleteAll(ctx context.Context, userKey string) error {
	sessions, err := s.repo.ListByUser(ctx, userKey)
	if err != nil {
		return err
	}
	for i := range sessions {
		if err := s.deleteSession(ctx, &sessions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) deleteSession(ctx context.Context, session *domain.ChatSession) error {
	for _, f := range session.Files {
		if f.Filename == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, f.Filename); err != nil {
			s.logger.Error("blob deletion failed", "filename", f.Filename, "chat_id", session.ChatID, "error", err)
		}
	}

	if err := s.repo.Delete(ctx, session); err != nil {
		return err
	}
	s.logger.Info("session deleted", "chat_id", session.ChatID, "user_key", session.UserKey)
	return nil
}
