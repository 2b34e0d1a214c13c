// File: internal/repository/session/session_repository.go
package session

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mahluminnovations/gymengine/internal/domain"
)

var ErrSessionNotFound = errors.New("chat session not found")

// ErrDuplicateChatID reports that another record already holds the
// candidate chat id. Callers resolve it by allocating a new id and
// retrying the save, never by failing the request.
var ErrDuplicateChatID = errors.New("chat id already in use")

type gormSessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &gormSessionRepository{db: db}
}

// Create inserts a brand new session together with its messages and files.
func (r *gormSessionRepository) Create(ctx context.Context, session *domain.ChatSession) error {
	if err := r.validateSessionInput(session); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	err := r.db.WithContext(ctx).Create(session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateChatID
		}
		log.Printf("[SessionRepository] Database error creating session %q for user %q: %v", session.ChatID, session.UserKey, err)
		return errors.New("database error creating session")
	}
	return nil
}

// Save upserts a session by (ChatID, UserKey). New messages and file
// attachments appended since the last save are persisted along with it.
func (r *gormSessionRepository) Save(ctx context.Context, session *domain.ChatSession) error {
	if err := r.validateSessionInput(session); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if session.ID == 0 {
		return r.Create(ctx, session)
	}

	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateChatID
		}
		log.Printf("[SessionRepository] Database error saving session %q for user %q: %v", session.ChatID, session.UserKey, err)
		return errors.New("database error saving session")
	}
	return nil
}

// FindByChatID loads a session with its messages (conversation order)
// and file attachments.
func (r *gormSessionRepository) FindByChatID(ctx context.Context, userKey, chatID string) (*domain.ChatSession, error) {
	if chatID == "" || userKey == "" {
		return nil, errors.New("invalid chat id or user key")
	}

	var session domain.ChatSession
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Files").
		Where("chat_id = ? AND user_key = ?", chatID, userKey).
		First(&session).Error
	return r.handleFindError(err, &session, "FindByChatID")
}

// ExistsByChatID checks id availability across all users, without
// loading any data. Allocation probes rely on this.
func (r *gormSessionRepository) ExistsByChatID(ctx context.Context, chatID string) (bool, error) {
	if chatID == "" {
		return false, errors.New("invalid chat id")
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ChatSession{}).Where("chat_id = ?", chatID).Count(&count).Error
	if err != nil {
		log.Printf("[SessionRepository] Database error checking chat id %q: %v", chatID, err)
		return false, errors.New("database error checking chat id")
	}
	return count > 0, nil
}

func (r *gormSessionRepository) ListByUser(ctx context.Context, userKey string) ([]domain.ChatSession, error) {
	if userKey == "" {
		return nil, errors.New("invalid user key")
	}

	var sessions []domain.ChatSession
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Files").
		Where("user_key = ?", userKey).
		Order("updated_at DESC, id DESC").
		Find(&sessions).Error
	if err != nil {
		log.Printf("[SessionRepository] Database error listing sessions for user %q: %v", userKey, err)
		return nil, errors.New("database error listing sessions")
	}
	return sessions, nil
}

// ArchiveAllByUser flips the archived flag on every session the user owns.
func (r *gormSessionRepository) ArchiveAllByUser(ctx context.Context, userKey string) (int64, error) {
	if userKey == "" {
		return 0, errors.New("invalid user key")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.ChatSession{}).
		Where("user_key = ?", userKey).
		Update("archived", true)
	if result.Error != nil {
		log.Printf("[SessionRepository] Database error archiving sessions for user %q: %v", userKey, result.Error)
		return 0, errors.New("database error archiving sessions")
	}
	return result.RowsAffected, nil
}

func (r *gormSessionRepository) UpdateTitle(ctx context.Context, userKey, chatID, title string) error {
	if chatID == "" || userKey == "" {
		return errors.New("invalid chat id or user key")
	}
	if err := r.validateTitle(title); err != nil {
		return fmt.Errorf("title validation: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&domain.ChatSession{}).
		Where("chat_id = ? AND user_key = ?", chatID, userKey).
		Update("title", title)
	if result.Error != nil {
		log.Printf("[SessionRepository] Database error renaming session %q: %v", chatID, result.Error)
		return errors.New("database error renaming session")
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Delete removes a session and its owned messages and attachments.
func (r *gormSessionRepository) Delete(ctx context.Context, session *domain.ChatSession) error {
	if session == nil || session.ID == 0 {
		return errors.New("invalid session")
	}

	err := r.db.WithContext(ctx).
		Select(clause.Associations).
		Delete(session).Error
	if err != nil {
		log.Printf("[SessionRepository] Database error deleting session %q: %v", session.ChatID, err)
		return errors.New("database error deleting session")
	}
	return nil
}

func (r *gormSessionRepository) validateSessionInput(session *domain.ChatSession) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	if session.ChatID == "" {
		return errors.New("chat id is required")
	}
	if session.UserKey == "" {
		return errors.New("user key is required")
	}
	return r.validateTitle(session.Title)
}

func (r *gormSessionRepository) validateTitle(title string) error {
	if len(title) > 200 {
		return errors.New("title must be 200 characters or less")
	}
	return nil
}

func (r *gormSessionRepository) handleFindError(err error, session *domain.ChatSession, operation string) (*domain.ChatSession, error) {
	if err == nil {
		return session, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	log.Printf("[SessionRepository] %s database error: %v", operation, err)
	return nil, errors.New("database query failed")
}
