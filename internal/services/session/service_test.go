package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/mahluminnovations/gymengine/internal/domain"
	sessionrepo "github.com/mahluminnovations/gymengine/internal/repository/session"
)

type testLogger struct{}

func (testLogger) Info(msg string, keysAndValues ...interface{})  {}
func (testLogger) Error(msg string, keysAndValues ...interface{}) {}
func (testLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (testLogger) Warn(msg string, keysAndValues ...interface{})  {}

// recordingStore tracks deletes and can be told to fail them.
type recordingStore struct {
	deleted []string
	fail    bool
}

func (s *recordingStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return "https://blobs.example/" + key, nil
}

func (s *recordingStore) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	if s.fail {
		return errors.New("backend unavailable")
	}
	return nil
}

func (s *recordingStore) URL(key string) string { return "https://blobs.example/" + key }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.ChatSession{}, &domain.Message{}, &domain.FileAttachment{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*Service, *recordingStore) {
	t.Helper()
	store := &recordingStore{}
	repo := sessionrepo.NewSessionRepository(openTestDB(t))
	return NewService(repo, store, testLogger{}), store
}

func TestCreateOrLoadAllocatesFreshID(t *testing.T) {
	svc, _ := newTestService(t)

	session, isNew, err := svc.CreateOrLoad(context.Background(), "user-alloc", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !isNew {
		t.Fatal("expected a new session")
	}
	if !strings.HasPrefix(session.ChatID, "chat_") || !strings.HasSuffix(session.ChatID, "_user-alloc") {
		t.Fatalf("unexpected chat id shape: %q", session.ChatID)
	}
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, _, err := svc.CreateOrLoad(ctx, "user-roundtrip", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	session.AppendMessage(domain.RoleUser, "hello")
	session.AppendMessage(domain.RoleAssistant, "hi there")
	session.AppendFile(domain.FileAttachment{Filename: "plan.pdf", MediaKind: domain.MediaPDF})

	chatID, err := svc.Save(ctx, session)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, isNew, err := svc.CreateOrLoad(ctx, "user-roundtrip", chatID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if isNew {
		t.Fatal("expected the existing session, got a new one")
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(loaded.Messages))
	}
	if loaded.Messages[0].Role != domain.RoleUser || loaded.Messages[1].Role != domain.RoleAssistant {
		t.Fatalf("message order lost: %+v", loaded.Messages)
	}
	if len(loaded.Files) != 1 || loaded.Files[0].Filename != "plan.pdf" {
		t.Fatalf("file attachment lost: %+v", loaded.Files)
	}
}

func TestCreateOrLoadSynthesizesUnknownID(t *testing.T) {
	svc, _ := newTestService(t)

	session, isNew, err := svc.CreateOrLoad(context.Background(), "user-synth", "chat_123_4567_user-synth")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !isNew {
		t.Fatal("unknown id should produce a new session")
	}
	if session.ChatID != "chat_123_4567_user-synth" {
		t.Fatalf("supplied id not kept: %q", session.ChatID)
	}
}

func TestCreateOrLoadRequiresUserKey(t *testing.T) {
	svc, _ := newTestService(t)
	if _, _, err := svc.CreateOrLoad(context.Background(), "", ""); err == nil {
		t.Fatal("expected an error for empty user key")
	}
}

func TestSaveReallocatesOnChatIDCollision(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// First user claims a fixed chat id.
	first := &domain.ChatSession{ChatID: "chat_fixed_id", UserKey: "user-a"}
	first.AppendMessage(domain.RoleUser, "hi from a")
	if _, err := svc.Save(ctx, first); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	// Second user synthesizes a session under the same id. Lookup is
	// scoped by (chatId, userKey), so this comes back as a new session
	// and only the unique index catches the collision at save time.
	second, isNew, err := svc.CreateOrLoad(ctx, "user-b", "chat_fixed_id")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !isNew {
		t.Fatal("expected a synthesized session for the colliding id")
	}
	second.AppendMessage(domain.RoleUser, "hi from b")

	chatID, err := svc.Save(ctx, second)
	if err != nil {
		t.Fatalf("save must resolve the collision by re-allocating: %v", err)
	}
	if chatID == "chat_fixed_id" {
		t.Fatal("colliding id was not re-allocated")
	}
	if !strings.HasPrefix(chatID, "chat_") || !strings.HasSuffix(chatID, "_user-b") {
		t.Fatalf("re-allocated id has unexpected shape: %q", chatID)
	}

	loaded, _, err := svc.CreateOrLoad(ctx, "user-b", chatID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(loaded.Messages) != 1 || loaded.Messages[0].Content != "hi from b" {
		t.Fatalf("session not persisted under the new id: %+v", loaded.Messages)
	}

	// The original owner is untouched.
	original, _, err := svc.CreateOrLoad(ctx, "user-a", "chat_fixed_id")
	if err != nil {
		t.Fatalf("reload original: %v", err)
	}
	if len(original.Messages) != 1 || original.Messages[0].Content != "hi from a" {
		t.Fatalf("first user's session was disturbed: %+v", original.Messages)
	}
}

func TestRenameUnknownSession(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Rename(context.Background(), "user-rename", "chat_missing", "New title")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestRenameAndList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, _, _ := svc.CreateOrLoad(ctx, "user-list", "")
	session.AppendMessage(domain.RoleUser, "hi")
	chatID, err := svc.Save(ctx, session)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := svc.Rename(ctx, "user-list", chatID, "Leg day plan"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	sessions, err := svc.ListByUser(ctx, "user-list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Title != "Leg day plan" {
		t.Fatalf("rename not reflected in listing: %+v", sessions)
	}
}

func TestArchiveAll(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		session, _, _ := svc.CreateOrLoad(ctx, "user-archive", "")
		session.AppendMessage(domain.RoleUser, "hi")
		if _, err := svc.Save(ctx, session); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	if err := svc.ArchiveAll(ctx, "user-archive"); err != nil {
		t.Fatalf("archive: %v", err)
	}

	sessions, err := svc.ListByUser(ctx, "user-archive")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, s := range sessions {
		if !s.Archived {
			t.Fatalf("session %q not archived", s.ChatID)
		}
	}
}

func TestDeleteCascadesBlobsBestEffort(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	session, _, _ := svc.CreateOrLoad(ctx, "user-delete", "")
	session.AppendMessage(domain.RoleUser, "hi")
	session.AppendFile(domain.FileAttachment{Filename: "scan.pdf", MediaKind: domain.MediaPDF})
	chatID, err := svc.Save(ctx, session)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	// Blob deletion failures are logged but must not block removal.
	store.fail = true
	if err := svc.Delete(ctx, "user-delete", chatID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "scan.pdf" {
		t.Fatalf("expected one blob delete attempt, got %v", store.deleted)
	}

	if err := svc.Delete(ctx, "user-delete", chatID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}

func TestDeleteAllRemovesEverySession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		session, _, _ := svc.CreateOrLoad(ctx, "user-purge", "")
		session.AppendMessage(domain.RoleUser, "hi")
		if _, err := svc.Save(ctx, session); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	if err := svc.DeleteAll(ctx, "user-purge"); err != nil {
		t.Fatalf("delete all: %v", err)
	}

	sessions, err := svc.ListByUser(ctx, "user-purge")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected no sessions left, got %d", len(sessions))
	}
}
