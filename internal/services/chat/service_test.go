package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/mahluminnovations/gymengine/internal/domain"
	sessionrepo "github.com/mahluminnovations/gymengine/internal/repository/session"
	"github.com/mahluminnovations/gymengine/internal/services/ai"
	"github.com/mahluminnovations/gymengine/internal/services/ingest"
	"github.com/mahluminnovations/gymengine/internal/services/report"
	"github.com/mahluminnovations/gymengine/internal/services/search"
	"github.com/mahluminnovations/gymengine/internal/services/session"
	"github.com/mahluminnovations/gymengine/internal/services/storage"
)

type testLogger struct{}

func (testLogger) Info(msg string, keysAndValues ...interface{})  {}
func (testLogger) Error(msg string, keysAndValues ...interface{}) {}
func (testLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (testLogger) Warn(msg string, keysAndValues ...interface{})  {}

// fakeProvider scripts completion behavior per test. Blocking calls
// return replies in order; streamed calls relay the configured
// fragments.
type fakeProvider struct {
	replies   []string
	err       error
	fragments []string
	streamErr error
	prompts   [][]ai.Message
}

func (p *fakeProvider) GetCompletion(ctx context.Context, model string, messages []ai.Message) (string, error) {
	p.prompts = append(p.prompts, append([]ai.Message(nil), messages...))
	if p.err != nil {
		return "", p.err
	}
	if len(p.replies) == 0 {
		return "ok", nil
	}
	reply := p.replies[0]
	p.replies = p.replies[1:]
	return reply, nil
}

func (p *fakeProvider) StreamCompletion(ctx context.Context, model string, messages []ai.Message, onDelta func(string) error) error {
	p.prompts = append(p.prompts, append([]ai.Message(nil), messages...))
	for _, f := range p.fragments {
		if err := onDelta(f); err != nil {
			return err
		}
	}
	return p.streamErr
}

func (p *fakeProvider) HealthCheck(ctx context.Context) error { return nil }

type fakeIndex struct {
	chunks   []string
	err      error
	lastTopK int
}

func (f *fakeIndex) BulkUpsert(ctx context.Context, chunks []search.DocumentChunk) (int, error) {
	return len(chunks), nil
}

func (f *fakeIndex) Query(ctx context.Context, query, userKey string, topK int) ([]string, error) {
	f.lastTopK = topK
	return f.chunks, f.err
}

func newTestService(t *testing.T, provider *fakeProvider, index search.Index) (*Service, *report.Cache, *session.Service) {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.ChatSession{}, &domain.Message{}, &domain.FileAttachment{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	sessions := session.NewService(sessionrepo.NewSessionRepository(db), storage.DisabledStore{}, testLogger{})
	ingestor := ingest.NewService(storage.DisabledStore{}, nil, nil, nil, index, testLogger{})
	cache := report.NewCache()

	svc, err := NewService(DefaultConfig(), sessions, ingestor, index, provider, cache, testLogger{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, cache, sessions
}

func TestRespondPersistsBothTurns(t *testing.T) {
	provider := &fakeProvider{replies: []string{"You should train legs twice a week."}}
	svc, _, sessions := newTestService(t, provider, &fakeIndex{})
	ctx := context.Background()

	result, err := svc.Respond(ctx, "user-respond", "", "How often should I train legs?", nil)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if result.Reply != "You should train legs twice a week." {
		t.Fatalf("unexpected reply: %q", result.Reply)
	}
	if result.ChatID == "" {
		t.Fatal("expected a chat id")
	}

	loaded, _, err := sessions.CreateOrLoad(ctx, "user-respond", result.ChatID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("expected user and assistant turns, got %d messages", len(loaded.Messages))
	}
	if loaded.Messages[0].Role != domain.RoleUser || loaded.Messages[1].Role != domain.RoleAssistant {
		t.Fatalf("unexpected roles: %+v", loaded.Messages)
	}
}

func TestRespondRejectsBlankMessage(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeProvider{}, &fakeIndex{})

	_, err := svc.Respond(context.Background(), "user-blank", "", "   ", nil)
	var chatErr *ChatError
	if !errors.As(err, &chatErr) || chatErr.Type != ErrTypeValidation {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestRespondDowngradesCompletionFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("upstream exploded")}
	svc, _, sessions := newTestService(t, provider, &fakeIndex{})
	ctx := context.Background()

	result, err := svc.Respond(ctx, "user-downgrade", "", "hello", nil)
	if err != nil {
		t.Fatalf("respond should not fail on a completion error: %v", err)
	}
	if !strings.Contains(result.Reply, "Error calling completion engine") {
		t.Fatalf("expected in-band error reply, got %q", result.Reply)
	}

	// The failed turn is persisted like any other.
	loaded, _, err := sessions.CreateOrLoad(ctx, "user-downgrade", result.ChatID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("expected the failed turn persisted, got %d messages", len(loaded.Messages))
	}
	if !strings.Contains(loaded.Messages[1].Content, "upstream exploded") {
		t.Fatalf("stored assistant turn lost the error detail: %q", loaded.Messages[1].Content)
	}
}

func TestRespondOrdersPromptWithHistory(t *testing.T) {
	provider := &fakeProvider{replies: []string{"first", "second"}}
	svc, _, _ := newTestService(t, provider, &fakeIndex{})
	ctx := context.Background()

	result, err := svc.Respond(ctx, "user-history", "", "question one", nil)
	if err != nil {
		t.Fatalf("first turn: %v", err)
	}
	if _, err := svc.Respond(ctx, "user-history", result.ChatID, "question two", nil); err != nil {
		t.Fatalf("second turn: %v", err)
	}

	prompt := provider.prompts[len(provider.prompts)-1]
	if prompt[0].Role != domain.RoleSystem {
		t.Fatalf("prompt must open with the system instruction, got %+v", prompt[0])
	}
	var contents []string
	for _, m := range prompt[1:] {
		contents = append(contents, m.Content)
	}
	want := []string{"question one", "first", "question two"}
	if len(contents) != len(want) {
		t.Fatalf("unexpected prompt shape: %v", contents)
	}
	for i := range want {
		if contents[i] != want[i] {
			t.Fatalf("prompt order broken at %d: %v", i, contents)
		}
	}
}

func TestStreamRelaysFragmentsThenFinal(t *testing.T) {
	provider := &fakeProvider{fragments: []string{"Hel", "lo ", "there"}}
	svc, _, sessions := newTestService(t, provider, &fakeIndex{})
	ctx := context.Background()

	var deltas []string
	var final string
	chatID, err := svc.Stream(ctx, "user-stream", "", "hi", nil, StreamHandlers{
		OnDelta: func(fragment string) error {
			deltas = append(deltas, fragment)
			return nil
		},
		OnFinal: func(visible string) { final = visible },
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}

	if strings.Join(deltas, "") != "Hello there" {
		t.Fatalf("fragments lost or reordered: %v", deltas)
	}
	if final != "Hello there" {
		t.Fatalf("unexpected final payload: %q", final)
	}

	loaded, _, err := sessions.CreateOrLoad(ctx, "user-stream", chatID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(loaded.Messages) != 2 || loaded.Messages[1].Content != "Hello there" {
		t.Fatalf("streamed reply not persisted: %+v", loaded.Messages)
	}
}

func TestStreamFailureDiscardsPartial(t *testing.T) {
	provider := &fakeProvider{fragments: []string{"partial "}, streamErr: errors.New("connection reset")}
	svc, _, sessions := newTestService(t, provider, &fakeIndex{})
	ctx := context.Background()

	_, err := svc.Stream(ctx, "user-streamfail", "", "hi", nil, StreamHandlers{
		OnDelta: func(string) error { return nil },
	})
	var chatErr *ChatError
	if !errors.As(err, &chatErr) || chatErr.Type != ErrTypeStreaming {
		t.Fatalf("want streaming error, got %v", err)
	}

	// Nothing persisted: the partial turn is discarded entirely.
	chats, listErr := sessions.ListByUser(ctx, "user-streamfail")
	if listErr != nil {
		t.Fatalf("list: %v", listErr)
	}
	if len(chats) != 0 {
		t.Fatalf("partial turn must not be persisted, found %d sessions", len(chats))
	}
}

func TestFinalizeMintsSingleUseReportLink(t *testing.T) {
	provider := &fakeProvider{replies: []string{"Gym Revenue Summary", "## Detail\n\n\n\nExpanded body.\n---\n"}}
	svc, cache, _ := newTestService(t, provider, &fakeIndex{})

	visible := svc.Finalize(context.Background(), "Here is your summary. "+reportMarker)

	if strings.Contains(visible, reportMarker) {
		t.Fatal("marker must be stripped from the visible reply")
	}
	if !strings.Contains(visible, "/api/generateReport?reportId=") {
		t.Fatalf("download link missing: %q", visible)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected exactly one cached report, got %d", cache.Len())
	}

	start := strings.Index(visible, "reportId=") + len("reportId=")
	end := strings.IndexByte(visible[start:], ')')
	reportID := visible[start : start+end]

	markdown, err := cache.Consume(reportID)
	if err != nil {
		t.Fatalf("consume minted report: %v", err)
	}
	if !strings.HasPrefix(markdown, "# Gym Revenue Summary\n") {
		t.Fatalf("expanded report missing title heading: %q", markdown)
	}
	if strings.Contains(markdown, "---") {
		t.Fatalf("horizontal rules should be stripped: %q", markdown)
	}
	if strings.Contains(markdown, "\n\n\n") {
		t.Fatalf("blank-line runs should collapse: %q", markdown)
	}
}

func TestFinalizePassesThroughPlainText(t *testing.T) {
	svc, cache, _ := newTestService(t, &fakeProvider{}, &fakeIndex{})

	visible := svc.Finalize(context.Background(), "No report requested here.")
	if visible != "No report requested here." {
		t.Fatalf("plain text must pass through untouched: %q", visible)
	}
	if cache.Len() != 0 {
		t.Fatal("no report should be cached without the marker")
	}
}

func TestAskDocumentUsesRetrievedChunks(t *testing.T) {
	index := &fakeIndex{chunks: []string{"membership terms", "cancellation policy"}}
	provider := &fakeProvider{replies: []string{"Cancellation requires 30 days notice."}}
	svc, _, _ := newTestService(t, provider, index)

	answer, err := svc.AskDocument(context.Background(), "user-doc", "How do I cancel?")
	if err != nil {
		t.Fatalf("ask document: %v", err)
	}
	if answer != "Cancellation requires 30 days notice." {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if index.lastTopK != DefaultConfig().RetrievalTopK {
		t.Fatalf("unexpected topK: %d", index.lastTopK)
	}

	system := provider.prompts[0][0].Content
	if !strings.Contains(system, "Chunk: membership terms") || !strings.Contains(system, "Chunk: cancellation policy") {
		t.Fatalf("retrieved chunks missing from prompt: %q", system)
	}
}

func TestAskDocumentWithoutResults(t *testing.T) {
	provider := &fakeProvider{replies: []string{"Not enough info."}}
	svc, _, _ := newTestService(t, provider, &fakeIndex{})

	if _, err := svc.AskDocument(context.Background(), "user-doc", "Anything?"); err != nil {
		t.Fatalf("ask document: %v", err)
	}
	if !strings.Contains(provider.prompts[0][0].Content, "No relevant documents found.") {
		t.Fatalf("empty retrieval must be stated in the prompt: %q", provider.prompts[0][0].Content)
	}
}

func TestAskDocumentSurvivesRetrievalFailure(t *testing.T) {
	index := &fakeIndex{err: errors.New("index down")}
	provider := &fakeProvider{replies: []string{"Best effort answer."}}
	svc, _, _ := newTestService(t, provider, index)

	answer, err := svc.AskDocument(context.Background(), "user-doc", "Anything?")
	if err != nil {
		t.Fatalf("retrieval failure must not fail the request: %v", err)
	}
	if answer != "Best effort answer." {
		t.Fatalf("unexpected answer: %q", answer)
	}
}

func TestGenerateTitleFallsBack(t *testing.T) {
	provider := &fakeProvider{err: errors.New("model offline")}
	svc, _, _ := newTestService(t, provider, &fakeIndex{})

	title := svc.GenerateTitle(context.Background(), []ai.Message{{Role: domain.RoleUser, Content: "hi"}})
	if title != "Untitled Chat" {
		t.Fatalf("unexpected fallback title: %q", title)
	}
}
