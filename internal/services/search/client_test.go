package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type testLogger struct{}

func (testLogger) Info(msg string, keysAndValues ...interface{})  {}
func (testLogger) Error(msg string, keysAndValues ...interface{}) {}
func (testLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (testLogger) Warn(msg string, keysAndValues ...interface{})  {}

func testConfig(endpoint string) *Config {
	return &Config{
		Endpoint:    endpoint,
		APIKey:      "test-key",
		IndexName:   "documents",
		Timeout:     5 * time.Second,
		MaxRetries:  2,
		RetryDelay:  time.Millisecond,
		DefaultTopK: 3,
	}
}

func TestBulkUpsertRetriesTransientFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"value":[{"key":"a","status":true},{"key":"b","status":false}]}`))
	}))
	defer server.Close()

	svc := NewClientService(testConfig(server.URL), testLogger{})

	accepted, err := svc.BulkUpsert(context.Background(), []DocumentChunk{
		{ID: "a", UserKey: "u", Content: "one"},
		{ID: "b", UserKey: "u", Content: "two"},
	})
	if err != nil {
		t.Fatalf("bulk upsert: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if accepted != 1 {
		t.Fatalf("expected 1 accepted chunk, got %d", accepted)
	}
}

func TestBulkUpsertGivesUpAfterRetryBudget(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	svc := NewClientService(cfg, testLogger{})

	_, err := svc.BulkUpsert(context.Background(), []DocumentChunk{{ID: "a", UserKey: "u", Content: "one"}})
	if err == nil {
		t.Fatal("expected an error once retries are exhausted")
	}
	if attempts != cfg.MaxRetries+1 {
		t.Fatalf("expected %d attempts, got %d", cfg.MaxRetries+1, attempts)
	}
}

func TestQueryRetriesAndFiltersByUser(t *testing.T) {
	attempts := 0
	var gotFilter string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var body struct {
			Filter string `json:"filter"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotFilter = body.Filter
		w.Write([]byte(`{"value":[{"content":"membership terms"},{"content":""}]}`))
	}))
	defer server.Close()

	svc := NewClientService(testConfig(server.URL), testLogger{})

	texts, err := svc.Query(context.Background(), "cancel", "user's-key", 3)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if len(texts) != 1 || texts[0] != "membership terms" {
		t.Fatalf("unexpected results: %v", texts)
	}
	if !strings.Contains(gotFilter, "userKey eq 'user''s-key'") {
		t.Fatalf("quote escaping lost in filter: %q", gotFilter)
	}
}

func TestDisabledClientDegradesQuietly(t *testing.T) {
	svc := NewClientService(DefaultConfig(), testLogger{})

	accepted, err := svc.BulkUpsert(context.Background(), []DocumentChunk{{ID: "a", UserKey: "u", Content: "x"}})
	if err != nil || accepted != 0 {
		t.Fatalf("disabled upsert: accepted=%d err=%v", accepted, err)
	}
	texts, err := svc.Query(context.Background(), "anything", "u", 3)
	if err != nil || texts != nil {
		t.Fatalf("disabled query: texts=%v err=%v", texts, err)
	}
}
