// File: internal/services/search/client.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const searchAPIVersion = "2023-11-01"

// ClientService implements Index using direct HTTP REST calls against a
// full-text search service. When no backend is configured the service
// degrades: upserts report zero accepted and queries return no results.
type ClientService struct {
	config  *Config
	client  *http.Client
	retry   *RetryService
	baseURL string
	enabled bool
	logger  Logger
}

// NewClientService creates a new HTTP-based search index client.
func NewClientService(config *Config, logger Logger) *ClientService {
	service := &ClientService{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		retry:   NewRetryService(config, logger),
		enabled: config.Configured(),
		logger:  logger,
	}
	if service.enabled {
		service.baseURL = fmt.Sprintf("%s/indexes/%s", strings.TrimRight(config.Endpoint, "/"), config.IndexName)
		logger.Info("search index client initialized", "index", config.IndexName)
	} else {
		logger.Warn("search backend not configured; retrieval disabled")
	}
	return service
}

type indexBatchAction struct {
	Action  string `json:"@search.action"`
	ID      string `json:"id"`
	UserKey string `json:"userKey"`
	Content string `json:"content"`
}

type indexBatchResponse struct {
	Value []struct {
		Key    string `json:"key"`
		Status bool   `json:"status"`
	} `json:"value"`
}

// BulkUpsert pushes document chunks to the index. The returned count is
// the number of chunks the backend acknowledged; rejected chunks only
// lower the count, they do not fail the batch.
func (s *ClientService) BulkUpsert(ctx context.Context, chunks []DocumentChunk) (int, error) {
	if !s.enabled || len(chunks) == 0 {
		return 0, nil
	}

	var accepted int
	err := s.retry.RetryWithTimeout(func(ctx context.Context) error {
		var err error
		accepted, err = s.bulkUpsertOperation(ctx, chunks)
		return err
	})
	if err != nil {
		return 0, err
	}
	return accepted, nil
}

func (s *ClientService) bulkUpsertOperation(ctx context.Context, chunks []DocumentChunk) (int, error) {
	actions := make([]indexBatchAction, len(chunks))
	for i, c := range chunks {
		actions[i] = indexBatchAction{
			Action:  "mergeOrUpload",
			ID:      c.ID,
			UserKey: c.UserKey,
			Content: c.Content,
		}
	}

	var response indexBatchResponse
	url := fmt.Sprintf("%s/docs/index?api-version=%s", s.baseURL, searchAPIVersion)
	if err := s.post(ctx, url, map[string]interface{}{"value": actions}, &response); err != nil {
		return 0, NewOperationError("bulk upsert failed", err)
	}

	accepted := 0
	for _, r := range response.Value {
		if r.Status {
			accepted++
		}
	}

	s.logger.Info("chunks indexed", "sent", len(chunks), "accepted", accepted)
	return accepted, nil
}

type searchResponse struct {
	Value []struct {
		Content string `json:"content"`
	} `json:"value"`
}

// Query runs a relevance-ranked full-text search filtered to one user.
func (s *ClientService) Query(ctx context.Context, query, userKey string, topK int) ([]string, error) {
	if !s.enabled {
		return nil, nil
	}
	if topK <= 0 {
		topK = s.config.DefaultTopK
	}

	var texts []string
	err := s.retry.RetryWithTimeout(func(ctx context.Context) error {
		var err error
		texts, err = s.queryOperation(ctx, query, userKey, topK)
		return err
	})
	if err != nil {
		return nil, err
	}
	return texts, nil
}

func (s *ClientService) queryOperation(ctx context.Context, query, userKey string, topK int) ([]string, error) {
	body := map[string]interface{}{
		"search": query,
		"filter": fmt.Sprintf("userKey eq '%s'", strings.ReplaceAll(userKey, "'", "''")),
		"top":    topK,
	}

	var response searchResponse
	url := fmt.Sprintf("%s/docs/search?api-version=%s", s.baseURL, searchAPIVersion)
	if err := s.post(ctx, url, body, &response); err != nil {
		return nil, NewOperationError("query failed", err)
	}

	var texts []string
	for _, v := range response.Value {
		if v.Content != "" {
			texts = append(texts, v.Content)
		}
	}

	s.logger.Debug("search query complete", "results", len(texts))
	return texts, nil
}

func (s *ClientService) post(ctx context.Context, url string, body, out interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
