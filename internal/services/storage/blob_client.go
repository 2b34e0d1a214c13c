// File: internal/services/storage/blob_client.go
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// BlobService implements ObjectStore against a blob container using
// direct HTTP REST calls authenticated by a SAS token.
type BlobService struct {
	config *Config
	client *http.Client
	logger Logger
}

// NewBlobService creates a new HTTP-based blob client.
func NewBlobService(config *Config, logger Logger) (*BlobService, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	service := &BlobService{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}

	logger.Info("blob storage client initialized", "container", config.ContainerURL)
	return service, nil
}

// Put uploads raw bytes under the given key, overwriting any previous
// blob with that name, and returns the public URL of the object.
func (s *BlobService) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.signedURL(key), bytes.NewReader(data))
	if err != nil {
		return "", NewStorageError("put", key, "building request failed", err)
	}

	req.Header.Set("x-ms-blob-type", "BlockBlob")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", NewStorageError("put", key, "HTTP request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", NewStorageError("put", key, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)), nil)
	}

	s.logger.Debug("blob uploaded", "key", key, "bytes", len(data))
	return s.URL(key), nil
}

// Delete removes the blob. Missing blobs are not an error: a cascade
// delete may run after the object is already gone.
func (s *BlobService) Delete(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.signedURL(key), nil)
	if err != nil {
		return NewStorageError("delete", key, "building request failed", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return NewStorageError("delete", key, "HTTP request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return NewStorageError("delete", key, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)), nil)
	}
	return nil
}

// URL returns the unauthenticated address of the stored object.
func (s *BlobService) URL(key string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(s.config.ContainerURL, "/"), url.PathEscape(key))
}

func (s *BlobService) signedURL(key string) string {
	u := s.URL(key)
	if s.config.SASToken != "" {
		u += "?" + s.config.SASToken
	}
	return u
}

// DisabledStore stands in when no blob backend is configured. Every
// mutation fails with ErrNotConfigured; callers log and move on.
type DisabledStore struct{}

func (DisabledStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return "", ErrNotConfigured
}

func (DisabledStore) Delete(ctx context.Context, key string) error { return ErrNotConfigured }

func (DisabledStore) URL(key string) string { return "" }
