// File: internal/services/report/cache.go
package report

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrReportNotFound = errors.New("report not found")

// Cache holds generated report markdown keyed by single-use tokens.
// It is process-local and deliberately ephemeral: entries survive until
// consumed or until the process restarts, and there is no expiry.
// Entries are never mutated after insertion, only deleted.
type Cache struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Store registers report markdown under a fresh opaque token.
func (c *Cache) Store(markdown string) string {
	id := uuid.NewString()

	c.mu.Lock()
	c.entries[id] = markdown
	c.mu.Unlock()

	return id
}

// Consume returns the stored markdown and removes the entry. A second
// call with the same id fails with ErrReportNotFound.
func (c *Cache) Consume(reportID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	markdown, ok := c.entries[reportID]
	if !ok {
		return "", ErrReportNotFound
	}
	delete(c.entries, reportID)
	return markdown, nil
}

// Len reports how many reports are pending download.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
