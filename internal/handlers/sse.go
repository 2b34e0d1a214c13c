// File: internal/handlers/sse.go
package handlers

import (
	"fmt"
	"net/http"
)

// setupSSEHeaders prepares a response for Server-Sent Events delivery.
func setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// sendSSEData writes one unnamed data frame and flushes it immediately.
// Fragments are relayed verbatim; clients reassemble the full message
// from the final event, not from the frames.
func sendSSEData(w http.ResponseWriter, flusher http.Flusher, data string) error {
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// sendSSEEvent writes a named event frame and flushes it.
func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event, data string) {
	fmt.Fprintf(w, "event:%s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
