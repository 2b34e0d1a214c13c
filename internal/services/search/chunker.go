// File: internal/services/search/chunker.go
package search

import "strings"

// Chunk splits extracted text into bounded-size, word-aligned segments
// for indexing. Words are accumulated greedily until the running
// character count (word length plus one separator) reaches targetSize;
// the trailing partial chunk is kept even when under target. Chunks are
// deterministic and never overlap.
func Chunk(text string, targetSize int) []string {
	words := strings.Fields(text)

	var chunks []string
	var current []string
	currentLen := 0

	for _, w := range words {
		current = append(current, w)
		currentLen += len(w) + 1
		if currentLen >= targetSize {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
			currentLen = 0
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}
