package search

import (
	"strings"
	"testing"
)

func TestChunkReassemblesToOriginalWords(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta epsilon ", 50)

	chunks := Chunk(text, 100)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	joined := strings.Join(chunks, " ")
	if joined != strings.Join(strings.Fields(text), " ") {
		t.Fatalf("chunks do not reassemble to the original word sequence")
	}
}

func TestChunkBoundsSegmentSize(t *testing.T) {
	text := strings.Repeat("word ", 200)

	chunks := Chunk(text, 50)
	for i, c := range chunks {
		// A chunk may overshoot by at most the final word, never by a
		// whole extra segment.
		if len(c) >= 50+len("word")+1 {
			t.Fatalf("chunk %d too long: %d chars", i, len(c))
		}
		if i < len(chunks)-1 && len(c) < 45 {
			t.Fatalf("chunk %d suspiciously short: %q", i, c)
		}
	}
}

func TestChunkShortTextSingleChunk(t *testing.T) {
	chunks := Chunk("just a few words", 500)
	if len(chunks) != 1 {
		t.Fatalf("expected one chunk, got %d", len(chunks))
	}
	if chunks[0] != "just a few words" {
		t.Fatalf("unexpected chunk content: %q", chunks[0])
	}
}

func TestChunkEmptyText(t *testing.T) {
	if chunks := Chunk("   \n\t  ", 500); len(chunks) != 0 {
		t.Fatalf("expected no chunks for blank text, got %d", len(chunks))
	}
}

func TestChunkNormalizesWhitespace(t *testing.T) {
	chunks := Chunk("one\n\ntwo\t three", 500)
	if len(chunks) != 1 || chunks[0] != "one two three" {
		t.Fatalf("unexpected chunks: %v", chunks)
	}
}
