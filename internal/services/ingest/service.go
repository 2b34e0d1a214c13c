// File: internal/services/ingest/service.go
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mahluminnovations/gymengine/internal/domain"
	"github.com/mahluminnovations/gymengine/internal/services/extract"
	"github.com/mahluminnovations/gymengine/internal/services/search"
	"github.com/mahluminnovations/gymengine/internal/services/storage"
)

// ErrUnsupportedKind is returned by ChunkAndIndex for uploads that have
// no text extraction path.
var ErrUnsupportedKind = errors.New("unsupported file type for indexing")

// notePrefixLimit bounds how much extracted text is embedded in the
// system context note injected into the next completion request.
const notePrefixLimit = 1000

const noCaptionPlaceholder = "No description available."

// Upload is one file received with a chat turn.
type Upload struct {
	Filename string
	Data     []byte
}

// Logger interface for ingestion operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Service runs the upload pipeline: classify, persist the raw bytes,
// extract text, produce a system context note, and attach the file to
// the session. Ingestion is best-effort per file; one failing file
// never aborts the others.
type Service struct {
	store  storage.ObjectStore
	pdf    extract.DocumentExtractor
	docx   extract.DocumentExtractor
	images extract.ImageDescriber
	index  search.Index
	logger Logger
}

func NewService(store storage.ObjectStore, pdf extract.DocumentExtractor, docx extract.DocumentExtractor, images extract.ImageDescriber, index search.Index, logger Logger) *Service {
	return &Service{
		store:  store,
		pdf:    pdf,
		docx:   docx,
		images: images,
		index:  index,
		logger: logger,
	}
}

// Ingest processes every upload against the session and returns the
// system-role context notes to inject into the next completion request.
// Attachments are appended to the session in memory only; the caller
// persists the session once the full turn completes.
func (s *Service) Ingest(ctx context.Context, session *domain.ChatSession, uploads []Upload) []string {
	var notes []string

	for _, up := range uploads {
		if up.Filename == "" || len(up.Data) == 0 {
			continue
		}

		note, err := s.ingestOne(ctx, session, up)
		if err != nil {
			s.logger.Error("file ingestion failed, skipping", "filename", up.Filename, "error", err)
			continue
		}
		if note != "" {
			notes = append(notes, note)
		}
	}
	return notes
}

func (s *Service) ingestOne(ctx context.Context, session *domain.ChatSession, up Upload) (string, error) {
	kind := domain.KindForFilename(up.Filename)

	blobURL, err := s.store.Put(ctx, up.Filename, up.Data, kind.ContentType())
	if err != nil {
		return "", fmt.Errorf("storing blob: %w", err)
	}

	var extractedText, note string
	switch kind {
	case domain.MediaPDF:
		if s.pdf == nil {
			return "", extract.NewExtractionError("pdf", "extract", "no document analyzer configured", nil)
		}
		extractedText, err = s.pdf.ExtractText(ctx, up.Data)
		if err != nil {
			return "", err
		}
		note = fmt.Sprintf("PDF '%s' uploaded.\nExtracted:\n%s...", up.Filename, prefix(extractedText, notePrefixLimit))

	case domain.MediaDocx:
		if s.docx == nil {
			return "", extract.NewExtractionError("docx", "extract", "no docx extractor configured", nil)
		}
		extractedText, err = s.docx.ExtractText(ctx, up.Data)
		if err != nil {
			return "", err
		}
		note = fmt.Sprintf("DOCX '%s' uploaded.\nExtracted:\n%s...", up.Filename, prefix(extractedText, notePrefixLimit))

	case domain.MediaImage:
		if s.images == nil {
			return "", extract.NewExtractionError("image", "describe", "no image describer configured", nil)
		}
		caption, err := s.images.Describe(ctx, up.Data)
		if err != nil {
			return "", err
		}
		if caption == "" {
			caption = noCaptionPlaceholder
		}
		extractedText = "Image AI Description: " + caption
		note = fmt.Sprintf("Image '%s' uploaded.\nAI says: %s", up.Filename, caption)

	case domain.MediaOther:
		// Attached as-is: no extraction, no context note.
	}

	session.AppendFile(domain.FileAttachment{
		Filename:      up.Filename,
		StorageURL:    blobURL,
		MediaKind:     kind,
		ExtractedText: extractedText,
	})

	s.logger.Info("file ingested", "filename", up.Filename, "kind", string(kind), "extracted_chars", len(extractedText))
	return note, nil
}

// ChunkAndIndex extracts text from a large document upload, splits it
// into word-aligned chunks, and upserts them into the search index
// scoped to the user. Only pdf and docx uploads are indexable. Returns
// how many chunks were produced and how many the index accepted;
// partial acceptance is not an error.
func (s *Service) ChunkAndIndex(ctx context.Context, userKey, filename string, data []byte, chunkSize int) (int, int, error) {
	var text string
	var err error

	switch domain.KindForFilename(filename) {
	case domain.MediaPDF:
		if s.pdf == nil {
			return 0, 0, extract.NewExtractionError("pdf", "extract", "no document analyzer configured", nil)
		}
		text, err = s.pdf.ExtractText(ctx, data)
	case domain.MediaDocx:
		if s.docx == nil {
			return 0, 0, extract.NewExtractionError("docx", "extract", "no docx extractor configured", nil)
		}
		text, err = s.docx.ExtractText(ctx, data)
	default:
		return 0, 0, ErrUnsupportedKind
	}
	if err != nil {
		return 0, 0, err
	}

	pieces := search.Chunk(text, chunkSize)
	chunks := make([]search.DocumentChunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = search.DocumentChunk{
			ID:      fmt.Sprintf("%s-%s", userKey, uuid.NewString()),
			UserKey: userKey,
			Content: p,
		}
	}

	accepted, err := s.index.BulkUpsert(ctx, chunks)
	if err != nil {
		// Indexing is best-effort: an unreachable index contributes zero.
		s.logger.Error("chunk indexing failed", "filename", filename, "chunks", len(chunks), "error", err)
		return len(chunks), 0, nil
	}

	s.logger.Info("document chunked and indexed", "filename", filename, "chunks", len(chunks), "accepted", accepted)
	return len(chunks), accepted, nil
}

func prefix(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
