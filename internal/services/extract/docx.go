// File: internal/services/extract/docx.go
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"
)

// DocxExtractor pulls paragraph text out of word-processing documents.
// A .docx file is a zip archive; the body lives in word/document.xml as
// paragraphs (w:p) of text runs (w:t). Empty paragraphs are skipped.
type DocxExtractor struct {
	logger Logger
}

func NewDocxExtractor(logger Logger) *DocxExtractor {
	return &DocxExtractor{logger: logger}
}

func (e *DocxExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", NewExtractionError("docx", "open_archive", "not a valid docx archive", err)
	}

	var document *zip.File
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return "", NewExtractionError("docx", "open_archive", "word/document.xml not found", nil)
	}

	rc, err := document.Open()
	if err != nil {
		return "", NewExtractionError("docx", "read_document", "opening document body failed", err)
	}
	defer rc.Close()

	paragraphs, err := e.readParagraphs(rc)
	if err != nil {
		return "", err
	}

	e.logger.Debug("docx extraction complete", "paragraphs", len(paragraphs))
	return strings.Join(paragraphs, "\n"), nil
}

func (e *DocxExtractor) readParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var paragraphs []string
	var current strings.Builder
	inParagraph := false
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewExtractionError("docx", "read_document", "malformed document XML", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inText = inParagraph
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if text := strings.TrimSpace(current.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
				inParagraph = false
			}
		}
	}
	return paragraphs, nil
}
