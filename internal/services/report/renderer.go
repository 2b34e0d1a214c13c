// File: internal/services/report/renderer.go
package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ContentType is the MIME type of rendered report documents.
const ContentType = "application/msword"

const fallbackTitle = "Generated Report"
const fallbackFilename = "report"

// Renderer turns report markdown into a downloadable, Word-compatible
// document. The document title is the first heading in the markdown;
// the download filename is the title with every non-alphanumeric
// character replaced by an underscore.
type Renderer struct {
	md goldmark.Markdown
}

func NewRenderer() *Renderer {
	return &Renderer{md: goldmark.New()}
}

// Render parses the markdown (headings, bullet and numbered lists, bold
// spans, plain paragraphs) and produces the document bytes plus the
// filename to serve them under.
func (r *Renderer) Render(markdown string) (filename string, content []byte, err error) {
	source := []byte(markdown)

	title := r.extractTitle(source)

	var body bytes.Buffer
	if err := r.md.Convert(source, &body); err != nil {
		return "", nil, fmt.Errorf("rendering report markdown: %w", err)
	}

	var doc bytes.Buffer
	doc.WriteString("<html xmlns:o=\"urn:schemas-microsoft-com:office:office\" xmlns:w=\"urn:schemas-microsoft-com:office:word\">\n")
	doc.WriteString("<head><meta charset=\"utf-8\"><title>")
	doc.WriteString(html.EscapeString(title))
	doc.WriteString("</title></head>\n<body>\n")
	doc.Write(body.Bytes())
	doc.WriteString("</body>\n</html>\n")

	return sanitizeFilename(title) + ".doc", doc.Bytes(), nil
}

// extractTitle returns the text of the first heading, at any level, or
// the fixed placeholder when the markdown has none.
func (r *Renderer) extractTitle(source []byte) string {
	root := r.md.Parser().Parse(text.NewReader(source))

	title := fallbackTitle
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if _, ok := n.(*ast.Heading); ok {
			if t := strings.TrimSpace(nodeText(n, source)); t != "" {
				title = t
			}
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := c.(*ast.Text); ok {
				b.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func sanitizeFilename(title string) string {
	var b strings.Builder
	for _, c := range title {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return fallbackFilename
	}
	return b.String()
}
