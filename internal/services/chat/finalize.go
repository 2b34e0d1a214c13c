// File: internal/services/chat/finalize.go
package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mahluminnovations/gymengine/internal/domain"
	"github.com/mahluminnovations/gymengine/internal/services/ai"
)

var (
	blankRuns  = regexp.MustCompile(`\n{2,}`)
	bulletLine = regexp.MustCompile(`^-\s`)
	numberLine = regexp.MustCompile(`^\d+\.\s`)
)

// Finalize post-processes completed assistant text. When the text
// carries the report-request marker, the marker is stripped, the
// remaining text is expanded into a long-form report, the report is
// registered under a fresh single-use token, and a markdown download
// link referencing that token is appended to the visible reply. This is
// the only place report tokens are minted.
func (s *Service) Finalize(ctx context.Context, text string) string {
	if !strings.Contains(text, reportMarker) {
		return text
	}

	visible := strings.TrimSpace(strings.ReplaceAll(text, reportMarker, ""))
	expanded := s.expandReport(ctx, visible)
	reportID := s.reports.Store(expanded)

	s.logger.Info("report registered", "report_id", reportID, "length", len(expanded))

	link := fmt.Sprintf("[Click here to download the document](/api/generateReport?reportId=%s)", reportID)
	return fmt.Sprintf("%s\n\nDownloadable Report:\n%s", visible, link)
}

// expandReport turns a brief summary into a full report via a secondary
// completion call, prefixed with a generated short title heading. When
// the engine fails the summary itself is kept, with a notice.
func (s *Service) expandReport(ctx context.Context, summary string) string {
	shortTitle := s.generateShortTitle(ctx, summary)

	messages := []ai.Message{
		{Role: domain.RoleSystem, Content: "You are a helpful assistant that specializes in creating detailed, comprehensive reports."},
		{Role: domain.RoleUser, Content: "Here is a brief summary: " + summary + "\n\nPlease create a significantly more in-depth and expanded report."},
	}

	detailed, err := s.ai.GetCompletion(ctx, s.config.ReportModel, messages)
	if err != nil {
		s.logger.Error("report expansion failed", "error", err)
		return fmt.Sprintf("# %s\n\n%s\n\n(Additional detail could not be generated.)", shortTitle, summary)
	}

	return fmt.Sprintf("# %s\n\n%s", shortTitle, cleanupReport(detailed))
}

func (s *Service) generateShortTitle(ctx context.Context, content string) string {
	messages := []ai.Message{
		{Role: domain.RoleSystem, Content: "You are an assistant that creates short, descriptive titles for documents. The title should be 3-6 words long and summarize the main content."},
		{Role: domain.RoleUser, Content: "Here is the content: " + content + "\n\nPlease generate a short, descriptive title for this document."},
	}

	title, err := s.ai.GetCompletion(ctx, s.config.ReportModel, messages)
	if err != nil {
		s.logger.Error("short title generation failed", "error", err)
		return "Untitled Document"
	}
	return strings.TrimSpace(title)
}

// cleanupReport normalizes generated markdown: blank-line runs collapse
// to one blank line, horizontal rules are dropped, and heading/bullet
// spacing is made uniform.
func cleanupReport(text string) string {
	cleaned := blankRuns.ReplaceAllString(text, "\n\n")
	cleaned = strings.ReplaceAll(cleaned, "---", "")

	var out []string
	for _, line := range strings.Split(cleaned, "\n") {
		stripped := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(stripped, "### "):
			out = append(out, "### "+strings.TrimSpace(stripped[4:]))
		case strings.HasPrefix(stripped, "## "):
			out = append(out, "## "+strings.TrimSpace(stripped[3:]))
		case strings.HasPrefix(stripped, "# "):
			out = append(out, "# "+strings.TrimSpace(stripped[2:]))
		case bulletLine.MatchString(stripped):
			out = append(out, "- "+strings.TrimSpace(stripped[2:]))
		case numberLine.MatchString(stripped):
			out = append(out, stripped)
		default:
			out = append(out, stripped)
		}
	}
	return strings.Join(out, "\n")
}
