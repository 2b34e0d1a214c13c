package report

import (
	"strings"
	"testing"
)

func TestRenderUsesFirstHeadingForFilename(t *testing.T) {
	r := NewRenderer()

	filename, content, err := r.Render("# Quarterly Gym Report\n\nMembership grew.\n\n- point one\n- point two\n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if filename != "Quarterly_Gym_Report.doc" {
		t.Fatalf("unexpected filename: %q", filename)
	}

	doc := string(content)
	if !strings.Contains(doc, "<title>Quarterly Gym Report</title>") {
		t.Fatalf("document title missing: %s", doc)
	}
	if !strings.Contains(doc, "Membership grew.") {
		t.Fatal("paragraph text missing from rendered document")
	}
	if !strings.Contains(doc, "<li>") {
		t.Fatal("list items missing from rendered document")
	}
}

func TestRenderFallsBackWithoutHeading(t *testing.T) {
	r := NewRenderer()

	filename, content, err := r.Render("Just a paragraph with **bold** text.")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if filename != "Generated_Report.doc" {
		t.Fatalf("unexpected fallback filename: %q", filename)
	}
	if !strings.Contains(string(content), "<strong>bold</strong>") {
		t.Fatal("bold span not rendered")
	}
}

func TestRenderSkipsLaterHeadings(t *testing.T) {
	r := NewRenderer()

	filename, _, err := r.Render("## First Section\n\ntext\n\n## Second Section\n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if filename != "First_Section.doc" {
		t.Fatalf("unexpected filename: %q", filename)
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := sanitizeFilename("Q3 2026: Revenue & Churn"); got != "Q3_2026__Revenue___Churn" {
		t.Fatalf("unexpected sanitized name: %q", got)
	}
	if got := sanitizeFilename("!!!"); got != "report" {
		t.Fatalf("expected fallback for all-symbol title, got %q", got)
	}
}
