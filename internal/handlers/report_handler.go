// File: internal/handlers/report_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mahluminnovations/gymengine/internal/services"
	"github.com/mahluminnovations/gymengine/internal/services/report"
)

// ReportHandler serves rendered report downloads. Each report id is
// single use; the cached source is consumed by the first request.
type ReportHandler struct {
	Cache    *report.Cache
	Renderer *report.Renderer
	Logger   services.Logger
}

func NewReportHandler(cache *report.Cache, renderer *report.Renderer, logger services.Logger) *ReportHandler {
	return &ReportHandler{Cache: cache, Renderer: renderer, Logger: logger}
}

// GenerateReport renders the cached markdown behind a report id into a
// Word-compatible document and streams it as an attachment.
func (h *ReportHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	reportID := r.URL.Query().Get("reportId")
	if reportID == "" {
		writeError(w, "reportId is required", http.StatusBadRequest)
		return
	}

	markdown, err := h.Cache.Consume(reportID)
	if err != nil {
		if errors.Is(err, report.ErrReportNotFound) {
			writeError(w, "Report not found or already downloaded", http.StatusNotFound)
			return
		}
		h.Logger.Error("report lookup failed", "reportId", reportID, "error", err)
		writeError(w, "Could not retrieve report", http.StatusInternalServerError)
		return
	}

	filename, content, err := h.Renderer.Render(markdown)
	if err != nil {
		h.Logger.Error("report rendering failed", "reportId", reportID, "error", err)
		writeError(w, "Could not render report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}
