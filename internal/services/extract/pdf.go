// File: internal/services/extract/pdf.go
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const analyzeAPIVersion = "2023-07-31"

// PDFExtractor runs uploaded PDFs through the document-analysis REST
// API. Text is the concatenation of every recognized line in page
// order, newline-joined.
type PDFExtractor struct {
	config *Config
	client *http.Client
	logger Logger
}

func NewPDFExtractor(config *Config, logger Logger) (*PDFExtractor, error) {
	if err := config.ValidateAnalyzer(); err != nil {
		return nil, NewExtractionError("pdf", "config", err.Error(), nil)
	}
	return &PDFExtractor{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}, nil
}

type analyzeResult struct {
	Status        string `json:"status"`
	AnalyzeResult struct {
		Pages []struct {
			Lines []struct {
				Content string `json:"content"`
			} `json:"lines"`
		} `json:"pages"`
	} `json:"analyzeResult"`
}

// ExtractText submits the document for analysis and polls the result
// operation until it settles.
func (e *PDFExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	operationURL, err := e.beginAnalyze(ctx, data)
	if err != nil {
		return "", err
	}

	result, err := e.pollResult(ctx, operationURL)
	if err != nil {
		return "", err
	}

	var lines []string
	for _, page := range result.AnalyzeResult.Pages {
		for _, line := range page.Lines {
			lines = append(lines, line.Content)
		}
	}

	e.logger.Debug("pdf analysis complete", "pages", len(result.AnalyzeResult.Pages), "lines", len(lines))
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

func (e *PDFExtractor) beginAnalyze(ctx context.Context, data []byte) (string, error) {
	url := fmt.Sprintf("%s/formrecognizer/documentModels/prebuilt-read:analyze?api-version=%s",
		strings.TrimRight(e.config.AnalyzerEndpoint, "/"), analyzeAPIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", NewExtractionError("pdf", "begin_analyze", "building request failed", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", e.config.AnalyzerKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", NewExtractionError("pdf", "begin_analyze", "HTTP request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return "", NewExtractionError("pdf", "begin_analyze", fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)), nil)
	}

	operationURL := resp.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", NewExtractionError("pdf", "begin_analyze", "missing Operation-Location header", nil)
	}
	return operationURL, nil
}

func (e *PDFExtractor) pollResult(ctx context.Context, operationURL string) (*analyzeResult, error) {
	for attempt := 0; attempt < e.config.MaxPolls; attempt++ {
		select {
		case <-ctx.Done():
			return nil, NewExtractionError("pdf", "poll_result", "analysis cancelled", ctx.Err())
		case <-time.After(e.config.PollInterval):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
		if err != nil {
			return nil, NewExtractionError("pdf", "poll_result", "building request failed", err)
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", e.config.AnalyzerKey)

		resp, err := e.client.Do(req)
		if err != nil {
			return nil, NewExtractionError("pdf", "poll_result", "HTTP request failed", err)
		}

		var result analyzeResult
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			return nil, NewExtractionError("pdf", "poll_result", "decoding response failed", err)
		}

		switch result.Status {
		case "succeeded":
			return &result, nil
		case "failed":
			return nil, NewExtractionError("pdf", "poll_result", "document analysis failed", nil)
		}
		// running / notStarted: keep polling
	}
	return nil, NewExtractionError("pdf", "poll_result", "analysis did not finish in time", nil)
}
