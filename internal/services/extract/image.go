// File: internal/services/extract/image.go
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// VisionDescriber captions images through the computer-vision REST API.
// When the backend returns no caption the caller substitutes a fixed
// placeholder; an empty string here is therefore not an error.
type VisionDescriber struct {
	config *Config
	client *http.Client
	logger Logger
}

func NewVisionDescriber(config *Config, logger Logger) (*VisionDescriber, error) {
	if err := config.ValidateVision(); err != nil {
		return nil, NewExtractionError("image", "config", err.Error(), nil)
	}
	return &VisionDescriber{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}, nil
}

type visionResponse struct {
	Description struct {
		Captions []struct {
			Text       string  `json:"text"`
			Confidence float64 `json:"confidence"`
		} `json:"captions"`
	} `json:"description"`
}

func (d *VisionDescriber) Describe(ctx context.Context, data []byte) (string, error) {
	url := fmt.Sprintf("%s/vision/v3.2/analyze?visualFeatures=Description,Tags",
		strings.TrimRight(d.config.VisionEndpoint, "/"))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", NewExtractionError("image", "analyze", "building request failed", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", d.config.VisionKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", NewExtractionError("image", "analyze", "HTTP request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", NewExtractionError("image", "analyze", fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)), nil)
	}

	var result visionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", NewExtractionError("image", "analyze", "decoding response failed", err)
	}

	if len(result.Description.Captions) == 0 {
		d.logger.Debug("vision analysis returned no caption")
		return "", nil
	}
	return result.Description.Captions[0].Text, nil
}
