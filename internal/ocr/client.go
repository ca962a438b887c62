package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Extractor pulls readable text out of a product-label image.
type Extractor interface {
	ExtractText(ctx context.Context, image []byte, filename string) (string, error)
}

// Config points the HTTP client at an OCR service exposing a multipart
// /recognize endpoint that answers `{"text": "..."}`.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is an HTTP-backed Extractor.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient constructs an OCR client for the configured endpoint.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("ocr: base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type recognizeResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// ExtractText sends the image to the OCR service and returns the trimmed
// recognised text.
func (c *Client) ExtractText(ctx context.Context, image []byte, filename string) (string, error) {
	if len(image) == 0 {
		return "", errors.New("ocr: image is empty")
	}
	if filename == "" {
		filename = "image"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("ocr: build request: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("ocr: build request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("ocr: build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recognize", &body)
	if err != nil {
		return "", fmt.Errorf("ocr: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr: call service: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("ocr: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr: service returned status %d", resp.StatusCode)
	}

	var parsed recognizeResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("ocr: decode response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ocr: service error: %s", parsed.Error)
	}

	return strings.TrimSpace(parsed.Text), nil
}
