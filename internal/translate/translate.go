// ABOUTME: Translator interface and HTTP client for a LibreTranslate-compatible API
// ABOUTME: Callers own fail-open behavior; this package only reports errors

package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnavailable indicates the translation backend could not be reached or
// returned a non-success status.
var ErrUnavailable = errors.New("translation backend unavailable")

// Translator converts text into the target language (ISO 639-1 code).
// Implementations must be safe for concurrent use.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// Client is a Translator backed by a LibreTranslate-compatible HTTP API.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a translation client for the given endpoint URL.
func NewClient(url, apiKey string, timeout time.Duration) *Client {
	return &Client{
		url:    url,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// translateRequest is the JSON request body for the translate endpoint.
type translateRequest struct {
	Query  string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	APIKey string `json:"api_key,omitempty"`
}

// translateResponse is the JSON response body from the translate endpoint.
type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Translate sends the text to the backend for translation into targetLanguage.
// The source language is auto-detected by the backend.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	body, err := json.Marshal(translateRequest{
		Query:  text,
		Source: "auto",
		Target: targetLanguage,
		APIKey: c.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("encoding translate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var parsed translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding translate response: %w", err)
	}

	return parsed.TranslatedText, nil
}

// Noop is a Translator that returns the input unchanged. Used when the
// translator is disabled in config.
type Noop struct{}

// Translate returns the text unchanged.
func (Noop) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	return text, nil
}
