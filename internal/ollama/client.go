// Package ollama wraps the text-generation collaborator: an Ollama server
// reached over HTTP. The engine only depends on the TextGenerator interface,
// so tests substitute a stub.
package ollama

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

// ErrUnavailable covers collaborator-side failures: connection refused,
// timeout, non-200 status, or an empty completion. It always carries detail
// via wrapping.
var ErrUnavailable = errors.New("text generator unavailable")

// TextGenerator produces a completion for a prompt. An error (never an empty
// string with nil error) signals collaborator failure.
type TextGenerator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Client talks to an Ollama server's /api/generate endpoint.
type Client struct {
	host string
	http *http.Client
}

// New creates a Client for the given host (e.g. "http://localhost:11434")
// with a per-request timeout.
func New(host string, timeout time.Duration) *Client {
	return &Client{
		host: host,
		http: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends a non-streaming completion request and returns the raw
// response text.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: model, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}
	if out.Response == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUnavailable)
	}
	return out.Response, nil
}

// Healthy probes /api/tags, the cheapest liveness signal the server offers.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
