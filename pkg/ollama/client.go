// Package ollama is a narrow client for a local Ollama server: server
// health, installed models, and emoji-prompted story generation through
// the server's OpenAI-compatible endpoint.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hikaru/emojitale/internal/observability"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2"

	// statusTimeout keeps reachability probes snappy; generation calls
	// use the client's own, much longer timeout.
	statusTimeout = 2 * time.Second
)

// Client talks to one Ollama server.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL sets the server URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithModel sets the default generation model.
func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used by the client.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for a local Ollama server. Defaults to
// localhost:11434 and llama3.2.
func New(opts ...ClientOption) *Client {
	observability.EnsureRegistered()

	c := &Client{
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the client's default generation model.
func (c *Client) Model() string {
	return c.model
}

// tagsResponse is the Ollama /api/tags response body.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Status probes the server. The detail string is suitable for direct
// display.
func (c *Client) Status(ctx context.Context) (bool, string) {
	resp, err := c.getTags(ctx)
	if err != nil {
		return false, "Ollama not detected"
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("Ollama error (status %d)", resp.StatusCode)
	}
	return true, "Ollama running"
}

// Models returns the names of the models the server has installed.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	resp, err := c.getTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tags returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decode tags response: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func (c *Client) getTags(ctx context.Context) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	// The probe client reuses the transport but not the generation
	// timeout: context above bounds the call.
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
