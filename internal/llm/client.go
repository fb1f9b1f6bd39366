// Package llm provides text generation through the Gemini REST API,
// retried across a prioritized list of models and API keys.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Gemini REST API base URL.
	BaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// RateLimit is a conservative requests-per-second cap to stay under
	// free-tier quotas.
	RateLimit = 2.0

	// DefaultTemperature is the generation temperature.
	DefaultTemperature = 0.2

	// retryBackoff is the pause between fallback attempts.
	retryBackoff = time.Second

	// APIKeyEnv and AlternateAPIKeyEnv name the environment variables
	// holding the primary and fallback API keys.
	APIKeyEnv          = "GEMINI_API_KEY"
	AlternateAPIKeyEnv = "ALTERNATE_GEMINI_API_KEY"
)

// DefaultModels is the fallback ladder, tried in order: the flash model
// first (higher quota), then the newer model if rate limited.
var DefaultModels = []string{"gemini-2.0-flash", "gemini-2.5-flash"}

// Client is a rate-limited Gemini text-generation client. Generate walks
// every {API key, model} combination before giving up.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	baseURL     string
	models      []string
	apiKeys     []string
	temperature float64
	backoff     time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKeys sets the API keys to try, in priority order.
func WithAPIKeys(keys ...string) ClientOption {
	return func(c *Client) {
		c.apiKeys = keys
	}
}

// WithModels sets the model fallback ladder.
func WithModels(models ...string) ClientOption {
	return func(c *Client) {
		c.models = models
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBackoff sets the pause between fallback attempts.
func WithBackoff(d time.Duration) ClientOption {
	return func(c *Client) {
		c.backoff = d
	}
}

// NewClient creates a Gemini client. API keys are read from the
// GEMINI_API_KEY and ALTERNATE_GEMINI_API_KEY environment variables
// unless provided via WithAPIKeys. Returns ErrNoAPIKey when no key is
// available: missing credentials are a startup-fatal configuration error.
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		limiter:     rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:     BaseURL,
		models:      DefaultModels,
		temperature: DefaultTemperature,
		backoff:     retryBackoff,
	}

	for _, env := range []string{APIKeyEnv, AlternateAPIKeyEnv} {
		if key := os.Getenv(env); key != "" {
			c.apiKeys = append(c.apiKeys, key)
		}
	}

	for _, opt := range opts {
		opt(c)
	}

	if len(c.apiKeys) == 0 {
		return nil, fmt.Errorf("%w: set %s", ErrNoAPIKey, APIKeyEnv)
	}
	if len(c.models) == 0 {
		return nil, fmt.Errorf("no Gemini models configured")
	}

	return c, nil
}

// Models returns the configured model ladder.
func (c *Client) Models() []string {
	return c.models
}

// Generate produces text for the prompt. Each API key is tried with each
// model in order; transient failures (rate limits, unavailable models)
// move on to the next combination after a brief backoff. The hard
// ErrAllAttemptsFailed error is returned only when every combination is
// exhausted.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for _, key := range c.apiKeys {
		for _, model := range c.models {
			text, err := c.generateOnce(ctx, model, key, prompt)
			if err == nil {
				return text, nil
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.backoff):
			}
		}
	}

	return "", fmt.Errorf("%w: last error: %v", ErrAllAttemptsFailed, lastErr)
}

// generateOnce performs a single generateContent call against one model
// with one key.
func (c *Client) generateOnce(ctx context.Context, model, apiKey, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature: c.temperature,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, model); err != nil {
		return "", err
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	text := result.text()
	if text == "" {
		return "", fmt.Errorf("%w: no candidates returned", ErrInvalidResponse)
	}

	return text, nil
}

// checkStatus maps HTTP error statuses to client errors.
func checkStatus(resp *http.Response, model string) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return fmt.Errorf("%w: status %d", ErrAuthError, resp.StatusCode)
	case resp.StatusCode == 429:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	default:
		return &APIError{
			StatusCode: resp.StatusCode,
			Model:      model,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// text returns the first candidate's concatenated text parts.
func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}
