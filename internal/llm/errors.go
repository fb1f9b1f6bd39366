package llm

import (
	"errors"
	"fmt"
)

// Common errors returned by the Gemini client.
var (
	// ErrNoAPIKey indicates no API key was configured.
	ErrNoAPIKey = errors.New("no Gemini API key configured")

	// ErrAuthError indicates an authentication error (missing/invalid API key).
	ErrAuthError = errors.New("Gemini authentication error")

	// ErrRateLimited indicates the rate limit has been exceeded.
	ErrRateLimited = errors.New("Gemini rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with Gemini")

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = errors.New("invalid response from Gemini")

	// ErrAllAttemptsFailed indicates every {model, key} combination failed.
	ErrAllAttemptsFailed = errors.New("all Gemini models and API keys failed")
)

// APIError represents an error response from the Gemini API.
type APIError struct {
	StatusCode int
	Model      string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Gemini API error (status %d, model %s): %s", e.StatusCode, e.Model, e.Message)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// IsAuthError returns true if the error indicates an authentication problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}
