package i18nexus

import (
	"errors"
	"fmt"
)

// ErrInvalidToken indicates the API key or personal access token was rejected
var ErrInvalidToken = errors.New("invalid or expired i18nexus credentials")

// ErrRateLimited indicates the API rate limit was exceeded
var ErrRateLimited = errors.New("i18nexus API rate limit exceeded")

// ErrNoTranslations indicates there is no data for a language/namespace pair
var ErrNoTranslations = errors.New("no translations for language and namespace")

// ErrNotConfigured indicates no credentials are available
var ErrNotConfigured = errors.New("i18nexus credentials are not configured")

// ServerError represents a 5xx error from the i18nexus API
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("i18nexus server error: HTTP %d", e.StatusCode)
}

// StatusError is a non-retryable unexpected response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}
