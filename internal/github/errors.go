package github

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrMissingToken is returned when a request is attempted without a token.
var ErrMissingToken = errors.New("github token is required (set GITHUB_TOKEN)")

// APIError is returned for any non-2xx response that is not an exhausted
// rate-limit window.
type APIError struct {
	StatusCode       int
	Method           string
	Path             string
	Message          string
	DocumentationURL string
}

func (e *APIError) Error() string {
	if e == nil {
		return "github request failed"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Method != "" && e.Path != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, msg)
}

// RateLimitError is the explicit rate-limit signal: the server rejected the
// request and reported zero remaining calls in the window.
type RateLimitError struct {
	StatusCode int
	Message    string
	Window     Window
}

func (e *RateLimitError) Error() string {
	if e == nil {
		return "github rate limit exceeded"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "API rate limit exceeded"
	}
	if !e.Window.Reset.IsZero() {
		return fmt.Sprintf("%d %s (resets at %s)", e.StatusCode, msg, e.Window.Reset.UTC().Format(time.RFC3339))
	}
	return fmt.Sprintf("%d %s", e.StatusCode, msg)
}
