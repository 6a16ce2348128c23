package ailink

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ghassist/gh-assist/internal/ailink/driver"
)

// Error codes reported by the assistant.
const (
	CodeMissingCredentials = "AILINK_MISSING_CREDENTIALS"
	CodeTimeout            = "AILINK_PROVIDER_TIMEOUT"
	CodeAuth               = "AILINK_PROVIDER_AUTH"
	CodeRateLimit          = "AILINK_PROVIDER_RATE_LIMIT"
	CodeUnavailable        = "AILINK_PROVIDER_UNAVAILABLE"
	CodeBadRequest         = "AILINK_PROVIDER_BAD_REQUEST"
	CodeProvider           = "AILINK_PROVIDER_ERROR"
	CodeEmptyResponse      = "AILINK_EMPTY_RESPONSE"
)

// Error is a classified text-generation failure.
type Error struct {
	Code    string
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "ailink error"
	}
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func mapProviderError(err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: CodeTimeout, Message: "provider request timed out", Err: err}
	}

	var perr *driver.ProviderError
	if errors.As(err, &perr) && perr != nil {
		status := perr.StatusCode
		details := strings.TrimSpace(perr.Message)
		switch {
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return &Error{Code: CodeAuth, Message: "provider authentication failed", Details: details, Err: err}
		case status == http.StatusTooManyRequests:
			return &Error{Code: CodeRateLimit, Message: "provider rate limited", Details: details, Err: err}
		case status >= 500 && status <= 599:
			return &Error{Code: CodeUnavailable, Message: "provider unavailable", Details: details, Err: err}
		case status >= 400 && status <= 499:
			return &Error{Code: CodeBadRequest, Message: "provider rejected request", Details: details, Err: err}
		default:
			return &Error{Code: CodeProvider, Message: "provider request failed", Details: details, Err: err}
		}
	}

	return &Error{Code: CodeProvider, Message: "provider request failed", Details: err.Error(), Err: err}
}
