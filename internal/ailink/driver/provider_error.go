package driver

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ProviderError is returned when a provider responds with a non-2xx status.
//
// RawResponse holds the provider response body and must never include API keys.
type ProviderError struct {
	Provider    string
	StatusCode  int
	Type        string
	Message     string
	RawResponse []byte
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s request failed: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}

// NewProviderError builds a ProviderError from a failed response body. Both
// the Anthropic and OpenAI error envelopes use {"error":{"type","message"}}.
func NewProviderError(provider string, status int, body []byte) *ProviderError {
	perr := &ProviderError{Provider: provider, StatusCode: status, RawResponse: body}
	var envelope struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		perr.Type = envelope.Error.Type
		perr.Message = envelope.Error.Message
		return perr
	}
	perr.Message = strings.TrimSpace(string(body))
	if perr.Message == "" {
		perr.Message = "empty response body"
	}
	return perr
}
