package ailink

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghassist/gh-assist/internal/ailink/driver"
)

func TestMapProviderErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name       string
		statusCode int
		wantCode   string
	}{
		{"auth", 401, CodeAuth},
		{"forbidden", 403, CodeAuth},
		{"rate", 429, CodeRateLimit},
		{"bad", 400, CodeBadRequest},
		{"unavail", 503, CodeUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := &driver.ProviderError{Provider: "anthropic", StatusCode: tc.statusCode, Message: "boom"}
			mapped := mapProviderError(err)
			require.NotNil(t, mapped)
			assert.Equal(t, tc.wantCode, mapped.Code)
			assert.Equal(t, "boom", mapped.Details)
			assert.True(t, errors.Is(mapped, err))
		})
	}
}

func TestMapProviderErrorTimeout(t *testing.T) {
	mapped := mapProviderError(fmt.Errorf("request failed: %w", context.DeadlineExceeded))
	assert.Equal(t, CodeTimeout, mapped.Code)
}

func TestMapProviderErrorKeepsClassifiedErrors(t *testing.T) {
	orig := &Error{Code: CodeMissingCredentials, Message: "missing"}
	assert.Same(t, orig, mapProviderError(orig))
}
