// Package errors converts command failures into gofulmen error envelopes.
package errors

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/google/uuid"

	"github.com/ghassist/gh-assist/internal/ailink"
	"github.com/ghassist/gh-assist/internal/config"
	"github.com/ghassist/gh-assist/internal/git"
	"github.com/ghassist/gh-assist/internal/github"
	"github.com/ghassist/gh-assist/internal/observability"
)

// Envelope codes used by the command surface.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeRateLimited        = "RATE_LIMITED"
	CodeExternalService    = "EXTERNAL_SERVICE_ERROR"
	CodeTimeout            = "TIMEOUT"
	CodeCancelled          = "CANCELLED"
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeMissingCredentials = "MISSING_CREDENTIALS"
	CodeGitFailed          = "GIT_COMMAND_FAILED"
	CodeNotRepository      = "NOT_A_REPOSITORY"
	CodeAIFailed           = "AI_PROVIDER_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
)

func NewInvalidInputError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeInvalidInput, message)
}

func NewConfigInvalidError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeConfigInvalid, message)
}

func NewMissingCredentialsError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeMissingCredentials, message)
}

// Wrap builds an envelope for err tagged with the invocation's correlation ID.
func Wrap(ctx context.Context, code string, err error, message string) *errors.ErrorEnvelope {
	id := extractCorrelationID(ctx)
	envelope := errors.NewErrorEnvelope(code, message)
	envelope = envelope.WithCorrelationID(id)
	envelope = envelope.WithTraceID(id)
	envelope = withWrappedError(envelope, err)
	return envelope
}

// Classify wraps err with the envelope code matching its type. Envelopes
// pass through with a correlation ID ensured.
func Classify(ctx context.Context, err error, message string) *errors.ErrorEnvelope {
	if err == nil {
		return EnsureEnvelope(nil)
	}
	var envelope *errors.ErrorEnvelope
	if stderrors.As(err, &envelope) && envelope != nil {
		return EnsureCorrelationID(envelope, ctx)
	}

	code := CodeInternal
	details := map[string]any{}

	var (
		rateErr *github.RateLimitError
		apiErr  *github.APIError
		gitErr  *git.Error
		aiErr   *ailink.Error
	)
	switch {
	case stderrors.Is(err, context.Canceled):
		code = CodeCancelled
	case stderrors.Is(err, context.DeadlineExceeded):
		code = CodeTimeout
	case stderrors.As(err, &rateErr):
		code = CodeRateLimited
		if !rateErr.Window.Reset.IsZero() {
			details["rate_limit_reset"] = rateErr.Window.Reset.UTC().Format("2006-01-02T15:04:05Z")
		}
	case stderrors.As(err, &apiErr):
		code = codeForStatus(apiErr.StatusCode)
		details["status_code"] = apiErr.StatusCode
		details["endpoint"] = apiErr.Method + " " + apiErr.Path
	case stderrors.Is(err, github.ErrMissingToken):
		code = CodeMissingCredentials
	case stderrors.Is(err, git.ErrNotRepository):
		code = CodeNotRepository
	case stderrors.As(err, &gitErr):
		code = CodeGitFailed
		if len(gitErr.Args) > 0 {
			details["git_command"] = gitErr.Args[0]
		}
	case stderrors.As(err, &aiErr):
		code = CodeAIFailed
		if aiErr.Code == ailink.CodeMissingCredentials {
			code = CodeMissingCredentials
		}
		details["ai_code"] = aiErr.Code
	case stderrors.Is(err, config.ErrConfigNotFound):
		code = CodeConfigInvalid
	}

	details["wrapped_error"] = err.Error()
	id := extractCorrelationID(ctx)
	envelope = errors.NewErrorEnvelope(code, message).WithCorrelationID(id).WithTraceID(id)
	if updated, updateErr := envelope.WithContext(details); updateErr == nil {
		envelope = updated
	}
	return envelope
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return CodeUnauthorized
	case status == http.StatusForbidden:
		return CodeForbidden
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		return CodeInvalidInput
	default:
		return CodeExternalService
	}
}

// extractCorrelationID returns the invocation ID, generating one when the
// context carries none.
func extractCorrelationID(ctx context.Context) string {
	if id := observability.InvocationID(ctx); id != "" {
		return id
	}
	return uuid.New().String()
}

// EnsureEnvelope normalizes any error into a gofulmen ErrorEnvelope.
func EnsureEnvelope(err error) *errors.ErrorEnvelope {
	if err == nil {
		env := errors.NewErrorEnvelope(CodeInternal, "unexpected nil error")
		env, _ = env.WithSeverity(errors.SeverityCritical)
		return env
	}

	if envelope, ok := err.(*errors.ErrorEnvelope); ok && envelope != nil {
		return envelope
	}

	env := errors.NewErrorEnvelope(CodeInternal, "unexpected error")
	env, _ = env.WithContext(map[string]interface{}{
		"wrapped_error": err.Error(),
	})
	env, _ = env.WithSeverity(errors.SeverityHigh)
	return env
}

// EnsureCorrelationID attaches the invocation ID when the envelope has none.
func EnsureCorrelationID(envelope *errors.ErrorEnvelope, ctx context.Context) *errors.ErrorEnvelope {
	if envelope == nil {
		return nil
	}

	if envelope.CorrelationID != "" {
		return envelope
	}

	correlationID := observability.InvocationID(ctx)
	if correlationID == "" {
		correlationID = "fallback-" + errors.GenerateCorrelationID()
	}

	return envelope.WithCorrelationID(correlationID)
}

func withWrappedError(envelope *errors.ErrorEnvelope, err error) *errors.ErrorEnvelope {
	if envelope == nil || err == nil {
		return envelope
	}

	updated, updateErr := envelope.WithContext(map[string]interface{}{
		"wrapped_error": err.Error(),
	})
	if updateErr != nil {
		return envelope
	}
	return updated
}
