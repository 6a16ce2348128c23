package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	gferrors "github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	apperrors "github.com/ghassist/gh-assist/internal/errors"
	"github.com/ghassist/gh-assist/internal/observability"
)

// Fail classifies err into an error envelope carrying the invocation's
// correlation ID and exits with foundry.ExitFailure.
func Fail(ctx context.Context, err error) {
	msg := "Command failed"
	if err != nil {
		if first, _, _ := strings.Cut(err.Error(), "\n"); first != "" {
			msg = first
		}
	}
	envelope := apperrors.Classify(ctx, err, msg)
	if envelope.Original == nil && err != nil {
		envelope.Original = err
	}
	ExitWithCode(observability.Logger(), foundry.ExitFailure, msg, envelope)
}

// ExitWithCode logs msg with the foundry metadata for exitCode and exits.
// Envelope fields are logged alongside the underlying error. A nil logger
// writes the same information to stderr.
func ExitWithCode(logger *logging.Logger, exitCode foundry.ExitCode, msg string, err error) {
	info, ok := foundry.GetExitCodeInfo(exitCode)
	if !ok {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v (exit code: %d)\n", msg, err, exitCode)
		os.Exit(int(exitCode))
	}

	envelope, _ := err.(*gferrors.ErrorEnvelope)
	cause := err
	if envelope != nil {
		if original, ok := envelope.Original.(error); ok {
			cause = original
		}
	}

	if logger == nil {
		if envelope != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %s [%s] (correlation: %s)\n", msg, envelope.Code, envelope.CorrelationID)
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
		}
		if cause != nil {
			fmt.Fprintf(os.Stderr, "Underlying error: %v\n", cause)
		}
		fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
		os.Exit(info.Code)
	}

	fields := []zap.Field{
		zap.Int("exit_code", info.Code),
		zap.String("exit_name", info.Name),
		zap.String("exit_category", info.Category),
	}
	if envelope != nil {
		fields = append(fields,
			zap.String("error_code", envelope.Code),
			zap.String("correlation_id", envelope.CorrelationID),
		)
		if envelope.TraceID != "" {
			fields = append(fields, zap.String("trace_id", envelope.TraceID))
		}
		if envelope.Context != nil {
			fields = append(fields, zap.Any("error_context", envelope.Context))
		}
	}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	logger.Error(msg, fields...)
	os.Exit(info.Code)
}
