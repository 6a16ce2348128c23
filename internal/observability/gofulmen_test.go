package observability_test

import (
	"context"
	"testing"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/fulmenhq/gofulmen/logging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ghassist/gh-assist/internal/observability"
)

func TestGofulmenIntegration(t *testing.T) {
	t.Run("CLI logger creation", func(t *testing.T) {
		observability.InitCLILogger("test-service", false)
		require.NotNil(t, observability.CLILogger)

		observability.CLILogger.Info("Test CLI log message", zap.String("test", "value"))
	})

	t.Run("Logger with verbose mode", func(t *testing.T) {
		observability.InitCLILogger("verbose-test", true)
		require.NotNil(t, observability.CLILogger)

		observability.CLILogger.Debug("Debug message", zap.String("mode", "verbose"))
	})

	t.Run("Logger accessor", func(t *testing.T) {
		observability.CLILogger = nil
		logger := observability.Logger()
		require.NotNil(t, logger)
		assert.Same(t, logger, observability.Logger())
		logger.SetLevel(logging.DEBUG)
	})
}

func TestEmbeddedCrucible(t *testing.T) {
	version := crucible.GetVersion()
	assert.NotEmpty(t, version.Gofulmen)
	assert.NotEmpty(t, version.Crucible)
	assert.NotEmpty(t, crucible.GetVersionString())
}

func TestInvocationID(t *testing.T) {
	assert.Empty(t, observability.InvocationID(context.Background()))

	ctx := observability.WithInvocation(context.Background())
	id := observability.InvocationID(ctx)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	other := observability.InvocationID(observability.WithInvocation(context.Background()))
	assert.NotEqual(t, id, other)
}
