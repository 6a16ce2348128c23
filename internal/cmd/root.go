package cmd

import (
	"context"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ghassist/gh-assist/internal/ailink/driver"
	"github.com/ghassist/gh-assist/internal/config"
	apperrors "github.com/ghassist/gh-assist/internal/errors"
	"github.com/ghassist/gh-assist/internal/observability"
)

var (
	cfgFile       string
	verbose       bool
	traceFile     string
	assumeYes     bool
	workDir       string
	modelOverride string

	loadedConfig *config.Result
	configErr    error
	stopTracing  func()

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "AI-assisted git and GitHub workflows",
	Long: `gh-assist wraps git, the GitHub REST API and a language model.

Hosting API calls wait out exhausted rate-limit windows and retry.
Use the subcommands to perform specific operations.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command with ctx. Callers pass the returned error to
// Fail.
func Execute(ctx context.Context) error {
	defer closeTrace()
	return rootCmd.ExecuteContext(ctx)
}

func closeTrace() {
	if stopTracing != nil {
		stopTracing()
		stopTracing = nil
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./.gh-assistant.yml, $XDG_CONFIG_HOME/gh-assist/config.yml, ~/.gh-assistant.yml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
	flags.StringVar(&traceFile, "trace", "", "trace model requests/responses to NDJSON file")
	flags.BoolVarP(&assumeYes, "yes", "y", false, "accept prompt defaults without asking")
	flags.StringVarP(&workDir, "dir", "C", "", "run as if started in this directory")
	flags.StringVar(&modelOverride, "model", "", "model to use for AI operations")
}

// initConfig builds the logger and loads configuration. A load failure is
// kept so commands that need no configuration, and doctor, still run.
func initConfig() {
	observability.InitCLILogger(config.AppName, verbose)

	closeTrace()
	if traceFile != "" {
		cleanup, err := driver.EnableTracing(traceFile)
		if err != nil {
			observability.CLILogger.Warn("Failed to enable tracing", zap.Error(err))
		} else {
			observability.CLILogger.Debug("Model tracing enabled", zap.String("file", traceFile))
			stopTracing = cleanup
		}
	}

	loadedConfig, configErr = config.Load(config.Options{File: cfgFile, WorkDir: workDir})
	if configErr != nil {
		observability.CLILogger.Debug("Config load failed", zap.Error(configErr))
		return
	}
	if loadedConfig.Config.CLI.Debug {
		observability.CLILogger.SetLevel(logging.DEBUG)
	}
	if loadedConfig.Path != "" {
		observability.CLILogger.Debug("Using config file", zap.String("path", loadedConfig.Path))
	} else {
		observability.CLILogger.Debug("No config file found, using defaults and environment variables")
	}
}

// requireConfig returns the loaded configuration or the load failure as a
// config envelope.
func requireConfig(ctx context.Context) (*config.Config, error) {
	if configErr != nil {
		return nil, apperrors.Wrap(ctx, apperrors.CodeConfigInvalid, configErr, "load configuration: "+configErr.Error())
	}
	if loadedConfig == nil || loadedConfig.Config == nil {
		return nil, apperrors.NewConfigInvalidError("configuration not loaded")
	}
	return loadedConfig.Config, nil
}
