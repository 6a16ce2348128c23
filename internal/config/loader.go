// Package config discovers, loads and validates gh-assist configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	validator "github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ghassist/gh-assist/internal/ailink"
	"github.com/ghassist/gh-assist/internal/github"
)

// AppName names the XDG config directory.
const AppName = "gh-assist"

// EnvPrefix prefixes the structured environment overrides.
const EnvPrefix = "GH_ASSIST"

// ErrConfigNotFound is returned when an explicit config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

var validate = validator.New(validator.WithRequiredStructEnabled())

// EnvVarSpec maps an environment variable onto a config path.
type EnvVarSpec = gfconfig.EnvVarSpec

// Options control discovery. Zero values use the process environment.
type Options struct {
	// File is the --config flag value.
	File string
	// WorkDir is searched for .gh-assistant.yml; defaults to the cwd.
	WorkDir string
	// HomeDir is searched for ~/.gh-assistant.yml; defaults to the user home.
	HomeDir string
	// SkipDotenv disables loading .env.local and .env from WorkDir.
	SkipDotenv bool
}

// Result is a loaded configuration and the file it came from, if any.
type Result struct {
	Config *Config
	Path   string
}

// Load reads configuration following the documented search order.
func Load(opts Options) (*Result, error) {
	workDir := opts.WorkDir
	if workDir == "" {
		if wd, err := os.Getwd(); err == nil {
			workDir = wd
		}
	}
	homeDir := opts.HomeDir
	if homeDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			homeDir = home
		}
	}

	if !opts.SkipDotenv {
		// Existing environment always wins over dotenv files.
		for _, name := range []string{".env.local", ".env"} {
			_ = godotenv.Load(filepath.Join(workDir, name))
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	path, err := resolveFile(opts.File, workDir, homeDir)
	if err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	overrides, err := gfconfig.LoadEnvOverrides(envSpecs())
	if err != nil {
		return nil, fmt.Errorf("load environment overrides: %w", err)
	}
	if len(overrides) > 0 {
		if err := v.MergeConfigMap(overrides); err != nil {
			return nil, fmt.Errorf("merge environment overrides: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := decode(v.AllSettings())
	if err != nil {
		return nil, err
	}
	return &Result{Config: cfg, Path: path}, nil
}

func decode(settings map[string]any) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToFloat64HookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.AI.Model) == "" {
		cfg.AI.Model = ailink.DefaultModel(cfg.AI.ProviderName())
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// resolveFile returns the first existing candidate. An explicit file must
// exist; discovery misses are not an error.
func resolveFile(explicit, workDir, homeDir string) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, explicit)
		}
		return explicit, nil
	}
	for _, candidate := range SearchPaths(workDir, homeDir) {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", nil
}

// SearchPaths lists config candidates in priority order.
func SearchPaths(workDir, homeDir string) []string {
	var paths []string
	if workDir != "" {
		paths = append(paths,
			filepath.Join(workDir, ".gh-assistant.yml"),
			filepath.Join(workDir, ".gh-assistant.yaml"),
		)
	}
	if dir := gfconfig.GetAppConfigDir(AppName); dir != "" {
		paths = append(paths, filepath.Join(dir, "config.yml"), filepath.Join(dir, "config.yaml"))
	}
	if homeDir != "" {
		paths = append(paths, filepath.Join(homeDir, ".gh-assistant.yml"))
	}
	return paths
}

// DefaultConfigPath is where `config init` writes when no path is given.
func DefaultConfigPath() string {
	dir := gfconfig.GetAppConfigDir(AppName)
	if strings.TrimSpace(dir) == "" {
		return ".gh-assistant.yml"
	}
	return filepath.Join(dir, "config.yml")
}

func setDefaults(v *viper.Viper) {
	retry := github.DefaultRetryPolicy()

	v.SetDefault("github.token", "")
	v.SetDefault("github.base_url", "")
	v.SetDefault("github.default_private", false)
	v.SetDefault("github.auto_init", true)
	v.SetDefault("github.retry.max_attempts", retry.MaxAttempts)
	v.SetDefault("github.retry.reset_buffer", retry.ResetBuffer.String())
	v.SetDefault("github.retry.max_wait", retry.MaxWait.String())
	v.SetDefault("github.retry.generic_wait", retry.GenericWait.String())
	v.SetDefault("github.retry.min_wait", retry.MinWait.String())

	v.SetDefault("ai.provider", ailink.ProviderAnthropic)
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.anthropic_api_key", "")
	v.SetDefault("ai.openai_api_key", "")
	v.SetDefault("ai.timeout", "120s")
	v.SetDefault("ai.max_diff_size", ailink.DefaultMaxDiffSize)
	v.SetDefault("ai.max_pr_diff_size", ailink.DefaultMaxPRDiffSize)
	v.SetDefault("ai.prompts_dir", "")

	v.SetDefault("git.default_branch", "main")
	v.SetDefault("git.auto_stage", false)

	v.SetDefault("cli.debug", false)
}

// envSpecs lists the unprefixed variables the tool has always honoured.
func envSpecs() []EnvVarSpec {
	return []EnvVarSpec{
		{Name: "GITHUB_TOKEN", Path: []string{"github", "token"}, Type: gfconfig.EnvString},
		{Name: "ANTHROPIC_API_KEY", Path: []string{"ai", "anthropic_api_key"}, Type: gfconfig.EnvString},
		{Name: "ANTHROPIC_MODEL", Path: []string{"ai", "model"}, Type: gfconfig.EnvString},
		{Name: "OPENAI_API_KEY", Path: []string{"ai", "openai_api_key"}, Type: gfconfig.EnvString},
		{Name: EnvPrefix + "_DEBUG", Path: []string{"cli", "debug"}, Type: gfconfig.EnvBool},
		{Name: EnvPrefix + "_DEFAULT_BRANCH", Path: []string{"git", "default_branch"}, Type: gfconfig.EnvString},
	}
}
