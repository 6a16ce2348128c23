package config

import (
	"github.com/ghassist/gh-assist/internal/ailink"
	"github.com/ghassist/gh-assist/internal/github"
)

// Config is the complete application configuration. Values come from, in
// increasing precedence: built-in defaults, the discovered YAML file, the
// well-known unprefixed environment variables, then GH_ASSIST_<SECTION>_<KEY>.
type Config struct {
	GitHub GitHubConfig  `mapstructure:"github" yaml:"github"`
	AI     ailink.Config `mapstructure:"ai" yaml:"ai"`
	Git    GitConfig     `mapstructure:"git" yaml:"git"`
	CLI    CLIConfig     `mapstructure:"cli" yaml:"cli"`
}

// GitHubConfig configures the hosting API client.
type GitHubConfig struct {
	Token          string             `mapstructure:"token" yaml:"-"`
	BaseURL        string             `mapstructure:"base_url" yaml:"base_url,omitempty" validate:"omitempty,url"`
	DefaultPrivate bool               `mapstructure:"default_private" yaml:"default_private"`
	AutoInit       bool               `mapstructure:"auto_init" yaml:"auto_init"`
	Retry          github.RetryPolicy `mapstructure:"retry" yaml:"retry"`
}

// GitConfig configures local repository defaults.
type GitConfig struct {
	DefaultBranch string `mapstructure:"default_branch" yaml:"default_branch" validate:"required"`
	AutoStage     bool   `mapstructure:"auto_stage" yaml:"auto_stage"`
}

// CLIConfig holds command-line behaviour switches.
type CLIConfig struct {
	Debug bool `mapstructure:"debug" yaml:"debug"`
}
