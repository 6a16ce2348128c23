package ailink

import (
	"strings"
	"time"
)

// Provider identifiers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Default sizes applied before a diff is sent to a provider.
const (
	DefaultMaxDiffSize   = 50000
	DefaultMaxPRDiffSize = 100000
)

var defaultModels = map[string]string{
	ProviderAnthropic: "claude-3-5-sonnet-20241022",
	ProviderOpenAI:    "gpt-4o-mini",
}

// Config is the "ai" configuration subtree.
type Config struct {
	Provider        string        `mapstructure:"provider" yaml:"provider" validate:"omitempty,oneof=anthropic openai"`
	Model           string        `mapstructure:"model" yaml:"model"`
	BaseURL         string        `mapstructure:"base_url" yaml:"base_url,omitempty" validate:"omitempty,url"`
	AnthropicAPIKey string        `mapstructure:"anthropic_api_key" yaml:"-"`
	OpenAIAPIKey    string        `mapstructure:"openai_api_key" yaml:"-"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxDiffSize     int           `mapstructure:"max_diff_size" yaml:"max_diff_size" validate:"min=0"`
	MaxPRDiffSize   int           `mapstructure:"max_pr_diff_size" yaml:"max_pr_diff_size" validate:"min=0"`

	// PromptsDir overrides embedded prompts by slug.
	PromptsDir string `mapstructure:"prompts_dir" yaml:"prompts_dir,omitempty"`
}

// ProviderName returns the configured provider, defaulting to anthropic.
func (c Config) ProviderName() string {
	p := strings.ToLower(strings.TrimSpace(c.Provider))
	if p == "" {
		return ProviderAnthropic
	}
	return p
}

// APIKey returns the credential for the configured provider.
func (c Config) APIKey() string {
	switch c.ProviderName() {
	case ProviderOpenAI:
		return strings.TrimSpace(c.OpenAIAPIKey)
	default:
		return strings.TrimSpace(c.AnthropicAPIKey)
	}
}

// DefaultModel returns the built-in model for a provider.
func DefaultModel(provider string) string {
	return defaultModels[strings.ToLower(strings.TrimSpace(provider))]
}

func (c Config) diffLimit(kind string) int {
	if kind == "pr_diff" {
		if c.MaxPRDiffSize > 0 {
			return c.MaxPRDiffSize
		}
		return DefaultMaxPRDiffSize
	}
	if c.MaxDiffSize > 0 {
		return c.MaxDiffSize
	}
	return DefaultMaxDiffSize
}
