package ailink

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ghassist/gh-assist/internal/ailink/driver"
	"github.com/ghassist/gh-assist/internal/ailink/driver/anthropic"
	"github.com/ghassist/gh-assist/internal/ailink/driver/openai"
	"github.com/ghassist/gh-assist/internal/ailink/prompt"
)

// Registry builds and caches the driver for the configured provider.
type Registry struct {
	cfg Config

	mu      sync.Mutex
	drivers map[string]driver.Driver
}

// ResolvedProvider is the driver and model chosen for one request.
type ResolvedProvider struct {
	Provider string
	Driver   driver.Driver
	Model    string
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg}
}

// Resolve picks the driver and model for promptDef.
func (r *Registry) Resolve(promptDef *prompt.Prompt, modelOverride string) (*ResolvedProvider, error) {
	if r == nil {
		return nil, fmt.Errorf("ailink registry not configured")
	}
	provider := r.cfg.ProviderName()

	drv, err := r.driverFor(provider)
	if err != nil {
		return nil, err
	}

	model, err := resolveModel(r.cfg, promptDef, modelOverride)
	if err != nil {
		return nil, err
	}

	return &ResolvedProvider{Provider: provider, Driver: drv, Model: model}, nil
}

func (r *Registry) driverFor(provider string) (driver.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.drivers == nil {
		r.drivers = map[string]driver.Driver{}
	}
	if drv, ok := r.drivers[provider]; ok {
		return drv, nil
	}

	key := r.cfg.APIKey()
	if key == "" {
		return nil, &Error{Code: CodeMissingCredentials, Message: fmt.Sprintf("%s API key required. Set %s env variable.", provider, apiKeyEnv(provider))}
	}

	var drv driver.Driver
	switch provider {
	case ProviderAnthropic:
		client := anthropic.NewClient(r.cfg.BaseURL, key)
		client.Timeout = r.cfg.Timeout
		drv = client
	case ProviderOpenAI:
		client := openai.NewClient(r.cfg.BaseURL, key)
		client.Timeout = r.cfg.Timeout
		drv = client
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", provider)
	}
	r.drivers[provider] = drv
	return drv, nil
}

func apiKeyEnv(provider string) string {
	if provider == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "ANTHROPIC_API_KEY"
}

// resolveModel prefers the explicit override, then the configured model, then
// the prompt's preferred models, then the provider default.
func resolveModel(cfg Config, promptDef *prompt.Prompt, override string) (string, error) {
	if model := strings.TrimSpace(override); model != "" {
		return model, nil
	}
	if model := strings.TrimSpace(cfg.Model); model != "" {
		return model, nil
	}
	for _, model := range preferredModels(promptDef) {
		if model = strings.TrimSpace(model); model != "" {
			return model, nil
		}
	}
	if model := DefaultModel(cfg.ProviderName()); model != "" {
		return model, nil
	}
	return "", fmt.Errorf("model not configured")
}

func preferredModels(promptDef *prompt.Prompt) []string {
	if promptDef == nil {
		return nil
	}

	value, ok := promptDef.Config.ProviderHints["preferred_models"]
	if !ok || value == nil {
		return nil
	}

	switch typed := value.(type) {
	case []string:
		return typed
	case []any:
		models := make([]string, 0, len(typed))
		for _, item := range typed {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				models = append(models, s)
			}
		}
		return models
	case string:
		if strings.TrimSpace(typed) == "" {
			return nil
		}
		return []string{typed}
	default:
		return nil
	}
}
