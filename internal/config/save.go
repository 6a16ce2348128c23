package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Save writes cfg as YAML. Credentials are never written; durations are
// rendered in their string form so the file stays hand-editable.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Marshal renders cfg without secrets.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(fileView(cfg))
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func fileView(cfg *Config) map[string]any {
	retry := cfg.GitHub.Retry
	github := map[string]any{
		"default_private": cfg.GitHub.DefaultPrivate,
		"auto_init":       cfg.GitHub.AutoInit,
		"retry": map[string]any{
			"max_attempts": retry.MaxAttempts,
			"reset_buffer": retry.ResetBuffer.String(),
			"max_wait":     retry.MaxWait.String(),
			"generic_wait": retry.GenericWait.String(),
			"min_wait":     retry.MinWait.String(),
		},
	}
	if cfg.GitHub.BaseURL != "" {
		github["base_url"] = cfg.GitHub.BaseURL
	}

	ai := map[string]any{
		"provider":         cfg.AI.ProviderName(),
		"model":            cfg.AI.Model,
		"timeout":          cfg.AI.Timeout.String(),
		"max_diff_size":    cfg.AI.MaxDiffSize,
		"max_pr_diff_size": cfg.AI.MaxPRDiffSize,
	}
	if cfg.AI.BaseURL != "" {
		ai["base_url"] = cfg.AI.BaseURL
	}
	if cfg.AI.PromptsDir != "" {
		ai["prompts_dir"] = cfg.AI.PromptsDir
	}

	return map[string]any{
		"github": github,
		"ai":     ai,
		"git": map[string]any{
			"default_branch": cfg.Git.DefaultBranch,
			"auto_stage":     cfg.Git.AutoStage,
		},
		"cli": map[string]any{
			"debug": cfg.CLI.Debug,
		},
	}
}
