// Package ailink runs prompt-driven completions against the configured
// text-generation provider.
package ailink

import (
	"context"
	"errors"
	"strings"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/ghassist/gh-assist/internal/ailink/content"
	"github.com/ghassist/gh-assist/internal/ailink/driver"
	"github.com/ghassist/gh-assist/internal/ailink/prompt"
)

// Service coordinates prompt loading, provider selection, and driver execution.
type Service struct {
	Config    Config
	Providers *Registry
	Prompts   prompt.Registry
	Logger    *logging.Logger

	// Model overrides the configured model for every request.
	Model string
}

// NewService wires a service for cfg.
func NewService(cfg Config, prompts prompt.Registry, logger *logging.Logger) *Service {
	return &Service{
		Config:    cfg,
		Providers: NewRegistry(cfg),
		Prompts:   prompts,
		Logger:    logger,
	}
}

// Complete renders the prompt for slug with vars and returns the trimmed
// completion text. The "diff" variable is truncated according to the
// prompt's diff_limit.
func (s *Service) Complete(ctx context.Context, slug string, vars map[string]string) (string, error) {
	if s == nil || s.Providers == nil {
		return "", errors.New("ailink provider registry not configured")
	}
	if s.Prompts == nil {
		return "", errors.New("ailink prompt registry not configured")
	}

	promptDef, err := s.Prompts.Get(slug)
	if err != nil {
		return "", err
	}

	vars = s.prepareVars(promptDef, vars)

	systemPrompt, userPrompt, err := renderPrompt(promptDef, vars)
	if err != nil {
		return "", err
	}

	resolved, err := s.Providers.Resolve(promptDef, s.Model)
	if err != nil {
		return "", mapProviderError(err)
	}

	messages := make([]content.Message, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, content.TextMessage(content.RoleSystem, systemPrompt))
	}
	messages = append(messages, content.TextMessage(content.RoleUser, userPrompt))

	maxTokens := promptDef.Config.MaxTokens
	req := &driver.Request{
		Model:       resolved.Model,
		Messages:    messages,
		Temperature: promptDef.Config.Temperature,
		MaxTokens:   &maxTokens,
		PromptSlug:  promptDef.Config.Slug,
	}

	s.debug("Sending prompt",
		zap.String("prompt", promptDef.Config.Slug),
		zap.String("provider", resolved.Provider),
		zap.String("model", resolved.Model),
		zap.Int("prompt_chars", len(userPrompt)))

	resp, err := resolved.Driver.Complete(ctx, req)
	if err != nil {
		return "", mapProviderError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &Error{Code: CodeEmptyResponse, Message: "empty response content"}
	}
	if resp.Usage != nil {
		s.debug("Prompt completed",
			zap.String("prompt", promptDef.Config.Slug),
			zap.Int("total_tokens", resp.Usage.TotalTokens))
	}
	return text, nil
}

func (s *Service) prepareVars(def *prompt.Prompt, vars map[string]string) map[string]string {
	out := make(map[string]string, len(vars)+1)
	for k, v := range vars {
		out[k] = v
	}
	if def.Config.DiffLimit == "" {
		return out
	}
	diff, ok := out["diff"]
	if !ok {
		return out
	}
	limit := s.Config.diffLimit(def.Config.DiffLimit)
	if truncated, cut := TruncateDiff(diff, limit); cut {
		s.warn("Diff exceeds size limit, truncating",
			zap.Int("size", len([]rune(diff))),
			zap.Int("limit", limit))
		out["diff"] = truncated
		out["truncated"] = "true"
	}
	return out
}

func (s *Service) debug(msg string, fields ...zap.Field) {
	if s.Logger != nil {
		s.Logger.Debug(msg, fields...)
	}
}

func (s *Service) warn(msg string, fields ...zap.Field) {
	if s.Logger != nil {
		s.Logger.Warn(msg, fields...)
	}
}
