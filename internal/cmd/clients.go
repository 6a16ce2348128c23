package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ghassist/gh-assist/internal/ailink"
	"github.com/ghassist/gh-assist/internal/ailink/prompt"
	"github.com/ghassist/gh-assist/internal/config"
	apperrors "github.com/ghassist/gh-assist/internal/errors"
	"github.com/ghassist/gh-assist/internal/git"
	"github.com/ghassist/gh-assist/internal/github"
	"github.com/ghassist/gh-assist/internal/observability"
)

// gitExecutor runs git for every command. Tests replace it.
var gitExecutor git.CommandExecutor = git.NewExecExecutor()

func currentDir() string {
	if strings.TrimSpace(workDir) != "" {
		return workDir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func openRepo(ctx context.Context) (*git.Repo, error) {
	return git.Open(ctx, currentDir(), gitExecutor)
}

// newGitHubClient builds a client whose retrier follows the configured
// policy and logs through the CLI logger.
func newGitHubClient(cfg *config.Config) (*github.Client, error) {
	if strings.TrimSpace(cfg.GitHub.Token) == "" {
		return nil, apperrors.NewMissingCredentialsError("GITHUB_TOKEN is not set; create a token at https://github.com/settings/tokens")
	}
	client := github.NewClient(cfg.GitHub.BaseURL, cfg.GitHub.Token)
	client.Retry = github.NewRetrier(cfg.GitHub.Retry, client, observability.Logger())
	return client, nil
}

func newSession(ctx context.Context) (*github.Session, error) {
	cfg, err := requireConfig(ctx)
	if err != nil {
		return nil, err
	}
	client, err := newGitHubClient(cfg)
	if err != nil {
		return nil, err
	}
	session, err := github.Authenticate(ctx, client)
	if err != nil {
		return nil, err
	}
	observability.Logger().Debug("Authenticated", zap.String("login", session.User.Login))
	return session, nil
}

// resolveRepo picks the target repository: the --repo flag (qualified with
// the session login when bare), else the origin remote of the work tree.
func resolveRepo(ctx context.Context, cmd *cobra.Command, session *github.Session) (string, error) {
	flagValue := ""
	if f := cmd.Flags().Lookup("repo"); f != nil {
		flagValue = strings.TrimSpace(f.Value.String())
	}
	if flagValue != "" {
		return session.FullName(flagValue), nil
	}

	repo, err := openRepo(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve repository (pass --repo): %w", err)
	}
	remoteURL, err := repo.RemoteURL(ctx, "origin")
	if err != nil {
		return "", fmt.Errorf("resolve repository (pass --repo): %w", err)
	}
	return repoFromRemote(remoteURL, session)
}

func repoFromRemote(remoteURL string, session *github.Session) (string, error) {
	if fullName, ok := git.ParseRemote(remoteURL); ok {
		return fullName, nil
	}
	name := strings.TrimSuffix(remoteURL[strings.LastIndex(remoteURL, "/")+1:], ".git")
	if strings.TrimSpace(name) == "" {
		return "", apperrors.NewInvalidInputError(fmt.Sprintf("cannot derive repository from remote %q (pass --repo)", remoteURL))
	}
	return session.FullName(name), nil
}

// newAssistant builds the model service from configuration and the prompt
// set, including overrides from ai.prompts_dir.
func newAssistant(ctx context.Context) (*ailink.Service, error) {
	cfg, err := requireConfig(ctx)
	if err != nil {
		return nil, err
	}
	prompts, err := prompt.BuildRegistry(cfg.AI.PromptsDir)
	if err != nil {
		return nil, apperrors.Wrap(ctx, apperrors.CodeConfigInvalid, err, "load prompts: "+err.Error())
	}
	svc := ailink.NewService(cfg.AI, prompts, observability.Logger())
	svc.Model = strings.TrimSpace(modelOverride)
	return svc, nil
}
