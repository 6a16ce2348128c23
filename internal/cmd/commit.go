package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/ghassist/gh-assist/internal/errors"
	"github.com/ghassist/gh-assist/internal/git"
	"github.com/ghassist/gh-assist/internal/output"
)

var (
	commitAll     bool
	commitAI      bool
	commitMessage string
	commitContext string
	commitAmend   bool
)

type commitMessageGenerator interface {
	CommitMessage(ctx context.Context, diff, extra string) (string, error)
}

type commitOptions struct {
	Files     []string
	All       bool
	AI        bool
	Message   string
	Context   string
	AutoStage bool
}

var commitCmd = &cobra.Command{
	Use:   "commit [files...]",
	Short: "Stage and commit changes, optionally with an AI-generated message",
	Long: `Stage the given files (or everything with --all) and commit them.

With --ai the staged diff is sent to the model for a conventional commit
message, which you can accept or replace. Without files or --all, whatever
is already staged is committed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := requireConfig(ctx)
		if err != nil {
			return err
		}
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		if commitAmend {
			sha, err := repo.Amend(ctx, commitMessage)
			if err != nil {
				return err
			}
			printOK(cmd, "Amended: %s", sha)
			return nil
		}
		opts := commitOptions{
			Files:     args,
			All:       commitAll,
			AI:        commitAI,
			Message:   commitMessage,
			Context:   commitContext,
			AutoStage: cfg.Git.AutoStage,
		}
		var gen commitMessageGenerator
		if opts.AI && strings.TrimSpace(opts.Message) == "" {
			svc, err := newAssistant(ctx)
			if err != nil {
				return err
			}
			gen = svc
		}
		_, err = runCommit(ctx, cmd, repo, gen, newInteractor(cmd), opts)
		return err
	},
}

func init() {
	rootCmd.AddCommand(commitCmd)
	commitCmd.Flags().BoolVarP(&commitAll, "all", "a", false, "stage all changes")
	commitCmd.Flags().BoolVar(&commitAI, "ai", false, "generate the commit message with AI")
	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit message")
	commitCmd.Flags().StringVar(&commitContext, "context", "", "extra context for the AI commit message")
	commitCmd.Flags().BoolVar(&commitAmend, "amend", false, "rewrite the last commit (keeps its message unless -m is given)")
}

// runCommit stages, resolves the message and commits. It returns "" without
// error when there is nothing to commit.
func runCommit(ctx context.Context, cmd *cobra.Command, repo *git.Repo, gen commitMessageGenerator, ui UserInteractor, opts commitOptions) (string, error) {
	switch {
	case opts.All || (len(opts.Files) == 0 && opts.AutoStage):
		if err := repo.Add(ctx, nil, true); err != nil {
			return "", err
		}
		printOK(cmd, "Staged all changes")
	case len(opts.Files) > 0:
		if err := repo.Add(ctx, opts.Files, false); err != nil {
			return "", err
		}
		printOK(cmd, "Staged %d file(s)", len(opts.Files))
	}

	diff, err := repo.Diff(ctx, true)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(diff) == "" {
		printNote(cmd, "No staged changes to commit. Use --all or specify files.")
		return "", nil
	}

	message := strings.TrimSpace(opts.Message)
	if opts.AI && message == "" && gen != nil {
		printNote(cmd, "Generating commit message...")
		generated, err := gen.CommitMessage(ctx, diff, opts.Context)
		if err != nil {
			return "", err
		}
		printBlock(cmd, output.Panel("Generated message", generated))
		use, err := ui.Confirm("Use this message?", true)
		if err != nil {
			return "", err
		}
		if use {
			message = generated
		}
	}
	if message == "" {
		message, err = ui.Prompt("Enter commit message", "")
		if err != nil {
			return "", err
		}
		message = strings.TrimSpace(message)
	}
	if message == "" {
		return "", apperrors.NewInvalidInputError("commit message is required")
	}

	sha, err := repo.Commit(ctx, message, "", "")
	if err != nil {
		return "", err
	}
	subject, _, _ := strings.Cut(message, "\n")
	printOK(cmd, "Committed: %s", sha)
	printLine(cmd, "  %s", subject)
	return sha, nil
}
