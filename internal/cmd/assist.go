package cmd

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	apperrors "github.com/ghassist/gh-assist/internal/errors"
	"github.com/ghassist/gh-assist/internal/output"
)

// diffPreviewSize caps the diff echoed before a review.
const diffPreviewSize = 2000

var (
	reviewStaged  bool
	reviewNoAI    bool
	reviewContext string
	explainStaged bool
	suggestCreate bool
	askContext    string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review local changes with AI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		diff, err := repo.Diff(ctx, reviewStaged)
		if err != nil {
			return err
		}
		if strings.TrimSpace(diff) == "" {
			printNote(cmd, "No changes to review.")
			return nil
		}
		printLine(cmd, "Changes:")
		printBlock(cmd, diffPreview(diff, diffPreviewSize))
		if reviewNoAI {
			return nil
		}

		svc, err := newAssistant(ctx)
		if err != nil {
			return err
		}
		printNote(cmd, "Reviewing changes...")
		review, err := svc.ReviewChanges(ctx, diff, reviewContext)
		if err != nil {
			return err
		}
		printBlock(cmd, output.CodeReview(review))
		return nil
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Explain local changes in plain English",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		diff, err := repo.Diff(ctx, explainStaged)
		if err != nil {
			return err
		}
		if strings.TrimSpace(diff) == "" {
			printNote(cmd, "No changes to explain.")
			return nil
		}
		svc, err := newAssistant(ctx)
		if err != nil {
			return err
		}
		explanation, err := svc.ExplainDiff(ctx, diff)
		if err != nil {
			return err
		}
		printBlock(cmd, output.Panel("Explanation", explanation))
		return nil
	},
}

var suggestBranchCmd = &cobra.Command{
	Use:   "suggest-branch <description>",
	Short: "Suggest a branch name for a piece of work",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := newAssistant(ctx)
		if err != nil {
			return err
		}
		name, err := svc.SuggestBranchName(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		name = cleanBranchName(name)
		if name == "" {
			return apperrors.NewInvalidInputError("model returned an empty branch name")
		}
		printLine(cmd, "Suggested branch: %s", name)
		if !suggestCreate {
			return nil
		}
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		result, err := repo.CreateBranch(ctx, name, true)
		if err != nil {
			return err
		}
		printOK(cmd, "%s", result)
		return nil
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the assistant a git or GitHub question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := newAssistant(ctx)
		if err != nil {
			return err
		}
		answer, err := svc.Ask(ctx, strings.Join(args, " "), askContext)
		if err != nil {
			return err
		}
		printBlock(cmd, output.Panel("Assistant", answer))
		return nil
	},
}

// cleanBranchName keeps the first line of a model answer and strips quoting.
func cleanBranchName(answer string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(answer), "\n")
	line = strings.Trim(strings.TrimSpace(line), "`'\"")
	return strings.Join(strings.Fields(line), "-")
}

func diffPreview(diff string, max int) string {
	if utf8.RuneCountInString(diff) <= max {
		return diff
	}
	runes := []rune(diff)
	return fmt.Sprintf("%s\n... (%d more characters)", string(runes[:max]), len(runes)-max)
}

func init() {
	reviewCmd.Flags().BoolVar(&reviewStaged, "staged", false, "review staged changes")
	reviewCmd.Flags().BoolVar(&reviewNoAI, "no-ai", false, "only show the diff")
	reviewCmd.Flags().StringVar(&reviewContext, "context", "", "extra context for the reviewer")
	explainCmd.Flags().BoolVar(&explainStaged, "staged", false, "explain staged changes")
	suggestBranchCmd.Flags().BoolVar(&suggestCreate, "create", false, "create and check out the suggested branch")
	askCmd.Flags().StringVar(&askContext, "context", "", "extra context for the question")

	rootCmd.AddCommand(reviewCmd, explainCmd, suggestBranchCmd, askCmd)
}
