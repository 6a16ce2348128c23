package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ghassist/gh-assist/internal/ailink"
	apperrors "github.com/ghassist/gh-assist/internal/errors"
	"github.com/ghassist/gh-assist/internal/git"
	"github.com/ghassist/gh-assist/internal/github"
	"github.com/ghassist/gh-assist/internal/observability"
	"github.com/ghassist/gh-assist/internal/output"
)

var (
	createPRBase  string
	createPRHead  string
	createPRBody  string
	createPRAI    bool
	createPRDraft bool

	listPRsState string
	listPRsLimit int

	reviewPRPost bool

	mergePRMethod  string
	mergePRMessage string
)

type prDescriptionGenerator interface {
	PRDescription(ctx context.Context, branch string, commits []string, diff string) (string, error)
}

var createPRCmd = &cobra.Command{
	Use:   "create-pr <title>",
	Short: "Open a pull request, optionally with an AI-written description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := requireConfig(ctx)
		if err != nil {
			return err
		}
		session, err := newSession(ctx)
		if err != nil {
			return err
		}
		fullName, err := resolveRepo(ctx, cmd, session)
		if err != nil {
			return err
		}

		base := strings.TrimSpace(createPRBase)
		if base == "" {
			base = cfg.Git.DefaultBranch
		}
		head := strings.TrimSpace(createPRHead)
		var repo *git.Repo
		if head == "" || createPRAI {
			repo, err = openRepo(ctx)
			if err != nil {
				return err
			}
		}
		if head == "" {
			head, err = repo.CurrentBranch(ctx)
			if err != nil {
				return err
			}
		}

		ui := newInteractor(cmd)
		body := createPRBody
		if createPRAI && strings.TrimSpace(body) == "" {
			svc, err := newAssistant(ctx)
			if err != nil {
				return err
			}
			body, err = draftPRDescription(ctx, cmd, repo, svc, ui, base, head)
			if err != nil {
				return err
			}
		}
		if strings.TrimSpace(body) == "" && !createPRAI {
			body, err = ui.Prompt("Enter PR description (optional)", "")
			if err != nil {
				return err
			}
		}

		pr, err := session.Client.CreatePullRequest(ctx, fullName, github.NewPullRequest{
			Title: args[0],
			Head:  head,
			Base:  base,
			Body:  body,
			Draft: createPRDraft,
		})
		if err != nil {
			return err
		}
		printOK(cmd, "Pull request created")
		printBlock(cmd, output.Panel(fmt.Sprintf("PR #%d: %s", pr.Number, pr.Title), "URL: "+pr.HTMLURL))
		return nil
	},
}

// draftPRDescription generates a description from the branch diff and recent
// commits and lets the user accept or replace it.
func draftPRDescription(ctx context.Context, cmd *cobra.Command, repo *git.Repo, gen prDescriptionGenerator, ui UserInteractor, base, head string) (string, error) {
	printNote(cmd, "Generating PR description...")
	diff, err := repo.DiffRange(ctx, base, head)
	if err != nil {
		observability.Logger().Warn("Branch diff unavailable, using working tree diff", zap.Error(err))
		if diff, err = repo.Diff(ctx, false); err != nil {
			return "", err
		}
	}
	commits, err := repo.Log(ctx, 10, head)
	if err != nil {
		return "", err
	}
	messages := make([]string, 0, len(commits))
	for _, c := range commits {
		messages = append(messages, c.Subject())
	}

	body, err := gen.PRDescription(ctx, head, messages, diff)
	if err != nil {
		return "", err
	}
	printBlock(cmd, output.Panel("Generated description", body))
	use, err := ui.Confirm("Use this description?", true)
	if err != nil {
		return "", err
	}
	if use {
		return body, nil
	}
	return ui.Prompt("Enter PR description", "")
}

var listPRsCmd = &cobra.Command{
	Use:   "list-prs",
	Short: "List pull requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		switch listPRsState {
		case "open", "closed", "all":
		default:
			return apperrors.NewInvalidInputError(fmt.Sprintf("invalid state %q (use open, closed or all)", listPRsState))
		}
		session, err := newSession(ctx)
		if err != nil {
			return err
		}
		fullName, err := resolveRepo(ctx, cmd, session)
		if err != nil {
			return err
		}
		prs, err := session.Client.ListPullRequests(ctx, fullName, listPRsState, listPRsLimit)
		if err != nil {
			return err
		}
		return writeListing(cmd, prs, func() string { return output.PullRequests(prs) })
	},
}

var reviewPRCmd = &cobra.Command{
	Use:   "review-pr <number>",
	Short: "Review a pull request with AI and optionally post the review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		number, err := parseNumber(args[0])
		if err != nil {
			return err
		}
		session, err := newSession(ctx)
		if err != nil {
			return err
		}
		fullName, err := resolveRepo(ctx, cmd, session)
		if err != nil {
			return err
		}

		pr, err := session.Client.GetPullRequest(ctx, fullName, number)
		if err != nil {
			return err
		}
		diff, err := session.Client.PullRequestDiff(ctx, fullName, number)
		if err != nil {
			return err
		}
		printLine(cmd, "PR #%d: %s", pr.Number, pr.Title)
		printLine(cmd, "By: %s  State: %s  Files: %d (+%d/-%d)", pr.User.Login, pr.State, pr.ChangedFiles, pr.Additions, pr.Deletions)

		svc, err := newAssistant(ctx)
		if err != nil {
			return err
		}
		printNote(cmd, "Reviewing pull request...")
		review, err := svc.ReviewPullRequest(ctx, ailink.PullRequestInput{
			Title:        pr.Title,
			Description:  pr.Body,
			Diff:         diff,
			FilesChanged: pr.ChangedFiles,
		})
		if err != nil {
			return err
		}
		printBlock(cmd, output.PullRequestReview(number, review))

		return postReview(ctx, cmd, session.Client, newInteractor(cmd), fullName, number, review, reviewPRPost)
	},
}

// postReview comments the review on the pull request when post is set or ui
// confirms.
func postReview(ctx context.Context, cmd *cobra.Command, client *github.Client, ui UserInteractor, fullName string, number int, review *ailink.PullRequestReview, post bool) error {
	if !post {
		var err error
		if post, err = ui.Confirm("Post this review to GitHub?", false); err != nil {
			return err
		}
	}
	if !post {
		return nil
	}
	comment, err := client.CommentOnPullRequest(ctx, fullName, number, output.ReviewComment(review))
	if err != nil {
		return err
	}
	printOK(cmd, "Review posted: %s", comment.HTMLURL)
	return nil
}

var mergePRCmd = &cobra.Command{
	Use:   "merge-pr <number>",
	Short: "Merge a pull request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		number, err := parseNumber(args[0])
		if err != nil {
			return err
		}
		session, err := newSession(ctx)
		if err != nil {
			return err
		}
		fullName, err := resolveRepo(ctx, cmd, session)
		if err != nil {
			return err
		}
		ok, err := newInteractor(cmd).Confirm(fmt.Sprintf("Merge PR #%d in %s using %s?", number, fullName, mergePRMethod), true)
		if err != nil {
			return err
		}
		if !ok {
			printNote(cmd, "Merge cancelled")
			return nil
		}
		result, err := session.Client.MergePullRequest(ctx, fullName, number, mergePRMethod, mergePRMessage)
		if err != nil {
			return err
		}
		if !result.Merged {
			return fmt.Errorf("pull request #%d was not merged: %s", number, result.Message)
		}
		printOK(cmd, "Merged #%d (%s)", number, result.SHA)
		return nil
	},
}

func parseNumber(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(value), "#"))
	if err != nil || n <= 0 {
		return 0, apperrors.NewInvalidInputError(fmt.Sprintf("invalid number %q", value))
	}
	return n, nil
}

func init() {
	for _, c := range []*cobra.Command{createPRCmd, listPRsCmd, reviewPRCmd, mergePRCmd} {
		c.Flags().StringP("repo", "r", "", "repository (owner/name or name; default: origin remote)")
	}

	createPRCmd.Flags().StringVarP(&createPRBase, "base", "b", "", "base branch (default: git.default_branch)")
	createPRCmd.Flags().StringVar(&createPRHead, "head", "", "head branch (default: current)")
	createPRCmd.Flags().StringVarP(&createPRBody, "body", "d", "", "pull request description")
	createPRCmd.Flags().BoolVar(&createPRAI, "ai", false, "generate the description with AI")
	createPRCmd.Flags().BoolVar(&createPRDraft, "draft", false, "open as a draft")

	listPRsCmd.Flags().StringVarP(&listPRsState, "state", "s", "open", "state: open, closed, all")
	listPRsCmd.Flags().IntVarP(&listPRsLimit, "limit", "n", 20, "number of pull requests to show")
	addOutputFlags(listPRsCmd)

	reviewPRCmd.Flags().BoolVar(&reviewPRPost, "post", false, "post the review as a comment without asking")

	mergePRCmd.Flags().StringVar(&mergePRMethod, "method", "merge", "merge method: merge, squash, rebase")
	mergePRCmd.Flags().StringVarP(&mergePRMessage, "message", "m", "", "merge commit message")

	rootCmd.AddCommand(createPRCmd, listPRsCmd, reviewPRCmd, mergePRCmd)
}
