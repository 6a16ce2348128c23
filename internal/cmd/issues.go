package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ghassist/gh-assist/internal/ailink"
	apperrors "github.com/ghassist/gh-assist/internal/errors"
	"github.com/ghassist/gh-assist/internal/github"
	"github.com/ghassist/gh-assist/internal/output"
)

var (
	issueBody       string
	issueLabels     []string
	issueAssignees  []string
	issueAI         bool
	issueListState  string
	issueListLimit  int
	issueCloseNote  string
	issueTriageSave bool
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Create, list, comment on, close and triage issues",
}

var issueCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Open an issue, optionally with AI-suggested labels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		session, err := newSession(ctx)
		if err != nil {
			return err
		}
		fullName, err := resolveRepo(ctx, cmd, session)
		if err != nil {
			return err
		}

		labels := issueLabels
		if issueAI && len(labels) == 0 {
			svc, err := newAssistant(ctx)
			if err != nil {
				return err
			}
			printNote(cmd, "Suggesting labels...")
			suggested, err := svc.SuggestLabels(ctx, args[0], issueBody)
			if err != nil {
				return err
			}
			if len(suggested) > 0 {
				printLine(cmd, "Suggested labels: %s", strings.Join(suggested, ", "))
				apply, err := newInteractor(cmd).Confirm("Apply these labels?", true)
				if err != nil {
					return err
				}
				if apply {
					labels = suggested
				}
			}
		}

		issue, err := session.Client.CreateIssue(ctx, fullName, github.NewIssue{
			Title:     args[0],
			Body:      issueBody,
			Labels:    labels,
			Assignees: issueAssignees,
		})
		if err != nil {
			return err
		}
		printOK(cmd, "Created issue #%d: %s", issue.Number, issue.HTMLURL)
		return nil
	},
}

var issueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues (pull requests excluded)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		session, err := newSession(ctx)
		if err != nil {
			return err
		}
		fullName, err := resolveRepo(ctx, cmd, session)
		if err != nil {
			return err
		}
		issues, err := session.Client.ListIssues(ctx, fullName, issueListState, issueLabels, issueListLimit)
		if err != nil {
			return err
		}
		return writeListing(cmd, issues, func() string { return output.Issues(issues) })
	},
}

var issueCommentCmd = &cobra.Command{
	Use:   "comment <number> <body>",
	Short: "Comment on an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		number, err := parseNumber(args[0])
		if err != nil {
			return err
		}
		if strings.TrimSpace(args[1]) == "" {
			return apperrors.NewInvalidInputError("comment body is required")
		}
		session, err := newSession(ctx)
		if err != nil {
			return err
		}
		fullName, err := resolveRepo(ctx, cmd, session)
		if err != nil {
			return err
		}
		comment, err := session.Client.CommentOnIssue(ctx, fullName, number, args[1])
		if err != nil {
			return err
		}
		printOK(cmd, "Commented: %s", comment.HTMLURL)
		return nil
	},
}

var issueCloseCmd = &cobra.Command{
	Use:   "close <number>",
	Short: "Close an issue",
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
		if note := strings.TrimSpace(issueCloseNote); note != "" {
			if _, err := session.Client.CommentOnIssue(ctx, fullName, number, note); err != nil {
				return err
			}
		}
		issue, err := session.Client.CloseIssue(ctx, fullName, number)
		if err != nil {
			return err
		}
		printOK(cmd, "Closed issue #%d: %s", issue.Number, issue.Title)
		return nil
	},
}

var issueTriageCmd = &cobra.Command{
	Use:   "triage <number>",
	Short: "Triage an issue with AI and optionally apply the suggested labels",
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
		issue, err := session.Client.GetIssue(ctx, fullName, number)
		if err != nil {
			return err
		}
		svc, err := newAssistant(ctx)
		if err != nil {
			return err
		}
		printNote(cmd, "Triaging issue #%d...", number)
		triage, err := svc.TriageIssue(ctx, issue.Title, issue.Body)
		if err != nil {
			return err
		}
		printBlock(cmd, output.Triage(number, triage))
		return applyTriageLabels(ctx, cmd, session.Client, newInteractor(cmd), fullName, number, triage, issueTriageSave)
	},
}

// applyTriageLabels attaches the suggested labels when apply is set or ui
// confirms. Nothing is sent when there are no suggestions.
func applyTriageLabels(ctx context.Context, cmd *cobra.Command, client *github.Client, ui UserInteractor, fullName string, number int, triage *ailink.IssueTriage, apply bool) error {
	if triage == nil || len(triage.SuggestedLabels) == 0 {
		return nil
	}
	if !apply {
		var err error
		if apply, err = ui.Confirm("Apply the suggested labels?", false); err != nil {
			return err
		}
	}
	if !apply {
		return nil
	}
	labels, err := client.AddLabels(ctx, fullName, number, triage.SuggestedLabels)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	printOK(cmd, "Labels now: %s", strings.Join(names, ", "))
	return nil
}

func init() {
	issueCmd.PersistentFlags().StringP("repo", "r", "", "repository (owner/name or name; default: origin remote)")

	issueCreateCmd.Flags().StringVarP(&issueBody, "body", "d", "", "issue body")
	issueCreateCmd.Flags().StringSliceVarP(&issueLabels, "labels", "l", nil, "labels (comma separated)")
	issueCreateCmd.Flags().StringSliceVar(&issueAssignees, "assignees", nil, "assignee logins (comma separated)")
	issueCreateCmd.Flags().BoolVar(&issueAI, "ai", false, "suggest labels with AI when none are given")

	issueListCmd.Flags().StringVarP(&issueListState, "state", "s", "open", "state: open, closed, all")
	issueListCmd.Flags().StringSliceVarP(&issueLabels, "labels", "l", nil, "filter by labels (comma separated)")
	issueListCmd.Flags().IntVarP(&issueListLimit, "limit", "n", 20, "number of issues to show")
	addOutputFlags(issueListCmd)

	issueCloseCmd.Flags().StringVarP(&issueCloseNote, "comment", "c", "", "comment to add before closing")
	issueTriageCmd.Flags().BoolVar(&issueTriageSave, "apply", false, "apply suggested labels without asking")

	issueCmd.AddCommand(issueCreateCmd, issueListCmd, issueCommentCmd, issueCloseCmd, issueTriageCmd)
	rootCmd.AddCommand(issueCmd)
}
