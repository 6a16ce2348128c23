package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ghassist/gh-assist/internal/git"
	"github.com/ghassist/gh-assist/internal/github"
	"github.com/ghassist/gh-assist/internal/output"
)

var (
	createRepoDescription string
	createRepoPrivate     bool
	createRepoInit        bool
	createRepoClone       bool
	listReposLimit        int
	listReposUser         string
)

var createRepoCmd = &cobra.Command{
	Use:   "create-repo <name>",
	Short: "Create a GitHub repository and optionally clone it",
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

		opts := github.CreateRepoOptions{
			Name:        args[0],
			Description: createRepoDescription,
			Private:     cfg.GitHub.DefaultPrivate,
			AutoInit:    cfg.GitHub.AutoInit,
		}
		if cmd.Flags().Changed("private") {
			opts.Private = createRepoPrivate
		}
		if cmd.Flags().Changed("init") {
			opts.AutoInit = createRepoInit
		}

		repo, err := session.Client.CreateRepository(ctx, opts)
		if err != nil {
			return err
		}
		printOK(cmd, "Repository created")
		printBlock(cmd, output.Panel(repo.FullName,
			"URL:   "+repo.HTMLURL,
			"Clone: "+repo.CloneURL,
		))

		clone := createRepoClone
		if !clone {
			clone, err = newInteractor(cmd).Confirm("Clone to current directory?", false)
			if err != nil {
				return err
			}
		}
		if !clone {
			return nil
		}
		dest := filepath.Join(currentDir(), repo.Name)
		if _, err := git.Clone(ctx, repo.CloneURL, dest, gitExecutor); err != nil {
			return err
		}
		printOK(cmd, "Cloned to %s", dest)
		return nil
	},
}

var listReposCmd = &cobra.Command{
	Use:   "list-repos",
	Short: "List repositories, most recently updated first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		session, err := newSession(ctx)
		if err != nil {
			return err
		}
		repos, err := session.Client.ListRepositories(ctx, listReposUser, listReposLimit)
		if err != nil {
			return err
		}
		return writeListing(cmd, repos, func() string { return output.Repositories(repos) })
	},
}

var analyzeRepoCmd = &cobra.Command{
	Use:   "analyze-repo",
	Short: "Get AI insights about a repository",
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
		info, err := describeRepository(ctx, session.Client, fullName)
		if err != nil {
			return err
		}
		svc, err := newAssistant(ctx)
		if err != nil {
			return err
		}
		printNote(cmd, "Analyzing %s...", fullName)
		analysis, err := svc.AnalyzeRepository(ctx, info)
		if err != nil {
			return err
		}
		printBlock(cmd, output.Panel("Analysis of "+fullName, analysis))
		return nil
	},
}

// describeRepository summarizes metadata, branches and open work for the
// analysis prompt.
func describeRepository(ctx context.Context, client *github.Client, fullName string) (string, error) {
	repo, err := client.GetRepository(ctx, fullName)
	if err != nil {
		return "", err
	}
	branches, err := client.ListBranches(ctx, fullName)
	if err != nil {
		return "", err
	}
	prs, err := client.ListPullRequests(ctx, fullName, "open", 10)
	if err != nil {
		return "", err
	}
	issues, err := client.ListIssues(ctx, fullName, "open", nil, 10)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Repository: %s\n", repo.FullName)
	if repo.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", repo.Description)
	}
	if repo.Language != "" {
		fmt.Fprintf(&sb, "Primary language: %s\n", repo.Language)
	}
	visibility := "public"
	if repo.Private {
		visibility = "private"
	}
	fmt.Fprintf(&sb, "Visibility: %s\n", visibility)
	fmt.Fprintf(&sb, "Stars: %d, forks: %d, open issues: %d\n", repo.StargazersCount, repo.ForksCount, repo.OpenIssuesCount)
	fmt.Fprintf(&sb, "Default branch: %s\n", repo.DefaultBranch)
	if !repo.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "Created: %s, last updated: %s\n", repo.CreatedAt.Format(time.DateOnly), repo.UpdatedAt.Format(time.DateOnly))
	}

	names := make([]string, 0, len(branches))
	for _, b := range branches {
		names = append(names, b.Name)
	}
	fmt.Fprintf(&sb, "Branches (%d): %s\n", len(branches), strings.Join(names, ", "))

	fmt.Fprintf(&sb, "Open pull requests (%d shown):\n", len(prs))
	for _, pr := range prs {
		fmt.Fprintf(&sb, "- #%d %s (%s -> %s)\n", pr.Number, pr.Title, pr.Head.Ref, pr.Base.Ref)
	}
	fmt.Fprintf(&sb, "Open issues (%d shown):\n", len(issues))
	for _, issue := range issues {
		labels := ""
		if names := issue.LabelNames(); len(names) > 0 {
			labels = " [" + strings.Join(names, ", ") + "]"
		}
		fmt.Fprintf(&sb, "- #%d %s%s\n", issue.Number, issue.Title, labels)
	}
	return sb.String(), nil
}

func init() {
	createRepoCmd.Flags().StringVarP(&createRepoDescription, "description", "d", "", "repository description")
	createRepoCmd.Flags().BoolVar(&createRepoPrivate, "private", false, "make the repository private (default: github.default_private)")
	createRepoCmd.Flags().BoolVar(&createRepoInit, "init", true, "initialize with a README (default: github.auto_init)")
	createRepoCmd.Flags().BoolVar(&createRepoClone, "clone", false, "clone without asking")

	listReposCmd.Flags().IntVarP(&listReposLimit, "limit", "n", 10, "number of repositories to show")
	listReposCmd.Flags().StringVar(&listReposUser, "user", "", "list another user's public repositories")
	addOutputFlags(listReposCmd)

	analyzeRepoCmd.Flags().StringP("repo", "r", "", "repository (owner/name or name)")

	rootCmd.AddCommand(createRepoCmd, listReposCmd, analyzeRepoCmd)
}
