package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ghassist/gh-assist/internal/github"
	"github.com/ghassist/gh-assist/internal/output"
)

var (
	deleteRepoForce bool

	releaseName       string
	releaseNotes      string
	releaseDraft      bool
	releasePrerelease bool
	releaseListLimit  int

	notificationsAll      bool
	notificationsLimit    int
	notificationsMarkRead bool

	remoteBranchFrom string
)

var forkRepoCmd = &cobra.Command{
	Use:   "fork-repo <owner/name>",
	Short: "Fork a repository into your account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		session, err := newSession(ctx)
		if err != nil {
			return err
		}
		fork, err := session.Client.ForkRepository(ctx, session.FullName(args[0]))
		if err != nil {
			return err
		}
		printOK(cmd, "Forked to %s", fork.FullName)
		printLine(cmd, "  %s", fork.HTMLURL)
		return nil
	},
}

var deleteRepoCmd = &cobra.Command{
	Use:   "delete-repo <name>",
	Short: "Delete a repository",
	Long:  "Delete a repository. Asks for confirmation unless --force is given; --yes alone does not delete.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		session, err := newSession(ctx)
		if err != nil {
			return err
		}
		_, err = deleteRepository(ctx, cmd, session.Client, newInteractor(cmd), session.FullName(args[0]), deleteRepoForce)
		return err
	},
}

// deleteRepository deletes fullName once force is set or ui confirms. The
// confirmation defaults to no, so a non-interactive ui keeps the repository.
func deleteRepository(ctx context.Context, cmd *cobra.Command, client *github.Client, ui UserInteractor, fullName string, force bool) (bool, error) {
	if !force {
		ok, err := ui.Confirm(fmt.Sprintf("Permanently delete %s?", fullName), false)
		if err != nil {
			return false, err
		}
		if !ok {
			printNote(cmd, "Kept %s", fullName)
			return false, nil
		}
	}
	if err := client.DeleteRepository(ctx, fullName); err != nil {
		return false, err
	}
	printOK(cmd, "Deleted %s", fullName)
	return true, nil
}

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Create and list releases",
}

var releaseCreateCmd = &cobra.Command{
	Use:   "create <tag>",
	Short: "Publish a release for a tag",
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
		rel, err := session.Client.CreateRelease(ctx, fullName, github.NewRelease{
			TagName:    args[0],
			Name:       releaseName,
			Body:       releaseNotes,
			Draft:      releaseDraft,
			Prerelease: releasePrerelease,
		})
		if err != nil {
			return err
		}
		printOK(cmd, "Release %s created", rel.TagName)
		printLine(cmd, "  %s", rel.HTMLURL)
		return nil
	},
}

var releaseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List releases, newest first",
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
		releases, err := session.Client.ListReleases(ctx, fullName, releaseListLimit)
		if err != nil {
			return err
		}
		return writeListing(cmd, releases, func() string { return output.Releases(releases) })
	},
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "List inbox notifications, optionally marking them read",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		session, err := newSession(ctx)
		if err != nil {
			return err
		}
		threads, err := session.Client.Notifications(ctx, notificationsAll, notificationsLimit)
		if err != nil {
			return err
		}
		if err := writeListing(cmd, threads, func() string { return output.Notifications(threads) }); err != nil {
			return err
		}
		if !notificationsMarkRead {
			return nil
		}
		if err := session.Client.MarkNotificationsRead(ctx); err != nil {
			return err
		}
		printOK(cmd, "Marked notifications as read")
		return nil
	},
}

var remoteBranchCmd = &cobra.Command{
	Use:   "remote-branch",
	Short: "Create, delete and list branches on GitHub without a local clone",
}

var remoteBranchCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a branch from the head of another branch",
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
		from := remoteBranchFrom
		if from == "" {
			from = cfg.Git.DefaultBranch
		}
		branch, err := session.Client.CreateBranch(ctx, fullName, args[0], from)
		if err != nil {
			return err
		}
		printOK(cmd, "Created %s on %s from %s (%s)", branch.Name, fullName, from, shortSHA(branch.Commit.SHA))
		return nil
	},
}

var remoteBranchDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a branch",
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
		if err := session.Client.DeleteBranch(ctx, fullName, args[0]); err != nil {
			return err
		}
		printOK(cmd, "Deleted %s on %s", args[0], fullName)
		return nil
	},
}

var remoteBranchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List branches",
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
		branches, err := session.Client.ListBranches(ctx, fullName)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(branches))
		for _, b := range branches {
			names = append(names, b.Name)
		}
		return writeListing(cmd, branches, func() string { return output.Branches(names, "") })
	},
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func init() {
	deleteRepoCmd.Flags().BoolVarP(&deleteRepoForce, "force", "f", false, "delete without asking")

	releaseCmd.PersistentFlags().StringP("repo", "r", "", "repository (owner/name or name; default: origin remote)")
	releaseCreateCmd.Flags().StringVarP(&releaseName, "name", "t", "", "release title (default: the tag)")
	releaseCreateCmd.Flags().StringVarP(&releaseNotes, "notes", "d", "", "release notes")
	releaseCreateCmd.Flags().BoolVar(&releaseDraft, "draft", false, "save as a draft")
	releaseCreateCmd.Flags().BoolVar(&releasePrerelease, "prerelease", false, "mark as a prerelease")
	releaseListCmd.Flags().IntVarP(&releaseListLimit, "limit", "n", 10, "number of releases to show")
	addOutputFlags(releaseListCmd)
	releaseCmd.AddCommand(releaseCreateCmd, releaseListCmd)

	notificationsCmd.Flags().BoolVar(&notificationsAll, "all", false, "include read notifications")
	notificationsCmd.Flags().IntVarP(&notificationsLimit, "limit", "n", 20, "number of notifications to show")
	notificationsCmd.Flags().BoolVar(&notificationsMarkRead, "mark-read", false, "mark every notification as read afterwards")
	addOutputFlags(notificationsCmd)

	remoteBranchCmd.PersistentFlags().StringP("repo", "r", "", "repository (owner/name or name; default: origin remote)")
	remoteBranchCreateCmd.Flags().StringVar(&remoteBranchFrom, "from", "", "source branch (default: git.default_branch)")
	addOutputFlags(remoteBranchListCmd)
	remoteBranchCmd.AddCommand(remoteBranchCreateCmd, remoteBranchDeleteCmd, remoteBranchListCmd)

	rootCmd.AddCommand(forkRepoCmd, deleteRepoCmd, releaseCmd, notificationsCmd, remoteBranchCmd)
}
