package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ghassist/gh-assist/internal/output"
)

var (
	syncRemote      string
	syncBranch      string
	pushSetUpstream bool
	pushForce       bool
	pullRebase      bool

	branchCheckout bool
	branchDelete   bool
	branchForce    bool
	branchRemote   bool
	checkoutCreate bool
	fetchPrune     bool
	mergeNoFF      bool
	mergeAbort     bool
	logCount       int

	stashMessage   string
	stashUntracked bool
	tagMessage     string
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push commits to a remote",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		result, err := repo.Push(ctx, syncRemote, syncBranch, pushSetUpstream, pushForce)
		if err != nil {
			return err
		}
		printOK(cmd, "%s", result)
		return nil
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull changes from a remote",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		result, err := repo.Pull(ctx, syncRemote, syncBranch, pullRebase)
		if err != nil {
			return err
		}
		printOK(cmd, "%s", result)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the working tree status",
	Long:  "Show the current branch and changed files. With --verbose the unstaged diff is printed too.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		st, err := repo.Status(ctx)
		if err != nil {
			return err
		}
		format, err := resolveOutputFormat(cmd)
		if err != nil {
			return err
		}
		if format == output.FormatJSON {
			return output.WriteJSON(cmd.OutOrStdout(), st)
		}
		printBlock(cmd, output.Status(st))
		if verbose && st.IsDirty {
			diff, err := repo.Diff(ctx, false)
			if err != nil {
				return err
			}
			if strings.TrimSpace(diff) != "" {
				printLine(cmd, "\nChanges:")
				printBlock(cmd, diff)
			}
		}
		return nil
	},
}

var branchCmd = &cobra.Command{
	Use:   "branch [name]",
	Short: "Create or delete a branch, or list branches when no name is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			if branchDelete {
				return fmt.Errorf("branch --delete requires a name")
			}
			branches, err := repo.ListBranches(ctx, branchRemote)
			if err != nil {
				return err
			}
			current, err := repo.CurrentBranch(ctx)
			if err != nil {
				return err
			}
			printBlock(cmd, output.Branches(branches, current))
			return nil
		}
		if branchDelete {
			result, err := repo.DeleteBranch(ctx, args[0], branchForce)
			if err != nil {
				return err
			}
			printOK(cmd, "%s", result)
			return nil
		}
		result, err := repo.CreateBranch(ctx, args[0], branchCheckout)
		if err != nil {
			return err
		}
		printOK(cmd, "%s", result)
		return nil
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout <name>",
	Short: "Switch branches",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		result, err := repo.Checkout(ctx, args[0], checkoutCreate)
		if err != nil {
			return err
		}
		printOK(cmd, "%s", result)
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch from a remote",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		result, err := repo.Fetch(ctx, syncRemote, fetchPrune)
		if err != nil {
			return err
		}
		printOK(cmd, "%s", result)
		return nil
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge [branch]",
	Short: "Merge a branch into the current branch, or abort a merge",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		var result string
		switch {
		case mergeAbort:
			result, err = repo.AbortMerge(ctx)
		case len(args) == 1:
			result, err = repo.Merge(ctx, args[0], mergeNoFF)
		default:
			return fmt.Errorf("merge requires a branch (or --abort)")
		}
		if err != nil {
			return err
		}
		printOK(cmd, "%s", result)
		return nil
	},
}

var remoteCmd = &cobra.Command{
	Use:   "remote [add|remove|list] [name] [url]",
	Short: "Manage remotes",
	Args:  cobra.MaximumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		action := "list"
		if len(args) > 0 {
			action = args[0]
		}
		switch action {
		case "add":
			if len(args) != 3 {
				return fmt.Errorf("remote add requires a name and a url")
			}
			result, err := repo.AddRemote(ctx, args[1], args[2])
			if err != nil {
				return err
			}
			printOK(cmd, "%s", result)
		case "remove":
			if len(args) != 2 {
				return fmt.Errorf("remote remove requires a name")
			}
			result, err := repo.RemoveRemote(ctx, args[1])
			if err != nil {
				return err
			}
			printOK(cmd, "%s", result)
		case "list":
			remotes, err := repo.ListRemotes(ctx)
			if err != nil {
				return err
			}
			if len(remotes) == 0 {
				printNote(cmd, "No remotes configured")
				return nil
			}
			names := make([]string, 0, len(remotes))
			for name := range remotes {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				printLine(cmd, "%s\t%s", name, remotes[name])
			}
		default:
			return fmt.Errorf("unknown remote action %q (use add, remove or list)", action)
		}
		return nil
	},
}

var logCmd = &cobra.Command{
	Use:   "log [branch]",
	Short: "Show commit history",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		branch := ""
		if len(args) == 1 {
			branch = args[0]
		}
		commits, err := repo.Log(ctx, logCount, branch)
		if err != nil {
			return err
		}
		return writeListing(cmd, commits, func() string { return output.Commits(commits) })
	},
}

var stashCmd = &cobra.Command{
	Use:       "stash [push|pop|list] [index]",
	Short:     "Stash local changes",
	Args:      cobra.MaximumNArgs(2),
	ValidArgs: []string{"push", "pop", "list"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		action := "push"
		if len(args) > 0 {
			action = args[0]
		}
		switch action {
		case "push":
			result, err := repo.Stash(ctx, stashMessage, stashUntracked)
			if err != nil {
				return err
			}
			if result == "" {
				result = "Stashed changes"
			}
			printOK(cmd, "%s", result)
		case "pop":
			index := 0
			if len(args) == 2 {
				index, err = strconv.Atoi(args[1])
				if err != nil || index < 0 {
					return fmt.Errorf("invalid stash index %q", args[1])
				}
			}
			result, err := repo.StashPop(ctx, index)
			if err != nil {
				return err
			}
			printOK(cmd, "%s", result)
		case "list":
			entries, err := repo.StashList(ctx)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printNote(cmd, "No stash entries")
				return nil
			}
			for _, e := range entries {
				printLine(cmd, "%s", e)
			}
		default:
			return fmt.Errorf("unknown stash action %q (use push, pop or list)", action)
		}
		return nil
	},
}

var tagCmd = &cobra.Command{
	Use:   "tag [create|delete|list] [name]",
	Short: "Manage local tags",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		action := "list"
		if len(args) > 0 {
			action = args[0]
		}
		name := ""
		if len(args) == 2 {
			name = args[1]
		}
		if (action == "create" || action == "delete") && name == "" {
			return fmt.Errorf("tag %s requires a name", action)
		}
		switch action {
		case "create":
			result, err := repo.CreateTag(ctx, name, tagMessage)
			if err != nil {
				return err
			}
			printOK(cmd, "%s", result)
		case "delete":
			result, err := repo.DeleteTag(ctx, name)
			if err != nil {
				return err
			}
			printOK(cmd, "%s", result)
		case "list":
			tags, err := repo.ListTags(ctx)
			if err != nil {
				return err
			}
			for _, t := range tags {
				printLine(cmd, "%s", t)
			}
		default:
			return fmt.Errorf("unknown tag action %q (use create, delete or list)", action)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{pushCmd, pullCmd, fetchCmd} {
		c.Flags().StringVarP(&syncRemote, "remote", "r", "origin", "remote name")
	}
	for _, c := range []*cobra.Command{pushCmd, pullCmd} {
		c.Flags().StringVarP(&syncBranch, "branch", "b", "", "branch name (default: current)")
	}
	fetchCmd.Flags().BoolVar(&fetchPrune, "prune", false, "prune deleted remote branches")
	pushCmd.Flags().BoolVarP(&pushSetUpstream, "set-upstream", "u", false, "set upstream tracking")
	pushCmd.Flags().BoolVarP(&pushForce, "force", "f", false, "force push (with lease)")
	pullCmd.Flags().BoolVar(&pullRebase, "rebase", false, "rebase instead of merge")

	statusCmd.Flags().String("output-format", "table", "output format: table, json")
	branchCmd.Flags().BoolVarP(&branchCheckout, "checkout", "c", false, "check out the new branch")
	branchCmd.Flags().BoolVarP(&branchDelete, "delete", "d", false, "delete the branch")
	branchCmd.Flags().BoolVarP(&branchForce, "force", "f", false, "delete even if not merged")
	branchCmd.Flags().BoolVarP(&branchRemote, "remotes", "r", false, "list remote-tracking branches")
	mergeCmd.Flags().BoolVar(&mergeNoFF, "no-ff", false, "always create a merge commit")
	mergeCmd.Flags().BoolVar(&mergeAbort, "abort", false, "abort the merge in progress")
	checkoutCmd.Flags().BoolVarP(&checkoutCreate, "create", "c", false, "create the branch first")
	logCmd.Flags().IntVarP(&logCount, "count", "n", 10, "number of commits to show")
	addOutputFlags(logCmd)

	stashCmd.Flags().StringVarP(&stashMessage, "message", "m", "", "stash message")
	stashCmd.Flags().BoolVarP(&stashUntracked, "include-untracked", "u", false, "include untracked files")
	tagCmd.Flags().StringVarP(&tagMessage, "message", "m", "", "annotate the tag with a message")

	rootCmd.AddCommand(pushCmd, pullCmd, fetchCmd, statusCmd, branchCmd, checkoutCmd, mergeCmd, remoteCmd, logCmd, stashCmd, tagCmd)
}
