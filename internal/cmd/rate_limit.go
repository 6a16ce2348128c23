package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ghassist/gh-assist/internal/output"
)

var rateLimitCmd = &cobra.Command{
	Use:   "rate-limit",
	Short: "Show the core and search rate-limit windows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := requireConfig(ctx)
		if err != nil {
			return err
		}
		client, err := newGitHubClient(cfg)
		if err != nil {
			return err
		}
		limits, err := client.RateLimits(ctx)
		if err != nil {
			return err
		}
		return writeListing(cmd, limits, func() string { return output.RateLimits(limits, time.Now()) })
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami [login]",
	Short: "Show the authenticated GitHub user, or another user's profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		session, err := newSession(ctx)
		if err != nil {
			return err
		}
		u := session.User
		if len(args) == 1 && args[0] != u.Login {
			if u, err = session.Client.GetUser(ctx, args[0]); err != nil {
				return err
			}
		}
		format, err := resolveOutputFormat(cmd)
		if err != nil {
			return err
		}
		if format == output.FormatJSON {
			return output.WriteJSON(cmd.OutOrStdout(), u)
		}
		lines := []string{}
		if u.Name != "" {
			lines = append(lines, "Name:      "+u.Name)
		}
		if u.Email != "" {
			lines = append(lines, "Email:     "+u.Email)
		}
		if u.Company != "" {
			lines = append(lines, "Company:   "+u.Company)
		}
		if u.Location != "" {
			lines = append(lines, "Location:  "+u.Location)
		}
		lines = append(lines,
			fmt.Sprintf("Repos:     %d public", u.PublicRepos),
			fmt.Sprintf("Followers: %d, following %d", u.Followers, u.Following),
			"Profile:   "+u.HTMLURL,
		)
		printBlock(cmd, output.Panel(u.Login, lines...))
		return nil
	},
}

func init() {
	addOutputFlags(rateLimitCmd)
	whoamiCmd.Flags().String("output-format", "table", "output format: table, json")
	rootCmd.AddCommand(rateLimitCmd, whoamiCmd)
}
