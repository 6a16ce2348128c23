package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ghassist/gh-assist/internal/ailink/prompt"
	"github.com/ghassist/gh-assist/internal/config"
	"github.com/ghassist/gh-assist/internal/github"
	"github.com/ghassist/gh-assist/internal/observability"
)

var doctorOnline bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long: `Run diagnostic checks on the git binary, the current repository,
configuration and credentials. With --online the GitHub token is verified
against the API.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := observability.Logger()
		log.Info("=== " + config.AppName + " doctor ===")
		log.Info("")

		failed := 0
		totalChecks := 6
		if doctorOnline {
			totalChecks++
		}
		step := 0
		next := func() int { step++; return step }

		// Check 1: git binary
		n := next()
		if path, err := exec.LookPath("git"); err != nil {
			log.Error(fmt.Sprintf("[%d/%d] Checking git binary... ❌ not found on PATH", n, totalChecks))
			failed++
		} else {
			out, verr := gitExecutor.ExecuteWithOutput(ctx, exec.CommandContext(ctx, "git", "--version"))
			if verr != nil {
				log.Warn(fmt.Sprintf("[%d/%d] Checking git binary... ⚠️  %s (version unknown)", n, totalChecks, path), zap.Error(verr))
			} else {
				log.Info(fmt.Sprintf("[%d/%d] Checking git binary... ✅ %s", n, totalChecks, strings.TrimSpace(out)), zap.String("git_path", path))
			}
		}

		// Check 2: repository
		n = next()
		if repo, err := openRepo(ctx); err != nil {
			log.Warn(fmt.Sprintf("[%d/%d] Checking repository... ⚠️  %s is not a git work tree", n, totalChecks, currentDir()))
		} else {
			branch, _ := repo.CurrentBranch(ctx)
			remote, rerr := repo.RemoteURL(ctx, "origin")
			if rerr != nil {
				log.Info(fmt.Sprintf("[%d/%d] Checking repository... ✅ on %s (no origin remote)", n, totalChecks, branch))
			} else {
				log.Info(fmt.Sprintf("[%d/%d] Checking repository... ✅ on %s, origin %s", n, totalChecks, branch, remote))
			}
		}

		// Check 3: configuration
		n = next()
		cfg, cfgErr := requireConfig(ctx)
		switch {
		case cfgErr != nil:
			log.Error(fmt.Sprintf("[%d/%d] Checking configuration... ❌ %v", n, totalChecks, configErr))
			failed++
		case loadedConfig.Path == "":
			log.Info(fmt.Sprintf("[%d/%d] Checking configuration... ✅ defaults (no file; searched %s)", n, totalChecks,
				strings.Join(config.SearchPaths(currentDir(), homeDir()), ", ")))
		default:
			log.Info(fmt.Sprintf("[%d/%d] Checking configuration... ✅ %s", n, totalChecks, loadedConfig.Path))
		}

		// Check 4: GitHub token
		n = next()
		if cfgErr == nil && strings.TrimSpace(cfg.GitHub.Token) != "" {
			log.Info(fmt.Sprintf("[%d/%d] Checking GitHub token... ✅ set", n, totalChecks))
		} else {
			log.Error(fmt.Sprintf("[%d/%d] Checking GitHub token... ❌ GITHUB_TOKEN not set", n, totalChecks))
			failed++
		}

		// Check 5: model credentials
		n = next()
		if cfgErr != nil {
			log.Warn(fmt.Sprintf("[%d/%d] Checking AI provider... ⚠️  skipped (config not loaded)", n, totalChecks))
		} else if strings.TrimSpace(cfg.AI.APIKey()) != "" {
			log.Info(fmt.Sprintf("[%d/%d] Checking AI provider... ✅ %s (%s)", n, totalChecks, cfg.AI.ProviderName(), cfg.AI.Model))
		} else {
			log.Warn(fmt.Sprintf("[%d/%d] Checking AI provider... ⚠️  %s API key not set; AI commands will fail", n, totalChecks, cfg.AI.ProviderName()))
		}

		// Check 6: prompts
		n = next()
		promptsDir := ""
		if cfgErr == nil {
			promptsDir = cfg.AI.PromptsDir
		}
		if reg, err := prompt.BuildRegistry(promptsDir); err != nil {
			log.Error(fmt.Sprintf("[%d/%d] Checking prompts... ❌ %v", n, totalChecks, err))
			failed++
		} else {
			msg := fmt.Sprintf("[%d/%d] Checking prompts... ✅ %d loaded", n, totalChecks, len(reg.List()))
			if overridden := reg.Overridden(); len(overridden) > 0 {
				msg += fmt.Sprintf(" (overridden: %s)", strings.Join(overridden, ", "))
			}
			log.Info(msg)
		}

		// Check 7: API access
		if doctorOnline {
			n = next()
			if cfgErr != nil {
				log.Warn(fmt.Sprintf("[%d/%d] Checking GitHub API... ⚠️  skipped (config not loaded)", n, totalChecks))
			} else if client, err := newGitHubClient(cfg); err != nil {
				log.Warn(fmt.Sprintf("[%d/%d] Checking GitHub API... ⚠️  skipped (%v)", n, totalChecks, err))
			} else if session, err := github.Authenticate(ctx, client); err != nil {
				log.Error(fmt.Sprintf("[%d/%d] Checking GitHub API... ❌ %v", n, totalChecks, err))
				failed++
			} else if limits, err := client.RateLimits(ctx); err != nil {
				log.Warn(fmt.Sprintf("[%d/%d] Checking GitHub API... ⚠️  authenticated as %s, rate limit unavailable", n, totalChecks, session.User.Login), zap.Error(err))
			} else {
				log.Info(fmt.Sprintf("[%d/%d] Checking GitHub API... ✅ %s, %d/%d core requests left", n, totalChecks,
					session.User.Login, limits.Core.Remaining, limits.Core.Limit))
			}
		}

		version := crucible.GetVersion()
		log.Info("")
		log.Info(fmt.Sprintf("Runtime: %s %s/%s, gofulmen %s", runtime.Version(), runtime.GOOS, runtime.GOARCH, version.Gofulmen))
		log.Info("")
		if failed > 0 {
			log.Warn("⚠️  Some checks failed. Review the output above for details.")
			return fmt.Errorf("%d doctor check(s) failed", failed)
		}
		log.Info("✅ All checks passed!")
		return nil
	},
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorOnline, "online", false, "verify the token against the GitHub API")
	rootCmd.AddCommand(doctorCmd)
}
