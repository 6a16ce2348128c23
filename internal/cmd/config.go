package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ghassist/gh-assist/internal/config"
	"github.com/ghassist/gh-assist/internal/output"
)

var (
	configInitPath   string
	configInitGlobal bool
	configInitForce  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (secrets masked)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := requireConfig(ctx)
		if err != nil {
			return err
		}
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		source := loadedConfig.Path
		if source == "" {
			source = "(defaults and environment)"
		}
		printBlock(cmd, output.Panel("Configuration",
			"Source:            "+source,
			"GITHUB_TOKEN:      "+secretStatus(cfg.GitHub.Token),
			"ANTHROPIC_API_KEY: "+secretStatus(cfg.AI.AnthropicAPIKey),
			"OPENAI_API_KEY:    "+secretStatus(cfg.AI.OpenAIAPIKey),
		))
		printBlock(cmd, strings.TrimRight(string(data), "\n"))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to a file",
	Long: `Write the effective configuration (defaults, file and environment merged,
credentials omitted) to ./.gh-assistant.yml, or with --global to
$XDG_CONFIG_HOME/gh-assist/config.yml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := requireConfig(ctx)
		if err != nil {
			return err
		}
		path := initTarget()
		if _, err := os.Stat(path); err == nil && !configInitForce {
			overwrite, err := newInteractor(cmd).Confirm(fmt.Sprintf("%s exists. Overwrite?", path), false)
			if err != nil {
				return err
			}
			if !overwrite {
				printNote(cmd, "Left %s unchanged", path)
				return nil
			}
		}
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		printOK(cmd, "Wrote %s", path)
		printLine(cmd, "Credentials are read from GITHUB_TOKEN and ANTHROPIC_API_KEY (or OPENAI_API_KEY).")
		return nil
	},
}

func initTarget() string {
	switch {
	case strings.TrimSpace(configInitPath) != "":
		return configInitPath
	case configInitGlobal:
		return config.DefaultConfigPath()
	default:
		return filepath.Join(currentDir(), ".gh-assistant.yml")
	}
}

func secretStatus(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(not set)"
	}
	return "(set)"
}

func init() {
	configInitCmd.Flags().StringVar(&configInitPath, "path", "", "file to write")
	configInitCmd.Flags().BoolVar(&configInitGlobal, "global", false, "write to the user config directory")
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite without asking")

	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}
