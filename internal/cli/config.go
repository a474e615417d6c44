package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketmind/config"
)

func newConfigCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate configuration files",
		Long: `Manage configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  marketmind config init -o marketmind.yaml
  marketmind config validate -f marketmind.yaml`,
	}

	var output string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Default().SaveToFile(output); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, okStyle.Render("✓ Created default configuration: "+output))
			fmt.Fprintln(out, "\nEdit the file and run with:")
			fmt.Fprintf(out, "  marketmind live --config %s\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "marketmind.yaml", "output config file path")

	var path string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = rc.ConfigPath
			}
			cfg, err := config.LoadFromFile(path)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, okStyle.Render("✓ Configuration valid: "+path))
			fmt.Fprintf(out, "  Symbols:  %s (every %ds)\n", strings.Join(cfg.App.Symbols, ","), cfg.App.IntervalSeconds)
			fmt.Fprintf(out, "  Risk:     max position %.0f, max daily loss %.2f (%s)\n",
				cfg.Risk.MaxPosition, cfg.Risk.MaxDailyLoss, cfg.Risk.Timezone)
			fmt.Fprintf(out, "  Data:     bars=%s news=%s\n", cfg.Data.Provider, cfg.Data.News)
			fmt.Fprintf(out, "  Journal:  %s\n", cfg.Journal.Type)
			return nil
		},
	}
	validateCmd.Flags().StringVarP(&path, "file", "f", "", "path to config file (defaults to --config)")

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
