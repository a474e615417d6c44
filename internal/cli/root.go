// Package cli implements the marketmind command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketmind/config"
	"github.com/rustyeddy/marketmind/internal/logger"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// RootConfig holds the persistent flags shared by every subcommand.
type RootConfig struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

// load reads the configuration and applies flag overrides and logging.
func (rc *RootConfig) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(rc.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.App.LogLevel = rc.LogLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.App.LogFormat = rc.LogFormat
	}
	logger.SetLevel(cfg.App.LogLevel)
	logger.SetFormat(cfg.App.LogFormat)
	return cfg, nil
}

func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}

	cmd := &cobra.Command{
		Use:           "marketmind",
		Short:         "Market-Mind: agentic paper-trading decision pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "info", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().StringVar(&rc.LogFormat, "log-format", "text", "Log format: text|json")

	cmd.AddCommand(
		newLiveCmd(rc),
		newBacktestCmd(rc),
		newServeCmd(rc),
		newConfigCmd(rc),
		newJournalCmd(rc),
		newDataCmd(rc),
		newVersionCmd(),
	)
	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
		os.Exit(1)
	}
}
