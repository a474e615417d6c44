package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketmind/internal/app"
)

func newLiveCmd(rc *RootConfig) *cobra.Command {
	var (
		symbols  []string
		interval time.Duration
		steps    int
	)

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Run the live decision loop",
		Long: `Step the pipeline for every symbol on a fixed interval until interrupted.

Example:
  marketmind live --symbol AAPL,MSFT --interval 30s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rc.load(cmd)
			if err != nil {
				return err
			}
			if len(symbols) > 0 {
				cfg.App.Symbols = upper(symbols)
			}
			if interval <= 0 {
				interval = cfg.Interval()
			}

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Starting live loop for %s at %s intervals",
				strings.Join(cfg.App.Symbols, ","), interval)))
			if err := a.Live(ctx, cfg.App.Symbols, interval, steps, stepPrinter(out)); err != nil {
				return err
			}
			fmt.Fprintln(out, mutedStyle.Render("Shutting down..."))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&symbols, "symbol", nil, "Symbols to trade (default from config)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Loop interval (default from config)")
	cmd.Flags().IntVar(&steps, "steps", 0, "Stop after this many steps per symbol (0 = run until interrupted)")
	return cmd
}

func upper(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
