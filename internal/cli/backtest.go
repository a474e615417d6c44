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
	"github.com/rustyeddy/marketmind/market/data"
)

// Session bounds used when --start or --end is a bare date.
const (
	openHour, openMinute   = 9, 30
	closeHour, closeMinute = 16, 0
)

func newBacktestCmd(rc *RootConfig) *cobra.Command {
	var (
		symbol      string
		startStr    string
		endStr      string
		stepSeconds int
		barsPath    string
		chartPath   string
		orgPath     string
	)

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run a parity backtest through the live pipeline",
		Long: `Replay history through the same pipeline the live loop uses.

Dates may be YYYY-MM-DD (session open/close in the trading timezone) or RFC3339.

Example:
  marketmind backtest --symbol AAPL --start 2024-03-04 --end 2024-03-05 --chart pnl.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if startStr == "" || endStr == "" {
				return fmt.Errorf("--start and --end are required")
			}
			if stepSeconds <= 0 {
				return fmt.Errorf("invalid --step-seconds (got %d)", stepSeconds)
			}

			cfg, err := rc.load(cmd)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			start, err := parseWhen(startStr, loc, openHour, openMinute)
			if err != nil {
				return fmt.Errorf("bad --start: %w", err)
			}
			end, err := parseWhen(endStr, loc, closeHour, closeMinute)
			if err != nil {
				return fmt.Errorf("bad --end: %w", err)
			}

			a, err := app.New(cfg, app.WithReplay(data.NewReplayProvider()))
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			symbol = strings.ToUpper(strings.TrimSpace(symbol))
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Running backtest for %s from %s to %s",
				symbol, start.Format(time.RFC3339), end.Format(time.RFC3339))))

			res, err := a.Backtest(ctx, app.BacktestOptions{
				Symbol:    symbol,
				Start:     start,
				End:       end,
				Step:      time.Duration(stepSeconds) * time.Second,
				BarsFile:  barsPath,
				ChartPath: chartPath,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Decisions generated: %d | Trades: %d\n", len(res.Decisions), res.Trades())
			fmt.Fprintf(out, "PnL=%.2f Sharpe=%.2f DD=%.2f\n", res.NetPnL, res.Sharpe, res.MaxDrawdown)
			fmt.Fprintln(out)
			res.Print(out)

			if chartPath != "" && len(res.PnL) > 0 {
				fmt.Fprintln(out, okStyle.Render("✓ P&L chart: "+chartPath))
			}
			if orgPath != "" {
				if err := res.Record(chartPath).SaveOrg(orgPath); err != nil {
					return err
				}
				fmt.Fprintln(out, okStyle.Render("✓ Run summary: "+orgPath))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "AAPL", "Symbol to backtest")
	cmd.Flags().StringVar(&startStr, "start", "", "Start date YYYY-MM-DD or RFC3339 (required)")
	cmd.Flags().StringVar(&endStr, "end", "", "End date YYYY-MM-DD or RFC3339 (required)")
	cmd.Flags().IntVar(&stepSeconds, "step-seconds", 60, "Seconds between steps")
	cmd.Flags().StringVar(&barsPath, "bars", "", "CSV of bars to replay instead of the configured provider")
	cmd.Flags().StringVar(&chartPath, "chart", "", "Write an HTML P&L chart to this path")
	cmd.Flags().StringVar(&orgPath, "org", "", "Write an Org-mode run summary to this path")
	return cmd
}

// parseWhen accepts RFC3339 or a bare date, which is placed at hour:minute in
// loc.
func parseWhen(s string, loc *time.Location, hour, minute int) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc), nil
}
