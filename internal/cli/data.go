package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketmind/market/data"
)

func newDataCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Market data tooling",
	}

	var (
		symbol   string
		startStr string
		endStr   string
		step     time.Duration
		outPath  string
	)
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export bars from the configured provider to CSV",
		Long: `Fetch history from the configured bar provider and write it as CSV,
ready for "marketmind backtest --bars".

Example:
  marketmind data export --symbol AAPL --start 2024-01-02 --end 2024-03-29 -o aapl.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if startStr == "" || endStr == "" {
				return fmt.Errorf("--start and --end are required")
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

			var src data.HistorySource
			switch cfg.Data.Provider {
			case "yahoo":
				src = data.NewYahooProvider()
			default:
				src = data.NewMockProvider(cfg.Data.MarketSeed)
			}

			symbol = strings.ToUpper(strings.TrimSpace(symbol))
			bars, err := src.History(cmd.Context(), symbol, start, end, step)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := data.WriteCSV(w, bars); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			if outPath != "" && outPath != "-" {
				fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(fmt.Sprintf("✓ Wrote %d bars to %s", len(bars), outPath)))
			}
			return nil
		},
	}
	exportCmd.Flags().StringVar(&symbol, "symbol", "AAPL", "Symbol to export")
	exportCmd.Flags().StringVar(&startStr, "start", "", "Start date YYYY-MM-DD or RFC3339 (required)")
	exportCmd.Flags().StringVar(&endStr, "end", "", "End date YYYY-MM-DD or RFC3339 (required)")
	exportCmd.Flags().DurationVar(&step, "step", time.Minute, "Bar spacing (mock provider only)")
	exportCmd.Flags().StringVarP(&outPath, "output", "o", "-", "Output CSV path, - for stdout")

	cmd.AddCommand(exportCmd)
	return cmd
}
