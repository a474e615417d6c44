package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketmind/journal"
)

func newJournalCmd(rc *RootConfig) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Query the SQLite journal",
		Long: `Query fills, P&L points and backtest runs from the SQLite journal.

Subcommands:
  fills  - List the most recent fills
  pnl    - List cumulative P&L points
  run    - Show one backtest run as Org-mode

Examples:
  marketmind journal fills --symbol AAPL --limit 20
  marketmind journal run 3f2b5c12-...`,
	}
	cmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "path to SQLite journal DB (default from config)")

	open := func(cmd *cobra.Command) (*journal.SQLite, error) {
		path := dbPath
		if path == "" {
			cfg, err := rc.load(cmd)
			if err != nil {
				return nil, err
			}
			path = cfg.Journal.DBPath
		}
		j, err := journal.NewSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		return j, nil
	}

	var (
		symbol string
		limit  int
	)
	fillsCmd := &cobra.Command{
		Use:   "fills",
		Short: "List the most recent fills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := open(cmd)
			if err != nil {
				return err
			}
			defer j.Close()

			recs, err := j.ListFills(strings.ToUpper(symbol), limit)
			if err != nil {
				return fmt.Errorf("query fills: %w", err)
			}
			writeFills(cmd.OutOrStdout(), recs)
			return nil
		},
	}
	fillsCmd.Flags().StringVar(&symbol, "symbol", "", "Only this symbol")
	fillsCmd.Flags().IntVar(&limit, "limit", 50, "Maximum fills to list")

	pnlCmd := &cobra.Command{
		Use:   "pnl",
		Short: "List cumulative P&L points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := open(cmd)
			if err != nil {
				return err
			}
			defer j.Close()

			points, err := j.ListPnL(strings.ToUpper(symbol))
			if err != nil {
				return fmt.Errorf("query pnl: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, p := range points {
				fmt.Fprintf(out, "%s %-6s %12.2f\n", p.Time.UTC().Format(time.RFC3339), p.Symbol, p.Cumulative)
			}
			return nil
		},
	}
	pnlCmd.Flags().StringVar(&symbol, "symbol", "", "Only this symbol")

	runCmd := &cobra.Command{
		Use:   "run <run-id>",
		Short: "Show one backtest run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := open(cmd)
			if err != nil {
				return err
			}
			defer j.Close()

			rec, err := j.GetRun(args[0])
			if err != nil {
				return fmt.Errorf("get run: %w", err)
			}
			return rec.WriteOrg(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(fillsCmd, pnlCmd, runCmd)
	return cmd
}

func writeFills(w io.Writer, recs []journal.FillRecord) {
	if len(recs) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no fills"))
		return
	}
	fmt.Fprintf(w, "%-20s %-6s %-4s %10s %8s %8s %10s\n", "TIME", "SYMBOL", "SIDE", "PRICE", "SIZE", "SLIP", "PNL")
	for _, r := range recs {
		fmt.Fprintf(w, "%-20s %-6s %-4s %10.2f %8.2f %8.1f %10.2f\n",
			r.Time.UTC().Format("2006-01-02T15:04:05Z"), r.Symbol, r.Side, r.Price, r.Size, r.SlippageBps, r.PnLDelta)
	}
}
