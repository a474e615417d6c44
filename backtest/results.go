package backtest

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/marketmind/journal"
	"github.com/rustyeddy/marketmind/market"
	"github.com/rustyeddy/marketmind/metrics"
)

// Result is the outcome of a backtest run.
type Result struct {
	RunID   string
	Created time.Time
	Symbol  string
	Start   time.Time
	End     time.Time
	Step    time.Duration

	Decisions []market.Decision
	Fills     []market.Fill
	Skipped   int

	NetPnL      float64
	Sharpe      float64
	MaxDrawdown float64
	PnL         []metrics.Point
}

// Trades is the number of fills produced.
func (r *Result) Trades() int { return len(r.Fills) }

// Actions counts decisions by action.
func (r *Result) Actions() map[market.Action]int {
	counts := make(map[market.Action]int, 3)
	for _, d := range r.Decisions {
		counts[d.Action]++
	}
	return counts
}

// Guarded counts decisions that a guardrail overrode.
func (r *Result) Guarded() int {
	n := 0
	for _, d := range r.Decisions {
		if len(d.GuardrailsApplied) > 0 {
			n++
		}
	}
	return n
}

// Record converts the result into a journal run record.
func (r *Result) Record(chartPath string) journal.RunRecord {
	rec := journal.RunRecord{
		RunID:       r.RunID,
		Created:     r.Created,
		Symbol:      r.Symbol,
		Start:       r.Start,
		End:         r.End,
		StepSeconds: int64(r.Step / time.Second),
		Decisions:   len(r.Decisions),
		Fills:       r.Trades(),
		Skipped:     r.Skipped,
		NetPnL:      r.NetPnL,
		Sharpe:      r.Sharpe,
		MaxDrawdown: r.MaxDrawdown,
		ChartPath:   chartPath,
	}
	if g := r.Guarded(); g > 0 {
		rec.Notes = append(rec.Notes, fmt.Sprintf("%d decisions overridden by guardrails", g))
	}
	return rec
}

// Print writes a plain-text summary.
func (r *Result) Print(w io.Writer) {
	actions := r.Actions()

	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	fmt.Fprintf(w, "Symbol:        %s\n", r.Symbol)
	fmt.Fprintf(w, "Start:         %s\n", r.Start.Format(time.RFC3339))
	fmt.Fprintf(w, "End:           %s\n", r.End.Format(time.RFC3339))
	fmt.Fprintf(w, "Step:          %s\n", r.Step)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Decisions")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Total:         %d\n", len(r.Decisions))
	fmt.Fprintf(w, "Buy/Sell/Hold: %d/%d/%d\n", actions[market.Buy], actions[market.Sell], actions[market.Hold])
	fmt.Fprintf(w, "Guarded:       %d\n", r.Guarded())
	fmt.Fprintf(w, "Skipped:       %d\n", r.Skipped)
	fmt.Fprintf(w, "Trades:        %d\n", r.Trades())

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Net P/L:       %.2f\n", r.NetPnL)
	fmt.Fprintf(w, "Sharpe:        %.3f\n", r.Sharpe)
	fmt.Fprintf(w, "Max Drawdown:  %.2f\n", r.MaxDrawdown)
}
