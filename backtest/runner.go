package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rustyeddy/marketmind/internal/logger"
	"github.com/rustyeddy/marketmind/market"
	"github.com/rustyeddy/marketmind/metrics"
)

// Stepper runs one pipeline step for a symbol. *pipeline.Orchestrator
// satisfies it.
type Stepper interface {
	Step(ctx context.Context, symbol string) (market.Decision, *market.Fill, error)
}

// Cursor moves the simulated clock. *data.ReplayProvider satisfies it.
type Cursor interface {
	Seek(t time.Time)
}

// Runner drives a Stepper over a time range, moving the cursor before each
// step so every collaborator sees the same simulated instant.
type Runner struct {
	Stepper Stepper
	Cursor  Cursor
	// Metrics, when set, supplies the P&L summary of the result.
	Metrics *metrics.Engine
}

// Run executes one step per interval in [start, end], inclusive. Steps that
// fail for lack of history are counted as skipped; any other error stops
// the run and is returned with the partial result.
func (r *Runner) Run(ctx context.Context, symbol string, start, end time.Time, step time.Duration) (*Result, error) {
	if r.Stepper == nil {
		return nil, fmt.Errorf("backtest: Stepper is required")
	}
	if step <= 0 {
		return nil, fmt.Errorf("backtest: step must be positive (got %s)", step)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("backtest: end %s before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	res := &Result{
		RunID:   uuid.NewString(),
		Created: time.Now().UTC(),
		Symbol:  symbol,
		Start:   start,
		End:     end,
		Step:    step,
	}
	defer r.summarize(res)

	logger.Info("backtest started", "run_id", res.RunID, "symbol", symbol,
		"start", start.Format(time.RFC3339), "end", end.Format(time.RFC3339), "step", step.String())

	for cursor := start; !cursor.After(end); cursor = cursor.Add(step) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if r.Cursor != nil {
			r.Cursor.Seek(cursor)
		}

		d, fill, err := r.Stepper.Step(ctx, symbol)
		if err != nil {
			if errors.Is(err, market.ErrInsufficientData) {
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("backtest step at %s: %w", cursor.Format(time.RFC3339), err)
		}
		res.Decisions = append(res.Decisions, d)
		if fill != nil {
			res.Fills = append(res.Fills, *fill)
		}
	}

	logger.Info("backtest finished", "run_id", res.RunID, "decisions", len(res.Decisions),
		"trades", res.Trades(), "skipped", res.Skipped)
	return res, nil
}

func (r *Runner) summarize(res *Result) {
	if r.Metrics == nil {
		return
	}
	res.NetPnL = r.Metrics.Cumulative()
	res.Sharpe = r.Metrics.Sharpe()
	res.MaxDrawdown = r.Metrics.Drawdown()
	res.PnL = r.Metrics.Points()
}
