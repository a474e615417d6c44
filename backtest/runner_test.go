package backtest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/marketmind/market"
	"github.com/rustyeddy/marketmind/metrics"
)

type fakeCursor struct {
	seeks []time.Time
}

func (c *fakeCursor) Seek(t time.Time) { c.seeks = append(c.seeks, t) }

// scriptedStepper replays a fixed sequence of step outcomes, reading the
// time from the shared cursor.
type scriptedStepper struct {
	cursor  *fakeCursor
	warmup  int
	failAt  int
	calls   int
	metrics *metrics.Engine
}

func (s *scriptedStepper) Step(ctx context.Context, symbol string) (market.Decision, *market.Fill, error) {
	s.calls++
	now := s.cursor.seeks[len(s.cursor.seeks)-1]
	if s.calls <= s.warmup {
		return market.Decision{}, nil, fmt.Errorf("features %s: %w", symbol, market.ErrInsufficientData)
	}
	if s.failAt > 0 && s.calls == s.failAt {
		return market.Decision{}, nil, errors.New("provider down")
	}

	action := market.Hold
	if s.calls%2 == 0 {
		action = market.Buy
	}
	d := market.Decision{Time: now, Symbol: symbol, Action: action, Size: 1}
	if action == market.Hold {
		d.Size = 0
		return d, nil, nil
	}
	if s.metrics != nil {
		s.metrics.Record(1, now)
	}
	return d, &market.Fill{Time: now, Symbol: symbol, Action: action, Price: 100, Size: 1}, nil
}

func TestRunnerStepsInclusiveRange(t *testing.T) {
	t.Parallel()

	cursor := &fakeCursor{}
	m := metrics.NewEngine(metrics.DefaultSettings())
	stepper := &scriptedStepper{cursor: cursor, warmup: 2, metrics: m}
	r := &Runner{Stepper: stepper, Cursor: cursor, Metrics: m}

	start := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	end := start.Add(9 * time.Minute)

	res, err := r.Run(context.Background(), "AAPL", start, end, time.Minute)
	require.NoError(t, err)

	assert.Len(t, cursor.seeks, 10)
	assert.Equal(t, start, cursor.seeks[0])
	assert.Equal(t, end, cursor.seeks[9])

	assert.Equal(t, 2, res.Skipped)
	assert.Len(t, res.Decisions, 8)
	assert.Equal(t, 4, res.Trades())
	assert.Equal(t, 4.0, res.NetPnL)
	assert.Len(t, res.PnL, 4)
	assert.NotEmpty(t, res.RunID)

	actions := res.Actions()
	assert.Equal(t, 4, actions[market.Buy])
	assert.Equal(t, 4, actions[market.Hold])
}

func TestRunnerStopsOnError(t *testing.T) {
	t.Parallel()

	cursor := &fakeCursor{}
	r := &Runner{Stepper: &scriptedStepper{cursor: cursor, failAt: 3}, Cursor: cursor}

	start := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	res, err := r.Run(context.Background(), "AAPL", start, start.Add(time.Hour), time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider down")
	require.NotNil(t, res)
	assert.Len(t, res.Decisions, 2, "partial result is returned")
}

func TestRunnerValidation(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	cursor := &fakeCursor{}
	ok := &scriptedStepper{cursor: cursor}

	tests := []struct {
		name   string
		runner *Runner
		end    time.Time
		step   time.Duration
		errMsg string
	}{
		{"no stepper", &Runner{}, start, time.Minute, "Stepper"},
		{"zero step", &Runner{Stepper: ok, Cursor: cursor}, start, 0, "step"},
		{"end before start", &Runner{Stepper: ok, Cursor: cursor}, start.Add(-time.Minute), time.Minute, "before start"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.runner.Run(context.Background(), "AAPL", start, tt.end, tt.step)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestRunnerCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cursor := &fakeCursor{}
	r := &Runner{Stepper: &scriptedStepper{cursor: cursor}, Cursor: cursor}
	start := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

	_, err := r.Run(ctx, "AAPL", start, start.Add(time.Hour), time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResultRecord(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	res := &Result{
		RunID:  "run-1",
		Symbol: "AAPL",
		Start:  start,
		End:    start.Add(time.Hour),
		Step:   90 * time.Second,
		Decisions: []market.Decision{
			{Action: market.Hold, GuardrailsApplied: []string{"market_closed"}},
			{Action: market.Buy, Size: 1},
		},
		Fills:   []market.Fill{{Action: market.Buy, Size: 1}},
		Skipped: 3,
		NetPnL:  12.5,
	}

	rec := res.Record("out/pnl.html")
	assert.Equal(t, "run-1", rec.RunID)
	assert.Equal(t, int64(90), rec.StepSeconds)
	assert.Equal(t, 2, rec.Decisions)
	assert.Equal(t, 1, rec.Fills)
	assert.Equal(t, 3, rec.Skipped)
	assert.Equal(t, 12.5, rec.NetPnL)
	assert.Equal(t, "out/pnl.html", rec.ChartPath)
	require.Len(t, rec.Notes, 1)
	assert.Contains(t, rec.Notes[0], "1 decisions overridden")
}
