package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/marketmind/backtest"
	"github.com/rustyeddy/marketmind/internal/logger"
	"github.com/rustyeddy/marketmind/internal/server"
	"github.com/rustyeddy/marketmind/market"
	"github.com/rustyeddy/marketmind/market/data"
)

// StepResult is one live-loop outcome, passed to a Reporter.
type StepResult struct {
	Symbol   string
	Decision market.Decision
	Fill     *market.Fill
	Err      error
}

// Reporter receives every live-loop outcome. It may be called from several
// goroutines at once.
type Reporter func(StepResult)

// Live steps every symbol once per interval until ctx is done, or until each
// symbol has run steps times when steps > 0. Symbols run concurrently. Step
// errors are reported and logged; they do not stop the loop.
func (a *App) Live(ctx context.Context, symbols []string, interval time.Duration, steps int, report Reporter) error {
	if len(symbols) == 0 {
		symbols = a.cfg.App.Symbols
	}
	if interval <= 0 {
		interval = a.cfg.Interval()
	}

	group, ctx := errgroup.WithContext(ctx)
	for _, symbol := range symbols {
		symbol := symbol
		group.Go(func() error {
			return a.loop(ctx, symbol, interval, steps, report)
		})
	}
	err := group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) loop(ctx context.Context, symbol string, interval time.Duration, steps int, report Reporter) error {
	logger.Info("live loop started", "symbol", symbol, "interval", interval.String(), "steps", steps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 0; steps <= 0 || n < steps; n++ {
		d, fill, err := a.orch.Step(ctx, symbol)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, market.ErrInsufficientData):
			logger.Info("waiting for history", "symbol", symbol, "err", err)
		default:
			logger.Warn("step failed", "symbol", symbol, "err", err)
		}
		if report != nil {
			report(StepResult{Symbol: symbol, Decision: d, Fill: fill, Err: err})
		}

		if steps > 0 && n == steps-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

// Serve runs the HTTP server and websocket hub until ctx is done. With loop
// set, the live loop runs alongside.
func (a *App) Serve(ctx context.Context, addr string, loop bool, report Reporter) error {
	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	srv, err := server.New(server.Config{
		Addr:          addr,
		Backend:       a,
		Stream:        http.HandlerFunc(a.hub.ServeWS),
		DefaultSymbol: a.cfg.App.Symbols[0],
	})
	if err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		a.hub.Run(ctx)
		return nil
	})
	group.Go(func() error {
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	if loop {
		group.Go(func() error {
			return a.Live(ctx, nil, 0, 0, report)
		})
	}
	return group.Wait()
}

// Step runs one pipeline step for symbol.
func (a *App) Step(ctx context.Context, symbol string) (market.Decision, *market.Fill, error) {
	return a.orch.Step(ctx, symbol)
}

// BacktestOptions select the range and outputs of a backtest.
type BacktestOptions struct {
	Symbol string
	Start  time.Time
	End    time.Time
	Step   time.Duration
	// BarsFile, when set, is a CSV of bars used instead of the configured
	// provider's history.
	BarsFile string
	// ChartPath, when set, receives an HTML chart of cumulative P&L.
	ChartPath string
}

// Backtest replays history through the pipeline. The app must have been
// built WithReplay.
func (a *App) Backtest(ctx context.Context, opts BacktestOptions) (*backtest.Result, error) {
	if a.replay == nil {
		return nil, fmt.Errorf("backtest: app was not built for replay")
	}
	if opts.Step <= 0 {
		opts.Step = a.cfg.Interval()
	}

	bars, err := a.loadHistory(ctx, opts)
	if err != nil {
		return nil, err
	}
	a.replay.Load(opts.Symbol, bars)
	logger.Info("backtest history loaded", "symbol", opts.Symbol, "bars", len(bars))

	runner := &backtest.Runner{Stepper: a.orch, Cursor: a.replay, Metrics: a.metrics}
	res, err := runner.Run(ctx, opts.Symbol, opts.Start, opts.End, opts.Step)
	if err != nil {
		return res, err
	}

	chartPath := ""
	if opts.ChartPath != "" && len(res.PnL) > 0 {
		if err := backtest.WritePnLChart(opts.ChartPath, res); err != nil {
			return res, err
		}
		chartPath = opts.ChartPath
	}
	if a.sqlite != nil {
		if err := a.sqlite.RecordRun(res.Record(chartPath)); err != nil {
			logger.Warn("backtest run not journaled", "run_id", res.RunID, "err", err)
		}
	}
	return res, nil
}

func (a *App) loadHistory(ctx context.Context, opts BacktestOptions) ([]market.Bar, error) {
	if opts.BarsFile != "" {
		return data.LoadCSV(opts.BarsFile)
	}

	warmup := time.Duration(a.cfg.Data.Lookback) * opts.Step
	if a.cfg.Data.Provider == "yahoo" {
		// daily bars; allow for weekends and holidays
		warmup = time.Duration(a.cfg.Data.Lookback) * 36 * time.Hour
	}
	bars, err := a.history.History(ctx, opts.Symbol, opts.Start.Add(-warmup), opts.End, opts.Step)
	if err != nil {
		return nil, fmt.Errorf("backtest history %s: %w", opts.Symbol, err)
	}
	return bars, nil
}
