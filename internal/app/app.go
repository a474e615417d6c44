// Package app wires the decision pipeline from a config.Config and runs it
// live, behind the HTTP server or over history.
package app

import (
	"fmt"
	"time"

	"github.com/rustyeddy/marketmind/agents"
	"github.com/rustyeddy/marketmind/config"
	"github.com/rustyeddy/marketmind/internal/logger"
	"github.com/rustyeddy/marketmind/internal/server"
	"github.com/rustyeddy/marketmind/journal"
	"github.com/rustyeddy/marketmind/market"
	"github.com/rustyeddy/marketmind/market/data"
	"github.com/rustyeddy/marketmind/metrics"
	"github.com/rustyeddy/marketmind/news"
	"github.com/rustyeddy/marketmind/pipeline"
	"github.com/rustyeddy/marketmind/risk"
	"github.com/rustyeddy/marketmind/sim"
	"github.com/rustyeddy/marketmind/telemetry"
)

const hubBuffer = 256

// App owns every long-lived component of one process.
type App struct {
	cfg *config.Config
	now func() time.Time

	bars    data.BarProvider
	history data.HistorySource
	replay  *data.ReplayProvider
	news    news.Provider

	metrics  *metrics.Engine
	broker   *sim.Engine
	guard    *risk.Evaluator
	judge    *agents.Judge
	hub      *telemetry.Hub
	journal  journal.Journal
	sqlite   *journal.SQLite
	recorder *telemetry.Recorder
	orch     *pipeline.Orchestrator
}

type options struct {
	now     func() time.Time
	bars    data.BarProvider
	news    news.Provider
	journal journal.Journal
	replay  *data.ReplayProvider
}

type Option func(*options)

// WithClock replaces time.Now for every component.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithBarProvider overrides the configured bar provider.
func WithBarProvider(p data.BarProvider) Option {
	return func(o *options) { o.bars = p }
}

// WithNewsProvider overrides the configured news provider.
func WithNewsProvider(p news.Provider) Option {
	return func(o *options) { o.news = p }
}

// WithJournal overrides the configured journal.
func WithJournal(j journal.Journal) Option {
	return func(o *options) { o.journal = j }
}

// WithReplay runs the app against recorded bars. The replay cursor becomes
// the clock unless WithClock is also given.
func WithReplay(r *data.ReplayProvider) Option {
	return func(o *options) { o.replay = r }
}

// New builds the application. Nothing is started.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.now == nil {
		o.now = time.Now
		if o.replay != nil {
			o.now = o.replay.Now
		}
	}

	a := &App{cfg: cfg, now: o.now, replay: o.replay}
	if err := a.buildProviders(o); err != nil {
		return nil, err
	}
	if err := a.buildJournal(o); err != nil {
		return nil, err
	}
	if err := a.buildPipeline(); err != nil {
		_ = a.Close()
		return nil, err
	}

	logger.Info("app initialized",
		"environment", cfg.App.Environment,
		"symbols", cfg.App.Symbols,
		"data", cfg.Data.Provider,
		"news", cfg.Data.News,
		"journal", cfg.Journal.Type,
		"replay", o.replay != nil)
	return a, nil
}

func (a *App) buildProviders(o options) error {
	cfg := a.cfg

	switch cfg.Data.Provider {
	case "yahoo":
		y := data.NewYahooProvider()
		a.bars, a.history = y, y
	default:
		m := data.NewMockProvider(cfg.Data.MarketSeed, data.WithMockClock(a.now))
		a.bars, a.history = m, m
	}
	if o.replay != nil {
		a.bars = o.replay
	}
	if o.bars != nil {
		a.bars = o.bars
	}

	if o.news != nil {
		a.news = o.news
		return nil
	}
	switch cfg.Data.News {
	case "finnhub":
		p, err := news.NewFinnhubProvider(cfg.Data.NewsAPIKey, news.NewRuleBased(), news.WithFinnhubClock(a.now))
		if err != nil {
			return err
		}
		a.news = p
	default:
		a.news = news.NewMockProvider(cfg.Data.NewsSeed, news.WithClock(a.now))
	}
	return nil
}

func (a *App) buildJournal(o options) error {
	if o.journal != nil {
		a.journal = o.journal
		if s, ok := o.journal.(*journal.SQLite); ok {
			a.sqlite = s
		}
		return nil
	}

	jc := a.cfg.Journal
	switch jc.Type {
	case "sqlite":
		s, err := journal.NewSQLite(jc.DBPath)
		if err != nil {
			return err
		}
		a.journal, a.sqlite = s, s
	case "csv":
		c, err := journal.NewCSV(jc.FillsFile, jc.PnLFile)
		if err != nil {
			return err
		}
		a.journal = c
	default:
		a.journal = journal.Nop{}
	}
	return nil
}

func (a *App) buildPipeline() error {
	cfg := a.cfg

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	a.guard, err = risk.NewEvaluator(risk.Policy{
		MaxPosition:  cfg.Risk.MaxPosition,
		MaxDailyLoss: cfg.Risk.MaxDailyLoss,
		Location:     loc,
	})
	if err != nil {
		return err
	}

	a.broker, err = sim.NewEngine(sim.Settings{
		SlippageBps:     cfg.Execution.SlippageBps,
		LatencyMs:       cfg.Execution.LatencyMs,
		LatencyJitterMs: cfg.Execution.LatencyJitterMs,
		Seed:            cfg.Execution.Seed,
		Basis:           sim.ParseBasis(cfg.Execution.PnLBasis),
	}, sim.WithClock(a.now))
	if err != nil {
		return err
	}

	rt := agents.LocalRuntime{}
	a.judge, err = agents.NewJudge(cfg.Judge, rt)
	if err != nil {
		return err
	}

	a.metrics = metrics.NewEngine(cfg.Metrics, metrics.WithClock(a.now))
	a.hub = telemetry.NewHub(hubBuffer)
	a.recorder = telemetry.NewRecorder(a.metrics,
		telemetry.WithPublisher(a.hub),
		telemetry.WithJournal(a.journal))

	a.orch, err = pipeline.New(pipeline.Deps{
		Features: agents.NewFactualAgent(a.bars, agents.NewFeatureStore(), cfg.Data.Lookback, rt),
		Signals:  agents.NewSubjectiveAgent(a.news, news.NewRuleBased(), rt),
		Scorer:   a.judge,
		Guard:    a.guard,
		Broker:   a.broker,
		Sink:     a.recorder,
	})
	return err
}

func (a *App) Config() *config.Config              { return a.cfg }
func (a *App) Orchestrator() *pipeline.Orchestrator { return a.orch }
func (a *App) Metrics() *metrics.Engine             { return a.metrics }
func (a *App) Broker() *sim.Engine                  { return a.broker }
func (a *App) Hub() *telemetry.Hub                  { return a.hub }

// Snapshot returns the metrics snapshot for symbol.
func (a *App) Snapshot(symbol string) market.Snapshot {
	return a.metrics.Snapshot(symbol)
}

// ExportMetrics returns the headline metrics.
func (a *App) ExportMetrics() map[string]float64 {
	return a.metrics.Export()
}

// Fills lists journaled fills, newest first. Only the SQLite journal can be
// queried.
func (a *App) Fills(symbol string, limit int) ([]journal.FillRecord, error) {
	if a.sqlite == nil {
		return nil, fmt.Errorf("%w: journal type %q cannot be queried", server.ErrUnavailable, a.cfg.Journal.Type)
	}
	return a.sqlite.ListFills(symbol, limit)
}

// Close releases the journal.
func (a *App) Close() error {
	if a.journal == nil {
		return nil
	}
	return a.journal.Close()
}
