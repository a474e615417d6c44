package sim

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rustyeddy/marketmind/market"
	"github.com/rustyeddy/marketmind/pkg/id"
)

// Settings configure the execution simulator.
type Settings struct {
	SlippageBps     float64
	LatencyMs       float64
	LatencyJitterMs float64
	Seed            int64
	Basis           Basis
}

// DefaultSettings returns 5 bps slippage and 50ms ± 5ms latency.
func DefaultSettings() Settings {
	return Settings{
		SlippageBps:     5,
		LatencyMs:       50,
		LatencyJitterMs: 5,
		Seed:            1,
		Basis:           BasisUpdatedPosition,
	}
}

func (s Settings) validate() error {
	if s.SlippageBps < 0 {
		return fmt.Errorf("sim: slippage bps must be >= 0 (got %v)", s.SlippageBps)
	}
	if s.LatencyMs < 0 || s.LatencyJitterMs < 0 {
		return fmt.Errorf("sim: latency must be >= 0 (got %v ± %v)", s.LatencyMs, s.LatencyJitterMs)
	}
	return nil
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces time.Now as the source of fill timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDs replaces the fill ID generator.
func WithIDs(g *id.Generator) Option {
	return func(e *Engine) {
		if g != nil {
			e.ids = g
		}
	}
}

// Engine is a paper broker. It keeps signed positions and the last observed
// mark per symbol, plus one cumulative mark-to-market P&L for the whole book.
// A per-symbol breakdown of that P&L is kept alongside.
//
// Every mutation happens under a single mutex, so a Snapshot never observes
// a position that disagrees with the book P&L.
type Engine struct {
	mu        sync.Mutex
	settings  Settings
	rng       *rand.Rand
	now       func() time.Time
	ids       *id.Generator
	positions map[string]float64
	lastPrice map[string]float64
	pnl       map[string]float64
	book      float64
}

func NewEngine(s Settings, opts ...Option) (*Engine, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		settings:  s,
		rng:       rand.New(rand.NewSource(s.Seed)),
		now:       time.Now,
		ids:       id.NewGenerator(),
		positions: make(map[string]float64),
		lastPrice: make(map[string]float64),
		pnl:       make(map[string]float64),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Settings returns the configuration the engine was built with.
func (e *Engine) Settings() Settings { return e.settings }

// Execute fills an executable decision at mark and marks the symbol to
// market. HOLD decisions and non-positive sizes return (nil, 0) without
// touching any state.
func (e *Engine) Execute(d market.Decision, mark float64) (*market.Fill, float64) {
	if !d.Executable() {
		return nil, 0
	}
	sign := d.Action.Sign()

	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.positions[d.Symbol]
	after := before + sign*d.Size
	e.positions[d.Symbol] = after

	var delta float64
	prev, seen := e.lastPrice[d.Symbol]
	if seen {
		held := after
		if e.settings.Basis == BasisPriorPosition {
			held = before
		}
		delta = MarkToMarket(prev, mark, held)
		e.pnl[d.Symbol] += delta
		e.book += delta
	}
	e.lastPrice[d.Symbol] = mark

	at := e.now()
	fill := &market.Fill{
		ID:          e.ids.NewAt(at),
		Time:        at,
		Symbol:      d.Symbol,
		Action:      d.Action,
		Price:       FillPrice(mark, sign, e.settings.SlippageBps),
		Size:        d.Size,
		SlippageBps: e.settings.SlippageBps,
		LatencyMs:   e.latencyLocked(),
		Baseline:    !seen,
	}
	return fill, delta
}

func (e *Engine) latencyLocked() float64 {
	j := e.settings.LatencyJitterMs
	if j == 0 {
		return e.settings.LatencyMs
	}
	return e.settings.LatencyMs + (e.rng.Float64()*2-1)*j
}

// Snapshot returns the symbol's position and the book's cumulative P&L in
// one atomic read.
func (e *Engine) Snapshot(symbol string) (position, pnl float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.positions[symbol], e.book
}

func (e *Engine) Position(symbol string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.positions[symbol]
}

// PnL returns the share of cumulative P&L booked on symbol.
func (e *Engine) PnL(symbol string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pnl[symbol]
}

// TotalPnL returns cumulative P&L across all symbols.
func (e *Engine) TotalPnL() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book
}

// LastPrice returns the most recent mark seen for symbol.
func (e *Engine) LastPrice(symbol string) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.lastPrice[symbol]
	return p, ok
}

// Positions returns a copy of every open position.
func (e *Engine) Positions() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]float64, len(e.positions))
	for k, v := range e.positions {
		out[k] = v
	}
	return out
}
