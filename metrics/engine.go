package metrics

import (
	"sync"
	"time"

	"github.com/rustyeddy/marketmind/market"
)

// Settings bound the in-memory history.
type Settings struct {
	Capacity         int     `yaml:"capacity" json:"capacity"`
	DecisionCapacity int     `yaml:"decision_capacity" json:"decision_capacity"`
	PeriodsPerYear   float64 `yaml:"periods_per_year" json:"periods_per_year"`
}

func DefaultSettings() Settings {
	return Settings{Capacity: 512, DecisionCapacity: 32, PeriodsPerYear: 252}
}

// Engine keeps a bounded cumulative P&L series and a bounded decision
// history. Readers and writers may run concurrently.
type Engine struct {
	mu        sync.RWMutex
	settings  Settings
	series    *Series
	decisions []market.Decision
	now       func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces time.Now as the snapshot timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(s Settings, opts ...Option) *Engine {
	d := DefaultSettings()
	if s.Capacity <= 0 {
		s.Capacity = d.Capacity
	}
	if s.DecisionCapacity <= 0 {
		s.DecisionCapacity = d.DecisionCapacity
	}
	if s.PeriodsPerYear <= 0 {
		s.PeriodsPerYear = d.PeriodsPerYear
	}
	e := &Engine{
		settings:  s,
		series:    NewSeries(s.Capacity),
		decisions: make([]market.Decision, 0, s.DecisionCapacity),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Record appends last cumulative + delta at t and returns the new cumulative.
func (e *Engine) Record(delta float64, t time.Time) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	var cum float64
	if last, ok := e.series.Last(); ok {
		cum = last.Value
	}
	cum += delta
	e.series.Append(Point{Time: t, Value: cum})
	return cum
}

// Cumulative returns the latest cumulative value, 0 when empty.
func (e *Engine) Cumulative() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	last, _ := e.series.Last()
	return last.Value
}

func (e *Engine) Sharpe() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Sharpe(e.series.Values(), e.settings.PeriodsPerYear)
}

func (e *Engine) Drawdown() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return MaxDrawdown(e.series.Values())
}

// Points returns a copy of the P&L series, oldest first.
func (e *Engine) Points() []Point {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.series.Points()
}

// RecordDecision appends d to the decision history, dropping the oldest
// entry at capacity.
func (e *Engine) RecordDecision(d market.Decision) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.decisions) == e.settings.DecisionCapacity {
		copy(e.decisions, e.decisions[1:])
		e.decisions = e.decisions[:len(e.decisions)-1]
	}
	e.decisions = append(e.decisions, d)
}

// LatestDecision returns the most recently recorded decision across all
// symbols.
func (e *Engine) LatestDecision() (market.Decision, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.decisions) == 0 {
		return market.Decision{}, false
	}
	return e.decisions[len(e.decisions)-1], true
}

// Decisions returns a copy of the decision history, oldest first.
func (e *Engine) Decisions() []market.Decision {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]market.Decision, len(e.decisions))
	copy(out, e.decisions)
	return out
}

// Snapshot bundles the current metrics for symbol. The decision is the most
// recent one recorded, whatever its symbol.
func (e *Engine) Snapshot(symbol string) market.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	values := e.series.Values()
	snap := market.Snapshot{
		Time:        e.now(),
		Symbol:      symbol,
		Sharpe:      Sharpe(values, e.settings.PeriodsPerYear),
		MaxDrawdown: MaxDrawdown(values),
	}
	if n := len(values); n > 0 {
		snap.PnL = values[n-1]
	}
	if n := len(e.decisions); n > 0 {
		d := e.decisions[n-1]
		snap.Decision = &d
	}
	return snap
}

// Export returns the headline figures keyed the way the metrics endpoint
// reports them.
func (e *Engine) Export() map[string]float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	values := e.series.Values()
	var pnl float64
	if n := len(values); n > 0 {
		pnl = values[n-1]
	}
	return map[string]float64{
		"pnl":          pnl,
		"sharpe_30d":   Sharpe(values, e.settings.PeriodsPerYear),
		"max_drawdown": MaxDrawdown(values),
	}
}
