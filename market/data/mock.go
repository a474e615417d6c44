package data

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rustyeddy/marketmind/market"
)

// maxMockHistory bounds the per-symbol series the mock keeps in memory.
const maxMockHistory = 2048

// walker produces a geometric random walk with noisy OHLC and volume.
type walker struct {
	rng    *rand.Rand
	price  float64
	volume float64
}

func newWalker(rng *rand.Rand) *walker {
	return &walker{rng: rng, price: 100 + rng.Float64()*5, volume: 1_000_000}
}

func (w *walker) next(symbol string, at time.Time) market.Bar {
	w.price = math.Max(1, w.price*(1+w.rng.NormFloat64()/100))
	w.volume = math.Max(100_000, w.volume*(1+w.rng.NormFloat64()*0.01))

	return market.Bar{
		Time:   at,
		Symbol: symbol,
		Open:   w.price * (1 - (w.rng.Float64()*0.002 - 0.001)),
		High:   w.price * (1 + math.Abs(w.rng.NormFloat64()*0.003)),
		Low:    w.price * (1 - math.Abs(w.rng.NormFloat64()*0.003)),
		Close:  w.price,
		Volume: w.volume,
	}
}

// MockProvider serves a seeded random walk per symbol. The first call for a
// symbol backfills lookback one-minute bars ending at the clock; every later
// call appends one new bar, so consecutive steps see moving prices.
type MockProvider struct {
	mu     sync.Mutex
	seed   int64
	now    func() time.Time
	series map[string][]market.Bar
	walks  map[string]*walker
}

type MockOption func(*MockProvider)

// WithMockClock replaces time.Now.
func WithMockClock(now func() time.Time) MockOption {
	return func(p *MockProvider) {
		if now != nil {
			p.now = now
		}
	}
}

func NewMockProvider(seed int64, opts ...MockOption) *MockProvider {
	p := &MockProvider{
		seed:   seed,
		now:    time.Now,
		series: make(map[string][]market.Bar),
		walks:  make(map[string]*walker),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// walkerLocked seeds each symbol independently so adding a symbol does not
// change another symbol's prices.
func (p *MockProvider) walkerLocked(symbol string) *walker {
	w, ok := p.walks[symbol]
	if !ok {
		w = newWalker(rand.New(rand.NewSource(p.seed ^ symbolSeed(symbol))))
		p.walks[symbol] = w
	}
	return w
}

func symbolSeed(symbol string) int64 {
	// FNV-1a
	var h uint64 = 14695981039346656037
	for i := 0; i < len(symbol); i++ {
		h ^= uint64(symbol[i])
		h *= 1099511628211
	}
	return int64(h >> 1)
}

func (p *MockProvider) GetBars(ctx context.Context, symbol string, lookback int) ([]market.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if lookback <= 0 {
		return nil, fmt.Errorf("mock bars: lookback must be positive, got %d", lookback)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now().UTC()
	w := p.walkerLocked(symbol)
	bars := p.series[symbol]

	if len(bars) == 0 {
		for i := lookback - 1; i >= 0; i-- {
			bars = append(bars, w.next(symbol, now.Add(-time.Duration(i)*time.Minute)))
		}
	} else {
		at := now
		if last := bars[len(bars)-1].Time; !at.After(last) {
			at = last.Add(time.Minute)
		}
		bars = append(bars, w.next(symbol, at))
	}
	if len(bars) > maxMockHistory {
		bars = bars[len(bars)-maxMockHistory:]
	}
	p.series[symbol] = bars
	return tail(bars, lookback), nil
}

// History generates a fresh walk sampled every step over [start, end]. It
// does not touch the live series GetBars serves.
func (p *MockProvider) History(ctx context.Context, symbol string, start, end time.Time, step time.Duration) ([]market.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if step <= 0 {
		return nil, fmt.Errorf("mock history: step must be positive, got %s", step)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("mock history: end %s before start %s", end, start)
	}

	w := newWalker(rand.New(rand.NewSource(p.seed ^ symbolSeed(symbol))))
	var out []market.Bar
	for t := start; !t.After(end); t = t.Add(step) {
		out = append(out, w.next(symbol, t))
	}
	return out, nil
}
