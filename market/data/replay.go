package data

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rustyeddy/marketmind/market"
)

// ReplayProvider serves recorded bars up to a movable cursor, so a backtest
// step never sees the future.
type ReplayProvider struct {
	mu     sync.RWMutex
	bars   map[string][]market.Bar
	cursor time.Time
}

func NewReplayProvider() *ReplayProvider {
	return &ReplayProvider{bars: make(map[string][]market.Bar)}
}

// Load replaces the bars for symbol. Bars are sorted by time.
func (r *ReplayProvider) Load(symbol string, bars []market.Bar) {
	sorted := make([]market.Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	r.mu.Lock()
	r.bars[strings.ToUpper(symbol)] = sorted
	r.mu.Unlock()
}

// Seek moves the cursor. Bars stamped after t become invisible.
func (r *ReplayProvider) Seek(t time.Time) {
	r.mu.Lock()
	r.cursor = t
	r.mu.Unlock()
}

// Now returns the cursor; backtests use it as the clock for every other
// component.
func (r *ReplayProvider) Now() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cursor
}

// Len returns the number of loaded bars for symbol.
func (r *ReplayProvider) Len(symbol string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bars[strings.ToUpper(symbol)])
}

// GetBars returns at most lookback bars at or before the cursor. A short
// result is not an error here; the feature store decides what is enough.
func (r *ReplayProvider) GetBars(ctx context.Context, symbol string, lookback int) ([]market.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	bars := r.bars[strings.ToUpper(symbol)]
	n := sort.Search(len(bars), func(i int) bool { return bars[i].Time.After(r.cursor) })
	return tail(bars[:n], lookback), nil
}
