// Package data supplies OHLCV bars to the factual agent.
package data

import (
	"context"
	"time"

	"github.com/rustyeddy/marketmind/market"
)

// BarProvider returns up to lookback bars for symbol, oldest first.
type BarProvider interface {
	GetBars(ctx context.Context, symbol string, lookback int) ([]market.Bar, error)
}

// HistorySource returns every bar in [start, end] for symbol, oldest first.
type HistorySource interface {
	History(ctx context.Context, symbol string, start, end time.Time, step time.Duration) ([]market.Bar, error)
}

// FloorToInterval truncates t to a multiple of interval since the Unix epoch.
// The result is in UTC.
func FloorToInterval(t time.Time, interval time.Duration) time.Time {
	if interval <= 0 {
		return t.UTC()
	}
	n := t.UnixNano()
	step := interval.Nanoseconds()
	floored := n - n%step
	if n < 0 && n%step != 0 {
		floored -= step
	}
	return time.Unix(0, floored).UTC()
}

func tail(bars []market.Bar, n int) []market.Bar {
	if n <= 0 || n >= len(bars) {
		out := make([]market.Bar, len(bars))
		copy(out, bars)
		return out
	}
	out := make([]market.Bar, n)
	copy(out, bars[len(bars)-n:])
	return out
}
