package journal

import (
	"time"

	"github.com/rustyeddy/marketmind/market"
)

// FillRecord is one simulated execution as persisted.
type FillRecord struct {
	ID          string    `json:"id"`
	Time        time.Time `json:"timestamp"`
	Symbol      string    `json:"symbol"`
	Side        string    `json:"side"`
	Price       float64   `json:"price"`
	Size        float64   `json:"size"`
	SlippageBps float64   `json:"slippage_bps"`
	LatencyMs   float64   `json:"latency_ms"`
	PnLDelta    float64   `json:"pnl_delta"`
}

// NewFillRecord flattens a fill and its mark-to-market delta.
func NewFillRecord(f market.Fill, pnlDelta float64) FillRecord {
	return FillRecord{
		ID:          f.ID,
		Time:        f.Time,
		Symbol:      f.Symbol,
		Side:        string(f.Action),
		Price:       f.Price,
		Size:        f.Size,
		SlippageBps: f.SlippageBps,
		LatencyMs:   f.LatencyMs,
		PnLDelta:    pnlDelta,
	}
}

// PnLPoint is one cumulative P&L observation.
type PnLPoint struct {
	Time       time.Time
	Symbol     string
	Cumulative float64
}

type Journal interface {
	RecordFill(FillRecord) error
	RecordPnL(PnLPoint) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordFill(FillRecord) error { return nil }
func (Nop) RecordPnL(PnLPoint) error    { return nil }
func (Nop) Close() error                { return nil }
