package market

import "time"

// Fill records one simulated execution.
type Fill struct {
	ID          string    `json:"id"`
	Time        time.Time `json:"timestamp"`
	Symbol      string    `json:"symbol"`
	Action      Action    `json:"action"`
	Price       float64   `json:"price"`
	Size        float64   `json:"size"`
	SlippageBps float64   `json:"slippage_bps"`
	LatencyMs   float64   `json:"latency_ms"`

	// Baseline is set when this fill established the first reference price
	// for its symbol, so no P&L was realized.
	Baseline bool `json:"baseline"`
}

// Snapshot bundles the running performance metrics with the latest decision.
type Snapshot struct {
	Time        time.Time `json:"timestamp"`
	Symbol      string    `json:"symbol"`
	PnL         float64   `json:"pnl"`
	Sharpe      float64   `json:"sharpe_30d"`
	MaxDrawdown float64   `json:"max_drawdown"`
	Decision    *Decision `json:"decision,omitempty"`
}
