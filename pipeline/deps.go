package pipeline

import (
	"context"

	"github.com/rustyeddy/marketmind/market"
	"github.com/rustyeddy/marketmind/risk"
)

// FeatureSource produces the factual feature vector for a symbol. It returns
// an error wrapping market.ErrInsufficientData when history is too short.
type FeatureSource interface {
	Features(ctx context.Context, symbol string) (market.Features, error)
}

// SignalSource produces the subjective signal vector for a symbol.
type SignalSource interface {
	Signals(ctx context.Context, symbol string) (market.Signals, error)
}

// Scorer turns features and signals into a raw decision.
type Scorer interface {
	Score(ctx context.Context, f market.Features, s market.Signals) (market.Decision, error)
}

// Guard enforces guardrails. Implementations are pure.
type Guard interface {
	Evaluate(d market.Decision, ctx risk.Context) market.Decision
}

// Broker is the execution simulator as seen by the orchestrator.
type Broker interface {
	Snapshot(symbol string) (position, pnl float64)
	Execute(d market.Decision, mark float64) (*market.Fill, float64)
}

// Sink receives every guarded decision and every fill. Failures are reported
// but never undo or abort the step.
type Sink interface {
	RecordDecision(d market.Decision) error
	RecordFill(f market.Fill, pnlDelta float64) error
}
