// Package telemetry records decisions and fills: structured logs, in-memory
// metrics, the websocket stream and the durable journal.
package telemetry

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rustyeddy/marketmind/internal/logger"
	"github.com/rustyeddy/marketmind/journal"
	"github.com/rustyeddy/marketmind/market"
	"github.com/rustyeddy/marketmind/metrics"
)

// ErrWriteFailure wraps any persistence error. In-memory metrics are already
// updated when it is returned.
var ErrWriteFailure = errors.New("telemetry write failure")

// Recorder is the pipeline's telemetry sink.
type Recorder struct {
	metrics *metrics.Engine
	journal journal.Journal
	pub     Publisher
	log     *slog.Logger
}

type Option func(*Recorder)

// WithPublisher streams every decision and fill to p.
func WithPublisher(p Publisher) Option {
	return func(r *Recorder) { r.pub = p }
}

// WithJournal persists fills and P&L points to j.
func WithJournal(j journal.Journal) Option {
	return func(r *Recorder) {
		if j != nil {
			r.journal = j
		}
	}
}

func NewRecorder(m *metrics.Engine, opts ...Option) *Recorder {
	r := &Recorder{
		metrics: m,
		journal: journal.Nop{},
		log:     logger.With("component", "telemetry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Metrics returns the engine this recorder feeds.
func (r *Recorder) Metrics() *metrics.Engine { return r.metrics }

func (r *Recorder) RecordDecision(d market.Decision) error {
	r.log.Info("decision",
		"symbol", d.Symbol,
		"action", d.Action,
		"size", d.Size,
		"confidence", d.Confidence,
		"guardrails", d.GuardrailsApplied,
	)
	r.metrics.RecordDecision(d)
	if r.pub != nil {
		r.pub.Publish(Event{Type: EventDecision, Time: d.Time, Data: d})
	}
	return nil
}

// RecordFill logs the fill and, unless it only established the symbol's
// reference price, appends its P&L delta to the metrics series. The fill
// and the resulting cumulative point are then journaled.
func (r *Recorder) RecordFill(f market.Fill, pnlDelta float64) error {
	r.log.Info("fill",
		"symbol", f.Symbol,
		"action", f.Action,
		"size", f.Size,
		"price", f.Price,
		"slippage_bps", f.SlippageBps,
		"latency_ms", f.LatencyMs,
		"pnl_delta", pnlDelta,
	)

	var cumulative float64
	if !f.Baseline {
		cumulative = r.metrics.Record(pnlDelta, f.Time)
	}
	if r.pub != nil {
		r.pub.Publish(Event{Type: EventFill, Time: f.Time, Data: f})
	}

	var errs []error
	if err := r.journal.RecordFill(journal.NewFillRecord(f, pnlDelta)); err != nil {
		errs = append(errs, fmt.Errorf("journal fill %s: %w", f.ID, err))
	}
	if !f.Baseline {
		p := journal.PnLPoint{Time: f.Time, Symbol: f.Symbol, Cumulative: cumulative}
		if err := r.journal.RecordPnL(p); err != nil {
			errs = append(errs, fmt.Errorf("journal pnl: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrWriteFailure, errors.Join(errs...))
	}
	return nil
}
