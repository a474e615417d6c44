// Package pipeline runs one decision cycle per symbol: features, signals,
// scoring, guardrails, optional execution and telemetry.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rustyeddy/marketmind/internal/logger"
	"github.com/rustyeddy/marketmind/market"
	"github.com/rustyeddy/marketmind/risk"
)

// Phase names, as they appear in debug logs.
const (
	PhaseBegin     = "begin"
	PhaseFeatures  = "features"
	PhaseSignals   = "signals"
	PhaseScore     = "score"
	PhaseGuardrail = "guardrail"
	PhaseExecute   = "execute"
	PhaseTelemetry = "telemetry"
	PhaseEnd       = "end"
)

// Deps are the collaborators an Orchestrator drives. All are required.
type Deps struct {
	Features FeatureSource
	Signals  SignalSource
	Scorer   Scorer
	Guard    Guard
	Broker   Broker
	Sink     Sink
}

func (d Deps) validate() error {
	var missing []string
	if d.Features == nil {
		missing = append(missing, "features")
	}
	if d.Signals == nil {
		missing = append(missing, "signals")
	}
	if d.Scorer == nil {
		missing = append(missing, "scorer")
	}
	if d.Guard == nil {
		missing = append(missing, "guard")
	}
	if d.Broker == nil {
		missing = append(missing, "broker")
	}
	if d.Sink == nil {
		missing = append(missing, "sink")
	}
	if len(missing) > 0 {
		return fmt.Errorf("pipeline: missing dependencies: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Orchestrator sequences one step at a time per symbol. Different symbols may
// step concurrently.
type Orchestrator struct {
	deps  Deps
	locks *symbolLocks
	log   *slog.Logger
}

func New(deps Deps) (*Orchestrator, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return &Orchestrator{
		deps:  deps,
		locks: newSymbolLocks(),
		log:   logger.With("component", "pipeline"),
	}, nil
}

// Step runs a single decision cycle for symbol and returns the guarded
// decision plus the fill, if any. Errors from the feature, signal or scoring
// phases abort the step before any state changes; market.ErrInsufficientData
// stays detectable with errors.Is.
func (o *Orchestrator) Step(ctx context.Context, symbol string) (market.Decision, *market.Fill, error) {
	unlock := o.locks.lock(symbol)
	defer unlock()

	log := o.log.With("symbol", symbol)
	log.Debug("phase", "phase", PhaseBegin)

	if err := ctx.Err(); err != nil {
		return market.Decision{}, nil, err
	}

	log.Debug("phase", "phase", PhaseFeatures)
	features, err := o.deps.Features.Features(ctx, symbol)
	if err != nil {
		return market.Decision{}, nil, fmt.Errorf("features %s: %w", symbol, err)
	}

	log.Debug("phase", "phase", PhaseSignals)
	signals, err := o.deps.Signals.Signals(ctx, symbol)
	if err != nil {
		return market.Decision{}, nil, fmt.Errorf("signals %s: %w", symbol, err)
	}

	log.Debug("phase", "phase", PhaseScore)
	raw, err := o.deps.Scorer.Score(ctx, features, signals)
	if err != nil {
		return market.Decision{}, nil, fmt.Errorf("score %s: %w", symbol, err)
	}

	log.Debug("phase", "phase", PhaseGuardrail)
	position, pnl := o.deps.Broker.Snapshot(symbol)
	decision := o.deps.Guard.Evaluate(raw, risk.Context{
		Time:          features.Time,
		Symbol:        symbol,
		Position:      position,
		CumulativePnL: pnl,
	})
	if len(decision.GuardrailsApplied) > 0 {
		log.Info("guardrail override",
			"requested", raw.Action,
			"guardrails", decision.GuardrailsApplied)
	}

	var (
		fill  *market.Fill
		delta float64
	)
	if decision.Executable() {
		log.Debug("phase", "phase", PhaseExecute)
		mark := features.MarkPrice()
		if mark == 0 {
			log.Warn("mark price missing, executing at 0", "feature", market.LastTradePrice)
		}
		fill, delta = o.deps.Broker.Execute(decision, mark)
	}

	log.Debug("phase", "phase", PhaseTelemetry)
	if err := o.deps.Sink.RecordDecision(decision); err != nil {
		log.Warn("telemetry write failed", "kind", "decision", "err", err)
	}
	if fill != nil {
		if err := o.deps.Sink.RecordFill(*fill, delta); err != nil {
			log.Warn("telemetry write failed", "kind", "fill", "err", err)
		}
	}

	log.Debug("phase", "phase", PhaseEnd, "action", decision.Action, "size", decision.Size)
	return decision, fill, nil
}

// IsInsufficientData reports whether err came from a collaborator that did
// not yet have enough history.
func IsInsufficientData(err error) bool {
	return errors.Is(err, market.ErrInsufficientData)
}
