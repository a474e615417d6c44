package risk

import (
	"fmt"
	"math"
	"strings"

	"github.com/rustyeddy/marketmind/market"
)

// Guardrail identifiers, listed in evaluation order.
const (
	MarketClosed        = "market_closed"
	MaxPositionExceeded = "max_position_exceeded"
	MaxDailyLoss        = "max_daily_loss"
)

// Evaluator applies the guardrail policy to proposed decisions. It holds no
// mutable state and is safe for concurrent use.
type Evaluator struct {
	policy Policy
}

// NewEvaluator validates the policy up front so that evaluation itself never
// fails.
func NewEvaluator(p Policy) (*Evaluator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{policy: p}, nil
}

// Policy returns the thresholds in force.
func (e *Evaluator) Policy() Policy { return e.policy }

// Violations runs every check without short-circuiting and returns the
// failed identifiers in evaluation order.
func (e *Evaluator) Violations(d market.Decision, ctx Context) []string {
	var failed []string

	if !IsRegularTradingHours(ctx.Time, e.policy.Location) {
		failed = append(failed, MarketClosed)
	}

	projected := ctx.Position + d.SignedSize()
	if math.Abs(projected) > e.policy.MaxPosition {
		failed = append(failed, MaxPositionExceeded)
	}

	if ctx.CumulativePnL < -math.Abs(e.policy.MaxDailyLoss) {
		failed = append(failed, MaxDailyLoss)
	}
	return failed
}

// Evaluate returns d unchanged when every check passes. Otherwise it returns a
// new HOLD decision with zero size, the incoming confidence, the rationale
// extended by an override note, and the failed guardrails. The input is never
// modified.
func (e *Evaluator) Evaluate(d market.Decision, ctx Context) market.Decision {
	failed := e.Violations(d, ctx)
	if len(failed) == 0 {
		return d
	}

	rationale := make([]string, 0, len(d.Rationale)+1)
	rationale = append(rationale, d.Rationale...)
	rationale = append(rationale, fmt.Sprintf("guardrail override: %s", strings.Join(failed, ",")))

	return market.Decision{
		Time:              d.Time,
		Symbol:            d.Symbol,
		Action:            market.Hold,
		Size:              0,
		Confidence:        d.Confidence,
		Rationale:         rationale,
		GuardrailsApplied: failed,
	}
}
