package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/marketmind/market"
)

// Tuesday 2024-01-02 15:00 UTC is 10:00 in New York.
var openTime = time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func newEvaluator(t *testing.T, maxPos, maxLoss float64) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(Policy{MaxPosition: maxPos, MaxDailyLoss: maxLoss, Location: newYork(t)})
	require.NoError(t, err)
	return e
}

func decision(action market.Action, size float64) market.Decision {
	return market.Decision{
		Time:       openTime,
		Symbol:     "AAPL",
		Action:     action,
		Size:       size,
		Confidence: 0.8,
		Rationale:  []string{"intent=0.45"},
	}
}

func TestNewEvaluatorRejectsBadPolicy(t *testing.T) {
	t.Parallel()

	_, err := NewEvaluator(Policy{MaxPosition: -1, MaxDailyLoss: 100, Location: time.UTC})
	assert.ErrorIs(t, err, ErrInvalidPolicy)

	_, err = NewEvaluator(Policy{MaxPosition: 10, MaxDailyLoss: 100})
	assert.ErrorIs(t, err, ErrInvalidPolicy)

	_, err = NewEvaluator(Policy{MaxPosition: 10, MaxDailyLoss: -100, Location: time.UTC})
	assert.NoError(t, err, "max daily loss is a magnitude")
}

func TestMarketClosedGuardrail(t *testing.T) {
	t.Parallel()

	e := newEvaluator(t, 10, 1000)
	ctx := Context{
		Time:   time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC), // Saturday
		Symbol: "AAPL",
	}

	guarded := e.Evaluate(decision(market.Buy, 5), ctx)
	assert.Equal(t, market.Hold, guarded.Action)
	assert.Equal(t, 0.0, guarded.Size)
	assert.Equal(t, []string{MarketClosed}, guarded.GuardrailsApplied)
}

func TestMaxLossGuardrail(t *testing.T) {
	t.Parallel()

	e := newEvaluator(t, 10, 100)
	ctx := Context{Time: openTime, Symbol: "AAPL", CumulativePnL: -150}

	guarded := e.Evaluate(decision(market.Sell, 5), ctx)
	assert.Equal(t, market.Hold, guarded.Action)
	assert.Contains(t, guarded.GuardrailsApplied, MaxDailyLoss)
	assert.Equal(t, 0.8, guarded.Confidence)
}

func TestMaxPositionGuardrail(t *testing.T) {
	t.Parallel()

	e := newEvaluator(t, 10, 1000)
	ctx := Context{Time: openTime, Symbol: "AAPL", Position: 8}

	guarded := e.Evaluate(decision(market.Buy, 5), ctx)
	assert.Equal(t, market.Hold, guarded.Action)
	assert.Equal(t, []string{MaxPositionExceeded}, guarded.GuardrailsApplied)

	// Selling from +8 projects to +3 and passes.
	passed := e.Evaluate(decision(market.Sell, 5), ctx)
	assert.Equal(t, market.Sell, passed.Action)
	assert.Empty(t, passed.GuardrailsApplied)
}

func TestPositionLimitIsInclusive(t *testing.T) {
	t.Parallel()

	e := newEvaluator(t, 10, 1000)
	ctx := Context{Time: openTime, Symbol: "AAPL", Position: 5}

	guarded := e.Evaluate(decision(market.Buy, 5), ctx)
	assert.Equal(t, market.Buy, guarded.Action, "|10| is not greater than 10")
}

func TestHoldDoesNotMovePosition(t *testing.T) {
	t.Parallel()

	e := newEvaluator(t, 10, 1000)
	ctx := Context{Time: openTime, Symbol: "AAPL", Position: 10}

	assert.Empty(t, e.Violations(decision(market.Hold, 0), ctx))
}

func TestAllGuardrailsInFixedOrder(t *testing.T) {
	t.Parallel()

	e := newEvaluator(t, 10, 100)
	ctx := Context{
		Time:          time.Date(2024, 1, 7, 18, 0, 0, 0, time.UTC), // Sunday
		Symbol:        "AAPL",
		Position:      -8,
		CumulativePnL: -500,
	}

	guarded := e.Evaluate(decision(market.Sell, 5), ctx)
	assert.Equal(t, []string{MarketClosed, MaxPositionExceeded, MaxDailyLoss}, guarded.GuardrailsApplied)
	assert.Equal(t, market.Hold, guarded.Action)
	assert.Equal(t, 0.0, guarded.Size)
}

func TestEvaluatePassThroughReturnsInput(t *testing.T) {
	t.Parallel()

	e := newEvaluator(t, 10, 1000)
	in := decision(market.Buy, 2)

	out := e.Evaluate(in, Context{Time: openTime, Symbol: "AAPL"})
	assert.Equal(t, in, out)
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	e := newEvaluator(t, 1, 1000)
	rationale := make([]string, 1, 8) // spare capacity would expose aliasing
	rationale[0] = "intent=0.9"
	in := decision(market.Buy, 5)
	in.Rationale = rationale

	out := e.Evaluate(in, Context{Time: openTime, Symbol: "AAPL"})
	require.Len(t, out.Rationale, 2)
	assert.Equal(t, []string{"intent=0.9"}, in.Rationale)
	assert.Equal(t, market.Buy, in.Action)
	assert.Equal(t, 5.0, in.Size)

	out.Rationale[0] = "changed"
	assert.Equal(t, "intent=0.9", in.Rationale[0])
}

func TestEvaluateIsIdempotent(t *testing.T) {
	t.Parallel()

	e := newEvaluator(t, 10, 100)
	in := decision(market.Buy, 5)
	ctx := Context{Time: time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC), Symbol: "AAPL", Position: 8, CumulativePnL: -150}

	first := e.Evaluate(in, ctx)
	second := e.Evaluate(in, ctx)
	assert.Equal(t, first, second)
}
