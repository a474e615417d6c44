package risk

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidPolicy marks a guardrail configuration that must be rejected at
// startup.
var ErrInvalidPolicy = errors.New("invalid risk policy")

// Policy holds the guardrail thresholds.
type Policy struct {
	// MaxPosition caps the absolute projected position per symbol.
	MaxPosition float64

	// MaxDailyLoss is a magnitude; its sign is ignored.
	MaxDailyLoss float64

	// Location is the trading-calendar timezone (America/New_York for US equities).
	Location *time.Location
}

// Validate rejects thresholds that can never produce a sensible check.
func (p Policy) Validate() error {
	if math.IsNaN(p.MaxPosition) || p.MaxPosition < 0 {
		return fmt.Errorf("%w: max position must be non-negative (got %v)", ErrInvalidPolicy, p.MaxPosition)
	}
	if math.IsNaN(p.MaxDailyLoss) {
		return fmt.Errorf("%w: max daily loss is NaN", ErrInvalidPolicy)
	}
	if p.Location == nil {
		return fmt.Errorf("%w: trading calendar location is required", ErrInvalidPolicy)
	}
	return nil
}

// Context is the point-in-time state a decision is judged against. It is built
// fresh for every pipeline step from the execution simulator.
type Context struct {
	Time          time.Time
	Symbol        string
	Position      float64
	CumulativePnL float64
}
