package market

import (
	"fmt"
	"strings"
	"time"
)

// Action is the instruction carried by a Decision.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
	Hold Action = "HOLD"
)

// ParseAction accepts BUY, SELL or HOLD in any case.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToUpper(strings.TrimSpace(s))); a {
	case Buy, Sell, Hold:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Sign is +1 for BUY, -1 for SELL and 0 otherwise.
func (a Action) Sign() float64 {
	switch a {
	case Buy:
		return 1
	case Sell:
		return -1
	}
	return 0
}

// Decision is a proposed or final trading instruction for one symbol.
//
// A Decision is a value: the guardrail evaluator replaces it rather than
// mutating it. After guardrail evaluation a HOLD always has zero size and a
// non-empty GuardrailsApplied always implies HOLD.
type Decision struct {
	Time              time.Time `json:"timestamp"`
	Symbol            string    `json:"symbol"`
	Action            Action    `json:"action"`
	Size              float64   `json:"size"`
	Confidence        float64   `json:"confidence"`
	Rationale         []string  `json:"rationale"`
	GuardrailsApplied []string  `json:"guardrails_applied"`
}

// Executable reports whether the decision should reach the broker: a BUY or
// SELL with positive size.
func (d Decision) Executable() bool {
	return (d.Action == Buy || d.Action == Sell) && d.Size > 0
}

// SignedSize is +Size for BUY, -Size for SELL and 0 for HOLD.
func (d Decision) SignedSize() float64 {
	return d.Action.Sign() * d.Size
}
