package market

import (
	"errors"
	"math"
	"time"
)

// LastTradePrice is the feature key the pipeline reads the mark price from.
const LastTradePrice = "last_close"

// ErrInsufficientData is returned by feature and signal sources that cannot
// produce a vector, typically because the bar history is too short.
var ErrInsufficientData = errors.New("insufficient data")

// Features is the factual feature vector for one symbol at one instant.
type Features struct {
	Time   time.Time          `json:"timestamp"`
	Symbol string             `json:"symbol"`
	Values map[string]float64 `json:"features"`
}

// Get returns the named feature or def when absent.
func (f Features) Get(name string, def float64) float64 {
	if v, ok := f.Values[name]; ok {
		return v
	}
	return def
}

// MarkPrice returns the last trade price. A missing or non-finite value is
// reported as 0; callers still attempt execution with it.
func (f Features) MarkPrice() float64 {
	v, ok := f.Values[LastTradePrice]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Signals is the subjective signal vector for one symbol at one instant.
type Signals struct {
	Time   time.Time          `json:"timestamp"`
	Symbol string             `json:"symbol"`
	Values map[string]float64 `json:"signals"`
	Notes  []string           `json:"notes,omitempty"`
}

// Get returns the named signal or def when absent.
func (s Signals) Get(name string, def float64) float64 {
	if v, ok := s.Values[name]; ok {
		return v
	}
	return def
}
