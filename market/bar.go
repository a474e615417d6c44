package market

import "time"

// Bar is one OHLCV observation for a symbol.
type Bar struct {
	Time   time.Time `json:"timestamp"`
	Symbol string    `json:"symbol"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}
