package agents

import (
	"fmt"

	"github.com/rustyeddy/marketmind/indicators"
	"github.com/rustyeddy/marketmind/market"
)

// Feature names reported by the factual agent.
const (
	RSI14          = "rsi_14"
	ATR14          = "atr_14"
	Momentum20     = "mom_20d"
	Volatility20   = "rolling_vol_20d"
	BookImbalance  = "book_imbalance"
	VolumeZScore20 = "volume_zscore_20d"
)

// DefaultRequiredHistory is the minimum number of bars a feature vector
// is built from.
const DefaultRequiredHistory = 120

// FeatureStore turns bars into the factual feature vector.
type FeatureStore struct {
	RequiredHistory int
}

func NewFeatureStore() FeatureStore {
	return FeatureStore{RequiredHistory: DefaultRequiredHistory}
}

// Build computes features from bars sorted oldest first. The vector is
// stamped with the newest bar's time.
func (s FeatureStore) Build(symbol string, bars []market.Bar) (market.Features, error) {
	if len(bars) < s.RequiredHistory {
		return market.Features{}, fmt.Errorf("%s: have %d bars, need %d: %w",
			symbol, len(bars), s.RequiredHistory, market.ErrInsufficientData)
	}
	if len(bars) == 0 {
		return market.Features{}, fmt.Errorf("%s: no bars: %w", symbol, market.ErrInsufficientData)
	}

	n := len(bars)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
		closes[i] = b.Close
		volumes[i] = b.Volume
	}

	rsi, err := indicators.RSI(closes, 14)
	if err != nil {
		return market.Features{}, fmt.Errorf("%s rsi: %w", symbol, err)
	}
	atr, err := indicators.ATR(highs, lows, closes, 14)
	if err != nil {
		return market.Features{}, fmt.Errorf("%s atr: %w", symbol, err)
	}
	mom, err := indicators.Momentum(closes, 20)
	if err != nil {
		return market.Features{}, fmt.Errorf("%s momentum: %w", symbol, err)
	}
	vol, err := indicators.Volatility(closes, 20)
	if err != nil {
		return market.Features{}, fmt.Errorf("%s volatility: %w", symbol, err)
	}
	vz, err := indicators.VolumeZScore(volumes, 20)
	if err != nil {
		return market.Features{}, fmt.Errorf("%s volume z-score: %w", symbol, err)
	}

	return market.Features{
		Time:   bars[n-1].Time,
		Symbol: symbol,
		Values: map[string]float64{
			RSI14:                 rsi,
			ATR14:                 atr,
			Momentum20:            mom,
			Volatility20:          vol,
			BookImbalance:         0, // no order book in this system
			VolumeZScore20:        vz,
			market.LastTradePrice: closes[n-1],
		},
	}, nil
}
