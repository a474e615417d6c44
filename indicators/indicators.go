// Package indicators computes the scalar technical features the factual agent
// reports. Each function returns the value at the newest input.
package indicators

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"github.com/rustyeddy/marketmind/market"
)

func need(n, got int) error {
	if got < n {
		return fmt.Errorf("not enough bars: need %d, got %d: %w", n, got, market.ErrInsufficientData)
	}
	return nil
}

func checkPeriod(period int) error {
	if period <= 0 {
		return fmt.Errorf("period must be positive, got %d", period)
	}
	return nil
}

// RSI is Wilder's relative strength index over period.
func RSI(closes []float64, period int) (float64, error) {
	if err := checkPeriod(period); err != nil {
		return 0, err
	}
	if err := need(period+1, len(closes)); err != nil {
		return 0, err
	}
	return last(talib.Rsi(closes, period)), nil
}

// ATR is Wilder's average true range over period.
func ATR(highs, lows, closes []float64, period int) (float64, error) {
	if err := checkPeriod(period); err != nil {
		return 0, err
	}
	if len(highs) != len(closes) || len(lows) != len(closes) {
		return 0, fmt.Errorf("atr: mismatched input lengths %d/%d/%d", len(highs), len(lows), len(closes))
	}
	if err := need(period+1, len(closes)); err != nil {
		return 0, err
	}
	return last(talib.Atr(highs, lows, closes, period)), nil
}

// Momentum is the fractional change of the newest close against the close
// window bars earlier.
func Momentum(closes []float64, window int) (float64, error) {
	if err := checkPeriod(window); err != nil {
		return 0, err
	}
	if err := need(window+1, len(closes)); err != nil {
		return 0, err
	}
	return last(talib.Rocr(closes, window)) - 1, nil
}

// Volatility is the sample standard deviation of the last window simple
// returns.
func Volatility(closes []float64, window int) (float64, error) {
	if err := checkPeriod(window); err != nil {
		return 0, err
	}
	if err := need(window+1, len(closes)); err != nil {
		return 0, err
	}
	returns := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			returns[i-1] = 0
			continue
		}
		returns[i-1] = closes[i]/closes[i-1] - 1
	}
	return sampleStd(returns, window), nil
}

// VolumeZScore scores the newest volume against the trailing window
// (newest included) mean and sample standard deviation. A flat window
// scores 0.
func VolumeZScore(volumes []float64, window int) (float64, error) {
	if err := checkPeriod(window); err != nil {
		return 0, err
	}
	if window < 2 {
		return 0, fmt.Errorf("volume z-score window must be >= 2, got %d", window)
	}
	if err := need(window, len(volumes)); err != nil {
		return 0, err
	}
	mean := last(talib.Sma(volumes, window))
	std := sampleStd(volumes, window)
	if std == 0 {
		return 0, nil
	}
	return (volumes[len(volumes)-1] - mean) / std, nil
}

// sampleStd rescales talib's population deviation of the trailing window to
// the n-1 estimator.
func sampleStd(in []float64, window int) float64 {
	if window < 2 {
		return 0
	}
	pop := last(talib.StdDev(in, window, 1))
	return pop * math.Sqrt(float64(window)/float64(window-1))
}

func last(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	v := series[len(series)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
