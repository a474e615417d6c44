package data

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/marketmind/market"
)

// YahooProvider reads daily bars from Yahoo Finance.
type YahooProvider struct {
	now func() time.Time
}

func NewYahooProvider() *YahooProvider {
	return &YahooProvider{now: time.Now}
}

// GetBars fetches enough calendar days to cover lookback trading days and
// keeps the newest lookback bars.
func (y *YahooProvider) GetBars(ctx context.Context, symbol string, lookback int) ([]market.Bar, error) {
	if lookback <= 0 {
		return nil, fmt.Errorf("yahoo bars: lookback must be positive, got %d", lookback)
	}
	end := y.now()
	// ~252 trading days per 365 calendar days, plus holiday slack.
	days := lookback*365/252 + 10
	bars, err := y.History(ctx, symbol, end.AddDate(0, 0, -days), end, 24*time.Hour)
	if err != nil {
		return nil, err
	}
	return tail(bars, lookback), nil
}

// History fetches daily bars over [start, end]. step is ignored; Yahoo only
// serves the interval requested here.
func (y *YahooProvider) History(ctx context.Context, symbol string, start, end time.Time, _ time.Duration) ([]market.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	var out []market.Bar
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b := iter.Bar()
		out = append(out, market.Bar{
			Time:   time.Unix(int64(b.Timestamp), 0).UTC(),
			Symbol: symbol,
			Open:   price(b.Open),
			High:   price(b.High),
			Low:    price(b.Low),
			Close:  price(b.Close),
			Volume: float64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get historical data for %s: %w", symbol, err)
	}
	return out, nil
}

// price converts Yahoo's decimal quotes; float precision is ample for
// simulated fills.
func price(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
