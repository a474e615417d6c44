package agents

import (
	"context"
	"fmt"

	"github.com/rustyeddy/marketmind/market"
	"github.com/rustyeddy/marketmind/market/data"
)

// FactualAgent fetches bars and reduces them to a feature vector.
type FactualAgent struct {
	Base
	provider data.BarProvider
	store    FeatureStore
	lookback int
}

func NewFactualAgent(p data.BarProvider, store FeatureStore, lookback int, rt Runtime) *FactualAgent {
	if lookback < store.RequiredHistory {
		lookback = store.RequiredHistory
	}
	return &FactualAgent{
		Base:     newBase("factual-agent", rt),
		provider: p,
		store:    store,
		lookback: lookback,
	}
}

func (a *FactualAgent) Features(ctx context.Context, symbol string) (market.Features, error) {
	return run(ctx, a.Base, func(ctx context.Context) (market.Features, error) {
		bars, err := a.provider.GetBars(ctx, symbol, a.lookback)
		if err != nil {
			return market.Features{}, fmt.Errorf("bars: %w", err)
		}
		return a.store.Build(symbol, bars)
	})
}
