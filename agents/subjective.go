package agents

import (
	"context"
	"strings"

	"github.com/rustyeddy/marketmind/market"
	"github.com/rustyeddy/marketmind/news"
)

// SubjectiveAgent fetches news-derived signals and, when headlines are
// present, adds a sentiment score for them.
type SubjectiveAgent struct {
	Base
	provider news.Provider
	model    news.SentimentModel
}

func NewSubjectiveAgent(p news.Provider, model news.SentimentModel, rt Runtime) *SubjectiveAgent {
	if model == nil {
		model = news.NewRuleBased()
	}
	return &SubjectiveAgent{
		Base:     newBase("subjective-agent", rt),
		provider: p,
		model:    model,
	}
}

func (a *SubjectiveAgent) Signals(ctx context.Context, symbol string) (market.Signals, error) {
	return run(ctx, a.Base, func(ctx context.Context) (market.Signals, error) {
		sig, err := a.provider.FetchSignals(ctx, symbol)
		if err != nil {
			return market.Signals{}, err
		}
		enriched := make(map[string]float64, len(sig.Values)+1)
		for k, v := range sig.Values {
			enriched[k] = v
		}
		if len(sig.Notes) > 0 {
			enriched[news.HeadlineSentiment] = a.model.Score(strings.Join(sig.Notes, " "))
		}
		sig.Values = enriched
		return sig, nil
	})
}
