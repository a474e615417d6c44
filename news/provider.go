// Package news supplies the subjective signals: sentiment, attention and
// headline notes.
package news

import (
	"context"

	"github.com/rustyeddy/marketmind/market"
)

// Signal names produced by the providers in this package.
const (
	NewsSentiment     = "news_sentiment"
	NewsVolume        = "news_volume"
	SocialVelocityZ   = "social_velocity_z"
	SearchTrendZ      = "search_trend_z"
	HeadlineSentiment = "headline_sentiment"
)

// Provider fetches raw subjective signals for symbol.
type Provider interface {
	FetchSignals(ctx context.Context, symbol string) (market.Signals, error)
}
