package news

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rustyeddy/marketmind/market"
)

// MockProvider draws signals from a seeded source owned by the instance.
type MockProvider struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

type MockOption func(*MockProvider)

// WithClock replaces time.Now as the signal timestamp source.
func WithClock(now func() time.Time) MockOption {
	return func(p *MockProvider) {
		if now != nil {
			p.now = now
		}
	}
}

func NewMockProvider(seed int64, opts ...MockOption) *MockProvider {
	p := &MockProvider{rng: rand.New(rand.NewSource(seed)), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *MockProvider) uniform(lo, hi float64) float64 {
	return lo + p.rng.Float64()*(hi-lo)
}

func (p *MockProvider) FetchSignals(ctx context.Context, symbol string) (market.Signals, error) {
	if err := ctx.Err(); err != nil {
		return market.Signals{}, err
	}

	p.mu.Lock()
	score := p.uniform(-1, 1)
	social := p.uniform(-1.5, 1.5)
	search := p.uniform(-1, 1)
	p.mu.Unlock()

	return market.Signals{
		Time:   p.now().UTC(),
		Symbol: symbol,
		Values: map[string]float64{
			NewsSentiment:   score,
			SocialVelocityZ: social,
			SearchTrendZ:    search,
		},
		Notes: []string{fmt.Sprintf("Mock headline sentiment %.2f for %s", score, symbol)},
	}, nil
}
