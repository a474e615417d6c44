package agents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/marketmind/market"
	"github.com/rustyeddy/marketmind/news"
)

var t0 = time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)

func features(vals map[string]float64) market.Features {
	return market.Features{Time: t0, Symbol: "AAPL", Values: vals}
}

func signals(vals map[string]float64) market.Signals {
	return market.Signals{Time: t0, Symbol: "AAPL", Values: vals}
}

func newJudge(t *testing.T, cfg JudgeConfig) *Judge {
	t.Helper()
	j, err := NewJudge(cfg, nil)
	require.NoError(t, err)
	return j
}

func TestJudgeBuy(t *testing.T) {
	t.Parallel()

	j := newJudge(t, DefaultJudgeConfig())
	d, err := j.Score(context.Background(),
		features(map[string]float64{RSI14: 30, Momentum20: 0.05, Volatility20: 0.01}),
		signals(map[string]float64{news.NewsSentiment: 0.8}))
	require.NoError(t, err)

	assert.Equal(t, market.Buy, d.Action)
	assert.Equal(t, 1.0, d.Size)
	assert.InDelta(t, 0.346, d.Confidence, 1e-9)
	assert.Equal(t, t0, d.Time)
	assert.Equal(t, []string{"factual_score=0.31", "subjective_score=0.40", "intent=0.35"}, d.Rationale)
	assert.Empty(t, d.GuardrailsApplied)
}

func TestJudgeSell(t *testing.T) {
	t.Parallel()

	j := newJudge(t, DefaultJudgeConfig())
	d := j.Decide(
		features(map[string]float64{RSI14: 80, Momentum20: -0.05, Volatility20: 0.01}),
		signals(map[string]float64{news.NewsSentiment: -0.8}))

	assert.Equal(t, market.Sell, d.Action)
	assert.Equal(t, 1.0, d.Size, "sell size comes from |intent|")
	assert.InDelta(t, 0.334, d.Confidence, 1e-9)
}

func TestJudgeHoldHasNoSize(t *testing.T) {
	t.Parallel()

	j := newJudge(t, DefaultJudgeConfig())
	d := j.Decide(features(map[string]float64{RSI14: 40}), signals(nil))

	assert.Equal(t, market.Hold, d.Action)
	assert.Equal(t, 0.0, d.Size)
	assert.False(t, d.Executable())
}

func TestJudgeSizeScalesWithVolatility(t *testing.T) {
	t.Parallel()

	cfg := DefaultJudgeConfig()
	cfg.Bias = 0.1
	j := newJudge(t, cfg)

	d := j.Decide(
		features(map[string]float64{RSI14: 30, Momentum20: 0.05, Volatility20: 0.5}),
		signals(map[string]float64{news.NewsSentiment: 1}))

	// factual 0.16, subjective 0.5, intent 0.6*0.16 + 0.4*0.5 + 0.1 = 0.396
	assert.Equal(t, market.Buy, d.Action)
	assert.InDelta(t, 0.396/0.5, d.Size, 1e-9)
}

func TestScoresAreClamped(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, FactualScore(features(map[string]float64{
		RSI14: -500, Momentum20: 10, Volatility20: 0, VolumeZScore20: 30,
	})))
	assert.Equal(t, -1.0, SubjectiveScore(signals(map[string]float64{
		news.NewsSentiment: -5, news.HeadlineSentiment: -5,
		news.SocialVelocityZ: -30, news.SearchTrendZ: -30,
	})))
}

func TestJudgeConfigValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, DefaultJudgeConfig().Validate())

	bad := DefaultJudgeConfig()
	bad.TauSell = 0.5
	_, err := NewJudge(bad, nil)
	assert.Error(t, err)

	bad = DefaultJudgeConfig()
	bad.MaxSize = -1
	assert.Error(t, bad.Validate())

	bad = DefaultJudgeConfig()
	bad.VolTarget = 0
	assert.Error(t, bad.Validate())
}

func TestJudgeRemembersLastDecision(t *testing.T) {
	t.Parallel()

	j := newJudge(t, DefaultJudgeConfig())
	_, ok := j.LastResult()
	assert.False(t, ok)

	d, err := j.Score(context.Background(), features(nil), signals(nil))
	require.NoError(t, err)

	got, ok := j.LastResult()
	require.True(t, ok)
	assert.Equal(t, d, got)
}
