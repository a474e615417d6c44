package agents

import (
	"context"
	"fmt"
	"math"

	"github.com/rustyeddy/marketmind/market"
	"github.com/rustyeddy/marketmind/news"
)

// JudgeConfig holds every tunable of the judge. There is no open-ended
// override mechanism; unknown settings cannot be injected.
type JudgeConfig struct {
	FactualWeight    float64 `yaml:"factual_weight" json:"factual_weight"`
	SubjectiveWeight float64 `yaml:"subjective_weight" json:"subjective_weight"`
	Bias             float64 `yaml:"bias" json:"bias"`
	TauBuy           float64 `yaml:"tau_buy" json:"tau_buy"`
	TauSell          float64 `yaml:"tau_sell" json:"tau_sell"`
	K                float64 `yaml:"k" json:"k"`
	VolTarget        float64 `yaml:"vol_target" json:"vol_target"`
	MinSize          float64 `yaml:"min_size" json:"min_size"`
	MaxSize          float64 `yaml:"max_size" json:"max_size"`
}

func DefaultJudgeConfig() JudgeConfig {
	return JudgeConfig{
		FactualWeight:    0.6,
		SubjectiveWeight: 0.4,
		Bias:             0,
		TauBuy:           0.3,
		TauSell:          -0.3,
		K:                1,
		VolTarget:        0.02,
		MinSize:          0,
		MaxSize:          1,
	}
}

func (c JudgeConfig) Validate() error {
	if c.TauSell > c.TauBuy {
		return fmt.Errorf("judge: tau_sell %v above tau_buy %v", c.TauSell, c.TauBuy)
	}
	if c.MinSize < 0 || c.MaxSize < c.MinSize {
		return fmt.Errorf("judge: size bounds [%v, %v] invalid", c.MinSize, c.MaxSize)
	}
	if c.VolTarget <= 0 {
		return fmt.Errorf("judge: vol_target must be positive (got %v)", c.VolTarget)
	}
	return nil
}

// minVol keeps sizing finite when realized volatility is zero.
const minVol = 1e-6

// Judge blends factual and subjective scores into a decision.
type Judge struct {
	Base
	cfg JudgeConfig
}

func NewJudge(cfg JudgeConfig, rt Runtime) (*Judge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Judge{Base: newBase("judge-agent", rt), cfg: cfg}, nil
}

func (j *Judge) Config() JudgeConfig { return j.cfg }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// FactualScore maps features to [-1, 1]. Oversold RSI, positive momentum,
// heavy volume and calm volatility all push it up.
func FactualScore(f market.Features) float64 {
	rsi := f.Get(RSI14, 50)
	mom := f.Get(Momentum20, 0)
	vol := f.Get(Volatility20, 0.02)
	volumeZ := f.Get(VolumeZScore20, 0)

	rsiC := (50 - rsi) / 50
	momC := clamp(mom*5, -1, 1)
	volC := clamp((0.02-vol)/0.02, -1, 1)
	volumeC := clamp(volumeZ/3, -1, 1)
	return clamp(0.4*rsiC+0.4*momC+0.2*volumeC+0.1*volC, -1, 1)
}

// SubjectiveScore maps signals to [-1, 1].
func SubjectiveScore(s market.Signals) float64 {
	sentiment := s.Get(news.NewsSentiment, 0)
	headline := s.Get(news.HeadlineSentiment, 0)
	social := s.Get(news.SocialVelocityZ, 0)
	search := s.Get(news.SearchTrendZ, 0)

	combined := 0.5*sentiment + 0.2*headline + 0.2*clamp(social/3, -1, 1) + 0.1*clamp(search/3, -1, 1)
	return clamp(combined, -1, 1)
}

// Decide is the pure scoring rule behind Score.
func (j *Judge) Decide(f market.Features, s market.Signals) market.Decision {
	fs := FactualScore(f)
	ss := SubjectiveScore(s)
	intent := j.cfg.FactualWeight*fs + j.cfg.SubjectiveWeight*ss + j.cfg.Bias

	action := market.Hold
	switch {
	case intent > j.cfg.TauBuy:
		action = market.Buy
	case intent < j.cfg.TauSell:
		action = market.Sell
	}

	// Size scales with conviction, not direction; a HOLD never carries size.
	var size float64
	if action != market.Hold {
		realized := math.Max(f.Get(Volatility20, j.cfg.VolTarget), minVol)
		size = clamp(j.cfg.K*math.Abs(intent)/realized, j.cfg.MinSize, j.cfg.MaxSize)
	}

	return market.Decision{
		Time:       f.Time,
		Symbol:     f.Symbol,
		Action:     action,
		Size:       size,
		Confidence: clamp(math.Abs(intent), 0, 1),
		Rationale: []string{
			fmt.Sprintf("factual_score=%.2f", fs),
			fmt.Sprintf("subjective_score=%.2f", ss),
			fmt.Sprintf("intent=%.2f", intent),
		},
		GuardrailsApplied: []string{},
	}
}

func (j *Judge) Score(ctx context.Context, f market.Features, s market.Signals) (market.Decision, error) {
	return run(ctx, j.Base, func(context.Context) (market.Decision, error) {
		return j.Decide(f, s), nil
	})
}
