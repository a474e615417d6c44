package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/rustyeddy/marketmind/market"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// ErrNoAPIKey is returned when the Finnhub provider is built without a key.
var ErrNoAPIKey = errors.New("finnhub API key not configured")

// FinnhubProvider derives signals from Finnhub company news: the mean
// headline sentiment, the headline count and the headlines themselves as
// notes.
type FinnhubProvider struct {
	client    *resty.Client
	apiKey    string
	sentiment SentimentModel
	window    time.Duration
	maxNotes  int
	now       func() time.Time
}

type FinnhubOption func(*FinnhubProvider)

// WithBaseURL points the client at another server.
func WithBaseURL(url string) FinnhubOption {
	return func(p *FinnhubProvider) { p.client.SetBaseURL(url) }
}

// WithWindow sets how far back headlines are requested.
func WithWindow(d time.Duration) FinnhubOption {
	return func(p *FinnhubProvider) {
		if d > 0 {
			p.window = d
		}
	}
}

func WithFinnhubClock(now func() time.Time) FinnhubOption {
	return func(p *FinnhubProvider) {
		if now != nil {
			p.now = now
		}
	}
}

func NewFinnhubProvider(apiKey string, model SentimentModel, opts ...FinnhubOption) (*FinnhubProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}
	if model == nil {
		model = NewRuleBased()
	}

	client := resty.New()
	client.SetBaseURL(finnhubBaseURL)
	client.SetTimeout(15 * time.Second)

	p := &FinnhubProvider{
		client:    client,
		apiKey:    apiKey,
		sentiment: model,
		window:    72 * time.Hour,
		maxNotes:  10,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *FinnhubProvider) FetchSignals(ctx context.Context, symbol string) (market.Signals, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	to := p.now().UTC()
	from := to.Add(-p.window)

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"from":   from.Format("2006-01-02"),
			"to":     to.Format("2006-01-02"),
			"token":  p.apiKey,
		}).
		Get("/company-news")
	if err != nil {
		return market.Signals{}, fmt.Errorf("failed to fetch news for %s: %w", symbol, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return market.Signals{}, fmt.Errorf("finnhub API error %d: %s", resp.StatusCode(), resp.String())
	}

	body := resp.String()
	if !gjson.Valid(body) {
		return market.Signals{}, fmt.Errorf("finnhub: invalid JSON response for %s", symbol)
	}

	var (
		headlines []string
		total     float64
	)
	gjson.Parse(body).ForEach(func(_, item gjson.Result) bool {
		h := strings.TrimSpace(item.Get("headline").String())
		if h == "" {
			return true
		}
		headlines = append(headlines, h)
		total += p.sentiment.Score(h + " " + item.Get("summary").String())
		return true
	})

	sig := market.Signals{
		Time:   to,
		Symbol: symbol,
		Values: map[string]float64{
			NewsSentiment: 0,
			NewsVolume:    float64(len(headlines)),
		},
	}
	if len(headlines) > 0 {
		sig.Values[NewsSentiment] = total / float64(len(headlines))
	}
	if len(headlines) > p.maxNotes {
		headlines = headlines[:p.maxNotes]
	}
	sig.Notes = headlines
	return sig, nil
}
