package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/marketmind/journal"
	"github.com/rustyeddy/marketmind/market"
)

type fakeBackend struct {
	mu        sync.Mutex
	steps     []string
	stepErr   error
	fills     []journal.FillRecord
	fillsErr  error
	lastLimit int
	lastSym   string
}

func (b *fakeBackend) Step(ctx context.Context, symbol string) (market.Decision, *market.Fill, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.steps = append(b.steps, symbol)
	if b.stepErr != nil {
		return market.Decision{}, nil, b.stepErr
	}
	return market.Decision{
		Time:       time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC),
		Symbol:     symbol,
		Action:     market.Buy,
		Size:       0.5,
		Confidence: 0.4,
		Rationale:  []string{"intent=0.40"},
	}, &market.Fill{Symbol: symbol}, nil
}

func (b *fakeBackend) Snapshot(symbol string) market.Snapshot {
	return market.Snapshot{Symbol: symbol, PnL: 12.5, Sharpe: 1.1, MaxDrawdown: -3}
}

func (b *fakeBackend) ExportMetrics() map[string]float64 {
	return map[string]float64{"pnl": 12.5, "sharpe_30d": 1.1, "max_drawdown": -3}
}

func (b *fakeBackend) Fills(symbol string, limit int) ([]journal.FillRecord, error) {
	b.lastSym, b.lastLimit = symbol, limit
	return b.fills, b.fillsErr
}

func newTestServer(t *testing.T, b *fakeBackend) *Server {
	t.Helper()
	s, err := New(Config{Backend: b, Stream: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})})
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &fakeBackend{})
	rec := do(t, s, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDecideThenLatest(t *testing.T) {
	b := &fakeBackend{}
	s := newTestServer(t, b)

	rec := do(t, s, http.MethodGet, "/latest?symbol=aapl")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/decide?symbol=aapl")
	require.Equal(t, http.StatusOK, rec.Code)

	var d market.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, "AAPL", d.Symbol)
	assert.Equal(t, market.Buy, d.Action)
	assert.Equal(t, []string{"AAPL"}, b.steps)

	rec = do(t, s, http.MethodGet, "/latest?symbol=AAPL")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"action":"BUY"`)
	assert.Contains(t, rec.Body.String(), `"guardrails_applied"`)
}

func TestDecideDefaultSymbol(t *testing.T) {
	b := &fakeBackend{}
	s := newTestServer(t, b)

	rec := do(t, s, http.MethodPost, "/decide")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"AAPL"}, b.steps)
}

func TestDecideErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"insufficient data", fmt.Errorf("features AAPL: %w", market.ErrInsufficientData), http.StatusUnprocessableEntity},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeBackend{stepErr: tt.err})
			rec := do(t, s, http.MethodPost, "/decide?symbol=AAPL")
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")

			_, ok := s.Latest("AAPL")
			assert.False(t, ok)
		})
	}
}

func TestTelemAndMetrics(t *testing.T) {
	s := newTestServer(t, &fakeBackend{})

	rec := do(t, s, http.MethodGet, "/telem?symbol=msft")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap market.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "MSFT", snap.Symbol)
	assert.Equal(t, 12.5, snap.PnL)

	rec = do(t, s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pnl":12.5,"sharpe_30d":1.1,"max_drawdown":-3}`, rec.Body.String())
}

func TestFills(t *testing.T) {
	b := &fakeBackend{fills: []journal.FillRecord{{ID: "f1", Symbol: "AAPL", Side: "BUY", Price: 100, Size: 1}}}
	s := newTestServer(t, b)

	rec := do(t, s, http.MethodGet, "/fills?symbol=aapl&limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AAPL", b.lastSym)
	assert.Equal(t, 5, b.lastLimit)
	assert.Contains(t, rec.Body.String(), `"id":"f1"`)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	rec = do(t, s, http.MethodGet, "/fills")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", b.lastSym)
	assert.Equal(t, defaultFillsLimit, b.lastLimit)

	rec = do(t, s, http.MethodGet, "/fills?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFillsUnavailable(t *testing.T) {
	s := newTestServer(t, &fakeBackend{fillsErr: fmt.Errorf("%w: journal is csv", ErrUnavailable)})
	rec := do(t, s, http.MethodGet, "/fills")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStreamRoute(t *testing.T) {
	s := newTestServer(t, &fakeBackend{})
	rec := do(t, s, http.MethodGet, "/ws")
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestNewRequiresBackend(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestStartStopsOnCancel(t *testing.T) {
	s, err := New(Config{Addr: "127.0.0.1:0", Backend: &fakeBackend{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
