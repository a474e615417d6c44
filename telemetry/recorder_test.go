package telemetry

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/marketmind/journal"
	"github.com/rustyeddy/marketmind/market"
	"github.com/rustyeddy/marketmind/metrics"
)

var t0 = time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)

type memJournal struct {
	fills []journal.FillRecord
	pnl   []journal.PnLPoint
	err   error
}

func (j *memJournal) RecordFill(f journal.FillRecord) error {
	if j.err != nil {
		return j.err
	}
	j.fills = append(j.fills, f)
	return nil
}

func (j *memJournal) RecordPnL(p journal.PnLPoint) error {
	if j.err != nil {
		return j.err
	}
	j.pnl = append(j.pnl, p)
	return nil
}

func (j *memJournal) Close() error { return nil }

type memPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *memPublisher) Publish(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func fill(id string, baseline bool) market.Fill {
	return market.Fill{
		ID: id, Time: t0, Symbol: "AAPL", Action: market.Buy,
		Price: 100.05, Size: 5, SlippageBps: 5, LatencyMs: 50, Baseline: baseline,
	}
}

func TestRecordDecision(t *testing.T) {
	t.Parallel()

	m := metrics.NewEngine(metrics.DefaultSettings())
	pub := &memPublisher{}
	r := NewRecorder(m, WithPublisher(pub))

	d := market.Decision{Time: t0, Symbol: "AAPL", Action: market.Hold}
	require.NoError(t, r.RecordDecision(d))

	latest, ok := m.LatestDecision()
	require.True(t, ok)
	assert.Equal(t, d.Symbol, latest.Symbol)
	require.Len(t, pub.events, 1)
	assert.Equal(t, EventDecision, pub.events[0].Type)
}

func TestRecordFillBaselineSkipsSeries(t *testing.T) {
	t.Parallel()

	m := metrics.NewEngine(metrics.DefaultSettings())
	j := &memJournal{}
	r := NewRecorder(m, WithJournal(j))

	require.NoError(t, r.RecordFill(fill("F1", true), 0))
	assert.Empty(t, m.Points())
	assert.Len(t, j.fills, 1)
	assert.Empty(t, j.pnl)

	require.NoError(t, r.RecordFill(fill("F2", false), 10))
	assert.Equal(t, 10.0, m.Cumulative())
	require.Len(t, j.pnl, 1)
	assert.Equal(t, 10.0, j.pnl[0].Cumulative)
	assert.Equal(t, 10.0, j.fills[1].PnLDelta)
}

func TestRecordFillJournalErrorKeepsMetrics(t *testing.T) {
	t.Parallel()

	m := metrics.NewEngine(metrics.DefaultSettings())
	r := NewRecorder(m, WithJournal(&memJournal{err: errors.New("disk full")}))

	err := r.RecordFill(fill("F1", false), 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWriteFailure)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 7.0, m.Cumulative(), "metrics update before persistence")
}

func TestNilJournalOptionKeepsNop(t *testing.T) {
	t.Parallel()

	r := NewRecorder(metrics.NewEngine(metrics.DefaultSettings()), WithJournal(nil))
	assert.NoError(t, r.RecordFill(fill("F1", false), 1))
}
