package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesEvictsOldest(t *testing.T) {
	t.Parallel()

	s := NewSeries(3)
	base := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.Append(Point{Time: base.Add(time.Duration(i) * time.Minute), Value: float64(i)})
	}

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{2, 3, 4}, s.Values())

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 4.0, last.Value)
}

func TestSeriesClampsBackwardTime(t *testing.T) {
	t.Parallel()

	s := NewSeries(4)
	late := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	s.Append(Point{Time: late, Value: 1})
	s.Append(Point{Time: late.Add(-time.Hour), Value: 2})

	pts := s.Points()
	require.Len(t, pts, 2)
	assert.Equal(t, late, pts[1].Time)
	assert.Equal(t, 2.0, pts[1].Value)
}

func TestSeriesEmpty(t *testing.T) {
	t.Parallel()

	s := NewSeries(0)
	assert.Equal(t, 1, s.Cap())
	_, ok := s.Last()
	assert.False(t, ok)
	assert.Empty(t, s.Points())
}
