package metrics

import "time"

// Point is one cumulative P&L observation.
type Point struct {
	Time  time.Time `json:"timestamp"`
	Value float64   `json:"value"`
}

// Series is a fixed-capacity ring of points. When full, appending evicts the
// oldest point. Timestamps never go backwards: an out-of-order append is
// stamped with the newest time already held.
type Series struct {
	buf   []Point
	start int
	n     int
}

func NewSeries(capacity int) *Series {
	if capacity < 1 {
		capacity = 1
	}
	return &Series{buf: make([]Point, capacity)}
}

func (s *Series) Len() int { return s.n }

func (s *Series) Cap() int { return len(s.buf) }

// Append adds p, evicting the oldest point at capacity.
func (s *Series) Append(p Point) {
	if last, ok := s.Last(); ok && p.Time.Before(last.Time) {
		p.Time = last.Time
	}
	if s.n < len(s.buf) {
		s.buf[(s.start+s.n)%len(s.buf)] = p
		s.n++
		return
	}
	s.buf[s.start] = p
	s.start = (s.start + 1) % len(s.buf)
}

// Last returns the newest point.
func (s *Series) Last() (Point, bool) {
	if s.n == 0 {
		return Point{}, false
	}
	return s.buf[(s.start+s.n-1)%len(s.buf)], true
}

// Points returns the held points oldest first.
func (s *Series) Points() []Point {
	out := make([]Point, s.n)
	for i := 0; i < s.n; i++ {
		out[i] = s.buf[(s.start+i)%len(s.buf)]
	}
	return out
}

// Values returns just the cumulative values, oldest first.
func (s *Series) Values() []float64 {
	out := make([]float64, s.n)
	for i := 0; i < s.n; i++ {
		out[i] = s.buf[(s.start+i)%len(s.buf)].Value
	}
	return out
}
