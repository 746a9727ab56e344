// Package indicator keeps bounded per-symbol time series for price and the
// moving averages carried by MA alerts.
package indicator

import "time"

// DefaultCapacity bounds each series when no capacity is supplied.
const DefaultCapacity = 2048

// Point is one (value, timestamp) observation.
type Point struct {
	Value float64
	Ts    time.Time
}

// Series is a fixed-capacity ring buffer of points. Appends are O(1); the
// oldest point is evicted once the capacity is reached.
type Series struct {
	buf   []Point
	head  int // index of the oldest point
	count int
}

// NewSeries allocates a series holding at most capacity points.
func NewSeries(capacity int) *Series {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Series{buf: make([]Point, capacity)}
}

// Append records one observation, evicting the oldest at capacity.
func (s *Series) Append(value float64, ts time.Time) {
	idx := (s.head + s.count) % len(s.buf)
	s.buf[idx] = Point{Value: value, Ts: ts}
	if s.count < len(s.buf) {
		s.count++
		return
	}
	s.head = (s.head + 1) % len(s.buf)
}

// Len reports how many points are currently retained.
func (s *Series) Len() int { return s.count }

// Current returns the most recent value, or false when empty.
func (s *Series) Current() (float64, bool) {
	return s.Prev(1)
}

// Prev returns the n-th most recent value (n=1 is the latest), or false
// when n is out of range.
func (s *Series) Prev(n int) (float64, bool) {
	if n <= 0 || n > s.count {
		return 0, false
	}
	idx := (s.head + s.count - n) % len(s.buf)
	return s.buf[idx].Value, true
}

// LastN returns up to n most recent values, oldest first.
func (s *Series) LastN(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n > s.count {
		n = s.count
	}
	out := make([]float64, n)
	start := s.count - n
	for i := 0; i < n; i++ {
		out[i] = s.buf[(s.head+start+i)%len(s.buf)].Value
	}
	return out
}
