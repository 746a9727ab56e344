package indicator

import (
	"github.com/gireeshr/grait-trade-bot/internal/alert"
)

// SeriesName selects one of the four per-symbol series.
type SeriesName string

const (
	Price SeriesName = "price"
	SMA20 SeriesName = "sma20"
	EMA20 SeriesName = "ema20"
	EMA9  SeriesName = "ema9"
)

type bundle struct {
	price *Series
	sma20 *Series
	ema20 *Series
	ema9  *Series
}

// Store owns one bundle of bounded series per symbol. It is not
// goroutine-safe: the engine's control loop is the only writer.
type Store struct {
	capacity int
	bySymbol map[string]*bundle
}

// NewStore builds an empty store; capacity <= 0 uses DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{capacity: capacity, bySymbol: make(map[string]*bundle)}
}

// Update appends one alert's values to all four series for its symbol.
func (st *Store) Update(a alert.Alert) {
	b := st.bySymbol[a.Symbol]
	if b == nil {
		b = &bundle{
			price: NewSeries(st.capacity),
			sma20: NewSeries(st.capacity),
			ema20: NewSeries(st.capacity),
			ema9:  NewSeries(st.capacity),
		}
		st.bySymbol[a.Symbol] = b
	}
	b.price.Append(a.Price, a.Ts)
	b.sma20.Append(a.SMA20, a.Ts)
	b.ema20.Append(a.EMA20, a.Ts)
	b.ema9.Append(a.EMA9, a.Ts)
}

// Current returns the most recent value of the named series, or false when
// the symbol or series has no data yet.
func (st *Store) Current(symbol string, name SeriesName) (float64, bool) {
	return st.Prev(symbol, name, 1)
}

// Prev returns the n-th most recent value (n=1 is the latest).
func (st *Store) Prev(symbol string, name SeriesName, n int) (float64, bool) {
	s := st.series(symbol, name)
	if s == nil {
		return 0, false
	}
	return s.Prev(n)
}

// LastN returns up to n most recent values of the named series, oldest first.
func (st *Store) LastN(symbol string, name SeriesName, n int) []float64 {
	s := st.series(symbol, name)
	if s == nil {
		return nil
	}
	return s.LastN(n)
}

func (st *Store) series(symbol string, name SeriesName) *Series {
	b := st.bySymbol[symbol]
	if b == nil {
		return nil
	}
	switch name {
	case Price:
		return b.price
	case SMA20:
		return b.sma20
	case EMA20:
		return b.ema20
	case EMA9:
		return b.ema9
	}
	return nil
}
