// Package trend classifies an indicator snapshot into UP, DOWN, or NEUTRAL.
//
// Two non-equivalent heuristics are in production use upstream. They stay
// separate, selectable strategies: ModeStacked orders the averages slow to
// fast, ModeFiltered orders them fast to slow and additionally gates on the
// price sitting beyond EMA9.
package trend

import "fmt"

// Trend is the classification of one snapshot.
type Trend string

const (
	Up      Trend = "UP"
	Down    Trend = "DOWN"
	Neutral Trend = "NEUTRAL"
)

// Classifier maps one snapshot to a trend. Implementations are pure.
type Classifier interface {
	Name() string
	Classify(price, sma20, ema20, ema9 float64) Trend
}

const (
	ModeStacked  = "stacked"
	ModeFiltered = "filtered"
)

// New builds the classifier for the configured mode.
func New(mode string) (Classifier, error) {
	switch mode {
	case ModeStacked, "":
		return Stacked{}, nil
	case ModeFiltered:
		return Filtered{}, nil
	default:
		return nil, fmt.Errorf("unknown trend mode %q", mode)
	}
}

// Stacked classifies on the strict ordering of the three averages alone:
// sma20 < ema20 < ema9 is UP, the reverse is DOWN, anything else (including
// any tie) is NEUTRAL.
type Stacked struct{}

func (Stacked) Name() string { return ModeStacked }

func (Stacked) Classify(price, sma20, ema20, ema9 float64) Trend {
	switch {
	case sma20 < ema20 && ema20 < ema9:
		return Up
	case sma20 > ema20 && ema20 > ema9:
		return Down
	default:
		return Neutral
	}
}

// Filtered requires the fast-to-slow stack plus the price trading beyond
// EMA9: ema9 > ema20 > sma20 with price >= ema9 is UP, the mirror with
// price <= ema9 is DOWN.
type Filtered struct{}

func (Filtered) Name() string { return ModeFiltered }

func (Filtered) Classify(price, sma20, ema20, ema9 float64) Trend {
	switch {
	case ema9 > ema20 && ema20 > sma20 && price >= ema9:
		return Up
	case ema9 < ema20 && ema20 < sma20 && price <= ema9:
		return Down
	default:
		return Neutral
	}
}
