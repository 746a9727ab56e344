// Package alert defines the parsed MA-alert record and the line grammar
// used by upstream producers writing per-symbol alert files.
package alert

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Alert is one indicator snapshot for a symbol: last price plus the three
// moving averages the alert producer computes, stamped to the second.
type Alert struct {
	Symbol string
	Price  float64
	SMA20  float64
	EMA20  float64
	EMA9   float64
	Ts     time.Time
	ID     int
}

// Example line:
// CRCL - MA Alert - 1 - price: 139.00 - SMA_20: 140.80,  EMA_20: 141.12, EMA_9: 138.78 - 20250815040103
var lineRe = regexp.MustCompile(
	`^([A-Z]+(?:\.[A-Z]+)?)\s*-\s*MA\s+Alert\s*-\s*(\d+)\s*-\s*` +
		`price:\s*(-?\d+(?:\.\d+)?)\s*-\s*` +
		`SMA_20:\s*(-?\d+(?:\.\d+)?),\s*EMA_20:\s*(-?\d+(?:\.\d+)?),\s*EMA_9:\s*(-?\d+(?:\.\d+)?)` +
		`\s*-\s*(\d{14})$`)

const tsLayout = "20060102150405"

// ParseLine parses a single MA-alert line. The second return value is false
// when the line does not match the grammar; malformed input is never an error.
func ParseLine(line string) (Alert, bool) {
	m := lineRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Alert{}, false
	}
	ts, err := time.Parse(tsLayout, m[7])
	if err != nil {
		return Alert{}, false
	}
	id, _ := strconv.Atoi(m[2])
	price, err1 := strconv.ParseFloat(m[3], 64)
	sma20, err2 := strconv.ParseFloat(m[4], 64)
	ema20, err3 := strconv.ParseFloat(m[5], 64)
	ema9, err4 := strconv.ParseFloat(m[6], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return Alert{}, false
	}
	return Alert{
		Symbol: m[1],
		Price:  price,
		SMA20:  sma20,
		EMA20:  ema20,
		EMA9:   ema9,
		Ts:     ts,
		ID:     id,
	}, true
}

// FormatLine renders an alert back into the producer's line grammar. Used by
// the replay tool; ParseLine(FormatLine(a)) round-trips.
func (a Alert) FormatLine() string {
	return a.Symbol + " - MA Alert - " + strconv.Itoa(a.ID) +
		" - price: " + strconv.FormatFloat(a.Price, 'f', 2, 64) +
		" - SMA_20: " + strconv.FormatFloat(a.SMA20, 'f', 2, 64) +
		",  EMA_20: " + strconv.FormatFloat(a.EMA20, 'f', 2, 64) +
		", EMA_9: " + strconv.FormatFloat(a.EMA9, 'f', 2, 64) +
		" - " + a.Ts.Format(tsLayout)
}

// SourcePath builds the per-symbol daily file path <SYM>_price_<YYYYMMDD>.txt
// that upstream producers write. An empty suffix means today.
func SourcePath(dir, symbol, suffix string) string {
	if suffix == "" {
		suffix = time.Now().Format("20060102")
	}
	return filepath.Join(dir, symbol+"_price_"+suffix+".txt")
}
