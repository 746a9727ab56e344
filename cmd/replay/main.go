// Command replay feeds alert files for local testing. It can replay a
// consolidated capture into per-symbol daily files at a fixed pace, or
// synthesize a random-walk session with real moving averages.
package main

import (
	"bufio"
	"flag"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"

	"github.com/gireeshr/grait-trade-bot/internal/alert"
	"github.com/gireeshr/grait-trade-bot/internal/util"
)

func main() {
	dir := flag.String("dir", "alerts", "output directory for per-symbol alert files")
	in := flag.String("in", "", "consolidated alert capture to replay")
	symbols := flag.String("symbols", "AAPL,MSFT,NVDA", "symbols for synthetic mode")
	synth := flag.Bool("synth", false, "generate a synthetic session instead of replaying")
	ticks := flag.Int("ticks", 120, "synthetic ticks per symbol")
	start := flag.Float64("start", 100, "synthetic starting price")
	delay := flag.Duration("delay", 100*time.Millisecond, "pause between emitted lines")
	date := flag.String("date", "", "date suffix (YYYYMMDD), default today")
	seed := flag.Int64("seed", 0, "random seed for synthetic mode, 0 uses the clock")
	flag.Parse()

	log := util.NewLogger("info")

	suffix := *date
	if suffix == "" {
		suffix = time.Now().Format("20060102")
	}
	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("create output dir")
	}

	if *synth {
		s := *seed
		if s == 0 {
			s = time.Now().UnixNano()
		}
		runSynth(log, *dir, suffix, strings.Split(*symbols, ","), *ticks, *start, *delay, rand.New(rand.NewSource(s)))
		return
	}
	if *in == "" {
		log.Fatal().Msg("either -in or -synth is required")
	}
	runReplay(log, *dir, suffix, *in, *delay)
}

// runReplay re-emits a captured stream, one parsed line at a time, into the
// per-symbol files the tailers watch.
func runReplay(log zerolog.Logger, dir, suffix, in string, delay time.Duration) {
	f, err := os.Open(in)
	if err != nil {
		log.Fatal().Err(err).Msg("open capture")
	}
	defer f.Close()

	var emitted, skipped int
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		rec, ok := alert.ParseLine(sc.Text())
		if !ok {
			skipped++
			continue
		}
		appendLine(log, dir, suffix, rec)
		emitted++
		time.Sleep(delay)
	}
	if err := sc.Err(); err != nil {
		log.Fatal().Err(err).Msg("read capture")
	}
	log.Info().Int("emitted", emitted).Int("skipped", skipped).Msg("replay done")
}

// runSynth random-walks each symbol and backs the moving averages with real
// indicator math so the line values are internally consistent.
func runSynth(log zerolog.Logger, dir, suffix string, symbols []string, ticks int, start float64, delay time.Duration, rng *rand.Rand) {
	const warmup = 20

	for i, sym := range symbols {
		symbols[i] = strings.TrimSpace(sym)
	}

	prices := make(map[string][]float64, len(symbols))
	for _, sym := range symbols {
		series := make([]float64, ticks+warmup)
		p := start * (0.8 + 0.4*rng.Float64())
		for i := range series {
			p *= 1 + 0.002*rng.NormFloat64()
			series[i] = p
		}
		prices[sym] = series
	}

	base := time.Now().Truncate(time.Second).Add(-time.Duration(ticks) * time.Second)
	for _, sym := range symbols {
		series := prices[sym]
		sma20 := talib.Sma(series, 20)
		ema20 := talib.Ema(series, 20)
		ema9 := talib.Ema(series, 9)

		for i := warmup; i < len(series); i++ {
			appendLine(log, dir, suffix, alert.Alert{
				Symbol: sym,
				Price:  series[i],
				SMA20:  sma20[i],
				EMA20:  ema20[i],
				EMA9:   ema9[i],
				Ts:     base.Add(time.Duration(i-warmup) * time.Second),
				ID:     i - warmup + 1,
			})
			time.Sleep(delay)
		}
		log.Info().Str("symbol", sym).Int("ticks", ticks).Msg("synthetic session written")
	}
}

func appendLine(log zerolog.Logger, dir, suffix string, rec alert.Alert) {
	path := alert.SourcePath(dir, rec.Symbol, suffix)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("open alert file")
	}
	defer f.Close()
	if _, err := f.WriteString(rec.FormatLine() + "\n"); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("append alert")
	}
}
