// Package metrics registers prometheus counters for the alert pipeline and
// exposes the /metrics endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "alerts_total", Help: "Parsed alert records emitted per symbol"},
		[]string{"symbol"},
	)
	ParseErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "parse_errors_total", Help: "Lines dropped for failing the alert grammar"},
		[]string{"symbol"},
	)
	StaleDropsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stale_drops_total", Help: "Records dropped by the timestamp watermark"},
		[]string{"symbol"},
	)
	BatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "batches_total", Help: "Non-empty merged batches delivered downstream"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Trade-intent signals emitted"},
		[]string{"symbol", "action"},
	)
	GatewayErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "gateway_errors_total", Help: "Order gateway delivery failures"},
		[]string{"gateway"},
	)
	BlockedSymbolsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "blocked_symbols_total", Help: "Symbols halted for the rest of the run"},
	)
)

func init() {
	prometheus.MustRegister(
		AlertsTotal,
		ParseErrorsTotal,
		StaleDropsTotal,
		BatchesTotal,
		SignalsTotal,
		GatewayErrorsTotal,
		BlockedSymbolsTotal,
	)
}

// Serve mounts the prometheus handler on addr in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
