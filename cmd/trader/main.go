package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/gireeshr/grait-trade-bot/internal/alert"
	"github.com/gireeshr/grait-trade-bot/internal/config"
	"github.com/gireeshr/grait-trade-bot/internal/engine"
	"github.com/gireeshr/grait-trade-bot/internal/gateway"
	"github.com/gireeshr/grait-trade-bot/internal/metrics"
	"github.com/gireeshr/grait-trade-bot/internal/risk"
	"github.com/gireeshr/grait-trade-bot/internal/stream"
	"github.com/gireeshr/grait-trade-bot/internal/tail"
	"github.com/gireeshr/grait-trade-bot/internal/trend"
	"github.com/gireeshr/grait-trade-bot/internal/util"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config")
	flag.Parse()

	log := util.NewLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	log = util.NewLogger(cfg.App.LogLevel)

	if len(cfg.Symbols) == 0 {
		log.Fatal().Msg("no symbols configured")
	}

	if cfg.App.MetricsAddr != "" {
		_ = metrics.Serve(cfg.App.MetricsAddr)
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	classifier, err := trend.New(cfg.Strategy.Mode)
	if err != nil {
		log.Fatal().Err(err).Msg("strategy mode")
	}

	gw, err := buildGateway(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("gateway")
	}

	opts := []engine.Option{
		engine.WithLimits(risk.Limits{MaxNotionalPerTrade: cfg.Risk.MaxNotionalPerTrade}),
	}
	if cfg.Trade.Quantity > 0 {
		opts = append(opts, engine.WithQuantity(cfg.Trade.Quantity))
	}
	if cfg.Trade.TakeProfit > 0 {
		opts = append(opts, engine.WithTakeProfit(cfg.Trade.TakeProfit))
	}
	var policies []risk.Policy
	if cfg.Trade.MaxTrades > 0 {
		policies = append(policies, risk.MaxTrades{N: cfg.Trade.MaxTrades})
	}
	if cfg.Trade.MaxDailyLoss > 0 {
		policies = append(policies, risk.MaxDailyLoss{Limit: cfg.Trade.MaxDailyLoss})
	}
	if len(policies) > 0 {
		opts = append(opts, engine.WithPolicies(policies...))
	}
	if cfg.Trade.JournalPath != "" {
		journal, err := engine.NewJournal(cfg.Trade.JournalPath)
		if err != nil {
			log.Fatal().Err(err).Msg("open journal")
		}
		defer journal.Close()
		opts = append(opts, engine.WithJournal(journal))
	}

	eng := engine.New(cfg.Symbols, classifier, gw, log, opts...)

	suffix := cfg.Watch.DateSuffix
	if suffix == "" {
		suffix = time.Now().Format("20060102")
	}
	sources := make(map[string]string, len(cfg.Symbols))
	for _, sym := range cfg.Symbols {
		sources[sym] = alert.SourcePath(cfg.Watch.Dir, sym, suffix)
	}

	var tailOpts []tail.Option
	if cfg.Watch.Poll() > 0 {
		tailOpts = append(tailOpts, tail.WithPollInterval(cfg.Watch.Poll()))
	}
	if cfg.Watch.Backfill {
		tailOpts = append(tailOpts, tail.WithBackfill())
	}
	if cfg.Watch.UseWatcher {
		tailOpts = append(tailOpts, tail.WithWatch())
	}
	var mergerOpts []stream.Option
	if cfg.Watch.Merge() > 0 {
		mergerOpts = append(mergerOpts, stream.WithCadence(cfg.Watch.Merge()))
	}
	if len(tailOpts) > 0 {
		mergerOpts = append(mergerOpts, stream.WithTailerOptions(tailOpts...))
	}
	merger := stream.NewMerger(sources, log, mergerOpts...)

	batches := make(chan []alert.Alert, 64)
	go func() {
		if err := merger.Run(ctx, batches); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("merger stopped")
		}
		cancel()
	}()

	log.Info().
		Strs("symbols", cfg.Symbols).
		Str("dir", cfg.Watch.Dir).
		Str("strategy", classifier.Name()).
		Str("gateway", gw.Name()).
		Msg("trade engine started")

	if err := eng.Run(ctx, batches); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("engine stopped")
	}
	log.Info().Msg("shutting down")
}

func buildGateway(cfg *config.Config, log zerolog.Logger) (gateway.OrderGateway, error) {
	switch cfg.Gateway.Mode {
	case "", "log":
		return gateway.NewLog(log), nil
	case "webhook":
		var opts []gateway.WebhookOption
		if len(cfg.Gateway.SymbolWebhooks) > 0 {
			opts = append(opts, gateway.WithSymbolURLs(cfg.Gateway.SymbolWebhooks))
		}
		if cfg.Gateway.Timeout() > 0 {
			opts = append(opts, gateway.WithTimeout(cfg.Gateway.Timeout()))
		}
		return gateway.NewWebhook(cfg.Gateway.WebhookURL, log, opts...), nil
	case "ws":
		return gateway.NewWebSocket(cfg.Gateway.WSURL, log), nil
	}
	return nil, fmt.Errorf("unknown gateway mode %q", cfg.Gateway.Mode)
}
