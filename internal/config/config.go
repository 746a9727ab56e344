// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string
	Env         string
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Watch describes where the alert files live and how aggressively they are read.
type Watch struct {
	Dir           string `yaml:"dir"`
	DateSuffix    string `yaml:"date_suffix"`
	PollInterval  int    `yaml:"poll_interval_ms"`
	MergeInterval int    `yaml:"merge_interval_ms"`
	Backfill      bool   `yaml:"backfill"`
	UseWatcher    bool   `yaml:"use_watcher"`
}

// Poll returns the per-file polling cadence, zero when unset.
func (w Watch) Poll() time.Duration { return time.Duration(w.PollInterval) * time.Millisecond }

// Merge returns the batch drain cadence, zero when unset.
func (w Watch) Merge() time.Duration { return time.Duration(w.MergeInterval) * time.Millisecond }

// Strategy specifies which trend classifier is active.
type Strategy struct {
	Mode string
}

// Trade groups the tunable knobs of the position state machine.
type Trade struct {
	Quantity     int     `yaml:"quantity"`
	TakeProfit   float64 `yaml:"take_profit"`
	MaxTrades    int     `yaml:"max_trades"`
	MaxDailyLoss float64 `yaml:"max_daily_loss"`
	JournalPath  string  `yaml:"journal_path"`
}

// Risk encodes guard-rails on how much size a single trade intent may carry.
type Risk struct {
	MaxNotionalPerTrade float64 `yaml:"max_notional_per_trade"`
}

// Gateway selects the order sink and its connectivity parameters.
type Gateway struct {
	Mode           string            `yaml:"mode"`
	WebhookURL     string            `yaml:"webhook_url"`
	SymbolWebhooks map[string]string `yaml:"symbol_webhooks"`
	WSURL          string            `yaml:"ws_url"`
	TimeoutMs      int               `yaml:"timeout_ms"`
}

// Timeout returns the delivery timeout, zero when unset.
func (g Gateway) Timeout() time.Duration { return time.Duration(g.TimeoutMs) * time.Millisecond }

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Watch    Watch    `yaml:"watch"`
	Symbols  []string `yaml:"symbols"`
	Strategy Strategy `yaml:"strategy"`
	Trade    Trade    `yaml:"trade"`
	Risk     Risk     `yaml:"risk"`
	Gateway  Gateway  `yaml:"gateway"`
}

// envOverrides holds the handful of settings operators commonly override
// per deployment without editing the YAML file. A .env file next to the
// binary is honored when present.
type envOverrides struct {
	LogLevel    string `envconfig:"LOG_LEVEL"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`
	WatchDir    string `envconfig:"WATCH_DIR"`
	WebhookURL  string `envconfig:"WEBHOOK_URL"`
	WSURL       string `envconfig:"WS_URL"`
}

// Load reads a YAML file from disk, hydrates a Config struct, and applies
// environment overrides on top.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	// Missing .env is fine; production hosts set real environment variables.
	_ = godotenv.Load()

	var ov envOverrides
	if err := envconfig.Process("trader", &ov); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	config.applyEnv(ov)

	return &config, nil
}

func (c *Config) applyEnv(ov envOverrides) {
	if ov.LogLevel != "" {
		c.App.LogLevel = ov.LogLevel
	}
	if ov.MetricsAddr != "" {
		c.App.MetricsAddr = ov.MetricsAddr
	}
	if ov.WatchDir != "" {
		c.Watch.Dir = ov.WatchDir
	}
	if ov.WebhookURL != "" {
		c.Gateway.WebhookURL = ov.WebhookURL
	}
	if ov.WSURL != "" {
		c.Gateway.WSURL = ov.WSURL
	}
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
