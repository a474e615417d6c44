package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/marketmind/agents"
	"github.com/rustyeddy/marketmind/metrics"
)

// ErrInvalidConfig marks configuration that must stop the process at
// startup.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the complete runtime configuration. It is built once at startup
// and passed down explicitly.
type Config struct {
	App       AppConfig          `json:"app" yaml:"app"`
	Risk      RiskConfig         `json:"risk" yaml:"risk"`
	Execution ExecutionConfig    `json:"execution" yaml:"execution"`
	Judge     agents.JudgeConfig `json:"judge" yaml:"judge"`
	Metrics   metrics.Settings   `json:"metrics" yaml:"metrics"`
	Data      DataConfig         `json:"data" yaml:"data"`
	Journal   JournalConfig      `json:"journal" yaml:"journal"`
	Server    ServerConfig       `json:"server" yaml:"server"`
}

// AppConfig covers process-wide settings.
type AppConfig struct {
	Environment     string   `json:"environment" yaml:"environment"`
	LogLevel        string   `json:"log_level" yaml:"log_level"`
	LogFormat       string   `json:"log_format" yaml:"log_format"` // "text" or "json"
	Symbols         []string `json:"symbols" yaml:"symbols"`
	IntervalSeconds int      `json:"interval_seconds" yaml:"interval_seconds"`
}

// RiskConfig holds the guardrail thresholds.
type RiskConfig struct {
	MaxPosition  float64 `json:"max_position" yaml:"max_position"`
	MaxDailyLoss float64 `json:"max_daily_loss" yaml:"max_daily_loss"`
	Timezone     string  `json:"timezone" yaml:"timezone"`
}

// ExecutionConfig parameterizes the paper broker.
type ExecutionConfig struct {
	SlippageBps     float64 `json:"slippage_bps" yaml:"slippage_bps"`
	LatencyMs       float64 `json:"latency_ms" yaml:"latency_ms"`
	LatencyJitterMs float64 `json:"latency_jitter_ms" yaml:"latency_jitter_ms"`
	Seed            int64   `json:"seed" yaml:"seed"`
	PnLBasis        string  `json:"pnl_basis" yaml:"pnl_basis"` // "updated" or "prior"
}

// DataConfig selects the bar and news providers.
type DataConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // "mock" or "yahoo"
	News       string `json:"news" yaml:"news"`         // "mock" or "finnhub"
	NewsAPIKey string `json:"news_api_key,omitempty" yaml:"news_api_key,omitempty"`
	Lookback   int    `json:"lookback" yaml:"lookback"`
	MarketSeed int64  `json:"market_seed" yaml:"market_seed"`
	NewsSeed   int64  `json:"news_seed" yaml:"news_seed"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type      string `json:"type" yaml:"type"` // "sqlite", "csv" or "none"
	DBPath    string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	FillsFile string `json:"fills_file,omitempty" yaml:"fills_file,omitempty"`
	PnLFile   string `json:"pnl_file,omitempty" yaml:"pnl_file,omitempty"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		App: AppConfig{
			Environment:     "local",
			LogLevel:        "info",
			LogFormat:       "text",
			Symbols:         []string{"AAPL"},
			IntervalSeconds: 60,
		},
		Risk: RiskConfig{
			MaxPosition:  1000,
			MaxDailyLoss: 2500,
			Timezone:     "America/New_York",
		},
		Execution: ExecutionConfig{
			SlippageBps:     5,
			LatencyMs:       50,
			LatencyJitterMs: 5,
			Seed:            1,
			PnLBasis:        "updated",
		},
		Judge:   agents.DefaultJudgeConfig(),
		Metrics: metrics.DefaultSettings(),
		Data: DataConfig{
			Provider:   "mock",
			News:       "mock",
			Lookback:   agents.DefaultRequiredHistory,
			MarketSeed: 42,
			NewsSeed:   123,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./data/paper_trades.db",
		},
		Server: ServerConfig{Addr: ":8000"},
	}
}

// envBindings maps config keys to the environment variables that override
// them.
var envBindings = map[string][]string{
	"app.environment":        {"ENVIRONMENT"},
	"app.log_level":          {"LOG_LEVEL"},
	"app.log_format":         {"LOG_FORMAT"},
	"app.symbols":            {"SYMBOLS"},
	"app.interval_seconds":   {"INTERVAL_SECONDS"},
	"risk.max_position":      {"MAX_POSITION"},
	"risk.max_daily_loss":    {"MAX_DAILY_LOSS"},
	"risk.timezone":          {"TIMEZONE_ET"},
	"execution.slippage_bps": {"SLIPPAGE_BPS"},
	"data.provider":          {"DATA_PROVIDER"},
	"data.news":              {"NEWS_PROVIDER"},
	"data.news_api_key":      {"NEWS_API_KEY", "FINNHUB_API_KEY"},
	"journal.type":           {"JOURNAL_TYPE"},
	"journal.db_path":        {"DATABASE_URL"},
	"server.addr":            {"SERVER_ADDR"},
}

// Load builds the configuration from defaults, an optional YAML or JSON file
// and the environment (a .env file in the working directory is honored), in
// increasing precedence. The result is validated.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.WeaklyTypedInput = true
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension)
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	return Load(path)
}

func (c *Config) normalize() {
	symbols := make([]string, 0, len(c.App.Symbols))
	seen := make(map[string]bool, len(c.App.Symbols))
	for _, s := range c.App.Symbols {
		for _, part := range strings.Split(s, ",") {
			part = strings.ToUpper(strings.TrimSpace(part))
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			symbols = append(symbols, part)
		}
	}
	c.App.Symbols = symbols
	c.App.LogLevel = strings.ToLower(strings.TrimSpace(c.App.LogLevel))
	c.App.LogFormat = strings.ToLower(strings.TrimSpace(c.App.LogFormat))
	c.Data.Provider = strings.ToLower(strings.TrimSpace(c.Data.Provider))
	c.Data.News = strings.ToLower(strings.TrimSpace(c.Data.News))
	c.Journal.Type = strings.ToLower(strings.TrimSpace(c.Journal.Type))
	c.Execution.PnLBasis = strings.ToLower(strings.TrimSpace(c.Execution.PnLBasis))
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Interval returns the live loop period.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.App.IntervalSeconds) * time.Second
}

// Location loads the trading-calendar timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Risk.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: risk.timezone %q: %v", ErrInvalidConfig, c.Risk.Timezone, err)
	}
	return loc, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.App.Symbols) == 0 {
		return invalid("app.symbols must list at least one symbol")
	}
	if c.App.IntervalSeconds <= 0 {
		return invalid("app.interval_seconds must be positive")
	}
	switch c.App.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid("app.log_level %q is not one of debug, info, warn, error", c.App.LogLevel)
	}
	if c.App.LogFormat != "text" && c.App.LogFormat != "json" {
		return invalid("app.log_format must be 'text' or 'json'")
	}

	if c.Risk.MaxPosition < 0 {
		return invalid("risk.max_position must be non-negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Execution.SlippageBps < 0 {
		return invalid("execution.slippage_bps must be non-negative")
	}
	if c.Execution.LatencyMs < 0 || c.Execution.LatencyJitterMs < 0 {
		return invalid("execution latency must be non-negative")
	}
	if c.Execution.PnLBasis != "updated" && c.Execution.PnLBasis != "prior" {
		return invalid("execution.pnl_basis must be 'updated' or 'prior'")
	}

	if err := c.Judge.Validate(); err != nil {
		return invalid("%v", err)
	}

	if c.Data.Provider != "mock" && c.Data.Provider != "yahoo" {
		return invalid("data.provider must be 'mock' or 'yahoo'")
	}
	switch c.Data.News {
	case "mock":
	case "finnhub":
		if strings.TrimSpace(c.Data.NewsAPIKey) == "" {
			return invalid("data.news_api_key required for finnhub")
		}
	default:
		return invalid("data.news must be 'mock' or 'finnhub'")
	}
	if c.Data.Lookback < agents.DefaultRequiredHistory {
		return invalid("data.lookback must be at least %d", agents.DefaultRequiredHistory)
	}

	switch c.Journal.Type {
	case "none":
	case "sqlite":
		if c.Journal.DBPath == "" {
			return invalid("journal db_path required for SQLite type")
		}
	case "csv":
		if c.Journal.FillsFile == "" || c.Journal.PnLFile == "" {
			return invalid("journal fills_file and pnl_file required for CSV type")
		}
	default:
		return invalid("journal.type must be 'sqlite', 'csv' or 'none'")
	}

	if c.Server.Addr == "" {
		return invalid("server.addr is required")
	}
	return nil
}
