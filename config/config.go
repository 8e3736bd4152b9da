package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete bot configuration.
type Config struct {
	Broker   BrokerConfig   `json:"broker" yaml:"broker"`
	Trading  TradingConfig  `json:"trading" yaml:"trading"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Exit     ExitConfig     `json:"exit" yaml:"exit"`
	Loop     LoopConfig     `json:"loop" yaml:"loop"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	LogLevel string         `json:"log_level" yaml:"log_level"`
}

// BrokerConfig points at the terminal bridge.
type BrokerConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	Token   string `json:"token,omitempty" yaml:"token,omitempty"`
}

// TradingConfig describes what and how much to trade.
type TradingConfig struct {
	Symbol       string  `json:"symbol" yaml:"symbol"`
	Timeframe    string  `json:"timeframe" yaml:"timeframe"`
	Volume       float64 `json:"volume" yaml:"volume"`
	ContractSize float64 `json:"contract_size" yaml:"contract_size"`
	Deviation    int     `json:"deviation" yaml:"deviation"` // max slippage, points
}

// StrategyConfig parametrises the crossover signal.
type StrategyConfig struct {
	Name             string  `json:"name" yaml:"name"`
	ShortWindow      int     `json:"short_window" yaml:"short_window"`
	LongWindow       int     `json:"long_window" yaml:"long_window"`
	MinTrendStrength float64 `json:"min_trend_strength" yaml:"min_trend_strength"`
}

// ExitConfig parametrises the exit policy. StopLoss and TakeProfit are
// in account currency.
type ExitConfig struct {
	MinHold    string  `json:"min_hold" yaml:"min_hold"` // e.g. "60s"
	StopLoss   float64 `json:"stop_loss" yaml:"stop_loss"`
	TakeProfit float64 `json:"take_profit" yaml:"take_profit"`
}

func (e ExitConfig) MinHoldDuration() (time.Duration, error) {
	return time.ParseDuration(e.MinHold)
}

// LoopConfig controls the polling cadence.
type LoopConfig struct {
	Poll        string `json:"poll" yaml:"poll"`       // normal cycle interval
	Backoff     string `json:"backoff" yaml:"backoff"` // interval after a cycle error
	CandleCount int    `json:"candle_count" yaml:"candle_count"`
}

func (l LoopConfig) PollInterval() (time.Duration, error) {
	return time.ParseDuration(l.Poll)
}

func (l LoopConfig) BackoffInterval() (time.Duration, error) {
	return time.ParseDuration(l.Backoff)
}

// JournalConfig selects where executed trades are recorded.
type JournalConfig struct {
	Type        string `json:"type" yaml:"type"` // "sqlite", "csv" or "none"
	DBPath      string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	TradesFile  string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	SignalsFile string `json:"signals_file,omitempty" yaml:"signals_file,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes the configuration as YAML or JSON based on the file
// extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if c.Broker.BaseURL == "" {
		return fmt.Errorf("broker.base_url is required")
	}
	if c.Trading.Symbol == "" {
		return fmt.Errorf("trading.symbol is required")
	}
	if c.Trading.Timeframe == "" {
		return fmt.Errorf("trading.timeframe is required")
	}
	if c.Trading.Volume <= 0 {
		return fmt.Errorf("trading.volume must be positive")
	}
	if c.Trading.ContractSize <= 0 {
		return fmt.Errorf("trading.contract_size must be positive")
	}
	if c.Trading.Deviation < 0 {
		return fmt.Errorf("trading.deviation must not be negative")
	}
	if c.Strategy.ShortWindow < 1 {
		return fmt.Errorf("strategy.short_window must be at least 1")
	}
	if c.Strategy.LongWindow <= c.Strategy.ShortWindow {
		return fmt.Errorf("strategy.long_window must be greater than short_window")
	}
	if c.Strategy.MinTrendStrength < 0 {
		return fmt.Errorf("strategy.min_trend_strength must not be negative")
	}
	if c.Loop.CandleCount < c.Strategy.LongWindow {
		return fmt.Errorf("loop.candle_count must be at least strategy.long_window")
	}
	if c.Exit.StopLoss > 0 {
		return fmt.Errorf("exit.stop_loss must be zero or negative")
	}
	if c.Exit.TakeProfit < 0 {
		return fmt.Errorf("exit.take_profit must not be negative")
	}
	if d, err := c.Exit.MinHoldDuration(); err != nil || d < 0 {
		return fmt.Errorf("exit.min_hold must be a non-negative duration")
	}
	if d, err := c.Loop.PollInterval(); err != nil || d <= 0 {
		return fmt.Errorf("loop.poll must be a positive duration")
	}
	if d, err := c.Loop.BackoffInterval(); err != nil || d <= 0 {
		return fmt.Errorf("loop.backoff must be a positive duration")
	}
	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite journal")
		}
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.SignalsFile == "" {
			return fmt.Errorf("journal trades_file and signals_file required for csv journal")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv' or 'none'")
	}
	return nil
}

// Default returns a configuration with sensible defaults for a
// one-minute EURUSD scalper.
func Default() *Config {
	return &Config{
		Broker: BrokerConfig{
			BaseURL: "http://127.0.0.1:8787",
		},
		Trading: TradingConfig{
			Symbol:       "EURUSD",
			Timeframe:    "M1",
			Volume:       0.01,
			ContractSize: 100000,
			Deviation:    30,
		},
		Strategy: StrategyConfig{
			Name:             "sma-cross",
			ShortWindow:      3,
			LongWindow:       7,
			MinTrendStrength: 0.001,
		},
		Exit: ExitConfig{
			MinHold:    "60s",
			StopLoss:   -5,
			TakeProfit: 2,
		},
		Loop: LoopConfig{
			Poll:        "10s",
			Backoff:     "60s",
			CandleCount: 200,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./scalper.db",
		},
		LogLevel: "info",
	}
}
