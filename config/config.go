package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/cryptosim/market"
)

// Config represents the complete simulation configuration
type Config struct {
	Account Account `json:"account" yaml:"account"`
	Fees    Fees    `json:"fees" yaml:"fees"`
	Risk    Risk    `json:"risk" yaml:"risk"`
	Data    Data    `json:"data" yaml:"data"`
	Oracle  Oracle  `json:"oracle" yaml:"oracle"`
	Journal Journal `json:"journal" yaml:"journal"`
}

// Account contains account initialization parameters
type Account struct {
	Balance float64 `json:"balance" yaml:"balance"`
}

// Fees contains taker fee rates, as fractions of notional
type Fees struct {
	Entry float64 `json:"entry" yaml:"entry"`
	Exit  float64 `json:"exit" yaml:"exit"`
}

// Risk contains position sizing parameters
type Risk struct {
	Fraction       float64 `json:"fraction" yaml:"fraction"`
	MinDistancePct float64 `json:"min_distance_pct" yaml:"min_distance_pct"`
	MaxLeverage    float64 `json:"max_leverage" yaml:"max_leverage"`
}

// Data describes the instrument and the analysis windows handed to the
// oracle on each closed candle
type Data struct {
	Symbol          string `json:"symbol" yaml:"symbol"`
	Interval        string `json:"interval" yaml:"interval"`
	TradingLookback int    `json:"trading_lookback" yaml:"trading_lookback"`
	ContextInterval string `json:"context_interval" yaml:"context_interval"`
	ContextLookback int    `json:"context_lookback" yaml:"context_lookback"`
	TrendInterval   string `json:"trend_interval" yaml:"trend_interval"`
	TrendLookback   int    `json:"trend_lookback" yaml:"trend_lookback"`
}

// Oracle selects the decision engine by registry name
type Oracle struct {
	Name string `json:"name" yaml:"name"`
}

// Journal contains journaling parameters
type Journal struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "memory"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension)
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

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
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

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Fees.Entry < 0 || c.Fees.Exit < 0 {
		return fmt.Errorf("fee rates must not be negative")
	}
	if c.Risk.Fraction <= 0 || c.Risk.Fraction > 1 {
		return fmt.Errorf("risk.fraction must be between 0 and 1")
	}
	if c.Risk.MinDistancePct < 0 {
		return fmt.Errorf("risk.min_distance_pct must not be negative")
	}
	if c.Risk.MaxLeverage <= 0 {
		return fmt.Errorf("risk.max_leverage must be positive")
	}
	if c.Data.Symbol == "" {
		return fmt.Errorf("data.symbol is required")
	}
	for _, iv := range []struct{ name, value string }{
		{"data.interval", c.Data.Interval},
		{"data.context_interval", c.Data.ContextInterval},
		{"data.trend_interval", c.Data.TrendInterval},
	} {
		if _, err := market.ParseInterval(iv.value); err != nil {
			return fmt.Errorf("%s: %w", iv.name, err)
		}
	}
	if c.Data.TradingLookback <= 1 {
		return fmt.Errorf("data.trading_lookback must be greater than 1")
	}
	if c.Data.ContextLookback <= 0 || c.Data.TrendLookback <= 0 {
		return fmt.Errorf("context and trend lookbacks must be positive")
	}
	if c.Oracle.Name == "" {
		return fmt.Errorf("oracle.name is required")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "memory":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'memory'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: Account{Balance: 10000},
		Fees:    Fees{Entry: 0.0005, Exit: 0.0005},
		Risk: Risk{
			Fraction:       0.01,
			MinDistancePct: 0.001,
			MaxLeverage:    10,
		},
		Data: Data{
			Symbol:          "BTC-USDT",
			Interval:        "15m",
			TradingLookback: 96,
			ContextInterval: "4h",
			ContextLookback: 60,
			TrendInterval:   "1d",
			TrendLookback:   30,
		},
		Oracle: Oracle{Name: "channel"},
		Journal: Journal{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
	}
}
