package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, 10000.0, cfg.Account.Balance)
	assert.Equal(t, 0.01, cfg.Risk.Fraction)
	assert.Equal(t, "BTC-USDT", cfg.Data.Symbol)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config { return Default() }

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:   "negative balance",
			mutate: func(c *Config) { c.Account.Balance = -1000 },
			errMsg: "account.balance must be positive",
		},
		{
			name:   "negative fee",
			mutate: func(c *Config) { c.Fees.Exit = -0.001 },
			errMsg: "fee rates must not be negative",
		},
		{
			name:   "risk fraction too large",
			mutate: func(c *Config) { c.Risk.Fraction = 1.5 },
			errMsg: "risk.fraction must be between 0 and 1",
		},
		{
			name:   "zero leverage",
			mutate: func(c *Config) { c.Risk.MaxLeverage = 0 },
			errMsg: "risk.max_leverage must be positive",
		},
		{
			name:   "missing symbol",
			mutate: func(c *Config) { c.Data.Symbol = "" },
			errMsg: "data.symbol is required",
		},
		{
			name:   "bad interval",
			mutate: func(c *Config) { c.Data.Interval = "15x" },
			errMsg: "data.interval",
		},
		{
			name:   "bad context interval",
			mutate: func(c *Config) { c.Data.ContextInterval = "" },
			errMsg: "data.context_interval",
		},
		{
			name:   "trading lookback too small",
			mutate: func(c *Config) { c.Data.TradingLookback = 1 },
			errMsg: "data.trading_lookback must be greater than 1",
		},
		{
			name:   "missing oracle",
			mutate: func(c *Config) { c.Oracle.Name = "" },
			errMsg: "oracle.name is required",
		},
		{
			name:   "csv journal without files",
			mutate: func(c *Config) { c.Journal = Journal{Type: "csv"} },
			errMsg: "journal trades_file and equity_file required",
		},
		{
			name:   "sqlite journal without path",
			mutate: func(c *Config) { c.Journal = Journal{Type: "sqlite"} },
			errMsg: "journal db_path required",
		},
		{
			name:   "memory journal needs nothing",
			mutate: func(c *Config) { c.Journal = Journal{Type: "memory"} },
		},
		{
			name:   "unknown journal type",
			mutate: func(c *Config) { c.Journal.Type = "postgres" },
			errMsg: "journal.type must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			path := filepath.Join(tmpDir, "test"+tt.ext)

			err := cfg.SaveToFile(path)
			require.NoError(t, err)

			_, err = os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg.Account.Balance, loaded.Account.Balance)
			assert.Equal(t, cfg.Risk.Fraction, loaded.Risk.Fraction)
			assert.Equal(t, cfg.Data.Symbol, loaded.Data.Symbol)
			assert.Equal(t, cfg.Data.ContextInterval, loaded.Data.ContextInterval)
			assert.Equal(t, cfg.Journal.Type, loaded.Journal.Type)
		})
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	cfg := Default()
	cfg.Risk.Fraction = 0
	// SaveToFile does not validate, so the bad file lands on disk.
	require.NoError(t, cfg.SaveToFile(path))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)
}
