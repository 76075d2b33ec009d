package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/cryptosim/config"
	"github.com/rustyeddy/cryptosim/journal"
)

var rootCmd = &cobra.Command{
	Use:   "cryptosim",
	Short: "A bar-driven crypto trading simulator and research platform",
	Long: `Cryptosim is a deterministic trading simulator for crypto perpetuals,
driven by closed candles rather than ticks.

It provides tools for:
  - Backtesting oracle-driven strategies against historical candle data
  - Live paper trading against exchange websocket candle streams
  - Multi-timeframe resampling and confirmed-bar selection
  - Risk-based position sizing with leverage caps
  - Trade journals and equity curves (CSV or SQLite)

Complete documentation is available at https://github.com/rustyeddy/cryptosim`,
}

var verbose bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging")
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func openJournal(jc config.Journal) (journal.Journal, error) {
	switch jc.Type {
	case "csv":
		return journal.NewCSV(jc.TradesFile, jc.EquityFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	case "memory":
		return journal.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown journal type %q", jc.Type)
}
