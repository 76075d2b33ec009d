package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/cryptosim/backtest"
	"github.com/rustyeddy/cryptosim/config"
	"github.com/rustyeddy/cryptosim/market"
	"github.com/rustyeddy/cryptosim/oracle"
	"github.com/rustyeddy/cryptosim/sim"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a simulation against historical candle data",
	Long: `Backtest replays a candle CSV (time,open,high,low,close,volume) through
the matching engine, consulting the configured oracle on every closed bar.

Example:
  cryptosim backtest --config simulation.yaml --candles data/btc-15m.csv --out report.json`,
	RunE: runBacktestCmd,
}

var (
	btConfigPath  string
	btCandlesPath string
	btFrom        string
	btTo          string
	btOutPath     string
	btCloseEnd    bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	backtestCmd.Flags().StringVarP(&btCandlesPath, "candles", "c", "", "path to candle CSV (required)")
	backtestCmd.Flags().StringVar(&btFrom, "from", "", "start of replay window (RFC3339 or YYYY-MM-DD)")
	backtestCmd.Flags().StringVar(&btTo, "to", "", "end of replay window (RFC3339 or YYYY-MM-DD)")
	backtestCmd.Flags().StringVarP(&btOutPath, "out", "o", "", "write the JSON report to this file instead of stdout")
	backtestCmd.Flags().BoolVar(&btCloseEnd, "close-end", true, "close any open position at the last bar's close")

	backtestCmd.MarkFlagRequired("config")
	backtestCmd.MarkFlagRequired("candles")
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(btConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	from, err := parseTimeFlag(btFrom)
	if err != nil {
		return fmt.Errorf("bad --from: %w", err)
	}
	to, err := parseTimeFlag(btTo)
	if err != nil {
		return fmt.Errorf("bad --to: %w", err)
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	orc, err := oracle.ByName(cfg.Oracle.Name)
	if err != nil {
		return err
	}

	engine := sim.NewEngine(cfg.Account.Balance, sim.Config{
		EntryFeeRate: cfg.Fees.Entry,
		ExitFeeRate:  cfg.Fees.Exit,
	}, j)

	opts, err := driverOptions(cfg, btCloseEnd)
	if err != nil {
		return err
	}

	feed, dropped, err := backtest.NewCSVFeed(btCandlesPath, from, to)
	if err != nil {
		return fmt.Errorf("load candles: %w", err)
	}
	if dropped > 0 {
		log.Warn("dropped malformed candle rows", zap.Int("rows", dropped))
	}

	driver := backtest.NewDriver(engine, orc, j, log, opts)
	report, err := driver.Run(cmd.Context(), feed)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	out := os.Stdout
	if btOutPath != "" {
		f, err := os.Create(btOutPath)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := report.WriteJSON(out); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if btOutPath != "" {
		r := report.Result
		fmt.Printf("Backtest complete: %d bars, %d trades, return %.2f%%, max drawdown %.2f%%\n",
			r.Bars, r.Trades, r.TotalReturnPct, r.MaxDrawdownPct)
		fmt.Printf("Report written to %s\n", btOutPath)
	}
	return nil
}

// driverOptions maps a validated config onto simulation options.
func driverOptions(cfg *config.Config, closeEnd bool) (backtest.Options, error) {
	interval, err := market.ParseInterval(cfg.Data.Interval)
	if err != nil {
		return backtest.Options{}, err
	}
	ctxInterval, err := market.ParseInterval(cfg.Data.ContextInterval)
	if err != nil {
		return backtest.Options{}, err
	}
	trendInterval, err := market.ParseInterval(cfg.Data.TrendInterval)
	if err != nil {
		return backtest.Options{}, err
	}

	return backtest.Options{
		Symbol:          cfg.Data.Symbol,
		Interval:        interval,
		TradingLookback: cfg.Data.TradingLookback,
		ContextInterval: ctxInterval,
		ContextLookback: cfg.Data.ContextLookback,
		TrendInterval:   trendInterval,
		TrendLookback:   cfg.Data.TrendLookback,
		RiskFraction:    cfg.Risk.Fraction,
		MinDistancePct:  cfg.Risk.MinDistancePct,
		MaxLeverage:     cfg.Risk.MaxLeverage,
		CloseEnd:        closeEnd,
	}, nil
}

func parseTimeFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
