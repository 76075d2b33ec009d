package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/cryptosim/backtest"
	"github.com/rustyeddy/cryptosim/config"
	"github.com/rustyeddy/cryptosim/feed"
	"github.com/rustyeddy/cryptosim/market"
	"github.com/rustyeddy/cryptosim/oracle"
	"github.com/rustyeddy/cryptosim/schedule"
	"github.com/rustyeddy/cryptosim/sim"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Paper trade against a live exchange candle stream",
	Long: `Live subscribes to an exchange websocket candle channel and runs the
same oracle-driven loop as backtest against each closed candle, filling
orders on the internal matching engine. Ctrl-C stops the run and prints
the report.

Example:
  cryptosim live --config simulation.yaml --url wss://ws.okx.com:8443/ws/v5/business`,
	RunE: runLive,
}

var (
	liveConfigPath string
	liveURL        string
)

func init() {
	rootCmd.AddCommand(liveCmd)

	liveCmd.Flags().StringVarP(&liveConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	liveCmd.Flags().StringVarP(&liveURL, "url", "u", "", "exchange websocket URL (required)")
	liveCmd.MarkFlagRequired("config")
	liveCmd.MarkFlagRequired("url")
}

// chanFeed adapts a live bar channel to the driver's feed contract.
type chanFeed struct {
	bars <-chan market.Bar
}

func (f chanFeed) Next() (market.Bar, bool, error) {
	bar, ok := <-f.bars
	return bar, ok, nil
}

func (f chanFeed) Close() error { return nil }

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(liveConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

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

	// An open position at shutdown stays on the books; there is no
	// meaningful close price for a live run that just stopped.
	opts, err := driverOptions(cfg, false)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ws := feed.NewWS(feed.WSConfig{
		URL:       liveURL,
		Symbol:    cfg.Data.Symbol,
		Timeframe: cfg.Data.Interval,
	}, log)
	bars := ws.Stream(ctx)

	// The websocket pushes candles, so the scheduler only watches for a
	// feed that has gone quiet past the next candle boundary.
	var lastBar atomic.Int64
	lastBar.Store(time.Now().UnixMilli())
	watched := make(chan market.Bar)
	go func() {
		defer close(watched)
		var raw []market.Bar
		var lastSent time.Time
		forward := func(b market.Bar) {
			if b.Time.After(lastSent) {
				lastSent = b.Time
				watched <- b
			}
		}
		for bar := range bars {
			lastBar.Store(time.Now().UnixMilli())
			raw = append(raw, bar)

			// Re-check the exchange's confirm flags against the clock:
			// duplicate frames and candles that claim to be closed while
			// their slot is still open are filtered out here.
			confirmed, stale, err := market.SelectConfirmed(raw, opts.Interval, time.Now(), opts.TradingLookback+1)
			if err != nil {
				forward(bar)
				continue
			}
			if stale {
				log.Warn("confirmed window lags the clock",
					zap.Time("last_bar", confirmed[len(confirmed)-1].Time))
			}
			raw = confirmed
			for _, b := range confirmed {
				forward(b)
			}
		}
	}()

	sched := schedule.New(opts.Interval, 10*time.Second)
	go sched.Run(ctx, func(closed time.Time) {
		idle := time.Since(time.UnixMilli(lastBar.Load()))
		if idle > opts.Interval {
			log.Warn("candle feed stale",
				zap.Duration("idle", idle),
				zap.Time("expected_close", closed))
		}
	})

	log.Info("live run starting",
		zap.String("symbol", cfg.Data.Symbol),
		zap.String("interval", cfg.Data.Interval),
		zap.String("oracle", cfg.Oracle.Name))

	driver := backtest.NewDriver(engine, orc, j, log, opts)
	report, err := driver.Run(context.Background(), chanFeed{bars: watched})
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	return report.WriteJSON(cmd.OutOrStdout())
}
