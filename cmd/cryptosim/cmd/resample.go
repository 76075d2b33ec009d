package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/cryptosim/market"
)

var resampleCmd = &cobra.Command{
	Use:   "resample",
	Short: "Resample a candle CSV to a coarser timeframe",
	Long: `Resample reads a candle CSV (time,open,high,low,close,volume) and merges
the rows into coarser buckets, writing the result as CSV.

Example:
  cryptosim resample --candles btc-15m.csv --interval 4h --out btc-4h.csv`,
	RunE: runResample,
}

var (
	rsCandlesPath string
	rsInterval    string
	rsOutPath     string
)

func init() {
	rootCmd.AddCommand(resampleCmd)

	resampleCmd.Flags().StringVarP(&rsCandlesPath, "candles", "c", "", "path to candle CSV (required)")
	resampleCmd.Flags().StringVarP(&rsInterval, "interval", "i", "", "target interval, e.g. 1h, 4h, 1d (required)")
	resampleCmd.Flags().StringVarP(&rsOutPath, "out", "o", "", "output file (default stdout)")

	resampleCmd.MarkFlagRequired("candles")
	resampleCmd.MarkFlagRequired("interval")
}

func runResample(cmd *cobra.Command, args []string) error {
	target, err := market.ParseInterval(rsInterval)
	if err != nil {
		return err
	}

	bars, dropped, err := market.LoadCSV(rsCandlesPath)
	if err != nil {
		return fmt.Errorf("load candles: %w", err)
	}
	if dropped > 0 {
		fmt.Fprintf(os.Stderr, "warning: dropped %d malformed rows\n", dropped)
	}

	merged := market.Resample(bars, target)

	out := os.Stdout
	if rsOutPath != "" {
		f, err := os.Create(rsOutPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	// Same column layout the loaders expect, so output feeds straight
	// back into backtest.
	w := csv.NewWriter(out)
	if err := w.Write([]string{"timestamp_ms", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, b := range merged {
		row := []string{
			strconv.FormatInt(b.Time.UnixMilli(), 10),
			ff(b.Open), ff(b.High), ff(b.Low), ff(b.Close), ff(b.Volume),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
