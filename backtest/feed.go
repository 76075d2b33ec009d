package backtest

import (
	"time"

	"github.com/rustyeddy/cryptosim/market"
)

// BarFeed yields bars one at a time in timestamp order. Implementations
// should be deterministic and return (ok=false, err=nil) at EOF.
type BarFeed interface {
	Next() (bar market.Bar, ok bool, err error)
	Close() error
}

// SliceFeed replays an in-memory bar sequence.
type SliceFeed struct {
	bars []market.Bar
	idx  int
}

func NewSliceFeed(bars []market.Bar) *SliceFeed {
	return &SliceFeed{bars: bars}
}

func (f *SliceFeed) Next() (market.Bar, bool, error) {
	if f.idx >= len(f.bars) {
		return market.Bar{}, false, nil
	}
	b := f.bars[f.idx]
	f.idx++
	return b, true, nil
}

func (f *SliceFeed) Close() error { return nil }

// NewCSVFeed loads bar history from a CSV file, optionally filtered to
// [from, to), and returns a feed over it plus the number of malformed
// rows that were dropped.
func NewCSVFeed(path string, from, to time.Time) (*SliceFeed, int, error) {
	bars, dropped, err := market.LoadCSV(path)
	if err != nil {
		return nil, 0, err
	}

	if !from.IsZero() || !to.IsZero() {
		kept := bars[:0]
		for _, b := range bars {
			if !from.IsZero() && b.Time.Before(from) {
				continue
			}
			if !to.IsZero() && !b.Time.Before(to) {
				continue
			}
			kept = append(kept, b)
		}
		bars = kept
	}

	return NewSliceFeed(bars), dropped, nil
}
