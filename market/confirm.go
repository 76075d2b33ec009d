package market

import (
	"errors"
	"fmt"
	"time"
)

// ErrInsufficientData is returned when fewer than two raw bars are
// available for confirmed-bar selection.
var ErrInsufficientData = errors.New("insufficient data")

// SelectConfirmed decides which trailing bars of a raw feed are guaranteed
// closed relative to now. Naively taking "the last N bars from the API"
// risks analyzing a bar that is still accumulating ticks, which corrupts
// signal-bar evaluation and backtest/live parity.
//
// Let slot be the start of the interval containing now:
//   - last bar opens at slot: the feed already rolled over to the
//     in-progress bar; it is dropped.
//   - last bar opens one interval before slot: its own close instant is
//     already <= now, so the full set is safe.
//   - last bar is older than that: the feed is stale. The available bars
//     are still returned, with stale=true so the caller can surface a
//     warning rather than silently trust lagging data.
//
// The result is right-trimmed to lookback bars.
func SelectConfirmed(raw []Bar, interval time.Duration, now time.Time, lookback int) (bars []Bar, stale bool, err error) {
	if len(raw) < 2 {
		return nil, false, fmt.Errorf("%w: got %d bars, need at least 2", ErrInsufficientData, len(raw))
	}

	intervalMs := interval.Milliseconds()
	slotMs := now.UnixMilli() / intervalMs * intervalMs

	last := raw[len(raw)-1].Time.UnixMilli()
	switch {
	case last == slotMs:
		bars = raw[:len(raw)-1]
	case last == slotMs-intervalMs:
		bars = raw
	default:
		bars = raw
		stale = true
	}

	return Tail(bars, lookback), stale, nil
}
