package market

import "time"

// Bar is one closed OHLCV interval of price action. Time is the opening
// instant of the interval; the bar closes at Time + interval. Bars within
// one feed are strictly increasing in Time and non-overlapping.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// CloseTime returns the closing instant of a bar with the given interval.
func (b Bar) CloseTime(interval time.Duration) time.Time {
	return b.Time.Add(interval)
}

// Tail returns the last n bars, or all of them when fewer exist.
func Tail(bars []Bar, n int) []Bar {
	if n <= 0 || len(bars) <= n {
		return bars
	}
	return bars[len(bars)-n:]
}
