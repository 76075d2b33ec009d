// Package schedule fires a callback just after each candle boundary.
// Live trading polls the exchange once per closed candle rather than on a
// free-running ticker, so ticks land a small grace period after the
// interval boundary to let the exchange finalize the bar.
package schedule

import (
	"context"
	"time"
)

// Scheduler wakes at interval boundaries plus a grace delay.
type Scheduler struct {
	interval time.Duration
	grace    time.Duration
	now      func() time.Time
}

// New returns a scheduler for the given candle interval. A non-positive
// grace defaults to 2s.
func New(interval, grace time.Duration) *Scheduler {
	if grace <= 0 {
		grace = 2 * time.Second
	}
	return &Scheduler{interval: interval, grace: grace, now: time.Now}
}

// Next returns the first tick instant strictly after t: the next interval
// boundary plus the grace delay.
func (s *Scheduler) Next(t time.Time) time.Time {
	boundary := t.Truncate(s.interval).Add(s.interval)
	// Between a boundary and boundary+grace the previous tick has not fired
	// from t's point of view, but re-firing it would double-process the
	// same candle. Always schedule the upcoming boundary.
	return boundary.Add(s.grace)
}

// Run invokes fn after every candle close until ctx is canceled. fn
// receives the close instant of the candle that just completed. Slow
// callbacks skip boundaries rather than queueing them.
func (s *Scheduler) Run(ctx context.Context, fn func(closed time.Time)) error {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		next := s.Next(s.now())
		timer.Reset(time.Until(next))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			fn(next.Add(-s.grace))
		}
	}
}
