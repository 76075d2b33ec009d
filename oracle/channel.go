package oracle

import (
	"context"
	"math"

	"github.com/rustyeddy/cryptosim/market"
	"github.com/rustyeddy/cryptosim/sim"
)

// ChannelConfig parametrizes the channel breakout oracle.
type ChannelConfig struct {
	Lookback  int     // channel window, default 20
	RR        float64 // take-profit distance as a multiple of risk, default 2
	Tolerance float64 // fraction the channel may drift before a pending order is stale, default 0.005
}

// Channel is a Donchian-style breakout oracle: it proposes a buy-stop at
// the upper channel edge when closes sit in the upper half of the
// channel, and the mirror for shorts. It exists to exercise the full
// driver path; production decision-makers live outside this module.
type Channel struct {
	cfg ChannelConfig
}

func NewChannel(cfg ChannelConfig) *Channel {
	if cfg.Lookback <= 0 {
		cfg.Lookback = 20
	}
	if cfg.RR <= 0 {
		cfg.RR = 2
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = 0.005
	}
	return &Channel{cfg: cfg}
}

func (c *Channel) Evaluate(ctx context.Context, req Request) (Decision, error) {
	if len(req.Trading) < c.cfg.Lookback {
		return HoldBecause("not enough bars for channel"), nil
	}
	if req.Status != NoPosition {
		return HoldBecause("already positioned"), nil
	}

	hi, lo := channel(req.Trading, c.cfg.Lookback)
	if hi <= lo {
		return HoldBecause("flat channel"), nil
	}

	last := req.Trading[len(req.Trading)-1].Close
	mid := (hi + lo) / 2

	if last > mid {
		entry := hi
		stop := mid
		return Decision{
			Action:     Approve,
			Side:       sim.Buy,
			Entry:      entry,
			StopLoss:   stop,
			TakeProfit: entry + c.cfg.RR*(entry-stop),
		}, nil
	}

	entry := lo
	stop := mid
	return Decision{
		Action:     Approve,
		Side:       sim.Sell,
		Entry:      entry,
		StopLoss:   stop,
		TakeProfit: entry - c.cfg.RR*(stop-entry),
	}, nil
}

// Review cancels a pending breakout order once the channel edge has
// drifted away from the order's trigger.
func (c *Channel) Review(ctx context.Context, req ReviewRequest) (Verdict, error) {
	if len(req.Trading) < c.cfg.Lookback {
		return Keep, nil
	}

	hi, lo := channel(req.Trading, c.cfg.Lookback)

	level := req.Order.TriggerPrice
	if level == 0 {
		level = req.Order.LimitPrice
	}
	if level == 0 {
		return Keep, nil
	}

	edge := hi
	if req.Order.Side == sim.Sell {
		edge = lo
	}

	if math.Abs(edge-level) > level*c.cfg.Tolerance {
		return Cancel, nil
	}
	return Keep, nil
}

func channel(bars []market.Bar, lookback int) (hi, lo float64) {
	window := bars[len(bars)-lookback:]
	hi = window[0].High
	lo = window[0].Low
	for _, b := range window[1:] {
		if b.High > hi {
			hi = b.High
		}
		if b.Low < lo {
			lo = b.Low
		}
	}
	return hi, lo
}
