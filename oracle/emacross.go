package oracle

import (
	"context"

	"github.com/rustyeddy/cryptosim/indicators"
	"github.com/rustyeddy/cryptosim/sim"
)

// EMACrossConfig parametrizes the EMA crossover oracle.
type EMACrossConfig struct {
	Fast      int     // fast EMA period, default 20
	Slow      int     // slow EMA period, default 50
	ATRPeriod int     // stop distance window, default 14
	ATRMult   float64 // stop distance as a multiple of ATR, default 2
	RR        float64 // take-profit distance as a multiple of risk, default 2
}

// EMACross proposes a market entry when the fast EMA crosses the slow
// EMA, with an ATR-based stop. A pending order is kept only while the
// EMAs still favor its side.
type EMACross struct {
	cfg EMACrossConfig
}

func NewEMACross(cfg EMACrossConfig) *EMACross {
	if cfg.Fast <= 0 {
		cfg.Fast = 20
	}
	if cfg.Slow <= 0 {
		cfg.Slow = 50
	}
	if cfg.ATRPeriod <= 0 {
		cfg.ATRPeriod = 14
	}
	if cfg.ATRMult <= 0 {
		cfg.ATRMult = 2
	}
	if cfg.RR <= 0 {
		cfg.RR = 2
	}
	return &EMACross{cfg: cfg}
}

func (e *EMACross) warmup() int {
	n := e.cfg.Slow + 1
	if e.cfg.ATRPeriod+1 > n {
		n = e.cfg.ATRPeriod + 1
	}
	return n
}

func (e *EMACross) Evaluate(ctx context.Context, req Request) (Decision, error) {
	if len(req.Trading) < e.warmup() {
		return HoldBecause("not enough bars for emas"), nil
	}
	if req.Status != NoPosition {
		return HoldBecause("already positioned"), nil
	}

	prev := req.Trading[:len(req.Trading)-1]
	fastPrev, err := indicators.EMA(prev, e.cfg.Fast)
	if err != nil {
		return Decision{}, err
	}
	slowPrev, err := indicators.EMA(prev, e.cfg.Slow)
	if err != nil {
		return Decision{}, err
	}
	fastCur, err := indicators.EMA(req.Trading, e.cfg.Fast)
	if err != nil {
		return Decision{}, err
	}
	slowCur, err := indicators.EMA(req.Trading, e.cfg.Slow)
	if err != nil {
		return Decision{}, err
	}

	crossedUp := fastPrev <= slowPrev && fastCur > slowCur
	crossedDown := fastPrev >= slowPrev && fastCur < slowCur
	if !crossedUp && !crossedDown {
		return HoldBecause("no cross"), nil
	}

	atr, err := indicators.ATR(req.Trading, e.cfg.ATRPeriod)
	if err != nil {
		return Decision{}, err
	}
	if atr <= 0 {
		return HoldBecause("flat range"), nil
	}

	entry := req.Trading[len(req.Trading)-1].Close
	dist := e.cfg.ATRMult * atr

	if crossedUp {
		return Decision{
			Action:     Approve,
			Side:       sim.Buy,
			Entry:      entry,
			StopLoss:   entry - dist,
			TakeProfit: entry + e.cfg.RR*dist,
			Reason:     "ema cross up",
		}, nil
	}
	return Decision{
		Action:     Approve,
		Side:       sim.Sell,
		Entry:      entry,
		StopLoss:   entry + dist,
		TakeProfit: entry - e.cfg.RR*dist,
		Reason:     "ema cross down",
	}, nil
}

func (e *EMACross) Review(ctx context.Context, req ReviewRequest) (Verdict, error) {
	if len(req.Trading) < e.cfg.Slow {
		return Keep, nil
	}

	fast, err := indicators.EMA(req.Trading, e.cfg.Fast)
	if err != nil {
		return Keep, err
	}
	slow, err := indicators.EMA(req.Trading, e.cfg.Slow)
	if err != nil {
		return Keep, err
	}

	if req.Order.Side == sim.Buy && fast <= slow {
		return Cancel, nil
	}
	if req.Order.Side == sim.Sell && fast >= slow {
		return Cancel, nil
	}
	return Keep, nil
}
