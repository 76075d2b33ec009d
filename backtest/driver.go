package backtest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/cryptosim/journal"
	"github.com/rustyeddy/cryptosim/market"
	"github.com/rustyeddy/cryptosim/oracle"
	"github.com/rustyeddy/cryptosim/risk"
	"github.com/rustyeddy/cryptosim/sim"
)

// State of the driver between bars. It is always re-derived from engine
// truth, never advanced speculatively.
type State int8

const (
	WaitingSignal State = iota
	PendingOrder
	InPosition
)

func (s State) String() string {
	switch s {
	case PendingOrder:
		return "pending_order"
	case InPosition:
		return "in_position"
	}
	return "waiting_signal"
}

// Options controls a simulation run.
type Options struct {
	Symbol   string
	Interval time.Duration

	TradingLookback int
	ContextInterval time.Duration // 0 disables the context window
	ContextLookback int
	TrendInterval   time.Duration // 0 disables the trend window
	TrendLookback   int

	RiskFraction   float64
	MinDistancePct float64
	MaxLeverage    float64

	// CloseEnd closes any open position at the last bar's close when the
	// feed is exhausted.
	CloseEnd bool
}

// Driver owns a simulation run: it feeds bars to the matching engine in
// timestamp order, sequences the signal-seeking / pending-order /
// in-position phases, asks the oracle at the right moments and
// accumulates the equity curve and trade statistics.
//
// Processing is strictly one bar at a time: bar N+1 is not touched until
// bar N's order resolution, netting and equity recompute have settled.
type Driver struct {
	engine *sim.Engine
	oracle oracle.Oracle
	opts   Options
	jrnl   journal.Journal
	log    *zap.Logger

	state     State
	pendingID string
	history   []market.Bar

	peak   float64
	maxDD  float64
	curve  []journal.EquityPoint
	last   market.Bar
	seen   int
	broke  bool
}

func NewDriver(engine *sim.Engine, orc oracle.Oracle, jrnl journal.Journal, log *zap.Logger, opts Options) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{
		engine: engine,
		oracle: orc,
		opts:   opts,
		jrnl:   jrnl,
		log:    log,
	}
}

// State reports the driver's current phase.
func (d *Driver) State() State { return d.state }

// Run executes the simulation until the feed is exhausted, equity hits
// zero, or ctx is canceled. Cancellation is a stop flag checked between
// bars; an in-flight oracle call is allowed to finish. All terminal
// conditions, bankruptcy included, still produce a report from whatever
// history exists.
func (d *Driver) Run(ctx context.Context, feed BarFeed) (Report, error) {
	if d.engine == nil {
		return Report{}, fmt.Errorf("backtest: engine is required")
	}
	if d.oracle == nil {
		return Report{}, fmt.Errorf("backtest: oracle is required")
	}
	if feed == nil {
		return Report{}, fmt.Errorf("backtest: feed is required")
	}

	var start, end time.Time

	for {
		select {
		case <-ctx.Done():
			return d.report(start, end), ctx.Err()
		default:
		}

		bar, ok, err := feed.Next()
		if err != nil {
			return d.report(start, end), err
		}
		if !ok {
			break
		}

		if start.IsZero() {
			start = bar.Time
		}
		end = bar.Time

		d.step(ctx, bar)
		if d.broke {
			d.log.Warn("bankruptcy: stopping run",
				zap.String("symbol", d.opts.Symbol),
				zap.Time("bar", bar.Time))
			break
		}
	}

	if d.opts.CloseEnd && !d.broke {
		d.engine.ClosePosition(d.opts.Symbol, d.last.Close, d.last.Time, "")
	}

	return d.report(start, end), nil
}

// step processes one bar: advance the engine, re-derive the phase from
// engine state, bookkeep equity/drawdown, then act for the phase.
func (d *Driver) step(ctx context.Context, bar market.Bar) {
	d.history = append(d.history, bar)
	d.last = bar
	d.seen++

	d.engine.Advance(d.opts.Symbol, bar)
	d.deriveState()

	acct := d.engine.Account()
	if acct.Equity > d.peak {
		d.peak = acct.Equity
	}
	dd := 0.0
	if d.peak > 0 {
		dd = (d.peak - acct.Equity) / d.peak * 100
	}
	if dd > d.maxDD {
		d.maxDD = dd
	}

	point := journal.EquityPoint{
		Time:        bar.Time,
		Balance:     acct.Balance,
		Equity:      acct.Equity,
		DrawdownPct: dd,
	}
	d.curve = append(d.curve, point)
	if d.jrnl != nil {
		if err := d.jrnl.RecordEquity(point); err != nil {
			d.log.Error("record equity", zap.Error(err))
		}
	}

	if acct.Equity <= 0 {
		d.broke = true
		return
	}

	switch d.state {
	case WaitingSignal:
		d.seekSignal(ctx, bar)
	case PendingOrder:
		d.reviewPending(ctx)
	case InPosition:
		// The engine manages exits on its own.
	}
}

// deriveState maps engine truth back onto the phase machine. A pending
// order that left the open set either became a position (filled) or
// evaporated (canceled, or filled and already closed within the bar).
func (d *Driver) deriveState() {
	switch d.state {
	case PendingOrder:
		o, ok := d.engine.Order(d.pendingID)
		if ok && o.Status == sim.Open {
			return
		}
		d.pendingID = ""
		if _, held := d.engine.Position(d.opts.Symbol); held {
			d.state = InPosition
		} else {
			d.state = WaitingSignal
		}

	case InPosition:
		if _, held := d.engine.Position(d.opts.Symbol); !held {
			d.state = WaitingSignal
		}
	}
}

func (d *Driver) seekSignal(ctx context.Context, bar market.Bar) {
	acct := d.engine.Account()

	req := oracle.Request{
		Symbol:       d.opts.Symbol,
		Trading:      market.Tail(d.history, d.opts.TradingLookback),
		Equity:       acct.Equity,
		RiskFraction: d.opts.RiskFraction,
		Status:       oracle.NoPosition,
	}
	if d.opts.ContextInterval > 0 {
		req.Context = market.Tail(market.Resample(d.history, d.opts.ContextInterval), d.opts.ContextLookback)
	}
	if d.opts.TrendInterval > 0 {
		req.Trend = market.Tail(market.Resample(d.history, d.opts.TrendInterval), d.opts.TrendLookback)
	}

	dec, err := d.oracle.Evaluate(ctx, req)
	if err != nil {
		// Oracle trouble is never fatal to the run: treat as hold.
		d.log.Error("oracle evaluate failed, holding", zap.Error(err))
		return
	}
	if dec.Action != oracle.Approve {
		return
	}

	size := risk.Quantity(risk.Inputs{
		Equity:         acct.Equity,
		RiskFraction:   d.opts.RiskFraction,
		EntryPrice:     dec.Entry,
		StopPrice:      dec.StopLoss,
		MinDistancePct: d.opts.MinDistancePct,
		MaxLeverage:    d.opts.MaxLeverage,
	})
	if size.Quantity <= 0 {
		d.log.Debug("signal skipped: sized to zero",
			zap.Float64("entry", dec.Entry),
			zap.Float64("stop", dec.StopLoss))
		return
	}

	spec := orderSpec(d.opts.Symbol, dec, size.Quantity, bar.Close)
	o, err := d.engine.CreateOrder(spec)
	if err != nil {
		d.log.Warn("order rejected", zap.Error(err))
		return
	}

	d.log.Info("order submitted",
		zap.String("id", o.ID),
		zap.String("side", o.Side.String()),
		zap.String("kind", o.Kind.String()),
		zap.Float64("amount", o.Amount))

	d.pendingID = o.ID
	d.state = PendingOrder
}

// orderSpec picks the order kind from where the approved entry sits
// relative to the current close: beyond the market in the trade direction
// is a stop (breakout), inside is a limit (pullback), at the market is a
// market order.
func orderSpec(symbol string, dec oracle.Decision, qty, lastClose float64) sim.OrderSpec {
	spec := sim.OrderSpec{
		Symbol:     symbol,
		Side:       dec.Side,
		Amount:     qty,
		StopLoss:   dec.StopLoss,
		TakeProfit: dec.TakeProfit,
	}

	beyond := dec.Entry > lastClose
	if dec.Side == sim.Sell {
		beyond = dec.Entry < lastClose
	}

	switch {
	case dec.Entry == lastClose:
		spec.Kind = sim.Market
	case beyond:
		spec.Kind = sim.Stop
		spec.TriggerPrice = dec.Entry
	default:
		spec.Kind = sim.Limit
		spec.LimitPrice = dec.Entry
	}
	return spec
}

func (d *Driver) reviewPending(ctx context.Context) {
	o, ok := d.engine.Order(d.pendingID)
	if !ok || o.Status != sim.Open {
		return
	}

	v, err := d.oracle.Review(ctx, oracle.ReviewRequest{
		Symbol:  d.opts.Symbol,
		Trading: market.Tail(d.history, d.opts.TradingLookback),
		Order:   o,
	})
	if err != nil {
		d.log.Error("oracle review failed, keeping order", zap.Error(err))
		return
	}

	if v == oracle.Cancel {
		d.engine.CancelOrder(d.pendingID)
		d.log.Info("pending order canceled", zap.String("id", d.pendingID))
		d.pendingID = ""
		d.state = WaitingSignal
	}
}
