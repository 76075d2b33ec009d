package sim

import (
	"math"
	"sync"
	"time"

	"github.com/rustyeddy/cryptosim/internal/id"
	"github.com/rustyeddy/cryptosim/journal"
	"github.com/rustyeddy/cryptosim/market"
)

// Config holds the engine's fee schedule. Entry and exit rates are
// independent: many venues charge maker/taker differently.
type Config struct {
	EntryFeeRate float64
	ExitFeeRate  float64
}

// Account is the simulated account. Balance is realized cash; Equity is
// Balance plus the unrealized PnL of all open positions, recomputed in
// full on every bar rather than drifted incrementally.
type Account struct {
	Balance        float64
	Equity         float64
	InitialBalance float64
}

// Engine is a virtual exchange for one logical account: it owns the
// simulated balance, open orders, open positions and trade history, and
// advances time one bar at a time. It is a pure in-memory simulator; no
// operation past creation-time validation can fail.
//
// Engines are independent; running one per symbol in parallel needs no
// coordination.
type Engine struct {
	mu        sync.Mutex
	cfg       Config
	acct      Account
	orders    []*Order
	positions map[string]*Position
	history   []Trade
	journal   journal.Journal
	now       time.Time
}

func NewEngine(initialBalance float64, cfg Config, j journal.Journal) *Engine {
	return &Engine{
		cfg: cfg,
		acct: Account{
			Balance:        initialBalance,
			Equity:         initialBalance,
			InitialBalance: initialBalance,
		},
		positions: make(map[string]*Position),
		journal:   j,
	}
}

// CreateOrder validates the spec and registers an open order. It has no
// effect on the balance; fees are charged on fill.
func (e *Engine) CreateOrder(spec OrderSpec) (Order, error) {
	if err := spec.validate(); err != nil {
		return Order{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	o := &Order{
		ID:           id.New(),
		Symbol:       spec.Symbol,
		Side:         spec.Side,
		Kind:         spec.Kind,
		Amount:       spec.Amount,
		LimitPrice:   spec.LimitPrice,
		TriggerPrice: spec.TriggerPrice,
		StopLoss:     spec.StopLoss,
		TakeProfit:   spec.TakeProfit,
		Status:       Open,
		CreatedAt:    e.now,
	}
	e.orders = append(e.orders, o)
	return *o, nil
}

// CancelOrder removes an open order. It reports false when the id is
// unknown or the order already reached a terminal state.
func (e *Engine) CancelOrder(orderID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, o := range e.orders {
		if o.ID == orderID && o.Status == Open {
			o.Status = Canceled
			return true
		}
	}
	return false
}

// Advance is the core tick: it resolves open orders against the bar,
// nets resulting fills into the symbol's position, runs stop/take exit
// checks, marks the position to the bar close and recomputes equity.
//
// Orders created while the call is in flight are not matched against
// this bar: resolution walks a snapshot taken at entry.
func (e *Engine) Advance(symbol string, bar market.Bar) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.now = bar.Time

	snapshot := make([]*Order, 0, len(e.orders))
	for _, o := range e.orders {
		if o.Status == Open && o.Symbol == symbol {
			snapshot = append(snapshot, o)
		}
	}

	for _, o := range snapshot {
		price, ok := fillPrice(o, bar)
		if !ok {
			continue
		}
		o.Status = Filled
		e.acct.Balance -= price * o.Amount * e.cfg.EntryFeeRate
		e.applyFillLocked(o, price, bar.Time)
	}

	// Exit checks run after all fills, so a position opened by a flip in
	// this same call is tested against this bar's high/low too.
	if p, ok := e.positions[symbol]; ok {
		if price, reason, hit := p.checkExit(bar); hit {
			e.realizeLocked(p, p.Quantity, price, bar.Time, reason, e.cfg.ExitFeeRate)
			delete(e.positions, symbol)
		}
	}

	if p, ok := e.positions[symbol]; ok {
		p.UnrealizedPnL = p.unrealized(bar.Close)
	}
	e.recomputeEquityLocked()
}

// fillPrice decides whether an order triggers on this bar and at what
// price. Stops assume adverse gaps (fill at the worse of open and
// trigger); limits assume favorable gaps (fill at the better of open and
// limit). Market orders fill at the bar open, modeling next-bar-open
// execution.
func fillPrice(o *Order, bar market.Bar) (float64, bool) {
	switch o.Kind {
	case Market:
		return bar.Open, true

	case Stop:
		if o.Side == Buy && bar.High >= o.TriggerPrice {
			return math.Max(bar.Open, o.TriggerPrice), true
		}
		if o.Side == Sell && bar.Low <= o.TriggerPrice {
			return math.Min(bar.Open, o.TriggerPrice), true
		}

	case Limit:
		if o.Side == Buy && bar.Low <= o.LimitPrice {
			return math.Min(bar.Open, o.LimitPrice), true
		}
		if o.Side == Sell && bar.High >= o.LimitPrice {
			return math.Max(bar.Open, o.LimitPrice), true
		}
	}
	return 0, false
}

// applyFillLocked nets a fill into the symbol's position. Netting closes
// charge no exit fee: the closing order's entry-side fee already covered
// the fill.
func (e *Engine) applyFillLocked(o *Order, price float64, t time.Time) {
	pos := e.positions[o.Symbol]

	switch classifyFill(pos, o.Side, o.Amount) {
	case outcomeOpen:
		e.positions[o.Symbol] = e.openPosition(o, o.Amount, price, t)

	case outcomeIncrease:
		pos.EntryPrice = (pos.EntryPrice*pos.Quantity + price*o.Amount) / (pos.Quantity + o.Amount)
		pos.Quantity += o.Amount
		// Risk params are overwritten only when the order supplies them.
		if o.StopLoss != 0 {
			pos.StopLoss = o.StopLoss
		}
		if o.TakeProfit != 0 {
			pos.TakeProfit = o.TakeProfit
		}

	case outcomeReduce:
		e.realizeLocked(pos, o.Amount, price, t, ReasonPartialClose, 0)
		pos.Quantity -= o.Amount

	case outcomeClose:
		e.realizeLocked(pos, pos.Quantity, price, t, ReasonMarketClose, 0)
		delete(e.positions, o.Symbol)

	case outcomeFlip:
		remainder := o.Amount - pos.Quantity
		e.realizeLocked(pos, pos.Quantity, price, t, ReasonFlip, 0)
		e.positions[o.Symbol] = e.openPosition(o, remainder, price, t)
	}
}

func (e *Engine) openPosition(o *Order, qty, price float64, t time.Time) *Position {
	return &Position{
		ID:         id.New(),
		Symbol:     o.Symbol,
		Side:       o.Side,
		EntryPrice: price,
		Quantity:   qty,
		EntryTime:  t,
		StopLoss:   o.StopLoss,
		TakeProfit: o.TakeProfit,
	}
}

// realizeLocked closes qty units of pos at price: realizes PnL into the
// balance, charges feeRate on the closed notional and appends a trade
// history entry.
func (e *Engine) realizeLocked(pos *Position, qty, price float64, t time.Time, reason string, feeRate float64) {
	pnl := float64(pos.Side) * (price - pos.EntryPrice) * qty
	e.acct.Balance += pnl
	e.acct.Balance -= price * qty * feeRate

	returnPct := 0.0
	if notional := pos.EntryPrice * qty; notional > 0 {
		returnPct = pnl / notional * 100
	}

	trade := Trade{
		ID:          id.New(),
		Symbol:      pos.Symbol,
		Side:        pos.Side,
		EntryTime:   pos.EntryTime,
		ExitTime:    t,
		EntryPrice:  pos.EntryPrice,
		ExitPrice:   price,
		Quantity:    qty,
		RealizedPnL: pnl,
		ReturnPct:   returnPct,
		Reason:      reason,
	}
	e.history = append(e.history, trade)

	if e.journal != nil {
		_ = e.journal.RecordTrade(journal.TradeRecord{
			TradeID:     trade.ID,
			Symbol:      trade.Symbol,
			Side:        trade.Side.String(),
			Quantity:    trade.Quantity,
			EntryPrice:  trade.EntryPrice,
			ExitPrice:   trade.ExitPrice,
			EntryTime:   trade.EntryTime,
			ExitTime:    trade.ExitTime,
			RealizedPnL: trade.RealizedPnL,
			ReturnPct:   trade.ReturnPct,
			Reason:      trade.Reason,
		})
	}
}

func (e *Engine) recomputeEquityLocked() {
	equity := e.acct.Balance
	for _, p := range e.positions {
		equity += p.UnrealizedPnL
	}
	e.acct.Equity = equity
}

// ClosePosition closes the symbol's open position at the given price,
// charging the exit fee. It reports false when no position exists.
func (e *Engine) ClosePosition(symbol string, price float64, t time.Time, reason string) bool {
	if reason == "" {
		reason = ReasonMarketClose
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.positions[symbol]
	if !ok {
		return false
	}

	e.realizeLocked(p, p.Quantity, price, t, reason, e.cfg.ExitFeeRate)
	delete(e.positions, symbol)
	e.recomputeEquityLocked()
	return true
}

// Account returns a snapshot of the simulated account.
func (e *Engine) Account() Account {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acct
}

// OpenOrders returns copies of all currently open orders, oldest first.
func (e *Engine) OpenOrders() []Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []Order
	for _, o := range e.orders {
		if o.Status == Open {
			out = append(out, *o)
		}
	}
	return out
}

// Order looks up any order, open or terminal, by id.
func (e *Engine) Order(orderID string) (Order, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, o := range e.orders {
		if o.ID == orderID {
			return *o, true
		}
	}
	return Order{}, false
}

// Position returns the open position for the symbol, if any.
func (e *Engine) Position(symbol string) (Position, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if p, ok := e.positions[symbol]; ok {
		return *p, true
	}
	return Position{}, false
}

// History returns the append-only ledger of closed trades.
func (e *Engine) History() []Trade {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Trade, len(e.history))
	copy(out, e.history)
	return out
}
