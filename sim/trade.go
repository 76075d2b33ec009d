package sim

import "time"

// Close reasons recorded in trade history.
const (
	ReasonStopLoss     = "Stop Loss"
	ReasonTakeProfit   = "Take Profit"
	ReasonMarketClose  = "Market Close"
	ReasonFlip         = "Market Reverse (Flip)"
	ReasonPartialClose = "Partial Close"
)

// Trade is one append-only ledger entry, written on every full or partial
// close of a position.
type Trade struct {
	ID          string
	Symbol      string
	Side        Side
	EntryTime   time.Time
	ExitTime    time.Time
	EntryPrice  float64
	ExitPrice   float64
	Quantity    float64
	RealizedPnL float64
	ReturnPct   float64
	Reason      string
}
