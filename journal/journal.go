package journal

import "time"

// TradeRecord is one closed (fully or partially) trade as persisted.
type TradeRecord struct {
	TradeID     string
	Symbol      string
	Side        string
	Quantity    float64
	EntryPrice  float64
	ExitPrice   float64
	EntryTime   time.Time
	ExitTime    time.Time
	RealizedPnL float64
	ReturnPct   float64
	Reason      string
}

// EquityPoint is one point of the equity curve, recorded once per
// simulated bar. DrawdownPct is the retracement from the running peak
// equity at that instant.
type EquityPoint struct {
	Time        time.Time
	Balance     float64
	Equity      float64
	DrawdownPct float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquityPoint) error
	Close() error
}
