package sim

import (
	"time"

	"github.com/rustyeddy/cryptosim/market"
)

// Position is the single open position the engine allows per symbol.
// Same-direction fills grow it at a weighted-average entry; opposite
// fills reduce, close or flip it.
type Position struct {
	ID            string
	Symbol        string
	Side          Side
	EntryPrice    float64
	Quantity      float64
	EntryTime     time.Time
	StopLoss      float64 // 0 means none
	TakeProfit    float64 // 0 means none
	UnrealizedPnL float64
}

// unrealized returns the mark-to-market PnL at the given price.
func (p *Position) unrealized(price float64) float64 {
	return float64(p.Side) * (price - p.EntryPrice) * p.Quantity
}

// checkExit models stop/take hits within a bar. If both levels are
// crossed in the same bar the stop wins: with only OHLC data the intra-bar
// path is unknown, so the adverse outcome is assumed first. A triggered
// level exits at the level price, not at the bar extreme.
func (p *Position) checkExit(bar market.Bar) (price float64, reason string, hit bool) {
	if p.Side == Long {
		if p.StopLoss != 0 && bar.Low <= p.StopLoss {
			return p.StopLoss, ReasonStopLoss, true
		}
		if p.TakeProfit != 0 && bar.High >= p.TakeProfit {
			return p.TakeProfit, ReasonTakeProfit, true
		}
		return 0, "", false
	}

	if p.StopLoss != 0 && bar.High >= p.StopLoss {
		return p.StopLoss, ReasonStopLoss, true
	}
	if p.TakeProfit != 0 && bar.Low <= p.TakeProfit {
		return p.TakeProfit, ReasonTakeProfit, true
	}
	return 0, "", false
}
