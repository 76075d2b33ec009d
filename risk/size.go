package risk

import "math"

// Inputs for fixed fractional position sizing.
type Inputs struct {
	Equity         float64
	RiskFraction   float64 // e.g. 0.01 risks 1% of equity per trade
	EntryPrice     float64
	StopPrice      float64
	MinDistancePct float64 // floor on the stop distance, as a fraction of entry
	MaxLeverage    float64 // cap on notional / equity; 0 disables
}

// Result of a sizing calculation.
type Result struct {
	Quantity   float64
	StopDist   float64
	RiskAmount float64
}

// Quantity sizes a trade so that hitting the stop loses
// Equity*RiskFraction. The stop distance is floored at
// EntryPrice*MinDistancePct so a stop jammed against the entry cannot
// produce an absurd size, and the resulting notional is clamped to
// Equity*MaxLeverage. A non-positive result means the trade should be
// skipped.
func Quantity(in Inputs) Result {
	dist := math.Abs(in.EntryPrice - in.StopPrice)
	if floor := in.EntryPrice * in.MinDistancePct; dist < floor {
		dist = floor
	}
	if dist <= 0 || in.Equity <= 0 {
		return Result{}
	}

	riskAmt := in.Equity * in.RiskFraction
	qty := riskAmt / dist

	if in.MaxLeverage > 0 && in.EntryPrice > 0 {
		if maxQty := in.Equity * in.MaxLeverage / in.EntryPrice; qty > maxQty {
			qty = maxQty
		}
	}

	return Result{
		Quantity:   qty,
		StopDist:   dist,
		RiskAmount: riskAmt,
	}
}

// RR returns the reward/risk ratio of a planned trade.
func RR(entry, stop, takeProfit float64) float64 {
	risk := math.Abs(entry - stop)
	reward := math.Abs(takeProfit - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}
