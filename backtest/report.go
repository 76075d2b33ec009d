package backtest

import (
	"encoding/json"
	"io"
	"time"

	"github.com/rustyeddy/cryptosim/journal"
	"github.com/rustyeddy/cryptosim/sim"
)

// Result is the aggregate outcome of a run.
type Result struct {
	Symbol         string    `json:"symbol"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Bars           int       `json:"bars"`
	InitialBalance float64   `json:"initial_balance"`
	FinalEquity    float64   `json:"final_equity"`
	TotalReturnPct float64   `json:"total_return_pct"`
	Trades         int       `json:"trades"`
	Wins           int       `json:"wins"`
	Losses         int       `json:"losses"`
	WinRatePct     float64   `json:"win_rate_pct"`
	ProfitFactor   float64   `json:"profit_factor"`
	MaxDrawdownPct float64   `json:"max_drawdown_pct"`
	Bankrupt       bool      `json:"bankrupt"`
}

// Report is the full machine-readable record of a run: result, config
// echo, trade history and equity curve. Rendering is someone else's job.
type Report struct {
	Result       Result                `json:"result"`
	Options      ReportOptions         `json:"options"`
	TradeHistory []sim.Trade           `json:"trade_history"`
	EquityCurve  []journal.EquityPoint `json:"equity_curve"`
}

// ReportOptions echoes the run configuration with durations rendered as
// strings so the output stays readable to downstream consumers.
type ReportOptions struct {
	Symbol          string  `json:"symbol"`
	Interval        string  `json:"interval"`
	TradingLookback int     `json:"trading_lookback"`
	ContextInterval string  `json:"context_interval,omitempty"`
	ContextLookback int     `json:"context_lookback,omitempty"`
	TrendInterval   string  `json:"trend_interval,omitempty"`
	TrendLookback   int     `json:"trend_lookback,omitempty"`
	RiskFraction    float64 `json:"risk_fraction"`
	MinDistancePct  float64 `json:"min_distance_pct"`
	MaxLeverage     float64 `json:"max_leverage"`
}

func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func (d *Driver) report(start, end time.Time) Report {
	acct := d.engine.Account()
	trades := d.engine.History()

	wins, losses := 0, 0
	grossWin, grossLoss := 0.0, 0.0
	for _, t := range trades {
		switch {
		case t.RealizedPnL > 0:
			wins++
			grossWin += t.RealizedPnL
		case t.RealizedPnL < 0:
			losses++
			grossLoss += -t.RealizedPnL
		}
	}

	winRate := 0.0
	if len(trades) > 0 {
		winRate = float64(wins) / float64(len(trades)) * 100
	}

	// With no losing trades the factor is unbounded; report the gross
	// win instead so the JSON stays encodable.
	pf := 0.0
	switch {
	case grossLoss > 0:
		pf = grossWin / grossLoss
	case grossWin > 0:
		pf = grossWin
	}

	totalReturn := 0.0
	if acct.InitialBalance > 0 {
		totalReturn = (acct.Equity - acct.InitialBalance) / acct.InitialBalance * 100
	}

	return Report{
		Result: Result{
			Symbol:         d.opts.Symbol,
			Start:          start,
			End:            end,
			Bars:           d.seen,
			InitialBalance: acct.InitialBalance,
			FinalEquity:    acct.Equity,
			TotalReturnPct: totalReturn,
			Trades:         len(trades),
			Wins:           wins,
			Losses:         losses,
			WinRatePct:     winRate,
			ProfitFactor:   pf,
			MaxDrawdownPct: d.maxDD,
			Bankrupt:       d.broke,
		},
		Options:      reportOptions(d.opts),
		TradeHistory: trades,
		EquityCurve:  d.curve,
	}
}

func reportOptions(o Options) ReportOptions {
	out := ReportOptions{
		Symbol:          o.Symbol,
		Interval:        o.Interval.String(),
		TradingLookback: o.TradingLookback,
		ContextLookback: o.ContextLookback,
		TrendLookback:   o.TrendLookback,
		RiskFraction:    o.RiskFraction,
		MinDistancePct:  o.MinDistancePct,
		MaxLeverage:     o.MaxLeverage,
	}
	if o.ContextInterval > 0 {
		out.ContextInterval = o.ContextInterval.String()
	}
	if o.TrendInterval > 0 {
		out.TrendInterval = o.TrendInterval.String()
	}
	return out
}
