// Package oracle defines the decision contract the simulation driver
// consumes. How a decision is produced is a black box: an implementation
// may be a rule set, a remote service or anything else that satisfies the
// interface.
package oracle

import (
	"context"

	"github.com/rustyeddy/cryptosim/market"
	"github.com/rustyeddy/cryptosim/sim"
)

// PositionStatus tells the oracle what the account currently holds.
type PositionStatus int8

const (
	NoPosition PositionStatus = iota
	LongPosition
	ShortPosition
)

func (s PositionStatus) String() string {
	switch s {
	case LongPosition:
		return "long"
	case ShortPosition:
		return "short"
	}
	return "none"
}

// Request is the market context handed to the oracle when the driver is
// looking for a signal. Trading is the native-resolution window; Context
// and Trend are resampled higher-timeframe windows.
type Request struct {
	Symbol       string
	Trading      []market.Bar
	Context      []market.Bar
	Trend        []market.Bar
	Equity       float64
	RiskFraction float64
	Status       PositionStatus
}

// Action is the tag of a Decision.
type Action int8

const (
	Hold Action = iota
	Approve
)

// Decision is the oracle's verdict on a signal request. Entry, StopLoss
// and TakeProfit are meaningful only when Action is Approve; Reason
// explains a Hold.
type Decision struct {
	Action     Action
	Side       sim.Side
	Entry      float64
	StopLoss   float64
	TakeProfit float64
	Reason     string
}

// HoldBecause is a convenience constructor for a Hold decision.
func HoldBecause(reason string) Decision {
	return Decision{Action: Hold, Reason: reason}
}

// ReviewRequest asks the oracle whether a still-pending order is worth
// keeping.
type ReviewRequest struct {
	Symbol  string
	Trading []market.Bar
	Order   sim.Order
}

// Verdict on a pending order.
type Verdict int8

const (
	Keep Verdict = iota
	Cancel
)

// Oracle is the external decision-maker. Evaluate is called while the
// driver waits for a signal; Review while an order is pending. Both may
// be I/O-bound; the driver issues one in-flight call at a time and maps
// errors to a safe no-action default.
type Oracle interface {
	Evaluate(ctx context.Context, req Request) (Decision, error)
	Review(ctx context.Context, req ReviewRequest) (Verdict, error)
}
