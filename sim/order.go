package sim

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidOrder is returned when an order spec fails creation-time
// validation. It is the caller's responsibility to size orders correctly;
// nothing past creation can fail inside the engine.
var ErrInvalidOrder = errors.New("invalid order")

// Side of an order: +1 buys, -1 sells. Position sides reuse the same
// values as Long/Short.
type Side int8

const (
	Buy  Side = +1
	Sell Side = -1

	Long  Side = +1
	Short Side = -1
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// Kind of an order.
type Kind int8

const (
	Market Kind = iota
	Limit
	Stop
)

func (k Kind) String() string {
	switch k {
	case Market:
		return "market"
	case Limit:
		return "limit"
	case Stop:
		return "stop"
	}
	return "unknown"
}

// OrderStatus is the lifecycle state of an order. An open order is owned
// by the engine; filled and canceled orders are immutable history.
type OrderStatus int8

const (
	Open OrderStatus = iota
	Filled
	Canceled
)

func (s OrderStatus) String() string {
	switch s {
	case Open:
		return "open"
	case Filled:
		return "filled"
	case Canceled:
		return "canceled"
	}
	return "unknown"
}

// OrderSpec is the caller-supplied request for a new order. A zero
// StopLoss or TakeProfit means none.
type OrderSpec struct {
	Symbol       string
	Side         Side
	Kind         Kind
	Amount       float64
	LimitPrice   float64 // limit orders
	TriggerPrice float64 // stop orders
	StopLoss     float64
	TakeProfit   float64
}

func (s OrderSpec) validate() error {
	if s.Amount <= 0 {
		return fmt.Errorf("%w: amount %v must be positive", ErrInvalidOrder, s.Amount)
	}
	if s.Kind == Limit && s.LimitPrice <= 0 {
		return fmt.Errorf("%w: limit order needs a limit price", ErrInvalidOrder)
	}
	if s.Kind == Stop && s.TriggerPrice <= 0 {
		return fmt.Errorf("%w: stop order needs a trigger price", ErrInvalidOrder)
	}
	return nil
}

// Order is a pending or settled instruction to trade.
type Order struct {
	ID           string
	Symbol       string
	Side         Side
	Kind         Kind
	Amount       float64
	LimitPrice   float64
	TriggerPrice float64
	StopLoss     float64
	TakeProfit   float64
	Status       OrderStatus
	CreatedAt    time.Time
}
