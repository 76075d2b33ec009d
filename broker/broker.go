// Package broker defines the live exchange trading contract. The engine
// only requires that these primitives exist and tolerate a retry;
// retry/backoff policy belongs to the caller.
package broker

import "context"

// OrderRequest mirrors sim.OrderSpec at the wire level.
type OrderRequest struct {
	Symbol       string  `json:"symbol"`
	Side         string  `json:"side"` // "buy" or "sell"
	Kind         string  `json:"kind"` // "market", "limit" or "stop"
	Amount       float64 `json:"amount"`
	LimitPrice   float64 `json:"limit_price,omitempty"`
	TriggerPrice float64 `json:"trigger_price,omitempty"`
	StopLoss     float64 `json:"stop_loss,omitempty"`
	TakeProfit   float64 `json:"take_profit,omitempty"`
}

// Order is an exchange-side order as reported back.
type Order struct {
	ID     string  `json:"id"`
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Kind   string  `json:"kind"`
	Amount float64 `json:"amount"`
	Status string  `json:"status"`
}

// Position is an exchange-side open position.
type Position struct {
	Symbol        string  `json:"symbol"`
	Side          string  `json:"side"`
	Quantity      float64 `json:"quantity"`
	EntryPrice    float64 `json:"entry_price"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
}

// Client is the minimal trading surface the live loop needs.
type Client interface {
	PlaceOrder(ctx context.Context, req OrderRequest) (Order, error)
	CancelOrder(ctx context.Context, symbol, orderID string) error
	OpenOrders(ctx context.Context, symbol string) ([]Order, error)
	Positions(ctx context.Context, symbol string) ([]Position, error)
	Balance(ctx context.Context) (float64, error)
}
