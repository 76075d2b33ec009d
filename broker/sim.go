package broker

import (
	"context"
	"fmt"

	"github.com/rustyeddy/cryptosim/sim"
)

// Sim exposes a virtual exchange engine through the Client contract, so
// code written against the live surface runs unchanged in simulation.
type Sim struct {
	engine *sim.Engine
}

func NewSim(engine *sim.Engine) *Sim {
	return &Sim{engine: engine}
}

func (s *Sim) PlaceOrder(ctx context.Context, req OrderRequest) (Order, error) {
	side := sim.Buy
	if req.Side == "sell" {
		side = sim.Sell
	}

	var kind sim.Kind
	switch req.Kind {
	case "", "market":
		kind = sim.Market
	case "limit":
		kind = sim.Limit
	case "stop":
		kind = sim.Stop
	default:
		return Order{}, fmt.Errorf("place order: unknown kind %q", req.Kind)
	}

	o, err := s.engine.CreateOrder(sim.OrderSpec{
		Symbol:       req.Symbol,
		Side:         side,
		Kind:         kind,
		Amount:       req.Amount,
		LimitPrice:   req.LimitPrice,
		TriggerPrice: req.TriggerPrice,
		StopLoss:     req.StopLoss,
		TakeProfit:   req.TakeProfit,
	})
	if err != nil {
		return Order{}, err
	}
	return toOrder(o), nil
}

func (s *Sim) CancelOrder(ctx context.Context, symbol, orderID string) error {
	if !s.engine.CancelOrder(orderID) {
		return fmt.Errorf("cancel order: %q not open", orderID)
	}
	return nil
}

func (s *Sim) OpenOrders(ctx context.Context, symbol string) ([]Order, error) {
	var out []Order
	for _, o := range s.engine.OpenOrders() {
		if symbol != "" && o.Symbol != symbol {
			continue
		}
		out = append(out, toOrder(o))
	}
	return out, nil
}

func (s *Sim) Positions(ctx context.Context, symbol string) ([]Position, error) {
	p, ok := s.engine.Position(symbol)
	if !ok {
		return nil, nil
	}

	side := "long"
	if p.Side == sim.Short {
		side = "short"
	}
	return []Position{{
		Symbol:        p.Symbol,
		Side:          side,
		Quantity:      p.Quantity,
		EntryPrice:    p.EntryPrice,
		UnrealizedPnL: p.UnrealizedPnL,
	}}, nil
}

func (s *Sim) Balance(ctx context.Context) (float64, error) {
	return s.engine.Account().Balance, nil
}

func toOrder(o sim.Order) Order {
	return Order{
		ID:     o.ID,
		Symbol: o.Symbol,
		Side:   o.Side.String(),
		Kind:   o.Kind.String(),
		Amount: o.Amount,
		Status: o.Status.String(),
	}
}
