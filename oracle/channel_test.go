package oracle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/cryptosim/market"
	"github.com/rustyeddy/cryptosim/sim"
)

func trendingBars(n int, up bool) []market.Bar {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, n)
	for i := range bars {
		px := 100.0 + float64(i)
		if !up {
			px = 100.0 - float64(i)
		}
		bars[i] = market.Bar{
			Time:  start.Add(time.Duration(i) * time.Hour),
			Open:  px,
			High:  px + 1,
			Low:   px - 1,
			Close: px + 0.5,
		}
	}
	return bars
}

func TestChannelApprovesLongBreakout(t *testing.T) {
	c := NewChannel(ChannelConfig{Lookback: 10, RR: 2})

	d, err := c.Evaluate(context.Background(), Request{
		Symbol:  "BTC-USDT",
		Trading: trendingBars(20, true),
		Status:  NoPosition,
	})
	require.NoError(t, err)
	require.Equal(t, Approve, d.Action)
	assert.Equal(t, sim.Buy, d.Side)
	assert.Greater(t, d.Entry, d.StopLoss)
	assert.InDelta(t, d.Entry+2*(d.Entry-d.StopLoss), d.TakeProfit, 1e-9)
}

func TestChannelApprovesShortBreakdown(t *testing.T) {
	c := NewChannel(ChannelConfig{Lookback: 10})

	d, err := c.Evaluate(context.Background(), Request{
		Trading: trendingBars(20, false),
		Status:  NoPosition,
	})
	require.NoError(t, err)
	require.Equal(t, Approve, d.Action)
	assert.Equal(t, sim.Sell, d.Side)
	assert.Less(t, d.Entry, d.StopLoss)
}

func TestChannelHoldsWithoutData(t *testing.T) {
	c := NewChannel(ChannelConfig{Lookback: 50})

	d, err := c.Evaluate(context.Background(), Request{Trading: trendingBars(10, true)})
	require.NoError(t, err)
	assert.Equal(t, Hold, d.Action)
	assert.NotEmpty(t, d.Reason)
}

func TestChannelHoldsWhenPositioned(t *testing.T) {
	c := NewChannel(ChannelConfig{Lookback: 10})

	d, err := c.Evaluate(context.Background(), Request{
		Trading: trendingBars(20, true),
		Status:  LongPosition,
	})
	require.NoError(t, err)
	assert.Equal(t, Hold, d.Action)
}

func TestChannelReviewCancelsDriftedOrder(t *testing.T) {
	c := NewChannel(ChannelConfig{Lookback: 10, Tolerance: 0.005})
	bars := trendingBars(20, true)
	hi, _ := channel(bars, 10)

	v, err := c.Review(context.Background(), ReviewRequest{
		Trading: bars,
		Order:   sim.Order{Side: sim.Buy, Kind: sim.Stop, TriggerPrice: hi},
	})
	require.NoError(t, err)
	assert.Equal(t, Keep, v)

	v, err = c.Review(context.Background(), ReviewRequest{
		Trading: bars,
		Order:   sim.Order{Side: sim.Buy, Kind: sim.Stop, TriggerPrice: hi * 0.9},
	})
	require.NoError(t, err)
	assert.Equal(t, Cancel, v)
}

func TestByName(t *testing.T) {
	o, err := ByName("noop")
	require.NoError(t, err)
	assert.IsType(t, Noop{}, o)

	o, err = ByName("channel")
	require.NoError(t, err)
	assert.IsType(t, &Channel{}, o)

	o, err = ByName("emacross")
	require.NoError(t, err)
	assert.IsType(t, &EMACross{}, o)

	_, err = ByName("quantum")
	assert.Error(t, err)
}
