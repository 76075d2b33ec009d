package journal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTradeOrg(t *testing.T) {
	t.Parallel()

	entry := time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)
	exit := time.Date(2024, 3, 15, 14, 20, 30, 0, time.UTC)

	trade := TradeRecord{
		TradeID:     "trade-12345678-abcd",
		Symbol:      "BTC-USDT",
		Side:        "long",
		Quantity:    0.5,
		EntryPrice:  42000,
		ExitPrice:   43500,
		EntryTime:   entry,
		ExitTime:    exit,
		RealizedPnL: 750.00,
		ReturnPct:   3.57,
		Reason:      "Take Profit",
	}

	result := FormatTradeOrg(trade)

	// Check heading
	assert.Contains(t, result, "** Trade: long BTC-USDT (trade-12)")

	// Check properties drawer
	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":TRADE_ID: trade-12345678-abcd")
	assert.Contains(t, result, ":SYMBOL: BTC-USDT")
	assert.Contains(t, result, ":SIDE: long")
	assert.Contains(t, result, ":QUANTITY: 0.50000000")
	assert.Contains(t, result, ":ENTRY_PRICE: 42000.00000000")
	assert.Contains(t, result, ":EXIT_PRICE: 43500.00000000")
	assert.Contains(t, result, ":ENTRY_TIME: 2024-03-15T10:30:45Z")
	assert.Contains(t, result, ":EXIT_TIME: 2024-03-15T14:20:30Z")
	assert.Contains(t, result, ":REALIZED_PNL: 750.00")
	assert.Contains(t, result, ":RETURN_PCT: 3.57")
	assert.Contains(t, result, ":REASON: Take Profit")
	assert.Contains(t, result, ":END:")

	// Check narrative sections
	assert.Contains(t, result, "*** Thesis")
	assert.Contains(t, result, "*** Execution")
	assert.Contains(t, result, "*** Review")
}

func TestFormatTradeOrgShortID(t *testing.T) {
	t.Parallel()

	trade := TradeRecord{
		TradeID: "short",
		Symbol:  "ETH-USDT",
		Side:    "short",
	}

	result := FormatTradeOrg(trade)
	assert.Contains(t, result, "** Trade: short ETH-USDT (short)")
}

func TestFormatTradesOrg(t *testing.T) {
	t.Parallel()

	trades := []TradeRecord{
		{TradeID: "aaaaaaaaaaaa", Symbol: "BTC-USDT", Side: "long"},
		{TradeID: "bbbbbbbbbbbb", Symbol: "BTC-USDT", Side: "short"},
	}

	result := FormatTradesOrg(trades)
	assert.Contains(t, result, "(aaaaaaaa)")
	assert.Contains(t, result, "(bbbbbbbb)")
	assert.Equal(t, 2, strings.Count(result, "** Trade:"))
}

func TestFormatTradesOrgEmpty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", FormatTradesOrg(nil))
}
