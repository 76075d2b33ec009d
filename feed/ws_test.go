package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

// candleServer upgrades one connection, checks the subscribe request and
// pushes the given raw messages.
func candleServer(t *testing.T, messages []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var sub subscription
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		assert.Equal(t, "subscribe", sub.Op)
		if assert.Len(t, sub.Args, 1) {
			assert.Equal(t, "candle15m", sub.Args[0]["channel"])
			assert.Equal(t, "BTC-USDT", sub.Args[0]["symbol"])
		}

		for _, m := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func candleMsg(t *testing.T, rows [][]string) string {
	t.Helper()
	var f frame
	f.Arg.Channel = "candle15m"
	f.Arg.Symbol = "BTC-USDT"
	f.Data = rows
	b, err := json.Marshal(f)
	require.NoError(t, err)
	return string(b)
}

func TestStreamEmitsOnlyConfirmedBars(t *testing.T) {
	msg := candleMsg(t, [][]string{
		{"1700000000000", "100", "110", "95", "105", "12.5", "0"}, // forming
		{"1700000000000", "100", "110", "95", "105", "12.5", "1"},
		{"1700000900000", "105", "106", "101", "102", "3", "1"},
	})
	srv := candleServer(t, []string{msg})
	defer srv.Close()

	ws := NewWS(WSConfig{
		URL:       wsURL(srv),
		Symbol:    "BTC-USDT",
		Timeframe: "15m",
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	bars := ws.Stream(ctx)

	first := <-bars
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), first.Time)
	assert.Equal(t, 100.0, first.Open)
	assert.Equal(t, 110.0, first.High)
	assert.Equal(t, 95.0, first.Low)
	assert.Equal(t, 105.0, first.Close)
	assert.Equal(t, 12.5, first.Volume)

	second := <-bars
	assert.Equal(t, time.UnixMilli(1700000900000).UTC(), second.Time)
	assert.Equal(t, 102.0, second.Close)
}

func TestStreamIgnoresOtherChannels(t *testing.T) {
	other := `{"arg":{"channel":"tickers","symbol":"BTC-USDT"},"data":[["x"]]}`
	want := candleMsg(t, [][]string{
		{"1700000000000", "1", "2", "0.5", "1.5", "9", "1"},
	})
	srv := candleServer(t, []string{other, want})
	defer srv.Close()

	ws := NewWS(WSConfig{URL: wsURL(srv), Symbol: "BTC-USDT", Timeframe: "15m"}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	bars := ws.Stream(ctx)

	got := <-bars
	assert.Equal(t, 1.5, got.Close)
}

func TestStreamClosesOnCancel(t *testing.T) {
	srv := candleServer(t, nil)
	defer srv.Close()

	ws := NewWS(WSConfig{URL: wsURL(srv), Symbol: "BTC-USDT", Timeframe: "15m"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	bars := ws.Stream(ctx)
	cancel()

	select {
	case _, open := <-bars:
		assert.False(t, open)
	case <-time.After(5 * time.Second):
		t.Fatal("channel did not close after cancel")
	}
}

func TestParseRowRejectsMalformed(t *testing.T) {
	cases := [][]string{
		{"1700000000000", "100", "110", "95", "105", "12.5"},        // too short
		{"1700000000000", "100", "110", "95", "105", "12.5", "0"},   // unconfirmed
		{"not-a-ts", "100", "110", "95", "105", "12.5", "1"},        // bad ts
		{"1700000000000", "100", "oops", "95", "105", "12.5", "1"},  // bad float
	}
	for _, row := range cases {
		_, ok := parseRow(row)
		assert.False(t, ok, "row %v", row)
	}
}
