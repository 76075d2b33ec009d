// Package feed streams closed candles from an exchange websocket. Only
// confirmed bars are emitted, so downstream never analyzes a bar that is
// still accumulating ticks.
package feed

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rustyeddy/cryptosim/market"
)

// WSConfig configures a websocket candle subscription.
type WSConfig struct {
	URL       string
	Symbol    string
	Timeframe string // "1m", "15m", ...

	PingInterval   time.Duration // default 20s, exchanges drop silent connections
	ReconnectDelay time.Duration // default 1s
}

// WS is a reconnecting websocket candle feed.
type WS struct {
	cfg    WSConfig
	dialer *websocket.Dialer
	log    *zap.Logger
}

func NewWS(cfg WSConfig, log *zap.Logger) *WS {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 20 * time.Second
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &WS{
		cfg:    cfg,
		dialer: websocket.DefaultDialer,
		log:    log,
	}
}

// subscription is the subscribe request sent after dialing.
type subscription struct {
	Op   string            `json:"op"`
	Args []map[string]string `json:"args"`
}

// frame is one inbound candle message. Data rows are string arrays:
// [ts_ms, open, high, low, close, volume, ..., confirm] with confirm "1"
// once the candle is closed.
type frame struct {
	Arg struct {
		Channel string `json:"channel"`
		Symbol  string `json:"symbol"`
	} `json:"arg"`
	Data [][]string `json:"data"`
}

// Stream dials the exchange and emits confirmed bars until ctx is
// canceled. Connection drops trigger a re-dial after ReconnectDelay; the
// channel closes only on cancellation.
func (w *WS) Stream(ctx context.Context) <-chan market.Bar {
	out := make(chan market.Bar)

	go func() {
		defer close(out)
		channel := "candle" + w.cfg.Timeframe

		for {
			if ctx.Err() != nil {
				return
			}

			conn, _, err := w.dialer.DialContext(ctx, w.cfg.URL, nil)
			if err != nil {
				w.log.Warn("ws dial failed", zap.String("url", w.cfg.URL), zap.Error(err))
				if !sleepCtx(ctx, w.cfg.ReconnectDelay) {
					return
				}
				continue
			}

			sub := subscription{
				Op:   "subscribe",
				Args: []map[string]string{{"channel": channel, "symbol": w.cfg.Symbol}},
			}
			if err := conn.WriteJSON(sub); err != nil {
				w.log.Warn("ws subscribe failed", zap.Error(err))
				conn.Close()
				continue
			}

			w.readLoop(ctx, conn, channel, out)
			conn.Close()

			if !sleepCtx(ctx, w.cfg.ReconnectDelay) {
				return
			}
		}
	}()

	return out
}

func (w *WS) readLoop(ctx context.Context, conn *websocket.Conn, channel string, out chan<- market.Bar) {
	stopPing := make(chan struct{})
	defer close(stopPing)

	go func() {
		t := time.NewTicker(w.cfg.PingInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				conn.Close() // unblocks ReadMessage
				return
			case <-stopPing:
				return
			case <-t.C:
				_ = conn.WriteJSON(map[string]string{"op": "ping"})
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				w.log.Warn("ws read failed", zap.Error(err))
			}
			return
		}

		var f frame
		if err := json.Unmarshal(msg, &f); err != nil {
			continue
		}
		if f.Arg.Channel != channel || len(f.Data) == 0 {
			continue
		}

		for _, row := range f.Data {
			bar, ok := parseRow(row)
			if !ok {
				continue
			}
			select {
			case out <- bar:
			case <-ctx.Done():
				return
			}
		}
	}
}

// parseRow decodes a candle row, rejecting unconfirmed candles and
// malformed fields.
func parseRow(row []string) (market.Bar, bool) {
	if len(row) < 7 {
		return market.Bar{}, false
	}
	if row[len(row)-1] != "1" {
		return market.Bar{}, false // still forming
	}

	ms, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return market.Bar{}, false
	}

	var v [5]float64
	for i := 0; i < 5; i++ {
		v[i], err = strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return market.Bar{}, false
		}
	}

	return market.Bar{
		Time:   time.UnixMilli(ms).UTC(),
		Open:   v[0],
		High:   v[1],
		Low:    v[2],
		Close:  v[3],
		Volume: v[4],
	}, true
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
