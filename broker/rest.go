package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// REST talks to an exchange gateway exposing the trading primitives as
// JSON over HTTP. Authentication is a bearer token; endpoints are
// idempotent enough to retry on the caller's terms.
type REST struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewREST(baseURL, token string) *REST {
	return &REST{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *REST) PlaceOrder(ctx context.Context, req OrderRequest) (Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodPost, "/api/v1/orders", nil, req, &out); err != nil {
		return Order{}, fmt.Errorf("place order: %w", err)
	}
	return out, nil
}

func (c *REST) CancelOrder(ctx context.Context, symbol, orderID string) error {
	path := "/api/v1/orders/" + url.PathEscape(orderID)
	q := url.Values{"symbol": {symbol}}
	if err := c.do(ctx, http.MethodDelete, path, q, nil, nil); err != nil {
		return fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	return nil
}

func (c *REST) OpenOrders(ctx context.Context, symbol string) ([]Order, error) {
	var out []Order
	q := url.Values{"symbol": {symbol}, "status": {"open"}}
	if err := c.do(ctx, http.MethodGet, "/api/v1/orders", q, nil, &out); err != nil {
		return nil, fmt.Errorf("open orders: %w", err)
	}
	return out, nil
}

func (c *REST) Positions(ctx context.Context, symbol string) ([]Position, error) {
	var out []Position
	q := url.Values{"symbol": {symbol}}
	if err := c.do(ctx, http.MethodGet, "/api/v1/positions", q, nil, &out); err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	return out, nil
}

func (c *REST) Balance(ctx context.Context) (float64, error) {
	var out struct {
		Balance float64 `json:"balance"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/balance", nil, nil, &out); err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	return out.Balance, nil
}

func (c *REST) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
