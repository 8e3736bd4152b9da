// Package metatrader talks to a MetaTrader terminal through its REST
// bridge. The terminal owns order matching, margin and position truth;
// this client only shapes requests and decodes responses.
package metatrader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rustyeddy/scalper/broker"
	"github.com/rustyeddy/scalper/market"
)

// Timeframe identifiers accepted by the terminal.
const (
	M1  = "M1"  // 1 minute
	M2  = "M2"  // 2 minutes
	M5  = "M5"  // 5 minutes
	M10 = "M10" // 10 minutes
	M15 = "M15" // 15 minutes
	M30 = "M30" // 30 minutes
	H1  = "H1"  // 1 hour
	H4  = "H4"  // 4 hours
	H12 = "H12" // 12 hours
	D1  = "D1"  // 1 day
	W1  = "W1"  // 1 week
	MN1 = "MN1" // 1 month
)

var timeframes = map[string]bool{
	M1: true, M2: true, M5: true, M10: true, M15: true, M30: true,
	H1: true, H4: true, H12: true, D1: true, W1: true, MN1: true,
}

// ValidTimeframe reports whether the terminal knows the identifier.
func ValidTimeframe(tf string) bool {
	return timeframes[tf]
}

// Position type codes used by the terminal.
const (
	typeBuy  = 0
	typeSell = 1
)

// RetCodeDone is the terminal's return code for an executed deal.
const RetCodeDone = 10009

// Client is a MetaTrader bridge API client. The underlying HTTP session
// lives for the process; create one client at startup.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type apiCandle struct {
	Time       int64   `json:"time"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	TickVolume float64 `json:"tick_volume"`
}

type candlesResponse struct {
	Symbol    string      `json:"symbol"`
	Timeframe string      `json:"timeframe"`
	Candles   []apiCandle `json:"candles"`
}

// GetCandles fetches the most recent candles for a symbol/timeframe,
// oldest first.
func (c *Client) GetCandles(ctx context.Context, req broker.CandlesRequest) ([]market.Candle, error) {
	if req.Symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if !ValidTimeframe(req.Timeframe) {
		return nil, fmt.Errorf("invalid timeframe: %q", req.Timeframe)
	}
	count := req.Count
	if count <= 0 {
		count = 200
	}

	params := url.Values{}
	params.Set("symbol", req.Symbol)
	params.Set("timeframe", req.Timeframe)
	params.Set("count", strconv.Itoa(count))

	var resp candlesResponse
	if err := c.get(ctx, "/api/v1/candles", params, &resp); err != nil {
		return nil, err
	}

	candles := make([]market.Candle, 0, len(resp.Candles))
	for _, ac := range resp.Candles {
		candles = append(candles, market.Candle{
			Time:   time.Unix(ac.Time, 0).UTC(),
			Open:   ac.Open,
			High:   ac.High,
			Low:    ac.Low,
			Close:  ac.Close,
			Volume: ac.TickVolume,
		})
	}
	return candles, nil
}

type tickResponse struct {
	Symbol string  `json:"symbol"`
	Time   int64   `json:"time"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
}

// GetTick returns the latest bid/ask quote for a symbol.
func (c *Client) GetTick(ctx context.Context, symbol string) (market.Tick, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var resp tickResponse
	if err := c.get(ctx, "/api/v1/tick", params, &resp); err != nil {
		return market.Tick{}, err
	}

	return market.Tick{
		Symbol: resp.Symbol,
		Time:   time.Unix(resp.Time, 0).UTC(),
		Bid:    resp.Bid,
		Ask:    resp.Ask,
	}, nil
}

type apiPosition struct {
	Ticket    int64   `json:"ticket"`
	Symbol    string  `json:"symbol"`
	Type      int     `json:"type"`
	Volume    float64 `json:"volume"`
	PriceOpen float64 `json:"price_open"`
	Time      int64   `json:"time"`
}

type positionsResponse struct {
	Positions []apiPosition `json:"positions"`
}

// OpenPositions lists the open positions the terminal holds for a
// symbol. The result is the position truth; local state must be
// reconciled against it.
func (c *Client) OpenPositions(ctx context.Context, symbol string) ([]broker.Position, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var resp positionsResponse
	if err := c.get(ctx, "/api/v1/positions", params, &resp); err != nil {
		return nil, err
	}

	positions := make([]broker.Position, 0, len(resp.Positions))
	for _, p := range resp.Positions {
		direction := broker.Buy
		if p.Type == typeSell {
			direction = broker.Sell
		}
		positions = append(positions, broker.Position{
			Ticket:    strconv.FormatInt(p.Ticket, 10),
			Symbol:    p.Symbol,
			Direction: direction,
			Volume:    p.Volume,
			PriceOpen: p.PriceOpen,
			OpenTime:  time.Unix(p.Time, 0).UTC(),
		})
	}
	return positions, nil
}

type orderRequest struct {
	Action    string  `json:"action"`
	Symbol    string  `json:"symbol"`
	Volume    float64 `json:"volume"`
	Type      int     `json:"type"`
	Price     float64 `json:"price"`
	Deviation int     `json:"deviation"`
	Position  int64   `json:"position,omitempty"`
	Comment   string  `json:"comment,omitempty"`
}

type orderResponse struct {
	RetCode int     `json:"retcode"`
	Order   int64   `json:"order"`
	Price   float64 `json:"price"`
	Volume  float64 `json:"volume"`
	Comment string  `json:"comment"`
}

// CreateMarketOrder submits a deal at market price. A terminal return
// code other than done surfaces as *broker.RejectedError.
func (c *Client) CreateMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderFill, error) {
	orderType := typeBuy
	if req.Direction == broker.Sell {
		orderType = typeSell
	}

	body := orderRequest{
		Action:    "deal",
		Symbol:    req.Symbol,
		Volume:    req.Volume,
		Type:      orderType,
		Price:     req.Price,
		Deviation: req.Deviation,
	}

	resp, err := c.sendOrder(ctx, body)
	if err != nil {
		return broker.OrderFill{}, err
	}

	return broker.OrderFill{
		Ticket:    strconv.FormatInt(resp.Order, 10),
		Symbol:    req.Symbol,
		Direction: req.Direction,
		Volume:    resp.Volume,
		Price:     resp.Price,
		Time:      time.Now().UTC(),
	}, nil
}

// ClosePosition submits the offsetting deal for an open ticket.
func (c *Client) ClosePosition(ctx context.Context, req broker.CloseRequest) (broker.OrderFill, error) {
	ticket, err := strconv.ParseInt(req.Ticket, 10, 64)
	if err != nil {
		return broker.OrderFill{}, fmt.Errorf("invalid ticket %q: %w", req.Ticket, err)
	}

	orderType := typeBuy
	if req.Direction == broker.Sell {
		orderType = typeSell
	}

	body := orderRequest{
		Action:    "deal",
		Symbol:    req.Symbol,
		Volume:    req.Volume,
		Type:      orderType,
		Price:     req.Price,
		Deviation: req.Deviation,
		Position:  ticket,
		Comment:   "Closing position",
	}

	resp, err := c.sendOrder(ctx, body)
	if err != nil {
		return broker.OrderFill{}, err
	}

	return broker.OrderFill{
		Ticket:    req.Ticket,
		Symbol:    req.Symbol,
		Direction: req.Direction,
		Volume:    resp.Volume,
		Price:     resp.Price,
		Time:      time.Now().UTC(),
	}, nil
}

func (c *Client) sendOrder(ctx context.Context, body orderRequest) (orderResponse, error) {
	var resp orderResponse
	if err := c.post(ctx, "/api/v1/order/send", body, &resp); err != nil {
		return orderResponse{}, err
	}
	if resp.RetCode != RetCodeDone {
		return orderResponse{}, &broker.RejectedError{RetCode: resp.RetCode, Comment: resp.Comment}
	}
	return resp, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("bridge returned %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
