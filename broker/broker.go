package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/scalper/market"
)

// Direction is the side of a position or order.
type Direction string

const (
	Buy  Direction = "buy"
	Sell Direction = "sell"
)

// Opposite returns the offsetting direction.
func (d Direction) Opposite() Direction {
	if d == Buy {
		return Sell
	}
	return Buy
}

// Position is an open exposure as reported by the terminal. The terminal
// is the source of truth for positions; callers must not assume a ticket
// stays open between calls.
type Position struct {
	Ticket    string
	Symbol    string
	Direction Direction
	Volume    float64
	PriceOpen float64
	OpenTime  time.Time
}

// MarketOrderRequest opens a position of Volume in Direction at Price.
// Deviation is the maximum accepted slippage in points.
type MarketOrderRequest struct {
	Symbol    string
	Direction Direction
	Volume    float64
	Price     float64
	Deviation int
}

// CloseRequest submits the offsetting order for an open position.
type CloseRequest struct {
	Ticket    string
	Symbol    string
	Direction Direction // direction of the offsetting order
	Volume    float64
	Price     float64
	Deviation int
}

// OrderFill is the terminal's answer to an accepted order.
type OrderFill struct {
	Ticket    string
	Symbol    string
	Direction Direction
	Volume    float64
	Price     float64
	Time      time.Time
}

// CandlesRequest fetches the most recent Count candles for a symbol.
// Timeframe identifiers are terminal-specific (e.g. "M1", "H1").
type CandlesRequest struct {
	Symbol    string
	Timeframe string
	Count     int
}

// Gateway is the execution surface of the trading terminal.
type Gateway interface {
	GetTick(ctx context.Context, symbol string) (market.Tick, error)
	OpenPositions(ctx context.Context, symbol string) ([]Position, error)
	CreateMarketOrder(ctx context.Context, req MarketOrderRequest) (OrderFill, error)
	ClosePosition(ctx context.Context, req CloseRequest) (OrderFill, error)
}

// CandleSource supplies historical candles for a symbol/timeframe.
type CandleSource interface {
	GetCandles(ctx context.Context, req CandlesRequest) ([]market.Candle, error)
}

// RejectedError is returned when the terminal declines an order.
type RejectedError struct {
	RetCode int
	Comment string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("order rejected: retcode=%d comment=%q", e.RetCode, e.Comment)
}
