// Package sim provides an in-memory stand-in for the trading terminal.
// It fills market orders at the current simulated quote and tracks open
// positions, which makes it usable both for the demo command and for
// exercising the trade executor in tests.
package sim

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rustyeddy/scalper/broker"
	"github.com/rustyeddy/scalper/internal/id"
	"github.com/rustyeddy/scalper/market"
)

var (
	ErrPositionNotFound = errors.New("position not found")
	ErrNoTick           = errors.New("no tick for symbol")
)

type Engine struct {
	mu        sync.Mutex
	ticks     *market.TickStore
	positions map[string]broker.Position

	// rejectNext forces the next order or close to fail, for tests.
	rejectNext bool
}

func NewEngine() *Engine {
	return &Engine{
		ticks:     market.NewTickStore(),
		positions: make(map[string]broker.Position),
	}
}

// SetTick publishes a new quote.
func (e *Engine) SetTick(t market.Tick) {
	e.ticks.Set(t)
}

// RejectNextOrder makes the next CreateMarketOrder or ClosePosition fail
// with a rejection, mimicking a terminal-side decline.
func (e *Engine) RejectNextOrder() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rejectNext = true
}

func (e *Engine) GetTick(ctx context.Context, symbol string) (market.Tick, error) {
	t, err := e.ticks.Get(symbol)
	if err != nil {
		return market.Tick{}, ErrNoTick
	}
	return t, nil
}

func (e *Engine) OpenPositions(ctx context.Context, symbol string) ([]broker.Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []broker.Position
	for _, p := range e.positions {
		if p.Symbol == symbol {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticket < out[j].Ticket })
	return out, nil
}

func (e *Engine) CreateMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderFill, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rejectNext {
		e.rejectNext = false
		return broker.OrderFill{}, &broker.RejectedError{RetCode: 10006, Comment: "rejected"}
	}

	tick, err := e.ticks.Get(req.Symbol)
	if err != nil {
		return broker.OrderFill{}, ErrNoTick
	}

	// Longs fill on ASK, shorts on BID.
	fillPrice := tick.Ask
	if req.Direction == broker.Sell {
		fillPrice = tick.Bid
	}

	ticket := id.New()
	e.positions[ticket] = broker.Position{
		Ticket:    ticket,
		Symbol:    req.Symbol,
		Direction: req.Direction,
		Volume:    req.Volume,
		PriceOpen: fillPrice,
		OpenTime:  tick.Time,
	}

	return broker.OrderFill{
		Ticket:    ticket,
		Symbol:    req.Symbol,
		Direction: req.Direction,
		Volume:    req.Volume,
		Price:     fillPrice,
		Time:      tick.Time,
	}, nil
}

func (e *Engine) ClosePosition(ctx context.Context, req broker.CloseRequest) (broker.OrderFill, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rejectNext {
		e.rejectNext = false
		return broker.OrderFill{}, &broker.RejectedError{RetCode: 10006, Comment: "rejected"}
	}

	pos, ok := e.positions[req.Ticket]
	if !ok {
		return broker.OrderFill{}, ErrPositionNotFound
	}

	tick, err := e.ticks.Get(pos.Symbol)
	if err != nil {
		return broker.OrderFill{}, ErrNoTick
	}

	// The offsetting order fills on the opposite side of the book:
	// longs close on BID, shorts close on ASK.
	fillPrice := tick.Bid
	if pos.Direction == broker.Sell {
		fillPrice = tick.Ask
	}

	delete(e.positions, req.Ticket)

	return broker.OrderFill{
		Ticket:    req.Ticket,
		Symbol:    pos.Symbol,
		Direction: pos.Direction.Opposite(),
		Volume:    pos.Volume,
		Price:     fillPrice,
		Time:      tick.Time,
	}, nil
}
