// Package trade owns the trade lifecycle: mapping entry signals to
// orders, de-duplicating repeated signals, and applying the exit policy
// to positions it opened.
package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/scalper/broker"
	"github.com/rustyeddy/scalper/journal"
	"github.com/rustyeddy/scalper/risk"
	"github.com/rustyeddy/scalper/strategies"
)

// openTrade is the local shadow of a position this executor opened. The
// terminal does not report how long a position has been held, so the
// open time is remembered here. The shadow is a cache, never the truth:
// entries are dropped as soon as the terminal stops reporting the
// ticket.
type openTrade struct {
	openTime   time.Time
	entryPrice float64
}

type Config struct {
	Volume       float64 // order volume in lots
	Deviation    int     // max slippage, points
	ContractSize float64 // price-move multiplier per lot, e.g. 100000
	Exit         risk.ExitPolicy
}

type Executor struct {
	gw   broker.Gateway
	jrnl journal.Journal
	log  zerolog.Logger
	cfg  Config

	active     map[string]openTrade
	lastSignal strategies.Signal
	now        func() time.Time
}

func New(gw broker.Gateway, jrnl journal.Journal, cfg Config, log zerolog.Logger) *Executor {
	if jrnl == nil {
		jrnl = journal.Nop{}
	}
	return &Executor{
		gw:     gw,
		jrnl:   jrnl,
		log:    log.With().Str("component", "executor").Logger(),
		cfg:    cfg,
		active: make(map[string]openTrade),
		now:    time.Now,
	}
}

// Execute acts on an entry signal. Repeating the previously executed
// signal is a no-op, as is a signal matching the direction of an
// already-open position. An opposite open position is closed before the
// new one is opened.
func (e *Executor) Execute(ctx context.Context, sig strategies.Signal, symbol string) error {
	if sig != strategies.Buy && sig != strategies.Sell {
		e.log.Warn().Str("signal", string(sig)).Msg("ignoring invalid signal")
		return nil
	}

	if sig == e.lastSignal {
		e.log.Debug().Str("signal", string(sig)).Msg("ignoring signal, same as previous")
		return nil
	}

	direction := broker.Direction(sig)

	positions, err := e.gw.OpenPositions(ctx, symbol)
	if err != nil {
		return fmt.Errorf("query positions: %w", err)
	}

	if len(positions) > 0 {
		current := positions[0].Direction
		if current == direction {
			e.log.Debug().Str("signal", string(sig)).Msg("ignoring signal, already in matching position")
			return nil
		}
		e.log.Info().
			Str("from", string(current)).
			Str("to", string(direction)).
			Msg("reversing position")
		e.Close(ctx, symbol, CloseOptions{Direction: current, Reason: risk.ReasonReverse})
	}

	tick, err := e.gw.GetTick(ctx, symbol)
	if err != nil {
		return fmt.Errorf("get tick: %w", err)
	}

	price := tick.Ask
	if direction == broker.Sell {
		price = tick.Bid
	}

	fill, err := e.gw.CreateMarketOrder(ctx, broker.MarketOrderRequest{
		Symbol:    symbol,
		Direction: direction,
		Volume:    e.cfg.Volume,
		Price:     price,
		Deviation: e.cfg.Deviation,
	})
	if err != nil {
		e.log.Error().Err(err).Str("signal", string(sig)).Msg("order failed")
		return err
	}

	e.active[fill.Ticket] = openTrade{
		openTime:   e.now(),
		entryPrice: fill.Price,
	}
	e.lastSignal = sig

	if err := e.jrnl.RecordSignal(journal.SignalRecord{
		Time:   e.now(),
		Symbol: symbol,
		Signal: string(sig),
		Ticket: fill.Ticket,
	}); err != nil {
		e.log.Error().Err(err).Msg("record signal failed")
	}

	e.log.Info().
		Str("ticket", fill.Ticket).
		Str("direction", string(direction)).
		Float64("volume", fill.Volume).
		Float64("price", fill.Price).
		Msg("opened position")
	return nil
}

// Manage applies the exit policy to every open position the executor
// has a shadow entry for. Positions opened elsewhere are ignored.
// Called once per control-loop cycle.
func (e *Executor) Manage(ctx context.Context, symbol string) error {
	positions, err := e.gw.OpenPositions(ctx, symbol)
	if err != nil {
		return fmt.Errorf("query positions: %w", err)
	}

	e.reconcile(positions)
	if len(positions) == 0 {
		return nil
	}

	tick, err := e.gw.GetTick(ctx, symbol)
	if err != nil {
		return fmt.Errorf("get tick: %w", err)
	}

	for _, pos := range positions {
		shadow, ok := e.active[pos.Ticket]
		if !ok {
			continue
		}

		held := e.now().Sub(shadow.openTime)

		// Exit price is the side the offsetting order would fill on.
		current := tick.Bid
		if pos.Direction == broker.Sell {
			current = tick.Ask
		}
		profit := risk.Profit(pos.Direction, pos.PriceOpen, current, pos.Volume, e.cfg.ContractSize)

		verdict := e.cfg.Exit.Evaluate(held, profit)
		if !verdict.Close {
			continue
		}

		e.log.Info().
			Str("ticket", pos.Ticket).
			Dur("held", held).
			Float64("profit", profit).
			Str("reason", verdict.Reason).
			Msg("closing position")
		e.Close(ctx, symbol, CloseOptions{Ticket: pos.Ticket, Reason: verdict.Reason})
	}
	return nil
}

// reconcile drops shadow entries the terminal no longer reports. The
// terminal owns position truth; a vanished ticket means the position
// was closed out from under us.
func (e *Executor) reconcile(positions []broker.Position) {
	live := make(map[string]bool, len(positions))
	for _, p := range positions {
		live[p.Ticket] = true
	}
	for ticket := range e.active {
		if !live[ticket] {
			e.log.Debug().Str("ticket", ticket).Msg("dropping stale shadow entry")
			delete(e.active, ticket)
		}
	}
}

// CloseOptions filter which positions Close acts on. Zero values match
// everything for the symbol.
type CloseOptions struct {
	Ticket    string
	Direction broker.Direction
	Reason    string
}

// Close submits offsetting orders for the matching open positions. A
// failed close leaves the shadow entry intact so the position is
// re-evaluated on the next Manage cycle.
func (e *Executor) Close(ctx context.Context, symbol string, opts CloseOptions) error {
	if opts.Reason == "" {
		opts.Reason = risk.ReasonManual
	}

	positions, err := e.gw.OpenPositions(ctx, symbol)
	if err != nil {
		return fmt.Errorf("query positions: %w", err)
	}
	if len(positions) == 0 {
		e.log.Warn().Str("symbol", symbol).Msg("no open positions to close")
		return nil
	}

	tick, err := e.gw.GetTick(ctx, symbol)
	if err != nil {
		return fmt.Errorf("get tick: %w", err)
	}

	for _, pos := range positions {
		if opts.Ticket != "" && pos.Ticket != opts.Ticket {
			continue
		}
		if opts.Direction != "" && pos.Direction != opts.Direction {
			continue
		}

		closeDir := pos.Direction.Opposite()
		price := tick.Bid
		if closeDir == broker.Buy {
			price = tick.Ask
		}

		fill, err := e.gw.ClosePosition(ctx, broker.CloseRequest{
			Ticket:    pos.Ticket,
			Symbol:    symbol,
			Direction: closeDir,
			Volume:    pos.Volume,
			Price:     price,
			Deviation: e.cfg.Deviation,
		})
		if err != nil {
			e.log.Error().Err(err).Str("ticket", pos.Ticket).Msg("close failed, will retry next cycle")
			continue
		}

		openTime := pos.OpenTime
		if shadow, ok := e.active[pos.Ticket]; ok {
			openTime = shadow.openTime
		}
		profit := risk.Profit(pos.Direction, pos.PriceOpen, fill.Price, pos.Volume, e.cfg.ContractSize)

		if err := e.jrnl.RecordTrade(journal.TradeRecord{
			Ticket:     pos.Ticket,
			Symbol:     symbol,
			Direction:  string(pos.Direction),
			Volume:     pos.Volume,
			EntryPrice: pos.PriceOpen,
			ExitPrice:  fill.Price,
			OpenTime:   openTime,
			CloseTime:  fill.Time,
			Profit:     profit,
			Reason:     opts.Reason,
		}); err != nil {
			e.log.Error().Err(err).Str("ticket", pos.Ticket).Msg("record trade failed")
		}

		delete(e.active, pos.Ticket)

		e.log.Info().
			Str("ticket", pos.Ticket).
			Float64("exit", fill.Price).
			Float64("profit", profit).
			Str("reason", opts.Reason).
			Msg("closed position")
	}
	return nil
}
