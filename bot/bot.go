// Package bot runs the polling control loop: fetch candles, evaluate
// the strategy, act on the signal, manage held positions, sleep,
// repeat. The loop is a single actor, so cycles never overlap.
package bot

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/scalper/broker"
	"github.com/rustyeddy/scalper/strategies"
)

// Trader is the trade lifecycle surface the loop drives each cycle.
type Trader interface {
	Execute(ctx context.Context, sig strategies.Signal, symbol string) error
	Manage(ctx context.Context, symbol string) error
}

type Config struct {
	Symbol      string
	Timeframe   string
	CandleCount int
	Poll        time.Duration // normal cycle interval
	Backoff     time.Duration // interval after a failed cycle
}

type Bot struct {
	candles  broker.CandleSource
	strategy strategies.Strategy
	trader   Trader
	log      zerolog.Logger
	cfg      Config
}

func New(candles broker.CandleSource, strategy strategies.Strategy, trader Trader, cfg Config, log zerolog.Logger) *Bot {
	return &Bot{
		candles:  candles,
		strategy: strategy,
		trader:   trader,
		log:      log.With().Str("component", "bot").Logger(),
		cfg:      cfg,
	}
}

// Run polls until the context is cancelled. Shutdown is honored between
// cycles, never in the middle of one. A cycle that fails for an
// unclassified reason switches the loop to the backoff interval for one
// sleep; the loop itself never terminates on error.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info().
		Str("symbol", b.cfg.Symbol).
		Str("timeframe", b.cfg.Timeframe).
		Dur("poll", b.cfg.Poll).
		Msg("starting trading loop")

	for {
		if err := ctx.Err(); err != nil {
			b.log.Info().Msg("shutting down trading loop")
			return err
		}

		interval := b.cfg.Poll
		if err := b.cycle(ctx); err != nil {
			b.log.Error().Err(err).Dur("backoff", b.cfg.Backoff).Msg("cycle failed, backing off")
			interval = b.cfg.Backoff
		}

		if err := wait(ctx, interval); err != nil {
			b.log.Info().Msg("shutting down trading loop")
			return err
		}
	}
}

// cycle is one fetch-decide-act pass. Missing or unusable market data
// is "no decision this cycle", not an error, and a declined order is
// logged without retry; only unclassified failures propagate and
// trigger the backoff interval.
func (b *Bot) cycle(ctx context.Context) error {
	candles, err := b.candles.GetCandles(ctx, broker.CandlesRequest{
		Symbol:    b.cfg.Symbol,
		Timeframe: b.cfg.Timeframe,
		Count:     b.cfg.CandleCount,
	})
	if err != nil {
		b.log.Warn().Err(err).Msg("no market data this cycle")
		return nil
	}
	if len(candles) == 0 {
		b.log.Warn().Str("symbol", b.cfg.Symbol).Msg("empty candle series")
		return nil
	}

	sig := b.strategy.OnCandles(candles)
	b.log.Debug().Str("signal", string(sig)).Int("candles", len(candles)).Msg("strategy evaluated")

	if sig == strategies.Buy || sig == strategies.Sell {
		if err := b.trader.Execute(ctx, sig, b.cfg.Symbol); err != nil {
			// A rejected order is final: the terminal said no, nothing
			// was opened, and the next cycle decides fresh. Anything
			// else is unclassified and propagates to trigger the
			// backoff interval.
			var rejected *broker.RejectedError
			if !errors.As(err, &rejected) {
				return err
			}
			b.log.Warn().
				Int("retcode", rejected.RetCode).
				Str("comment", rejected.Comment).
				Msg("order rejected by terminal")
		}
	}

	return b.trader.Manage(ctx, b.cfg.Symbol)
}

// wait sleeps for the interval or until the context is cancelled.
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
