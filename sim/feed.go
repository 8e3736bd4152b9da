package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rustyeddy/scalper/broker"
	"github.com/rustyeddy/scalper/market"
)

// Feed synthesizes a candle series with a random walk and keeps the
// engine's quote pinned to the latest close. Each GetCandles call
// advances the walk by one candle, so a polling loop sees a fresh bar
// per cycle.
type Feed struct {
	mu      sync.Mutex
	engine  *Engine
	rng     *rand.Rand
	spread  float64
	step    float64
	candles []market.Candle
}

// NewFeed seeds a walk starting at `start` price. A fixed seed gives a
// reproducible demo run.
func NewFeed(engine *Engine, start, step, spread float64, seed int64) *Feed {
	return &Feed{
		engine: engine,
		rng:    rand.New(rand.NewSource(seed)),
		spread: spread,
		step:   step,
		candles: []market.Candle{{
			Time:  time.Now().UTC(),
			Open:  start,
			High:  start,
			Low:   start,
			Close: start,
		}},
	}
}

func (f *Feed) GetCandles(ctx context.Context, req broker.CandlesRequest) ([]market.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	last := f.candles[len(f.candles)-1]
	open := last.Close
	close := open + (f.rng.Float64()-0.5)*2*f.step
	high := open
	low := close
	if close > open {
		high, low = close, open
	}

	next := market.Candle{
		Time:   last.Time.Add(time.Minute),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: float64(f.rng.Intn(100) + 1),
	}
	f.candles = append(f.candles, next)

	f.engine.SetTick(market.Tick{
		Symbol: req.Symbol,
		Time:   time.Now().UTC(),
		Bid:    close - f.spread/2,
		Ask:    close + f.spread/2,
	})

	count := req.Count
	if count <= 0 || count > len(f.candles) {
		count = len(f.candles)
	}
	out := make([]market.Candle, count)
	copy(out, f.candles[len(f.candles)-count:])
	return out, nil
}
