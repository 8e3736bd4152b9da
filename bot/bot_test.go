package bot

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/scalper/broker"
	"github.com/rustyeddy/scalper/market"
	"github.com/rustyeddy/scalper/strategies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCandles struct {
	candles []market.Candle
	err     error
	calls   int
}

func (f *fakeCandles) GetCandles(ctx context.Context, req broker.CandlesRequest) ([]market.Candle, error) {
	f.calls++
	return f.candles, f.err
}

type fakeStrategy struct {
	sig strategies.Signal
}

func (f *fakeStrategy) Name() string { return "fake" }

func (f *fakeStrategy) OnCandles(_ []market.Candle) strategies.Signal { return f.sig }

type fakeTrader struct {
	executed   []strategies.Signal
	managed    int
	executeErr error
	manageErr  error
}

func (f *fakeTrader) Execute(ctx context.Context, sig strategies.Signal, symbol string) error {
	f.executed = append(f.executed, sig)
	return f.executeErr
}

func (f *fakeTrader) Manage(ctx context.Context, symbol string) error {
	f.managed++
	return f.manageErr
}

func testCandles(n int) []market.Candle {
	out := make([]market.Candle, n)
	for i := range out {
		out[i] = market.Candle{Close: 1.0850}
	}
	return out
}

func testConfig() Config {
	return Config{
		Symbol:      "EURUSD",
		Timeframe:   "M1",
		CandleCount: 10,
		Poll:        time.Millisecond,
		Backoff:     time.Millisecond,
	}
}

func TestCycleExecutesAndManages(t *testing.T) {
	t.Parallel()

	trader := &fakeTrader{}
	b := New(&fakeCandles{candles: testCandles(10)}, &fakeStrategy{sig: strategies.Buy}, trader, testConfig(), zerolog.Nop())

	require.NoError(t, b.cycle(context.Background()))
	assert.Equal(t, []strategies.Signal{strategies.Buy}, trader.executed)
	assert.Equal(t, 1, trader.managed)
}

func TestCycleNoSignalStillManages(t *testing.T) {
	t.Parallel()

	trader := &fakeTrader{}
	b := New(&fakeCandles{candles: testCandles(10)}, &fakeStrategy{sig: strategies.None}, trader, testConfig(), zerolog.Nop())

	require.NoError(t, b.cycle(context.Background()))
	assert.Empty(t, trader.executed)
	assert.Equal(t, 1, trader.managed)
}

func TestCycleFetchFailureIsNoDecision(t *testing.T) {
	t.Parallel()

	trader := &fakeTrader{}
	b := New(&fakeCandles{err: errors.New("bridge down")}, &fakeStrategy{sig: strategies.Buy}, trader, testConfig(), zerolog.Nop())

	// Missing data is not a cycle error and nothing is acted on.
	require.NoError(t, b.cycle(context.Background()))
	assert.Empty(t, trader.executed)
	assert.Zero(t, trader.managed)
}

func TestCycleEmptySeriesIsNoDecision(t *testing.T) {
	t.Parallel()

	trader := &fakeTrader{}
	b := New(&fakeCandles{}, &fakeStrategy{sig: strategies.Buy}, trader, testConfig(), zerolog.Nop())

	require.NoError(t, b.cycle(context.Background()))
	assert.Empty(t, trader.executed)
	assert.Zero(t, trader.managed)
}

func TestCycleExecuteErrorPropagates(t *testing.T) {
	t.Parallel()

	trader := &fakeTrader{executeErr: errors.New("bridge down")}
	b := New(&fakeCandles{candles: testCandles(10)}, &fakeStrategy{sig: strategies.Sell}, trader, testConfig(), zerolog.Nop())

	err := b.cycle(context.Background())
	require.Error(t, err)
	assert.Zero(t, trader.managed, "manage skipped after an unclassified failure")
}

func TestCycleRejectedOrderStillManages(t *testing.T) {
	t.Parallel()

	// A declined order is final, not a loop failure: the cycle logs it,
	// still manages held positions, and the next sleep stays on the
	// normal poll interval.
	trader := &fakeTrader{executeErr: &broker.RejectedError{RetCode: 10006, Comment: "rejected"}}
	b := New(&fakeCandles{candles: testCandles(10)}, &fakeStrategy{sig: strategies.Buy}, trader, testConfig(), zerolog.Nop())

	require.NoError(t, b.cycle(context.Background()))
	assert.Len(t, trader.executed, 1)
	assert.Equal(t, 1, trader.managed)
}

func TestCycleWrappedRejectionStillManages(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("open position: %w", &broker.RejectedError{RetCode: 10019, Comment: "No money"})
	trader := &fakeTrader{executeErr: wrapped}
	b := New(&fakeCandles{candles: testCandles(10)}, &fakeStrategy{sig: strategies.Sell}, trader, testConfig(), zerolog.Nop())

	require.NoError(t, b.cycle(context.Background()))
	assert.Equal(t, 1, trader.managed)
}

func TestCycleManageErrorPropagates(t *testing.T) {
	t.Parallel()

	trader := &fakeTrader{manageErr: errors.New("bridge down")}
	b := New(&fakeCandles{candles: testCandles(10)}, &fakeStrategy{sig: strategies.None}, trader, testConfig(), zerolog.Nop())

	assert.Error(t, b.cycle(context.Background()))
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	candles := &fakeCandles{candles: testCandles(10)}
	trader := &fakeTrader{}
	b := New(candles, &fakeStrategy{sig: strategies.None}, trader, testConfig(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancel")
	}

	assert.Greater(t, candles.calls, 1, "loop ran multiple cycles before cancel")
}
