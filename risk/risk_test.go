package risk

import (
	"testing"
	"time"

	"github.com/rustyeddy/scalper/broker"
	"github.com/stretchr/testify/assert"
)

func TestProfitLong(t *testing.T) {
	t.Parallel()

	// 0.01 lot at contract size 100000: a 0.0005 move is $0.50.
	p := Profit(broker.Buy, 1.0850, 1.0855, 0.01, 100000)
	assert.InDelta(t, 0.5, p, 0.0001)

	p = Profit(broker.Buy, 1.0850, 1.0840, 0.01, 100000)
	assert.InDelta(t, -1.0, p, 0.0001)
}

func TestProfitShort(t *testing.T) {
	t.Parallel()

	p := Profit(broker.Sell, 1.0850, 1.0840, 0.01, 100000)
	assert.InDelta(t, 1.0, p, 0.0001)

	p = Profit(broker.Sell, 1.0850, 1.0860, 0.01, 100000)
	assert.InDelta(t, -1.0, p, 0.0001)
}

func TestExitPolicyHoldsBeforeMinHold(t *testing.T) {
	t.Parallel()

	policy := ExitPolicyDefaults()

	// No profit magnitude may trigger an exit before the dwell time.
	for _, profit := range []float64{100, 10, 0.01, 0, -0.01, -100} {
		v := policy.Evaluate(30*time.Second, profit)
		assert.False(t, v.Close, "profit %.2f", profit)
	}
}

func TestExitPolicyClosesAnyProfitAfterHold(t *testing.T) {
	t.Parallel()

	policy := ExitPolicyDefaults()

	v := policy.Evaluate(61*time.Second, 0.01)
	assert.True(t, v.Close)
	assert.Equal(t, ReasonProfitAfterHold, v.Reason)
}

func TestExitPolicyStopLoss(t *testing.T) {
	t.Parallel()

	policy := ExitPolicyDefaults()

	v := policy.Evaluate(61*time.Second, -5)
	assert.True(t, v.Close)
	assert.Equal(t, ReasonStopLoss, v.Reason)

	v = policy.Evaluate(61*time.Second, -8.3)
	assert.True(t, v.Close)
	assert.Equal(t, ReasonStopLoss, v.Reason)
}

func TestExitPolicyHoldsSmallLoss(t *testing.T) {
	t.Parallel()

	policy := ExitPolicyDefaults()

	v := policy.Evaluate(61*time.Second, -1.5)
	assert.False(t, v.Close)
}

func TestExitPolicyBoundary(t *testing.T) {
	t.Parallel()

	policy := ExitPolicyDefaults()

	// Exactly at the dwell threshold the policy applies.
	v := policy.Evaluate(60*time.Second, 0.5)
	assert.True(t, v.Close)

	// Zero profit after the hold is neither gain nor stop-loss.
	v = policy.Evaluate(60*time.Second, 0)
	assert.False(t, v.Close)
}
