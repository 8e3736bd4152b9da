package risk

import "time"

// Exit reasons recorded in the journal.
const (
	ReasonProfitAfterHold = "ProfitAfterHold"
	ReasonStopLoss        = "StopLoss"
	ReasonTakeProfit      = "TakeProfit"
	ReasonReverse         = "ReverseSignal"
	ReasonManual          = "ManualClose"
)

// ExitPolicy decides when a held position should be closed. Nothing
// closes before MinHold has elapsed; positions are given a minimum dwell
// time so the policy does not react to noise right after entry. After
// that:
//   - any profit is locked in immediately
//   - a loss at or below StopLoss is capped
//   - a profit at or above TakeProfit is taken
type ExitPolicy struct {
	MinHold    time.Duration
	StopLoss   float64 // account currency, <= 0
	TakeProfit float64 // account currency, >= 0
}

func ExitPolicyDefaults() ExitPolicy {
	return ExitPolicy{
		MinHold:    60 * time.Second,
		StopLoss:   -5,
		TakeProfit: 2,
	}
}

// Verdict is the outcome of evaluating one position.
type Verdict struct {
	Close  bool
	Reason string
}

func (p ExitPolicy) Evaluate(held time.Duration, profit float64) Verdict {
	if held < p.MinHold {
		return Verdict{}
	}

	switch {
	case profit > 0:
		return Verdict{Close: true, Reason: ReasonProfitAfterHold}
	case profit <= p.StopLoss:
		return Verdict{Close: true, Reason: ReasonStopLoss}
	case profit >= p.TakeProfit:
		return Verdict{Close: true, Reason: ReasonTakeProfit}
	default:
		return Verdict{}
	}
}
