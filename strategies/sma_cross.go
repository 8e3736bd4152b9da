package strategies

import (
	"math"

	"github.com/rustyeddy/scalper/indicators"
	"github.com/rustyeddy/scalper/market"
)

// SMACross trades a fast/slow simple-moving-average crossover.
// - A buy fires at the candle where fast first closes above slow
// - A sell fires at the candle where fast first closes back below
// - Crossings with trend strength below MinTrendStrength are suppressed
type SMACross struct {
	*SMACrossConfig
}

type SMACrossConfig struct {
	ShortWindow int `json:"short-window"` // 3
	LongWindow  int `json:"long-window"`  // 7

	// MinTrendStrength is |fast-slow|/slow as a percentage. Crossings
	// weaker than this are noise and yield no signal.
	MinTrendStrength float64 `json:"min-trend-strength"` // 0.001
}

func init() {
	Register("sma-cross", func(short, long int, minTrendStrength float64) Strategy {
		return NewSMACross(&SMACrossConfig{
			ShortWindow:      short,
			LongWindow:       long,
			MinTrendStrength: minTrendStrength,
		})
	})
}

func SMACrossDefaults() *SMACrossConfig {
	return &SMACrossConfig{
		ShortWindow:      3,
		LongWindow:       7,
		MinTrendStrength: 0.001,
	}
}

func NewSMACross(cfg *SMACrossConfig) *SMACross {
	if cfg.ShortWindow <= 0 {
		cfg.ShortWindow = 3
	}
	if cfg.LongWindow <= cfg.ShortWindow {
		cfg.LongWindow = 7
	}
	return &SMACross{SMACrossConfig: cfg}
}

func (s *SMACross) Name() string { return "sma-cross" }

// OnCandles returns the signal at the latest candle.
func (s *SMACross) OnCandles(candles []market.Candle) Signal {
	signals := s.Evaluate(candles)
	if len(signals) == 0 {
		return None
	}
	return signals[len(signals)-1]
}

// Evaluate computes the signal at every index of the series. Fewer
// candles than the long window means no index can cross, so every
// signal is None. A series with an undefined close is treated the same
// way rather than aborting the cycle.
func (s *SMACross) Evaluate(candles []market.Candle) []Signal {
	signals := make([]Signal, len(candles))
	for i := range signals {
		signals[i] = None
	}
	if len(candles) < s.LongWindow {
		return signals
	}

	closes := market.Closes(candles)
	for _, c := range closes {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return signals
		}
	}

	fast := indicators.SMASeries(closes, s.ShortWindow)
	slow := indicators.SMASeries(closes, s.LongWindow)

	// Crossover state per index: 1 when fast > slow, else 0. Indexes
	// where either average is still warming up count as 0, matching the
	// "no position" state before the series is long enough.
	above := make([]int, len(closes))
	for i := range closes {
		if !math.IsNaN(fast[i]) && !math.IsNaN(slow[i]) && fast[i] > slow[i] {
			above[i] = 1
		}
	}

	// A signal fires only where the state changes, never at index 0.
	for i := 1; i < len(above); i++ {
		switch above[i] - above[i-1] {
		case 1:
			signals[i] = Buy
		case -1:
			signals[i] = Sell
		default:
			continue
		}

		if s.trendStrength(fast[i], slow[i]) < s.MinTrendStrength {
			signals[i] = None
		}
	}
	return signals
}

// trendStrength is the separation of the averages as a percentage of the
// slow average.
func (s *SMACross) trendStrength(fast, slow float64) float64 {
	if math.IsNaN(fast) || math.IsNaN(slow) || slow == 0 {
		return 0
	}
	return math.Abs(fast-slow) / slow * 100
}
