package strategies

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rustyeddy/scalper/market"
)

// Signal is a directional trading recommendation at a candle.
type Signal string

const (
	None Signal = "none"
	Buy  Signal = "buy"
	Sell Signal = "sell"
)

// Strategy maps a candle series (oldest to newest) to the signal at the
// latest candle. Implementations must be side-effect free: a fetch that
// produced bad data yields None, never an aborted cycle.
type Strategy interface {
	Name() string
	OnCandles(candles []market.Candle) Signal
}

// Factory builds a strategy configured with the given windows and
// trend-strength floor.
type Factory func(short, long int, minTrendStrength float64) Strategy

var registry = make(map[string]Factory)

// Register makes a strategy available to ByName. Builtins register
// themselves at init time.
func Register(name string, f Factory) {
	registry[strings.ToLower(name)] = f
}

// Names lists the registered strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByName builds a configured instance of a registered strategy.
func ByName(name string, short, long int, minTrendStrength float64) (Strategy, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	return f(short, long, minTrendStrength), nil
}
