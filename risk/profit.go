package risk

import "github.com/rustyeddy/scalper/broker"

// Profit returns the unrealized profit of a position in account
// currency. ContractSize converts a price move into currency per unit of
// volume (100000 for a standard FX lot); it is instrument-specific and
// therefore configuration, not policy.
func Profit(direction broker.Direction, entry, current, volume, contractSize float64) float64 {
	move := current - entry
	if direction == broker.Sell {
		move = entry - current
	}
	return move * volume * contractSize
}
