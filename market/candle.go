package market

import "time"

// Candle represents one OHLC (Open, High, Low, Close) sample with its
// traded volume for a single timeframe slot.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Closes returns the closing prices of the series, oldest to newest.
func Closes(candles []Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}
