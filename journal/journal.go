package journal

import "time"

// TradeRecord is one closed trade.
type TradeRecord struct {
	Ticket     string
	Symbol     string
	Direction  string
	Volume     float64
	EntryPrice float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	Profit     float64
	Reason     string
}

// SignalRecord is one executed entry signal.
type SignalRecord struct {
	Time   time.Time
	Symbol string
	Signal string
	Ticket string
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordSignal(SignalRecord) error
	Close() error
}

// Nop is a Journal that discards everything.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error   { return nil }
func (Nop) RecordSignal(SignalRecord) error { return nil }
func (Nop) Close() error                    { return nil }
