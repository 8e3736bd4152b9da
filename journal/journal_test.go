package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTrade(ticket string, profit float64) TradeRecord {
	open := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return TradeRecord{
		Ticket:     ticket,
		Symbol:     "EURUSD",
		Direction:  "buy",
		Volume:     0.01,
		EntryPrice: 1.0852,
		ExitPrice:  1.0852 + profit/1000,
		OpenTime:   open,
		CloseTime:  open.Add(90 * time.Second),
		Profit:     profit,
		Reason:     "ProfitAfterHold",
	}
}

func TestSQLiteRoundtrip(t *testing.T) {
	t.Parallel()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	want := testTrade("100", 0.3)
	require.NoError(t, j.RecordTrade(want))

	got, err := j.GetTrade("100")
	require.NoError(t, err)
	assert.Equal(t, want.Ticket, got.Ticket)
	assert.Equal(t, want.Symbol, got.Symbol)
	assert.Equal(t, want.Direction, got.Direction)
	assert.InDelta(t, want.EntryPrice, got.EntryPrice, 1e-9)
	assert.InDelta(t, want.Profit, got.Profit, 1e-9)
	assert.Equal(t, want.Reason, got.Reason)
	assert.True(t, want.OpenTime.Equal(got.OpenTime))

	_, err = j.GetTrade("missing")
	assert.Error(t, err)
}

func TestSQLiteListTrades(t *testing.T) {
	t.Parallel()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	first := testTrade("1", 0.5)
	second := testTrade("2", -5.1)
	second.CloseTime = first.CloseTime.Add(time.Minute)
	other := testTrade("3", 1.0)
	other.Symbol = "GBPUSD"

	for _, rec := range []TradeRecord{second, first, other} {
		require.NoError(t, j.RecordTrade(rec))
	}

	trades, err := j.ListTrades("EURUSD")
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "1", trades[0].Ticket) // oldest close first
	assert.Equal(t, "2", trades[1].Ticket)

	all, err := j.ListTrades("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLiteRecordSignal(t *testing.T) {
	t.Parallel()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.RecordSignal(SignalRecord{
		Time:   time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Symbol: "EURUSD",
		Signal: "buy",
		Ticket: "100",
	}))
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	trades := []TradeRecord{
		testTrade("1", 0.3),
		testTrade("2", 2.1),
		testTrade("3", -5.1),
		testTrade("4", 0),
	}

	s := Summarize(trades)
	assert.Equal(t, 4, s.Trades)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Losses) // break-even counts as neither
	assert.InDelta(t, -2.7, s.NetProfit, 1e-9)
}

func TestCSVWritesRecords(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	signalsPath := filepath.Join(dir, "signals.csv")

	j, err := NewCSV(tradesPath, signalsPath)
	require.NoError(t, err)

	require.NoError(t, j.RecordTrade(testTrade("100", 0.3)))
	require.NoError(t, j.RecordSignal(SignalRecord{
		Time:   time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Symbol: "EURUSD",
		Signal: "buy",
		Ticket: "100",
	}))
	require.NoError(t, j.Close())

	tf, err := os.Open(tradesPath)
	require.NoError(t, err)
	defer tf.Close()

	rows, err := csv.NewReader(tf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ticket", rows[0][0])
	assert.Equal(t, "100", rows[1][0])
	assert.Equal(t, "ProfitAfterHold", rows[1][9])

	sf, err := os.Open(signalsPath)
	require.NoError(t, err)
	defer sf.Close()

	rows, err = csv.NewReader(sf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2024-03-01T09:00:00Z", "EURUSD", "buy", "100"}, rows[1])
}

func TestNopJournal(t *testing.T) {
	t.Parallel()

	var j Journal = Nop{}
	assert.NoError(t, j.RecordTrade(TradeRecord{}))
	assert.NoError(t, j.RecordSignal(SignalRecord{}))
	assert.NoError(t, j.Close())
}
