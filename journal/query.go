package journal

import (
	"database/sql"
	"fmt"
)

// GetTrade returns a single trade record by ticket.
func (j *SQLite) GetTrade(ticket string) (TradeRecord, error) {
	var rec TradeRecord

	row := j.db.QueryRow(`
		SELECT ticket, symbol, direction, volume, entry_price, exit_price, open_time, close_time, profit, reason
		FROM trades
		WHERE ticket = ?`, ticket)

	err := row.Scan(
		&rec.Ticket,
		&rec.Symbol,
		&rec.Direction,
		&rec.Volume,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.OpenTime,
		&rec.CloseTime,
		&rec.Profit,
		&rec.Reason,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %q not found", ticket)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTrades returns every recorded trade for a symbol, oldest close
// first. An empty symbol lists all trades.
func (j *SQLite) ListTrades(symbol string) ([]TradeRecord, error) {
	query := `
		SELECT ticket, symbol, direction, volume, entry_price, exit_price, open_time, close_time, profit, reason
		FROM trades`
	args := []any{}
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY close_time ASC`

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.Ticket,
			&rec.Symbol,
			&rec.Direction,
			&rec.Volume,
			&rec.EntryPrice,
			&rec.ExitPrice,
			&rec.OpenTime,
			&rec.CloseTime,
			&rec.Profit,
			&rec.Reason,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Summary aggregates the recorded trades.
type Summary struct {
	Trades    int
	Wins      int
	Losses    int
	NetProfit float64
}

func Summarize(trades []TradeRecord) Summary {
	var s Summary
	for _, t := range trades {
		s.Trades++
		if t.Profit > 0 {
			s.Wins++
		} else if t.Profit < 0 {
			s.Losses++
		}
		s.NetProfit += t.Profit
	}
	return s
}
