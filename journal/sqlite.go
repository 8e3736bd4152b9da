package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(ticket, symbol, direction, volume, entry_price, exit_price, open_time, close_time, profit, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Ticket, t.Symbol, t.Direction, t.Volume, t.EntryPrice,
		t.ExitPrice, t.OpenTime, t.CloseTime, t.Profit, t.Reason,
	)
	return err
}

func (j *SQLite) RecordSignal(s SignalRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO signals
		(time, symbol, signal, ticket)
		VALUES (?, ?, ?, ?)`,
		s.Time, s.Symbol, s.Signal, s.Ticket,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
