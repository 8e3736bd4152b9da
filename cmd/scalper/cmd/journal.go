package cmd

import (
	"fmt"

	"github.com/rustyeddy/scalper/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List recorded trades from a journal database",
	Long: `Print the trades recorded in a SQLite journal, oldest first,
followed by a summary.

Example:
  scalper journal --db scalper.db --symbol EURUSD`,
	RunE: runJournal,
}

var (
	journalDBPath string
	journalSymbol string
)

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().StringVar(&journalDBPath, "db", "scalper.db", "path to journal database")
	journalCmd.Flags().StringVar(&journalSymbol, "symbol", "", "filter by symbol")
}

func runJournal(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	trades, err := j.ListTrades(journalSymbol)
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}

	if len(trades) == 0 {
		fmt.Println("No trades recorded.")
		return nil
	}

	for _, t := range trades {
		fmt.Printf("%s  %s %-4s vol=%.2f entry=%.5f exit=%.5f pl=%+.2f (%s)\n",
			t.CloseTime.Format("2006-01-02 15:04:05"),
			t.Symbol, t.Direction, t.Volume, t.EntryPrice, t.ExitPrice, t.Profit, t.Reason)
	}

	s := journal.Summarize(trades)
	fmt.Printf("\nTrades: %d  Wins: %d  Losses: %d  Net P/L: %+.2f\n",
		s.Trades, s.Wins, s.Losses, s.NetProfit)
	return nil
}
