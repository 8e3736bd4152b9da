package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scalper",
	Short: "A moving-average crossover scalping bot for MetaTrader",
	Long: `Scalper is an automated trading bot that polls a MetaTrader
terminal bridge for recent candles, computes a dual-SMA crossover
signal, and opens and manages market orders through the same bridge.

It provides commands for:
  - Running the live trading loop against a terminal bridge
  - Running the same loop against a built-in price simulator
  - Inspecting the trade journal
  - Generating and validating configuration files`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
