package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rustyeddy/scalper/bot"
	"github.com/rustyeddy/scalper/config"
	"github.com/rustyeddy/scalper/internal/util"
	"github.com/rustyeddy/scalper/sim"
	"github.com/rustyeddy/scalper/strategies"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the trading loop against a built-in price simulator",
	Long: `Run the full trading loop without a terminal. Candles come from a
seeded random walk and orders fill against an in-memory engine, so the
whole pipeline can be watched end to end.

Example:
  scalper demo --seed 7 --poll 1s`,
	RunE: runDemo,
}

var (
	demoSeed int64
	demoPoll string
)

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().Int64Var(&demoSeed, "seed", 1, "random walk seed")
	demoCmd.Flags().StringVar(&demoPoll, "poll", "1s", "cycle interval")
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	cfg.Journal.Type = "none"
	cfg.Loop.Poll = demoPoll
	cfg.Exit.MinHold = "5s" // scaled down so exits show up quickly
	cfg.LogLevel = "debug"

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("demo config: %w", err)
	}

	log := util.NewLogger(cfg.LogLevel)

	engine := sim.NewEngine()
	feed := sim.NewFeed(engine, 1.0850, 0.0004, 0.0001, demoSeed)

	strat := strategies.NewSMACross(&strategies.SMACrossConfig{
		ShortWindow:      cfg.Strategy.ShortWindow,
		LongWindow:       cfg.Strategy.LongWindow,
		MinTrendStrength: cfg.Strategy.MinTrendStrength,
	})

	executor, err := newExecutor(cfg, engine, nil, log)
	if err != nil {
		return err
	}

	botCfg, err := newBotConfig(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("Running simulated loop, interrupt to stop.")
	b := bot.New(feed, strat, executor, botCfg, log)
	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
