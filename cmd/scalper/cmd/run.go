package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/scalper/bot"
	"github.com/rustyeddy/scalper/broker"
	"github.com/rustyeddy/scalper/config"
	"github.com/rustyeddy/scalper/internal/util"
	"github.com/rustyeddy/scalper/journal"
	"github.com/rustyeddy/scalper/metatrader"
	"github.com/rustyeddy/scalper/risk"
	"github.com/rustyeddy/scalper/strategies"
	"github.com/rustyeddy/scalper/trade"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading loop against a terminal bridge",
	Long: `Run the live trading loop using settings from a configuration file.

The loop polls the bridge for candles, evaluates the crossover signal,
and opens/manages positions until interrupted with SIGINT or SIGTERM.

Example:
  scalper run --config scalper.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := util.NewLogger(cfg.LogLevel)

	client := metatrader.NewClient(cfg.Broker.BaseURL, cfg.Broker.Token)

	jrnl, err := newJournal(cfg)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer jrnl.Close()

	strat, err := strategies.ByName(cfg.Strategy.Name,
		cfg.Strategy.ShortWindow, cfg.Strategy.LongWindow, cfg.Strategy.MinTrendStrength)
	if err != nil {
		return err
	}

	executor, err := newExecutor(cfg, client, jrnl, log)
	if err != nil {
		return err
	}

	botCfg, err := newBotConfig(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := bot.New(client, strat, executor, botCfg, log)
	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info().Msg("shutdown complete")
	return nil
}

func newJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.SignalsFile)
	default:
		return journal.Nop{}, nil
	}
}

func newExecutor(cfg *config.Config, gw broker.Gateway, jrnl journal.Journal, log zerolog.Logger) (*trade.Executor, error) {
	minHold, err := cfg.Exit.MinHoldDuration()
	if err != nil {
		return nil, err
	}

	return trade.New(gw, jrnl, trade.Config{
		Volume:       cfg.Trading.Volume,
		Deviation:    cfg.Trading.Deviation,
		ContractSize: cfg.Trading.ContractSize,
		Exit: risk.ExitPolicy{
			MinHold:    minHold,
			StopLoss:   cfg.Exit.StopLoss,
			TakeProfit: cfg.Exit.TakeProfit,
		},
	}, log), nil
}

func newBotConfig(cfg *config.Config) (bot.Config, error) {
	poll, err := cfg.Loop.PollInterval()
	if err != nil {
		return bot.Config{}, err
	}
	backoff, err := cfg.Loop.BackoffInterval()
	if err != nil {
		return bot.Config{}, err
	}

	return bot.Config{
		Symbol:      cfg.Trading.Symbol,
		Timeframe:   cfg.Trading.Timeframe,
		CandleCount: cfg.Loop.CandleCount,
		Poll:        poll,
		Backoff:     backoff,
	}, nil
}
