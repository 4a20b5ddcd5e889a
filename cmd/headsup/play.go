package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/lox/headsup/internal/config"
	"github.com/lox/headsup/internal/randutil"
	"github.com/lox/headsup/internal/session"
	"github.com/lox/headsup/internal/tui"
)

type PlayCmd struct {
	Seed     int64  `help:"RNG seed (0 for random)"`
	Opponent string `help:"Opponent policy, overrides the config file (random, station, aggressive, uniform)"`
	Stack    int    `help:"Starting stack, overrides the config file"`
	LogFile  string `help:"Log file path, overrides the config file"`
	LogLevel string `help:"Log level (debug, info, warn, error), overrides the config file"`
}

func (c *PlayCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	if c.Opponent != "" {
		cfg.Opponent.Policy = c.Opponent
	}
	if c.Stack != 0 {
		cfg.Table.StartingStack = c.Stack
	}
	if c.LogFile != "" {
		cfg.UI.LogFile = c.LogFile
	}
	if c.LogLevel != "" {
		cfg.UI.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		if err := logFile.Close(); err != nil {
			log.Error("Failed to close log file", "error", err)
		}
	}()

	logger := log.NewWithOptions(logFile, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "HEADSUP",
		Level:           cfg.LogLevel(),
	})

	seed := c.Seed
	if seed == 0 {
		seed = randutil.Seed()
	}
	rng := randutil.New(seed)

	policy, err := cfg.Policy(rng)
	if err != nil {
		return err
	}

	opts := cfg.SessionOptions()
	opts.Rand = rng
	opts.Policy = policy
	opts.Logger = logger

	s := session.New(opts)
	defer s.Close()

	logger.Info("Starting game",
		"version", version,
		"seed", seed,
		"opponent", cfg.Opponent.Policy,
		"stack", cfg.Table.StartingStack)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tui.Run(ctx, s, logger); err != nil {
		logger.Error("TUI exited with error", "error", err)
		return err
	}

	snap := s.Snapshot()
	logger.Info("Game finished", "rounds", snap.Round, "human", snap.HumanStack, "opponent", snap.OpponentStack)
	fmt.Println(tui.Banner("Heads-up Hold'em"))
	fmt.Printf("Rounds played: %d\n", snap.Round)
	fmt.Printf("Your stack:    %d\n", snap.HumanStack)
	fmt.Printf("Computer:      %d\n", snap.OpponentStack)
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}
