package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/internal/opponent"
	"github.com/lox/headsup/internal/randutil"
	"github.com/lox/headsup/internal/simulator"
	"github.com/lox/headsup/internal/tui"
)

type SimulateCmd struct {
	Sessions int    `default:"100" help:"Number of independent sessions"`
	Rounds   int    `default:"200" help:"Rounds per session (a session ends early when a stack is empty)"`
	Seed     int64  `default:"0" help:"RNG seed (0 for random)"`
	Workers  int    `default:"0" help:"Parallel sessions (0 for GOMAXPROCS)"`
	Human    string `default:"station" help:"Policy playing the human seat"`
	Opponent string `help:"Opponent policy, overrides the config file"`
	NoColor  bool   `help:"Disable colored output"`
	Verbose  bool   `short:"V" help:"Verbose logging to stderr"`
}

func (c *SimulateCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	if c.Opponent != "" {
		cfg.Opponent.Policy = c.Opponent
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := opponent.New(c.Human, nil); err != nil {
		return err
	}

	level := log.WarnLevel
	if c.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "HEADSUP",
		Level:           level,
	})

	output := termenv.NewOutput(os.Stdout)
	if c.NoColor || termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	} else {
		lipgloss.SetColorProfile(output.Profile)
	}

	seed := c.Seed
	if seed == 0 {
		seed = randutil.Seed()
	}

	fmt.Println(tui.Banner("Heads-up simulation"))
	fmt.Printf("%d sessions × %d rounds, %s vs %s (seed: %d)\n\n",
		c.Sessions, c.Rounds, c.Human, cfg.Opponent.Policy, seed)

	sim := simulator.New(simulator.Config{
		Sessions: c.Sessions,
		Rounds:   c.Rounds,
		Seed:     seed,
		Workers:  c.Workers,
		Human:    simulator.Named(c.Human),
		Opponent: func(rng randutil.Source) (opponent.Policy, error) {
			return cfg.Policy(rng)
		},
		Table:  cfg.SessionOptions(),
		Logger: logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := sim.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	printReport(os.Stdout, result)
	return nil
}

var (
	labelStyle    = lipgloss.NewStyle().Width(22).Foreground(lipgloss.Color("#626262"))
	positiveStyle = tui.SuccessStyle
	negativeStyle = tui.ErrorStyle
)

func printReport(w io.Writer, r *simulator.Result) {
	stats := r.Stats
	row := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label), value)
	}
	signed := func(v float64, format string) string {
		s := fmt.Sprintf(format, v)
		if v < 0 {
			return negativeStyle.Render(s)
		}
		return positiveStyle.Render(s)
	}

	low, high := stats.ConfidenceInterval95()
	row("Rounds", fmt.Sprintf("%d", stats.Rounds))
	row("Duration", r.Duration.Round(time.Millisecond).String())
	row("Result", signed(stats.Mean(), "%+.3f bb/round"))
	row("Std dev", fmt.Sprintf("%.3f bb", stats.StdDev()))
	row("95% CI", fmt.Sprintf("[%+.3f, %+.3f]", low, high))
	row("Median", fmt.Sprintf("%+.2f bb", stats.Median()))
	row("Showdown rate", fmt.Sprintf("%.1f%%", stats.ShowdownRate()*100))
	row("Human fold rate", fmt.Sprintf("%.1f%%", stats.FoldRate(game.Human)*100))
	row("Computer fold rate", fmt.Sprintf("%.1f%%", stats.FoldRate(game.Opponent)*100))
	row("Largest pot", fmt.Sprintf("%d chips (%.1f bb)", stats.MaxPotChips, stats.MaxPotBB))
	row("Sessions busted", fmt.Sprintf("human %d, computer %d of %d", r.HumanBusts, r.OpponentBusts, r.Sessions))

	fmt.Fprintln(w)
	fmt.Fprintln(w, tui.TitleStyle.Render("By final street"))
	for st := game.Preflop; st <= game.Showdown; st++ {
		sr := stats.StreetResults[st]
		if sr.Rounds == 0 {
			continue
		}
		row(strings.ToLower(st.Title()), fmt.Sprintf("%6d rounds  %s", sr.Rounds, signed(stats.StreetMean(st), "%+.3f bb")))
	}
}
