// Package simulator plays many sessions headlessly, with a policy standing
// in for the human, and aggregates the human seat's results.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/internal/opponent"
	"github.com/lox/headsup/internal/randutil"
	"github.com/lox/headsup/internal/session"
	"github.com/lox/headsup/internal/showdown"
	"github.com/lox/headsup/internal/statistics"
)

// ErrRunawayRound is returned when a round keeps re-raising past any
// reasonable bound, which means a policy never lets the street close.
var ErrRunawayRound = errors.New("round did not resolve")

// PolicyFactory builds a policy from a per-session random source
type PolicyFactory func(rng randutil.Source) (opponent.Policy, error)

// Named returns a factory for a registered policy name
func Named(name string) PolicyFactory {
	return func(rng randutil.Source) (opponent.Policy, error) {
		return opponent.New(name, rng)
	}
}

// Config holds configuration for running simulations
type Config struct {
	Sessions int
	Rounds   int // rounds per session; a session stops early once a stack is empty
	Seed     int64
	Workers  int

	Human    PolicyFactory
	Opponent PolicyFactory

	// Table settings; collaborators are supplied per session
	Table session.Options

	// MaxActionsPerStreet caps the human's actions on one street. Past the
	// cap the human stops raising.
	MaxActionsPerStreet int

	Logger *log.Logger
}

// Result is the outcome of a simulation
type Result struct {
	Stats         *statistics.Statistics
	Sessions      int
	HumanBusts    int // sessions the human finished with no chips
	OpponentBusts int // sessions the computer finished with no chips
	Duration      time.Duration
}

// Simulator runs heads-up session simulations
type Simulator struct {
	config Config
	logger *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Sessions <= 0 {
		config.Sessions = 1
	}
	if config.Rounds <= 0 {
		config.Rounds = 100
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Human == nil {
		config.Human = Named("station")
	}
	if config.Opponent == nil {
		config.Opponent = Named("random")
	}
	if config.MaxActionsPerStreet <= 0 {
		config.MaxActionsPerStreet = 4
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{config: config, logger: config.Logger.WithPrefix("simulator")}
}

// sessionOutcome is one session's contribution to the result
type sessionOutcome struct {
	stats         *statistics.Statistics
	humanBust     bool
	opponentBust  bool
	roundsStarted int
}

// Run executes the simulation. Sessions run in parallel, each with its own
// seeded random sources, so a seed reproduces the same result regardless
// of the worker count.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	// Draw every session seed up front so scheduling cannot change them
	master := randutil.New(s.config.Seed)
	seeds := make([]int64, s.config.Sessions)
	for i := range seeds {
		seeds[i] = master.Int64()
	}

	outcomes := make([]sessionOutcome, s.config.Sessions)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	for i, seed := range seeds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcome, err := s.playSession(seed)
			if err != nil {
				return fmt.Errorf("session %d (seed %d): %w", i, seed, err)
			}
			outcomes[i] = outcome
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Stats:    &statistics.Statistics{},
		Sessions: s.config.Sessions,
	}
	for _, o := range outcomes {
		result.Stats.Merge(o.stats)
		if o.humanBust {
			result.HumanBusts++
		}
		if o.opponentBust {
			result.OpponentBusts++
		}
	}
	result.Duration = time.Since(start)

	if err := result.Stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	s.logger.Info("Simulation complete",
		"sessions", result.Sessions,
		"rounds", result.Stats.Rounds,
		"mean", fmt.Sprintf("%.3f", result.Stats.Mean()),
		"duration", result.Duration)
	return result, nil
}

// playSession plays up to Rounds rounds in a fresh session
func (s *Simulator) playSession(seed int64) (sessionOutcome, error) {
	rng := randutil.New(seed)
	human, err := s.config.Human(randutil.New(rng.Int64()))
	if err != nil {
		return sessionOutcome{}, err
	}
	opp, err := s.config.Opponent(randutil.New(rng.Int64()))
	if err != nil {
		return sessionOutcome{}, err
	}

	opts := s.config.Table
	opts.Rand = randutil.New(rng.Int64())
	opts.Policy = opp
	opts.Comparator = showdown.NewCoinFlip(randutil.New(rng.Int64()))
	opts.Logger = s.config.Logger

	sess := session.New(opts)
	defer sess.Close()

	snap := sess.Snapshot()
	total := snap.HumanStack + snap.OpponentStack
	bigBlind := opts.BigBlind
	if bigBlind <= 0 {
		bigBlind = session.DefaultBigBlind
	}

	outcome := sessionOutcome{stats: &statistics.Statistics{}}
	for round := 0; round < s.config.Rounds && snap.CanDeal; round++ {
		before := snap.HumanStack
		if err := sess.StartRound(); err != nil {
			return outcome, err
		}
		outcome.roundsStarted++

		snap, err = s.playRound(sess, human)
		if err != nil {
			return outcome, err
		}
		if got := snap.HumanStack + snap.OpponentStack + snap.Pot; got != total {
			return outcome, fmt.Errorf("%w: %d chips in play, expected %d", session.ErrChipConservation, got, total)
		}

		r := snap.LastResult
		if r == nil || r.Round != snap.Round {
			return outcome, fmt.Errorf("round %d finished without a result", snap.Round)
		}
		outcome.stats.Add(statistics.RoundResult{
			NetBB:          float64(snap.HumanStack-before) / float64(bigBlind),
			Seed:           seed,
			WentToShowdown: r.Showdown,
			Folder:         r.Folder,
			FinalPotSize:   r.Amount,
			StreetReached:  r.Stage,
			BigBlind:       bigBlind,
		})
	}

	outcome.humanBust = snap.HumanStack == 0
	outcome.opponentBust = snap.OpponentStack == 0
	s.logger.Debug("Session finished",
		"seed", seed,
		"rounds", outcome.roundsStarted,
		"human", snap.HumanStack,
		"opponent", snap.OpponentStack)
	return outcome, nil
}

// playRound feeds human decisions until the round leaves the betting stages
func (s *Simulator) playRound(sess *session.Session, human opponent.Policy) (session.Snapshot, error) {
	limit := s.config.MaxActionsPerStreet
	street := game.Idle
	acted := 0
	total := 0

	snap := sess.Snapshot()
	for snap.HumanToAct() {
		if snap.Stage != street {
			street, acted = snap.Stage, 0
		}
		action := human.Decide(opponent.State{
			Stage:      snap.Stage,
			CurrentBet: snap.CurrentBet,
			Pot:        snap.Pot,
			OwnStack:   snap.HumanStack,
			OtherStack: snap.OpponentStack,
			AllIn:      snap.AllIn,
		})
		if action == game.Raise && (acted >= limit || !slices.Contains(snap.ValidActions, game.Raise)) {
			action = game.Passive(snap.CurrentBet)
		}
		acted++
		total++
		if total > limit*50 {
			return snap, fmt.Errorf("%w after %d human actions", ErrRunawayRound, total)
		}

		if err := sess.SubmitHumanAction(action); err != nil {
			return snap, fmt.Errorf("human %s at %s: %w", action, snap.Stage, err)
		}
		snap = sess.Snapshot()
	}
	return snap, nil
}
