// Package session is the round controller for a heads-up game between a
// human and the computer.
//
// A Session owns the deck, the chip ledger and the betting state machine.
// Commands (StartRound, SubmitHumanAction) run to completion under a single
// lock: the human's action is applied, the opponent policy answers, and the
// street advances before the command returns. The only asynchronous step is
// the reset after a showdown, which runs on a cancellable timer from the
// injected clock.
package session

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/headsup/internal/chips"
	"github.com/lox/headsup/internal/deck"
	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/internal/opponent"
	"github.com/lox/headsup/internal/randutil"
	"github.com/lox/headsup/internal/showdown"
)

var (
	// ErrRoundInProgress is returned by StartRound while betting is under way
	ErrRoundInProgress = errors.New("round in progress")

	// ErrClosed is returned by commands issued after Close
	ErrClosed = errors.New("session closed")

	// ErrChipConservation is returned if the chips in play ever drift from
	// the starting total
	ErrChipConservation = errors.New("chip conservation violated")
)

// Defaults match the original table: 1000 chips each, 10/20 blinds, raises
// of 20 and a two second pause after showdown.
const (
	DefaultStartingStack  = 1000
	DefaultSmallBlind     = 10
	DefaultBigBlind       = 20
	DefaultRaiseIncrement = 20
	DefaultResetDelay     = 2 * time.Second
)

// Status messages shown to the player
const (
	WelcomeMessage   = "Welcome to Poker! Press deal to start."
	NextRoundMessage = "Press deal to start the next round."
)

// Options configures a Session. Zero values fall back to the defaults above;
// nil collaborators fall back to production implementations.
type Options struct {
	StartingStack  int
	SmallBlind     int
	BigBlind       int
	RaiseIncrement int
	ResetDelay     time.Duration

	Rand        randutil.Source
	Policy      opponent.Policy
	Comparator  showdown.Comparator
	Clock       quartz.Clock
	Logger      *log.Logger
	DeckFactory func(randutil.Source) *deck.Deck
}

// DefaultOptions returns the options of the original table
func DefaultOptions() Options {
	return Options{
		StartingStack:  DefaultStartingStack,
		SmallBlind:     DefaultSmallBlind,
		BigBlind:       DefaultBigBlind,
		RaiseIncrement: DefaultRaiseIncrement,
		ResetDelay:     DefaultResetDelay,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.StartingStack <= 0 {
		o.StartingStack = d.StartingStack
	}
	if o.SmallBlind <= 0 {
		o.SmallBlind = d.SmallBlind
	}
	if o.BigBlind <= 0 {
		o.BigBlind = d.BigBlind
	}
	if o.RaiseIncrement <= 0 {
		o.RaiseIncrement = d.RaiseIncrement
	}
	if o.ResetDelay <= 0 {
		o.ResetDelay = d.ResetDelay
	}
	if o.Rand == nil {
		o.Rand = randutil.New(randutil.Seed())
	}
	if o.Policy == nil {
		o.Policy = opponent.NewRandom(o.Rand)
	}
	if o.Comparator == nil {
		o.Comparator = showdown.NewCoinFlip(o.Rand)
	}
	if o.Clock == nil {
		o.Clock = quartz.NewReal()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.DeckFactory == nil {
		o.DeckFactory = deck.New
	}
	return o
}

// Result describes how a finished round was decided
type Result struct {
	Round        int
	Winner       game.Seat
	Amount       int
	Showdown     bool      // false when the round ended with a fold
	Folder       game.Seat // only meaningful when Showdown is false
	Stage        game.Stage
	HumanHand    []deck.Card
	OpponentHand []deck.Card
	Board        []deck.Card
}

// Snapshot is a read-only copy of the session state for the view layer.
// The opponent's hole cards are only included at showdown.
type Snapshot struct {
	Round         int
	Stage         game.Stage
	HumanHand     []deck.Card
	OpponentCards int
	OpponentHand  []deck.Card
	Community     []deck.Card
	Pot           int
	CurrentBet    int
	AllIn         bool
	HumanStack    int
	OpponentStack int
	ToAct         game.Seat
	Message       string
	ValidActions  []game.Action
	CanDeal       bool
	DeckRemaining int
	LastResult    *Result
}

// HumanToAct reports whether the session is waiting on the human
func (s Snapshot) HumanToAct() bool {
	return s.Stage.IsBetting() && s.ToAct == game.Human
}

// Session is one human-versus-computer game
type Session struct {
	mu     sync.Mutex
	opts   Options
	logger *log.Logger
	bus    *eventBus

	deck         *deck.Deck
	ledger       *chips.Ledger
	round        game.Round
	humanHand    []deck.Card
	opponentHand []deck.Card
	board        []deck.Card
	message      string

	roundNo       int
	lastResult    *Result
	startingTotal int
	resetTimer    *quartz.Timer
	closed        bool
	pending       []Event
}

// New creates a session with a freshly shuffled deck, waiting for the first deal
func New(opts Options) *Session {
	opts = opts.withDefaults()
	ledger := chips.NewLedger(opts.StartingStack, opts.StartingStack)
	s := &Session{
		opts:          opts,
		logger:        opts.Logger.WithPrefix("session"),
		bus:           newEventBus(),
		deck:          opts.DeckFactory(opts.Rand),
		ledger:        ledger,
		message:       WelcomeMessage,
		startingTotal: ledger.Total(),
	}
	s.logger.Debug("Session created",
		"stack", opts.StartingStack,
		"smallBlind", opts.SmallBlind,
		"bigBlind", opts.BigBlind,
		"raiseIncrement", opts.RaiseIncrement,
		"resetDelay", opts.ResetDelay)
	return s
}

// Subscribe registers a subscriber for state-change events and returns a
// function that removes it.
func (s *Session) Subscribe(sub Subscriber) func() {
	return s.bus.subscribe(sub)
}

// OnChange is Subscribe for plain functions
func (s *Session) OnChange(fn func(Event)) func() {
	return s.bus.subscribe(SubscriberFunc(fn))
}

// Snapshot returns the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// StartRound posts the blinds and deals both hands. Calling it during a
// showdown skips the remaining reset delay.
func (s *Session) StartRound() error {
	return s.run("start_round", s.startRoundLocked)
}

// SubmitHumanAction applies the human's action and lets the opponent answer.
// Illegal actions are rejected with game.ErrIllegalAction and leave the
// round untouched.
func (s *Session) SubmitHumanAction(action game.Action) error {
	return s.run("human_action", func() error {
		return s.humanActionLocked(action)
	})
}

// Close stops the pending showdown reset. Commands after Close fail with ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancelResetLocked()
	s.mu.Unlock()
	s.bus.clear()
	s.logger.Debug("Session closed", "rounds", s.roundNo)
}

// run executes a command under the lock, checks chip conservation, and
// publishes the events it produced once the lock is released.
func (s *Session) run(op string, fn func() error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	err := fn()
	if verr := s.ledger.Validate(s.startingTotal); verr != nil {
		s.logger.Error("Chip conservation violation detected!", "op", op, "error", verr)
		err = errors.Join(err, fmt.Errorf("%w: %v", ErrChipConservation, verr))
	}
	events := s.pending
	s.pending = nil
	s.mu.Unlock()

	s.bus.publish(events)
	return err
}

func (s *Session) emit(e Event) {
	e.Snapshot = s.snapshotLocked()
	e.Timestamp = s.opts.Clock.Now()
	s.pending = append(s.pending, e)
}

func (s *Session) startRoundLocked() error {
	switch {
	case s.round.Stage.IsBetting():
		return fmt.Errorf("%w: %s", ErrRoundInProgress, s.round.Stage)
	case s.round.Stage == game.Showdown:
		s.cancelResetLocked()
		s.resetLocked()
	}

	blinds, err := s.ledger.PostBlinds(s.opts.SmallBlind, s.opts.BigBlind)
	if err != nil {
		s.message = s.gameOverMessage()
		s.logger.Info("Cannot start round", "error", err,
			"human", s.ledger.Stack(game.Human), "opponent", s.ledger.Stack(game.Opponent))
		s.emit(Event{Type: EventRejected, Err: err})
		return err
	}
	s.roundNo++

	humanHand, err := s.deck.DrawN(2)
	if err != nil {
		return s.abortLocked(err)
	}
	opponentHand, err := s.deck.DrawN(2)
	if err != nil {
		return s.abortLocked(err)
	}
	s.humanHand, s.opponentHand = humanHand, opponentHand

	if err := s.round.Start(s.opts.BigBlind); err != nil {
		return s.abortLocked(err)
	}
	if s.ledger.Stack(game.Human) == 0 || s.ledger.Stack(game.Opponent) == 0 {
		s.round.AllIn = true
	}
	s.message = "Preflop round - Your turn to act"

	s.logger.Info("Round started",
		"round", s.roundNo,
		"smallBlind", blinds.Small,
		"bigBlind", blinds.Big,
		"hand", deck.Format(s.humanHand))
	s.emit(Event{Type: EventRoundStart, Amount: blinds.Small + blinds.Big})
	return nil
}

func (s *Session) humanActionLocked(action game.Action) error {
	cost, err := s.round.Act(game.Human, action, s.opts.RaiseIncrement)
	if err != nil {
		s.message = fmt.Sprintf("Cannot %s: %v", action, err)
		s.logger.Debug("Rejected human action", "action", action, "stage", s.round.Stage, "error", err)
		s.emit(Event{Type: EventRejected, Seat: game.Human, Action: action, Err: err})
		return err
	}
	if action == game.Fold {
		s.foldLocked(game.Human)
		return nil
	}
	if err := s.payLocked(game.Human, action, cost); err != nil {
		return err
	}
	return s.opponentTurnLocked()
}

func (s *Session) opponentTurnLocked() error {
	state := opponent.State{
		Stage:      s.round.Stage,
		CurrentBet: s.round.CurrentBet,
		Pot:        s.ledger.Pot(),
		OwnStack:   s.ledger.Stack(game.Opponent),
		OtherStack: s.ledger.Stack(game.Human),
		AllIn:      s.round.AllIn,
	}
	action := s.opts.Policy.Decide(state)

	cost, err := s.round.Act(game.Opponent, action, s.opts.RaiseIncrement)
	if err != nil {
		fallback := game.Passive(s.round.CurrentBet)
		s.logger.Warn("Opponent chose an illegal action, using fallback",
			"action", action, "fallback", fallback, "error", err)
		action = fallback
		if cost, err = s.round.Act(game.Opponent, action, s.opts.RaiseIncrement); err != nil {
			return err
		}
	}

	if action == game.Fold {
		s.foldLocked(game.Opponent)
		return nil
	}
	if !game.Resolves(action) {
		s.message = "Computer raised. Your turn."
	}
	if err := s.payLocked(game.Opponent, action, cost); err != nil {
		return err
	}
	if !game.Resolves(action) {
		return nil
	}
	return s.advanceLocked()
}

func (s *Session) payLocked(seat game.Seat, action game.Action, cost int) error {
	paid, err := s.ledger.ApplyBet(seat, cost)
	if err != nil {
		return err
	}
	if paid < cost {
		s.logger.Info("Bet clamped to stack", "seat", seat, "action", action, "cost", cost, "paid", paid)
		if action == game.Raise {
			s.round.ShortRaise(paid)
		}
	}
	if s.ledger.Stack(seat) == 0 {
		s.round.AllIn = true
	}
	s.logger.Debug("Player action",
		"seat", seat,
		"action", action,
		"paid", paid,
		"pot", s.ledger.Pot(),
		"currentBet", s.round.CurrentBet)
	s.emit(Event{Type: EventPlayerAction, Seat: seat, Action: action, Amount: paid})
	return nil
}

func (s *Session) advanceLocked() error {
	next, err := s.round.Advance()
	if err != nil {
		return err
	}
	if next == game.Showdown {
		s.showdownLocked()
		return nil
	}

	cards, err := s.deck.DrawN(game.CommunityCount(next) - len(s.board))
	if err != nil {
		return s.abortLocked(err)
	}
	s.board = append(s.board, cards...)
	s.message = fmt.Sprintf("%s round - Your turn to act", next.Title())

	s.logger.Debug("Dealt community cards", "stage", next, "board", deck.Format(s.board))
	s.emit(Event{Type: EventStreetChange})
	return nil
}

func (s *Session) showdownLocked() {
	winner := s.opts.Comparator.Compare(clone(s.humanHand), clone(s.opponentHand), clone(s.board))
	amount := s.ledger.Settle(winner)
	s.lastResult = s.resultLocked(winner, amount, true, winner)

	if winner == game.Human {
		s.message = fmt.Sprintf("You win! %d chips", amount)
	} else {
		s.message = fmt.Sprintf("Computer wins! %d chips", amount)
	}
	s.logger.Info("Showdown", "round", s.roundNo, "winner", winner, "pot", amount,
		"human", deck.Format(s.humanHand), "opponent", deck.Format(s.opponentHand), "board", deck.Format(s.board))
	s.emit(Event{Type: EventRoundEnd, Seat: winner, Amount: amount})

	round := s.roundNo
	s.resetTimer = s.opts.Clock.AfterFunc(s.opts.ResetDelay, func() {
		s.autoReset(round)
	}, "session", "reset")
}

// autoReset is the showdown timer callback. A timer that outlived its round
// (manual deal, Close) does nothing.
func (s *Session) autoReset(round int) {
	s.mu.Lock()
	if s.closed || s.roundNo != round || s.round.Stage != game.Showdown {
		s.mu.Unlock()
		return
	}
	s.resetTimer = nil
	s.resetLocked()
	s.message = NextRoundMessage
	s.emit(Event{Type: EventRoundReset})
	events := s.pending
	s.pending = nil
	s.mu.Unlock()

	s.bus.publish(events)
}

func (s *Session) foldLocked(folder game.Seat) {
	s.emit(Event{Type: EventPlayerAction, Seat: folder, Action: game.Fold})

	winner := folder.Other()
	amount := s.ledger.Settle(winner)
	s.lastResult = s.resultLocked(winner, amount, false, folder)
	s.logger.Info("Round won by fold", "round", s.roundNo, "folder", folder, "winner", winner, "pot", amount)

	s.resetLocked()
	if folder == game.Human {
		s.message = fmt.Sprintf("You folded. Computer wins %d chips.", amount)
	} else {
		s.message = fmt.Sprintf("Computer folded. You win %d chips!", amount)
	}
	s.emit(Event{Type: EventRoundEnd, Seat: winner, Amount: amount})
}

// abortLocked handles a broken deck: the round cannot continue, so every
// chip goes back where it came from and the table resets.
func (s *Session) abortLocked(cause error) error {
	s.logger.Error("Round aborted, forcing reset", "round", s.roundNo, "stage", s.round.Stage, "error", cause)
	s.ledger.Refund()
	s.resetLocked()
	s.message = "Round aborted after an internal error. Chips refunded."
	s.emit(Event{Type: EventRoundAborted, Err: cause})
	return fmt.Errorf("round %d aborted: %w", s.roundNo, cause)
}

func (s *Session) resetLocked() {
	s.deck.Reset()
	s.humanHand = nil
	s.opponentHand = nil
	s.board = nil
	s.round.Reset()
}

func (s *Session) cancelResetLocked() {
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
}

func (s *Session) resultLocked(winner game.Seat, amount int, atShowdown bool, folder game.Seat) *Result {
	return &Result{
		Round:        s.roundNo,
		Winner:       winner,
		Amount:       amount,
		Showdown:     atShowdown,
		Folder:       folder,
		Stage:        s.round.Stage,
		HumanHand:    clone(s.humanHand),
		OpponentHand: clone(s.opponentHand),
		Board:        clone(s.board),
	}
}

func (s *Session) gameOverMessage() string {
	if s.ledger.Stack(game.Opponent) == 0 {
		return "Game over - You win the match!"
	}
	return "Game over - Computer wins the match."
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Round:         s.roundNo,
		Stage:         s.round.Stage,
		HumanHand:     clone(s.humanHand),
		OpponentCards: len(s.opponentHand),
		Community:     clone(s.board),
		Pot:           s.ledger.Pot(),
		CurrentBet:    s.round.CurrentBet,
		AllIn:         s.round.AllIn,
		HumanStack:    s.ledger.Stack(game.Human),
		OpponentStack: s.ledger.Stack(game.Opponent),
		ToAct:         s.round.ToAct,
		Message:       s.message,
		DeckRemaining: s.deck.Remaining(),
		LastResult:    s.lastResult,
	}
	if s.round.Stage == game.Showdown {
		snap.OpponentHand = clone(s.opponentHand)
	}
	if snap.HumanToAct() {
		snap.ValidActions = s.round.ValidActions()
	}
	snap.CanDeal = !s.closed && !s.round.Stage.IsBetting() &&
		snap.HumanStack > 0 && snap.OpponentStack > 0
	return snap
}

func clone(cards []deck.Card) []deck.Card {
	if cards == nil {
		return nil
	}
	c := make([]deck.Card, len(cards))
	copy(c, cards)
	return c
}
