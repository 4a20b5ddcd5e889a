package game

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a stage change would skip or regress
var ErrInvalidTransition = errors.New("invalid stage transition")

// Stage is the lifecycle position of a round
type Stage int

const (
	Idle Stage = iota
	Preflop
	Flop
	Turn
	River
	Showdown
)

func (s Stage) String() string {
	switch s {
	case Idle:
		return "idle"
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case Showdown:
		return "showdown"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Title returns the capitalised stage name for status messages
func (s Stage) Title() string {
	switch s {
	case Preflop:
		return "Preflop"
	case Flop:
		return "Flop"
	case Turn:
		return "Turn"
	case River:
		return "River"
	case Showdown:
		return "Showdown"
	default:
		return "Idle"
	}
}

// IsBetting reports whether players act during this stage
func (s Stage) IsBetting() bool {
	return s >= Preflop && s <= River
}

// CommunityCount is the number of community cards on the board during a stage
func CommunityCount(s Stage) int {
	switch s {
	case Flop:
		return 3
	case Turn:
		return 4
	case River, Showdown:
		return 5
	default:
		return 0
	}
}

// Round is the betting state machine for one heads-up round. The human
// always acts first on every street; the opponent answers once per human
// action.
type Round struct {
	Stage      Stage
	CurrentBet int
	ToAct      Seat

	// AllIn is set once either seat has nothing behind. Nobody may raise for
	// the rest of the round.
	AllIn bool
}

// Start moves an idle round to preflop with the big blind outstanding
func (r *Round) Start(bigBlind int) error {
	if r.Stage != Idle {
		return fmt.Errorf("%w: deal from %s", ErrInvalidTransition, r.Stage)
	}
	r.Stage = Preflop
	r.CurrentBet = bigBlind
	r.ToAct = Human
	return nil
}

// Act validates an action for seat and applies its effect on the betting
// state. It returns the chips the action costs; paying them is the caller's
// job. Folding returns zero and leaves the state as is, since the caller
// ends the round.
func (r *Round) Act(seat Seat, action Action, increment int) (int, error) {
	if !r.Stage.IsBetting() {
		return 0, fmt.Errorf("%w: no betting during %s", ErrIllegalAction, r.Stage)
	}
	if seat != r.ToAct {
		return 0, fmt.Errorf("%w: it is the %s's turn", ErrIllegalAction, r.ToAct)
	}
	if err := Validate(action, r.CurrentBet); err != nil {
		return 0, err
	}
	if action == Raise && r.AllIn {
		return 0, fmt.Errorf("%w: cannot raise, a player is all-in", ErrIllegalAction)
	}

	cost := Cost(action, r.CurrentBet, increment)
	switch action {
	case Fold:
		return 0, nil
	case Raise:
		r.CurrentBet = cost
	}
	r.ToAct = seat.Other()
	return cost, nil
}

// ValidActions returns the legal actions for the acting seat
func (r *Round) ValidActions() []Action {
	valid := ValidActions(r.CurrentBet)
	if r.AllIn {
		return valid[:len(valid)-1]
	}
	return valid
}

// ShortRaise records that a raise was only partly covered by the raiser's
// stack. The outstanding bet drops to what was actually paid and the round
// is marked all-in.
func (r *Round) ShortRaise(paid int) {
	if paid < r.CurrentBet {
		r.CurrentBet = paid
	}
	r.AllIn = true
}

// Resolves reports whether the opponent's answer closes the street. A raise
// hands the action back to the human.
func Resolves(opponentAction Action) bool {
	return opponentAction == Check || opponentAction == Call
}

// Advance moves to the next stage, clearing the outstanding bet. Advancing
// from the river lands on showdown. An all-in round stays all-in.
func (r *Round) Advance() (Stage, error) {
	if !r.Stage.IsBetting() {
		return r.Stage, fmt.Errorf("%w: advance from %s", ErrInvalidTransition, r.Stage)
	}
	r.Stage++
	r.CurrentBet = 0
	r.ToAct = Human
	return r.Stage, nil
}

// Reset returns the round to idle
func (r *Round) Reset() {
	*r = Round{}
}
