package game

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIllegalAction is returned when an action is not valid for the current bet,
// stage, or turn. The round state is left unchanged.
var ErrIllegalAction = errors.New("illegal action")

// Action represents a player action
type Action int

const (
	Fold Action = iota
	Check
	Call
	Raise
)

func (a Action) String() string {
	switch a {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Call:
		return "call"
	case Raise:
		return "raise"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseAction accepts the action names and their single-letter shortcuts
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold", "f":
		return Fold, nil
	case "check", "k", "x":
		return Check, nil
	case "call", "c":
		return Call, nil
	case "raise", "r":
		return Raise, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// Seat identifies one of the two players
type Seat int

const (
	Human Seat = iota
	Opponent
)

func (s Seat) String() string {
	switch s {
	case Human:
		return "human"
	case Opponent:
		return "opponent"
	default:
		return fmt.Sprintf("seat(%d)", int(s))
	}
}

// Other returns the opposing seat
func (s Seat) Other() Seat {
	if s == Human {
		return Opponent
	}
	return Human
}

// ValidActions returns the legal actions for the given outstanding bet.
// Check needs a zero bet, call needs a positive one; fold and raise are
// always available.
func ValidActions(currentBet int) []Action {
	if currentBet == 0 {
		return []Action{Fold, Check, Raise}
	}
	return []Action{Fold, Call, Raise}
}

// Validate reports whether action is legal for currentBet
func Validate(action Action, currentBet int) error {
	switch action {
	case Fold, Raise:
		return nil
	case Check:
		if currentBet > 0 {
			return fmt.Errorf("%w: cannot check facing a bet of %d", ErrIllegalAction, currentBet)
		}
		return nil
	case Call:
		if currentBet == 0 {
			return fmt.Errorf("%w: nothing to call", ErrIllegalAction)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrIllegalAction, action)
	}
}

// Cost returns the chips an action puts into the pot. A call costs the
// outstanding bet and a raise costs the outstanding bet plus the increment.
func Cost(action Action, currentBet, increment int) int {
	switch action {
	case Call:
		return currentBet
	case Raise:
		return currentBet + increment
	default:
		return 0
	}
}

// Passive returns the free-or-matching action for currentBet, used when a
// decision maker produced something illegal.
func Passive(currentBet int) Action {
	if currentBet == 0 {
		return Check
	}
	return Call
}
