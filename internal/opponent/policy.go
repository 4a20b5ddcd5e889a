// Package opponent provides the decision makers for the computer player.
//
// A Policy sees a read-only State and returns one action. Policies never
// touch chips or cards; the round controller validates and applies what they
// return, so a stronger strategy can be swapped in without changing the
// state machine.
package opponent

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/internal/randutil"
)

// ErrUnknownPolicy is returned by New for unregistered policy names
var ErrUnknownPolicy = errors.New("unknown policy")

// State is the read-only view handed to a policy
type State struct {
	Stage      game.Stage
	CurrentBet int
	Pot        int
	OwnStack   int
	OtherStack int

	// AllIn means a seat has nothing behind and raising is no longer legal
	AllIn bool
}

// Policy decides an action for the acting seat
type Policy interface {
	Decide(state State) game.Action
}

// PolicyFunc adapts a function to the Policy interface
type PolicyFunc func(State) game.Action

// Decide calls f(state)
func (f PolicyFunc) Decide(state State) game.Action {
	return f(state)
}

// Default action weights for the Random policy
const (
	DefaultFoldProb = 0.10
	DefaultCallProb = 0.50
)

// Random samples fold, call or raise from a fixed distribution and ignores
// everything about the state except whether a call would be free.
type Random struct {
	rng      randutil.Source
	foldProb float64
	callProb float64
}

// NewRandom creates the default 10% fold, 50% call, 40% raise policy
func NewRandom(rng randutil.Source) *Random {
	return NewRandomWithWeights(rng, DefaultFoldProb, DefaultCallProb)
}

// NewRandomWithWeights creates a Random policy; the raise probability is
// whatever remains after fold and call.
func NewRandomWithWeights(rng randutil.Source, foldProb, callProb float64) *Random {
	return &Random{rng: rng, foldProb: foldProb, callProb: callProb}
}

// Decide implements Policy. A sampled call facing no bet is a check.
func (r *Random) Decide(state State) game.Action {
	x := r.rng.Float64()
	switch {
	case x < r.foldProb:
		return game.Fold
	case x < r.foldProb+r.callProb:
		return game.Passive(state.CurrentBet)
	default:
		return raise(state)
	}
}

// CallingStation never folds and never raises
type CallingStation struct{}

// Decide implements Policy
func (CallingStation) Decide(state State) game.Action {
	return game.Passive(state.CurrentBet)
}

// Aggressive raises most of the time and otherwise checks or calls
type Aggressive struct {
	rng       randutil.Source
	raiseProb float64
}

// NewAggressive creates a policy that raises 70% of the time
func NewAggressive(rng randutil.Source) *Aggressive {
	return &Aggressive{rng: rng, raiseProb: 0.7}
}

// Decide implements Policy
func (a *Aggressive) Decide(state State) game.Action {
	if a.rng.Float64() < a.raiseProb {
		return raise(state)
	}
	return game.Passive(state.CurrentBet)
}

// Uniform picks any legal action with equal probability
type Uniform struct {
	rng randutil.Source
}

// NewUniform creates a Uniform policy
func NewUniform(rng randutil.Source) *Uniform {
	return &Uniform{rng: rng}
}

// Decide implements Policy
func (u *Uniform) Decide(state State) game.Action {
	valid := game.ValidActions(state.CurrentBet)
	if state.AllIn {
		valid = valid[:len(valid)-1]
	}
	return valid[u.rng.IntN(len(valid))]
}

// raise falls back to checking or calling once nobody may raise
func raise(state State) game.Action {
	if state.AllIn {
		return game.Passive(state.CurrentBet)
	}
	return game.Raise
}

var registry = map[string]func(randutil.Source) Policy{
	"random":     func(rng randutil.Source) Policy { return NewRandom(rng) },
	"station":    func(randutil.Source) Policy { return CallingStation{} },
	"aggressive": func(rng randutil.Source) Policy { return NewAggressive(rng) },
	"uniform":    func(rng randutil.Source) Policy { return NewUniform(rng) },
}

// New builds a registered policy by name
func New(name string, rng randutil.Source) (Policy, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownPolicy, name, Names())
	}
	return ctor(rng), nil
}

// Names lists the registered policy names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	_ Policy = (*Random)(nil)
	_ Policy = CallingStation{}
	_ Policy = (*Aggressive)(nil)
	_ Policy = (*Uniform)(nil)
	_ Policy = PolicyFunc(nil)
)
