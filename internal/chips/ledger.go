// Package chips tracks the two stacks and the shared pot of a heads-up game.
//
// Every operation preserves human + opponent + pot. Bets larger than a stack
// are clamped to what the stack holds (all-in) rather than driving it
// negative.
package chips

import (
	"errors"
	"fmt"

	"github.com/lox/headsup/internal/game"
)

var (
	// ErrInsufficientChips is returned when a stack is empty and cannot post its blind
	ErrInsufficientChips = errors.New("insufficient chips")

	// ErrNegativeAmount is returned for bets below zero
	ErrNegativeAmount = errors.New("negative bet amount")
)

// Blinds records what each seat actually posted
type Blinds struct {
	Small int // posted by the opponent
	Big   int // posted by the human
}

// Balance is a point-in-time copy of the ledger
type Balance struct {
	Human    int
	Opponent int
	Pot      int
}

// Total returns the chips in play
func (b Balance) Total() int {
	return b.Human + b.Opponent + b.Pot
}

// Ledger holds both stacks, the pot, and each seat's share of the pot
type Ledger struct {
	stacks        [2]int
	pot           int
	contributions [2]int
}

// NewLedger creates a ledger with the given starting stacks
func NewLedger(human, opponent int) *Ledger {
	return &Ledger{stacks: [2]int{human, opponent}}
}

// PostBlinds takes the small blind from the opponent and the big blind from
// the human. A stack smaller than its blind posts everything it has.
func (l *Ledger) PostBlinds(small, big int) (Blinds, error) {
	if small < 0 || big < 0 {
		return Blinds{}, fmt.Errorf("blinds %d/%d: %w", small, big, ErrNegativeAmount)
	}
	for _, seat := range []game.Seat{game.Human, game.Opponent} {
		if l.stacks[seat] == 0 {
			return Blinds{}, fmt.Errorf("%s cannot post blind: %w", seat, ErrInsufficientChips)
		}
	}

	sb := l.take(game.Opponent, small)
	bb := l.take(game.Human, big)
	return Blinds{Small: sb, Big: bb}, nil
}

// ApplyBet moves up to amount chips from payer into the pot and returns the
// amount actually paid.
func (l *Ledger) ApplyBet(payer game.Seat, amount int) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%s bet %d: %w", payer, amount, ErrNegativeAmount)
	}
	return l.take(payer, amount), nil
}

func (l *Ledger) take(seat game.Seat, amount int) int {
	if amount > l.stacks[seat] {
		amount = l.stacks[seat]
	}
	l.stacks[seat] -= amount
	l.pot += amount
	l.contributions[seat] += amount
	return amount
}

// Settle transfers the entire pot to winner and returns the amount awarded
func (l *Ledger) Settle(winner game.Seat) int {
	amount := l.pot
	l.stacks[winner] += amount
	l.pot = 0
	l.contributions = [2]int{}
	return amount
}

// Refund returns each seat's contribution from the pot. Used when a round
// has to be abandoned.
func (l *Ledger) Refund() {
	for seat, c := range l.contributions {
		l.stacks[seat] += c
		l.pot -= c
	}
	l.contributions = [2]int{}
}

// Stack returns the chips a seat holds outside the pot
func (l *Ledger) Stack(seat game.Seat) int {
	return l.stacks[seat]
}

// Pot returns the chips in the pot
func (l *Ledger) Pot() int {
	return l.pot
}

// Contribution returns what a seat has put into the current pot
func (l *Ledger) Contribution(seat game.Seat) int {
	return l.contributions[seat]
}

// Total returns the chips in play
func (l *Ledger) Total() int {
	return l.stacks[0] + l.stacks[1] + l.pot
}

// Balance returns a copy of the current balances
func (l *Ledger) Balance() Balance {
	return Balance{
		Human:    l.stacks[game.Human],
		Opponent: l.stacks[game.Opponent],
		Pot:      l.pot,
	}
}

// Validate checks the ledger against the total it must conserve
func (l *Ledger) Validate(expectedTotal int) error {
	b := l.Balance()
	if b.Human < 0 || b.Opponent < 0 || b.Pot < 0 {
		return fmt.Errorf("negative balance: human=%d opponent=%d pot=%d", b.Human, b.Opponent, b.Pot)
	}
	if total := b.Total(); total != expectedTotal {
		return fmt.Errorf("chip total %d, expected %d (human=%d opponent=%d pot=%d)",
			total, expectedTotal, b.Human, b.Opponent, b.Pot)
	}
	return nil
}
