// Package showdown decides who takes the pot when a round reaches showdown.
package showdown

import (
	"github.com/lox/headsup/internal/deck"
	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/internal/randutil"
)

// Comparator picks the winning seat from both hands and the board
type Comparator interface {
	Compare(human, opponent, board []deck.Card) game.Seat
}

// ComparatorFunc adapts a function to the Comparator interface
type ComparatorFunc func(human, opponent, board []deck.Card) game.Seat

// Compare calls f
func (f ComparatorFunc) Compare(human, opponent, board []deck.Card) game.Seat {
	return f(human, opponent, board)
}

// CoinFlip awards the pot 50/50 without looking at the cards.
//
// TODO: replace with a hand-ranking comparator once hand evaluation is in scope.
type CoinFlip struct {
	rng randutil.Source
}

// NewCoinFlip creates a CoinFlip comparator
func NewCoinFlip(rng randutil.Source) *CoinFlip {
	return &CoinFlip{rng: rng}
}

// Compare implements Comparator
func (c *CoinFlip) Compare(_, _, _ []deck.Card) game.Seat {
	if c.rng.Float64() < 0.5 {
		return game.Human
	}
	return game.Opponent
}

// Fixed always returns the same winner
type Fixed game.Seat

// Compare implements Comparator
func (f Fixed) Compare(_, _, _ []deck.Card) game.Seat {
	return game.Seat(f)
}

var (
	_ Comparator = (*CoinFlip)(nil)
	_ Comparator = Fixed(game.Human)
	_ Comparator = ComparatorFunc(nil)
)
