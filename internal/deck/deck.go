package deck

import (
	"errors"
	"fmt"

	"github.com/lox/headsup/internal/randutil"
)

// Size is the number of cards in a full deck
const Size = 52

// ErrDeckExhausted is returned when a draw is attempted on an empty deck.
// A round draws at most nine cards, so seeing this means an invariant broke.
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck is an ordered sequence of cards drawn from the top (index 0)
type Deck struct {
	cards []Card
	rng   randutil.Source
}

// Canonical returns the 52 cards in a fixed suit-major order
func Canonical() []Card {
	cards := make([]Card, 0, Size)
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return cards
}

// New creates a full deck shuffled with the given source
func New(rng randutil.Source) *Deck {
	d := &Deck{rng: rng}
	d.Reset()
	return d
}

// FromCards creates a deck that deals exactly the given cards in order.
// Reset on such a deck restores a full shuffled deck if it has a source.
func FromCards(cards []Card, rng randutil.Source) *Deck {
	c := make([]Card, len(cards))
	copy(c, cards)
	return &Deck{cards: c, rng: rng}
}

// Shuffle randomizes the order of the remaining cards using Fisher-Yates
func (d *Deck) Shuffle() {
	if d.rng == nil {
		return
	}
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrDeckExhausted
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// DrawN removes and returns the top n cards. Nothing is drawn if fewer than
// n cards remain.
func (d *Deck) DrawN(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, fmt.Errorf("draw %d with %d remaining: %w", n, len(d.cards), ErrDeckExhausted)
	}
	cards := make([]Card, n)
	copy(cards, d.cards[:n])
	d.cards = d.cards[n:]
	return cards, nil
}

// Reset restores a full 52-card deck and shuffles it
func (d *Deck) Reset() {
	d.cards = Canonical()
	d.Shuffle()
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards, top first
func (d *Deck) Cards() []Card {
	c := make([]Card, len(d.cards))
	copy(c, d.cards)
	return c
}
