package showdown

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/headsup/internal/deck"
	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/internal/randutil"
)

func TestCoinFlipIgnoresCards(t *testing.T) {
	nuts := deck.MustParseCards("AsAh")
	trash := deck.MustParseCards("7d2c")
	board := deck.MustParseCards("AdAcKsQsJs")

	c := NewCoinFlip(randutil.NewScripted(0.7, 0.2))
	assert.Equal(t, game.Opponent, c.Compare(nuts, trash, board))
	assert.Equal(t, game.Human, c.Compare(trash, nuts, board))
}

func TestCoinFlipIsFair(t *testing.T) {
	c := NewCoinFlip(randutil.New(8))
	humanWins := 0
	const n = 10000
	for i := 0; i < n; i++ {
		if c.Compare(nil, nil, nil) == game.Human {
			humanWins++
		}
	}
	assert.InDelta(t, 0.5, float64(humanWins)/n, 0.03)
}

func TestFixed(t *testing.T) {
	assert.Equal(t, game.Opponent, Fixed(game.Opponent).Compare(nil, nil, nil))
	assert.Equal(t, game.Human, Fixed(game.Human).Compare(nil, nil, nil))
}

func TestComparatorFuncSeesCards(t *testing.T) {
	var gotBoard []deck.Card
	f := ComparatorFunc(func(_, _, board []deck.Card) game.Seat {
		gotBoard = board
		return game.Human
	})
	board := deck.MustParseCards("2h3h4h5h6h")
	assert.Equal(t, game.Human, f.Compare(nil, nil, board))
	assert.Equal(t, board, gotBoard)
}
