package chips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/internal/randutil"
)

func TestPostBlinds(t *testing.T) {
	l := NewLedger(1000, 1000)

	blinds, err := l.PostBlinds(10, 20)
	require.NoError(t, err)

	assert.Equal(t, Blinds{Small: 10, Big: 20}, blinds)
	assert.Equal(t, Balance{Human: 980, Opponent: 990, Pot: 30}, l.Balance())
	assert.Equal(t, 20, l.Contribution(game.Human))
	assert.Equal(t, 10, l.Contribution(game.Opponent))
	assert.Equal(t, 2000, l.Total())
}

func TestPostBlindsClampsShortStack(t *testing.T) {
	l := NewLedger(15, 5)

	blinds, err := l.PostBlinds(10, 20)
	require.NoError(t, err)

	assert.Equal(t, Blinds{Small: 5, Big: 15}, blinds)
	assert.Equal(t, Balance{Human: 0, Opponent: 0, Pot: 20}, l.Balance())
}

func TestPostBlindsEmptyStack(t *testing.T) {
	for _, tc := range []struct {
		name            string
		human, opponent int
	}{
		{"human busted", 0, 2000},
		{"opponent busted", 2000, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLedger(tc.human, tc.opponent)
			_, err := l.PostBlinds(10, 20)
			assert.ErrorIs(t, err, ErrInsufficientChips)
			assert.Equal(t, Balance{Human: tc.human, Opponent: tc.opponent}, l.Balance(), "nothing moves on failure")
		})
	}
}

func TestApplyBet(t *testing.T) {
	l := NewLedger(1000, 1000)

	paid, err := l.ApplyBet(game.Human, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, paid)
	assert.Equal(t, Balance{Human: 980, Opponent: 1000, Pot: 20}, l.Balance())

	paid, err = l.ApplyBet(game.Opponent, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, paid)

	_, err = l.ApplyBet(game.Opponent, -5)
	assert.ErrorIs(t, err, ErrNegativeAmount)
	assert.Equal(t, Balance{Human: 980, Opponent: 1000, Pot: 20}, l.Balance())
}

func TestApplyBetClampsToStack(t *testing.T) {
	l := NewLedger(30, 1000)

	paid, err := l.ApplyBet(game.Human, 40)
	require.NoError(t, err)
	assert.Equal(t, 30, paid)
	assert.Equal(t, 0, l.Stack(game.Human))
	assert.Equal(t, 30, l.Pot())

	paid, err = l.ApplyBet(game.Human, 20)
	require.NoError(t, err)
	assert.Equal(t, 0, paid, "an all-in stack pays nothing further")
}

func TestSettle(t *testing.T) {
	l := NewLedger(1000, 1000)
	_, err := l.PostBlinds(10, 20)
	require.NoError(t, err)

	won := l.Settle(game.Opponent)
	assert.Equal(t, 30, won)
	assert.Equal(t, Balance{Human: 980, Opponent: 1020, Pot: 0}, l.Balance())
	assert.Equal(t, 0, l.Contribution(game.Human))
	assert.Equal(t, 2000, l.Total())
}

func TestRefund(t *testing.T) {
	l := NewLedger(1000, 1000)
	_, err := l.PostBlinds(10, 20)
	require.NoError(t, err)
	_, err = l.ApplyBet(game.Human, 40)
	require.NoError(t, err)

	l.Refund()
	assert.Equal(t, Balance{Human: 1000, Opponent: 1000, Pot: 0}, l.Balance())
}

// Random sequences of bets and settlements never change the total.
func TestConservationUnderRandomOperations(t *testing.T) {
	rng := randutil.New(99)
	l := NewLedger(500, 500)
	const total = 1000

	for i := 0; i < 5000; i++ {
		seat := game.Seat(rng.IntN(2))
		switch rng.IntN(5) {
		case 0:
			_, _ = l.PostBlinds(10, 20)
		case 1, 2:
			_, err := l.ApplyBet(seat, rng.IntN(80))
			require.NoError(t, err)
		case 3:
			l.Settle(seat)
		case 4:
			l.Refund()
		}
		require.NoError(t, l.Validate(total), "step %d", i)
	}
}

func TestValidateDetectsDrift(t *testing.T) {
	l := NewLedger(100, 100)
	assert.NoError(t, l.Validate(200))
	assert.Error(t, l.Validate(199))
}
