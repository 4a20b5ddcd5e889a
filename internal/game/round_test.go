package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const increment = 20

func TestRoundStart(t *testing.T) {
	var r Round
	require.NoError(t, r.Start(20))

	assert.Equal(t, Preflop, r.Stage)
	assert.Equal(t, 20, r.CurrentBet)
	assert.Equal(t, Human, r.ToAct)

	err := r.Start(20)
	assert.ErrorIs(t, err, ErrInvalidTransition, "cannot deal twice")
}

func TestRoundStagesOnlyMoveForward(t *testing.T) {
	var r Round
	require.NoError(t, r.Start(20))

	want := []Stage{Flop, Turn, River, Showdown}
	prev := r.Stage
	for _, w := range want {
		next, err := r.Advance()
		require.NoError(t, err)
		assert.Equal(t, w, next)
		assert.Greater(t, next, prev)
		assert.Equal(t, 0, r.CurrentBet, "bet resets on %s", next)
		assert.Equal(t, Human, r.ToAct)
		prev = next
	}

	_, err := r.Advance()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, Showdown, r.Stage)
}

func TestAdvanceFromIdleFails(t *testing.T) {
	var r Round
	_, err := r.Advance()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, Idle, r.Stage)
}

func TestCommunityCount(t *testing.T) {
	assert.Equal(t, 0, CommunityCount(Idle))
	assert.Equal(t, 0, CommunityCount(Preflop))
	assert.Equal(t, 3, CommunityCount(Flop))
	assert.Equal(t, 4, CommunityCount(Turn))
	assert.Equal(t, 5, CommunityCount(River))
	assert.Equal(t, 5, CommunityCount(Showdown))
}

func TestActCallThenOpponentCall(t *testing.T) {
	var r Round
	require.NoError(t, r.Start(20))

	cost, err := r.Act(Human, Call, increment)
	require.NoError(t, err)
	assert.Equal(t, 20, cost)
	assert.Equal(t, Opponent, r.ToAct)

	cost, err = r.Act(Opponent, Call, increment)
	require.NoError(t, err)
	assert.Equal(t, 20, cost)
	assert.True(t, Resolves(Call))
}

func TestActRaiseReRaiseLoopsBackToHuman(t *testing.T) {
	var r Round
	require.NoError(t, r.Start(20))
	_, err := r.Advance()
	require.NoError(t, err)

	cost, err := r.Act(Human, Raise, increment)
	require.NoError(t, err)
	assert.Equal(t, 20, cost)
	assert.Equal(t, 20, r.CurrentBet)

	cost, err = r.Act(Opponent, Raise, increment)
	require.NoError(t, err)
	assert.Equal(t, 40, cost)
	assert.Equal(t, 40, r.CurrentBet)
	assert.False(t, Resolves(Raise))
	assert.Equal(t, Human, r.ToAct)
}

func TestActRejectsIllegalActionsWithoutChangingState(t *testing.T) {
	var r Round
	require.NoError(t, r.Start(20))
	before := r

	_, err := r.Act(Human, Check, increment)
	assert.ErrorIs(t, err, ErrIllegalAction)
	assert.Equal(t, before, r)

	_, err = r.Act(Opponent, Call, increment)
	assert.ErrorIs(t, err, ErrIllegalAction, "out of turn")
	assert.Equal(t, before, r)

	_, err = r.Advance()
	require.NoError(t, err)
	before = r
	_, err = r.Act(Human, Call, increment)
	assert.ErrorIs(t, err, ErrIllegalAction, "nothing to call on a fresh street")
	assert.Equal(t, before, r)
}

func TestAllInRoundForbidsRaises(t *testing.T) {
	var r Round
	require.NoError(t, r.Start(20))

	cost, err := r.Act(Human, Raise, increment)
	require.NoError(t, err)
	assert.Equal(t, 40, cost)

	r.ShortRaise(25)
	assert.True(t, r.AllIn)
	assert.Equal(t, 25, r.CurrentBet, "outstanding bet drops to what was paid")
	assert.Equal(t, []Action{Fold, Call}, r.ValidActions())

	before := r
	_, err = r.Act(Opponent, Raise, increment)
	assert.ErrorIs(t, err, ErrIllegalAction)
	assert.Equal(t, before, r)

	cost, err = r.Act(Opponent, Call, increment)
	require.NoError(t, err)
	assert.Equal(t, 25, cost)

	_, err = r.Advance()
	require.NoError(t, err)
	assert.True(t, r.AllIn, "all-in survives the street change")
	assert.Equal(t, []Action{Fold, Check}, r.ValidActions())
}

func TestActOutsideBettingStage(t *testing.T) {
	var r Round
	_, err := r.Act(Human, Fold, increment)
	assert.ErrorIs(t, err, ErrIllegalAction)
}

func TestFoldCostsNothing(t *testing.T) {
	var r Round
	require.NoError(t, r.Start(20))
	cost, err := r.Act(Human, Fold, increment)
	require.NoError(t, err)
	assert.Equal(t, 0, cost)
}

func TestReset(t *testing.T) {
	var r Round
	require.NoError(t, r.Start(20))
	r.Reset()
	assert.Equal(t, Round{}, r)
	assert.Equal(t, Idle, r.Stage)
}

func TestStageNames(t *testing.T) {
	assert.Equal(t, "preflop", Preflop.String())
	assert.Equal(t, "River", River.Title())
	assert.True(t, Turn.IsBetting())
	assert.False(t, Idle.IsBetting())
	assert.False(t, Showdown.IsBetting())
}
