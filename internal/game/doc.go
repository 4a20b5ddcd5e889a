// Package game implements the betting rules for a heads-up round.
//
// The package has no chips or cards of its own. It answers three questions
// for the round controller: which actions are legal for the outstanding bet,
// what an action costs, and which stage comes next.
//
// # Stages
//
// A round moves strictly forward:
//
//	Idle -> Preflop -> Flop -> Turn -> River -> Showdown
//
// A fold from any betting stage ends the round; the controller then resets
// the Round to Idle.
//
// # Turn protocol
//
// The human always acts first. After each human check, call or raise the
// opponent answers once. A check or call from the opponent closes the street
// (see Resolves); a raise hands the action back to the human:
//
//	var r game.Round
//	_ = r.Start(20)                       // preflop, 20 to call
//	cost, _ := r.Act(game.Human, game.Call, 20)     // cost == 20
//	cost, _ = r.Act(game.Opponent, game.Raise, 20)  // cost == 40, CurrentBet == 40
//	// game.Resolves(game.Raise) == false, so the human acts again
package game
