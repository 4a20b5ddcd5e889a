// Package statistics aggregates simulated round results for the human seat.
package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/headsup/internal/game"
)

// RoundResult represents the outcome of a single round from the human's seat
type RoundResult struct {
	NetBB          float64    // Net big blinds won/lost by the human
	Seed           int64      // Session seed (for replay)
	WentToShowdown bool       // Did the round reach showdown?
	Folder         game.Seat  // Who folded, when WentToShowdown is false
	FinalPotSize   int        // Pot awarded, in chips
	StreetReached  game.Stage // Furthest betting street reached
	BigBlind       int        // Big blind used to convert chips into bb
}

// StreetStats tracks results for rounds that ended on one street
type StreetStats struct {
	Rounds int
	SumBB  float64
}

// Statistics tracks simulation statistics in big blinds per round
type Statistics struct {
	Rounds int
	SumBB  float64
	SumBB2 float64   // Sum of squares for variance calculation
	Values []float64 // Store all values for median/percentile calculation

	ShowdownWins    int     // Rounds won at showdown
	NonShowdownWins int     // Rounds won because the computer folded
	HumanFolds      int     // Rounds the human gave up
	OpponentFolds   int     // Rounds the computer gave up
	Showdowns       int     // Rounds that reached showdown
	ShowdownBB      float64 // BB from showdown (wins AND losses)
	NonShowdownBB   float64 // BB from folds (wins AND losses)
	AllBB           float64 // Total BB for sanity check

	// Indexed by the furthest street reached
	StreetResults [game.Showdown + 1]StreetStats

	MaxPotChips int     // Largest pot observed (in chips)
	MaxPotBB    float64 // Largest pot observed (in bb)
	BigPots     int     // Pots >= 50bb
	BigPotsBB   float64 // BB from big pots
}

// Mean returns the arithmetic mean of all results in big blinds per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumBB / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumBB2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// ShowdownRate returns the fraction of rounds that reached showdown
func (s *Statistics) ShowdownRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Showdowns) / float64(s.Rounds)
}

// FoldRate returns the fraction of rounds the given seat folded
func (s *Statistics) FoldRate(seat game.Seat) float64 {
	if s.Rounds == 0 {
		return 0
	}
	folds := s.HumanFolds
	if seat == game.Opponent {
		folds = s.OpponentFolds
	}
	return float64(folds) / float64(s.Rounds)
}

// Add incorporates a new round result into the statistics
func (s *Statistics) Add(result RoundResult) {
	netBB := result.NetBB
	s.Rounds++
	s.SumBB += netBB
	s.SumBB2 += netBB * netBB
	s.Values = append(s.Values, netBB)

	if result.WentToShowdown {
		s.Showdowns++
		s.ShowdownBB += netBB
		if netBB > 0 {
			s.ShowdownWins++
		}
	} else {
		s.NonShowdownBB += netBB
		if result.Folder == game.Human {
			s.HumanFolds++
		} else {
			s.OpponentFolds++
			s.NonShowdownWins++
		}
	}
	s.AllBB += netBB

	if st := result.StreetReached; st >= game.Idle && st <= game.Showdown {
		s.StreetResults[st].Rounds++
		s.StreetResults[st].SumBB += netBB
	}

	bigBlind := result.BigBlind
	if bigBlind <= 0 {
		bigBlind = 1
	}
	potBB := float64(result.FinalPotSize) / float64(bigBlind)
	if result.FinalPotSize > s.MaxPotChips {
		s.MaxPotChips = result.FinalPotSize
		s.MaxPotBB = potBB
	}
	if potBB >= 50 {
		s.BigPots++
		s.BigPotsBB += netBB
	}
}

// Merge folds other into s. Values keep their order: s first, then other.
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.SumBB += other.SumBB
	s.SumBB2 += other.SumBB2
	s.Values = append(s.Values, other.Values...)

	s.ShowdownWins += other.ShowdownWins
	s.NonShowdownWins += other.NonShowdownWins
	s.HumanFolds += other.HumanFolds
	s.OpponentFolds += other.OpponentFolds
	s.Showdowns += other.Showdowns
	s.ShowdownBB += other.ShowdownBB
	s.NonShowdownBB += other.NonShowdownBB
	s.AllBB += other.AllBB

	for i := range s.StreetResults {
		s.StreetResults[i].Rounds += other.StreetResults[i].Rounds
		s.StreetResults[i].SumBB += other.StreetResults[i].SumBB
	}

	if other.MaxPotChips > s.MaxPotChips {
		s.MaxPotChips = other.MaxPotChips
		s.MaxPotBB = other.MaxPotBB
	}
	s.BigPots += other.BigPots
	s.BigPotsBB += other.BigPotsBB
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// StreetMean returns the mean result for rounds that ended on a street
func (s *Statistics) StreetMean(stage game.Stage) float64 {
	if stage < game.Idle || stage > game.Showdown {
		return 0
	}
	st := s.StreetResults[stage]
	if st.Rounds == 0 {
		return 0
	}
	return st.SumBB / float64(st.Rounds)
}

// IsLedgerBalanced checks if the accounting is consistent
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.AllBB-s.ShowdownBB-s.NonShowdownBB) <= 1e-6
}

// Validate performs comprehensive validation of statistics data
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: AllBB=%.6f, ShowdownBB=%.6f, NonShowdownBB=%.6f",
			s.AllBB, s.ShowdownBB, s.NonShowdownBB)
	}

	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}

	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}

	if s.Showdowns+s.HumanFolds+s.OpponentFolds != s.Rounds {
		return fmt.Errorf("showdowns (%d) + folds (%d/%d) do not add up to rounds (%d)",
			s.Showdowns, s.HumanFolds, s.OpponentFolds, s.Rounds)
	}

	totalWins := s.ShowdownWins + s.NonShowdownWins
	if totalWins > s.Rounds {
		return fmt.Errorf("total wins (%d) exceeds total rounds (%d)", totalWins, s.Rounds)
	}

	totalStreetRounds := 0
	for _, st := range s.StreetResults {
		totalStreetRounds += st.Rounds
	}
	if totalStreetRounds != s.Rounds {
		return fmt.Errorf("street rounds total (%d) does not match total rounds (%d)",
			totalStreetRounds, s.Rounds)
	}

	return nil
}
