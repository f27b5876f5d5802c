package grading

import (
	"math"
	"strconv"
)

// Base-pool constants. base(W) = A1*e^(a1*W) + B1*e^(b1*W) is strictly
// decreasing and positive, so every extra solver shrinks the pool without
// it ever going negative.
const (
	A1 = 8.90125
	a1 = -0.0279323
	B1 = 24.6239
	b1 = -0.402639
)

// Only the first six attempts count toward scoring; later attempts are
// recorded but never scored.
const maxScoredAttempts = 6

// decay per extra attempt used both for W and per-solver scores.
const attemptDecay = 0.8

// Stats aggregates one question's ledger for the live statistics display.
type Stats struct {
	WeightedSolves float64 // W
	Solves         int     // solvers within the scored window
	TotalAttempts  int
	Base           float64
}

// IsCorrect accepts iff |correct - submitted| <= |correct| * tolerancePct/100.
func IsCorrect(correct, submitted, tolerancePct float64) bool {
	return math.Abs(correct-submitted) <= math.Abs(correct*tolerancePct/100.0)
}

// Base computes the reward pool for a weighted solve count.
func Base(w float64) float64 {
	return A1*math.Exp(a1*w) + B1*math.Exp(b1*w)
}

// winningIndex returns the position of the first correct attempt within
// the scored window, or ok=false when the participant never lands one.
func winningIndex(attempts []string, answer, tolerancePct float64) (int, bool) {
	for i, raw := range attempts {
		if i >= maxScoredAttempts {
			break
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if IsCorrect(answer, v, tolerancePct) {
			return i, true
		}
	}
	return 0, false
}

// Collect walks a ledger grid of (participant, attempts...) rows and
// returns the aggregate stats. Pure; the ledger is not modified.
func Collect(ledger [][]string, answer, tolerancePct float64) Stats {
	var st Stats
	for _, row := range ledger {
		if len(row) == 0 {
			continue
		}
		attempts := row[1:]
		st.TotalAttempts += len(attempts)
		if i, ok := winningIndex(attempts, answer, tolerancePct); ok {
			st.WeightedSolves += math.Pow(attemptDecay, float64(i))
			st.Solves++
		}
	}
	st.Base = Base(st.WeightedSolves)
	return st
}

// Score returns one participant's score given precomputed stats: the base
// pool decayed by their winning attempt index, 0 for non-solvers.
func Score(attempts []string, answer, tolerancePct float64, st Stats) float64 {
	i, ok := winningIndex(attempts, answer, tolerancePct)
	if !ok {
		return 0
	}
	return st.Base * math.Pow(attemptDecay, float64(i))
}

// Grade computes every participant's score plus the aggregate stats for a
// ledger. Deterministic: grading an unchanged ledger twice yields
// identical results.
func Grade(ledger [][]string, answer, tolerancePct float64) (map[string]float64, Stats) {
	st := Collect(ledger, answer, tolerancePct)
	scores := make(map[string]float64, len(ledger))
	for _, row := range ledger {
		if len(row) == 0 {
			continue
		}
		scores[row[0]] = Score(row[1:], answer, tolerancePct, st)
	}
	return scores, st
}
