package searcher

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Arm is a snapshot of a root child's statistics from the perspective of the player to
// move at the root.
type Arm struct {
	Index    int // Position among the root's children
	Visits   int
	Exploit  float64
	Outcomes [3]int // Wins, losses, draws
}

// Policy decides which arms survive an elimination round. Survivors must be a pure
// function of the given statistics.
type Policy interface {
	Name() string
	// TracksOutcomes reports whether backpropagation must count wins/losses/draws.
	TracksOutcomes() bool
	// Survivors returns the indices (Arm.Index) of the arms that stay under search.
	Survivors(arms []Arm) []int
}

// timed policies end rounds at wall-clock deadlines instead of after every active arm
// was visited once, and drop eliminated arms from the final move selection.
type timed interface {
	timed()
}

// Halving keeps the better half of the arms by exploit value.
type Halving struct{}

func (Halving) Name() string         { return "halving" }
func (Halving) TracksOutcomes() bool { return false }

func (Halving) Survivors(arms []Arm) []int {
	ranked := rank(arms, func(a Arm) float64 { return a.Exploit })
	return indices(ranked[:ceilHalf(len(ranked))])
}

// EntropyHalving keeps the better half of the arms by win rate plus weighted Shannon
// entropy of their outcomes.
type EntropyHalving struct {
	Weight float64
}

func (e EntropyHalving) Name() string       { return fmt.Sprintf("entropy(%g)", e.Weight) }
func (EntropyHalving) TracksOutcomes() bool { return true }

func (e EntropyHalving) Survivors(arms []Arm) []int {
	ranked := rank(arms, func(a Arm) float64 { return rating(a.Outcomes, a.Visits, e.Weight) })
	return indices(ranked[:ceilHalf(len(ranked))])
}

// Clustering splits the arms, sorted by exploit value, where the summed squared error of
// the two clusters is minimal and keeps the upper cluster.
type Clustering struct{}

func (Clustering) Name() string         { return "clustering" }
func (Clustering) TracksOutcomes() bool { return false }

func (Clustering) Survivors(arms []Arm) []int {
	ranked := rank(arms, func(a Arm) float64 { return a.Exploit })
	values := make([]float64, len(ranked))
	for i, arm := range ranked {
		values[i] = arm.Exploit
	}
	return indices(ranked[:bestSplit(values)])
}

// TimeSliced halves the arms by exploit value at the end of every timed round, never
// going below two arms.
type TimeSliced struct{}

func (TimeSliced) Name() string         { return "time-sliced" }
func (TimeSliced) TracksOutcomes() bool { return false }
func (TimeSliced) timed()               {}

func (TimeSliced) Survivors(arms []Arm) []int {
	ranked := rank(arms, func(a Arm) float64 { return a.Exploit })
	if len(ranked) > 2 {
		ranked = ranked[:max(2, len(ranked)/2)]
	}
	return indices(ranked)
}

// rank sorts a copy of arms by descending key; equal keys keep their order.
func rank(arms []Arm, key func(Arm) float64) []Arm {
	ranked := slices.Clone(arms)
	slices.SortStableFunc(ranked, func(a, b Arm) int {
		ka, kb := key(a), key(b)
		switch {
		case ka > kb:
			return -1
		case ka < kb:
			return 1
		}
		return 0
	})
	return ranked
}

// indices returns the arm indices in ascending order.
func indices(arms []Arm) []int {
	result := make([]int, len(arms))
	for i, arm := range arms {
		result[i] = arm.Index
	}
	slices.Sort(result)
	return result
}

func ceilHalf(n int) int {
	return (n + 1) / 2
}
