package searcher

import (
	"math"
	"time"

	"seqhalving/meta"
)

type Mode int

const (
	IterationMode Mode = iota
	TimeMode
)

func (m Mode) String() string {
	if m == TimeMode {
		return "time"
	}
	return "iterations"
}

type StopReason int

const (
	StopNone       StopReason = iota
	StopInterrupt             // Cancelled by the host
	StopIterations            // Iteration budget spent
	StopDeadline              // Time budget spent
)

func (r StopReason) String() string {
	switch r {
	case StopInterrupt:
		return "interrupt"
	case StopIterations:
		return "iterations"
	case StopDeadline:
		return "deadline"
	}
	return "none"
}

// Budget bounds a single search either by a number of iterations or by a deadline.
type Budget struct {
	Mode       Mode
	Iterations int
	Deadline   time.Time
	// Allowance is the wall-clock time the host granted, used to size timed rounds.
	Allowance time.Duration
}

// IterationBudget returns a budget of exactly n iterations (at least one).
func IterationBudget(n int) Budget {
	return Budget{Mode: IterationMode, Iterations: max(1, n)}
}

// TimeBudget returns a budget ending d after now.
func TimeBudget(d time.Duration, now time.Time) Budget {
	return Budget{Mode: TimeMode, Deadline: now.Add(d), Allowance: d}
}

// ResolveBudget turns the host's limits into a budget. In iteration mode the agent's
// fixed budget wins over maxIterations, which wins over whole seconds times
// meta.IterationMultiplier. A time limit under a second leaves no whole seconds to
// count, so the search runs until the deadline instead. Time mode without a positive
// time limit falls back to the iteration budget.
func ResolveBudget(mode Mode, fixedIterations int, maxSeconds float64, maxIterations int, now time.Time) Budget {
	allowance := time.Duration(0)
	if maxSeconds > 0 {
		allowance = time.Duration(maxSeconds * float64(time.Second))
	}

	if mode == TimeMode && allowance > 0 {
		return TimeBudget(allowance, now)
	}

	var iterations int
	switch {
	case fixedIterations > 0:
		iterations = fixedIterations
	case maxIterations > 0:
		iterations = maxIterations
	default:
		iterations = int(math.Floor(maxSeconds)) * meta.IterationMultiplier
		if iterations == 0 && allowance > 0 {
			return TimeBudget(allowance, now)
		}
	}
	budget := IterationBudget(iterations)
	budget.Allowance = allowance
	return budget
}

// Exhausted reports whether no further iteration may start.
func (b Budget) Exhausted(iterations int, now time.Time) (bool, StopReason) {
	if b.Mode == TimeMode {
		if !now.Before(b.Deadline) {
			return true, StopDeadline
		}
		return false, StopNone
	}
	if iterations >= b.Iterations {
		return true, StopIterations
	}
	return false, StopNone
}

// roundLength is the first round of a timed policy: half the allowance, at least
// meta.MinRoundLengthMillis.
func (b Budget) roundLength() time.Duration {
	millis := int64(math.Ceil(float64(b.Allowance)/float64(time.Millisecond))) / 2
	return max(time.Duration(millis)*time.Millisecond, meta.MinRoundLengthMillis*time.Millisecond)
}
