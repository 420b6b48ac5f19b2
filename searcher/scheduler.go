package searcher

import (
	"time"

	"seqhalving/experiments/metrics"
	"seqhalving/meta"

	"github.com/rs/zerolog/log"
)

// scheduler restricts iterations to the active root children once the root is fully
// expanded, visiting them round robin and eliminating arms between rounds.
type scheduler struct {
	policy  Policy
	timed   bool
	root    *node
	running bool
	active  []int // Ascending indices into root.children
	cursor  int
	visited int // Iterations since the last elimination event

	roundLength time.Duration
	roundEnds   time.Time

	metrics metrics.Collector
}

func newScheduler(policy Policy, root *node, budget Budget, collector metrics.Collector) *scheduler {
	_, isTimed := policy.(timed)
	return &scheduler{
		policy:      policy,
		timed:       isTimed,
		root:        root,
		roundLength: budget.roundLength(),
		metrics:     collector,
	}
}

// start activates every root child. It is called once, when root expansion completes.
func (s *scheduler) start(now time.Time) {
	s.running = true
	s.activateAll()
	s.roundEnds = now.Add(s.roundLength)
}

func (s *scheduler) activateAll() {
	s.active = make([]int, len(s.root.children))
	for i := range s.active {
		s.active[i] = i
	}
	s.cursor = 0
	s.visited = 0
}

// next returns the root child the next iteration descends from.
func (s *scheduler) next() *node {
	return s.root.children[s.active[s.cursor]]
}

// advance records a completed iteration and ends the round when it is over.
func (s *scheduler) advance(now time.Time) {
	s.cursor = (s.cursor + 1) % len(s.active)
	s.visited++

	if s.timed {
		if !now.Before(s.roundEnds) {
			s.prune(now)
		}
		return
	}

	if s.visited >= len(s.active) {
		s.eliminate()
	}
}

// eliminate shrinks the active set by the policy, or restores every arm once at most
// two remain.
func (s *scheduler) eliminate() {
	if len(s.active) <= 2 {
		s.reset()
		return
	}

	survivors := s.policy.Survivors(s.arms())
	if len(survivors) < 2 {
		s.reset()
		return
	}

	s.active = survivors
	s.cursor = 0
	s.visited = 0
	s.metrics.AddElimination()
	log.Debug().Str("policy", s.policy.Name()).Ints("active", s.active).Msg("eliminated arms")
}

func (s *scheduler) reset() {
	s.activateAll()
	s.metrics.AddReset()
	log.Debug().Str("policy", s.policy.Name()).Int("active", len(s.active)).Msg("restored all arms")
}

// prune ends a timed round: the policy drops the worst arms for good and the next
// round is half as long.
func (s *scheduler) prune(now time.Time) {
	if len(s.active) > 2 {
		s.active = s.policy.Survivors(s.arms())
		s.metrics.AddElimination()
		log.Debug().Str("policy", s.policy.Name()).Ints("active", s.active).
			Dur("round", s.roundLength).Msg("pruned arms")
	}
	s.cursor = 0
	s.visited = 0
	s.roundLength = max(s.roundLength/2, meta.MinRoundLengthMillis*time.Millisecond)
	s.roundEnds = now.Add(s.roundLength)
}

func (s *scheduler) arms() []Arm {
	mover := s.root.player
	arms := make([]Arm, len(s.active))
	for i, index := range s.active {
		child := s.root.children[index]
		arms[i] = Arm{
			Index:    index,
			Visits:   child.visits,
			Exploit:  child.exploit(mover),
			Outcomes: child.outcomes[mover],
		}
	}
	return arms
}

// candidates are the root children eligible for the final move selection.
func (s *scheduler) candidates() []int {
	if s.timed && s.running {
		return s.active
	}
	all := make([]int, len(s.root.children))
	for i := range all {
		all[i] = i
	}
	return all
}
