package searcher

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"seqhalving/experiments/metrics"
	"seqhalving/game"
	"seqhalving/meta"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

var (
	ErrNoLegalMoves = errors.New("no legal moves at the root")
	ErrEmptyTree    = errors.New("search stopped before the root had children")
)

type Option func(mcts *MCTS)

type MCTS struct {
	policy      Policy
	exploration float64
	logScale    float64
	cutoff      int
	playout     game.Playout
	rng         *rand.Rand
	now         func() time.Time
	metrics     metrics.Collector
	interrupted atomic.Bool
}

// ArmStat summarizes a root child after a search.
type ArmStat struct {
	Move    game.Move
	Visits  int
	Exploit float64
	Active  bool // Still a candidate for the final move selection
}

type Result struct {
	Move       game.Move
	Exploit    float64
	Iterations int
	Arms       []ArmStat
	Metric     metrics.SearchMetric
}

// WithPolicy sets the arm elimination policy. Without one the search is plain UCT from
// the root and the most visited move is played.
func WithPolicy(policy Policy) Option {
	return func(m *MCTS) {
		m.policy = policy
	}
}

// WithExploration sets the UCB1 constant C. Negative values keep the default.
func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c >= 0 {
			m.exploration = c
		}
	}
}

// WithLogScale multiplies ln(N) inside the UCB1 exploration term.
func WithLogScale(k float64) Option {
	return func(m *MCTS) {
		if k > 0 {
			m.logScale = k
		}
	}
}

func WithCutoff(depth int) Option {
	return func(m *MCTS) {
		if depth > 0 {
			m.cutoff = depth
		}
	}
}

func WithPlayout(playout game.Playout) Option {
	return func(m *MCTS) {
		if playout != nil {
			m.playout = playout
		}
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(m *MCTS) {
		if rng != nil {
			m.rng = rng
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *MCTS) {
		if now != nil {
			m.now = now
		}
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{ // Default values
		exploration: meta.DefaultExploration,
		logScale:    1,
		cutoff:      meta.DefaultCutoff,
		playout:     game.RandomPlayout,
		rng:         rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		now:         time.Now,
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *MCTS) Policy() Policy {
	return m.policy
}

// Interrupt asks the running or next search to stop before its next iteration. It is
// safe to call from another goroutine. The flag is cleared when a search returns.
func (m *MCTS) Interrupt() {
	m.interrupted.Store(true)
}

func (m *MCTS) stopped(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
	}
	return m.interrupted.Load()
}

// Search builds a fresh tree for state within budget and returns the move of the
// candidate root child with the highest exploit value.
func (m *MCTS) Search(ctx context.Context, state game.State, budget Budget) (Result, error) {
	defer m.interrupted.Store(false)
	if state.IsTerminal() || len(state.LegalMoves()) == 0 {
		return Result{}, ErrNoLegalMoves
	}

	root := newNode(nil, nil, state)
	var sched *scheduler
	policyName := "uct"
	if m.policy != nil {
		sched = newScheduler(m.policy, root, budget, m.metrics)
		policyName = m.policy.Name()
	}
	m.metrics.Start(policyName)

	iterations, reason := m.iterate(ctx, root, sched, budget)

	metric := m.metrics.Complete(reason.String())
	log.Debug().Str("policy", policyName).Int("iterations", iterations).
		Stringer("stop", reason).Int("children", len(root.children)).Msg("search finished")

	best := m.finalMoveSelection(root, sched)
	if best == nil {
		return Result{}, fmt.Errorf("%s after %d iterations: %w", reason, iterations, ErrEmptyTree)
	}
	return Result{
		Move:       best.move,
		Exploit:    best.exploit(root.player),
		Iterations: iterations,
		Arms:       armStats(root, sched),
		Metric:     metric,
	}, nil
}

func (m *MCTS) iterate(ctx context.Context, root *node, sched *scheduler, budget Budget) (int, StopReason) {
	iterations := 0
	for {
		if m.stopped(ctx) {
			return iterations, StopInterrupt
		}
		if done, reason := budget.Exhausted(iterations, m.now()); done {
			return iterations, reason
		}

		from := root
		if sched != nil && sched.running {
			from = sched.next()
		}
		m.simulate(from)
		iterations++

		if sched == nil {
			continue
		}
		if sched.running {
			sched.advance(m.now())
		} else if len(root.unexpanded) == 0 {
			sched.start(m.now())
		}
	}
}

func (m *MCTS) simulate(from *node) {
	leaf := selectThenExpand(from, m.rng, m.exploration, m.logScale)
	utilities := m.rollout(leaf.state)
	backup(leaf, utilities, m.policy != nil && m.policy.TracksOutcomes())
	m.metrics.AddEpisode()
}

// selectThenExpand descends from node until it reaches a terminal state or a node that
// was never played out.
func selectThenExpand(from *node, rng *rand.Rand, exploration, logScale float64) *node {
	current := from
	for !current.state.IsTerminal() {
		next := current.selectOrExpand(rng, exploration, logScale)
		if next == current {
			break
		}
		current = next
		if current.visits == 0 {
			break
		}
	}
	return current
}

func (m *MCTS) rollout(state game.State) []float64 {
	if state.IsTerminal() {
		m.metrics.AddFullPlayout()
		return state.Utilities()
	}
	final, utilities := m.playout(state, m.cutoff, m.rng)
	if final.IsTerminal() {
		m.metrics.AddFullPlayout()
	}
	return utilities
}

func backup(leaf *node, utilities []float64, trackOutcomes bool) {
	leaf.playouts++
	node := leaf
	for node != nil {
		node = node.backup(utilities, trackOutcomes)
	}
}

// finalMoveSelection picks the candidate with the highest exploit value, or the most
// visited child without an elimination policy. Ties are broken uniformly at random.
func (m *MCTS) finalMoveSelection(root *node, sched *scheduler) *node {
	var best reservoir
	if sched == nil {
		for _, child := range root.children {
			best.offer(m.rng, child, float64(child.visits))
		}
		return best.node
	}
	for _, index := range sched.candidates() {
		child := root.children[index]
		best.offer(m.rng, child, child.exploit(root.player))
	}
	return best.node
}

func armStats(root *node, sched *scheduler) []ArmStat {
	active := make(map[int]bool, len(root.children))
	if sched == nil {
		for i := range root.children {
			active[i] = true
		}
	} else {
		for _, index := range sched.candidates() {
			active[index] = true
		}
	}

	stats := make([]ArmStat, len(root.children))
	for i, child := range root.children {
		stats[i] = ArmStat{
			Move:    child.move,
			Visits:  child.visits,
			Exploit: child.exploit(root.player),
			Active:  active[i],
		}
	}
	return stats
}
