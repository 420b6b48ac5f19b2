package searcher

import (
	"seqhalving/game"

	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
)

// Outcome tallies, per player
const (
	wins = iota
	losses
	draws
)

type node struct {
	parent     *node
	move       game.Move // Move that led from parent to this node
	state      game.State
	player     game.PlayerID // Player to move at state
	visits     int
	playouts   int       // Times this node was itself the playout leaf
	scores     []float64 // Sum of backed up utilities per player
	outcomes   [][3]int  // Win/loss/draw counts per player
	children   []*node
	unexpanded []game.Move // Legal moves without a child yet
}

func newNode(parent *node, move game.Move, state game.State) *node {
	players := state.NumPlayers() + 1
	n := &node{
		parent:   parent,
		move:     move,
		state:    state,
		player:   state.Player(),
		scores:   make([]float64, players),
		outcomes: make([][3]int, players),
	}
	if !state.IsTerminal() {
		n.unexpanded = slices.Clone(state.LegalMoves())
	}
	if parent != nil {
		parent.children = append(parent.children, n)
	}
	return n
}

// selectOrExpand returns a new child for a random unexpanded move if there is one,
// otherwise the child maximizing UCB1 from the perspective of the player to move.
// A node without moves or children returns itself.
func (n *node) selectOrExpand(rng *rand.Rand, exploration, logScale float64) *node {
	if len(n.unexpanded) > 0 { // Expandable node
		i := rng.Intn(len(n.unexpanded))
		move := n.unexpanded[i]
		n.unexpanded = slices.Delete(n.unexpanded, i, i+1)
		return newNode(n, move, n.state.Play(move))
	}

	if len(n.children) == 0 {
		return n
	}

	// Fully expanded node
	policy := newUCB1(exploration, logScale, n.visits)
	var best reservoir
	for _, child := range n.children {
		best.offer(rng, child, policy.evaluate(child.scores[n.player], float64(child.visits)))
	}
	return best.node
}

// backup records one simulation result and returns the parent.
func (n *node) backup(utilities []float64, trackOutcomes bool) *node {
	n.visits++
	for p := 1; p < len(n.scores) && p < len(utilities); p++ {
		n.scores[p] += utilities[p]
		if !trackOutcomes {
			continue
		}
		switch game.Classify(utilities[p]) {
		case game.Win:
			n.outcomes[p][wins]++
		case game.Loss:
			n.outcomes[p][losses]++
		case game.Draw:
			n.outcomes[p][draws]++
		}
	}
	return n.parent
}

// exploit is the mean utility of the node for player, 0 if never visited.
func (n *node) exploit(player game.PlayerID) float64 {
	if n.visits == 0 {
		return 0
	}
	return n.scores[player] / float64(n.visits)
}

// reservoir keeps the maximum offered value, breaking ties uniformly at random
// without materializing the set of tied candidates.
type reservoir struct {
	node  *node
	value float64
	count int
}

func (r *reservoir) offer(rng *rand.Rand, candidate *node, value float64) {
	switch {
	case r.count == 0 || value > r.value:
		r.node = candidate
		r.value = value
		r.count = 1
	case value == r.value:
		r.count++
		if rng.Intn(r.count) == 0 {
			r.node = candidate
		}
	}
}
