package searcher

import (
	"math"
	"testing"

	"seqhalving/game"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
)

type mockMove struct {
	id int
}

// treeState is a uniform game tree: every non-terminal state has the same number of
// moves and the game ends after depth plies. Players alternate, player 1 starts.
type treeState struct {
	path      []int
	branching int
	depth     int
	score     func(path []int) []float64
}

func newTreeState(branching, depth int, score func(path []int) []float64) *treeState {
	return &treeState{branching: branching, depth: depth, score: score}
}

func (s *treeState) Player() game.PlayerID {
	return game.PlayerID(1 + len(s.path)%2)
}

func (s *treeState) NumPlayers() int {
	return 2
}

func (s *treeState) IsTerminal() bool {
	return len(s.path) >= s.depth
}

func (s *treeState) LegalMoves() []game.Move {
	if s.IsTerminal() {
		return nil
	}
	moves := make([]game.Move, s.branching)
	for i := range moves {
		moves[i] = mockMove{id: i}
	}
	return moves
}

func (s *treeState) Play(move game.Move) game.State {
	next := *s
	next.path = append(slices.Clone(s.path), move.(mockMove).id)
	return &next
}

func (s *treeState) Utilities() []float64 {
	if !s.IsTerminal() || s.score == nil {
		return []float64{0, 0, 0}
	}
	return s.score(s.path)
}

// byFirstMove scores a game by the first move only: 0 wins, 1 draws and anything else
// loses for player 1.
func byFirstMove(path []int) []float64 {
	switch path[0] {
	case 0:
		return []float64{0, 1, -1}
	case 1:
		return []float64{0, 0, 0}
	}
	return []float64{0, -1, 1}
}

// oraclePlayout skips the rollout and scores the state by its first move.
func oraclePlayout(state game.State, maxPlies int, rng *rand.Rand) (game.State, []float64) {
	s := state.(*treeState)
	return s, byFirstMove(s.path)
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestNodeSelectOrExpand(t *testing.T) {
	t.Run("expanding node with unexpanded moves", func(t *testing.T) {
		parent := newNode(nil, nil, newTreeState(3, 2, nil))

		gotChild := parent.selectOrExpand(newRand(), math.Sqrt2, 1)

		require.NotSame(t, parent, gotChild, "Node should expand a new child")
		require.Equal(t, []*node{gotChild}, parent.children, "Child should register with its parent")
		require.Same(t, parent, gotChild.parent, "Child should point back to its parent")
		require.Len(t, parent.unexpanded, 2, "Expanded move should be removed")
		require.NotContains(t, parent.unexpanded, gotChild.move, "Expanded move should be removed")
		require.Equal(t, 0, gotChild.visits, "New child should have no visits")
		require.Equal(t, game.PlayerID(2), gotChild.player, "Child state should have the move applied")
		require.Equal(t, 3, len(parent.unexpanded)+len(parent.children), "Moves should be either expanded or not")
	})

	t.Run("expanding every move exactly once", func(t *testing.T) {
		parent := newNode(nil, nil, newTreeState(4, 2, nil))
		rng := newRand()

		seen := map[game.Move]bool{}
		for i := 0; i < 4; i++ {
			child := parent.selectOrExpand(rng, math.Sqrt2, 1)
			child.backup([]float64{0, 0, 0}, false)
			seen[child.move] = true
		}

		require.Len(t, seen, 4, "Each legal move should become one child")
		require.Empty(t, parent.unexpanded)
	})

	t.Run("selecting fully expanded node", func(t *testing.T) {
		parent := &node{player: 1, visits: 2, scores: []float64{0, 0, 0}}
		maxChild := &node{parent: parent, move: mockMove{id: 1}, visits: 1, scores: []float64{0, 1, -1}}
		otherChild := &node{parent: parent, move: mockMove{id: 0}, visits: 1, scores: []float64{0, -1, 1}}
		parent.children = []*node{otherChild, maxChild}

		gotChild := parent.selectOrExpand(newRand(), math.Sqrt2, 1)

		require.Same(t, maxChild, gotChild, "Node should select child with max UCB1 value")
		require.Equal(t, 2, parent.visits, "Node stats should not change")
	})

	t.Run("selecting fully expanded node with turn change", func(t *testing.T) {
		parent := &node{player: 2, visits: 2, scores: []float64{0, 0, 0}}
		minChild := &node{parent: parent, visits: 1, scores: []float64{0, -1, 1}}
		otherChild := &node{parent: parent, visits: 1, scores: []float64{0, 1, -1}}
		parent.children = []*node{otherChild, minChild}

		gotChild := parent.selectOrExpand(newRand(), math.Sqrt2, 1)

		require.Same(t, minChild, gotChild, "Node should maximize the rewards of the player to move")
	})

	t.Run("exploring less visited child", func(t *testing.T) {
		parent := &node{player: 1, visits: 101, scores: []float64{0, 0, 0}}
		visited := &node{parent: parent, visits: 100, scores: []float64{0, 10, -10}}
		rare := &node{parent: parent, visits: 1, scores: []float64{0, 0, 0}}
		parent.children = []*node{visited, rare}

		gotChild := parent.selectOrExpand(newRand(), math.Sqrt2, 1)

		require.Same(t, rare, gotChild, "Exploration term should favor the rarely visited child")
	})

	t.Run("terminal node", func(t *testing.T) {
		parent := newNode(nil, nil, newTreeState(3, 0, nil))

		gotChild := parent.selectOrExpand(newRand(), math.Sqrt2, 1)

		require.Same(t, parent, gotChild, "Terminal node should return itself")
		require.Empty(t, parent.unexpanded)
	})
}

func TestNodeTieBreak(t *testing.T) {
	const trials = 40000
	const k = 4

	parent := &node{player: 1, visits: k, scores: []float64{0, 0, 0}}
	for i := 0; i < k; i++ {
		parent.children = append(parent.children,
			&node{parent: parent, move: mockMove{id: i}, visits: 1, scores: []float64{0, 0.5, -0.5}})
	}

	rng := newRand()
	counts := map[game.Move]int{}
	for i := 0; i < trials; i++ {
		counts[parent.selectOrExpand(rng, math.Sqrt2, 1).move]++
	}

	require.Len(t, counts, k, "Every tied child should be selected")
	for move, count := range counts {
		require.InDelta(t, 1.0/k, float64(count)/trials, 0.02,
			"Tied child %v should be chosen uniformly", move)
	}
}

func TestSelectThenExpand(t *testing.T) {
	t.Run("stops at a newly expanded node", func(t *testing.T) {
		root := newNode(nil, nil, newTreeState(2, 3, nil))

		leaf := selectThenExpand(root, newRand(), math.Sqrt2, 1)

		require.Same(t, root, leaf.parent)
		require.Equal(t, 0, leaf.visits)
	})

	t.Run("stops at a terminal node", func(t *testing.T) {
		root := newNode(nil, nil, newTreeState(1, 1, byFirstMove))
		child := selectThenExpand(root, newRand(), math.Sqrt2, 1)
		backup(child, child.state.Utilities(), false)

		leaf := selectThenExpand(root, newRand(), math.Sqrt2, 1)

		require.Same(t, child, leaf, "Terminal child should be reached again")
		require.True(t, leaf.state.IsTerminal())
	})
}

func TestBackup(t *testing.T) {
	t.Run("recording a win for player 1", func(t *testing.T) {
		root := newNode(nil, nil, newTreeState(2, 2, nil))
		child := newNode(root, mockMove{id: 0}, root.state.Play(mockMove{id: 0}))
		leaf := newNode(child, mockMove{id: 1}, child.state.Play(mockMove{id: 1}))

		backup(leaf, []float64{0, 1, -1}, true)

		for _, n := range []*node{root, child, leaf} {
			require.Equal(t, 1, n.visits, "Every node on the path should count the visit")
			require.Equal(t, []float64{0, 1, -1}, n.scores, "Every node on the path should add utilities")
			require.Equal(t, [3]int{1, 0, 0}, n.outcomes[1], "Player 1 should record a win")
			require.Equal(t, [3]int{0, 1, 0}, n.outcomes[2], "Player 2 should record a loss")
		}
		require.Equal(t, 1, leaf.playouts, "Leaf should record its own playout")
		require.Equal(t, 0, root.playouts)
	})

	t.Run("recording a draw without outcome tracking", func(t *testing.T) {
		root := newNode(nil, nil, newTreeState(2, 2, nil))

		backup(root, []float64{0, 0, 0}, false)

		require.Equal(t, 1, root.visits)
		require.Equal(t, [3]int{}, root.outcomes[1], "Outcomes should not be tracked")
	})

	t.Run("recording a draw with outcome tracking", func(t *testing.T) {
		root := newNode(nil, nil, newTreeState(2, 2, nil))

		backup(root, []float64{0, 0, 0}, true)

		require.Equal(t, [3]int{0, 0, 1}, root.outcomes[1])
		require.Equal(t, [3]int{0, 0, 1}, root.outcomes[2])
	})

	t.Run("ignoring fractional utilities in outcomes", func(t *testing.T) {
		root := newNode(nil, nil, newTreeState(2, 2, nil))

		backup(root, []float64{0, 0.5, -0.5}, true)

		require.Equal(t, [3]int{}, root.outcomes[1])
		require.Equal(t, 0.5, root.scores[1])
	})
}

func TestExploit(t *testing.T) {
	require.Equal(t, 0.0, (&node{scores: []float64{0, 0, 0}}).exploit(1), "Unvisited node should have no value")
	require.InDelta(t, 0.7, (&node{visits: 10, scores: []float64{0, 7, -7}}).exploit(1), 1e-12)
	require.InDelta(t, -0.7, (&node{visits: 10, scores: []float64{0, 7, -7}}).exploit(2), 1e-12)
}
