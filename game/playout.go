package game

import "golang.org/x/exp/rand"

// RandomPlayout plays uniformly random legal moves until the game is over or maxPlies
// moves have been played. A non-positive maxPlies means no cutoff.
func RandomPlayout(state State, maxPlies int, rng *rand.Rand) (State, []float64) {
	depth := 0
	moves := state.LegalMoves()
	// Rollout till game over or for cutoff number of moves
	for len(moves) > 0 && (maxPlies <= 0 || depth < maxPlies) {
		move := moves[rng.Intn(len(moves))] // Random rollout policy
		state = state.Play(move)
		moves = state.LegalMoves()
		depth++
	}
	return state, state.Utilities()
}

// Winner returns the player with utility 1, or 0 if there is none.
func Winner(state State) PlayerID {
	utilities := state.Utilities()
	for p := 1; p < len(utilities); p++ {
		if utilities[p] == 1.0 {
			return PlayerID(p)
		}
	}
	return 0
}
