package game

import "golang.org/x/exp/rand"

// Move is an opaque action understood by the State that produced it.
type Move interface{}

// PlayerID identifies a seat. Players are numbered from 1; 0 is unused.
type PlayerID int

// State should be immutable - operations on State always return a new copy
type State interface {
	// Player returns the player to move.
	Player() PlayerID
	NumPlayers() int
	// LegalMoves returns no moves for terminal states.
	LegalMoves() []Move
	Play(Move) State
	IsTerminal() bool
	// Utilities are indexed by PlayerID (slot 0 unused) and lie in [-1, 1].
	// For non-terminal states they are whatever the rules assign at a truncation point.
	Utilities() []float64
}

// Game describes a ruleset, used by agents to decide whether they can play it.
type Game interface {
	Name() string
	NumPlayers() int
	IsStochastic() bool
	IsAlternatingMove() bool
	NewState() State
}

// Playout completes a rollout from state, truncating after maxPlies moves, and returns
// the final state together with its utilities.
type Playout func(state State, maxPlies int, rng *rand.Rand) (State, []float64)

// Outcome classifies a single utility value.
type Outcome int

const (
	Win Outcome = iota
	Loss
	Draw
	Other // Truncated or fractional utilities
)

func Classify(utility float64) Outcome {
	switch utility {
	case 1.0:
		return Win
	case -1.0:
		return Loss
	case 0.0:
		return Draw
	}
	return Other
}
