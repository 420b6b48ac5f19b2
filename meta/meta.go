// meta/meta.go
package meta

import "math"

// DefaultCutoff is the maximum number of plies in a playout.
const DefaultCutoff = 200

// IterationMultiplier converts whole seconds into an iteration budget when no
// explicit budget is given.
const IterationMultiplier = 1000

// DefaultExploration is the UCB1 exploration constant.
var DefaultExploration = math.Sqrt(2)

// DefaultEntropyWeight weighs Shannon entropy against win rate when rating arms.
const DefaultEntropyWeight = 0.3875

// MinRoundLengthMillis bounds the length of a time-sliced halving round.
const MinRoundLengthMillis = 2

// MaxTurns caps the length of a local match.
const MaxTurns = 300
