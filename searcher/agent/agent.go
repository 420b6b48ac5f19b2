// Package agent exposes the search engine to a game host: agents are created from
// configuration strings, check whether they support a game and select moves under the
// host's time and iteration limits.
package agent

import (
	"context"
	"errors"
	"time"

	"seqhalving/game"
	"seqhalving/searcher"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Agent interface {
	// Name is the configuration the agent was created from.
	Name() string
	// InitAI is called once per match before the first move.
	InitAI(g game.Game, player game.PlayerID)
	SupportsGame(g game.Game) bool
	// SelectAction returns the move to play at state. maxSeconds and maxIterations are the
	// host's limits, non-positive values mean no limit. maxDepth is ignored.
	SelectAction(ctx context.Context, g game.Game, state game.State, maxSeconds float64, maxIterations, maxDepth int) (game.Move, error)
	// Interrupt stops a running or about to start SelectAction, which still returns a move.
	Interrupt()
}

// Reporter is implemented by agents that expose the result of their last search.
type Reporter interface {
	LastResult() searcher.Result
}

type mctsAgent struct {
	name            string
	mcts            *searcher.MCTS
	mode            searcher.Mode
	fixedIterations int  // Overrides the host's iteration limit when positive
	twoPlayerOnly   bool // Outcome ratings assume a zero-sum two-player game
	player          game.PlayerID
	rng             *rand.Rand // Fallback moves
	last            searcher.Result
}

func (a *mctsAgent) Name() string { return a.name }

func (a *mctsAgent) InitAI(g game.Game, player game.PlayerID) {
	a.player = player
	a.last = searcher.Result{}
	log.Debug().Str("agent", a.name).Str("game", g.Name()).Int("player", int(player)).Msg("agent initialized")
}

func (a *mctsAgent) SupportsGame(g game.Game) bool {
	if g.IsStochastic() || !g.IsAlternatingMove() {
		return false
	}
	return !a.twoPlayerOnly || g.NumPlayers() == 2
}

func (a *mctsAgent) SelectAction(ctx context.Context, g game.Game, state game.State, maxSeconds float64, maxIterations, maxDepth int) (game.Move, error) {
	budget := searcher.ResolveBudget(a.mode, a.fixedIterations, maxSeconds, maxIterations, time.Now())
	result, err := a.mcts.Search(ctx, state, budget)
	if errors.Is(err, searcher.ErrEmptyTree) {
		moves := state.LegalMoves()
		move := moves[a.rng.Intn(len(moves))]
		log.Warn().Err(err).Str("agent", a.name).Msgf("playing random move %v", move)
		a.last = result
		return move, nil
	}
	if err != nil {
		return nil, err
	}

	a.last = result
	log.Debug().Str("agent", a.name).Int("player", int(a.player)).Int("iterations", result.Iterations).
		Float64("exploit", result.Exploit).Msgf("selected move %v", result.Move)
	return result.Move, nil
}

func (a *mctsAgent) Interrupt() {
	a.mcts.Interrupt()
}

func (a *mctsAgent) LastResult() searcher.Result {
	return a.last
}
