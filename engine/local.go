package engine

import (
	"context"
	"fmt"
	"time"

	"seqhalving/experiments/metrics"
	"seqhalving/game"
	"seqhalving/meta"
	"seqhalving/searcher/agent"

	"github.com/rs/zerolog/log"
)

// Limits are handed to the agents on every move.
type Limits struct {
	MaxSeconds    float64
	MaxIterations int
}

type LocalEngine struct {
	game     game.Game
	agents   []agent.Agent // Indexed by PlayerID - 1
	limits   Limits
	maxTurns int
}

func NewLocalEngine(g game.Game, agents []agent.Agent, limits Limits) *LocalEngine {
	if len(agents) != g.NumPlayers() {
		panic("number of players does not match number of agents")
	}
	if len(agents) < 2 {
		panic("need at least two players")
	}
	return &LocalEngine{game: g, agents: agents, limits: limits, maxTurns: meta.MaxTurns}
}

// Run executes the entire game loop until the game is over.
func (e *LocalEngine) Run(ctx context.Context) (game.PlayerID, metrics.GameMetric, []metrics.MoveMetric, error) {
	for i, a := range e.agents {
		if !a.SupportsGame(e.game) {
			return 0, metrics.GameMetric{}, nil, fmt.Errorf("agent %q does not support %s", a.Name(), e.game.Name())
		}
		a.InitAI(e.game, game.PlayerID(i+1))
	}

	state := e.game.NewState()
	gameMetric := metrics.GameMetric{StartingPlayer: int(state.Player()), StartTime: time.Now()}
	log.Info().Msgf("player %d is starting", state.Player())

	// Loop until the game is over
	turn := 1
	var moveMetrics []metrics.MoveMetric
	for !state.IsTerminal() && turn <= e.maxTurns {
		if err := ctx.Err(); err != nil {
			return 0, gameMetric, moveMetrics, err
		}
		player := state.Player()
		current := e.agents[player-1]

		move, err := current.SelectAction(ctx, e.game, state, e.limits.MaxSeconds, e.limits.MaxIterations, 0)
		if err != nil {
			return 0, gameMetric, moveMetrics, fmt.Errorf("turn %d of player %d: %w", turn, player, err)
		}

		moveMetric := metrics.MoveMetric{Step: turn, Player: int(player)}
		if reporter, ok := current.(agent.Reporter); ok {
			moveMetric.SearchMetric = reporter.LastResult().Metric
		}
		moveMetrics = append(moveMetrics, moveMetric)

		log.Debug().Int("turn", turn).Int("player", int(player)).Msgf("played %v", move)
		state = state.Play(move)
		turn++
	}

	winner := game.Winner(state)
	gameMetric.Winner = int(winner)
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = turn - 1

	if state.IsTerminal() {
		log.Info().Msgf("game over after %d moves, winner: %d", gameMetric.TotalMoves, winner)
	} else {
		log.Info().Msgf("stopped after %d turns without a result", e.maxTurns)
	}
	return winner, gameMetric, moveMetrics, nil
}
