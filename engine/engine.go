package engine

import (
	"context"

	"seqhalving/experiments/metrics"
	"seqhalving/game"
)

type Engine interface {
	// Run plays a game till it is over or a max number of turns is reached. A winner of 0
	// means a draw or an unfinished game.
	Run(ctx context.Context) (winner game.PlayerID, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
