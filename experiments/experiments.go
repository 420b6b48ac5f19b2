// Package experiments runs tournaments between agent configurations and stores the
// results as CSV records.
package experiments

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"seqhalving/engine"
	"seqhalving/experiments/metrics"
	"seqhalving/game"
	"seqhalving/searcher/agent"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const DefaultGamesPerMatchUp = 10

// Tournament plays every ordered pair of configurations against each other, so every
// configuration gets to start against every other one.
type Tournament struct {
	Name            string
	Game            game.Game
	Configs         []string // Agent configuration strings, see agent.New
	GamesPerMatchUp int
	Limits          engine.Limits
	Parallelism     int    // Concurrent games, runtime.NumCPU() if not positive
	OutputDir       string // CSV records are skipped if empty
}

// Standing is the tally of one configuration across the tournament.
type Standing struct {
	Config string
	Wins   int
	Losses int
	Draws  int
}

func (s Standing) Score() float64 {
	games := s.Wins + s.Losses + s.Draws
	if games == 0 {
		return 0
	}
	return (float64(s.Wins) + 0.5*float64(s.Draws)) / float64(games)
}

type matchUp struct {
	agents [2]int // Indices into Tournament.Configs, by seat
}

// Run plays all games, independent games in parallel. Each game creates its own agents,
// so no search tree is ever shared between goroutines.
func (t Tournament) Run(ctx context.Context) ([]Standing, error) {
	if t.Game.NumPlayers() != 2 {
		return nil, fmt.Errorf("tournaments need a two-player game, %s has %d players", t.Game.Name(), t.Game.NumPlayers())
	}
	if len(t.Configs) < 2 {
		return nil, fmt.Errorf("tournaments need at least two agent configurations, got %d", len(t.Configs))
	}
	for _, config := range t.Configs {
		a, err := agent.New(config)
		if err != nil {
			return nil, err
		}
		if !a.SupportsGame(t.Game) {
			return nil, fmt.Errorf("agent %q does not support %s", config, t.Game.Name())
		}
	}

	gamesPerMatchUp := t.GamesPerMatchUp
	if gamesPerMatchUp <= 0 {
		gamesPerMatchUp = DefaultGamesPerMatchUp
	}
	var matchUps []matchUp
	for i := range t.Configs {
		for j := range t.Configs {
			if i != j {
				matchUps = append(matchUps, matchUp{agents: [2]int{i, j}})
			}
		}
	}

	log.Info().Msgf("starting %s tournament: %d match ups of %d games on %s", t.Name, len(matchUps), gamesPerMatchUp, t.Game.Name())

	// Every game writes its own slot
	gameRecords := make([]metrics.GameRecord, len(matchUps)*gamesPerMatchUp)
	moveRecords := make([][]metrics.MoveRecord, len(gameRecords))

	parallelism := t.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for mi, m := range matchUps {
		for gi := 0; gi < gamesPerMatchUp; gi++ {
			id := mi*gamesPerMatchUp + gi
			g.Go(func() error {
				winner, gameMetric, moveMetrics, err := t.runGame(gctx, m)
				if err != nil {
					return fmt.Errorf("game %d between %q and %q: %w", id+1, t.Configs[m.agents[0]], t.Configs[m.agents[1]], err)
				}
				gameRecords[id] = metrics.GameRecord{ID: id + 1, Agent1: m.agents[0], Agent2: m.agents[1], GameMetric: gameMetric}
				for _, mm := range moveMetrics {
					moveRecords[id] = append(moveRecords[id], metrics.MoveRecord{Game: id + 1, MoveMetric: mm})
				}
				log.Info().Msgf("completed match up %d of %d game %d of %d with winner: %d",
					mi+1, len(matchUps), gi+1, gamesPerMatchUp, winner)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	standings := tally(t.Configs, gameRecords)
	for _, s := range standings {
		log.Info().Msgf("%-40s wins=%d losses=%d draws=%d score=%.3f", s.Config, s.Wins, s.Losses, s.Draws, s.Score())
	}
	log.Info().Msgf("completed %s tournament", t.Name)

	if t.OutputDir == "" {
		return standings, nil
	}
	return standings, t.store(gameRecords, moveRecords)
}

func (t Tournament) runGame(ctx context.Context, m matchUp) (game.PlayerID, metrics.GameMetric, []metrics.MoveMetric, error) {
	agents := make([]agent.Agent, len(m.agents))
	for seat, index := range m.agents {
		a, err := agent.New(t.Configs[index])
		if err != nil {
			return 0, metrics.GameMetric{}, nil, err
		}
		agents[seat] = a
	}
	var e engine.Engine = engine.NewLocalEngine(t.Game, agents, t.Limits)
	return e.Run(ctx)
}

func tally(configs []string, records []metrics.GameRecord) []Standing {
	standings := make([]Standing, len(configs))
	for i, config := range configs {
		standings[i].Config = config
	}
	for _, record := range records {
		seats := [3]int{-1, record.Agent1, record.Agent2} // Indexed by PlayerID
		switch record.Winner {
		case 1, 2:
			standings[seats[record.Winner]].Wins++
			standings[seats[3-record.Winner]].Losses++
		default:
			standings[record.Agent1].Draws++
			standings[record.Agent2].Draws++
		}
	}
	return standings
}

func (t Tournament) store(gameRecords []metrics.GameRecord, moveRecords [][]metrics.MoveRecord) error {
	writer, err := metrics.NewWriter(t.OutputDir, strings.ReplaceAll(t.Name, " ", "_"))
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}

	configs := make([]metrics.AgentConfig, len(t.Configs))
	for i, config := range t.Configs {
		configs[i] = metrics.AgentConfig{ID: i, Config: config}
	}
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	var moves []metrics.MoveRecord
	for _, records := range moveRecords {
		moves = append(moves, records...)
	}
	if err := writer.WriteMoveRecords(moves); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msgf("stored move records in %s", writer.Dir())
	return nil
}
