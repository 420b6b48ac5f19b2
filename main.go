package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"seqhalving/engine"
	"seqhalving/experiments"
	"seqhalving/game"
	"seqhalving/game/connectfour"
	"seqhalving/game/tictactoe"
	"seqhalving/searcher/agent"

	"github.com/janpfeifer/must"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	flagGame        = flag.String("game", "tictactoe", "Game to play: tictactoe or connectfour")
	flagAgents      = flag.String("agents", "uct;sh-anytime;entropy-sh;clustering", "Semicolon separated agent configurations, e.g. \"entropy-sh:weight=0.3875;sh-time\"")
	flagGames       = flag.Int("games", experiments.DefaultGamesPerMatchUp, "Games per ordered pair of agents")
	flagSeconds     = flag.Float64("seconds", 0.1, "Time limit per move given to the agents")
	flagIterations  = flag.Int("iterations", 0, "Iteration limit per move given to the agents, 0 to derive it from -seconds")
	flagParallelism = flag.Int("parallelism", 0, "Games played concurrently, 0 for one per CPU")
	flagOutput      = flag.String("output", "", "Directory for CSV records, none if empty")
	flagLogLevel    = flag.String("log-level", "info", "Log level: debug, info, warn or error")
	flagList        = flag.Bool("list", false, "List the available agents and exit")
)

var games = map[string]game.Game{
	"tictactoe":   tictactoe.Game{},
	"connectfour": connectfour.Game{},
}

func main() {
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	zerolog.SetGlobalLevel(must.M1(zerolog.ParseLevel(*flagLogLevel)))

	if *flagList {
		fmt.Println(strings.Join(agent.Names(), "\n"))
		return
	}

	g, ok := games[*flagGame]
	if !ok {
		log.Fatal().Msgf("unknown game %q", *flagGame)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tournament := experiments.Tournament{
		Name:            g.Name(),
		Game:            g,
		Configs:         strings.Split(*flagAgents, ";"),
		GamesPerMatchUp: *flagGames,
		Limits:          engine.Limits{MaxSeconds: *flagSeconds, MaxIterations: *flagIterations},
		Parallelism:     *flagParallelism,
		OutputDir:       *flagOutput,
	}
	standings, err := tournament.Run(ctx)
	if ctx.Err() != nil {
		log.Warn().Msg("interrupted")
		return
	}
	must.M(err)
	for _, s := range standings {
		fmt.Printf("%-40s %5.3f (%d/%d/%d)\n", s.Config, s.Score(), s.Wins, s.Draws, s.Losses)
	}
}
