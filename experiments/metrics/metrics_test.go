package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.Start("halving")
	for i := 0; i < 3; i++ {
		c.AddEpisode()
	}
	c.AddFullPlayout()
	c.AddElimination()
	c.AddElimination()
	c.AddReset()

	metric := c.Complete("iterations")

	require.Equal(t, "halving", metric.Policy)
	require.Equal(t, 3, metric.Episodes)
	require.Equal(t, 1, metric.FullPlayouts)
	require.Equal(t, 2, metric.Eliminations)
	require.Equal(t, 1, metric.Resets)
	require.Equal(t, "iterations", metric.StopReason)

	c.Start("uct")
	require.Equal(t, 0, c.Complete("deadline").Episodes, "Start should clear the counters")
}

func TestDummyCollector(t *testing.T) {
	c := NewDummyCollector()
	c.Start("halving")
	c.AddEpisode()

	require.Equal(t, SearchMetric{}, c.Complete("iterations"))
}

func readCSV(t *testing.T, path string) [][]string {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "tournament")
	require.NoError(t, err)

	require.NoError(t, w.WriteAgentConfigs([]AgentConfig{{ID: 0, Config: "entropy-sh:weight=0.5,iterations=10"}}))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, w.WriteGameRecords([]GameRecord{{
		ID: 1, Agent1: 0, Agent2: 1,
		GameMetric: GameMetric{StartingPlayer: 1, Winner: 2, StartTime: start, EndTime: start.Add(time.Second),
			Duration: time.Second, TotalMoves: 7},
	}}))
	require.NoError(t, w.WriteMoveRecords([]MoveRecord{{
		Game: 1,
		MoveMetric: MoveMetric{Step: 1, Player: 1, SearchMetric: SearchMetric{
			Policy: "halving", Duration: time.Millisecond, Episodes: 10, StopReason: "iterations"}},
	}}))

	configs := readCSV(t, filepath.Join(w.Dir(), "agent_configs.csv"))
	require.Equal(t, [][]string{{"id", "config"}, {"0", "entropy-sh:weight=0.5,iterations=10"}}, configs)

	games := readCSV(t, filepath.Join(w.Dir(), "game_records.csv"))
	require.Len(t, games, 2)
	require.Equal(t, []string{"1", "0", "1", "1", "2", "2024-01-01T00:00:00Z", "2024-01-01T00:00:01Z", "1s", "7"}, games[1])

	moves := readCSV(t, filepath.Join(w.Dir(), "move_records.csv"))
	require.Len(t, moves, 2)
	require.Equal(t, []string{"1", "1", "1", "halving", "1ms", "10", "0", "0", "0", "iterations"}, moves[1])
}
