package metrics

import (
	"time"
)

type SearchMetric struct {
	Policy       string
	Duration     time.Duration
	Episodes     int
	FullPlayouts int
	Eliminations int
	Resets       int
	StopReason   string
}

type MoveMetric struct {
	Step   int
	Player int // Player ID
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int // Player ID
	Winner         int // Player ID, 0 for a draw
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

// Collector gathers statistics of a single search. Searches are single threaded, so
// implementations need no synchronization.
type Collector interface {
	Start(policy string)
	AddEpisode()
	AddFullPlayout()
	AddElimination()
	AddReset()
	Complete(stopReason string) SearchMetric
}

type collector struct {
	policy       string
	startTime    time.Time
	episodes     int
	fullPlayouts int
	eliminations int
	resets       int
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(policy string) {
	*m = collector{policy: policy, startTime: time.Now()}
}

func (m *collector) AddEpisode() {
	m.episodes++
}

func (m *collector) AddFullPlayout() {
	m.fullPlayouts++
}

func (m *collector) AddElimination() {
	m.eliminations++
}

func (m *collector) AddReset() {
	m.resets++
}

func (m *collector) Complete(stopReason string) SearchMetric {
	return SearchMetric{
		Policy:       m.policy,
		Duration:     time.Since(m.startTime),
		Episodes:     m.episodes,
		FullPlayouts: m.fullPlayouts,
		Eliminations: m.eliminations,
		Resets:       m.resets,
		StopReason:   stopReason,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(policy string)                     {}
func (m *dummyCollector) AddEpisode()                             {}
func (m *dummyCollector) AddFullPlayout()                         {}
func (m *dummyCollector) AddElimination()                         {}
func (m *dummyCollector) AddReset()                               {}
func (m *dummyCollector) Complete(stopReason string) SearchMetric { return SearchMetric{} }
