package agent

import (
	"strings"
	"time"

	"seqhalving/meta"
	"seqhalving/parameters"
	"seqhalving/searcher"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
)

// Factory builds an agent from its parsed parameters. name is the full configuration
// string and should become the agent's name.
type Factory func(name string, params parameters.Params) (Agent, error)

var registry = make(map[string]Factory)

// DefaultConfig is used when New is given an empty configuration.
var DefaultConfig = "entropy-sh"

// Register makes an agent available to New under name.
func Register(name string, factory Factory) {
	registry[name] = factory
}

// Names lists the registered agents in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New creates an agent given the configuration string: the agent name, optionally
// followed by a colon and a comma-separated list of key=value parameters, e.g.
// "entropy-sh:weight=0.3875,iterations=2000".
//
// Parameters understood by every built-in agent:
//
//	mode: "iter" or "time", how the host's limits are turned into a search budget.
//	iterations: fixed number of iterations per move, overriding the host's limit.
//	c: UCB1 exploration constant, negative for sqrt(2).
//	cutoff: maximum number of plies in a playout.
//	seed: random seed, 0 for a time based one.
//	weight: entropy weight, entropy-sh only.
func New(config string) (Agent, error) {
	if config == "" {
		config = DefaultConfig
	}

	name, rest, _ := strings.Cut(config, ":")
	factory, ok := registry[name]
	if !ok {
		return nil, errors.Errorf("unknown agent %q, known agents are %q", name, Names())
	}

	params := parameters.NewFromConfigString(rest)
	agent, err := factory(config, params)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create agent %q", config)
	}
	if err := parameters.CheckEmpty(params); err != nil {
		return nil, errors.WithMessagef(err, "failed to create agent %q", config)
	}
	return agent, nil
}

// settings are the parameters shared by the built-in agents.
type settings struct {
	mode        searcher.Mode
	iterations  int
	exploration float64
	logScale    float64
	cutoff      int
	seed        uint64
}

func popSettings(params parameters.Params, defaults settings) (settings, error) {
	s := defaults
	modeName, err := parameters.PopParamOr(params, "mode", defaults.mode.String())
	if err != nil {
		return s, err
	}
	switch modeName {
	case "iter", "iterations":
		s.mode = searcher.IterationMode
	case "time":
		s.mode = searcher.TimeMode
	default:
		return s, errors.Errorf("unknown mode %q, use \"iter\" or \"time\"", modeName)
	}

	if s.iterations, err = parameters.PopParamOr(params, "iterations", defaults.iterations); err != nil {
		return s, err
	}
	if s.exploration, err = parameters.PopParamOr(params, "c", defaults.exploration); err != nil {
		return s, err
	}
	if s.cutoff, err = parameters.PopParamOr(params, "cutoff", defaults.cutoff); err != nil {
		return s, err
	}
	if s.seed, err = parameters.PopParamOr(params, "seed", defaults.seed); err != nil {
		return s, err
	}
	if s.seed == 0 {
		s.seed = uint64(time.Now().UnixNano())
	}
	return s, nil
}

func newAgent(name string, policy searcher.Policy, s settings, twoPlayerOnly bool) *mctsAgent {
	return &mctsAgent{
		name: name,
		mcts: searcher.NewMCTS(
			searcher.WithPolicy(policy),
			searcher.WithExploration(s.exploration),
			searcher.WithLogScale(s.logScale),
			searcher.WithCutoff(s.cutoff),
			searcher.WithSeed(s.seed),
			searcher.WithMetrics(),
		),
		mode:            s.mode,
		fixedIterations: s.iterations,
		twoPlayerOnly:   twoPlayerOnly,
		rng:             rand.New(rand.NewSource(s.seed + 1)),
	}
}

var defaultSettings = settings{
	mode:        searcher.IterationMode,
	exploration: -1,
	logScale:    1,
	cutoff:      meta.DefaultCutoff,
}

// simple registers an agent whose policy takes no parameters.
func simple(policy searcher.Policy, defaults settings) Factory {
	return func(name string, params parameters.Params) (Agent, error) {
		s, err := popSettings(params, defaults)
		if err != nil {
			return nil, err
		}
		return newAgent(name, policy, s, false), nil
	}
}

func init() {
	Register("uct", simple(nil, defaultSettings))
	Register("sh-anytime", simple(searcher.Halving{}, defaultSettings))
	Register("clustering", simple(searcher.Clustering{}, defaultSettings))

	timeSliced := defaultSettings
	timeSliced.mode = searcher.TimeMode
	timeSliced.exploration = 1
	timeSliced.logScale = 2
	Register("sh-time", simple(searcher.TimeSliced{}, timeSliced))

	Register("entropy-sh", func(name string, params parameters.Params) (Agent, error) {
		weight, err := parameters.PopParamOr(params, "weight", meta.DefaultEntropyWeight)
		if err != nil {
			return nil, err
		}
		s, err := popSettings(params, defaultSettings)
		if err != nil {
			return nil, err
		}
		return newAgent(name, searcher.EntropyHalving{Weight: weight}, s, true), nil
	})
}
