package search

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/matzehuels/mctbnc/pkg/errors"
	"github.com/matzehuels/mctbnc/pkg/graph"
	"github.com/matzehuels/mctbnc/pkg/observability"
)

// Epsilon is the absolute tolerance of every score comparison. A candidate
// improves on another only if it is larger by more than Epsilon; scores
// within Epsilon of each other are ties.
const Epsilon = 1e-9

// improves reports whether score a beats b by more than Epsilon. NaN ranks
// as -Inf, so a NaN score never improves on anything.
func improves(a, b float64) bool {
	return rank(a) > rank(b)+Epsilon
}

func rank(v float64) float64 {
	if math.IsNaN(v) {
		return math.Inf(-1)
	}
	return v
}

// DefaultSeed seeds strategies whose random source is unset.
const DefaultSeed uint64 = 42

// Objective evaluates candidate structures. Implementations bind a network
// and a score function; they refit parameters for the candidate as needed.
//
// An Objective is not safe for concurrent use. Concurrent searches call
// Fork once per goroutine and evaluate candidates against the fork.
type Objective interface {
	// Size returns the number of nodes.
	Size() int

	// Score returns the score of the whole structure.
	Score(s *graph.Structure) float64

	// ScoreNode returns node j's local contribution under s. Only
	// meaningful when Decomposable reports true; it depends on column j
	// of s alone.
	ScoreNode(s *graph.Structure, j int) float64

	// Decomposable reports whether Score equals the sum of ScoreNode.
	Decomposable() bool

	// Fork returns an independent objective over the same data.
	Fork() Objective
}

// Result is the outcome of a search.
type Result struct {
	Structure  *graph.Structure
	Score      float64
	Iterations int // committed moves
	Evaluated  int // legal candidates scored
}

// Strategy is a structure search algorithm.
type Strategy interface {
	// Name returns the configuration name of the algorithm.
	Name() string

	// Search climbs from initial, or from the empty structure when initial
	// is nil. The initial structure must satisfy the strategy's constraint.
	Search(ctx context.Context, obj Objective, initial *graph.Structure) (*Result, error)
}

// Kind identifies a search algorithm.
type Kind int

const (
	// KindHillClimbing is global hill climbing over add, delete and reverse moves.
	KindHillClimbing Kind = iota
	// KindPerNode is hill climbing decomposed into one parallel search per node.
	KindPerNode
	// KindTabu is tabu search.
	KindTabu
	// KindRandomRestart is global hill climbing repeated from random structures.
	KindRandomRestart
)

// Algorithm names as they appear in hyperparameter maps.
const (
	NameHillClimbing  = "Hill climbing"
	NamePerNode       = "Per-node hill climbing"
	NameTabu          = "Tabu search"
	NameRandomRestart = "Random-restart hill climbing"
)

// String returns the configuration name.
func (k Kind) String() string {
	switch k {
	case KindHillClimbing:
		return NameHillClimbing
	case KindPerNode:
		return NamePerNode
	case KindTabu:
		return NameTabu
	case KindRandomRestart:
		return NameRandomRestart
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind resolves a configuration name.
func ParseKind(s string) (Kind, error) {
	switch s {
	case NameHillClimbing:
		return KindHillClimbing, nil
	case NamePerNode:
		return KindPerNode, nil
	case NameTabu:
		return KindTabu, nil
	case NameRandomRestart:
		return KindRandomRestart, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidAlgorithm, "unknown search algorithm %q", s)
	}
}

// Config describes a strategy for [New].
type Config struct {
	Kind       Kind
	Constraint graph.Constraint

	// MaxIterations bounds committed moves (per node for KindPerNode).
	// Zero means unbounded for hill climbing and the default for tabu search.
	MaxIterations int

	// Workers bounds concurrent evaluation. Values below 2 run sequentially.
	Workers int

	// TabuSize is the tabu list length.
	TabuSize int

	// Restarts is the number of random restarts after the initial climb.
	Restarts int

	// Density is the edge probability of random restart structures.
	Density float64

	// Nodes restricts per-node search to these nodes; nil searches all.
	Nodes []int

	// FixedRoots never receive parents in random restart structures.
	FixedRoots []int

	Seed  uint64
	Hooks observability.SearchHooks
}

// New builds the configured strategy. Per-node search is rejected when the
// constraint cannot be checked column by column.
func New(cfg Config) (Strategy, error) {
	rng := NewRand(cfg.Seed)
	hc := &HillClimbing{
		Constraint:    cfg.Constraint,
		MaxIterations: cfg.MaxIterations,
		Workers:       cfg.Workers,
		Rand:          rng,
		Hooks:         cfg.Hooks,
	}
	switch cfg.Kind {
	case KindHillClimbing:
		return hc, nil
	case KindPerNode:
		if _, ok := graph.Local(cfg.Constraint); !ok {
			return nil, errors.New(errors.ErrCodeInvalidAlgorithm, "%s requires column-local constraints", NamePerNode)
		}
		return &PerNode{
			Constraint:    cfg.Constraint,
			Nodes:         cfg.Nodes,
			Workers:       cfg.Workers,
			MaxIterations: cfg.MaxIterations,
			Hooks:         cfg.Hooks,
		}, nil
	case KindTabu:
		return &Tabu{
			Constraint:    cfg.Constraint,
			Size:          cfg.TabuSize,
			MaxIterations: cfg.MaxIterations,
			Workers:       cfg.Workers,
			Rand:          rng,
			Hooks:         cfg.Hooks,
		}, nil
	case KindRandomRestart:
		if cfg.Restarts < 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "numRestarts must be non-negative, got %d", cfg.Restarts)
		}
		return &RandomRestart{
			Inner:      hc,
			Restarts:   cfg.Restarts,
			Density:    cfg.Density,
			Constraint: cfg.Constraint,
			FixedRoots: cfg.FixedRoots,
			Rand:       rng,
			Hooks:      cfg.Hooks,
		}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidAlgorithm, "unknown search algorithm %s", cfg.Kind)
	}
}

// NewRand returns the seeded random source used by the strategies.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// start validates and clones the initial structure.
func start(obj Objective, initial *graph.Structure, c graph.Constraint) (*graph.Structure, error) {
	if initial == nil {
		return graph.New(obj.Size()), nil
	}
	if initial.Size() != obj.Size() {
		return nil, errors.New(errors.ErrCodeInvalidStructure, "initial structure has %d nodes, network has %d", initial.Size(), obj.Size())
	}
	if !graph.Allowed(c, initial) {
		return nil, errors.New(errors.ErrCodeInvalidStructure, "initial structure violates the search constraints")
	}
	return initial.Clone(), nil
}

func hooksOrDefault(h observability.SearchHooks) observability.SearchHooks {
	if h == nil {
		return observability.Search()
	}
	return h
}

func randOrDefault(r *rand.Rand) *rand.Rand {
	if r == nil {
		return NewRand(DefaultSeed)
	}
	return r
}
