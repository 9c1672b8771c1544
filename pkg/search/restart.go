package search

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/matzehuels/mctbnc/pkg/graph"
	"github.com/matzehuels/mctbnc/pkg/observability"
)

// DefaultDensity is the edge probability of random restart structures.
const DefaultDensity = 0.2

// RandomRestart runs Inner from the initial structure and then once from
// each of Restarts random legal structures, keeping the best result. A
// restart replaces the incumbent only if it scores higher by more than
// [Epsilon], so earlier results win ties.
//
// With a seeded Rand the sequence of restart structures, and therefore the
// result, is reproducible.
type RandomRestart struct {
	Inner    Strategy
	Restarts int

	// Density is the edge probability of restart structures. Zero uses
	// DefaultDensity.
	Density float64

	// Constraint keeps restart structures legal; it should match Inner's.
	Constraint graph.Constraint

	// FixedRoots never receive parents in restart structures.
	FixedRoots []int

	// Rand draws the restart structures. Nil uses [DefaultSeed].
	Rand *rand.Rand

	Hooks observability.SearchHooks
}

// Name implements [Strategy].
func (*RandomRestart) Name() string { return NameRandomRestart }

// Search implements [Strategy].
func (r *RandomRestart) Search(ctx context.Context, obj Objective, initial *graph.Structure) (*Result, error) {
	r.Rand = randOrDefault(r.Rand)
	hooks := hooksOrDefault(r.Hooks)
	density := r.Density
	if density <= 0 {
		density = DefaultDensity
	}
	began := time.Now()
	hooks.OnSearchStart(ctx, r.Name(), obj.Size())

	best, err := r.Inner.Search(ctx, obj, initial)
	if err != nil {
		return nil, err
	}
	iterations, evaluated := best.Iterations, best.Evaluated
	for i := 0; i < r.Restarts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s := graph.Random(r.Rand, obj.Size(), density, r.Constraint, r.FixedRoots)
		res, err := r.Inner.Search(ctx, obj, s)
		if err != nil {
			return nil, err
		}
		iterations += res.Iterations
		evaluated += res.Evaluated
		hooks.OnIteration(ctx, r.Name(), i+1, res.Score)
		if improves(res.Score, best.Score) {
			best = res
		}
	}

	out := &Result{
		Structure:  best.Structure,
		Score:      obj.Score(best.Structure),
		Iterations: iterations,
		Evaluated:  evaluated,
	}
	hooks.OnSearchComplete(ctx, r.Name(), out.Iterations, out.Score, time.Since(began))
	return out, nil
}
