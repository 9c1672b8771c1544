package search

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/matzehuels/mctbnc/pkg/graph"
	"github.com/matzehuels/mctbnc/pkg/observability"
)

// HillClimbing is greedy ascent over single-edge additions, deletions and
// reversals of the whole structure.
//
// Each step scores every legal neighbor, keeps the first best of each move
// family, and commits the best family winner if it improves the current
// score by more than [Epsilon]. It is the only strategy that is correct for
// non-decomposable objectives.
type HillClimbing struct {
	Constraint graph.Constraint

	// MaxIterations bounds committed moves. Zero means unbounded.
	MaxIterations int

	// Workers > 1 scores candidates concurrently, each worker against its
	// own forked objective. Selection stays sequential, so results do not
	// depend on the worker count.
	Workers int

	// Rand breaks ties between family winners. Nil uses [DefaultSeed].
	Rand *rand.Rand

	Hooks observability.SearchHooks
}

// Name implements [Strategy].
func (*HillClimbing) Name() string { return NameHillClimbing }

// Search implements [Strategy].
func (h *HillClimbing) Search(ctx context.Context, obj Objective, initial *graph.Structure) (*Result, error) {
	cur, err := start(obj, initial, h.Constraint)
	if err != nil {
		return nil, err
	}
	h.Rand = randOrDefault(h.Rand)
	hooks := hooksOrDefault(h.Hooks)
	began := time.Now()
	hooks.OnSearchStart(ctx, h.Name(), obj.Size())

	ev := newEvaluator(obj, h.Constraint, h.Workers)
	ev.reset(cur)
	res := &Result{}
	for h.MaxIterations <= 0 || res.Iterations < h.MaxIterations {
		var winners []candidate
		for _, family := range graph.Families(cur) {
			cands, err := ev.neighbors(ctx, cur, family)
			if err != nil {
				return nil, err
			}
			if k := firstBest(cands); k >= 0 {
				winners = append(winners, cands[k])
			}
		}
		best, ok := pick(h.Rand, winners)
		if !ok || !improves(best.score, ev.score) {
			break
		}
		ev.commit(best)
		cur = best.next
		res.Iterations++
		hooks.OnIteration(ctx, h.Name(), res.Iterations, ev.score)
	}

	res.Structure = cur
	res.Score = obj.Score(cur)
	res.Evaluated = ev.evaluated
	hooks.OnSearchComplete(ctx, h.Name(), res.Iterations, res.Score, time.Since(began))
	return res, nil
}
