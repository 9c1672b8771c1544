package search

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/emirpasic/gods/queues/circularbuffer"

	"github.com/matzehuels/mctbnc/pkg/graph"
	"github.com/matzehuels/mctbnc/pkg/observability"
)

// Tabu search defaults.
const (
	DefaultTabuSize       = 10
	DefaultTabuIterations = 100
	DefaultTabuPatience   = 10
)

// Tabu is tabu search over the hill-climbing neighborhood.
//
// Every iteration moves to the best legal neighbor that is not tabu, even
// when it scores worse than the current structure, which lets the search
// walk out of local optima. The last Size visited structures are tabu; a
// tabu neighbor is admitted only if it beats the best score found so far.
// The search stops after MaxIterations moves or after Patience consecutive
// moves without a new best, and returns the best structure visited.
type Tabu struct {
	Constraint graph.Constraint

	// Size is the tabu list length. Zero uses DefaultTabuSize.
	Size int

	// MaxIterations bounds moves. Zero uses DefaultTabuIterations.
	MaxIterations int

	// Patience bounds consecutive non-improving moves. Zero uses DefaultTabuPatience.
	Patience int

	// Workers > 1 scores candidates concurrently.
	Workers int

	// Rand breaks ties between family winners. Nil uses [DefaultSeed].
	Rand *rand.Rand

	Hooks observability.SearchHooks
}

// Name implements [Strategy].
func (*Tabu) Name() string { return NameTabu }

// tabuList is a FIFO of recently visited structure keys with set lookup.
type tabuList struct {
	queue *circularbuffer.Queue
	keys  map[string]int
}

func newTabuList(size int) *tabuList {
	return &tabuList{queue: circularbuffer.New(size), keys: make(map[string]int, size)}
}

func (t *tabuList) push(key string) {
	if t.queue.Full() {
		if old, ok := t.queue.Dequeue(); ok {
			k := old.(string)
			if t.keys[k]--; t.keys[k] <= 0 {
				delete(t.keys, k)
			}
		}
	}
	t.queue.Enqueue(key)
	t.keys[key]++
}

func (t *tabuList) contains(key string) bool { return t.keys[key] > 0 }

// Search implements [Strategy].
func (t *Tabu) Search(ctx context.Context, obj Objective, initial *graph.Structure) (*Result, error) {
	cur, err := start(obj, initial, t.Constraint)
	if err != nil {
		return nil, err
	}
	size, maxIter, patience := t.Size, t.MaxIterations, t.Patience
	if size <= 0 {
		size = DefaultTabuSize
	}
	if maxIter <= 0 {
		maxIter = DefaultTabuIterations
	}
	if patience <= 0 {
		patience = DefaultTabuPatience
	}
	t.Rand = randOrDefault(t.Rand)
	hooks := hooksOrDefault(t.Hooks)
	began := time.Now()
	hooks.OnSearchStart(ctx, t.Name(), obj.Size())

	ev := newEvaluator(obj, t.Constraint, t.Workers)
	ev.reset(cur)
	tabu := newTabuList(size)
	tabu.push(cur.Key())

	best, bestScore := cur, ev.score
	res := &Result{}
	for stale := 0; res.Iterations < maxIter && stale < patience; {
		var winners []candidate
		for _, family := range graph.Families(cur) {
			cands, err := ev.neighbors(ctx, cur, family)
			if err != nil {
				return nil, err
			}
			admitted := cands[:0]
			for _, c := range cands {
				if !tabu.contains(c.next.Key()) || improves(c.score, bestScore) {
					admitted = append(admitted, c)
				}
			}
			if k := firstBest(admitted); k >= 0 {
				winners = append(winners, admitted[k])
			}
		}
		next, ok := pick(t.Rand, winners)
		if !ok {
			break
		}
		ev.commit(next)
		cur = next.next
		tabu.push(cur.Key())
		res.Iterations++
		hooks.OnIteration(ctx, t.Name(), res.Iterations, ev.score)

		if improves(ev.score, bestScore) {
			best, bestScore, stale = cur, ev.score, 0
		} else {
			stale++
		}
	}

	res.Structure = best
	res.Score = obj.Score(best)
	res.Evaluated = ev.evaluated
	hooks.OnSearchComplete(ctx, t.Name(), res.Iterations, res.Score, time.Since(began))
	return res, nil
}
