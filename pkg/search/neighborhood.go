package search

import (
	"context"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mctbnc/pkg/graph"
)

// candidate is a legal neighbor of the current structure with its score.
// For decomposable objectives nodes holds the new local scores of the
// move's touched nodes.
type candidate struct {
	move  graph.Move
	next  *graph.Structure
	score float64
	nodes []float64
}

// evaluator scores neighbors of a current structure. With a decomposable
// objective it keeps a per-node local score cache and re-scores only the
// nodes a move touches.
type evaluator struct {
	obj        Objective
	forks      []Objective
	constraint graph.Constraint

	decomposable bool
	local        []float64
	score        float64
	evaluated    int
}

func newEvaluator(obj Objective, c graph.Constraint, workers int) *evaluator {
	e := &evaluator{obj: obj, constraint: c, decomposable: obj.Decomposable()}
	if workers > 1 {
		e.forks = make([]Objective, workers)
		for w := range e.forks {
			e.forks[w] = obj.Fork()
		}
	}
	return e
}

// reset makes s the current structure and recomputes its score.
func (e *evaluator) reset(s *graph.Structure) {
	if !e.decomposable {
		e.score = e.obj.Score(s)
		return
	}
	e.local = make([]float64, s.Size())
	e.score = 0
	for j := range e.local {
		e.local[j] = e.obj.ScoreNode(s, j)
		e.score += e.local[j]
	}
}

// neighbors scores every legal neighbor of cur reachable by moves, in
// enumeration order.
func (e *evaluator) neighbors(ctx context.Context, cur *graph.Structure, moves []graph.Move) ([]candidate, error) {
	cands := make([]candidate, 0, len(moves))
	for _, m := range moves {
		next := m.Neighbor(cur)
		if graph.Allowed(e.constraint, next) {
			cands = append(cands, candidate{move: m, next: next})
		}
	}
	e.evaluated += len(cands)

	if len(e.forks) == 0 || len(cands) < 2 {
		for k := range cands {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			e.eval(e.obj, &cands[k])
		}
		return cands, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	workers := len(e.forks)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for k := w; k < len(cands); k += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				e.eval(e.forks[w], &cands[k])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cands, nil
}

func (e *evaluator) eval(o Objective, c *candidate) {
	if !e.decomposable {
		c.score = o.Score(c.next)
		return
	}
	touched := c.move.Touched()
	c.nodes = make([]float64, len(touched))
	c.score = e.score
	for k, t := range touched {
		c.nodes[k] = o.ScoreNode(c.next, t)
		c.score += c.nodes[k] - e.local[t]
	}
}

// commit makes c's structure the current one.
func (e *evaluator) commit(c candidate) {
	if e.decomposable {
		for k, t := range c.move.Touched() {
			e.local[t] = c.nodes[k]
		}
	}
	e.score = c.score
}

// firstBest returns the index of the first candidate whose score no later
// candidate exceeds by more than Epsilon, or -1 for an empty slice.
func firstBest(cands []candidate) int {
	best := -1
	for k, c := range cands {
		if best < 0 || improves(c.score, cands[best].score) {
			best = k
		}
	}
	return best
}

// pick chooses the best of the family winners. Winners tied within Epsilon
// are chosen uniformly: the k-th tie replaces the incumbent with
// probability 1/k.
func pick(rng *rand.Rand, winners []candidate) (candidate, bool) {
	if len(winners) == 0 {
		return candidate{}, false
	}
	best, tied := winners[0], 1
	for _, w := range winners[1:] {
		switch {
		case improves(w.score, best.score):
			best, tied = w, 1
		case !improves(best.score, w.score):
			tied++
			if rng.IntN(tied) == 0 {
				best = w
			}
		}
	}
	return best, true
}
