package search

import (
	"context"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mctbnc/pkg/errors"
	"github.com/matzehuels/mctbnc/pkg/graph"
	"github.com/matzehuels/mctbnc/pkg/observability"
)

// PerNode is hill climbing decomposed by node. Every node optimizes its own
// incoming column by toggling one candidate parent at a time, scored by its
// local contribution only.
//
// The node searches run concurrently as a fork/join: each goroutine owns a
// forked objective and a private structure clone and returns only its
// column, which is merged into the result after all searches finish. This
// requires a decomposable objective and a column-local constraint.
type PerNode struct {
	Constraint graph.Constraint

	// Nodes lists the nodes whose columns are searched. Nil searches all;
	// columns of other nodes keep their initial value.
	Nodes []int

	// Workers bounds concurrent node searches. Zero uses GOMAXPROCS.
	Workers int

	// MaxIterations bounds committed moves per node. Zero means unbounded.
	MaxIterations int

	Hooks observability.SearchHooks
}

// Name implements [Strategy].
func (*PerNode) Name() string { return NamePerNode }

type nodeResult struct {
	column     []bool
	iterations int
	evaluated  int
}

// Search implements [Strategy].
func (p *PerNode) Search(ctx context.Context, obj Objective, initial *graph.Structure) (*Result, error) {
	if !obj.Decomposable() {
		return nil, errors.New(errors.ErrCodeInvalidAlgorithm, "%s requires a decomposable score", NamePerNode)
	}
	cc, ok := graph.Local(p.Constraint)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidAlgorithm, "%s requires column-local constraints", NamePerNode)
	}
	cur, err := start(obj, initial, p.Constraint)
	if err != nil {
		return nil, err
	}
	hooks := hooksOrDefault(p.Hooks)
	began := time.Now()
	hooks.OnSearchStart(ctx, p.Name(), obj.Size())

	nodes := p.Nodes
	if nodes == nil {
		nodes = make([]int, obj.Size())
		for j := range nodes {
			nodes[j] = j
		}
	}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]nodeResult, len(nodes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for k, j := range nodes {
		g.Go(func() error {
			r, err := p.climb(gctx, obj.Fork(), cc, cur.Clone(), j)
			results[k] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := cur.Clone()
	res := &Result{Structure: out}
	for k, j := range nodes {
		if err := out.SetColumn(j, results[k].column); err != nil {
			return nil, err
		}
		res.Iterations += results[k].iterations
		res.Evaluated += results[k].evaluated
	}
	res.Score = obj.Score(out)
	hooks.OnSearchComplete(ctx, p.Name(), res.Iterations, res.Score, time.Since(began))
	return res, nil
}

// climb optimizes column j of s against o.
func (p *PerNode) climb(ctx context.Context, o Objective, cc graph.ColumnConstraint, s *graph.Structure, j int) (nodeResult, error) {
	var r nodeResult
	score := o.ScoreNode(s, j)
	for p.MaxIterations <= 0 || r.iterations < p.MaxIterations {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		var next *graph.Structure
		nextScore := math.Inf(-1)
		for _, m := range graph.ColumnToggles(s, j) {
			nb := m.Neighbor(s)
			if !cc.AllowsColumn(nb, j) {
				continue
			}
			r.evaluated++
			if v := o.ScoreNode(nb, j); next == nil || improves(v, nextScore) {
				next, nextScore = nb, v
			}
		}
		if next == nil || !improves(nextScore, score) {
			break
		}
		s, score = next, nextScore
		r.iterations++
	}
	r.column = s.Column(j)
	return r, nil
}
