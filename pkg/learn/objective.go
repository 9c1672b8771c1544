package learn

import (
	"sync"

	"github.com/matzehuels/mctbnc/pkg/estimate"
	"github.com/matzehuels/mctbnc/pkg/graph"
	"github.com/matzehuels/mctbnc/pkg/model"
	"github.com/matzehuels/mctbnc/pkg/score"
	"github.com/matzehuels/mctbnc/pkg/search"
)

// family identifies a node together with its parent set.
type family struct {
	node    int
	parents string
}

func familyOf(s *graph.Structure, j int) family {
	col := s.Column(j)
	b := make([]byte, len(col))
	for i, v := range col {
		if v {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return family{node: j, parents: string(b)}
}

// familyCache memoizes fitted tables and local scores per family. A node's
// table depends only on its parents, so every fork of an objective shares
// one cache.
type familyCache[T any] struct {
	mu     sync.Mutex
	tables map[family]T
	scores map[family]float64
}

func newFamilyCache[T any]() *familyCache[T] {
	return &familyCache[T]{tables: make(map[family]T), scores: make(map[family]float64)}
}

func (c *familyCache[T]) table(f family, fit func() T) T {
	c.mu.Lock()
	t, ok := c.tables[f]
	c.mu.Unlock()
	if ok {
		return t
	}
	t = fit()
	c.mu.Lock()
	c.tables[f] = t
	c.mu.Unlock()
	return t
}

func (c *familyCache[T]) score(f family, compute func() float64) float64 {
	c.mu.Lock()
	v, ok := c.scores[f]
	c.mu.Unlock()
	if ok {
		return v
	}
	v = compute()
	c.mu.Lock()
	c.scores[f] = v
	c.mu.Unlock()
	return v
}

// bnObjective scores structures of a static network.
type bnObjective struct {
	net   *model.BN
	est   estimate.Estimator
	fn    score.StaticFunction
	cache *familyCache[*model.CPT]
}

func newBNObjective(net *model.BN, est estimate.Estimator, fn score.StaticFunction) *bnObjective {
	return &bnObjective{net: net, est: est, fn: fn, cache: newFamilyCache[*model.CPT]()}
}

func (o *bnObjective) Size() int          { return o.net.Size() }
func (o *bnObjective) Decomposable() bool { return o.fn.Decomposable() }

func (o *bnObjective) Fork() search.Objective {
	return &bnObjective{net: o.net.Clone(), est: o.est, fn: o.fn, cache: o.cache}
}

// bind installs s and the tables of the given nodes.
func (o *bnObjective) bind(s *graph.Structure, nodes ...int) {
	// Search strategies reject structures of the wrong size before scoring.
	if err := o.net.SetStructure(s); err != nil {
		panic(err)
	}
	for _, j := range nodes {
		o.net.SetCPT(j, o.cache.table(familyOf(s, j), func() *model.CPT { return o.est.BNNode(o.net, j) }))
	}
}

func (o *bnObjective) Score(s *graph.Structure) float64 {
	if !o.fn.Decomposable() {
		o.bind(s, allNodes(s)...)
		return o.fn.Compute(o.net)
	}
	total := 0.0
	for j := 0; j < s.Size(); j++ {
		total += o.ScoreNode(s, j)
	}
	o.bind(s, allNodes(s)...)
	return total
}

func (o *bnObjective) ScoreNode(s *graph.Structure, j int) float64 {
	if !o.fn.Decomposable() {
		return o.Score(s)
	}
	return o.cache.score(familyOf(s, j), func() float64 {
		o.bind(s, j)
		return o.fn.ComputeNode(o.net, j)
	})
}

// ctbnObjective scores structures of a continuous-time network.
type ctbnObjective struct {
	net   *model.CTBN
	est   estimate.Estimator
	fn    score.ContinuousFunction
	cache *familyCache[*model.CIM]
}

func newCTBNObjective(net *model.CTBN, est estimate.Estimator, fn score.ContinuousFunction) *ctbnObjective {
	return &ctbnObjective{net: net, est: est, fn: fn, cache: newFamilyCache[*model.CIM]()}
}

func (o *ctbnObjective) Size() int          { return o.net.Size() }
func (o *ctbnObjective) Decomposable() bool { return o.fn.Decomposable() }

func (o *ctbnObjective) Fork() search.Objective {
	return &ctbnObjective{net: o.net.Clone(), est: o.est, fn: o.fn, cache: o.cache}
}

func (o *ctbnObjective) bind(s *graph.Structure, nodes ...int) {
	// Search strategies reject structures of the wrong size before scoring.
	if err := o.net.SetStructure(s); err != nil {
		panic(err)
	}
	for _, j := range nodes {
		o.net.SetCIM(j, o.cache.table(familyOf(s, j), func() *model.CIM { return o.est.CTBNNode(o.net, j) }))
	}
}

func (o *ctbnObjective) Score(s *graph.Structure) float64 {
	if !o.fn.Decomposable() {
		o.bind(s, allNodes(s)...)
		return o.fn.Compute(o.net)
	}
	total := 0.0
	for j := 0; j < s.Size(); j++ {
		total += o.ScoreNode(s, j)
	}
	o.bind(s, allNodes(s)...)
	return total
}

func (o *ctbnObjective) ScoreNode(s *graph.Structure, j int) float64 {
	if !o.fn.Decomposable() {
		return o.Score(s)
	}
	return o.cache.score(familyOf(s, j), func() float64 {
		o.bind(s, j)
		return o.fn.ComputeNode(o.net, j)
	})
}

func allNodes(s *graph.Structure) []int {
	out := make([]int, s.Size())
	for j := range out {
		out[j] = j
	}
	return out
}
