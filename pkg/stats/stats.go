// Package stats aggregates a dataset into the sufficient statistics used by
// closed-form parameter estimation.
//
// Statistics are always computed for one node under one parent set, described
// by a [Context]. They are transient: a search recomputes them whenever a
// node's parent set changes because the conditioning context changes.
package stats

import (
	"github.com/matzehuels/mctbnc/pkg/dataset"
)

// Context identifies a node and its parents in dataset variable indices and
// maps joint parent assignments to a mixed-radix index.
type Context struct {
	Var     int   // dataset index of the node
	States  int   // cardinality of the node
	Parents []int // dataset indices of the parents, ascending
	Cards   []int // cardinality of each parent
	strides []int
	size    int
}

// NewContext builds the context for variable v with the given parents.
func NewContext(d *dataset.Dataset, v int, parents []int) Context {
	c := Context{
		Var:     v,
		States:  d.Variable(v).Cardinality(),
		Parents: parents,
		Cards:   make([]int, len(parents)),
		strides: make([]int, len(parents)),
		size:    1,
	}
	for k, p := range parents {
		c.Cards[k] = d.Variable(p).Cardinality()
		c.strides[k] = c.size
		c.size *= c.Cards[k]
	}
	return c
}

// ParentStates returns the number of joint parent assignments (1 without parents).
func (c Context) ParentStates() int { return c.size }

// Index returns the joint parent state for one observation row.
func (c Context) Index(row []int) int {
	idx := 0
	for k, p := range c.Parents {
		idx += row[p] * c.strides[k]
	}
	return idx
}

// IndexWith returns the joint parent state for row with the values of the
// variables in override substituted. It is used to evaluate a sequence under
// hypothetical class assignments.
func (c Context) IndexWith(row []int, override map[int]int) int {
	idx := 0
	for k, p := range c.Parents {
		v := row[p]
		if o, ok := override[p]; ok {
			v = o
		}
		idx += v * c.strides[k]
	}
	return idx
}

// Assignment decodes a joint parent state into per-parent state indices.
func (c Context) Assignment(idx int) []int {
	out := make([]int, len(c.Parents))
	for k := range c.Parents {
		out[k] = (idx / c.strides[k]) % c.Cards[k]
	}
	return out
}

// StaticCounts holds occurrence counts N[parentState][ownState] for a node
// of a static network.
type StaticCounts struct {
	Context Context
	N       [][]float64
}

// RowTotal returns the number of instances with the given parent state.
func (s *StaticCounts) RowTotal(p int) float64 {
	t := 0.0
	for _, n := range s.N[p] {
		t += n
	}
	return t
}

// CountStatic performs one pass over d and counts, for every sequence, its
// (parent state, own state) cell. Each sequence contributes one instance
// taken from its first observation.
func CountStatic(d *dataset.Dataset, c Context) *StaticCounts {
	s := &StaticCounts{Context: c, N: matrix(c.ParentStates(), c.States)}
	for _, seq := range d.Sequences() {
		row := seq.Values[0]
		s.N[c.Index(row)][row[c.Var]]++
	}
	return s
}

// ContinuousCounts holds the statistics of a continuous-time node:
// time spent in each state (Tx), departures from each state (Mx) and
// transitions between states (Mxy), all per parent state.
type ContinuousCounts struct {
	Context Context
	Tx      [][]float64   // [parent][x]
	Mx      [][]float64   // [parent][x]
	Mxy     [][][]float64 // [parent][x][y]
}

// CountContinuous accumulates Tx, Mx and Mxy over every pair of consecutive
// observations. The elapsed time is charged to the node's state under the
// parent state at the earlier observation; a change of the node's value is
// recorded as one transition from the earlier to the later state.
func CountContinuous(d *dataset.Dataset, c Context) *ContinuousCounts {
	s := NewContinuousCounts(c)
	for _, seq := range d.Sequences() {
		s.AddSequence(seq)
	}
	return s
}

// NewContinuousCounts returns zeroed statistics for c.
func NewContinuousCounts(c Context) *ContinuousCounts {
	p := c.ParentStates()
	s := &ContinuousCounts{
		Context: c,
		Tx:      matrix(p, c.States),
		Mx:      matrix(p, c.States),
		Mxy:     make([][][]float64, p),
	}
	for k := range s.Mxy {
		s.Mxy[k] = matrix(c.States, c.States)
	}
	return s
}

// AddSequence adds one sequence's contribution to s.
func (s *ContinuousCounts) AddSequence(seq dataset.Sequence) {
	c := s.Context
	for t := 0; t+1 < seq.Len(); t++ {
		row, next := seq.Values[t], seq.Values[t+1]
		p := c.Index(row)
		x, y := row[c.Var], next[c.Var]
		s.Tx[p][x] += seq.Times[t+1] - seq.Times[t]
		if x != y {
			s.Mx[p][x]++
			s.Mxy[p][x][y]++
		}
	}
}

func matrix(rows, cols int) [][]float64 {
	backing := make([]float64, rows*cols)
	m := make([][]float64, rows)
	for i := range m {
		m[i] = backing[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return m
}
