package model

import (
	"github.com/matzehuels/mctbnc/pkg/dataset"
	"github.com/matzehuels/mctbnc/pkg/graph"
	"github.com/matzehuels/mctbnc/pkg/stats"
)

// CIM is the conditional intensity table of a continuous-time node. For
// every parent state p it holds the intensity of leaving each state,
// Intensity[p][x], and the distribution over destination states,
// Transition[p][x][y] (zero on the diagonal).
//
// A CIM is immutable once built and may be shared between network clones.
type CIM struct {
	Counts     *stats.ContinuousCounts
	Intensity  [][]float64
	Transition [][][]float64
}

// Context returns the parent context the table was estimated under.
func (c *CIM) Context() stats.Context { return c.Counts.Context }

// Matrix returns the conditional intensity matrix for parent state p:
// off-diagonal entries q_x·θ_xy and diagonal entries -q_x, so every row
// sums to zero.
func (c *CIM) Matrix(p int) [][]float64 {
	n := len(c.Intensity[p])
	m := make([][]float64, n)
	for x := range m {
		m[x] = make([]float64, n)
		off := 0.0
		for y := 0; y < n; y++ {
			if y == x {
				continue
			}
			m[x][y] = c.Intensity[p][x] * c.Transition[p][x][y]
			off += m[x][y]
		}
		m[x][x] = -off
	}
	return m
}

// CTBN is a continuous-time Bayesian network. Class nodes take part as
// parents only and carry no intensity table.
type CTBN struct {
	Network
	cims []*CIM
}

// NewCTBN builds an empty-structure continuous-time network over the given
// dataset variables.
func NewCTBN(d *dataset.Dataset, vars []int) (*CTBN, error) {
	n, err := newNetwork(d, vars)
	if err != nil {
		return nil, err
	}
	return &CTBN{Network: n, cims: make([]*CIM, n.Size())}, nil
}

// SetStructure replaces the structure. Parameters of nodes whose parent set
// changed are stale until refit.
func (c *CTBN) SetStructure(s *graph.Structure) error { return c.setStructure(s) }

// CIM returns node j's table, or nil for class nodes and unestimated nodes.
func (c *CTBN) CIM(j int) *CIM { return c.cims[j] }

// SetCIM installs node j's table.
func (c *CTBN) SetCIM(j int, cim *CIM) { c.cims[j] = cim }

// Clone returns a copy with a private structure and parameter slice. The
// tables themselves are shared read-only, which makes a clone the unit of
// isolation for parallel per-node search: a worker rewrites only its own
// node's table and its own column.
func (c *CTBN) Clone() *CTBN {
	out := &CTBN{Network: c.clone(), cims: make([]*CIM, len(c.cims))}
	copy(out.cims, c.cims)
	return out
}

// Rebind returns a clone bound to another dataset, keeping the parameters.
func (c *CTBN) Rebind(d *dataset.Dataset) *CTBN {
	out := &CTBN{Network: c.rebind(d), cims: make([]*CIM, len(c.cims))}
	copy(out.cims, c.cims)
	return out
}
