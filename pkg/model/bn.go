package model

import (
	"math"

	"github.com/matzehuels/mctbnc/pkg/dataset"
	"github.com/matzehuels/mctbnc/pkg/graph"
	"github.com/matzehuels/mctbnc/pkg/stats"
)

// CPT is the conditional probability table of a static node:
// Probs[parentState][ownState], with the counts it was estimated from.
//
// A CPT is immutable once built and may be shared between network clones.
type CPT struct {
	Counts *stats.StaticCounts
	Probs  [][]float64
}

// Context returns the parent context the table was estimated under.
func (c *CPT) Context() stats.Context { return c.Counts.Context }

// BN is a static Bayesian network over a subset of the dataset's variables.
type BN struct {
	Network
	cpts []*CPT
}

// NewBN builds an empty-structure static network over the given dataset
// variables. Parameters are unset until estimated.
func NewBN(d *dataset.Dataset, vars []int) (*BN, error) {
	n, err := newNetwork(d, vars)
	if err != nil {
		return nil, err
	}
	return &BN{Network: n, cpts: make([]*CPT, n.Size())}, nil
}

// SetStructure replaces the structure. Parameters of nodes whose parent set
// changed are stale until refit.
func (b *BN) SetStructure(s *graph.Structure) error { return b.setStructure(s) }

// CPT returns node j's table, or nil if it has not been estimated.
func (b *BN) CPT(j int) *CPT { return b.cpts[j] }

// SetCPT installs node j's table.
func (b *BN) SetCPT(j int, c *CPT) { b.cpts[j] = c }

// Clone returns a copy with a private structure. Tables are shared
// read-only; SetCPT on the clone does not affect b.
func (b *BN) Clone() *BN {
	c := &BN{Network: b.clone(), cpts: make([]*CPT, len(b.cpts))}
	copy(c.cpts, b.cpts)
	return c
}

// Rebind returns a clone bound to another dataset, keeping the parameters.
func (b *BN) Rebind(d *dataset.Dataset) *BN {
	c := &BN{Network: b.rebind(d), cpts: make([]*CPT, len(b.cpts))}
	copy(c.cpts, b.cpts)
	return c
}

// LogProb returns log P(row) under the network, where row holds state
// indices by dataset variable. Zero-probability cells yield -Inf.
func (b *BN) LogProb(row []int) float64 {
	lp := 0.0
	for j, nd := range b.nodes {
		cpt := b.cpts[j]
		if cpt == nil {
			continue
		}
		p := cpt.Probs[cpt.Context().Index(row)][row[nd.Var]]
		lp += math.Log(p)
	}
	return lp
}
