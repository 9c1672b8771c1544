// Package estimate turns sufficient statistics into parameter tables.
//
// Static nodes get a conditional probability table; continuous-time nodes
// get a conditional intensity table. Both support maximum-likelihood
// estimation and Bayesian estimation with a uniform Dirichlet prior (and a
// Gamma prior on intensities).
package estimate

import (
	"fmt"

	"github.com/matzehuels/mctbnc/pkg/errors"
	"github.com/matzehuels/mctbnc/pkg/model"
	"github.com/matzehuels/mctbnc/pkg/stats"
)

// Method selects the estimation rule.
type Method int

const (
	// MaxLikelihood normalizes the raw counts.
	MaxLikelihood Method = iota
	// Bayesian adds the hyperparameters as imaginary counts before normalizing.
	Bayesian
)

// Method names as they appear in hyperparameter maps.
const (
	NameMaxLikelihood = "Maximum likelihood estimation"
	NameBayesian      = "Bayesian estimation"
)

// String returns the method's configuration name.
func (m Method) String() string {
	switch m {
	case MaxLikelihood:
		return NameMaxLikelihood
	case Bayesian:
		return NameBayesian
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod resolves a configuration name.
func ParseMethod(s string) (Method, error) {
	switch s {
	case NameMaxLikelihood:
		return MaxLikelihood, nil
	case NameBayesian:
		return Bayesian, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidEstimator, "unknown parameter estimator %q", s)
	}
}

// Estimator converts statistics into tables.
//
// For Bayesian estimation NX is the imaginary count added to every CPT
// cell, MXY the imaginary number of transitions between every ordered pair
// of distinct states and TX the imaginary time spent in every state. The
// imaginary number of departures from a state is MXY·(|S|-1).
type Estimator struct {
	Method Method
	NX     float64
	MXY    float64
	TX     float64
}

// CPT estimates a conditional probability table.
//
// Every row sums to one: under maximum likelihood an unobserved parent
// state gets the uniform distribution.
func (e Estimator) CPT(c *stats.StaticCounts) *model.CPT {
	nx := 0.0
	if e.Method == Bayesian {
		nx = e.NX
	}
	states := c.Context.States
	probs := make([][]float64, len(c.N))
	for p, row := range c.N {
		probs[p] = make([]float64, states)
		total := c.RowTotal(p) + nx*float64(states)
		for k, n := range row {
			if total > 0 {
				probs[p][k] = (n + nx) / total
			} else {
				probs[p][k] = 1 / float64(states)
			}
		}
	}
	return &model.CPT{Counts: c, Probs: probs}
}

// CIM estimates a conditional intensity table.
//
// Intensities are q_x = (M_x + m_x) / (T_x + t_x) and transition
// probabilities θ_xy = (M_xy + m_xy) / (M_x + m_x), with the imaginary
// counts zero under maximum likelihood. A state with no evidence gets
// q_x = 0 and an all-zero transition row.
func (e Estimator) CIM(c *stats.ContinuousCounts) *model.CIM {
	states := c.Context.States
	mxy, tx := 0.0, 0.0
	if e.Method == Bayesian {
		mxy, tx = e.MXY, e.TX
	}
	mx := mxy * float64(states-1)

	pstates := len(c.Tx)
	cim := &model.CIM{
		Counts:     c,
		Intensity:  make([][]float64, pstates),
		Transition: make([][][]float64, pstates),
	}
	for p := 0; p < pstates; p++ {
		cim.Intensity[p] = make([]float64, states)
		cim.Transition[p] = make([][]float64, states)
		for x := 0; x < states; x++ {
			if t := c.Tx[p][x] + tx; t > 0 {
				cim.Intensity[p][x] = (c.Mx[p][x] + mx) / t
			}
			row := make([]float64, states)
			if d := c.Mx[p][x] + mx; d > 0 {
				for y := 0; y < states; y++ {
					if y != x {
						row[y] = (c.Mxy[p][x][y] + mxy) / d
					}
				}
			}
			cim.Transition[p][x] = row
		}
	}
	return cim
}

// BNNode estimates node j's table under its current parents without
// installing it.
func (e Estimator) BNNode(b *model.BN, j int) *model.CPT {
	return e.CPT(stats.CountStatic(b.Dataset(), b.Context(j)))
}

// CTBNNode estimates node j's table under its current parents without
// installing it. Class nodes get no table.
func (e Estimator) CTBNNode(c *model.CTBN, j int) *model.CIM {
	if c.Node(j).Class {
		return nil
	}
	return e.CIM(stats.CountContinuous(c.Dataset(), c.Context(j)))
}

// FitBNNode recomputes node j's statistics under its current parents and
// installs a fresh table.
func (e Estimator) FitBNNode(b *model.BN, j int) { b.SetCPT(j, e.BNNode(b, j)) }

// FitBN refits every node of b.
func (e Estimator) FitBN(b *model.BN) {
	for j := range b.Nodes() {
		e.FitBNNode(b, j)
	}
}

// FitCTBNNode refits node j of c. Class nodes are left without a table.
func (e Estimator) FitCTBNNode(c *model.CTBN, j int) { c.SetCIM(j, e.CTBNNode(c, j)) }

// FitCTBN refits every feature node of c.
func (e Estimator) FitCTBN(c *model.CTBN) {
	for j := range c.Nodes() {
		e.FitCTBNNode(c, j)
	}
}

// Validate checks the hyperparameters for the configured method.
func (e Estimator) Validate() error {
	if e.Method != Bayesian {
		return nil
	}
	if e.NX < 0 || e.MXY < 0 || e.TX < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "estimator hyperparameters must be non-negative (nx=%g, mxy=%g, tx=%g)", e.NX, e.MXY, e.TX)
	}
	return nil
}
