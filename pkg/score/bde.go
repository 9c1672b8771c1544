package score

import (
	"math"

	"github.com/matzehuels/mctbnc/pkg/model"
)

// StaticBDe is the Bayesian-Dirichlet equivalent score of a static network
// with a uniform pseudo-count NX per cell:
//
//	Σ_p [ lnΓ(α_p) − lnΓ(α_p + N_p) + Σ_k lnΓ(NX + N_pk) − lnΓ(NX) ]
//
// where α_p = NX·|S|. Only the counts are read; the network's probability
// tables are ignored.
type StaticBDe struct {
	NX float64
}

// Name implements [StaticFunction].
func (StaticBDe) Name() string { return NameBayesianDirichlet }

// Decomposable implements [StaticFunction].
func (StaticBDe) Decomposable() bool { return true }

// Compute implements [StaticFunction].
func (f StaticBDe) Compute(b *model.BN) float64 {
	return sumNodes(b.Size(), func(j int) float64 { return f.ComputeNode(b, j) })
}

// ComputeNode implements [StaticFunction].
func (f StaticBDe) ComputeNode(b *model.BN, j int) float64 {
	cpt := b.CPT(j)
	if cpt == nil {
		return 0
	}
	alpha := f.NX * float64(cpt.Context().States)
	s := 0.0
	for p, row := range cpt.Counts.N {
		s += lgamma(alpha) - lgamma(alpha+cpt.Counts.RowTotal(p))
		for _, n := range row {
			s += lgamma(f.NX+n) - lgamma(f.NX)
		}
	}
	return s
}

// ContinuousBDe is the Bayesian-Dirichlet equivalent score of a
// continuous-time network with a Gamma prior on intensities and a Dirichlet
// prior on transitions. For every parent state and state x, with
// α_xy = MXY, α_x = MXY·(|S|−1) and τ = TX:
//
//	lnΓ(α_x+M_x+1) + (α_x+1)·ln τ − lnΓ(α_x+1) − (α_x+M_x+1)·ln(τ+T_x)
//	+ lnΓ(α_x) − lnΓ(α_x+M_x) + Σ_{y≠x} lnΓ(α_xy+M_xy) − lnΓ(α_xy)
//
// The transition terms vanish for nodes with a single state.
type ContinuousBDe struct {
	MXY float64
	TX  float64
}

// Name implements [ContinuousFunction].
func (ContinuousBDe) Name() string { return NameBayesianDirichlet }

// Decomposable implements [ContinuousFunction].
func (ContinuousBDe) Decomposable() bool { return true }

// Compute implements [ContinuousFunction].
func (f ContinuousBDe) Compute(c *model.CTBN) float64 {
	return sumNodes(c.Size(), func(j int) float64 { return f.ComputeNode(c, j) })
}

// ComputeNode implements [ContinuousFunction].
func (f ContinuousBDe) ComputeNode(c *model.CTBN, j int) float64 {
	cim := c.CIM(j)
	if cim == nil {
		return 0
	}
	st := cim.Counts
	states := st.Context.States
	ax := f.MXY * float64(states-1)
	logTau := math.Log(f.TX)
	s := 0.0
	for p := range st.Tx {
		for x := 0; x < states; x++ {
			mx, tx := st.Mx[p][x], st.Tx[p][x]
			s += lgamma(ax+mx+1) + (ax+1)*logTau - lgamma(ax+1) - (ax+mx+1)*math.Log(f.TX+tx)
			if ax == 0 {
				// A single-state node never leaves its state.
				continue
			}
			s += lgamma(ax) - lgamma(ax+mx)
			for y := 0; y < states; y++ {
				if y != x {
					s += lgamma(f.MXY+st.Mxy[p][x][y]) - lgamma(f.MXY)
				}
			}
		}
	}
	return s
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}
