package score

import (
	"github.com/matzehuels/mctbnc/pkg/model"
)

// StaticLogLikelihood is Σ N_ijk·log θ_ijk over every node, minus the
// configured penalty. The sample size is the number of sequences.
type StaticLogLikelihood struct {
	Penalty Penalization
}

// Name implements [StaticFunction].
func (StaticLogLikelihood) Name() string { return NameLogLikelihood }

// Decomposable implements [StaticFunction].
func (StaticLogLikelihood) Decomposable() bool { return true }

// Compute implements [StaticFunction].
func (f StaticLogLikelihood) Compute(b *model.BN) float64 {
	return sumNodes(b.Size(), func(j int) float64 { return f.ComputeNode(b, j) })
}

// ComputeNode implements [StaticFunction].
func (f StaticLogLikelihood) ComputeNode(b *model.BN, j int) float64 {
	cpt := b.CPT(j)
	if cpt == nil {
		return 0
	}
	ll := 0.0
	for p, row := range cpt.Counts.N {
		for k, n := range row {
			ll += xlogy(n, cpt.Probs[p][k])
		}
	}
	return ll - StaticComplexity(cpt)*f.Penalty.Weight(b.Dataset().NumDataPoints())
}

// ContinuousLogLikelihood is, per feature node and parent state,
//
//	Σ_x [ M_x·log q_x − q_x·T_x + Σ_{y≠x} M_xy·log θ_xy ]
//
// minus the configured penalty. The sample size is the number of
// observations.
type ContinuousLogLikelihood struct {
	Penalty Penalization
}

// Name implements [ContinuousFunction].
func (ContinuousLogLikelihood) Name() string { return NameLogLikelihood }

// Decomposable implements [ContinuousFunction].
func (ContinuousLogLikelihood) Decomposable() bool { return true }

// Compute implements [ContinuousFunction].
func (f ContinuousLogLikelihood) Compute(c *model.CTBN) float64 {
	return sumNodes(c.Size(), func(j int) float64 { return f.ComputeNode(c, j) })
}

// ComputeNode implements [ContinuousFunction].
func (f ContinuousLogLikelihood) ComputeNode(c *model.CTBN, j int) float64 {
	cim := c.CIM(j)
	if cim == nil {
		return 0
	}
	return continuousLL(cim) - ContinuousComplexity(cim)*f.Penalty.Weight(c.Dataset().NumObservations())
}

func continuousLL(cim *model.CIM) float64 {
	st := cim.Counts
	ll := 0.0
	for p := range st.Tx {
		for x, q := range cim.Intensity[p] {
			if q == 0 {
				continue
			}
			ll += xlogy(st.Mx[p][x], q) - q*st.Tx[p][x]
			for y, m := range st.Mxy[p][x] {
				if y != x {
					ll += xlogy(m, cim.Transition[p][x][y])
				}
			}
		}
	}
	return ll
}
