package estimate

import (
	"github.com/matzehuels/mctbnc/pkg/dataset"
	"github.com/matzehuels/mctbnc/pkg/model"
	"github.com/matzehuels/mctbnc/pkg/stats"
)

// RecountBN binds a clone of b to batch and recomputes every node's
// statistics on it while keeping the learned probabilities. Scoring the
// result measures how well the fixed model explains the new batch.
func RecountBN(b *model.BN, batch *dataset.Dataset) *model.BN {
	out := b.Rebind(batch)
	for j := range out.Nodes() {
		cpt := out.CPT(j)
		if cpt == nil {
			continue
		}
		counts := stats.CountStatic(batch, out.Context(j))
		out.SetCPT(j, &model.CPT{Counts: counts, Probs: cpt.Probs})
	}
	return out
}

// RecountCTBN is the continuous-time counterpart of [RecountBN].
func RecountCTBN(c *model.CTBN, batch *dataset.Dataset) *model.CTBN {
	out := c.Rebind(batch)
	for j := range out.Nodes() {
		cim := out.CIM(j)
		if cim == nil {
			continue
		}
		counts := stats.CountContinuous(batch, out.Context(j))
		out.SetCIM(j, &model.CIM{Counts: counts, Intensity: cim.Intensity, Transition: cim.Transition})
	}
	return out
}
