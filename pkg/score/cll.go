package score

import (
	"math"
	"slices"
	"sync"

	"github.com/matzehuels/mctbnc/pkg/dataset"
	"github.com/matzehuels/mctbnc/pkg/model"
)

// ConditionalLL is the discriminative score of a classifier's feature
// network. For every sequence with observed class configuration c*:
//
//	log P(c*) + LL(features | c*) − log Σ_c exp(log P(c) + LL(features | c))
//
// The sum runs over the Cartesian product of all class states and is
// evaluated with log-sum-exp. Feature nodes without class parents contribute
// the same term to every configuration and cancel, so only nodes with at
// least one class parent are evaluated per configuration.
//
// ConditionalLL is not decomposable. It is safe for concurrent use; the
// enumerated class configurations are computed once per class-variable set.
type ConditionalLL struct {
	Penalty Penalization

	// Prior supplies log P(c). A nil prior is uniform over configurations.
	Prior *model.BN

	mu      sync.Mutex
	key     []int
	configs []map[int]int
}

// NewConditionalLL returns a conditional log-likelihood score with the
// given class prior.
func NewConditionalLL(penalty Penalization, prior *model.BN) *ConditionalLL {
	return &ConditionalLL{Penalty: penalty, Prior: prior}
}

// Name implements [ContinuousFunction].
func (*ConditionalLL) Name() string { return NameConditionalLogLikelihood }

// Decomposable implements [ContinuousFunction].
func (*ConditionalLL) Decomposable() bool { return false }

// ComputeNode implements [ContinuousFunction] and returns the whole score.
func (f *ConditionalLL) ComputeNode(c *model.CTBN, _ int) float64 { return f.Compute(c) }

// Compute implements [ContinuousFunction].
func (f *ConditionalLL) Compute(c *model.CTBN) float64 {
	d := c.Dataset()
	classVars := c.ClassVars()
	configs := f.configurations(d, classVars)

	var dependent []int
	for _, j := range c.FeatureNodes() {
		if c.CIM(j) == nil {
			continue
		}
		for _, p := range c.Parents(j) {
			if c.Node(p).Class {
				dependent = append(dependent, j)
				break
			}
		}
	}

	terms := make([]float64, len(configs))
	total := 0.0
	for _, seq := range d.Sequences() {
		observed := -1
		first := seq.Values[0]
		for k, cfg := range configs {
			if observed < 0 && matches(first, cfg) {
				observed = k
			}
			terms[k] = f.logPrior(first, cfg)
			for _, j := range dependent {
				terms[k] += sequenceLL(c.CIM(j), seq, cfg)
			}
		}
		if observed < 0 {
			continue
		}
		norm := logSumExp(terms)
		if math.IsInf(norm, -1) {
			continue
		}
		total += terms[observed] - norm
	}

	penalty := 0.0
	if w := f.Penalty.Weight(d.NumObservations()); w != 0 {
		for _, j := range c.FeatureNodes() {
			if cim := c.CIM(j); cim != nil {
				penalty += ContinuousComplexity(cim) * w
			}
		}
	}
	return total - penalty
}

// configurations returns every joint class assignment, keyed by dataset
// variable index. The enumeration is cached until the class-variable set
// or its cardinalities change.
func (f *ConditionalLL) configurations(d *dataset.Dataset, classVars []int) []map[int]int {
	key := make([]int, 0, 2*len(classVars))
	for _, v := range classVars {
		key = append(key, v, d.Variable(v).Cardinality())
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.configs != nil && slices.Equal(f.key, key) {
		return f.configs
	}

	configs := []map[int]int{{}}
	for _, v := range classVars {
		card := d.Variable(v).Cardinality()
		next := make([]map[int]int, 0, len(configs)*card)
		for _, cfg := range configs {
			for s := 0; s < card; s++ {
				m := make(map[int]int, len(cfg)+1)
				for k, val := range cfg {
					m[k] = val
				}
				m[v] = s
				next = append(next, m)
			}
		}
		configs = next
	}
	f.key, f.configs = key, configs
	return configs
}

func (f *ConditionalLL) logPrior(row []int, cfg map[int]int) float64 {
	if f.Prior == nil {
		return 0
	}
	hyp := slices.Clone(row)
	for v, s := range cfg {
		hyp[v] = s
	}
	return f.Prior.LogProb(hyp)
}

// sequenceLL returns the log-likelihood of one node's trajectory in seq with
// the class variables fixed to cfg.
func sequenceLL(cim *model.CIM, seq dataset.Sequence, cfg map[int]int) float64 {
	ctx := cim.Context()
	ll := 0.0
	for t := 0; t+1 < seq.Len(); t++ {
		row, next := seq.Values[t], seq.Values[t+1]
		p := ctx.IndexWith(row, cfg)
		x, y := row[ctx.Var], next[ctx.Var]
		q := cim.Intensity[p][x]
		if q == 0 {
			continue
		}
		ll -= q * (seq.Times[t+1] - seq.Times[t])
		if x != y {
			ll += xlogy(1, q*cim.Transition[p][x][y])
		}
	}
	return ll
}

func matches(row []int, cfg map[int]int) bool {
	for v, s := range cfg {
		if row[v] != s {
			return false
		}
	}
	return true
}

// logSumExp returns log Σ exp(xs) without underflow.
func logSumExp(xs []float64) float64 {
	m := math.Inf(-1)
	for _, x := range xs {
		m = max(m, x)
	}
	if math.IsInf(m, -1) {
		return m
	}
	s := 0.0
	for _, x := range xs {
		s += math.Exp(x - m)
	}
	return m + math.Log(s)
}
