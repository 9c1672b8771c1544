package score

import (
	"math"
	"testing"

	"github.com/matzehuels/mctbnc/pkg/dataset"
	"github.com/matzehuels/mctbnc/pkg/errors"
	"github.com/matzehuels/mctbnc/pkg/estimate"
	"github.com/matzehuels/mctbnc/pkg/graph"
	"github.com/matzehuels/mctbnc/pkg/model"
)

const tol = 1e-9

// rateData has a binary class C that sets how fast the binary feature X
// flips: fast under a, slow under b.
func rateData(t *testing.T) *dataset.Dataset {
	t.Helper()
	b, err := dataset.New([]dataset.Variable{
		{Name: "C", States: []string{"a", "b"}, Class: true},
		{Name: "X", States: []string{"0", "1"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	seqs := []dataset.Sequence{
		{Times: []float64{0, 0.1, 0.2}, Values: [][]int{{0, 0}, {0, 1}, {0, 0}}},
		{Times: []float64{0, 0.1, 0.2}, Values: [][]int{{0, 0}, {0, 1}, {0, 0}}},
		{Times: []float64{0, 10}, Values: [][]int{{1, 0}, {1, 1}}},
		{Times: []float64{0, 10}, Values: [][]int{{1, 0}, {1, 1}}},
	}
	for _, s := range seqs {
		if err := b.AddIndexed(s); err != nil {
			t.Fatal(err)
		}
	}
	return b.Build()
}

func fitCTBN(t *testing.T, d *dataset.Dataset, edges ...[2]int) *model.CTBN {
	t.Helper()
	c, err := model.NewCTBN(d, []int{0, 1})
	if err != nil {
		t.Fatal(err)
	}
	s := graph.New(2)
	for _, e := range edges {
		s.SetEdge(e[0], e[1], true)
	}
	if err := c.SetStructure(s); err != nil {
		t.Fatal(err)
	}
	estimate.Estimator{Method: estimate.MaxLikelihood}.FitCTBN(c)
	return c
}

func TestParseNames(t *testing.T) {
	for _, k := range []Kind{LogLikelihood, BayesianDirichlet, ConditionalLogLikelihood} {
		if got, err := ParseKind(k.String()); err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	for _, p := range []Penalization{NoPenalization, BIC, AIC} {
		if got, err := ParsePenalization(p.String()); err != nil || got != p {
			t.Errorf("ParsePenalization(%q) = %v, %v", p.String(), got, err)
		}
	}
	if _, err := ParseKind("K2"); !errors.Is(err, errors.ErrCodeInvalidScore) {
		t.Errorf("ParseKind(K2) error = %v", err)
	}
	if _, err := ParsePenalization("MDL"); !errors.Is(err, errors.ErrCodeInvalidPenalization) {
		t.Errorf("ParsePenalization(MDL) error = %v", err)
	}
	if ConditionalLogLikelihood.Decomposable() || !BayesianDirichlet.Decomposable() {
		t.Error("only the conditional log-likelihood is non-decomposable")
	}
}

func TestPenalizationWeight(t *testing.T) {
	tests := []struct {
		p    Penalization
		n    int
		want float64
	}{
		{NoPenalization, 100, 0},
		{AIC, 100, 1},
		{BIC, 100, 0.5 * math.Log(100)},
		{BIC, 1, 0},
	}
	for _, tt := range tests {
		if got := tt.p.Weight(tt.n); math.Abs(got-tt.want) > tol {
			t.Errorf("%v.Weight(%d) = %v, want %v", tt.p, tt.n, got, tt.want)
		}
	}
}

func TestStaticLogLikelihood(t *testing.T) {
	d := rateData(t)
	b, _ := model.NewBN(d, []int{0})
	estimate.Estimator{Method: estimate.MaxLikelihood}.FitBN(b)

	// Two sequences of each class: 4·log(1/2).
	want := 4 * math.Log(0.5)
	if got := (StaticLogLikelihood{}).Compute(b); math.Abs(got-want) > tol {
		t.Errorf("Compute() = %v, want %v", got, want)
	}
	// One free parameter, N = 4 sequences.
	bic := want - 0.5*math.Log(4)
	if got := (StaticLogLikelihood{Penalty: BIC}).Compute(b); math.Abs(got-bic) > tol {
		t.Errorf("Compute(BIC) = %v, want %v", got, bic)
	}
}

func TestStaticBDe(t *testing.T) {
	d := rateData(t)
	b, _ := model.NewBN(d, []int{0})
	estimate.Estimator{Method: estimate.MaxLikelihood}.FitBN(b)

	// With NX = 1 the marginal likelihood of 2+2 draws is Γ(2)/Γ(6) · Γ(3)².
	want := math.Log(2.0 * 2.0 / 120.0)
	if got := (StaticBDe{NX: 1}).Compute(b); math.Abs(got-want) > tol {
		t.Errorf("Compute() = %v, want %v", got, want)
	}
}

func TestContinuousLogLikelihood(t *testing.T) {
	d := rateData(t)
	c := fitCTBN(t, d)

	// Without parents X leaves 0 four times in 20.2 and 1 twice in 0.2.
	q0, q1 := 4/20.2, 2/0.2
	want := 4*math.Log(q0) - q0*20.2 + 2*math.Log(q1) - q1*0.2
	f := ContinuousLogLikelihood{}
	if got := f.Compute(c); math.Abs(got-want) > tol {
		t.Errorf("Compute() = %v, want %v", got, want)
	}
	if got := f.ComputeNode(c, 0); got != 0 {
		t.Errorf("ComputeNode(class) = %v, want 0", got)
	}

	aic := ContinuousLogLikelihood{Penalty: AIC}
	if got := aic.Compute(c); math.Abs(got-(want-2)) > tol {
		t.Errorf("Compute(AIC) = %v, want %v", got, want-2)
	}
}

func TestDecomposableSum(t *testing.T) {
	d := rateData(t)
	c := fitCTBN(t, d, [2]int{0, 1})
	fns := []ContinuousFunction{
		ContinuousLogLikelihood{Penalty: BIC},
		ContinuousBDe{MXY: 1, TX: 0.5},
	}
	for _, f := range fns {
		sum := 0.0
		for j := range c.Nodes() {
			sum += f.ComputeNode(c, j)
		}
		if got := f.Compute(c); math.Abs(got-sum) > tol {
			t.Errorf("%s: Compute() = %v, sum of nodes = %v", f.Name(), got, sum)
		}
	}
}

func TestNoNaN(t *testing.T) {
	d := rateData(t)
	// X never leaves 1 under C=b, so that cell has zero time and zero
	// intensity.
	c := fitCTBN(t, d, [2]int{0, 1})
	fns := []ContinuousFunction{
		ContinuousLogLikelihood{},
		ContinuousBDe{MXY: 1, TX: 0.1},
		NewConditionalLL(NoPenalization, nil),
	}
	for _, f := range fns {
		if got := f.Compute(c); math.IsNaN(got) || math.IsInf(got, 0) {
			t.Errorf("%s: Compute() = %v", f.Name(), got)
		}
	}
}

func TestConditionalLL(t *testing.T) {
	d := rateData(t)
	f := NewConditionalLL(NoPenalization, nil)

	empty := f.Compute(fitCTBN(t, d))
	if want := 4 * math.Log(0.5); math.Abs(empty-want) > tol {
		t.Errorf("Compute(no class parents) = %v, want %v", empty, want)
	}

	linked := f.Compute(fitCTBN(t, d, [2]int{0, 1}))
	if linked > 0 {
		t.Errorf("Compute() = %v, want <= 0", linked)
	}
	if linked <= empty {
		t.Errorf("Compute(C->X) = %v, want above %v", linked, empty)
	}

	penalized := NewConditionalLL(BIC, nil).Compute(fitCTBN(t, d, [2]int{0, 1}))
	if penalized >= linked {
		t.Errorf("BIC score %v should be below %v", penalized, linked)
	}
}

func TestConditionalLLPrior(t *testing.T) {
	d := rateData(t)
	prior, _ := model.NewBN(d, []int{0})
	estimate.Estimator{Method: estimate.MaxLikelihood}.FitBN(prior)

	// A uniform fitted prior gives the same score as no prior.
	c := fitCTBN(t, d, [2]int{0, 1})
	with := NewConditionalLL(NoPenalization, prior).Compute(c)
	without := NewConditionalLL(NoPenalization, nil).Compute(c)
	if math.Abs(with-without) > tol {
		t.Errorf("Compute(uniform prior) = %v, want %v", with, without)
	}
}

func TestLogSumExp(t *testing.T) {
	tests := []struct {
		xs   []float64
		want float64
	}{
		{[]float64{0, 0}, math.Log(2)},
		{[]float64{-1000, -1000}, -1000 + math.Log(2)},
		{[]float64{1000, math.Inf(-1)}, 1000},
	}
	for _, tt := range tests {
		if got := logSumExp(tt.xs); math.Abs(got-tt.want) > tol {
			t.Errorf("logSumExp(%v) = %v, want %v", tt.xs, got, tt.want)
		}
	}
	if got := logSumExp([]float64{math.Inf(-1)}); !math.IsInf(got, -1) {
		t.Errorf("logSumExp(-Inf) = %v, want -Inf", got)
	}
}

func TestContinuousBDeSingleState(t *testing.T) {
	b, err := dataset.New([]dataset.Variable{
		{Name: "C", States: []string{"a", "b"}, Class: true},
		{Name: "K", States: []string{"k"}},
		{Name: "X", States: []string{"0", "1"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []dataset.Sequence{
		{Times: []float64{0, 1}, Values: [][]int{{0, 0, 0}, {0, 0, 1}}},
		{Times: []float64{0, 2}, Values: [][]int{{1, 0, 0}, {1, 0, 1}}},
	} {
		if err := b.AddIndexed(s); err != nil {
			t.Fatal(err)
		}
	}
	d := b.Build()
	c, err := model.NewCTBN(d, []int{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	s := graph.New(3)
	s.SetEdge(0, 1, true)
	s.SetEdge(0, 2, true)
	if err := c.SetStructure(s); err != nil {
		t.Fatal(err)
	}
	estimate.Estimator{Method: estimate.Bayesian, MXY: 1, TX: 0.5}.FitCTBN(c)

	f := ContinuousBDe{MXY: 1, TX: 0.5}
	// Only the intensity terms remain: K spends 1 under a and 2 under b.
	want := math.Log(0.5/1.5) + math.Log(0.5/2.5)
	if got := f.ComputeNode(c, 1); math.Abs(got-want) > tol {
		t.Errorf("ComputeNode(K) = %v, want %v", got, want)
	}
	if got := f.Compute(c); math.IsNaN(got) || math.IsInf(got, 0) {
		t.Errorf("Compute() = %v", got)
	}
}
