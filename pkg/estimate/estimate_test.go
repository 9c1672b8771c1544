package estimate

import (
	"math"
	"testing"

	"github.com/matzehuels/mctbnc/pkg/dataset"
	"github.com/matzehuels/mctbnc/pkg/errors"
	"github.com/matzehuels/mctbnc/pkg/model"
	"github.com/matzehuels/mctbnc/pkg/stats"
)

const tol = 1e-12

func near(a, b float64) bool { return math.Abs(a-b) < tol }

func TestParseMethod(t *testing.T) {
	for _, m := range []Method{MaxLikelihood, Bayesian} {
		got, err := ParseMethod(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMethod(%q) = %v, %v; want %v", m.String(), got, err, m)
		}
	}
	if _, err := ParseMethod("MAP"); !errors.Is(err, errors.ErrCodeInvalidEstimator) {
		t.Errorf("ParseMethod(MAP) error = %v, want ErrCodeInvalidEstimator", err)
	}
}

func TestCPTMaxLikelihood(t *testing.T) {
	c := &stats.StaticCounts{
		Context: stats.Context{States: 2},
		N:       [][]float64{{3, 1}, {0, 0}},
	}
	cpt := Estimator{Method: MaxLikelihood}.CPT(c)
	if !near(cpt.Probs[0][0], 0.75) || !near(cpt.Probs[0][1], 0.25) {
		t.Errorf("row 0 = %v, want [0.75 0.25]", cpt.Probs[0])
	}
	if !near(cpt.Probs[1][0], 0.5) || !near(cpt.Probs[1][1], 0.5) {
		t.Errorf("unobserved row = %v, want uniform", cpt.Probs[1])
	}
}

func TestCPTBayesian(t *testing.T) {
	c := &stats.StaticCounts{
		Context: stats.Context{States: 2},
		N:       [][]float64{{3, 1}},
	}
	cpt := Estimator{Method: Bayesian, NX: 1}.CPT(c)
	if !near(cpt.Probs[0][0], 4.0/6) || !near(cpt.Probs[0][1], 2.0/6) {
		t.Errorf("row = %v, want [2/3 1/3]", cpt.Probs[0])
	}
}

func TestCIMMaxLikelihood(t *testing.T) {
	c := &stats.ContinuousCounts{
		Context: stats.Context{States: 3},
		Tx:      [][]float64{{2, 4, 0}},
		Mx:      [][]float64{{4, 1, 0}},
		Mxy:     [][][]float64{{{0, 3, 1}, {1, 0, 0}, {0, 0, 0}}},
	}
	cim := Estimator{Method: MaxLikelihood}.CIM(c)
	wantQ := []float64{2, 0.25, 0}
	for x, q := range wantQ {
		if !near(cim.Intensity[0][x], q) {
			t.Errorf("q[%d] = %v, want %v", x, cim.Intensity[0][x], q)
		}
	}
	if !near(cim.Transition[0][0][1], 0.75) || !near(cim.Transition[0][0][2], 0.25) {
		t.Errorf("theta[0] = %v, want [0 0.75 0.25]", cim.Transition[0][0])
	}
	for y, v := range cim.Transition[0][2] {
		if v != 0 {
			t.Errorf("theta[2][%d] = %v, want 0 for a state without evidence", y, v)
		}
	}
}

func TestCIMBayesian(t *testing.T) {
	c := &stats.ContinuousCounts{
		Context: stats.Context{States: 2},
		Tx:      [][]float64{{0, 0}},
		Mx:      [][]float64{{0, 0}},
		Mxy:     [][][]float64{{{0, 0}, {0, 0}}},
	}
	cim := Estimator{Method: Bayesian, MXY: 1, TX: 0.5}.CIM(c)
	for x := range 2 {
		if !near(cim.Intensity[0][x], 2) {
			t.Errorf("q[%d] = %v, want 2 from the prior alone", x, cim.Intensity[0][x])
		}
		if !near(cim.Transition[0][x][1-x], 1) {
			t.Errorf("theta[%d][%d] = %v, want 1", x, 1-x, cim.Transition[0][x][1-x])
		}
	}
}

func TestValidate(t *testing.T) {
	if err := (Estimator{Method: MaxLikelihood, NX: -1}).Validate(); err != nil {
		t.Errorf("Validate() ignores hyperparameters under MLE, got %v", err)
	}
	if err := (Estimator{Method: Bayesian, TX: -1}).Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Validate() error = %v, want ErrCodeInvalidConfig", err)
	}
}

func TestFitAndRecount(t *testing.T) {
	b, err := dataset.New([]dataset.Variable{
		{Name: "C", States: []string{"a", "b"}, Class: true},
		{Name: "X", States: []string{"0", "1"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	_ = b.AddIndexed(dataset.Sequence{Times: []float64{0, 1, 2}, Values: [][]int{{0, 0}, {0, 1}, {0, 0}}})
	_ = b.AddIndexed(dataset.Sequence{Times: []float64{0, 4}, Values: [][]int{{1, 1}, {1, 0}}})
	d := b.Build()

	ctbn, _ := model.NewCTBN(d, []int{0, 1})
	est := Estimator{Method: MaxLikelihood}
	est.FitCTBN(ctbn)
	if ctbn.CIM(0) != nil {
		t.Error("class node got an intensity table")
	}
	// X leaves 0 once after 1 time unit and leaves 1 twice after 5.
	cim := ctbn.CIM(1)
	if !near(cim.Intensity[0][0], 1) || !near(cim.Intensity[0][1], 0.4) {
		t.Errorf("q = %v, want [1 0.4]", cim.Intensity[0])
	}

	half := d.Subset([]int{1})
	re := RecountCTBN(ctbn, half)
	if re.CIM(1).Counts.Tx[0][1] != 4 {
		t.Errorf("recounted Tx[1] = %v, want 4", re.CIM(1).Counts.Tx[0][1])
	}
	if !near(re.CIM(1).Intensity[0][1], 0.4) {
		t.Error("RecountCTBN() changed the learned intensities")
	}
	if ctbn.CIM(1).Counts.Tx[0][1] != 5 {
		t.Error("RecountCTBN() modified the original network")
	}

	bn, _ := model.NewBN(d, []int{0})
	est.FitBN(bn)
	rb := RecountBN(bn, half)
	if rb.CPT(0).Counts.N[0][1] != 1 || !near(rb.CPT(0).Probs[0][0], 0.5) {
		t.Errorf("RecountBN() = counts %v probs %v", rb.CPT(0).Counts.N, rb.CPT(0).Probs)
	}
}
