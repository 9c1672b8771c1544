package learn

import (
	"testing"

	"github.com/matzehuels/mctbnc/pkg/estimate"
	"github.com/matzehuels/mctbnc/pkg/graph"
	"github.com/matzehuels/mctbnc/pkg/model"
	"github.com/matzehuels/mctbnc/pkg/score"
)

func TestObjectiveRejectsWrongSize(t *testing.T) {
	d := andGate(t, 1)
	net, err := model.NewBN(d, []int{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	obj := newBNObjective(net, estimate.Estimator{Method: estimate.MaxLikelihood}, score.StaticLogLikelihood{})
	if got := obj.Score(graph.New(3)); got > 0 {
		t.Errorf("Score(empty) = %v, want <= 0", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("Score() on a structure of the wrong size should panic")
		}
	}()
	obj.Score(graph.New(2))
}
