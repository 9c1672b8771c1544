package search

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/mctbnc/pkg/errors"
	"github.com/matzehuels/mctbnc/pkg/graph"
)

// weightObjective rewards the edges of a target structure and penalizes
// every other edge. Each edge has a distinct weight so there are no ties.
type weightObjective struct {
	w [][]float64
}

func newWeightObjective(n int, target [][2]int) *weightObjective {
	w := make([][]float64, n)
	for i := range w {
		w[i] = make([]float64, n)
		for j := range w[i] {
			w[i][j] = -0.5 - 0.01*float64(i*n+j)
		}
	}
	for k, e := range target {
		w[e[0]][e[1]] = 1 + 0.1*float64(k)
	}
	return &weightObjective{w: w}
}

func (o *weightObjective) Size() int          { return len(o.w) }
func (o *weightObjective) Decomposable() bool { return true }
func (o *weightObjective) Fork() Objective    { return o }

func (o *weightObjective) ScoreNode(s *graph.Structure, j int) float64 {
	v := 0.0
	for _, i := range s.Parents(j) {
		v += o.w[i][j]
	}
	return v
}

func (o *weightObjective) Score(s *graph.Structure) float64 {
	v := 0.0
	for j := range o.w {
		v += o.ScoreNode(s, j)
	}
	return v
}

// wholeObjective hides decomposability.
type wholeObjective struct{ *weightObjective }

func (wholeObjective) Decomposable() bool { return false }
func (o wholeObjective) Fork() Objective  { return o }

type recorder struct {
	mu     sync.Mutex
	scores []float64
	done   int
}

func (r *recorder) OnSearchStart(context.Context, string, int) {}

func (r *recorder) OnIteration(_ context.Context, _ string, _ int, score float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores = append(r.scores, score)
}

func (r *recorder) OnSearchComplete(context.Context, string, int, float64, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
}

var chain = [][2]int{{0, 1}, {1, 2}, {2, 3}, {0, 3}}

func structureOf(n int, edges [][2]int) *graph.Structure {
	s := graph.New(n)
	for _, e := range edges {
		s.SetEdge(e[0], e[1], true)
	}
	return s
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindHillClimbing, KindPerNode, KindTabu, KindRandomRestart} {
		if got, err := ParseKind(k.String()); err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("Simulated annealing"); !errors.Is(err, errors.ErrCodeInvalidAlgorithm) {
		t.Errorf("ParseKind() error = %v, want ErrCodeInvalidAlgorithm", err)
	}
}

func TestHillClimbingFindsTarget(t *testing.T) {
	obj := newWeightObjective(4, chain)
	rec := &recorder{}
	for _, workers := range []int{1, 4} {
		hc := &HillClimbing{Constraint: graph.Acyclic{}, Workers: workers, Rand: NewRand(1), Hooks: rec}
		res, err := hc.Search(context.Background(), obj, nil)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if want := structureOf(4, chain); !res.Structure.Equal(want) {
			t.Errorf("workers=%d: Search() = %v, want %v", workers, res.Structure, want)
		}
		if res.Iterations != len(chain) {
			t.Errorf("workers=%d: Iterations = %d, want %d", workers, res.Iterations, len(chain))
		}
	}
	for i := 1; i < len(rec.scores); i++ {
		if rec.scores[i] <= rec.scores[i-1] && i%len(chain) != 0 {
			t.Errorf("score did not improve at iteration %d: %v", i, rec.scores)
		}
	}
	if rec.done != 2 {
		t.Errorf("OnSearchComplete called %d times, want 2", rec.done)
	}
}

func TestHillClimbingConstraints(t *testing.T) {
	obj := newWeightObjective(4, append(chain, [2]int{1, 0}))
	c := graph.All{graph.Acyclic{}, graph.MaxParents{K: 1}, graph.RootsOnly{Nodes: []int{0}}}
	res, err := (&HillClimbing{Constraint: c}).Search(context.Background(), obj, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if !graph.Allowed(c, res.Structure) {
		t.Errorf("Search() = %v violates the constraints", res.Structure)
	}
	if res.Structure.InDegree(0) != 0 {
		t.Error("root node received a parent")
	}
	if res.Structure.InDegree(3) != 1 {
		t.Errorf("node 3 has %d parents, want 1", res.Structure.InDegree(3))
	}
}

func TestHillClimbingMaxIterations(t *testing.T) {
	obj := newWeightObjective(4, chain)
	res, err := (&HillClimbing{Constraint: graph.Acyclic{}, MaxIterations: 2}).Search(context.Background(), obj, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Iterations != 2 || res.Structure.EdgeCount() != 2 {
		t.Errorf("Search() = %d iterations, %d edges; want 2, 2", res.Iterations, res.Structure.EdgeCount())
	}
}

func TestSearchRejectsIllegalInitial(t *testing.T) {
	obj := newWeightObjective(3, nil)
	cyclic := structureOf(3, [][2]int{{0, 1}, {1, 0}})
	if _, err := (&HillClimbing{Constraint: graph.Acyclic{}}).Search(context.Background(), obj, cyclic); !errors.Is(err, errors.ErrCodeInvalidStructure) {
		t.Errorf("Search(cyclic) error = %v, want ErrCodeInvalidStructure", err)
	}
	if _, err := (&HillClimbing{}).Search(context.Background(), obj, graph.New(5)); !errors.Is(err, errors.ErrCodeInvalidStructure) {
		t.Errorf("Search(wrong size) error = %v, want ErrCodeInvalidStructure", err)
	}
}

func TestSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	obj := newWeightObjective(4, chain)
	if _, err := (&HillClimbing{Constraint: graph.Acyclic{}, Workers: 2}).Search(ctx, obj, nil); err == nil {
		t.Error("Search() on a canceled context should fail")
	}
}

func TestTabuReturnsBest(t *testing.T) {
	obj := newWeightObjective(4, chain)
	tabu := &Tabu{Constraint: graph.Acyclic{}, Size: 5, MaxIterations: 30, Rand: NewRand(7)}
	res, err := tabu.Search(context.Background(), obj, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if want := structureOf(4, chain); !res.Structure.Equal(want) {
		t.Errorf("Search() = %v, want %v", res.Structure, want)
	}
	if math.Abs(res.Score-obj.Score(res.Structure)) > Epsilon {
		t.Errorf("Score = %v, want %v", res.Score, obj.Score(res.Structure))
	}
	// Tabu keeps moving after the optimum until patience runs out.
	if res.Iterations <= len(chain) {
		t.Errorf("Iterations = %d, want more than %d", res.Iterations, len(chain))
	}
}

func TestTabuList(t *testing.T) {
	l := newTabuList(2)
	l.push("a")
	l.push("b")
	l.push("c")
	if l.contains("a") || !l.contains("b") || !l.contains("c") {
		t.Errorf("tabu list = %v, want the last two keys", l.keys)
	}
}

func TestPerNode(t *testing.T) {
	obj := newWeightObjective(4, append(chain, [2]int{1, 3}))
	p := &PerNode{Constraint: graph.MaxParents{K: 1}, Workers: 3}
	res, err := p.Search(context.Background(), obj, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	// Node 3 keeps its heaviest parent, 1->3.
	want := structureOf(4, [][2]int{{0, 1}, {1, 2}, {1, 3}})
	if !res.Structure.Equal(want) {
		t.Errorf("Search() = %v, want %v", res.Structure, want)
	}
}

func TestPerNodeRestrictedNodes(t *testing.T) {
	obj := newWeightObjective(3, [][2]int{{0, 1}, {0, 2}})
	initial := structureOf(3, [][2]int{{1, 2}})
	res, err := (&PerNode{Nodes: []int{1}}).Search(context.Background(), obj, initial)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Structure.HasEdge(0, 1) || !res.Structure.HasEdge(1, 2) || res.Structure.HasEdge(0, 2) {
		t.Errorf("Search() = %v, want only column 1 changed", res.Structure)
	}
}

func TestPerNodeRequirements(t *testing.T) {
	if _, err := New(Config{Kind: KindPerNode, Constraint: graph.Acyclic{}}); !errors.Is(err, errors.ErrCodeInvalidAlgorithm) {
		t.Errorf("New(per-node, acyclic) error = %v, want ErrCodeInvalidAlgorithm", err)
	}
	obj := wholeObjective{newWeightObjective(3, nil)}
	if _, err := (&PerNode{}).Search(context.Background(), obj, nil); !errors.Is(err, errors.ErrCodeInvalidAlgorithm) {
		t.Errorf("Search(non-decomposable) error = %v, want ErrCodeInvalidAlgorithm", err)
	}
}

func TestRandomRestartDeterministic(t *testing.T) {
	obj := newWeightObjective(5, [][2]int{{0, 1}, {1, 2}, {3, 4}, {0, 4}})
	run := func() *Result {
		s, err := New(Config{Kind: KindRandomRestart, Constraint: graph.Acyclic{}, Restarts: 4, Density: 0.4, Seed: 99})
		if err != nil {
			t.Fatal(err)
		}
		res, err := s.Search(context.Background(), obj, nil)
		if err != nil {
			t.Fatal(err)
		}
		return res
	}
	a, b := run(), run()
	if !a.Structure.Equal(b.Structure) || a.Score != b.Score || a.Iterations != b.Iterations {
		t.Errorf("same seed gave %v (%v) and %v (%v)", a.Structure, a.Score, b.Structure, b.Score)
	}

	hc, _ := (&HillClimbing{Constraint: graph.Acyclic{}}).Search(context.Background(), obj, nil)
	if a.Score < hc.Score-Epsilon {
		t.Errorf("restarts scored %v, below the initial climb %v", a.Score, hc.Score)
	}
}

func TestNewRejectsNegativeRestarts(t *testing.T) {
	if _, err := New(Config{Kind: KindRandomRestart, Restarts: -1}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("New() error = %v, want ErrCodeInvalidConfig", err)
	}
}

// nanObjective scores like its embedded objective but returns NaN for
// every structure containing the edge bad.
type nanObjective struct {
	*weightObjective
	bad [2]int
}

func (o nanObjective) Fork() Objective { return o }

func (o nanObjective) ScoreNode(s *graph.Structure, j int) float64 {
	if j == o.bad[1] && s.HasEdge(o.bad[0], o.bad[1]) {
		return math.NaN()
	}
	return o.weightObjective.ScoreNode(s, j)
}

func (o nanObjective) Score(s *graph.Structure) float64 {
	v := 0.0
	for j := range o.w {
		v += o.ScoreNode(s, j)
	}
	return v
}

func TestSearchTerminatesOnNaN(t *testing.T) {
	// The bad edge carries the largest weight, so only NaN keeps it out.
	target := append([][2]int{{0, 2}}, chain...)
	obj := nanObjective{newWeightObjective(4, target), [2]int{0, 2}}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	strategies := []Strategy{
		&HillClimbing{Constraint: graph.Acyclic{}},
		&HillClimbing{Constraint: graph.Acyclic{}, Workers: 3},
		&PerNode{Constraint: graph.MaxParents{K: 3}},
		&Tabu{Constraint: graph.Acyclic{}, MaxIterations: 20},
	}
	for _, st := range strategies {
		res, err := st.Search(ctx, obj, nil)
		if err != nil {
			t.Fatalf("%s: Search() error = %v", st.Name(), err)
		}
		if res.Structure.HasEdge(0, 2) {
			t.Errorf("%s: Search() = %v, kept the NaN edge 0->2", st.Name(), res.Structure)
		}
	}

	// A start that already scores NaN commits nothing.
	hc := &HillClimbing{Constraint: graph.Acyclic{}}
	res, err := hc.Search(ctx, alwaysNaN{obj.weightObjective}, nil)
	if err != nil {
		t.Fatalf("Search(always NaN) error = %v", err)
	}
	if res.Iterations != 0 {
		t.Errorf("Search(always NaN) = %d iterations, want 0", res.Iterations)
	}
}

type alwaysNaN struct{ *weightObjective }

func (alwaysNaN) Decomposable() bool { return false }

func (o alwaysNaN) Fork() Objective { return o }

func (alwaysNaN) Score(*graph.Structure) float64 { return math.NaN() }

func (alwaysNaN) ScoreNode(*graph.Structure, int) float64 { return math.NaN() }

func TestPickTiesUniform(t *testing.T) {
	winners := []candidate{{score: 1}, {score: 1}, {score: 1 + Epsilon/2}, {score: 0}}
	for k := range winners {
		winners[k].move = graph.Move{From: k}
	}
	rng := NewRand(1)
	counts := make([]int, len(winners))
	const draws = 3000
	for range draws {
		best, _ := pick(rng, winners)
		counts[best.move.From]++
	}
	for k := 0; k < 3; k++ {
		if counts[k] < 800 || counts[k] > 1200 {
			t.Errorf("tie %d chosen %d of %d times, want about %d", k, counts[k], draws, draws/3)
		}
	}
	if counts[3] != 0 {
		t.Errorf("worse winner chosen %d times, want 0", counts[3])
	}
}

func TestImproves(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(-1)
	tests := []struct {
		a, b float64
		want bool
	}{
		{1, 0, true},
		{Epsilon / 2, 0, false},
		{nan, 0, false},
		{0, nan, true},
		{nan, nan, false},
		{inf, nan, false},
	}
	for _, tt := range tests {
		if got := improves(tt.a, tt.b); got != tt.want {
			t.Errorf("improves(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
