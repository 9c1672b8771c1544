package io

import (
	"bytes"
	stderrors "errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/mctbnc/pkg/dataset"
	"github.com/matzehuels/mctbnc/pkg/errors"
	"github.com/matzehuels/mctbnc/pkg/estimate"
	"github.com/matzehuels/mctbnc/pkg/graph"
	"github.com/matzehuels/mctbnc/pkg/model"
)

const sample = `{
  "variables": [
    {"name": "Disease", "states": ["flu", "cold"], "class": true},
    {"name": "Fever", "states": ["no", "yes"]},
    {"name": "Cough", "states": ["no", "yes"]}
  ],
  "sequences": [
    {"times": [0, 0.7, 2.1], "observations": [
      {"Disease": "flu", "Fever": "no", "Cough": "no"},
      {"Disease": "flu", "Fever": "yes", "Cough": "no"},
      {"Disease": "flu", "Fever": "yes", "Cough": "yes"}
    ]},
    {"times": [0, 1.5], "observations": [
      {"Disease": "cold", "Fever": "no", "Cough": "yes"},
      {"Disease": "cold", "Fever": "no", "Cough": "no"}
    ]}
  ]
}`

func readSample(t *testing.T) *dataset.Dataset {
	t.Helper()
	d, err := ReadDataset(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ReadDataset() error = %v", err)
	}
	return d
}

func TestReadDataset(t *testing.T) {
	d := readSample(t)
	if d.NumDataPoints() != 2 || d.NumObservations() != 5 {
		t.Errorf("dataset has %d sequences and %d observations, want 2 and 5", d.NumDataPoints(), d.NumObservations())
	}
	if got := d.ClassIndices(); len(got) != 1 || got[0] != 0 {
		t.Errorf("ClassIndices() = %v, want [0]", got)
	}
}

func TestReadDatasetErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"malformed", `{"variables": [`, errors.ErrCodeInvalidDataset},
		{"control character", `{"variables": [{"name": "X\u0001", "states": ["a"]}]}`, errors.ErrCodeInvalidDataset},
		{"duplicate", `{"variables": [{"name": "X", "states": ["a"]}, {"name": "X", "states": ["b"]}]}`, errors.ErrCodeInvalidDataset},
		{"unknown state", `{"variables": [{"name": "X", "states": ["a"]}], "sequences": [{"times": [0], "observations": [{"X": "z"}]}]}`, errors.ErrCodeInvalidDataset},
		{"unordered", `{"variables": [{"name": "X", "states": ["a"]}], "sequences": [{"times": [1, 0], "observations": [{"X": "a"}, {"X": "a"}]}]}`, errors.ErrCodeInvalidDataset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDataset(strings.NewReader(tt.input))
			if !errors.Is(err, tt.code) {
				t.Errorf("ReadDataset() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	d := readSample(t)
	var a, b bytes.Buffer
	if err := WriteDataset(d, &a); err != nil {
		t.Fatal(err)
	}
	back, err := ReadDataset(bytes.NewReader(a.Bytes()))
	if err != nil {
		t.Fatalf("ReadDataset(WriteDataset()) error = %v", err)
	}
	if err := WriteDataset(back, &b); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Errorf("encoding is not stable:\n%s\n%s", a.String(), b.String())
	}

	path := filepath.Join(t.TempDir(), "data.json")
	if err := ExportDataset(d, path); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportDataset(path); err != nil {
		t.Errorf("ImportDataset() error = %v", err)
	}
	if _, err := ImportDataset(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("ImportDataset(missing) error = %v, want ErrCodeNotFound", err)
	}
}

func fittedClassifier(t *testing.T, d *dataset.Dataset) *model.Classifier {
	t.Helper()
	clf, err := model.NewClassifier(d)
	if err != nil {
		t.Fatal(err)
	}
	s := graph.New(3)
	s.SetEdge(0, 1, true)
	s.SetEdge(1, 2, true)
	if err := clf.Features.SetStructure(s); err != nil {
		t.Fatal(err)
	}
	est := estimate.Estimator{Method: estimate.Bayesian, NX: 1, MXY: 1, TX: 0.1}
	est.FitBN(clf.Classes)
	est.FitCTBN(clf.Features)
	return clf
}

func TestModelRoundTrip(t *testing.T) {
	d := readSample(t)
	clf := fittedClassifier(t, d)
	doc := NewClassifierDocument("run-1", clf, map[string]string{"maxK": "2"})

	path := filepath.Join(t.TempDir(), "model.json")
	if err := ExportModel(doc, path); err != nil {
		t.Fatal(err)
	}
	back, err := ImportModel(path)
	if err != nil {
		t.Fatalf("ImportModel() error = %v", err)
	}
	if back.ID != "run-1" || back.Hyperparameters["maxK"] != "2" || back.Generator == "" {
		t.Errorf("document header = %q %v %q", back.ID, back.Hyperparameters, back.Generator)
	}
	if len(back.Features.Edges) != 2 || back.Features.Edges[0] != (Edge{From: "Disease", To: "Fever"}) {
		t.Errorf("Edges = %v", back.Features.Edges)
	}

	bound, err := back.Classifier(d)
	if err != nil {
		t.Fatalf("Classifier() error = %v", err)
	}
	if !bound.Features.Structure().Equal(clf.Features.Structure()) {
		t.Errorf("structure = %v, want %v", bound.Features.Structure(), clf.Features.Structure())
	}
	want := clf.Features.CIM(2).Intensity
	got := bound.Features.CIM(2).Intensity
	for p := range want {
		for x := range want[p] {
			if got[p][x] != want[p][x] {
				t.Errorf("Intensity[%d][%d] = %v, want %v", p, x, got[p][x], want[p][x])
			}
		}
	}
	if bound.Features.CIM(0) != nil {
		t.Error("class node got a table")
	}

	g, err := back.Features.Graph()
	if err != nil || !g.Equal(clf.Features.Structure()) {
		t.Errorf("Graph() = %v, %v", g, err)
	}
	if v, ok := back.Variable("Cough"); !ok || len(v.States) != 2 {
		t.Errorf("Variable(Cough) = %v, %v", v, ok)
	}
}

func TestBindMismatch(t *testing.T) {
	d := readSample(t)
	doc := NewClassifierDocument("x", fittedClassifier(t, d), nil)

	b, _ := dataset.New([]dataset.Variable{
		{Name: "Disease", States: []string{"flu", "cold"}, Class: true},
		{Name: "Fever", States: []string{"no", "yes", "high"}},
		{Name: "Cough", States: []string{"no", "yes"}},
	})
	if _, err := doc.Classifier(b.Build()); !stderrors.Is(err, ErrVariableMismatch) {
		t.Errorf("Classifier() error = %v, want ErrVariableMismatch", err)
	}

	bn := NewBNDocument("y", fittedClassifier(t, d).Classes, nil)
	if _, err := bn.Classifier(d); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Classifier(static document) error = %v, want ErrCodeInvalidInput", err)
	}
	if _, err := bn.BN(d); err != nil {
		t.Errorf("BN() error = %v", err)
	}
}

func TestGraphUnknownNode(t *testing.T) {
	n := &Network{Nodes: []string{"A"}, Edges: []Edge{{From: "A", To: "B"}}}
	if _, err := n.Graph(); !errors.Is(err, errors.ErrCodeInvalidStructure) {
		t.Errorf("Graph() error = %v, want ErrCodeInvalidStructure", err)
	}
}

func TestReadModelInvalid(t *testing.T) {
	if _, err := ReadModel(strings.NewReader("{")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ReadModel() error = %v, want ErrCodeInvalidInput", err)
	}
	if _, err := ImportModel(filepath.Join(t.TempDir(), "none.json")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("ImportModel(missing) error = %v, want ErrCodeNotFound", err)
	}
}

func TestImportExampleDataset(t *testing.T) {
	d, err := ImportDataset(filepath.Join("..", "..", "examples", "flu", "dataset.json"))
	if err != nil {
		t.Fatalf("ImportDataset() error = %v", err)
	}
	if len(d.ClassIndices()) != 2 || len(d.FeatureIndices()) != 3 {
		t.Errorf("dataset has %d classes and %d features, want 2 and 3", len(d.ClassIndices()), len(d.FeatureIndices()))
	}
}

func TestBindMalformedTables(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc *Document)
	}{
		{"short intensity rows", func(doc *Document) {
			for _, tb := range doc.Features.Tables {
				for p := range tb.Intensities {
					tb.Intensities[p] = tb.Intensities[p][:1]
				}
			}
		}},
		{"missing transition matrix", func(doc *Document) {
			tb := &doc.Features.Tables[1]
			tb.Transitions = tb.Transitions[:1]
		}},
		{"short transition row", func(doc *Document) {
			m := doc.Features.Tables[1].Transitions[0]
			m[0] = m[0][:1]
		}},
		{"class node table", func(doc *Document) {
			doc.Features.Tables = append(doc.Features.Tables, Table{
				Node:        "Disease",
				Intensities: [][]float64{{-1, -1}},
				Transitions: [][][]float64{{{0, 1}, {1, 0}}},
			})
		}},
		{"short probability row", func(doc *Document) {
			doc.Classes.Tables[0].Probabilities[0] = doc.Classes.Tables[0].Probabilities[0][:1]
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := readSample(t)
			doc := NewClassifierDocument("x", fittedClassifier(t, d), nil)
			tt.mutate(doc)
			if _, err := doc.Classifier(d); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Classifier() error = %v, want ErrCodeInvalidInput", err)
			}
		})
	}
}
