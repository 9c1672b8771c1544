package io

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/mctbnc/pkg/buildinfo"
	"github.com/matzehuels/mctbnc/pkg/dataset"
	"github.com/matzehuels/mctbnc/pkg/errors"
	"github.com/matzehuels/mctbnc/pkg/graph"
	"github.com/matzehuels/mctbnc/pkg/model"
	"github.com/matzehuels/mctbnc/pkg/stats"
)

// ErrVariableMismatch is returned when a model is bound to a dataset whose
// variables differ from the ones it was learned on.
var ErrVariableMismatch = stderrors.New("dataset variables do not match the model")

// Document is the serialized form of a learned model: the variables, the
// structure and the parameter tables of each network, plus the
// hyperparameters and scores of the run that produced it.
type Document struct {
	ID              string             `json:"id"`
	Generator       string             `json:"generator,omitempty"`
	Hyperparameters map[string]string  `json:"hyperparameters,omitempty"`
	Variables       []dataset.Variable `json:"variables"`
	Classes         *Network           `json:"class_network,omitempty"`
	Features        *Network           `json:"feature_network,omitempty"`
	Scores          map[string]float64 `json:"scores,omitempty"`
}

// Network is one serialized network.
type Network struct {
	Nodes  []string `json:"nodes"`
	Edges  []Edge   `json:"edges"`
	Tables []Table  `json:"tables"`
}

// Edge is a directed edge between named nodes.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Table holds one node's parameters. Rows are indexed by joint parent
// state, with the first parent varying fastest. Static nodes carry
// probabilities; continuous-time nodes carry intensities and transitions.
type Table struct {
	Node          string        `json:"node"`
	Parents       []string      `json:"parents,omitempty"`
	Probabilities [][]float64   `json:"probabilities,omitempty"`
	Intensities   [][]float64   `json:"intensities,omitempty"`
	Transitions   [][][]float64 `json:"transitions,omitempty"`
}

// NewBNDocument serializes a static network.
func NewBNDocument(id string, b *model.BN, params map[string]string) *Document {
	return &Document{
		ID:              id,
		Generator:       buildinfo.Generator(),
		Hyperparameters: params,
		Variables:       variablesOf(&b.Network),
		Classes:         encodeBN(b),
	}
}

// NewClassifierDocument serializes a classifier.
func NewClassifierDocument(id string, c *model.Classifier, params map[string]string) *Document {
	return &Document{
		ID:              id,
		Generator:       buildinfo.Generator(),
		Hyperparameters: params,
		Variables:       variablesOf(&c.Features.Network),
		Classes:         encodeBN(c.Classes),
		Features:        encodeCTBN(c.Features),
	}
}

func variablesOf(n *model.Network) []dataset.Variable {
	out := make([]dataset.Variable, n.Size())
	for i, nd := range n.Nodes() {
		out[i] = dataset.Variable{Name: nd.Name, States: nd.States, Class: nd.Class}
	}
	return out
}

func encodeStructure(n *model.Network) *Network {
	out := &Network{Nodes: n.Names()}
	s := n.Structure()
	for i := 0; i < s.Size(); i++ {
		for _, j := range s.Children(i) {
			out.Edges = append(out.Edges, Edge{From: n.Node(i).Name, To: n.Node(j).Name})
		}
	}
	return out
}

func parentNames(n *model.Network, j int) []string {
	var out []string
	for _, p := range n.Parents(j) {
		out = append(out, n.Node(p).Name)
	}
	return out
}

func encodeBN(b *model.BN) *Network {
	out := encodeStructure(&b.Network)
	for j, nd := range b.Nodes() {
		cpt := b.CPT(j)
		if cpt == nil {
			continue
		}
		out.Tables = append(out.Tables, Table{Node: nd.Name, Parents: parentNames(&b.Network, j), Probabilities: cpt.Probs})
	}
	return out
}

func encodeCTBN(c *model.CTBN) *Network {
	out := encodeStructure(&c.Network)
	for j, nd := range c.Nodes() {
		cim := c.CIM(j)
		if cim == nil {
			continue
		}
		out.Tables = append(out.Tables, Table{
			Node:        nd.Name,
			Parents:     parentNames(&c.Network, j),
			Intensities: cim.Intensity,
			Transitions: cim.Transition,
		})
	}
	return out
}

// Graph returns the structure of n indexed like n.Nodes.
func (n *Network) Graph() (*graph.Structure, error) {
	idx := make(map[string]int, len(n.Nodes))
	for i, name := range n.Nodes {
		idx[name] = i
	}
	s := graph.New(len(n.Nodes))
	for _, e := range n.Edges {
		i, ok := idx[e.From]
		j, ok2 := idx[e.To]
		if !ok || !ok2 {
			return nil, errors.New(errors.ErrCodeInvalidStructure, "edge %s->%s: unknown node", e.From, e.To)
		}
		s.SetEdge(i, j, true)
	}
	return s, nil
}

// Variable returns the declared variable with the given name.
func (doc *Document) Variable(name string) (dataset.Variable, bool) {
	for _, v := range doc.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return dataset.Variable{}, false
}

// WriteModel encodes doc as indented JSON.
func WriteModel(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportModel writes doc to a JSON file at path.
func ExportModel(doc *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteModel(doc, f)
}

// ReadModel decodes a model document from r. ReadModel does not close r.
func ReadModel(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode model")
	}
	return &doc, nil
}

// ImportModel reads a model document from the JSON file at path.
func ImportModel(path string) (*Document, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
	}
	defer f.Close()
	return ReadModel(f)
}

// BN rebuilds the document's static network bound to d. Statistics are
// counted on d; the stored probabilities are kept.
func (doc *Document) BN(d *dataset.Dataset) (*model.BN, error) {
	if doc.Classes == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "model has no static network")
	}
	if err := doc.checkVariables(d); err != nil {
		return nil, err
	}
	vars, err := d.Indices(doc.Classes.Nodes...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "static network")
	}
	b, err := model.NewBN(d, vars)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "static network")
	}
	if err := decodeStructure(&b.Network, doc.Classes, b.SetStructure); err != nil {
		return nil, err
	}
	for _, t := range doc.Classes.Tables {
		j, err := b.IndexOf(t.Node)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "table")
		}
		counts := stats.CountStatic(d, b.Context(j))
		if err := checkTable(t.Node, t.Probabilities, len(counts.N), counts.Context.States); err != nil {
			return nil, err
		}
		b.SetCPT(j, &model.CPT{Counts: counts, Probs: t.Probabilities})
	}
	return b, nil
}

// Classifier rebuilds the document's classifier bound to d.
func (doc *Document) Classifier(d *dataset.Dataset) (*model.Classifier, error) {
	if doc.Features == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "model has no continuous-time network")
	}
	classes, err := doc.BN(d)
	if err != nil {
		return nil, err
	}
	clf, err := model.NewClassifier(d)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "classifier")
	}
	clf.Classes = classes
	c := clf.Features
	if err := decodeStructure(&c.Network, doc.Features, c.SetStructure); err != nil {
		return nil, err
	}
	for _, t := range doc.Features.Tables {
		j, err := c.IndexOf(t.Node)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "table")
		}
		if c.Node(j).Class {
			return nil, errors.New(errors.ErrCodeInvalidInput, "table %s: class nodes have no intensity table", t.Node)
		}
		counts := stats.CountContinuous(d, c.Context(j))
		rows, states := len(counts.Tx), counts.Context.States
		if err := checkTable(t.Node, t.Intensities, rows, states); err != nil {
			return nil, err
		}
		if len(t.Transitions) != rows {
			return nil, errors.New(errors.ErrCodeInvalidInput, "table %s: %d transition matrices, want %d", t.Node, len(t.Transitions), rows)
		}
		for p, m := range t.Transitions {
			if err := checkTable(fmt.Sprintf("%s transitions[%d]", t.Node, p), m, states, states); err != nil {
				return nil, err
			}
		}
		c.SetCIM(j, &model.CIM{Counts: counts, Intensity: t.Intensities, Transition: t.Transitions})
	}
	return clf, nil
}

func (doc *Document) checkVariables(d *dataset.Dataset) error {
	for _, v := range doc.Variables {
		i, err := d.Index(v.Name)
		if err != nil {
			return fmt.Errorf("%w: %s missing", ErrVariableMismatch, v.Name)
		}
		dv := d.Variable(i)
		if dv.Class != v.Class || !slices.Equal(dv.States, v.States) {
			return fmt.Errorf("%w: %s", ErrVariableMismatch, v.Name)
		}
	}
	return nil
}

// checkTable verifies that table is a rows×cols matrix.
func checkTable(name string, table [][]float64, rows, cols int) error {
	if len(table) != rows {
		return errors.New(errors.ErrCodeInvalidInput, "table %s: %d rows, want %d", name, len(table), rows)
	}
	for p, row := range table {
		if len(row) != cols {
			return errors.New(errors.ErrCodeInvalidInput, "table %s: row %d has %d entries, want %d", name, p, len(row), cols)
		}
	}
	return nil
}

func decodeStructure(n *model.Network, doc *Network, set func(*graph.Structure) error) error {
	s := graph.New(n.Size())
	for _, e := range doc.Edges {
		i, err := n.IndexOf(e.From)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidStructure, err, "edge %s->%s", e.From, e.To)
		}
		j, err := n.IndexOf(e.To)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidStructure, err, "edge %s->%s", e.From, e.To)
		}
		s.SetEdge(i, j, true)
	}
	return set(s)
}
