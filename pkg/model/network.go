package model

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/mctbnc/pkg/dataset"
	"github.com/matzehuels/mctbnc/pkg/graph"
	"github.com/matzehuels/mctbnc/pkg/stats"
)

var (
	// ErrNoVariables is returned when a network is built over an empty variable set.
	ErrNoVariables = errors.New("network needs at least one variable")

	// ErrDuplicateNode is returned when a variable is listed twice.
	ErrDuplicateNode = errors.New("variable listed twice")

	// ErrUnknownNode is returned by [Network.IndexOf] for an unknown name.
	ErrUnknownNode = errors.New("unknown node")
)

// Node is one variable of a network. Nodes live in a flat arena owned by
// their network and are addressed by Index; edges are never stored on the
// node itself.
type Node struct {
	Index  int      // position in the network
	Var    int      // index of the variable in the dataset
	Name   string   // variable name
	States []string // ordered domain
	Class  bool     // class variable (true) or feature variable
}

// Network is the arena shared by static and continuous-time networks: a flat
// list of nodes plus the adjacency [graph.Structure] over their indices.
// Parent and child views are always derived from the structure.
//
// A Network is bound to the dataset its statistics are computed from. It is
// not safe for concurrent mutation; use Clone to obtain a private copy.
type Network struct {
	data      *dataset.Dataset
	nodes     []Node
	byName    map[string]int
	structure *graph.Structure
}

func newNetwork(d *dataset.Dataset, vars []int) (Network, error) {
	if len(vars) == 0 {
		return Network{}, ErrNoVariables
	}
	sorted := slices.Clone(vars)
	slices.Sort(sorted)
	if len(slices.Compact(slices.Clone(sorted))) != len(sorted) {
		return Network{}, ErrDuplicateNode
	}
	n := Network{
		data:      d,
		nodes:     make([]Node, len(sorted)),
		byName:    make(map[string]int, len(sorted)),
		structure: graph.New(len(sorted)),
	}
	for i, v := range sorted {
		if v < 0 || v >= d.NumVariables() {
			return Network{}, fmt.Errorf("%w: variable index %d", dataset.ErrUnknownVariable, v)
		}
		dv := d.Variable(v)
		n.nodes[i] = Node{Index: i, Var: v, Name: dv.Name, States: dv.States, Class: dv.Class}
		n.byName[dv.Name] = i
	}
	return n, nil
}

// Dataset returns the dataset the network is bound to.
func (n *Network) Dataset() *dataset.Dataset { return n.data }

// Size returns the number of nodes.
func (n *Network) Size() int { return len(n.nodes) }

// Nodes returns the node arena. The slice must not be modified.
func (n *Network) Nodes() []Node { return n.nodes }

// Node returns the node at index i.
func (n *Network) Node(i int) Node { return n.nodes[i] }

// IndexOf returns the index of the named node.
func (n *Network) IndexOf(name string) (int, error) {
	i, ok := n.byName[name]
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrUnknownNode, name)
	}
	return i, nil
}

// Names returns node names in index order.
func (n *Network) Names() []string {
	out := make([]string, len(n.nodes))
	for i, nd := range n.nodes {
		out[i] = nd.Name
	}
	return out
}

// ClassNodes returns the indices of class nodes.
func (n *Network) ClassNodes() []int {
	var out []int
	for _, nd := range n.nodes {
		if nd.Class {
			out = append(out, nd.Index)
		}
	}
	return out
}

// FeatureNodes returns the indices of feature nodes.
func (n *Network) FeatureNodes() []int {
	var out []int
	for _, nd := range n.nodes {
		if !nd.Class {
			out = append(out, nd.Index)
		}
	}
	return out
}

// Structure returns the network's adjacency structure. Callers that mutate
// it must refit the affected nodes' parameters.
func (n *Network) Structure() *graph.Structure { return n.structure }

// Parents returns the parents of node j as node indices.
func (n *Network) Parents(j int) []int { return n.structure.Parents(j) }

// Children returns the children of node i as node indices.
func (n *Network) Children(i int) []int { return n.structure.Children(i) }

// Context returns the sufficient-statistics context of node j under its
// current parent set.
func (n *Network) Context(j int) stats.Context {
	ps := n.structure.Parents(j)
	vars := make([]int, len(ps))
	for k, p := range ps {
		vars[k] = n.nodes[p].Var
	}
	return stats.NewContext(n.data, n.nodes[j].Var, vars)
}

// ClassVars returns the dataset indices of the class nodes.
func (n *Network) ClassVars() []int {
	var out []int
	for _, nd := range n.nodes {
		if nd.Class {
			out = append(out, nd.Var)
		}
	}
	return out
}

func (n *Network) setStructure(s *graph.Structure) error {
	if s.Size() != len(n.nodes) {
		return fmt.Errorf("%w: structure over %d nodes, network has %d", graph.ErrSizeMismatch, s.Size(), len(n.nodes))
	}
	n.structure = s
	return nil
}

func (n *Network) clone() Network {
	c := *n
	c.structure = n.structure.Clone()
	return c
}

func (n *Network) rebind(d *dataset.Dataset) Network {
	c := n.clone()
	c.data = d
	return c
}
