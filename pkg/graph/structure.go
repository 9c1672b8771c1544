package graph

import (
	"errors"
	"strings"
)

var (
	// ErrSizeMismatch is returned when a matrix or column does not match the
	// structure's node count.
	ErrSizeMismatch = errors.New("size mismatch")

	// ErrSelfLoop is returned by [FromMatrix] when a node is its own parent.
	ErrSelfLoop = errors.New("node cannot be its own parent")
)

// Structure is a directed graph over N indexed nodes stored as an N×N
// adjacency matrix. An entry at (i, j) means node i is a parent of node j.
//
// The node count is fixed for the lifetime of a Structure. The diagonal is
// always false. A Structure is not safe for concurrent mutation; use
// [Structure.Clone] to hand a private copy to another goroutine.
type Structure struct {
	n   int
	adj []bool // row-major, adj[i*n+j] = i -> j
}

// New returns an empty structure over n nodes.
func New(n int) *Structure {
	return &Structure{n: n, adj: make([]bool, n*n)}
}

// FromMatrix builds a structure from a square boolean matrix.
func FromMatrix(m [][]bool) (*Structure, error) {
	s := New(len(m))
	for i, row := range m {
		if len(row) != s.n {
			return nil, ErrSizeMismatch
		}
		for j, v := range row {
			if v && i == j {
				return nil, ErrSelfLoop
			}
			s.adj[i*s.n+j] = v
		}
	}
	return s, nil
}

// Size returns the number of nodes.
func (s *Structure) Size() int { return s.n }

// Clone returns an independent copy.
func (s *Structure) Clone() *Structure {
	c := &Structure{n: s.n, adj: make([]bool, len(s.adj))}
	copy(c.adj, s.adj)
	return c
}

// HasEdge reports whether i is a parent of j.
func (s *Structure) HasEdge(i, j int) bool { return s.adj[i*s.n+j] }

// SetEdge sets or clears the edge i -> j. Self loops are ignored.
func (s *Structure) SetEdge(i, j int, on bool) {
	if i == j {
		return
	}
	s.adj[i*s.n+j] = on
}

// ToggleEdge flips the edge i -> j. Self loops are ignored.
func (s *Structure) ToggleEdge(i, j int) {
	if i == j {
		return
	}
	s.adj[i*s.n+j] = !s.adj[i*s.n+j]
}

// Parents returns the parents of j in ascending order.
func (s *Structure) Parents(j int) []int {
	var out []int
	for i := 0; i < s.n; i++ {
		if s.adj[i*s.n+j] {
			out = append(out, i)
		}
	}
	return out
}

// Children returns the children of i in ascending order.
func (s *Structure) Children(i int) []int {
	var out []int
	row := s.adj[i*s.n : (i+1)*s.n]
	for j, v := range row {
		if v {
			out = append(out, j)
		}
	}
	return out
}

// InDegree returns the number of parents of j.
func (s *Structure) InDegree(j int) int {
	d := 0
	for i := 0; i < s.n; i++ {
		if s.adj[i*s.n+j] {
			d++
		}
	}
	return d
}

// EdgeCount returns the number of edges.
func (s *Structure) EdgeCount() int {
	c := 0
	for _, v := range s.adj {
		if v {
			c++
		}
	}
	return c
}

// Column returns a copy of j's incoming-edge column.
func (s *Structure) Column(j int) []bool {
	col := make([]bool, s.n)
	for i := range col {
		col[i] = s.adj[i*s.n+j]
	}
	return col
}

// SetColumn replaces j's incoming-edge column. The diagonal entry of col is ignored.
func (s *Structure) SetColumn(j int, col []bool) error {
	if len(col) != s.n {
		return ErrSizeMismatch
	}
	for i, v := range col {
		if i != j {
			s.adj[i*s.n+j] = v
		}
	}
	return nil
}

// Matrix returns a copy of the adjacency matrix.
func (s *Structure) Matrix() [][]bool {
	m := make([][]bool, s.n)
	for i := range m {
		m[i] = make([]bool, s.n)
		copy(m[i], s.adj[i*s.n:(i+1)*s.n])
	}
	return m
}

// Equal reports whether both structures have the same nodes and edges.
func (s *Structure) Equal(o *Structure) bool {
	if s.n != o.n {
		return false
	}
	for k, v := range s.adj {
		if o.adj[k] != v {
			return false
		}
	}
	return true
}

// Key returns a compact string identifying the edge set, suitable as a map key.
func (s *Structure) Key() string {
	var b strings.Builder
	b.Grow(len(s.adj))
	for _, v := range s.adj {
		if v {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// String renders the matrix one row per line.
func (s *Structure) String() string {
	var b strings.Builder
	for i := 0; i < s.n; i++ {
		for j := 0; j < s.n; j++ {
			if j > 0 {
				b.WriteByte(' ')
			}
			if s.adj[i*s.n+j] {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// IsAcyclic reports whether the structure has no directed cycle.
//
// It runs Kahn's algorithm: nodes with zero in-degree are queued and removed
// one at a time, decrementing their children's in-degree. The graph is
// acyclic iff every node is eventually dequeued.
func (s *Structure) IsAcyclic() bool {
	indeg := make([]int, s.n)
	for j := 0; j < s.n; j++ {
		indeg[j] = s.InDegree(j)
	}
	queue := make([]int, 0, s.n)
	for j, d := range indeg {
		if d == 0 {
			queue = append(queue, j)
		}
	}
	visited := 0
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		visited++
		row := s.adj[i*s.n : (i+1)*s.n]
		for j, v := range row {
			if !v {
				continue
			}
			indeg[j]--
			if indeg[j] == 0 {
				queue = append(queue, j)
			}
		}
	}
	return visited == s.n
}
