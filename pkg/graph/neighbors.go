package graph

import "fmt"

// Op is a single-edge structure modification.
type Op int

const (
	// OpAdd inserts the edge From -> To.
	OpAdd Op = iota
	// OpDelete removes the edge From -> To.
	OpDelete
	// OpReverse replaces From -> To with To -> From.
	OpReverse
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpDelete:
		return "delete"
	case OpReverse:
		return "reverse"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Move describes one neighbor of a structure: op applied to the edge From -> To.
type Move struct {
	Op       Op
	From, To int
}

// String formats the move as "add 0->2".
func (m Move) String() string { return fmt.Sprintf("%s %d->%d", m.Op, m.From, m.To) }

// Touched returns the nodes whose parent sets change when the move is applied.
func (m Move) Touched() []int {
	if m.Op == OpReverse {
		return []int{m.To, m.From}
	}
	return []int{m.To}
}

// Apply performs the move on s in place.
func (m Move) Apply(s *Structure) {
	switch m.Op {
	case OpAdd:
		s.SetEdge(m.From, m.To, true)
	case OpDelete:
		s.SetEdge(m.From, m.To, false)
	case OpReverse:
		s.SetEdge(m.From, m.To, false)
		s.SetEdge(m.To, m.From, true)
	}
}

// Neighbor returns a clone of s with the move applied.
func (m Move) Neighbor(s *Structure) *Structure {
	c := s.Clone()
	m.Apply(c)
	return c
}

// Additions enumerates every edge that can be added to s: each ordered pair
// (i, j), i != j, with i -> j absent. Pairs whose addition closes a cycle are
// left for a [Constraint] to reject.
func Additions(s *Structure) []Move {
	var out []Move
	for i := 0; i < s.n; i++ {
		for j := 0; j < s.n; j++ {
			if i == j || s.HasEdge(i, j) {
				continue
			}
			out = append(out, Move{Op: OpAdd, From: i, To: j})
		}
	}
	return out
}

// Deletions enumerates every edge of s as a deletion.
func Deletions(s *Structure) []Move {
	var out []Move
	for i := 0; i < s.n; i++ {
		for j := 0; j < s.n; j++ {
			if s.HasEdge(i, j) {
				out = append(out, Move{Op: OpDelete, From: i, To: j})
			}
		}
	}
	return out
}

// Reversals enumerates every edge of s whose reverse is not already present.
func Reversals(s *Structure) []Move {
	var out []Move
	for i := 0; i < s.n; i++ {
		for j := 0; j < s.n; j++ {
			if s.HasEdge(i, j) && !s.HasEdge(j, i) {
				out = append(out, Move{Op: OpReverse, From: i, To: j})
			}
		}
	}
	return out
}

// Families returns the addition, deletion and reversal neighbor families of s,
// in that order.
func Families(s *Structure) [3][]Move {
	return [3][]Move{Additions(s), Deletions(s), Reversals(s)}
}

// ColumnToggles enumerates, for node j, every single-parent toggle of its
// incoming column: an addition for each absent parent and a deletion for
// each present one.
func ColumnToggles(s *Structure, j int) []Move {
	out := make([]Move, 0, s.n-1)
	for i := 0; i < s.n; i++ {
		if i == j {
			continue
		}
		op := OpAdd
		if s.HasEdge(i, j) {
			op = OpDelete
		}
		out = append(out, Move{Op: op, From: i, To: j})
	}
	return out
}
