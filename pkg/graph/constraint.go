package graph

import "slices"

// Constraint decides whether a candidate structure is legal.
//
// Constraints never fail: an illegal candidate is simply excluded from the
// search's neighbor pool.
type Constraint interface {
	Allows(s *Structure) bool
}

// ColumnConstraint is a [Constraint] that can be evaluated one incoming
// column at a time. A structure is legal iff every column is legal, which
// lets per-node searches check only the column they own.
type ColumnConstraint interface {
	Constraint
	AllowsColumn(s *Structure, j int) bool
}

// Acyclic admits only directed acyclic graphs. It is not column-local.
type Acyclic struct{}

// Allows implements [Constraint].
func (Acyclic) Allows(s *Structure) bool { return s.IsAcyclic() }

// RootsOnly forbids incoming edges into the listed nodes. It is used to keep
// class variables as roots of the feature and bridge subgraph.
type RootsOnly struct {
	Nodes []int
}

// Allows implements [Constraint].
func (r RootsOnly) Allows(s *Structure) bool {
	for _, j := range r.Nodes {
		if s.InDegree(j) > 0 {
			return false
		}
	}
	return true
}

// AllowsColumn implements [ColumnConstraint].
func (r RootsOnly) AllowsColumn(s *Structure, j int) bool {
	return !slices.Contains(r.Nodes, j) || s.InDegree(j) == 0
}

// MaxParents bounds every node's in-degree by K. A non-positive K disables
// the bound.
type MaxParents struct {
	K int
}

// Allows implements [Constraint].
func (m MaxParents) Allows(s *Structure) bool {
	if m.K <= 0 {
		return true
	}
	for j := 0; j < s.n; j++ {
		if s.InDegree(j) > m.K {
			return false
		}
	}
	return true
}

// AllowsColumn implements [ColumnConstraint].
func (m MaxParents) AllowsColumn(s *Structure, j int) bool {
	return m.K <= 0 || s.InDegree(j) <= m.K
}

// All is the conjunction of several constraints. An empty All admits every
// structure.
type All []Constraint

// Allows implements [Constraint].
func (a All) Allows(s *Structure) bool {
	for _, c := range a {
		if !c.Allows(s) {
			return false
		}
	}
	return true
}

// Local reports whether every member is column-local, returning a
// [ColumnConstraint] view when it is.
func (a All) Local() (ColumnConstraint, bool) {
	for _, c := range a {
		if _, ok := Local(c); !ok {
			return nil, false
		}
	}
	return localAll(a), true
}

type localAll All

func (a localAll) Allows(s *Structure) bool { return All(a).Allows(s) }

func (a localAll) AllowsColumn(s *Structure, j int) bool {
	for _, c := range a {
		cc, _ := Local(c)
		if !cc.AllowsColumn(s, j) {
			return false
		}
	}
	return true
}

// Local returns c as a [ColumnConstraint] if it can be checked column by
// column. A nil constraint is trivially local.
func Local(c Constraint) (ColumnConstraint, bool) {
	switch v := c.(type) {
	case nil:
		return localAll(nil), true
	case All:
		return v.Local()
	case ColumnConstraint:
		return v, true
	default:
		return nil, false
	}
}

// Allowed reports whether s satisfies c, treating a nil constraint as
// unconstrained.
func Allowed(c Constraint, s *Structure) bool {
	return c == nil || c.Allows(s)
}
