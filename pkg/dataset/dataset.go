package dataset

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownVariable is returned when a variable name is not part of the dataset.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrUnknownState is returned when an observed value is not one of the
	// variable's declared states.
	ErrUnknownState = errors.New("unknown state")

	// ErrDuplicateVariable is returned by [New] when two variables share a name.
	ErrDuplicateVariable = errors.New("duplicate variable")

	// ErrEmptyDomain is returned by [New] when a variable declares no states.
	ErrEmptyDomain = errors.New("variable has no states")

	// ErrUnorderedTimes is returned by [Builder.Add] when observation timestamps
	// are not strictly increasing.
	ErrUnorderedTimes = errors.New("timestamps must be strictly increasing")

	// ErrClassChanged is returned by [Builder.Add] when a class variable changes
	// value inside a sequence.
	ErrClassChanged = errors.New("class variable changes within a sequence")

	// ErrEmptySequence is returned by [Builder.Add] for a sequence without observations.
	ErrEmptySequence = errors.New("sequence has no observations")
)

// Variable is a discrete variable with a finite, ordered set of states.
// Class variables take one value for a whole sequence; feature variables
// evolve in continuous time.
type Variable struct {
	Name   string   `json:"name"`
	States []string `json:"states"`
	Class  bool     `json:"class,omitempty"`
}

// Cardinality returns the number of states.
func (v Variable) Cardinality() int { return len(v.States) }

// StateIndex returns the index of state s, or -1 if s is not a state of v.
func (v Variable) StateIndex(s string) int { return slices.Index(v.States, s) }

// Sequence is an ordered list of timestamped observations over all variables.
// Values[t][v] is the state index of variable v at Times[t].
type Sequence struct {
	Times  []float64
	Values [][]int
}

// Len returns the number of observations in the sequence.
func (s Sequence) Len() int { return len(s.Times) }

// Value returns the state index of variable v at observation t.
func (s Sequence) Value(t, v int) int { return s.Values[t][v] }

// Dataset is a read-only collection of sequences over a fixed set of variables.
//
// The zero value is not usable - build one with [New] and [Builder].
// A built Dataset is never mutated and is safe for concurrent reads.
type Dataset struct {
	vars    []Variable
	index   map[string]int
	seqs    []Sequence
	numObs  int
	classes []int
	feats   []int
}

// Variables returns the dataset's variables in index order.
func (d *Dataset) Variables() []Variable { return d.vars }

// Variable returns the variable at index i.
func (d *Dataset) Variable(i int) Variable { return d.vars[i] }

// NumVariables returns the number of variables.
func (d *Dataset) NumVariables() int { return len(d.vars) }

// Index returns the index of the named variable.
func (d *Dataset) Index(name string) (int, error) {
	i, ok := d.index[name]
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}
	return i, nil
}

// Indices resolves several variable names at once.
func (d *Dataset) Indices(names ...string) ([]int, error) {
	out := make([]int, len(names))
	for k, n := range names {
		i, err := d.Index(n)
		if err != nil {
			return nil, err
		}
		out[k] = i
	}
	return out, nil
}

// Sequences returns all sequences. The slice must not be modified.
func (d *Dataset) Sequences() []Sequence { return d.seqs }

// NumDataPoints returns the number of sequences.
func (d *Dataset) NumDataPoints() int { return len(d.seqs) }

// NumObservations returns the total number of observations across sequences.
func (d *Dataset) NumObservations() int { return d.numObs }

// ClassIndices returns the indices of class variables in ascending order.
func (d *Dataset) ClassIndices() []int { return d.classes }

// FeatureIndices returns the indices of feature variables in ascending order.
func (d *Dataset) FeatureIndices() []int { return d.feats }

// Subset returns a dataset sharing variables with d and holding only the
// sequences at the given positions.
func (d *Dataset) Subset(positions []int) *Dataset {
	out := *d
	out.seqs = make([]Sequence, 0, len(positions))
	out.numObs = 0
	for _, p := range positions {
		out.seqs = append(out.seqs, d.seqs[p])
		out.numObs += d.seqs[p].Len()
	}
	return &out
}

// Builder accumulates sequences into a [Dataset].
// It is not safe for concurrent use.
type Builder struct {
	d *Dataset
}

// New validates the variable declarations and returns a builder for a
// dataset over them.
func New(vars []Variable) (*Builder, error) {
	d := &Dataset{
		vars:  slices.Clone(vars),
		index: make(map[string]int, len(vars)),
	}
	for i, v := range vars {
		if v.Name == "" {
			return nil, fmt.Errorf("%w: variable %d has no name", ErrUnknownVariable, i)
		}
		if _, dup := d.index[v.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVariable, v.Name)
		}
		if len(v.States) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyDomain, v.Name)
		}
		d.index[v.Name] = i
		if v.Class {
			d.classes = append(d.classes, i)
		} else {
			d.feats = append(d.feats, i)
		}
	}
	return &Builder{d: d}, nil
}

// Add appends a sequence given as per-observation maps from variable name to
// state label. Every observation must assign every variable; class variables
// must keep the same value throughout the sequence.
func (b *Builder) Add(times []float64, rows []map[string]string) error {
	if len(times) == 0 {
		return ErrEmptySequence
	}
	if len(times) != len(rows) {
		return fmt.Errorf("%d timestamps for %d observations", len(times), len(rows))
	}
	values := make([][]int, len(rows))
	for t, row := range rows {
		if t > 0 && times[t] <= times[t-1] {
			return fmt.Errorf("%w: observation %d", ErrUnorderedTimes, t)
		}
		vals := make([]int, len(b.d.vars))
		for i, v := range b.d.vars {
			label, ok := row[v.Name]
			if !ok {
				return fmt.Errorf("observation %d: %w: %s missing", t, ErrUnknownVariable, v.Name)
			}
			s := v.StateIndex(label)
			if s < 0 {
				return fmt.Errorf("observation %d: %w: %s=%q", t, ErrUnknownState, v.Name, label)
			}
			vals[i] = s
		}
		values[t] = vals
	}
	return b.AddIndexed(Sequence{Times: slices.Clone(times), Values: values})
}

// AddIndexed appends a sequence whose values are already state indices.
func (b *Builder) AddIndexed(seq Sequence) error {
	if seq.Len() == 0 {
		return ErrEmptySequence
	}
	if len(seq.Values) != seq.Len() {
		return fmt.Errorf("%d timestamps for %d observations", seq.Len(), len(seq.Values))
	}
	for t, vals := range seq.Values {
		if len(vals) != len(b.d.vars) {
			return fmt.Errorf("observation %d: %d values for %d variables", t, len(vals), len(b.d.vars))
		}
		if t > 0 && seq.Times[t] <= seq.Times[t-1] {
			return fmt.Errorf("%w: observation %d", ErrUnorderedTimes, t)
		}
		for i, s := range vals {
			if s < 0 || s >= b.d.vars[i].Cardinality() {
				return fmt.Errorf("observation %d: %w: %s=%d", t, ErrUnknownState, b.d.vars[i].Name, s)
			}
			if b.d.vars[i].Class && s != seq.Values[0][i] {
				return fmt.Errorf("observation %d: %w: %s", t, ErrClassChanged, b.d.vars[i].Name)
			}
		}
	}
	b.d.seqs = append(b.d.seqs, seq)
	b.d.numObs += seq.Len()
	return nil
}

// Build returns the dataset. The builder must not be used afterwards.
func (b *Builder) Build() *Dataset {
	d := b.d
	b.d = nil
	return d
}
