package graph

import (
	"errors"
	"testing"
)

func TestFromMatrix(t *testing.T) {
	tests := []struct {
		name    string
		m       [][]bool
		wantErr error
		edges   int
	}{
		{name: "Empty", m: [][]bool{}, edges: 0},
		{name: "Chain", m: [][]bool{{false, true, false}, {false, false, true}, {false, false, false}}, edges: 2},
		{name: "Ragged", m: [][]bool{{false, true}, {false}}, wantErr: ErrSizeMismatch},
		{name: "SelfLoop", m: [][]bool{{true, false}, {false, false}}, wantErr: ErrSelfLoop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := FromMatrix(tt.m)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FromMatrix() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && s.EdgeCount() != tt.edges {
				t.Errorf("EdgeCount() = %d, want %d", s.EdgeCount(), tt.edges)
			}
		})
	}
}

func TestStructureEdges(t *testing.T) {
	s := New(4)
	s.SetEdge(0, 2, true)
	s.SetEdge(1, 2, true)
	s.SetEdge(2, 3, true)
	s.SetEdge(3, 3, true) // ignored

	if got := s.Parents(2); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("Parents(2) = %v, want [0 1]", got)
	}
	if got := s.Children(2); len(got) != 1 || got[0] != 3 {
		t.Errorf("Children(2) = %v, want [3]", got)
	}
	if got := s.InDegree(2); got != 2 {
		t.Errorf("InDegree(2) = %d, want 2", got)
	}
	if got := s.EdgeCount(); got != 3 {
		t.Errorf("EdgeCount() = %d, want 3", got)
	}
	if s.HasEdge(3, 3) {
		t.Error("SetEdge should ignore self loops")
	}

	s.ToggleEdge(0, 2)
	if s.HasEdge(0, 2) {
		t.Error("ToggleEdge(0, 2) should clear an existing edge")
	}
	s.ToggleEdge(1, 1)
	if s.HasEdge(1, 1) {
		t.Error("ToggleEdge should ignore self loops")
	}
}

func TestStructureClone(t *testing.T) {
	s := New(3)
	s.SetEdge(0, 1, true)
	c := s.Clone()
	c.SetEdge(1, 2, true)

	if s.HasEdge(1, 2) {
		t.Error("mutating a clone changed the original")
	}
	if !c.HasEdge(0, 1) {
		t.Error("clone lost an edge")
	}
	if s.Equal(c) {
		t.Error("Equal() = true for different edge sets")
	}
	if s.Key() == c.Key() {
		t.Error("Key() should differ for different edge sets")
	}
	if !s.Equal(s.Clone()) || s.Key() != s.Clone().Key() {
		t.Error("a fresh clone should be Equal with the same Key")
	}
}

func TestStructureColumn(t *testing.T) {
	s := New(3)
	s.SetEdge(0, 2, true)

	col := s.Column(2)
	col[1] = true
	if s.HasEdge(1, 2) {
		t.Error("Column() should return a copy")
	}

	if err := s.SetColumn(2, []bool{false, true, true}); err != nil {
		t.Fatalf("SetColumn() error = %v", err)
	}
	if s.HasEdge(0, 2) || !s.HasEdge(1, 2) || s.HasEdge(2, 2) {
		t.Errorf("SetColumn() produced\n%s", s)
	}
	if err := s.SetColumn(0, []bool{true}); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("SetColumn(short) error = %v, want ErrSizeMismatch", err)
	}
}

func TestStructureString(t *testing.T) {
	s := New(2)
	s.SetEdge(0, 1, true)
	if got, want := s.String(), "0 1\n0 0\n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := s.Key(), "0100"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestIsAcyclic(t *testing.T) {
	tests := []struct {
		name  string
		edges [][2]int
		want  bool
	}{
		{"Empty", nil, true},
		{"Chain", [][2]int{{0, 1}, {1, 2}}, true},
		{"Diamond", [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}}, true},
		{"TwoCycle", [][2]int{{0, 1}, {1, 0}}, false},
		{"LongCycle", [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(4)
			for _, e := range tt.edges {
				s.SetEdge(e[0], e[1], true)
			}
			if got := s.IsAcyclic(); got != tt.want {
				t.Errorf("IsAcyclic() = %v, want %v", got, tt.want)
			}
		})
	}
}
