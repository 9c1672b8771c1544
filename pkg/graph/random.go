package graph

import (
	"math/rand/v2"
	"slices"
)

// Random returns a random legal structure over n nodes.
//
// Every ordered pair (i, j) whose target is not listed in fixedRoots is
// visited in random order and its edge kept with probability density, but
// only if the structure still satisfies c afterwards. The result is
// therefore always legal under c, and the empty structure is returned when
// nothing can be added.
func Random(rng *rand.Rand, n int, density float64, c Constraint, fixedRoots []int) *Structure {
	s := New(n)
	pairs := make([][2]int, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j && !slices.Contains(fixedRoots, j) {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	rng.Shuffle(len(pairs), func(a, b int) { pairs[a], pairs[b] = pairs[b], pairs[a] })
	for _, p := range pairs {
		if rng.Float64() >= density {
			continue
		}
		s.SetEdge(p[0], p[1], true)
		if !Allowed(c, s) {
			s.SetEdge(p[0], p[1], false)
		}
	}
	return s
}
