// Package search implements score-and-search structure learning.
//
// A search walks the space of adjacency structures, moving between
// neighbors that differ by one edge and keeping only structures that satisfy
// a [graph.Constraint]. Candidates are ranked by an [Objective], which binds
// a network, a parameter estimator and a score function.
//
// # Strategies
//
//   - [HillClimbing]: greedy ascent over additions, deletions and reversals
//     of the whole structure. Required for non-decomposable scores.
//   - [PerNode]: one independent climb per node over its incoming column,
//     run concurrently. Decomposable scores and column-local constraints only.
//   - [Tabu]: keeps moving to the best non-tabu neighbor to escape local
//     optima and returns the best structure visited.
//   - [RandomRestart]: repeats an inner strategy from random legal
//     structures and keeps the best result.
//
// # Ties and termination
//
// Scores are compared with the absolute tolerance [Epsilon]. Within one move
// family the first best candidate in enumeration order wins; winners of
// different families tied within Epsilon are chosen uniformly at random from
// the strategy's seeded random source. A NaN score ranks below every other
// score. Hill climbing stops when no neighbor improves the current score by
// more than Epsilon, so the score sequence of committed moves is strictly
// increasing.
//
// # Concurrency
//
// Candidate evaluation may be spread over workers, each owning a forked
// objective. No goroutine ever mutates a structure or network another one
// reads: candidates are clones and per-node searches return their column
// for a single-threaded merge.
//
// # Usage
//
//	strategy, err := search.New(search.Config{
//	    Kind:       search.KindHillClimbing,
//	    Constraint: graph.All{graph.Acyclic{}, graph.MaxParents{K: 2}},
//	    Seed:       42,
//	})
//	if err != nil {
//	    return err
//	}
//	res, err := strategy.Search(ctx, objective, nil)
package search
