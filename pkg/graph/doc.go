// Package graph provides the adjacency-matrix structures searched during
// structure learning, together with their neighborhoods and legality rules.
//
// # Structures
//
// A [Structure] is an N×N boolean matrix over a fixed node indexing: an
// entry (i, j) means node i is a parent of node j. Parent and child views
// ([Structure.Parents], [Structure.Children]) are computed from the matrix
// on demand, so there is no second copy of the edges that could drift out
// of sync.
//
// [Structure.IsAcyclic] runs Kahn's algorithm in O(N²) for the dense matrix.
//
// # Neighborhoods
//
// Local search moves between structures that differ by one edge. [Additions],
// [Deletions] and [Reversals] enumerate the three neighbor families as
// [Move] values; [Move.Neighbor] materializes a candidate as a clone and
// [Move.Touched] names the nodes whose parent set the move changes, which is
// what decomposable scores need to re-evaluate. [ColumnToggles] enumerates
// the single-parent changes of one node for per-node search.
//
// # Legality
//
// A [Constraint] filters candidates:
//
//   - [Acyclic]: directed acyclic graphs only (static networks)
//   - [RootsOnly]: listed nodes must have no parents (class variables)
//   - [MaxParents]: bounded fan-in
//   - [All]: conjunction
//
// Constraints that can be decided column by column implement
// [ColumnConstraint]; [Local] reports whether a constraint qualifies. Only
// local constraints are safe for searches that optimize each node's parent
// set independently, since their verdicts cannot be changed by another
// node's column.
//
// # Concurrency
//
// Structures are not safe for concurrent mutation. Searches that evaluate
// candidates in parallel give each goroutine its own clone.
package graph
