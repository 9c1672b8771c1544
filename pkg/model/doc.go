// Package model defines the networks whose structure and parameters are
// learned: a static Bayesian network ([BN]), a continuous-time Bayesian
// network ([CTBN]) and the [Classifier] that couples them.
//
// Networks use an arena-and-index layout. Nodes live in a flat slice and
// are addressed by index; the only record of the edges is the network's
// graph.Structure, from which parent and child views are derived. There is
// no per-node parent or child list that could disagree with the matrix.
//
// Parameter tables ([CPT], [CIM]) keep the sufficient statistics they were
// estimated from, so score functions can evaluate a network without
// touching the dataset again. Tables are immutable once installed; Clone
// copies the structure and the table slice but shares the tables.
package model
