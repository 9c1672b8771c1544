// Package dataset holds the training data consumed by structure learning.
//
// A [Dataset] is an ordered collection of [Sequence] values. Each sequence
// is a list of timestamped observations over every variable; class
// variables keep one value for the whole sequence while feature variables
// may change between observations. Values are stored as state indices into
// each [Variable]'s declared states, so downstream code never compares
// labels.
//
// Build a dataset with [New] and [Builder.Add]:
//
//	b, _ := dataset.New([]dataset.Variable{
//	    {Name: "C", States: []string{"yes", "no"}, Class: true},
//	    {Name: "X", States: []string{"lo", "hi"}},
//	})
//	_ = b.Add([]float64{0, 1.5}, []map[string]string{
//	    {"C": "yes", "X": "lo"},
//	    {"C": "yes", "X": "hi"},
//	})
//	d := b.Build()
//
// Reading and writing datasets from files lives in package io.
package dataset
