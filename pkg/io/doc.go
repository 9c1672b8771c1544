// Package io provides JSON import and export for datasets and learned models.
//
// # Dataset Format
//
// A dataset declares its variables and then lists sequences of timestamped
// observations. Every observation assigns a state to every variable:
//
//	{
//	  "variables": [
//	    {"name": "Disease", "states": ["flu", "cold"], "class": true},
//	    {"name": "Fever",   "states": ["no", "yes"]}
//	  ],
//	  "sequences": [
//	    {
//	      "times": [0, 0.7, 2.1],
//	      "observations": [
//	        {"Disease": "flu", "Fever": "no"},
//	        {"Disease": "flu", "Fever": "yes"},
//	        {"Disease": "flu", "Fever": "no"}
//	      ]
//	    }
//	  ]
//	}
//
// Class variables must keep one value per sequence. Static networks use the
// first observation of each sequence as one instance.
//
// Use [ImportDataset] to read a file or [ReadDataset] to read from any
// io.Reader. [WriteDataset] produces the same format deterministically, which
// is what model cache keys hash.
//
// # Model Format
//
// A [Document] holds the variables, each network's nodes, edges and
// parameter tables, and the hyperparameters of the run that learned it:
//
//	doc := io.NewClassifierDocument(res.ID, res.Model, opts.Hyperparameters())
//	err := io.ExportModel(doc, "model.json")
//
// Documents are bound back to data with [Document.BN] or
// [Document.Classifier]. Binding recounts sufficient statistics on the given
// dataset and keeps the stored parameters, so a model learned on one batch
// can be scored on another.
//
// # Concurrency
//
// All functions in this package are safe to call concurrently. Decoded
// datasets and documents are independent of their readers.
package io
