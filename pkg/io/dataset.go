package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/mctbnc/pkg/dataset"
	"github.com/matzehuels/mctbnc/pkg/errors"
)

type datasetDoc struct {
	Variables []dataset.Variable `json:"variables"`
	Sequences []sequenceDoc      `json:"sequences"`
}

type sequenceDoc struct {
	Times        []float64           `json:"times"`
	Observations []map[string]string `json:"observations"`
}

// ReadDataset decodes a JSON dataset from r.
//
// The input must declare every variable before the sequences that use it:
//
//	{
//	  "variables": [
//	    {"name": "C", "states": ["a", "b"], "class": true},
//	    {"name": "X", "states": ["lo", "hi"]}
//	  ],
//	  "sequences": [
//	    {"times": [0, 1.5], "observations": [{"C": "a", "X": "lo"}, {"C": "a", "X": "hi"}]}
//	  ]
//	}
//
// ReadDataset returns an error if a variable name is invalid or duplicated,
// an observation omits a variable or uses an undeclared state, timestamps
// are not strictly increasing, or a class variable changes within a
// sequence. Errors name the offending sequence. ReadDataset does not close r.
func ReadDataset(r io.Reader) (*dataset.Dataset, error) {
	var doc datasetDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode")
	}
	for _, v := range doc.Variables {
		if err := errors.ValidateVariableName(v.Name); err != nil {
			return nil, err
		}
	}
	b, err := dataset.New(doc.Variables)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "variables")
	}
	for i, s := range doc.Sequences {
		if err := b.Add(s.Times, s.Observations); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "sequence %d", i)
		}
	}
	return b.Build(), nil
}

// ImportDataset reads the JSON dataset file at path.
func ImportDataset(path string) (*dataset.Dataset, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
	}
	defer f.Close()
	return ReadDataset(f)
}

// WriteDataset encodes d in the format read by [ReadDataset]. The encoding
// is deterministic, so it can be hashed to identify the dataset.
func WriteDataset(d *dataset.Dataset, w io.Writer) error {
	vars := d.Variables()
	doc := datasetDoc{Variables: vars, Sequences: make([]sequenceDoc, len(d.Sequences()))}
	for i, seq := range d.Sequences() {
		obs := make([]map[string]string, seq.Len())
		for t, vals := range seq.Values {
			row := make(map[string]string, len(vars))
			for v, s := range vals {
				row[vars[v].Name] = vars[v].States[s]
			}
			obs[t] = row
		}
		doc.Sequences[i] = sequenceDoc{Times: seq.Times, Observations: obs}
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportDataset writes d to a JSON file at path.
func ExportDataset(d *dataset.Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDataset(d, f)
}
