package model

import (
	"fmt"

	"github.com/matzehuels/mctbnc/pkg/dataset"
)

// Classifier couples a static network over the class variables with a
// continuous-time network over every variable, in which class variables
// may only act as parents.
type Classifier struct {
	Classes  *BN
	Features *CTBN
}

// NewClassifier builds an unlearned classifier over all variables of d.
// The dataset must declare at least one class and one feature variable.
func NewClassifier(d *dataset.Dataset) (*Classifier, error) {
	if len(d.ClassIndices()) == 0 {
		return nil, fmt.Errorf("%w: dataset has no class variables", ErrNoVariables)
	}
	if len(d.FeatureIndices()) == 0 {
		return nil, fmt.Errorf("%w: dataset has no feature variables", ErrNoVariables)
	}
	bn, err := NewBN(d, d.ClassIndices())
	if err != nil {
		return nil, fmt.Errorf("class network: %w", err)
	}
	all := make([]int, d.NumVariables())
	for i := range all {
		all[i] = i
	}
	ctbn, err := NewCTBN(d, all)
	if err != nil {
		return nil, fmt.Errorf("feature network: %w", err)
	}
	return &Classifier{Classes: bn, Features: ctbn}, nil
}
