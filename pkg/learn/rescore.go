package learn

import (
	"github.com/matzehuels/mctbnc/pkg/dataset"
	"github.com/matzehuels/mctbnc/pkg/estimate"
	"github.com/matzehuels/mctbnc/pkg/model"
	"github.com/matzehuels/mctbnc/pkg/score"
)

// RescoreBN scores a learned static network against a fresh batch without
// searching or re-estimating: statistics are recounted on batch while the
// learned probabilities are kept. A drop relative to the training score
// signals that the batch was drawn from a different distribution.
func RescoreBN(b *model.BN, batch *dataset.Dataset, fn score.StaticFunction) float64 {
	return fn.Compute(estimate.RecountBN(b, batch))
}

// RescoreCTBN is the continuous-time counterpart of [RescoreBN].
func RescoreCTBN(c *model.CTBN, batch *dataset.Dataset, fn score.ContinuousFunction) float64 {
	return fn.Compute(estimate.RecountCTBN(c, batch))
}

// RescoreClassifier scores a learned classifier's feature network against
// batch with the configured continuous-time score, using the classifier's
// class network as the prior.
func (o Options) RescoreClassifier(clf *model.Classifier, batch *dataset.Dataset) float64 {
	return RescoreCTBN(clf.Features, batch, o.ContinuousScore(clf.Classes.Rebind(batch)))
}
