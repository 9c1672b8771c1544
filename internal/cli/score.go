package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	mio "github.com/matzehuels/mctbnc/pkg/io"
	"github.com/matzehuels/mctbnc/pkg/learn"
)

// scoreCommand creates the score command.
func (c *CLI) scoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "score [model] [dataset]",
		Short: "Score a learned model against a fresh batch of sequences",
		Long: `Score a learned model against a new dataset without re-learning it.
Sufficient statistics are recounted on the batch while the learned parameters
are kept; the score function is the one the model was learned with. A score
well below the training score suggests the batch comes from a different
distribution.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScore(cmd.Context(), args[0], args[1])
		},
	}
}

func (c *CLI) runScore(_ context.Context, modelPath, dataPath string) error {
	doc, err := mio.ImportModel(modelPath)
	if err != nil {
		return err
	}
	o, err := learn.ParseOptions(doc.Hyperparameters)
	if err != nil {
		return fmt.Errorf("model hyperparameters: %w", err)
	}
	batch, err := mio.ImportDataset(dataPath)
	if err != nil {
		return err
	}
	c.Logger.Debug("scoring batch", "model", doc.ID, "sequences", batch.NumDataPoints())

	var trained, scored float64
	if doc.Features != nil {
		clf, err := doc.Classifier(batch)
		if err != nil {
			return err
		}
		trained = doc.Scores["feature_network"]
		scored = o.RescoreClassifier(clf, batch)
	} else {
		b, err := doc.BN(batch)
		if err != nil {
			return err
		}
		trained = doc.Scores["network"]
		scored = learn.RescoreBN(b, batch, o.StaticScore())
	}

	printSuccess("Scored %s", modelPath)
	printKeyValue("Score function", o.Score.String())
	printKeyValue("Penalization", o.Penalty.String())
	printKeyValue("Training score", fmt.Sprintf("%.4f", trained))
	printKeyValue("Batch score", StyleNumber.Render(fmt.Sprintf("%.4f", scored)))
	printKeyValue("Sequences", fmt.Sprintf("%d", batch.NumDataPoints()))
	return nil
}
