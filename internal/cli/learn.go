package cli

import (
	"context"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mctbnc/pkg/config"
	"github.com/matzehuels/mctbnc/pkg/dataset"
	mio "github.com/matzehuels/mctbnc/pkg/io"
	"github.com/matzehuels/mctbnc/pkg/learn"
	"github.com/matzehuels/mctbnc/pkg/model"
	"github.com/matzehuels/mctbnc/pkg/render"
)

// learnOpts holds the command-line flags for the learn command.
type learnOpts struct {
	config  string            // TOML or YAML hyperparameter file
	set     map[string]string // hyperparameter overrides
	output  string            // model JSON path
	svg     string            // optional structure diagram path
	bn      []string          // learn a static network over these variables only
	show    bool              // print parent and adjacency tables
	metrics string            // address to serve Prometheus metrics on
	cache   cacheOpts
}

// learnCommand creates the learn command.
func (c *CLI) learnCommand() *cobra.Command {
	opts := learnOpts{output: "model.json"}

	cmd := &cobra.Command{
		Use:   "learn [dataset]",
		Short: "Learn a classifier from a JSON dataset",
		Long: `Learn the structure and parameters of a multi-dimensional continuous-time
Bayesian network classifier. Hyperparameters come from --config and --set,
using the keys of the flat hyperparameter map (scoreFunction, maxK, ...).

With --bn, a static Bayesian network is learned over the named variables instead.`,
		Example: `  mctbnc learn train.json -c run.toml
  mctbnc learn train.json --set scoreFunction="Conditional log-likelihood" --set maxK=2
  mctbnc learn train.json --bn A,B,Out --set penalisationFunction=No`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLearn(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "hyperparameter file (.toml, .yaml)")
	cmd.Flags().StringToStringVar(&opts.set, "set", nil, "override a hyperparameter (key=value, repeatable)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "model output file")
	cmd.Flags().StringVar(&opts.svg, "svg", "", "also render the learned structure to this SVG file")
	cmd.Flags().StringSliceVar(&opts.bn, "bn", nil, "learn a static network over these variables (comma-separated)")
	cmd.Flags().BoolVar(&opts.show, "show", false, "print the learned parent sets and adjacency matrix")
	cmd.Flags().StringVar(&opts.metrics, "metrics", "", "serve Prometheus metrics on this address while learning (e.g. :9090)")
	_ = cmd.RegisterFlagCompletionFunc("set", completeHyperparameter)
	_ = cmd.MarkFlagFilename("config", "toml", "yaml", "yml")
	opts.cache.register(cmd)

	return cmd
}

// hyperparameters merges the config file at path (if any) with overrides.
func hyperparameters(path string, overrides map[string]string) (map[string]string, error) {
	if path == "" {
		return maps.Clone(overrides), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg.Merge(overrides), nil
}

func (c *CLI) runLearn(ctx context.Context, path string, opts learnOpts) error {
	params, err := hyperparameters(opts.config, opts.set)
	if err != nil {
		return err
	}
	o, err := learn.ParseOptions(params)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	d, err := mio.ImportDataset(path)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Imported %d sequences, %d observations", d.NumDataPoints(), d.NumObservations()))

	stopMetrics, err := serveMetrics(opts.metrics, c.Logger)
	if err != nil {
		return err
	}
	defer stopMetrics()

	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Learning")
	runner.Hooks = spinner
	spinner.Start()
	out, err := learnModel(ctx, runner, d, o, opts)
	if err != nil {
		spinner.StopWithError("Learning failed")
		return err
	}
	spinner.Stop()

	if err := mio.ExportModel(out.doc, opts.output); err != nil {
		return err
	}

	printSuccess("Learned %s", out.kind)
	if out.cached {
		printWarning("loaded from cache; pass --refresh to learn again")
	}
	for _, n := range out.networks {
		printStats(n.net.Size(), n.net.Structure().EdgeCount(), out.doc.Scores[n.scoreKey], out.cached)
	}
	printFile(opts.output)

	if opts.svg != "" {
		last := out.networks[len(out.networks)-1].net
		svg, err := render.RenderSVG(ctx, render.ToDOT(render.NodesOf(last), last.Structure(), render.Options{}))
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.svg, svg, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.svg, err)
		}
		printFile(opts.svg)
	}

	if opts.show {
		for _, n := range out.networks {
			printNewline()
			fmt.Println(StyleTitle.Render(n.title))
			fmt.Println(parentTable(n.net))
			fmt.Println(matrixTable(n.net))
		}
	}

	printNewline()
	printNextStep("Render it", fmt.Sprintf("%s render %s", appName, opts.output))
	return nil
}

type learnedNetwork struct {
	title    string
	scoreKey string
	net      *model.Network
}

type learnOutput struct {
	kind     string
	doc      *mio.Document
	cached   bool
	networks []learnedNetwork
}

func learnModel(ctx context.Context, runner *learn.Runner, d *dataset.Dataset, o learn.Options, opts learnOpts) (*learnOutput, error) {
	if len(opts.bn) > 0 {
		vars, err := d.Indices(opts.bn...)
		if err != nil {
			return nil, err
		}
		run, err := runner.LearnBN(ctx, d, vars, o, opts.cache.refresh)
		if err != nil {
			return nil, err
		}
		return &learnOutput{
			kind:   "static network over " + strings.Join(opts.bn, ", "),
			doc:    run.Document,
			cached: run.CacheHit,
			networks: []learnedNetwork{
				{title: "Static network", scoreKey: "network", net: &run.Network.Network},
			},
		}, nil
	}

	run, err := runner.LearnClassifier(ctx, d, o, opts.cache.refresh)
	if err != nil {
		return nil, err
	}
	return &learnOutput{
		kind:   "classifier",
		doc:    run.Document,
		cached: run.CacheHit,
		networks: []learnedNetwork{
			{title: "Class network", scoreKey: "class_network", net: &run.Classifier.Classes.Network},
			{title: "Feature network", scoreKey: "feature_network", net: &run.Classifier.Features.Network},
		},
	}, nil
}
