// Package learn is the entry point of structure learning.
//
// A [Learner] turns a dataset and a set of [Options] into learned networks:
// it builds the legality constraints, binds the network to its estimator
// and score through a search objective, runs the configured search and
// fits the final parameters.
//
// Two models can be learned:
//
//   - [Learner.LearnBN]: a static Bayesian network over any subset of the
//     dataset's variables, constrained to be acyclic with bounded fan-in.
//   - [Learner.LearnClassifier]: a multi-dimensional continuous-time
//     classifier. A static network over the class variables is learned
//     first; then a continuous-time network over all variables, where class
//     variables may only be parents. Under the conditional log-likelihood
//     the learned class network supplies the class prior.
//
// # Usage
//
//	opts, err := learn.ParseOptions(map[string]string{
//	    "scoreFunction":        "Log-likelihood",
//	    "penalisationFunction": "BIC",
//	    "searchAlgorithm":      "Per-node hill climbing",
//	})
//	if err != nil {
//	    return err
//	}
//	res, err := learn.New(opts).LearnClassifier(ctx, data, nil)
package learn

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/mctbnc/pkg/dataset"
	"github.com/matzehuels/mctbnc/pkg/errors"
	"github.com/matzehuels/mctbnc/pkg/graph"
	"github.com/matzehuels/mctbnc/pkg/model"
	"github.com/matzehuels/mctbnc/pkg/observability"
	"github.com/matzehuels/mctbnc/pkg/search"
)

// Learner runs structure learning. It holds no state between runs and may
// be shared by goroutines.
type Learner struct {
	Options Options

	// Hooks receives search events; nil uses the registered global hooks.
	Hooks observability.SearchHooks
}

// New returns a learner for the given options.
func New(opts Options) *Learner {
	return &Learner{Options: opts}
}

// Summary describes one structure search.
type Summary struct {
	Algorithm  string
	Score      float64
	Iterations int
	Evaluated  int
	Duration   time.Duration
}

// BNResult is a learned static network.
type BNResult struct {
	ID      string
	Network *model.BN
	Summary Summary
}

// ClassifierResult is a learned classifier with the summaries of both
// searches.
type ClassifierResult struct {
	ID       string
	Model    *model.Classifier
	Classes  Summary
	Features Summary
}

// LearnBN learns a static network over the dataset variables vars. The
// optional initial structure is indexed like the network's nodes, which are
// vars in ascending order.
func (l *Learner) LearnBN(ctx context.Context, d *dataset.Dataset, vars []int, initial *graph.Structure) (*BNResult, error) {
	if err := l.Options.Validate(); err != nil {
		return nil, err
	}
	logger := l.Options.logger()
	began := time.Now()
	observability.Learn().OnLearnStart(ctx, "bn", len(vars))

	net, sum, err := l.learnBN(ctx, d, vars, initial)
	observability.Learn().OnLearnComplete(ctx, "bn", time.Since(began), err)
	if err != nil {
		return nil, err
	}
	logger.Info("learned static network",
		"nodes", net.Size(),
		"edges", net.Structure().EdgeCount(),
		"score", sum.Score,
		"duration", sum.Duration)
	return &BNResult{ID: uuid.NewString(), Network: net, Summary: sum}, nil
}

func (l *Learner) learnBN(ctx context.Context, d *dataset.Dataset, vars []int, initial *graph.Structure) (*model.BN, Summary, error) {
	net, err := model.NewBN(d, vars)
	if err != nil {
		return nil, Summary{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "static network")
	}
	o := l.Options
	kind := o.Algorithm
	if kind == search.KindPerNode {
		// Acyclicity couples columns; fall back to the global climb.
		o.logger().Debug("per-node search needs a column-local constraint", "using", search.NameHillClimbing)
		kind = search.KindHillClimbing
	}
	constraint := graph.All{graph.Acyclic{}, graph.MaxParents{K: o.MaxK}}
	strategy, err := search.New(search.Config{
		Kind:          kind,
		Constraint:    constraint,
		MaxIterations: o.MaxIterations,
		Workers:       o.Workers,
		TabuSize:      o.TabuSize,
		Restarts:      o.Restarts,
		Seed:          o.Seed,
		Hooks:         l.Hooks,
	})
	if err != nil {
		return nil, Summary{}, err
	}

	obj := newBNObjective(net.Clone(), o.Estimator, o.StaticScore())
	began := time.Now()
	res, err := strategy.Search(ctx, obj, initial)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("static search: %w", err)
	}
	if err := net.SetStructure(res.Structure); err != nil {
		return nil, Summary{}, err
	}
	o.Estimator.FitBN(net)
	return net, summarize(strategy, res, time.Since(began)), nil
}

// LearnClassifier learns a classifier over all variables of d. The optional
// initial structure seeds the continuous-time search; it is indexed by
// dataset variable and must leave class variables without parents.
func (l *Learner) LearnClassifier(ctx context.Context, d *dataset.Dataset, initial *graph.Structure) (*ClassifierResult, error) {
	if err := l.Options.Validate(); err != nil {
		return nil, err
	}
	logger := l.Options.logger()
	began := time.Now()
	observability.Learn().OnLearnStart(ctx, "classifier", d.NumVariables())

	res, err := l.learnClassifier(ctx, d, initial)
	observability.Learn().OnLearnComplete(ctx, "classifier", time.Since(began), err)
	if err != nil {
		return nil, err
	}
	logger.Info("learned classifier",
		"classes", len(d.ClassIndices()),
		"features", len(d.FeatureIndices()),
		"class_edges", res.Model.Classes.Structure().EdgeCount(),
		"feature_edges", res.Model.Features.Structure().EdgeCount(),
		"score", res.Features.Score,
		"duration", time.Since(began))
	return res, nil
}

func (l *Learner) learnClassifier(ctx context.Context, d *dataset.Dataset, initial *graph.Structure) (*ClassifierResult, error) {
	clf, err := model.NewClassifier(d)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "classifier")
	}
	logger := l.Options.logger()

	logger.Debug("learning class network", "variables", len(d.ClassIndices()))
	classes, classSum, err := l.learnBN(ctx, d, d.ClassIndices(), nil)
	if err != nil {
		return nil, fmt.Errorf("class network: %w", err)
	}
	clf.Classes = classes

	logger.Debug("learning feature network", "variables", d.NumVariables())
	features, featSum, err := l.learnCTBN(ctx, clf.Features, classes, initial)
	if err != nil {
		return nil, fmt.Errorf("feature network: %w", err)
	}
	clf.Features = features

	return &ClassifierResult{ID: uuid.NewString(), Model: clf, Classes: classSum, Features: featSum}, nil
}

func (l *Learner) learnCTBN(ctx context.Context, net *model.CTBN, prior *model.BN, initial *graph.Structure) (*model.CTBN, Summary, error) {
	o := l.Options
	classNodes := net.ClassNodes()
	constraint := graph.All{graph.RootsOnly{Nodes: classNodes}, graph.MaxParents{K: o.MaxK}}
	strategy, err := search.New(search.Config{
		Kind:          o.Algorithm,
		Constraint:    constraint,
		MaxIterations: o.MaxIterations,
		Workers:       o.Workers,
		TabuSize:      o.TabuSize,
		Restarts:      o.Restarts,
		Nodes:         net.FeatureNodes(),
		FixedRoots:    classNodes,
		Seed:          o.Seed,
		Hooks:         l.Hooks,
	})
	if err != nil {
		return nil, Summary{}, err
	}

	obj := newCTBNObjective(net.Clone(), o.Estimator, o.ContinuousScore(prior))
	began := time.Now()
	res, err := strategy.Search(ctx, obj, initial)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("continuous search: %w", err)
	}
	out := net.Clone()
	if err := out.SetStructure(res.Structure); err != nil {
		return nil, Summary{}, err
	}
	o.Estimator.FitCTBN(out)
	return out, summarize(strategy, res, time.Since(began)), nil
}

func summarize(s search.Strategy, r *search.Result, d time.Duration) Summary {
	return Summary{
		Algorithm:  s.Name(),
		Score:      r.Score,
		Iterations: r.Iterations,
		Evaluated:  r.Evaluated,
		Duration:   d,
	}
}
