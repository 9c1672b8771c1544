package learn

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mctbnc/pkg/cache"
	"github.com/matzehuels/mctbnc/pkg/dataset"
	mio "github.com/matzehuels/mctbnc/pkg/io"
	"github.com/matzehuels/mctbnc/pkg/model"
	"github.com/matzehuels/mctbnc/pkg/observability"
)

// Model kinds used in cache keys.
const (
	kindBN         = "bn"
	kindClassifier = "classifier"
)

// Runner wraps a [Learner] with a model cache. A run whose dataset content
// and hyperparameters match a cached document skips the search: the stored
// structure and parameters are bound to the dataset instead.
//
// The Runner holds no per-run state. Multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Hooks receives search events of fresh runs; nil uses the global hooks.
	Hooks observability.SearchHooks
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// ClassifierRun is the outcome of [Runner.LearnClassifier].
type ClassifierRun struct {
	Document   *mio.Document
	Classifier *model.Classifier
	CacheHit   bool

	// Result is nil on a cache hit.
	Result *ClassifierResult
}

// BNRun is the outcome of [Runner.LearnBN].
type BNRun struct {
	Document *mio.Document
	Network  *model.BN
	CacheHit bool

	// Result is nil on a cache hit.
	Result *BNResult
}

// LearnClassifier learns a classifier over d, consulting the cache first
// unless refresh is set.
func (r *Runner) LearnClassifier(ctx context.Context, d *dataset.Dataset, opts Options, refresh bool) (*ClassifierRun, error) {
	r.applyLogger(&opts)
	key, err := r.modelKey(kindClassifier, d, opts.Hyperparameters())
	if err != nil {
		return nil, err
	}

	if !refresh {
		if doc, ok := r.lookup(ctx, key); ok {
			clf, err := doc.Classifier(d)
			if err == nil {
				r.Logger.Info("loaded cached classifier", "id", doc.ID)
				return &ClassifierRun{Document: doc, Classifier: clf, CacheHit: true}, nil
			}
			r.Logger.Warn("discarding cached classifier", "id", doc.ID, "error", err)
		}
	}

	res, err := r.learner(opts).LearnClassifier(ctx, d, nil)
	if err != nil {
		return nil, err
	}
	doc := mio.NewClassifierDocument(res.ID, res.Model, opts.Hyperparameters())
	doc.Scores = map[string]float64{
		"class_network":   res.Classes.Score,
		"feature_network": res.Features.Score,
	}
	r.store(ctx, key, doc)
	return &ClassifierRun{Document: doc, Classifier: res.Model, Result: res}, nil
}

// LearnBN learns a static network over the variables vars of d, consulting
// the cache first unless refresh is set.
func (r *Runner) LearnBN(ctx context.Context, d *dataset.Dataset, vars []int, opts Options, refresh bool) (*BNRun, error) {
	r.applyLogger(&opts)
	params := maps.Clone(opts.Hyperparameters())
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = d.Variable(v).Name
	}
	params["variables"] = strings.Join(names, ",")
	key, err := r.modelKey(kindBN, d, params)
	if err != nil {
		return nil, err
	}

	if !refresh {
		if doc, ok := r.lookup(ctx, key); ok {
			net, err := doc.BN(d)
			if err == nil {
				r.Logger.Info("loaded cached network", "id", doc.ID)
				return &BNRun{Document: doc, Network: net, CacheHit: true}, nil
			}
			r.Logger.Warn("discarding cached network", "id", doc.ID, "error", err)
		}
	}

	res, err := r.learner(opts).LearnBN(ctx, d, vars, nil)
	if err != nil {
		return nil, err
	}
	doc := mio.NewBNDocument(res.ID, res.Network, opts.Hyperparameters())
	doc.Scores = map[string]float64{"network": res.Summary.Score}
	r.store(ctx, key, doc)
	return &BNRun{Document: doc, Network: res.Network, Result: res}, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) modelKey(kind string, d *dataset.Dataset, params map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := mio.WriteDataset(d, &buf); err != nil {
		return "", fmt.Errorf("hash dataset: %w", err)
	}
	return r.Keyer.ModelKey(kind, cache.Hash(buf.Bytes()), params), nil
}

func (r *Runner) lookup(ctx context.Context, key string) (*mio.Document, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeModel)
		return nil, false
	}
	doc, err := mio.ReadModel(bytes.NewReader(data))
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeModel)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, cache.KeyTypeModel)
	return doc, true
}

func (r *Runner) store(ctx context.Context, key string, doc *mio.Document) {
	var buf bytes.Buffer
	if err := mio.WriteModel(doc, &buf); err != nil {
		r.Logger.Warn("cache encode failed", "error", err)
		return
	}
	if err := r.Cache.Set(ctx, key, buf.Bytes(), cache.DefaultTTL); err != nil {
		r.Logger.Warn("cache store failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cache.KeyTypeModel, buf.Len())
}

func (r *Runner) learner(opts Options) *Learner {
	l := New(opts)
	l.Hooks = r.Hooks
	return l
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
