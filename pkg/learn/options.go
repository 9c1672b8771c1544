package learn

import (
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mctbnc/pkg/errors"
	"github.com/matzehuels/mctbnc/pkg/estimate"
	"github.com/matzehuels/mctbnc/pkg/model"
	"github.com/matzehuels/mctbnc/pkg/score"
	"github.com/matzehuels/mctbnc/pkg/search"
)

// Hyperparameter keys of the flat configuration map.
const (
	KeyScore         = "scoreFunction"
	KeyPenalization  = "penalisationFunction"
	KeyMaxK          = "maxK"
	KeyRestarts      = "numRestarts"
	KeyTabuSize      = "tabuListSize"
	KeyNX            = "nx"
	KeyMXY           = "mxy"
	KeyTX            = "tx"
	KeyAlgorithm     = "searchAlgorithm"
	KeyEstimator     = "estimator"
	KeySeed          = "seed"
	KeyWorkers       = "workers"
	KeyMaxIterations = "maxIterations"
)

// Defaults for keys absent from the hyperparameter map.
const (
	DefaultMaxK     = 3
	DefaultRestarts = 5
	DefaultNX       = 1.0
	DefaultMXY      = 1.0
	DefaultTX       = 0.001
	DefaultSeed     = search.DefaultSeed
)

// Options configures a learning run.
type Options struct {
	Score     score.Kind
	Penalty   score.Penalization
	Estimator estimate.Estimator
	Algorithm search.Kind

	MaxK          int // fan-in bound; zero disables it
	Restarts      int
	TabuSize      int
	MaxIterations int
	Workers       int
	Seed          uint64

	// Logger receives progress; nil discards.
	Logger *log.Logger `json:"-"`
}

// DefaultOptions returns BIC-penalized log-likelihood hill climbing with
// maximum-likelihood parameters.
func DefaultOptions() Options {
	return Options{
		Score:     score.LogLikelihood,
		Penalty:   score.BIC,
		Estimator: estimate.Estimator{Method: estimate.MaxLikelihood, NX: DefaultNX, MXY: DefaultMXY, TX: DefaultTX},
		Algorithm: search.KindHillClimbing,
		MaxK:      DefaultMaxK,
		Restarts:  DefaultRestarts,
		TabuSize:  search.DefaultTabuSize,
		Seed:      DefaultSeed,
	}
}

// ParseOptions builds options from a flat hyperparameter map. Absent keys
// take the defaults of [DefaultOptions]; unknown keys and unknown values
// are rejected.
func ParseOptions(params map[string]string) (Options, error) {
	o := DefaultOptions()
	for _, key := range slices.Sorted(maps.Keys(params)) {
		if err := errors.ValidateHyperparameterKey(key); err != nil {
			return Options{}, err
		}
		if err := o.set(key, params[key]); err != nil {
			return Options{}, err
		}
	}
	if o.Score == score.BayesianDirichlet {
		if _, ok := params[KeyPenalization]; !ok {
			o.Penalty = score.NoPenalization
		}
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

func (o *Options) set(key, value string) error {
	var err error
	switch key {
	case KeyScore:
		o.Score, err = score.ParseKind(value)
	case KeyPenalization:
		o.Penalty, err = score.ParsePenalization(value)
	case KeyAlgorithm:
		o.Algorithm, err = search.ParseKind(value)
	case KeyEstimator:
		o.Estimator.Method, err = estimate.ParseMethod(value)
	case KeyMaxK:
		o.MaxK, err = parseInt(key, value)
	case KeyRestarts:
		o.Restarts, err = parseInt(key, value)
	case KeyTabuSize:
		o.TabuSize, err = parseInt(key, value)
	case KeyMaxIterations:
		o.MaxIterations, err = parseInt(key, value)
	case KeyWorkers:
		o.Workers, err = parseInt(key, value)
	case KeyNX:
		o.Estimator.NX, err = parseFloat(key, value)
	case KeyMXY:
		o.Estimator.MXY, err = parseFloat(key, value)
	case KeyTX:
		o.Estimator.TX, err = parseFloat(key, value)
	case KeySeed:
		o.Seed, err = strconv.ParseUint(value, 10, 64)
		if err != nil {
			err = errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", key)
		}
	default:
		err = errors.New(errors.ErrCodeInvalidConfig, "unknown hyperparameter %q", key)
	}
	return err
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", key)
	}
	if v < 0 {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "%s must be non-negative, got %d", key, v)
	}
	return v, nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", key)
	}
	return v, nil
}

// Validate checks combinations that no search could honor.
func (o Options) Validate() error {
	if err := o.Estimator.Validate(); err != nil {
		return err
	}
	if o.Score == score.BayesianDirichlet {
		if o.Penalty != score.NoPenalization {
			return errors.New(errors.ErrCodeInvalidPenalization, "%s is not penalized, got %s", score.NameBayesianDirichlet, o.Penalty)
		}
		if o.Estimator.NX <= 0 || o.Estimator.MXY <= 0 || o.Estimator.TX <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s needs positive nx, mxy and tx", score.NameBayesianDirichlet)
		}
	}
	if o.Algorithm == search.KindPerNode && !o.Score.Decomposable() {
		return errors.New(errors.ErrCodeInvalidAlgorithm, "%s cannot optimize the non-decomposable %s", search.NamePerNode, o.Score)
	}
	return nil
}

// Hyperparameters renders o back into the flat map form. Parsing the result
// yields o again.
func (o Options) Hyperparameters() map[string]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return map[string]string{
		KeyScore:         o.Score.String(),
		KeyPenalization:  o.Penalty.String(),
		KeyAlgorithm:     o.Algorithm.String(),
		KeyEstimator:     o.Estimator.Method.String(),
		KeyMaxK:          strconv.Itoa(o.MaxK),
		KeyRestarts:      strconv.Itoa(o.Restarts),
		KeyTabuSize:      strconv.Itoa(o.TabuSize),
		KeyMaxIterations: strconv.Itoa(o.MaxIterations),
		KeyWorkers:       strconv.Itoa(o.Workers),
		KeyNX:            f(o.Estimator.NX),
		KeyMXY:           f(o.Estimator.MXY),
		KeyTX:            f(o.Estimator.TX),
		KeySeed:          strconv.FormatUint(o.Seed, 10),
	}
}

// StaticScore returns the score used for static networks. The conditional
// log-likelihood only applies to the feature network, so class networks
// learned under it use the log-likelihood with the same penalty.
func (o Options) StaticScore() score.StaticFunction {
	if o.Score == score.BayesianDirichlet {
		return score.StaticBDe{NX: o.Estimator.NX}
	}
	return score.StaticLogLikelihood{Penalty: o.Penalty}
}

// ContinuousScore returns the score used for continuous-time networks.
// prior is the class network consulted by the conditional log-likelihood.
func (o Options) ContinuousScore(prior *model.BN) score.ContinuousFunction {
	switch o.Score {
	case score.BayesianDirichlet:
		return score.ContinuousBDe{MXY: o.Estimator.MXY, TX: o.Estimator.TX}
	case score.ConditionalLogLikelihood:
		return score.NewConditionalLL(o.Penalty, prior)
	default:
		return score.ContinuousLogLikelihood{Penalty: o.Penalty}
	}
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return o.Logger
}
