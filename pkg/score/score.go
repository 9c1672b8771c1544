// Package score ranks candidate network structures.
//
// Every function evaluates a network whose parameters and sufficient
// statistics have already been fitted for the structure under test.
// Decomposable functions also evaluate single nodes; their network score is
// the sum of the node scores, which is what lets a search optimize each
// node's parent set independently.
//
// # Penalization
//
// Likelihood scores may subtract complexity(node) × weight(sampleSize) per
// node, where the weight is 0.5·ln(N) for BIC, 1 for AIC and 0 without
// penalization. Bayesian-Dirichlet scores are never penalized: the prior
// already accounts for complexity.
//
// # Degenerate statistics
//
// Cells without evidence (zero counts, zero elapsed time, zero intensity)
// contribute nothing to a log-likelihood sum; no function returns NaN for
// a fitted network.
package score

import (
	"fmt"
	"math"

	"github.com/matzehuels/mctbnc/pkg/errors"
	"github.com/matzehuels/mctbnc/pkg/model"
)

// Kind identifies a score function.
type Kind int

const (
	// LogLikelihood is the (optionally penalized) log-likelihood.
	LogLikelihood Kind = iota
	// BayesianDirichlet is the Bayesian-Dirichlet equivalent marginal likelihood.
	BayesianDirichlet
	// ConditionalLogLikelihood is the discriminative classifier score.
	ConditionalLogLikelihood
)

// Score function names as they appear in hyperparameter maps.
const (
	NameLogLikelihood            = "Log-likelihood"
	NameBayesianDirichlet        = "Bayesian Dirichlet equivalent"
	NameConditionalLogLikelihood = "Conditional log-likelihood"
)

// String returns the configuration name.
func (k Kind) String() string {
	switch k {
	case LogLikelihood:
		return NameLogLikelihood
	case BayesianDirichlet:
		return NameBayesianDirichlet
	case ConditionalLogLikelihood:
		return NameConditionalLogLikelihood
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Decomposable reports whether functions of this kind decompose per node.
func (k Kind) Decomposable() bool { return k != ConditionalLogLikelihood }

// ParseKind resolves a configuration name.
func ParseKind(s string) (Kind, error) {
	switch s {
	case NameLogLikelihood:
		return LogLikelihood, nil
	case NameBayesianDirichlet:
		return BayesianDirichlet, nil
	case NameConditionalLogLikelihood:
		return ConditionalLogLikelihood, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidScore, "unknown score function %q", s)
	}
}

// Penalization is the per-parameter complexity penalty of likelihood scores.
type Penalization int

const (
	NoPenalization Penalization = iota
	BIC
	AIC
)

// String returns the configuration name.
func (p Penalization) String() string {
	switch p {
	case NoPenalization:
		return "No"
	case BIC:
		return "BIC"
	case AIC:
		return "AIC"
	default:
		return fmt.Sprintf("Penalization(%d)", int(p))
	}
}

// ParsePenalization resolves a configuration name.
func ParsePenalization(s string) (Penalization, error) {
	switch s {
	case "No":
		return NoPenalization, nil
	case "BIC":
		return BIC, nil
	case "AIC":
		return AIC, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidPenalization, "unknown penalization function %q", s)
	}
}

// Weight returns the penalty per free parameter for a sample of the given size.
func (p Penalization) Weight(sampleSize int) float64 {
	switch p {
	case BIC:
		if sampleSize <= 1 {
			return 0
		}
		return 0.5 * math.Log(float64(sampleSize))
	case AIC:
		return 1
	default:
		return 0
	}
}

// StaticFunction scores static networks.
type StaticFunction interface {
	Name() string
	Decomposable() bool
	// Compute returns the score of the whole network.
	Compute(b *model.BN) float64
	// ComputeNode returns node j's contribution. Non-decomposable functions
	// return the whole network score.
	ComputeNode(b *model.BN, j int) float64
}

// ContinuousFunction scores continuous-time networks.
type ContinuousFunction interface {
	Name() string
	Decomposable() bool
	// Compute returns the score of the whole network.
	Compute(c *model.CTBN) float64
	// ComputeNode returns node j's contribution. Class nodes contribute
	// zero; non-decomposable functions return the whole network score.
	ComputeNode(c *model.CTBN, j int) float64
}

// StaticComplexity returns the number of free parameters of a static node:
// parent states × (states - 1).
func StaticComplexity(cpt *model.CPT) float64 {
	ctx := cpt.Context()
	return float64(ctx.ParentStates() * (ctx.States - 1))
}

// ContinuousComplexity returns the number of free parameters of a
// continuous-time node: parent states × states × (states - 1).
func ContinuousComplexity(cim *model.CIM) float64 {
	ctx := cim.Context()
	return float64(ctx.ParentStates() * ctx.States * (ctx.States - 1))
}

// sumNodes adds up ComputeNode over every node.
func sumNodes(n int, node func(j int) float64) float64 {
	total := 0.0
	for j := 0; j < n; j++ {
		total += node(j)
	}
	return total
}

// xlogy returns x·log(y), treating cells without evidence as zero.
func xlogy(x, y float64) float64 {
	if x == 0 || y <= 0 {
		return 0
	}
	return x * math.Log(y)
}
