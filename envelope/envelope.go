// Package envelope evaluates the convex envelope of f(w, y) over W × conv(Y),
// where W is a box, Y a finite point set, and f convex in w for every y in Y.
//
// At a query (w, y) every simplex of Y containing y yields the upper bound
//
//	min Σ a_i f(θ_i, y_i)  s.t.  Σ a_i θ_i = w,  θ_i ∈ W
//
// with a the barycentric weights of y in the simplex. The envelope value is
// the smallest of these bounds.
package envelope

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/notargets/convexenv/types"
	"github.com/notargets/convexenv/utils"
)

// Function is f(w, y). It must be pure and must not retain or modify its
// arguments.
type Function func(w, y []float64) float64

// Envelope holds validated inputs and is safe for concurrent use.
type Envelope struct {
	W    types.Box
	Y    types.PointSet
	F    Function
	opts options
}

// Result reports one evaluation.
type Result struct {
	Value      float64
	Best       int // Index into Candidates of the minimizing candidate
	Candidates []Candidate
	Stats      EnumerationStats
}

func New(W types.Box, Y types.PointSet, f Function, opts ...Option) (env *Envelope, err error) {
	if err = W.Validate(); err != nil {
		return nil, fmt.Errorf("%w: W: %w", ErrInvalidInput, err)
	}
	if err = Y.Validate(); err != nil {
		return nil, fmt.Errorf("%w: Y: %w", ErrInvalidInput, err)
	}
	if f == nil {
		return nil, fmt.Errorf("%w: f is nil", ErrInvalidInput)
	}
	env = &Envelope{W: W, Y: Y, F: f, opts: defaultOptions()}
	for _, opt := range opts {
		opt(&env.opts)
	}
	if env.opts.logger == nil {
		env.opts.logger = slog.Default()
	}
	return
}

// Compute returns the envelope of f at (w, y) with default options.
func Compute(w, y []float64, W types.Box, Y types.PointSet, f Function) (float64, error) {
	env, err := New(W, Y, f)
	if err != nil {
		return math.NaN(), err
	}
	return env.At(w, y)
}

func (env *Envelope) At(w, y []float64) (float64, error) {
	res, err := env.Evaluate(context.Background(), w, y)
	if err != nil {
		return math.NaN(), err
	}
	return res.Value, nil
}

// Evaluate enumerates the simplices of Y containing y, evaluates each
// candidate and returns the smallest value along with every candidate.
func (env *Envelope) Evaluate(ctx context.Context, w, y []float64) (res *Result, err error) {
	start := time.Now()
	defer func() {
		evaluationDuration.Observe(time.Since(start).Seconds())
		evaluationsTotal.WithLabelValues(outcome(err)).Inc()
	}()
	if err = env.checkQuery(w, y); err != nil {
		return
	}

	simplices, stats := Enumerate(env.Y, y, env.opts.tol)
	recordEnumeration(stats)
	env.opts.logger.Debug("enumerated simplices",
		"examined", stats.Examined, "accepted", stats.Accepted,
		"negative_weight", stats.NegativeWeight, "residual", stats.Residual,
		"singular", stats.Singular, "factor_failed", stats.FactorFailed)
	for _, s := range simplices {
		if s.Singular {
			env.opts.logger.Warn("rank deficient feasibility system",
				"simplex", s.Index, "rank", s.Rank, "residual", s.Residual)
		}
	}
	if len(simplices) == 0 {
		err = fmt.Errorf("y = %v: %w", y, ErrNoContainingSimplex)
		if env.opts.tol.RejectSingular && stats.Singular > 0 {
			err = fmt.Errorf("y = %v: %w: %d subsets dropped: %w",
				y, ErrNoContainingSimplex, stats.Singular, ErrSingularFeasibilitySystem)
		}
		return
	}

	candidates, err := env.evaluateAll(ctx, simplices, w)
	if err != nil {
		return
	}
	best, err := aggregate(candidates)
	if err != nil {
		return
	}
	res = &Result{
		Value:      candidates[best].Value,
		Best:       best,
		Candidates: candidates,
		Stats:      stats,
	}
	return
}

func (env *Envelope) checkQuery(w, y []float64) error {
	switch {
	case len(w) != env.W.Dim():
		return fmt.Errorf("%w: w has dimension %d, want %d", ErrInvalidInput, len(w), env.W.Dim())
	case len(y) != env.Y.Dim():
		return fmt.Errorf("%w: y has dimension %d, want %d", ErrInvalidInput, len(y), env.Y.Dim())
	case !utils.IsFinite(w) || !utils.IsFinite(y):
		return fmt.Errorf("%w: query (%v, %v) is not finite", ErrInvalidInput, w, y)
	case !env.W.Contains(w):
		return fmt.Errorf("%w: w = %v is outside W", ErrInvalidInput, w)
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNoContainingSimplex):
		return "no_simplex"
	case errors.Is(err, ErrOptimizerNonConvergence):
		return "non_convergence"
	case errors.Is(err, ErrNonFiniteCandidate):
		return "non_finite"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "error"
}
