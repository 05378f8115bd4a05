package envelope

import (
	"log/slog"

	"github.com/notargets/convexenv/optimizer"
)

type options struct {
	tol       Tolerances
	minimizer optimizer.Minimizer
	workers   int
	retries   int
	strict    bool
	logger    *slog.Logger
}

func defaultOptions() options {
	return options{
		tol:       DefaultTolerances(),
		minimizer: optimizer.NewAugmentedLagrangian(optimizer.DefaultSettings()),
		workers:   1,
	}
}

// Option configures an Envelope.
type Option func(*options)

// WithMinimizer replaces the inner constrained minimizer.
func WithMinimizer(m optimizer.Minimizer) Option {
	return func(o *options) {
		if m != nil {
			o.minimizer = m
		}
	}
}

// WithTolerances replaces all feasibility tolerances at once.
func WithTolerances(t Tolerances) Option {
	return func(o *options) { o.tol = t }
}

func WithFeasibilityTolerance(tol float64) Option {
	return func(o *options) { o.tol.Feasibility = tol }
}

// WithResidualTolerance sets the relative residual bound; negative disables it.
func WithResidualTolerance(tol float64) Option {
	return func(o *options) { o.tol.Residual = tol }
}

func WithRejectSingular(reject bool) Option {
	return func(o *options) { o.tol.RejectSingular = reject }
}

// WithWorkers evaluates candidates on n goroutines.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = max(1, n) }
}

// WithRetries restarts an unconverged candidate up to n times from perturbed
// initial points, keeping the best terminal value.
func WithRetries(n int) Option {
	return func(o *options) { o.retries = max(0, n) }
}

// WithStrictConvergence turns an unconverged candidate into an error wrapping
// ErrOptimizerNonConvergence.
func WithStrictConvergence(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}
