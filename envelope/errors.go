package envelope

import "errors"

var (
	// ErrInvalidInput reports malformed W, Y, f or query dimensions.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoContainingSimplex means no subset of Y contains the query y: y is
	// outside conv(Y) or the feasibility tolerances rejected every subset.
	ErrNoContainingSimplex = errors.New("no simplex of Y contains the query point")
	// ErrSingularFeasibilitySystem marks a rank deficient barycentric system.
	// It is a warning level condition and only surfaces when singular subsets
	// are rejected.
	ErrSingularFeasibilitySystem = errors.New("rank deficient feasibility system")
	// ErrOptimizerNonConvergence is returned for an unconverged candidate
	// under strict convergence.
	ErrOptimizerNonConvergence = errors.New("inner minimization did not converge")
	// ErrNonFiniteCandidate means every candidate value was NaN.
	ErrNonFiniteCandidate = errors.New("every candidate value is NaN")
)
