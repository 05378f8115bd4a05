package optimizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/notargets/convexenv/types"
)

// Minimizer solves a box bounded, equality constrained minimisation from an
// initial point.
type Minimizer interface {
	Minimize(ctx context.Context, p *Problem, x0 []float64) (*Result, error)
}

// Problem is min Objective(x) s.t. Equality(x) = 0, x in Bounds.
type Problem struct {
	N         int                            // Number of variables
	Objective func(x []float64) float64      // Must not modify x
	M         int                            // Number of equality residuals
	Equality  func(x []float64, c []float64) // Writes M residuals into c
	Bounds    types.Box                      // Optional, len N when present
}

func (p *Problem) Validate(x0 []float64) (err error) {
	switch {
	case p.N <= 0:
		err = errors.New("problem dimension must be greater than 0")
	case p.Objective == nil:
		err = errors.New("objective function is required")
	case p.M < 0:
		err = errors.New("equality count must not be negative")
	case p.M > 0 && p.Equality == nil:
		err = errors.New("equality function is required when M > 0")
	case p.M > p.N:
		err = errors.New("equality count must not exceed the problem dimension")
	case len(x0) != p.N:
		err = fmt.Errorf("initial point has dimension %d, want %d", len(x0), p.N)
	case p.Bounds != nil && len(p.Bounds) != p.N:
		err = fmt.Errorf("bounds have dimension %d, want %d", len(p.Bounds), p.N)
	}
	if err == nil && p.Bounds != nil {
		err = p.Bounds.Validate()
	}
	return
}

type Status uint8

const (
	// Converged means the constraint violation and objective change met the
	// accuracy settings.
	Converged Status = iota
	// OuterIterationLimit means the multiplier loop ran out of iterations.
	OuterIterationLimit
	// InnerFailure means the unconstrained subproblem solver reported an
	// error; the last location it produced is returned.
	InnerFailure
	// Cancelled means the context was done before convergence.
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case OuterIterationLimit:
		return "outer iteration limit"
	case InnerFailure:
		return "inner failure"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Result holds the terminal location of a minimisation, converged or not.
type Result struct {
	OK        bool      // Whether the optimization converged
	F         float64   // Objective value at X, without penalty terms
	X         []float64 // Final location, inside Bounds
	Violation float64   // Max norm of the equality residuals at X
	Summary
}

type Summary struct {
	Status   Status
	NumIter  int // Inner major iterations, summed over outer iterations
	NumEval  int // Objective evaluations, summed over outer iterations
	NumOuter int
}
