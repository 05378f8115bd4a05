package optimizer

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// Method selects the unconstrained solver used for each subproblem.
type Method uint8

const (
	NelderMead Method = iota
	BFGS
	LBFGS
)

var methodNames = map[string]Method{
	"neldermead":  NelderMead,
	"nelder-mead": NelderMead,
	"nm":          NelderMead,
	"bfgs":        BFGS,
	"lbfgs":       LBFGS,
	"l-bfgs":      LBFGS,
}

func NewMethod(label string) (m Method, err error) {
	var ok bool
	if len(label) == 0 {
		return NelderMead, nil
	}
	if m, ok = methodNames[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown minimization method %q, want one of nelder-mead, bfgs, lbfgs", label)
	}
	return
}

func (m Method) String() string {
	switch m {
	case NelderMead:
		return "nelder-mead"
	case BFGS:
		return "bfgs"
	case LBFGS:
		return "lbfgs"
	}
	return fmt.Sprintf("Method(%d)", uint8(m))
}

func (m Method) method() optimize.Method {
	switch m {
	case BFGS:
		return &optimize.BFGS{}
	case LBFGS:
		return &optimize.LBFGS{}
	default:
		return &optimize.NelderMead{}
	}
}

func (m Method) needsGradient() bool { return m == BFGS || m == LBFGS }

type Settings struct {
	Method Method
	// Largest equality residual, in max norm, accepted at convergence.
	Accuracy float64
	// Relative change of the objective between outer iterations accepted at
	// convergence.
	FTolerance float64
	// Limit on multiplier updates. This and the subproblem limits below are
	// for problems of up to two variables and grow with N/2 beyond that.
	MaxOuter int
	// Limits passed to each unconstrained subproblem.
	MajorIterations int
	FuncEvaluations int
	// Initial quadratic penalty, its growth factor and its ceiling.
	Penalty       float64
	PenaltyGrowth float64
	MaxPenalty    float64
}

func DefaultSettings() Settings {
	return Settings{
		Method:          NelderMead,
		Accuracy:        1e-6,
		FTolerance:      1e-7,
		MaxOuter:        40,
		MajorIterations: 4000,
		FuncEvaluations: 40000,
		Penalty:         10,
		PenaltyGrowth:   10,
		MaxPenalty:      1e9,
	}
}

// AugmentedLagrangian is a Minimizer that handles the equality constraints
// with multiplier updates and the bounds with a change of variables, handing
// each unconstrained subproblem to gonum/optimize.
type AugmentedLagrangian struct {
	Settings
}

// NewAugmentedLagrangian fills zero valued settings from DefaultSettings.
func NewAugmentedLagrangian(s Settings) *AugmentedLagrangian {
	def := DefaultSettings()
	if s.Accuracy <= 0 {
		s.Accuracy = def.Accuracy
	}
	if s.FTolerance <= 0 {
		s.FTolerance = def.FTolerance
	}
	if s.MaxOuter <= 0 {
		s.MaxOuter = def.MaxOuter
	}
	if s.MajorIterations <= 0 {
		s.MajorIterations = def.MajorIterations
	}
	if s.FuncEvaluations <= 0 {
		s.FuncEvaluations = def.FuncEvaluations
	}
	if s.Penalty <= 0 {
		s.Penalty = def.Penalty
	}
	if s.PenaltyGrowth <= 1 {
		s.PenaltyGrowth = def.PenaltyGrowth
	}
	if s.MaxPenalty < s.Penalty {
		s.MaxPenalty = math.Max(def.MaxPenalty, s.Penalty)
	}
	return &AugmentedLagrangian{Settings: s}
}

// scale is the growth factor of the iteration limits for n variables.
func scale(n int) int {
	return max(1, n/2)
}

func (al *AugmentedLagrangian) innerSettings(n int) *optimize.Settings {
	return &optimize.Settings{
		MajorIterations:   al.MajorIterations * scale(n),
		FuncEvaluations:   al.FuncEvaluations * scale(n),
		GradientThreshold: 1e-10,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-14,
			Relative:   1e-14,
			Iterations: 100,
		},
	}
}

// Minimize runs the multiplier loop from x0. The returned Result is never nil
// when err is nil; on cancellation the last location is returned together
// with the context error.
func (al *AugmentedLagrangian) Minimize(ctx context.Context, p *Problem, x0 []float64) (res *Result, err error) {
	if err = p.Validate(x0); err != nil {
		return
	}
	var (
		n, m     = p.N, p.M
		bt       = boxTransform{bounds: p.Bounds}
		z        = make([]float64, n)
		x        = make([]float64, n)
		c        = make([]float64, m)
		lambda   = make([]float64, m)
		rho      = al.Penalty
		fPrev    = math.Inf(1)
		vPrev    = math.Inf(1)
		f, viol  float64
		innerErr error
		summary  = Summary{Status: OuterIterationLimit}
	)
	bt.fromBox(x0, z)

	merit := func(zz []float64) float64 {
		outside := bt.toBox(zz, x)
		L := p.Objective(x) + rho*outside
		if m > 0 {
			p.Equality(x, c)
			for j, cj := range c {
				L += lambda[j]*cj + 0.5*rho*cj*cj
			}
		}
		return L
	}
	problem := optimize.Problem{
		Func: merit,
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}
	if al.Method.needsGradient() {
		problem.Grad = func(grad, zz []float64) {
			fd.Gradient(grad, merit, zz, &fd.Settings{Formula: fd.Central})
		}
	}

	evaluate := func() {
		bt.toBox(z, x)
		f, viol = p.Objective(x), 0
		if m > 0 {
			p.Equality(x, c)
			viol = floats.Norm(c, math.Inf(1))
		}
	}

	maxOuter := al.MaxOuter * scale(n)
	for outer := 0; outer < maxOuter; outer++ {
		if err = ctx.Err(); err != nil {
			summary.Status = Cancelled
			break
		}
		summary.NumOuter++
		inner, ierr := optimize.Minimize(problem, z, al.innerSettings(n), al.Method.method())
		if inner != nil {
			copy(z, inner.X)
			summary.NumIter += inner.MajorIterations
			summary.NumEval += inner.FuncEvaluations
		}
		if ierr != nil && ctx.Err() != nil {
			err = ctx.Err()
			summary.Status = Cancelled
			break
		}
		innerErr = ierr
		evaluate()
		if m == 0 || (viol <= al.Accuracy && math.Abs(f-fPrev) <= al.FTolerance*(1+math.Abs(f))) {
			summary.Status = Converged
			break
		}
		for j := range lambda {
			lambda[j] += rho * c[j]
		}
		if viol > 0.25*vPrev {
			rho = math.Min(rho*al.PenaltyGrowth, al.MaxPenalty)
		}
		fPrev, vPrev = f, viol
	}
	if summary.Status == OuterIterationLimit && innerErr != nil {
		summary.Status = InnerFailure
	}

	evaluate()
	res = &Result{
		OK:        summary.Status == Converged,
		F:         f,
		X:         append([]float64(nil), x...),
		Violation: viol,
		Summary:   summary,
	}
	return
}
