package envelope

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/convexenv/optimizer"
	"github.com/notargets/convexenv/utils"
)

// Candidate is the upper bound on the envelope contributed by one simplex.
type Candidate struct {
	Simplex
	Value float64
	// Theta[i] is the optimal continuous point for vertex i, nil when the
	// vertex carries zero weight.
	Theta      [][]float64
	Converged  bool
	Status     optimizer.Status
	Iterations int
	Attempts   int
}

// evaluate computes min Σ a_i f(θ_i, y_i) s.t. Σ a_i θ_i = w, θ_i ∈ W over
// the vertices of s with non zero weight.
func (env *Envelope) evaluate(ctx context.Context, s Simplex, w []float64) (cand Candidate, err error) {
	var (
		d      = len(w)
		active = make([]int, 0, len(s.Index))
	)
	cand = Candidate{Simplex: s, Theta: make([][]float64, len(s.Index))}
	for i, a := range s.Weights {
		if a > 0 {
			active = append(active, i)
		}
	}
	if len(active) == 1 {
		var (
			i     = active[0]
			a     = s.Weights[i]
			theta = make([]float64, d)
		)
		floats.ScaleTo(theta, 1/a, w)
		cand.Theta[i] = theta
		cand.Value = a * env.F(theta, s.Points[i])
		cand.Converged, cand.Status = true, optimizer.Converged
		candidatesTotal.WithLabelValues("pinned").Inc()
		return
	}

	var (
		k       = len(active)
		weights = make([]float64, k)
		points  = make([][]float64, k)
	)
	for j, i := range active {
		weights[j], points[j] = s.Weights[i], s.Points[i]
	}
	p := &optimizer.Problem{
		N: k * d,
		Objective: func(x []float64) (v float64) {
			for j, theta := range utils.Blocks(x, d) {
				v += weights[j] * env.F(theta, points[j])
			}
			return
		},
		M: d,
		Equality: func(x []float64, c []float64) {
			floats.ScaleTo(c, -1, w)
			for j, theta := range utils.Blocks(x, d) {
				floats.AddScaled(c, weights[j], theta)
			}
		},
		Bounds: env.W.Repeat(k),
	}

	var (
		x0   = utils.Tile(w, k)
		best *optimizer.Result
		rng  *rand.Rand
	)
	for attempt := 0; attempt <= env.opts.retries; attempt++ {
		if attempt > 0 {
			if rng == nil {
				rng = rand.New(rand.NewSource(restartSeed(s.Index)))
			}
			x0 = env.perturb(rng, w, k)
		}
		cand.Attempts++
		var res *optimizer.Result
		if res, err = env.opts.minimizer.Minimize(ctx, p, x0); err != nil {
			return cand, fmt.Errorf("simplex %v: %w", s.Index, err)
		}
		cand.Iterations += res.NumIter
		if best == nil || better(res, best) {
			best = res
		}
		if best.OK {
			break
		}
	}

	cand.Value = best.F
	cand.Converged = best.OK
	cand.Status = best.Status
	for j, theta := range utils.Blocks(best.X, d) {
		cand.Theta[active[j]] = theta
	}
	candidatesTotal.WithLabelValues(best.Status.String()).Inc()
	if !cand.Converged {
		env.opts.logger.Debug("candidate did not converge",
			"simplex", s.Index, "status", best.Status, "value", best.F,
			"violation", best.Violation, "attempts", cand.Attempts)
		if env.opts.strict {
			err = fmt.Errorf("simplex %v: %w: %s after %d attempts",
				s.Index, ErrOptimizerNonConvergence, best.Status, cand.Attempts)
		}
	}
	return
}

// better prefers converged results, then lower objective values.
func better(a, b *optimizer.Result) bool {
	if a.OK != b.OK {
		return a.OK
	}
	if math.IsNaN(b.F) {
		return !math.IsNaN(a.F)
	}
	return a.F < b.F
}

func restartSeed(index []int) (seed int64) {
	seed = 1
	for _, i := range index {
		seed = seed*1000003 + int64(i) + 1
	}
	return
}

// perturb draws a restart point for k vertices around w. Finite sides are
// sampled inside W, infinite sides on the scale of w.
func (env *Envelope) perturb(rng *rand.Rand, w []float64, k int) (x0 []float64) {
	x0 = make([]float64, k*len(w))
	for _, blk := range utils.Blocks(x0, len(w)) {
		for i, b := range env.W {
			if b.Finite() {
				blk[i] = b.Lower + rng.Float64()*(b.Upper-b.Lower)
			} else {
				blk[i] = w[i] + (2*rng.Float64()-1)*(1+math.Abs(w[i]))
			}
		}
		env.W.Clamp(blk, blk)
	}
	return
}

// evaluateAll fills one candidate per simplex, in simplex order.
func (env *Envelope) evaluateAll(ctx context.Context, simplices []Simplex, w []float64) (candidates []Candidate, err error) {
	candidates = make([]Candidate, len(simplices))
	workers := min(env.opts.workers, len(simplices))
	if workers <= 1 {
		for i, s := range simplices {
			if err = ctx.Err(); err != nil {
				return
			}
			if candidates[i], err = env.evaluate(ctx, s, w); err != nil {
				return
			}
		}
		return
	}

	var (
		pm      = utils.NewPartitionMap(workers, len(simplices))
		g, gctx = errgroup.WithContext(ctx)
	)
	for bn := 0; bn < pm.ParallelDegree; bn++ {
		kMin, kMax := pm.GetBucketRange(bn)
		g.Go(func() error {
			for i := kMin; i < kMax; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				c, err := env.evaluate(gctx, simplices[i], w)
				if err != nil {
					return err
				}
				candidates[i] = c
			}
			return nil
		})
	}
	err = g.Wait()
	return
}
