package envelope

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/notargets/convexenv/types"
)

const (
	DefaultFeasibilityTolerance = 1e-9
	DefaultResidualTolerance    = 1e-8
	// Singular values below rankRcond times the largest count as zero
	rankRcond = 1e-12
)

// Tolerances control which subsets of Y are accepted as containing y.
type Tolerances struct {
	// Weights >= -Feasibility are accepted, and weights <= Feasibility are
	// treated as exactly zero. 0 reproduces an exact a >= 0 test.
	Feasibility float64
	// Largest accepted solve residual, relative to max(1, |(y, 1)|).
	// A negative value disables the check and accepts the least squares
	// weights of an inconsistent system as they are.
	Residual float64
	// Drop subsets whose augmented system is rank deficient.
	RejectSingular bool
}

func DefaultTolerances() Tolerances {
	return Tolerances{
		Feasibility: DefaultFeasibilityTolerance,
		Residual:    DefaultResidualTolerance,
	}
}

// Simplex is a subset of Y whose hull contains the query point.
type Simplex struct {
	Index    []int       // Ascending indices into Y
	Points   [][]float64 // Y[Index[i]]
	Weights  []float64   // Barycentric weights, non negative, summing to 1
	Residual float64     // |M·a - t| of the least squares solve
	Rank     int         // Numerical rank of the augmented system
	Singular bool        // Rank < len(Index)
}

// EnumerationStats counts what happened to each examined subset.
type EnumerationStats struct {
	Examined       int
	Accepted       int
	NegativeWeight int
	Residual       int
	Singular       int // Accepted or not
	FactorFailed   int
}

// SimplexSize is Csz = min(S+1, N).
func SimplexSize(N, S int) int {
	return min(S+1, N)
}

// Enumerate visits every SimplexSize subset of Y in lexicographic index order
// and keeps those whose barycentric weights for y pass the tolerances.
func Enumerate(Y types.PointSet, y []float64, tol Tolerances) (simplices []Simplex, stats EnumerationStats) {
	var (
		N, S  = Y.Len(), Y.Dim()
		Csz   = SimplexSize(N, S)
		gen   = combin.NewCombinationGenerator(N, Csz)
		scale = math.Max(1, math.Sqrt(floats.Dot(y, y)+1))
	)
	for gen.Next() {
		stats.Examined++
		var (
			idx = gen.Combination(nil)
			C   = Y.Subset(idx)
		)
		a, residual, rank, ok := Barycentric(C, y)
		switch {
		case !ok:
			stats.FactorFailed++
			continue
		case tol.Residual >= 0 && residual > tol.Residual*scale:
			stats.Residual++
			continue
		case !acceptWeights(a, tol.Feasibility):
			stats.NegativeWeight++
			continue
		}
		singular := rank < Csz
		if singular {
			stats.Singular++
			if tol.RejectSingular {
				continue
			}
		}
		if !normalizeWeights(a, tol.Feasibility) {
			stats.NegativeWeight++
			continue
		}
		stats.Accepted++
		simplices = append(simplices, Simplex{
			Index:    idx,
			Points:   C,
			Weights:  a,
			Residual: residual,
			Rank:     rank,
			Singular: singular,
		})
	}
	return
}

// Barycentric solves the augmented system
//
//	| p_1 ... p_k |       | y |
//	|  1  ...  1  | · a = | 1 |
//
// for the minimum norm least squares weights a. Rank deficiency is not an
// error; ok is false only when the factorization fails.
func Barycentric(C [][]float64, y []float64) (a []float64, residual float64, rank int, ok bool) {
	var (
		k   = len(C)
		S   = len(y)
		M   = mat.NewDense(S+1, k, nil)
		t   = mat.NewVecDense(S+1, nil)
		svd mat.SVD
	)
	for j, p := range C {
		for i := 0; i < S; i++ {
			M.Set(i, j, p[i])
		}
		M.Set(S, j, 1)
	}
	for i := 0; i < S; i++ {
		t.SetVec(i, y[i])
	}
	t.SetVec(S, 1)

	if ok = svd.Factorize(M, mat.SVDThin); !ok {
		return
	}
	sv := svd.Values(nil)
	for _, s := range sv {
		if s > rankRcond*sv[0] {
			rank++
		}
	}
	x := mat.NewVecDense(k, nil)
	svd.SolveVecTo(x, t, rank)
	a = make([]float64, k)
	for i := range a {
		a[i] = x.AtVec(i)
	}

	var r mat.VecDense
	r.MulVec(M, x)
	r.SubVec(&r, t)
	residual = mat.Norm(&r, 2)
	return
}

func acceptWeights(a []float64, tol float64) bool {
	for _, v := range a {
		if v < -tol {
			return false
		}
	}
	return true
}

// normalizeWeights zeroes weights within tol of zero and rescales the rest to
// sum to one.
func normalizeWeights(a []float64, tol float64) bool {
	for i, v := range a {
		if v <= tol {
			a[i] = 0
		}
	}
	sum := floats.Sum(a)
	if sum <= 0 || math.IsNaN(sum) {
		return false
	}
	for i := range a {
		a[i] /= sum
	}
	return true
}
