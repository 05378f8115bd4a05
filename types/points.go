package types

import (
	"fmt"
	"math"
)

// PointSet is an ordered, finite set of points of equal dimension. The stored
// order is the iteration order used everywhere downstream.
type PointSet [][]float64

func (P PointSet) Len() int { return len(P) }

// Dim is the coordinate count of the points, 0 for an empty set.
func (P PointSet) Dim() int {
	if len(P) == 0 {
		return 0
	}
	return len(P[0])
}

func (P PointSet) Validate() (err error) {
	if len(P) == 0 {
		return fmt.Errorf("point set is empty")
	}
	S := len(P[0])
	if S == 0 {
		return fmt.Errorf("points have zero dimension")
	}
	for i, p := range P {
		if len(p) != S {
			return fmt.Errorf("point %d has dimension %d, want %d", i, len(p), S)
		}
		for j, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("point %d coordinate %d is not finite: %v", i, j, v)
			}
		}
	}
	return
}

// Subset gathers the points at the given indices, sharing storage with P.
func (P PointSet) Subset(indices []int) (C PointSet) {
	C = make(PointSet, len(indices))
	for i, idx := range indices {
		C[i] = P[idx]
	}
	return
}

// Permute returns a copy of P reordered so that element i is P[perm[i]].
func (P PointSet) Permute(perm []int) (R PointSet) {
	R = make(PointSet, len(perm))
	for i, p := range perm {
		R[i] = append([]float64(nil), P[p]...)
	}
	return
}
