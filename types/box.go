package types

import (
	"fmt"
	"math"
)

// Bound is the closed interval [Lower, Upper] of one coordinate. Either side
// may be infinite.
type Bound struct {
	Lower, Upper float64
}

func (b Bound) Finite() bool {
	return !math.IsInf(b.Lower, 0) && !math.IsInf(b.Upper, 0)
}

func (b Bound) Contains(x float64) bool {
	return x >= b.Lower && x <= b.Upper
}

func (b Bound) Clamp(x float64) float64 {
	return math.Max(b.Lower, math.Min(b.Upper, x))
}

// Mid and Half give the centre and half width of a finite bound.
func (b Bound) Mid() float64  { return 0.5 * (b.Lower + b.Upper) }
func (b Bound) Half() float64 { return 0.5 * (b.Upper - b.Lower) }

// Box is an axis aligned region, one Bound per dimension.
type Box []Bound

func NewBox(pairs [][2]float64) (B Box) {
	B = make(Box, len(pairs))
	for i, p := range pairs {
		B[i] = Bound{Lower: p[0], Upper: p[1]}
	}
	return
}

func (B Box) Dim() int { return len(B) }

func (B Box) Validate() (err error) {
	if len(B) == 0 {
		return fmt.Errorf("box has no dimensions")
	}
	for i, b := range B {
		switch {
		case math.IsNaN(b.Lower) || math.IsNaN(b.Upper):
			return fmt.Errorf("bound %d is NaN: [%v, %v]", i, b.Lower, b.Upper)
		case b.Lower > b.Upper:
			return fmt.Errorf("bound %d has lower > upper: [%v, %v]", i, b.Lower, b.Upper)
		}
	}
	return
}

func (B Box) Contains(x []float64) bool {
	if len(x) != len(B) {
		return false
	}
	for i, b := range B {
		if !b.Contains(x[i]) {
			return false
		}
	}
	return true
}

// Clamp projects x onto the box, writing into dst (allocated when nil).
func (B Box) Clamp(dst, x []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(x))
	}
	for i, b := range B {
		dst[i] = b.Clamp(x[i])
	}
	return dst
}

// Repeat returns the box replicated k times, the bounds of k stacked copies of
// the same variable block.
func (B Box) Repeat(k int) (R Box) {
	R = make(Box, 0, k*len(B))
	for n := 0; n < k; n++ {
		R = append(R, B...)
	}
	return
}
