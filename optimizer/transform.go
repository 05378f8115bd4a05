package optimizer

import (
	"math"

	"github.com/notargets/convexenv/types"
)

// Keep start values slightly away from ±1 to avoid atanh(±1) = ±∞
const tanhLimit = 0.9999

// boxTransform maps an unconstrained vector z onto the box. Finite two sided
// bounds use x = mid + half·tanh(z), so x never leaves the box. Half open and
// free coordinates pass through and are projected, the distance to the box
// being returned so the caller can penalise it.
type boxTransform struct {
	bounds types.Box
}

func (bt boxTransform) toBox(z, x []float64) (outside float64) {
	if bt.bounds == nil {
		copy(x, z)
		return
	}
	for i, b := range bt.bounds {
		if b.Finite() {
			x[i] = b.Mid() + b.Half()*math.Tanh(z[i])
			continue
		}
		x[i] = b.Clamp(z[i])
		d := z[i] - x[i]
		outside += d * d
	}
	return
}

func (bt boxTransform) fromBox(x, z []float64) {
	if bt.bounds == nil {
		copy(z, x)
		return
	}
	for i, b := range bt.bounds {
		switch {
		case !b.Finite():
			z[i] = b.Clamp(x[i])
		case b.Half() == 0:
			z[i] = 0
		default:
			r := (x[i] - b.Mid()) / b.Half()
			safeX := math.Max(-tanhLimit, math.Min(tanhLimit, r))
			z[i] = math.Atanh(safeX)
		}
	}
}
