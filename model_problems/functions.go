package model_problems

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/notargets/convexenv/envelope"
)

type FunctionType uint

const (
	HINGE FunctionType = iota
	QUADRATIC
	BILINEAR
)

var (
	FunctionNames = map[string]FunctionType{
		"hinge":     HINGE,
		"quadratic": QUADRATIC,
		"bilinear":  BILINEAR,
	}
	FunctionPrintNames = []string{"Hinge", "Quadratic", "Bilinear"}
	// Parameters accepted by each function and their defaults
	FunctionParams = []map[string]float64{
		HINGE:     {"x": 1},
		QUADRATIC: {"c": 1, "d": 0},
		BILINEAR:  {},
	}
)

func (ft FunctionType) Print() (txt string) {
	txt = FunctionPrintNames[ft]
	return
}

func NewFunctionType(label string) (ft FunctionType, err error) {
	var ok bool
	if len(label) == 0 {
		err = fmt.Errorf("empty function name, must be one of %v", names())
		return
	}
	label = strings.ToLower(strings.TrimSpace(label))
	if ft, ok = FunctionNames[label]; !ok {
		err = fmt.Errorf("unable to use function named %s, must be one of %v", label, names())
	}
	return
}

func names() (n []string) {
	for k := range FunctionNames {
		n = append(n, k)
	}
	sort.Strings(n)
	return
}

// Lookup builds the named function. Missing parameters take their defaults,
// unknown ones are an error.
func Lookup(name string, params map[string]float64) (f envelope.Function, err error) {
	var ft FunctionType
	if ft, err = NewFunctionType(name); err != nil {
		return
	}
	p := make(map[string]float64, len(FunctionParams[ft]))
	for k, v := range FunctionParams[ft] {
		p[k] = v
	}
	for k, v := range params {
		if _, ok := p[k]; !ok {
			return nil, fmt.Errorf("function %s has no parameter %q", ft.Print(), k)
		}
		p[k] = v
	}
	switch ft {
	case HINGE:
		f = Hinge(p["x"])
	case QUADRATIC:
		f = Quadratic(p["c"], p["d"])
	case BILINEAR:
		f = Bilinear()
	}
	return
}

// Hinge is max(1 - x·Σ w_j(2y_j - 1), 0) + Σ|w_j|, a hinge loss with an L1
// penalty. Coordinates pair up to the shorter of w and y.
func Hinge(x float64) envelope.Function {
	return func(w, y []float64) float64 {
		var margin, l1 float64
		for j := range w {
			if j < len(y) {
				margin += w[j] * (2*y[j] - 1)
			}
			l1 += math.Abs(w[j])
		}
		return math.Max(1-x*margin, 0) + l1
	}
}

// Quadratic is (Σw - c·Σy)² + d·Σy. It is jointly convex, so its envelope
// is the function itself.
func Quadratic(c, d float64) envelope.Function {
	return func(w, y []float64) float64 {
		var sw, sy float64
		for _, v := range w {
			sw += v
		}
		for _, v := range y {
			sy += v
		}
		r := sw - c*sy
		return r*r + d*sy
	}
}

// Bilinear is (w_0 - Σy)² + Πy. On binary Y the envelope of the product is
// max(0, Σy - len(y) + 1).
func Bilinear() envelope.Function {
	return func(w, y []float64) float64 {
		var (
			sy   float64
			prod = 1.
		)
		for _, v := range y {
			sy += v
			prod *= v
		}
		r := w[0] - sy
		return r*r + prod
	}
}
