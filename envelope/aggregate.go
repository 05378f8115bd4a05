package envelope

import "github.com/notargets/convexenv/utils"

// aggregate returns the index of the smallest converged candidate value, the
// first one on ties. An unconverged candidate may sit outside the constraint
// set and undercut the envelope, so unconverged values are only considered
// when no candidate converged. NaN values never win.
func aggregate(candidates []Candidate) (best int, err error) {
	if len(candidates) == 0 {
		return -1, ErrNoContainingSimplex
	}
	if best = smallest(candidates, true); best == -1 {
		best = smallest(candidates, false)
	}
	if best == -1 {
		err = ErrNonFiniteCandidate
	}
	return
}

func smallest(candidates []Candidate, convergedOnly bool) (best int) {
	best = -1
	for i, c := range candidates {
		if utils.IsNan(c.Value) || (convergedOnly && !c.Converged) {
			continue
		}
		if best == -1 || c.Value < candidates[best].Value {
			best = i
		}
	}
	return
}
