package appraisal

import (
	"math"

	"github.com/iwvelando/project-appraisal/pkg/constants"
	"github.com/iwvelando/project-appraisal/pkg/mathutil"
)

// InternalRateOfReturn solves NPV(r) = 0 for r > -1.
//
// A sequence without both a strictly positive and a strictly negative flow has
// no real root and is reported as uncomputable. With a single sign change the
// root is unique and Newton's method from a 10% guess finds it. With several
// sign changes the rate axis is scanned for brackets first and the root
// closest to the guess is returned; Newton is the fallback when no bracket
// is found.
func InternalRateOfReturn(flows []float64) IRR {
	if !hasSignChange(flows) {
		return UncomputableIRR()
	}

	if signChanges(flows) > 1 {
		if root, ok := closestRoot(bracketRoots(flows)); ok {
			return ComputedIRR(root)
		}
	}

	if rate, ok := newtonIRR(flows, constants.IRRGuess); ok {
		return ComputedIRR(rate)
	}

	if root, ok := closestRoot(bracketRoots(flows)); ok {
		return ComputedIRR(root)
	}
	return UncomputableIRR()
}

func closestRoot(roots []float64) (float64, bool) {
	if len(roots) == 0 {
		return 0, false
	}
	best := roots[0]
	for _, root := range roots[1:] {
		if math.Abs(root-constants.IRRGuess) < math.Abs(best-constants.IRRGuess) {
			best = root
		}
	}
	return best, true
}

// signChanges counts sign flips between consecutive non-zero flows.
func signChanges(flows []float64) int {
	changes := 0
	prev := 0.0
	for _, flow := range flows {
		if flow == 0 {
			continue
		}
		if prev != 0 && !mathutil.SameSign(prev, flow) {
			changes++
		}
		prev = flow
	}
	return changes
}

func hasSignChange(flows []float64) bool {
	positive, negative := false, false
	for _, flow := range flows {
		if flow > 0 {
			positive = true
		} else if flow < 0 {
			negative = true
		}
	}
	return positive && negative
}

// npvDerivative is d(NPV)/dr.
func npvDerivative(rate float64, flows []float64) float64 {
	total := 0.0
	for year, flow := range flows {
		if year == 0 {
			continue
		}
		total -= float64(year) * flow / math.Pow(1+rate, float64(year+1))
	}
	return total
}

func newtonIRR(flows []float64, guess float64) (float64, bool) {
	rate := guess
	for i := 0; i < constants.IRRMaxIterations; i++ {
		value := NetPresentValue(rate, flows)
		slope := npvDerivative(rate, flows)
		if slope == 0 || !mathutil.IsFinite(value) || !mathutil.IsFinite(slope) {
			return 0, false
		}

		next := rate - value/slope
		if !mathutil.IsFinite(next) || next <= -1 {
			return 0, false
		}
		if math.Abs(next-rate) < constants.IRRTolerance {
			return next, true
		}
		rate = next
	}
	return 0, false
}

// bracketRoots walks 1+r geometrically from 0.01 to IRRUpperBound and bisects
// every interval where NPV changes sign.
func bracketRoots(flows []float64) []float64 {
	const (
		start  = 0.01
		growth = 1.05
	)

	var roots []float64
	prevRate := start - 1
	prevValue := NetPresentValue(prevRate, flows)
	for x := start * growth; x-1 <= constants.IRRUpperBound; x *= growth {
		rate := x - 1
		value := NetPresentValue(rate, flows)
		if mathutil.IsFinite(prevValue) && mathutil.IsFinite(value) {
			switch {
			case prevValue == 0:
				roots = append(roots, prevRate)
			case !mathutil.SameSign(prevValue, value) && value != 0:
				if root, ok := bisectIRR(flows, prevRate, rate, prevValue); ok {
					roots = append(roots, root)
				}
			}
		}
		prevRate, prevValue = rate, value
	}
	if prevValue == 0 {
		roots = append(roots, prevRate)
	}
	return roots
}

func bisectIRR(flows []float64, lo, hi, loValue float64) (float64, bool) {
	for i := 0; i < constants.IRRMaxIterations; i++ {
		mid := (lo + hi) / 2
		value := NetPresentValue(mid, flows)
		if !mathutil.IsFinite(value) {
			return 0, false
		}
		if value == 0 || hi-lo < constants.IRRTolerance {
			return mid, true
		}
		if mathutil.SameSign(value, loValue) {
			lo, loValue = mid, value
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, true
}
