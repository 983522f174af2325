package algo

import (
	"math"

	"github.com/chazu/brepcad/pkg/base"
)

// ParametricCurve is a curve with first and second derivatives over a
// closed parameter range.
type ParametricCurve[P base.Vector[P]] interface {
	Subs(t float64) P
	Der(t float64) P
	Der2(t float64) P
	ParameterRange() (float64, float64)
}

// PresearchNearestParameter samples [t0, t1] uniformly with division
// intervals and returns the sample parameter closest to point.
func PresearchNearestParameter[P base.Vector[P]](c ParametricCurve[P], point P, t0, t1 float64, division int) float64 {
	if division < 1 {
		division = 1
	}
	best, bestDist := t0, math.Inf(1)
	for i := 0; i <= division; i++ {
		t := t0 + (t1-t0)*float64(i)/float64(division)
		if d := base.Distance2(c.Subs(t), point); d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

// SearchNearestParameter solves ⟨C'(t), C(t) - point⟩ = 0 by Newton
// iteration starting at hint. A root outside the parameter range is clamped
// to the nearer end. The second result is false when the trial budget runs
// out before convergence or the iteration degenerates.
func SearchNearestParameter[P base.Vector[P]](c ParametricCurve[P], point P, hint float64, trials int) (float64, bool) {
	t0, t1 := c.ParameterRange()
	t := hint
	for i := 0; i <= trials; i++ {
		diff := c.Subs(t).Sub(point)
		der := c.Der(t)
		f := der.Dot(diff)
		fprime := c.Der2(t).Dot(diff) + der.Dot(der)
		if f == 0 {
			return clampParameter(t, t0, t1), true
		}
		if fprime == 0 || math.IsNaN(fprime) {
			tracer().Debugf("nearest parameter: degenerate derivative at t=%g", t)
			return t, false
		}
		next := t - f/fprime
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return t, false
		}
		if converged(next-t, t) {
			return clampParameter(next, t0, t1), true
		}
		t = next
	}
	tracer().Debugf("nearest parameter: trial budget %d exhausted", trials)
	return t, false
}

// converged reports whether a Newton step is below the resolution of the
// parameter x it was taken from. The bound grows with |x| so that large
// parameter values, whose spacing exceeds base.Tolerance2, still converge.
func converged(step, x float64) bool {
	return math.Abs(step) < base.Tolerance2*math.Max(1, math.Abs(x))
}

// SearchParameter searches the parameter t with C(t) = point. Unlike
// SearchNearestParameter it fails when the converged point does not lie on
// the curve within base.Tolerance.
func SearchParameter[P base.Vector[P]](c ParametricCurve[P], point P, hint float64, trials int) (float64, bool) {
	t, ok := SearchNearestParameter(c, point, hint, trials)
	if !ok {
		return t, false
	}
	if !base.Near(c.Subs(t), point) {
		return t, false
	}
	return t, true
}

// ParameterDivision divides [t0, t1] until every piece of the polyline is
// within tol of the curve. It returns the parameters and the curve points,
// both including the end points.
func ParameterDivision[P base.Vector[P]](c ParametricCurve[P], t0, t1, tol float64) ([]float64, []P) {
	p0, p1 := c.Subs(t0), c.Subs(t1)
	params := []float64{t0}
	points := []P{p0}
	subParameterDivision(c, t0, t1, p0, p1, tol*tol, MaxDivisionDepth, &params, &points)
	return params, points
}

// subParameterDivision appends the division of (t0, t1] to params and points.
func subParameterDivision[P base.Vector[P]](c ParametricCurve[P], t0, t1 float64, p0, p1 P, tol2 float64, depth int, params *[]float64, points *[]P) {
	r := splitRatio(t0, t1, p0.Length(), p1.Length())
	t := t0 + (t1-t0)*r
	mid := c.Subs(t)
	if depth == 0 || base.Distance2(mid, base.Lerp(p0, p1, r)) < tol2 {
		if depth == 0 {
			tracer().Debugf("parameter division: depth budget exhausted on [%g, %g]", t0, t1)
		}
		*params = append(*params, t1)
		*points = append(*points, p1)
		return
	}
	subParameterDivision(c, t0, t, p0, mid, tol2, depth-1, params, points)
	subParameterDivision(c, t, t1, mid, p1, tol2, depth-1, params, points)
}

func clampParameter(t, t0, t1 float64) float64 {
	return math.Max(t0, math.Min(t1, t))
}
