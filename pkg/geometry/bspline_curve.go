package geometry

import (
	"fmt"
	"sort"

	"github.com/chazu/brepcad/pkg/algo"
	"github.com/chazu/brepcad/pkg/base"
)

// BSplineCurve is a non-rational B-spline curve. Its degree is
// len(knotVec) - len(controlPoints) - 1.
//
// A curve owns its knot vector and control points; share it with Clone.
type BSplineCurve[P base.Vector[P]] struct {
	knotVec       KnotVector
	controlPoints []P
}

// NewBSplineCurve returns the curve with the given knot vector and control
// points. It takes ownership of both slices.
func NewBSplineCurve[P base.Vector[P]](knotVec KnotVector, controlPoints []P) (*BSplineCurve[P], error) {
	if err := checkCurve(knotVec, len(controlPoints)); err != nil {
		return nil, err
	}
	return &BSplineCurve[P]{knotVec: knotVec, controlPoints: controlPoints}, nil
}

// NewBSplineCurveUnchecked is NewBSplineCurve for inputs already known to
// be valid. Debug builds (tag brepdebug) panic on invalid input, release
// builds do not validate.
func NewBSplineCurveUnchecked[P base.Vector[P]](knotVec KnotVector, controlPoints []P) *BSplineCurve[P] {
	if base.DebugBuild {
		if err := checkCurve(knotVec, len(controlPoints)); err != nil {
			panic(err)
		}
	}
	return &BSplineCurve[P]{knotVec: knotVec, controlPoints: controlPoints}
}

func checkCurve(knotVec KnotVector, n int) error {
	switch {
	case n == 0:
		return ErrEmptyControlPoints
	case len(knotVec) <= n:
		return fmt.Errorf("%w: %d knots, %d control points", ErrTooShortKnotVector, len(knotVec), n)
	case base.SoSmall(knotVec.RangeLength()):
		return ErrZeroRange
	}
	for i := 1; i < len(knotVec); i++ {
		if knotVec[i] < knotVec[i-1] {
			return fmt.Errorf("%w: knot %d", ErrNotSortedVector, i)
		}
	}
	return nil
}

// Clone returns a deep copy of c.
func (c *BSplineCurve[P]) Clone() *BSplineCurve[P] {
	return &BSplineCurve[P]{
		knotVec:       c.knotVec.Clone(),
		controlPoints: append([]P(nil), c.controlPoints...),
	}
}

// KnotVec returns the knot vector. It must not be modified.
func (c *BSplineCurve[P]) KnotVec() KnotVector { return c.knotVec }

// ControlPoints returns the control points. They must not be modified.
func (c *BSplineCurve[P]) ControlPoints() []P { return c.controlPoints }

// ControlPoint returns the i-th control point.
func (c *BSplineCurve[P]) ControlPoint(i int) P { return c.controlPoints[i] }

// SetControlPoint replaces the i-th control point.
func (c *BSplineCurve[P]) SetControlPoint(i int, p P) { c.controlPoints[i] = p }

// Degree returns len(knotVec) - len(controlPoints) - 1.
func (c *BSplineCurve[P]) Degree() int {
	return len(c.knotVec) - len(c.controlPoints) - 1
}

// ParameterRange returns the first and the last knot.
func (c *BSplineCurve[P]) ParameterRange() (float64, float64) {
	return c.knotVec.Front(), c.knotVec.Back()
}

// Front returns the point at the start of the parameter range.
func (c *BSplineCurve[P]) Front() P { return c.Subs(c.knotVec.Front()) }

// Back returns the point at the end of the parameter range.
func (c *BSplineCurve[P]) Back() P { return c.Subs(c.knotVec.Back()) }

// DerN returns the n-th derivative at t.
func (c *BSplineCurve[P]) DerN(n int, t float64) P {
	var res P
	basis := c.knotVec.BSplineBasisFunctions(c.Degree(), n, t)
	for i, b := range basis {
		if b != 0 {
			res = res.Add(c.controlPoints[i].MulScalar(b))
		}
	}
	return res
}

// Subs returns the point at t.
func (c *BSplineCurve[P]) Subs(t float64) P { return c.DerN(0, t) }

// Der returns the first derivative at t.
func (c *BSplineCurve[P]) Der(t float64) P { return c.DerN(1, t) }

// Der2 returns the second derivative at t.
func (c *BSplineCurve[P]) Der2(t float64) P { return c.DerN(2, t) }

// Ders returns the derivatives of orders 0 to n at t.
func (c *BSplineCurve[P]) Ders(n int, t float64) CurveDers[P] {
	d := NewCurveDers[P](n)
	for i := 0; i <= n; i++ {
		d.Set(i, c.DerN(i, t))
	}
	return d
}

// Derivation returns the hodograph: the curve of degree-1 whose value at t
// is c.Der(t).
func (c *BSplineCurve[P]) Derivation() *BSplineCurve[P] {
	n := len(c.controlPoints)
	k := c.Degree()
	if k == 0 || n < 2 {
		return &BSplineCurve[P]{
			knotVec:       c.knotVec.Clone(),
			controlPoints: make([]P, n),
		}
	}
	points := make([]P, n-1)
	for i := range points {
		d := c.knotVec[i+k+1] - c.knotVec[i+1]
		points[i] = c.controlPoints[i+1].Sub(c.controlPoints[i]).MulScalar(float64(k) * base.InvOrZero(d))
	}
	return &BSplineCurve[P]{
		knotVec:       c.knotVec[1 : len(c.knotVec)-1].Clone(),
		controlPoints: points,
	}
}

// ParameterDivision samples the whole range so that the polyline through
// the samples stays within tol of the curve.
func (c *BSplineCurve[P]) ParameterDivision(tol float64) ([]float64, []P) {
	t0, t1 := c.ParameterRange()
	return algo.ParameterDivision[P](c, t0, t1, tol)
}

// SearchNearestParameter returns the parameter of the curve point nearest
// to point. Without a hint the search is seeded by a presearch over the
// whole range.
func (c *BSplineCurve[P]) SearchNearestParameter(point P, hint *float64, trials int) (float64, bool) {
	return algo.SearchNearestParameter[P](c, point, c.hintOrPresearch(point, hint), trials)
}

// SearchParameter returns the parameter t with Subs(t) == point, or false
// when point is not on the curve.
func (c *BSplineCurve[P]) SearchParameter(point P, hint *float64, trials int) (float64, bool) {
	return algo.SearchParameter[P](c, point, c.hintOrPresearch(point, hint), trials)
}

func (c *BSplineCurve[P]) hintOrPresearch(point P, hint *float64) float64 {
	if hint != nil {
		return *hint
	}
	t0, t1 := c.ParameterRange()
	return algo.PresearchNearestParameter[P](c, point, t0, t1, algo.PresearchDivision)
}

// Transformed returns a copy of c with f applied to every control point.
// f must be affine for the image to transform accordingly.
func (c *BSplineCurve[P]) Transformed(f func(P) P) *BSplineCurve[P] {
	res := c.Clone()
	for i, p := range res.controlPoints {
		res.controlPoints[i] = f(p)
	}
	return res
}

// sampleParameters returns division samples per knot span of both knot
// vectors over their common range, including both ends.
func sampleParameters(a, b KnotVector, division int) []float64 {
	ka, _ := a.ToSingleMulti()
	kb, _ := b.ToSingleMulti()
	merged := append(append([]float64(nil), ka...), kb...)
	sort.Float64s(merged)
	knots, _ := KnotVector(merged).ToSingleMulti()
	res := []float64{knots[0]}
	for i := 1; i < len(knots); i++ {
		for j := 1; j <= division; j++ {
			res = append(res, knots[i-1]+(knots[i]-knots[i-1])*float64(j)/float64(division))
		}
	}
	return res
}

// NearAsCurve reports whether c and other have the same parameter range
// and agree within base.Tolerance at 3*max(degree) samples per knot span
// of either curve.
func (c *BSplineCurve[P]) NearAsCurve(other *BSplineCurve[P]) bool {
	return nearAsCurve[P](c, other, c.knotVec, other.knotVec, 3*max(c.Degree(), other.Degree()), base.Near[P])
}

// Near2AsCurve is NearAsCurve with base.Tolerance2.
func (c *BSplineCurve[P]) Near2AsCurve(other *BSplineCurve[P]) bool {
	return nearAsCurve[P](c, other, c.knotVec, other.knotVec, 3*max(c.Degree(), other.Degree()), base.Near2[P])
}

type evaluator[P any] interface {
	Subs(t float64) P
}

func nearAsCurve[P base.Vector[P]](a, b evaluator[P], ka, kb KnotVector, division int, near func(P, P) bool) bool {
	if !ka.SameRange(kb) {
		return false
	}
	for _, t := range sampleParameters(ka, kb, max(division, 1)) {
		if !near(a.Subs(t), b.Subs(t)) {
			return false
		}
	}
	return true
}

// IsArcOf reports whether c is a part of curve, traversed in the same
// direction, starting at curve.Subs(hint). It returns the parameter of
// curve at the end of c.
func (c *BSplineCurve[P]) IsArcOf(curve *BSplineCurve[P], hint float64) (float64, bool) {
	return isArcOf[P](c, curve, c.knotVec, 3*max(c.Degree(), curve.Degree())+1, hint)
}

func isArcOf[P base.Vector[P]](arc evaluator[P], curve algo.ParametricCurve[P], kv KnotVector, division int, hint float64) (float64, bool) {
	knots, _ := kv.ToSingleMulti()
	if !base.Near(arc.Subs(knots[0]), curve.Subs(hint)) {
		return hint, false
	}
	for i := 1; i < len(knots); i++ {
		for j := 1; j <= division; j++ {
			t := knots[i-1] + (knots[i]-knots[i-1])*float64(j)/float64(division)
			pt := arc.Subs(t)
			res, ok := algo.SearchNearestParameter[P](curve, pt, hint, algo.SearchTrials)
			if !ok || res < hint-base.Tolerance || !base.Near(curve.Subs(res), pt) {
				return hint, false
			}
			hint = res
		}
	}
	return hint, true
}
