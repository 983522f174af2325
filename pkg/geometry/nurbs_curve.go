package geometry

import (
	"fmt"

	"github.com/chazu/brepcad/pkg/algo"
	"github.com/chazu/brepcad/pkg/base"
)

// NurbsCurve is a rational B-spline curve: a BSplineCurve over homogeneous
// points V whose image is projected to the affine points P.
type NurbsCurve[V base.Homogeneous[V, P], P base.Vector[P]] struct {
	curve *BSplineCurve[V]
}

// NewNurbsCurve wraps a B-spline curve over homogeneous points. The curve is
// not copied.
func NewNurbsCurve[V base.Homogeneous[V, P], P base.Vector[P]](curve *BSplineCurve[V]) *NurbsCurve[V, P] {
	return &NurbsCurve[V, P]{curve: curve}
}

// NurbsFromBSplineAndWeights returns the rational curve with the control
// points of curve and the given weights.
func NurbsFromBSplineAndWeights[V base.Homogeneous[V, P], P base.Vector[P]](curve *BSplineCurve[P], weights []float64) (*NurbsCurve[V, P], error) {
	if len(weights) != len(curve.controlPoints) {
		return nil, fmt.Errorf("%w: %d control points, %d weights", ErrDifferentLength, len(curve.controlPoints), len(weights))
	}
	var zero V
	points := make([]V, len(weights))
	for i, p := range curve.controlPoints {
		points[i] = zero.FromPoint(p, weights[i])
	}
	return &NurbsCurve[V, P]{curve: &BSplineCurve[V]{knotVec: curve.knotVec.Clone(), controlPoints: points}}, nil
}

// NurbsFromBSpline embeds a non-rational curve with unit weights.
func NurbsFromBSpline[V base.Homogeneous[V, P], P base.Vector[P]](curve *BSplineCurve[P]) *NurbsCurve[V, P] {
	weights := make([]float64, len(curve.controlPoints))
	for i := range weights {
		weights[i] = 1
	}
	res, _ := NurbsFromBSplineAndWeights[V, P](curve, weights)
	return res
}

// Clone returns a deep copy of c.
func (c *NurbsCurve[V, P]) Clone() *NurbsCurve[V, P] {
	return &NurbsCurve[V, P]{curve: c.curve.Clone()}
}

// NonRationalized returns the homogeneous B-spline curve. It is shared
// with c.
func (c *NurbsCurve[V, P]) NonRationalized() *BSplineCurve[V] { return c.curve }

// KnotVec returns the knot vector.
func (c *NurbsCurve[V, P]) KnotVec() KnotVector { return c.curve.knotVec }

// Degree returns the degree.
func (c *NurbsCurve[V, P]) Degree() int { return c.curve.Degree() }

// ParameterRange returns the first and the last knot.
func (c *NurbsCurve[V, P]) ParameterRange() (float64, float64) { return c.curve.ParameterRange() }

// ControlPoint returns the i-th control point divided by its weight.
func (c *NurbsCurve[V, P]) ControlPoint(i int) P { return c.curve.controlPoints[i].ToPoint() }

// ControlPoints returns the dehomogenized control points.
func (c *NurbsCurve[V, P]) ControlPoints() []P {
	res := make([]P, len(c.curve.controlPoints))
	for i, v := range c.curve.controlPoints {
		res[i] = v.ToPoint()
	}
	return res
}

// Weights returns the weights of the control points.
func (c *NurbsCurve[V, P]) Weights() []float64 {
	res := make([]float64, len(c.curve.controlPoints))
	for i, v := range c.curve.controlPoints {
		res[i] = v.Weight()
	}
	return res
}

// Front returns the point at the start of the parameter range.
func (c *NurbsCurve[V, P]) Front() P { return c.curve.Front().ToPoint() }

// Back returns the point at the end of the parameter range.
func (c *NurbsCurve[V, P]) Back() P { return c.curve.Back().ToPoint() }

// Subs returns the point at t.
func (c *NurbsCurve[V, P]) Subs(t float64) P { return c.curve.Subs(t).ToPoint() }

// Ders returns the derivatives of orders 0 to n at t.
func (c *NurbsCurve[V, P]) Ders(n int, t float64) CurveDers[P] {
	return RationalDers[V, P](c.curve.Ders(n, t))
}

// DerN returns the n-th derivative at t.
func (c *NurbsCurve[V, P]) DerN(n int, t float64) P { return c.Ders(n, t).At(n) }

// Der returns the first derivative at t.
func (c *NurbsCurve[V, P]) Der(t float64) P { return c.DerN(1, t) }

// Der2 returns the second derivative at t.
func (c *NurbsCurve[V, P]) Der2(t float64) P { return c.DerN(2, t) }

// ParameterDivision samples the whole range within tol.
func (c *NurbsCurve[V, P]) ParameterDivision(tol float64) ([]float64, []P) {
	t0, t1 := c.ParameterRange()
	return algo.ParameterDivision[P](c, t0, t1, tol)
}

// SearchNearestParameter returns the parameter of the point nearest to
// point.
func (c *NurbsCurve[V, P]) SearchNearestParameter(point P, hint *float64, trials int) (float64, bool) {
	return algo.SearchNearestParameter[P](c, point, c.hintOrPresearch(point, hint), trials)
}

// SearchParameter returns the parameter t with Subs(t) == point.
func (c *NurbsCurve[V, P]) SearchParameter(point P, hint *float64, trials int) (float64, bool) {
	return algo.SearchParameter[P](c, point, c.hintOrPresearch(point, hint), trials)
}

func (c *NurbsCurve[V, P]) hintOrPresearch(point P, hint *float64) float64 {
	if hint != nil {
		return *hint
	}
	t0, t1 := c.ParameterRange()
	return algo.PresearchNearestParameter[P](c, point, t0, t1, algo.PresearchDivision)
}

// AddKnot inserts x without changing the curve.
func (c *NurbsCurve[V, P]) AddKnot(x float64) int { return c.curve.AddKnot(x) }

// TryRemoveKnot removes the knot at idx if the curve does not change.
func (c *NurbsCurve[V, P]) TryRemoveKnot(idx int) error { return c.curve.TryRemoveKnot(idx) }

// RemoveKnot is TryRemoveKnot returning the curve for chaining.
func (c *NurbsCurve[V, P]) RemoveKnot(idx int) (*NurbsCurve[V, P], error) {
	_, err := c.curve.RemoveKnot(idx)
	return c, err
}

// ElevateDegree raises the degree by one.
func (c *NurbsCurve[V, P]) ElevateDegree() { c.curve.ElevateDegree() }

// Clamp clamps both ends of the knot vector.
func (c *NurbsCurve[V, P]) Clamp() { c.curve.Clamp() }

// Optimize removes all removable knots.
func (c *NurbsCurve[V, P]) Optimize() { c.curve.Optimize() }

// Invert reverses the direction of the curve.
func (c *NurbsCurve[V, P]) Invert() { c.curve.Invert() }

// KnotTranslate shifts the parameter range by x.
func (c *NurbsCurve[V, P]) KnotTranslate(x float64) { c.curve.KnotTranslate(x) }

// KnotNormalize maps the parameter range onto [0, 1].
func (c *NurbsCurve[V, P]) KnotNormalize() error { return c.curve.KnotNormalize() }

// Cut splits the curve at t, see BSplineCurve.Cut.
func (c *NurbsCurve[V, P]) Cut(t float64) *NurbsCurve[V, P] {
	right := c.curve.Cut(t)
	if right == nil {
		return nil
	}
	return &NurbsCurve[V, P]{curve: right}
}

// BezierDecomposition returns the rational Bezier segments of c.
func (c *NurbsCurve[V, P]) BezierDecomposition() []*NurbsCurve[V, P] {
	pieces := c.curve.BezierDecomposition()
	res := make([]*NurbsCurve[V, P], len(pieces))
	for i, p := range pieces {
		res[i] = &NurbsCurve[V, P]{curve: p}
	}
	return res
}

// Concat appends other to c. The end points are compared after projection;
// if the joint weights differ, other is rescaled, which does not change its
// image.
func (c *NurbsCurve[V, P]) Concat(other *NurbsCurve[V, P]) error {
	n := len(c.curve.controlPoints)
	back, front := c.curve.controlPoints[n-1], other.curve.controlPoints[0]
	if !c.curve.knotVec.IsClamped(c.Degree()) || !other.curve.knotVec.IsClamped(other.Degree()) {
		return ErrNotClampedKnotVector
	}
	if !base.NearFloat(c.curve.knotVec.Back(), other.curve.knotVec.Front()) {
		return fmt.Errorf("%w: %g != %g", ErrDisconnectedParameters, c.curve.knotVec.Back(), other.curve.knotVec.Front())
	}
	if !base.Near(back.ToPoint(), front.ToPoint()) {
		return ErrDisconnectedPoints
	}
	scaled := other.curve.Clone()
	if s := back.Weight() / front.Weight(); !base.NearFloat(s, 1) {
		for i, v := range scaled.controlPoints {
			scaled.controlPoints[i] = v.MulScalar(s)
		}
	}
	scaled.controlPoints[0] = back
	return c.curve.Concat(scaled)
}

// NearAsCurve reports whether both curves agree within base.Tolerance at
// 3*max(degree) samples per knot span of either curve.
func (c *NurbsCurve[V, P]) NearAsCurve(other *NurbsCurve[V, P]) bool {
	return nearAsCurve[P](c, other, c.KnotVec(), other.KnotVec(), 3*max(c.Degree(), other.Degree()), base.Near[P])
}

// Near2AsCurve is NearAsCurve with base.Tolerance2.
func (c *NurbsCurve[V, P]) Near2AsCurve(other *NurbsCurve[V, P]) bool {
	return nearAsCurve[P](c, other, c.KnotVec(), other.KnotVec(), 3*max(c.Degree(), other.Degree()), base.Near2[P])
}

// IsArcOf reports whether c is a part of curve starting at curve.Subs(hint)
// and returns the parameter of curve at the end of c.
func (c *NurbsCurve[V, P]) IsArcOf(curve *NurbsCurve[V, P], hint float64) (float64, bool) {
	return isArcOf[P](c, curve, c.KnotVec(), 3*max(c.Degree(), curve.Degree())+1, hint)
}

// Transformed returns a copy of c with the affine map f applied to the
// projected control points. The weights are kept.
func (c *NurbsCurve[V, P]) Transformed(f func(P) P) *NurbsCurve[V, P] {
	res := c.Clone()
	for i, v := range res.curve.controlPoints {
		res.curve.controlPoints[i] = v.FromPoint(f(v.ToPoint()), v.Weight())
	}
	return res
}
