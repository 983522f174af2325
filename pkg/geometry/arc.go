package geometry

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/brepcad/pkg/base"
)

// circleArc returns the arc of the circle center + r(cos a·x + sin a·y) for
// a in [start, end] as rational quadratic segments of at most 90 degrees.
// The middle control point of each segment has weight cos(half-angle).
// The parameter range is [0, 1].
func circleArc[V base.Homogeneous[V, P], P base.Vector[P]](center, xaxis, yaxis P, radius, start, end float64) (*NurbsCurve[V, P], error) {
	theta := end - start
	if radius <= 0 || theta <= base.Tolerance {
		return nil, fmt.Errorf("%w: radius %g, angle %g", ErrZeroRange, radius, theta)
	}
	segments := int(math.Ceil(theta/(math.Pi/2) - base.Tolerance))
	segments = max(segments, 1)
	dtheta := theta / float64(segments)
	w := math.Cos(dtheta / 2)
	at := func(a, r float64) P {
		return center.Add(xaxis.MulScalar(r * math.Cos(a))).Add(yaxis.MulScalar(r * math.Sin(a)))
	}
	var zero V
	points := make([]V, 0, 2*segments+1)
	points = append(points, zero.FromPoint(at(start, radius), 1))
	knots := KnotVector{0, 0, 0}
	for i := 1; i <= segments; i++ {
		a := start + dtheta*float64(i)
		mid := a - dtheta/2
		points = append(points,
			zero.FromPoint(at(mid, radius/w), w),
			zero.FromPoint(at(a, radius), 1),
		)
		t := float64(i) / float64(segments)
		if i < segments {
			knots = append(knots, t, t)
		}
	}
	knots = append(knots, 1, 1, 1)
	return NewNurbsCurve[V, P](NewBSplineCurveUnchecked(knots, points)), nil
}

// CircleArc2 returns the counterclockwise arc of the circle around center
// from angle start to angle end (radians, end > start).
func CircleArc2(center v2.Vec, radius, start, end float64) (*NurbsCurve2, error) {
	return circleArc[base.HVec2, v2.Vec](center, v2.Vec{X: 1}, v2.Vec{Y: 1}, radius, start, end)
}

// CircleArc3 returns the arc around center in the plane spanned by the
// orthonormal axes xaxis and yaxis.
func CircleArc3(center, xaxis, yaxis v3.Vec, radius, start, end float64) (*NurbsCurve3, error) {
	return circleArc[base.HVec3, v3.Vec](center, xaxis, yaxis, radius, start, end)
}

// ThreePointArc returns the circular arc starting at p0, passing through p1
// and ending at p2. Collinear points yield ErrZeroRange.
func ThreePointArc(p0, p1, p2 v3.Vec) (*NurbsCurve3, error) {
	u, v := p1.Sub(p0), p2.Sub(p0)
	n := u.Cross(v)
	n2 := n.Dot(n)
	if base.SoSmall2(n2) {
		return nil, fmt.Errorf("%w: collinear points", ErrZeroRange)
	}
	center := p0.Add(v.Cross(n).MulScalar(u.Dot(u)).Add(n.Cross(u).MulScalar(v.Dot(v))).MulScalar(1 / (2 * n2)))
	radius := p0.Sub(center).Length()
	xaxis := p0.Sub(center).MulScalar(1 / radius)
	yaxis := n.Normalize().Cross(xaxis)
	d := p2.Sub(center)
	end := math.Atan2(d.Dot(yaxis), d.Dot(xaxis))
	if end <= 0 {
		end += 2 * math.Pi
	}
	return CircleArc3(center, xaxis, yaxis, radius, 0, end)
}
