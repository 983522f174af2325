// Package builder instantiates the topology over 3D NURBS geometry and
// provides the modelling operations importers and the kernel call: lines,
// arcs, polygon wires, planar faces, extrusion and transforms.
package builder

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/brepcad/pkg/base"
	"github.com/chazu/brepcad/pkg/geometry"
	"github.com/chazu/brepcad/pkg/topology"
)

type (
	Curve   = *geometry.NurbsCurve3
	Surface = *geometry.NurbsSurface3
	Vertex  = topology.Vertex[v3.Vec]
	Edge    = topology.Edge[v3.Vec, Curve]
	Wire    = topology.Wire[v3.Vec, Curve]
	Face    = topology.Face[v3.Vec, Curve, Surface]
	Shell   = topology.Shell[v3.Vec, Curve, Surface]
	Solid   = topology.Solid[v3.Vec, Curve, Surface]
)

var (
	ErrTooFewPoints  = errors.New("builder: a polygon needs at least three points")
	ErrNotPlanar     = errors.New("builder: boundary is not planar")
	ErrZeroExtrusion = errors.New("builder: extrusion vector is zero or parallel to the face")
)

// NewVertex returns a vertex at p.
func NewVertex(p v3.Vec) Vertex { return topology.NewVertex(p) }

// lineCurve is the degree 1 curve from p0 to p1 on [0, 1].
func lineCurve(p0, p1 v3.Vec) Curve {
	c := geometry.NewBSplineCurveUnchecked(geometry.BezierKnot(1), []v3.Vec{p0, p1})
	return geometry.NurbsFromBSpline[base.HVec3, v3.Vec](c)
}

// Line returns the straight edge from v0 to v1.
func Line(v0, v1 Vertex) (Edge, error) {
	return topology.NewEdge(v0, v1, lineCurve(v0.Point(), v1.Point()))
}

// Bezier returns the Bezier edge from v0 to v1 with the given inner control
// points.
func Bezier(v0, v1 Vertex, inner ...v3.Vec) (Edge, error) {
	points := append([]v3.Vec{v0.Point()}, inner...)
	points = append(points, v1.Point())
	c, err := geometry.NewBSplineCurve(geometry.BezierKnot(len(points)-1), points)
	if err != nil {
		return Edge{}, err
	}
	return topology.NewEdge(v0, v1, geometry.NurbsFromBSpline[base.HVec3, v3.Vec](c))
}

// CircleArc returns the circular edge from v0 through transit to v1.
func CircleArc(v0, v1 Vertex, transit v3.Vec) (Edge, error) {
	c, err := geometry.ThreePointArc(v0.Point(), transit, v1.Point())
	if err != nil {
		return Edge{}, err
	}
	return topology.NewEdge(v0, v1, c)
}

// PolygonWire returns the closed wire of straight edges through points.
func PolygonWire(points ...v3.Vec) (Wire, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(points))
	}
	vs := topology.NewVertices(points...)
	wire := make(Wire, len(vs))
	for i := range vs {
		if base.Near(points[i], points[(i+1)%len(points)]) {
			return nil, fmt.Errorf("polygon edge %d: %w", i, geometry.ErrZeroRange)
		}
		e, err := Line(vs[i], vs[(i+1)%len(vs)])
		if err != nil {
			return nil, fmt.Errorf("polygon edge %d: %w", i, err)
		}
		wire[i] = e
	}
	return wire, nil
}

// Circle returns a closed wire of two half circles around center in the
// plane with the given normal.
func Circle(center, normal v3.Vec, radius float64) (Wire, error) {
	x, y, err := frame(normal)
	if err != nil {
		return nil, err
	}
	upper, err := geometry.CircleArc3(center, x, y, radius, 0, math.Pi)
	if err != nil {
		return nil, err
	}
	lower, err := geometry.CircleArc3(center, x, y, radius, math.Pi, 2*math.Pi)
	if err != nil {
		return nil, err
	}
	v0 := NewVertex(upper.Front())
	v1 := NewVertex(upper.Back())
	return Wire{
		topology.NewEdgeUnchecked(v0, v1, upper),
		topology.NewEdgeUnchecked(v1, v0, lower),
	}, nil
}

// frame returns an orthonormal pair spanning the plane orthogonal to n.
func frame(n v3.Vec) (x, y v3.Vec, err error) {
	l := n.Length()
	if base.SoSmall(l) {
		return x, y, fmt.Errorf("%w: zero normal", geometry.ErrZeroRange)
	}
	n = n.MulScalar(1 / l)
	helper := v3.Vec{X: 1}
	if math.Abs(n.X) > 0.9 {
		helper = v3.Vec{Y: 1}
	}
	x = helper.Sub(n.MulScalar(helper.Dot(n)))
	x = x.MulScalar(1 / x.Length())
	return x, n.Cross(x), nil
}

// samples returns points along every edge of w, dense enough to bound the
// wire and to fit its plane.
func samples(w Wire) []v3.Vec {
	var pts []v3.Vec
	for _, e := range w {
		_, ps := e.OrientedCurve().ParameterDivision(0.01 * (1 + e.Front().Point().Sub(e.Back().Point()).Length()))
		pts = append(pts, ps[:len(ps)-1]...)
	}
	return pts
}

// newellNormal returns the area weighted normal of the closed polygon pts.
func newellNormal(pts []v3.Vec) v3.Vec {
	var n v3.Vec
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

// PlanarFace returns the face bounded by wires on their common plane. The
// first wire is the outer boundary; the face normal follows it by the right
// hand rule. Holes running the same way as the outer boundary are inverted.
func PlanarFace(wires ...Wire) (Face, error) {
	if len(wires) == 0 || len(wires[0]) == 0 {
		return Face{}, topology.ErrEmptyWire
	}
	outer := samples(wires[0])
	n := newellNormal(outer)
	x, y, err := frame(n)
	if err != nil {
		return Face{}, fmt.Errorf("%w: degenerate outer boundary", ErrNotPlanar)
	}
	normal := x.Cross(y)
	wires = append([]Wire(nil), wires...)
	for i := 1; i < len(wires); i++ {
		if len(wires[i]) > 0 && newellNormal(samples(wires[i])).Dot(normal) > 0 {
			wires[i] = wires[i].Inverse()
		}
	}
	origin := outer[0]
	lo := [2]float64{math.Inf(1), math.Inf(1)}
	hi := [2]float64{math.Inf(-1), math.Inf(-1)}
	for _, w := range wires {
		for _, p := range samples(w) {
			d := p.Sub(origin)
			if h := d.Dot(normal); math.Abs(h) > base.Tolerance {
				return Face{}, fmt.Errorf("%w: point %v is %g off the plane", ErrNotPlanar, p, h)
			}
			lo[0], hi[0] = math.Min(lo[0], d.Dot(x)), math.Max(hi[0], d.Dot(x))
			lo[1], hi[1] = math.Min(lo[1], d.Dot(y)), math.Max(hi[1], d.Dot(y))
		}
	}
	// pad so that arcs bulging between samples stay on the patch
	pad := 0.05 * math.Max(hi[0]-lo[0], hi[1]-lo[1])
	lo[0], lo[1], hi[0], hi[1] = lo[0]-pad, lo[1]-pad, hi[0]+pad, hi[1]+pad
	corner := func(i, j int) v3.Vec {
		a := lo[0] + float64(i)*(hi[0]-lo[0])
		b := lo[1] + float64(j)*(hi[1]-lo[1])
		return origin.Add(x.MulScalar(a)).Add(y.MulScalar(b))
	}
	plane, err := geometry.NewBSplineSurface(geometry.BezierKnot(1), geometry.BezierKnot(1), [][]v3.Vec{
		{corner(0, 0), corner(0, 1)},
		{corner(1, 0), corner(1, 1)},
	})
	if err != nil {
		return Face{}, err
	}
	return topology.NewFace(wires, geometry.NurbsSurfaceFromBSpline[base.HVec3, v3.Vec](plane))
}
