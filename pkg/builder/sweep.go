package builder

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/npillmayer/schuko/tracing"

	"github.com/chazu/brepcad/pkg/base"
	"github.com/chazu/brepcad/pkg/geometry"
	"github.com/chazu/brepcad/pkg/topology"
)

// tracer traces with key 'brep.builder'.
func tracer() tracing.Trace {
	return tracing.Select("brep.builder")
}

// faceNormal returns the normal of a planar face in the direction of the
// face.
func faceNormal(f Face) v3.Vec {
	n := newellNormal(samples(f.Boundaries()[0]))
	return n.MulScalar(1 / n.Length())
}

// Extrude sweeps the planar face f along dir into a closed solid. The
// source face becomes the inverted bottom, so its edges are shared with
// the solid.
func Extrude(f Face, dir v3.Vec) (*Solid, error) {
	n := faceNormal(f)
	h := n.Dot(dir)
	if math.Abs(h) < base.Tolerance {
		return nil, fmt.Errorf("%w: %v", ErrZeroExtrusion, dir)
	}
	if h < 0 {
		f = f.Inverse()
	}
	shift := func(p v3.Vec) v3.Vec { return p.Add(dir) }

	vertices := make(map[topology.VertexID[v3.Vec]]Vertex)
	verticals := make(map[topology.VertexID[v3.Vec]]Edge)
	lift := func(v Vertex) (Vertex, Edge) {
		if top, ok := vertices[v.ID()]; ok {
			return top, verticals[v.ID()]
		}
		top := NewVertex(shift(v.Point()))
		vertical := topology.NewEdgeUnchecked(v, top, lineCurve(v.Point(), top.Point()))
		vertices[v.ID()], verticals[v.ID()] = top, vertical
		return top, vertical
	}
	edges := make(map[topology.EdgeID[Curve]]Edge)
	liftEdge := func(e Edge) Edge {
		top, ok := edges[e.ID()]
		if !ok {
			front, _ := lift(e.AbsoluteFront())
			back, _ := lift(e.AbsoluteBack())
			top = topology.NewEdgeUnchecked(front, back, e.Curve().Transformed(shift))
			edges[e.ID()] = top
		}
		if !e.Orientation() {
			top = top.Inverse()
		}
		return top
	}

	var topBounds []Wire
	for _, w := range f.AbsoluteBoundaries() {
		tw := make(Wire, len(w))
		for i, e := range w {
			tw[i] = liftEdge(e)
		}
		topBounds = append(topBounds, tw)
	}
	top := topology.NewFaceUnchecked(topBounds, f.Surface().Transformed(shift))
	if !f.Orientation() {
		top = top.Inverse()
	}

	faces := []Face{f.Inverse(), top}
	for _, w := range f.Boundaries() {
		for _, e := range w {
			side, err := sideFace(e, liftEdge(e), verticals[e.Front().ID()], verticals[e.Back().ID()])
			if err != nil {
				return nil, err
			}
			faces = append(faces, side)
		}
	}
	tracer().Debugf("extrude: %d faces along %v", len(faces), dir)
	return topology.NewSolid(topology.NewShell(faces...))
}

// sideFace returns the ruled face between bottom and top, bounded by the
// verticals at the front and back of bottom.
func sideFace(bottom, top, front, back Edge) (Face, error) {
	c0, c1 := bottom.OrientedCurve(), top.OrientedCurve()
	ruled, err := geometry.RuledSurface(c0.NonRationalized(), c1.NonRationalized())
	if err != nil {
		return Face{}, err
	}
	wire := Wire{bottom, back, top.Inverse(), front.Inverse()}
	return topology.NewFace([]Wire{wire}, geometry.NewNurbsSurface[base.HVec3, v3.Vec](ruled))
}

// Box returns the axis aligned box [0, x] × [0, y] × [0, z].
func Box(x, y, z float64) (*Solid, error) {
	w, err := PolygonWire(v3.Vec{}, v3.Vec{X: x}, v3.Vec{X: x, Y: y}, v3.Vec{Y: y})
	if err != nil {
		return nil, err
	}
	f, err := PlanarFace(w)
	if err != nil {
		return nil, err
	}
	return Extrude(f, v3.Vec{Z: z})
}

// Cylinder returns the cylinder of the given radius standing on the disk
// around the origin in the xy plane.
func Cylinder(height, radius float64) (*Solid, error) {
	w, err := Circle(v3.Vec{}, v3.Vec{Z: 1}, radius)
	if err != nil {
		return nil, err
	}
	f, err := PlanarFace(w)
	if err != nil {
		return nil, err
	}
	return Extrude(f, v3.Vec{Z: height})
}

// Transformed returns a copy of s with f applied to all geometry. f must be
// affine and orientation preserving.
func Transformed(s *Solid, f func(v3.Vec) v3.Vec) *Solid {
	return topology.MapSolid(s,
		f,
		func(c Curve) Curve { return c.Transformed(f) },
		func(sf Surface) Surface { return sf.Transformed(f) },
	)
}

// TransformedM44 applies the homogeneous matrix m to s.
func TransformedM44(s *Solid, m sdf.M44) *Solid {
	return Transformed(s, m.MulPosition)
}

// Translated returns s moved by d.
func Translated(s *Solid, d v3.Vec) *Solid {
	return TransformedM44(s, sdf.Translate3d(d))
}
