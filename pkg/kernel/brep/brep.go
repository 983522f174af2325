// Package brep implements the kernel.Kernel interface on the boundary
// representation: solids are NURBS faces glued into closed shells by the
// builder package and meshed by the meshing package.
package brep

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/npillmayer/schuko/tracing"

	"github.com/chazu/brepcad/pkg/builder"
	"github.com/chazu/brepcad/pkg/kernel"
	"github.com/chazu/brepcad/pkg/meshing"
)

// tracer traces with key 'brep.kernel'.
func tracer() tracing.Trace {
	return tracing.Select("brep.kernel")
}

// Compile-time interface check.
var _ kernel.Kernel = (*BrepKernel)(nil)

// brepSolid wraps a builder.Solid to implement kernel.Solid.
type brepSolid struct {
	s *builder.Solid
}

// BoundingBox returns the box of the edge control points. Every face of a
// kernel solid is planar or ruled between edges, so the box encloses it.
func (s *brepSolid) BoundingBox() (min, max [3]float64) {
	first := true
	for _, shell := range s.s.Boundaries() {
		for _, e := range shell.UniqueEdges() {
			for _, p := range e.Curve().ControlPoints() {
				q := [3]float64{p.X, p.Y, p.Z}
				for k := range q {
					if first || q[k] < min[k] {
						min[k] = q[k]
					}
					if first || q[k] > max[k] {
						max[k] = q[k]
					}
				}
				first = false
			}
		}
	}
	return min, max
}

// Solid returns the underlying topology of a solid built by a BrepKernel.
func Solid(s kernel.Solid) *builder.Solid {
	return unwrap(s)
}

// BrepKernel implements kernel.Kernel on B-rep solids.
type BrepKernel struct {
	opts meshing.Options
}

// New returns a kernel meshing with opts.
func New(opts meshing.Options) *BrepKernel {
	return &BrepKernel{opts: opts}
}

func unwrap(s kernel.Solid) *builder.Solid {
	return s.(*brepSolid).s
}

func wrap(s *builder.Solid) kernel.Solid {
	return &brepSolid{s: s}
}

func vec(p kernel.Point) v3.Vec {
	return v3.Vec{X: p[0], Y: p[1], Z: p[2]}
}

// Box creates a box with its minimum corner at the origin.
func (k *BrepKernel) Box(x, y, z float64) (kernel.Solid, error) {
	s, err := builder.Box(x, y, z)
	if err != nil {
		return nil, fmt.Errorf("brep: box %gx%gx%g: %w", x, y, z, err)
	}
	return wrap(s), nil
}

// Cylinder creates a cylinder standing on the xy plane.
func (k *BrepKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	s, err := builder.Cylinder(height, radius)
	if err != nil {
		return nil, fmt.Errorf("brep: cylinder h=%g r=%g: %w", height, radius, err)
	}
	return wrap(s), nil
}

// Extrude sweeps the polygon profile with the given holes along dir.
func (k *BrepKernel) Extrude(profile []kernel.Point, holes [][]kernel.Point, dir kernel.Point) (kernel.Solid, error) {
	wire := func(points []kernel.Point) (builder.Wire, error) {
		vs := make([]v3.Vec, len(points))
		for i, p := range points {
			vs[i] = vec(p)
		}
		return builder.PolygonWire(vs...)
	}
	outer, err := wire(profile)
	if err != nil {
		return nil, fmt.Errorf("brep: extrude profile: %w", err)
	}
	wires := []builder.Wire{outer}
	for i, h := range holes {
		w, err := wire(h)
		if err != nil {
			return nil, fmt.Errorf("brep: extrude hole %d: %w", i, err)
		}
		wires = append(wires, w)
	}
	f, err := builder.PlanarFace(wires...)
	if err != nil {
		return nil, fmt.Errorf("brep: extrude: %w", err)
	}
	s, err := builder.Extrude(f, vec(dir))
	if err != nil {
		return nil, fmt.Errorf("brep: extrude: %w", err)
	}
	return wrap(s), nil
}

// Translate moves a solid by (x, y, z).
func (k *BrepKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return wrap(builder.Translated(unwrap(s), v3.Vec{X: x, Y: y, Z: z}))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *BrepKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return wrap(builder.TransformedM44(unwrap(s), m))
}

// ToMesh tessellates a solid within the kernel tolerance. Faces the mesher
// drops are traced; the remaining triangles are returned.
func (k *BrepKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	pm, err := meshing.TessellateSolid(unwrap(s), k.opts)
	if err != nil {
		return nil, fmt.Errorf("brep: %w", err)
	}
	if pm.DroppedFaces > 0 {
		tracer().Errorf("mesh is missing %d faces", pm.DroppedFaces)
	}
	return FromPolygonMesh(pm), nil
}

// FromPolygonMesh flattens m into the float32 layout of kernel.Mesh.
func FromPolygonMesh(m *meshing.PolygonMesh) *kernel.Mesh {
	res := &kernel.Mesh{
		Vertices: make([]float32, 0, 3*len(m.Positions)),
		Normals:  make([]float32, 0, 3*len(m.Normals)),
		Indices:  make([]uint32, 0, 3*len(m.Indices)),
	}
	for _, p := range m.Positions {
		res.Vertices = append(res.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
	}
	for _, n := range m.Normals {
		res.Normals = append(res.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	for _, tri := range m.Indices {
		res.Indices = append(res.Indices, uint32(tri[0]), uint32(tri[1]), uint32(tri[2]))
	}
	return res
}
