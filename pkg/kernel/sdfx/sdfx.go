// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library, and bridges kernel meshes
// to sdfx triangles for STL export.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/brepcad/pkg/kernel"
)

// Compile-time interface checks.
var (
	_ kernel.Kernel   = (*SdfxKernel)(nil)
	_ kernel.Booleans = (*SdfxKernel)(nil)
)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx. Its solids are implicit,
// so it also offers the booleans the boundary kernel does not.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{cells: defaultMeshCells}
}

// NewWithCells returns a kernel meshing with the given number of marching
// cubes cells along the longest side.
func NewWithCells(cells int) *SdfxKernel {
	if cells < 1 {
		cells = defaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Box creates a box with the given dimensions. The resulting solid has its
// minimum corner at the origin (0,0,0), like the boundary kernel's boxes.
// sdf.Box3D centers the box at the origin, so we translate by half-dimensions.
func (k *SdfxKernel) Box(x, y, z float64) (kernel.Solid, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: box: %w", err)
	}
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return wrap(sdf.Transform3D(s, m)), nil
}

// Cylinder creates a cylinder around the Z axis standing on the xy plane.
func (k *SdfxKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder: %w", err)
	}
	return wrap(sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: height / 2}))), nil
}

// Extrude sweeps a polygon along dir. sdfx extrudes 2D shapes only along
// Z, so the profile must lie in a plane z = const and dir must be parallel
// to the Z axis.
func (k *SdfxKernel) Extrude(profile []kernel.Point, holes [][]kernel.Point, dir kernel.Point) (kernel.Solid, error) {
	if len(profile) < 3 {
		return nil, fmt.Errorf("sdfx: extrude: profile has %d points", len(profile))
	}
	z0 := profile[0][2]
	flat := func(points []kernel.Point) (sdf.SDF2, error) {
		vs := make([]v2.Vec, len(points))
		for i, p := range points {
			if math.Abs(p[2]-z0) > 1e-9 {
				return nil, fmt.Errorf("%w: profile is not parallel to the xy plane", kernel.ErrUnsupported)
			}
			vs[i] = v2.Vec{X: p[0], Y: p[1]}
		}
		return sdf.Polygon2D(vs)
	}
	if math.Abs(dir[0]) > 1e-9 || math.Abs(dir[1]) > 1e-9 {
		return nil, fmt.Errorf("%w: extrusion along %v", kernel.ErrUnsupported, dir)
	}
	h := dir[2]
	if h == 0 {
		return nil, errors.New("sdfx: extrude: zero direction")
	}
	shape, err := flat(profile)
	if err != nil {
		return nil, fmt.Errorf("sdfx: extrude: %w", err)
	}
	for i, hole := range holes {
		s, err := flat(hole)
		if err != nil {
			return nil, fmt.Errorf("sdfx: extrude hole %d: %w", i, err)
		}
		shape = sdf.Difference2D(shape, s)
	}
	// Extrude3D is centered on z = 0
	solid := sdf.Extrude3D(shape, math.Abs(h))
	return wrap(sdf.Transform3D(solid, sdf.Translate3d(v3.Vec{Z: z0 + h/2}))), nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), RotationM44(x, y, z)))
}

// RotationM44 returns the rotation by Euler angles in degrees, applied in
// the order X, Y, Z.
func RotationM44(x, y, z float64) sdf.M44 {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0
	return sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	renderer := render.NewMarchingCubesUniform(k.cells)
	return FromTriangles(render.ToTriangles(unwrap(s), renderer)), nil
}

// FromTriangles converts sdfx triangles to an unindexed kernel mesh with
// flat face normals.
func FromTriangles(triangles []*sdf.Triangle3) *kernel.Mesh {
	numVerts := len(triangles) * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}
}

// Triangles converts kernel meshes to sdfx triangles. Degenerate triangles
// are skipped.
func Triangles(meshes ...*kernel.Mesh) []*sdf.Triangle3 {
	var res []*sdf.Triangle3
	for _, m := range meshes {
		for i := 0; i < m.TriangleCount(); i++ {
			var tri sdf.Triangle3
			for j, p := range m.Triangle(i) {
				tri[j] = v3.Vec{X: p[0], Y: p[1], Z: p[2]}
			}
			if tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0])).Length() == 0 {
				continue
			}
			res = append(res, &tri)
		}
	}
	return res
}

// SaveSTL writes meshes as one binary STL file.
func SaveSTL(path string, meshes ...*kernel.Mesh) error {
	for _, m := range meshes {
		if err := m.Check(); err != nil {
			return fmt.Errorf("sdfx: part %q: %w", m.PartName, err)
		}
	}
	tris := Triangles(meshes...)
	if len(tris) == 0 {
		return errors.New("sdfx: no triangles to save")
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("sdfx: save %s: %w", path, err)
	}
	return nil
}
