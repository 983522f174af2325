// Package kernel defines the abstract geometry kernel interface.
// Implementations (brep, sdfx) provide solid modeling behind this
// interface. The kernel abstraction allows swapping backends without
// changing the rest of the system.
package kernel

import "errors"

// ErrUnsupported is returned by a backend for an operation or an argument
// it cannot represent.
var ErrUnsupported = errors.New("kernel: unsupported operation")

// Point is a point in model coordinates.
type Point = [3]float64

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns an axis-aligned box enclosing the solid.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives. Box has its minimum corner at the origin; Cylinder stands
	// on the xy plane around the z axis.
	Box(x, y, z float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)
	// Extrude sweeps the planar polygon profile minus holes along dir.
	Extrude(profile []Point, holes [][]Point, dir Point) (Solid, error)

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Booleans is implemented by kernels that can combine solids.
type Booleans interface {
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid
}
