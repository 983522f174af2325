package kernel

import (
	"errors"
	"fmt"
)

// ErrMalformedMesh is returned by Check for inconsistent mesh arrays.
var ErrMalformedMesh = errors.New("kernel: malformed mesh")

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which design graph part this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Check reports whether the arrays fit together: whole vertices and
// triangles, one normal per vertex if there are normals at all, and every
// index in range.
func (m *Mesh) Check() error {
	switch {
	case len(m.Vertices)%3 != 0:
		return fmt.Errorf("%w: %d vertex floats", ErrMalformedMesh, len(m.Vertices))
	case len(m.Indices)%3 != 0:
		return fmt.Errorf("%w: %d indices", ErrMalformedMesh, len(m.Indices))
	case len(m.Normals) != 0 && len(m.Normals) != len(m.Vertices):
		return fmt.Errorf("%w: %d normal floats for %d vertices", ErrMalformedMesh, len(m.Normals), m.VertexCount())
	}
	for i, idx := range m.Indices {
		if int(idx) >= m.VertexCount() {
			return fmt.Errorf("%w: index %d of triangle %d is %d, have %d vertices",
				ErrMalformedMesh, i%3, i/3, idx, m.VertexCount())
		}
	}
	return nil
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i uint32) Point {
	return Point{float64(m.Vertices[3*i]), float64(m.Vertices[3*i+1]), float64(m.Vertices[3*i+2])}
}

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) [3]Point {
	return [3]Point{m.Vertex(m.Indices[3*i]), m.Vertex(m.Indices[3*i+1]), m.Vertex(m.Indices[3*i+2])}
}

// Volume returns the signed volume enclosed by the triangles. It is
// positive for a closed mesh wound counterclockwise seen from outside.
func (m *Mesh) Volume() float64 {
	var v float64
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		a, b, c := t[0], t[1], t[2]
		// a · (b × c)
		v += a[0]*(b[1]*c[2]-b[2]*c[1]) + a[1]*(b[2]*c[0]-b[0]*c[2]) + a[2]*(b[0]*c[1]-b[1]*c[0])
	}
	return v / 6
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() (min, max Point) {
	for i := 0; i < m.VertexCount(); i++ {
		p := m.Vertex(uint32(i))
		for k := range p {
			if i == 0 || p[k] < min[k] {
				min[k] = p[k]
			}
			if i == 0 || p[k] > max[k] {
				max[k] = p[k]
			}
		}
	}
	return min, max
}
