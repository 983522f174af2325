package meshing

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// PolygonMesh is an indexed triangle mesh. Normals are per position;
// triangles are counterclockwise seen from the side the normals point to.
type PolygonMesh struct {
	Positions []v3.Vec
	Normals   []v3.Vec
	Indices   [][3]int
	// DroppedFaces counts faces that could not be triangulated.
	DroppedFaces int
}

// TriangleCount returns the number of triangles.
func (m *PolygonMesh) TriangleCount() int { return len(m.Indices) }

// IsEmpty reports whether m has no triangles.
func (m *PolygonMesh) IsEmpty() bool { return len(m.Indices) == 0 }

// Append adds the triangles of other, shifting its indices.
func (m *PolygonMesh) Append(other *PolygonMesh) {
	offset := len(m.Positions)
	m.Positions = append(m.Positions, other.Positions...)
	m.Normals = append(m.Normals, other.Normals...)
	for _, tri := range other.Indices {
		m.Indices = append(m.Indices, [3]int{tri[0] + offset, tri[1] + offset, tri[2] + offset})
	}
	m.DroppedFaces += other.DroppedFaces
}

// Bounds returns the axis-aligned bounding box of the positions.
func (m *PolygonMesh) Bounds() (lo, hi v3.Vec) {
	if len(m.Positions) == 0 {
		return
	}
	lo = v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi = v3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, p := range m.Positions {
		lo = v3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = v3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return lo, hi
}

// Area returns the total triangle area.
func (m *PolygonMesh) Area() float64 {
	var area float64
	for _, tri := range m.Indices {
		a, b, c := m.Positions[tri[0]], m.Positions[tri[1]], m.Positions[tri[2]]
		area += b.Sub(a).Cross(c.Sub(a)).Length() / 2
	}
	return area
}

// Volume returns the signed volume enclosed by the triangles, positive for
// a closed mesh with outward winding.
func (m *PolygonMesh) Volume() float64 {
	var vol float64
	for _, tri := range m.Indices {
		a, b, c := m.Positions[tri[0]], m.Positions[tri[1]], m.Positions[tri[2]]
		vol += a.Dot(b.Cross(c)) / 6
	}
	return vol
}
