package topology

// VertexID identifies a vertex by the address of its point cell.
type VertexID[P any] struct{ ptr *cell[P] }

// Vertex is a handle on a shared point.
type Vertex[P any] struct {
	point *cell[P]
}

// NewVertex returns a vertex on a new point cell.
func NewVertex[P any](p P) Vertex[P] {
	return Vertex[P]{point: newCell(p)}
}

// NewVertices returns one new vertex per point.
func NewVertices[P any](points ...P) []Vertex[P] {
	res := make([]Vertex[P], len(points))
	for i, p := range points {
		res[i] = NewVertex(p)
	}
	return res
}

// Point returns the current point.
func (v Vertex[P]) Point() P { return v.point.get() }

// SetPoint replaces the point for every handle on this vertex.
func (v Vertex[P]) SetPoint(p P) { v.point.set(p) }

// ID returns the identity of v.
func (v Vertex[P]) ID() VertexID[P] { return VertexID[P]{v.point} }

// Mapped returns a vertex on a new cell holding f(point).
func (v Vertex[P]) Mapped(f func(P) P) Vertex[P] {
	return NewVertex(f(v.Point()))
}
