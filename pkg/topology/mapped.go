package topology

// mapper rebuilds a topology over new geometry, creating one new cell per
// source cell so that shared geometry stays shared.
type mapper[P any, C Curve[C], S any, Q any, D Curve[D], T any] struct {
	fp       func(P) Q
	fc       func(C) D
	fs       func(S) T
	vertices map[VertexID[P]]Vertex[Q]
	edges    map[EdgeID[C]]Edge[Q, D]
	surfaces map[FaceID[S]]*cell[T]
}

func newMapper[P any, C Curve[C], S any, Q any, D Curve[D], T any](fp func(P) Q, fc func(C) D, fs func(S) T) *mapper[P, C, S, Q, D, T] {
	return &mapper[P, C, S, Q, D, T]{
		fp:       fp,
		fc:       fc,
		fs:       fs,
		vertices: make(map[VertexID[P]]Vertex[Q]),
		edges:    make(map[EdgeID[C]]Edge[Q, D]),
		surfaces: make(map[FaceID[S]]*cell[T]),
	}
}

func (m *mapper[P, C, S, Q, D, T]) vertex(v Vertex[P]) Vertex[Q] {
	if res, ok := m.vertices[v.ID()]; ok {
		return res
	}
	res := NewVertex(m.fp(v.Point()))
	m.vertices[v.ID()] = res
	return res
}

func (m *mapper[P, C, S, Q, D, T]) edge(e Edge[P, C]) Edge[Q, D] {
	res, ok := m.edges[e.ID()]
	if !ok {
		res = newEdge(m.vertex(e.AbsoluteFront()), m.vertex(e.AbsoluteBack()), m.fc(e.Curve()))
		m.edges[e.ID()] = res
	}
	res.orientation = e.orientation
	return res
}

func (m *mapper[P, C, S, Q, D, T]) wire(w Wire[P, C]) Wire[Q, D] {
	res := make(Wire[Q, D], len(w))
	for i, e := range w {
		res[i] = m.edge(e)
	}
	return res
}

func (m *mapper[P, C, S, Q, D, T]) face(f Face[P, C, S]) Face[Q, D, T] {
	surface, ok := m.surfaces[f.ID()]
	if !ok {
		surface = newCell(m.fs(f.Surface()))
		m.surfaces[f.ID()] = surface
	}
	bounds := make([]Wire[Q, D], len(f.boundaries))
	for i, w := range f.boundaries {
		bounds[i] = m.wire(w)
	}
	return Face[Q, D, T]{boundaries: bounds, surface: surface, orientation: f.orientation}
}

func (m *mapper[P, C, S, Q, D, T]) shell(s *Shell[P, C, S]) *Shell[Q, D, T] {
	res := &Shell[Q, D, T]{faces: make([]Face[Q, D, T], len(s.faces))}
	for i, f := range s.faces {
		res.faces[i] = m.face(f)
	}
	return res
}

// MapWire returns a copy of w over new geometry. Vertices and edges that
// occur twice in w are shared in the copy.
func MapWire[P any, C Curve[C], Q any, D Curve[D]](w Wire[P, C], fp func(P) Q, fc func(C) D) Wire[Q, D] {
	return newMapper[P, C, struct{}, Q, D, struct{}](fp, fc, nil).wire(w)
}

// MapFace returns a copy of f over new geometry.
func MapFace[P any, C Curve[C], S any, Q any, D Curve[D], T any](f Face[P, C, S], fp func(P) Q, fc func(C) D, fs func(S) T) Face[Q, D, T] {
	return newMapper(fp, fc, fs).face(f)
}

// MapShell returns a copy of s over new geometry with the same sharing
// structure: each vertex, edge and surface cell of s is mapped once.
func MapShell[P any, C Curve[C], S any, Q any, D Curve[D], T any](s *Shell[P, C, S], fp func(P) Q, fc func(C) D, fs func(S) T) *Shell[Q, D, T] {
	return newMapper(fp, fc, fs).shell(s)
}

// MapSolid is MapShell for every boundary of s, sharing one mapping across
// all shells.
func MapSolid[P any, C Curve[C], S any, Q any, D Curve[D], T any](s *Solid[P, C, S], fp func(P) Q, fc func(C) D, fs func(S) T) *Solid[Q, D, T] {
	m := newMapper(fp, fc, fs)
	res := &Solid[Q, D, T]{boundaries: make([]*Shell[Q, D, T], len(s.boundaries))}
	for i, shell := range s.boundaries {
		res.boundaries[i] = m.shell(shell)
	}
	return res
}
