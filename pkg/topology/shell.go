package topology

// ShellCondition classifies how consistently the faces of a shell share
// their edges. The conditions are ordered: each one implies all smaller ones.
type ShellCondition int

const (
	// Irregular shells have an edge in three or more faces.
	Irregular ShellCondition = iota
	// Regular shells use every edge at most twice.
	Regular
	// Oriented shells are regular and never use an edge twice in the same
	// direction.
	Oriented
	// Closed shells use every edge exactly twice, once in each direction.
	Closed
)

func (c ShellCondition) String() string {
	switch c {
	case Irregular:
		return "irregular"
	case Regular:
		return "regular"
	case Oriented:
		return "oriented"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Shell is a collection of faces.
type Shell[P any, C Curve[C], S any] struct {
	faces []Face[P, C, S]
}

// NewShell returns the shell of the given faces.
func NewShell[P any, C Curve[C], S any](faces ...Face[P, C, S]) *Shell[P, C, S] {
	return &Shell[P, C, S]{faces: append([]Face[P, C, S](nil), faces...)}
}

// Faces returns the faces. The slice is shared with s.
func (s *Shell[P, C, S]) Faces() []Face[P, C, S] { return s.faces }

// Len returns the number of faces.
func (s *Shell[P, C, S]) Len() int { return len(s.faces) }

// Push appends a face.
func (s *Shell[P, C, S]) Push(f Face[P, C, S]) { s.faces = append(s.faces, f) }

// Edges returns every edge occurrence in face direction, face by face.
func (s *Shell[P, C, S]) Edges() []Edge[P, C] {
	var res []Edge[P, C]
	for _, f := range s.faces {
		res = append(res, f.Edges()...)
	}
	return res
}

// UniqueEdges returns one handle per edge ID in order of first occurrence,
// each with orientation true.
func (s *Shell[P, C, S]) UniqueEdges() []Edge[P, C] {
	seen := make(map[EdgeID[C]]struct{})
	var res []Edge[P, C]
	for _, f := range s.faces {
		for _, w := range f.boundaries {
			for _, e := range w {
				if _, ok := seen[e.ID()]; ok {
					continue
				}
				seen[e.ID()] = struct{}{}
				res = append(res, e.absolute())
			}
		}
	}
	return res
}

// Vertices returns one handle per vertex in order of first occurrence.
func (s *Shell[P, C, S]) Vertices() []Vertex[P] {
	seen := make(map[VertexID[P]]struct{})
	var res []Vertex[P]
	for _, f := range s.faces {
		for _, v := range f.Vertices() {
			if _, ok := seen[v.ID()]; !ok {
				seen[v.ID()] = struct{}{}
				res = append(res, v)
			}
		}
	}
	return res
}

// Inverse returns the shell with every face inverted.
func (s *Shell[P, C, S]) Inverse() *Shell[P, C, S] {
	res := &Shell[P, C, S]{faces: make([]Face[P, C, S], len(s.faces))}
	for i, f := range s.faces {
		res.faces[i] = f.Inverse()
	}
	return res
}

// edgeUse counts the occurrences of an edge per direction.
type edgeUse struct{ forward, backward int }

func (u edgeUse) condition() ShellCondition {
	switch {
	case u.forward+u.backward > 2:
		return Irregular
	case u.forward == 2 || u.backward == 2:
		return Regular
	case u.forward == 1 && u.backward == 1:
		return Closed
	default:
		return Oriented
	}
}

func (s *Shell[P, C, S]) edgeUses() map[EdgeID[C]]edgeUse {
	uses := make(map[EdgeID[C]]edgeUse)
	for _, e := range s.Edges() {
		u := uses[e.ID()]
		if e.Orientation() {
			u.forward++
		} else {
			u.backward++
		}
		uses[e.ID()] = u
	}
	return uses
}

// ShellCondition returns the weakest per-edge classification over all
// edges. An empty shell is Closed.
func (s *Shell[P, C, S]) ShellCondition() ShellCondition {
	uses := s.edgeUses()
	res := Closed
	for _, u := range uses {
		res = min(res, u.condition())
	}
	return res
}

// ExtractBoundaries returns the free boundary of the shell: the edges used
// by exactly one face, chained into wires in face direction.
func (s *Shell[P, C, S]) ExtractBoundaries() []Wire[P, C] {
	uses := s.edgeUses()
	var free []Edge[P, C]
	for _, e := range s.Edges() {
		if u := uses[e.ID()]; u.forward+u.backward == 1 {
			free = append(free, e)
		}
	}
	byFront := make(map[VertexID[P]][]int)
	for i, e := range free {
		byFront[e.Front().ID()] = append(byFront[e.Front().ID()], i)
	}
	used := make([]bool, len(free))
	next := func(v VertexID[P]) (int, bool) {
		for _, i := range byFront[v] {
			if !used[i] {
				return i, true
			}
		}
		return 0, false
	}
	var res []Wire[P, C]
	for start := range free {
		if used[start] {
			continue
		}
		used[start] = true
		wire := Wire[P, C]{free[start]}
		first := free[start].Front().ID()
		for {
			back := wire.BackEdge().Back().ID()
			if back == first {
				break
			}
			i, ok := next(back)
			if !ok {
				break
			}
			used[i] = true
			wire = append(wire, free[i])
		}
		res = append(res, wire)
	}
	return res
}

// IsConnected reports whether every face can be reached from the first
// one through shared edges.
func (s *Shell[P, C, S]) IsConnected() bool {
	return len(s.ConnectedComponents()) <= 1
}

// ConnectedComponents splits the shell into maximal edge-connected parts.
func (s *Shell[P, C, S]) ConnectedComponents() []*Shell[P, C, S] {
	parent := make([]int, len(s.faces))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	owner := make(map[EdgeID[C]]int)
	for i, f := range s.faces {
		for _, w := range f.boundaries {
			for _, e := range w {
				if j, ok := owner[e.ID()]; ok {
					parent[find(i)] = find(j)
				} else {
					owner[e.ID()] = i
				}
			}
		}
	}
	index := make(map[int]int)
	var res []*Shell[P, C, S]
	for i, f := range s.faces {
		root := find(i)
		k, ok := index[root]
		if !ok {
			k = len(res)
			index[root] = k
			res = append(res, &Shell[P, C, S]{})
		}
		res[k].faces = append(res[k].faces, f)
	}
	return res
}

// SingularVertices returns the vertices around which the faces do not form
// a single fan. Two edges at a vertex are linked when they are consecutive
// in some boundary; a vertex is singular when its edges fall apart into more
// than one linked group.
func (s *Shell[P, C, S]) SingularVertices() []Vertex[P] {
	type link struct{ a, b EdgeID[C] }
	links := make(map[VertexID[P]][]link)
	vertices := make(map[VertexID[P]]Vertex[P])
	var order []VertexID[P]
	for _, f := range s.faces {
		for _, w := range f.boundaries {
			for i, e := range w {
				next := w[(i+1)%len(w)]
				v := e.Back()
				if _, ok := vertices[v.ID()]; !ok {
					vertices[v.ID()] = v
					order = append(order, v.ID())
				}
				links[v.ID()] = append(links[v.ID()], link{e.ID(), next.ID()})
			}
		}
	}
	var res []Vertex[P]
	for _, id := range order {
		parent := make(map[EdgeID[C]]EdgeID[C])
		var find func(EdgeID[C]) EdgeID[C]
		find = func(e EdgeID[C]) EdgeID[C] {
			p, ok := parent[e]
			if !ok || p == e {
				parent[e] = e
				return e
			}
			r := find(p)
			parent[e] = r
			return r
		}
		for _, l := range links[id] {
			parent[find(l.a)] = find(l.b)
		}
		keys := make([]EdgeID[C], 0, len(parent))
		for e := range parent {
			keys = append(keys, e)
		}
		roots := make(map[EdgeID[C]]struct{})
		for _, e := range keys {
			roots[find(e)] = struct{}{}
		}
		if len(roots) > 1 {
			res = append(res, vertices[id])
		}
	}
	return res
}
