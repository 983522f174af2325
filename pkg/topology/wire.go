package topology

// Wire is an ordered sequence of edges.
type Wire[P any, C Curve[C]] []Edge[P, C]

// NewWire returns the wire of the given edges.
func NewWire[P any, C Curve[C]](edges ...Edge[P, C]) Wire[P, C] {
	return append(Wire[P, C](nil), edges...)
}

// Len returns the number of edges.
func (w Wire[P, C]) Len() int { return len(w) }

// FrontEdge returns the first edge. The wire must not be empty.
func (w Wire[P, C]) FrontEdge() Edge[P, C] { return w[0] }

// BackEdge returns the last edge. The wire must not be empty.
func (w Wire[P, C]) BackEdge() Edge[P, C] { return w[len(w)-1] }

// FrontVertex returns the front of the first edge.
func (w Wire[P, C]) FrontVertex() (Vertex[P], bool) {
	if len(w) == 0 {
		return Vertex[P]{}, false
	}
	return w[0].Front(), true
}

// BackVertex returns the back of the last edge.
func (w Wire[P, C]) BackVertex() (Vertex[P], bool) {
	if len(w) == 0 {
		return Vertex[P]{}, false
	}
	return w[len(w)-1].Back(), true
}

// PushBack appends e.
func (w *Wire[P, C]) PushBack(e Edge[P, C]) { *w = append(*w, e) }

// PushFront prepends e.
func (w *Wire[P, C]) PushFront(e Edge[P, C]) {
	*w = append(Wire[P, C]{e}, *w...)
}

// Append appends the edges of other.
func (w *Wire[P, C]) Append(other Wire[P, C]) { *w = append(*w, other...) }

// IsContinuous reports whether every edge ends where the next one starts.
func (w Wire[P, C]) IsContinuous() bool {
	for i := 0; i+1 < len(w); i++ {
		if w[i].Back().ID() != w[i+1].Front().ID() {
			return false
		}
	}
	return true
}

// IsCyclic reports whether the wire ends at its front vertex.
func (w Wire[P, C]) IsCyclic() bool {
	return len(w) > 0 && w[0].Front().ID() == w[len(w)-1].Back().ID()
}

// IsClosed reports whether the wire is continuous and cyclic.
func (w Wire[P, C]) IsClosed() bool { return w.IsContinuous() && w.IsCyclic() }

// Vertices returns the front vertex of each edge, followed by the back of
// the last edge unless the wire is cyclic.
func (w Wire[P, C]) Vertices() []Vertex[P] {
	res := make([]Vertex[P], 0, len(w)+1)
	for _, e := range w {
		res = append(res, e.Front())
	}
	if len(w) > 0 && !w.IsCyclic() {
		res = append(res, w[len(w)-1].Back())
	}
	return res
}

// IsSimple reports whether no vertex is passed twice.
func (w Wire[P, C]) IsSimple() bool {
	seen := make(map[VertexID[P]]struct{}, len(w)+1)
	for _, v := range w.Vertices() {
		if _, ok := seen[v.ID()]; ok {
			return false
		}
		seen[v.ID()] = struct{}{}
	}
	return true
}

// Inverse returns the wire traversed backwards.
func (w Wire[P, C]) Inverse() Wire[P, C] {
	res := make(Wire[P, C], len(w))
	for i, e := range w {
		res[len(w)-1-i] = e.Inverse()
	}
	return res
}

// Invert reverses w in place.
func (w Wire[P, C]) Invert() {
	for i, j := 0, len(w)-1; i <= j; i, j = i+1, j-1 {
		w[i], w[j] = w[j].Inverse(), w[i].Inverse()
	}
}

// Clone returns a copy of the edge sequence. The edges still share their
// curves.
func (w Wire[P, C]) Clone() Wire[P, C] { return append(Wire[P, C](nil), w...) }

// SwapEdgeIntoWire replaces the edge at idx with the edges of wire. The
// replacement must start and end at the ends of the replaced edge;
// otherwise w is left unchanged and false is returned.
func (w *Wire[P, C]) SwapEdgeIntoWire(idx int, wire Wire[P, C]) bool {
	if idx < 0 || idx >= len(*w) || len(wire) == 0 {
		return false
	}
	front, _ := wire.FrontVertex()
	back, _ := wire.BackVertex()
	old := (*w)[idx]
	if old.Front().ID() != front.ID() || old.Back().ID() != back.ID() {
		return false
	}
	res := make(Wire[P, C], 0, len(*w)+len(wire)-1)
	res = append(res, (*w)[:idx]...)
	res = append(res, wire...)
	res = append(res, (*w)[idx+1:]...)
	*w = res
	return true
}

// DisjointWires reports whether no vertex belongs to two of the wires.
func DisjointWires[P any, C Curve[C]](wires ...Wire[P, C]) bool {
	owner := make(map[VertexID[P]]int)
	for i, w := range wires {
		for _, v := range w.Vertices() {
			if j, ok := owner[v.ID()]; ok && j != i {
				return false
			}
			owner[v.ID()] = i
		}
	}
	return true
}
