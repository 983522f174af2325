package topology

import (
	"github.com/chazu/brepcad/pkg/algo"
	"github.com/chazu/brepcad/pkg/base"
)

// CuttableCurve is edge geometry that can be split at one of its points.
// Cut keeps the part before t in the receiver and returns the rest.
type CuttableCurve[C any, P any] interface {
	Curve[C]
	ParameterRange() (float64, float64)
	SearchParameter(point P, hint *float64, trials int) (float64, bool)
	Cut(t float64) C
}

// ConcatCurve is edge geometry that can be joined to a following curve.
type ConcatCurve[C any] interface {
	Curve[C]
	ParameterRange() (float64, float64)
	KnotTranslate(x float64)
	Concat(other C) error
}

// CutEdge splits the edge id of shell at vertex, which must lie in the
// interior of its curve. Every occurrence of the edge in a face boundary is
// replaced by the two halves, traversed in the direction of the occurrence.
// It returns false, leaving shell unchanged, if the edge is not in shell or
// the vertex is not an interior point of the curve.
func CutEdge[P any, C CuttableCurve[C, P], S any](shell *Shell[P, C, S], id EdgeID[C], vertex Vertex[P]) bool {
	edge, ok := findEdge(shell, id)
	if !ok {
		return false
	}
	if vertex.ID() == edge.AbsoluteFront().ID() || vertex.ID() == edge.AbsoluteBack().ID() {
		return false
	}
	curve := edge.Curve().Clone()
	t, ok := curve.SearchParameter(vertex.Point(), nil, algo.SearchTrials)
	if !ok {
		tracer().Debugf("cut edge: vertex %v is not on the curve", vertex.Point())
		return false
	}
	t0, t1 := curve.ParameterRange()
	if t < t0+base.Tolerance || t > t1-base.Tolerance {
		tracer().Debugf("cut edge: parameter %g at the end of [%g, %g]", t, t0, t1)
		return false
	}
	right := curve.Cut(t)
	forward := Wire[P, C]{
		newEdge(edge.AbsoluteFront(), vertex, curve),
		newEdge(vertex, edge.AbsoluteBack(), right),
	}
	backward := forward.Inverse()
	for fi, face := range shell.faces {
		var bounds []Wire[P, C]
		for wi, w := range face.boundaries {
			if !containsEdge(w, id) {
				continue
			}
			if bounds == nil {
				bounds = append([]Wire[P, C](nil), face.boundaries...)
			}
			w = w.Clone()
			for i := 0; i < len(w); i++ {
				if w[i].ID() != id {
					continue
				}
				sub := forward
				if !w[i].Orientation() {
					sub = backward
				}
				w.SwapEdgeIntoWire(i, sub)
				i++
			}
			bounds[wi] = w
		}
		if bounds != nil {
			shell.faces[fi] = face.withBoundaries(bounds)
		}
	}
	return true
}

// RemoveVertexByConcatEdges removes the vertex id from shell by joining the
// two edges that meet there. The vertex must be the junction of the same
// two edges in one or two boundary occurrences; otherwise, or if the curves
// cannot be joined, shell is unchanged and false is returned. The returned
// edge runs in the direction of the first occurrence.
func RemoveVertexByConcatEdges[P any, C ConcatCurve[C], S any](shell *Shell[P, C, S], id VertexID[P]) (Edge[P, C], bool) {
	type occurrence struct{ face, wire, idx int }
	var occs []occurrence
	for fi, face := range shell.faces {
		for wi, w := range face.boundaries {
			for i, e := range w {
				if e.Back().ID() == id {
					occs = append(occs, occurrence{fi, wi, i})
				}
			}
		}
	}
	if len(occs) == 0 || len(occs) > 2 {
		return Edge[P, C]{}, false
	}
	pair := func(o occurrence) (Edge[P, C], Edge[P, C]) {
		w := shell.faces[o.face].boundaries[o.wire]
		return w[o.idx], w[(o.idx+1)%len(w)]
	}
	e0, e1 := pair(occs[0])
	if e0.ID() == e1.ID() || e0.Front().ID() == e1.Back().ID() {
		return Edge[P, C]{}, false
	}
	if len(occs) == 2 {
		o := occs[1]
		if o.face == occs[0].face && o.wire == occs[0].wire {
			return Edge[P, C]{}, false
		}
		a, b := pair(o)
		if !(a.ID() == e0.ID() && b.ID() == e1.ID()) && !(a.ID() == e1.ID() && b.ID() == e0.ID()) {
			return Edge[P, C]{}, false
		}
	}

	c0, c1 := e0.OrientedCurve(), e1.OrientedCurve()
	_, back := c0.ParameterRange()
	front, _ := c1.ParameterRange()
	c1.KnotTranslate(back - front)
	if err := c0.Concat(c1); err != nil {
		tracer().Debugf("remove vertex: %v", err)
		return Edge[P, C]{}, false
	}
	merged := newEdge(e0.Front(), e1.Back(), c0)

	for _, o := range occs {
		face := shell.faces[o.face]
		w := face.boundaries[o.wire]
		repl := merged
		if w[o.idx].ID() != e0.ID() {
			repl = merged.Inverse()
		}
		next := (o.idx + 1) % len(w)
		var nw Wire[P, C]
		if next == 0 {
			nw = append(nw, w[1:o.idx]...)
			nw = append(nw, repl)
		} else {
			nw = append(nw, w[:o.idx]...)
			nw = append(nw, repl)
			nw = append(nw, w[next+1:]...)
		}
		bounds := append([]Wire[P, C](nil), face.boundaries...)
		bounds[o.wire] = nw
		shell.faces[o.face] = face.withBoundaries(bounds)
	}
	return merged, true
}

func findEdge[P any, C Curve[C], S any](shell *Shell[P, C, S], id EdgeID[C]) (Edge[P, C], bool) {
	for _, face := range shell.faces {
		for _, w := range face.boundaries {
			for _, e := range w {
				if e.ID() == id {
					return e.absolute(), true
				}
			}
		}
	}
	return Edge[P, C]{}, false
}

func containsEdge[P any, C Curve[C]](w Wire[P, C], id EdgeID[C]) bool {
	for _, e := range w {
		if e.ID() == id {
			return true
		}
	}
	return false
}
