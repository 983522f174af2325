package topology

import "github.com/chazu/brepcad/pkg/base"

// EdgeID identifies an edge by the address of its curve cell. An edge and
// its inverse have the same ID.
type EdgeID[C any] struct{ ptr *cell[C] }

// Edge is an oriented handle on a shared curve between two vertices. The
// curve runs from the absolute front to the absolute back; orientation
// false reverses both.
type Edge[P any, C Curve[C]] struct {
	vertices    [2]Vertex[P]
	curve       *cell[C]
	orientation bool
}

// NewEdge returns the edge from front to back along curve. The ends must be
// different vertices.
func NewEdge[P any, C Curve[C]](front, back Vertex[P], curve C) (Edge[P, C], error) {
	if front.ID() == back.ID() {
		return Edge[P, C]{}, ErrSameVertex
	}
	return newEdge(front, back, curve), nil
}

// NewEdgeUnchecked is NewEdge without validation in release builds.
func NewEdgeUnchecked[P any, C Curve[C]](front, back Vertex[P], curve C) Edge[P, C] {
	if base.DebugBuild && front.ID() == back.ID() {
		panic(ErrSameVertex)
	}
	return newEdge(front, back, curve)
}

func newEdge[P any, C Curve[C]](front, back Vertex[P], curve C) Edge[P, C] {
	return Edge[P, C]{
		vertices:    [2]Vertex[P]{front, back},
		curve:       newCell(curve),
		orientation: true,
	}
}

// Front returns the start vertex in the direction of the edge.
func (e Edge[P, C]) Front() Vertex[P] {
	if e.orientation {
		return e.vertices[0]
	}
	return e.vertices[1]
}

// Back returns the end vertex in the direction of the edge.
func (e Edge[P, C]) Back() Vertex[P] {
	if e.orientation {
		return e.vertices[1]
	}
	return e.vertices[0]
}

// Ends returns Front and Back.
func (e Edge[P, C]) Ends() (Vertex[P], Vertex[P]) { return e.Front(), e.Back() }

// AbsoluteFront returns the start vertex of the curve.
func (e Edge[P, C]) AbsoluteFront() Vertex[P] { return e.vertices[0] }

// AbsoluteBack returns the end vertex of the curve.
func (e Edge[P, C]) AbsoluteBack() Vertex[P] { return e.vertices[1] }

// Orientation reports whether the edge runs along its curve.
func (e Edge[P, C]) Orientation() bool { return e.orientation }

// ID returns the identity of the edge.
func (e Edge[P, C]) ID() EdgeID[C] { return EdgeID[C]{e.curve} }

// IsSameEdge reports whether e and other share a curve cell, regardless of
// orientation.
func (e Edge[P, C]) IsSameEdge(other Edge[P, C]) bool { return e.curve == other.curve }

// Inverse returns the edge with flipped orientation on the same curve.
func (e Edge[P, C]) Inverse() Edge[P, C] {
	e.orientation = !e.orientation
	return e
}

// Invert flips the orientation of e.
func (e *Edge[P, C]) Invert() { e.orientation = !e.orientation }

// Curve returns the shared curve in its own direction. Callers must not
// mutate the returned value; use SetCurve.
func (e Edge[P, C]) Curve() C { return e.curve.get() }

// SetCurve replaces the curve for every handle on this edge.
func (e Edge[P, C]) SetCurve(c C) { e.curve.set(c) }

// OrientedCurve returns a copy of the curve running from Front to Back.
func (e Edge[P, C]) OrientedCurve() C {
	c := e.curve.get().Clone()
	if !e.orientation {
		c.Invert()
	}
	return c
}

// absolute returns e with orientation true.
func (e Edge[P, C]) absolute() Edge[P, C] {
	e.orientation = true
	return e
}
