package topology

import (
	"fmt"

	"github.com/chazu/brepcad/pkg/base"
)

// FaceID identifies a face by the address of its surface cell.
type FaceID[S any] struct{ ptr *cell[S] }

// Face is an oriented handle on a shared surface bounded by closed wires.
// The first boundary is the outer one, the rest are holes. Boundaries are
// stored in the direction of the surface; orientation false reverses them.
type Face[P any, C Curve[C], S any] struct {
	boundaries  []Wire[P, C]
	surface     *cell[S]
	orientation bool
}

// NewFace returns the face on surface with the given boundaries. Every
// boundary must be non-empty, closed and simple, and no two boundaries may
// share a vertex.
func NewFace[P any, C Curve[C], S any](boundaries []Wire[P, C], surface S) (Face[P, C, S], error) {
	if err := checkBoundaries(boundaries); err != nil {
		return Face[P, C, S]{}, err
	}
	return newFace(boundaries, surface), nil
}

// NewFaceUnchecked is NewFace without validation in release builds.
func NewFaceUnchecked[P any, C Curve[C], S any](boundaries []Wire[P, C], surface S) Face[P, C, S] {
	if base.DebugBuild {
		if err := checkBoundaries(boundaries); err != nil {
			panic(err)
		}
	}
	return newFace(boundaries, surface)
}

func newFace[P any, C Curve[C], S any](boundaries []Wire[P, C], surface S) Face[P, C, S] {
	bounds := make([]Wire[P, C], len(boundaries))
	for i, w := range boundaries {
		bounds[i] = w.Clone()
	}
	return Face[P, C, S]{boundaries: bounds, surface: newCell(surface), orientation: true}
}

func checkBoundaries[P any, C Curve[C]](boundaries []Wire[P, C]) error {
	for i, w := range boundaries {
		switch {
		case len(w) == 0:
			return fmt.Errorf("%w: boundary %d", ErrEmptyWire, i)
		case !w.IsClosed():
			return fmt.Errorf("%w: boundary %d", ErrNotClosedWire, i)
		case !w.IsSimple():
			return fmt.Errorf("%w: boundary %d", ErrNotSimpleWire, i)
		}
	}
	if !DisjointWires(boundaries...) {
		return ErrNotDisjointWires
	}
	return nil
}

// Boundaries returns copies of the boundary wires in the direction of the
// face.
func (f Face[P, C, S]) Boundaries() []Wire[P, C] {
	res := make([]Wire[P, C], len(f.boundaries))
	for i, w := range f.boundaries {
		if f.orientation {
			res[i] = w.Clone()
		} else {
			res[i] = w.Inverse()
		}
	}
	return res
}

// AbsoluteBoundaries returns the boundaries in the direction of the
// surface. The returned slice is shared with f.
func (f Face[P, C, S]) AbsoluteBoundaries() []Wire[P, C] { return f.boundaries }

// Edges returns the edges of all boundaries in the direction of the face.
func (f Face[P, C, S]) Edges() []Edge[P, C] {
	var res []Edge[P, C]
	for _, w := range f.Boundaries() {
		res = append(res, w...)
	}
	return res
}

// Vertices returns the vertices of all boundaries.
func (f Face[P, C, S]) Vertices() []Vertex[P] {
	var res []Vertex[P]
	for _, w := range f.boundaries {
		res = append(res, w.Vertices()...)
	}
	return res
}

// Orientation reports whether the face normal is the surface normal.
func (f Face[P, C, S]) Orientation() bool { return f.orientation }

// ID returns the identity of f.
func (f Face[P, C, S]) ID() FaceID[S] { return FaceID[S]{f.surface} }

// IsSameFace reports whether f and other share a surface cell.
func (f Face[P, C, S]) IsSameFace(other Face[P, C, S]) bool { return f.surface == other.surface }

// Surface returns the shared surface.
func (f Face[P, C, S]) Surface() S { return f.surface.get() }

// SetSurface replaces the surface for every handle on this face.
func (f Face[P, C, S]) SetSurface(s S) { f.surface.set(s) }

// Inverse returns the face with flipped orientation on the same surface.
func (f Face[P, C, S]) Inverse() Face[P, C, S] {
	f.orientation = !f.orientation
	return f
}

// Invert flips the orientation of f.
func (f *Face[P, C, S]) Invert() { f.orientation = !f.orientation }

// withBoundaries returns f with its own copy of the absolute boundaries.
func (f Face[P, C, S]) withBoundaries(bounds []Wire[P, C]) Face[P, C, S] {
	f.boundaries = bounds
	return f
}
