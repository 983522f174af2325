// Package meshing turns a shell into a triangle mesh within a chord
// tolerance.
//
// Edge polylines are computed once per edge and shared by every face using
// the edge, so neighbouring faces meet at identical points. Each face is
// triangulated in its surface parameter space: the boundary polylines are
// lifted to (u, v), holes are bridged into the outer loop, the polygon is
// ear clipped, interior samples from the surface parameter division are
// inserted and the result is improved by Lawson flips. Faces are
// independent and run on a worker pool; the results are concatenated in
// face order, so a single worker yields the same topology.
package meshing

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'brep.meshing'.
func tracer() tracing.Trace {
	return tracing.Select("brep.meshing")
}
