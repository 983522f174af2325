// Package topology implements the boundary-representation graph: vertices,
// edges, wires, faces, shells and solids over shared geometry.
//
// Geometry is held in lockable cells. Copying a handle copies the cell
// pointer, never the geometry, so many oriented handles alias the same point,
// curve or surface. The identity of a vertex, edge or face is the address of
// its cell; a mutation through one handle (SetPoint, SetCurve, SetSurface) is
// visible through every other handle on the same cell.
//
// Orientation lives on the handle. Edge.Inverse and Face.Inverse flip a flag
// and leave the shared geometry untouched; OrientedCurve returns an inverted
// copy when the flag says so.
package topology

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'brep.topology'.
func tracer() tracing.Trace {
	return tracing.Select("brep.topology")
}
