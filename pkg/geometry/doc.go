// Package geometry implements non-rational and rational B-spline curves and
// surfaces over any point type satisfying base.Vector.
//
// A rational (NURBS) object is a B-spline over homogeneous points; every
// evaluation delegates to the non-rational engine and applies the quotient
// rule on top (see RationalDers and RationalSurfaceDers). Knot editing
// (insertion, removal, degree elevation, cutting and concatenation) never
// moves the image of a curve: operations that cannot guarantee this return
// an error instead.
//
// Concrete 2D and 3D instantiations use the vector types of sdfx, see
// aliases.go.
package geometry
