package geometry

import "errors"

// Construction and editing errors. Callers test them with errors.Is; the
// returned errors usually wrap one of these with detail.
var (
	ErrEmptyControlPoints     = errors.New("geometry: no control points")
	ErrTooShortKnotVector     = errors.New("geometry: knot vector too short for control points")
	ErrTooLargeDegree         = errors.New("geometry: degree too large")
	ErrZeroRange              = errors.New("geometry: zero-length parameter range")
	ErrCannotRemoveKnot       = errors.New("geometry: knot removal would change the curve")
	ErrNotClampedKnotVector   = errors.New("geometry: knot vector is not clamped")
	ErrDifferentBackFront     = errors.New("geometry: back and front knots differ")
	ErrDisconnectedParameters = errors.New("geometry: parameter ranges are not connected")
	ErrDisconnectedPoints     = errors.New("geometry: end points are not connected")
	ErrNotSortedVector        = errors.New("geometry: knot vector is not sorted")
	ErrGaussianElimination    = errors.New("geometry: singular linear system")
	ErrDifferentLength        = errors.New("geometry: lengths differ")
	ErrIrregularControlPoints = errors.New("geometry: control point rows differ in length")
)
