package base

import "math"

// Tolerance is the library-wide geometric tolerance in model units. Knot
// removal, curve equality, parameter search and the "same point" tests of
// the topology layer are all decided against it.
const Tolerance = 1.0e-6

// Tolerance2 is Tolerance squared.
const Tolerance2 = Tolerance * Tolerance

// SoSmall reports whether |x| < Tolerance.
func SoSmall(x float64) bool {
	return math.Abs(x) < Tolerance
}

// SoSmall2 reports whether |x| < Tolerance2.
func SoSmall2(x float64) bool {
	return math.Abs(x) < Tolerance2
}

// NearFloat reports whether a and b differ by less than Tolerance.
func NearFloat(a, b float64) bool {
	return SoSmall(a - b)
}

// InvOrZero returns 1/x, or 0 when x is zero. Dividing by an empty knot
// span is defined as zero throughout the spline code.
func InvOrZero(x float64) float64 {
	if x == 0 {
		return 0
	}
	return 1 / x
}
