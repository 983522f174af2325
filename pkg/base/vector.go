package base

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vector is the arithmetic contract of a control point. Curves and surfaces
// only ever form affine combinations of their control points, so this is
// all the spline code needs. The zero value of a Vector must be the origin.
//
// v2.Vec and v3.Vec from sdfx satisfy Vector directly.
type Vector[V any] interface {
	Add(V) V
	Sub(V) V
	MulScalar(float64) V
	Dot(V) float64
	Length() float64
}

// Homogeneous is a Vector one dimension higher than its affine point type P.
// The last coordinate is the weight; the remaining coordinates hold the
// weighted point.
type Homogeneous[V any, P any] interface {
	Vector[V]
	// Weight returns the last coordinate.
	Weight() float64
	// Truncate drops the weight without dividing by it.
	Truncate() P
	// ToPoint divides the truncated vector by the weight.
	ToPoint() P
	// FromPoint returns (w*p, w). The receiver is ignored; the method lets
	// generic code construct V values.
	FromPoint(p P, w float64) V
}

// Near reports whether a and b are closer than Tolerance.
func Near[V Vector[V]](a, b V) bool {
	return a.Sub(b).Length() < Tolerance
}

// Near2 reports whether a and b are closer than Tolerance2.
func Near2[V Vector[V]](a, b V) bool {
	return a.Sub(b).Length() < Tolerance2
}

// Distance2 returns the squared distance between a and b.
func Distance2[V Vector[V]](a, b V) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}

// Lerp returns a + (b-a)*t.
func Lerp[V Vector[V]](a, b V, t float64) V {
	return a.Add(b.Sub(a).MulScalar(t))
}

//-----------------------------------------------------------------------------

// Scalar is a one-dimensional point.
type Scalar float64

func (a Scalar) Add(b Scalar) Scalar        { return a + b }
func (a Scalar) Sub(b Scalar) Scalar        { return a - b }
func (a Scalar) MulScalar(k float64) Scalar { return a * Scalar(k) }
func (a Scalar) Dot(b Scalar) float64       { return float64(a * b) }
func (a Scalar) Length() float64            { return math.Abs(float64(a)) }
func (a Scalar) String() string             { return fmt.Sprintf("%g", float64(a)) }

//-----------------------------------------------------------------------------

// HVec2 is the homogeneous form of a 2D point: (w*x, w*y, w).
type HVec2 struct {
	X, Y, W float64
}

// NewHVec2 returns the homogeneous coordinate of p with weight w.
func NewHVec2(p v2.Vec, w float64) HVec2 {
	return HVec2{p.X * w, p.Y * w, w}
}

func (a HVec2) Add(b HVec2) HVec2 { return HVec2{a.X + b.X, a.Y + b.Y, a.W + b.W} }
func (a HVec2) Sub(b HVec2) HVec2 { return HVec2{a.X - b.X, a.Y - b.Y, a.W - b.W} }
func (a HVec2) MulScalar(k float64) HVec2 {
	return HVec2{a.X * k, a.Y * k, a.W * k}
}
func (a HVec2) Dot(b HVec2) float64 { return a.X*b.X + a.Y*b.Y + a.W*b.W }
func (a HVec2) Length() float64     { return math.Sqrt(a.Dot(a)) }
func (a HVec2) Weight() float64     { return a.W }
func (a HVec2) Truncate() v2.Vec    { return v2.Vec{X: a.X, Y: a.Y} }
func (a HVec2) ToPoint() v2.Vec     { return v2.Vec{X: a.X / a.W, Y: a.Y / a.W} }

func (HVec2) FromPoint(p v2.Vec, w float64) HVec2 { return NewHVec2(p, w) }

//-----------------------------------------------------------------------------

// HVec3 is the homogeneous form of a 3D point: (w*x, w*y, w*z, w).
type HVec3 struct {
	X, Y, Z, W float64
}

// NewHVec3 returns the homogeneous coordinate of p with weight w.
func NewHVec3(p v3.Vec, w float64) HVec3 {
	return HVec3{p.X * w, p.Y * w, p.Z * w, w}
}

func (a HVec3) Add(b HVec3) HVec3 {
	return HVec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z, a.W + b.W}
}
func (a HVec3) Sub(b HVec3) HVec3 {
	return HVec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z, a.W - b.W}
}
func (a HVec3) MulScalar(k float64) HVec3 {
	return HVec3{a.X * k, a.Y * k, a.Z * k, a.W * k}
}
func (a HVec3) Dot(b HVec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W }
func (a HVec3) Length() float64     { return math.Sqrt(a.Dot(a)) }
func (a HVec3) Weight() float64     { return a.W }
func (a HVec3) Truncate() v3.Vec    { return v3.Vec{X: a.X, Y: a.Y, Z: a.Z} }
func (a HVec3) ToPoint() v3.Vec {
	return v3.Vec{X: a.X / a.W, Y: a.Y / a.W, Z: a.Z / a.W}
}

func (HVec3) FromPoint(p v3.Vec, w float64) HVec3 { return NewHVec3(p, w) }

// Compile-time checks.
var (
	_ Vector[Scalar]             = Scalar(0)
	_ Vector[v2.Vec]             = v2.Vec{}
	_ Vector[v3.Vec]             = v3.Vec{}
	_ Homogeneous[HVec2, v2.Vec] = HVec2{}
	_ Homogeneous[HVec3, v3.Vec] = HVec3{}
)
