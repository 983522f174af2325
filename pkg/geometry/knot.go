package geometry

import (
	"fmt"
	"sort"

	"github.com/chazu/brepcad/pkg/base"
)

// KnotVector is a non-decreasing sequence of parameters. Two knots count as
// equal when they differ by less than base.Tolerance.
type KnotVector []float64

// NewKnotVector copies knots into a KnotVector, failing with
// ErrNotSortedVector when the sequence decreases anywhere.
func NewKnotVector(knots []float64) (KnotVector, error) {
	for i := 1; i < len(knots); i++ {
		if knots[i] < knots[i-1] {
			return nil, fmt.Errorf("%w: knot %d (%g) < knot %d (%g)", ErrNotSortedVector, i, knots[i], i-1, knots[i-1])
		}
	}
	return append(KnotVector(nil), knots...), nil
}

// UniformKnot returns the clamped knot vector on [0, 1] with division
// equal spans.
func UniformKnot(degree, division int) KnotVector {
	kv := make(KnotVector, 0, 2*degree+division+1)
	for i := 0; i <= degree; i++ {
		kv = append(kv, 0)
	}
	for i := 1; i < division; i++ {
		kv = append(kv, float64(i)/float64(division))
	}
	for i := 0; i <= degree; i++ {
		kv = append(kv, 1)
	}
	return kv
}

// BezierKnot returns the knot vector of a Bezier curve of the given degree.
func BezierKnot(degree int) KnotVector {
	return UniformKnot(degree, 1)
}

// Clone returns a copy of kv.
func (kv KnotVector) Clone() KnotVector {
	return append(KnotVector(nil), kv...)
}

// Front returns the first knot.
func (kv KnotVector) Front() float64 { return kv[0] }

// Back returns the last knot.
func (kv KnotVector) Back() float64 { return kv[len(kv)-1] }

// RangeLength returns Back() - Front(), or 0 for an empty vector.
func (kv KnotVector) RangeLength() float64 {
	if len(kv) == 0 {
		return 0
	}
	return kv.Back() - kv.Front()
}

// SameRange reports whether kv and other span the same interval.
func (kv KnotVector) SameRange(other KnotVector) bool {
	return base.NearFloat(kv.Front(), other.Front()) && base.NearFloat(kv.Back(), other.Back())
}

// Multiplicity returns the number of knots equal to kv[i].
func (kv KnotVector) Multiplicity(i int) int {
	x := kv[i]
	m := 0
	for _, y := range kv {
		if base.NearFloat(x, y) {
			m++
		}
	}
	return m
}

// MaxMultiplicity returns the largest multiplicity of any knot.
func (kv KnotVector) MaxMultiplicity() int {
	_, mults := kv.ToSingleMulti()
	res := 0
	for _, m := range mults {
		res = max(res, m)
	}
	return res
}

// Floor returns the largest index i with kv[i] <= x. The second result is
// false when x is smaller than every knot.
func (kv KnotVector) Floor(x float64) (int, bool) {
	i := sort.Search(len(kv), func(i int) bool { return kv[i] > x })
	if i == 0 {
		return 0, false
	}
	return i - 1, true
}

// AddKnot inserts x keeping kv sorted and returns the index of the new
// knot. Equal knots stay in front of x.
func (kv *KnotVector) AddKnot(x float64) int {
	v := *kv
	i := sort.Search(len(v), func(i int) bool { return v[i] > x })
	v = append(v, 0)
	copy(v[i+1:], v[i:])
	v[i] = x
	*kv = v
	return i
}

// Remove deletes the knot at idx and returns it.
func (kv *KnotVector) Remove(idx int) float64 {
	v := *kv
	x := v[idx]
	*kv = append(v[:idx], v[idx+1:]...)
	return x
}

// ToSingleMulti returns the distinct knots and their multiplicities.
func (kv KnotVector) ToSingleMulti() ([]float64, []int) {
	var knots []float64
	var mults []int
	for _, x := range kv {
		if n := len(knots); n > 0 && base.NearFloat(knots[n-1], x) {
			mults[n-1]++
			continue
		}
		knots = append(knots, x)
		mults = append(mults, 1)
	}
	return knots, mults
}

// FromSingleMulti is the inverse of ToSingleMulti.
func FromSingleMulti(knots []float64, mults []int) (KnotVector, error) {
	if len(knots) != len(mults) {
		return nil, fmt.Errorf("%w: %d knots, %d multiplicities", ErrDifferentLength, len(knots), len(mults))
	}
	var kv KnotVector
	for i, x := range knots {
		if i > 0 && x < knots[i-1] {
			return nil, fmt.Errorf("%w: knot %d", ErrNotSortedVector, i)
		}
		for j := 0; j < mults[i]; j++ {
			kv = append(kv, x)
		}
	}
	return kv, nil
}

// IsClamped reports whether both end multiplicities exceed degree.
func (kv KnotVector) IsClamped(degree int) bool {
	return len(kv) > 0 && kv.Multiplicity(0) > degree && kv.Multiplicity(len(kv)-1) > degree
}

// Concat appends other to kv for curves of the given degree. The shared
// knot keeps multiplicity degree, so the joined curve is C0 at the joint.
func (kv *KnotVector) Concat(other KnotVector, degree int) error {
	if !kv.IsClamped(degree) || !other.IsClamped(degree) {
		return ErrNotClampedKnotVector
	}
	if !base.NearFloat(kv.Back(), other.Front()) {
		return fmt.Errorf("%w: %g != %g", ErrDifferentBackFront, kv.Back(), other.Front())
	}
	v := *kv
	v = append(v[:len(v)-1], other[degree+1:]...)
	*kv = v
	return nil
}

// Invert reflects the knots in the middle of their range.
func (kv KnotVector) Invert() {
	n := len(kv)
	if n == 0 {
		return
	}
	s := kv.Front() + kv.Back()
	for i, j := 0, n-1; i <= j; i, j = i+1, j-1 {
		kv[i], kv[j] = s-kv[j], s-kv[i]
	}
}

// Translate adds x to every knot.
func (kv KnotVector) Translate(x float64) {
	for i := range kv {
		kv[i] += x
	}
}

// Transform maps every knot to scale*knot + x.
func (kv KnotVector) Transform(scale, x float64) {
	for i := range kv {
		kv[i] = scale*kv[i] + x
	}
}

// Normalize maps the knots affinely onto [0, 1].
func (kv KnotVector) Normalize() error {
	l := kv.RangeLength()
	if base.SoSmall(l) {
		return ErrZeroRange
	}
	f := kv.Front()
	for i := range kv {
		kv[i] = (kv[i] - f) / l
	}
	return nil
}

// spanIndex returns the index i of the non-empty span [kv[i], kv[i+1])
// used to evaluate at t. Parameters at or beyond the back use the last
// non-empty span, parameters before the front use the first one.
func (kv KnotVector) spanIndex(t float64) int {
	n := len(kv)
	if t >= kv.Back() {
		for i := n - 2; i >= 0; i-- {
			if kv[i] < kv[i+1] {
				return i
			}
		}
		return 0
	}
	i, ok := kv.Floor(t)
	if !ok {
		for j := 0; j+1 < n; j++ {
			if kv[j] < kv[j+1] {
				return j
			}
		}
		return 0
	}
	return i
}

// BSplineBasisFunctions returns the derRank-th derivatives at t of the
// len(kv)-degree-1 B-spline basis functions of the given degree.
//
// The Cox-de Boor triangle is built level by level from the span indicator.
// The last derRank levels use the derivative recurrence
//
//	N'_{i,k} = k (N_{i,k-1} / (u_{i+k} - u_i) - N_{i+1,k-1} / (u_{i+k+1} - u_{i+1}))
//
// instead of the convex combination. A zero span contributes zero.
func (kv KnotVector) BSplineBasisFunctions(degree, derRank int, t float64) []float64 {
	n := len(kv) - 1
	size := len(kv) - degree - 1
	if size <= 0 || n <= 0 {
		return nil
	}
	res := make([]float64, n)
	if derRank > degree || base.SoSmall(kv.RangeLength()) {
		return res[:size]
	}
	idx := kv.spanIndex(t)
	res[idx] = 1
	for k := 1; k <= degree; k++ {
		lo := max(idx-k, 0)
		hi := min(idx, n-1-k)
		for i := lo; i <= hi; i++ {
			a := base.InvOrZero(kv[i+k] - kv[i])
			b := base.InvOrZero(kv[i+k+1] - kv[i+1])
			if k <= degree-derRank {
				res[i] = (t-kv[i])*a*res[i] + (kv[i+k+1]-t)*b*res[i+1]
			} else {
				res[i] = float64(k) * (a*res[i] - b*res[i+1])
			}
		}
		if n-k >= 0 {
			res[n-k] = 0
		}
	}
	return res[:size]
}
