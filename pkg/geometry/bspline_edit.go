package geometry

import (
	"fmt"

	"github.com/chazu/brepcad/pkg/base"
)

// AddKnot inserts the knot x by Boehm's algorithm without changing the
// image of the curve, and returns the index of the new knot. Knots outside
// the parameter range are ignored and AddKnot returns -1.
func (c *BSplineCurve[P]) AddKnot(x float64) int {
	kv := c.knotVec
	if x < kv.Front() || x > kv.Back() {
		return -1
	}
	k := c.Degree()
	n := len(c.controlPoints)
	s, _ := kv.Floor(x)
	s = min(s, len(kv)-2)
	// Control points outside the polygon act as the origin.
	cp := func(i int) P {
		var zero P
		if i < 0 || i >= n {
			return zero
		}
		return c.controlPoints[i]
	}
	points := make([]P, n+1)
	for i := range points {
		switch {
		case i <= s-k:
			points[i] = cp(i)
		case i > s:
			points[i] = cp(i - 1)
		default:
			a := (x - kv[i]) * base.InvOrZero(kv[i+k]-kv[i])
			points[i] = base.Lerp(cp(i-1), cp(i), a)
		}
	}
	knots := make(KnotVector, 0, len(kv)+1)
	knots = append(knots, kv[:s+1]...)
	knots = append(knots, x)
	knots = append(knots, kv[s+1:]...)
	c.knotVec, c.controlPoints = knots, points
	return s + 1
}

// multiplicityOf returns the number of knots equal to x.
func (c *BSplineCurve[P]) multiplicityOf(x float64) int {
	m := 0
	for _, y := range c.knotVec {
		if base.NearFloat(x, y) {
			m++
		}
	}
	return m
}

// lastIndexOf returns the index of the last knot equal to x, or -1.
func (c *BSplineCurve[P]) lastIndexOf(x float64) int {
	for i := len(c.knotVec) - 1; i >= 0; i-- {
		if base.NearFloat(c.knotVec[i], x) {
			return i
		}
	}
	return -1
}

// removeKnotPoints computes the control points of the curve without the
// knot at idx (Piegl & Tiller, algorithm A5.8, one removal). It returns
// the new points, the index of the removed knot and the distance by which
// the back-substitution misses the removed control point.
func (c *BSplineCurve[P]) removeKnotPoints(idx int) ([]P, int, float64, error) {
	kv := c.knotVec
	k := c.Degree()
	n := len(c.controlPoints)
	if idx < 0 || idx >= len(kv) {
		return nil, idx, 0, fmt.Errorf("%w: index %d out of range", ErrCannotRemoveKnot, idx)
	}
	r := c.lastIndexOf(kv[idx])
	s := kv.Multiplicity(r)
	if r <= k || r >= n || s > k {
		return nil, r, 0, fmt.Errorf("%w: knot %d is not a removable interior knot", ErrCannotRemoveKnot, idx)
	}
	u := kv[r]
	first, last := r-k, r-s
	off := first - 1
	temp := make([]P, last-off+2)
	temp[0] = c.controlPoints[off]
	temp[last-off+1] = c.controlPoints[last+1]
	i, j := first, last
	ii, jj := 1, last-off
	for j-i > 0 {
		alfi := (u - kv[i]) / (kv[i+k+1] - kv[i])
		alfj := (u - kv[j]) / (kv[j+k+1] - kv[j])
		temp[ii] = c.controlPoints[i].Sub(temp[ii-1].MulScalar(1 - alfi)).MulScalar(1 / alfi)
		temp[jj] = c.controlPoints[j].Sub(temp[jj+1].MulScalar(alfj)).MulScalar(1 / (1 - alfj))
		i, ii = i+1, ii+1
		j, jj = j-1, jj-1
	}
	points := make([]P, 0, n-1)
	points = append(points, c.controlPoints[:first]...)
	var residual float64
	if j-i < 0 {
		residual = temp[ii-1].Sub(temp[jj+1]).Length()
		points = append(points, temp[1:ii-1]...)
	} else {
		alfi := (u - kv[i]) / (kv[i+k+1] - kv[i])
		guess := base.Lerp(temp[ii-1], temp[ii+1], alfi)
		residual = c.controlPoints[i].Sub(guess).Length()
		points = append(points, temp[1:ii]...)
	}
	points = append(points, temp[jj+1:last-off+1]...)
	points = append(points, c.controlPoints[last+1:]...)
	return points, r, residual, nil
}

// TryRemoveKnot removes the knot at idx if that does not move the curve
// by more than base.Tolerance. Otherwise it returns ErrCannotRemoveKnot and
// leaves the curve unchanged.
func (c *BSplineCurve[P]) TryRemoveKnot(idx int) error {
	points, r, residual, err := c.removeKnotPoints(idx)
	if err != nil {
		return err
	}
	if residual >= base.Tolerance {
		return fmt.Errorf("%w: knot %d, deviation %g", ErrCannotRemoveKnot, idx, residual)
	}
	c.knotVec.Remove(r)
	c.controlPoints = points
	return nil
}

// RemoveKnot is TryRemoveKnot returning the curve for chaining. On error
// the curve is unchanged.
func (c *BSplineCurve[P]) RemoveKnot(idx int) (*BSplineCurve[P], error) {
	return c, c.TryRemoveKnot(idx)
}

// forceRemoveKnot removes a knot known to be removable in exact
// arithmetic, skipping the deviation check. It fails only for a knot that
// is not an interior knot of the curve.
func (c *BSplineCurve[P]) forceRemoveKnot(idx int) error {
	points, r, _, err := c.removeKnotPoints(idx)
	if err != nil {
		return err
	}
	c.knotVec.Remove(r)
	c.controlPoints = points
	return nil
}

// Clamp inserts knots at both ends until their multiplicities exceed the
// degree.
func (c *BSplineCurve[P]) Clamp() {
	k := c.Degree()
	for c.knotVec.Multiplicity(0) <= k {
		c.AddKnot(c.knotVec.Front())
	}
	for c.knotVec.Multiplicity(len(c.knotVec)-1) <= k {
		c.AddKnot(c.knotVec.Back())
	}
}

// Cut splits the curve at t: c keeps the part before t and the part after
// t is returned. Both parts are clamped at t. Cut returns nil and leaves c
// unchanged when t is not strictly inside the parameter range.
func (c *BSplineCurve[P]) Cut(t float64) *BSplineCurve[P] {
	t0, t1 := c.ParameterRange()
	if t <= t0+base.Tolerance || t >= t1-base.Tolerance {
		return nil
	}
	if i, ok := c.knotVec.Floor(t); ok && base.NearFloat(c.knotVec[i], t) {
		t = c.knotVec[i]
	} else if i+1 < len(c.knotVec) && base.NearFloat(c.knotVec[i+1], t) {
		t = c.knotVec[i+1]
	}
	k := c.Degree()
	for c.multiplicityOf(t) <= k {
		c.AddKnot(t)
	}
	first := c.lastIndexOf(t) - c.multiplicityOf(t) + 1
	m := c.multiplicityOf(t)
	rj := first + m - (k + 1)
	right := &BSplineCurve[P]{
		knotVec:       c.knotVec[rj:].Clone(),
		controlPoints: append([]P(nil), c.controlPoints[rj:]...),
	}
	c.knotVec = c.knotVec[:first+k+1].Clone()
	c.controlPoints = append([]P(nil), c.controlPoints[:first]...)
	return right
}

// Concat appends other to c. Both curves must be clamped, other must start
// where c ends, in parameter and in point. The lower degree curve is
// elevated first; other is not modified.
func (c *BSplineCurve[P]) Concat(other *BSplineCurve[P]) error {
	if !c.knotVec.IsClamped(c.Degree()) || !other.knotVec.IsClamped(other.Degree()) {
		return ErrNotClampedKnotVector
	}
	if !base.NearFloat(c.knotVec.Back(), other.knotVec.Front()) {
		return fmt.Errorf("%w: %g != %g", ErrDisconnectedParameters, c.knotVec.Back(), other.knotVec.Front())
	}
	back := c.controlPoints[len(c.controlPoints)-1]
	if !base.Near(back, other.controlPoints[0]) {
		return ErrDisconnectedPoints
	}
	other = other.Clone()
	c.SyncroDegree(other)
	if err := c.knotVec.Concat(other.knotVec, c.Degree()); err != nil {
		return err
	}
	c.controlPoints = append(c.controlPoints, other.controlPoints[1:]...)
	return nil
}

// BezierDecomposition clamps a copy of c and cuts it at every interior
// knot. The pieces are Bezier curves in parameter order.
func (c *BSplineCurve[P]) BezierDecomposition() []*BSplineCurve[P] {
	cur := c.Clone()
	cur.Clamp()
	knots, _ := cur.knotVec.ToSingleMulti()
	var res []*BSplineCurve[P]
	for _, x := range knots[1 : len(knots)-1] {
		right := cur.Cut(x)
		if right == nil {
			continue
		}
		res = append(res, cur)
		cur = right
	}
	return append(res, cur)
}

// elevateBezier raises the degree of a Bezier curve by one.
func (c *BSplineCurve[P]) elevateBezier() {
	k := c.Degree()
	points := make([]P, k+2)
	points[0] = c.controlPoints[0]
	points[k+1] = c.controlPoints[k]
	for i := 1; i <= k; i++ {
		a := float64(i) / float64(k+1)
		points[i] = base.Lerp(c.controlPoints[i], c.controlPoints[i-1], a)
	}
	t0, t1 := c.ParameterRange()
	knots := make(KnotVector, 0, 2*k+4)
	for i := 0; i <= k+1; i++ {
		knots = append(knots, t0)
	}
	for i := 0; i <= k+1; i++ {
		knots = append(knots, t1)
	}
	c.knotVec, c.controlPoints = knots, points
}

// ElevateDegree raises the degree by one without changing the image. The
// curve is decomposed into Bezier segments, each segment is elevated and
// the segments are joined again, keeping the original continuity at the
// interior knots.
func (c *BSplineCurve[P]) ElevateDegree() {
	knots, mults := c.knotVec.ToSingleMulti()
	pieces := c.BezierDecomposition()
	for _, p := range pieces {
		p.elevateBezier()
	}
	res := pieces[0]
	k := res.Degree()
	for _, p := range pieces[1:] {
		res.knotVec = append(res.knotVec[:len(res.knotVec)-1], p.knotVec[k+1:]...)
		res.controlPoints = append(res.controlPoints, p.controlPoints[1:]...)
	}
	for i := 1; i+1 < len(knots); i++ {
		for m := res.multiplicityOf(knots[i]); m > mults[i]+1; m-- {
			// a knot left in place keeps the image, only the
			// representation is larger
			if res.forceRemoveKnot(res.lastIndexOf(knots[i])) != nil {
				break
			}
		}
	}
	*c = *res
}

// SyncroDegree elevates the curve of lower degree until both degrees match.
func (c *BSplineCurve[P]) SyncroDegree(other *BSplineCurve[P]) {
	for c.Degree() < other.Degree() {
		c.ElevateDegree()
	}
	for other.Degree() < c.Degree() {
		other.ElevateDegree()
	}
}

// SyncroKnots makes the knot vectors of c and other identical by degree
// elevation and knot insertion. Both curves must have the same parameter
// range.
func (c *BSplineCurve[P]) SyncroKnots(other *BSplineCurve[P]) {
	c.SyncroDegree(other)
	insert := func(dst, src *BSplineCurve[P]) {
		knots, mults := src.knotVec.ToSingleMulti()
		for i, x := range knots {
			for m := dst.multiplicityOf(x); m < mults[i]; m++ {
				dst.AddKnot(x)
			}
		}
	}
	insert(c, other)
	insert(other, c)
}

// Optimize removes every knot whose removal does not change the curve.
func (c *BSplineCurve[P]) Optimize() {
	for {
		removed := false
		for i := range c.knotVec {
			if c.TryRemoveKnot(i) == nil {
				removed = true
				break
			}
		}
		if !removed {
			return
		}
	}
}

// Invert reverses the direction of the curve. The parameter range is
// unchanged.
func (c *BSplineCurve[P]) Invert() {
	c.knotVec.Invert()
	for i, j := 0, len(c.controlPoints)-1; i < j; i, j = i+1, j-1 {
		c.controlPoints[i], c.controlPoints[j] = c.controlPoints[j], c.controlPoints[i]
	}
}

// KnotTranslate shifts the parameter range by x.
func (c *BSplineCurve[P]) KnotTranslate(x float64) {
	c.knotVec.Translate(x)
}

// KnotNormalize maps the parameter range onto [0, 1].
func (c *BSplineCurve[P]) KnotNormalize() error {
	return c.knotVec.Normalize()
}
