package geometry

import (
	"fmt"

	"github.com/chazu/brepcad/pkg/algo"
	"github.com/chazu/brepcad/pkg/base"
)

// BSplineSurface is a non-rational tensor product B-spline surface.
// controlPoints[i][j] belongs to the i-th u and the j-th v basis function.
type BSplineSurface[P base.Vector[P]] struct {
	uKnot, vKnot  KnotVector
	controlPoints [][]P
}

// NewBSplineSurface returns the surface with the given knot vectors and
// control point grid. It takes ownership of its arguments.
func NewBSplineSurface[P base.Vector[P]](uKnot, vKnot KnotVector, controlPoints [][]P) (*BSplineSurface[P], error) {
	if err := checkSurface(uKnot, vKnot, controlPoints); err != nil {
		return nil, err
	}
	return &BSplineSurface[P]{uKnot: uKnot, vKnot: vKnot, controlPoints: controlPoints}, nil
}

// NewBSplineSurfaceUnchecked is NewBSplineSurface without validation in
// release builds.
func NewBSplineSurfaceUnchecked[P base.Vector[P]](uKnot, vKnot KnotVector, controlPoints [][]P) *BSplineSurface[P] {
	if base.DebugBuild {
		if err := checkSurface(uKnot, vKnot, controlPoints); err != nil {
			panic(err)
		}
	}
	return &BSplineSurface[P]{uKnot: uKnot, vKnot: vKnot, controlPoints: controlPoints}
}

func checkSurface[P any](uKnot, vKnot KnotVector, controlPoints [][]P) error {
	if len(controlPoints) == 0 || len(controlPoints[0]) == 0 {
		return ErrEmptyControlPoints
	}
	for i, row := range controlPoints {
		if len(row) != len(controlPoints[0]) {
			return fmt.Errorf("%w: row %d has %d points", ErrIrregularControlPoints, i, len(row))
		}
	}
	if err := checkCurve(uKnot, len(controlPoints)); err != nil {
		return fmt.Errorf("u direction: %w", err)
	}
	if err := checkCurve(vKnot, len(controlPoints[0])); err != nil {
		return fmt.Errorf("v direction: %w", err)
	}
	return nil
}

// Clone returns a deep copy of s.
func (s *BSplineSurface[P]) Clone() *BSplineSurface[P] {
	points := make([][]P, len(s.controlPoints))
	for i, row := range s.controlPoints {
		points[i] = append([]P(nil), row...)
	}
	return &BSplineSurface[P]{uKnot: s.uKnot.Clone(), vKnot: s.vKnot.Clone(), controlPoints: points}
}

// KnotVecs returns the u and v knot vectors.
func (s *BSplineSurface[P]) KnotVecs() (KnotVector, KnotVector) { return s.uKnot, s.vKnot }

// ControlPoints returns the control point grid. It must not be modified.
func (s *BSplineSurface[P]) ControlPoints() [][]P { return s.controlPoints }

// ControlPoint returns the control point (i, j).
func (s *BSplineSurface[P]) ControlPoint(i, j int) P { return s.controlPoints[i][j] }

// Degrees returns the u and v degrees.
func (s *BSplineSurface[P]) Degrees() (int, int) {
	return len(s.uKnot) - len(s.controlPoints) - 1, len(s.vKnot) - len(s.controlPoints[0]) - 1
}

// ParameterRange returns the u and v parameter ranges.
func (s *BSplineSurface[P]) ParameterRange() (urange, vrange [2]float64) {
	return [2]float64{s.uKnot.Front(), s.uKnot.Back()}, [2]float64{s.vKnot.Front(), s.vKnot.Back()}
}

// DerMN returns ∂^{m+n}S/∂u^m∂v^n at (u, v).
func (s *BSplineSurface[P]) DerMN(m, n int, u, v float64) P {
	ud, vd := s.Degrees()
	ub := s.uKnot.BSplineBasisFunctions(ud, m, u)
	vb := s.vKnot.BSplineBasisFunctions(vd, n, v)
	var res P
	for i, a := range ub {
		if a == 0 {
			continue
		}
		for j, b := range vb {
			if b != 0 {
				res = res.Add(s.controlPoints[i][j].MulScalar(a * b))
			}
		}
	}
	return res
}

func (s *BSplineSurface[P]) Subs(u, v float64) P  { return s.DerMN(0, 0, u, v) }
func (s *BSplineSurface[P]) Uder(u, v float64) P  { return s.DerMN(1, 0, u, v) }
func (s *BSplineSurface[P]) Vder(u, v float64) P  { return s.DerMN(0, 1, u, v) }
func (s *BSplineSurface[P]) Uuder(u, v float64) P { return s.DerMN(2, 0, u, v) }
func (s *BSplineSurface[P]) Uvder(u, v float64) P { return s.DerMN(1, 1, u, v) }
func (s *BSplineSurface[P]) Vvder(u, v float64) P { return s.DerMN(0, 2, u, v) }

// Ders returns all partial derivatives of total order up to maxOrder.
func (s *BSplineSurface[P]) Ders(maxOrder int, u, v float64) SurfaceDers[P] {
	d := NewSurfaceDers[P](maxOrder)
	for m := 0; m <= maxOrder; m++ {
		for n := 0; n <= maxOrder-m; n++ {
			d.Set(m, n, s.DerMN(m, n, u, v))
		}
	}
	return d
}

// ColumnCurve returns the curve along u through the control points
// controlPoints[*][j].
func (s *BSplineSurface[P]) ColumnCurve(j int) *BSplineCurve[P] {
	points := make([]P, len(s.controlPoints))
	for i, row := range s.controlPoints {
		points[i] = row[j]
	}
	return &BSplineCurve[P]{knotVec: s.uKnot.Clone(), controlPoints: points}
}

// RowCurve returns the curve along v through the control points
// controlPoints[i][*].
func (s *BSplineSurface[P]) RowCurve(i int) *BSplineCurve[P] {
	return &BSplineCurve[P]{knotVec: s.vKnot.Clone(), controlPoints: append([]P(nil), s.controlPoints[i]...)}
}

// editU applies edit to every column curve and stores the results. edit
// must act on all columns the same way, which holds for every edit that
// only depends on the knot vector.
func (s *BSplineSurface[P]) editU(edit func(c *BSplineCurve[P])) {
	m := len(s.controlPoints[0])
	var knots KnotVector
	var columns [][]P
	for j := 0; j < m; j++ {
		c := s.ColumnCurve(j)
		edit(c)
		knots = c.knotVec
		columns = append(columns, c.controlPoints)
	}
	points := make([][]P, len(columns[0]))
	for i := range points {
		points[i] = make([]P, m)
		for j := range columns {
			points[i][j] = columns[j][i]
		}
	}
	s.uKnot, s.controlPoints = knots, points
}

// editV is editU for the row curves.
func (s *BSplineSurface[P]) editV(edit func(c *BSplineCurve[P])) {
	var knots KnotVector
	for i := range s.controlPoints {
		c := s.RowCurve(i)
		edit(c)
		knots = c.knotVec
		s.controlPoints[i] = c.controlPoints
	}
	s.vKnot = knots
}

// AddUKnot inserts the u knot x without changing the surface.
func (s *BSplineSurface[P]) AddUKnot(x float64) {
	s.editU(func(c *BSplineCurve[P]) { c.AddKnot(x) })
}

// AddVKnot inserts the v knot x without changing the surface.
func (s *BSplineSurface[P]) AddVKnot(x float64) {
	s.editV(func(c *BSplineCurve[P]) { c.AddKnot(x) })
}

// ElevateUDegree raises the u degree by one.
func (s *BSplineSurface[P]) ElevateUDegree() {
	s.editU(func(c *BSplineCurve[P]) { c.ElevateDegree() })
}

// ElevateVDegree raises the v degree by one.
func (s *BSplineSurface[P]) ElevateVDegree() {
	s.editV(func(c *BSplineCurve[P]) { c.ElevateDegree() })
}

// UCut splits the surface at u: s keeps [u0, u] and the part over [u, u1]
// is returned. UCut returns nil if u is not strictly inside the u range.
func (s *BSplineSurface[P]) UCut(u float64) *BSplineSurface[P] {
	urange, _ := s.ParameterRange()
	if u <= urange[0]+base.Tolerance || u >= urange[1]-base.Tolerance {
		return nil
	}
	right := s.Clone()
	s.editU(func(c *BSplineCurve[P]) { c.Cut(u) })
	right.editU(func(c *BSplineCurve[P]) { *c = *c.Cut(u) })
	return right
}

// VCut is UCut in the v direction.
func (s *BSplineSurface[P]) VCut(v float64) *BSplineSurface[P] {
	_, vrange := s.ParameterRange()
	if v <= vrange[0]+base.Tolerance || v >= vrange[1]-base.Tolerance {
		return nil
	}
	right := s.Clone()
	s.editV(func(c *BSplineCurve[P]) { c.Cut(v) })
	right.editV(func(c *BSplineCurve[P]) { *c = *c.Cut(v) })
	return right
}

// SwapAxes exchanges the u and v directions.
func (s *BSplineSurface[P]) SwapAxes() {
	n, m := len(s.controlPoints), len(s.controlPoints[0])
	points := make([][]P, m)
	for j := range points {
		points[j] = make([]P, n)
		for i := range s.controlPoints {
			points[j][i] = s.controlPoints[i][j]
		}
	}
	s.uKnot, s.vKnot, s.controlPoints = s.vKnot, s.uKnot, points
}

// UInvert reverses the u direction.
func (s *BSplineSurface[P]) UInvert() {
	s.uKnot.Invert()
	for i, j := 0, len(s.controlPoints)-1; i < j; i, j = i+1, j-1 {
		s.controlPoints[i], s.controlPoints[j] = s.controlPoints[j], s.controlPoints[i]
	}
}

// VInvert reverses the v direction.
func (s *BSplineSurface[P]) VInvert() {
	s.vKnot.Invert()
	for _, row := range s.controlPoints {
		for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
			row[i], row[j] = row[j], row[i]
		}
	}
}

// Transformed returns a copy of s with the affine map f applied to every
// control point.
func (s *BSplineSurface[P]) Transformed(f func(P) P) *BSplineSurface[P] {
	res := s.Clone()
	for _, row := range res.controlPoints {
		for j, p := range row {
			row[j] = f(p)
		}
	}
	return res
}

// NearAsSurface reports whether s and other have the same domain and agree
// within base.Tolerance on a grid with 3*max(degree) samples per knot span
// in each direction.
func (s *BSplineSurface[P]) NearAsSurface(other *BSplineSurface[P]) bool {
	ud0, vd0 := s.Degrees()
	ud1, vd1 := other.Degrees()
	return nearAsSurface[P](s, other, [2]KnotVector{s.uKnot, other.uKnot}, [2]KnotVector{s.vKnot, other.vKnot},
		3*max(ud0, ud1, vd0, vd1))
}

type surfaceEvaluator[P any] interface {
	Subs(u, v float64) P
}

func nearAsSurface[P base.Vector[P]](a, b surfaceEvaluator[P], uKnots, vKnots [2]KnotVector, division int) bool {
	if !uKnots[0].SameRange(uKnots[1]) || !vKnots[0].SameRange(vKnots[1]) {
		return false
	}
	us := sampleParameters(uKnots[0], uKnots[1], max(division, 1))
	vs := sampleParameters(vKnots[0], vKnots[1], max(division, 1))
	for _, u := range us {
		for _, v := range vs {
			if !base.Near(a.Subs(u, v), b.Subs(u, v)) {
				return false
			}
		}
	}
	return true
}

// ParameterDivision returns a (u, v) grid on which the bilinear
// interpolation stays within tol of the surface.
func (s *BSplineSurface[P]) ParameterDivision(tol float64) ([]float64, []float64) {
	urange, vrange := s.ParameterRange()
	return algo.SurfaceParameterDivision[P](s, urange, vrange, tol)
}

// SearchNearestParameter returns the parameters of the surface point
// nearest to point. A nil hint starts from a presearch grid.
func (s *BSplineSurface[P]) SearchNearestParameter(point P, hint *[2]float64, trials int) (float64, float64, bool) {
	h := surfaceHint[P](s, point, hint)
	return algo.SearchNearestSurfaceParameter[P](s, point, h[0], h[1], trials)
}

// SearchParameter returns the parameters (u, v) with Subs(u, v) == point.
func (s *BSplineSurface[P]) SearchParameter(point P, hint *[2]float64, trials int) (float64, float64, bool) {
	h := surfaceHint[P](s, point, hint)
	return algo.SearchSurfaceParameter[P](s, point, h[0], h[1], trials)
}

func surfaceHint[P base.Vector[P]](s algo.ParametricSurface[P], point P, hint *[2]float64) [2]float64 {
	if hint != nil {
		return *hint
	}
	urange, vrange := s.ParameterRange()
	u, v := algo.PresearchSurfaceParameter(s, point, urange, vrange, algo.PresearchDivision)
	return [2]float64{u, v}
}

// RuledSurface returns the surface linear in v between c0 (v = 0) and
// c1 (v = 1). Copies of both curves are brought to the same degree and
// knot vector; curves with different parameter ranges are normalized.
func RuledSurface[P base.Vector[P]](c0, c1 *BSplineCurve[P]) (*BSplineSurface[P], error) {
	a, b := c0.Clone(), c1.Clone()
	if !a.knotVec.SameRange(b.knotVec) {
		if err := a.KnotNormalize(); err != nil {
			return nil, err
		}
		if err := b.KnotNormalize(); err != nil {
			return nil, err
		}
	}
	a.SyncroKnots(b)
	if len(a.controlPoints) != len(b.controlPoints) {
		return nil, fmt.Errorf("%w: %d and %d control points", ErrDifferentLength, len(a.controlPoints), len(b.controlPoints))
	}
	points := make([][]P, len(a.controlPoints))
	for i := range points {
		points[i] = []P{a.controlPoints[i], b.controlPoints[i]}
	}
	return &BSplineSurface[P]{uKnot: a.knotVec, vKnot: BezierKnot(1), controlPoints: points}, nil
}
