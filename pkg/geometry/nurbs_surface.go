package geometry

import (
	"fmt"

	"github.com/chazu/brepcad/pkg/algo"
	"github.com/chazu/brepcad/pkg/base"
)

// NurbsSurface is a rational B-spline surface over homogeneous control
// points.
type NurbsSurface[V base.Homogeneous[V, P], P base.Vector[P]] struct {
	surface *BSplineSurface[V]
}

// NewNurbsSurface wraps a B-spline surface over homogeneous points.
func NewNurbsSurface[V base.Homogeneous[V, P], P base.Vector[P]](surface *BSplineSurface[V]) *NurbsSurface[V, P] {
	return &NurbsSurface[V, P]{surface: surface}
}

// NurbsSurfaceFromBSplineAndWeights returns the rational surface with the
// control points of surface and the given weight grid.
func NurbsSurfaceFromBSplineAndWeights[V base.Homogeneous[V, P], P base.Vector[P]](surface *BSplineSurface[P], weights [][]float64) (*NurbsSurface[V, P], error) {
	if len(weights) != len(surface.controlPoints) {
		return nil, fmt.Errorf("%w: %d rows, %d weight rows", ErrDifferentLength, len(surface.controlPoints), len(weights))
	}
	var zero V
	points := make([][]V, len(weights))
	for i, row := range surface.controlPoints {
		if len(weights[i]) != len(row) {
			return nil, fmt.Errorf("%w: row %d", ErrDifferentLength, i)
		}
		points[i] = make([]V, len(row))
		for j, p := range row {
			points[i][j] = zero.FromPoint(p, weights[i][j])
		}
	}
	return &NurbsSurface[V, P]{surface: &BSplineSurface[V]{
		uKnot:         surface.uKnot.Clone(),
		vKnot:         surface.vKnot.Clone(),
		controlPoints: points,
	}}, nil
}

// NurbsSurfaceFromBSpline embeds a non-rational surface with unit weights.
func NurbsSurfaceFromBSpline[V base.Homogeneous[V, P], P base.Vector[P]](surface *BSplineSurface[P]) *NurbsSurface[V, P] {
	weights := make([][]float64, len(surface.controlPoints))
	for i, row := range surface.controlPoints {
		weights[i] = make([]float64, len(row))
		for j := range row {
			weights[i][j] = 1
		}
	}
	res, _ := NurbsSurfaceFromBSplineAndWeights[V, P](surface, weights)
	return res
}

// Clone returns a deep copy of s.
func (s *NurbsSurface[V, P]) Clone() *NurbsSurface[V, P] {
	return &NurbsSurface[V, P]{surface: s.surface.Clone()}
}

// NonRationalized returns the homogeneous surface, shared with s.
func (s *NurbsSurface[V, P]) NonRationalized() *BSplineSurface[V] { return s.surface }

// KnotVecs returns the u and v knot vectors.
func (s *NurbsSurface[V, P]) KnotVecs() (KnotVector, KnotVector) { return s.surface.KnotVecs() }

// Degrees returns the u and v degrees.
func (s *NurbsSurface[V, P]) Degrees() (int, int) { return s.surface.Degrees() }

// ParameterRange returns the u and v ranges.
func (s *NurbsSurface[V, P]) ParameterRange() (urange, vrange [2]float64) {
	return s.surface.ParameterRange()
}

// ControlPoint returns the projected control point (i, j).
func (s *NurbsSurface[V, P]) ControlPoint(i, j int) P {
	return s.surface.controlPoints[i][j].ToPoint()
}

// Weight returns the weight of control point (i, j).
func (s *NurbsSurface[V, P]) Weight(i, j int) float64 {
	return s.surface.controlPoints[i][j].Weight()
}

// Ders returns all rational partial derivatives of total order up to
// maxOrder.
func (s *NurbsSurface[V, P]) Ders(maxOrder int, u, v float64) SurfaceDers[P] {
	return RationalSurfaceDers[V, P](s.surface.Ders(maxOrder, u, v))
}

// DerMN returns ∂^{m+n}S/∂u^m∂v^n at (u, v).
func (s *NurbsSurface[V, P]) DerMN(m, n int, u, v float64) P {
	return s.Ders(m+n, u, v).At(m, n)
}

func (s *NurbsSurface[V, P]) Subs(u, v float64) P  { return s.surface.Subs(u, v).ToPoint() }
func (s *NurbsSurface[V, P]) Uder(u, v float64) P  { return s.DerMN(1, 0, u, v) }
func (s *NurbsSurface[V, P]) Vder(u, v float64) P  { return s.DerMN(0, 1, u, v) }
func (s *NurbsSurface[V, P]) Uuder(u, v float64) P { return s.DerMN(2, 0, u, v) }
func (s *NurbsSurface[V, P]) Uvder(u, v float64) P { return s.DerMN(1, 1, u, v) }
func (s *NurbsSurface[V, P]) Vvder(u, v float64) P { return s.DerMN(0, 2, u, v) }

// ColumnCurve returns the rational curve along u through column j.
func (s *NurbsSurface[V, P]) ColumnCurve(j int) *NurbsCurve[V, P] {
	return &NurbsCurve[V, P]{curve: s.surface.ColumnCurve(j)}
}

// RowCurve returns the rational curve along v through row i.
func (s *NurbsSurface[V, P]) RowCurve(i int) *NurbsCurve[V, P] {
	return &NurbsCurve[V, P]{curve: s.surface.RowCurve(i)}
}

func (s *NurbsSurface[V, P]) AddUKnot(x float64) { s.surface.AddUKnot(x) }
func (s *NurbsSurface[V, P]) AddVKnot(x float64) { s.surface.AddVKnot(x) }
func (s *NurbsSurface[V, P]) ElevateUDegree()    { s.surface.ElevateUDegree() }
func (s *NurbsSurface[V, P]) ElevateVDegree()    { s.surface.ElevateVDegree() }
func (s *NurbsSurface[V, P]) SwapAxes()          { s.surface.SwapAxes() }
func (s *NurbsSurface[V, P]) UInvert()           { s.surface.UInvert() }
func (s *NurbsSurface[V, P]) VInvert()           { s.surface.VInvert() }

// UCut splits the surface at u, see BSplineSurface.UCut.
func (s *NurbsSurface[V, P]) UCut(u float64) *NurbsSurface[V, P] {
	right := s.surface.UCut(u)
	if right == nil {
		return nil
	}
	return &NurbsSurface[V, P]{surface: right}
}

// VCut splits the surface at v, see BSplineSurface.VCut.
func (s *NurbsSurface[V, P]) VCut(v float64) *NurbsSurface[V, P] {
	right := s.surface.VCut(v)
	if right == nil {
		return nil
	}
	return &NurbsSurface[V, P]{surface: right}
}

// Transformed returns a copy with the affine map f applied to the projected
// control points; weights are kept.
func (s *NurbsSurface[V, P]) Transformed(f func(P) P) *NurbsSurface[V, P] {
	res := s.Clone()
	for _, row := range res.surface.controlPoints {
		for j, v := range row {
			row[j] = v.FromPoint(f(v.ToPoint()), v.Weight())
		}
	}
	return res
}

// NearAsSurface reports whether both surfaces agree within base.Tolerance.
func (s *NurbsSurface[V, P]) NearAsSurface(other *NurbsSurface[V, P]) bool {
	ud0, vd0 := s.Degrees()
	ud1, vd1 := other.Degrees()
	return nearAsSurface[P](s, other,
		[2]KnotVector{s.surface.uKnot, other.surface.uKnot},
		[2]KnotVector{s.surface.vKnot, other.surface.vKnot},
		3*max(ud0, ud1, vd0, vd1))
}

// ParameterDivision returns a (u, v) grid within tol of the surface.
func (s *NurbsSurface[V, P]) ParameterDivision(tol float64) ([]float64, []float64) {
	urange, vrange := s.ParameterRange()
	return algo.SurfaceParameterDivision[P](s, urange, vrange, tol)
}

// SearchNearestParameter returns the parameters of the surface point
// nearest to point.
func (s *NurbsSurface[V, P]) SearchNearestParameter(point P, hint *[2]float64, trials int) (float64, float64, bool) {
	h := surfaceHint[P](s, point, hint)
	return algo.SearchNearestSurfaceParameter[P](s, point, h[0], h[1], trials)
}

// SearchParameter returns the parameters (u, v) with Subs(u, v) == point.
func (s *NurbsSurface[V, P]) SearchParameter(point P, hint *[2]float64, trials int) (float64, float64, bool) {
	h := surfaceHint[P](s, point, hint)
	return algo.SearchSurfaceParameter[P](s, point, h[0], h[1], trials)
}
