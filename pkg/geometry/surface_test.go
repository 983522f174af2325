package geometry

import (
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/brepcad/pkg/base"
)

// testSurface is a biquadratic-by-cubic patch with one interior u knot.
func testSurface(t *testing.T) *BSplineSurface3 {
	t.Helper()
	points := make([][]v3.Vec, 4)
	for i := range points {
		points[i] = make([]v3.Vec, 4)
		for j := range points[i] {
			points[i][j] = v3.Vec{
				X: float64(i),
				Y: float64(j),
				Z: math.Sin(float64(i)) * math.Cos(float64(j)),
			}
		}
	}
	s, err := NewBSplineSurface(KnotVector{0, 0, 0, 0.5, 1, 1, 1}, BezierKnot(3), points)
	require.NoError(t, err)
	return s
}

func TestNewBSplineSurfaceErrors(t *testing.T) {
	_, err := NewBSplineSurface(BezierKnot(1), BezierKnot(1), [][]v3.Vec{{{}, {}}, {{}}})
	assert.True(t, errors.Is(err, ErrIrregularControlPoints))
	_, err = NewBSplineSurface(KnotVector{0, 2, 1}, BezierKnot(1), [][]v3.Vec{{{}, {}}, {{}, {}}})
	assert.True(t, errors.Is(err, ErrNotSortedVector))
	_, err = NewBSplineSurface[v3.Vec](BezierKnot(1), BezierKnot(1), nil)
	assert.True(t, errors.Is(err, ErrEmptyControlPoints))
}

func TestSurfaceEditsKeepShape(t *testing.T) {
	orig := testSurface(t)
	tests := []struct {
		name string
		edit func(s *BSplineSurface3)
	}{
		{"AddUKnot", func(s *BSplineSurface3) { s.AddUKnot(0.25) }},
		{"AddVKnot", func(s *BSplineSurface3) { s.AddVKnot(0.7) }},
		{"ElevateUDegree", func(s *BSplineSurface3) { s.ElevateUDegree() }},
		{"ElevateVDegree", func(s *BSplineSurface3) { s.ElevateVDegree() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := orig.Clone()
			tt.edit(s)
			assert.True(t, s.NearAsSurface(orig))
		})
	}

	s := orig.Clone()
	s.ElevateVDegree()
	ud, vd := s.Degrees()
	assert.Equal(t, 2, ud)
	assert.Equal(t, 4, vd)
}

func TestSurfaceCut(t *testing.T) {
	orig := testSurface(t)
	s := orig.Clone()
	right := s.UCut(0.3)
	require.NotNil(t, right)
	for _, v := range []float64{0, 0.4, 1} {
		assertNear(t, orig.Subs(0.1, v), s.Subs(0.1, v))
		assertNear(t, orig.Subs(0.8, v), right.Subs(0.8, v))
	}
	assert.Nil(t, orig.Clone().VCut(1))

	s = orig.Clone()
	top := s.VCut(0.6)
	require.NotNil(t, top)
	assertNear(t, orig.Subs(0.2, 0.9), top.Subs(0.2, 0.9))
	assertNear(t, orig.Subs(0.7, 0.1), s.Subs(0.7, 0.1))
}

func TestSurfaceSwapAndInvert(t *testing.T) {
	orig := testSurface(t)
	s := orig.Clone()
	s.SwapAxes()
	ud, vd := s.Degrees()
	assert.Equal(t, 3, ud)
	assert.Equal(t, 2, vd)
	for _, p := range [][2]float64{{0.1, 0.2}, {0.5, 0.9}, {1, 0}} {
		assertNear(t, orig.Subs(p[0], p[1]), s.Subs(p[1], p[0]))
		assertNear(t, orig.Uder(p[0], p[1]), s.Vder(p[1], p[0]))
	}

	s = orig.Clone()
	s.UInvert()
	s.VInvert()
	assertNear(t, orig.Subs(0.2, 0.3), s.Subs(0.8, 0.7))
}

func TestSurfaceDerivativesFiniteDifference(t *testing.T) {
	s := testSurface(t)
	const h = 1e-6
	for _, p := range [][2]float64{{0.2, 0.3}, {0.7, 0.5}, {0.9, 0.95}} {
		u, v := p[0], p[1]
		fu := s.Subs(u+h, v).Sub(s.Subs(u-h, v)).MulScalar(1 / (2 * h))
		fv := s.Subs(u, v+h).Sub(s.Subs(u, v-h)).MulScalar(1 / (2 * h))
		fuv := s.Uder(u, v+h).Sub(s.Uder(u, v-h)).MulScalar(1 / (2 * h))
		assert.InDelta(t, 0.0, fu.Sub(s.Uder(u, v)).Length(), 1e-5)
		assert.InDelta(t, 0.0, fv.Sub(s.Vder(u, v)).Length(), 1e-5)
		assert.InDelta(t, 0.0, fuv.Sub(s.Uvder(u, v)).Length(), 1e-5)
	}
}

func TestSurfaceSearchParameter(t *testing.T) {
	s := testSurface(t)
	for _, p := range [][2]float64{{0.2, 0.3}, {0.6, 0.8}, {0.95, 0.05}} {
		point := s.Subs(p[0], p[1])
		u, v, ok := s.SearchParameter(point, nil, 100)
		require.True(t, ok, "at %v", p)
		assertNear(t, point, s.Subs(u, v))
	}
	_, _, ok := s.SearchParameter(v3.Vec{Z: 100}, nil, 100)
	assert.False(t, ok)
}

func TestUnitWeightNurbsSurfaceDers(t *testing.T) {
	s := testSurface(t)
	n := NurbsSurfaceFromBSpline[base.HVec3, v3.Vec](s)
	for _, p := range [][2]float64{{0.1, 0.1}, {0.5, 0.5}, {0.75, 0.2}} {
		ders := n.Ders(2, p[0], p[1])
		for m := 0; m <= 2; m++ {
			for k := 0; k <= 2-m; k++ {
				assertNear(t, s.DerMN(m, k, p[0], p[1]), ders.At(m, k), "order (%d, %d)", m, k)
			}
		}
	}
}

func TestCylinderPatch(t *testing.T) {
	bottom, err := CircleArc3(v3.Vec{}, v3.Vec{X: 1}, v3.Vec{Y: 1}, 2, 0, math.Pi)
	require.NoError(t, err)
	top := bottom.Transformed(func(p v3.Vec) v3.Vec { return p.Add(v3.Vec{Z: 3}) })
	ruled, err := RuledSurface(bottom.NonRationalized(), top.NonRationalized())
	require.NoError(t, err)
	cyl := NewNurbsSurface[base.HVec3, v3.Vec](ruled)

	for i := 0; i <= 10; i++ {
		for j := 0; j <= 4; j++ {
			u, v := float64(i)/10, float64(j)/4
			p := cyl.Subs(u, v)
			assert.InDelta(t, 2.0, math.Hypot(p.X, p.Y), 1e-9)
			assert.InDelta(t, 3*v, p.Z, 1e-9)
			// the u tangent is horizontal, the v tangent is the axis
			assert.InDelta(t, 0.0, cyl.Uder(u, v).Z, 1e-9)
			vd := cyl.Vder(u, v)
			assert.InDelta(t, 3.0, vd.Z, 1e-9)
			assert.InDelta(t, 0.0, math.Hypot(vd.X, vd.Y), 1e-9)
		}
	}

	point := cyl.Subs(0.3, 0.6)
	u, v, ok := cyl.SearchParameter(point, nil, 100)
	require.True(t, ok)
	assertNear(t, point, cyl.Subs(u, v))

	moved := cyl.Transformed(func(p v3.Vec) v3.Vec { return p.Add(v3.Vec{X: 1}) })
	assertNear(t, point.Add(v3.Vec{X: 1}), moved.Subs(0.3, 0.6))
	assert.True(t, cyl.NearAsSurface(cyl.Clone()))
}

func TestRuledSurfaceSyncsCurves(t *testing.T) {
	line, err := NewBSplineCurve(BezierKnot(1), []v3.Vec{{}, {X: 2}})
	require.NoError(t, err)
	curve := testCurve(t)
	curve.KnotTranslate(5)
	s, err := RuledSurface(line, curve)
	require.NoError(t, err)
	ud, vd := s.Degrees()
	assert.Equal(t, 3, ud)
	assert.Equal(t, 1, vd)
	orig := testCurve(t)
	for i := 0; i <= 10; i++ {
		x := float64(i) / 10
		assertNear(t, v3.Vec{X: 2 * x}, s.Subs(x, 0))
		assertNear(t, orig.Subs(x), s.Subs(x, 1))
		assertNear(t, base.Lerp(v3.Vec{X: 2 * x}, orig.Subs(x), 0.25), s.Subs(x, 0.25))
	}
}

func TestSurfaceParameterDivision(t *testing.T) {
	s := testSurface(t)
	us, vs := s.ParameterDivision(0.01)
	require.GreaterOrEqual(t, len(us), 2)
	require.GreaterOrEqual(t, len(vs), 2)
	assert.Equal(t, 0.0, us[0])
	assert.Equal(t, 1.0, us[len(us)-1])
	assert.Equal(t, 0.0, vs[0])
	assert.Equal(t, 1.0, vs[len(vs)-1])
}
