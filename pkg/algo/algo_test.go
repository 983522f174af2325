package algo

import (
	"math"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/brepcad/pkg/base"
)

// circle is the unit circle over [0, 2π].
type circle struct{}

func (circle) Subs(t float64) v2.Vec { return v2.Vec{X: math.Cos(t), Y: math.Sin(t)} }
func (circle) Der(t float64) v2.Vec  { return v2.Vec{X: -math.Sin(t), Y: math.Cos(t)} }
func (circle) Der2(t float64) v2.Vec { return v2.Vec{X: -math.Cos(t), Y: -math.Sin(t)} }
func (circle) ParameterRange() (float64, float64) {
	return 0, 2 * math.Pi
}

// farCircle is the unit circle over [farOffset, farOffset + 2π].
type farCircle struct{}

const farOffset = 1e6

func (farCircle) Subs(t float64) v2.Vec { return circle{}.Subs(t - farOffset) }
func (farCircle) Der(t float64) v2.Vec  { return circle{}.Der(t - farOffset) }
func (farCircle) Der2(t float64) v2.Vec { return circle{}.Der2(t - farOffset) }
func (farCircle) ParameterRange() (float64, float64) {
	return farOffset, farOffset + 2*math.Pi
}

// farPlane is the plane over [farOffset, farOffset + 3] x [-farOffset, 2 - farOffset].
type farPlane struct{}

func (farPlane) Subs(u, v float64) v3.Vec  { return plane{}.Subs(u-farOffset, v+farOffset) }
func (farPlane) Uder(u, v float64) v3.Vec  { return v3.Vec{X: 1} }
func (farPlane) Vder(u, v float64) v3.Vec  { return v3.Vec{Y: 1} }
func (farPlane) Uuder(u, v float64) v3.Vec { return v3.Vec{} }
func (farPlane) Uvder(u, v float64) v3.Vec { return v3.Vec{} }
func (farPlane) Vvder(u, v float64) v3.Vec { return v3.Vec{} }
func (farPlane) ParameterRange() (urange, vrange [2]float64) {
	return [2]float64{farOffset, farOffset + 3}, [2]float64{-farOffset, 2 - farOffset}
}

// segment is the straight line from (0,0) to (1,2) over [0, 1].
type segment struct{}

func (segment) Subs(t float64) v2.Vec              { return v2.Vec{X: t, Y: 2 * t} }
func (segment) Der(float64) v2.Vec                 { return v2.Vec{X: 1, Y: 2} }
func (segment) Der2(float64) v2.Vec                { return v2.Vec{} }
func (segment) ParameterRange() (float64, float64) { return 0, 1 }

// paraboloid is z = u² + v² over [-1, 1]².
type paraboloid struct{}

func (paraboloid) Subs(u, v float64) v3.Vec  { return v3.Vec{X: u, Y: v, Z: u*u + v*v} }
func (paraboloid) Uder(u, v float64) v3.Vec  { return v3.Vec{X: 1, Z: 2 * u} }
func (paraboloid) Vder(u, v float64) v3.Vec  { return v3.Vec{Y: 1, Z: 2 * v} }
func (paraboloid) Uuder(u, v float64) v3.Vec { return v3.Vec{Z: 2} }
func (paraboloid) Uvder(u, v float64) v3.Vec { return v3.Vec{} }
func (paraboloid) Vvder(u, v float64) v3.Vec { return v3.Vec{Z: 2} }
func (paraboloid) ParameterRange() (urange, vrange [2]float64) {
	return [2]float64{-1, 1}, [2]float64{-1, 1}
}

// plane is z = 0 over [0, 3] x [0, 2].
type plane struct{}

func (plane) Subs(u, v float64) v3.Vec  { return v3.Vec{X: u, Y: v} }
func (plane) Uder(u, v float64) v3.Vec  { return v3.Vec{X: 1} }
func (plane) Vder(u, v float64) v3.Vec  { return v3.Vec{Y: 1} }
func (plane) Uuder(u, v float64) v3.Vec { return v3.Vec{} }
func (plane) Uvder(u, v float64) v3.Vec { return v3.Vec{} }
func (plane) Vvder(u, v float64) v3.Vec { return v3.Vec{} }
func (plane) ParameterRange() (urange, vrange [2]float64) {
	return [2]float64{0, 3}, [2]float64{0, 2}
}

func TestSplitRatio(t *testing.T) {
	for i := 0; i < 100; i++ {
		r := splitRatio(float64(i), float64(i)*0.5)
		assert.GreaterOrEqual(t, r, 0.4)
		assert.LessOrEqual(t, r, 0.6)
	}
	assert.Equal(t, splitRatio(1, 2, 3), splitRatio(1, 2, 3), "ratio must be deterministic")
}

func TestSearchNearestParameterCircle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "brep.algo")
	defer teardown()
	//
	c := circle{}
	point := v2.Vec{X: 2 * math.Cos(1.2), Y: 2 * math.Sin(1.2)}
	t0, t1 := c.ParameterRange()
	hint := PresearchNearestParameter[v2.Vec](c, point, t0, t1, PresearchDivision)
	param, ok := SearchNearestParameter[v2.Vec](c, point, hint, SearchTrials)
	require.True(t, ok)
	assert.InDelta(t, 1.2, param, 1e-8)

	// the point is off the curve
	_, ok = SearchParameter[v2.Vec](c, point, hint, SearchTrials)
	assert.False(t, ok)

	onCurve := c.Subs(2.5)
	param, ok = SearchParameter[v2.Vec](c, onCurve, 2.4, SearchTrials)
	require.True(t, ok)
	assert.InDelta(t, 2.5, param, 1e-8)
}

func TestSearchLargeParameters(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "brep.algo")
	defer teardown()
	//
	c := farCircle{}
	param, ok := SearchParameter[v2.Vec](c, c.Subs(farOffset+1.2), farOffset+1.1, SearchTrials)
	require.True(t, ok, "newton steps below the parameter spacing must converge")
	assert.InDelta(t, farOffset+1.2, param, 1e-6)

	s := farPlane{}
	u, v, ok := SearchSurfaceParameter[v3.Vec](s, v3.Vec{X: 1.3, Y: 0.7}, farOffset+1, 1-farOffset, SearchTrials)
	require.True(t, ok)
	assert.InDelta(t, farOffset+1.3, u, 1e-6)
	assert.InDelta(t, 0.7-farOffset, v, 1e-6)
}

func TestConverged(t *testing.T) {
	assert.True(t, converged(1e-13, 0.5))
	assert.False(t, converged(1e-11, 0.5))
	assert.True(t, converged(1e-10, 1e6), "spacing of floats near 1e6 is about 1.2e-10")
	assert.False(t, converged(1e-5, 1e6))
	assert.True(t, converged(-1e-10, -1e6))
}

func TestSearchNearestParameterClamps(t *testing.T) {
	s := segment{}
	param, ok := SearchNearestParameter[v2.Vec](s, v2.Vec{X: 3, Y: 6}, 0.5, SearchTrials)
	require.True(t, ok)
	assert.Equal(t, 1.0, param)
	param, ok = SearchNearestParameter[v2.Vec](s, v2.Vec{X: -1, Y: -1}, 0.5, SearchTrials)
	require.True(t, ok)
	assert.Equal(t, 0.0, param)
}

func TestParameterDivisionLine(t *testing.T) {
	params, points := ParameterDivision[v2.Vec](segment{}, 0, 1, 0.01)
	assert.Equal(t, []float64{0, 1}, params)
	assert.Len(t, points, 2)
}

func TestParameterDivisionCircle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "brep.algo")
	defer teardown()
	//
	c := circle{}
	tol := 0.005
	params, points := ParameterDivision[v2.Vec](c, 0, 2*math.Pi, tol)
	require.Equal(t, len(params), len(points))
	require.Greater(t, len(params), 8)
	assert.Equal(t, 0.0, params[0])
	assert.Equal(t, 2*math.Pi, params[len(params)-1])
	for i := 1; i < len(params); i++ {
		assert.Greater(t, params[i], params[i-1])
		mid := (params[i] + params[i-1]) / 2
		chordMid := base.Lerp(points[i-1], points[i], 0.5)
		// sagitta of a unit circle chord
		assert.Less(t, 1-chordMid.Length(), 2*tol, "segment %d around t=%g", i, mid)
	}
}

func TestSearchNearestSurfaceParameter(t *testing.T) {
	s := paraboloid{}
	target := s.Subs(0.3, -0.4)
	urange, vrange := s.ParameterRange()
	hu, hv := PresearchSurfaceParameter[v3.Vec](s, target, urange, vrange, PresearchDivision)
	u, v, ok := SearchSurfaceParameter[v3.Vec](s, target, hu, hv, SearchTrials)
	require.True(t, ok)
	assert.InDelta(t, 0.3, u, 1e-8)
	assert.InDelta(t, -0.4, v, 1e-8)

	above := target.Add(v3.Vec{Z: 0.5})
	_, _, ok = SearchSurfaceParameter[v3.Vec](s, above, hu, hv, SearchTrials)
	assert.False(t, ok)
}

func TestSurfaceParameterDivision(t *testing.T) {
	udiv, vdiv := SurfaceParameterDivision[v3.Vec](plane{}, [2]float64{0, 3}, [2]float64{0, 2}, 0.01)
	assert.Equal(t, []float64{0, 3}, udiv)
	assert.Equal(t, []float64{0, 2}, vdiv)

	s := paraboloid{}
	urange, vrange := s.ParameterRange()
	udiv, vdiv = SurfaceParameterDivision[v3.Vec](s, urange, vrange, 0.01)
	assert.Greater(t, len(udiv), 4)
	assert.Greater(t, len(vdiv), 4)
	assert.Equal(t, urange[0], udiv[0])
	assert.Equal(t, urange[1], udiv[len(udiv)-1])
	for i := 1; i < len(udiv); i++ {
		assert.Greater(t, udiv[i], udiv[i-1])
	}
}
