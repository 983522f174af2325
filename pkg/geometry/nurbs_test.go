package geometry

import (
	"errors"
	"math"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/brepcad/pkg/base"
)

func TestQuarterArcScenario(t *testing.T) {
	arc, err := CircleArc2(v2.Vec{}, 10, 0, math.Pi/2)
	require.NoError(t, err)
	assert.Equal(t, 2, arc.Degree())
	weights := arc.Weights()
	require.Len(t, weights, 3)
	assert.InDelta(t, math.Cos(math.Pi/4), weights[1], 1e-12)
	assert.InDelta(t, 0.70711, weights[1], 1e-5)
	assert.InDelta(t, 10.0, arc.Subs(0.5).Length(), 1e-9)
	for i := 0; i <= 32; i++ {
		p := arc.Subs(float64(i) / 32)
		assert.InDelta(t, 10.0, p.Length(), 1e-9)
	}
	assert.True(t, base.Near(v2.Vec{X: 10}, arc.Front()))
	assert.True(t, base.Near(v2.Vec{Y: 10}, arc.Back()))
}

func TestCircleArcSplitsLargeAngles(t *testing.T) {
	tests := []struct {
		angle    float64
		segments int
	}{
		{math.Pi / 3, 1},
		{math.Pi / 2, 1},
		{math.Pi * 0.75, 2},
		{math.Pi, 2},
		{math.Pi * 1.5, 3},
		{math.Pi * 2, 4},
	}
	for _, tt := range tests {
		arc, err := CircleArc2(v2.Vec{X: 1, Y: 1}, 3, 0.2, 0.2+tt.angle)
		require.NoError(t, err)
		assert.Len(t, arc.ControlPoints(), 2*tt.segments+1, "angle %g", tt.angle)
		half := tt.angle / float64(2*tt.segments)
		for i, w := range arc.Weights() {
			if i%2 == 1 {
				assert.InDelta(t, math.Cos(half), w, 1e-12)
			} else {
				assert.Equal(t, 1.0, w)
			}
		}
		for i := 0; i <= 50; i++ {
			p := arc.Subs(float64(i) / 50)
			assert.InDelta(t, 3.0, p.Sub(v2.Vec{X: 1, Y: 1}).Length(), 1e-9)
		}
	}
	_, err := CircleArc2(v2.Vec{}, 1, 1, 1)
	assert.True(t, errors.Is(err, ErrZeroRange))
}

func TestThreePointArc(t *testing.T) {
	p0 := v3.Vec{X: 1, Y: 0, Z: 2}
	p1 := v3.Vec{X: 0, Y: 1, Z: 2}
	p2 := v3.Vec{X: -1, Y: 0, Z: 2}
	arc, err := ThreePointArc(p0, p1, p2)
	require.NoError(t, err)
	assert.True(t, base.Near(p0, arc.Front()))
	assert.True(t, base.Near(p2, arc.Back()))
	_, ok := arc.SearchParameter(p1, nil, 100)
	assert.True(t, ok, "arc must pass through the middle point")
	center := v3.Vec{Z: 2}
	for i := 0; i <= 20; i++ {
		assert.InDelta(t, 1.0, arc.Subs(float64(i)/20).Sub(center).Length(), 1e-9)
	}

	_, err = ThreePointArc(p0, p0.MulScalar(2), p0.MulScalar(3))
	assert.True(t, errors.Is(err, ErrZeroRange))
}

func TestRationalDersOfUnitWeights(t *testing.T) {
	c := testCurve(t)
	n := NurbsFromBSpline[base.HVec3, v3.Vec](c)
	for i := 0; i <= 20; i++ {
		x := float64(i) / 20
		ders := n.Ders(3, x)
		for k := 0; k <= 3; k++ {
			assertNear(t, c.DerN(k, x), ders.At(k), "order %d at %g", k, x)
		}
	}
}

func TestRationalDersFiniteDifference(t *testing.T) {
	arc, err := CircleArc3(v3.Vec{}, v3.Vec{X: 1}, v3.Vec{Y: 1}, 2, 0, 2)
	require.NoError(t, err)
	const h = 1e-5
	for _, x := range []float64{0.1, 0.3, 0.7, 0.9} {
		fd := arc.Subs(x + h).Sub(arc.Subs(x - h)).MulScalar(1 / (2 * h))
		assert.InDelta(t, 0.0, fd.Sub(arc.Der(x)).Length(), 1e-4, "first derivative at %g", x)
		fd2 := arc.Der(x + h).Sub(arc.Der(x - h)).MulScalar(1 / (2 * h))
		assert.InDelta(t, 0.0, fd2.Sub(arc.Der2(x)).Length(), 1e-3, "second derivative at %g", x)
		// the velocity of a circle is tangent
		assert.InDelta(t, 0.0, arc.Subs(x).Dot(arc.Der(x)), 1e-9)
	}
}

func TestNurbsFromBSplineAndWeightsLength(t *testing.T) {
	_, err := NurbsFromBSplineAndWeights[base.HVec3, v3.Vec](testCurve(t), []float64{1, 2})
	assert.True(t, errors.Is(err, ErrDifferentLength))
}

func TestNurbsCutConcat(t *testing.T) {
	arc, err := CircleArc2(v2.Vec{}, 5, 0, math.Pi)
	require.NoError(t, err)
	orig := arc.Clone()
	right := arc.Cut(0.3)
	require.NotNil(t, right)
	assert.InDelta(t, 5.0, arc.Back().Length(), 1e-9)
	require.NoError(t, arc.Concat(right))
	assert.True(t, arc.NearAsCurve(orig))
}

func TestNurbsConcatRescalesWeights(t *testing.T) {
	a, err := CircleArc2(v2.Vec{}, 1, 0, math.Pi/2)
	require.NoError(t, err)
	b, err := CircleArc2(v2.Vec{}, 1, math.Pi/2, math.Pi)
	require.NoError(t, err)
	b.KnotTranslate(1)
	scaled := NewNurbsCurve[base.HVec2, v2.Vec](b.NonRationalized().Transformed(func(h base.HVec2) base.HVec2 {
		return h.MulScalar(3)
	}))
	require.NoError(t, a.Concat(scaled))
	for i := 0; i <= 20; i++ {
		assert.InDelta(t, 1.0, a.Subs(2*float64(i)/20).Length(), 1e-9)
	}
	assert.True(t, base.Near(v2.Vec{X: -1}, a.Back()))
}

func TestNurbsElevateDegreeAndKnots(t *testing.T) {
	arc, err := CircleArc2(v2.Vec{}, 2, 0, 1.5*math.Pi)
	require.NoError(t, err)
	orig := arc.Clone()
	arc.ElevateDegree()
	assert.Equal(t, 3, arc.Degree())
	assert.True(t, arc.NearAsCurve(orig))

	idx := arc.AddKnot(0.4)
	require.NoError(t, arc.TryRemoveKnot(idx))
	assert.True(t, arc.NearAsCurve(orig))
}

func TestNurbsIsArcOf(t *testing.T) {
	circle, err := CircleArc2(v2.Vec{}, 1, 0, 2*math.Pi)
	require.NoError(t, err)
	quarter, err := CircleArc2(v2.Vec{}, 1, 0, math.Pi/2)
	require.NoError(t, err)
	end, ok := quarter.IsArcOf(circle, 0)
	require.True(t, ok)
	assert.True(t, base.Near(v2.Vec{Y: 1}, circle.Subs(end)))
}

func TestNurbsTransformed(t *testing.T) {
	arc, err := CircleArc2(v2.Vec{}, 1, 0, math.Pi/2)
	require.NoError(t, err)
	moved := arc.Transformed(func(p v2.Vec) v2.Vec { return p.MulScalar(2).Add(v2.Vec{X: 1}) })
	for i := 0; i <= 10; i++ {
		x := float64(i) / 10
		assert.InDelta(t, 2.0, moved.Subs(x).Sub(v2.Vec{X: 1}).Length(), 1e-9)
	}
	assert.Equal(t, arc.Weights(), moved.Weights())
}

func TestCompositeDers(t *testing.T) {
	// f(s) = s^3 at s = g(0.5) = 2, g(t) = 2t + 1
	f := NewCurveDers[base.Scalar](3)
	f.Set(0, 8)
	f.Set(1, 12)
	f.Set(2, 12)
	f.Set(3, 6)
	g := NewCurveDers[base.Scalar](3)
	g.Set(0, 2)
	g.Set(1, 2)
	got := Composite(f, g)
	want := []base.Scalar{8, 24, 48, 48}
	for i, w := range want {
		assert.InDelta(t, float64(w), float64(got.At(i)), 1e-12, "order %d", i)
	}
}
