package geometry

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/brepcad/pkg/base"
)

func testCurve(t *testing.T) *BSplineCurve3 {
	t.Helper()
	c, err := NewBSplineCurve(
		KnotVector{0, 0, 0, 0, 0.3, 0.6, 1, 1, 1, 1},
		[]v3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 2, Z: 0},
			{X: 2, Y: -1, Z: 1},
			{X: 3, Y: 3, Z: 0},
			{X: 4, Y: 0, Z: -1},
			{X: 5, Y: 1, Z: 0},
		},
	)
	require.NoError(t, err)
	return c
}

func assertNear(t *testing.T, want, got v3.Vec, msgAndArgs ...any) {
	t.Helper()
	if !base.Near(want, got) {
		assert.Fail(t, fmt.Sprintf("not near: want %v, got %v", want, got), msgAndArgs...)
	}
}

func TestNewBSplineCurveErrors(t *testing.T) {
	_, err := NewBSplineCurve[v2.Vec](BezierKnot(1), nil)
	assert.True(t, errors.Is(err, ErrEmptyControlPoints))
	_, err = NewBSplineCurve(KnotVector{0, 1}, []v2.Vec{{}, {X: 1}})
	assert.True(t, errors.Is(err, ErrTooShortKnotVector))
	_, err = NewBSplineCurve(KnotVector{1, 1, 1}, []v2.Vec{{}, {X: 1}})
	assert.True(t, errors.Is(err, ErrZeroRange))
	_, err = NewBSplineCurve(KnotVector{0, 1, 0.5}, []v2.Vec{{}, {X: 1}})
	assert.True(t, errors.Is(err, ErrNotSortedVector))
}

func TestBezierScenario(t *testing.T) {
	c, err := NewBSplineCurve(
		KnotVector{0, 0, 0, 0, 1, 1, 1, 1},
		[]v2.Vec{{X: 0, Y: 0}, {X: 50, Y: 100}, {X: 100, Y: 0}, {X: 150, Y: 50}},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Degree())
	assert.Equal(t, v2.Vec{X: 0, Y: 0}, c.Subs(0))
	assert.Equal(t, v2.Vec{X: 150, Y: 50}, c.Subs(1))
	// Bernstein form at the midpoint
	mid := c.Subs(0.5)
	assert.InDelta(t, 75.0, mid.X, 1e-9)
	assert.InDelta(t, 43.75, mid.Y, 1e-9)
	// C'(0) = 3 (P1 - P0)
	d := c.Der(0)
	assert.InDelta(t, 150.0, d.X, 1e-9)
	assert.InDelta(t, 300.0, d.Y, 1e-9)
}

func TestDerivationMatchesDer(t *testing.T) {
	c := testCurve(t)
	hodograph := c.Derivation()
	assert.Equal(t, c.Degree()-1, hodograph.Degree())
	for i := 0; i <= 20; i++ {
		x := float64(i) / 20
		assertNear(t, c.Der(x), hodograph.Subs(x), "t=%g", x)
		assertNear(t, c.Der2(x), hodograph.Der(x), "t=%g", x)
	}
	ders := c.Ders(3, 0.45)
	assertNear(t, c.Subs(0.45), ders.At(0))
	assertNear(t, c.DerN(3, 0.45), ders.At(3))
}

func TestCutConcatRoundTrip(t *testing.T) {
	for _, at := range []float64{0.15, 0.3, 0.45, 0.9} {
		orig := testCurve(t)
		left := orig.Clone()
		right := left.Cut(at)
		require.NotNil(t, right, "cut at %g", at)
		t0, t1 := left.ParameterRange()
		assert.Equal(t, 0.0, t0)
		assert.InDelta(t, at, t1, 1e-12)
		assertNear(t, orig.Subs(at), left.Back())
		assertNear(t, orig.Subs(at), right.Front())
		for i := 0; i <= 10; i++ {
			x := at * float64(i) / 10
			assertNear(t, orig.Subs(x), left.Subs(x), "left t=%g", x)
			y := at + (1-at)*float64(i)/10
			assertNear(t, orig.Subs(y), right.Subs(y), "right t=%g", y)
		}

		require.NoError(t, left.Concat(right))
		for _, k := range orig.KnotVec() {
			assertNear(t, orig.Subs(k), left.Subs(k), "knot %g", k)
		}
		assert.True(t, left.NearAsCurve(orig))
	}
	assert.Nil(t, testCurve(t).Cut(0))
	assert.Nil(t, testCurve(t).Cut(1))
}

func TestConcatErrors(t *testing.T) {
	a := testCurve(t)
	b := testCurve(t)
	b.KnotTranslate(2)
	assert.True(t, errors.Is(a.Concat(b), ErrDisconnectedParameters))

	c := testCurve(t)
	c.KnotTranslate(1)
	assert.True(t, errors.Is(a.Concat(c), ErrDisconnectedPoints))

	open, err := NewBSplineCurve(UniformKnot(2, 3)[1:], []v3.Vec{{}, {X: 1}, {X: 2}, {X: 3}})
	require.NoError(t, err)
	assert.True(t, errors.Is(open.Concat(a), ErrNotClampedKnotVector))
}

func TestConcatSynchronizesDegree(t *testing.T) {
	line, err := NewBSplineCurve(BezierKnot(1), []v3.Vec{{X: 5, Y: 1}, {X: 6, Y: 1}})
	require.NoError(t, err)
	line.KnotTranslate(1)
	c := testCurve(t)
	require.NoError(t, c.Concat(line))
	assert.Equal(t, 3, c.Degree())
	assertNear(t, v3.Vec{X: 5.5, Y: 1}, c.Subs(1.5))
	assertNear(t, testCurve(t).Subs(0.7), c.Subs(0.7))
}

func TestElevateDegree(t *testing.T) {
	orig := testCurve(t)
	c := orig.Clone()
	c.ElevateDegree()
	assert.Equal(t, orig.Degree()+1, c.Degree())
	knots, mults := c.KnotVec().ToSingleMulti()
	assert.Equal(t, []float64{0, 0.3, 0.6, 1}, knots)
	assert.Equal(t, []int{5, 2, 2, 5}, mults)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		x := rng.Float64()
		assertNear(t, orig.Subs(x), c.Subs(x), "t=%g", x)
	}
}

func TestAddKnotTryRemoveKnot(t *testing.T) {
	orig := testCurve(t)
	for _, x := range []float64{0.1, 0.5, 0.3, 0.95} {
		c := orig.Clone()
		idx := c.AddKnot(x)
		require.GreaterOrEqual(t, idx, 0)
		assert.Equal(t, x, c.KnotVec()[idx])
		assert.Len(t, c.ControlPoints(), len(orig.ControlPoints())+1)
		for i := 0; i <= 20; i++ {
			y := float64(i) / 20
			assertNear(t, orig.Subs(y), c.Subs(y), "after AddKnot(%g), t=%g", x, y)
		}
		require.NoError(t, c.TryRemoveKnot(idx), "remove %g", x)
		assert.Equal(t, orig.KnotVec(), c.KnotVec())
		require.Len(t, c.ControlPoints(), len(orig.ControlPoints()))
		for i, p := range orig.ControlPoints() {
			assertNear(t, p, c.ControlPoint(i), "control point %d", i)
		}
	}
	assert.Equal(t, -1, orig.Clone().AddKnot(2))
}

func TestTryRemoveKnotRejectsShapeChange(t *testing.T) {
	c := testCurve(t)
	err := c.TryRemoveKnot(4)
	assert.True(t, errors.Is(err, ErrCannotRemoveKnot))
	assert.Equal(t, testCurve(t).KnotVec(), c.KnotVec())
	assert.True(t, errors.Is(c.TryRemoveKnot(0), ErrCannotRemoveKnot))
}

func TestRemoveKnotReportsFailure(t *testing.T) {
	c := testCurve(t)
	got, err := c.RemoveKnot(4)
	assert.ErrorIs(t, err, ErrCannotRemoveKnot)
	assert.Same(t, c, got)
	assert.Equal(t, testCurve(t).KnotVec(), c.KnotVec())
	_, err = c.RemoveKnot(len(c.KnotVec()))
	assert.ErrorIs(t, err, ErrCannotRemoveKnot, "index out of range")

	idx := c.AddKnot(0.4)
	got, err = c.RemoveKnot(idx)
	require.NoError(t, err)
	assert.Same(t, c, got)
	assert.Equal(t, testCurve(t).KnotVec(), c.KnotVec())
}

func TestForceRemoveKnotBoundary(t *testing.T) {
	c := testCurve(t)
	assert.ErrorIs(t, c.forceRemoveKnot(0), ErrCannotRemoveKnot)
	assert.ErrorIs(t, c.forceRemoveKnot(-1), ErrCannotRemoveKnot)
	assert.Equal(t, testCurve(t).KnotVec(), c.KnotVec())
}

func TestOptimize(t *testing.T) {
	orig := testCurve(t)
	c := orig.Clone()
	c.AddKnot(0.2)
	c.AddKnot(0.8)
	c.AddKnot(0.8)
	c.Optimize()
	assert.Equal(t, orig.KnotVec(), c.KnotVec())
	assert.True(t, c.NearAsCurve(orig))
}

func TestBezierDecomposition(t *testing.T) {
	orig := testCurve(t)
	pieces := orig.BezierDecomposition()
	require.Len(t, pieces, 3)
	for _, p := range pieces {
		assert.Len(t, p.ControlPoints(), p.Degree()+1)
		t0, t1 := p.ParameterRange()
		for i := 0; i <= 5; i++ {
			x := t0 + (t1-t0)*float64(i)/5
			assertNear(t, orig.Subs(x), p.Subs(x))
		}
	}
}

func TestInvertAndNearAsCurve(t *testing.T) {
	orig := testCurve(t)
	c := orig.Clone()
	c.Invert()
	for i := 0; i <= 10; i++ {
		x := float64(i) / 10
		assertNear(t, orig.Subs(x), c.Subs(1-x))
	}
	assert.False(t, c.NearAsCurve(orig))
	c.Invert()
	assert.True(t, c.Near2AsCurve(orig))

	other := orig.Clone()
	other.KnotTranslate(1)
	assert.False(t, other.NearAsCurve(orig))
}

func TestIsArcOf(t *testing.T) {
	orig := testCurve(t)
	rest := orig.Clone().Cut(0.7)
	require.NotNil(t, rest)
	end, ok := rest.IsArcOf(orig, 0.7)
	require.True(t, ok)
	assert.InDelta(t, 1.0, end, 1e-6)

	reversed := rest.Clone()
	reversed.Invert()
	_, ok = reversed.IsArcOf(orig, 0.7)
	assert.False(t, ok)
}

func TestSearchParameterCurve(t *testing.T) {
	c := testCurve(t)
	p := c.Subs(0.42)
	got, ok := c.SearchParameter(p, nil, 100)
	require.True(t, ok)
	assert.InDelta(t, 0.42, got, 1e-6)

	hint := 0.4
	got, ok = c.SearchNearestParameter(p.Add(v3.Vec{Z: 1e-3}), &hint, 100)
	require.True(t, ok)
	assert.InDelta(t, 0.42, got, 1e-3)

	_, ok = c.SearchParameter(v3.Vec{X: 100}, nil, 100)
	assert.False(t, ok)
}

func TestCurveParameterDivision(t *testing.T) {
	c := testCurve(t)
	params, points := c.ParameterDivision(0.01)
	require.Equal(t, len(params), len(points))
	assert.Equal(t, 0.0, params[0])
	assert.Equal(t, 1.0, params[len(params)-1])
	for i, x := range params {
		assert.Equal(t, c.Subs(x), points[i])
	}
}

func TestInterpole(t *testing.T) {
	kv := KnotVector{0, 0, 0, 0, 0.5, 1, 1, 1, 1}
	params := []float64{0, 0.2, 0.5, 0.8, 1}
	points := []v3.Vec{{X: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}, {X: 3, Y: -1}, {X: 4}}
	c, err := Interpole(kv, params, points)
	require.NoError(t, err)
	for i, x := range params {
		assertNear(t, points[i], c.Subs(x))
	}

	_, err = Interpole(kv, params[:4], points)
	assert.True(t, errors.Is(err, ErrDifferentLength))
	_, err = Interpole(kv, []float64{0, 0, 0, 0, 0}, points)
	assert.True(t, errors.Is(err, ErrGaussianElimination))
}

func TestTransformedCurve(t *testing.T) {
	c := testCurve(t)
	shift := v3.Vec{X: 1, Y: 2, Z: 3}
	moved := c.Transformed(func(p v3.Vec) v3.Vec { return p.Add(shift) })
	for i := 0; i <= 10; i++ {
		x := float64(i) / 10
		assertNear(t, c.Subs(x).Add(shift), moved.Subs(x))
	}
}
