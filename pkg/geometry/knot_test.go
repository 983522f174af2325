package geometry

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestNewKnotVectorUnsorted(t *testing.T) {
	_, err := NewKnotVector([]float64{0, 1, 0.5})
	assert.True(t, errors.Is(err, ErrNotSortedVector))
	kv, err := NewKnotVector([]float64{0, 0, 1, 1})
	require.NoError(t, err)
	assert.Len(t, kv, 4)
}

func TestUniformKnot(t *testing.T) {
	got := UniformKnot(2, 4)
	want := KnotVector{0, 0, 0, 0.25, 0.5, 0.75, 1, 1, 1}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("UniformKnot(2, 4) mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got.IsClamped(2))
	assert.False(t, got.IsClamped(3))
	assert.Equal(t, KnotVector{0, 0, 1, 1}, BezierKnot(1))
}

func TestKnotFloorAndMultiplicity(t *testing.T) {
	kv := KnotVector{0, 0, 0, 1, 2, 2, 3, 3, 3}
	tests := []struct {
		x    float64
		want int
		ok   bool
	}{
		{-1, 0, false},
		{0, 2, true},
		{0.5, 2, true},
		{2, 5, true},
		{3, 8, true},
		{4, 8, true},
	}
	for _, tt := range tests {
		got, ok := kv.Floor(tt.x)
		assert.Equal(t, tt.ok, ok, "Floor(%g)", tt.x)
		if ok {
			assert.Equal(t, tt.want, got, "Floor(%g)", tt.x)
		}
	}
	assert.Equal(t, 3, kv.Multiplicity(0))
	assert.Equal(t, 1, kv.Multiplicity(3))
	assert.Equal(t, 2, kv.Multiplicity(4))
	assert.Equal(t, 3, kv.MaxMultiplicity())
}

func TestKnotAddRemove(t *testing.T) {
	kv := KnotVector{0, 0, 1, 2, 2}
	assert.Equal(t, 2, kv.AddKnot(0.5))
	assert.Equal(t, 6, kv.AddKnot(2))
	assert.Equal(t, 0, kv.AddKnot(-1))
	assert.Equal(t, KnotVector{-1, 0, 0, 0.5, 1, 2, 2, 2}, kv)
	assert.Equal(t, 0.5, kv.Remove(3))
	assert.Equal(t, KnotVector{-1, 0, 0, 1, 2, 2, 2}, kv)
}

func TestSingleMulti(t *testing.T) {
	kv := KnotVector{0, 0, 0, 1, 2, 2, 3, 3, 3}
	knots, mults := kv.ToSingleMulti()
	assert.Equal(t, []float64{0, 1, 2, 3}, knots)
	assert.Equal(t, []int{3, 1, 2, 3}, mults)
	back, err := FromSingleMulti(knots, mults)
	require.NoError(t, err)
	assert.Equal(t, kv, back)

	_, err = FromSingleMulti([]float64{0, 1}, []int{1})
	assert.True(t, errors.Is(err, ErrDifferentLength))
}

func TestKnotConcat(t *testing.T) {
	a := KnotVector{0, 0, 0, 1, 1, 1}
	require.NoError(t, a.Concat(KnotVector{1, 1, 1, 2, 3, 3, 3}, 2))
	assert.Equal(t, KnotVector{0, 0, 0, 1, 1, 2, 3, 3, 3}, a)

	b := KnotVector{0, 0, 0, 1, 1, 1}
	err := b.Concat(KnotVector{2, 2, 2, 3, 3, 3}, 2)
	assert.True(t, errors.Is(err, ErrDifferentBackFront))

	c := KnotVector{0, 1, 2, 3, 4, 5}
	err = c.Concat(KnotVector{5, 5, 5, 6, 6, 6}, 2)
	assert.True(t, errors.Is(err, ErrNotClampedKnotVector))
}

func TestKnotTransforms(t *testing.T) {
	kv := KnotVector{0, 0, 1, 3, 3}
	kv.Invert()
	assert.Equal(t, KnotVector{0, 0, 2, 3, 3}, kv)
	kv.Translate(1)
	assert.Equal(t, KnotVector{1, 1, 3, 4, 4}, kv)
	kv.Transform(2, -2)
	assert.Equal(t, KnotVector{0, 0, 4, 6, 6}, kv)
	require.NoError(t, kv.Normalize())
	if diff := cmp.Diff(KnotVector{0, 0, 2.0 / 3.0, 1, 1}, kv, approx); diff != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, errors.Is(KnotVector{1, 1}.Normalize(), ErrZeroRange))
}

func TestBasisPartitionOfUnity(t *testing.T) {
	vectors := []struct {
		kv     KnotVector
		degree int
	}{
		{UniformKnot(3, 5), 3},
		{KnotVector{0, 0, 0, 0.2, 0.2, 0.7, 1, 1, 1}, 2},
		{BezierKnot(4), 4},
		{KnotVector{0, 0, 1, 2, 2, 3, 3}, 1},
	}
	for _, tt := range vectors {
		for i := 0; i <= 100; i++ {
			x := tt.kv.Front() + tt.kv.RangeLength()*float64(i)/100
			basis := tt.kv.BSplineBasisFunctions(tt.degree, 0, x)
			require.Len(t, basis, len(tt.kv)-tt.degree-1)
			var sum float64
			for _, b := range basis {
				assert.GreaterOrEqual(t, b, -1e-12, "negative basis at %g", x)
				sum += b
			}
			assert.InDelta(t, 1.0, sum, 1e-12, "partition of unity at %g for %v", x, tt.kv)
		}
	}
}

func TestBasisDerivatives(t *testing.T) {
	kv := KnotVector{0, 0, 0, 0, 0.3, 0.5, 0.5, 1, 1, 1, 1}
	const degree, h = 3, 1e-6
	for _, x := range []float64{0.1, 0.4, 0.7, 0.95} {
		for rank := 1; rank <= 2; rank++ {
			der := kv.BSplineBasisFunctions(degree, rank, x)
			plus := kv.BSplineBasisFunctions(degree, rank-1, x+h)
			minus := kv.BSplineBasisFunctions(degree, rank-1, x-h)
			for i := range der {
				fd := (plus[i] - minus[i]) / (2 * h)
				assert.InDelta(t, fd, der[i], 1e-3*(1+abs(fd)), "rank %d basis %d at %g", rank, i, x)
			}
			var sum float64
			for _, b := range der {
				sum += b
			}
			assert.InDelta(t, 0.0, sum, 1e-9, "derivatives must sum to zero")
		}
	}
	zero := kv.BSplineBasisFunctions(degree, degree+1, 0.4)
	for _, b := range zero {
		assert.Equal(t, 0.0, b)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
