package base

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
)

func TestBinomial(t *testing.T) {
	tests := []struct {
		n, k int
		want float64
	}{
		{0, 0, 1},
		{5, 0, 1},
		{5, 2, 10},
		{5, 5, 1},
		{10, 3, 120},
		{4, 5, 0},
		{4, -1, 0},
		{70, 2, 2415},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Binomial(tt.n, tt.k), 1e-9, "C(%d,%d)", tt.n, tt.k)
	}
}

func TestHomogeneousRoundTrip(t *testing.T) {
	p := v3.Vec{X: 1, Y: -2, Z: 3}
	h := NewHVec3(p, 0.5)
	assert.Equal(t, 0.5, h.Weight())
	assert.Equal(t, v3.Vec{X: 0.5, Y: -1, Z: 1.5}, h.Truncate())
	assert.True(t, Near(p, h.ToPoint()))

	var zero HVec3
	assert.Equal(t, h, zero.FromPoint(p, 0.5))
}

func TestInvOrZero(t *testing.T) {
	assert.Equal(t, 0.0, InvOrZero(0))
	assert.Equal(t, 0.25, InvOrZero(4))
}

func TestNear(t *testing.T) {
	a := v3.Vec{X: 1, Y: 1, Z: 1}
	assert.True(t, Near(a, a.Add(v3.Vec{X: Tolerance / 2})))
	assert.False(t, Near(a, a.Add(v3.Vec{X: 2 * Tolerance})))
	assert.False(t, Near2(a, a.Add(v3.Vec{X: Tolerance / 2})))
	assert.InDelta(t, 4.0, Distance2(Scalar(1), Scalar(3)), 1e-12)
}
