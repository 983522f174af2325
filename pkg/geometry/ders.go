package geometry

import (
	"fmt"

	"github.com/chazu/brepcad/pkg/base"
)

// MaxDerivationOrder is the highest derivative order CurveDers and
// SurfaceDers can hold.
const MaxDerivationOrder = 31

// CurveDers holds the derivatives C(t), C'(t), ..., C^(n)(t) of a curve at
// one parameter in a fixed-capacity array.
type CurveDers[P base.Vector[P]] struct {
	array    [MaxDerivationOrder + 1]P
	maxOrder int
}

// NewCurveDers returns zero derivatives up to maxOrder. It panics when
// maxOrder exceeds MaxDerivationOrder.
func NewCurveDers[P base.Vector[P]](maxOrder int) CurveDers[P] {
	if maxOrder < 0 || maxOrder > MaxDerivationOrder {
		panic(fmt.Sprintf("geometry: derivation order %d out of range", maxOrder))
	}
	return CurveDers[P]{maxOrder: maxOrder}
}

// MaxOrder returns the highest stored order.
func (d CurveDers[P]) MaxOrder() int { return d.maxOrder }

// At returns the derivative of order i.
func (d CurveDers[P]) At(i int) P { return d.array[i] }

// Set stores the derivative of order i.
func (d *CurveDers[P]) Set(i int, p P) { d.array[i] = p }

// Slice returns the stored derivatives in order.
func (d CurveDers[P]) Slice() []P {
	return append([]P(nil), d.array[:d.maxOrder+1]...)
}

// RationalDers turns homogeneous derivatives A_k (with weight part w_k)
// into the derivatives of the rational curve by
//
//	D_k = (A_k - Σ_{j=1..k} C(k,j) w_j D_{k-j}) / w_0,
//
// computed from D_0 upwards.
func RationalDers[V base.Homogeneous[V, P], P base.Vector[P]](h CurveDers[V]) CurveDers[P] {
	res := NewCurveDers[P](h.maxOrder)
	w0 := h.array[0].Weight()
	for k := 0; k <= h.maxOrder; k++ {
		ak := h.array[k].Truncate()
		for j := 1; j <= k; j++ {
			wj := h.array[j].Weight()
			ak = ak.Sub(res.array[k-j].MulScalar(base.Binomial(k, j) * wj))
		}
		res.array[k] = ak.MulScalar(1 / w0)
	}
	return res
}

// Composite returns the derivatives of f∘g given the derivatives of f at
// g(t) and of the scalar function g at t, by Faà di Bruno's formula:
//
//	(f∘g)^(n) = Σ_{k=1..n} f^(k) B_{n,k}(g', g'', ...),
//
// where B_{n,k} are the partial Bell polynomials.
func Composite[P base.Vector[P]](f CurveDers[P], g CurveDers[base.Scalar]) CurveDers[P] {
	n := min(f.maxOrder, g.maxOrder)
	res := NewCurveDers[P](n)
	res.array[0] = f.array[0]
	bell := partialBell(g, n)
	for m := 1; m <= n; m++ {
		var sum P
		for k := 1; k <= m; k++ {
			sum = sum.Add(f.array[k].MulScalar(bell[m][k]))
		}
		res.array[m] = sum
	}
	return res
}

// partialBell returns B_{m,k}(g^(1), g^(2), ...) for 0 <= k <= m <= n using
// B_{m,k} = Σ_{i=1..m-k+1} C(m-1, i-1) g^(i) B_{m-i,k-1}.
func partialBell(g CurveDers[base.Scalar], n int) [][]float64 {
	b := make([][]float64, n+1)
	for m := range b {
		b[m] = make([]float64, n+1)
	}
	b[0][0] = 1
	for m := 1; m <= n; m++ {
		for k := 1; k <= m; k++ {
			var s float64
			for i := 1; i <= m-k+1; i++ {
				s += base.Binomial(m-1, i-1) * float64(g.array[i]) * b[m-i][k-1]
			}
			b[m][k] = s
		}
	}
	return b
}

// SurfaceDers holds the mixed partial derivatives S_{m,n} = ∂^{m+n}S/∂u^m∂v^n
// with m+n <= maxOrder.
type SurfaceDers[P base.Vector[P]] struct {
	array    [][]P
	maxOrder int
}

// NewSurfaceDers returns zero derivatives up to total order maxOrder.
func NewSurfaceDers[P base.Vector[P]](maxOrder int) SurfaceDers[P] {
	if maxOrder < 0 || maxOrder > MaxDerivationOrder {
		panic(fmt.Sprintf("geometry: derivation order %d out of range", maxOrder))
	}
	array := make([][]P, maxOrder+1)
	for m := range array {
		array[m] = make([]P, maxOrder+1-m)
	}
	return SurfaceDers[P]{array: array, maxOrder: maxOrder}
}

// MaxOrder returns the highest stored total order.
func (d SurfaceDers[P]) MaxOrder() int { return d.maxOrder }

// At returns S_{m,n}.
func (d SurfaceDers[P]) At(m, n int) P { return d.array[m][n] }

// Set stores S_{m,n}.
func (d SurfaceDers[P]) Set(m, n int, p P) { d.array[m][n] = p }

// RationalSurfaceDers is the two-parameter analogue of RationalDers:
//
//	S_{k,l} = (A_{k,l} - Σ_{i,j} C(k,i) C(l,j) w_{i,j} S_{k-i,l-j}) / w_{0,0},
//
// summed over 0 <= i <= k, 0 <= j <= l, (i, j) != (0, 0).
func RationalSurfaceDers[V base.Homogeneous[V, P], P base.Vector[P]](h SurfaceDers[V]) SurfaceDers[P] {
	res := NewSurfaceDers[P](h.maxOrder)
	w00 := h.array[0][0].Weight()
	for k := 0; k <= h.maxOrder; k++ {
		for l := 0; l <= h.maxOrder-k; l++ {
			a := h.array[k][l].Truncate()
			for i := 0; i <= k; i++ {
				for j := 0; j <= l; j++ {
					if i == 0 && j == 0 {
						continue
					}
					c := base.Binomial(k, i) * base.Binomial(l, j) * h.array[i][j].Weight()
					a = a.Sub(res.array[k-i][l-j].MulScalar(c))
				}
			}
			res.array[k][l] = a.MulScalar(1 / w00)
		}
	}
	return res
}
