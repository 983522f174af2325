package geometry

import (
	"fmt"
	"math"

	"github.com/chazu/brepcad/pkg/base"
)

// Interpole returns the B-spline curve over knotVec that passes through
// points[i] at params[i]. The degree is len(knotVec) - len(points) - 1.
// A singular collocation matrix yields ErrGaussianElimination.
func Interpole[P base.Vector[P]](knotVec KnotVector, params []float64, points []P) (*BSplineCurve[P], error) {
	n := len(points)
	if n == 0 {
		return nil, ErrEmptyControlPoints
	}
	if len(params) != n {
		return nil, fmt.Errorf("%w: %d parameters, %d points", ErrDifferentLength, len(params), n)
	}
	if err := checkCurve(knotVec, n); err != nil {
		return nil, err
	}
	degree := len(knotVec) - n - 1
	matrix := make([][]float64, n)
	for i, t := range params {
		matrix[i] = knotVec.BSplineBasisFunctions(degree, 0, t)
	}
	rhs := append([]P(nil), points...)
	if err := gaussianElimination(matrix, rhs); err != nil {
		return nil, err
	}
	return &BSplineCurve[P]{knotVec: knotVec, controlPoints: rhs}, nil
}

// gaussianElimination solves matrix * x = rhs in place with partial
// pivoting; the solution is left in rhs.
func gaussianElimination[P base.Vector[P]](matrix [][]float64, rhs []P) error {
	n := len(rhs)
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(matrix[row][col]) > math.Abs(matrix[pivot][col]) {
				pivot = row
			}
		}
		if base.SoSmall2(matrix[pivot][col]) {
			return fmt.Errorf("%w: column %d", ErrGaussianElimination, col)
		}
		matrix[col], matrix[pivot] = matrix[pivot], matrix[col]
		rhs[col], rhs[pivot] = rhs[pivot], rhs[col]
		for row := col + 1; row < n; row++ {
			f := matrix[row][col] / matrix[col][col]
			if f == 0 {
				continue
			}
			for k := col; k < n; k++ {
				matrix[row][k] -= f * matrix[col][k]
			}
			rhs[row] = rhs[row].Sub(rhs[col].MulScalar(f))
		}
	}
	for row := n - 1; row >= 0; row-- {
		acc := rhs[row]
		for k := row + 1; k < n; k++ {
			acc = acc.Sub(rhs[k].MulScalar(matrix[row][k]))
		}
		rhs[row] = acc.MulScalar(1 / matrix[row][row])
	}
	return nil
}
