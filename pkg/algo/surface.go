package algo

import (
	"math"

	"github.com/chazu/brepcad/pkg/base"
)

// ParametricSurface is a surface with derivatives up to second order over a
// rectangular parameter domain.
type ParametricSurface[P base.Vector[P]] interface {
	Subs(u, v float64) P
	Uder(u, v float64) P
	Vder(u, v float64) P
	Uuder(u, v float64) P
	Uvder(u, v float64) P
	Vvder(u, v float64) P
	ParameterRange() (urange, vrange [2]float64)
}

// PresearchSurfaceParameter samples the given domain on a division×division
// grid and returns the sample closest to point.
func PresearchSurfaceParameter[P base.Vector[P]](s ParametricSurface[P], point P, urange, vrange [2]float64, division int) (float64, float64) {
	if division < 1 {
		division = 1
	}
	bu, bv, best := urange[0], vrange[0], math.Inf(1)
	for i := 0; i <= division; i++ {
		u := urange[0] + (urange[1]-urange[0])*float64(i)/float64(division)
		for j := 0; j <= division; j++ {
			v := vrange[0] + (vrange[1]-vrange[0])*float64(j)/float64(division)
			if d := base.Distance2(s.Subs(u, v), point); d < best {
				bu, bv, best = u, v, d
			}
		}
	}
	return bu, bv
}

// SearchNearestSurfaceParameter solves the normal equations
// ⟨Su, S - p⟩ = ⟨Sv, S - p⟩ = 0 by Newton iteration from (hu, hv). The
// result is clamped to the parameter domain.
func SearchNearestSurfaceParameter[P base.Vector[P]](s ParametricSurface[P], point P, hu, hv float64, trials int) (float64, float64, bool) {
	urange, vrange := s.ParameterRange()
	u, v := hu, hv
	for i := 0; i <= trials; i++ {
		d := s.Subs(u, v).Sub(point)
		su, sv := s.Uder(u, v), s.Vder(u, v)
		suu, suv, svv := s.Uuder(u, v), s.Uvder(u, v), s.Vvder(u, v)
		f0, f1 := su.Dot(d), sv.Dot(d)
		a := suu.Dot(d) + su.Dot(su)
		b := suv.Dot(d) + su.Dot(sv)
		c := svv.Dot(d) + sv.Dot(sv)
		det := a*c - b*b
		if f0 == 0 && f1 == 0 {
			break
		}
		if det == 0 || math.IsNaN(det) {
			tracer().Debugf("nearest surface parameter: singular jacobian at (%g, %g)", u, v)
			return u, v, false
		}
		du := (c*f0 - b*f1) / det
		dv := (a*f1 - b*f0) / det
		if math.IsNaN(du) || math.IsNaN(dv) {
			return u, v, false
		}
		done := converged(du, u) && converged(dv, v)
		u, v = u-du, v-dv
		if done {
			return clampParameter(u, urange[0], urange[1]), clampParameter(v, vrange[0], vrange[1]), true
		}
		if i == trials {
			tracer().Debugf("nearest surface parameter: trial budget %d exhausted", trials)
			return u, v, false
		}
	}
	return clampParameter(u, urange[0], urange[1]), clampParameter(v, vrange[0], vrange[1]), true
}

// SearchSurfaceParameter searches (u, v) with S(u, v) = point and fails when
// the Newton result is not on the surface within base.Tolerance.
func SearchSurfaceParameter[P base.Vector[P]](s ParametricSurface[P], point P, hu, hv float64, trials int) (float64, float64, bool) {
	u, v, ok := SearchNearestSurfaceParameter(s, point, hu, hv, trials)
	if !ok || !base.Near(s.Subs(u, v), point) {
		return u, v, false
	}
	return u, v, true
}

// SurfaceParameterDivision refines a (u, v) grid over the given domain until
// every cell is within tol of the bilinear interpolation of its corners,
// tested at one hashed interior sample per cell. Only the directions that
// cause the deviation are split.
func SurfaceParameterDivision[P base.Vector[P]](s ParametricSurface[P], urange, vrange [2]float64, tol float64) ([]float64, []float64) {
	udiv := []float64{urange[0], urange[1]}
	vdiv := []float64{vrange[0], vrange[1]}
	tol2 := tol * tol
	for pass := 0; pass < MaxDivisionDepth; pass++ {
		grid := make([][]P, len(udiv))
		for i, u := range udiv {
			grid[i] = make([]P, len(vdiv))
			for j, v := range vdiv {
				grid[i][j] = s.Subs(u, v)
			}
		}
		splitU := make([]bool, len(udiv)-1)
		splitV := make([]bool, len(vdiv)-1)
		changed := false
		for i := 0; i+1 < len(udiv); i++ {
			for j := 0; j+1 < len(vdiv); j++ {
				ru := splitRatio(udiv[i], udiv[i+1], vdiv[j], vdiv[j+1])
				rv := splitRatio(vdiv[j], vdiv[j+1], udiv[i], udiv[i+1])
				u := udiv[i] + (udiv[i+1]-udiv[i])*ru
				v := vdiv[j] + (vdiv[j+1]-vdiv[j])*rv
				pt := s.Subs(u, v)
				bilinear := base.Lerp(
					base.Lerp(grid[i][j], grid[i+1][j], ru),
					base.Lerp(grid[i][j+1], grid[i+1][j+1], ru),
					rv,
				)
				if base.Distance2(pt, bilinear) < tol2 {
					continue
				}
				alongU := base.Lerp(s.Subs(udiv[i], v), s.Subs(udiv[i+1], v), ru)
				alongV := base.Lerp(s.Subs(u, vdiv[j]), s.Subs(u, vdiv[j+1]), rv)
				su := base.Distance2(pt, alongU) >= tol2
				sv := base.Distance2(pt, alongV) >= tol2
				if !su && !sv {
					su, sv = true, true
				}
				splitU[i] = splitU[i] || su
				splitV[j] = splitV[j] || sv
				changed = true
			}
		}
		if !changed {
			return udiv, vdiv
		}
		udiv = refineDivision(udiv, splitU)
		vdiv = refineDivision(vdiv, splitV)
		if len(udiv)*len(vdiv) > maxGridPoints {
			tracer().Debugf("surface division: grid limit reached (%d x %d)", len(udiv), len(vdiv))
			return udiv, vdiv
		}
	}
	tracer().Debugf("surface division: pass budget exhausted")
	return udiv, vdiv
}

// refineDivision inserts a hashed split point into every flagged interval.
func refineDivision(div []float64, split []bool) []float64 {
	res := make([]float64, 0, 2*len(div))
	for i := 0; i+1 < len(div); i++ {
		res = append(res, div[i])
		if split[i] {
			r := splitRatio(div[i], div[i+1])
			res = append(res, div[i]+(div[i+1]-div[i])*r)
		}
	}
	return append(res, div[len(div)-1])
}
