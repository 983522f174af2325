// Package algo contains the numeric search and sampling routines shared by
// every curve and surface type: Newton iteration seeded by a coarse
// presearch grid for nearest-point and inclusion queries, and adaptive
// parameter division for chord-tolerant sampling.
//
// The routines only see the ParametricCurve and ParametricSurface
// interfaces, so B-spline and NURBS geometry, and any test fixture, go
// through the same code.
package algo

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'brep.algo'.
func tracer() tracing.Trace {
	return tracing.Select("brep.algo")
}

const (
	// PresearchDivision is the number of uniform samples per parameter
	// direction used to seed Newton iteration.
	PresearchDivision = 50

	// SearchTrials is the default Newton trial budget.
	SearchTrials = 100

	// MaxDivisionDepth bounds the recursion of ParameterDivision and the
	// number of refinement passes of SurfaceParameterDivision.
	MaxDivisionDepth = 24

	// maxGridPoints bounds the size of a surface division grid.
	maxGridPoints = 1 << 20
)

// hash01 maps its arguments deterministically to [0, 1).
func hash01(xs ...float64) float64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, x := range xs {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
		h.Write(buf[:])
	}
	return float64(h.Sum64()>>11) / float64(1<<53)
}

// splitRatio returns a split ratio in [0.4, 0.6] derived from xs. Offsetting
// the split keeps repeated bisection of symmetric or periodic geometry from
// landing on degenerate sample points.
func splitRatio(xs ...float64) float64 {
	return 0.5 + 0.2*hash01(xs...) - 0.1
}
