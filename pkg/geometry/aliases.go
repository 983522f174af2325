package geometry

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/brepcad/pkg/base"
)

// Concrete curve and surface types over the sdfx vectors.
type (
	BSplineCurve2   = BSplineCurve[v2.Vec]
	BSplineCurve3   = BSplineCurve[v3.Vec]
	NurbsCurve2     = NurbsCurve[base.HVec2, v2.Vec]
	NurbsCurve3     = NurbsCurve[base.HVec3, v3.Vec]
	BSplineSurface3 = BSplineSurface[v3.Vec]
	NurbsSurface3   = NurbsSurface[base.HVec3, v3.Vec]
)
