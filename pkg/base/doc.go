// Package base holds the numeric foundation shared by the geometry, algo,
// topology and meshing packages: the arithmetic contract every control point
// type satisfies, homogeneous coordinates for rational geometry, tolerance
// constants and the binomial table used by the derivative formulas.
//
// The concrete affine point types are the sdfx vectors (v2.Vec, v3.Vec),
// which satisfy Vector without adaptation. Homogeneous counterparts are
// HVec2 and HVec3; the last coordinate is the weight.
package base
