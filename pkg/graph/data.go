package graph

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// PrimitiveKind distinguishes between primitive solids.
type PrimitiveKind int

const (
	PrimBox       PrimitiveKind = iota // axis aligned box
	PrimCylinder                       // cylinder along z
	PrimExtrusion                      // swept planar profile
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimBox:
		return "box"
	case PrimCylinder:
		return "cylinder"
	case PrimExtrusion:
		return "extrusion"
	default:
		return "unknown"
	}
}

// BoxData is a box with its minimum corner at the origin.
type BoxData struct {
	Size Vec3 `json:"size"`
}

func (BoxData) nodeData() {}

// CylinderData is a cylinder standing on the xy plane around the z axis.
type CylinderData struct {
	Radius float64 `json:"radius"`
	Height float64 `json:"height"`
}

func (CylinderData) nodeData() {}

// ExtrusionData sweeps a planar polygon, minus its holes, along Direction.
type ExtrusionData struct {
	Profile   []Vec3   `json:"profile"`
	Holes     [][]Vec3 `json:"holes,omitempty"`
	Direction Vec3     `json:"direction"`
}

func (ExtrusionData) nodeData() {}

// Kind returns the primitive kind of a primitive payload, or false for
// other payloads.
func Kind(d NodeData) (PrimitiveKind, bool) {
	switch d.(type) {
	case BoxData:
		return PrimBox, true
	case CylinderData:
		return PrimCylinder, true
	case ExtrusionData:
		return PrimExtrusion, true
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to the child
// nodes. Created by the (place ...) form.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping (assembly, subassembly).
// Created by the (assembly ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
