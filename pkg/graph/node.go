package graph

// NodeKind tells how a node takes part in meshing.
type NodeKind int

const (
	NodePrimitive NodeKind = iota // a part: box, cylinder or extrusion
	NodeTransform                 // places its children, from (place ...)
	NodeGroup                     // collects its children, from (assembly ...)
)

var kindNames = [...]string{"primitive", "transform", "group"}

func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Node is a part, a placement or an assembly. Data holds the payload of
// the kind: a primitive payload, TransformData or GroupData.
type Node struct {
	ID       NodeID    `json:"id"`
	Kind     NodeKind  `json:"kind"`
	Name     string    `json:"name,omitempty"`
	Source   SourceRef `json:"source"`
	Children []NodeID  `json:"children,omitempty"`
	Data     NodeData  `json:"data"`
}

// Label names n in meshes and messages: its script name, or the short ID
// of an anonymous node.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}

// NodeData is implemented by the payloads in this package only.
type NodeData interface {
	nodeData()
}
