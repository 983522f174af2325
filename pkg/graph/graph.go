package graph

import (
	"errors"
	"fmt"
)

// DefaultTolerance is the chord tolerance, in millimetres, of the part
// meshes when the script sets none with (tolerance ...).
const DefaultTolerance = 0.01

// ErrCycle is returned when a node is reachable from its own children.
var ErrCycle = errors.New("graph: node contains itself")

// Settings are the script-wide meshing settings.
type Settings struct {
	Tolerance float64 `json:"tolerance"`
	Units     string  `json:"units"` // always "mm"
}

// DesignGraph holds the parts, placements and assemblies one evaluation
// of a script defines. The meshing pipeline only reads it; the next
// evaluation builds a new graph.
type DesignGraph struct {
	Nodes    map[NodeID]*Node  `json:"nodes"`
	Roots    []NodeID          `json:"roots"`
	Names    map[string]NodeID `json:"names"`
	Settings Settings          `json:"settings"`
}

// New returns an empty graph meshed at DefaultTolerance.
func New() *DesignGraph {
	return &DesignGraph{
		Nodes:    make(map[NodeID]*Node),
		Names:    make(map[string]NodeID),
		Settings: Settings{Tolerance: DefaultTolerance, Units: "mm"},
	}
}

// AddNode stores n, replacing a node of the same ID, and indexes its name.
func (g *DesignGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.Names[n.Name] = n.ID
	}
}

// AddRoot marks id as meshed on its own rather than through a parent.
func (g *DesignGraph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// Lookup returns the node defined under name, or nil.
func (g *DesignGraph) Lookup(name string) *Node {
	if id, ok := g.Names[name]; ok {
		return g.Nodes[id]
	}
	return nil
}

// Node returns the node with the given ID, or nil.
func (g *DesignGraph) Node(id NodeID) *Node {
	return g.Nodes[id]
}

// Children returns the children of n that are in the graph, in order.
func (g *DesignGraph) Children(n *Node) []*Node {
	res := make([]*Node, 0, len(n.Children))
	for _, id := range n.Children {
		if c := g.Nodes[id]; c != nil {
			res = append(res, c)
		}
	}
	return res
}

func (g *DesignGraph) NodeCount() int { return len(g.Nodes) }

// Instance is one occurrence of a part below the roots.
type Instance struct {
	Part *Node
	// Placements are the transforms above Part, outermost first.
	Placements []TransformData
}

// Instances lists the part occurrences reachable from the roots, depth
// first in child order. A part placed twice occurs twice, with its own
// placements each time.
func (g *DesignGraph) Instances() ([]Instance, error) {
	var res []Instance
	onPath := make(map[NodeID]bool)
	var visit func(n *Node, placements []TransformData) error
	visit = func(n *Node, placements []TransformData) error {
		if onPath[n.ID] {
			return fmt.Errorf("%w: %s", ErrCycle, n.Label())
		}
		switch n.Kind {
		case NodePrimitive:
			res = append(res, Instance{Part: n, Placements: placements})
			return nil
		case NodeTransform:
			td, ok := n.Data.(TransformData)
			if !ok {
				return fmt.Errorf("graph: transform %s carries %T", n.Label(), n.Data)
			}
			// siblings must not share the backing array
			placements = append(placements[:len(placements):len(placements)], td)
		case NodeGroup:
		default:
			return fmt.Errorf("graph: node %s has unknown kind %v", n.Label(), n.Kind)
		}
		onPath[n.ID] = true
		defer delete(onPath, n.ID)
		for _, c := range g.Children(n) {
			if err := visit(c, placements); err != nil {
				return err
			}
		}
		return nil
	}
	for _, id := range g.Roots {
		if n := g.Nodes[id]; n != nil {
			if err := visit(n, nil); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}
