package graph

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewDesignGraph(t *testing.T) {
	g := New()
	if g.Nodes == nil {
		t.Fatal("Nodes map should be initialized")
	}
	if g.Names == nil {
		t.Fatal("Names map should be initialized")
	}
	if g.Settings.Tolerance != DefaultTolerance {
		t.Errorf("default tolerance = %f, want %f", g.Settings.Tolerance, DefaultTolerance)
	}
	if g.Settings.Units != "mm" {
		t.Errorf("default units = %q, want %q", g.Settings.Units, "mm")
	}
	if g.NodeCount() != 0 {
		t.Errorf("empty graph should have 0 nodes, got %d", g.NodeCount())
	}
}

func TestNodeIDs(t *testing.T) {
	a, b := NewNodeID("defpart/lid"), NewNodeID("defpart/lid")
	if a != b {
		t.Errorf("IDs of the same path differ: %s %s", a, b)
	}
	if a == NewNodeID("defpart/base") {
		t.Error("IDs of different paths collide")
	}
	if len(a.Short()) != 8 {
		t.Errorf("Short() = %q, want 8 characters", a.Short())
	}
	if !ZeroID.IsZero() || a.IsZero() {
		t.Error("IsZero mismatch")
	}
}

func TestAddNodeAndLookup(t *testing.T) {
	g := New()

	id := NewNodeID("defpart/plate")
	node := &Node{
		ID:   id,
		Kind: NodePrimitive,
		Name: "plate",
		Data: BoxData{Size: Vec3{100, 50, 5}},
	}
	g.AddNode(node)
	g.AddRoot(id)

	if g.NodeCount() != 1 {
		t.Errorf("node count = %d, want 1", g.NodeCount())
	}
	found := g.Lookup("plate")
	if found == nil || found.ID != id {
		t.Fatal("Lookup('plate') returned the wrong node")
	}
	if g.Lookup("nonexistent") != nil {
		t.Error("Lookup should return nil for missing name")
	}
	if got := g.Node(id); got == nil || got.Name != "plate" {
		t.Errorf("Node(%s) failed", id.Short())
	}
	if len(g.Roots) != 1 || g.Roots[0] != id {
		t.Errorf("roots = %v, want [%s]", g.Roots, id.Short())
	}
}

func TestInstances(t *testing.T) {
	g := New()
	leg := &Node{ID: NewNodeID("defpart/leg"), Kind: NodePrimitive, Name: "leg", Data: BoxData{Size: Vec3{1, 1, 1}}}
	top := &Node{ID: NewNodeID("defpart/top"), Kind: NodePrimitive, Name: "top", Data: CylinderData{Radius: 1, Height: 2}}
	left := &Node{ID: NewNodeID("place/1"), Kind: NodeTransform, Children: []NodeID{leg.ID}, Data: TransformData{Translation: &Vec3{X: -1}}}
	right := &Node{ID: NewNodeID("place/2"), Kind: NodeTransform, Children: []NodeID{leg.ID, NewNodeID("missing")}, Data: TransformData{Translation: &Vec3{X: 1}}}
	lift := &Node{ID: NewNodeID("place/3"), Kind: NodeTransform, Children: []NodeID{left.ID, right.ID}, Data: TransformData{Rotation: &Vec3{Z: 90}}}
	table := &Node{ID: NewNodeID("assembly/table"), Kind: NodeGroup, Name: "table", Children: []NodeID{top.ID, lift.ID}, Data: GroupData{}}
	for _, n := range []*Node{leg, top, left, right, lift, table} {
		g.AddNode(n)
	}
	g.AddRoot(table.ID)
	g.AddRoot(NewNodeID("missing-root"))

	instances, err := g.Instances()
	if err != nil {
		t.Fatalf("Instances() failed: %v", err)
	}
	var labels []string
	for _, in := range instances {
		labels = append(labels, in.Part.Label())
	}
	if diff := cmp.Diff([]string{"top", "leg", "leg"}, labels); diff != "" {
		t.Errorf("part order (-want +got):\n%s", diff)
	}
	if len(instances[0].Placements) != 0 {
		t.Errorf("top is not placed, got %v", instances[0].Placements)
	}
	for i, x := range []float64{-1, 1} {
		p := instances[i+1].Placements
		if len(p) != 2 || p[0].Rotation == nil || p[0].Rotation.Z != 90 {
			t.Fatalf("leg %d: outer placement missing in %v", i, p)
		}
		if p[1].Translation == nil || p[1].Translation.X != x {
			t.Errorf("leg %d: inner translation %v, want x=%g", i, p[1].Translation, x)
		}
	}
	if children := g.Children(right); len(children) != 1 || children[0] != leg {
		t.Errorf("Children() = %v, want the leg only", children)
	}
}

func TestInstancesRejectsBadGraphs(t *testing.T) {
	g := New()
	loop := &Node{ID: NewNodeID("assembly/loop"), Kind: NodeGroup, Name: "loop", Data: GroupData{}}
	loop.Children = []NodeID{loop.ID}
	g.AddNode(loop)
	g.AddRoot(loop.ID)
	if _, err := g.Instances(); !errors.Is(err, ErrCycle) {
		t.Errorf("got %v, want ErrCycle", err)
	}

	g = New()
	bad := &Node{ID: NewNodeID("place/bad"), Kind: NodeTransform, Data: GroupData{}}
	g.AddNode(bad)
	g.AddRoot(bad.ID)
	if _, err := g.Instances(); err == nil || !strings.Contains(err.Error(), bad.ID.Short()) {
		t.Errorf("got %v, want an error naming the transform", err)
	}
}

func TestLabel(t *testing.T) {
	id := NewNodeID("place/1")
	if got := (&Node{ID: id}).Label(); got != id.Short() {
		t.Errorf("anonymous Label() = %q, want %q", got, id.Short())
	}
	if got := (&Node{ID: id, Name: "shelf"}).Label(); got != "shelf" {
		t.Errorf("Label() = %q, want the name", got)
	}
	if NodeKind(7).String() != "unknown" || NodeKind(-1).String() != "unknown" {
		t.Error("out of range kinds must print as unknown")
	}
}

func TestPrimitiveKind(t *testing.T) {
	tests := []struct {
		data NodeData
		want PrimitiveKind
		ok   bool
	}{
		{BoxData{}, PrimBox, true},
		{CylinderData{}, PrimCylinder, true},
		{ExtrusionData{}, PrimExtrusion, true},
		{GroupData{}, 0, false},
	}
	for _, tt := range tests {
		got, ok := Kind(tt.data)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Kind(%T) = %v, %v; want %v, %v", tt.data, got, ok, tt.want, tt.ok)
		}
	}
	if PrimExtrusion.String() != "extrusion" || NodeGroup.String() != "group" {
		t.Error("unexpected String() values")
	}
}
