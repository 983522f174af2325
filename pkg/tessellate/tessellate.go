// Package tessellate turns the part occurrences of a design graph into
// triangle meshes using a geometry kernel.
package tessellate

import (
	"fmt"

	"github.com/chazu/brepcad/pkg/graph"
	"github.com/chazu/brepcad/pkg/kernel"
)

// place applies the placements to s, innermost first. Each placement
// rotates (Euler angles, degrees) before it translates.
func place(k kernel.Kernel, s kernel.Solid, placements []graph.TransformData) kernel.Solid {
	for i := len(placements) - 1; i >= 0; i-- {
		p := placements[i]
		if r := p.Rotation; r != nil && !r.IsZero() {
			s = k.Rotate(s, r.X, r.Y, r.Z)
		}
		if t := p.Translation; t != nil && !t.IsZero() {
			s = k.Translate(s, t.X, t.Y, t.Z)
		}
	}
	return s
}

// Tessellate produces one triangle mesh per part occurrence of the design
// graph, in depth-first order from the roots, using the provided geometry
// kernel. The graph is only read.
func Tessellate(g *graph.DesignGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}
	instances, err := g.Instances()
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	meshes := make([]*kernel.Mesh, 0, len(instances))
	for _, in := range instances {
		m, err := meshInstance(k, in)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// Solid builds the untransformed solid of a primitive node.
func Solid(k kernel.Kernel, n *graph.Node) (kernel.Solid, error) {
	switch data := n.Data.(type) {
	case graph.BoxData:
		return k.Box(data.Size.X, data.Size.Y, data.Size.Z)
	case graph.CylinderData:
		return k.Cylinder(data.Height, data.Radius)
	case graph.ExtrusionData:
		holes := make([][]kernel.Point, len(data.Holes))
		for i, h := range data.Holes {
			holes[i] = points(h)
		}
		d := data.Direction
		return k.Extrude(points(data.Profile), holes, kernel.Point{d.X, d.Y, d.Z})
	default:
		return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}
}

func points(vs []graph.Vec3) []kernel.Point {
	res := make([]kernel.Point, len(vs))
	for i, v := range vs {
		res[i] = kernel.Point{v.X, v.Y, v.Z}
	}
	return res
}

// meshInstance builds, places and meshes one part occurrence.
func meshInstance(k kernel.Kernel, in graph.Instance) (*kernel.Mesh, error) {
	n := in.Part
	solid, err := Solid(k, n)
	if err != nil {
		if kind, ok := graph.Kind(n.Data); ok {
			return nil, fmt.Errorf("%s %s: %w", kind, n.Label(), err)
		}
		return nil, fmt.Errorf("node %s: %w", n.Label(), err)
	}
	mesh, err := k.ToMesh(place(k, solid, in.Placements))
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", n.Label(), err)
	}
	mesh.PartName = n.Label()
	return mesh, nil
}
