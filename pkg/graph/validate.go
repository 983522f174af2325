package graph

import (
	"fmt"
	"math"
	"sort"
)

// ValidationSeverity indicates whether a validation finding blocks evaluation
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// Validate runs the structural checks on the design graph and returns the
// findings. An empty slice means the graph is valid. It never mutates the
// graph.
func Validate(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	return errs
}

// ValidateAll runs the structural and the geometric checks and separates
// errors from warnings.
func ValidateAll(g *DesignGraph) ValidationResult {
	var result ValidationResult
	for _, e := range append(Validate(g), validateGeometry(g)...) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// sortedIDs returns the node IDs in a stable order so findings are
// reported deterministically.
func sortedIDs(g *DesignGraph) []NodeID {
	ids := make([]NodeID, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
func validateDAG(g *DesignGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray
		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}
		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range sortedIDs(g) {
		if color[id] == white && visit(id) {
			break
		}
	}
	return errs
}

// validateReferences checks that every child reference points to a node
// in g.Nodes.
func validateReferences(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	for _, id := range sortedIDs(g) {
		node := g.Nodes[id]
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
		if node.Kind == NodePrimitive && len(node.Children) > 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  "primitive node has children",
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateNames checks that the Names points to existing nodes and that
// no two nodes share a name.
func validateNames(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	names := make([]string, 0, len(g.Names))
	for name := range g.Names {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		id := g.Names[name]
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	count := make(map[string]int)
	for _, node := range g.Nodes {
		if node.Name != "" {
			count[node.Name]++
		}
	}
	var dups []string
	for name, n := range count {
		if n > 1 {
			dups = append(dups, name)
		}
	}
	sort.Strings(dups)
	for _, name := range dups {
		errs = append(errs, ValidationError{
			Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, count[name]),
			Severity: SeverityError,
		})
	}
	return errs
}

// validateRoots checks that every root ID references an existing node and
// warns about nodes unreachable from any root.
func validateRoots(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}
	if len(g.Nodes) == 0 {
		return errs
	}

	reachable := make(map[NodeID]bool)
	var queue []NodeID
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; ok && !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}
	for len(queue) > 0 {
		node := g.Nodes[queue[0]]
		queue = queue[1:]
		if node == nil {
			continue
		}
		for _, childID := range node.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	for _, id := range sortedIDs(g) {
		if reachable[id] {
			continue
		}
		name := g.Nodes[id].Name
		if name == "" {
			name = id.Short()
		}
		errs = append(errs, ValidationError{
			NodeID:   id,
			Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", name),
			Severity: SeverityWarning,
		})
	}
	return errs
}

// ---------------------------------------------------------------------------
// Geometric validation
// ---------------------------------------------------------------------------

// validateGeometry checks that primitives describe non-degenerate solids.
func validateGeometry(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	if !(g.Settings.Tolerance > 0) {
		errs = append(errs, ValidationError{
			Message:  fmt.Sprintf("tolerance is %g, must be positive", g.Settings.Tolerance),
			Severity: SeverityError,
		})
	}
	errorf := func(id NodeID, format string, args ...any) {
		errs = append(errs, ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
	}
	warnf := func(id NodeID, format string, args ...any) {
		errs = append(errs, ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
	}

	for _, id := range sortedIDs(g) {
		switch d := g.Nodes[id].Data.(type) {
		case BoxData:
			for i, v := range []float64{d.Size.X, d.Size.Y, d.Size.Z} {
				if v <= 0 {
					errorf(id, "box dimension %c is %.4f, must be positive", "XYZ"[i], v)
				}
			}
		case CylinderData:
			if d.Radius <= 0 {
				errorf(id, "cylinder radius is %.4f, must be positive", d.Radius)
			}
			if d.Height <= 0 {
				errorf(id, "cylinder height is %.4f, must be positive", d.Height)
			}
			if d.Radius > 0 && d.Radius < g.Settings.Tolerance*10 {
				warnf(id, "cylinder radius %.4f is close to the tolerance %g", d.Radius, g.Settings.Tolerance)
			}
		case ExtrusionData:
			if len(d.Profile) < 3 {
				errorf(id, "extrusion profile has %d points, needs at least 3", len(d.Profile))
			}
			for i, hole := range d.Holes {
				if len(hole) < 3 {
					errorf(id, "extrusion hole %d has %d points, needs at least 3", i, len(hole))
				}
			}
			if d.Direction.IsZero() {
				errorf(id, "extrusion direction is zero")
			}
		case TransformData:
			if d.Rotation != nil {
				for _, a := range []float64{d.Rotation.X, d.Rotation.Y, d.Rotation.Z} {
					if math.IsNaN(a) || math.IsInf(a, 0) {
						errorf(id, "rotation %v is not finite", *d.Rotation)
						break
					}
				}
			}
		}
	}
	return errs
}
