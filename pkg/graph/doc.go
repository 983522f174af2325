// Package graph defines the design graph for brepcad.
// The design graph is an immutable DAG of solid primitives, transforms and
// groups produced by script evaluation and consumed by the tessellator.
package graph
