//go:build brepdebug

// Build with: go build -tags=brepdebug

package base

// DebugBuild is true when built with the brepdebug tag: the Unchecked
// constructors validate their inputs and panic on violation.
const DebugBuild = true
