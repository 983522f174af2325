//go:build !brepdebug

package base

// DebugBuild is false in release builds: the Unchecked constructors trust
// their inputs and skip validation.
const DebugBuild = false
