//go:build js || wasip1

package meshing

// Targets without threads tessellate sequentially.
func defaultWorkers() int { return 1 }
