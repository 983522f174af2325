//go:build !js && !wasip1

package meshing

import "runtime"

func defaultWorkers() int { return runtime.NumCPU() }
