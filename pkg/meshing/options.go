package meshing

import "errors"

// DefaultTolerance is the chord tolerance of DefaultOptions in model units.
const DefaultTolerance = 0.01

// ErrInvalidTolerance is returned for a non-positive chord tolerance.
var ErrInvalidTolerance = errors.New("meshing: tolerance must be positive")

// Options configures Tessellate.
type Options struct {
	// Tolerance is the maximal distance between the mesh and the geometry.
	Tolerance float64
	// Workers is the number of faces tessellated concurrently. Values
	// below 1 mean the platform default; 1 runs on the calling goroutine.
	Workers int
}

// DefaultOptions returns DefaultTolerance and the platform worker count.
func DefaultOptions() Options {
	return Options{Tolerance: DefaultTolerance, Workers: defaultWorkers()}
}

func (o Options) workers(faces int) int {
	n := o.Workers
	if n < 1 {
		n = defaultWorkers()
	}
	return max(1, min(n, faces))
}
