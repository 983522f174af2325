package engine

import (
	"fmt"
	"time"

	"github.com/chazu/brepcad/pkg/graph"
)

// DefaultTimeout is the limit for a single evaluation.
const DefaultTimeout = 5 * time.Second

type evalResult struct {
	graph  *graph.DesignGraph
	errors []EvalError
	err    error
}

// next starts a new generation and returns its number.
func (e *Engine) next() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

func (e *Engine) current() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// wait returns the result from ch, or ErrTimeout once the engine's timeout
// has passed. A result of generation gen is discarded with ErrSuperseded if
// Evaluate was called again in the meantime.
//
// On timeout the evaluating goroutine keeps running; its result lands in
// the buffered channel and is never read.
func (e *Engine) wait(ch <-chan evalResult, gen uint64) (*graph.DesignGraph, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if current := e.current(); gen != current {
			tracer().Debugf("discarding result of evaluation %d, current is %d", gen, current)
			return nil, nil, ErrSuperseded
		}
		return res.graph, res.errors, res.err
	case <-timer.C:
		tracer().Errorf("evaluation %d timed out after %s", gen, e.timeout)
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
}
