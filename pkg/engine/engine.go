// Package engine evaluates design scripts. A script is zygomys Lisp run in
// a fresh sandbox with the modelling builtins registered; the parts and
// assemblies it defines become a graph.DesignGraph.
package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/npillmayer/schuko/tracing"

	"github.com/chazu/brepcad/pkg/graph"
)

// tracer traces with key 'brep.engine'.
func tracer() tracing.Trace {
	return tracing.Select("brep.engine")
}

var (
	ErrTimeout    = errors.New("engine: evaluation timed out")
	ErrSuperseded = errors.New("engine: evaluation superseded by a newer request")
	ErrPanic      = errors.New("engine: panic during evaluation")
)

// EvalError is a problem in the user's script, such as a parse error, an
// unknown symbol or a builtin called with bad arguments.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine evaluates scripts. It is safe for concurrent use: each call to
// Evaluate gets its own sandbox, and only the result of the latest call is
// delivered.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout limits a single evaluation to d instead of DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates a new Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs source and returns the design graph it builds.
//
//   - On success: graph, nil, nil
//   - On a script error: nil, eval errors, nil
//   - On timeout, panic or a newer call: nil, nil, error
func (e *Engine) Evaluate(source string) (*graph.DesignGraph, []EvalError, error) {
	gen := e.next()
	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("%w: %v", ErrPanic, r)}
			}
		}()
		g, evalErrs, err := evaluate(source)
		ch <- evalResult{graph: g, errors: evalErrs, err: err}
	}()
	return e.wait(ch, gen)
}

// evaluate runs source in a fresh sandbox, which keeps user code away from
// the file system and makes evaluation deterministic.
func evaluate(source string) (*graph.DesignGraph, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return graph.New(), nil, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := newGraphBuilder()
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	g := b.finish()
	tracer().Infof("evaluated %d nodes, %d roots", g.NodeCount(), len(g.Roots))
	return g, nil, nil
}

// zygomys reports positions as "Error on line N: ..." or "line N: ...".
var linePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`),
	regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`),
}

// parseZygomysError converts a zygomys error into eval errors, keeping the
// line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, p := range linePatterns {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
