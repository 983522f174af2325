package main

import (
	"log"

	"github.com/chazu/brepcad/pkg/engine"
	"github.com/chazu/brepcad/pkg/graph"
	"github.com/chazu/brepcad/pkg/kernel"
	"github.com/chazu/brepcad/pkg/kernel/brep"
	"github.com/chazu/brepcad/pkg/meshing"
	"github.com/chazu/brepcad/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs the evaluation pipeline: script, design graph, validation,
// boundary solids, meshes.
type App struct {
	engine *engine.Engine
	// Tolerance overrides the chord tolerance of the scripts when positive.
	Tolerance float64
	// Workers is the number of faces meshed concurrently, see meshing.Options.
	Workers int
}

// MeshData is the JSON-serializable mesh format sent to viewers.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// KernelMesh returns m as a kernel mesh sharing its arrays.
func (m MeshData) KernelMesh() *kernel.Mesh {
	return &kernel.Mesh{
		Vertices: m.Vertices,
		Normals:  m.Normals,
		Indices:  m.Indices,
		PartName: m.PartName,
	}
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates a new App with an engine and default meshing options.
func NewApp() *App {
	return &App{
		engine:  engine.NewEngine(),
		Workers: meshing.DefaultOptions().Workers,
	}
}

// kernelFor returns the boundary kernel meshing g within its tolerance.
func (a *App) kernelFor(g *graph.DesignGraph) kernel.Kernel {
	tol := g.Settings.Tolerance
	if a.Tolerance > 0 {
		tol = a.Tolerance
	}
	return brep.New(meshing.Options{Tolerance: tol, Workers: a.Workers})
}

// Evaluate takes Lisp source and returns mesh data + errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into a design graph.
	g, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Line:    0,
			Col:     0,
			Message: err.Error(),
		})
		return result
	}

	// Step 2: Convert eval errors to the result format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 3: Validate the graph before building any geometry.
	vr := graph.ValidateAll(g)
	for _, w := range vr.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Message})
	}
	if len(vr.Errors) > 0 {
		for _, e := range vr.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Message: e.Error()})
		}
		return result
	}

	// Step 4: Tessellate the design graph into triangle meshes.
	meshes, err := tessellate.Tessellate(g, a.kernelFor(g))
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Line:    0,
			Col:     0,
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	// Step 5: Convert kernel meshes to the MeshData format.
	for i, m := range meshes {
		color := colorPalette[i%len(colorPalette)]
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    color,
		})
	}

	return result
}
