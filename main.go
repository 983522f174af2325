// Command brepcad evaluates a design script and writes the meshed parts as
// one STL file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"

	"github.com/chazu/brepcad/pkg/kernel"
	"github.com/chazu/brepcad/pkg/kernel/sdfx"
)

// traceKeys are the tracers of the kernel packages.
var traceKeys = []string{
	"brep.algo", "brep.topology", "brep.meshing",
	"brep.builder", "brep.kernel", "brep.engine",
}

// setupTracing routes the kernel tracers to the standard logger at level.
func setupTracing(level string) error {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
	}
	for _, key := range traceKeys {
		conf["trace."+key] = level
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return fmt.Errorf("configuring tracing: %w", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	return nil
}

func main() {
	in := flag.String("in", "", "design script to evaluate")
	out := flag.String("out", "out.stl", "STL file to write")
	tol := flag.Float64("tol", 0, "chord tolerance, overrides (tolerance ...) in the script when positive")
	workers := flag.Int("workers", 0, "faces meshed concurrently, 0 for one per CPU")
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	flag.Parse()

	if err := setupTracing(*tlevel); err != nil {
		log.Fatal(err)
	}

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(*in, *out, *tol, *workers); err != nil {
		log.Fatal(err)
	}
}

// run evaluates the script at in and saves its meshes to out.
func run(in, out string, tol float64, workers int) error {
	source, err := os.ReadFile(in)
	if err != nil {
		return err
	}

	app := NewApp()
	app.Tolerance = tol
	if workers > 0 {
		app.Workers = workers
	}
	result := app.Evaluate(string(source))
	for _, w := range result.Warnings {
		log.Printf("warning: %s", w.Message)
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			if e.Line > 0 {
				log.Printf("%s:%d: %s", in, e.Line, e.Message)
			} else {
				log.Printf("%s: %s", in, e.Message)
			}
		}
		return fmt.Errorf("%s: %d errors", in, len(result.Errors))
	}

	meshes := make([]*kernel.Mesh, len(result.Meshes))
	triangles, volume := 0, 0.0
	for i, m := range result.Meshes {
		meshes[i] = m.KernelMesh()
		triangles += meshes[i].TriangleCount()
		volume += meshes[i].Volume()
	}
	if err := sdfx.SaveSTL(out, meshes...); err != nil {
		return err
	}
	log.Printf("wrote %d parts, %d triangles, volume %.4g to %s", len(meshes), triangles, volume, out)
	return nil
}
