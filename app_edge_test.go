package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evaluateClean evaluates source and fails on any error.
func evaluateClean(t *testing.T, source string) EvalResult {
	t.Helper()
	result := NewApp().Evaluate(source)
	for _, e := range result.Errors {
		t.Errorf("error (line %d): %s", e.Line, e.Message)
	}
	if t.Failed() {
		t.FailNow()
	}
	return result
}

func partNames(result EvalResult) []string {
	names := make([]string, len(result.Meshes))
	for i, m := range result.Meshes {
		names[i] = m.PartName
	}
	return names
}

func TestE2ENothingToMesh(t *testing.T) {
	for name, source := range map[string]string{
		"empty":      "",
		"whitespace": "   \n\t\n   \n",
		"comments":   ";; a comment\n;; another\n; and one more\n",
		"indented":   "  ;; leading\n  ; tabs\teverywhere\n",
		"arithmetic": "(def w (* 2 150))",
	} {
		t.Run(name, func(t *testing.T) {
			result := NewApp().Evaluate(source)
			assert.Empty(t, result.Errors)
			assert.Empty(t, result.Warnings)
			// empty, not nil: viewers decode the JSON as []
			assert.NotNil(t, result.Meshes)
			assert.NotNil(t, result.Errors)
			assert.NotNil(t, result.Warnings)
			assert.Empty(t, result.Meshes)
		})
	}
}

func TestE2EScriptErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{"missing paren", "(+ 1 2", ""},
		{"broken second line", "(+ 1 2)\n(defpart \"test\"", ""},
		{"unknown part in assembly", `
(defpart "shelf" (box :x 600 :y 300 :z 18))
(assembly "unit" (place (part "nonexistent") :at (vec3 0 0 0)))`, "nonexistent"},
		{"unknown part", `(part "ghost")`, "ghost"},
		{"defpart without body", `(defpart "oops")`, ""},
		{"unknown function", `(undefined-func 1 2 3)`, ""},
		{"duplicate part", `(defpart "a" (box :x 1 :y 1 :z 1)) (defpart "a" (box :x 2 :y 2 :z 2))`, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewApp().Evaluate(tt.source)
			require.NotEmpty(t, result.Errors)
			assert.NotEmpty(t, result.Errors[0].Message)
			assert.Empty(t, result.Meshes)
			if tt.wantMsg != "" {
				assert.Contains(t, result.Errors[0].Message, tt.wantMsg)
			}
		})
	}
}

func TestE2EDegeneratePrimitives(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{"zero length", `(defpart "bad" (box :x 0 :y 100 :z 19))`, "box dimension X"},
		{"all zero", `(defpart "void" (box :x 0 :y 0 :z 0))`, "box dimension"},
		{"negative", `(defpart "negative" (box :x -100 :y 100 :z 19))`, "box dimension X"},
		{"flat cylinder", `(defpart "disk" (cylinder :radius 5 :height 0))`, "cylinder"},
		{"two point profile", `(defpart "line" (extrude :profile (list (vec3 0 0 0) (vec3 1 0 0))))`, "profile has 2 points"},
		{"zero direction", `(defpart "flat" (extrude :profile (list (vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0)) :direction (vec3 0 0 0)))`, "direction is zero"},
		{"zero tolerance", `(tolerance 0) (defpart "p" (box :x 1 :y 1 :z 1))`, "tolerance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewApp().Evaluate(tt.source)
			require.NotEmpty(t, result.Errors, "got %d meshes", len(result.Meshes))
			assert.Contains(t, result.Errors[0].Message, tt.wantMsg)
			assert.Empty(t, result.Meshes)
		})
	}
}

func TestE2EExtrusionParallelToProfile(t *testing.T) {
	// the direction lies in the profile plane, so nothing can be swept
	result := NewApp().Evaluate(`(defpart "sheet" (extrude :profile (list (vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0)) :direction (vec3 1 0 0)))`)
	require.NotEmpty(t, result.Errors)
	assert.True(t, strings.HasPrefix(result.Errors[0].Message, "tessellation failed"), result.Errors[0].Message)
}

func TestE2EOrphanWarning(t *testing.T) {
	// "p" is placed by the assembly, so only the assembly is a root
	result := evaluateClean(t, `(defpart "p" (box :x 1 :y 1 :z 1)) (assembly "a" (place (part "p")))`)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, []string{"p"}, partNames(result))
}

func TestE2EReevaluation(t *testing.T) {
	app := NewApp()
	sources := []string{
		`(defpart "ok" (box :x 100 :y 50 :z 10))`,
		`(defpart "broken"`,
		``,
		`(part "missing")`,
		`(defpart "also-ok" (cylinder :radius 20 :height 5))`,
		`(+ 1 2)`,
		`(undefined-func 1 2 3)`,
		`(defpart "last" (box :x 400 :y 200 :z 18))`,
	}
	wantMeshes := []int{1, 0, 0, 0, 1, 0, 0, 1}
	for i, source := range sources {
		result := app.Evaluate(source)
		assert.Len(t, result.Meshes, wantMeshes[i], "source %q", source)
	}
}

func TestE2ELargeDimensions(t *testing.T) {
	for _, source := range []string{
		`(defpart "huge" (box :x 10000 :y 10000 :z 19))`,
		`(defpart "huge" (box :x 100000 :y 50000 :z 100))`,
	} {
		result := evaluateClean(t, source)
		require.Len(t, result.Meshes, 1)
		m := result.Meshes[0]
		assert.Equal(t, "huge", m.PartName)
		assert.NotEmpty(t, m.Vertices)
		assert.Len(t, m.Normals, len(m.Vertices))
		assert.NotEmpty(t, m.Indices)
	}
}

func TestE2EAssemblies(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{"two assemblies", `
(defpart "shelf-a" (box :x 600 :y 300 :z 18))
(defpart "shelf-b" (box :x 400 :y 200 :z 18))
(assembly "unit-a" (place (part "shelf-a") :at (vec3 0 0 0)))
(assembly "unit-b" (place (part "shelf-b") :at (vec3 700 0 0)))`,
			[]string{"shelf-a", "shelf-b"}},
		{"shared parts", `
(defpart "panel" (box :x 300 :y 200 :z 18))
(defpart "rail" (box :x 300 :y 50 :z 18))
(assembly "frame-a"
  (place (part "panel") :at (vec3 0 0 0))
  (place (part "rail")  :at (vec3 0 200 0)))
(assembly "frame-b"
  (place (part "panel") :at (vec3 500 0 0))
  (place (part "rail")  :at (vec3 500 200 0)))`,
			[]string{"panel", "rail", "panel", "rail"}},
		{"standalone parts", `
(defpart "top" (box :x 600 :y 300 :z 18))
(defpart "bottom" (box :x 600 :y 300 :z 18))`,
			[]string{"top", "bottom"}},
		{"empty assembly", `(assembly "empty-asm")`, []string{}},
		{"computed dimensions", `
(def base-length 400)
(def margin 19)
(def inner-length (- base-length (* 2 margin)))
(def half (/ inner-length 2))
(defpart "inner-panel" (box :x inner-length :y half :z margin))`,
			[]string{"inner-panel"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := evaluateClean(t, tt.source)
			assert.Equal(t, tt.want, partNames(result))
			for _, m := range result.Meshes {
				assert.NotEmpty(t, m.Vertices, m.PartName)
				assert.NotEmpty(t, m.Color, m.PartName)
			}
		})
	}
}

func TestE2EToleranceOverride(t *testing.T) {
	source := `(tolerance 0.01) (defpart "rod" (cylinder :radius 10 :height 10))`
	fine := NewApp()
	coarse := NewApp()
	coarse.Tolerance = 1
	f, c := fine.Evaluate(source), coarse.Evaluate(source)
	require.Empty(t, f.Errors)
	require.Empty(t, c.Errors)
	require.Len(t, f.Meshes, 1)
	require.Len(t, c.Meshes, 1)
	assert.Greater(t, len(f.Meshes[0].Indices), len(c.Meshes[0].Indices))
}

func TestE2EColorPaletteWrapping(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`(defpart "p" (box :x 100 :y 50 :z 10))` + "\n(assembly \"many\"\n")
	for i := 0; i < len(colorPalette)+1; i++ {
		fmt.Fprintf(&sb, "  (place (part \"p\") :at (vec3 %d 0 0))\n", 110*i)
	}
	sb.WriteString(")")

	result := evaluateClean(t, sb.String())
	require.Len(t, result.Meshes, len(colorPalette)+1)
	for i, m := range result.Meshes {
		assert.Equal(t, colorPalette[i%len(colorPalette)], m.Color, "mesh %d", i)
	}
	assert.Equal(t, result.Meshes[0].Color, result.Meshes[len(colorPalette)].Color)
}
