package meshing

import (
	"errors"
	"fmt"
	"math"
	"sync"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/brepcad/pkg/algo"
	"github.com/chazu/brepcad/pkg/base"
	"github.com/chazu/brepcad/pkg/topology"
)

// Curve is the edge geometry Tessellate needs.
type Curve[C any] interface {
	topology.Curve[C]
	ParameterDivision(tol float64) ([]float64, []v3.Vec)
}

// Surface is the face geometry Tessellate needs.
type Surface interface {
	Subs(u, v float64) v3.Vec
	Uder(u, v float64) v3.Vec
	Vder(u, v float64) v3.Vec
	ParameterRange() ([2]float64, [2]float64)
	ParameterDivision(tol float64) ([]float64, []float64)
	SearchParameter(point v3.Vec, hint *[2]float64, trials int) (float64, float64, bool)
	SearchNearestParameter(point v3.Vec, hint *[2]float64, trials int) (float64, float64, bool)
}

var errLift = errors.New("meshing: boundary point is not on the surface")

// snapTolerance is the distance, relative to the parameter range, within
// which lifted boundary parameters are moved onto an iso-line.
const snapTolerance = 1e-6

// Tessellate triangulates every face of shell within opts.Tolerance. A face
// that cannot be triangulated is left out and counted in DroppedFaces.
func Tessellate[C Curve[C], S Surface](shell *topology.Shell[v3.Vec, C, S], opts Options) (*PolygonMesh, error) {
	if !(opts.Tolerance > 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidTolerance, opts.Tolerance)
	}
	polylines := edgePolylines(shell, opts.Tolerance)
	faces := shell.Faces()
	results := make([]*PolygonMesh, len(faces))
	run := func(i int) {
		m, err := tessellateFace(faces[i], polylines, opts.Tolerance)
		if err != nil {
			tracer().Errorf("face %d dropped: %v", i, err)
			m = &PolygonMesh{DroppedFaces: 1}
		}
		results[i] = m
	}

	workers := opts.workers(len(faces))
	if workers == 1 {
		for i := range faces {
			run(i)
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					run(i)
				}
			}()
		}
		for i := range faces {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	mesh := &PolygonMesh{}
	for _, m := range results {
		mesh.Append(m)
	}
	tracer().Infof("tessellated %d faces into %d triangles on %d workers", len(faces), mesh.TriangleCount(), workers)
	return mesh, nil
}

// TessellateSolid tessellates every boundary shell of s into one mesh.
func TessellateSolid[C Curve[C], S Surface](s *topology.Solid[v3.Vec, C, S], opts Options) (*PolygonMesh, error) {
	mesh := &PolygonMesh{}
	for _, shell := range s.Boundaries() {
		m, err := Tessellate(shell, opts)
		if err != nil {
			return nil, err
		}
		mesh.Append(m)
	}
	return mesh, nil
}

// edgePolylines samples every edge once, in the direction of its curve.
// The end points are the vertex points exactly.
func edgePolylines[C Curve[C], S Surface](shell *topology.Shell[v3.Vec, C, S], tol float64) map[topology.EdgeID[C]][]v3.Vec {
	res := make(map[topology.EdgeID[C]][]v3.Vec)
	for _, e := range shell.UniqueEdges() {
		_, pts := e.Curve().ParameterDivision(tol)
		pts = append([]v3.Vec(nil), pts...)
		pts[0] = e.AbsoluteFront().Point()
		pts[len(pts)-1] = e.AbsoluteBack().Point()
		res[e.ID()] = pts
	}
	return res
}

// faceBuilder collects the vertices of one face in parameter space.
type faceBuilder[S Surface] struct {
	surface S
	uv      []v2.Vec
	pos     []v3.Vec
}

// lift appends p with its surface parameters, searching from hint first.
func (fb *faceBuilder[S]) lift(p v3.Vec, hint *[2]float64) (int, error) {
	u, v, ok := fb.surface.SearchParameter(p, hint, algo.SearchTrials)
	if !ok && hint != nil {
		u, v, ok = fb.surface.SearchParameter(p, nil, algo.SearchTrials)
	}
	if !ok {
		u, v, ok = fb.surface.SearchNearestParameter(p, nil, algo.SearchTrials)
		if !ok {
			return 0, fmt.Errorf("%w: %v", errLift, p)
		}
		tracer().Debugf("lift: %v taken as nearest surface point", p)
	}
	fb.uv = append(fb.uv, v2.Vec{X: u, Y: v})
	fb.pos = append(fb.pos, p)
	return len(fb.uv) - 1, nil
}

// snap removes the inversion noise from the boundary parameters. Values
// next to a bound of the parameter range are set to the bound, and an edge
// whose points share a u or v up to the noise gets that value exactly, so
// points lifted from one iso-line are collinear in parameter space. Edges
// shorter than the noise in both directions are left alone.
func (fb *faceBuilder[S]) snap(runs [][]int) {
	ur, vr := fb.surface.ParameterRange()
	eu, ev := snapTolerance*(ur[1]-ur[0]), snapTolerance*(vr[1]-vr[0])
	for i, p := range fb.uv {
		fb.uv[i] = v2.Vec{X: snapToBound(p.X, ur, eu), Y: snapToBound(p.Y, vr, ev)}
	}
	for _, run := range runs {
		su := spread(fb.uv, run, func(p v2.Vec) float64 { return p.X })
		sv := spread(fb.uv, run, func(p v2.Vec) float64 { return p.Y })
		switch {
		case su <= eu && sv > ev:
			u := fb.uv[run[0]].X
			for _, k := range run {
				fb.uv[k].X = u
			}
		case sv <= ev && su > eu:
			v := fb.uv[run[0]].Y
			for _, k := range run {
				fb.uv[k].Y = v
			}
		}
	}
}

func snapToBound(x float64, r [2]float64, eps float64) float64 {
	switch {
	case math.Abs(x-r[0]) <= eps:
		return r[0]
	case math.Abs(x-r[1]) <= eps:
		return r[1]
	}
	return x
}

// spread is the extent of the coordinate of the points of run.
func spread(uv []v2.Vec, run []int, coord func(v2.Vec) float64) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, k := range run {
		x := coord(uv[k])
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	return hi - lo
}

func tessellateFace[C Curve[C], S Surface](face topology.Face[v3.Vec, C, S], polylines map[topology.EdgeID[C]][]v3.Vec, tol float64) (*PolygonMesh, error) {
	fb := &faceBuilder[S]{surface: face.Surface()}
	var loops, runs [][]int
	for _, w := range face.AbsoluteBoundaries() {
		var loop, starts []int
		var hint *[2]float64
		for _, e := range w {
			starts = append(starts, len(loop))
			poly := polylines[e.ID()]
			for k := 0; k+1 < len(poly); k++ {
				p := poly[k]
				if !e.Orientation() {
					p = poly[len(poly)-1-k]
				}
				idx, err := fb.lift(p, hint)
				if err != nil {
					return nil, err
				}
				loop = append(loop, idx)
				h := [2]float64{fb.uv[idx].X, fb.uv[idx].Y}
				hint = &h
			}
		}
		if len(loop) < 3 {
			return nil, fmt.Errorf("meshing: boundary with %d points", len(loop))
		}
		for i, start := range starts {
			end := len(loop)
			if i+1 < len(starts) {
				end = starts[i+1]
			}
			run := append(append([]int(nil), loop[start:end]...), loop[end%len(loop)])
			runs = append(runs, run)
		}
		loops = append(loops, loop)
	}
	if len(loops) == 0 {
		return &PolygonMesh{}, nil
	}
	fb.snap(runs)

	// normalize to a counterclockwise outer loop with clockwise holes
	if signedArea(fb.uv, loops[0]) < 0 {
		loops[0] = reversed(loops[0])
	}
	for i := 1; i < len(loops); i++ {
		if signedArea(fb.uv, loops[i]) > 0 {
			loops[i] = reversed(loops[i])
		}
	}

	boundary := len(fb.uv)
	t := newTriangulation(fb.uv, loops)
	us, vs := fb.surface.ParameterDivision(tol)
	minDist := 0.25 * math.Min(minSpacing(us), minSpacing(vs))
	for _, u := range us {
		for _, v := range vs {
			p := v2.Vec{X: u, Y: v}
			if !insideLoops(fb.uv, loops, p) || distanceToLoops(fb.uv, loops, p) <= minDist {
				continue
			}
			fb.uv = append(fb.uv, p)
			fb.pos = append(fb.pos, fb.surface.Subs(u, v))
			t.pts = fb.uv
			if !t.insert(len(fb.uv) - 1) {
				fb.uv, fb.pos = fb.uv[:len(fb.uv)-1], fb.pos[:len(fb.pos)-1]
				t.pts = fb.uv
			}
		}
	}
	t.flip()
	tracer().Debugf("face: %d boundary and %d interior points, %d triangles", boundary, len(fb.uv)-boundary, len(t.tris))

	mesh := &PolygonMesh{Positions: fb.pos, Normals: make([]v3.Vec, len(fb.pos)), Indices: t.tris}
	for i, uv := range fb.uv {
		mesh.Normals[i] = fb.surface.Uder(uv.X, uv.Y).Cross(fb.surface.Vder(uv.X, uv.Y))
	}
	fixDegenerateNormals(mesh)
	if !face.Orientation() {
		for i, tri := range mesh.Indices {
			mesh.Indices[i] = [3]int{tri[0], tri[2], tri[1]}
		}
		for i, n := range mesh.Normals {
			mesh.Normals[i] = n.MulScalar(-1)
		}
	}
	return mesh, nil
}

// fixDegenerateNormals normalizes the normals and replaces the ones at
// singular surface points by the mean of the adjacent triangle normals.
func fixDegenerateNormals(m *PolygonMesh) {
	var sums []v3.Vec
	for i, n := range m.Normals {
		if l := n.Length(); !base.SoSmall(l) {
			m.Normals[i] = n.MulScalar(1 / l)
			continue
		}
		if sums == nil {
			sums = make([]v3.Vec, len(m.Positions))
			for _, tri := range m.Indices {
				a, b, c := m.Positions[tri[0]], m.Positions[tri[1]], m.Positions[tri[2]]
				tn := b.Sub(a).Cross(c.Sub(a))
				for _, k := range tri {
					sums[k] = sums[k].Add(tn)
				}
			}
		}
		if l := sums[i].Length(); !base.SoSmall(l) {
			m.Normals[i] = sums[i].MulScalar(1 / l)
		}
	}
}

func minSpacing(xs []float64) float64 {
	res := math.Inf(1)
	for i := 1; i < len(xs); i++ {
		res = math.Min(res, xs[i]-xs[i-1])
	}
	return res
}
