package meshing

import (
	"math"
	"sort"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// slimness is the smallest doubled area, relative to the squared edge
// lengths, of a triangle the triangulation emits.
const slimness = 1e-10

type edgeKey [2]int

func key(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// orient is twice the signed area of abc, positive for counterclockwise.
func orient(a, b, c v2.Vec) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// inCircle is positive when d lies inside the circumcircle of the
// counterclockwise triangle abc.
func inCircle(a, b, c, d v2.Vec) float64 {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y
	ad := adx*adx + ady*ady
	bd := bdx*bdx + bdy*bdy
	cd := cdx*cdx + cdy*cdy
	return adx*(bdy*cd-bd*cdy) - ady*(bdx*cd-bd*cdx) + ad*(bdx*cdy-bdy*cdx)
}

// thin reports whether abc is clockwise or too slim to be emitted. Points
// that are collinear up to rounding noise give thin triangles.
func thin(a, b, c v2.Vec) bool {
	return orient(a, b, c) <= slimness*(distance2(a, b)+distance2(b, c)+distance2(c, a))
}

func inTriangle(p, a, b, c v2.Vec) bool {
	return orient(a, b, p) >= 0 && orient(b, c, p) >= 0 && orient(c, a, p) >= 0
}

func signedArea(pts []v2.Vec, loop []int) float64 {
	var area float64
	for i, a := range loop {
		b := loop[(i+1)%len(loop)]
		area += pts[a].X*pts[b].Y - pts[b].X*pts[a].Y
	}
	return area / 2
}

func reversed(loop []int) []int {
	res := make([]int, len(loop))
	for i, x := range loop {
		res[len(loop)-1-i] = x
	}
	return res
}

// triangulation is a triangulated polygon in parameter space. Fixed edges
// are boundary segments that are never flipped.
type triangulation struct {
	pts   []v2.Vec
	tris  [][3]int
	fixed map[edgeKey]struct{}
}

// newTriangulation ear clips the polygon of loops over pts. loops[0] must
// be counterclockwise, the holes clockwise.
func newTriangulation(pts []v2.Vec, loops [][]int) *triangulation {
	t := &triangulation{pts: pts, fixed: make(map[edgeKey]struct{})}
	for _, loop := range loops {
		for i, a := range loop {
			t.fixed[key(a, loop[(i+1)%len(loop)])] = struct{}{}
		}
	}
	t.tris = earClip(pts, bridgeHoles(pts, loops))
	return t
}

func earClip(pts []v2.Vec, polygon []int) [][3]int {
	poly := append([]int(nil), polygon...)
	var tris [][3]int
	for len(poly) > 3 {
		n := len(poly)
		ear := -1
		for i := 0; i < n && ear < 0; i++ {
			if isEar(pts, poly, poly[(i+n-1)%n], poly[i], poly[(i+1)%n]) {
				ear = i
			}
		}
		if ear < 0 {
			tracer().Debugf("ear clipping: no ear among %d vertices", n)
			ear = flattest(pts, poly)
		}
		a, b, c := poly[(ear+n-1)%n], poly[ear], poly[(ear+1)%n]
		if !thin(pts[a], pts[b], pts[c]) {
			tris = append(tris, [3]int{a, b, c})
		}
		poly = append(poly[:ear], poly[ear+1:]...)
	}
	if len(poly) == 3 && !thin(pts[poly[0]], pts[poly[1]], pts[poly[2]]) {
		tris = append(tris, [3]int{poly[0], poly[1], poly[2]})
	}
	return tris
}

func isEar(pts []v2.Vec, poly []int, a, b, c int) bool {
	pa, pb, pc := pts[a], pts[b], pts[c]
	if thin(pa, pb, pc) {
		return false
	}
	for _, j := range poly {
		if j == a || j == b || j == c {
			continue
		}
		p := pts[j]
		if p == pa || p == pb || p == pc {
			continue
		}
		if inTriangle(p, pa, pb, pc) {
			return false
		}
	}
	return true
}

// flattest returns the vertex whose corner is closest to a straight angle.
// It is the fallback when no ear is found on a degenerate polygon.
func flattest(pts []v2.Vec, poly []int) int {
	n := len(poly)
	best, bestArea := 0, math.Inf(1)
	for i := range poly {
		area := math.Abs(orient(pts[poly[(i+n-1)%n]], pts[poly[i]], pts[poly[(i+1)%n]]))
		if area < bestArea {
			best, bestArea = i, area
		}
	}
	return best
}

// bridgeHoles joins every hole to the outer loop by a pair of coincident
// cut edges, returning a single polygon. Holes are bridged in order of
// decreasing maximal u, each to the nearest visible vertex.
func bridgeHoles(pts []v2.Vec, loops [][]int) []int {
	outer := append([]int(nil), loops[0]...)
	holes := append([][]int(nil), loops[1:]...)
	maxX := func(loop []int) (int, float64) {
		best := 0
		for i, x := range loop {
			if pts[x].X > pts[loop[best]].X {
				best = i
			}
		}
		return best, pts[loop[best]].X
	}
	sort.SliceStable(holes, func(i, j int) bool {
		_, xi := maxX(holes[i])
		_, xj := maxX(holes[j])
		return xi > xj
	})
	for hi, hole := range holes {
		if len(hole) == 0 {
			continue
		}
		mi, _ := maxX(hole)
		m := hole[mi]
		cand := make([]int, len(outer))
		for i := range cand {
			cand[i] = i
		}
		dist := func(i int) float64 {
			d := pts[outer[i]].Sub(pts[m])
			return d.X*d.X + d.Y*d.Y
		}
		sort.SliceStable(cand, func(i, j int) bool { return dist(cand[i]) < dist(cand[j]) })
		chosen := -1
		for _, ci := range cand {
			if visible(pts, m, outer[ci], outer, holes[hi:]) {
				chosen = ci
				break
			}
		}
		if chosen < 0 {
			tracer().Debugf("bridging: no visible vertex, using the nearest")
			chosen = cand[0]
		}
		merged := make([]int, 0, len(outer)+len(hole)+2)
		merged = append(merged, outer[:chosen+1]...)
		for k := 0; k <= len(hole); k++ {
			merged = append(merged, hole[(mi+k)%len(hole)])
		}
		merged = append(merged, outer[chosen:]...)
		outer = merged
	}
	return outer
}

// visible reports whether the segment m v crosses no loop edge and runs
// inside the polygon.
func visible(pts []v2.Vec, m, v int, outer []int, holes [][]int) bool {
	pm, pv := pts[m], pts[v]
	if pm == pv {
		return false
	}
	loops := append([][]int{outer}, holes...)
	for _, loop := range loops {
		for i, a := range loop {
			b := loop[(i+1)%len(loop)]
			pa, pb := pts[a], pts[b]
			if pa == pm || pa == pv || pb == pm || pb == pv {
				continue
			}
			if segmentsCross(pm, pv, pa, pb) {
				return false
			}
		}
	}
	mid := v2.Vec{X: (pm.X + pv.X) / 2, Y: (pm.Y + pv.Y) / 2}
	return insideLoops(pts, loops, mid)
}

func segmentsCross(a, b, c, d v2.Vec) bool {
	o1, o2 := orient(a, b, c), orient(a, b, d)
	o3, o4 := orient(c, d, a), orient(c, d, b)
	return o1*o2 < 0 && o3*o4 < 0
}

// insideLoops is the even-odd rule over all loops.
func insideLoops(pts []v2.Vec, loops [][]int, p v2.Vec) bool {
	inside := false
	for _, loop := range loops {
		for i, a := range loop {
			pa, pb := pts[a], pts[loop[(i+1)%len(loop)]]
			if (pa.Y > p.Y) != (pb.Y > p.Y) {
				x := pa.X + (p.Y-pa.Y)*(pb.X-pa.X)/(pb.Y-pa.Y)
				if p.X < x {
					inside = !inside
				}
			}
		}
	}
	return inside
}

// distanceToLoops returns the distance from p to the nearest loop segment.
func distanceToLoops(pts []v2.Vec, loops [][]int, p v2.Vec) float64 {
	best := math.Inf(1)
	for _, loop := range loops {
		for i, a := range loop {
			best = math.Min(best, segmentDistance(p, pts[a], pts[loop[(i+1)%len(loop)]]))
		}
	}
	return best
}

func segmentDistance(p, a, b v2.Vec) float64 {
	ab, ap := b.Sub(a), p.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	t := 0.0
	if l2 > 0 {
		t = math.Max(0, math.Min(1, (ap.X*ab.X+ap.Y*ab.Y)/l2))
	}
	d := ap.Sub(ab.MulScalar(t))
	return math.Hypot(d.X, d.Y)
}

// insert adds the point with index p to the triangle containing it. A point
// on an edge, or so close to it that the split would leave a thin
// triangle, splits both triangles of the edge. It reports whether a
// containing triangle was found.
func (t *triangulation) insert(p int) bool {
	pp := t.pts[p]
	for i, tri := range t.tris {
		a, b, c := t.pts[tri[0]], t.pts[tri[1]], t.pts[tri[2]]
		o := [3]float64{orient(a, b, pp), orient(b, c, pp), orient(c, a, pp)}
		eps := 1e-12 * math.Abs(orient(a, b, c))
		if o[0] < -eps || o[1] < -eps || o[2] < -eps {
			continue
		}
		corners := [3]v2.Vec{a, b, c}
		for k := 0; k < 3; k++ {
			if math.Abs(o[k]) <= eps || thin(corners[k], corners[(k+1)%3], pp) {
				if _, ok := t.fixed[key(tri[k], tri[(k+1)%3])]; ok {
					return false
				}
				t.splitEdge(i, k, p)
				return true
			}
		}
		t.tris[i] = [3]int{tri[0], tri[1], p}
		t.tris = append(t.tris, [3]int{tri[1], tri[2], p}, [3]int{tri[2], tri[0], p})
		return true
	}
	return false
}

// splitEdge splits edge k of triangle i, and the same edge of its
// neighbour, at p.
func (t *triangulation) splitEdge(i, k, p int) {
	tri := t.tris[i]
	u, w, o := tri[k], tri[(k+1)%3], tri[(k+2)%3]
	t.tris[i] = [3]int{u, p, o}
	t.tris = append(t.tris, [3]int{p, w, o})
	if _, ok := t.fixed[key(u, w)]; ok {
		delete(t.fixed, key(u, w))
		t.fixed[key(u, p)] = struct{}{}
		t.fixed[key(p, w)] = struct{}{}
	}
	for j, nb := range t.tris {
		for m := 0; m < 3; m++ {
			if nb[m] == w && nb[(m+1)%3] == u {
				o2 := nb[(m+2)%3]
				t.tris[j] = [3]int{w, p, o2}
				t.tris = append(t.tris, [3]int{p, u, o2})
				return
			}
		}
	}
}

// flip applies Lawson flips to unfixed edges until every such edge is
// locally Delaunay or the flip budget is spent. Edges are visited from a
// stack seeded in triangle order so the result is deterministic.
func (t *triangulation) flip() {
	owners := make(map[edgeKey][]int, 3*len(t.tris)/2)
	attach := func(i int) {
		tri := t.tris[i]
		for k := 0; k < 3; k++ {
			e := key(tri[k], tri[(k+1)%3])
			owners[e] = append(owners[e], i)
		}
	}
	detach := func(i int) {
		tri := t.tris[i]
		for k := 0; k < 3; k++ {
			e := key(tri[k], tri[(k+1)%3])
			list := owners[e]
			for m, j := range list {
				if j == i {
					owners[e] = append(list[:m:m], list[m+1:]...)
					break
				}
			}
		}
	}
	var stack []edgeKey
	for i, tri := range t.tris {
		attach(i)
		for k := 0; k < 3; k++ {
			stack = append(stack, key(tri[k], tri[(k+1)%3]))
		}
	}

	// Lawson flipping ends after quadratically many flips; rounding can
	// only stretch that in cycles
	budget := len(t.tris) * len(t.tris)
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := t.fixed[e]; ok || len(owners[e]) != 2 {
			continue
		}
		i, j := owners[e][0], owners[e][1]
		a, b, c, ok := directed(t.tris[i], e)
		if !ok {
			continue
		}
		d := opposite(t.tris[j], a, b)
		if d < 0 {
			i, j = j, i
			if a, b, c, ok = directed(t.tris[i], e); !ok {
				continue
			}
			if d = opposite(t.tris[j], a, b); d < 0 {
				continue
			}
		}
		pa, pb, pc, pd := t.pts[a], t.pts[b], t.pts[c], t.pts[d]
		scale := distance2(pa, pc) + distance2(pb, pc) + distance2(pd, pc)
		if inCircle(pa, pb, pc, pd) <= 1e-12*scale*scale {
			continue
		}
		if thin(pa, pd, pc) || thin(pd, pb, pc) {
			continue
		}
		if budget == 0 {
			tracer().Debugf("lawson flips: budget spent on %d triangles", len(t.tris))
			return
		}
		budget--
		detach(i)
		detach(j)
		t.tris[i] = [3]int{a, d, c}
		t.tris[j] = [3]int{d, b, c}
		attach(i)
		attach(j)
		stack = append(stack, key(a, d), key(d, b), key(b, c), key(c, a))
	}
}

// directed returns the corners of tri starting with the edge e, and the
// opposite corner.
func directed(tri [3]int, e edgeKey) (a, b, c int, ok bool) {
	for k := 0; k < 3; k++ {
		if key(tri[k], tri[(k+1)%3]) == e {
			return tri[k], tri[(k+1)%3], tri[(k+2)%3], true
		}
	}
	return 0, 0, 0, false
}

// opposite returns the vertex of tri across the directed edge b a, or -1.
func opposite(tri [3]int, a, b int) int {
	for m := 0; m < 3; m++ {
		if tri[m] == b && tri[(m+1)%3] == a {
			return tri[(m+2)%3]
		}
	}
	return -1
}

func distance2(a, b v2.Vec) float64 {
	d := a.Sub(b)
	return d.X*d.X + d.Y*d.Y
}
