package collision

import (
	"math"

	"github.com/df07/go-collision-volumes/pkg/core"
)

const (
	// gjkMaxIterations bounds the refinement loop; polytopes converge in a handful of steps
	gjkMaxIterations = 64
	// gjkRelativeTolerance stops refinement once |v|² - v·w falls below this fraction of |v|²
	gjkRelativeTolerance = 1e-12
	// gjkOverlapTolerance is the squared distance treated as touching
	gjkOverlapTolerance = 1e-20
)

// Proximity is the result of a GJK distance query
type Proximity struct {
	Distance float64
	PointA   core.Vec3 // Closest point on the first set
	PointB   core.Vec3 // Closest point on the second set
	Overlap  bool      // The sets intersect; closest points are unspecified
}

// simplexVertex is one support point of the Minkowski difference A - B, with its sources
type simplexVertex struct {
	w, a, b core.Vec3
}

// simplex holds 1-4 vertices and their barycentric weights for the closest point
type simplex struct {
	verts   [4]simplexVertex
	weights [4]float64
	count   int
}

// minkowskiSupport finds the vertex of A - B furthest along dir
func minkowskiSupport(a, b Convex, dir core.Vec3) simplexVertex {
	sa := a.Support(dir)
	sb := b.Support(dir.Mul(-1))
	return simplexVertex{w: sa.Sub(sb), a: sa, b: sb}
}

// Distance runs GJK to find the closest points between two convex sets.
// hint seeds the first search direction (for example the difference of the centers).
func Distance(a, b Convex, hint core.Vec3) Proximity {
	if core.NearZero(hint) {
		hint = core.NewVec3(1, 0, 0)
	}

	s := simplex{count: 1}
	s.verts[0] = minkowskiSupport(a, b, hint)
	s.weights[0] = 1
	v := s.verts[0].w

	for i := 0; i < gjkMaxIterations; i++ {
		vv := v.LenSqr()
		if vv <= gjkOverlapTolerance {
			return Proximity{Overlap: true}
		}

		vert := minkowskiSupport(a, b, v.Mul(-1))

		// No further progress toward the origin is possible
		if vv-v.Dot(vert.w) <= gjkRelativeTolerance*vv {
			break
		}
		if s.contains(vert.w) {
			break
		}

		previous := s
		s.verts[s.count] = vert
		s.count++

		next, inside := s.reduce()
		if inside {
			return Proximity{Overlap: true}
		}
		if next.LenSqr() >= vv {
			// Rounding stalled the descent; keep the previous answer
			s = previous
			break
		}
		v = next
	}

	pa, pb := s.closestPoints()
	return Proximity{Distance: pa.Sub(pb).Len(), PointA: pa, PointB: pb}
}

// Intersects reports whether two convex sets share a point, within BoundaryEpsilon
func Intersects(a, b Convex, hint core.Vec3) bool {
	prox := Distance(a, b, hint)
	return prox.Overlap || prox.Distance <= core.BoundaryEpsilon
}

// ClosestPoint returns the point of the convex set nearest to p, or p itself when inside
func ClosestPoint(c Convex, p core.Vec3, hint core.Vec3) core.Vec3 {
	prox := Distance(c, Point(p), hint)
	if prox.Overlap {
		return p
	}
	return prox.PointA
}

// contains reports whether w duplicates a vertex already in the simplex
func (s *simplex) contains(w core.Vec3) bool {
	for i := 0; i < s.count; i++ {
		if s.verts[i].w.Sub(w).LenSqr() < gjkOverlapTolerance {
			return true
		}
	}
	return false
}

// closestPoints maps the barycentric weights back onto the source shapes
func (s *simplex) closestPoints() (core.Vec3, core.Vec3) {
	var pa, pb core.Vec3
	for i := 0; i < s.count; i++ {
		pa = pa.Add(s.verts[i].a.Mul(s.weights[i]))
		pb = pb.Add(s.verts[i].b.Mul(s.weights[i]))
	}
	return pa, pb
}

// keep shrinks the simplex to the listed vertices with the given weights
func (s *simplex) keep(indices []int, weights []float64) core.Vec3 {
	var kept [4]simplexVertex
	var v core.Vec3
	for i, idx := range indices {
		kept[i] = s.verts[idx]
		s.weights[i] = weights[i]
		v = v.Add(kept[i].w.Mul(weights[i]))
	}
	s.verts = kept
	s.count = len(indices)
	return v
}

// reduce finds the point of the simplex closest to the origin, drops the vertices that
// do not contribute to it, and reports whether the origin lies inside a tetrahedron.
func (s *simplex) reduce() (core.Vec3, bool) {
	switch s.count {
	case 1:
		return s.keep([]int{0}, []float64{1}), false
	case 2:
		return s.reduceSegment(0, 1), false
	case 3:
		return s.reduceTriangle(0, 1, 2), false
	default:
		return s.reduceTetrahedron()
	}
}

func (s *simplex) reduceSegment(i, j int) core.Vec3 {
	_, t := ClosestPointOnSegment(core.Vec3{}, s.verts[i].w, s.verts[j].w)
	switch {
	case t <= 0:
		return s.keep([]int{i}, []float64{1})
	case t >= 1:
		return s.keep([]int{j}, []float64{1})
	}
	return s.keep([]int{i, j}, []float64{1 - t, t})
}

func (s *simplex) reduceTriangle(i, j, k int) core.Vec3 {
	u, v, w := TriangleBarycentric(core.Vec3{}, s.verts[i].w, s.verts[j].w, s.verts[k].w)

	indices := make([]int, 0, 3)
	weights := make([]float64, 0, 3)
	for n, weight := range [3]float64{u, v, w} {
		if weight > 0 {
			indices = append(indices, [3]int{i, j, k}[n])
			weights = append(weights, weight)
		}
	}
	return s.keep(indices, weights)
}

// originOutsideFace reports whether the origin and the opposite vertex d lie on
// different sides of face abc. Flat tetrahedra treat every face as a candidate.
func originOutsideFace(a, b, c, d core.Vec3) bool {
	n := b.Sub(a).Cross(c.Sub(a))
	signP := a.Mul(-1).Dot(n)
	signD := d.Sub(a).Dot(n)
	if math.Abs(signD) < core.SizeEpsilon {
		return true
	}
	return signP*signD < 0
}

func (s *simplex) reduceTetrahedron() (core.Vec3, bool) {
	faces := [4][4]int{
		{0, 1, 2, 3},
		{0, 2, 3, 1},
		{0, 3, 1, 2},
		{1, 3, 2, 0},
	}

	best := *s
	bestSq := math.Inf(1)
	var bestV core.Vec3
	outside := false

	for _, f := range faces {
		a, b, c, d := s.verts[f[0]].w, s.verts[f[1]].w, s.verts[f[2]].w, s.verts[f[3]].w
		if !originOutsideFace(a, b, c, d) {
			continue
		}
		outside = true

		candidate := *s
		v := candidate.reduceTriangle(f[0], f[1], f[2])
		if distSq := v.LenSqr(); distSq < bestSq {
			best, bestSq, bestV = candidate, distSq, v
		}
	}

	if !outside {
		return core.Vec3{}, true
	}

	*s = best
	return bestV, false
}
