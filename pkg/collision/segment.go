package collision

import (
	"math"

	"github.com/df07/go-collision-volumes/pkg/core"
)

// ClosestPointOnSegment returns the point of segment ab closest to p and its parameter in [0, 1]
func ClosestPointOnSegment(p, a, b core.Vec3) (core.Vec3, float64) {
	ab := b.Sub(a)
	lenSq := ab.LenSqr()
	if lenSq < core.SizeEpsilon*core.SizeEpsilon {
		return a, 0
	}
	t := core.Clamp(p.Sub(a).Dot(ab)/lenSq, 0, 1)
	return a.Add(ab.Mul(t)), t
}

// SegmentPair holds the closest points between two segments
type SegmentPair struct {
	S, T       float64   // Parameters along the first and second segment
	C1, C2     core.Vec3 // Closest points on the first and second segment
	DistanceSq float64
}

// ClosestPointsSegmentSegment computes the closest points between segments p1q1 and p2q2.
// Parallel and degenerate (point-like) segments are handled.
func ClosestPointsSegmentSegment(p1, q1, p2, q2 core.Vec3) SegmentPair {
	const epsilon = 1e-12

	d1 := q1.Sub(p1) // Direction of the first segment
	d2 := q2.Sub(p2) // Direction of the second segment
	r := p1.Sub(p2)
	a := d1.LenSqr()
	e := d2.LenSqr()
	f := d2.Dot(r)

	var s, t float64

	switch {
	case a <= epsilon && e <= epsilon:
		// Both segments degenerate into points
		s, t = 0, 0
	case a <= epsilon:
		// First segment degenerates into a point
		s = 0
		t = core.Clamp(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e <= epsilon {
			// Second segment degenerates into a point
			t = 0
			s = core.Clamp(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b

			// Parallel segments pick an arbitrary s and let t fix it up
			if denom > epsilon {
				s = core.Clamp((b*f-c*e)/denom, 0, 1)
			} else {
				s = 0
			}

			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = core.Clamp(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = core.Clamp((b-c)/a, 0, 1)
			}
		}
	}

	c1 := p1.Add(d1.Mul(s))
	c2 := p2.Add(d2.Mul(t))
	return SegmentPair{S: s, T: t, C1: c1, C2: c2, DistanceSq: c1.Sub(c2).LenSqr()}
}

// SegmentTriangleDistanceSq returns the squared distance between segment pq and triangle abc,
// along with the closest points on each.
func SegmentTriangleDistanceSq(p, q, a, b, c core.Vec3) (float64, core.Vec3, core.Vec3) {
	// A segment crossing the triangle touches it
	dir := q.Sub(p)
	if hit, ok := RayTriangle(core.NewRay(p, dir), a, b, c, 1, true); ok {
		return 0, hit.Point, hit.Point
	}

	bestSq := math.Inf(1)
	var bestSeg, bestTri core.Vec3

	consider := func(onSegment, onTriangle core.Vec3) {
		if d := onSegment.Sub(onTriangle).LenSqr(); d < bestSq {
			bestSq, bestSeg, bestTri = d, onSegment, onTriangle
		}
	}

	// Segment endpoints against the triangle face
	consider(p, ClosestPointOnTriangle(p, a, b, c))
	consider(q, ClosestPointOnTriangle(q, a, b, c))

	// Segment against each triangle edge
	for _, edge := range [3][2]core.Vec3{{a, b}, {b, c}, {c, a}} {
		pair := ClosestPointsSegmentSegment(p, q, edge[0], edge[1])
		consider(pair.C1, pair.C2)
	}

	return bestSq, bestSeg, bestTri
}
