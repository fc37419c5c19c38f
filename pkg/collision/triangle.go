package collision

import (
	"github.com/df07/go-collision-volumes/pkg/core"
)

// ClosestPointOnTriangle returns the point of triangle abc closest to p
func ClosestPointOnTriangle(p, a, b, c core.Vec3) core.Vec3 {
	u, v, w := TriangleBarycentric(p, a, b, c)
	return a.Mul(u).Add(b.Mul(v)).Add(c.Mul(w))
}

// TriangleBarycentric returns the barycentric weights (u, v, w) of the point of
// triangle abc closest to p, by Voronoi region classification.
func TriangleBarycentric(p, a, b, c core.Vec3) (float64, float64, float64) {
	ab := b.Sub(a)
	ac := c.Sub(a)

	// Vertex region outside A
	ap := p.Sub(a)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return 1, 0, 0
	}

	// Vertex region outside B
	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return 0, 1, 0
	}

	// Edge region of AB
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return 1 - v, v, 0
	}

	// Vertex region outside C
	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return 0, 0, 1
	}

	// Edge region of AC
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return 1 - w, 0, w
	}

	// Edge region of BC
	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return 0, 1 - w, w
	}

	sum := va + vb + vc
	if sum <= core.SizeEpsilon*core.SizeEpsilon {
		// Degenerate (collinear) triangle: fall back to the nearest edge
		return degenerateBarycentric(p, a, b, c)
	}

	// Inside the face region
	denom := 1.0 / sum
	v := vb * denom
	w := vc * denom
	return 1 - v - w, v, w
}

// degenerateBarycentric handles zero-area triangles by testing the three edges
func degenerateBarycentric(p, a, b, c core.Vec3) (float64, float64, float64) {
	pab, tab := ClosestPointOnSegment(p, a, b)
	pbc, tbc := ClosestPointOnSegment(p, b, c)
	pca, tca := ClosestPointOnSegment(p, c, a)

	dab := p.Sub(pab).LenSqr()
	dbc := p.Sub(pbc).LenSqr()
	dca := p.Sub(pca).LenSqr()

	switch {
	case dab <= dbc && dab <= dca:
		return 1 - tab, tab, 0
	case dbc <= dca:
		return 0, 1 - tbc, tbc
	default:
		return tca, 0, 1 - tca
	}
}

// RayTriangle intersects a ray with triangle abc using the Möller-Trumbore algorithm.
// One-sided tests only accept rays hitting the counter-clockwise front face.
func RayTriangle(ray core.Ray, a, b, c core.Vec3, tMax float64, twoSided bool) (RayHit, bool) {
	const epsilon = 1e-12

	// Calculate two edge vectors
	edge1 := b.Sub(a)
	edge2 := c.Sub(a)

	// Calculate determinant
	h := ray.Direction.Cross(edge2)
	det := edge1.Dot(h)

	// If determinant is near zero, ray lies in plane of triangle
	if det > -epsilon && det < epsilon {
		return RayHit{}, false
	}
	if !twoSided && det < 0 {
		return RayHit{}, false
	}

	f := 1.0 / det
	s := ray.Origin.Sub(a)
	u := f * s.Dot(h)

	// Check if intersection is outside triangle
	if u < 0.0 || u > 1.0 {
		return RayHit{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)

	if v < 0.0 || u+v > 1.0 {
		return RayHit{}, false
	}

	t := f * edge2.Dot(q)
	if t < 0 || t > tMax {
		return RayHit{}, false
	}

	normal := edge1.Cross(edge2).Normalize()
	if normal.Dot(ray.Direction) > 0 {
		normal = normal.Mul(-1)
	}

	return RayHit{T: t, Point: ray.At(t), Normal: normal}, true
}
