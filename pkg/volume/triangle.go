package volume

import (
	"math"

	"github.com/df07/go-collision-volumes/pkg/collision"
	"github.com/df07/go-collision-volumes/pkg/core"
)

// Triangle is a single triangle with counter-clockwise corners. The edges,
// unit normal and plane distance are derived whenever the corners change.
type Triangle struct {
	corners  [3]core.Vec3
	edges    [3]core.Vec3
	normal   core.Vec3
	distance float64
}

// NewTriangle creates a triangle from counter-clockwise corners
func NewTriangle(a, b, c core.Vec3) *Triangle {
	t := &Triangle{}
	t.SetCorners(a, b, c)
	return t
}

// SetCorners replaces the corners and recomputes the edges, normal and plane distance.
// Collinear corners get an arbitrary unit normal.
func (t *Triangle) SetCorners(a, b, c core.Vec3) {
	t.setCorners(a, b, c)
	normal := t.edges[0].Cross(c.Sub(a))
	t.setNormal(core.SafeNormalize(normal, core.NewVec3(0, 1, 0)))
}

// SetCornersWithNormal replaces the corners but keeps a caller-supplied normal.
//
// Deprecated: use SetCorners; a normal that disagrees with the winding breaks
// the plane tests.
func (t *Triangle) SetCornersWithNormal(a, b, c, normal core.Vec3) {
	t.setCorners(a, b, c)
	if core.NearZero(normal) {
		normal = t.edges[0].Cross(c.Sub(a))
	}
	t.setNormal(core.SafeNormalize(normal, core.NewVec3(0, 1, 0)))
}

func (t *Triangle) setCorners(a, b, c core.Vec3) {
	t.corners = [3]core.Vec3{a, b, c}
	t.edges = [3]core.Vec3{b.Sub(a), c.Sub(b), a.Sub(c)}
}

func (t *Triangle) setNormal(n core.Vec3) {
	t.normal = n
	t.distance = n.Dot(t.corners[0])
}

// Corners returns the three corners
func (t *Triangle) Corners() [3]core.Vec3 { return t.corners }

// Edges returns b-a, c-b and a-c
func (t *Triangle) Edges() [3]core.Vec3 { return t.edges }

// Normal returns the unit plane normal
func (t *Triangle) Normal() core.Vec3 { return t.normal }

// Distance returns the plane distance normal·a
func (t *Triangle) Distance() float64 { return t.distance }

// Centroid returns the mean of the corners
func (t *Triangle) Centroid() core.Vec3 {
	return t.corners[0].Add(t.corners[1]).Add(t.corners[2]).Mul(1.0 / 3.0)
}

func (t *Triangle) polytope() collision.Polytope {
	return collision.Polytope(t.corners[:])
}

// interval projects the corners onto an axis
func (t *Triangle) interval(axis core.Vec3) (float64, float64) {
	p0 := axis.Dot(t.corners[0])
	p1 := axis.Dot(t.corners[1])
	p2 := axis.Dot(t.corners[2])
	return math.Min(p0, math.Min(p1, p2)), math.Max(p0, math.Max(p1, p2))
}

// Kind implements Volume
func (t *Triangle) Kind() Kind { return KindTriangle }

// VolumeHitsVolume implements Volume
func (t *Triangle) VolumeHitsVolume(other Volume) bool {
	return other.TriangleHitsVolume(t)
}

// VolumeMoveHitsVolume implements Volume
func (t *Triangle) VolumeMoveHitsVolume(other Volume, displacement core.Vec3) Impact {
	return other.TriangleMoveHitsVolume(t, displacement)
}

// SphereHitsVolume compares the closest point on the triangle with the radius
func (t *Triangle) SphereHitsVolume(s *Sphere) bool {
	closest := collision.ClosestPointOnTriangle(s.center, t.corners[0], t.corners[1], t.corners[2])
	r := s.radius + core.BoundaryEpsilon
	return closest.Sub(s.center).LenSqr() <= r*r
}

// BoxHitsVolume runs the separating axis test over the box axes, the triangle
// normal and the nine edge cross products.
func (t *Triangle) BoxHitsVolume(b *Box) bool {
	axes := make([]core.Vec3, 0, 13)
	axes = append(axes, b.axes[:]...)
	axes = append(axes, t.normal)
	for _, edge := range t.edges {
		for _, axis := range b.axes {
			axes = append(axes, edge.Cross(axis))
		}
	}

	for _, axis := range axes {
		if axis.LenSqr() < core.SizeEpsilon*core.SizeEpsilon {
			continue
		}
		axis = axis.Normalize()

		center := axis.Dot(b.position)
		extent := b.ProjectExtends(axis)
		lo, hi := t.interval(axis)
		if lo > center+extent+core.BoundaryEpsilon || hi < center-extent-core.BoundaryEpsilon {
			return false
		}
	}
	return true
}

// CapsuleHitsVolume compares the distance between the capsule axis and the triangle with the radius
func (t *Triangle) CapsuleHitsVolume(c *Capsule) bool {
	if c.tapered {
		return convexOverlap(c, t)
	}
	bottom, top := c.SegmentEnds()
	distSq, _, _ := collision.SegmentTriangleDistanceSq(bottom, top, t.corners[0], t.corners[1], t.corners[2])
	r := c.bottomRadius + core.BoundaryEpsilon
	return distSq <= r*r
}

// CylinderHitsVolume implements Volume
func (t *Triangle) CylinderHitsVolume(c *Cylinder) bool {
	return convexOverlap(c, t)
}

// TriangleHitsVolume runs the separating axis test over both normals and the
// nine edge cross products. Coplanar triangles also try the in-plane edge normals.
func (t *Triangle) TriangleHitsVolume(other *Triangle) bool {
	axes := make([]core.Vec3, 0, 17)
	axes = append(axes, t.normal, other.normal)
	for _, e := range t.edges {
		for _, f := range other.edges {
			axes = append(axes, e.Cross(f))
		}
	}
	if t.normal.Cross(other.normal).LenSqr() < core.Epsilon*core.Epsilon {
		for i := range t.edges {
			axes = append(axes, t.normal.Cross(t.edges[i]), other.normal.Cross(other.edges[i]))
		}
	}

	a := t.polytope()
	b := other.polytope()
	for _, axis := range axes {
		if axis.LenSqr() < core.SizeEpsilon*core.SizeEpsilon {
			continue
		}
		if collision.Separation(a, b, axis.Normalize()) > core.BoundaryEpsilon {
			return false
		}
	}
	return true
}

// FrustumHitsVolume implements Volume
func (t *Triangle) FrustumHitsVolume(f *Frustum) bool { return f.TriangleHitsVolume(t) }

// Swept pairs advance conservatively on GJK distance
func (t *Triangle) SphereMoveHitsVolume(s *Sphere, d core.Vec3) Impact         { return sweep(s, t, d) }
func (t *Triangle) BoxMoveHitsVolume(b *Box, d core.Vec3) Impact               { return sweep(b, t, d) }
func (t *Triangle) CapsuleMoveHitsVolume(c *Capsule, d core.Vec3) Impact       { return sweep(c, t, d) }
func (t *Triangle) CylinderMoveHitsVolume(c *Cylinder, d core.Vec3) Impact     { return sweep(c, t, d) }
func (t *Triangle) TriangleMoveHitsVolume(other *Triangle, d core.Vec3) Impact { return sweep(other, t, d) }

// Sweeps owned by the other shape run mirrored, which negates the normal
func (t *Triangle) FrustumMoveHitsVolume(f *Frustum, d core.Vec3) Impact { return mirrorMove(t, f, d) }

// Points and rays are cast against the shape
func (t *Triangle) PointMoveHitsVolume(point, d core.Vec3) Impact             { return pointSweep(t, point, d) }
func (t *Triangle) RayHitsVolume(origin, direction core.Vec3) (float64, bool) { return rayDistance(t, origin, direction) }

// EnclosingSphere is centered on the centroid and reaches the furthest corner
func (t *Triangle) EnclosingSphere() *Sphere {
	center := t.Centroid()
	radius := 0.0
	for _, c := range t.corners {
		radius = math.Max(radius, c.Sub(center).Len())
	}
	return NewSphere(center, radius)
}

// EnclosingBox implements Volume
func (t *Triangle) EnclosingBox() *Box {
	return boxFromBounds(core.NewAABBFromPoints(t.corners[:]...))
}

// IsPointInside treats the triangle as a slab of thickness core.Epsilon
func (t *Triangle) IsPointInside(point core.Vec3) bool {
	closest := collision.ClosestPointOnTriangle(point, t.corners[0], t.corners[1], t.corners[2])
	return closest.Sub(point).LenSqr() <= core.Epsilon*core.Epsilon
}

// ClosestPointTo implements Volume
func (t *Triangle) ClosestPointTo(point core.Vec3) core.Vec3 {
	if t.IsPointInside(point) {
		return point
	}
	return collision.ClosestPointOnTriangle(point, t.corners[0], t.corners[1], t.corners[2])
}

// NormalAtPoint returns the plane normal facing the side the point is on
func (t *Triangle) NormalAtPoint(point core.Vec3) core.Vec3 {
	if t.normal.Dot(point)-t.distance < 0 {
		return t.normal.Mul(-1)
	}
	return t.normal
}

// Support implements Volume
func (t *Triangle) Support(dir core.Vec3) core.Vec3 {
	return t.polytope().Support(dir)
}

// Visit implements Volume
func (t *Triangle) Visit(v Visitor) error {
	if v == nil {
		return ErrNilVisitor
	}
	v.VisitTriangle(t)
	return nil
}

func (t *Triangle) raycast(ray core.Ray, tMax float64) (collision.RayHit, bool) {
	return collision.RayTriangle(ray, t.corners[0], t.corners[1], t.corners[2], tMax, true)
}
