package volume

import (
	"github.com/df07/go-collision-volumes/pkg/collision"
	"github.com/df07/go-collision-volumes/pkg/core"
)

// Capsule is the convex hull of two spheres on the local Y axis: the bottom
// sphere at -HalfHeight and the top sphere at +HalfHeight. Different radii
// give a tapered capsule.
type Capsule struct {
	axial
}

// NewCapsule creates an upright capsule with equal radii
func NewCapsule(position core.Vec3, halfHeight, radius float64) *Capsule {
	return &Capsule{axial: newAxial(position, halfHeight, radius)}
}

// localDistance returns the signed distance of a local point to the surface
// and the outward normal there.
func (c *Capsule) localDistance(p core.Vec3) (float64, core.Vec3) {
	if rc, ok := collision.NewRoundCone(c.halfHeight, c.bottomRadius, c.topRadius); ok {
		return rc.SignedDistance(p), rc.Normal(p)
	}

	// One end sphere contains the other
	center := core.NewVec3(0, c.halfHeight, 0)
	radius := c.topRadius
	if c.bottomRadius >= c.topRadius {
		center = core.NewVec3(0, -c.halfHeight, 0)
		radius = c.bottomRadius
	}
	diff := p.Sub(center)
	return diff.Len() - radius, core.SafeNormalize(diff, core.NewVec3(0, 1, 0))
}

// SignedDistance returns the distance from a world point to the surface, negative inside
func (c *Capsule) SignedDistance(point core.Vec3) float64 {
	d, _ := c.localDistance(c.WorldToLocal(point))
	return d
}

// Kind implements Volume
func (c *Capsule) Kind() Kind { return KindCapsule }

// VolumeHitsVolume implements Volume
func (c *Capsule) VolumeHitsVolume(other Volume) bool {
	return other.CapsuleHitsVolume(c)
}

// VolumeMoveHitsVolume implements Volume
func (c *Capsule) VolumeMoveHitsVolume(other Volume, displacement core.Vec3) Impact {
	return other.CapsuleMoveHitsVolume(c, displacement)
}

// SphereHitsVolume measures the sphere center against the capsule axis
func (c *Capsule) SphereHitsVolume(s *Sphere) bool {
	if !c.tapered {
		bottom, top := c.SegmentEnds()
		closest, _ := collision.ClosestPointOnSegment(s.center, bottom, top)
		r := c.bottomRadius + s.radius + core.BoundaryEpsilon
		return closest.Sub(s.center).LenSqr() <= r*r
	}
	return c.SignedDistance(s.center) <= s.radius+core.BoundaryEpsilon
}

// BoxHitsVolume implements Volume
func (c *Capsule) BoxHitsVolume(b *Box) bool {
	return convexOverlap(b, c)
}

// CapsuleHitsVolume compares the distance between the two axes with the radii
func (c *Capsule) CapsuleHitsVolume(other *Capsule) bool {
	if c.tapered || other.tapered {
		return convexOverlap(other, c)
	}

	p1, q1 := c.SegmentEnds()
	p2, q2 := other.SegmentEnds()
	pair := collision.ClosestPointsSegmentSegment(p1, q1, p2, q2)
	r := c.bottomRadius + other.bottomRadius + core.BoundaryEpsilon
	return pair.DistanceSq <= r*r
}

// Pairs owned by the other shape forward with the arguments swapped
func (c *Capsule) CylinderHitsVolume(other *Cylinder) bool { return other.CapsuleHitsVolume(c) }
func (c *Capsule) TriangleHitsVolume(t *Triangle) bool     { return t.CapsuleHitsVolume(c) }
func (c *Capsule) FrustumHitsVolume(f *Frustum) bool       { return f.CapsuleHitsVolume(c) }

// SphereMoveHitsVolume casts the sphere center against the capsule grown by the
// sphere radius, which is again a capsule.
func (c *Capsule) SphereMoveHitsVolume(s *Sphere, displacement core.Vec3) Impact {
	if c.SphereHitsVolume(s) {
		return overlapImpact(s.center, c.position, displacement)
	}

	length := displacement.Len()
	if length < core.DirectionEpsilon {
		return NoImpact
	}

	ray := c.rayToLocal(core.NewRay(s.center, displacement.Mul(1/length)))
	hit, ok := collision.RayCapsule(ray, c.halfHeight, c.bottomRadius+s.radius, c.topRadius+s.radius, length)
	if !ok {
		return NoImpact
	}
	return Impact{Fraction: core.Clamp(hit.T/length, 0, 1), Normal: c.dirToWorld(hit.Normal), Hit: true}
}

// Swept pairs advance conservatively on GJK distance
func (c *Capsule) BoxMoveHitsVolume(b *Box, d core.Vec3) Impact             { return sweep(b, c, d) }
func (c *Capsule) CapsuleMoveHitsVolume(other *Capsule, d core.Vec3) Impact { return sweep(other, c, d) }

// Sweeps owned by the other shape run mirrored, which negates the normal
func (c *Capsule) CylinderMoveHitsVolume(other *Cylinder, d core.Vec3) Impact { return mirrorMove(c, other, d) }
func (c *Capsule) TriangleMoveHitsVolume(t *Triangle, d core.Vec3) Impact     { return mirrorMove(c, t, d) }
func (c *Capsule) FrustumMoveHitsVolume(f *Frustum, d core.Vec3) Impact       { return mirrorMove(c, f, d) }

// Points and rays are cast against the shape
func (c *Capsule) PointMoveHitsVolume(point, d core.Vec3) Impact             { return pointSweep(c, point, d) }
func (c *Capsule) RayHitsVolume(origin, direction core.Vec3) (float64, bool) { return rayDistance(c, origin, direction) }

// EnclosingSphere bounds the capsule from its center
func (c *Capsule) EnclosingSphere() *Sphere {
	return NewSphere(c.position, c.halfHeight+c.MaxRadius())
}

// EnclosingBox implements Volume
func (c *Capsule) EnclosingBox() *Box {
	return boxFromBounds(supportBounds(c))
}

// IsPointInside implements Volume
func (c *Capsule) IsPointInside(point core.Vec3) bool {
	return c.SignedDistance(point) <= core.BoundaryEpsilon
}

// ClosestPointTo projects outside points onto the hull surface
func (c *Capsule) ClosestPointTo(point core.Vec3) core.Vec3 {
	local := c.WorldToLocal(point)
	d, n := c.localDistance(local)
	if d <= core.BoundaryEpsilon {
		return point
	}
	return c.LocalToWorld(local.Sub(n.Mul(d)))
}

// NormalAtPoint returns the outward normal of the nearest surface region
func (c *Capsule) NormalAtPoint(point core.Vec3) core.Vec3 {
	_, n := c.localDistance(c.WorldToLocal(point))
	return c.dirToWorld(n)
}

// Support implements Volume
func (c *Capsule) Support(dir core.Vec3) core.Vec3 {
	bottom, top := c.SegmentEnds()
	hull := collision.Hull{
		A: collision.Ball{Center: bottom, Radius: c.bottomRadius},
		B: collision.Ball{Center: top, Radius: c.topRadius},
	}
	return hull.Support(dir)
}

// Visit implements Volume
func (c *Capsule) Visit(v Visitor) error {
	if v == nil {
		return ErrNilVisitor
	}
	v.VisitCapsule(c)
	return nil
}

func (c *Capsule) raycast(ray core.Ray, tMax float64) (collision.RayHit, bool) {
	hit, ok := collision.RayCapsule(c.rayToLocal(ray), c.halfHeight, c.bottomRadius, c.topRadius, tMax)
	if !ok {
		return collision.RayHit{}, false
	}
	return c.hitToWorld(hit), true
}
