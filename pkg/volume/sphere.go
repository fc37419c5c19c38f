package volume

import (
	"github.com/df07/go-collision-volumes/pkg/collision"
	"github.com/df07/go-collision-volumes/pkg/core"
)

// Sphere is a center and a radius. A zero radius degenerates to a point.
type Sphere struct {
	center core.Vec3
	radius float64
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64) *Sphere {
	return &Sphere{center: center, radius: core.ClampNonNegative(radius)}
}

// Center returns the sphere center
func (s *Sphere) Center() core.Vec3 { return s.center }

// SetCenter moves the sphere
func (s *Sphere) SetCenter(c core.Vec3) { s.center = c }

// Radius returns the sphere radius
func (s *Sphere) Radius() float64 { return s.radius }

// SetRadius changes the radius; negative and tiny values become 0
func (s *Sphere) SetRadius(r float64) { s.radius = core.ClampNonNegative(r) }

// Kind implements Volume
func (s *Sphere) Kind() Kind { return KindSphere }

// VolumeHitsVolume implements Volume
func (s *Sphere) VolumeHitsVolume(other Volume) bool {
	return other.SphereHitsVolume(s)
}

// VolumeMoveHitsVolume implements Volume
func (s *Sphere) VolumeMoveHitsVolume(other Volume, displacement core.Vec3) Impact {
	return other.SphereMoveHitsVolume(s, displacement)
}

// SphereHitsVolume tests two spheres by center distance
func (s *Sphere) SphereHitsVolume(other *Sphere) bool {
	radii := s.radius + other.radius
	return s.center.Sub(other.center).LenSqr() <= radii*radii+core.BoundaryEpsilon
}

// Pairs owned by the other shape forward with the arguments swapped
func (s *Sphere) BoxHitsVolume(b *Box) bool           { return b.SphereHitsVolume(s) }
func (s *Sphere) CapsuleHitsVolume(c *Capsule) bool   { return c.SphereHitsVolume(s) }
func (s *Sphere) CylinderHitsVolume(c *Cylinder) bool { return c.SphereHitsVolume(s) }
func (s *Sphere) TriangleHitsVolume(t *Triangle) bool { return t.SphereHitsVolume(s) }
func (s *Sphere) FrustumHitsVolume(f *Frustum) bool   { return f.SphereHitsVolume(s) }

// SphereMoveHitsVolume sweeps other by displacement against s, solving
// |diff + t·displacement|² = (r1+r2)² for the first root in [0, 1].
func (s *Sphere) SphereMoveHitsVolume(other *Sphere, displacement core.Vec3) Impact {
	diff := other.center.Sub(s.center)
	radii := s.radius + other.radius

	a := displacement.LenSqr()
	b := 2 * diff.Dot(displacement)
	c := diff.LenSqr() - radii*radii

	if c <= core.BoundaryEpsilon {
		return overlapImpact(other.center, s.center, displacement)
	}
	if core.NearZero(displacement) {
		return NoImpact
	}

	t0, t1, ok := collision.SolveQuadratic(a, b, c)
	if !ok {
		return NoImpact
	}

	t := t0
	if t < 0 {
		t = t1
	}
	if t < 0 || t > 1 {
		return NoImpact
	}

	contact := diff.Add(displacement.Mul(t))
	normal := core.SafeNormalize(contact, displacement.Mul(-1).Normalize())
	return Impact{Fraction: t, Normal: normal, Hit: true}
}

// Sweeps owned by the other shape run mirrored, which negates the normal
func (s *Sphere) BoxMoveHitsVolume(b *Box, d core.Vec3) Impact           { return mirrorMove(s, b, d) }
func (s *Sphere) CapsuleMoveHitsVolume(c *Capsule, d core.Vec3) Impact   { return mirrorMove(s, c, d) }
func (s *Sphere) CylinderMoveHitsVolume(c *Cylinder, d core.Vec3) Impact { return mirrorMove(s, c, d) }
func (s *Sphere) TriangleMoveHitsVolume(t *Triangle, d core.Vec3) Impact { return mirrorMove(s, t, d) }
func (s *Sphere) FrustumMoveHitsVolume(f *Frustum, d core.Vec3) Impact   { return mirrorMove(s, f, d) }

// PointMoveHitsVolume implements Volume
func (s *Sphere) PointMoveHitsVolume(point, displacement core.Vec3) Impact {
	return pointSweep(s, point, displacement)
}

// EnclosingSphere returns a copy of the sphere
func (s *Sphere) EnclosingSphere() *Sphere {
	return NewSphere(s.center, s.radius)
}

// EnclosingBox returns center ± radius on every axis
func (s *Sphere) EnclosingBox() *Box {
	return NewBox(s.center, core.NewVec3(s.radius, s.radius, s.radius))
}

// IsPointInside implements Volume
func (s *Sphere) IsPointInside(point core.Vec3) bool {
	r := s.radius + core.BoundaryEpsilon
	return point.Sub(s.center).LenSqr() <= r*r
}

// ClosestPointTo implements Volume
func (s *Sphere) ClosestPointTo(point core.Vec3) core.Vec3 {
	if s.IsPointInside(point) {
		return point
	}
	return s.center.Add(point.Sub(s.center).Normalize().Mul(s.radius))
}

// NormalAtPoint points away from the center
func (s *Sphere) NormalAtPoint(point core.Vec3) core.Vec3 {
	return core.SafeNormalize(point.Sub(s.center), core.NewVec3(0, 1, 0))
}

// RayHitsVolume implements Volume
func (s *Sphere) RayHitsVolume(origin, direction core.Vec3) (float64, bool) {
	return rayDistance(s, origin, direction)
}

// Support implements Volume
func (s *Sphere) Support(dir core.Vec3) core.Vec3 {
	return collision.Ball{Center: s.center, Radius: s.radius}.Support(dir)
}

// Visit implements Volume
func (s *Sphere) Visit(v Visitor) error {
	if v == nil {
		return ErrNilVisitor
	}
	v.VisitSphere(s)
	return nil
}

func (s *Sphere) raycast(ray core.Ray, tMax float64) (collision.RayHit, bool) {
	return collision.RaySphere(ray, s.center, s.radius, tMax)
}
