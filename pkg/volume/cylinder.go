package volume

import (
	"github.com/df07/go-collision-volumes/pkg/collision"
	"github.com/df07/go-collision-volumes/pkg/core"
)

// Cylinder is a flat-capped solid on the local Y axis whose radius runs
// linearly from the bottom cap to the top cap.
type Cylinder struct {
	axial
}

// NewCylinder creates an upright cylinder with equal radii
func NewCylinder(position core.Vec3, halfHeight, radius float64) *Cylinder {
	return &Cylinder{axial: newAxial(position, halfHeight, radius)}
}

// SignedDistance returns the distance from a world point to the surface, negative inside
func (c *Cylinder) SignedDistance(point core.Vec3) float64 {
	return c.truncatedCone().SignedDistance(c.WorldToLocal(point))
}

// Kind implements Volume
func (c *Cylinder) Kind() Kind { return KindCylinder }

// VolumeHitsVolume implements Volume
func (c *Cylinder) VolumeHitsVolume(other Volume) bool {
	return other.CylinderHitsVolume(c)
}

// VolumeMoveHitsVolume implements Volume
func (c *Cylinder) VolumeMoveHitsVolume(other Volume, displacement core.Vec3) Impact {
	return other.CylinderMoveHitsVolume(c, displacement)
}

// SphereHitsVolume measures the sphere center against the nearest point of the cylinder
func (c *Cylinder) SphereHitsVolume(s *Sphere) bool {
	closest := c.ClosestPointTo(s.center)
	r := s.radius + core.BoundaryEpsilon
	return closest.Sub(s.center).LenSqr() <= r*r
}

// Pairs without a closed form test GJK distance on the support mappings
func (c *Cylinder) BoxHitsVolume(b *Box) bool               { return convexOverlap(b, c) }
func (c *Cylinder) CapsuleHitsVolume(other *Capsule) bool   { return convexOverlap(other, c) }
func (c *Cylinder) CylinderHitsVolume(other *Cylinder) bool { return convexOverlap(other, c) }

// Pairs owned by the other shape forward with the arguments swapped
func (c *Cylinder) TriangleHitsVolume(t *Triangle) bool { return t.CylinderHitsVolume(c) }
func (c *Cylinder) FrustumHitsVolume(f *Frustum) bool   { return f.CylinderHitsVolume(c) }

// Swept pairs advance conservatively on GJK distance
func (c *Cylinder) SphereMoveHitsVolume(s *Sphere, d core.Vec3) Impact         { return sweep(s, c, d) }
func (c *Cylinder) BoxMoveHitsVolume(b *Box, d core.Vec3) Impact               { return sweep(b, c, d) }
func (c *Cylinder) CapsuleMoveHitsVolume(other *Capsule, d core.Vec3) Impact   { return sweep(other, c, d) }
func (c *Cylinder) CylinderMoveHitsVolume(other *Cylinder, d core.Vec3) Impact { return sweep(other, c, d) }

// Sweeps owned by the other shape run mirrored, which negates the normal
func (c *Cylinder) TriangleMoveHitsVolume(t *Triangle, d core.Vec3) Impact { return mirrorMove(c, t, d) }
func (c *Cylinder) FrustumMoveHitsVolume(f *Frustum, d core.Vec3) Impact   { return mirrorMove(c, f, d) }

// Points and rays are cast against the shape
func (c *Cylinder) PointMoveHitsVolume(point, d core.Vec3) Impact             { return pointSweep(c, point, d) }
func (c *Cylinder) RayHitsVolume(origin, direction core.Vec3) (float64, bool) { return rayDistance(c, origin, direction) }

// EnclosingSphere bounds the cylinder by sqrt(halfHeight² + radius²)
func (c *Cylinder) EnclosingSphere() *Sphere {
	return NewSphere(c.position, c.enclosingRadius())
}

// EnclosingBox implements Volume
func (c *Cylinder) EnclosingBox() *Box {
	return boxFromBounds(supportBounds(c))
}

// IsPointInside compares the distance from the axis with the interpolated radius
func (c *Cylinder) IsPointInside(point core.Vec3) bool {
	return c.truncatedCone().Contains(c.WorldToLocal(point))
}

// ClosestPointTo implements Volume
func (c *Cylinder) ClosestPointTo(point core.Vec3) core.Vec3 {
	local := c.WorldToLocal(point)
	tc := c.truncatedCone()
	if tc.Contains(local) {
		return point
	}
	return c.LocalToWorld(tc.ClosestSurfacePoint(local))
}

// NormalAtPoint implements Volume
func (c *Cylinder) NormalAtPoint(point core.Vec3) core.Vec3 {
	return c.dirToWorld(c.truncatedCone().Normal(c.WorldToLocal(point)))
}

// Support implements Volume
func (c *Cylinder) Support(dir core.Vec3) core.Vec3 {
	bottom, top := c.SegmentEnds()
	axis := c.Axis()
	hull := collision.Hull{
		A: collision.Disc{Center: bottom, Axis: axis, Radius: c.bottomRadius},
		B: collision.Disc{Center: top, Axis: axis, Radius: c.topRadius},
	}
	return hull.Support(dir)
}

// Visit implements Volume
func (c *Cylinder) Visit(v Visitor) error {
	if v == nil {
		return ErrNilVisitor
	}
	v.VisitCylinder(c)
	return nil
}

func (c *Cylinder) raycast(ray core.Ray, tMax float64) (collision.RayHit, bool) {
	hit, ok := collision.RayCylinder(c.rayToLocal(ray), c.halfHeight, c.bottomRadius, c.topRadius, tMax)
	if !ok {
		return collision.RayHit{}, false
	}
	return c.hitToWorld(hit), true
}
