package volume

import (
	"math"

	"github.com/df07/go-collision-volumes/pkg/collision"
	"github.com/df07/go-collision-volumes/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

// Box is an oriented box given by its center, half extents and orientation.
// It is axis aligned when the orientation is exactly the identity.
type Box struct {
	frame
	halfSize core.Vec3
}

// NewBox creates an axis-aligned box
func NewBox(center, halfSize core.Vec3) *Box {
	return &Box{frame: newFrame(center), halfSize: core.ClampNonNegativeVec(halfSize)}
}

// NewOrientedBox creates a box rotated by orientation
func NewOrientedBox(center, halfSize core.Vec3, orientation core.Quat) *Box {
	b := NewBox(center, halfSize)
	b.SetOrientation(orientation)
	return b
}

// Center returns the box center
func (b *Box) Center() core.Vec3 { return b.position }

// SetCenter moves the box
func (b *Box) SetCenter(c core.Vec3) { b.position = c }

// HalfSize returns the half extents along the local axes
func (b *Box) HalfSize() core.Vec3 { return b.halfSize }

// SetHalfSize changes the half extents; negative and tiny components become 0
func (b *Box) SetHalfSize(h core.Vec3) { b.halfSize = core.ClampNonNegativeVec(h) }

// IsAxisAligned reports whether the orientation is the identity
func (b *Box) IsAxisAligned() bool {
	return b.orientation == mgl64.QuatIdent()
}

// ProjectExtends returns the half width of the box's shadow on a world axis
func (b *Box) ProjectExtends(axis core.Vec3) float64 {
	return math.Abs(axis.Dot(b.axes[0]))*b.halfSize.X() +
		math.Abs(axis.Dot(b.axes[1]))*b.halfSize.Y() +
		math.Abs(axis.Dot(b.axes[2]))*b.halfSize.Z()
}

// Bounds returns the world axis-aligned bounds
func (b *Box) Bounds() core.AABB {
	extent := core.NewVec3(
		b.ProjectExtends(core.NewVec3(1, 0, 0)),
		b.ProjectExtends(core.NewVec3(0, 1, 0)),
		b.ProjectExtends(core.NewVec3(0, 0, 1)),
	)
	return core.NewAABBFromCenter(b.position, extent)
}

// localBounds returns the box in its own frame
func (b *Box) localBounds() core.AABB {
	return core.NewAABBFromCenter(core.Vec3{}, b.halfSize)
}

// Corners returns the eight world corners, indexed like core.AABB.Corners
func (b *Box) Corners() [8]core.Vec3 {
	corners := b.localBounds().Corners()
	for i := range corners {
		corners[i] = b.LocalToWorld(corners[i])
	}
	return corners
}

// Kind implements Volume
func (b *Box) Kind() Kind { return KindBox }

// VolumeHitsVolume implements Volume
func (b *Box) VolumeHitsVolume(other Volume) bool {
	return other.BoxHitsVolume(b)
}

// VolumeMoveHitsVolume implements Volume
func (b *Box) VolumeMoveHitsVolume(other Volume, displacement core.Vec3) Impact {
	return other.BoxMoveHitsVolume(b, displacement)
}

// SphereHitsVolume compares the distance from the sphere center to the box with the radius
func (b *Box) SphereHitsVolume(s *Sphere) bool {
	closest := b.ClosestPointTo(s.center)
	r := s.radius + core.BoundaryEpsilon
	return closest.Sub(s.center).LenSqr() <= r*r
}

// BoxHitsVolume runs the separating axis test over the 15 candidate axes:
// the three face normals of each box and the nine pairwise edge cross products.
func (b *Box) BoxHitsVolume(other *Box) bool {
	// Parallel edges make cross products vanish; padding the rotation keeps them harmless
	const epsilon = 1e-9

	ea := b.halfSize
	eb := other.halfSize

	// Rotation expressing other in b's frame
	var r, absR [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = b.axes[i].Dot(other.axes[j])
			absR[i][j] = math.Abs(r[i][j]) + epsilon
		}
	}

	// Translation in b's frame
	t := b.dirToLocal(other.position.Sub(b.position))

	separated := func(distance, ra, rb float64) bool {
		return math.Abs(distance) > ra+rb+core.BoundaryEpsilon
	}

	// Axes of b
	for i := 0; i < 3; i++ {
		rb := eb[0]*absR[i][0] + eb[1]*absR[i][1] + eb[2]*absR[i][2]
		if separated(t[i], ea[i], rb) {
			return false
		}
	}

	// Axes of other
	for j := 0; j < 3; j++ {
		ra := ea[0]*absR[0][j] + ea[1]*absR[1][j] + ea[2]*absR[2][j]
		distance := t[0]*r[0][j] + t[1]*r[1][j] + t[2]*r[2][j]
		if separated(distance, ra, eb[j]) {
			return false
		}
	}

	// Cross products of b's axis i with other's axis j
	for i := 0; i < 3; i++ {
		i1, i2 := (i+1)%3, (i+2)%3
		for j := 0; j < 3; j++ {
			j1, j2 := (j+1)%3, (j+2)%3
			ra := ea[i1]*absR[i2][j] + ea[i2]*absR[i1][j]
			rb := eb[j1]*absR[i][j2] + eb[j2]*absR[i][j1]
			distance := t[i2]*r[i1][j] - t[i1]*r[i2][j]
			if separated(distance, ra, rb) {
				return false
			}
		}
	}

	return true
}

// Pairs owned by the other shape forward with the arguments swapped
func (b *Box) CapsuleHitsVolume(c *Capsule) bool   { return c.BoxHitsVolume(b) }
func (b *Box) CylinderHitsVolume(c *Cylinder) bool { return c.BoxHitsVolume(b) }
func (b *Box) TriangleHitsVolume(t *Triangle) bool { return t.BoxHitsVolume(b) }
func (b *Box) FrustumHitsVolume(f *Frustum) bool   { return f.BoxHitsVolume(b) }

// Swept pairs advance conservatively on GJK distance
func (b *Box) SphereMoveHitsVolume(s *Sphere, d core.Vec3) Impact { return sweep(s, b, d) }
func (b *Box) BoxMoveHitsVolume(other *Box, d core.Vec3) Impact   { return sweep(other, b, d) }

// Sweeps owned by the other shape run mirrored, which negates the normal
func (b *Box) CapsuleMoveHitsVolume(c *Capsule, d core.Vec3) Impact   { return mirrorMove(b, c, d) }
func (b *Box) CylinderMoveHitsVolume(c *Cylinder, d core.Vec3) Impact { return mirrorMove(b, c, d) }
func (b *Box) TriangleMoveHitsVolume(t *Triangle, d core.Vec3) Impact { return mirrorMove(b, t, d) }
func (b *Box) FrustumMoveHitsVolume(f *Frustum, d core.Vec3) Impact   { return mirrorMove(b, f, d) }

// Points and rays are cast against the shape
func (b *Box) PointMoveHitsVolume(point, d core.Vec3) Impact             { return pointSweep(b, point, d) }
func (b *Box) RayHitsVolume(origin, direction core.Vec3) (float64, bool) { return rayDistance(b, origin, direction) }

// EnclosingSphere returns the sphere through the corners
func (b *Box) EnclosingSphere() *Sphere {
	return NewSphere(b.position, b.halfSize.Len())
}

// EnclosingBox returns the world-aligned box around this one; for an
// axis-aligned box that is a copy.
func (b *Box) EnclosingBox() *Box {
	return boxFromBounds(b.Bounds())
}

// IsPointInside implements Volume
func (b *Box) IsPointInside(point core.Vec3) bool {
	return b.localBounds().Contains(b.WorldToLocal(point))
}

// ClosestPointTo clamps the local point to the half extents
func (b *Box) ClosestPointTo(point core.Vec3) core.Vec3 {
	local := b.WorldToLocal(point)
	if b.localBounds().Contains(local) {
		return point
	}
	for axis := 0; axis < 3; axis++ {
		local[axis] = core.Clamp(local[axis], -b.halfSize[axis], b.halfSize[axis])
	}
	return b.LocalToWorld(local)
}

// NormalAtPoint returns the direction away from the box for outside points and
// the normal of the nearest face otherwise.
func (b *Box) NormalAtPoint(point core.Vec3) core.Vec3 {
	if normal, ok := outwardNormal(b, point); ok {
		return normal
	}

	local := b.WorldToLocal(point)
	face := 0
	best := math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		if gap := b.halfSize[axis] - math.Abs(local[axis]); gap < best {
			face, best = axis, gap
		}
	}
	if local[face] < 0 {
		return b.axes[face].Mul(-1)
	}
	return b.axes[face]
}

// Support implements Volume
func (b *Box) Support(dir core.Vec3) core.Vec3 {
	p := b.position
	for axis := 0; axis < 3; axis++ {
		extent := b.halfSize[axis]
		if dir.Dot(b.axes[axis]) < 0 {
			extent = -extent
		}
		p = p.Add(b.axes[axis].Mul(extent))
	}
	return p
}

// Visit implements Volume
func (b *Box) Visit(v Visitor) error {
	if v == nil {
		return ErrNilVisitor
	}
	v.VisitBox(b)
	return nil
}

func (b *Box) raycast(ray core.Ray, tMax float64) (collision.RayHit, bool) {
	local := b.rayToLocal(ray)
	bounds := b.localBounds()
	if bounds.Contains(local.Origin) {
		return collision.RayHit{}, false
	}

	entry, _, ok := bounds.Intersect(local, 0, tMax)
	if !ok {
		return collision.RayHit{}, false
	}

	// The entering face belongs to the slab whose near crossing is latest
	face := -1
	latest := math.Inf(-1)
	for axis := 0; axis < 3; axis++ {
		d := local.Direction[axis]
		if math.Abs(d) < 1e-12 {
			continue
		}
		near := (-b.halfSize[axis] - local.Origin[axis]) / d
		if d < 0 {
			near = (b.halfSize[axis] - local.Origin[axis]) / d
		}
		if near > latest {
			face, latest = axis, near
		}
	}
	if face < 0 {
		return collision.RayHit{}, false
	}

	var normal core.Vec3
	normal[face] = -math.Copysign(1, local.Direction[face])

	hit := collision.RayHit{T: entry, Point: local.At(entry), Normal: normal}
	return b.hitToWorld(hit), true
}
