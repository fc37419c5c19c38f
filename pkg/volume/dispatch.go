package volume

import (
	"fmt"
	"math"

	"github.com/df07/go-collision-volumes/pkg/collision"
	"github.com/df07/go-collision-volumes/pkg/core"
)

// Hits reports whether two volumes overlap
func Hits(a, b Volume) (bool, error) {
	if a == nil || b == nil {
		return false, ErrNilVolume
	}
	return a.VolumeHitsVolume(b), nil
}

// MoveHits sweeps moving by displacement against stationary
func MoveHits(moving, stationary Volume, displacement core.Vec3) (Impact, error) {
	if moving == nil || stationary == nil {
		return NoImpact, ErrNilVolume
	}
	return moving.VolumeMoveHitsVolume(stationary, displacement), nil
}

// mirrorMove answers "moving sweeps by d into stationary" with the routine owned by
// the moving volume's kind: stationary sweeps by -d into moving instead, and the
// normal is flipped back so it still points into the moving volume.
func mirrorMove(stationary, moving Volume, d core.Vec3) Impact {
	impact := stationary.VolumeMoveHitsVolume(moving, d.Mul(-1))
	impact.Normal = impact.Normal.Mul(-1)
	return impact
}

// centerOf returns a representative interior point of a volume
func centerOf(v Volume) core.Vec3 {
	return v.EnclosingSphere().Center()
}

// overlapImpact is the swept result for volumes that already touch at the start
func overlapImpact(movingCenter, stationaryCenter, d core.Vec3) Impact {
	fallback := core.SafeNormalize(d.Mul(-1), core.NewVec3(0, 1, 0))
	diff := movingCenter.Sub(stationaryCenter)
	normal := fallback
	if !core.NearZero(diff) {
		normal = diff.Normalize()
	}
	return Impact{Fraction: 0, Normal: normal, Hit: true}
}

// staticImpact answers a sweep whose displacement is too short to matter with the overlap test
func staticImpact(moving, stationary Volume, d core.Vec3) Impact {
	if moving.VolumeHitsVolume(stationary) {
		return overlapImpact(centerOf(moving), centerOf(stationary), d)
	}
	return NoImpact
}

// sweep is the general swept test: conservative advancement on the distance
// between the two support mappings.
func sweep(moving, stationary Volume, d core.Vec3) Impact {
	if core.NearZero(d) {
		return staticImpact(moving, stationary, d)
	}

	movingCenter := centerOf(moving)
	stationaryCenter := centerOf(stationary)

	toi := collision.SweepConvex(moving, stationary, d, stationaryCenter.Sub(movingCenter))
	switch {
	case !toi.Hit:
		return NoImpact
	case toi.Initial:
		return overlapImpact(movingCenter, stationaryCenter, d)
	}
	return Impact{Fraction: toi.Fraction, Normal: toi.Normal, Hit: true}
}

// convexOverlap is the general overlap test on support mappings
func convexOverlap(a, b Volume) bool {
	return collision.Intersects(a, b, centerOf(b).Sub(centerOf(a)))
}

// pointSweep casts a moving point as a ray limited to the displacement length
func pointSweep(v Volume, point, d core.Vec3) Impact {
	if v.IsPointInside(point) {
		return overlapImpact(point, centerOf(v), d)
	}

	length := d.Len()
	if length < core.DirectionEpsilon {
		return NoImpact
	}

	ray := core.NewRay(point, d.Mul(1/length))
	hit, ok := v.raycast(ray, length)
	if !ok {
		return NoImpact
	}
	return Impact{Fraction: core.Clamp(hit.T/length, 0, 1), Normal: hit.Normal, Hit: true}
}

// rayDistance implements RayHitsVolume on top of a volume's entering ray cast
func rayDistance(v Volume, origin, direction core.Vec3) (float64, bool) {
	ray, ok := core.NewRay(origin, direction).Normalized()
	if !ok {
		return 0, false
	}
	if v.IsPointInside(origin) {
		return 0, true
	}
	hit, ok := v.raycast(ray, math.Inf(1))
	if !ok {
		return 0, false
	}
	return hit.T, true
}

// outwardNormal is the NormalAtPoint fallback for a point away from the surface
func outwardNormal(v Volume, point core.Vec3) (core.Vec3, bool) {
	closest := v.ClosestPointTo(point)
	diff := point.Sub(closest)
	if diff.LenSqr() < core.Epsilon*core.Epsilon {
		return core.Vec3{}, false
	}
	return diff.Normalize(), true
}

// supportBounds returns the world axis-aligned bounds of a volume from its support mapping
func supportBounds(v Volume) core.AABB {
	var bounds core.AABB
	for axis := 0; axis < 3; axis++ {
		var dir core.Vec3
		dir[axis] = 1
		bounds.Max[axis] = v.Support(dir)[axis]
		bounds.Min[axis] = v.Support(dir.Mul(-1))[axis]
	}
	return bounds
}

// boxFromBounds converts world bounds into an axis-aligned box
func boxFromBounds(bounds core.AABB) *Box {
	return NewBox(bounds.Center(), bounds.HalfSize())
}

// EnclosingBoxOf returns the axis-aligned box enclosing all volumes
func EnclosingBoxOf(volumes ...Volume) (*Box, error) {
	bounds, err := unionBounds(volumes)
	if err != nil {
		return nil, err
	}
	return boxFromBounds(bounds), nil
}

// EnclosingSphereOf returns a sphere enclosing all volumes, centered on their common bounds
func EnclosingSphereOf(volumes ...Volume) (*Sphere, error) {
	bounds, err := unionBounds(volumes)
	if err != nil {
		return nil, err
	}

	center := bounds.Center()
	radius := 0.0
	for _, v := range volumes {
		s := v.EnclosingSphere()
		radius = math.Max(radius, s.Center().Sub(center).Len()+s.Radius())
	}
	return NewSphere(center, radius), nil
}

func unionBounds(volumes []Volume) (core.AABB, error) {
	if len(volumes) == 0 {
		return core.AABB{}, fmt.Errorf("nothing to enclose: %w", ErrNilVolume)
	}

	var bounds core.AABB
	for i, v := range volumes {
		if v == nil {
			return core.AABB{}, fmt.Errorf("volume %d: %w", i, ErrNilVolume)
		}
		b := v.EnclosingBox().Bounds()
		if i == 0 {
			bounds = b
		} else {
			bounds = bounds.Union(b)
		}
	}
	return bounds, nil
}
