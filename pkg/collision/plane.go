package collision

import (
	"math"

	"github.com/df07/go-collision-volumes/pkg/core"
)

// Plane is a unit normal and a distance such that points p with Normal·p >= Distance lie on
// the positive (inner) side.
type Plane struct {
	Normal   core.Vec3
	Distance float64
}

// NewPlaneFromPoints builds the plane through a, b, c whose normal follows the
// counter-clockwise winding a→b→c. Returns false for collinear points.
func NewPlaneFromPoints(a, b, c core.Vec3) (Plane, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() < core.SizeEpsilon {
		return Plane{}, false
	}
	n = n.Normalize()
	return Plane{Normal: n, Distance: n.Dot(a)}, true
}

// SignedDistance returns how far p lies on the inner side of the plane
func (p Plane) SignedDistance(point core.Vec3) float64 {
	return p.Normal.Dot(point) - p.Distance
}

// Flip returns the plane facing the opposite way
func (p Plane) Flip() Plane {
	return Plane{Normal: p.Normal.Mul(-1), Distance: -p.Distance}
}

// IntersectPlanes returns the single point shared by three planes
func IntersectPlanes(p1, p2, p3 Plane) (core.Vec3, bool) {
	n23 := p2.Normal.Cross(p3.Normal)
	denom := p1.Normal.Dot(n23)
	if math.Abs(denom) < core.SizeEpsilon {
		return core.Vec3{}, false
	}

	n31 := p3.Normal.Cross(p1.Normal)
	n12 := p1.Normal.Cross(p2.Normal)
	point := n23.Mul(p1.Distance).Add(n31.Mul(p2.Distance)).Add(n12.Mul(p3.Distance))
	return point.Mul(1 / denom), true
}

// RayPlanes clips a ray against the intersection of the inner half-spaces of the
// planes (Cyrus-Beck). It reports the entering crossing; the normal faces outward.
func RayPlanes(ray core.Ray, planes []Plane, tMax float64) (RayHit, bool) {
	const epsilon = 1e-12

	tEnter := 0.0
	tExit := tMax
	var enterNormal core.Vec3
	entered := false

	for _, plane := range planes {
		dist := plane.SignedDistance(ray.Origin)
		denom := plane.Normal.Dot(ray.Direction)

		if math.Abs(denom) < epsilon {
			// Parallel: the ray stays on one side for its whole length
			if dist < 0 {
				return RayHit{}, false
			}
			continue
		}

		t := -dist / denom
		if denom > 0 {
			// Moving toward the inner side: the crossing is an entry
			if t > tEnter {
				tEnter = t
				enterNormal = plane.Normal.Mul(-1)
				entered = true
			}
		} else if t < tExit {
			tExit = t
		}

		if tEnter > tExit {
			return RayHit{}, false
		}
	}

	if !entered {
		// Origin already satisfies every plane
		return RayHit{}, false
	}

	return RayHit{T: tEnter, Point: ray.At(tEnter), Normal: enterNormal}, true
}
