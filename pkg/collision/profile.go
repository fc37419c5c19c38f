package collision

import (
	"math"

	"github.com/df07/go-collision-volumes/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

// RoundCone is the convex hull of two spheres stacked on the local +Y axis:
// the bottom sphere is centered at y=-HalfHeight, the top one at y=+HalfHeight.
// Only valid when neither sphere contains the other; see NewRoundCone.
type RoundCone struct {
	HalfHeight float64
	Bottom     float64 // Bottom sphere radius
	Top        float64 // Top sphere radius

	// Cached derived values
	a, b   float64 // Unit 2D normal (a, b) of the lateral line in (radial, height) space
	length float64 // Distance between the sphere centers
	C0, C1 float64 // Lateral cone radius(y) = C0 + C1·y
}

// NewRoundCone builds the hull profile. It returns false when one sphere swallows
// the other, in which case the hull is just the larger sphere.
func NewRoundCone(halfHeight, bottom, top float64) (RoundCone, bool) {
	length := 2 * halfHeight
	if length <= math.Abs(bottom-top)+core.SizeEpsilon {
		return RoundCone{}, false
	}

	b := (bottom - top) / length
	a := math.Sqrt(1 - b*b)

	return RoundCone{
		HalfHeight: halfHeight,
		Bottom:     bottom,
		Top:        top,
		a:          a,
		b:          b,
		length:     length,
		C0:         (bottom - b*halfHeight) / a,
		C1:         -b / a,
	}, true
}

// planar splits a local point into its distance from the axis and the unit radial direction
func planar(p core.Vec3) (float64, core.Vec3) {
	rho := math.Hypot(p.X(), p.Z())
	if rho < core.SizeEpsilon {
		return 0, core.NewVec3(1, 0, 0)
	}
	return rho, core.NewVec3(p.X()/rho, 0, p.Z()/rho)
}

// Region reports which piece of the hull surface is nearest: -1 bottom sphere, 0 lateral cone, +1 top sphere
func (rc RoundCone) Region(p core.Vec3) int {
	rho, _ := planar(p)
	k := -rc.b*rho + rc.a*(p.Y()+rc.HalfHeight)
	if k < 0 {
		return -1
	}
	if k > rc.a*rc.length {
		return 1
	}
	return 0
}

// SignedDistance returns the exact Euclidean distance to the hull surface, negative inside
func (rc RoundCone) SignedDistance(p core.Vec3) float64 {
	switch rc.Region(p) {
	case -1:
		return p.Sub(core.NewVec3(0, -rc.HalfHeight, 0)).Len() - rc.Bottom
	case 1:
		return p.Sub(core.NewVec3(0, rc.HalfHeight, 0)).Len() - rc.Top
	}
	rho, _ := planar(p)
	return rc.a*rho + rc.b*(p.Y()+rc.HalfHeight) - rc.Bottom
}

// Normal returns the outward surface normal of the region nearest to p
func (rc RoundCone) Normal(p core.Vec3) core.Vec3 {
	up := core.NewVec3(0, 1, 0)
	switch rc.Region(p) {
	case -1:
		return core.SafeNormalize(p.Sub(core.NewVec3(0, -rc.HalfHeight, 0)), up.Mul(-1))
	case 1:
		return core.SafeNormalize(p.Sub(core.NewVec3(0, rc.HalfHeight, 0)), up)
	}
	_, radial := planar(p)
	return radial.Mul(rc.a).Add(up.Mul(rc.b))
}

// ClosestSurfacePoint projects p onto the hull surface along the normal
func (rc RoundCone) ClosestSurfacePoint(p core.Vec3) core.Vec3 {
	return p.Sub(rc.Normal(p).Mul(rc.SignedDistance(p)))
}

// TruncatedCone is a flat-capped solid on the local +Y axis whose radius changes
// linearly from Bottom at y=-HalfHeight to Top at y=+HalfHeight.
type TruncatedCone struct {
	HalfHeight float64
	Bottom     float64
	Top        float64
}

// RadiusAt interpolates the radius at height y, clamped to the solid's extent
func (tc TruncatedCone) RadiusAt(y float64) float64 {
	if tc.HalfHeight < core.SizeEpsilon {
		return 0.5 * (tc.Bottom + tc.Top)
	}
	y = core.Clamp(y, -tc.HalfHeight, tc.HalfHeight)
	return tc.Bottom + (tc.Top-tc.Bottom)*(y/(2*tc.HalfHeight)+0.5)
}

// Contains reports whether the local point lies inside, boundary included
func (tc TruncatedCone) Contains(p core.Vec3) bool {
	if math.Abs(p.Y()) > tc.HalfHeight+core.BoundaryEpsilon {
		return false
	}
	rho, _ := planar(p)
	return rho <= tc.RadiusAt(p.Y())+core.BoundaryEpsilon
}

// edges returns the three boundary segments of the profile in (radial, height) space
func (tc TruncatedCone) edges() [3][2]mgl64.Vec2 {
	h := tc.HalfHeight
	// bottom cap, side, top cap
	return [3][2]mgl64.Vec2{
		{{0, -h}, {tc.Bottom, -h}},
		{{tc.Bottom, -h}, {tc.Top, h}},
		{{0, h}, {tc.Top, h}},
	}
}

// outward normals of the profile edges in (radial, height) space
func (tc TruncatedCone) edgeNormals() [3]mgl64.Vec2 {
	side := mgl64.Vec2{2 * tc.HalfHeight, tc.Bottom - tc.Top}
	if side.Len() < core.SizeEpsilon {
		side = mgl64.Vec2{1, 0}
	}
	return [3]mgl64.Vec2{{0, -1}, side.Normalize(), {0, 1}}
}

// nearestEdge finds the profile edge closest to the 2D point q
func (tc TruncatedCone) nearestEdge(q mgl64.Vec2) (int, mgl64.Vec2, float64) {
	best := -1
	var bestPoint mgl64.Vec2
	bestDist := math.Inf(1)
	for i, e := range tc.edges() {
		c := closestOnSegment2D(q, e[0], e[1])
		if d := q.Sub(c).Len(); d < bestDist {
			best, bestPoint, bestDist = i, c, d
		}
	}
	return best, bestPoint, bestDist
}

// ClosestPoint returns p itself when inside, otherwise the nearest surface point
func (tc TruncatedCone) ClosestPoint(p core.Vec3) core.Vec3 {
	if tc.Contains(p) {
		return p
	}
	return tc.ClosestSurfacePoint(p)
}

// ClosestSurfacePoint returns the nearest point on the boundary surface
func (tc TruncatedCone) ClosestSurfacePoint(p core.Vec3) core.Vec3 {
	rho, radial := planar(p)
	_, c, _ := tc.nearestEdge(mgl64.Vec2{rho, p.Y()})
	return radial.Mul(c.X()).Add(core.NewVec3(0, c.Y(), 0))
}

// SignedDistance returns the distance to the surface, negative inside
func (tc TruncatedCone) SignedDistance(p core.Vec3) float64 {
	rho, _ := planar(p)
	_, _, d := tc.nearestEdge(mgl64.Vec2{rho, p.Y()})
	if tc.Contains(p) {
		return -d
	}
	return d
}

// Normal returns the outward normal of the surface nearest to p
func (tc TruncatedCone) Normal(p core.Vec3) core.Vec3 {
	rho, radial := planar(p)
	q := mgl64.Vec2{rho, p.Y()}
	i, c, d := tc.nearestEdge(q)

	var n2 mgl64.Vec2
	if !tc.Contains(p) && d > core.Epsilon {
		n2 = q.Sub(c).Mul(1 / d)
	} else {
		n2 = tc.edgeNormals()[i]
	}
	return radial.Mul(n2.X()).Add(core.NewVec3(0, n2.Y(), 0))
}

// closestOnSegment2D returns the closest point to q on segment ab
func closestOnSegment2D(q, a, b mgl64.Vec2) mgl64.Vec2 {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq < core.SizeEpsilon*core.SizeEpsilon {
		return a
	}
	t := core.Clamp(q.Sub(a).Dot(ab)/lenSq, 0, 1)
	return a.Add(ab.Mul(t))
}
