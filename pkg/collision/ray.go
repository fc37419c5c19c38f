package collision

import (
	"math"

	"github.com/df07/go-collision-volumes/pkg/core"
)

// RayHit describes where a ray enters a surface
type RayHit struct {
	T      float64   // Parameter along the ray
	Point  core.Vec3 // Point of intersection
	Normal core.Vec3 // Outward surface normal at the intersection
}

// closer returns whichever hit has the smaller parameter
func closer(best RayHit, found bool, candidate RayHit, ok bool) (RayHit, bool) {
	if !ok {
		return best, found
	}
	if !found || candidate.T < best.T {
		return candidate, true
	}
	return best, found
}

// RaySphere returns where the ray enters the sphere within [0, tMax]
func RaySphere(ray core.Ray, center core.Vec3, radius, tMax float64) (RayHit, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Sub(center)

	// Quadratic equation coefficients: at² + 2·halfB·t + c = 0
	a := ray.Direction.LenSqr()
	halfB := oc.Dot(ray.Direction)
	c := oc.LenSqr() - radius*radius

	if a < core.SizeEpsilon {
		return RayHit{}, false
	}

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return RayHit{}, false
	}

	// Only the nearer root is an entering crossing
	root := (-halfB - math.Sqrt(discriminant)) / a
	if root < 0 || root > tMax {
		return RayHit{}, false
	}

	point := ray.At(root)
	normal := core.SafeNormalize(point.Sub(center), ray.Direction.Mul(-1).Normalize())
	return RayHit{T: root, Point: point, Normal: normal}, true
}

// RayLinearCone intersects a ray given in a local frame (axis +Y) with the lateral
// surface x²+z² = (c0 + c1·y)², keeping only the nappe where c0 + c1·y ≥ 0 and
// heights inside [yMin, yMax]. Only entering crossings are reported.
// A cylinder is the special case c1 = 0.
func RayLinearCone(ray core.Ray, c0, c1, yMin, yMax, tMax float64) (RayHit, bool) {
	o := ray.Origin
	d := ray.Direction

	radiusAtOrigin := c0 + c1*o.Y()

	// Quadratic equation coefficients: at² + bt + cc = 0
	a := d.X()*d.X() + d.Z()*d.Z() - c1*c1*d.Y()*d.Y()
	b := 2.0 * (o.X()*d.X() + o.Z()*d.Z() - c1*d.Y()*radiusAtOrigin)
	cc := o.X()*o.X() + o.Z()*o.Z() - radiusAtOrigin*radiusAtOrigin

	t0, t1, ok := SolveQuadratic(a, b, cc)
	if !ok {
		return RayHit{}, false
	}

	for _, t := range [2]float64{t0, t1} {
		if t < 0 || t > tMax {
			continue
		}
		point := ray.At(t)
		y := point.Y()
		radius := c0 + c1*y
		if y < yMin-core.BoundaryEpsilon || y > yMax+core.BoundaryEpsilon || radius < 0 {
			continue
		}

		// Gradient of x²+z²-(c0+c1·y)² points outward
		gradient := core.NewVec3(point.X(), -c1*radius, point.Z())
		if gradient.Dot(d) >= 0 {
			continue // leaving the surface
		}
		normal := core.SafeNormalize(gradient, d.Mul(-1).Normalize())
		return RayHit{T: t, Point: point, Normal: normal}, true
	}

	return RayHit{}, false
}

// rayCap intersects a ray with a disc of the given radius lying in the plane y = height.
// up selects whether the cap faces +Y (true) or -Y (false).
func rayCap(ray core.Ray, height, radius float64, up bool, tMax float64) (RayHit, bool) {
	const epsilon = 1e-12

	normal := core.NewVec3(0, -1, 0)
	if up {
		normal = core.NewVec3(0, 1, 0)
	}

	denom := ray.Direction.Dot(normal)
	if denom > -epsilon {
		// Parallel, or hitting the cap from the inside
		return RayHit{}, false
	}

	t := (height - ray.Origin.Y()) / ray.Direction.Y()
	if t < 0 || t > tMax {
		return RayHit{}, false
	}

	point := ray.At(t)
	if point.X()*point.X()+point.Z()*point.Z() > radius*radius+core.BoundaryEpsilon {
		return RayHit{}, false
	}

	return RayHit{T: t, Point: point, Normal: normal}, true
}

// RayCylinder casts a local-frame ray (axis +Y) against a flat-capped cylinder
// spanning y in [-halfHeight, halfHeight] whose radius changes linearly from
// bottomRadius to topRadius. Tapered and straight cylinders share this path.
func RayCylinder(ray core.Ray, halfHeight, bottomRadius, topRadius, tMax float64) (RayHit, bool) {
	c0, c1 := LinearRadius(halfHeight, bottomRadius, topRadius)

	var best RayHit
	found := false

	if halfHeight > 0 {
		side, ok := RayLinearCone(ray, c0, c1, -halfHeight, halfHeight, tMax)
		best, found = closer(best, found, side, ok)
	}

	top, ok := rayCap(ray, halfHeight, topRadius, true, tMax)
	best, found = closer(best, found, top, ok)

	bottom, ok := rayCap(ray, -halfHeight, bottomRadius, false, tMax)
	best, found = closer(best, found, bottom, ok)

	return best, found
}

// LinearRadius returns the coefficients of radius(y) = c0 + c1·y for a profile that
// runs from bottomRadius at -halfHeight to topRadius at +halfHeight.
func LinearRadius(halfHeight, bottomRadius, topRadius float64) (c0, c1 float64) {
	c0 = 0.5 * (bottomRadius + topRadius)
	if halfHeight < core.SizeEpsilon {
		return c0, 0
	}
	c1 = (topRadius - bottomRadius) / (2 * halfHeight)
	return c0, c1
}

// RayCapsule casts a local-frame ray (axis +Y) against the convex hull of a bottom
// sphere (center y=-halfHeight, bottomRadius) and a top sphere (center y=+halfHeight,
// topRadius). With equal radii this is an ordinary capsule.
func RayCapsule(ray core.Ray, halfHeight, bottomRadius, topRadius, tMax float64) (RayHit, bool) {
	bottom := core.NewVec3(0, -halfHeight, 0)
	top := core.NewVec3(0, halfHeight, 0)

	profile, ok := NewRoundCone(halfHeight, bottomRadius, topRadius)
	if !ok {
		// One end sphere swallows the other
		if bottomRadius >= topRadius {
			return RaySphere(ray, bottom, bottomRadius, tMax)
		}
		return RaySphere(ray, top, topRadius, tMax)
	}

	var best RayHit
	found := false

	// Lateral cone, restricted to the band between the tangent circles
	if side, ok := RayLinearCone(ray, profile.C0, profile.C1, -halfHeight-bottomRadius, halfHeight+topRadius, tMax); ok {
		if region := profile.Region(side.Point); region == 0 {
			best, found = closer(best, found, side, true)
		}
	}

	if hit, ok := RaySphere(ray, bottom, bottomRadius, tMax); ok && profile.Region(hit.Point) < 0 {
		best, found = closer(best, found, hit, true)
	}
	if hit, ok := RaySphere(ray, top, topRadius, tMax); ok && profile.Region(hit.Point) > 0 {
		best, found = closer(best, found, hit, true)
	}

	return best, found
}
