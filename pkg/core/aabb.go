package core

import "math"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// NewAABBFromCenter creates an AABB from a center and non-negative half extents
func NewAABBFromCenter(center, halfSize Vec3) AABB {
	return AABB{Min: center.Sub(halfSize), Max: center.Add(halfSize)}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}

	min := points[0]
	max := points[0]

	for _, point := range points[1:] {
		for axis := 0; axis < 3; axis++ {
			min[axis] = math.Min(min[axis], point[axis])
			max[axis] = math.Max(max[axis], point[axis])
		}
	}

	return AABB{Min: min, Max: max}
}

// Hit tests if a ray intersects with this AABB using the slab method
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	_, _, ok := aabb.Intersect(ray, tMin, tMax)
	return ok
}

// Intersect clips the ray parameter interval [tMin, tMax] against the box slabs.
// It returns the entry and exit parameters of the clipped interval.
func (aabb AABB) Intersect(ray Ray, tMin, tMax float64) (float64, float64, bool) {
	for axis := 0; axis < 3; axis++ {
		min := aabb.Min[axis]
		max := aabb.Max[axis]
		origin := ray.Origin[axis]
		direction := ray.Direction[axis]

		// Handle parallel rays (direction near zero)
		if math.Abs(direction) < 1e-12 {
			if origin < min || origin > max {
				return 0, 0, false // Ray origin outside slab
			}
			continue
		}

		invDirection := 1.0 / direction
		t1 := (min - origin) * invDirection
		t2 := (max - origin) * invDirection

		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)

		if tMin > tMax {
			return 0, 0, false
		}
	}

	return tMin, tMax, true
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return NewAABBFromPoints(aabb.Min, aabb.Max, other.Min, other.Max)
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Mul(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Sub(aabb.Min)
}

// HalfSize returns half of the extent along each axis
func (aabb AABB) HalfSize() Vec3 {
	return aabb.Size().Mul(0.5)
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X() <= aabb.Max.X() &&
		aabb.Min.Y() <= aabb.Max.Y() &&
		aabb.Min.Z() <= aabb.Max.Z()
}

// Expand returns an AABB expanded by the given amount in all directions
func (aabb AABB) Expand(amount float64) AABB {
	expansion := NewVec3(amount, amount, amount)
	return AABB{
		Min: aabb.Min.Sub(expansion),
		Max: aabb.Max.Add(expansion),
	}
}

// Contains reports whether p lies inside the box, boundary included
func (aabb AABB) Contains(p Vec3) bool {
	for axis := 0; axis < 3; axis++ {
		if p[axis] < aabb.Min[axis]-BoundaryEpsilon || p[axis] > aabb.Max[axis]+BoundaryEpsilon {
			return false
		}
	}
	return true
}

// Overlaps reports whether two boxes share at least one point
func (aabb AABB) Overlaps(other AABB) bool {
	for axis := 0; axis < 3; axis++ {
		if aabb.Max[axis] < other.Min[axis] || other.Max[axis] < aabb.Min[axis] {
			return false
		}
	}
	return true
}

// Corners returns the eight corners, indexed by bit pattern (bit 0 = X max, bit 1 = Y max, bit 2 = Z max)
func (aabb AABB) Corners() [8]Vec3 {
	var corners [8]Vec3
	for i := range corners {
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				corners[i][axis] = aabb.Max[axis]
			} else {
				corners[i][axis] = aabb.Min[axis]
			}
		}
	}
	return corners
}
