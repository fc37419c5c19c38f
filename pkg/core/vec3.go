package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Tolerances shared by every volume query
const (
	// DirectionEpsilon is the length below which a direction vector is treated as degenerate
	DirectionEpsilon = 1e-5
	// SizeEpsilon is the magnitude below which radii, half sizes and heights snap to zero
	SizeEpsilon = 1e-12
	// Epsilon is the general float equality tolerance
	Epsilon = 1e-6
	// BoundaryEpsilon is the slack allowed on inside tests so surface points count as inside
	BoundaryEpsilon = 1e-9
)

// Vec3 is the double precision vector used throughout the module
type Vec3 = mgl64.Vec3

// Quat is the orientation type used throughout the module
type Quat = mgl64.Quat

// NewVec3 creates a new Vec3
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// ClampNonNegative snaps negative values and magnitudes below SizeEpsilon to zero
func ClampNonNegative(v float64) float64 {
	if v < SizeEpsilon {
		return 0
	}
	return v
}

// ClampNonNegativeVec applies ClampNonNegative to each component
func ClampNonNegativeVec(v Vec3) Vec3 {
	return Vec3{ClampNonNegative(v[0]), ClampNonNegative(v[1]), ClampNonNegative(v[2])}
}

// Clamp returns x limited to [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	return max(lo, min(hi, x))
}

// NearZero reports whether the vector is shorter than DirectionEpsilon
func NearZero(v Vec3) bool {
	return v.LenSqr() < DirectionEpsilon*DirectionEpsilon
}

// SafeNormalize returns a unit vector in the direction of v, or fallback when v is degenerate
func SafeNormalize(v, fallback Vec3) Vec3 {
	lenSq := v.LenSqr()
	if lenSq < SizeEpsilon*SizeEpsilon {
		return fallback
	}
	return v.Mul(1.0 / math.Sqrt(lenSq))
}

// AbsVec returns the component-wise absolute value
func AbsVec(v Vec3) Vec3 {
	return Vec3{math.Abs(v[0]), math.Abs(v[1]), math.Abs(v[2])}
}

// Basis builds two unit vectors that form an orthonormal basis together with the unit vector n
func Basis(n Vec3) (tangent, bitangent Vec3) {
	// Find a vector that is not parallel to n
	var nt Vec3
	if math.Abs(n.X()) > 0.1 {
		nt = NewVec3(0, 1, 0)
	} else {
		nt = NewVec3(1, 0, 0)
	}

	tangent = nt.Cross(n).Normalize()
	bitangent = n.Cross(tangent)
	return tangent, bitangent
}

// AnyPerpendicular returns a unit vector perpendicular to v
func AnyPerpendicular(v Vec3) Vec3 {
	t, _ := Basis(SafeNormalize(v, NewVec3(0, 1, 0)))
	return t
}

// ApproxEqual reports whether two vectors agree within Epsilon per component
func ApproxEqual(a, b Vec3) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > Epsilon {
			return false
		}
	}
	return true
}
