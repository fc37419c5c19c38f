// Package volume implements the collision volumes: sphere, box, capsule,
// cylinder, triangle and frustum. Every pair of volumes can be tested for
// overlap and for first contact along a displacement through a two-stage
// dispatch: the first call names the receiver's concrete type on the argument,
// the second call runs the pair routine.
//
// Of each unordered pair, the shape that comes later in Kind order owns the
// math; the earlier one swaps the call. Swept results always report a normal
// pointing from the stationary volume into the moving one.
//
// Volumes are plain values mutated through setters. They carry no locks: read
// them from as many goroutines as needed, but never while one of them is being
// changed.
package volume

import (
	"errors"

	"github.com/df07/go-collision-volumes/pkg/collision"
	"github.com/df07/go-collision-volumes/pkg/core"
)

var (
	// ErrNilVolume is returned when a required volume argument is nil
	ErrNilVolume = errors.New("volume: nil volume")
	// ErrNilVisitor is returned by Visit when given a nil visitor
	ErrNilVisitor = errors.New("volume: nil visitor")
	// ErrDegenerateFrustum is returned when frustum planes or corners cannot be formed
	ErrDegenerateFrustum = errors.New("volume: degenerate frustum")
	// ErrFrustumConvention is returned when a matrix does not describe a bounded, non-empty clip volume
	ErrFrustumConvention = errors.New("volume: frustum matrix does not follow the clip-space convention")
)

// Kind identifies the concrete type of a volume. The order is the pair ownership order.
type Kind int

const (
	KindSphere Kind = iota
	KindBox
	KindCapsule
	KindCylinder
	KindTriangle
	KindFrustum
)

var kindNames = [...]string{"sphere", "box", "capsule", "cylinder", "triangle", "frustum"}

// String returns the lower-case shape name
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind converts a shape name back into a Kind
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Impact is the result of a swept query
type Impact struct {
	Fraction float64   // Fraction of the displacement travelled before contact, 1 when nothing is struck
	Normal   core.Vec3 // Contact normal, from the stationary volume toward the moving one
	Hit      bool
}

// NoImpact is the swept result when the displacement touches nothing
var NoImpact = Impact{Fraction: 1}

// Containment classifies a volume against a frustum
type Containment int

const (
	Outside Containment = iota
	Intersects
	Inside
)

// String returns the lower-case classification name
func (c Containment) String() string {
	switch c {
	case Outside:
		return "outside"
	case Intersects:
		return "intersects"
	case Inside:
		return "inside"
	}
	return "unknown"
}

// Volume is implemented by the six concrete shapes only.
//
// XHitsVolume(x) reports whether x overlaps the receiver. XMoveHitsVolume(x, d)
// translates x by d and reports where it first touches the stationary receiver.
type Volume interface {
	Kind() Kind

	// VolumeHitsVolume is the first dispatch stage of an overlap test
	VolumeHitsVolume(other Volume) bool
	// VolumeMoveHitsVolume sweeps the receiver by displacement against a stationary other
	VolumeMoveHitsVolume(other Volume, displacement core.Vec3) Impact

	SphereHitsVolume(s *Sphere) bool
	BoxHitsVolume(b *Box) bool
	CapsuleHitsVolume(c *Capsule) bool
	CylinderHitsVolume(c *Cylinder) bool
	TriangleHitsVolume(t *Triangle) bool
	FrustumHitsVolume(f *Frustum) bool

	SphereMoveHitsVolume(s *Sphere, displacement core.Vec3) Impact
	BoxMoveHitsVolume(b *Box, displacement core.Vec3) Impact
	CapsuleMoveHitsVolume(c *Capsule, displacement core.Vec3) Impact
	CylinderMoveHitsVolume(c *Cylinder, displacement core.Vec3) Impact
	TriangleMoveHitsVolume(t *Triangle, displacement core.Vec3) Impact
	FrustumMoveHitsVolume(f *Frustum, displacement core.Vec3) Impact

	// PointMoveHitsVolume sweeps a single point against the receiver
	PointMoveHitsVolume(point, displacement core.Vec3) Impact

	// EnclosingSphere and EnclosingBox return new volumes containing the receiver.
	// They are conservative, not minimal.
	EnclosingSphere() *Sphere
	EnclosingBox() *Box

	IsPointInside(point core.Vec3) bool
	// ClosestPointTo returns point itself when it is inside
	ClosestPointTo(point core.Vec3) core.Vec3
	NormalAtPoint(point core.Vec3) core.Vec3
	// RayHitsVolume returns the distance along the normalized direction to the
	// first point of the volume; an origin inside the volume is at distance 0.
	RayHitsVolume(origin, direction core.Vec3) (float64, bool)

	// Support returns the point of the volume furthest along dir
	Support(dir core.Vec3) core.Vec3

	Visit(v Visitor) error

	raycast(ray core.Ray, tMax float64) (collision.RayHit, bool)
}
