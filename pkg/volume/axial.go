package volume

import (
	"math"

	"github.com/df07/go-collision-volumes/pkg/collision"
	"github.com/df07/go-collision-volumes/pkg/core"
)

// axial is the shape model shared by capsules and cylinders: a local +Y axis
// through position, a half height, and independent bottom and top radii.
type axial struct {
	frame
	halfHeight   float64
	bottomRadius float64
	topRadius    float64
	tapered      bool
}

func newAxial(position core.Vec3, halfHeight, radius float64) axial {
	a := axial{frame: newFrame(position)}
	a.halfHeight = core.ClampNonNegative(halfHeight)
	a.SetRadius(radius)
	return a
}

func (a *axial) updateTapered() {
	a.tapered = math.Abs(a.topRadius-a.bottomRadius) > core.SizeEpsilon
}

// Position returns the center of the axis
func (a *axial) Position() core.Vec3 { return a.position }

// SetPosition moves the shape
func (a *axial) SetPosition(p core.Vec3) { a.position = p }

// HalfHeight returns half the distance between the two ends
func (a *axial) HalfHeight() float64 { return a.halfHeight }

// SetHalfHeight changes the half height; negative and tiny values become 0
func (a *axial) SetHalfHeight(h float64) { a.halfHeight = core.ClampNonNegative(h) }

// BottomRadius returns the radius at the -Y end
func (a *axial) BottomRadius() float64 { return a.bottomRadius }

// TopRadius returns the radius at the +Y end
func (a *axial) TopRadius() float64 { return a.topRadius }

// SetBottomRadius changes the radius at the -Y end
func (a *axial) SetBottomRadius(r float64) {
	a.bottomRadius = core.ClampNonNegative(r)
	a.updateTapered()
}

// SetTopRadius changes the radius at the +Y end
func (a *axial) SetTopRadius(r float64) {
	a.topRadius = core.ClampNonNegative(r)
	a.updateTapered()
}

// SetRadius sets both radii, removing any taper
func (a *axial) SetRadius(r float64) {
	r = core.ClampNonNegative(r)
	a.bottomRadius = r
	a.topRadius = r
	a.updateTapered()
}

// Tapered reports whether the two radii differ
func (a *axial) Tapered() bool { return a.tapered }

// MaxRadius returns the larger of the two radii
func (a *axial) MaxRadius() float64 { return math.Max(a.bottomRadius, a.topRadius) }

// RadiusAt interpolates the radius at local height y; heights outside the
// axis are clamped to its ends.
func (a *axial) RadiusAt(y float64) float64 {
	return a.truncatedCone().RadiusAt(y)
}

// Axis returns the world direction of the local +Y axis
func (a *axial) Axis() core.Vec3 { return a.axes[1] }

// SegmentEnds returns the world centers of the bottom and top ends
func (a *axial) SegmentEnds() (bottom, top core.Vec3) {
	offset := a.axes[1].Mul(a.halfHeight)
	return a.position.Sub(offset), a.position.Add(offset)
}

func (a *axial) truncatedCone() collision.TruncatedCone {
	return collision.TruncatedCone{HalfHeight: a.halfHeight, Bottom: a.bottomRadius, Top: a.topRadius}
}

// enclosingRadius bounds the shape from its center by Pythagoras
func (a *axial) enclosingRadius() float64 {
	return math.Hypot(a.halfHeight, a.MaxRadius())
}
