package collision

import (
	"math"

	"github.com/df07/go-collision-volumes/pkg/core"
)

// Convex is any convex set described by its support mapping: the point of the set
// that lies furthest along dir.
type Convex interface {
	Support(dir core.Vec3) core.Vec3
}

// Point is a single point as a convex set
type Point core.Vec3

// Support implements Convex
func (p Point) Support(core.Vec3) core.Vec3 {
	return core.Vec3(p)
}

// Segment is a line segment as a convex set
type Segment struct {
	A, B core.Vec3
}

// Support implements Convex
func (s Segment) Support(dir core.Vec3) core.Vec3 {
	if s.B.Sub(s.A).Dot(dir) > 0 {
		return s.B
	}
	return s.A
}

// Polytope is the convex hull of a point cloud
type Polytope []core.Vec3

// Support implements Convex
func (p Polytope) Support(dir core.Vec3) core.Vec3 {
	best := p[0]
	bestDot := best.Dot(dir)
	for _, v := range p[1:] {
		if d := v.Dot(dir); d > bestDot {
			best, bestDot = v, d
		}
	}
	return best
}

// Ball is a sphere as a convex set
type Ball struct {
	Center core.Vec3
	Radius float64
}

// Support implements Convex
func (b Ball) Support(dir core.Vec3) core.Vec3 {
	return b.Center.Add(core.SafeNormalize(dir, core.NewVec3(1, 0, 0)).Mul(b.Radius))
}

// Translated offsets another convex set
type Translated struct {
	Shape  Convex
	Offset core.Vec3
}

// Support implements Convex
func (t Translated) Support(dir core.Vec3) core.Vec3 {
	return t.Shape.Support(dir).Add(t.Offset)
}

// Hull is the convex hull of two convex sets
type Hull struct {
	A, B Convex
}

// Support implements Convex
func (h Hull) Support(dir core.Vec3) core.Vec3 {
	a := h.A.Support(dir)
	b := h.B.Support(dir)
	if b.Dot(dir) > a.Dot(dir) {
		return b
	}
	return a
}

// Disc is a flat circular disc as a convex set
type Disc struct {
	Center core.Vec3
	Axis   core.Vec3 // Unit normal of the disc plane
	Radius float64
}

// Support implements Convex
func (d Disc) Support(dir core.Vec3) core.Vec3 {
	// Component of dir lying in the disc plane
	planar := dir.Sub(d.Axis.Mul(dir.Dot(d.Axis)))
	if planar.LenSqr() < core.SizeEpsilon*core.SizeEpsilon {
		return d.Center
	}
	return d.Center.Add(planar.Normalize().Mul(d.Radius))
}

// extent returns how far the convex set reaches along the unit direction
func extent(c Convex, dir core.Vec3) float64 {
	return c.Support(dir).Dot(dir)
}

// Separation returns the gap between two convex sets along the unit axis; negative means overlap
func Separation(a, b Convex, axis core.Vec3) float64 {
	aMax := extent(a, axis)
	aMin := -extent(a, axis.Mul(-1))
	bMax := extent(b, axis)
	bMin := -extent(b, axis.Mul(-1))
	return math.Max(bMin-aMax, aMin-bMax)
}
