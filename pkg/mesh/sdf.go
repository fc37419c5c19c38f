// Package mesh turns volumes into triangle meshes for inspection in external
// viewers. Each volume becomes an sdfx signed distance field that is
// tessellated with marching cubes.
package mesh

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/df07/go-collision-volumes/pkg/core"
	"github.com/df07/go-collision-volumes/pkg/volume"
)

// DefaultThickness is the thickness given to volumes with no interior of
// their own: triangles, zero-radius spheres and capsules, flat boxes and cylinders
const DefaultThickness = 0.02

func toV3(v core.Vec3) v3.Vec   { return v3.Vec{X: v.X(), Y: v.Y(), Z: v.Z()} }
func fromV3(v v3.Vec) core.Vec3 { return core.NewVec3(v.X, v.Y, v.Z) }

// boundsOf converts a volume's enclosing box into an sdfx bounding box, padded by pad
func boundsOf(v volume.Volume, pad float64) sdf.Box3 {
	bounds := v.EnclosingBox().Bounds()
	margin := core.NewVec3(pad, pad, pad)
	return sdf.Box3{Min: toV3(bounds.Min.Sub(margin)), Max: toV3(bounds.Max.Add(margin))}
}

// placement maps the sdfx primitive frame onto a volume's frame. sdfx
// cylinders run along Z, so yUp first turns Z onto the local +Y axis.
func placement(position core.Vec3, orientation core.Quat, yUp bool) sdf.M44 {
	m := sdf.Translate3d(toV3(position))

	q := orientation.Normalize()
	if s := math.Sqrt(math.Max(0, 1-q.W*q.W)); s > core.DirectionEpsilon {
		angle := 2 * math.Acos(core.Clamp(q.W, -1, 1))
		m = m.Mul(sdf.Rotate3d(toV3(q.V.Mul(1/s)), angle))
	}

	if yUp {
		m = m.Mul(sdf.RotateX(-math.Pi / 2))
	}
	return m
}

// distanceField is an sdf.SDF3 backed by a volume's own distance function
type distanceField struct {
	distance func(p core.Vec3) float64
	bounds   sdf.Box3
}

func (d *distanceField) Evaluate(p v3.Vec) float64 { return d.distance(fromV3(p)) }
func (d *distanceField) BoundingBox() sdf.Box3     { return d.bounds }

// sdfBuilder converts volumes one shape at a time
type sdfBuilder struct {
	thickness float64
	result    sdf.SDF3
	err       error
}

// shell thickens a volume without interior into a solid of the builder's
// thickness around its closest points. sdfx primitives reject zero sizes.
func (b *sdfBuilder) shell(v volume.Volume) {
	half := b.thickness / 2
	b.result = &distanceField{
		distance: func(p core.Vec3) float64 {
			return v.ClosestPointTo(p).Sub(p).Len() - half
		},
		bounds: boundsOf(v, half),
	}
}

func (b *sdfBuilder) VisitSphere(s *volume.Sphere) {
	if s.Radius() == 0 {
		b.shell(s)
		return
	}
	sphere, err := sdf.Sphere3D(s.Radius())
	if err != nil {
		b.err = fmt.Errorf("sphere: %w", err)
		return
	}
	b.result = sdf.Transform3D(sphere, sdf.Translate3d(toV3(s.Center())))
}

func (b *sdfBuilder) VisitBox(box *volume.Box) {
	if h := box.HalfSize(); h[0] == 0 || h[1] == 0 || h[2] == 0 {
		b.shell(box)
		return
	}
	local, err := sdf.Box3D(toV3(box.HalfSize().Mul(2)), 0)
	if err != nil {
		b.err = fmt.Errorf("box: %w", err)
		return
	}
	b.result = sdf.Transform3D(local, placement(box.Center(), box.Orientation(), false))
}

func (b *sdfBuilder) VisitCapsule(c *volume.Capsule) {
	if c.Tapered() {
		b.result = &distanceField{distance: c.SignedDistance, bounds: boundsOf(c, 0)}
		return
	}

	// A cylinder rounded by its full radius is a capsule
	r := c.BottomRadius()
	if r == 0 {
		b.shell(c)
		return
	}
	local, err := sdf.Cylinder3D(2*(c.HalfHeight()+r), r, r)
	if err != nil {
		b.err = fmt.Errorf("capsule: %w", err)
		return
	}
	b.result = sdf.Transform3D(local, placement(c.Position(), c.Orientation(), true))
}

func (b *sdfBuilder) VisitCylinder(c *volume.Cylinder) {
	if c.HalfHeight() == 0 || c.MaxRadius() == 0 {
		b.shell(c)
		return
	}

	var local sdf.SDF3
	var err error
	if c.Tapered() {
		local, err = sdf.Cone3D(2*c.HalfHeight(), c.BottomRadius(), c.TopRadius(), 0)
	} else {
		local, err = sdf.Cylinder3D(2*c.HalfHeight(), c.BottomRadius(), 0)
	}
	if err != nil {
		b.err = fmt.Errorf("cylinder: %w", err)
		return
	}
	b.result = sdf.Transform3D(local, placement(c.Position(), c.Orientation(), true))
}

func (b *sdfBuilder) VisitTriangle(t *volume.Triangle) { b.shell(t) }

func (b *sdfBuilder) VisitFrustum(f *volume.Frustum) {
	planes := f.Planes()
	b.result = &distanceField{
		distance: func(p core.Vec3) float64 {
			// Exact inside, a lower bound on the distance outside
			d := math.Inf(-1)
			for _, plane := range planes {
				d = math.Max(d, -plane.SignedDistance(p))
			}
			return d
		},
		bounds: boundsOf(f, 0),
	}
}

// ToSDF converts a volume into a signed distance field. Volumes without
// interior are given DefaultThickness.
func ToSDF(v volume.Volume) (sdf.SDF3, error) {
	return toSDF(v, DefaultThickness)
}

func toSDF(v volume.Volume, thickness float64) (sdf.SDF3, error) {
	if v == nil {
		return nil, volume.ErrNilVolume
	}
	builder := &sdfBuilder{thickness: thickness}
	if err := v.Visit(builder); err != nil {
		return nil, err
	}
	if builder.err != nil {
		return nil, builder.err
	}
	return builder.result, nil
}
