package volume

import (
	"fmt"
	"math"

	"github.com/df07/go-collision-volumes/pkg/collision"
	"github.com/df07/go-collision-volumes/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

// Frustum plane indices
const (
	PlaneLeft = iota
	PlaneRight
	PlaneBottom
	PlaneTop
	PlaneNear
	PlaneFar
)

var planeNames = [6]string{"left", "right", "bottom", "top", "near", "far"}

// Frustum is the intersection of six half-spaces. Plane normals point inward:
// a point is inside when Normal·p >= Distance for every plane.
type Frustum struct {
	planes  [6]collision.Plane
	corners [8]core.Vec3
}

// NewFrustum creates the clip cube [-1, 1]³, the frustum of the identity matrix
func NewFrustum() *Frustum {
	f := &Frustum{}
	// The identity matrix is always a valid clip volume
	_ = f.SetFrustum(mgl64.Ident4())
	return f
}

// NewFrustumFromMatrix creates a frustum from a projection-view matrix; see SetFrustum
func NewFrustumFromMatrix(m mgl64.Mat4) (*Frustum, error) {
	f := &Frustum{}
	if err := f.SetFrustum(m); err != nil {
		return nil, err
	}
	return f, nil
}

// SetFrustum extracts the six planes from a matrix that maps world points,
// as column vectors, to OpenGL clip space: clip = m * [p, 1] is inside when
// -w <= x, y, z <= w. This is the product of mgl64.Perspective or mgl64.Ortho
// with a view matrix such as mgl64.LookAtV. With rows r0..r3 of m the planes
// are r3+r0 (left), r3-r0 (right), r3+r1 (bottom), r3-r1 (top), r3+r2 (near)
// and r3-r2 (far).
//
// A singular matrix returns ErrDegenerateFrustum. A matrix whose clip volume is
// empty or unbounded, as produced by a negated or w-flipped matrix, returns
// ErrFrustumConvention. Matrices using a [0, w] depth range are accepted but
// place the near plane at the depth where z = -w instead. The frustum is left
// unchanged on error.
func (f *Frustum) SetFrustum(m mgl64.Mat4) error {
	r0, r1, r2, r3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)
	rows := [6]mgl64.Vec4{r3.Add(r0), r3.Sub(r0), r3.Add(r1), r3.Sub(r1), r3.Add(r2), r3.Sub(r2)}

	var planes [6]collision.Plane
	for i, row := range rows {
		n := row.Vec3()
		length := n.Len()
		if length < core.SizeEpsilon {
			return fmt.Errorf("%s plane has no normal: %w", planeNames[i], ErrDegenerateFrustum)
		}
		planes[i] = collision.Plane{Normal: n.Mul(1 / length), Distance: -row.W() / length}
	}

	return f.setPlanes(planes)
}

// SetFrustumRays builds a perspective frustum from an apex and four corner
// rays whose tips span the far plane. The rays go counter-clockwise around the
// view direction: bottom-left, bottom-right, top-right, top-left. The near plane
// is perpendicular to the mean ray direction at distance near from the apex.
func (f *Frustum) SetFrustumRays(origin, r1, r2, r3, r4 core.Vec3, near float64) error {
	rays := [4]core.Vec3{r1, r2, r3, r4}

	sum := r1.Add(r2).Add(r3).Add(r4)
	if core.NearZero(sum) {
		return fmt.Errorf("corner rays cancel out: %w", ErrDegenerateFrustum)
	}
	axis := sum.Normalize()
	near = core.ClampNonNegative(near)

	var raw [8]core.Vec3
	for i, r := range rays {
		along := r.Dot(axis)
		if along <= near+core.SizeEpsilon {
			return fmt.Errorf("ray %d does not reach past the near plane: %w", i+1, ErrDegenerateFrustum)
		}
		raw[i] = origin.Add(r.Mul(near / along))
		raw[i+4] = origin.Add(r)
	}
	inside := centroid(raw[:])

	tips := raw[4:]
	var planes [6]collision.Plane
	sides := [4]int{PlaneBottom, PlaneRight, PlaneTop, PlaneLeft}
	for i, side := range sides {
		plane, ok := collision.NewPlaneFromPoints(origin, tips[i], tips[(i+1)%4])
		if !ok {
			return fmt.Errorf("%s plane: %w", planeNames[side], ErrDegenerateFrustum)
		}
		planes[side] = facing(plane, inside)
	}

	nearPoint := origin.Add(axis.Mul(near))
	planes[PlaneNear] = facing(collision.Plane{Normal: axis, Distance: axis.Dot(nearPoint)}, inside)

	far, ok := collision.NewPlaneFromPoints(tips[0], tips[1], tips[2])
	if !ok {
		return fmt.Errorf("far plane: %w", ErrDegenerateFrustum)
	}
	planes[PlaneFar] = facing(far, inside)

	return f.setPlanes(planes)
}

// SetFrustumBox builds an orthographic frustum by extruding the rectangle
// c1..c4 along its normal by depth. The corners go counter-clockwise seen
// from the extrusion side: bottom-left, bottom-right, top-right, top-left.
func (f *Frustum) SetFrustumBox(c1, c2, c3, c4 core.Vec3, depth float64) error {
	if depth <= core.SizeEpsilon {
		return fmt.Errorf("depth %g: %w", depth, ErrDegenerateFrustum)
	}
	base, ok := collision.NewPlaneFromPoints(c1, c2, c3)
	if !ok {
		return fmt.Errorf("rectangle corners are collinear: %w", ErrDegenerateFrustum)
	}
	n := base.Normal
	offset := n.Mul(depth)

	rect := [4]core.Vec3{c1, c2, c3, c4}
	var raw [8]core.Vec3
	for i, c := range rect {
		raw[i] = c
		raw[i+4] = c.Add(offset)
	}
	inside := centroid(raw[:])

	var planes [6]collision.Plane
	sides := [4]int{PlaneBottom, PlaneRight, PlaneTop, PlaneLeft}
	for i, side := range sides {
		edge := rect[(i+1)%4].Sub(rect[i])
		normal := edge.Cross(n)
		if normal.Len() < core.SizeEpsilon {
			return fmt.Errorf("%s edge is empty: %w", planeNames[side], ErrDegenerateFrustum)
		}
		normal = normal.Normalize()
		planes[side] = facing(collision.Plane{Normal: normal, Distance: normal.Dot(rect[i])}, inside)
	}
	planes[PlaneNear] = facing(base, inside)
	planes[PlaneFar] = facing(collision.Plane{Normal: n, Distance: n.Dot(c1.Add(offset))}, inside)

	return f.setPlanes(planes)
}

// setPlanes derives the corners and rejects plane sets that do not enclose a bounded region
func (f *Frustum) setPlanes(planes [6]collision.Plane) error {
	var corners [8]core.Vec3
	scale := 1.0
	for i := range corners {
		x := planes[PlaneLeft+(i&1)]
		y := planes[PlaneBottom+((i>>1)&1)]
		z := planes[PlaneNear+((i>>2)&1)]

		corner, ok := collision.IntersectPlanes(x, y, z)
		if !ok {
			return fmt.Errorf("corner %d: %w", i, ErrDegenerateFrustum)
		}
		corners[i] = corner
		scale = math.Max(scale, corner.Len())
	}

	// Every corner of a real frustum satisfies all six planes
	tolerance := core.Epsilon * scale
	for _, corner := range corners {
		for _, plane := range planes {
			if plane.SignedDistance(corner) < -tolerance {
				return ErrFrustumConvention
			}
		}
	}

	f.planes = planes
	f.corners = corners
	return nil
}

// facing flips a plane so that inside lies on its positive side
func facing(p collision.Plane, inside core.Vec3) collision.Plane {
	if p.SignedDistance(inside) < 0 {
		return p.Flip()
	}
	return p
}

func centroid(points []core.Vec3) core.Vec3 {
	var sum core.Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(points)))
}

// Planes returns the six planes indexed by PlaneLeft..PlaneFar
func (f *Frustum) Planes() [6]collision.Plane { return f.planes }

// Corners returns the eight corners. Bit 0 of the index selects right over
// left, bit 1 top over bottom and bit 2 far over near.
func (f *Frustum) Corners() [8]core.Vec3 { return f.corners }

func (f *Frustum) polytope() collision.Polytope {
	return collision.Polytope(f.corners[:])
}

// IntersectSphere classifies a sphere for culling
func (f *Frustum) IntersectSphere(s *Sphere) Containment {
	result := Inside
	for _, plane := range f.planes {
		d := plane.SignedDistance(s.center)
		if d < -s.radius {
			return Outside
		}
		if d < s.radius {
			result = Intersects
		}
	}
	return result
}

// IntersectBox classifies a box for culling
func (f *Frustum) IntersectBox(b *Box) Containment {
	result := Inside
	for _, plane := range f.planes {
		d := plane.SignedDistance(b.position)
		extent := b.ProjectExtends(plane.Normal)
		if d < -extent {
			return Outside
		}
		if d < extent {
			result = Intersects
		}
	}
	return result
}

// Kind implements Volume
func (f *Frustum) Kind() Kind { return KindFrustum }

// VolumeHitsVolume implements Volume
func (f *Frustum) VolumeHitsVolume(other Volume) bool {
	return other.FrustumHitsVolume(f)
}

// VolumeMoveHitsVolume implements Volume
func (f *Frustum) VolumeMoveHitsVolume(other Volume, displacement core.Vec3) Impact {
	return other.FrustumMoveHitsVolume(f, displacement)
}

// SphereHitsVolume rejects the sphere only when it lies fully behind one plane.
// Spheres near a corner outside the frustum can still be reported as hits.
func (f *Frustum) SphereHitsVolume(s *Sphere) bool {
	for _, plane := range f.planes {
		if plane.SignedDistance(s.center) < -s.radius-core.BoundaryEpsilon {
			return false
		}
	}
	return true
}

// BoxHitsVolume rejects the box only when its shadow on some plane normal lies
// fully outside. Like SphereHitsVolume it is conservative near corners.
func (f *Frustum) BoxHitsVolume(b *Box) bool {
	for _, plane := range f.planes {
		if plane.SignedDistance(b.position)+b.ProjectExtends(plane.Normal) < -core.BoundaryEpsilon {
			return false
		}
	}
	return true
}

// Pairs without a closed form test GJK distance on the support mappings
func (f *Frustum) CapsuleHitsVolume(c *Capsule) bool     { return convexOverlap(c, f) }
func (f *Frustum) CylinderHitsVolume(c *Cylinder) bool   { return convexOverlap(c, f) }
func (f *Frustum) TriangleHitsVolume(t *Triangle) bool   { return convexOverlap(t, f) }
func (f *Frustum) FrustumHitsVolume(other *Frustum) bool { return convexOverlap(other, f) }

// Swept pairs advance conservatively on GJK distance
func (f *Frustum) SphereMoveHitsVolume(s *Sphere, d core.Vec3) Impact       { return sweep(s, f, d) }
func (f *Frustum) BoxMoveHitsVolume(b *Box, d core.Vec3) Impact             { return sweep(b, f, d) }
func (f *Frustum) CapsuleMoveHitsVolume(c *Capsule, d core.Vec3) Impact     { return sweep(c, f, d) }
func (f *Frustum) CylinderMoveHitsVolume(c *Cylinder, d core.Vec3) Impact   { return sweep(c, f, d) }
func (f *Frustum) TriangleMoveHitsVolume(t *Triangle, d core.Vec3) Impact   { return sweep(t, f, d) }
func (f *Frustum) FrustumMoveHitsVolume(other *Frustum, d core.Vec3) Impact { return sweep(other, f, d) }

// Points and rays are cast against the shape
func (f *Frustum) PointMoveHitsVolume(point, d core.Vec3) Impact             { return pointSweep(f, point, d) }
func (f *Frustum) RayHitsVolume(origin, direction core.Vec3) (float64, bool) { return rayDistance(f, origin, direction) }

// EnclosingSphere is centered on the corner centroid
func (f *Frustum) EnclosingSphere() *Sphere {
	center := centroid(f.corners[:])
	radius := 0.0
	for _, c := range f.corners {
		radius = math.Max(radius, c.Sub(center).Len())
	}
	return NewSphere(center, radius)
}

// EnclosingBox implements Volume
func (f *Frustum) EnclosingBox() *Box {
	return boxFromBounds(core.NewAABBFromPoints(f.corners[:]...))
}

// IsPointInside checks the point against all six planes
func (f *Frustum) IsPointInside(point core.Vec3) bool {
	for _, plane := range f.planes {
		if plane.SignedDistance(point) < -core.BoundaryEpsilon {
			return false
		}
	}
	return true
}

// ClosestPointTo returns the exact nearest point of the corner hull
func (f *Frustum) ClosestPointTo(point core.Vec3) core.Vec3 {
	if f.IsPointInside(point) {
		return point
	}
	return collision.ClosestPoint(f.polytope(), point, point.Sub(centroid(f.corners[:])))
}

// NormalAtPoint returns the direction away from the frustum for outside
// points and the outward normal of the nearest plane otherwise.
func (f *Frustum) NormalAtPoint(point core.Vec3) core.Vec3 {
	if normal, ok := outwardNormal(f, point); ok {
		return normal
	}

	nearest := 0
	best := math.Inf(1)
	for i, plane := range f.planes {
		if d := plane.SignedDistance(point); d < best {
			nearest, best = i, d
		}
	}
	return f.planes[nearest].Normal.Mul(-1)
}

// Support implements Volume
func (f *Frustum) Support(dir core.Vec3) core.Vec3 {
	return f.polytope().Support(dir)
}

// Visit implements Volume
func (f *Frustum) Visit(v Visitor) error {
	if v == nil {
		return ErrNilVisitor
	}
	v.VisitFrustum(f)
	return nil
}

func (f *Frustum) raycast(ray core.Ray, tMax float64) (collision.RayHit, bool) {
	return collision.RayPlanes(ray, f.planes[:], tMax)
}
