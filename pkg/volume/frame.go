package volume

import (
	"github.com/df07/go-collision-volumes/pkg/collision"
	"github.com/df07/go-collision-volumes/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

// frame is a position plus an orientation with its three cached unit axes.
// The axes are only ever written together with the orientation.
type frame struct {
	position    core.Vec3
	orientation core.Quat
	axes        [3]core.Vec3
}

func newFrame(position core.Vec3) frame {
	f := frame{position: position}
	f.setOrientation(mgl64.QuatIdent())
	return f
}

func (f *frame) setOrientation(q core.Quat) {
	if q.Len() < core.SizeEpsilon {
		q = mgl64.QuatIdent()
	}
	q = q.Normalize()

	f.orientation = q
	f.axes = [3]core.Vec3{
		q.Rotate(core.NewVec3(1, 0, 0)),
		q.Rotate(core.NewVec3(0, 1, 0)),
		q.Rotate(core.NewVec3(0, 0, 1)),
	}
}

// Orientation returns the unit orientation quaternion
func (f *frame) Orientation() core.Quat {
	return f.orientation
}

// SetOrientation replaces the orientation. A zero quaternion resets to identity.
func (f *frame) SetOrientation(q core.Quat) {
	f.setOrientation(q)
}

// Axes returns the local X, Y and Z axes in world space
func (f *frame) Axes() [3]core.Vec3 {
	return f.axes
}

// WorldToLocal maps a world point into the local frame
func (f *frame) WorldToLocal(p core.Vec3) core.Vec3 {
	return f.dirToLocal(p.Sub(f.position))
}

// LocalToWorld maps a local point into world space
func (f *frame) LocalToWorld(p core.Vec3) core.Vec3 {
	return f.position.Add(f.dirToWorld(p))
}

func (f *frame) dirToLocal(v core.Vec3) core.Vec3 {
	return core.NewVec3(v.Dot(f.axes[0]), v.Dot(f.axes[1]), v.Dot(f.axes[2]))
}

func (f *frame) dirToWorld(v core.Vec3) core.Vec3 {
	return f.axes[0].Mul(v.X()).Add(f.axes[1].Mul(v.Y())).Add(f.axes[2].Mul(v.Z()))
}

func (f *frame) rayToLocal(ray core.Ray) core.Ray {
	return core.NewRay(f.WorldToLocal(ray.Origin), f.dirToLocal(ray.Direction))
}

// hitToWorld maps a local ray hit back into world space
func (f *frame) hitToWorld(hit collision.RayHit) collision.RayHit {
	return collision.RayHit{T: hit.T, Point: f.LocalToWorld(hit.Point), Normal: f.dirToWorld(hit.Normal)}
}
