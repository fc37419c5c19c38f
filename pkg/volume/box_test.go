package volume

import (
	"math"
	"testing"

	"github.com/df07/go-collision-volumes/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

func TestBox_ProjectExtends(t *testing.T) {
	b := NewBox(core.NewVec3(3, 4, 5), core.NewVec3(1, 2, 3))

	if got := b.ProjectExtends(core.NewVec3(1, 0, 0)); got != 1 {
		t.Errorf("Expected 1, got %f", got)
	}
	if got := b.ProjectExtends(core.NewVec3(0, -1, 0)); got != 2 {
		t.Errorf("Expected 2, got %f", got)
	}

	// Rotated 90° around Z the X and Y extents swap
	b.SetOrientation(mgl64.QuatRotate(math.Pi/2, core.NewVec3(0, 0, 1)))
	if got := b.ProjectExtends(core.NewVec3(1, 0, 0)); math.Abs(got-2) > 1e-12 {
		t.Errorf("Expected 2 after rotation, got %f", got)
	}
}

func TestBox_SetHalfSizeClamps(t *testing.T) {
	b := NewBox(core.Vec3{}, core.NewVec3(1, 1, 1))
	b.SetHalfSize(core.NewVec3(-1, 2, 1e-15))
	if b.HalfSize() != core.NewVec3(0, 2, 0) {
		t.Errorf("Expected (0, 2, 0), got %v", b.HalfSize())
	}
}

func TestBox_Orientation(t *testing.T) {
	b := NewBox(core.NewVec3(1, 0, 0), core.NewVec3(1, 1, 1))
	if !b.IsAxisAligned() {
		t.Error("New box should be axis aligned")
	}

	q := mgl64.QuatRotate(math.Pi/2, core.NewVec3(0, 1, 0))
	b.SetOrientation(q)
	if b.IsAxisAligned() {
		t.Error("Rotated box should not be axis aligned")
	}

	// Axes follow the orientation
	axes := b.Axes()
	if !core.ApproxEqual(axes[0], core.NewVec3(0, 0, -1)) {
		t.Errorf("Expected local X along -Z, got %v", axes[0])
	}

	p := core.NewVec3(2, 3, -4)
	if back := b.LocalToWorld(b.WorldToLocal(p)); !core.ApproxEqual(back, p) {
		t.Errorf("Round trip changed the point: %v", back)
	}

	b.SetOrientation(mgl64.Quat{})
	if !b.IsAxisAligned() {
		t.Error("Zero quaternion should reset to identity")
	}
}

func TestBox_HitsBox(t *testing.T) {
	diagonal := mgl64.QuatRotate(math.Pi/4, core.NewVec3(0, 0, 1))
	tilted := mgl64.QuatRotate(math.Pi/3, core.NewVec3(1, 1, 0).Normalize())

	tests := []struct {
		name     string
		a, b     *Box
		expected bool
	}{
		{"Axis aligned overlap", NewBox(core.Vec3{}, core.NewVec3(1, 1, 1)), NewBox(core.NewVec3(1.5, 0.5, 0), core.NewVec3(1, 1, 1)), true},
		{"Axis aligned apart", NewBox(core.Vec3{}, core.NewVec3(1, 1, 1)), NewBox(core.NewVec3(2.5, 0, 0), core.NewVec3(1, 1, 1)), false},
		{"Face touching", NewBox(core.Vec3{}, core.NewVec3(1, 1, 1)), NewBox(core.NewVec3(0, 2, 0), core.NewVec3(1, 1, 1)), true},
		{"Rotated apart although bounds overlap", NewBox(core.Vec3{}, core.NewVec3(1, 1, 1)), NewOrientedBox(core.NewVec3(2.3, 2.3, 0), core.NewVec3(1, 1, 1), diagonal), false},
		{"Rotated overlap", NewBox(core.Vec3{}, core.NewVec3(1, 1, 1)), NewOrientedBox(core.NewVec3(1.5, 1.5, 0), core.NewVec3(1, 1, 1), diagonal), true},
		{"Both rotated nested", NewOrientedBox(core.Vec3{}, core.NewVec3(3, 3, 3), tilted), NewOrientedBox(core.NewVec3(0.5, 0, 0), core.NewVec3(0.2, 0.2, 0.2), diagonal), true},
		{"Flat boxes", NewBox(core.Vec3{}, core.NewVec3(1, 0, 1)), NewBox(core.NewVec3(0.5, 0, 0.5), core.NewVec3(1, 0, 1)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ab := tt.a.VolumeHitsVolume(tt.b)
			ba := tt.b.VolumeHitsVolume(tt.a)
			if ab != ba {
				t.Fatalf("Asymmetric result: %v vs %v", ab, ba)
			}
			if ab != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, ab)
			}
		})
	}
}

func TestBox_HitsSphere(t *testing.T) {
	b := NewOrientedBox(core.Vec3{}, core.NewVec3(1, 1, 1), mgl64.QuatRotate(math.Pi/4, core.NewVec3(0, 0, 1)))

	// The rotated corner reaches sqrt(2) along X
	if !NewSphere(core.NewVec3(1.9, 0, 0), 0.5).VolumeHitsVolume(b) {
		t.Error("Expected the sphere to touch the rotated corner")
	}
	if NewSphere(core.NewVec3(2.0, 0, 0), 0.5).VolumeHitsVolume(b) {
		t.Error("Expected the sphere to miss the rotated corner")
	}
}

func TestBox_ClosestPointAndNormal(t *testing.T) {
	b := NewBox(core.NewVec3(1, 1, 1), core.NewVec3(1, 2, 3))

	tests := []struct {
		name    string
		point   core.Vec3
		closest core.Vec3
		normal  core.Vec3
	}{
		{"Outside face", core.NewVec3(5, 1, 1), core.NewVec3(2, 1, 1), core.NewVec3(1, 0, 0)},
		{"Outside corner", core.NewVec3(-5, -5, 10), core.NewVec3(0, -1, 4), core.NewVec3(-5, -4, 6).Normalize()},
		{"Inside near top", core.NewVec3(1, 2.9, 1), core.NewVec3(1, 2.9, 1), core.NewVec3(0, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.ClosestPointTo(tt.point); !core.ApproxEqual(got, tt.closest) {
				t.Errorf("Expected closest %v, got %v", tt.closest, got)
			}
			if got := b.NormalAtPoint(tt.point); !core.ApproxEqual(got, tt.normal) {
				t.Errorf("Expected normal %v, got %v", tt.normal, got)
			}
		})
	}
}

func TestBox_RayHitsVolume(t *testing.T) {
	b := NewOrientedBox(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1), mgl64.QuatRotate(math.Pi/4, core.NewVec3(0, 1, 0)))

	// The rotated edge points along -Z at distance sqrt(2)
	dist, ok := b.RayHitsVolume(core.NewVec3(0, 0, -10), core.NewVec3(0, 0, 1))
	if !ok || math.Abs(dist-(10-math.Sqrt2)) > 1e-9 {
		t.Errorf("Expected distance %f, got %f (hit=%v)", 10-math.Sqrt2, dist, ok)
	}

	if _, ok := b.RayHitsVolume(core.NewVec3(0, 5, -10), core.NewVec3(0, 0, 1)); ok {
		t.Error("Expected a miss above the box")
	}

	impact := b.PointMoveHitsVolume(core.NewVec3(-10, 0, 0), core.NewVec3(20, 0, 0))
	if !impact.Hit || math.Abs(impact.Fraction-(10-math.Sqrt2)/20) > 1e-9 {
		t.Errorf("Unexpected point sweep %+v", impact)
	}
	if impact.Normal.X() >= 0 {
		t.Errorf("Expected the normal to face the incoming point, got %v", impact.Normal)
	}
}

func TestBox_MoveHitsBox(t *testing.T) {
	moving := NewBox(core.NewVec3(0, 5, 0), core.NewVec3(1, 1, 1))
	stationary := NewBox(core.Vec3{}, core.NewVec3(1, 1, 1))

	impact := moving.VolumeMoveHitsVolume(stationary, core.NewVec3(0, -6, 0))
	if !impact.Hit || math.Abs(impact.Fraction-0.5) > 1e-6 {
		t.Fatalf("Expected fraction 0.5, got %+v", impact)
	}
	if !impact.Normal.ApproxEqualThreshold(core.NewVec3(0, 1, 0), 1e-6) {
		t.Errorf("Expected normal (0, 1, 0), got %v", impact.Normal)
	}
}

func TestBox_EnclosingBoxOfRotated(t *testing.T) {
	b := NewOrientedBox(core.NewVec3(1, 0, 0), core.NewVec3(1, 1, 1), mgl64.QuatRotate(math.Pi/4, core.NewVec3(0, 0, 1)))
	e := b.EnclosingBox()
	if !e.IsAxisAligned() {
		t.Error("Expected an axis-aligned enclosing box")
	}
	expected := core.NewVec3(math.Sqrt2, math.Sqrt2, 1)
	if !core.ApproxEqual(e.HalfSize(), expected) {
		t.Errorf("Expected half size %v, got %v", expected, e.HalfSize())
	}
	for _, corner := range b.Corners() {
		if !e.IsPointInside(corner) {
			t.Errorf("Corner %v escapes the enclosing box", corner)
		}
	}
}
