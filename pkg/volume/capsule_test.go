package volume

import (
	"math"
	"testing"

	"github.com/df07/go-collision-volumes/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

func TestCapsule_Setters(t *testing.T) {
	c := NewCapsule(core.Vec3{}, 1, 0.5)
	if c.Tapered() {
		t.Error("New capsule should not be tapered")
	}

	c.SetTopRadius(0.25)
	if !c.Tapered() {
		t.Error("Different radii should taper the capsule")
	}

	c.SetBottomRadius(-3)
	if c.BottomRadius() != 0 {
		t.Errorf("Expected bottom radius 0, got %f", c.BottomRadius())
	}

	c.SetRadius(0.4)
	if c.Tapered() || c.TopRadius() != 0.4 || c.BottomRadius() != 0.4 {
		t.Errorf("SetRadius should remove the taper, got %f/%f", c.BottomRadius(), c.TopRadius())
	}

	c.SetHalfHeight(-1)
	if c.HalfHeight() != 0 {
		t.Errorf("Expected half height 0, got %f", c.HalfHeight())
	}
}

func TestCapsule_RadiusAt(t *testing.T) {
	c := NewCapsule(core.Vec3{}, 2, 1)
	c.SetTopRadius(0.5)

	tests := []struct {
		y        float64
		expected float64
	}{
		{-2, 1},
		{0, 0.75},
		{2, 0.5},
		{5, 0.5},
		{-9, 1},
	}
	for _, tt := range tests {
		if got := c.RadiusAt(tt.y); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("RadiusAt(%f): expected %f, got %f", tt.y, tt.expected, got)
		}
	}

	flat := NewCapsule(core.Vec3{}, 0, 1)
	flat.SetTopRadius(3)
	if got := flat.RadiusAt(0.5); got != 2 {
		t.Errorf("Expected constant radius 2 without height, got %f", got)
	}
}

func TestCapsule_IsPointInsideTapered(t *testing.T) {
	c := NewCapsule(core.Vec3{}, 1, 1)
	c.SetTopRadius(0.25)

	tests := []struct {
		name     string
		point    core.Vec3
		expected bool
	}{
		{"Inside bottom sphere", core.NewVec3(0.9, -1, 0), true},
		{"Outside near narrow top", core.NewVec3(0.9, 0.9, 0), false},
		{"Inside top sphere", core.NewVec3(0, 1.2, 0), true},
		{"Above top sphere", core.NewVec3(0, 1.3, 0), false},
		{"Below bottom sphere", core.NewVec3(0, -2.1, 0), false},
		{"Inside cone", core.NewVec3(0.5, 0, 0.1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsPointInside(tt.point); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestCapsule_HitsSphere(t *testing.T) {
	c := NewCapsule(core.NewVec3(0, 0, 0), 1, 0.5)
	c.SetOrientation(mgl64.QuatRotate(math.Pi/2, core.NewVec3(0, 0, 1)))

	// Lying along X from -1 to 1
	if !NewSphere(core.NewVec3(1.5, 0, 0), 0.1).VolumeHitsVolume(c) {
		t.Error("Expected a hit at the rounded end")
	}
	if NewSphere(core.NewVec3(0, 1.5, 0), 0.9).VolumeHitsVolume(c) {
		t.Error("Expected a miss beside the capsule")
	}
	if !NewSphere(core.NewVec3(0, 1.5, 0), 1.0).VolumeHitsVolume(c) {
		t.Error("Expected a touching sphere to hit")
	}
}

func TestCapsule_HitsCapsule(t *testing.T) {
	lying := mgl64.QuatRotate(math.Pi/2, core.NewVec3(0, 0, 1))

	tests := []struct {
		name     string
		position core.Vec3
		rotate   bool
		expected bool
	}{
		{"Parallel close", core.NewVec3(0.9, 0, 0), false, true},
		{"Parallel apart", core.NewVec3(1.1, 0, 0), false, false},
		{"Crossed touching", core.NewVec3(0, 0, 1), true, true},
		{"Crossed apart", core.NewVec3(0, 0, 1.01), true, false},
		{"End to end", core.NewVec3(0, 2.9, 0), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewCapsule(core.Vec3{}, 1, 0.5)
			b := NewCapsule(tt.position, 1, 0.5)
			if tt.rotate {
				b.SetOrientation(lying)
			}
			if got := a.VolumeHitsVolume(b); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
			if got := b.VolumeHitsVolume(a); got != tt.expected {
				t.Errorf("Reversed: expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestCapsule_TaperedHitsCapsule(t *testing.T) {
	a := NewCapsule(core.Vec3{}, 1, 1)
	a.SetTopRadius(0.2)

	// Beside the narrow top the gap is wide, beside the wide bottom it closes
	b := NewCapsule(core.NewVec3(1.5, 1, 0), 0, 0.2)
	if a.VolumeHitsVolume(b) {
		t.Error("Expected a miss beside the narrow end")
	}
	b.SetPosition(core.NewVec3(1.1, -1, 0))
	if !a.VolumeHitsVolume(b) {
		t.Error("Expected a hit beside the wide end")
	}
}

func TestCapsule_SphereSweep(t *testing.T) {
	c := NewCapsule(core.Vec3{}, 1, 0.5)
	s := NewSphere(core.NewVec3(5, 0, 0), 1)

	// Sphere moving onto the capsule
	impact := s.VolumeMoveHitsVolume(c, core.NewVec3(-10, 0, 0))
	if !impact.Hit || math.Abs(impact.Fraction-0.35) > 1e-9 {
		t.Fatalf("Expected fraction 0.35, got %+v", impact)
	}
	if !core.ApproxEqual(impact.Normal, core.NewVec3(1, 0, 0)) {
		t.Errorf("Expected normal (1, 0, 0), got %v", impact.Normal)
	}

	// Capsule moving onto the sphere goes through the mirrored routine
	mirrored := c.VolumeMoveHitsVolume(s, core.NewVec3(10, 0, 0))
	if !mirrored.Hit || math.Abs(mirrored.Fraction-0.35) > 1e-9 {
		t.Fatalf("Expected fraction 0.35, got %+v", mirrored)
	}
	if !core.ApproxEqual(mirrored.Normal, core.NewVec3(-1, 0, 0)) {
		t.Errorf("Expected normal (-1, 0, 0), got %v", mirrored.Normal)
	}

	// Falling onto the rounded top
	top := NewSphere(core.NewVec3(0, 10, 0), 0.5)
	impact = top.VolumeMoveHitsVolume(c, core.NewVec3(0, -10, 0))
	if !impact.Hit || math.Abs(impact.Fraction-0.8) > 1e-9 {
		t.Errorf("Expected fraction 0.8, got %+v", impact)
	}
}

func TestCapsule_ClosestPointTapered(t *testing.T) {
	c := NewCapsule(core.NewVec3(1, 1, 1), 1, 1)
	c.SetTopRadius(0.5)
	c.SetOrientation(mgl64.QuatRotate(0.7, core.NewVec3(1, 0, 1).Normalize()))

	for _, p := range []core.Vec3{
		core.NewVec3(5, 1, 1),
		core.NewVec3(1, 6, 1),
		core.NewVec3(1, -6, 1),
		core.NewVec3(-3, 2, 4),
	} {
		closest := c.ClosestPointTo(p)
		if !c.IsPointInside(closest) {
			t.Errorf("Closest point %v to %v is not inside", closest, p)
		}
		if d := math.Abs(c.SignedDistance(closest)); d > 1e-9 {
			t.Errorf("Closest point %v is %g off the surface", closest, d)
		}
	}
}
