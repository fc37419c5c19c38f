package volume

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-collision-volumes/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

// sampleVolumes returns one or more volumes of every kind spread around the origin.
// Some pairs overlap, none of them touch only at the boundary.
func sampleVolumes(t *testing.T) []Volume {
	t.Helper()

	box := NewBox(core.NewVec3(3, 0, 0), core.NewVec3(1, 1, 1))
	box.SetOrientation(mgl64.QuatRotate(math.Pi/6, core.NewVec3(0, 1, 0)))

	capsule := NewCapsule(core.NewVec3(0, 3, 0), 1, 0.5)
	capsule.SetTopRadius(0.3)
	capsule.SetOrientation(mgl64.QuatRotate(0.4, core.NewVec3(0, 0, 1)))

	cylinder := NewCylinder(core.NewVec3(3, 2.5, 0), 1, 0.8)
	cylinder.SetOrientation(mgl64.QuatRotate(math.Pi/2, core.NewVec3(1, 0, 0)))

	frustum := NewFrustum()
	err := frustum.SetFrustumRays(core.NewVec3(0, 0, 6),
		core.NewVec3(-1, -1, -4), core.NewVec3(1, -1, -4),
		core.NewVec3(1, 1, -4), core.NewVec3(-1, 1, -4), 0.5)
	if err != nil {
		t.Fatalf("Failed to build frustum: %v", err)
	}

	return []Volume{
		NewSphere(core.NewVec3(0, 0, 0), 1),
		NewSphere(core.NewVec3(2, 0, 0), 0.5),
		box,
		capsule,
		cylinder,
		NewTriangle(core.NewVec3(-3, -1, -1), core.NewVec3(-1, -1, 1), core.NewVec3(-2, 2, 0)),
		NewTriangle(core.NewVec3(-1, 2, -2), core.NewVec3(1, 2, -2), core.NewVec3(0, 4, 1)),
		frustum,
	}
}

func TestKind_StringAndParse(t *testing.T) {
	for k := KindSphere; k <= KindFrustum; k++ {
		parsed, ok := ParseKind(k.String())
		if !ok || parsed != k {
			t.Errorf("Expected %s to parse back, got %v (ok=%v)", k, parsed, ok)
		}
	}

	if Kind(42).String() != "unknown" {
		t.Errorf("Expected unknown, got %s", Kind(42))
	}
	if _, ok := ParseKind("teapot"); ok {
		t.Error("Expected teapot not to parse")
	}
	if Intersects.String() != "intersects" {
		t.Errorf("Expected intersects, got %s", Intersects)
	}
}

type kindCounter struct {
	BaseVisitor
	spheres   int
	triangles int
}

func (k *kindCounter) VisitSphere(*Sphere)     { k.spheres++ }
func (k *kindCounter) VisitTriangle(*Triangle) { k.triangles++ }

func TestVisit(t *testing.T) {
	volumes := sampleVolumes(t)

	counter := &kindCounter{}
	for _, v := range volumes {
		if err := v.Visit(counter); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !errors.Is(v.Visit(nil), ErrNilVisitor) {
			t.Errorf("Expected ErrNilVisitor from %s", v.Kind())
		}
	}

	if counter.spheres != 2 || counter.triangles != 2 {
		t.Errorf("Expected 2 spheres and 2 triangles, got %d and %d", counter.spheres, counter.triangles)
	}
}

func TestHits_NilVolumes(t *testing.T) {
	s := NewSphere(core.Vec3{}, 1)

	if _, err := Hits(s, nil); !errors.Is(err, ErrNilVolume) {
		t.Errorf("Expected ErrNilVolume, got %v", err)
	}
	if _, err := MoveHits(nil, s, core.NewVec3(1, 0, 0)); !errors.Is(err, ErrNilVolume) {
		t.Errorf("Expected ErrNilVolume, got %v", err)
	}

	hit, err := Hits(s, NewBox(core.NewVec3(1.5, 0, 0), core.NewVec3(1, 1, 1)))
	if err != nil || !hit {
		t.Errorf("Expected a hit without error, got %v, %v", hit, err)
	}
}

func TestHits_Symmetric(t *testing.T) {
	volumes := sampleVolumes(t)

	hits := 0
	for i, a := range volumes {
		for j, b := range volumes {
			if i == j {
				continue
			}
			ab := a.VolumeHitsVolume(b)
			if ba := b.VolumeHitsVolume(a); ab != ba {
				t.Errorf("%s[%d] vs %s[%d]: asymmetric result %v / %v", a.Kind(), i, b.Kind(), j, ab, ba)
			}
			if ab {
				hits++
			}
		}
	}

	if hits == 0 {
		t.Error("Expected some sample pairs to overlap")
	}
}

func TestHits_SelfOverlap(t *testing.T) {
	for _, v := range sampleVolumes(t) {
		if !v.VolumeHitsVolume(v) {
			t.Errorf("Expected %s to overlap itself", v.Kind())
		}
	}
}

func TestMoveHits_ZeroDisplacementMatchesHits(t *testing.T) {
	volumes := sampleVolumes(t)

	for i, a := range volumes {
		for j, b := range volumes {
			if i == j {
				continue
			}
			impact, err := MoveHits(a, b, core.Vec3{})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if impact.Hit != a.VolumeHitsVolume(b) {
				t.Errorf("%s[%d] -> %s[%d]: swept %v, static %v", a.Kind(), i, b.Kind(), j, impact.Hit, !impact.Hit)
			}
			if impact.Hit && impact.Fraction != 0 {
				t.Errorf("%s[%d] -> %s[%d]: expected fraction 0 for an overlap, got %f", a.Kind(), i, b.Kind(), j, impact.Fraction)
			}
			if !impact.Hit && impact.Fraction != 1 {
				t.Errorf("%s[%d] -> %s[%d]: expected fraction 1 without a hit, got %f", a.Kind(), i, b.Kind(), j, impact.Fraction)
			}
		}
	}
}

func TestMoveHits_MirroredSweepsAgree(t *testing.T) {
	volumes := sampleVolumes(t)

	for i, a := range volumes {
		for j, b := range volumes {
			if i == j {
				continue
			}
			d := centerOf(b).Sub(centerOf(a)).Mul(1.5)

			forward := a.VolumeMoveHitsVolume(b, d)
			backward := b.VolumeMoveHitsVolume(a, d.Mul(-1))

			if forward.Hit != backward.Hit {
				t.Errorf("%s[%d] -> %s[%d]: hit %v, mirrored %v", a.Kind(), i, b.Kind(), j, forward.Hit, backward.Hit)
				continue
			}
			if math.Abs(forward.Fraction-backward.Fraction) > 1e-5 {
				t.Errorf("%s[%d] -> %s[%d]: fraction %f, mirrored %f", a.Kind(), i, b.Kind(), j, forward.Fraction, backward.Fraction)
			}
			if forward.Hit && !forward.Normal.ApproxEqualThreshold(backward.Normal.Mul(-1), 1e-5) {
				t.Errorf("%s[%d] -> %s[%d]: normal %v, mirrored %v", a.Kind(), i, b.Kind(), j, forward.Normal, backward.Normal)
			}
		}
	}
}

func TestMoveHits_NormalsAreUnit(t *testing.T) {
	volumes := sampleVolumes(t)

	for i, a := range volumes {
		for j, b := range volumes {
			if i == j {
				continue
			}
			impact := a.VolumeMoveHitsVolume(b, centerOf(b).Sub(centerOf(a)).Mul(2))
			if impact.Hit && math.Abs(impact.Normal.Len()-1) > 1e-9 {
				t.Errorf("%s[%d] -> %s[%d]: normal %v is not unit length", a.Kind(), i, b.Kind(), j, impact.Normal)
			}
		}
	}
}

func TestClosestPointTo_IsInside(t *testing.T) {
	var points []core.Vec3
	for x := -4.0; x <= 4; x += 2 {
		for y := -4.0; y <= 4; y += 2 {
			for z := -4.0; z <= 8; z += 3 {
				points = append(points, core.NewVec3(x+0.1, y-0.2, z+0.3))
			}
		}
	}

	for _, v := range sampleVolumes(t) {
		for _, p := range points {
			closest := v.ClosestPointTo(p)
			if !v.IsPointInside(closest) {
				t.Errorf("%s: closest point %v to %v is not inside", v.Kind(), closest, p)
			}
			if v.IsPointInside(p) && closest != p {
				t.Errorf("%s: inside point %v moved to %v", v.Kind(), p, closest)
			}
		}
	}
}

func TestPointMoveHitsVolume(t *testing.T) {
	for _, v := range sampleVolumes(t) {
		center := centerOf(v)
		start := center.Add(core.NewVec3(0, 0, 20))

		impact := v.PointMoveHitsVolume(start, core.NewVec3(0, 0, -40))
		if !impact.Hit {
			t.Errorf("%s: expected the point to pass through the center", v.Kind())
			continue
		}

		hitPoint := start.Add(core.NewVec3(0, 0, -40).Mul(impact.Fraction))
		if !v.IsPointInside(hitPoint.Add(core.NewVec3(0, 0, -1e-7))) {
			t.Errorf("%s: expected %v to be on the surface", v.Kind(), hitPoint)
		}

		miss := v.PointMoveHitsVolume(start, core.NewVec3(0, 0, 5))
		if miss.Hit || miss.Fraction != 1 {
			t.Errorf("%s: expected no impact moving away, got %+v", v.Kind(), miss)
		}
	}
}

func TestEnclosing_ContainsVolume(t *testing.T) {
	for _, v := range sampleVolumes(t) {
		sphere := v.EnclosingSphere()
		box := v.EnclosingBox()
		if !box.IsAxisAligned() {
			t.Errorf("%s: enclosing box should be axis aligned", v.Kind())
		}

		for _, dir := range []core.Vec3{
			core.NewVec3(1, 0, 0), core.NewVec3(-1, 0, 0),
			core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0),
			core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1),
			core.NewVec3(1, 1, 1).Normalize(), core.NewVec3(-1, 2, -3).Normalize(),
		} {
			extreme := v.Support(dir)
			if !sphere.IsPointInside(extreme) {
				t.Errorf("%s: enclosing sphere misses %v", v.Kind(), extreme)
			}
			if !box.IsPointInside(extreme) {
				t.Errorf("%s: enclosing box misses %v", v.Kind(), extreme)
			}
		}
	}
}

func TestEnclosingOf(t *testing.T) {
	s := NewSphere(core.Vec3{}, 1)
	b := NewBox(core.NewVec3(3, 0, 0), core.NewVec3(1, 1, 1))

	box, err := EnclosingBoxOf(s, b)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !core.ApproxEqual(box.Center(), core.NewVec3(1.5, 0, 0)) || !core.ApproxEqual(box.HalfSize(), core.NewVec3(2.5, 1, 1)) {
		t.Errorf("Expected box (1.5, 0, 0) ± (2.5, 1, 1), got %v ± %v", box.Center(), box.HalfSize())
	}

	sphere, err := EnclosingSphereOf(s, b)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !core.ApproxEqual(sphere.Center(), core.NewVec3(1.5, 0, 0)) {
		t.Errorf("Expected sphere center (1.5, 0, 0), got %v", sphere.Center())
	}
	if expected := 1.5 + math.Sqrt(3); math.Abs(sphere.Radius()-expected) > 1e-9 {
		t.Errorf("Expected radius %f, got %f", expected, sphere.Radius())
	}

	if _, err := EnclosingBoxOf(); !errors.Is(err, ErrNilVolume) {
		t.Errorf("Expected ErrNilVolume for no volumes, got %v", err)
	}
	if _, err := EnclosingSphereOf(s, nil); !errors.Is(err, ErrNilVolume) {
		t.Errorf("Expected ErrNilVolume for a nil entry, got %v", err)
	}
}
