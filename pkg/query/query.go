// Package query evaluates batches of collision queries against a set of
// volumes on a pool of workers.
package query

import (
	"errors"
	"fmt"

	"github.com/df07/go-collision-volumes/pkg/core"
	"github.com/df07/go-collision-volumes/pkg/volume"
)

// Kind selects what a query asks
type Kind int

const (
	Overlap  Kind = iota // Do A and B overlap
	Sweep                // First contact of A moving by Displacement against B
	Ray                  // Distance along the ray from Origin in Direction to A
	Cull                 // Classify B against the frustum A
	Contains             // Is Point inside A
	Closest              // Closest point of A to Point
)

var kindNames = [...]string{"overlap", "sweep", "ray", "cull", "contains", "closest"}

// String returns the scene file name of the kind
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind converts a query name back into a Kind
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown query kind %q", name)
}

var (
	// ErrMissingVolume is returned for a query without the volumes its kind needs
	ErrMissingVolume = errors.New("query: missing volume")
	// ErrNotFrustum is returned for a cull query whose first volume is not a frustum
	ErrNotFrustum = errors.New("query: cull needs a frustum")
)

// Query is a single question about one or two volumes
type Query struct {
	Name string
	Kind Kind
	A    volume.Volume
	B    volume.Volume

	Displacement core.Vec3 // Sweep
	Origin       core.Vec3 // Ray
	Direction    core.Vec3 // Ray
	Point        core.Vec3 // Contains, Closest
}

// Result is the answer to a query. Only the fields of the query's kind are set.
type Result struct {
	Index int
	Name  string
	Kind  Kind

	Hit         bool
	Fraction    float64
	Normal      core.Vec3
	Distance    float64
	Point       core.Vec3
	Containment volume.Containment
	Err         error
}

// Validate checks that the query has the volumes its kind needs
func (q Query) Validate() error {
	if q.A == nil {
		return fmt.Errorf("%s %q: %w", q.Kind, q.Name, ErrMissingVolume)
	}
	switch q.Kind {
	case Overlap, Sweep, Cull:
		if q.B == nil {
			return fmt.Errorf("%s %q: %w", q.Kind, q.Name, ErrMissingVolume)
		}
	}
	if q.Kind == Cull && frustumOf(q.A) == nil {
		return fmt.Errorf("%s %q: %w, got %s", q.Kind, q.Name, ErrNotFrustum, q.A.Kind())
	}
	return nil
}

// Evaluate answers the query on the calling goroutine
func (q Query) Evaluate() Result {
	result := Result{Name: q.Name, Kind: q.Kind}
	if err := q.Validate(); err != nil {
		result.Err = err
		return result
	}

	switch q.Kind {
	case Overlap:
		result.Hit = q.A.VolumeHitsVolume(q.B)
	case Sweep:
		impact := q.A.VolumeMoveHitsVolume(q.B, q.Displacement)
		result.Hit = impact.Hit
		result.Fraction = impact.Fraction
		result.Normal = impact.Normal
	case Ray:
		result.Distance, result.Hit = q.A.RayHitsVolume(q.Origin, q.Direction)
	case Cull:
		result.Containment = classify(frustumOf(q.A), q.B)
		result.Hit = result.Containment != volume.Outside
	case Contains:
		result.Hit = q.A.IsPointInside(q.Point)
	case Closest:
		result.Point = q.A.ClosestPointTo(q.Point)
		result.Normal = q.A.NormalAtPoint(q.Point)
		result.Distance = result.Point.Sub(q.Point).Len()
		result.Hit = result.Distance == 0
	default:
		result.Err = fmt.Errorf("query %q: unsupported kind %d", q.Name, int(q.Kind))
	}
	return result
}

// frustumVisitor picks out frustums
type frustumVisitor struct {
	volume.BaseVisitor
	frustum *volume.Frustum
}

func (f *frustumVisitor) VisitFrustum(frustum *volume.Frustum) { f.frustum = frustum }

// frustumOf returns v as a frustum, or nil for any other shape
func frustumOf(v volume.Volume) *volume.Frustum {
	visitor := &frustumVisitor{}
	if err := v.Visit(visitor); err != nil {
		return nil
	}
	return visitor.frustum
}

// cullVisitor classifies spheres and boxes directly and everything else by its enclosing box
type cullVisitor struct {
	volume.BaseVisitor
	frustum *volume.Frustum
	result  volume.Containment
	handled bool
}

func (c *cullVisitor) VisitSphere(s *volume.Sphere) {
	c.result, c.handled = c.frustum.IntersectSphere(s), true
}

func (c *cullVisitor) VisitBox(b *volume.Box) {
	c.result, c.handled = c.frustum.IntersectBox(b), true
}

func classify(f *volume.Frustum, v volume.Volume) volume.Containment {
	visitor := &cullVisitor{frustum: f}
	if err := v.Visit(visitor); err == nil && visitor.handled {
		return visitor.result
	}
	return f.IntersectBox(v.EnclosingBox())
}
