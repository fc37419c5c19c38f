package server

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/df07/go-collision-volumes/pkg/core"
	"github.com/df07/go-collision-volumes/pkg/loaders"
	"github.com/df07/go-collision-volumes/pkg/volume"
)

// InspectResponse represents the JSON response for volume inspection
type InspectResponse struct {
	Hit        bool                   `json:"hit"`
	Volume     string                 `json:"volume"`
	Kind       string                 `json:"kind"`
	Point      [3]float64             `json:"point"`
	Normal     [3]float64             `json:"normal"`
	Distance   float64                `json:"distance"`
	Inside     bool                   `json:"inside"` // Ray started inside the volume
	Properties map[string]interface{} `json:"properties"`
}

// propertyVisitor extracts the defining parameters of each shape
type propertyVisitor struct {
	properties map[string]interface{}
}

func vec(v core.Vec3) [3]float64 {
	return [3]float64{v.X(), v.Y(), v.Z()}
}

func quat(q core.Quat) [4]float64 {
	return [4]float64{q.W, q.V.X(), q.V.Y(), q.V.Z()}
}

func (p *propertyVisitor) VisitSphere(s *volume.Sphere) {
	p.properties["center"] = vec(s.Center())
	p.properties["radius"] = s.Radius()
}

func (p *propertyVisitor) VisitBox(b *volume.Box) {
	p.properties["center"] = vec(b.Center())
	p.properties["halfSize"] = vec(b.HalfSize())
	p.properties["orientation"] = quat(b.Orientation())
	p.properties["axisAligned"] = b.IsAxisAligned()
}

func (p *propertyVisitor) VisitCapsule(c *volume.Capsule) {
	bottom, top := c.SegmentEnds()
	p.properties["bottomCenter"] = vec(bottom)
	p.properties["topCenter"] = vec(top)
	p.properties["bottomRadius"] = c.BottomRadius()
	p.properties["topRadius"] = c.TopRadius()
	p.properties["tapered"] = c.Tapered()
}

func (p *propertyVisitor) VisitCylinder(c *volume.Cylinder) {
	bottom, top := c.SegmentEnds()
	p.properties["baseCenter"] = vec(bottom)
	p.properties["topCenter"] = vec(top)
	p.properties["baseRadius"] = c.BottomRadius()
	p.properties["topRadius"] = c.TopRadius()
	if c.TopRadius() == 0 {
		p.properties["type"] = "pointed"
	} else if c.Tapered() {
		p.properties["type"] = "frustum"
	}
}

func (p *propertyVisitor) VisitTriangle(t *volume.Triangle) {
	corners := t.Corners()
	p.properties["corners"] = [3][3]float64{vec(corners[0]), vec(corners[1]), vec(corners[2])}
	p.properties["normal"] = vec(t.Normal())
}

func (p *propertyVisitor) VisitFrustum(f *volume.Frustum) {
	var corners [8][3]float64
	for i, c := range f.Corners() {
		corners[i] = vec(c)
	}
	p.properties["corners"] = corners
}

// extractVolumeInfo returns the kind and parameters of a volume plus its enclosing shapes
func extractVolumeInfo(v volume.Volume) (string, map[string]interface{}) {
	visitor := &propertyVisitor{properties: make(map[string]interface{})}
	v.Visit(visitor)

	bounds := v.EnclosingBox().Bounds()
	visitor.properties["boundingBox"] = map[string]interface{}{
		"min": vec(bounds.Min),
		"max": vec(bounds.Max),
	}
	sphere := v.EnclosingSphere()
	visitor.properties["boundingSphere"] = map[string]interface{}{
		"center": vec(sphere.Center()),
		"radius": sphere.Radius(),
	}
	return v.Kind().String(), visitor.properties
}

// inspectRay casts a ray through every volume of the scene and returns the nearest one hit
func inspectRay(scene *loaders.Scene, origin, direction core.Vec3) InspectResponse {
	best := math.Inf(1)
	var nearest *loaders.NamedVolume
	for i := range scene.Volumes {
		nv := &scene.Volumes[i]
		if distance, hit := nv.Volume.RayHitsVolume(origin, direction); hit && distance < best {
			best, nearest = distance, nv
		}
	}

	if nearest == nil {
		return InspectResponse{Hit: false}
	}

	point := origin.Add(direction.Normalize().Mul(best))
	kind, properties := extractVolumeInfo(nearest.Volume)
	if nearest.Group != "" {
		properties["mesh"] = nearest.Group
	}

	return InspectResponse{
		Hit:        true,
		Volume:     nearest.Name,
		Kind:       kind,
		Point:      vec(point),
		Normal:     vec(nearest.Volume.NormalAtPoint(point)),
		Distance:   best,
		Inside:     best == 0,
		Properties: properties,
	}
}

// parseVecParam parses a comma separated vector parameter
func parseVecParam(values url.Values, key string, defaultValue core.Vec3) (core.Vec3, error) {
	value := values.Get(key)
	if value == "" {
		return defaultValue, nil
	}

	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return core.Vec3{}, fmt.Errorf("invalid %s: %s", key, value)
	}
	var v core.Vec3
	for i, part := range parts {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return core.Vec3{}, fmt.Errorf("invalid %s: %s", key, value)
		}
		v[i] = parsed
	}
	return v, nil
}

// handleInspect handles ray casting inspection requests against a stored scene
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	origin, err := parseVecParam(r.URL.Query(), "origin", core.Vec3{})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	direction, err := parseVecParam(r.URL.Query(), "direction", core.NewVec3(0, 0, -1))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if core.NearZero(direction) {
		writeError(w, http.StatusBadRequest, "direction must not be zero")
		return
	}

	scene, err := s.loadStoredScene(r.URL.Query().Get("scene"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, inspectRay(scene, origin, direction))
}
