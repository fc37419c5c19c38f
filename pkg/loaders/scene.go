package loaders

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/df07/go-collision-volumes/pkg/core"
	"github.com/df07/go-collision-volumes/pkg/query"
	"github.com/df07/go-collision-volumes/pkg/volume"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// KindMesh is the scene kind for a PLY file loaded as a group of triangles
const KindMesh = "mesh"

// AllVolumes in a query's b field stands for every volume other than a
const AllVolumes = "*"

// SceneConfig is the YAML description of a set of volumes and the queries to run on them
//
// Example:
//
//	name: Falling ball
//	volumes:
//	  - name: ball
//	    kind: sphere
//	    position: [0, 5, 0]
//	    radius: 1
//	  - name: floor
//	    kind: box
//	    position: [0, -1, 0]
//	    halfSize: [10, 1, 10]
//	queries:
//	  - name: landing
//	    kind: sweep
//	    a: ball
//	    b: floor
//	    displacement: [0, -10, 0]
type SceneConfig struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Group       string         `yaml:"group"`
	Volumes     []VolumeConfig `yaml:"volumes"`
	Queries     []QueryConfig  `yaml:"queries"`
}

// VolumeConfig describes one volume. Which fields apply depends on Kind.
type VolumeConfig struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"` // sphere, box, capsule, cylinder, triangle, frustum or mesh

	Position    []float64          `yaml:"position"`
	Orientation *OrientationConfig `yaml:"orientation"` // box, capsule and cylinder

	Radius       float64   `yaml:"radius"`
	BottomRadius *float64  `yaml:"bottomRadius"` // capsule and cylinder, overrides radius
	TopRadius    *float64  `yaml:"topRadius"`    // capsule and cylinder, overrides radius
	HalfHeight   float64   `yaml:"halfHeight"`
	HalfSize     []float64 `yaml:"halfSize"`

	Corners [][]float64 `yaml:"corners"` // triangle: 3 corners; frustum: 4 rectangle corners
	Depth   float64     `yaml:"depth"`   // frustum extruded from corners

	Perspective *PerspectiveConfig `yaml:"perspective"`
	Ortho       *OrthoConfig       `yaml:"ortho"`
	Rays        *RaysConfig        `yaml:"rays"`

	File string `yaml:"file"` // mesh: PLY path relative to the scene file
}

// OrientationConfig is either an axis and an angle in degrees, or a unit quaternion [w, x, y, z]
type OrientationConfig struct {
	Axis       []float64 `yaml:"axis"`
	Angle      float64   `yaml:"angle"`
	Quaternion []float64 `yaml:"quaternion"`
}

// ViewConfig places a camera for the matrix-based frustums
type ViewConfig struct {
	Eye    []float64 `yaml:"eye"`
	Target []float64 `yaml:"target"`
	Up     []float64 `yaml:"up"` // Defaults to +Y
}

// PerspectiveConfig builds a frustum from mgl64.Perspective and mgl64.LookAtV
type PerspectiveConfig struct {
	ViewConfig `yaml:",inline"`
	FOV        float64 `yaml:"fov"`    // Vertical field of view in degrees
	Aspect     float64 `yaml:"aspect"` // Width over height, defaults to 1
	Near       float64 `yaml:"near"`
	Far        float64 `yaml:"far"`
}

// OrthoConfig builds a frustum from mgl64.Ortho and mgl64.LookAtV
type OrthoConfig struct {
	ViewConfig `yaml:",inline"`
	Left       float64 `yaml:"left"`
	Right      float64 `yaml:"right"`
	Bottom     float64 `yaml:"bottom"`
	Top        float64 `yaml:"top"`
	Near       float64 `yaml:"near"`
	Far        float64 `yaml:"far"`
}

// RaysConfig builds a frustum from an apex and four corner rays
type RaysConfig struct {
	Origin     []float64   `yaml:"origin"`
	Directions [][]float64 `yaml:"directions"` // bottom-left, bottom-right, top-right, top-left
	Near       float64     `yaml:"near"`
}

// QueryConfig describes one query. A and B name volumes; naming a mesh runs the
// query once per triangle, and B may be "*" for every other volume.
type QueryConfig struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"` // overlap, sweep, ray, cull, contains or closest
	A    string `yaml:"a"`
	B    string `yaml:"b"`

	Displacement []float64 `yaml:"displacement"`
	Origin       []float64 `yaml:"origin"`
	Direction    []float64 `yaml:"direction"`
	Point        []float64 `yaml:"point"`
}

// NamedVolume is a volume built from the scene file
type NamedVolume struct {
	Name   string
	Group  string // Name of the mesh a triangle came from
	Volume volume.Volume
}

// Scene is a loaded scene: its volumes in file order and the expanded queries
type Scene struct {
	Name        string
	Description string
	Volumes     []NamedVolume
	Queries     []query.Query
}

// Volume returns the volume with the given name
func (s *Scene) Volume(name string) (volume.Volume, bool) {
	for _, nv := range s.Volumes {
		if nv.Name == name {
			return nv.Volume, true
		}
	}
	return nil, false
}

// LoadScene reads, validates and builds a scene file
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}
	return ParseScene(data, filepath.Dir(path))
}

// ErrUnsafeMeshPath is returned when a restricted scene names a mesh file outside its base directory
var ErrUnsafeMeshPath = errors.New("mesh file must be a relative path inside the scene directory")

// ParseOption adjusts how ParseScene treats its input
type ParseOption func(*parseOptions)

type parseOptions struct {
	localFilesOnly bool
}

// LocalFilesOnly rejects mesh files that are absolute or escape baseDir.
// Use it for scenes from untrusted sources.
func LocalFilesOnly() ParseOption {
	return func(o *parseOptions) { o.localFilesOnly = true }
}

// ParseScene builds a scene from YAML. Mesh files are resolved against baseDir.
func ParseScene(data []byte, baseDir string, opts ...ParseOption) (*Scene, error) {
	var options parseOptions
	for _, opt := range opts {
		opt(&options)
	}

	var config SceneConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene: %w", err)
	}

	if options.localFilesOnly {
		for _, vc := range config.Volumes {
			if vc.Kind == KindMesh && !filepath.IsLocal(vc.File) {
				return nil, fmt.Errorf("invalid scene: mesh %q: %w", vc.Name, ErrUnsafeMeshPath)
			}
		}
	}

	scene, err := config.Build(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to build scene: %w", err)
	}
	return scene, nil
}

// vec3 converts a YAML list into a vector
func vec3(field string, values []float64) (core.Vec3, error) {
	if len(values) != 3 {
		return core.Vec3{}, fmt.Errorf("%s needs 3 components, got %d", field, len(values))
	}
	return core.NewVec3(values[0], values[1], values[2]), nil
}

// optionalVec3 is vec3 with a default for a missing field
func optionalVec3(field string, values []float64, fallback core.Vec3) (core.Vec3, error) {
	if values == nil {
		return fallback, nil
	}
	return vec3(field, values)
}

// Validate checks names, kinds and the fields each kind needs
func (c *SceneConfig) Validate() error {
	names := make(map[string]bool, len(c.Volumes))
	for i, v := range c.Volumes {
		if v.Name == "" {
			return fmt.Errorf("volume %d has no name", i)
		}
		if v.Name == AllVolumes {
			return fmt.Errorf("volume %d: %q is reserved", i, AllVolumes)
		}
		if names[v.Name] {
			return fmt.Errorf("duplicate volume name %q", v.Name)
		}
		names[v.Name] = true

		if err := v.Validate(); err != nil {
			return fmt.Errorf("volume %q: %w", v.Name, err)
		}
	}

	for i, q := range c.Queries {
		label := q.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		if err := q.Validate(names); err != nil {
			return fmt.Errorf("query %s: %w", label, err)
		}
	}
	return nil
}

// Validate checks the fields of a single volume
func (v *VolumeConfig) Validate() error {
	if v.Kind == KindMesh {
		if v.File == "" {
			return fmt.Errorf("mesh needs a file")
		}
		return nil
	}

	kind, ok := volume.ParseKind(v.Kind)
	if !ok {
		return fmt.Errorf("unknown kind %q", v.Kind)
	}

	if v.Orientation != nil {
		switch kind {
		case volume.KindBox, volume.KindCapsule, volume.KindCylinder:
			if err := v.Orientation.Validate(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("orientation is not supported for %s", kind)
		}
	}

	switch kind {
	case volume.KindSphere:
		if _, err := vec3("position", v.Position); err != nil {
			return err
		}
		if v.Radius < 0 {
			return fmt.Errorf("radius must be >= 0, got %g", v.Radius)
		}
	case volume.KindBox:
		if _, err := vec3("position", v.Position); err != nil {
			return err
		}
		halfSize, err := vec3("halfSize", v.HalfSize)
		if err != nil {
			return err
		}
		for axis := 0; axis < 3; axis++ {
			if halfSize[axis] < 0 {
				return fmt.Errorf("halfSize must be >= 0, got %v", v.HalfSize)
			}
		}
	case volume.KindCapsule, volume.KindCylinder:
		if _, err := vec3("position", v.Position); err != nil {
			return err
		}
		if v.HalfHeight < 0 || v.Radius < 0 {
			return fmt.Errorf("halfHeight and radius must be >= 0")
		}
		for _, r := range []*float64{v.BottomRadius, v.TopRadius} {
			if r != nil && *r < 0 {
				return fmt.Errorf("radii must be >= 0, got %g", *r)
			}
		}
	case volume.KindTriangle:
		if len(v.Corners) != 3 {
			return fmt.Errorf("triangle needs 3 corners, got %d", len(v.Corners))
		}
		for i, corner := range v.Corners {
			if _, err := vec3(fmt.Sprintf("corner %d", i), corner); err != nil {
				return err
			}
		}
	case volume.KindFrustum:
		return v.validateFrustum()
	}
	return nil
}

func (v *VolumeConfig) validateFrustum() error {
	modes := 0
	if v.Perspective != nil {
		modes++
	}
	if v.Ortho != nil {
		modes++
	}
	if v.Rays != nil {
		modes++
	}
	if v.Corners != nil {
		modes++
	}
	if modes != 1 {
		return fmt.Errorf("frustum needs exactly one of perspective, ortho, rays or corners, got %d", modes)
	}

	switch {
	case v.Perspective != nil:
		p := v.Perspective
		if p.FOV <= 0 || p.FOV >= 180 {
			return fmt.Errorf("fov must be between 0 and 180 degrees, got %g", p.FOV)
		}
		if p.Near <= 0 || p.Far <= p.Near {
			return fmt.Errorf("perspective needs 0 < near < far, got %g and %g", p.Near, p.Far)
		}
		return p.ViewConfig.validate()
	case v.Ortho != nil:
		o := v.Ortho
		if o.Right <= o.Left || o.Top <= o.Bottom || o.Far <= o.Near {
			return fmt.Errorf("ortho needs left < right, bottom < top and near < far")
		}
		return o.ViewConfig.validate()
	case v.Rays != nil:
		if _, err := vec3("origin", v.Rays.Origin); err != nil {
			return err
		}
		if len(v.Rays.Directions) != 4 {
			return fmt.Errorf("rays needs 4 directions, got %d", len(v.Rays.Directions))
		}
		for i, d := range v.Rays.Directions {
			if _, err := vec3(fmt.Sprintf("direction %d", i), d); err != nil {
				return err
			}
		}
	default:
		if len(v.Corners) != 4 {
			return fmt.Errorf("frustum box needs 4 corners, got %d", len(v.Corners))
		}
		for i, corner := range v.Corners {
			if _, err := vec3(fmt.Sprintf("corner %d", i), corner); err != nil {
				return err
			}
		}
		if v.Depth <= 0 {
			return fmt.Errorf("depth must be > 0, got %g", v.Depth)
		}
	}
	return nil
}

func (vc *ViewConfig) validate() error {
	if _, err := vec3("eye", vc.Eye); err != nil {
		return err
	}
	if _, err := vec3("target", vc.Target); err != nil {
		return err
	}
	_, err := optionalVec3("up", vc.Up, core.NewVec3(0, 1, 0))
	return err
}

func (vc *ViewConfig) matrix() mgl64.Mat4 {
	eye, _ := vec3("eye", vc.Eye)
	target, _ := vec3("target", vc.Target)
	up, _ := optionalVec3("up", vc.Up, core.NewVec3(0, 1, 0))
	return mgl64.LookAtV(eye, target, up)
}

// Validate checks that exactly one orientation form is given
func (o *OrientationConfig) Validate() error {
	switch {
	case o.Quaternion != nil && o.Axis != nil:
		return fmt.Errorf("orientation needs either axis and angle or a quaternion, not both")
	case o.Quaternion != nil:
		if len(o.Quaternion) != 4 {
			return fmt.Errorf("quaternion needs 4 components, got %d", len(o.Quaternion))
		}
	default:
		axis, err := vec3("axis", o.Axis)
		if err != nil {
			return err
		}
		if core.NearZero(axis) {
			return fmt.Errorf("rotation axis is zero")
		}
	}
	return nil
}

// Quat returns the orientation as a unit quaternion
func (o *OrientationConfig) Quat() core.Quat {
	if o.Quaternion != nil {
		q := o.Quaternion
		return mgl64.Quat{W: q[0], V: core.NewVec3(q[1], q[2], q[3])}.Normalize()
	}
	axis, _ := vec3("axis", o.Axis)
	return mgl64.QuatRotate(mgl64.DegToRad(o.Angle), axis.Normalize())
}

// Validate checks the query kind, the volumes it names and the vectors it needs
func (q *QueryConfig) Validate(names map[string]bool) error {
	kind, err := query.ParseKind(q.Kind)
	if err != nil {
		return err
	}

	if !names[q.A] {
		return fmt.Errorf("unknown volume %q", q.A)
	}

	needsB := kind == query.Overlap || kind == query.Sweep || kind == query.Cull
	switch {
	case needsB && q.B != AllVolumes && !names[q.B]:
		return fmt.Errorf("unknown volume %q", q.B)
	case !needsB && q.B != "":
		return fmt.Errorf("%s queries take a single volume", kind)
	}

	switch kind {
	case query.Sweep:
		_, err = vec3("displacement", q.Displacement)
	case query.Ray:
		if _, err = vec3("origin", q.Origin); err == nil {
			_, err = vec3("direction", q.Direction)
		}
	case query.Contains, query.Closest:
		_, err = vec3("point", q.Point)
	}
	return err
}

// Build turns a validated config into volumes and queries
func (c *SceneConfig) Build(baseDir string) (*Scene, error) {
	scene := &Scene{Name: c.Name, Description: c.Description}

	for _, vc := range c.Volumes {
		if vc.Kind == KindMesh {
			path := vc.File
			if !filepath.IsAbs(path) {
				path = filepath.Join(baseDir, path)
			}
			mesh, err := LoadPLY(path)
			if err != nil {
				return nil, fmt.Errorf("mesh %q: %w", vc.Name, err)
			}
			for i, tri := range mesh.Triangles() {
				scene.Volumes = append(scene.Volumes, NamedVolume{
					Name:   fmt.Sprintf("%s/%d", vc.Name, i),
					Group:  vc.Name,
					Volume: tri,
				})
			}
			continue
		}

		v, err := vc.Build()
		if err != nil {
			return nil, fmt.Errorf("volume %q: %w", vc.Name, err)
		}
		scene.Volumes = append(scene.Volumes, NamedVolume{Name: vc.Name, Volume: v})
	}

	for i, qc := range c.Queries {
		queries, err := scene.expand(qc, i)
		if err != nil {
			return nil, err
		}
		scene.Queries = append(scene.Queries, queries...)
	}
	return scene, nil
}

// Build creates the volume described by a validated, non-mesh config
func (v *VolumeConfig) Build() (volume.Volume, error) {
	kind, _ := volume.ParseKind(v.Kind)

	switch kind {
	case volume.KindSphere:
		position, _ := vec3("position", v.Position)
		return volume.NewSphere(position, v.Radius), nil
	case volume.KindBox:
		position, _ := vec3("position", v.Position)
		halfSize, _ := vec3("halfSize", v.HalfSize)
		box := volume.NewBox(position, halfSize)
		if v.Orientation != nil {
			box.SetOrientation(v.Orientation.Quat())
		}
		return box, nil
	case volume.KindCapsule:
		position, _ := vec3("position", v.Position)
		capsule := volume.NewCapsule(position, v.HalfHeight, v.Radius)
		v.applyRadii(capsule)
		if v.Orientation != nil {
			capsule.SetOrientation(v.Orientation.Quat())
		}
		return capsule, nil
	case volume.KindCylinder:
		position, _ := vec3("position", v.Position)
		cylinder := volume.NewCylinder(position, v.HalfHeight, v.Radius)
		v.applyRadii(cylinder)
		if v.Orientation != nil {
			cylinder.SetOrientation(v.Orientation.Quat())
		}
		return cylinder, nil
	case volume.KindTriangle:
		a, _ := vec3("corner", v.Corners[0])
		b, _ := vec3("corner", v.Corners[1])
		c, _ := vec3("corner", v.Corners[2])
		return volume.NewTriangle(a, b, c), nil
	case volume.KindFrustum:
		return v.buildFrustum()
	}
	return nil, fmt.Errorf("unknown kind %q", v.Kind)
}

// radiusSetter is implemented by capsules and cylinders
type radiusSetter interface {
	SetBottomRadius(r float64)
	SetTopRadius(r float64)
}

func (v *VolumeConfig) applyRadii(shape radiusSetter) {
	if v.BottomRadius != nil {
		shape.SetBottomRadius(*v.BottomRadius)
	}
	if v.TopRadius != nil {
		shape.SetTopRadius(*v.TopRadius)
	}
}

func (v *VolumeConfig) buildFrustum() (*volume.Frustum, error) {
	switch {
	case v.Perspective != nil:
		p := v.Perspective
		aspect := p.Aspect
		if aspect <= 0 {
			aspect = 1
		}
		projection := mgl64.Perspective(mgl64.DegToRad(p.FOV), aspect, p.Near, p.Far)
		return volume.NewFrustumFromMatrix(projection.Mul4(p.matrix()))
	case v.Ortho != nil:
		o := v.Ortho
		projection := mgl64.Ortho(o.Left, o.Right, o.Bottom, o.Top, o.Near, o.Far)
		return volume.NewFrustumFromMatrix(projection.Mul4(o.matrix()))
	case v.Rays != nil:
		origin, _ := vec3("origin", v.Rays.Origin)
		var dirs [4]core.Vec3
		for i := range dirs {
			dirs[i], _ = vec3("direction", v.Rays.Directions[i])
		}
		f := volume.NewFrustum()
		if err := f.SetFrustumRays(origin, dirs[0], dirs[1], dirs[2], dirs[3], v.Rays.Near); err != nil {
			return nil, err
		}
		return f, nil
	default:
		var corners [4]core.Vec3
		for i := range corners {
			corners[i], _ = vec3("corner", v.Corners[i])
		}
		f := volume.NewFrustum()
		if err := f.SetFrustumBox(corners[0], corners[1], corners[2], corners[3], v.Depth); err != nil {
			return nil, err
		}
		return f, nil
	}
}

// resolve returns the volumes a query name stands for: a single volume, or
// every triangle of a mesh.
func (s *Scene) resolve(name string) []NamedVolume {
	var found []NamedVolume
	for _, nv := range s.Volumes {
		if nv.Name == name || nv.Group == name {
			found = append(found, nv)
		}
	}
	return found
}

// expand turns one query config into queries over every volume pair it names
func (s *Scene) expand(qc QueryConfig, index int) ([]query.Query, error) {
	kind, _ := query.ParseKind(qc.Kind)

	name := qc.Name
	if name == "" {
		name = fmt.Sprintf("%s-%d", kind, index)
	}

	template := query.Query{Name: name, Kind: kind}
	template.Displacement, _ = optionalVec3("displacement", qc.Displacement, core.Vec3{})
	template.Origin, _ = optionalVec3("origin", qc.Origin, core.Vec3{})
	template.Direction, _ = optionalVec3("direction", qc.Direction, core.Vec3{})
	template.Point, _ = optionalVec3("point", qc.Point, core.Vec3{})

	as := s.resolve(qc.A)
	if len(as) == 0 {
		return nil, fmt.Errorf("query %s: volume %q is empty", name, qc.A)
	}

	var bs []NamedVolume
	switch qc.B {
	case "":
		bs = []NamedVolume{{}}
	case AllVolumes:
		bs = s.Volumes
	default:
		if bs = s.resolve(qc.B); len(bs) == 0 {
			return nil, fmt.Errorf("query %s: volume %q is empty", name, qc.B)
		}
	}

	multiple := len(as) > 1 || len(bs) > 1
	var queries []query.Query
	for _, a := range as {
		for _, b := range bs {
			if b.Volume != nil && b.Volume == a.Volume {
				continue
			}
			q := template
			q.A, q.B = a.Volume, b.Volume
			if multiple {
				q.Name = fmt.Sprintf("%s %s", name, a.Name)
				if b.Volume != nil {
					q.Name = fmt.Sprintf("%s %s/%s", name, a.Name, b.Name)
				}
			}
			queries = append(queries, q)
		}
	}
	return queries, nil
}
