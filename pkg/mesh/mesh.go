package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	"github.com/df07/go-collision-volumes/pkg/core"
	"github.com/df07/go-collision-volumes/pkg/volume"
)

// DefaultCells is the marching cubes resolution along the longest bounding box side
const DefaultCells = 64

// Mesh is a flat triangle list: three vertices, three normals and three indices per triangle
type Mesh struct {
	Name     string
	Vertices []core.Vec3
	Normals  []core.Vec3 // Face normal repeated for each corner
	Indices  []int
}

// TriangleCount returns the number of triangles in the mesh
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds returns the box around every vertex
func (m *Mesh) Bounds() core.AABB {
	return core.NewAABBFromPoints(m.Vertices...)
}

// Tessellate meshes a volume with the given number of marching cubes cells.
// Non-positive cells use DefaultCells.
func Tessellate(v volume.Volume, cells int) (*Mesh, error) {
	s, err := ToSDF(v)
	if err != nil {
		return nil, err
	}
	return tessellateSDF(s, cells), nil
}

func tessellateSDF(s sdf.SDF3, cells int) *Mesh {
	if cells <= 0 {
		cells = DefaultCells
	}

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	m := &Mesh{
		Vertices: make([]core.Vec3, 0, len(triangles)*3),
		Normals:  make([]core.Vec3, 0, len(triangles)*3),
		Indices:  make([]int, 0, len(triangles)*3),
	}
	for i, tri := range triangles {
		n := fromV3(tri.Normal())
		for j := 0; j < 3; j++ {
			m.Vertices = append(m.Vertices, fromV3(tri[j]))
			m.Normals = append(m.Normals, n)
			m.Indices = append(m.Indices, i*3+j)
		}
	}
	return m
}

// WriteSTL writes the meshes as one ASCII STL solid each
func WriteSTL(w io.Writer, meshes ...*Mesh) error {
	bw := bufio.NewWriter(w)
	for _, m := range meshes {
		name := m.Name
		if name == "" {
			name = "volume"
		}

		fmt.Fprintf(bw, "solid %s\n", name)
		for i := 0; i+2 < len(m.Indices); i += 3 {
			n := m.Normals[m.Indices[i]]
			fmt.Fprintf(bw, "  facet normal %g %g %g\n", n.X(), n.Y(), n.Z())
			fmt.Fprintf(bw, "    outer loop\n")
			for j := 0; j < 3; j++ {
				p := m.Vertices[m.Indices[i+j]]
				fmt.Fprintf(bw, "      vertex %g %g %g\n", p.X(), p.Y(), p.Z())
			}
			fmt.Fprintf(bw, "    endloop\n")
			fmt.Fprintf(bw, "  endfacet\n")
		}
		fmt.Fprintf(bw, "endsolid %s\n", name)
	}
	return bw.Flush()
}

// SaveSTL writes the meshes to an ASCII STL file
func SaveSTL(filename string, meshes ...*Mesh) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create STL file: %w", err)
	}

	if err := WriteSTL(file, meshes...); err != nil {
		file.Close()
		return fmt.Errorf("failed to write STL file: %w", err)
	}
	return file.Close()
}
