package loaders

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-collision-volumes/pkg/core"
)

// createTestPLY writes a binary unit square in the z=0 plane. With quad set the
// square is a single four-corner face, otherwise two triangles.
func createTestPLY(t *testing.T, order binary.ByteOrder, withNormals bool, quad bool) []byte {
	var buf bytes.Buffer

	format := "binary_little_endian"
	if order == binary.BigEndian {
		format = "binary_big_endian"
	}

	// Write PLY header
	buf.WriteString("ply\n")
	buf.WriteString("format " + format + " 1.0\n")
	buf.WriteString("element vertex 4\n")
	buf.WriteString("property float x\n")
	buf.WriteString("property float y\n")
	buf.WriteString("property float z\n")
	if withNormals {
		buf.WriteString("property float nx\n")
		buf.WriteString("property float ny\n")
		buf.WriteString("property float nz\n")
	}
	if quad {
		buf.WriteString("element face 1\n")
	} else {
		buf.WriteString("element face 2\n")
	}
	buf.WriteString("property list uchar int vertex_indices\n")
	buf.WriteString("end_header\n")

	vertices := [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	for _, v := range vertices {
		binary.Write(&buf, order, v)
		if withNormals {
			binary.Write(&buf, order, [3]float32{0, 0, 1})
		}
	}

	if quad {
		binary.Write(&buf, order, uint8(4))
		binary.Write(&buf, order, []int32{0, 1, 2, 3})
	} else {
		binary.Write(&buf, order, uint8(3))
		binary.Write(&buf, order, []int32{0, 1, 2})
		binary.Write(&buf, order, uint8(3))
		binary.Write(&buf, order, []int32{0, 2, 3})
	}

	return buf.Bytes()
}

func checkSquare(t *testing.T, data *PLYData) {
	t.Helper()

	expectedVertices := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(1, 1, 0),
		core.NewVec3(0, 1, 0),
	}
	if len(data.Vertices) != len(expectedVertices) {
		t.Fatalf("Expected %d vertices, got %d", len(expectedVertices), len(data.Vertices))
	}
	for i, expected := range expectedVertices {
		if !core.ApproxEqual(data.Vertices[i], expected) {
			t.Errorf("Vertex %d: expected %v, got %v", i, expected, data.Vertices[i])
		}
	}

	expectedFaces := []int{0, 1, 2, 0, 2, 3}
	if len(data.Faces) != len(expectedFaces) {
		t.Fatalf("Expected %d face indices, got %d", len(expectedFaces), len(data.Faces))
	}
	for i, expected := range expectedFaces {
		if data.Faces[i] != expected {
			t.Errorf("Face index %d: expected %d, got %d", i, expected, data.Faces[i])
		}
	}
}

func TestLoadPLY_Basic(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test_basic.ply")
	if err := os.WriteFile(testFile, createTestPLY(t, binary.LittleEndian, false, false), 0644); err != nil {
		t.Fatalf("Failed to create test PLY file: %v", err)
	}

	data, err := LoadPLY(testFile)
	if err != nil {
		t.Fatalf("Failed to load PLY: %v", err)
	}
	checkSquare(t, data)
}

func TestReadPLY_Formats(t *testing.T) {
	tests := []struct {
		name        string
		order       binary.ByteOrder
		withNormals bool
		quad        bool
	}{
		{"Little endian", binary.LittleEndian, false, false},
		{"Big endian", binary.BigEndian, false, false},
		{"Skips extra vertex properties", binary.LittleEndian, true, false},
		{"Quad is split into a fan", binary.BigEndian, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ReadPLY(bytes.NewReader(createTestPLY(t, tt.order, tt.withNormals, tt.quad)))
			if err != nil {
				t.Fatalf("Failed to read PLY: %v", err)
			}
			checkSquare(t, data)
		})
	}
}

func TestReadPLY_ASCII(t *testing.T) {
	content := `ply
format ascii 1.0
comment unit square with a pentagon fan
element vertex 5
property float x
property float y
property float z
property uchar red
element face 2
property uchar flags
property list uchar int vertex_indices
end_header
0 0 0 255
1 0 0 255
1 1 0 255
0 1 0 255

0.5 2 0 255
7 3 0 1 2
7 4 0 2 4 3
`
	data, err := ReadPLY(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Failed to read PLY: %v", err)
	}

	if len(data.Vertices) != 5 {
		t.Fatalf("Expected 5 vertices, got %d", len(data.Vertices))
	}
	if !core.ApproxEqual(data.Vertices[4], core.NewVec3(0.5, 2, 0)) {
		t.Errorf("Expected vertex 4 at (0.5, 2, 0), got %v", data.Vertices[4])
	}

	expectedFaces := []int{0, 1, 2, 0, 2, 4, 0, 4, 3}
	if len(data.Faces) != len(expectedFaces) {
		t.Fatalf("Expected %d face indices, got %d", len(expectedFaces), len(data.Faces))
	}
	for i, expected := range expectedFaces {
		if data.Faces[i] != expected {
			t.Errorf("Face index %d: expected %d, got %d", i, expected, data.Faces[i])
		}
	}
}

func TestReadPLY_Errors(t *testing.T) {
	header := "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\n" +
		"element face 1\nproperty list uchar int vertex_indices\nend_header\n"

	tests := []struct {
		name    string
		content string
	}{
		{"Missing magic", "format ascii 1.0\nend_header\n"},
		{"Unknown format", "ply\nformat binary_middle_endian 1.0\nend_header\n"},
		{"Missing position", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\nend_header\n0 0\n"},
		{"Unsupported element", "ply\nformat ascii 1.0\nelement edge 2\nproperty int vertex1\nend_header\n"},
		{"Bad property type", "ply\nformat ascii 1.0\nelement vertex 1\nproperty quad x\nend_header\n"},
		{"Truncated header", "ply\nformat ascii 1.0\nelement vertex 1\n"},
		{"Index out of range", header + "0 0 0\n1 0 0\n0 1 0\n3 0 1 3\n"},
		{"Too few corners", header + "0 0 0\n1 0 0\n0 1 0\n2 0 1\n"},
		{"Missing face", header + "0 0 0\n1 0 0\n0 1 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadPLY(strings.NewReader(tt.content)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}

	t.Run("Truncated binary body", func(t *testing.T) {
		content := createTestPLY(t, binary.LittleEndian, false, false)
		if _, err := ReadPLY(bytes.NewReader(content[:len(content)-6])); err == nil {
			t.Error("Expected error for truncated body, got nil")
		}
	})
}

func TestLoadPLY_NonExistentFile(t *testing.T) {
	_, err := LoadPLY("nonexistent.ply")
	if err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
}

func TestParsePLYHeader(t *testing.T) {
	headerContent := `ply
format binary_little_endian 1.0
comment Test PLY file
element vertex 100
property float nx
property float x
property float y
property float z
property uchar red
element face 50
property list uchar int vertex_indices
end_header
`
	header, err := parsePLYHeader(bufio.NewReader(strings.NewReader(headerContent)))
	if err != nil {
		t.Fatalf("Failed to parse header: %v", err)
	}

	if header.Format != "binary_little_endian" {
		t.Errorf("Expected format 'binary_little_endian', got '%s'", header.Format)
	}
	if header.Version != "1.0" {
		t.Errorf("Expected version '1.0', got '%s'", header.Version)
	}
	if header.VertexCount != 100 {
		t.Errorf("Expected 100 vertices, got %d", header.VertexCount)
	}
	if header.FaceCount != 50 {
		t.Errorf("Expected 50 faces, got %d", header.FaceCount)
	}
	if len(header.VertexProps) != 5 {
		t.Errorf("Expected 5 vertex properties, got %d", len(header.VertexProps))
	}
	if header.PositionIndices != [3]int{1, 2, 3} {
		t.Errorf("Expected position indices [1 2 3], got %v", header.PositionIndices)
	}
	if len(header.FaceProps) != 1 || !isFaceIndexList(header.FaceProps[0]) {
		t.Errorf("Expected a single vertex_indices list, got %v", header.FaceProps)
	}
}

func TestGetTypeSize(t *testing.T) {
	tests := []struct {
		dataType string
		expected int
	}{
		{"float", 4},
		{"float32", 4},
		{"int", 4},
		{"int32", 4},
		{"uint", 4},
		{"uint32", 4},
		{"double", 8},
		{"float64", 8},
		{"short", 2},
		{"int16", 2},
		{"ushort", 2},
		{"uint16", 2},
		{"char", 1},
		{"int8", 1},
		{"uchar", 1},
		{"uint8", 1},
		{"unknown", 0},
	}

	for _, test := range tests {
		result := getTypeSize(test.dataType)
		if result != test.expected {
			t.Errorf("getTypeSize(%s): expected %d, got %d", test.dataType, test.expected, result)
		}
	}
}

func TestPLYData_Triangles(t *testing.T) {
	data, err := ReadPLY(bytes.NewReader(createTestPLY(t, binary.LittleEndian, false, true)))
	if err != nil {
		t.Fatalf("Failed to read PLY: %v", err)
	}

	triangles := data.Triangles()
	if len(triangles) != 2 {
		t.Fatalf("Expected 2 triangles, got %d", len(triangles))
	}

	for i, tri := range triangles {
		if math.Abs(tri.Normal().Z()-1) > 1e-9 {
			t.Errorf("Triangle %d: expected normal (0,0,1), got %v", i, tri.Normal())
		}
		if !tri.IsPointInside(core.NewVec3(0.5, 0.5, 0)) {
			t.Errorf("Triangle %d: expected the square center on the triangle", i)
		}
	}
}
