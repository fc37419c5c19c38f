package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-collision-volumes/pkg/core"
	"github.com/df07/go-collision-volumes/pkg/volume"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format      string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version     string // Usually "1.0"
	VertexCount int
	FaceCount   int
	VertexProps []PLYProperty
	FaceProps   []PLYProperty

	// Indices of the x, y, z vertex properties, -1 when missing
	PositionIndices [3]int
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// PLYData is the triangle mesh loaded from a PLY file. Polygons with more than
// three corners are split into fans.
type PLYData struct {
	Vertices []core.Vec3 // Vertex positions
	Faces    []int       // Triangle indices, 3 per triangle
}

// LoadPLY loads the vertex positions and faces of a PLY file
func LoadPLY(filename string) (*PLYData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	return ReadPLY(file)
}

// ReadPLY reads a PLY stream in any of the three standard formats
func ReadPLY(r io.Reader) (*PLYData, error) {
	reader := bufio.NewReaderSize(r, 1024*1024)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var data *PLYData
	switch header.Format {
	case "binary_little_endian":
		data, err = readBinaryPLY(reader, header, binary.LittleEndian)
	case "binary_big_endian":
		data, err = readBinaryPLY(reader, header, binary.BigEndian)
	case "ascii":
		data, err = readASCIIPLY(reader, header)
	default:
		return nil, fmt.Errorf("unsupported PLY format: %q", header.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read PLY data: %w", err)
	}

	return data, nil
}

// Triangles converts the mesh into triangle volumes
func (d *PLYData) Triangles() []*volume.Triangle {
	triangles := make([]*volume.Triangle, 0, len(d.Faces)/3)
	for i := 0; i+2 < len(d.Faces); i += 3 {
		triangles = append(triangles, volume.NewTriangle(
			d.Vertices[d.Faces[i]], d.Vertices[d.Faces[i+1]], d.Vertices[d.Faces[i+2]]))
	}
	return triangles
}

// parsePLYHeader reads the header lines up to end_header, leaving the reader at the first data byte
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{PositionIndices: [3]int{-1, -1, -1}}

	var currentElement string
	first := true

	for {
		raw, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || raw == "") {
			return nil, fmt.Errorf("header ended early: %w", err)
		}
		line := strings.TrimSpace(raw)

		if first {
			if line != "ply" {
				return nil, fmt.Errorf("missing ply magic number")
			}
			first = false
			continue
		}
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) >= 3 {
				header.Format = parts[1]
				header.Version = parts[2]
			}
		case "comment", "obj_info":
			// Ignore comments
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element definition: %q", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}

			currentElement = parts[1]
			switch currentElement {
			case "vertex":
				header.VertexCount = count
			case "face":
				header.FaceCount = count
			default:
				if count > 0 {
					return nil, fmt.Errorf("unsupported element %q", currentElement)
				}
			}
		case "property":
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("failed to parse property: %w", err)
			}

			switch currentElement {
			case "vertex":
				header.VertexProps = append(header.VertexProps, prop)
				index := len(header.VertexProps) - 1
				switch prop.Name {
				case "x":
					header.PositionIndices[0] = index
				case "y":
					header.PositionIndices[1] = index
				case "z":
					header.PositionIndices[2] = index
				}
			case "face":
				header.FaceProps = append(header.FaceProps, prop)
			}
		}
	}

	for axis, index := range header.PositionIndices {
		if index < 0 && header.VertexCount > 0 {
			return nil, fmt.Errorf("vertex element has no %c property", "xyz"[axis])
		}
	}
	return header, nil
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, fmt.Errorf("invalid property definition")
	}

	prop := PLYProperty{}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, fmt.Errorf("invalid list property definition")
		}
		prop.IsList = true
		prop.ListType = parts[1]
		prop.DataType = parts[2]
		prop.Name = parts[3]
	} else {
		prop.Type = parts[0]
		prop.Name = parts[1]
	}

	if getTypeSize(prop.Type) == 0 && !prop.IsList {
		return PLYProperty{}, fmt.Errorf("unsupported data type: %s", prop.Type)
	}
	if prop.IsList && (getTypeSize(prop.ListType) == 0 || getTypeSize(prop.DataType) == 0) {
		return PLYProperty{}, fmt.Errorf("unsupported list types: %s %s", prop.ListType, prop.DataType)
	}
	return prop, nil
}

// isFaceIndexList reports whether a face property holds the corner indices
func isFaceIndexList(prop PLYProperty) bool {
	return prop.IsList && (prop.Name == "vertex_indices" || prop.Name == "vertex_index")
}

// readBinaryPLY reads the vertex and face elements of a binary PLY body
func readBinaryPLY(reader io.Reader, header *PLYHeader, order binary.ByteOrder) (*PLYData, error) {
	vertices := make([]core.Vec3, 0, header.VertexCount)
	faces := make([]int, 0, header.FaceCount*3) // Assuming triangular faces

	for i := 0; i < header.VertexCount; i++ {
		var vertex core.Vec3
		for j, prop := range header.VertexProps {
			if prop.IsList {
				if _, err := readBinaryList(reader, prop, order); err != nil {
					return nil, fmt.Errorf("failed to read vertex %d property %s: %w", i, prop.Name, err)
				}
				continue
			}
			value, err := readScalar(reader, prop.Type, order)
			if err != nil {
				return nil, fmt.Errorf("failed to read vertex %d property %s: %w", i, prop.Name, err)
			}
			for axis, index := range header.PositionIndices {
				if index == j {
					vertex[axis] = value
				}
			}
		}
		vertices = append(vertices, vertex)
	}

	for i := 0; i < header.FaceCount; i++ {
		for _, prop := range header.FaceProps {
			values, err := readBinaryList(reader, prop, order)
			if err != nil {
				return nil, fmt.Errorf("failed to read face %d property %s: %w", i, prop.Name, err)
			}
			if !isFaceIndexList(prop) {
				continue
			}
			if faces, err = appendFan(faces, values, len(vertices)); err != nil {
				return nil, fmt.Errorf("face %d: %w", i, err)
			}
		}
	}

	return &PLYData{Vertices: vertices, Faces: faces}, nil
}

// readBinaryList reads a list property, or a single scalar wrapped in a slice
func readBinaryList(reader io.Reader, prop PLYProperty, order binary.ByteOrder) ([]float64, error) {
	if !prop.IsList {
		value, err := readScalar(reader, prop.Type, order)
		return []float64{value}, err
	}

	count, err := readScalar(reader, prop.ListType, order)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("negative list length %v", count)
	}

	values := make([]float64, int(count))
	for k := range values {
		if values[k], err = readScalar(reader, prop.DataType, order); err != nil {
			return nil, err
		}
	}
	return values, nil
}

// readScalar reads one value of a PLY data type as float64
func readScalar(reader io.Reader, dataType string, order binary.ByteOrder) (float64, error) {
	var buf [8]byte
	size := getTypeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("unsupported data type: %s", dataType)
	}
	if _, err := io.ReadFull(reader, buf[:size]); err != nil {
		return 0, err
	}

	switch dataType {
	case "float", "float32":
		return float64(math.Float32frombits(order.Uint32(buf[:4]))), nil
	case "double", "float64":
		return math.Float64frombits(order.Uint64(buf[:8])), nil
	case "int", "int32":
		return float64(int32(order.Uint32(buf[:4]))), nil
	case "uint", "uint32":
		return float64(order.Uint32(buf[:4])), nil
	case "short", "int16":
		return float64(int16(order.Uint16(buf[:2]))), nil
	case "ushort", "uint16":
		return float64(order.Uint16(buf[:2])), nil
	case "char", "int8":
		return float64(int8(buf[0])), nil
	default: // uchar, uint8
		return float64(buf[0]), nil
	}
}

// readASCIIPLY reads the vertex and face lines of an ASCII PLY body
func readASCIIPLY(reader *bufio.Reader, header *PLYHeader) (*PLYData, error) {
	scanner := bufio.NewScanner(reader)
	next := func() ([]string, error) {
		for scanner.Scan() {
			if fields := strings.Fields(scanner.Text()); len(fields) > 0 {
				return fields, nil
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.ErrUnexpectedEOF
	}

	vertices := make([]core.Vec3, 0, header.VertexCount)
	for i := 0; i < header.VertexCount; i++ {
		fields, err := next()
		if err != nil {
			return nil, fmt.Errorf("failed to read vertex %d: %w", i, err)
		}
		var vertex core.Vec3
		for axis, index := range header.PositionIndices {
			if index >= len(fields) {
				return nil, fmt.Errorf("vertex %d has %d values", i, len(fields))
			}
			if vertex[axis], err = strconv.ParseFloat(fields[index], 64); err != nil {
				return nil, fmt.Errorf("vertex %d: %w", i, err)
			}
		}
		vertices = append(vertices, vertex)
	}

	faces := make([]int, 0, header.FaceCount*3)
	for i := 0; i < header.FaceCount; i++ {
		fields, err := next()
		if err != nil {
			return nil, fmt.Errorf("failed to read face %d: %w", i, err)
		}

		pos := 0
		for _, prop := range header.FaceProps {
			if !prop.IsList {
				pos++
				continue
			}
			if pos >= len(fields) {
				return nil, fmt.Errorf("face %d is missing property %s", i, prop.Name)
			}
			count, err := strconv.Atoi(fields[pos])
			if err != nil || count < 0 || pos+1+count > len(fields) {
				return nil, fmt.Errorf("face %d has an invalid %s list", i, prop.Name)
			}

			if isFaceIndexList(prop) {
				values := make([]float64, count)
				for k := range values {
					if values[k], err = strconv.ParseFloat(fields[pos+1+k], 64); err != nil {
						return nil, fmt.Errorf("face %d: %w", i, err)
					}
				}
				if faces, err = appendFan(faces, values, len(vertices)); err != nil {
					return nil, fmt.Errorf("face %d: %w", i, err)
				}
			}
			pos += 1 + count
		}
	}

	return &PLYData{Vertices: vertices, Faces: faces}, nil
}

// appendFan appends the polygon as a triangle fan around its first corner
func appendFan(faces []int, corners []float64, vertexCount int) ([]int, error) {
	if len(corners) < 3 {
		return nil, fmt.Errorf("polygon has %d corners", len(corners))
	}

	indices := make([]int, len(corners))
	for k, c := range corners {
		index := int(c)
		if index < 0 || index >= vertexCount {
			return nil, fmt.Errorf("vertex index %d out of range", index)
		}
		indices[k] = index
	}

	for k := 1; k+1 < len(indices); k++ {
		faces = append(faces, indices[0], indices[k], indices[k+1])
	}
	return faces, nil
}

// getTypeSize returns the size in bytes of a PLY data type, 0 when unknown
func getTypeSize(dataType string) int {
	switch dataType {
	case "float", "float32", "int", "int32", "uint", "uint32":
		return 4
	case "double", "float64":
		return 8
	case "short", "int16", "ushort", "uint16":
		return 2
	case "char", "int8", "uchar", "uint8":
		return 1
	default:
		return 0
	}
}
