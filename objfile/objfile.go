// Package objfile reads and writes the subset of the Wavefront OBJ polygon
// format made of vertex positions and polygonal faces. Normals, texture
// coordinates, groups and materials are skipped.
package objfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrUnreadable is returned when the polygon source cannot be opened or read.
	ErrUnreadable = errors.New("objfile: source unreadable")
	// ErrEmptyGeometry is returned when parsing yields no vertices or no triangles.
	ErrEmptyGeometry = errors.New("objfile: no vertices or no triangles")
)

// maxLineSize bounds the length of a single line. Longer lines are
// skipped and counted in Stats.OversizedLines.
var maxLineSize = 1 << 24

// Mesh is a triangle mesh read from a polygon file.
type Mesh struct {
	Vertices  []r3.Vec
	Triangles [][3]int
	Stats     Stats
}

// Stats counts the records seen while parsing.
type Stats struct {
	Lines int
	// SkippedVertices counts vertex lines with malformed coordinates.
	SkippedVertices int
	// DroppedCorners counts face tokens that did not resolve to a vertex.
	DroppedCorners int
	// DroppedFaces counts faces left with fewer than 3 corners.
	DroppedFaces int
	// OversizedLines counts lines longer than 16 MiB.
	OversizedLines int
}

// ParseFile opens path and parses it with Parse.
func ParseFile(path string, scale float64) (Mesh, error) {
	fp, err := os.Open(path)
	if err != nil {
		return Mesh{}, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer fp.Close()
	return Parse(fp, scale)
}

// Parse reads vertex ("v x y z") and face ("f i j k ...") records from r.
// Vertex coordinates are multiplied by scale. Faces are fan triangulated
// from their first corner. Positive face indices are 1-based, negative
// indices are relative to the vertices read so far. Tokens that do not
// resolve to a vertex are dropped and faces left with less than 3 corners
// are discarded. Vertices whose coordinates are not finite decimal numbers
// are skipped. Every other line is ignored.
func Parse(r io.Reader, scale float64) (Mesh, error) {
	var (
		m     Mesh
		faces [][]int
		buf   []byte
	)
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		raw, oversized, err := readLine(br, buf[:0])
		if err == io.EOF {
			break
		} else if err != nil {
			return Mesh{}, fmt.Errorf("%w: %w", ErrUnreadable, err)
		}
		buf = raw
		m.Stats.Lines++
		if oversized {
			m.Stats.OversizedLines++
			continue
		}
		if len(raw) < 2 {
			continue
		}
		line := string(raw)
		switch line[:2] {
		case "v ":
			v, ok := parseVertex(line[2:])
			if ok {
				v = r3.Scale(scale, v)
				ok = finite(v.X) && finite(v.Y) && finite(v.Z)
			}
			if !ok {
				m.Stats.SkippedVertices++
				continue
			}
			m.Vertices = append(m.Vertices, v)
		case "f ":
			face, dropped := parseFace(line[2:], len(m.Vertices))
			m.Stats.DroppedCorners += dropped
			faces = append(faces, face)
		}
	}
	for _, face := range faces {
		valid := face[:0]
		for _, c := range face {
			if c < len(m.Vertices) {
				valid = append(valid, c)
			} else {
				m.Stats.DroppedCorners++
			}
		}
		if len(valid) < 3 {
			m.Stats.DroppedFaces++
			continue
		}
		m.Triangles = append(m.Triangles, FanTriangulate(valid)...)
	}
	if len(m.Vertices) == 0 || len(m.Triangles) == 0 {
		return Mesh{}, ErrEmptyGeometry
	}
	return m, nil
}

// readLine reads one line without its terminator into dst. Lines longer
// than maxLineSize are consumed and reported as oversized with no content.
func readLine(br *bufio.Reader, dst []byte) (line []byte, oversized bool, err error) {
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if err == io.EOF && (len(dst) > 0 || oversized) {
				return dst, oversized, nil
			}
			return nil, false, err
		}
		if !oversized {
			if len(dst)+len(chunk) > maxLineSize {
				oversized = true
				dst = dst[:0]
			} else {
				dst = append(dst, chunk...)
			}
		}
		if !isPrefix {
			return dst, oversized, nil
		}
	}
}

// parseVertex parses the first three fields as decimal coordinates. Hex
// floats and the nan and inf spellings are rejected.
func parseVertex(s string) (v r3.Vec, ok bool) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return v, false
	}
	var xyz [3]float64
	for i := range xyz {
		if strings.ContainsAny(fields[i], "xXnN") {
			// Hex mantissas and nan, inf, infinity all carry one of these.
			return v, false
		}
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil || !finite(f) {
			return v, false
		}
		xyz[i] = f
	}
	return r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// parseFace resolves the vertex reference of every token. Only the
// segment before the first '/' is used.
func parseFace(s string, nverts int) (corners []int, dropped int) {
	for _, tok := range strings.Fields(s) {
		ref, _, _ := strings.Cut(tok, "/")
		if ref == "" {
			dropped++
			continue
		}
		idx, err := strconv.Atoi(ref)
		if err != nil {
			dropped++
			continue
		}
		v, ok := resolveIndex(idx, nverts)
		if !ok {
			dropped++
			continue
		}
		corners = append(corners, v)
	}
	return corners, dropped
}

// resolveIndex converts a face reference to a 0-based vertex index.
// nverts is the number of vertices read before the face.
func resolveIndex(idx, nverts int) (int, bool) {
	switch {
	case idx > 0:
		return idx - 1, true
	case idx < 0 && nverts+idx >= 0:
		return nverts + idx, true
	}
	return 0, false
}

// FanTriangulate splits a polygon with n >= 3 corners into n-2 triangles
// sharing the first corner: triangle i = (c[0], c[i], c[i+1]).
// Polygons with less than 3 corners yield no triangles.
func FanTriangulate(corners []int) [][3]int {
	if len(corners) < 3 {
		return nil
	}
	tris := make([][3]int, 0, len(corners)-2)
	for i := 1; i+1 < len(corners); i++ {
		tris = append(tris, [3]int{corners[0], corners[i], corners[i+1]})
	}
	return tris
}

// Encode writes m as vertex and triangle records.
func Encode(w io.Writer, m Mesh) error {
	bw := bufio.NewWriter(w)
	var buf []byte
	for _, v := range m.Vertices {
		buf = append(buf[:0], "v "...)
		buf = strconv.AppendFloat(buf, v.X, 'g', -1, 64)
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, v.Y, 'g', -1, 64)
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, v.Z, 'g', -1, 64)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	for i, t := range m.Triangles {
		buf = append(buf[:0], "f"...)
		for _, c := range t {
			if c < 0 || c >= len(m.Vertices) {
				return fmt.Errorf("triangle %d references vertex %d out of %d", i, c, len(m.Vertices))
			}
			buf = append(buf, ' ')
			buf = strconv.AppendInt(buf, int64(c+1), 10)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}
