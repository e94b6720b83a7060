package objfile_test

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fogleman/fauxgl"
	"github.com/soypat/levelset/objfile"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestParseTriangle(t *testing.T) {
	m, err := objfile.Parse(strings.NewReader("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) != 3 {
		t.Fatalf("want 3 vertices, got %d", len(m.Vertices))
	}
	if len(m.Triangles) != 1 || m.Triangles[0] != [3]int{0, 1, 2} {
		t.Fatalf("want triangle (0,1,2), got %v", m.Triangles)
	}
	if m.Vertices[1] != (r3.Vec{X: 1}) {
		t.Errorf("vertex 1 = %v", m.Vertices[1])
	}
}

func TestParseScaleAndFan(t *testing.T) {
	const src = `# pentagon
v 0 0 0
v 1 0 0
v 1 1 0
v 0.5 1.5 0
v 0 1 0
vn 0 0 1
vt 0.5 0.5
f 1/1/1 2//1 3 4/2 5
`
	m, err := objfile.Parse(strings.NewReader(src), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Triangles) != 3 {
		t.Fatalf("5 corner face should fan into 3 triangles, got %d", len(m.Triangles))
	}
	want := [][3]int{{0, 1, 2}, {0, 2, 3}, {0, 3, 4}}
	for i := range want {
		if m.Triangles[i] != want[i] {
			t.Errorf("triangle %d: want %v, got %v", i, want[i], m.Triangles[i])
		}
	}
	if m.Vertices[3] != (r3.Vec{X: 1, Y: 3}) {
		t.Errorf("scale not applied: %v", m.Vertices[3])
	}
}

func TestParseNegativeIndices(t *testing.T) {
	const src = "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\nv 0 0 1\nf -4 -1 -2\n"
	m, err := objfile.Parse(strings.NewReader(src), 1)
	if err != nil {
		t.Fatal(err)
	}
	want := [][3]int{{0, 1, 2}, {0, 3, 2}}
	if len(m.Triangles) != len(want) {
		t.Fatalf("want %d triangles, got %d", len(want), len(m.Triangles))
	}
	for i := range want {
		if m.Triangles[i] != want[i] {
			t.Errorf("triangle %d: want %v, got %v", i, want[i], m.Triangles[i])
		}
	}
}

func TestParseLenient(t *testing.T) {
	const src = `v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 abc
v 1 1 0 1
vx 9 9 9
f 1 2 3
f 1 2
f 0 2 3 4
f 1 x 2 4
f 1 2 9
f -9 1 2
`
	m, err := objfile.Parse(strings.NewReader(src), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) != 4 {
		t.Fatalf("want 4 vertices, got %d", len(m.Vertices))
	}
	if m.Stats.SkippedVertices != 1 {
		t.Errorf("want 1 skipped vertex line, got %d", m.Stats.SkippedVertices)
	}
	// Valid: "f 1 2 3", "f 0 2 3 4" -> (1,2,3), "f 1 x 2 4" -> (0,1,3).
	want := [][3]int{{0, 1, 2}, {1, 2, 3}, {0, 1, 3}}
	if len(m.Triangles) != len(want) {
		t.Fatalf("want %d triangles, got %v", len(want), m.Triangles)
	}
	for i := range want {
		if m.Triangles[i] != want[i] {
			t.Errorf("triangle %d: want %v, got %v", i, want[i], m.Triangles[i])
		}
	}
	if m.Stats.DroppedFaces != 3 {
		t.Errorf("want 3 dropped faces, got %d", m.Stats.DroppedFaces)
	}
	for _, tri := range m.Triangles {
		for _, c := range tri {
			if c < 0 || c >= len(m.Vertices) {
				t.Fatalf("index %d out of range", c)
			}
		}
	}
}

func TestParseNonFiniteVertices(t *testing.T) {
	const src = "v nan 0 0\nv inf 1 1\nv 0 -Infinity 0\nv 0x1p-2 0 0\nv NaN NaN NaN\n" +
		"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	m, err := objfile.Parse(strings.NewReader(src), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) != 3 || m.Stats.SkippedVertices != 5 {
		t.Fatalf("want 3 vertices and 5 skipped, got %d and %d", len(m.Vertices), m.Stats.SkippedVertices)
	}
	if len(m.Triangles) != 1 || m.Triangles[0] != [3]int{0, 1, 2} {
		t.Errorf("want triangle (0,1,2), got %v", m.Triangles)
	}
	for i, v := range m.Vertices {
		if math.IsNaN(v.X+v.Y+v.Z) || math.IsInf(v.X+v.Y+v.Z, 0) {
			t.Errorf("vertex %d not finite: %v", i, v)
		}
	}
}

func TestParseScaleOverflow(t *testing.T) {
	const src = "v 1e308 0 0\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	m, err := objfile.Parse(strings.NewReader(src), 10)
	if err != nil {
		t.Fatal(err)
	}
	if m.Stats.SkippedVertices != 1 || m.Vertices[0] != (r3.Vec{}) {
		t.Errorf("overflowing vertex kept: %v, skipped %d", m.Vertices, m.Stats.SkippedVertices)
	}
}

func TestParseEmpty(t *testing.T) {
	for _, src := range []string{
		"",
		"# nothing\n",
		"v 0 0 0\nv 1 0 0\nv 0 1 0\n",
		"f 1 2 3\n",
	} {
		_, err := objfile.Parse(strings.NewReader(src), 1)
		if !errors.Is(err, objfile.ErrEmptyGeometry) {
			t.Errorf("%q: want ErrEmptyGeometry, got %v", src, err)
		}
	}
}

func TestParseFileMissing(t *testing.T) {
	_, err := objfile.ParseFile(filepath.Join(t.TempDir(), "missing.obj"), 1)
	if !errors.Is(err, objfile.ErrUnreadable) {
		t.Fatalf("want ErrUnreadable, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("want wrapped os.ErrNotExist, got %v", err)
	}
}

func TestFanTriangulate(t *testing.T) {
	for n := 0; n < 8; n++ {
		corners := make([]int, n)
		for i := range corners {
			corners[i] = i
		}
		got := objfile.FanTriangulate(corners)
		want := n - 2
		if want < 0 {
			want = 0
		}
		if len(got) != want {
			t.Errorf("%d corners: want %d triangles, got %d", n, want, len(got))
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	m := objfile.Mesh{
		Vertices:  []r3.Vec{{}, {X: 0.25}, {Y: -1.5e-3}, {X: 1, Y: 1, Z: 1}},
		Triangles: [][3]int{{0, 1, 2}, {1, 3, 2}},
	}
	var buf bytes.Buffer
	if err := objfile.Encode(&buf, m); err != nil {
		t.Fatal(err)
	}
	got, err := objfile.Parse(&buf, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Vertices) != len(m.Vertices) || len(got.Triangles) != len(m.Triangles) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	for i := range m.Vertices {
		if got.Vertices[i] != m.Vertices[i] {
			t.Errorf("vertex %d: want %v, got %v", i, m.Vertices[i], got.Vertices[i])
		}
	}
	m.Triangles = append(m.Triangles, [3]int{0, 1, 4})
	if err := objfile.Encode(&bytes.Buffer{}, m); err == nil {
		t.Error("expected error for out of range triangle")
	}
}

// Cross check triangle soup against fauxgl's loader.
func TestParseAgainstFauxgl(t *testing.T) {
	const src = `v -1 -1 -1
v 1 -1 -1
v 1 1 -1
v -1 1 -1
v -1 -1 1
v 1 -1 1
v 1 1 1
v -1 1 1
vn 0 0 1
f 1 4 3 2
f 5 6 7 8
f 1//1 2//1 6//1 5//1
f 2 3 7 6
f 3 4 8 7
f -4 -8 -5
f 4 1 8
`
	path := filepath.Join(t.TempDir(), "box.obj")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := objfile.ParseFile(path, 1)
	if err != nil {
		t.Fatal(err)
	}
	want, err := fauxgl.LoadOBJ(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Triangles) != len(want.Triangles) {
		t.Fatalf("fauxgl found %d triangles, got %d", len(want.Triangles), len(got.Triangles))
	}
	for i, ft := range want.Triangles {
		fv := [3]fauxgl.Vector{ft.V1.Position, ft.V2.Position, ft.V3.Position}
		for j, c := range got.Triangles[i] {
			v := got.Vertices[c]
			if v.X != fv[j].X || v.Y != fv[j].Y || v.Z != fv[j].Z {
				t.Errorf("triangle %d corner %d: fauxgl %v, got %v", i, j, fv[j], v)
			}
		}
	}
}
