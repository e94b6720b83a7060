package objfile

import (
	"strings"
	"testing"
)

func TestParseOversizedLine(t *testing.T) {
	defer func(n int) { maxLineSize = n }(maxLineSize)
	maxLineSize = 32
	src := "v 0 0 0\n# " + strings.Repeat("x", 200) + "\nv 1 0 0\nv 0 1 0 " + strings.Repeat(" ", 100) + "\nv 0 1 0\nf 1 2 3"
	m, err := Parse(strings.NewReader(src), 1)
	if err != nil {
		t.Fatal(err)
	}
	if m.Stats.OversizedLines != 2 {
		t.Errorf("want 2 oversized lines, got %d", m.Stats.OversizedLines)
	}
	if m.Stats.Lines != 6 {
		t.Errorf("want 6 lines, got %d", m.Stats.Lines)
	}
	if len(m.Vertices) != 3 || len(m.Triangles) != 1 {
		t.Fatalf("got %d vertices %d triangles", len(m.Vertices), len(m.Triangles))
	}
}

func TestParseVertexRejects(t *testing.T) {
	for _, s := range []string{"nan 0 0", "0 inf 0", "0 0 +Inf", "0x10 0 0", "1 2", "1 a 2"} {
		if _, ok := parseVertex(s); ok {
			t.Errorf("%q accepted", s)
		}
	}
	if v, ok := parseVertex("1e3 -2.5 .5 1"); !ok || v.X != 1000 || v.Y != -2.5 || v.Z != 0.5 {
		t.Errorf("valid vertex rejected: %v %v", v, ok)
	}
}
