package render

import (
	"errors"
	"math"

	"github.com/soypat/levelset"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrAdaptivity is returned for adaptivity values outside [0, 1].
	ErrAdaptivity = errors.New("adaptivity must be within [0, 1]")
	// ErrNilGrid is returned when no grid is given.
	ErrNilGrid = errors.New("nil grid")
)

// VolumeToMesh extracts the isovalue level of g as a polygon mesh using dual
// contouring over active voxels. Every pair of neighbouring active voxels
// whose values straddle isovalue yields one quad joining the four cells
// sharing that voxel edge, facing toward the greater value. Each cell gets
// one vertex at the mean of its edge crossings.
//
// Adaptivity of 0 returns the quad mesh. Greater values return a triangle
// mesh decimated with quadric error metrics: at 1 about a tenth of the
// triangles remain.
func VolumeToMesh(g *levelset.Grid, isovalue, adaptivity float64) (Mesh, error) {
	if g == nil {
		return Mesh{}, ErrNilGrid
	}
	if !(adaptivity >= 0 && adaptivity <= 1) {
		return Mesh{}, ErrAdaptivity
	}
	if math.IsNaN(isovalue) || math.IsInf(isovalue, 0) {
		return Mesh{}, errors.New("isovalue must be finite")
	}
	dc := dualContour{
		g:     g,
		iso:   isovalue,
		cells: make(map[levelset.Coord]int),
	}
	g.ForEachActive(func(c levelset.Coord, v float32) bool {
		dc.visit(c, float64(v))
		return true
	})
	m := Mesh{Points: dc.points, Quads: dc.quads}
	if adaptivity > 0 && len(m.Quads) > 0 {
		m = simplifyMesh(m, adaptivity)
	}
	return m, nil
}

// dualAxes lists for every voxel edge axis a the axes b, c spanned by its
// dual quad, ordered so that b × c = a.
var dualAxes = [3][3]int{{0, 1, 2}, {1, 2, 0}, {2, 0, 1}}

// cellEdges are the 12 edges of a cell as pairs of corner indices.
// Corner i sits at offset (i&1, i>>1&1, i>>2&1) from the cell's minimum corner.
var cellEdges = func() (edges [12][2]int) {
	n := 0
	for i := 0; i < 8; i++ {
		for bit := 1; bit < 8; bit <<= 1 {
			if i&bit == 0 {
				edges[n] = [2]int{i, i | bit}
				n++
			}
		}
	}
	return edges
}()

type dualContour struct {
	g      *levelset.Grid
	iso    float64
	cells  map[levelset.Coord]int // cell minimum corner to point index.
	points []r3.Vec
	quads  [][4]int
}

func (dc *dualContour) visit(p levelset.Coord, v float64) {
	inside := v < dc.iso
	for _, ax := range dualAxes {
		a, b, c := ax[0], ax[1], ax[2]
		vq, ok := dc.g.Value(p.Offset(a, 1))
		if !ok || (float64(vq) < dc.iso) == inside {
			continue
		}
		pb := p.Offset(b, -1)
		q := [4]int{
			dc.cellVertex(p),
			dc.cellVertex(pb),
			dc.cellVertex(pb.Offset(c, -1)),
			dc.cellVertex(p.Offset(c, -1)),
		}
		if !inside {
			q = [4]int{q[0], q[3], q[2], q[1]}
		}
		dc.quads = append(dc.quads, q)
	}
}

func cornerOffset(i int) r3.Vec {
	return r3.Vec{X: float64(i & 1), Y: float64(i >> 1 & 1), Z: float64(i >> 2 & 1)}
}

// cellVertex returns the point index of the cell with minimum corner c,
// placing the point on first use.
func (dc *dualContour) cellVertex(c levelset.Coord) int {
	if idx, ok := dc.cells[c]; ok {
		return idx
	}
	var (
		vals   [8]float64
		active [8]bool
	)
	for i := range vals {
		v, ok := dc.g.Value(c.Add(levelset.Coord{int32(i & 1), int32(i >> 1 & 1), int32(i >> 2 & 1)}))
		vals[i], active[i] = float64(v), ok
	}
	var sum r3.Vec
	crossings := 0
	for _, e := range cellEdges {
		i, j := e[0], e[1]
		if !active[i] || !active[j] || (vals[i] < dc.iso) == (vals[j] < dc.iso) {
			continue
		}
		t := (dc.iso - vals[i]) / (vals[j] - vals[i])
		a, b := cornerOffset(i), cornerOffset(j)
		sum = r3.Add(sum, r3.Add(a, r3.Scale(t, r3.Sub(b, a))))
		crossings++
	}
	local := r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	if crossings > 0 {
		local = r3.Scale(1/float64(crossings), sum)
	}
	idx := len(dc.points)
	dc.points = append(dc.points, dc.g.Transform().IndexToWorldVec(r3.Add(c.ToV3(), local)))
	dc.cells[c] = idx
	return idx
}
