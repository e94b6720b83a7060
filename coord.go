package levelset

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Coord is an integer voxel coordinate in grid index space.
type Coord [3]int32

// Add adds two coordinates. Return c = a + b.
func (a Coord) Add(b Coord) Coord {
	return Coord{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Sub subtracts two coordinates. Return c = a - b.
func (a Coord) Sub(b Coord) Coord {
	return Coord{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Offset returns the coordinate displaced by one voxel along axis.
func (a Coord) Offset(axis int, delta int32) Coord {
	a[axis] += delta
	return a
}

// ToV3 converts the coordinate to a floating point vector.
func (a Coord) ToV3() r3.Vec {
	return r3.Vec{X: float64(a[0]), Y: float64(a[1]), Z: float64(a[2])}
}

// Less orders coordinates by x, then y, then z.
func (a Coord) Less(b Coord) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	if a[1] != b[1] {
		return a[1] < b[1]
	}
	return a[2] < b[2]
}

// leafOrigin returns the origin of the leaf containing a.
func (a Coord) leafOrigin() Coord {
	return Coord{a[0] &^ leafMask, a[1] &^ leafMask, a[2] &^ leafMask}
}

// leafOffset returns the linear offset of a within its leaf.
func (a Coord) leafOffset() int {
	return int(a[0]&leafMask)<<(2*leafLog2Dim) | int(a[1]&leafMask)<<leafLog2Dim | int(a[2]&leafMask)
}

// coordInRange reports whether v rounds to a representable index coordinate.
func coordInRange(v float64) bool {
	return v > math.MinInt32 && v < math.MaxInt32
}
