package d3

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Box is an axis aligned 3d bounding box.
type Box r3.Box

// Pad grows the box by d on every side.
func (a Box) Pad(d float64) Box {
	return Box{
		Min: r3.Sub(a.Min, Elem(d)),
		Max: r3.Add(a.Max, Elem(d)),
	}
}

// Contains checks if the 3d box contains the given vector (considering bounds as inside).
func (a Box) Contains(v r3.Vec) bool {
	return a.Min.X <= v.X && a.Min.Y <= v.Y && a.Min.Z <= v.Z &&
		v.X <= a.Max.X && v.Y <= a.Max.Y && v.Z <= a.Max.Z
}

