package domain

import (
	"github.com/paulmach/orb"
)

// Region is one named administrative boundary with its sampling weight.
// The weight is proportional to population density and biases random
// region selection. Regions are immutable after catalog load.
type Region struct {
	Name     string
	Boundary orb.MultiPolygon
	Weight   float64
	BBox     orb.Bound
}

// BoundingBox mirrors the region envelope in plain lon/lat form for
// serialization at the API boundary.
type BoundingBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

func (r *Region) BoundingBox() BoundingBox {
	return BoundingBox{
		MinLon: r.BBox.Min[0],
		MinLat: r.BBox.Min[1],
		MaxLon: r.BBox.Max[0],
		MaxLat: r.BBox.Max[1],
	}
}
