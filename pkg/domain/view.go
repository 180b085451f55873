package domain

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Volume describes the loaded density map. Only the shape is consumed by the core.
type Volume struct {
	// Shape is (nx, ny, nz) in voxels.
	Shape [3]int `json:"shape"`
	// Source is where the volume came from, for display only.
	Source string `json:"source,omitempty"`
}

// Validate checks that every dimension is positive.
func (v Volume) Validate() error {
	for i, n := range v.Shape {
		if n <= 0 {
			return fmt.Errorf("volume shape %v: dimension %d is not positive", v.Shape, i)
		}
	}
	return nil
}

// Box returns the bounding box [0, shape).
func (v Volume) Box() BoundingBox {
	return BoundingBox{
		Max: r3.Vec{X: float64(v.Shape[0]), Y: float64(v.Shape[1]), Z: float64(v.Shape[2])},
	}
}

// Center returns the geometric centre of the volume, shape/2.
func (v Volume) Center() r3.Vec {
	return r3.Scale(0.5, v.Box().Max)
}

// BoundingBox is an axis-aligned box in voxel coordinates.
type BoundingBox struct {
	Min r3.Vec `json:"min"`
	Max r3.Vec `json:"max"`
}

// SlicingPlane is a finite-thickness plane through the volume.
type SlicingPlane struct {
	Position  r3.Vec  `json:"position"`
	Normal    r3.Vec  `json:"normal"`
	Thickness float64 `json:"thickness"`
}

// Camera is the part of the viewer camera the core reads and writes.
type Camera struct {
	Center        r3.Vec `json:"center"`
	ViewDirection r3.Vec `json:"view_direction"`
}

// Axis names a volume axis for plane alignment.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// Unit returns the unit vector along a.
func (a Axis) Unit() (r3.Vec, bool) {
	switch a {
	case AxisX:
		return r3.Vec{X: 1}, true
	case AxisY:
		return r3.Vec{Y: 1}, true
	case AxisZ:
		return r3.Vec{Z: 1}, true
	}
	return r3.Vec{}, false
}
