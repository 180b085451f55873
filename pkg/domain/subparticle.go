package domain

import (
	"github.com/aretw0/subboxer/pkg/geometry"
	"gonum.org/v1/gonum/spatial/r3"
)

// Frame is a right-handed orthonormal triad.
type Frame struct {
	X r3.Vec `json:"x"`
	Y r3.Vec `json:"y"`
	Z r3.Vec `json:"z"`
}

// Matrix returns the rotation whose columns are X, Y and Z.
func (f Frame) Matrix() geometry.Mat3 {
	return geometry.FromColumns(f.X, f.Y, f.Z)
}

// SubparticlePose is the local pose definition of one subparticle.
//
// Origin is in voxel coordinates of the volume, (x, y, z) order. Axes are nil until defined
// and are always stored normalized.
type SubparticlePose struct {
	ID     int     `json:"id"`
	Origin r3.Vec  `json:"origin"`
	XAxis  *r3.Vec `json:"x_axis,omitempty"`
	YAxis  *r3.Vec `json:"y_axis,omitempty"`
	ZAxis  *r3.Vec `json:"z_axis,omitempty"`
}

// HasFrame reports whether all three axes are defined.
func (p SubparticlePose) HasFrame() bool {
	return p.XAxis != nil && p.YAxis != nil && p.ZAxis != nil
}

// Frame returns the frame when all three axes are defined.
func (p SubparticlePose) Frame() (Frame, bool) {
	if !p.HasFrame() {
		return Frame{}, false
	}
	return Frame{X: *p.XAxis, Y: *p.YAxis, Z: *p.ZAxis}, true
}

// SetFrame stores the three axes of f.
func (p *SubparticlePose) SetFrame(f Frame) {
	p.XAxis, p.YAxis, p.ZAxis = vecPtr(f.X), vecPtr(f.Y), vecPtr(f.Z)
}

// Clone returns a deep copy; the axis pointers of the copy are not shared with p.
func (p SubparticlePose) Clone() SubparticlePose {
	c := p
	if p.XAxis != nil {
		c.XAxis = vecPtr(*p.XAxis)
	}
	if p.YAxis != nil {
		c.YAxis = vecPtr(*p.YAxis)
	}
	if p.ZAxis != nil {
		c.ZAxis = vecPtr(*p.ZAxis)
	}
	return c
}

func vecPtr(v r3.Vec) *r3.Vec { return &v }
