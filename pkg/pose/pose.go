/*
Package pose models batched rigid-body poses and the local transforms applied to them.

A PoseSet is an ordered list of global (position, orientation) pairs. A TransformSet is an
ordered list of local (shift, rotation) pairs expressed in the frame of whichever pose they are
applied to. Apply combines m transforms with n poses into the m×n Cartesian product.

Both set types are immutable once built: constructors copy their inputs and accessors return
copies, so a set can be shared with a worker goroutine without further synchronisation.
*/
package pose

import (
	"errors"
	"fmt"

	"github.com/aretw0/subboxer/pkg/geometry"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrLengthMismatch is returned when co-indexed sequences have different lengths.
var ErrLengthMismatch = errors.New("length mismatch")

// PoseSet is an ordered sequence of global poses.
type PoseSet struct {
	positions    []r3.Vec
	orientations []geometry.Mat3
}

// NewPoseSet builds a PoseSet from co-indexed positions and orientations.
func NewPoseSet(positions []r3.Vec, orientations []geometry.Mat3) (PoseSet, error) {
	if len(positions) != len(orientations) {
		return PoseSet{}, fmt.Errorf("pose set: %d positions, %d orientations: %w",
			len(positions), len(orientations), ErrLengthMismatch)
	}
	return PoseSet{
		positions:    append([]r3.Vec(nil), positions...),
		orientations: append([]geometry.Mat3(nil), orientations...),
	}, nil
}

// Len returns the number of poses.
func (p PoseSet) Len() int { return len(p.positions) }

// Position returns the position of pose j.
func (p PoseSet) Position(j int) r3.Vec { return p.positions[j] }

// Orientation returns the orientation of pose j.
func (p PoseSet) Orientation(j int) geometry.Mat3 { return p.orientations[j] }

// Positions returns a copy of all positions.
func (p PoseSet) Positions() []r3.Vec { return append([]r3.Vec(nil), p.positions...) }

// Orientations returns a copy of all orientations.
func (p PoseSet) Orientations() []geometry.Mat3 {
	return append([]geometry.Mat3(nil), p.orientations...)
}

// TransformSet is an ordered sequence of local transforms.
type TransformSet struct {
	shifts    []r3.Vec
	rotations []geometry.Mat3
}

// NewTransformSet builds a TransformSet from co-indexed shifts and rotations.
func NewTransformSet(shifts []r3.Vec, rotations []geometry.Mat3) (TransformSet, error) {
	if len(shifts) != len(rotations) {
		return TransformSet{}, fmt.Errorf("transform set: %d shifts, %d rotations: %w",
			len(shifts), len(rotations), ErrLengthMismatch)
	}
	return TransformSet{
		shifts:    append([]r3.Vec(nil), shifts...),
		rotations: append([]geometry.Mat3(nil), rotations...),
	}, nil
}

// Len returns the number of transforms.
func (t TransformSet) Len() int { return len(t.shifts) }

// Shift returns the shift of transform i.
func (t TransformSet) Shift(i int) r3.Vec { return t.shifts[i] }

// Rotation returns the rotation of transform i.
func (t TransformSet) Rotation(i int) geometry.Mat3 { return t.rotations[i] }

// Shifts returns a copy of all shifts.
func (t TransformSet) Shifts() []r3.Vec { return append([]r3.Vec(nil), t.shifts...) }

// Rotations returns a copy of all rotations.
func (t TransformSet) Rotations() []geometry.Mat3 {
	return append([]geometry.Mat3(nil), t.rotations...)
}
