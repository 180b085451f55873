// Package bridge converts subparticle definitions into transform tables and applies them to
// particle poses read from and written to STAR files.
package bridge

import (
	"github.com/aretw0/subboxer/pkg/domain"
	"github.com/aretw0/subboxer/pkg/euler"
	"github.com/aretw0/subboxer/pkg/geometry"
	"github.com/aretw0/subboxer/pkg/pose"
	"gonum.org/v1/gonum/spatial/r3"
)

// Record is one exported transform in table form.
type Record struct {
	ID     int          `json:"id"`
	Shift  r3.Vec       `json:"shift"`
	Angles euler.Angles `json:"angles"`
}

// Export turns subparticle definitions into local transforms relative to center, the
// reference point of the map the subparticles were defined on.
//
// Only subparticles with a complete frame are exported. The shift is origin − center; the
// rotation has the frame axes as columns. Angles describe the transpose of the rotation,
// the same convention ReadTransforms undoes, so a write/read cycle restores the rotation.
func Export(poses []domain.SubparticlePose, center r3.Vec) (pose.TransformSet, []Record, error) {
	var (
		shifts    []r3.Vec
		rotations []geometry.Mat3
		records   []Record
	)
	for _, p := range poses {
		f, ok := p.Frame()
		if !ok {
			continue
		}
		rot := f.Matrix()
		shift := r3.Sub(p.Origin, center)
		shifts = append(shifts, shift)
		rotations = append(rotations, rot)
		records = append(records, Record{
			ID:     p.ID,
			Shift:  shift,
			Angles: euler.FromMatrix(rot.T()),
		})
	}
	t, err := pose.NewTransformSet(shifts, rotations)
	if err != nil {
		return pose.TransformSet{}, nil, err
	}
	return t, records, nil
}
