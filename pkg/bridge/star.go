package bridge

import (
	"errors"
	"fmt"

	"github.com/aretw0/subboxer/pkg/euler"
	"github.com/aretw0/subboxer/pkg/geometry"
	"github.com/aretw0/subboxer/pkg/pose"
	"github.com/aretw0/subboxer/pkg/starfile"
	"gonum.org/v1/gonum/spatial/r3"
)

// Local transform table columns.
const (
	ColShiftX    = "subboxerShiftX"
	ColShiftY    = "subboxerShiftY"
	ColShiftZ    = "subboxerShiftZ"
	ColAngleRot  = "subboxerAngleRot"
	ColAngleTilt = "subboxerAngleTilt"
	ColAnglePsi  = "subboxerAnglePsi"
)

// RELION particle columns.
const (
	ColCoordinateX    = "rlnCoordinateX"
	ColCoordinateY    = "rlnCoordinateY"
	ColCoordinateZ    = "rlnCoordinateZ"
	ColOriginXAngst   = "rlnOriginXAngst"
	ColOriginYAngst   = "rlnOriginYAngst"
	ColOriginZAngst   = "rlnOriginZAngst"
	ColPixelSize      = "rlnPixelSize"
	ColImagePixelSize = "rlnImagePixelSize"
	ColOpticsGroup    = "rlnOpticsGroup"
	ColAngleRotRln    = "rlnAngleRot"
	ColAngleTiltRln   = "rlnAngleTilt"
	ColAnglePsiRln    = "rlnAnglePsi"
	ColMicrographName = "rlnMicrographName"
)

// ParticlesBlock is the data block holding particle rows.
const ParticlesBlock = "particles"

// ErrNoPixelSize is returned when particle shifts are given in Ångström but no pixel size
// is available to convert them.
var ErrNoPixelSize = errors.New("no pixel size for origin shifts")

// TransformTable renders records as a transform table block.
func TransformTable(records []Record) *starfile.Block {
	b := starfile.NewLoop("", ColShiftX, ColShiftY, ColShiftZ, ColAngleRot, ColAngleTilt, ColAnglePsi)
	for _, r := range records {
		_ = b.Append(
			starfile.FormatFloat(r.Shift.X),
			starfile.FormatFloat(r.Shift.Y),
			starfile.FormatFloat(r.Shift.Z),
			starfile.FormatFloat(r.Angles.Rot),
			starfile.FormatFloat(r.Angles.Tilt),
			starfile.FormatFloat(r.Angles.Psi),
		)
	}
	return b
}

// WriteTransforms writes records as a transform table file.
func WriteTransforms(path string, records []Record) error {
	return starfile.WriteFile(path, &starfile.File{Blocks: []*starfile.Block{TransformTable(records)}})
}

// ReadTransforms reads a transform table. The table is the first block carrying the
// subboxer shift columns.
func ReadTransforms(path string) (pose.TransformSet, error) {
	f, err := starfile.ReadFile(path)
	if err != nil {
		return pose.TransformSet{}, err
	}
	var b *starfile.Block
	for _, blk := range f.Blocks {
		if blk.Has(ColShiftX) {
			b = blk
			break
		}
	}
	if b == nil {
		return pose.TransformSet{}, fmt.Errorf("%s: %w %s", path, starfile.ErrMissingColumn, ColShiftX)
	}

	shifts, err := vectors(b, ColShiftX, ColShiftY, ColShiftZ)
	if err != nil {
		return pose.TransformSet{}, fmt.Errorf("%s: %w", path, err)
	}
	rotations, err := orientations(b, ColAngleRot, ColAngleTilt, ColAnglePsi)
	if err != nil {
		return pose.TransformSet{}, fmt.Errorf("%s: %w", path, err)
	}
	return pose.NewTransformSet(shifts, rotations)
}

// ReadPoses reads particle poses and their micrograph names.
//
// Positions are the particle coordinates minus the origin shift converted to pixels. The
// pixel size comes from the particle rows, or else from the particle's optics group.
func ReadPoses(path string) (pose.PoseSet, []string, error) {
	f, err := starfile.ReadFile(path)
	if err != nil {
		return pose.PoseSet{}, nil, err
	}
	ps, sources, err := posesFromFile(f)
	if err != nil {
		return pose.PoseSet{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	return ps, sources, nil
}

func posesFromFile(f *starfile.File) (pose.PoseSet, []string, error) {
	b, err := particleBlock(f)
	if err != nil {
		return pose.PoseSet{}, nil, err
	}

	positions, err := vectors(b, ColCoordinateX, ColCoordinateY, ColCoordinateZ)
	if err != nil {
		return pose.PoseSet{}, nil, err
	}
	if b.Has(ColOriginXAngst) {
		origins, err := vectors(b, ColOriginXAngst, ColOriginYAngst, ColOriginZAngst)
		if err != nil {
			return pose.PoseSet{}, nil, err
		}
		pixel, err := pixelSizes(f, b)
		if err != nil {
			return pose.PoseSet{}, nil, err
		}
		for i := range positions {
			if pixel[i] <= 0 {
				return pose.PoseSet{}, nil, fmt.Errorf("%w: row %d has pixel size %g", ErrNoPixelSize, i, pixel[i])
			}
			positions[i] = r3.Sub(positions[i], r3.Scale(1/pixel[i], origins[i]))
		}
	}

	rotations, err := orientations(b, ColAngleRotRln, ColAngleTiltRln, ColAnglePsiRln)
	if err != nil {
		return pose.PoseSet{}, nil, err
	}

	sources := make([]string, b.Len())
	if b.Has(ColMicrographName) {
		if sources, err = b.Strings(ColMicrographName); err != nil {
			return pose.PoseSet{}, nil, err
		}
	}

	ps, err := pose.NewPoseSet(positions, rotations)
	if err != nil {
		return pose.PoseSet{}, nil, err
	}
	return ps, sources, nil
}

// particleBlock prefers data_particles and otherwise takes the only block with coordinates.
func particleBlock(f *starfile.File) (*starfile.Block, error) {
	if b, err := f.Block(ParticlesBlock); err == nil {
		return b, nil
	}
	for _, b := range f.Blocks {
		if b.Has(ColCoordinateX) {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: no block with %s", starfile.ErrMissingBlock, ColCoordinateX)
}

func pixelSizes(f *starfile.File, particles *starfile.Block) ([]float64, error) {
	if particles.Has(ColPixelSize) {
		return particles.Floats(ColPixelSize)
	}

	optics, err := f.Block("optics")
	if err != nil || !particles.Has(ColOpticsGroup) {
		return nil, ErrNoPixelSize
	}
	groups, err := optics.Strings(ColOpticsGroup)
	if err != nil {
		return nil, ErrNoPixelSize
	}
	sizes, err := optics.Floats(ColImagePixelSize)
	if err != nil {
		return nil, ErrNoPixelSize
	}
	byGroup := make(map[string]float64, len(groups))
	for i, g := range groups {
		byGroup[g] = sizes[i]
	}

	rows, err := particles.Strings(ColOpticsGroup)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, g := range rows {
		px, ok := byGroup[g]
		if !ok {
			return nil, fmt.Errorf("%w: optics group %s", ErrNoPixelSize, g)
		}
		out[i] = px
	}
	return out, nil
}

// WritePoses writes a flattened apply result. Row i·N+j carries the micrograph name of
// pose j, so every derived particle keeps the source of the particle it came from.
func WritePoses(path string, r pose.Result, sources []string) error {
	if len(sources) != r.N {
		return fmt.Errorf("%w: %d sources for %d poses", pose.ErrLengthMismatch, len(sources), r.N)
	}
	b := starfile.NewLoop(ParticlesBlock,
		ColCoordinateX, ColCoordinateY, ColCoordinateZ,
		ColAngleRotRln, ColAngleTiltRln, ColAnglePsiRln,
		ColMicrographName,
	)
	for i := 0; i < r.M; i++ {
		for j := 0; j < r.N; j++ {
			p := r.At(i, j)
			a := euler.FromMatrix(p.Orientation.T())
			_ = b.Append(
				starfile.FormatFloat(p.Position.X),
				starfile.FormatFloat(p.Position.Y),
				starfile.FormatFloat(p.Position.Z),
				starfile.FormatFloat(a.Rot),
				starfile.FormatFloat(a.Tilt),
				starfile.FormatFloat(a.Psi),
				sources[j],
			)
		}
	}
	return starfile.WriteFile(path, &starfile.File{Blocks: []*starfile.Block{b}})
}

func vectors(b *starfile.Block, cx, cy, cz string) ([]r3.Vec, error) {
	cols, err := floatColumns(b, cx, cy, cz)
	if err != nil {
		return nil, err
	}
	out := make([]r3.Vec, b.Len())
	for i := range out {
		out[i] = r3.Vec{X: cols[0][i], Y: cols[1][i], Z: cols[2][i]}
	}
	return out, nil
}

// orientations converts ZYZ angle columns into rotation matrices, transposed to undo the
// convention the angles are written in.
func orientations(b *starfile.Block, rot, tilt, psi string) ([]geometry.Mat3, error) {
	cols, err := floatColumns(b, rot, tilt, psi)
	if err != nil {
		return nil, err
	}
	out := make([]geometry.Mat3, b.Len())
	for i := range out {
		out[i] = euler.ToMatrix(euler.Angles{Rot: cols[0][i], Tilt: cols[1][i], Psi: cols[2][i]}).T()
	}
	return out, nil
}

func floatColumns(b *starfile.Block, names ...string) ([][]float64, error) {
	out := make([][]float64, len(names))
	for k, n := range names {
		v, err := b.Floats(n)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}
