package pose

import (
	"context"
	"fmt"

	"github.com/aretw0/subboxer/pkg/geometry"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// Shape describes the cardinality of an Apply result after squeezing unit axes.
type Shape int

const (
	// ShapeEmpty means m or n was zero.
	ShapeEmpty Shape = iota
	// ShapeSingle means m == n == 1: the result is one pair, not a one-element batch.
	ShapeSingle
	// ShapeFlat means exactly one of m, n is 1: the result is a 1-D sequence.
	ShapeFlat
	// ShapeGrid means m > 1 and n > 1: the result is an m×n batch.
	ShapeGrid
)

func (s Shape) String() string {
	switch s {
	case ShapeEmpty:
		return "empty"
	case ShapeSingle:
		return "single"
	case ShapeFlat:
		return "flat"
	case ShapeGrid:
		return "grid"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// Pair is one transformed pose.
type Pair struct {
	Position    r3.Vec
	Orientation geometry.Mat3
}

// Result is the output of Apply. Pairs are stored transform-major: pair (i, j) lives at
// index i*N + j, so the pose index varies fastest.
type Result struct {
	M, N  int
	pairs []Pair
}

// Shape reports the squeezed cardinality of the result.
//
// The squeeze is explicit: unit axes are dropped by contract, independent of any
// broadcasting behaviour. Callers that need a fixed rank should use At or Pairs.
func (r Result) Shape() Shape {
	switch {
	case r.M == 0 || r.N == 0:
		return ShapeEmpty
	case r.M == 1 && r.N == 1:
		return ShapeSingle
	case r.M == 1 || r.N == 1:
		return ShapeFlat
	default:
		return ShapeGrid
	}
}

// Len returns m·n.
func (r Result) Len() int { return len(r.pairs) }

// At returns pair (i, j).
func (r Result) At(i, j int) Pair { return r.pairs[i*r.N+j] }

// Single returns the only pair when the result has ShapeSingle.
func (r Result) Single() (Pair, bool) {
	if r.Shape() != ShapeSingle {
		return Pair{}, false
	}
	return r.pairs[0], true
}

// Pairs returns every pair flattened in transform-major order.
func (r Result) Pairs() []Pair { return append([]Pair(nil), r.pairs...) }

// Positions returns the flattened positions.
func (r Result) Positions() []r3.Vec {
	out := make([]r3.Vec, len(r.pairs))
	for k, p := range r.pairs {
		out[k] = p.Position
	}
	return out
}

// Orientations returns the flattened orientations.
func (r Result) Orientations() []geometry.Mat3 {
	out := make([]geometry.Mat3, len(r.pairs))
	for k, p := range r.pairs {
		out[k] = p.Orientation
	}
	return out
}

// PoseSet returns the flattened result as a new PoseSet.
func (r Result) PoseSet() PoseSet {
	return PoseSet{positions: r.Positions(), orientations: r.Orientations()}
}

// Apply composes every transform with every pose.
//
// For transform i and pose j:
//
//	orientation'[i,j] = pose.orientation[j] · transform.rotation[i]
//	position'[i,j]    = pose.position[j] + pose.orientation[j] · transform.shift[i]
//
// The shift and rotation are local to each pose, which is why the pose orientation both
// premultiplies the rotation and rotates the shift. Inputs are not modified.
func Apply(t TransformSet, p PoseSet) Result {
	r := Result{M: t.Len(), N: p.Len(), pairs: make([]Pair, t.Len()*p.Len())}
	for i := 0; i < r.M; i++ {
		applyRow(t, p, i, r.pairs[i*r.N:(i+1)*r.N])
	}
	return r
}

// ApplyConcurrent computes the same result as Apply, spreading transform rows over up to
// workers goroutines. It returns early with ctx.Err() if the context is cancelled.
func ApplyConcurrent(ctx context.Context, t TransformSet, p PoseSet, workers int) (Result, error) {
	if workers < 1 {
		workers = 1
	}
	r := Result{M: t.Len(), N: p.Len(), pairs: make([]Pair, t.Len()*p.Len())}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < r.M; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			applyRow(t, p, i, r.pairs[i*r.N:(i+1)*r.N])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return r, nil
}

func applyRow(t TransformSet, p PoseSet, i int, out []Pair) {
	shift := t.shifts[i]
	rot := t.rotations[i]
	for j := range out {
		o := p.orientations[j]
		out[j] = Pair{
			Position:    r3.Add(p.positions[j], o.MulVec(shift)),
			Orientation: o.Mul(rot),
		}
	}
}
