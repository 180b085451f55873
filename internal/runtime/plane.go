package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/subboxer/pkg/domain"
	"github.com/aretw0/subboxer/pkg/geometry"
	"gonum.org/v1/gonum/spatial/r3"
)

// shiftPlaneGesture drags the slicing plane along its normal. It is started by any press
// without the alt qualifier, whatever the mode, and ignores clicks that land outside the
// volume. A ray parallel to the plane is an error.
type shiftPlaneGesture struct {
	e        *Engine
	state    GestureState
	start    r3.Vec
	original r3.Vec
}

func newShiftPlaneGesture(e *Engine) Gesture { return &shiftPlaneGesture{e: e} }

func (g *shiftPlaneGesture) Name() string        { return "shift_plane" }
func (g *shiftPlaneGesture) State() GestureState { return g.state }

func (g *shiftPlaneGesture) OnEvent(ctx context.Context, ev domain.PointerEvent) error {
	switch {
	case g.state == AwaitingStart && ev.Phase == domain.PhasePress:
		g.state = Done
		if g.e.volume == nil {
			return nil
		}
		_, ok, err := g.e.pick(ev)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		g.start = ev.Position
		g.original = g.e.plane.Position
		g.e.interactive = false
		g.state = Dragging

	case g.state == Dragging && ev.Phase == domain.PhaseMove:
		normal := g.e.plane.Normal
		dist, err := geometry.ProjectDragOntoAxis(g.start, ev.Position, ev.ViewDirection, normal)
		if err != nil {
			return err
		}
		box := g.e.volume.Box()
		pos := geometry.ClampToBox(r3.Add(g.original, r3.Scale(dist, normal)), box.Min, box.Max)
		if pos == g.e.plane.Position {
			return nil
		}
		g.e.plane.Position = pos
		g.e.emitPlaneChanged(ctx)

	case g.state == Dragging && ev.Phase == domain.PhaseRelease:
		g.Abort(ctx)
	}
	return nil
}

func (g *shiftPlaneGesture) Abort(context.Context) {
	if g.state == Dragging {
		g.e.interactive = true
	}
	g.state = Done
}

// AlignPlaneToAxis points the plane normal along axis. The plane moves to where the cursor
// ray meets it, or to the volume centre when that point falls outside the volume.
func (e *Engine) AlignPlaneToAxis(ctx context.Context, axis domain.Axis) error {
	normal, ok := axis.Unit()
	if !ok {
		return &UnknownAxisError{Axis: string(axis)}
	}
	if e.volume == nil {
		return domain.ErrNoVolume
	}

	pos := e.volume.Center()
	box := e.volume.Box()
	pt, err := geometry.RayPlaneIntersection(e.cursor.Position, e.camera.ViewDirection, e.plane.Position, e.plane.Normal)
	if err == nil && insideInclusive(pt, box) {
		pos = pt
	}

	e.plane.Position = pos
	e.plane.Normal = normal
	e.logger.Debug("plane aligned", "axis", axis, "position", pos)
	e.emitPlaneChanged(ctx)
	return nil
}

// OrientPlaneToCamera recentres the plane and makes it perpendicular to the view direction.
func (e *Engine) OrientPlaneToCamera(ctx context.Context) error {
	if e.volume == nil {
		return domain.ErrNoVolume
	}
	normal, err := geometry.Normalize(e.camera.ViewDirection)
	if err != nil {
		return err
	}
	e.plane.Position = e.volume.Center()
	e.plane.Normal = normal
	e.emitPlaneChanged(ctx)
	return nil
}

// IncreaseThickness grows the plane thickness by one voxel.
func (e *Engine) IncreaseThickness(ctx context.Context) error {
	return e.setThickness(ctx, e.plane.Thickness+1)
}

// DecreaseThickness shrinks the plane thickness by one voxel, never below the minimum.
func (e *Engine) DecreaseThickness(ctx context.Context) error {
	return e.setThickness(ctx, e.plane.Thickness-1)
}

// SetThickness sets the plane thickness. It also becomes the thickness used when the next
// volume is opened.
func (e *Engine) SetThickness(ctx context.Context, t float64) error {
	if t < e.minThickness {
		return fmt.Errorf("thickness %g is below the minimum %g", t, e.minThickness)
	}
	e.thickness = t
	if e.volume == nil {
		return nil
	}
	return e.setThickness(ctx, t)
}

func (e *Engine) setThickness(ctx context.Context, t float64) error {
	if e.volume == nil {
		return domain.ErrNoVolume
	}
	if t < e.minThickness {
		t = e.minThickness
	}
	if t == e.plane.Thickness {
		return nil
	}
	e.plane.Thickness = t
	e.emitThicknessChanged(ctx)
	return nil
}

// UnknownAxisError is returned for an axis name other than x, y or z.
type UnknownAxisError struct {
	Axis string
}

func (e *UnknownAxisError) Error() string {
	return "unknown axis " + e.Axis
}

func insideInclusive(p r3.Vec, box domain.BoundingBox) bool {
	return p.X >= box.Min.X && p.X <= box.Max.X &&
		p.Y >= box.Min.Y && p.Y <= box.Max.Y &&
		p.Z >= box.Min.Z && p.Z <= box.Max.Z
}
