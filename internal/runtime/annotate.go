package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/subboxer/pkg/domain"
	"github.com/aretw0/subboxer/pkg/geometry"
	"gonum.org/v1/gonum/spatial/r3"
)

// addPointGesture adds a subparticle where an alt-click meets the slicing plane.
type addPointGesture struct {
	e     *Engine
	state GestureState
}

func newAddPointGesture(e *Engine) Gesture { return &addPointGesture{e: e} }

func (g *addPointGesture) Name() string        { return "add_point" }
func (g *addPointGesture) State() GestureState { return g.state }

func (g *addPointGesture) Abort(context.Context) {
	g.state = Done
}

func (g *addPointGesture) OnEvent(ctx context.Context, ev domain.PointerEvent) error {
	if g.state != AwaitingStart || ev.Phase != domain.PhasePress {
		return nil
	}
	g.state = Done

	pt, ok, err := g.e.pick(ev)
	if err != nil {
		return err
	}
	if !ok {
		g.e.logger.Debug("pick outside volume", "gesture", g.Name(), "point", pt)
		return nil
	}

	id := g.e.store.Add(pt)
	g.e.logger.Debug("subparticle added", "id", id, "origin", pt)
	g.e.setActive(ctx, id)
	g.e.emitSubparticleAdded(ctx, id)
	g.e.refreshLayers(ctx)
	return nil
}

// defineZGesture points the active subparticle's z axis at an alt-clicked plane position.
type defineZGesture struct {
	e     *Engine
	state GestureState
}

func newDefineZGesture(e *Engine) Gesture { return &defineZGesture{e: e} }

func (g *defineZGesture) Name() string        { return "define_z_axis" }
func (g *defineZGesture) State() GestureState { return g.state }

func (g *defineZGesture) Abort(context.Context) {
	g.state = Done
}

func (g *defineZGesture) OnEvent(ctx context.Context, ev domain.PointerEvent) error {
	if g.state != AwaitingStart || ev.Phase != domain.PhasePress {
		return nil
	}
	g.state = Done

	id := g.e.active
	if id == domain.NoActive {
		return domain.ErrNoActiveSubparticle
	}
	pt, ok, err := g.e.pick(ev)
	if err != nil {
		return err
	}
	if !ok {
		g.e.logger.Debug("pick outside volume", "gesture", g.Name(), "point", pt)
		return nil
	}

	if err := g.e.store.SetZAxis(id, pt); err != nil {
		return err
	}
	if err := g.e.store.InitialiseBasis(id); err != nil {
		return err
	}
	g.e.zPick = &pt
	g.e.logger.Debug("z axis defined", "id", id, "pick", pt)
	g.e.refreshLayers(ctx)
	return nil
}

// rotateGesture spins the active frame about its z axis while the pointer is dragged.
//
// The angle is a function of the total displacement since press, applied to the basis
// captured at press time, so moves never compound.
type rotateGesture struct {
	e         *Engine
	state     GestureState
	id        int
	start     r3.Vec
	reference domain.Frame
	angle     float64
}

func newRotateGesture(e *Engine) Gesture { return &rotateGesture{e: e} }

func (g *rotateGesture) Name() string        { return "rotate_in_plane" }
func (g *rotateGesture) State() GestureState { return g.state }

func (g *rotateGesture) OnEvent(ctx context.Context, ev domain.PointerEvent) error {
	switch {
	case g.state == AwaitingStart && ev.Phase == domain.PhasePress:
		return g.begin(ev)
	case g.state == Dragging && ev.Phase == domain.PhaseMove:
		return g.drag(ctx, ev)
	case g.state == Dragging && ev.Phase == domain.PhaseRelease:
		g.finish()
	}
	return nil
}

func (g *rotateGesture) begin(ev domain.PointerEvent) error {
	g.state = Done
	g.id = g.e.active
	if g.id == domain.NoActive {
		return domain.ErrNoActiveSubparticle
	}
	if err := g.e.store.InitialiseBasis(g.id); err != nil {
		return err
	}
	p, err := g.e.store.Get(g.id)
	if err != nil {
		return err
	}
	ref, ok := p.Frame()
	if !ok {
		return fmt.Errorf("subparticle %d: incomplete frame", g.id)
	}

	g.reference = ref
	g.start = ev.Position
	g.e.interactive = false
	g.state = Dragging
	return nil
}

func (g *rotateGesture) drag(ctx context.Context, ev domain.PointerEvent) error {
	magnitude, err := geometry.ProjectDragOntoAxis(g.start, ev.Position, ev.ViewDirection, g.reference.Y)
	if err != nil {
		return err
	}
	angle := magnitude * g.e.rotationScale
	if angle == g.angle {
		return nil
	}
	g.angle = angle
	if err := g.e.store.SetInPlaneRotation(g.id, g.reference, angle); err != nil {
		return err
	}
	g.e.refreshLayers(ctx)
	return nil
}

func (g *rotateGesture) finish() {
	g.e.interactive = true
	g.state = Done
}

func (g *rotateGesture) Abort(context.Context) {
	if g.state == Dragging {
		g.finish()
	}
	g.state = Done
}
