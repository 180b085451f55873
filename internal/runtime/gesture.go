package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/subboxer/pkg/domain"
	"gonum.org/v1/gonum/spatial/r3"
)

// GestureState is the lifecycle stage of a pointer gesture.
type GestureState int

const (
	AwaitingStart GestureState = iota
	Dragging
	Done
)

func (s GestureState) String() string {
	switch s {
	case AwaitingStart:
		return "awaiting_start"
	case Dragging:
		return "dragging"
	case Done:
		return "done"
	}
	return fmt.Sprintf("GestureState(%d)", int(s))
}

// Gesture is one press/move.../release sequence, modelled as an explicit state machine.
// OnEvent dispatches on the gesture's state and the event phase; state captured at press
// time lives in the gesture's fields.
type Gesture interface {
	Name() string
	State() GestureState
	OnEvent(ctx context.Context, ev domain.PointerEvent) error
	// Abort runs the cleanup step without a release event.
	Abort(ctx context.Context)
}

// GestureError reports a failure inside a gesture handler.
type GestureError struct {
	Gesture string
	Phase   domain.Phase
	Err     error
}

func (e *GestureError) Error() string {
	return fmt.Sprintf("gesture %s (%s): %v", e.Gesture, e.Phase, e.Err)
}

func (e *GestureError) Unwrap() error { return e.Err }

type gestureFactory func(e *Engine) Gesture

// defaultGestures maps each annotation mode to the gesture an alt-qualified press starts.
func defaultGestures() map[domain.Mode]gestureFactory {
	return map[domain.Mode]gestureFactory{
		domain.ModeAdd:           newAddPointGesture,
		domain.ModeDefineZAxis:   newDefineZGesture,
		domain.ModeRotateInPlane: newRotateGesture,
	}
}

// HandlePointer feeds one pointer event to the gesture machinery.
//
// A press selects the gesture once: alt-qualified presses start the current mode's
// annotation gesture, unqualified presses start the plane-shift gesture. Move and release
// events go to the gesture in flight, if any; moves without one are hover and ignored.
func (e *Engine) HandlePointer(ctx context.Context, ev domain.PointerEvent) error {
	ev = e.normaliseEvent(ev)
	e.cursor = ev

	switch ev.Phase {
	case domain.PhasePress:
		e.abortInFlight(ctx)
		g := e.selectGesture(ev)
		if err := g.OnEvent(ctx, ev); err != nil {
			return &GestureError{Gesture: g.Name(), Phase: ev.Phase, Err: err}
		}
		if g.State() == Dragging {
			e.inFlight = g
			e.emitGesture(ctx, domain.EventGestureStarted, g.Name(), false)
		}
		return nil

	case domain.PhaseMove, domain.PhaseRelease:
		g := e.inFlight
		if g == nil {
			return nil
		}
		err := g.OnEvent(ctx, ev)
		if g.State() == Done {
			e.inFlight = nil
			e.emitGesture(ctx, domain.EventGestureEnded, g.Name(), false)
		}
		if err != nil {
			return &GestureError{Gesture: g.Name(), Phase: ev.Phase, Err: err}
		}
		return nil
	}
	return fmt.Errorf("unknown pointer phase %q", ev.Phase)
}

// Abort ends the gesture in flight without a release event, for example on focus loss.
// Its cleanup step still runs so the picking layer is never left disabled.
func (e *Engine) Abort(ctx context.Context) {
	e.abortInFlight(ctx)
}

// InFlight returns the name of the gesture in flight, or "".
func (e *Engine) InFlight() string {
	if e.inFlight == nil {
		return ""
	}
	return e.inFlight.Name()
}

func (e *Engine) abortInFlight(ctx context.Context) {
	g := e.inFlight
	if g == nil {
		return
	}
	e.inFlight = nil
	g.Abort(ctx)
	e.logger.Debug("gesture aborted", "gesture", g.Name())
	e.emitGesture(ctx, domain.EventGestureEnded, g.Name(), true)
}

func (e *Engine) selectGesture(ev domain.PointerEvent) Gesture {
	if ev.HasModifier(domain.ModifierAlt) {
		return e.gestures[e.mode](e)
	}
	return newShiftPlaneGesture(e)
}

// normaliseEvent falls back to the camera view direction when the event carries none.
func (e *Engine) normaliseEvent(ev domain.PointerEvent) domain.PointerEvent {
	if r3.Norm(ev.ViewDirection) == 0 {
		ev.ViewDirection = e.camera.ViewDirection
	}
	return ev
}
