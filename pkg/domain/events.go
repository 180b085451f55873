package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventModeChanged      EventType = "mode_changed"
	EventActiveChanged    EventType = "active_changed"
	EventThicknessChanged EventType = "thickness_changed"
	EventPlaneChanged     EventType = "plane_changed"
	EventCameraChanged    EventType = "camera_changed"
	EventLayersChanged    EventType = "layers_changed"
	EventSubparticleAdded EventType = "subparticle_added"
	EventGestureStarted   EventType = "gesture_started"
	EventGestureEnded     EventType = "gesture_ended"
)

// NoActive is the active id when no subparticle is selected.
const NoActive = -1

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NewEventBase stamps an event of type t with the current time.
func NewEventBase(t EventType) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t}
}

// ModeEvent reports a mode change.
type ModeEvent struct {
	EventBase
	From Mode `json:"from"`
	To   Mode `json:"to"`
}

// ActiveEvent reports a change of the active subparticle.
type ActiveEvent struct {
	EventBase
	From int `json:"from"`
	To   int `json:"to"`
}

// PlaneEvent reports a change of the slicing plane (position, normal or thickness).
type PlaneEvent struct {
	EventBase
	Plane SlicingPlane `json:"plane"`
}

// CameraEvent reports a camera move requested by the core (recentring on a subparticle).
type CameraEvent struct {
	EventBase
	Camera Camera `json:"camera"`
}

// LayersEvent carries the recomputed derived layers.
type LayersEvent struct {
	EventBase
	Layers Layers `json:"layers"`
}

// SubparticleEvent reports a store mutation for one subparticle.
type SubparticleEvent struct {
	EventBase
	Subparticle SubparticlePose `json:"subparticle"`
}

// GestureEvent reports the start or end of a pointer gesture.
type GestureEvent struct {
	EventBase
	Gesture string `json:"gesture"`
	Mode    Mode   `json:"mode"`
	// Aborted is set when the gesture ended without a release event.
	Aborted bool `json:"aborted,omitempty"`
}

// Hooks defines the change notifications emitted by the annotation engine.
// Nil callbacks are skipped.
type Hooks struct {
	OnModeChanged      func(context.Context, *ModeEvent)
	OnActiveChanged    func(context.Context, *ActiveEvent)
	OnThicknessChanged func(context.Context, *PlaneEvent)
	OnPlaneChanged     func(context.Context, *PlaneEvent)
	OnCameraChanged    func(context.Context, *CameraEvent)
	OnLayersChanged    func(context.Context, *LayersEvent)
	OnSubparticleAdded func(context.Context, *SubparticleEvent)
	OnGestureStarted   func(context.Context, *GestureEvent)
	OnGestureEnded     func(context.Context, *GestureEvent)
}

// ComposeHooks fans every notification out to each of hs in order.
func ComposeHooks(hs ...Hooks) Hooks {
	return Hooks{
		OnModeChanged: func(ctx context.Context, e *ModeEvent) {
			for _, h := range hs {
				if h.OnModeChanged != nil {
					h.OnModeChanged(ctx, e)
				}
			}
		},
		OnActiveChanged: func(ctx context.Context, e *ActiveEvent) {
			for _, h := range hs {
				if h.OnActiveChanged != nil {
					h.OnActiveChanged(ctx, e)
				}
			}
		},
		OnThicknessChanged: func(ctx context.Context, e *PlaneEvent) {
			for _, h := range hs {
				if h.OnThicknessChanged != nil {
					h.OnThicknessChanged(ctx, e)
				}
			}
		},
		OnPlaneChanged: func(ctx context.Context, e *PlaneEvent) {
			for _, h := range hs {
				if h.OnPlaneChanged != nil {
					h.OnPlaneChanged(ctx, e)
				}
			}
		},
		OnCameraChanged: func(ctx context.Context, e *CameraEvent) {
			for _, h := range hs {
				if h.OnCameraChanged != nil {
					h.OnCameraChanged(ctx, e)
				}
			}
		},
		OnLayersChanged: func(ctx context.Context, e *LayersEvent) {
			for _, h := range hs {
				if h.OnLayersChanged != nil {
					h.OnLayersChanged(ctx, e)
				}
			}
		},
		OnSubparticleAdded: func(ctx context.Context, e *SubparticleEvent) {
			for _, h := range hs {
				if h.OnSubparticleAdded != nil {
					h.OnSubparticleAdded(ctx, e)
				}
			}
		},
		OnGestureStarted: func(ctx context.Context, e *GestureEvent) {
			for _, h := range hs {
				if h.OnGestureStarted != nil {
					h.OnGestureStarted(ctx, e)
				}
			}
		},
		OnGestureEnded: func(ctx context.Context, e *GestureEvent) {
			for _, h := range hs {
				if h.OnGestureEnded != nil {
					h.OnGestureEnded(ctx, e)
				}
			}
		},
	}
}
