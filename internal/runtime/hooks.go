package runtime

import (
	"context"

	"github.com/aretw0/subboxer/pkg/domain"
)

func (e *Engine) emitModeChanged(ctx context.Context, from, to domain.Mode) {
	if e.hooks.OnModeChanged == nil {
		return
	}
	e.hooks.OnModeChanged(ctx, &domain.ModeEvent{
		EventBase: domain.NewEventBase(domain.EventModeChanged),
		From:      from,
		To:        to,
	})
}

func (e *Engine) emitActiveChanged(ctx context.Context, from, to int) {
	if e.hooks.OnActiveChanged == nil {
		return
	}
	e.hooks.OnActiveChanged(ctx, &domain.ActiveEvent{
		EventBase: domain.NewEventBase(domain.EventActiveChanged),
		From:      from,
		To:        to,
	})
}

func (e *Engine) emitPlaneChanged(ctx context.Context) {
	if e.hooks.OnPlaneChanged == nil {
		return
	}
	e.hooks.OnPlaneChanged(ctx, &domain.PlaneEvent{
		EventBase: domain.NewEventBase(domain.EventPlaneChanged),
		Plane:     e.plane,
	})
}

func (e *Engine) emitThicknessChanged(ctx context.Context) {
	if e.hooks.OnThicknessChanged == nil {
		return
	}
	e.hooks.OnThicknessChanged(ctx, &domain.PlaneEvent{
		EventBase: domain.NewEventBase(domain.EventThicknessChanged),
		Plane:     e.plane,
	})
}

func (e *Engine) emitCameraChanged(ctx context.Context) {
	if e.hooks.OnCameraChanged == nil {
		return
	}
	e.hooks.OnCameraChanged(ctx, &domain.CameraEvent{
		EventBase: domain.NewEventBase(domain.EventCameraChanged),
		Camera:    e.camera,
	})
}

func (e *Engine) emitSubparticleAdded(ctx context.Context, id int) {
	if e.hooks.OnSubparticleAdded == nil {
		return
	}
	p, err := e.store.Get(id)
	if err != nil {
		return
	}
	e.hooks.OnSubparticleAdded(ctx, &domain.SubparticleEvent{
		EventBase:   domain.NewEventBase(domain.EventSubparticleAdded),
		Subparticle: p,
	})
}

func (e *Engine) emitGesture(ctx context.Context, t domain.EventType, name string, aborted bool) {
	hook := e.hooks.OnGestureEnded
	if t == domain.EventGestureStarted {
		hook = e.hooks.OnGestureStarted
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.GestureEvent{
		EventBase: domain.NewEventBase(t),
		Gesture:   name,
		Mode:      e.mode,
		Aborted:   aborted,
	})
}
