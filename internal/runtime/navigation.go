package runtime

import (
	"context"

	"github.com/aretw0/subboxer/pkg/domain"
)

// Next makes the subparticle after the active one active, wrapping around.
func (e *Engine) Next(ctx context.Context) error { return e.navigate(ctx, 1) }

// Previous makes the subparticle before the active one active, wrapping around.
func (e *Engine) Previous(ctx context.Context) error { return e.navigate(ctx, -1) }

// navigate steps the active subparticle in id order. An empty store is a no-op.
// The transient z pick is cleared, and in modes that edit the active subparticle the
// camera is recentred on its origin.
func (e *Engine) navigate(ctx context.Context, dir int) error {
	if e.store.Len() == 0 {
		e.logger.Debug("navigation ignored: no subparticles")
		return nil
	}
	current := e.active
	if current == domain.NoActive {
		ids := e.store.IDs()
		current = ids[0]
		if dir > 0 {
			current = ids[len(ids)-1]
		}
	}
	id, err := e.store.Navigate(current, dir)
	if err != nil {
		return err
	}

	e.abortInFlight(ctx)
	e.setActive(ctx, id)
	e.zPick = nil

	if e.mode.NeedsActive() {
		p, err := e.store.Get(id)
		if err != nil {
			return err
		}
		e.camera.Center = p.Origin
		e.emitCameraChanged(ctx)
	}
	e.logger.Debug("navigated", "active", id, "mode", e.mode)
	e.refreshLayers(ctx)
	return nil
}
